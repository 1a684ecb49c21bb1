// Package memstore is an in-memory implementation of the procurement store
// interfaces. It backs local development without a database and the service
// test suites; write visibility and version checks mirror the gorm-backed
// repositories.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/apperr"
	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/entity"
	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/service"
)

// Store holds every procurement collection behind one mutex.
type Store struct {
	mu sync.Mutex

	indents    map[string]*entity.Indent
	vendors    map[string]*entity.Vendor
	sourcing   map[string]*entity.Sourcing // keyed by indent ID
	enquiries  map[string]*entity.Enquiry
	quotations []*entity.Quotation
	pos        map[string]*entity.PurchaseOrder
	deliveries map[string]*entity.DeliveryRecord // keyed by PO ID
	activity   []*entity.ActivityLog

	seq map[string]int // code sequence per prefix
}

// New returns an empty store.
func New() *Store {
	return &Store{
		indents:    make(map[string]*entity.Indent),
		vendors:    make(map[string]*entity.Vendor),
		sourcing:   make(map[string]*entity.Sourcing),
		enquiries:  make(map[string]*entity.Enquiry),
		pos:        make(map[string]*entity.PurchaseOrder),
		deliveries: make(map[string]*entity.DeliveryRecord),
		seq:        make(map[string]int),
	}
}

// Stores exposes the store as the full service bundle.
func (s *Store) Stores() service.Stores {
	return service.Stores{
		Indents:    (*indentStore)(s),
		Vendors:    (*vendorStore)(s),
		Sourcing:   (*sourcingStore)(s),
		Enquiries:  (*enquiryStore)(s),
		Quotations: (*quotationStore)(s),
		POs:        (*poStore)(s),
		Deliveries: (*deliveryStore)(s),
		Activity:   (*activityStore)(s),
	}
}

func (s *Store) nextCode(prefix string) string {
	s.seq[prefix]++
	return fmt.Sprintf("%s-%d-%04d", prefix, time.Now().Year(), s.seq[prefix])
}

// --- indents ---

type indentStore Store

func (s *indentStore) Create(_ context.Context, ind *entity.Indent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	ind.CreatedAt = now
	ind.UpdatedAt = now
	s.indents[ind.ID] = copyIndent(ind)
	return nil
}

func (s *indentStore) Get(_ context.Context, id string) (*entity.Indent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ind, ok := s.indents[id]
	if !ok {
		return nil, apperr.NotFoundf("indent %s not found", id)
	}
	return copyIndent(ind), nil
}

func (s *indentStore) List(_ context.Context, f service.IndentFilter) ([]entity.Indent, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []*entity.Indent
	for _, ind := range s.indents {
		if f.Status != "" && ind.Status != f.Status {
			continue
		}
		if f.Department != "" && ind.Department != f.Department {
			continue
		}
		all = append(all, ind)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := int64(len(all))
	start := (f.Page - 1) * f.PageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + f.PageSize
	if end > len(all) {
		end = len(all)
	}

	out := make([]entity.Indent, 0, end-start)
	for _, ind := range all[start:end] {
		out = append(out, *copyIndent(ind))
	}
	return out, total, nil
}

func (s *indentStore) UpdateCAS(_ context.Context, ind *entity.Indent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.indents[ind.ID]
	if !ok {
		return apperr.NotFoundf("indent %s not found", ind.ID)
	}
	if stored.Version != ind.Version {
		return apperr.Conflictf("indent %s was modified concurrently", ind.ID)
	}
	ind.Version++
	ind.UpdatedAt = time.Now()
	s.indents[ind.ID] = copyIndent(ind)
	return nil
}

func (s *indentStore) NextCode(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*Store)(s).nextCode("IND"), nil
}

func (s *indentStore) ApprovedAggregate(_ context.Context) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count, value int64
	for _, ind := range s.indents {
		if ind.Status == entity.IndentStatusApproved {
			count++
			value += ind.TotalApproxValue()
		}
	}
	return count, value, nil
}

func (s *indentStore) PendingCounts(_ context.Context) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[string]int64)
	for _, ind := range s.indents {
		if strings.HasPrefix(ind.Status, "pending_") {
			counts[ind.Status]++
		}
	}
	return counts, nil
}

// --- vendors ---

type vendorStore Store

func (s *vendorStore) Create(_ context.Context, v *entity.Vendor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	v.CreatedAt = now
	v.UpdatedAt = now
	s.vendors[v.ID] = copyVendor(v)
	return nil
}

func (s *vendorStore) Get(_ context.Context, id string) (*entity.Vendor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vendors[id]
	if !ok {
		return nil, apperr.NotFoundf("vendor %s not found", id)
	}
	return copyVendor(v), nil
}

func (s *vendorStore) Update(_ context.Context, v *entity.Vendor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vendors[v.ID]; !ok {
		return apperr.NotFoundf("vendor %s not found", v.ID)
	}
	v.UpdatedAt = time.Now()
	s.vendors[v.ID] = copyVendor(v)
	return nil
}

func (s *vendorStore) List(_ context.Context, f service.VendorFilter) ([]entity.Vendor, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []*entity.Vendor
	for _, v := range s.vendors {
		if f.Status != "" && v.Status != f.Status {
			continue
		}
		if f.Category != "" && !hasCategory(v, f.Category) {
			continue
		}
		all = append(all, v)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Code < all[j].Code
	})

	total := int64(len(all))
	start := (f.Page - 1) * f.PageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + f.PageSize
	if end > len(all) {
		end = len(all)
	}

	out := make([]entity.Vendor, 0, end-start)
	for _, v := range all[start:end] {
		out = append(out, *copyVendor(v))
	}
	return out, total, nil
}

func (s *vendorStore) NextCode(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*Store)(s).nextCode("VEN"), nil
}

func hasCategory(v *entity.Vendor, category string) bool {
	for _, c := range v.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// --- sourcing ---

type sourcingStore Store

func (s *sourcingStore) Create(_ context.Context, src *entity.Sourcing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	src.CreatedAt = now
	src.UpdatedAt = now
	cp := *src
	s.sourcing[src.IndentID] = &cp
	return nil
}

func (s *sourcingStore) Get(_ context.Context, indentID string) (*entity.Sourcing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	src, ok := s.sourcing[indentID]
	if !ok {
		return nil, apperr.NotFoundf("sourcing for indent %s not found", indentID)
	}
	cp := *src
	return &cp, nil
}

func (s *sourcingStore) UpdateCAS(_ context.Context, src *entity.Sourcing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.sourcing[src.IndentID]
	if !ok {
		return apperr.NotFoundf("sourcing for indent %s not found", src.IndentID)
	}
	if stored.Version != src.Version {
		return apperr.Conflictf("sourcing for indent %s was modified concurrently", src.IndentID)
	}
	src.Version++
	src.UpdatedAt = time.Now()
	cp := *src
	s.sourcing[src.IndentID] = &cp
	return nil
}

// --- enquiries ---

type enquiryStore Store

func (s *enquiryStore) Create(_ context.Context, e *entity.Enquiry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.CreatedAt = time.Now()
	cp := *e
	cp.InvitedVendors = append(entity.StringArray(nil), e.InvitedVendors...)
	s.enquiries[e.ID] = &cp
	return nil
}

func (s *enquiryStore) Get(_ context.Context, id string) (*entity.Enquiry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.enquiries[id]
	if !ok {
		return nil, apperr.NotFoundf("enquiry %s not found", id)
	}
	cp := *e
	cp.InvitedVendors = append(entity.StringArray(nil), e.InvitedVendors...)
	return &cp, nil
}

func (s *enquiryStore) NextCode(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*Store)(s).nextCode("ENQ"), nil
}

// --- quotations ---

type quotationStore Store

func (s *quotationStore) Create(_ context.Context, q *entity.Quotation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	q.CreatedAt = time.Now()
	s.quotations = append(s.quotations, copyQuotation(q))
	return nil
}

func (s *quotationStore) ListByEnquiry(_ context.Context, enquiryID string) ([]entity.Quotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.Quotation
	for _, q := range s.quotations {
		if q.EnquiryID == enquiryID {
			out = append(out, *copyQuotation(q))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SubmittedAt.Before(out[j].SubmittedAt)
	})
	return out, nil
}

// --- purchase orders ---

type poStore Store

func (s *poStore) Create(_ context.Context, po *entity.PurchaseOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	po.CreatedAt = now
	po.UpdatedAt = now
	s.pos[po.ID] = copyPO(po)
	return nil
}

func (s *poStore) Get(_ context.Context, id string) (*entity.PurchaseOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	po, ok := s.pos[id]
	if !ok {
		return nil, apperr.NotFoundf("purchase order %s not found", id)
	}
	return copyPO(po), nil
}

func (s *poStore) GetByIndent(_ context.Context, indentID string) (*entity.PurchaseOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, po := range s.pos {
		if po.IndentID == indentID {
			return copyPO(po), nil
		}
	}
	return nil, apperr.NotFoundf("purchase order for indent %s not found", indentID)
}

func (s *poStore) NextCode(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*Store)(s).nextCode("PO"), nil
}

// --- deliveries ---

type deliveryStore Store

func (s *deliveryStore) Create(_ context.Context, rec *entity.DeliveryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	s.deliveries[rec.POID] = copyDelivery(rec)
	return nil
}

func (s *deliveryStore) Get(_ context.Context, poID string) (*entity.DeliveryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.deliveries[poID]
	if !ok {
		return nil, apperr.NotFoundf("delivery record for po %s not found", poID)
	}
	return copyDelivery(rec), nil
}

func (s *deliveryStore) AppendLogCAS(_ context.Context, rec *entity.DeliveryRecord, log *entity.DeliveryLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.deliveries[rec.POID]
	if !ok {
		return apperr.NotFoundf("delivery record for po %s not found", rec.POID)
	}
	if stored.Version != rec.Version {
		return apperr.Conflictf("delivery record for po %s was modified concurrently", rec.POID)
	}
	log.CreatedAt = time.Now()
	stored.QuantityDelivered = rec.QuantityDelivered
	stored.Status = rec.Status
	stored.Version = rec.Version + 1
	stored.UpdatedAt = time.Now()
	stored.Logs = append(stored.Logs, *log)
	rec.Version = stored.Version
	return nil
}

// --- activity ---

type activityStore Store

func (s *activityStore) Append(_ context.Context, log *entity.ActivityLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	log.CreatedAt = time.Now()
	cp := *log
	s.activity = append(s.activity, &cp)
	return nil
}

func (s *activityStore) ListByEntity(_ context.Context, entityType, entityID string) ([]entity.ActivityLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.ActivityLog
	for _, log := range s.activity {
		if log.EntityType == entityType && log.EntityID == entityID {
			out = append(out, *log)
		}
	}
	return out, nil
}

// --- copies ---
// Stored rows and returned rows never share slices, so callers can mutate
// what they got back without leaking into the store.

func copyIndent(ind *entity.Indent) *entity.Indent {
	cp := *ind
	cp.ApprovalTrail = append(entity.StringArray(nil), ind.ApprovalTrail...)
	cp.Items = append([]entity.IndentItem(nil), ind.Items...)
	return &cp
}

func copyVendor(v *entity.Vendor) *entity.Vendor {
	cp := *v
	cp.Categories = append(entity.StringArray(nil), v.Categories...)
	return &cp
}

func copyQuotation(q *entity.Quotation) *entity.Quotation {
	cp := *q
	cp.Items = append([]entity.QuotationItem(nil), q.Items...)
	return &cp
}

func copyPO(po *entity.PurchaseOrder) *entity.PurchaseOrder {
	cp := *po
	cp.Items = append([]entity.POItem(nil), po.Items...)
	return &cp
}

func copyDelivery(rec *entity.DeliveryRecord) *entity.DeliveryRecord {
	cp := *rec
	cp.Logs = append([]entity.DeliveryLog(nil), rec.Logs...)
	return &cp
}
