// Package service implements the procurement core: the approval state
// machine, vendor sourcing, purchase-order issuance and delivery tracking.
// Services are written against the store interfaces below; persistence is a
// collaborator, never part of an operation's critical section.
package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/entity"
	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/pipeline"
)

// Actor is the acting principal, supplied by the identity layer.
type Actor struct {
	UserID string
	Name   string
	Role   string // user_dept/hod/store/registrar/principal/cpd/officer/management/account/vendor
}

// IndentFilter narrows indent listings.
type IndentFilter struct {
	Status     string
	Department string
	Page       int
	PageSize   int
}

// VendorFilter narrows vendor listings.
type VendorFilter struct {
	Category string
	Status   string
	Page     int
	PageSize int
}

// IndentStore persists indents with their items. Get returns items in sort
// order; UpdateCAS writes back only when the stored version still matches
// the read one and bumps it, failing with a conflict otherwise.
type IndentStore interface {
	Create(ctx context.Context, ind *entity.Indent) error
	Get(ctx context.Context, id string) (*entity.Indent, error)
	List(ctx context.Context, f IndentFilter) ([]entity.Indent, int64, error)
	UpdateCAS(ctx context.Context, ind *entity.Indent) error
	NextCode(ctx context.Context) (string, error)
	ApprovedAggregate(ctx context.Context) (count, value int64, err error)
	PendingCounts(ctx context.Context) (map[string]int64, error)
}

// VendorStore persists vendor records.
type VendorStore interface {
	Create(ctx context.Context, v *entity.Vendor) error
	Get(ctx context.Context, id string) (*entity.Vendor, error)
	Update(ctx context.Context, v *entity.Vendor) error
	List(ctx context.Context, f VendorFilter) ([]entity.Vendor, int64, error)
	NextCode(ctx context.Context) (string, error)
}

// SourcingStore persists the per-indent sourcing state.
type SourcingStore interface {
	Create(ctx context.Context, s *entity.Sourcing) error
	Get(ctx context.Context, indentID string) (*entity.Sourcing, error)
	UpdateCAS(ctx context.Context, s *entity.Sourcing) error
}

// EnquiryStore persists enquiries.
type EnquiryStore interface {
	Create(ctx context.Context, e *entity.Enquiry) error
	Get(ctx context.Context, id string) (*entity.Enquiry, error)
	NextCode(ctx context.Context) (string, error)
}

// QuotationStore persists quotations. ListByEnquiry returns quotations with
// items, oldest first, so the last entry per vendor is the newest revision.
type QuotationStore interface {
	Create(ctx context.Context, q *entity.Quotation) error
	ListByEnquiry(ctx context.Context, enquiryID string) ([]entity.Quotation, error)
}

// PurchaseOrderStore persists purchase orders.
type PurchaseOrderStore interface {
	Create(ctx context.Context, po *entity.PurchaseOrder) error
	Get(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	GetByIndent(ctx context.Context, indentID string) (*entity.PurchaseOrder, error)
	NextCode(ctx context.Context) (string, error)
}

// DeliveryStore persists delivery records. AppendLogCAS writes the new log
// entry together with the recomputed record in one atomic step, guarded by
// the record version.
type DeliveryStore interface {
	Create(ctx context.Context, rec *entity.DeliveryRecord) error
	Get(ctx context.Context, poID string) (*entity.DeliveryRecord, error)
	AppendLogCAS(ctx context.Context, rec *entity.DeliveryRecord, log *entity.DeliveryLog) error
}

// ActivityStore keeps the append-only audit trail.
type ActivityStore interface {
	Append(ctx context.Context, log *entity.ActivityLog) error
	ListByEntity(ctx context.Context, entityType, entityID string) ([]entity.ActivityLog, error)
}

// Stores bundles every store a deployment provides.
type Stores struct {
	Indents    IndentStore
	Vendors    VendorStore
	Sourcing   SourcingStore
	Enquiries  EnquiryStore
	Quotations QuotationStore
	POs        PurchaseOrderStore
	Deliveries DeliveryStore
	Activity   ActivityStore
}

// Services is the procurement service set.
type Services struct {
	Indent    *IndentService
	Approval  *ApprovalService
	Sourcing  *SourcingService
	Delivery  *DeliveryService
	Vendor    *VendorService
	Dashboard *DashboardService
}

// NewServices wires the service set over one store bundle.
func NewServices(stores Stores, pipelines *pipeline.Set, events EventPublisher, logger *zap.Logger) *Services {
	if events == nil {
		events = NopPublisher()
	}
	dashboard := NewDashboardService(stores.Indents, nil, logger)

	approval := NewApprovalService(stores.Indents, stores.Activity, pipelines, events, logger)
	approval.SetDashboard(dashboard)

	return &Services{
		Indent:    NewIndentService(stores.Indents, stores.Activity, pipelines, logger),
		Approval:  approval,
		Sourcing:  NewSourcingService(stores, events, logger),
		Delivery:  NewDeliveryService(stores.Deliveries, stores.POs, stores.Vendors, stores.Activity, events, logger),
		Vendor:    NewVendorService(stores.Vendors, stores.Activity, logger),
		Dashboard: dashboard,
	}
}

// newID returns a 32-char primary key.
func newID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
