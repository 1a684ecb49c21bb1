package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/apperr"
	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/assembler"
	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/entity"
)

// SourcingService drives an approved indent through enquiry, quotation
// comparison, vendor finalization and purchase-order issuance.
type SourcingService struct {
	stores Stores
	events EventPublisher
	logger *zap.Logger
}

func NewSourcingService(stores Stores, events EventPublisher, logger *zap.Logger) *SourcingService {
	return &SourcingService{stores: stores, events: events, logger: logger}
}

// EnquiryTerms are the commercial terms attached to an enquiry.
type EnquiryTerms struct {
	Delivery string `json:"delivery"`
	Payment  string `json:"payment"`
	Warranty string `json:"warranty"`
	Packing  string `json:"packing"`
}

// Get returns the sourcing state of one indent.
func (s *SourcingService) Get(ctx context.Context, indentID string) (*entity.Sourcing, error) {
	return s.sourcingFor(ctx, indentID)
}

// SendEnquiry creates an enquiry to the given vendors and moves sourcing to
// inquiry_sent. Re-sending before any quotation arrives creates a fresh
// enquiry that supersedes the previous one.
func (s *SourcingService) SendEnquiry(ctx context.Context, indentID string, actor Actor, vendorIDs []string, terms EnquiryTerms) (*entity.Enquiry, error) {
	if len(vendorIDs) == 0 {
		return nil, apperr.Validationf("an enquiry needs at least one vendor")
	}
	seen := make(map[string]bool, len(vendorIDs))
	for _, id := range vendorIDs {
		if seen[id] {
			return nil, apperr.Validationf("vendor %s invited twice", id)
		}
		seen[id] = true
		v, err := s.stores.Vendors.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if v.Status != entity.VendorStatusActive {
			return nil, apperr.Validationf("vendor %s is not active", v.Code)
		}
	}

	src, err := s.sourcingFor(ctx, indentID)
	if err != nil {
		return nil, err
	}
	if src.Status != entity.SourcingStatusPendingInquiry && src.Status != entity.SourcingStatusInquirySent {
		return nil, apperr.Statef("enquiry cannot be sent while sourcing is %s", src.Status)
	}

	enq := &entity.Enquiry{
		ID:             newID(),
		IndentID:       indentID,
		InvitedVendors: entity.StringArray(vendorIDs),
		DeliveryTerms:  terms.Delivery,
		PaymentTerms:   terms.Payment,
		WarrantyTerms:  terms.Warranty,
		PackingTerms:   terms.Packing,
		CreatedAt:      time.Now(),
	}
	// The transition commits before the enquiry is written, so a version
	// conflict fails the send with nothing on record.
	from, prevEnquiry := src.Status, src.EnquiryID
	src.EnquiryID = &enq.ID
	src.Status = entity.SourcingStatusInquirySent
	if err := s.stores.Sourcing.UpdateCAS(ctx, src); err != nil {
		return nil, err
	}
	code, err := s.stores.Enquiries.NextCode(ctx)
	if err != nil {
		src.Status, src.EnquiryID = from, prevEnquiry
		s.rollbackSourcing(ctx, src)
		return nil, err
	}
	enq.Code = code
	if err := s.stores.Enquiries.Create(ctx, enq); err != nil {
		src.Status, src.EnquiryID = from, prevEnquiry
		s.rollbackSourcing(ctx, src)
		return nil, err
	}

	s.logSourcing(ctx, src, "send_enquiry", from, src.Status, actor, entity.JSONB{
		"enquiry_id": enq.ID,
		"vendors":    len(vendorIDs),
	})
	return enq, nil
}

// QuotationItemInput is one priced line submitted by a vendor.
type QuotationItemInput struct {
	ItemName   string `json:"item_name" binding:"required"`
	Make       string `json:"make"`
	Quantity   int64  `json:"quantity"`
	UnitPrice  int64  `json:"unit_price"`
	TotalPrice int64  `json:"total_price"`
}

// QuotationTerms are the commercial terms of a quotation.
type QuotationTerms struct {
	Payment  string `json:"payment"`
	Warranty string `json:"warranty"`
}

// RecordQuotation stores a vendor's quotation against an enquiry. A repeat
// submission by the same vendor becomes a revision of its previous one.
func (s *SourcingService) RecordQuotation(ctx context.Context, enquiryID, vendorID string, items []QuotationItemInput, deliveryDays int, terms QuotationTerms) (*entity.Quotation, error) {
	if len(items) == 0 {
		return nil, apperr.Validationf("a quotation needs at least one item")
	}
	if deliveryDays <= 0 {
		return nil, apperr.Validationf("delivery days must be positive")
	}

	enq, err := s.stores.Enquiries.Get(ctx, enquiryID)
	if err != nil {
		return nil, err
	}
	invited := false
	for _, id := range enq.InvitedVendors {
		if id == vendorID {
			invited = true
			break
		}
	}
	if !invited {
		return nil, apperr.Validationf("vendor %s was not invited to this enquiry", vendorID)
	}

	src, err := s.stores.Sourcing.Get(ctx, enq.IndentID)
	if err != nil {
		return nil, err
	}
	if src.EnquiryID == nil || *src.EnquiryID != enquiryID {
		return nil, apperr.Statef("enquiry %s has been superseded", enq.Code)
	}
	if src.Status != entity.SourcingStatusInquirySent && src.Status != entity.SourcingStatusQuotationReceived {
		return nil, apperr.Statef("quotations are not accepted while sourcing is %s", src.Status)
	}

	q := &entity.Quotation{
		ID:           newID(),
		EnquiryID:    enquiryID,
		VendorID:     vendorID,
		DeliveryDays: deliveryDays,
		PaymentTerms: terms.Payment,
		Warranty:     terms.Warranty,
		SubmittedAt:  time.Now(),
	}
	for i, item := range items {
		if strings.TrimSpace(item.ItemName) == "" {
			return nil, apperr.Validationf("item %d: name must not be empty", i)
		}
		if item.Quantity < 0 || item.UnitPrice < 0 {
			return nil, apperr.Validationf("item %d: negative quantity or price", i)
		}
		total := item.Quantity * item.UnitPrice
		if item.TotalPrice != 0 && item.TotalPrice != total {
			return nil, apperr.Validationf("item %d: total price %d does not equal quantity × unit price", i, item.TotalPrice)
		}
		q.Items = append(q.Items, entity.QuotationItem{
			ID:          newID(),
			QuotationID: q.ID,
			ItemName:    item.ItemName,
			Make:        item.Make,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  total,
			SortOrder:   i + 1,
		})
	}

	// Link to this vendor's previous quotation so the revision chain is
	// walkable; the newest revision wins for comparison.
	if prev := s.latestQuotation(ctx, enquiryID, vendorID); prev != nil {
		q.RevisionOf = &prev.ID
	}

	// First quotation flips sourcing to quotation_received; the transition
	// commits before the quotation is written, so a version conflict fails
	// the whole submission.
	if src.Status == entity.SourcingStatusInquirySent {
		from := src.Status
		src.Status = entity.SourcingStatusQuotationReceived
		if err := s.stores.Sourcing.UpdateCAS(ctx, src); err != nil {
			return nil, err
		}
		if err := s.stores.Quotations.Create(ctx, q); err != nil {
			src.Status = from
			s.rollbackSourcing(ctx, src)
			return nil, err
		}
		s.logSourcing(ctx, src, "record_quotation", from, src.Status, Actor{UserID: vendorID, Role: "vendor"}, nil)
	} else if err := s.stores.Quotations.Create(ctx, q); err != nil {
		return nil, err
	}

	return q, nil
}

// ComparisonRow is one vendor's line in the quotation comparison statement.
type ComparisonRow struct {
	VendorID          string `json:"vendor_id"`
	VendorName        string `json:"vendor_name"`
	QuotationID       string `json:"quotation_id"`
	TotalPrice        int64  `json:"total_price"`
	DeliveryDays      int    `json:"delivery_days"`
	IsBestPrice       bool   `json:"is_best_price"`
	IsFastestDelivery bool   `json:"is_fastest_delivery"`
}

// CompareQuotations ranks the latest quotation of each responding vendor.
// Deterministic and side-effect free; ties break by invitation order.
func (s *SourcingService) CompareQuotations(ctx context.Context, enquiryID string) ([]ComparisonRow, error) {
	enq, err := s.stores.Enquiries.Get(ctx, enquiryID)
	if err != nil {
		return nil, err
	}
	quotes, err := s.stores.Quotations.ListByEnquiry(ctx, enquiryID)
	if err != nil {
		return nil, err
	}

	// Oldest first, so the last quotation per vendor is the newest revision.
	latest := make(map[string]*entity.Quotation, len(quotes))
	for i := range quotes {
		latest[quotes[i].VendorID] = &quotes[i]
	}

	var rows []ComparisonRow
	for _, vendorID := range enq.InvitedVendors {
		q, ok := latest[vendorID]
		if !ok {
			continue
		}
		name := vendorID
		if v, err := s.stores.Vendors.Get(ctx, vendorID); err == nil {
			name = v.Name
		}
		rows = append(rows, ComparisonRow{
			VendorID:     vendorID,
			VendorName:   name,
			QuotationID:  q.ID,
			TotalPrice:   q.TotalPrice(),
			DeliveryDays: q.DeliveryDays,
		})
	}

	if len(rows) > 0 {
		best, fastest := 0, 0
		for i, row := range rows {
			if row.TotalPrice < rows[best].TotalPrice {
				best = i
			}
			if row.DeliveryDays < rows[fastest].DeliveryDays {
				fastest = i
			}
		}
		rows[best].IsBestPrice = true
		rows[fastest].IsFastestDelivery = true
	}

	return rows, nil
}

// FinalizeVendor selects the winning vendor. Allowed from quotation_received,
// and again before PO issuance to override a previous selection; every
// selection is audited.
func (s *SourcingService) FinalizeVendor(ctx context.Context, indentID string, actor Actor, vendorID string) (*entity.Sourcing, error) {
	src, err := s.stores.Sourcing.Get(ctx, indentID)
	if err != nil {
		return nil, err
	}
	if src.Status != entity.SourcingStatusQuotationReceived && src.Status != entity.SourcingStatusVendorFinalized {
		return nil, apperr.Statef("vendor cannot be finalized while sourcing is %s", src.Status)
	}
	if src.EnquiryID == nil {
		return nil, apperr.Statef("no enquiry exists for this indent")
	}
	if s.latestQuotation(ctx, *src.EnquiryID, vendorID) == nil {
		return nil, apperr.Statef("no quotation from vendor %s exists for this enquiry", vendorID)
	}

	meta := entity.JSONB{"vendor_id": vendorID}
	if src.FinalizedVendorID != nil && *src.FinalizedVendorID != vendorID {
		meta["replaces_vendor_id"] = *src.FinalizedVendorID
	}

	from := src.Status
	src.FinalizedVendorID = &vendorID
	src.Status = entity.SourcingStatusVendorFinalized
	if err := s.stores.Sourcing.UpdateCAS(ctx, src); err != nil {
		return nil, err
	}

	s.logSourcing(ctx, src, "finalize_vendor", from, src.Status, actor, meta)
	s.events.Publish(Event{Type: EventVendorFinalized, ID: indentID, Status: src.Status, Data: map[string]interface{}{
		"vendor_id": vendorID,
	}})
	return src, nil
}

// IssuePurchaseOrder builds the PO from the finalized vendor's latest
// quotation and issues it. Idempotent: a second call returns the existing PO.
func (s *SourcingService) IssuePurchaseOrder(ctx context.Context, indentID string, actor Actor, gstPercent float64) (*entity.PurchaseOrder, error) {
	src, err := s.stores.Sourcing.Get(ctx, indentID)
	if err != nil {
		return nil, err
	}
	if src.Status == entity.SourcingStatusPOIssued {
		return s.stores.POs.GetByIndent(ctx, indentID)
	}
	if src.Status != entity.SourcingStatusVendorFinalized {
		return nil, apperr.Statef("purchase order cannot be issued while sourcing is %s", src.Status)
	}

	quote := s.latestQuotation(ctx, *src.EnquiryID, *src.FinalizedVendorID)
	if quote == nil {
		return nil, apperr.Statef("finalized vendor has no quotation on record")
	}

	items := make([]assembler.Item, 0, len(quote.Items))
	for _, qi := range quote.Items {
		items = append(items, assembler.Item{
			Name:      qi.ItemName,
			Make:      qi.Make,
			Quantity:  qi.Quantity,
			UnitPrice: qi.UnitPrice,
		})
	}
	totals, err := assembler.Assemble(items, gstPercent)
	if err != nil {
		return nil, err
	}

	// The transition commits before the PO is written, so a version conflict
	// fails the issue with nothing on record and the retry creates exactly
	// one purchase order.
	from := src.Status
	src.Status = entity.SourcingStatusPOIssued
	if err := s.stores.Sourcing.UpdateCAS(ctx, src); err != nil {
		return nil, err
	}

	code, err := s.stores.POs.NextCode(ctx)
	if err != nil {
		src.Status = from
		s.rollbackSourcing(ctx, src)
		return nil, err
	}

	now := time.Now()
	po := &entity.PurchaseOrder{
		ID:            newID(),
		Code:          code,
		IndentID:      indentID,
		VendorID:      *src.FinalizedVendorID,
		Subtotal:      totals.Subtotal,
		GSTPercent:    gstPercent,
		GSTAmount:     totals.GSTAmount,
		GrandTotal:    totals.GrandTotal,
		AmountInWords: totals.AmountInWords,
		Status:        entity.POStatusIssued,
		IssuedAt:      &now,
	}
	var requested int64
	for i, qi := range quote.Items {
		requested += qi.Quantity
		po.Items = append(po.Items, entity.POItem{
			ID:         newID(),
			POID:       po.ID,
			ItemName:   qi.ItemName,
			Make:       qi.Make,
			Quantity:   qi.Quantity,
			UnitPrice:  qi.UnitPrice,
			TotalPrice: qi.TotalPrice,
			SortOrder:  i + 1,
		})
	}

	if err := s.stores.POs.Create(ctx, po); err != nil {
		src.Status = from
		s.rollbackSourcing(ctx, src)
		return nil, err
	}

	// Delivery tracking opens with the PO.
	rec := &entity.DeliveryRecord{
		POID:              po.ID,
		QuantityRequested: requested,
		Status:            entity.DeliveryStatusNotReceived,
	}
	if err := s.stores.Deliveries.Create(ctx, rec); err != nil {
		s.logger.Warn("failed to open delivery record", zap.String("po", po.ID), zap.Error(err))
	}

	if v, err := s.stores.Vendors.Get(ctx, po.VendorID); err == nil {
		v.TotalOrders++
		if err := s.stores.Vendors.Update(ctx, v); err != nil {
			s.logger.Warn("failed to bump vendor order count", zap.String("vendor", v.ID), zap.Error(err))
		}
	}

	s.logSourcing(ctx, src, "issue_po", from, src.Status, actor, entity.JSONB{
		"po_id":       po.ID,
		"po_code":     po.Code,
		"grand_total": po.GrandTotal,
	})
	s.events.Publish(Event{Type: EventPurchaseOrderIssued, ID: po.ID, Status: po.Status, Data: map[string]interface{}{
		"indent_id":   indentID,
		"vendor_id":   po.VendorID,
		"grand_total": po.GrandTotal,
	}})

	s.logger.Info("purchase order issued",
		zap.String("po", po.Code),
		zap.String("indent", indentID),
		zap.String("vendor", po.VendorID),
		zap.Int64("grand_total", po.GrandTotal),
	)
	return po, nil
}

// GetPurchaseOrder returns the PO of one indent.
func (s *SourcingService) GetPurchaseOrder(ctx context.Context, indentID string) (*entity.PurchaseOrder, error) {
	return s.stores.POs.GetByIndent(ctx, indentID)
}

// ExportComparison renders the comparison statement as a spreadsheet.
func (s *SourcingService) ExportComparison(ctx context.Context, enquiryID string) (*excelize.File, string, error) {
	enq, err := s.stores.Enquiries.Get(ctx, enquiryID)
	if err != nil {
		return nil, "", err
	}
	rows, err := s.CompareQuotations(ctx, enquiryID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	sheet := "Comparison"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Vendor", "Total Price", "Delivery Days", "Best Price", "Fastest Delivery"}
	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
	}

	mark := func(b bool) string {
		if b {
			return "Yes"
		}
		return ""
	}
	for i, row := range rows {
		r := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", r), row.VendorName)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", r), row.TotalPrice)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", r), row.DeliveryDays)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", r), mark(row.IsBestPrice))
		f.SetCellValue(sheet, fmt.Sprintf("E%d", r), mark(row.IsFastestDelivery))
	}

	filename := fmt.Sprintf("comparison-%s.xlsx", enq.Code)
	return f, filename, nil
}

// sourcingFor returns the sourcing record of an approved indent, creating it
// lazily on first touch.
// rollbackSourcing undoes a committed sourcing transition after a follow-up
// write failed. The caller restores the previous field values first.
func (s *SourcingService) rollbackSourcing(ctx context.Context, src *entity.Sourcing) {
	if err := s.stores.Sourcing.UpdateCAS(ctx, src); err != nil {
		s.logger.Error("sourcing rollback failed",
			zap.String("indent", src.IndentID),
			zap.String("status", src.Status),
			zap.Error(err),
		)
	}
}

func (s *SourcingService) sourcingFor(ctx context.Context, indentID string) (*entity.Sourcing, error) {
	ind, err := s.stores.Indents.Get(ctx, indentID)
	if err != nil {
		return nil, err
	}

	src, err := s.stores.Sourcing.Get(ctx, indentID)
	if err == nil {
		return src, nil
	}
	if !apperr.IsKind(err, apperr.KindNotFound) {
		return nil, err
	}

	if ind.Status != entity.IndentStatusApproved {
		return nil, apperr.Statef("indent %s is not approved", ind.Code)
	}
	src = &entity.Sourcing{
		IndentID: indentID,
		Status:   entity.SourcingStatusPendingInquiry,
	}
	if err := s.stores.Sourcing.Create(ctx, src); err != nil {
		return nil, err
	}
	return src, nil
}

// latestQuotation returns the newest revision a vendor submitted for an
// enquiry, or nil when none exists.
func (s *SourcingService) latestQuotation(ctx context.Context, enquiryID, vendorID string) *entity.Quotation {
	quotes, err := s.stores.Quotations.ListByEnquiry(ctx, enquiryID)
	if err != nil {
		return nil
	}
	var latest *entity.Quotation
	for i := range quotes {
		if quotes[i].VendorID == vendorID {
			latest = &quotes[i]
		}
	}
	return latest
}

func (s *SourcingService) logSourcing(ctx context.Context, src *entity.Sourcing, action, from, to string, actor Actor, meta entity.JSONB) {
	log := &entity.ActivityLog{
		ID:         newID(),
		EntityType: "sourcing",
		EntityID:   src.IndentID,
		Action:     action,
		FromStatus: from,
		ToStatus:   to,
		Metadata:   meta,
		ActorID:    actor.UserID,
		ActorRole:  actor.Role,
		CreatedAt:  time.Now(),
	}
	if err := s.stores.Activity.Append(ctx, log); err != nil {
		s.logger.Warn("failed to append activity log", zap.String("indent", src.IndentID), zap.Error(err))
	}
}
