package service_test

import (
	"context"
	"testing"

	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/apperr"
	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/entity"
	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/service"
)

// seedApprovedIndent walks an indent to approved and returns it.
func seedApprovedIndent(t *testing.T, env *testEnv) *entity.Indent {
	t.Helper()
	ind := seedIndent(t, env)
	return approveFully(t, env, ind.ID)
}

func quoteItems(unitPrice int64) []service.QuotationItemInput {
	return []service.QuotationItemInput{
		{ItemName: "Oscilloscope probe", Quantity: 4, UnitPrice: unitPrice},
		{ItemName: "Function generator", Quantity: 1, UnitPrice: 4800},
	}
}

func TestSourcingStartsPendingInquiry(t *testing.T) {
	env := newTestEnv(t)
	ind := seedApprovedIndent(t, env)

	src, err := env.svcs.Sourcing.Get(context.Background(), ind.ID)
	if err != nil {
		t.Fatalf("get sourcing: %v", err)
	}
	if src.Status != entity.SourcingStatusPendingInquiry {
		t.Errorf("status = %s, want pending_inquiry", src.Status)
	}
}

func TestSourcingUnavailableBeforeApproval(t *testing.T) {
	env := newTestEnv(t)
	ind := seedIndent(t, env)

	_, err := env.svcs.Sourcing.Get(context.Background(), ind.ID)
	if !apperr.IsKind(err, apperr.KindState) {
		t.Errorf("sourcing before approval should be state error, got %v", err)
	}
}

func TestSendEnquiryValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ind := seedApprovedIndent(t, env)
	v := seedVendor(t, env, "TechnoLab")

	if _, err := env.svcs.Sourcing.SendEnquiry(ctx, ind.ID, actor("cpd"), nil, service.EnquiryTerms{}); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("empty vendor list should be validation error, got %v", err)
	}
	if _, err := env.svcs.Sourcing.SendEnquiry(ctx, ind.ID, actor("cpd"), []string{v.ID, v.ID}, service.EnquiryTerms{}); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("duplicate vendor should be validation error, got %v", err)
	}

	inactive := seedVendor(t, env, "Dormant Supplies")
	if _, err := env.svcs.Vendor.Deactivate(ctx, inactive.ID, actor("cpd")); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := env.svcs.Sourcing.SendEnquiry(ctx, ind.ID, actor("cpd"), []string{inactive.ID}, service.EnquiryTerms{}); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("inactive vendor should be validation error, got %v", err)
	}
}

func TestResendEnquirySupersedesPrevious(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ind := seedApprovedIndent(t, env)
	v1 := seedVendor(t, env, "TechnoLab")
	v2 := seedVendor(t, env, "Scientific Traders")

	first, err := env.svcs.Sourcing.SendEnquiry(ctx, ind.ID, actor("cpd"), []string{v1.ID}, service.EnquiryTerms{})
	if err != nil {
		t.Fatalf("first enquiry: %v", err)
	}
	second, err := env.svcs.Sourcing.SendEnquiry(ctx, ind.ID, actor("cpd"), []string{v1.ID, v2.ID}, service.EnquiryTerms{})
	if err != nil {
		t.Fatalf("second enquiry: %v", err)
	}
	if first.ID == second.ID {
		t.Error("re-send must create a fresh enquiry")
	}

	// quoting against the superseded enquiry is refused
	_, err = env.svcs.Sourcing.RecordQuotation(ctx, first.ID, v1.ID, quoteItems(4500), 10, service.QuotationTerms{})
	if !apperr.IsKind(err, apperr.KindState) {
		t.Errorf("quotation against superseded enquiry should be state error, got %v", err)
	}

	// the current enquiry accepts quotations
	if _, err := env.svcs.Sourcing.RecordQuotation(ctx, second.ID, v1.ID, quoteItems(4500), 10, service.QuotationTerms{}); err != nil {
		t.Fatalf("quotation against current enquiry: %v", err)
	}
}

func TestRecordQuotationChecksInvitation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ind := seedApprovedIndent(t, env)
	v1 := seedVendor(t, env, "TechnoLab")
	outsider := seedVendor(t, env, "Uninvited Co")

	enq, err := env.svcs.Sourcing.SendEnquiry(ctx, ind.ID, actor("cpd"), []string{v1.ID}, service.EnquiryTerms{})
	if err != nil {
		t.Fatalf("send enquiry: %v", err)
	}

	_, err = env.svcs.Sourcing.RecordQuotation(ctx, enq.ID, outsider.ID, quoteItems(4500), 10, service.QuotationTerms{})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("uninvited vendor quotation should be validation error, got %v", err)
	}
}

func TestRecordQuotationServerComputesTotals(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ind := seedApprovedIndent(t, env)
	v1 := seedVendor(t, env, "TechnoLab")

	enq, err := env.svcs.Sourcing.SendEnquiry(ctx, ind.ID, actor("cpd"), []string{v1.ID}, service.EnquiryTerms{})
	if err != nil {
		t.Fatalf("send enquiry: %v", err)
	}

	// a mismatched client-supplied total is rejected
	bad := []service.QuotationItemInput{{ItemName: "Probe", Quantity: 2, UnitPrice: 100, TotalPrice: 150}}
	if _, err := env.svcs.Sourcing.RecordQuotation(ctx, enq.ID, v1.ID, bad, 10, service.QuotationTerms{}); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("mismatched total should be validation error, got %v", err)
	}

	q, err := env.svcs.Sourcing.RecordQuotation(ctx, enq.ID, v1.ID, quoteItems(4500), 10, service.QuotationTerms{})
	if err != nil {
		t.Fatalf("record quotation: %v", err)
	}
	if q.TotalPrice() != 4*4500+4800 {
		t.Errorf("total = %d, want %d", q.TotalPrice(), 4*4500+4800)
	}
}

func TestQuotationRevisions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ind := seedApprovedIndent(t, env)
	v1 := seedVendor(t, env, "TechnoLab")

	enq, err := env.svcs.Sourcing.SendEnquiry(ctx, ind.ID, actor("cpd"), []string{v1.ID}, service.EnquiryTerms{})
	if err != nil {
		t.Fatalf("send enquiry: %v", err)
	}

	first, err := env.svcs.Sourcing.RecordQuotation(ctx, enq.ID, v1.ID, quoteItems(5000), 12, service.QuotationTerms{})
	if err != nil {
		t.Fatalf("first quotation: %v", err)
	}
	second, err := env.svcs.Sourcing.RecordQuotation(ctx, enq.ID, v1.ID, quoteItems(4500), 10, service.QuotationTerms{})
	if err != nil {
		t.Fatalf("second quotation: %v", err)
	}

	if second.RevisionOf == nil || *second.RevisionOf != first.ID {
		t.Errorf("second quotation should revise the first, got %v", second.RevisionOf)
	}

	// only the newest revision appears in comparison
	rows, err := env.svcs.Sourcing.CompareQuotations(ctx, enq.ID)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("comparison rows = %d, want 1", len(rows))
	}
	if rows[0].QuotationID != second.ID {
		t.Errorf("comparison uses quotation %s, want newest %s", rows[0].QuotationID, second.ID)
	}
}

func TestCompareQuotationsMarksBestAndFastest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ind := seedApprovedIndent(t, env)
	vA := seedVendor(t, env, "Vendor A")
	vB := seedVendor(t, env, "Vendor B")

	enq, err := env.svcs.Sourcing.SendEnquiry(ctx, ind.ID, actor("cpd"), []string{vA.ID, vB.ID}, service.EnquiryTerms{})
	if err != nil {
		t.Fatalf("send enquiry: %v", err)
	}

	// A: 23500 total, 10 days. B: 22800 total, 12 days.
	itemsA := []service.QuotationItemInput{
		{ItemName: "Oscilloscope probe", Quantity: 4, UnitPrice: 4675},
		{ItemName: "Function generator", Quantity: 1, UnitPrice: 4800},
	}
	if _, err := env.svcs.Sourcing.RecordQuotation(ctx, enq.ID, vA.ID, itemsA, 10, service.QuotationTerms{}); err != nil {
		t.Fatalf("quote A: %v", err)
	}
	if _, err := env.svcs.Sourcing.RecordQuotation(ctx, enq.ID, vB.ID, quoteItems(4500), 12, service.QuotationTerms{}); err != nil {
		t.Fatalf("quote B: %v", err)
	}

	rows, err := env.svcs.Sourcing.CompareQuotations(ctx, enq.ID)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}

	// rows follow invitation order
	if rows[0].VendorID != vA.ID || rows[1].VendorID != vB.ID {
		t.Errorf("row order = %s,%s; want invitation order", rows[0].VendorID, rows[1].VendorID)
	}
	if !rows[1].IsBestPrice || rows[0].IsBestPrice {
		t.Errorf("best price should be vendor B: %+v", rows)
	}
	if !rows[0].IsFastestDelivery || rows[1].IsFastestDelivery {
		t.Errorf("fastest delivery should be vendor A: %+v", rows)
	}
}

func TestCompareQuotationsTieBreaksByInvitationOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ind := seedApprovedIndent(t, env)
	vA := seedVendor(t, env, "Vendor A")
	vB := seedVendor(t, env, "Vendor B")

	enq, err := env.svcs.Sourcing.SendEnquiry(ctx, ind.ID, actor("cpd"), []string{vA.ID, vB.ID}, service.EnquiryTerms{})
	if err != nil {
		t.Fatalf("send enquiry: %v", err)
	}

	// identical price and delivery: the earlier invitee wins both marks
	if _, err := env.svcs.Sourcing.RecordQuotation(ctx, enq.ID, vA.ID, quoteItems(4500), 10, service.QuotationTerms{}); err != nil {
		t.Fatalf("quote A: %v", err)
	}
	if _, err := env.svcs.Sourcing.RecordQuotation(ctx, enq.ID, vB.ID, quoteItems(4500), 10, service.QuotationTerms{}); err != nil {
		t.Fatalf("quote B: %v", err)
	}

	rows, err := env.svcs.Sourcing.CompareQuotations(ctx, enq.ID)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if !rows[0].IsBestPrice || !rows[0].IsFastestDelivery {
		t.Errorf("ties should resolve to first invitee: %+v", rows)
	}
	if rows[1].IsBestPrice || rows[1].IsFastestDelivery {
		t.Errorf("second invitee should carry no marks on tie: %+v", rows)
	}
}

func TestFinalizeVendorNeedsQuotation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ind := seedApprovedIndent(t, env)
	vA := seedVendor(t, env, "Vendor A")
	vB := seedVendor(t, env, "Vendor B")

	enq, err := env.svcs.Sourcing.SendEnquiry(ctx, ind.ID, actor("cpd"), []string{vA.ID, vB.ID}, service.EnquiryTerms{})
	if err != nil {
		t.Fatalf("send enquiry: %v", err)
	}

	// nothing quoted yet: finalize is out of state
	_, err = env.svcs.Sourcing.FinalizeVendor(ctx, ind.ID, actor("cpd"), vA.ID)
	if !apperr.IsKind(err, apperr.KindState) {
		t.Errorf("finalize before quotations should be state error, got %v", err)
	}

	if _, err := env.svcs.Sourcing.RecordQuotation(ctx, enq.ID, vA.ID, quoteItems(4500), 10, service.QuotationTerms{}); err != nil {
		t.Fatalf("quote A: %v", err)
	}

	// vendor B never quoted
	_, err = env.svcs.Sourcing.FinalizeVendor(ctx, ind.ID, actor("cpd"), vB.ID)
	if !apperr.IsKind(err, apperr.KindState) {
		t.Errorf("finalizing a vendor without quotation should be state error, got %v", err)
	}

	src, err := env.svcs.Sourcing.FinalizeVendor(ctx, ind.ID, actor("cpd"), vA.ID)
	if err != nil {
		t.Fatalf("finalize A: %v", err)
	}
	if src.Status != entity.SourcingStatusVendorFinalized {
		t.Errorf("status = %s, want vendor_finalized", src.Status)
	}
	if src.FinalizedVendorID == nil || *src.FinalizedVendorID != vA.ID {
		t.Errorf("finalized vendor = %v, want %s", src.FinalizedVendorID, vA.ID)
	}
}

func TestRefinalizeBeforeIssueOverrides(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ind := seedApprovedIndent(t, env)
	vA := seedVendor(t, env, "Vendor A")
	vB := seedVendor(t, env, "Vendor B")

	enq, err := env.svcs.Sourcing.SendEnquiry(ctx, ind.ID, actor("cpd"), []string{vA.ID, vB.ID}, service.EnquiryTerms{})
	if err != nil {
		t.Fatalf("send enquiry: %v", err)
	}
	for _, v := range []string{vA.ID, vB.ID} {
		if _, err := env.svcs.Sourcing.RecordQuotation(ctx, enq.ID, v, quoteItems(4500), 10, service.QuotationTerms{}); err != nil {
			t.Fatalf("quote %s: %v", v, err)
		}
	}

	if _, err := env.svcs.Sourcing.FinalizeVendor(ctx, ind.ID, actor("cpd"), vA.ID); err != nil {
		t.Fatalf("finalize A: %v", err)
	}
	src, err := env.svcs.Sourcing.FinalizeVendor(ctx, ind.ID, actor("cpd"), vB.ID)
	if err != nil {
		t.Fatalf("re-finalize B: %v", err)
	}
	if *src.FinalizedVendorID != vB.ID {
		t.Errorf("finalized vendor = %s, want %s", *src.FinalizedVendorID, vB.ID)
	}

	// after issue, re-finalizing is closed
	if _, err := env.svcs.Sourcing.IssuePurchaseOrder(ctx, ind.ID, actor("officer"), 18); err != nil {
		t.Fatalf("issue po: %v", err)
	}
	_, err = env.svcs.Sourcing.FinalizeVendor(ctx, ind.ID, actor("cpd"), vA.ID)
	if !apperr.IsKind(err, apperr.KindState) {
		t.Errorf("finalize after issue should be state error, got %v", err)
	}
}

func TestIssuePurchaseOrderComputesTotals(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ind := seedApprovedIndent(t, env)
	v := seedVendor(t, env, "TechnoLab")

	enq, err := env.svcs.Sourcing.SendEnquiry(ctx, ind.ID, actor("cpd"), []string{v.ID}, service.EnquiryTerms{})
	if err != nil {
		t.Fatalf("send enquiry: %v", err)
	}
	if _, err := env.svcs.Sourcing.RecordQuotation(ctx, enq.ID, v.ID, quoteItems(4500), 10, service.QuotationTerms{}); err != nil {
		t.Fatalf("quote: %v", err)
	}
	if _, err := env.svcs.Sourcing.FinalizeVendor(ctx, ind.ID, actor("cpd"), v.ID); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	po, err := env.svcs.Sourcing.IssuePurchaseOrder(ctx, ind.ID, actor("officer"), 18)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if po.Subtotal != 22800 {
		t.Errorf("subtotal = %d, want 22800", po.Subtotal)
	}
	if po.GSTAmount != 4104 {
		t.Errorf("gst = %d, want 4104", po.GSTAmount)
	}
	if po.GrandTotal != 26904 {
		t.Errorf("grand total = %d, want 26904", po.GrandTotal)
	}
	if po.AmountInWords != "Twenty Six Thousand Nine Hundred and Four" {
		t.Errorf("amount in words = %q", po.AmountInWords)
	}
	if po.Status != entity.POStatusIssued || po.IssuedAt == nil {
		t.Errorf("po should be issued with timestamp: status=%s issued_at=%v", po.Status, po.IssuedAt)
	}

	// delivery tracking opens with the PO
	rec, err := env.svcs.Delivery.Get(ctx, po.ID)
	if err != nil {
		t.Fatalf("delivery record: %v", err)
	}
	if rec.QuantityRequested != 5 {
		t.Errorf("quantity requested = %d, want 5", rec.QuantityRequested)
	}
	if rec.Status != entity.DeliveryStatusNotReceived {
		t.Errorf("delivery status = %s, want not_received", rec.Status)
	}

	// vendor bookkeeping
	got, err := env.svcs.Vendor.Get(ctx, v.ID)
	if err != nil {
		t.Fatalf("get vendor: %v", err)
	}
	if got.TotalOrders != 1 {
		t.Errorf("vendor total orders = %d, want 1", got.TotalOrders)
	}
}

func TestIssuePurchaseOrderIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ind := seedApprovedIndent(t, env)
	v := seedVendor(t, env, "TechnoLab")

	enq, err := env.svcs.Sourcing.SendEnquiry(ctx, ind.ID, actor("cpd"), []string{v.ID}, service.EnquiryTerms{})
	if err != nil {
		t.Fatalf("send enquiry: %v", err)
	}
	if _, err := env.svcs.Sourcing.RecordQuotation(ctx, enq.ID, v.ID, quoteItems(4500), 10, service.QuotationTerms{}); err != nil {
		t.Fatalf("quote: %v", err)
	}
	if _, err := env.svcs.Sourcing.FinalizeVendor(ctx, ind.ID, actor("cpd"), v.ID); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	first, err := env.svcs.Sourcing.IssuePurchaseOrder(ctx, ind.ID, actor("officer"), 18)
	if err != nil {
		t.Fatalf("first issue: %v", err)
	}
	second, err := env.svcs.Sourcing.IssuePurchaseOrder(ctx, ind.ID, actor("officer"), 18)
	if err != nil {
		t.Fatalf("second issue: %v", err)
	}
	if first.ID != second.ID || first.Code != second.Code {
		t.Errorf("repeat issue created a new PO: %s vs %s", first.Code, second.Code)
	}

	if got := env.events.byType(service.EventPurchaseOrderIssued); len(got) != 1 {
		t.Errorf("PurchaseOrderIssued events = %d, want 1", len(got))
	}
}
