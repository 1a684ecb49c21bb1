package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/apperr"
	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/entity"
	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/service"
)

// seedIssuedPO runs the full flow up to an issued PO and returns it with the
// winning vendor. The PO requests 5 units in total.
func seedIssuedPO(t *testing.T, env *testEnv) (*entity.PurchaseOrder, *entity.Vendor) {
	t.Helper()
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
	return po, v
}

func TestLogDeliveryAccumulates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	po, _ := seedIssuedPO(t, env)

	rec, err := env.svcs.Delivery.LogDelivery(ctx, po.ID, actor("store"), time.Time{}, 2, "first lot")
	if err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if rec.QuantityDelivered != 2 {
		t.Errorf("delivered = %d, want 2", rec.QuantityDelivered)
	}
	if rec.Status != entity.DeliveryStatusPartiallyReceived {
		t.Errorf("status = %s, want partially_received", rec.Status)
	}

	rec, err = env.svcs.Delivery.LogDelivery(ctx, po.ID, actor("store"), time.Time{}, 3, "balance")
	if err != nil {
		t.Fatalf("second delivery: %v", err)
	}
	if rec.QuantityDelivered != 5 {
		t.Errorf("delivered = %d, want 5", rec.QuantityDelivered)
	}
	if rec.Status != entity.DeliveryStatusFullyReceived {
		t.Errorf("status = %s, want fully_received", rec.Status)
	}
}

func TestLogDeliveryRejectsNonPositive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	po, _ := seedIssuedPO(t, env)

	for _, qty := range []int64{0, -3} {
		_, err := env.svcs.Delivery.LogDelivery(ctx, po.ID, actor("store"), time.Time{}, qty, "")
		if !apperr.IsKind(err, apperr.KindValidation) {
			t.Errorf("quantity %d should be validation error, got %v", qty, err)
		}
	}
}

func TestFullyReceivedIsTerminal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	po, vendor := seedIssuedPO(t, env)

	if _, err := env.svcs.Delivery.LogDelivery(ctx, po.ID, actor("store"), time.Time{}, 5, "all at once"); err != nil {
		t.Fatalf("delivery: %v", err)
	}

	_, err := env.svcs.Delivery.LogDelivery(ctx, po.ID, actor("store"), time.Time{}, 1, "extra")
	if !apperr.IsKind(err, apperr.KindState) {
		t.Errorf("delivery after fully received should be state error, got %v", err)
	}

	// completion bumps the vendor counter exactly once
	v, err := env.svcs.Vendor.Get(ctx, vendor.ID)
	if err != nil {
		t.Fatalf("get vendor: %v", err)
	}
	if v.CompletedOrders != 1 {
		t.Errorf("completed orders = %d, want 1", v.CompletedOrders)
	}
}

func TestDeliveryStatusFor(t *testing.T) {
	cases := []struct {
		delivered, requested int64
		want                 string
	}{
		{0, 5, entity.DeliveryStatusNotReceived},
		{1, 5, entity.DeliveryStatusPartiallyReceived},
		{4, 5, entity.DeliveryStatusPartiallyReceived},
		{5, 5, entity.DeliveryStatusFullyReceived},
		{7, 5, entity.DeliveryStatusFullyReceived},
	}
	for _, tc := range cases {
		if got := entity.DeliveryStatusFor(tc.delivered, tc.requested); got != tc.want {
			t.Errorf("DeliveryStatusFor(%d, %d) = %s, want %s", tc.delivered, tc.requested, got, tc.want)
		}
	}
}

func TestDeliveryLogsAreAppendOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	po, _ := seedIssuedPO(t, env)

	day := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := int64(1); i <= 3; i++ {
		if _, err := env.svcs.Delivery.LogDelivery(ctx, po.ID, actor("store"), day.AddDate(0, 0, int(i)), 1, ""); err != nil {
			t.Fatalf("delivery %d: %v", i, err)
		}
	}

	rec, err := env.svcs.Delivery.Get(ctx, po.ID)
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if len(rec.Logs) != 3 {
		t.Fatalf("logs = %d, want 3", len(rec.Logs))
	}
	var sum int64
	for _, l := range rec.Logs {
		sum += l.Quantity
	}
	if sum != rec.QuantityDelivered {
		t.Errorf("log sum %d != delivered %d", sum, rec.QuantityDelivered)
	}

	if got := env.events.byType(service.EventDeliveryLogged); len(got) != 3 {
		t.Errorf("DeliveryLogged events = %d, want 3", len(got))
	}
}
