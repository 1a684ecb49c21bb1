package service_test

import (
	"context"
	"testing"

	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/apperr"
	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/entity"
	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/service"
)

func TestRegisterVendor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	v, err := env.svcs.Vendor.Register(ctx, &service.RegisterVendorRequest{
		Name:       "TechnoLab Instruments",
		Categories: []string{"lab-equipment", "electronics"},
		Email:      "sales@technolab.example.in",
		GSTIN:      "27AAACT1234F1Z5",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if v.Status != entity.VendorStatusActive {
		t.Errorf("status = %s, want active", v.Status)
	}
	if v.Code == "" {
		t.Error("vendor code should be assigned")
	}

	if _, err := env.svcs.Vendor.Register(ctx, &service.RegisterVendorRequest{Name: "  "}); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("blank name should be validation error, got %v", err)
	}
}

func TestUpdateVendorPartial(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	v := seedVendor(t, env, "TechnoLab")

	email := "new@technolab.example.in"
	got, err := env.svcs.Vendor.Update(ctx, v.ID, &service.UpdateVendorRequest{Email: &email})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Email != email {
		t.Errorf("email = %s, want %s", got.Email, email)
	}
	if got.Name != v.Name {
		t.Errorf("name should be untouched, got %s", got.Name)
	}
}

func TestDeactivateVendor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	v := seedVendor(t, env, "TechnoLab")

	got, err := env.svcs.Vendor.Deactivate(ctx, v.ID, actor("cpd"))
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if got.Status != entity.VendorStatusInactive {
		t.Errorf("status = %s, want inactive", got.Status)
	}

	// repeat deactivation is a state error
	if _, err := env.svcs.Vendor.Deactivate(ctx, v.ID, actor("cpd")); !apperr.IsKind(err, apperr.KindState) {
		t.Errorf("double deactivate should be state error, got %v", err)
	}

	// the record stays resolvable
	if _, err := env.svcs.Vendor.Get(ctx, v.ID); err != nil {
		t.Errorf("deactivated vendor should still resolve: %v", err)
	}
}

func TestListVendorsFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := seedVendor(t, env, "Alpha Labs")
	seedVendor(t, env, "Beta Traders")
	if _, err := env.svcs.Vendor.Deactivate(ctx, a.ID, actor("cpd")); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	items, total, err := env.svcs.Vendor.List(ctx, service.VendorFilter{Status: entity.VendorStatusActive, Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("active vendors = %d (total %d), want 1", len(items), total)
	}
	if items[0].Name != "Beta Traders" {
		t.Errorf("active vendor = %s, want Beta Traders", items[0].Name)
	}

	_, total, err = env.svcs.Vendor.List(ctx, service.VendorFilter{Category: "lab-equipment", Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("list by category: %v", err)
	}
	if total != 2 {
		t.Errorf("lab-equipment vendors = %d, want 2", total)
	}
}

func TestVendorNotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svcs.Vendor.Get(context.Background(), "missing")
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("expected not-found error, got %v", err)
	}
}
