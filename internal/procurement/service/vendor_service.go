package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/apperr"
	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/entity"
)

// VendorService is the vendor directory: registration, deactivation and
// order-completion bookkeeping. Vendors are never deleted.
type VendorService struct {
	vendors  VendorStore
	activity ActivityStore
	logger   *zap.Logger
}

func NewVendorService(vendors VendorStore, activity ActivityStore, logger *zap.Logger) *VendorService {
	return &VendorService{vendors: vendors, activity: activity, logger: logger}
}

// RegisterVendorRequest carries a new vendor record.
type RegisterVendorRequest struct {
	Name          string   `json:"name" binding:"required"`
	Categories    []string `json:"categories"`
	ContactPerson string   `json:"contact_person"`
	Email         string   `json:"email"`
	Phone         string   `json:"phone"`
	Address       string   `json:"address"`
	GSTIN         string   `json:"gstin"`
}

// Register adds a vendor to the directory.
func (s *VendorService) Register(ctx context.Context, req *RegisterVendorRequest) (*entity.Vendor, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperr.Validationf("vendor name must not be empty")
	}

	code, err := s.vendors.NextCode(ctx)
	if err != nil {
		return nil, err
	}

	v := &entity.Vendor{
		ID:            newID(),
		Code:          code,
		Name:          req.Name,
		Categories:    entity.StringArray(req.Categories),
		Status:        entity.VendorStatusActive,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		GSTIN:         req.GSTIN,
	}
	if err := s.vendors.Create(ctx, v); err != nil {
		return nil, err
	}

	s.logger.Info("vendor registered", zap.String("vendor", v.ID), zap.String("code", v.Code))
	return v, nil
}

// UpdateVendorRequest carries partial vendor updates.
type UpdateVendorRequest struct {
	Name          *string   `json:"name"`
	Categories    *[]string `json:"categories"`
	ContactPerson *string   `json:"contact_person"`
	Email         *string   `json:"email"`
	Phone         *string   `json:"phone"`
	Address       *string   `json:"address"`
	GSTIN         *string   `json:"gstin"`
}

// Update overwrites the provided contact fields.
func (s *VendorService) Update(ctx context.Context, id string, req *UpdateVendorRequest) (*entity.Vendor, error) {
	v, err := s.vendors.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, apperr.Validationf("vendor name must not be empty")
		}
		v.Name = *req.Name
	}
	if req.Categories != nil {
		v.Categories = entity.StringArray(*req.Categories)
	}
	if req.ContactPerson != nil {
		v.ContactPerson = *req.ContactPerson
	}
	if req.Email != nil {
		v.Email = *req.Email
	}
	if req.Phone != nil {
		v.Phone = *req.Phone
	}
	if req.Address != nil {
		v.Address = *req.Address
	}
	if req.GSTIN != nil {
		v.GSTIN = *req.GSTIN
	}

	if err := s.vendors.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Deactivate retires a vendor from sourcing without deleting its history.
func (s *VendorService) Deactivate(ctx context.Context, id string, actor Actor) (*entity.Vendor, error) {
	v, err := s.vendors.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.Status == entity.VendorStatusInactive {
		return nil, apperr.Statef("vendor %s is already inactive", v.Code)
	}

	v.Status = entity.VendorStatusInactive
	if err := s.vendors.Update(ctx, v); err != nil {
		return nil, err
	}

	s.appendActivity(ctx, v, "deactivate", entity.VendorStatusActive, entity.VendorStatusInactive, actor)
	return v, nil
}

// Get returns one vendor.
func (s *VendorService) Get(ctx context.Context, id string) (*entity.Vendor, error) {
	return s.vendors.Get(ctx, id)
}

// List returns vendors matching the filter.
func (s *VendorService) List(ctx context.Context, f VendorFilter) ([]entity.Vendor, int64, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 200 {
		f.PageSize = 20
	}
	return s.vendors.List(ctx, f)
}

// RecordOrderPlaced bumps the vendor's order counter when a PO is issued.
func (s *VendorService) RecordOrderPlaced(ctx context.Context, vendorID string) error {
	v, err := s.vendors.Get(ctx, vendorID)
	if err != nil {
		return err
	}
	v.TotalOrders++
	return s.vendors.Update(ctx, v)
}

// RecordOrderCompleted bumps the completion counter when a delivery is fully
// received.
func (s *VendorService) RecordOrderCompleted(ctx context.Context, vendorID string) error {
	v, err := s.vendors.Get(ctx, vendorID)
	if err != nil {
		return err
	}
	v.CompletedOrders++
	return s.vendors.Update(ctx, v)
}

func (s *VendorService) appendActivity(ctx context.Context, v *entity.Vendor, action, from, to string, actor Actor) {
	log := &entity.ActivityLog{
		ID:         newID(),
		EntityType: "vendor",
		EntityID:   v.ID,
		EntityCode: v.Code,
		Action:     action,
		FromStatus: from,
		ToStatus:   to,
		ActorID:    actor.UserID,
		ActorRole:  actor.Role,
		CreatedAt:  time.Now(),
	}
	if err := s.activity.Append(ctx, log); err != nil {
		s.logger.Warn("failed to append activity log", zap.String("vendor", v.ID), zap.Error(err))
	}
}
