package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/entity"
	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/service"
)

// VendorRepository persists vendor records.
type VendorRepository struct {
	db *gorm.DB
}

func NewVendorRepository(db *gorm.DB) *VendorRepository {
	return &VendorRepository{db: db}
}

func (r *VendorRepository) Create(ctx context.Context, v *entity.Vendor) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *VendorRepository) Get(ctx context.Context, id string) (*entity.Vendor, error) {
	var v entity.Vendor
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&v).Error
	if err != nil {
		return nil, notFound(err, "vendor", id)
	}
	return &v, nil
}

func (r *VendorRepository) Update(ctx context.Context, v *entity.Vendor) error {
	return r.db.WithContext(ctx).Save(v).Error
}

func (r *VendorRepository) List(ctx context.Context, f service.VendorFilter) ([]entity.Vendor, int64, error) {
	var items []entity.Vendor
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Vendor{})
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.Category != "" {
		query = query.Where("categories @> ?", `["`+f.Category+`"]`)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (f.Page - 1) * f.PageSize
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(f.PageSize).
		Find(&items).Error
	return items, total, err
}

func (r *VendorRepository) NextCode(ctx context.Context) (string, error) {
	return nextCode(ctx, r.db, &entity.Vendor{}, "code", "VEN")
}
