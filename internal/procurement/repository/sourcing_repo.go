package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/apperr"
	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/entity"
)

// SourcingRepository persists per-indent sourcing state.
type SourcingRepository struct {
	db *gorm.DB
}

func NewSourcingRepository(db *gorm.DB) *SourcingRepository {
	return &SourcingRepository{db: db}
}

func (r *SourcingRepository) Create(ctx context.Context, s *entity.Sourcing) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *SourcingRepository) Get(ctx context.Context, indentID string) (*entity.Sourcing, error) {
	var s entity.Sourcing
	err := r.db.WithContext(ctx).Where("indent_id = ?", indentID).First(&s).Error
	if err != nil {
		return nil, notFound(err, "sourcing for indent", indentID)
	}
	return &s, nil
}

// UpdateCAS writes the sourcing state back under a version check.
func (r *SourcingRepository) UpdateCAS(ctx context.Context, s *entity.Sourcing) error {
	readVersion := s.Version
	res := r.db.WithContext(ctx).
		Model(&entity.Sourcing{}).
		Where("indent_id = ? AND version = ?", s.IndentID, readVersion).
		Updates(map[string]interface{}{
			"status":              s.Status,
			"enquiry_id":          s.EnquiryID,
			"finalized_vendor_id": s.FinalizedVendorID,
			"version":             readVersion + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.Conflictf("sourcing for indent %s was modified concurrently", s.IndentID)
	}
	s.Version = readVersion + 1
	return nil
}

// EnquiryRepository persists enquiries.
type EnquiryRepository struct {
	db *gorm.DB
}

func NewEnquiryRepository(db *gorm.DB) *EnquiryRepository {
	return &EnquiryRepository{db: db}
}

func (r *EnquiryRepository) Create(ctx context.Context, e *entity.Enquiry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *EnquiryRepository) Get(ctx context.Context, id string) (*entity.Enquiry, error) {
	var e entity.Enquiry
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error
	if err != nil {
		return nil, notFound(err, "enquiry", id)
	}
	return &e, nil
}

func (r *EnquiryRepository) NextCode(ctx context.Context) (string, error) {
	return nextCode(ctx, r.db, &entity.Enquiry{}, "code", "ENQ")
}

// QuotationRepository persists quotations and their items.
type QuotationRepository struct {
	db *gorm.DB
}

func NewQuotationRepository(db *gorm.DB) *QuotationRepository {
	return &QuotationRepository{db: db}
}

func (r *QuotationRepository) Create(ctx context.Context, q *entity.Quotation) error {
	return r.db.WithContext(ctx).Create(q).Error
}

// ListByEnquiry returns quotations oldest first so the last entry per vendor
// is its newest revision.
func (r *QuotationRepository) ListByEnquiry(ctx context.Context, enquiryID string) ([]entity.Quotation, error) {
	var quotes []entity.Quotation
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("enquiry_id = ?", enquiryID).
		Order("submitted_at ASC, created_at ASC").
		Find(&quotes).Error
	return quotes, err
}
