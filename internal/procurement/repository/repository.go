// Package repository backs the service store interfaces with gorm/postgres.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/apperr"
	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/service"
)

// NewStores wires the gorm-backed store bundle.
func NewStores(db *gorm.DB) service.Stores {
	return service.Stores{
		Indents:    NewIndentRepository(db),
		Vendors:    NewVendorRepository(db),
		Sourcing:   NewSourcingRepository(db),
		Enquiries:  NewEnquiryRepository(db),
		Quotations: NewQuotationRepository(db),
		POs:        NewPORepository(db),
		Deliveries: NewDeliveryRepository(db),
		Activity:   NewActivityLogRepository(db),
	}
}

// notFound maps gorm's record-not-found onto the service taxonomy.
func notFound(err error, what, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFoundf("%s %s not found", what, id)
	}
	return err
}

// nextCode generates sequential human-readable codes, PREFIX-YYYY-NNNN.
func nextCode(ctx context.Context, db *gorm.DB, model interface{}, column, prefix string) (string, error) {
	year := time.Now().Format("2006")
	like := fmt.Sprintf("%s-%s-", prefix, year)

	var maxCode string
	err := db.WithContext(ctx).
		Model(model).
		Select(fmt.Sprintf("COALESCE(MAX(%s), '')", column)).
		Where(column+" LIKE ?", like+"%").
		Scan(&maxCode).Error
	if err != nil {
		return "", err
	}

	var seq int
	if maxCode != "" {
		fmt.Sscanf(maxCode, prefix+"-"+year+"-%04d", &seq)
	}
	seq++
	return fmt.Sprintf("%s-%s-%04d", prefix, year, seq), nil
}
