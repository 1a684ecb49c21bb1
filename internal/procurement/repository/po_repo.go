package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/apperr"
	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/entity"
)

// PORepository persists purchase orders and their items.
type PORepository struct {
	db *gorm.DB
}

func NewPORepository(db *gorm.DB) *PORepository {
	return &PORepository{db: db}
}

func (r *PORepository) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	return r.db.WithContext(ctx).Create(po).Error
}

func (r *PORepository) Get(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	var po entity.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("id = ?", id).
		First(&po).Error
	if err != nil {
		return nil, notFound(err, "purchase order", id)
	}
	return &po, nil
}

func (r *PORepository) GetByIndent(ctx context.Context, indentID string) (*entity.PurchaseOrder, error) {
	var po entity.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("indent_id = ?", indentID).
		First(&po).Error
	if err != nil {
		return nil, notFound(err, "purchase order for indent", indentID)
	}
	return &po, nil
}

func (r *PORepository) NextCode(ctx context.Context) (string, error) {
	return nextCode(ctx, r.db, &entity.PurchaseOrder{}, "code", "PO")
}

// DeliveryRepository persists delivery records and logs.
type DeliveryRepository struct {
	db *gorm.DB
}

func NewDeliveryRepository(db *gorm.DB) *DeliveryRepository {
	return &DeliveryRepository{db: db}
}

func (r *DeliveryRepository) Create(ctx context.Context, rec *entity.DeliveryRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *DeliveryRepository) Get(ctx context.Context, poID string) (*entity.DeliveryRecord, error) {
	var rec entity.DeliveryRecord
	err := r.db.WithContext(ctx).
		Preload("Logs", func(db *gorm.DB) *gorm.DB {
			return db.Order("date ASC, created_at ASC")
		}).
		Where("po_id = ?", poID).
		First(&rec).Error
	if err != nil {
		return nil, notFound(err, "delivery record for po", poID)
	}
	return &rec, nil
}

// AppendLogCAS writes the new log entry and the recomputed record in one
// transaction, guarded by the record version.
func (r *DeliveryRepository) AppendLogCAS(ctx context.Context, rec *entity.DeliveryRecord, log *entity.DeliveryLog) error {
	readVersion := rec.Version
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.DeliveryRecord{}).
			Where("po_id = ? AND version = ?", rec.POID, readVersion).
			Updates(map[string]interface{}{
				"quantity_delivered": rec.QuantityDelivered,
				"status":             rec.Status,
				"version":            readVersion + 1,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.Conflictf("delivery record for po %s was modified concurrently", rec.POID)
		}
		if err := tx.Create(log).Error; err != nil {
			return err
		}
		rec.Version = readVersion + 1
		return nil
	})
}

// ActivityLogRepository stores the append-only audit trail.
type ActivityLogRepository struct {
	db *gorm.DB
}

func NewActivityLogRepository(db *gorm.DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

func (r *ActivityLogRepository) Append(ctx context.Context, log *entity.ActivityLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *ActivityLogRepository) ListByEntity(ctx context.Context, entityType, entityID string) ([]entity.ActivityLog, error) {
	var logs []entity.ActivityLog
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at ASC").
		Find(&logs).Error
	return logs, err
}
