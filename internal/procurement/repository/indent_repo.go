package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/apperr"
	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/entity"
	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/service"
)

// IndentRepository persists indents with their items.
type IndentRepository struct {
	db *gorm.DB
}

func NewIndentRepository(db *gorm.DB) *IndentRepository {
	return &IndentRepository{db: db}
}

func (r *IndentRepository) Create(ctx context.Context, ind *entity.Indent) error {
	return r.db.WithContext(ctx).Create(ind).Error
}

func (r *IndentRepository) Get(ctx context.Context, id string) (*entity.Indent, error) {
	var ind entity.Indent
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("id = ?", id).
		First(&ind).Error
	if err != nil {
		return nil, notFound(err, "indent", id)
	}
	return &ind, nil
}

func (r *IndentRepository) List(ctx context.Context, f service.IndentFilter) ([]entity.Indent, int64, error) {
	var items []entity.Indent
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Indent{})
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.Department != "" {
		query = query.Where("department = ?", f.Department)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (f.Page - 1) * f.PageSize
	err := query.
		Preload("Items").
		Order("created_at DESC").
		Offset(offset).
		Limit(f.PageSize).
		Find(&items).Error
	return items, total, err
}

// UpdateCAS writes the indent back only if the stored version still matches
// the one it was read at, bumping the version. Items are replaced in the
// same transaction so no partial state is ever visible.
func (r *IndentRepository) UpdateCAS(ctx context.Context, ind *entity.Indent) error {
	readVersion := ind.Version
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.Indent{}).
			Where("id = ? AND version = ?", ind.ID, readVersion).
			Updates(map[string]interface{}{
				"title":             ind.Title,
				"department":        ind.Department,
				"budget_head":       ind.BudgetHead,
				"priority":          ind.Priority,
				"justification":     ind.Justification,
				"status":            ind.Status,
				"approval_trail":    ind.ApprovalTrail,
				"rejection_remarks": ind.RejectionRemarks,
				"version":           readVersion + 1,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.Conflictf("indent %s was modified concurrently", ind.ID)
		}

		for i := range ind.Items {
			if err := tx.Save(&ind.Items[i]).Error; err != nil {
				return err
			}
		}

		ind.Version = readVersion + 1
		return nil
	})
}

func (r *IndentRepository) NextCode(ctx context.Context) (string, error) {
	return nextCode(ctx, r.db, &entity.Indent{}, "code", "IND")
}

func (r *IndentRepository) ApprovedAggregate(ctx context.Context) (count, value int64, err error) {
	row := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(DISTINCT i.id), COALESCE(SUM(it.approx_value), 0)
		FROM procurement_indents i
		LEFT JOIN procurement_indent_items it ON it.indent_id = i.id
		WHERE i.status = ?
	`, entity.IndentStatusApproved).Row()
	if err := row.Scan(&count, &value); err != nil {
		return 0, 0, err
	}
	return count, value, nil
}

func (r *IndentRepository) PendingCounts(ctx context.Context) (map[string]int64, error) {
	type stageCount struct {
		Status string
		N      int64
	}
	var rows []stageCount
	err := r.db.WithContext(ctx).
		Model(&entity.Indent{}).
		Select("status, COUNT(*) as n").
		Where("status LIKE ?", "pending_%").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}
