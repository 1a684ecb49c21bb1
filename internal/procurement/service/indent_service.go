package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/apperr"
	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/entity"
	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/pipeline"
)

// IndentService is the canonical registry of indents.
type IndentService struct {
	indents   IndentStore
	activity  ActivityStore
	pipelines *pipeline.Set
	logger    *zap.Logger
}

func NewIndentService(indents IndentStore, activity ActivityStore, pipelines *pipeline.Set, logger *zap.Logger) *IndentService {
	return &IndentService{
		indents:   indents,
		activity:  activity,
		pipelines: pipelines,
		logger:    logger,
	}
}

// CreateIndentRequest carries a new draft indent.
type CreateIndentRequest struct {
	Title         string             `json:"title" binding:"required"`
	Department    string             `json:"department" binding:"required"`
	BudgetHead    string             `json:"budget_head"`
	Priority      string             `json:"priority"`
	Justification string             `json:"justification"`
	Items         []CreateIndentItem `json:"items" binding:"required"`
}

// CreateIndentItem is one requested line.
type CreateIndentItem struct {
	ItemName    string `json:"item_name" binding:"required"`
	Description string `json:"description"`
	Make        string `json:"make"`
	Quantity    int64  `json:"quantity"`
	UOM         string `json:"uom"`
	StockInHand int64  `json:"stock_in_hand"`
	ApproxValue int64  `json:"approx_value"`
	Purpose     string `json:"purpose"`
}

// Create registers a new draft indent.
func (s *IndentService) Create(ctx context.Context, actor Actor, req *CreateIndentRequest) (*entity.Indent, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperr.Validationf("title must not be empty")
	}
	if len(req.Items) == 0 {
		return nil, apperr.Validationf("an indent needs at least one item")
	}
	for i, item := range req.Items {
		if strings.TrimSpace(item.ItemName) == "" {
			return nil, apperr.Validationf("item %d: name must not be empty", i)
		}
		if item.Quantity < 0 {
			return nil, apperr.Validationf("item %d: negative quantity", i)
		}
		if item.ApproxValue < 0 {
			return nil, apperr.Validationf("item %d: negative approx value", i)
		}
	}

	code, err := s.indents.NextCode(ctx)
	if err != nil {
		return nil, err
	}

	priority := req.Priority
	if priority == "" {
		priority = entity.PriorityMedium
	}

	ind := &entity.Indent{
		ID:            newID(),
		Code:          code,
		Title:         req.Title,
		Department:    req.Department,
		BudgetHead:    req.BudgetHead,
		Priority:      priority,
		Justification: req.Justification,
		RequestedBy:   actor.UserID,
		Status:        entity.IndentStatusDraft,
		ApprovalTrail: entity.StringArray{},
	}
	for i, item := range req.Items {
		uom := item.UOM
		if uom == "" {
			uom = "nos"
		}
		ind.Items = append(ind.Items, entity.IndentItem{
			ID:          newID(),
			IndentID:    ind.ID,
			ItemName:    item.ItemName,
			Description: item.Description,
			Make:        item.Make,
			Quantity:    item.Quantity,
			UOM:         uom,
			StockInHand: item.StockInHand,
			ApproxValue: item.ApproxValue,
			Purpose:     item.Purpose,
			SortOrder:   i + 1,
		})
	}

	if err := s.indents.Create(ctx, ind); err != nil {
		return nil, err
	}

	s.logger.Info("indent created",
		zap.String("indent", ind.ID),
		zap.String("code", ind.Code),
		zap.String("department", ind.Department),
	)
	return ind, nil
}

// Submit moves a draft indent into the pipeline at its first stage.
func (s *IndentService) Submit(ctx context.Context, indentID string, actor Actor) (*entity.Indent, error) {
	ind, err := s.indents.Get(ctx, indentID)
	if err != nil {
		return nil, err
	}
	if ind.Status != entity.IndentStatusDraft {
		return nil, apperr.Statef("indent in status %s cannot be submitted", ind.Status)
	}

	first := s.pipelines.For(ind.Department).First()
	from := ind.Status
	ind.Status = entity.PendingStatus(first)

	if err := s.indents.UpdateCAS(ctx, ind); err != nil {
		return nil, err
	}

	s.appendActivity(ctx, ind, "submit", from, ind.Status, actor)
	return ind, nil
}

// Get returns one indent with its items.
func (s *IndentService) Get(ctx context.Context, indentID string) (*entity.Indent, error) {
	return s.indents.Get(ctx, indentID)
}

// List returns indents matching the filter, newest first, paginated.
func (s *IndentService) List(ctx context.Context, f IndentFilter) ([]entity.Indent, int64, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 200 {
		f.PageSize = 20
	}
	return s.indents.List(ctx, f)
}

// Activity returns the audit trail of one indent.
func (s *IndentService) Activity(ctx context.Context, indentID string) ([]entity.ActivityLog, error) {
	if _, err := s.indents.Get(ctx, indentID); err != nil {
		return nil, err
	}
	return s.activity.ListByEntity(ctx, "indent", indentID)
}

func (s *IndentService) appendActivity(ctx context.Context, ind *entity.Indent, action, from, to string, actor Actor) {
	log := &entity.ActivityLog{
		ID:         newID(),
		EntityType: "indent",
		EntityID:   ind.ID,
		EntityCode: ind.Code,
		Action:     action,
		FromStatus: from,
		ToStatus:   to,
		ActorID:    actor.UserID,
		ActorRole:  actor.Role,
		CreatedAt:  time.Now(),
	}
	if err := s.activity.Append(ctx, log); err != nil {
		s.logger.Warn("failed to append activity log", zap.String("indent", ind.ID), zap.Error(err))
	}
}
