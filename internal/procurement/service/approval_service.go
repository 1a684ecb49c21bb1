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

// ApprovalService drives an indent through the configured approval pipeline.
// Every operation validates fully before mutating, writes back under a
// version check, and appends an audit row on success.
type ApprovalService struct {
	indents   IndentStore
	activity  ActivityStore
	pipelines *pipeline.Set
	events    EventPublisher
	dashboard *DashboardService
	logger    *zap.Logger
}

func NewApprovalService(indents IndentStore, activity ActivityStore, pipelines *pipeline.Set, events EventPublisher, logger *zap.Logger) *ApprovalService {
	return &ApprovalService{
		indents:   indents,
		activity:  activity,
		pipelines: pipelines,
		events:    events,
		logger:    logger,
	}
}

// SetDashboard injects the dashboard aggregator.
func (s *ApprovalService) SetDashboard(d *DashboardService) {
	s.dashboard = d
}

// Approve moves the indent one stage forward. The acting role must own the
// current pending stage; the role is appended to the approval trail and the
// status advances to the next stage, or to approved from the last one.
func (s *ApprovalService) Approve(ctx context.Context, indentID string, actor Actor) (*entity.Indent, error) {
	ind, err := s.indents.Get(ctx, indentID)
	if err != nil {
		return nil, err
	}

	want := entity.PendingStatus(actor.Role)
	if ind.Status != want {
		return nil, apperr.Permissionf("role %s cannot approve indent in status %s", actor.Role, ind.Status)
	}

	from := ind.Status
	ind.ApprovalTrail = append(ind.ApprovalTrail, actor.Role)
	ind.Status = s.pipelines.For(ind.Department).StatusAfter(actor.Role)

	if err := s.indents.UpdateCAS(ctx, ind); err != nil {
		return nil, err
	}

	s.logActivity(ctx, ind, "approve", from, ind.Status, actor, "")

	if ind.Status == entity.IndentStatusApproved {
		if s.dashboard != nil {
			s.dashboard.RecordApproval(ctx, ind)
		}
	}
	s.events.Publish(Event{Type: EventIndentApproved, ID: ind.ID, Status: ind.Status, Data: map[string]interface{}{
		"stage": actor.Role,
	}})

	return ind, nil
}

// Reject terminates the pipeline for this indent. Remarks are mandatory;
// the approval trail is left untouched.
func (s *ApprovalService) Reject(ctx context.Context, indentID string, actor Actor, remarks string) (*entity.Indent, error) {
	ind, err := s.indents.Get(ctx, indentID)
	if err != nil {
		return nil, err
	}

	want := entity.PendingStatus(actor.Role)
	if ind.Status != want {
		return nil, apperr.Permissionf("role %s cannot reject indent in status %s", actor.Role, ind.Status)
	}
	if strings.TrimSpace(remarks) == "" {
		return nil, apperr.Validationf("rejection remarks must not be empty")
	}

	from := ind.Status
	ind.Status = entity.IndentStatusRejected
	ind.RejectionRemarks = &remarks

	if err := s.indents.UpdateCAS(ctx, ind); err != nil {
		return nil, err
	}

	s.logActivity(ctx, ind, "reject", from, ind.Status, actor, remarks)
	s.events.Publish(Event{Type: EventIndentRejected, ID: ind.ID, Status: ind.Status, Data: map[string]interface{}{
		"stage":   actor.Role,
		"remarks": remarks,
	}})

	return ind, nil
}

// EditItemQuantity changes one item's quantity. Only the hod may do this,
// and only while the indent sits at the hod stage.
func (s *ApprovalService) EditItemQuantity(ctx context.Context, indentID string, actor Actor, itemIndex int, newQuantity int64) (*entity.Indent, error) {
	ind, err := s.indents.Get(ctx, indentID)
	if err != nil {
		return nil, err
	}

	if actor.Role != "hod" || ind.Status != entity.PendingStatus("hod") {
		return nil, apperr.Permissionf("item quantity is editable only by hod while the indent is pending with hod")
	}
	if newQuantity < 0 {
		return nil, apperr.Validationf("quantity must not be negative")
	}
	if itemIndex < 0 || itemIndex >= len(ind.Items) {
		return nil, apperr.Validationf("item index %d out of range", itemIndex)
	}

	item := &ind.Items[itemIndex]
	oldQuantity := item.Quantity
	if oldQuantity > 0 {
		// Keep the estimated line value proportional to the new quantity,
		// rounding half up so repeated edits don't bleed value.
		item.ApproxValue = (item.ApproxValue*newQuantity + oldQuantity/2) / oldQuantity
	}
	item.Quantity = newQuantity

	if err := s.indents.UpdateCAS(ctx, ind); err != nil {
		return nil, err
	}

	s.logActivity(ctx, ind, "edit_item", ind.Status, ind.Status, actor, "")
	s.logger.Info("indent item quantity edited",
		zap.String("indent", ind.ID),
		zap.Int("item", itemIndex),
		zap.Int64("from", oldQuantity),
		zap.Int64("to", newQuantity),
	)

	return ind, nil
}

func (s *ApprovalService) logActivity(ctx context.Context, ind *entity.Indent, action, from, to string, actor Actor, remarks string) {
	log := &entity.ActivityLog{
		ID:         newID(),
		EntityType: "indent",
		EntityID:   ind.ID,
		EntityCode: ind.Code,
		Action:     action,
		FromStatus: from,
		ToStatus:   to,
		Remarks:    remarks,
		ActorID:    actor.UserID,
		ActorRole:  actor.Role,
		CreatedAt:  time.Now(),
	}
	if err := s.activity.Append(ctx, log); err != nil {
		s.logger.Warn("failed to append activity log", zap.String("indent", ind.ID), zap.Error(err))
	}
}
