package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/apperr"
	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/entity"
)

// DeliveryService tracks receipt of goods against issued purchase orders.
type DeliveryService struct {
	deliveries DeliveryStore
	pos        PurchaseOrderStore
	vendors    VendorStore
	activity   ActivityStore
	events     EventPublisher
	logger     *zap.Logger
}

func NewDeliveryService(deliveries DeliveryStore, pos PurchaseOrderStore, vendors VendorStore, activity ActivityStore, events EventPublisher, logger *zap.Logger) *DeliveryService {
	return &DeliveryService{
		deliveries: deliveries,
		pos:        pos,
		vendors:    vendors,
		activity:   activity,
		events:     events,
		logger:     logger,
	}
}

// LogDelivery appends a receipt entry against a PO. Delivered quantity only
// ever grows; a fully received record accepts no further entries.
func (s *DeliveryService) LogDelivery(ctx context.Context, poID string, actor Actor, date time.Time, quantity int64, remarks string) (*entity.DeliveryRecord, error) {
	if quantity <= 0 {
		return nil, apperr.Validationf("delivered quantity must be positive")
	}

	rec, err := s.deliveries.Get(ctx, poID)
	if err != nil {
		return nil, err
	}
	if rec.Status == entity.DeliveryStatusFullyReceived {
		return nil, apperr.Statef("purchase order is already fully received")
	}

	if date.IsZero() {
		date = time.Now()
	}
	log := &entity.DeliveryLog{
		ID:       newID(),
		POID:     poID,
		Date:     date,
		Quantity: quantity,
		Remarks:  remarks,
	}

	from := rec.Status
	rec.QuantityDelivered += quantity
	rec.Status = entity.DeliveryStatusFor(rec.QuantityDelivered, rec.QuantityRequested)

	if err := s.deliveries.AppendLogCAS(ctx, rec, log); err != nil {
		return nil, err
	}
	rec.Logs = append(rec.Logs, *log)

	s.appendActivity(ctx, rec, from, actor, remarks)
	s.events.Publish(Event{Type: EventDeliveryLogged, ID: poID, Status: rec.Status, Data: map[string]interface{}{
		"quantity_delivered": rec.QuantityDelivered,
		"quantity_requested": rec.QuantityRequested,
	}})

	if rec.Status == entity.DeliveryStatusFullyReceived {
		s.recordCompletion(ctx, poID)
	}
	return rec, nil
}

// Get returns the delivery record of one PO with its logs.
func (s *DeliveryService) Get(ctx context.Context, poID string) (*entity.DeliveryRecord, error) {
	return s.deliveries.Get(ctx, poID)
}

// recordCompletion bumps the vendor's completed-order counter once the PO is
// fully received.
func (s *DeliveryService) recordCompletion(ctx context.Context, poID string) {
	po, err := s.pos.Get(ctx, poID)
	if err != nil {
		s.logger.Warn("failed to load po for completion bookkeeping", zap.String("po", poID), zap.Error(err))
		return
	}
	v, err := s.vendors.Get(ctx, po.VendorID)
	if err != nil {
		s.logger.Warn("failed to load vendor for completion bookkeeping", zap.String("vendor", po.VendorID), zap.Error(err))
		return
	}
	v.CompletedOrders++
	if err := s.vendors.Update(ctx, v); err != nil {
		s.logger.Warn("failed to bump vendor completion count", zap.String("vendor", v.ID), zap.Error(err))
	}
}

func (s *DeliveryService) appendActivity(ctx context.Context, rec *entity.DeliveryRecord, from string, actor Actor, remarks string) {
	log := &entity.ActivityLog{
		ID:         newID(),
		EntityType: "delivery",
		EntityID:   rec.POID,
		Action:     "log_delivery",
		FromStatus: from,
		ToStatus:   rec.Status,
		Remarks:    remarks,
		ActorID:    actor.UserID,
		ActorRole:  actor.Role,
		CreatedAt:  time.Now(),
	}
	if err := s.activity.Append(ctx, log); err != nil {
		s.logger.Warn("failed to append activity log", zap.String("po", rec.POID), zap.Error(err))
	}
}
