package entity

import "time"

// DeliveryRecord tracks receipt of goods against one purchase order.
// Invariant: QuantityDelivered == sum of log quantities, and Status is a
// pure function of delivered vs requested.
type DeliveryRecord struct {
	POID              string `json:"po_id" gorm:"primaryKey;size:32"`
	QuantityRequested int64  `json:"quantity_requested" gorm:"not null"`
	QuantityDelivered int64  `json:"quantity_delivered" gorm:"not null;default:0"`
	Status            string `json:"status" gorm:"size:30;not null;default:not_received"`
	Version           int64  `json:"version" gorm:"not null;default:0"`

	Logs []DeliveryLog `json:"logs,omitempty" gorm:"foreignKey:POID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (DeliveryRecord) TableName() string {
	return "procurement_delivery_records"
}

// Delivery status
const (
	DeliveryStatusNotReceived       = "not_received"
	DeliveryStatusPartiallyReceived = "partially_received"
	DeliveryStatusFullyReceived     = "fully_received"
)

// DeliveryStatusFor derives the status from delivered vs requested quantity.
func DeliveryStatusFor(delivered, requested int64) string {
	switch {
	case delivered >= requested:
		return DeliveryStatusFullyReceived
	case delivered > 0:
		return DeliveryStatusPartiallyReceived
	default:
		return DeliveryStatusNotReceived
	}
}

// DeliveryLog is one receipt entry against a purchase order.
type DeliveryLog struct {
	ID       string    `json:"id" gorm:"primaryKey;size:32"`
	POID     string    `json:"po_id" gorm:"size:32;not null;index"`
	Date     time.Time `json:"date" gorm:"not null"`
	Quantity int64     `json:"quantity" gorm:"not null"`
	Remarks  string    `json:"remarks" gorm:"size:500"`

	CreatedAt time.Time `json:"created_at"`
}

func (DeliveryLog) TableName() string {
	return "procurement_delivery_logs"
}
