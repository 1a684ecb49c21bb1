package entity

import "time"

// Vendor is a registered supplier. Vendors are never deleted, only
// deactivated, so past orders always resolve.
type Vendor struct {
	ID         string      `json:"id" gorm:"primaryKey;size:32"`
	Code       string      `json:"code" gorm:"size:32;uniqueIndex;not null"`
	Name       string      `json:"name" gorm:"size:200;not null"`
	Categories StringArray `json:"categories" gorm:"type:jsonb"`
	Status     string      `json:"status" gorm:"size:20;default:active;index"`

	ContactPerson string `json:"contact_person" gorm:"size:100"`
	Email         string `json:"email" gorm:"size:200"`
	Phone         string `json:"phone" gorm:"size:30"`
	Address       string `json:"address" gorm:"size:500"`
	GSTIN         string `json:"gstin" gorm:"size:20"`

	// Performance counters, maintained by order bookkeeping.
	TotalOrders     int     `json:"total_orders" gorm:"default:0"`
	CompletedOrders int     `json:"completed_orders" gorm:"default:0"`
	Rating          float64 `json:"rating" gorm:"type:decimal(3,2);default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Vendor) TableName() string {
	return "procurement_vendors"
}

// Vendor status
const (
	VendorStatusActive   = "active"
	VendorStatusInactive = "inactive"
)
