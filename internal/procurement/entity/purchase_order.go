package entity

import "time"

// PurchaseOrder is the binding order issued to the finalized vendor of an
// indent. Created exactly once per indent; immutable once issued.
type PurchaseOrder struct {
	ID       string `json:"id" gorm:"primaryKey;size:32"`
	Code     string `json:"code" gorm:"size:32;uniqueIndex;not null"`
	IndentID string `json:"indent_id" gorm:"size:32;not null;uniqueIndex"`
	VendorID string `json:"vendor_id" gorm:"size:32;not null;index"`

	Subtotal      int64   `json:"subtotal" gorm:"not null"`
	GSTPercent    float64 `json:"gst_percent" gorm:"type:decimal(5,2);not null"`
	GSTAmount     int64   `json:"gst_amount" gorm:"not null"`
	GrandTotal    int64   `json:"grand_total" gorm:"not null"`
	AmountInWords string  `json:"amount_in_words" gorm:"size:500;not null"`

	Status   string     `json:"status" gorm:"size:20;default:draft"`
	IssuedAt *time.Time `json:"issued_at"`

	Items []POItem `json:"items,omitempty" gorm:"foreignKey:POID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PurchaseOrder) TableName() string {
	return "procurement_purchase_orders"
}

// PO status
const (
	POStatusDraft  = "draft"
	POStatusIssued = "issued"
)

// POItem is one ordered line of a purchase order.
type POItem struct {
	ID         string `json:"id" gorm:"primaryKey;size:32"`
	POID       string `json:"po_id" gorm:"size:32;not null;index"`
	ItemName   string `json:"item_name" gorm:"size:200;not null"`
	Make       string `json:"make" gorm:"size:100"`
	Quantity   int64  `json:"quantity" gorm:"not null"`
	UnitPrice  int64  `json:"unit_price" gorm:"not null"`
	TotalPrice int64  `json:"total_price" gorm:"not null"`
	SortOrder  int    `json:"sort_order" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
}

func (POItem) TableName() string {
	return "procurement_po_items"
}
