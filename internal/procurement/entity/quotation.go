package entity

import "time"

// Quotation is a vendor's priced, timed response to an enquiry. A later
// quotation from the same vendor for the same enquiry is a revision, linked
// through RevisionOf; only the newest revision counts for comparison.
type Quotation struct {
	ID         string  `json:"id" gorm:"primaryKey;size:32"`
	EnquiryID  string  `json:"enquiry_id" gorm:"size:32;not null;index"`
	VendorID   string  `json:"vendor_id" gorm:"size:32;not null;index"`
	RevisionOf *string `json:"revision_of" gorm:"size:32"`

	DeliveryDays int    `json:"delivery_days" gorm:"not null"`
	PaymentTerms string `json:"payment_terms" gorm:"size:500"`
	Warranty     string `json:"warranty" gorm:"size:500"`

	Items []QuotationItem `json:"items,omitempty" gorm:"foreignKey:QuotationID"`

	SubmittedAt time.Time `json:"submitted_at"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Quotation) TableName() string {
	return "procurement_quotations"
}

// TotalPrice sums all item totals, in whole rupees.
func (q *Quotation) TotalPrice() int64 {
	var total int64
	for _, item := range q.Items {
		total += item.TotalPrice
	}
	return total
}

// QuotationItem is one priced line of a quotation.
// Invariant: TotalPrice == Quantity × UnitPrice.
type QuotationItem struct {
	ID          string `json:"id" gorm:"primaryKey;size:32"`
	QuotationID string `json:"quotation_id" gorm:"size:32;not null;index"`
	ItemName    string `json:"item_name" gorm:"size:200;not null"`
	Make        string `json:"make" gorm:"size:100"`
	Quantity    int64  `json:"quantity" gorm:"not null"`
	UnitPrice   int64  `json:"unit_price" gorm:"not null"` // whole rupees
	TotalPrice  int64  `json:"total_price" gorm:"not null"`
	SortOrder   int    `json:"sort_order" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
}

func (QuotationItem) TableName() string {
	return "procurement_quotation_items"
}
