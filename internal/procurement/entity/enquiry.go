package entity

import "time"

// Enquiry is a request-for-quotation sent to one or more vendors for an
// approved indent. Immutable after creation; a re-send creates a new Enquiry.
type Enquiry struct {
	ID       string `json:"id" gorm:"primaryKey;size:32"`
	Code     string `json:"code" gorm:"size:32;uniqueIndex;not null"`
	IndentID string `json:"indent_id" gorm:"size:32;not null;index"`

	// Invitation order matters: comparison ties break by this order.
	InvitedVendors StringArray `json:"invited_vendors" gorm:"type:jsonb;not null"`

	DeliveryTerms string `json:"delivery_terms" gorm:"size:500"`
	PaymentTerms  string `json:"payment_terms" gorm:"size:500"`
	WarrantyTerms string `json:"warranty_terms" gorm:"size:500"`
	PackingTerms  string `json:"packing_terms" gorm:"size:500"`

	CreatedAt time.Time `json:"created_at"`
}

func (Enquiry) TableName() string {
	return "procurement_enquiries"
}

// Sourcing tracks the post-approval procurement state of one indent:
// pending_inquiry → inquiry_sent → quotation_received → vendor_finalized →
// po_issued.
type Sourcing struct {
	IndentID          string  `json:"indent_id" gorm:"primaryKey;size:32"`
	Status            string  `json:"status" gorm:"size:30;not null;default:pending_inquiry"`
	EnquiryID         *string `json:"enquiry_id" gorm:"size:32"`
	FinalizedVendorID *string `json:"finalized_vendor_id" gorm:"size:32"`
	Version           int64   `json:"version" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Sourcing) TableName() string {
	return "procurement_sourcing"
}

// Sourcing status
const (
	SourcingStatusPendingInquiry    = "pending_inquiry"
	SourcingStatusInquirySent       = "inquiry_sent"
	SourcingStatusQuotationReceived = "quotation_received"
	SourcingStatusVendorFinalized   = "vendor_finalized"
	SourcingStatusPOIssued          = "po_issued"
)
