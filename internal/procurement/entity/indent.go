package entity

import "time"

// Indent is a purchase requisition raised by a requesting department.
type Indent struct {
	ID            string `json:"id" gorm:"primaryKey;size:32"`
	Code          string `json:"code" gorm:"size:32;uniqueIndex;not null"`
	Title         string `json:"title" gorm:"size:200;not null"`
	Department    string `json:"department" gorm:"size:100;not null;index"`
	BudgetHead    string `json:"budget_head" gorm:"size:100"`
	Priority      string `json:"priority" gorm:"size:20;default:medium"` // low/medium/high/urgent
	Justification string `json:"justification" gorm:"type:text"`
	RequestedBy   string `json:"requested_by" gorm:"size:32;not null"`

	Status           string      `json:"status" gorm:"size:40;default:draft;index"`
	ApprovalTrail    StringArray `json:"approval_trail" gorm:"type:jsonb"`
	RejectionRemarks *string     `json:"rejection_remarks" gorm:"type:text"`

	// Optimistic concurrency: bumped on every committed mutation.
	Version int64 `json:"version" gorm:"not null;default:0"`

	Items []IndentItem `json:"items,omitempty" gorm:"foreignKey:IndentID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Indent) TableName() string {
	return "procurement_indents"
}

// Indent status
const (
	IndentStatusDraft    = "draft"
	IndentStatusApproved = "approved"
	IndentStatusRejected = "rejected"
)

// PendingStatus returns the status an indent holds while waiting on the given
// pipeline stage, e.g. "pending_hod".
func PendingStatus(stage string) string {
	return "pending_" + stage
}

// TotalApproxValue sums the estimated value of all items.
func (i *Indent) TotalApproxValue() int64 {
	var total int64
	for _, item := range i.Items {
		total += item.ApproxValue
	}
	return total
}

// Priority
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// IndentItem is a single line of an indent.
type IndentItem struct {
	ID          string `json:"id" gorm:"primaryKey;size:32"`
	IndentID    string `json:"indent_id" gorm:"size:32;not null;index"`
	ItemName    string `json:"item_name" gorm:"size:200;not null"`
	Description string `json:"description" gorm:"type:text"`
	Make        string `json:"make" gorm:"size:100"`
	Quantity    int64  `json:"quantity" gorm:"not null"`
	UOM         string `json:"uom" gorm:"size:20;default:nos"`
	StockInHand int64  `json:"stock_in_hand" gorm:"default:0"`
	ApproxValue int64  `json:"approx_value" gorm:"not null;default:0"` // estimated line value, whole rupees
	Purpose     string `json:"purpose" gorm:"size:500"`
	SortOrder   int    `json:"sort_order" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (IndentItem) TableName() string {
	return "procurement_indent_items"
}
