package entity

import "time"

// ActivityLog is an append-only audit row written on every state transition.
type ActivityLog struct {
	ID         string `json:"id" gorm:"primaryKey;size:32"`
	EntityType string `json:"entity_type" gorm:"size:50;not null;index:idx_procurement_activity_entity"` // indent/sourcing/po/delivery/vendor
	EntityID   string `json:"entity_id" gorm:"size:32;not null;index:idx_procurement_activity_entity"`
	EntityCode string `json:"entity_code" gorm:"size:50"`

	Action     string `json:"action" gorm:"size:50;not null"` // submit/approve/reject/edit_item/send_enquiry/record_quotation/finalize_vendor/issue_po/log_delivery
	FromStatus string `json:"from_status" gorm:"size:40"`
	ToStatus   string `json:"to_status" gorm:"size:40"`
	Remarks    string `json:"remarks" gorm:"type:text"`
	Metadata   JSONB  `json:"metadata" gorm:"type:jsonb"`

	ActorID   string `json:"actor_id" gorm:"size:32"`
	ActorRole string `json:"actor_role" gorm:"size:30"`

	CreatedAt time.Time `json:"created_at"`
}

func (ActivityLog) TableName() string {
	return "procurement_activity_logs"
}
