package service

// Domain event types emitted by the core. A notification layer subscribes;
// the core never waits on a subscriber.
const (
	EventIndentApproved      = "IndentApproved"
	EventIndentRejected      = "IndentRejected"
	EventVendorFinalized     = "VendorFinalized"
	EventPurchaseOrderIssued = "PurchaseOrderIssued"
	EventDeliveryLogged      = "DeliveryLogged"
)

// Event carries the affected entity id and its resulting state.
type Event struct {
	Type   string                 `json:"type"`
	ID     string                 `json:"id"`
	Status string                 `json:"status"`
	Data   map[string]interface{} `json:"data,omitempty"`
}

// EventPublisher fans domain events out to subscribers.
type EventPublisher interface {
	Publish(event Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(Event) {}

// NopPublisher returns a publisher that drops every event.
func NopPublisher() EventPublisher {
	return nopPublisher{}
}
