package models

import "time"

// Collections a change event can name
const (
	CollectionMenu   = "menu"
	CollectionOrders = "orders"
)

// ChangeEvent announces that a collection changed. Subscribers refetch on receipt.
type ChangeEvent struct {
	Collection string    `json:"collection"`
	DocumentID string    `json:"document_id,omitempty"`
	Op         string    `json:"op"`
	Source     string    `json:"source"`
	Timestamp  time.Time `json:"timestamp"`
}

// StatusUpdateMessage represents a status update notification
type StatusUpdateMessage struct {
	OrderID     string    `json:"order_id"`
	OrderNumber int64     `json:"order_number"`
	OldStatus   string    `json:"old_status,omitempty"`
	NewStatus   string    `json:"new_status"`
	ChangedBy   string    `json:"changed_by"`
	Total       int64     `json:"total,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// CreateStatusUpdateMessage creates a StatusUpdateMessage for order status changes
func CreateStatusUpdateMessage(orderID string, orderNumber int64, oldStatus, newStatus OrderStatus, changedBy string) *StatusUpdateMessage {
	return &StatusUpdateMessage{
		OrderID:     orderID,
		OrderNumber: orderNumber,
		OldStatus:   string(oldStatus),
		NewStatus:   string(newStatus),
		ChangedBy:   changedBy,
		Timestamp:   time.Now().UTC(),
	}
}
