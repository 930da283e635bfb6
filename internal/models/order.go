package models

import (
	"strings"
	"time"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusCompleted OrderStatus = "completed"
)

// PaymentMethod is how the customer intends to pay at the counter
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
	PaymentUPI  PaymentMethod = "upi"
)

// ParsePaymentMethod accepts cash, card or upi. An empty value means cash.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	switch PaymentMethod(strings.ToLower(strings.TrimSpace(raw))) {
	case "", PaymentCash:
		return PaymentCash, nil
	case PaymentCard:
		return PaymentCard, nil
	case PaymentUPI:
		return PaymentUPI, nil
	default:
		return "", ValidationError{
			Field:   "paymentMethod",
			Message: "payment method must be one of: cash, card, upi",
		}
	}
}

// CartLine is a menu item snapshot with a quantity
type CartLine struct {
	MenuItem
	Quantity int `json:"quantity"`
}

// Subtotal returns price times quantity
func (l CartLine) Subtotal() int64 {
	return l.Price * int64(l.Quantity)
}

// Order represents a placed order. CreatedAt is nil until the store assigns it.
type Order struct {
	ID            string        `json:"id"`
	OrderNumber   int64         `json:"orderNumber"`
	Items         []CartLine    `json:"items"`
	Total         int64         `json:"total"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Status        OrderStatus   `json:"status"`
	CreatedAt     *time.Time    `json:"createdAt"`
	UpdatedAt     *time.Time    `json:"updatedAt,omitempty"`
}

// OrderDraft is what the cart hands to the order store. The store assigns id and createdAt.
type OrderDraft struct {
	OrderNumber   int64
	Items         []CartLine
	Total         int64
	PaymentMethod PaymentMethod
	Status        OrderStatus
}

// OrderUpdate carries the fields a status mutation writes
type OrderUpdate struct {
	Status    OrderStatus
	UpdatedAt time.Time
}

// PlacedOrder identifies a freshly created order
type PlacedOrder struct {
	ID          string `json:"id"`
	OrderNumber int64  `json:"orderNumber"`
}
