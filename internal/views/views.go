// Package views builds the JSON view models the storefront and dashboard render.
package views

import (
	"fmt"
	"time"

	"foodstall/internal/auth"
	"foodstall/internal/catalog"
	"foodstall/internal/models"
	"foodstall/internal/orders"
)

// FormatPrice renders an amount in the smallest currency unit for display.
func FormatPrice(amount int64) string {
	return fmt.Sprintf("₹%d", amount)
}

// Menu is the storefront menu page with the cart badge.
type Menu struct {
	Categories []models.Category `json:"categories"`
	Selected   models.Category   `json:"selected"`
	Items      []models.MenuItem `json:"items"`
	Cart       CartSummary       `json:"cart"`
}

// CartSummary is the cart badge shown on the menu.
type CartSummary struct {
	Count int    `json:"count"`
	Total int64  `json:"total"`
	Label string `json:"label"`
}

// CartLine is one cart row with its price subtotal.
type CartLine struct {
	models.CartLine
	Subtotal      int64  `json:"subtotal"`
	SubtotalLabel string `json:"subtotalLabel"`
}

// Cart is the cart page. CanCheckout is false for an empty cart.
type Cart struct {
	Lines       []CartLine `json:"lines"`
	TotalPrice  int64      `json:"totalPrice"`
	TotalCount  int        `json:"totalCount"`
	TotalLabel  string     `json:"totalLabel"`
	CanCheckout bool       `json:"canCheckout"`
}

// NewMenu filters items to the selected category. An empty selection means All.
func NewMenu(items []models.MenuItem, selected models.Category, cartCount int, cartTotal int64) Menu {
	if selected == "" {
		selected = models.CategoryAll
	}
	return Menu{
		Categories: catalog.Categories(),
		Selected:   selected,
		Items:      catalog.FilterByCategory(items, selected),
		Cart:       CartSummary{Count: cartCount, Total: cartTotal, Label: FormatPrice(cartTotal)},
	}
}

// NewCart labels every line and the total.
func NewCart(lines []models.CartLine, totalPrice int64, totalCount int) Cart {
	out := Cart{
		Lines:       make([]CartLine, 0, len(lines)),
		TotalPrice:  totalPrice,
		TotalCount:  totalCount,
		TotalLabel:  FormatPrice(totalPrice),
		CanCheckout: len(lines) > 0,
	}
	for _, l := range lines {
		out.Lines = append(out.Lines, CartLine{CartLine: l, Subtotal: l.Subtotal(), SubtotalLabel: FormatPrice(l.Subtotal())})
	}
	return out
}

// Tracker is the order success page. Found is false once the order is gone.
type Tracker struct {
	Found         bool                  `json:"found"`
	OrderID       string                `json:"orderId"`
	OrderNumber   int64                 `json:"orderNumber,omitempty"`
	Status        *orders.StatusDisplay `json:"status,omitempty"`
	Items         []models.CartLine     `json:"items,omitempty"`
	Total         int64                 `json:"total,omitempty"`
	TotalLabel    string                `json:"totalLabel,omitempty"`
	PaymentMethod models.PaymentMethod  `json:"paymentMethod,omitempty"`
	CreatedAt     *time.Time            `json:"createdAt,omitempty"`
}

// NewTracker renders o, or a not-found tracker when o is nil.
func NewTracker(orderID string, o *models.Order) Tracker {
	if o == nil {
		return Tracker{OrderID: orderID}
	}
	display := orders.Describe(o.Status)
	return Tracker{
		Found:         true,
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		Status:        &display,
		Items:         o.Items,
		Total:         o.Total,
		TotalLabel:    FormatPrice(o.Total),
		PaymentMethod: o.PaymentMethod,
		CreatedAt:     o.CreatedAt,
	}
}

// OrderCard is one order on the dashboard.
type OrderCard struct {
	models.Order
	MinutesAgo  int    `json:"minutesAgo"`
	TotalLabel  string `json:"totalLabel"`
	CanComplete bool   `json:"canComplete"`
}

// Stats counts pending orders against all orders.
type Stats struct {
	Pending int `json:"pending"`
	Total   int `json:"total"`
}

// Dashboard is the cook view of every order
type Dashboard struct {
	User      *auth.User  `json:"user,omitempty"`
	Pending   []OrderCard `json:"pending"`
	Completed []OrderCard `json:"completed"`
	Stats     Stats       `json:"stats"`
}

// NewDashboard partitions an ascending order list for the cook.
func NewDashboard(user *auth.User, list []models.Order, now time.Time) Dashboard {
	board := orders.Partition(list)
	return Dashboard{
		User:      user,
		Pending:   cards(board.Pending, now),
		Completed: cards(board.Completed, now),
		Stats:     Stats{Pending: board.PendingCount, Total: board.TotalCount},
	}
}

func cards(list []models.Order, now time.Time) []OrderCard {
	out := make([]OrderCard, 0, len(list))
	for _, o := range list {
		created := orders.NormalizeCreatedAt(o.CreatedAt, o.OrderNumber, now)
		minutes := int(now.Sub(created) / time.Minute)
		if minutes < 0 {
			minutes = 0
		}
		out = append(out, OrderCard{
			Order:       o,
			MinutesAgo:  minutes,
			TotalLabel:  FormatPrice(o.Total),
			CanComplete: orders.CanTransition(o.Status, models.StatusCompleted),
		})
	}
	return out
}
