// Package cart holds per-session shopping carts and turns them into orders.
package cart

import (
	"context"
	"sync"
	"time"

	"foodstall/internal/models"
)

// OrderCreator persists a new order.
type OrderCreator interface {
	Create(ctx context.Context, draft models.OrderDraft) (models.PlacedOrder, error)
}

// Cart is one browsing session's lines. At most one line per item id.
type Cart struct {
	mu      sync.Mutex
	lines   []models.CartLine
	creator OrderCreator
	now     func() time.Time
}

// New creates an empty cart that places orders through creator.
func New(creator OrderCreator) *Cart {
	return &Cart{creator: creator, now: time.Now}
}

// AddItem increments the item's line or appends it with quantity 1.
func (c *Cart) AddItem(item models.MenuItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ID == item.ID {
			c.lines[i].Quantity++
			return
		}
	}
	c.lines = append(c.lines, models.CartLine{MenuItem: item, Quantity: 1})
}

// RemoveItem drops the item's line if present.
func (c *Cart) RemoveItem(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(id)
}

func (c *Cart) remove(id string) {
	for i := range c.lines {
		if c.lines[i].ID == id {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// SetQuantity sets the item's quantity. Zero or less removes the line.
// Items not in the cart are ignored.
func (c *Cart) SetQuantity(id string, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if quantity <= 0 {
		c.remove(id)
		return
	}
	for i := range c.lines {
		if c.lines[i].ID == id {
			c.lines[i].Quantity = quantity
			return
		}
	}
}

// TotalPrice is the sum of price times quantity over all lines.
func (c *Cart) TotalPrice() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalPrice()
}

func (c *Cart) totalPrice() int64 {
	var total int64
	for _, l := range c.lines {
		total += l.Subtotal()
	}
	return total
}

// TotalCount is the sum of quantities.
func (c *Cart) TotalCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for _, l := range c.lines {
		count += l.Quantity
	}
	return count
}

// Lines returns a copy of the current lines.
func (c *Cart) Lines() []models.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.CartLine{}, c.lines...)
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

// PlaceOrder turns the cart into a pending order. The cart is cleared only
// once the store confirms the order; on any failure it is left as it was.
func (c *Cart) PlaceOrder(ctx context.Context, paymentMethod string) (models.PlacedOrder, error) {
	method, err := models.ParsePaymentMethod(paymentMethod)
	if err != nil {
		return models.PlacedOrder{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.lines) == 0 {
		return models.PlacedOrder{}, models.ErrEmptyCart
	}

	placed, err := c.creator.Create(ctx, models.OrderDraft{
		OrderNumber:   c.now().UnixMilli(),
		Items:         append([]models.CartLine(nil), c.lines...),
		Total:         c.totalPrice(),
		PaymentMethod: method,
		Status:        models.StatusPending,
	})
	if err != nil {
		return models.PlacedOrder{}, err
	}

	c.lines = nil
	return placed, nil
}
