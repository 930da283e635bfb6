package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"foodstall/internal/models"
)

// Memory is a Backend held in process memory.
type Memory struct {
	mu     sync.Mutex
	menu   map[string]models.MenuItem
	orders map[string]models.Order
	now    func() time.Time

	// DeferTimestamps leaves createdAt unset on insert, as a store does while
	// the server timestamp is still pending.
	DeferTimestamps bool

	failures map[string]error
	calls    map[string]int
}

// NewMemory creates an empty store.
func NewMemory() *Memory {
	return &Memory{
		menu:     make(map[string]models.MenuItem),
		orders:   make(map[string]models.Order),
		now:      time.Now,
		failures: make(map[string]error),
		calls:    make(map[string]int),
	}
}

// WithClock sets the time source for createdAt.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

// Fail makes every later call to op return err. A nil err clears it.
func (m *Memory) Fail(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, op)
		return
	}
	m.failures[op] = err
}

// Calls returns how many times op was invoked.
func (m *Memory) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// begin records the call and returns the injected failure for op. Caller holds mu.
func (m *Memory) begin(op string) error {
	m.calls[op]++
	return m.failures[op]
}

func (m *Memory) ListMenu(ctx context.Context) ([]models.MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("ListMenu"); err != nil {
		return nil, err
	}

	items := make([]models.MenuItem, 0, len(m.menu))
	for _, item := range m.menu {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (m *Memory) UpsertMenuItem(ctx context.Context, item models.MenuItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("UpsertMenuItem"); err != nil {
		return err
	}
	m.menu[item.ID] = item
	return nil
}

func (m *Memory) SetMenuAvailability(ctx context.Context, id string, available bool, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("SetMenuAvailability"); err != nil {
		return err
	}
	item, ok := m.menu[id]
	if !ok {
		return models.ErrNotFound
	}
	item.Available = available
	item.UpdatedAt = &at
	m.menu[id] = item
	return nil
}

func (m *Memory) ListOrders(ctx context.Context) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("ListOrders"); err != nil {
		return nil, err
	}

	orders := make([]models.Order, 0, len(m.orders))
	for _, o := range m.orders {
		orders = append(orders, cloneOrder(o))
	}
	// unresolved timestamps sort last, as a server-side ordering would
	sort.SliceStable(orders, func(i, j int) bool {
		a, b := orders[i].CreatedAt, orders[j].CreatedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		case a.Equal(*b):
			return orders[i].OrderNumber < orders[j].OrderNumber
		default:
			return a.Before(*b)
		}
	})
	return orders, nil
}

func (m *Memory) GetOrder(ctx context.Context, id string) (models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("GetOrder"); err != nil {
		return models.Order{}, err
	}
	o, ok := m.orders[id]
	if !ok {
		return models.Order{}, models.ErrNotFound
	}
	return cloneOrder(o), nil
}

func (m *Memory) InsertOrder(ctx context.Context, draft models.OrderDraft) (models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("InsertOrder"); err != nil {
		return models.Order{}, err
	}

	o := models.Order{
		ID:            uuid.NewString(),
		OrderNumber:   draft.OrderNumber,
		Items:         append([]models.CartLine(nil), draft.Items...),
		Total:         draft.Total,
		PaymentMethod: draft.PaymentMethod,
		Status:        draft.Status,
	}
	if !m.DeferTimestamps {
		created := m.now().UTC()
		o.CreatedAt = &created
	}
	m.orders[o.ID] = o
	return cloneOrder(o), nil
}

func (m *Memory) UpdateOrder(ctx context.Context, id string, upd models.OrderUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("UpdateOrder"); err != nil {
		return err
	}
	o, ok := m.orders[id]
	if !ok {
		return models.ErrNotFound
	}
	at := upd.UpdatedAt
	o.Status = upd.Status
	o.UpdatedAt = &at
	m.orders[id] = o
	return nil
}

func (m *Memory) DeleteOrders(ctx context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("DeleteOrders"); err != nil {
		return err
	}
	for _, id := range ids {
		delete(m.orders, id)
	}
	return nil
}

func (m *Memory) Ping(ctx context.Context) error {
	return nil
}

// PutOrder stores o as is. Tests use it to seed fixed ids.
func (m *Memory) PutOrder(o models.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = cloneOrder(o)
}

func cloneOrder(o models.Order) models.Order {
	o.Items = append([]models.CartLine(nil), o.Items...)
	return o
}
