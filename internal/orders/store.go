// Package orders holds the order store and the order lifecycle.
package orders

import (
	"context"
	"errors"
	"time"

	"foodstall/internal/livequery"
	"foodstall/internal/logger"
	"foodstall/internal/metrics"
	"foodstall/internal/models"
	"foodstall/internal/store"
)

// StatusNotifier receives a message for every order created or completed.
type StatusNotifier interface {
	PublishNotification(ctx context.Context, msg *models.StatusUpdateMessage) error
}

// Store reads and writes the orders collection
type Store struct {
	backend       store.Backend
	notifier      livequery.Notifier
	announcer     livequery.Announcer
	notifications StatusNotifier
	logger        *logger.Logger
	now           func() time.Time
}

// NewStore creates an order store. Writes are announced through announcer and
// subscriptions listen on notifier.
func NewStore(backend store.Backend, notifier livequery.Notifier, announcer livequery.Announcer, log *logger.Logger) *Store {
	return &Store{
		backend:   backend,
		notifier:  notifier,
		announcer: announcer,
		logger:    log,
		now:       time.Now,
	}
}

// WithNotifications publishes status messages for the notify command.
func (s *Store) WithNotifications(n StatusNotifier) *Store {
	s.notifications = n
	return s
}

// SubscribeAll delivers every order, ascending by createdAt, on each change.
// A read that fails before anything was delivered yields an empty list; later
// failures are logged and skipped so the last delivered list stays in place.
func (s *Store) SubscribeAll(callback func([]models.Order)) *livequery.Subscription {
	delivered := false
	return livequery.Subscribe(s.notifier, models.CollectionOrders, s.List,
		func(list []models.Order, err error) {
			if err != nil {
				s.logger.Error("subscription_read_failed", "Failed to read orders", "", err, map[string]interface{}{
					"initial": !delivered,
				})
				if delivered {
					return
				}
				list = []models.Order{}
			}
			delivered = true
			callback(list)
		})
}

// SubscribeOne delivers one order on each change. A nil order means it does not
// exist, either never created or already purged. An initial failed read
// delivers nil; later failures keep the last delivered order.
func (s *Store) SubscribeOne(orderID string, callback func(*models.Order)) *livequery.Subscription {
	fetch := func(ctx context.Context) (*models.Order, error) {
		o, err := s.Get(ctx, orderID)
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &o, nil
	}
	delivered := false
	return livequery.Subscribe(s.notifier, models.CollectionOrders, fetch,
		func(o *models.Order, err error) {
			if err != nil {
				s.logger.Error("subscription_read_failed", "Failed to read order", "", err, map[string]interface{}{
					"order_id": orderID,
					"initial":  !delivered,
				})
				if delivered {
					return
				}
				o = nil
			}
			delivered = true
			callback(o)
		})
}

// ListOrEmpty is List for views: a failed read is logged and shows as no orders.
func (s *Store) ListOrEmpty(ctx context.Context) []models.Order {
	list, err := s.List(ctx)
	if err != nil {
		s.logger.Error("orders_read_failed", "Failed to read orders, showing none", "", err, nil)
		return []models.Order{}
	}
	return list
}

// Lookup is Get for views: a missing order and a failed read both yield nil.
func (s *Store) Lookup(ctx context.Context, orderID string) *models.Order {
	o, err := s.Get(ctx, orderID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.Error("order_read_failed", "Failed to read order, showing none", "", err, map[string]interface{}{
				"order_id": orderID,
			})
		}
		return nil
	}
	return &o
}

// List returns all orders with createdAt normalized.
func (s *Store) List(ctx context.Context) ([]models.Order, error) {
	list, err := s.backend.ListOrders(ctx)
	if err != nil {
		metrics.StoreReadFailed("list_orders")
		return nil, &models.StoreReadError{Op: "list_orders", Err: err}
	}
	return normalizeOrders(list, s.now()), nil
}

// Get returns one order with createdAt normalized, or models.ErrNotFound.
func (s *Store) Get(ctx context.Context, orderID string) (models.Order, error) {
	o, err := s.backend.GetOrder(ctx, orderID)
	if errors.Is(err, models.ErrNotFound) {
		return models.Order{}, models.ErrNotFound
	}
	if err != nil {
		metrics.StoreReadFailed("get_order")
		return models.Order{}, &models.StoreReadError{Op: "get_order", Err: err}
	}
	created := NormalizeCreatedAt(o.CreatedAt, o.OrderNumber, s.now())
	o.CreatedAt = &created
	return o, nil
}

// Create appends a new order. The store assigns its id and createdAt.
func (s *Store) Create(ctx context.Context, draft models.OrderDraft) (models.PlacedOrder, error) {
	o, err := s.backend.InsertOrder(ctx, draft)
	if err != nil {
		metrics.StoreWriteFailed("create_order")
		return models.PlacedOrder{}, &models.StoreWriteError{Op: "create_order", Err: err}
	}

	s.announcer.Announce(ctx, models.ChangeEvent{
		Collection: models.CollectionOrders,
		DocumentID: o.ID,
		Op:         "create",
	})
	metrics.OrdersPlaced.WithLabelValues(string(o.PaymentMethod)).Inc()

	msg := models.CreateStatusUpdateMessage(o.ID, o.OrderNumber, "", o.Status, "checkout")
	msg.Total = o.Total
	s.notify(ctx, msg)

	return models.PlacedOrder{ID: o.ID, OrderNumber: o.OrderNumber}, nil
}

// Update writes status fields in place without reading the order first.
func (s *Store) Update(ctx context.Context, orderID string, upd models.OrderUpdate) error {
	if err := s.backend.UpdateOrder(ctx, orderID, upd); err != nil {
		metrics.StoreWriteFailed("update_order")
		return &models.StoreWriteError{Op: "update_order", Err: err}
	}

	s.announcer.Announce(ctx, models.ChangeEvent{
		Collection: models.CollectionOrders,
		DocumentID: orderID,
		Op:         "update",
	})
	return nil
}

// BatchDelete removes every id in one atomic write.
func (s *Store) BatchDelete(ctx context.Context, orderIDs []string) error {
	if err := s.backend.DeleteOrders(ctx, orderIDs); err != nil {
		metrics.StoreWriteFailed("bulk_delete")
		return &models.StoreWriteError{Op: "bulk_delete", Err: err}
	}

	s.announcer.Announce(ctx, models.ChangeEvent{
		Collection: models.CollectionOrders,
		Op:         "delete",
	})
	metrics.OrdersPurged.Add(float64(len(orderIDs)))
	return nil
}

func (s *Store) notify(ctx context.Context, msg *models.StatusUpdateMessage) {
	if s.notifications == nil {
		return
	}
	if err := s.notifications.PublishNotification(context.WithoutCancel(ctx), msg); err != nil {
		s.logger.Error("notification_publish_failed", "Failed to publish order notification", "", err, map[string]interface{}{
			"order_id":   msg.OrderID,
			"new_status": msg.NewStatus,
		})
	}
}
