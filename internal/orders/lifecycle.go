package orders

import (
	"context"
	"time"

	"foodstall/internal/logger"
	"foodstall/internal/metrics"
	"foodstall/internal/models"
)

// RecentCompletedLimit is how many completed orders the dashboard keeps on screen.
const RecentCompletedLimit = 20

var statusRank = map[models.OrderStatus]int{
	models.StatusPending:   1,
	models.StatusPreparing: 2,
	models.StatusReady:     3,
	models.StatusCompleted: 4,
}

// CanTransition reports whether an order may move from one status to another.
// Moves only go forward; there is no cancel.
func CanTransition(from, to models.OrderStatus) bool {
	f, okFrom := statusRank[from]
	t, okTo := statusRank[to]
	return okFrom && okTo && t > f
}

// Lifecycle applies status changes to orders
type Lifecycle struct {
	store  *Store
	logger *logger.Logger
	now    func() time.Time
}

// NewLifecycle creates a lifecycle that writes through store.
func NewLifecycle(store *Store, log *logger.Logger) *Lifecycle {
	return &Lifecycle{store: store, logger: log, now: time.Now}
}

// Complete marks an order completed. It does not read first, so calling it
// again rewrites the same status with a fresh updatedAt.
func (l *Lifecycle) Complete(ctx context.Context, orderID, changedBy string) error {
	err := l.store.Update(ctx, orderID, models.OrderUpdate{
		Status:    models.StatusCompleted,
		UpdatedAt: l.now().UTC(),
	})
	if err != nil {
		l.logger.Error("order_complete_failed", "Failed to complete order", "", err, map[string]interface{}{
			"order_id": orderID,
		})
		return err
	}

	metrics.OrdersCompleted.Inc()
	l.store.notify(ctx, models.CreateStatusUpdateMessage(orderID, 0, "", models.StatusCompleted, changedBy))
	l.logger.Info("order_completed", "Order marked completed", "", map[string]interface{}{
		"order_id":   orderID,
		"changed_by": changedBy,
	})
	return nil
}

// DeleteCompleted purges the completed orders found in view with one atomic
// delete. It returns how many were removed; an empty selection writes nothing.
func (l *Lifecycle) DeleteCompleted(ctx context.Context, view []models.Order) (int, error) {
	var ids []string
	for _, o := range view {
		if o.Status == models.StatusCompleted {
			ids = append(ids, o.ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}

	if err := l.store.BatchDelete(ctx, ids); err != nil {
		l.logger.Error("orders_purge_failed", "Failed to delete completed orders", "", err, map[string]interface{}{
			"count": len(ids),
		})
		return 0, err
	}

	l.logger.Info("orders_purged", "Deleted completed orders", "", map[string]interface{}{
		"count": len(ids),
	})
	return len(ids), nil
}

// Board is the cook dashboard split of the order list
type Board struct {
	Pending      []models.Order `json:"pending"`
	Completed    []models.Order `json:"completed"`
	PendingCount int            `json:"pendingCount"`
	TotalCount   int            `json:"totalCount"`
}

// Partition splits an ascending order list. Pending keeps every order not yet
// completed, oldest first. Completed keeps the most recent ones, newest first.
func Partition(list []models.Order) Board {
	board := Board{
		Pending:    []models.Order{},
		Completed:  []models.Order{},
		TotalCount: len(list),
	}

	var completed []models.Order
	for _, o := range list {
		if o.Status == models.StatusCompleted {
			completed = append(completed, o)
			continue
		}
		board.Pending = append(board.Pending, o)
	}
	board.PendingCount = len(board.Pending)

	if len(completed) > RecentCompletedLimit {
		completed = completed[len(completed)-RecentCompletedLimit:]
	}
	for i := len(completed) - 1; i >= 0; i-- {
		board.Completed = append(board.Completed, completed[i])
	}
	return board
}

// StatusDisplay is how the tracker shows a status
type StatusDisplay struct {
	Status   models.OrderStatus `json:"status"`
	Label    string             `json:"label"`
	Step     int                `json:"step"`
	Steps    int                `json:"steps"`
	Terminal bool               `json:"terminal"`
	Message  string             `json:"message,omitempty"`
}

// Describe maps a status to its tracker display. Unknown values show as pending.
func Describe(status models.OrderStatus) StatusDisplay {
	d := StatusDisplay{Status: status, Steps: len(statusRank)}
	switch status {
	case models.StatusPreparing:
		d.Label = "Preparing"
	case models.StatusReady:
		d.Label = "Ready"
	case models.StatusCompleted:
		d.Label = "Completed"
		d.Terminal = true
	default:
		d.Status = models.StatusPending
		d.Label = "Pending"
	}
	d.Step = statusRank[d.Status]
	if !d.Terminal {
		d.Message = "Your order is being prepared! You'll see real-time updates here."
	}
	return d
}
