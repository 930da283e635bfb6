package orders

import (
	"sort"
	"time"

	"foodstall/internal/models"
)

// NormalizeCreatedAt resolves an order's creation time. A store timestamp wins;
// while it is pending the order number (wall-clock ms at placement) stands in,
// and without either the current time is used.
func NormalizeCreatedAt(createdAt *time.Time, orderNumber int64, now time.Time) time.Time {
	if createdAt != nil && !createdAt.IsZero() {
		return createdAt.UTC()
	}
	if orderNumber > 0 {
		return time.UnixMilli(orderNumber).UTC()
	}
	return now.UTC()
}

// normalizeOrders fills createdAt on every order and sorts ascending by it.
// The store already orders by createdAt; the stable sort only settles
// orders whose timestamp was still pending.
func normalizeOrders(list []models.Order, now time.Time) []models.Order {
	for i := range list {
		created := NormalizeCreatedAt(list[i].CreatedAt, list[i].OrderNumber, now)
		list[i].CreatedAt = &created
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(*list[j].CreatedAt)
	})
	return list
}
