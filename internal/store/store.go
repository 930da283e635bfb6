// Package store defines the document store the catalog and order stores sit on.
package store

import (
	"context"
	"time"

	"foodstall/internal/models"
)

// Backend is the persisted menu and orders collections. Every method is a
// single atomic statement on the backing service.
type Backend interface {
	ListMenu(ctx context.Context) ([]models.MenuItem, error)
	UpsertMenuItem(ctx context.Context, item models.MenuItem) error
	// SetMenuAvailability returns models.ErrNotFound when the item does not exist.
	SetMenuAvailability(ctx context.Context, id string, available bool, at time.Time) error

	// ListOrders returns every order ordered by createdAt ascending.
	ListOrders(ctx context.Context) ([]models.Order, error)
	// GetOrder returns models.ErrNotFound when the order does not exist.
	GetOrder(ctx context.Context, id string) (models.Order, error)
	// InsertOrder assigns id and createdAt.
	InsertOrder(ctx context.Context, draft models.OrderDraft) (models.Order, error)
	// UpdateOrder returns models.ErrNotFound when the order does not exist.
	UpdateOrder(ctx context.Context, id string, upd models.OrderUpdate) error
	// DeleteOrders removes all ids or none. Missing ids are ignored.
	DeleteOrders(ctx context.Context, ids []string) error

	Ping(ctx context.Context) error
}
