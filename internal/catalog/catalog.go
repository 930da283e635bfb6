// Package catalog is the menu store: seeding, live listing and availability.
package catalog

import (
	"context"
	"time"

	"foodstall/internal/livequery"
	"foodstall/internal/logger"
	"foodstall/internal/metrics"
	"foodstall/internal/models"
	"foodstall/internal/store"
)

// Catalog reads and writes the menu collection
type Catalog struct {
	backend   store.Backend
	notifier  livequery.Notifier
	announcer livequery.Announcer
	logger    *logger.Logger
	now       func() time.Time
}

// New creates a catalog over backend. Writes are announced through announcer.
func New(backend store.Backend, notifier livequery.Notifier, announcer livequery.Announcer, log *logger.Logger) *Catalog {
	return &Catalog{
		backend:   backend,
		notifier:  notifier,
		announcer: announcer,
		logger:    log,
		now:       time.Now,
	}
}

// Initialize seeds the default items when the collection is empty.
// Two instances starting together may both seed; the upsert keeps the result the same.
func (c *Catalog) Initialize(ctx context.Context) (int, error) {
	requestID := logger.GenerateRequestID()

	existing, err := c.backend.ListMenu(ctx)
	if err != nil {
		metrics.StoreReadFailed("list_menu")
		readErr := &models.StoreReadError{Op: "list_menu", Err: err}
		c.logger.Error("menu_seed_failed", "Failed to read menu before seeding", requestID, readErr, nil)
		return 0, readErr
	}
	if len(existing) > 0 {
		c.logger.Debug("menu_seed_skipped", "Menu already has items", requestID, map[string]interface{}{
			"items": len(existing),
		})
		return 0, nil
	}

	seeded := 0
	for _, item := range DefaultCatalog() {
		if err := c.backend.UpsertMenuItem(ctx, item); err != nil {
			metrics.StoreWriteFailed("upsert_menu_item")
			writeErr := &models.StoreWriteError{Op: "upsert_menu_item", Err: err}
			c.logger.Error("menu_seed_failed", "Failed to seed menu item", requestID, writeErr, map[string]interface{}{
				"item_id": item.ID,
			})
			return seeded, writeErr
		}
		seeded++
	}

	c.announcer.Announce(ctx, models.ChangeEvent{Collection: models.CollectionMenu, Op: "seed"})
	c.logger.Info("menu_seeded", "Seeded default menu", requestID, map[string]interface{}{
		"items": seeded,
	})
	return seeded, nil
}

// Subscribe delivers the full menu on every change. An empty or unreadable
// collection delivers the default catalog instead.
func (c *Catalog) Subscribe(callback func([]models.MenuItem)) *livequery.Subscription {
	return livequery.Subscribe(c.notifier, models.CollectionMenu, c.backend.ListMenu,
		func(items []models.MenuItem, err error) {
			callback(c.orDefaults(items, err))
		})
}

// Items is a one-shot read with the same fallback as Subscribe.
func (c *Catalog) Items(ctx context.Context) []models.MenuItem {
	items, err := c.backend.ListMenu(ctx)
	return c.orDefaults(items, err)
}

// Item looks up one item in the current menu.
func (c *Catalog) Item(ctx context.Context, id string) (models.MenuItem, error) {
	for _, item := range c.Items(ctx) {
		if item.ID == id {
			return item, nil
		}
	}
	return models.MenuItem{}, models.ErrNotFound
}

func (c *Catalog) orDefaults(items []models.MenuItem, err error) []models.MenuItem {
	if err != nil {
		metrics.StoreReadFailed("list_menu")
		c.logger.Error("subscription_read_failed", "Failed to read menu, serving defaults", "",
			&models.StoreReadError{Op: "list_menu", Err: err}, nil)
		return DefaultCatalog()
	}
	if len(items) == 0 {
		return DefaultCatalog()
	}
	return items
}

// SetAvailability flips one item's available flag. Subscribers see the change
// on their next delivery.
func (c *Catalog) SetAvailability(ctx context.Context, itemID string, available bool) error {
	err := c.backend.SetMenuAvailability(ctx, itemID, available, c.now().UTC())
	if err != nil {
		metrics.StoreWriteFailed("set_availability")
		return &models.StoreWriteError{Op: "set_availability", Err: err}
	}

	c.announcer.Announce(ctx, models.ChangeEvent{
		Collection: models.CollectionMenu,
		DocumentID: itemID,
		Op:         "update",
	})
	c.logger.Info("menu_availability_changed", "Menu item availability changed", "", map[string]interface{}{
		"item_id":   itemID,
		"available": available,
	})
	return nil
}
