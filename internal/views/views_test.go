package views

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodstall/internal/catalog"
	"foodstall/internal/models"
)

func TestNewMenu_FiltersAndSummarizesCart(t *testing.T) {
	v := NewMenu(catalog.DefaultCatalog(), models.CategoryDesserts, 3, 250)

	assert.Equal(t, models.CategoryDesserts, v.Selected)
	require.NotEmpty(t, v.Items)
	for _, item := range v.Items {
		assert.Equal(t, models.CategoryDesserts, item.Category)
	}
	assert.Equal(t, "₹250", v.Cart.Label)
	assert.Equal(t, models.CategoryAll, v.Categories[0])
}

func TestNewMenu_DefaultsToAll(t *testing.T) {
	items := catalog.DefaultCatalog()
	v := NewMenu(items, "", 0, 0)

	assert.Equal(t, models.CategoryAll, v.Selected)
	assert.Len(t, v.Items, len(items))
}

func TestNewCart(t *testing.T) {
	lines := []models.CartLine{
		{MenuItem: models.MenuItem{ID: "1", Price: 100}, Quantity: 2},
		{MenuItem: models.MenuItem{ID: "2", Price: 50}, Quantity: 1},
	}
	v := NewCart(lines, 250, 3)

	assert.True(t, v.CanCheckout)
	assert.Equal(t, int64(200), v.Lines[0].Subtotal)
	assert.Equal(t, "₹250", v.TotalLabel)

	empty := NewCart(nil, 0, 0)
	assert.False(t, empty.CanCheckout)
	assert.NotNil(t, empty.Lines)
}

func TestNewTracker(t *testing.T) {
	missing := NewTracker("gone", nil)
	assert.False(t, missing.Found)
	assert.Equal(t, "gone", missing.OrderID)

	o := &models.Order{ID: "o1", OrderNumber: 42, Status: models.StatusReady, Total: 90, PaymentMethod: models.PaymentCard}
	v := NewTracker("o1", o)
	assert.True(t, v.Found)
	require.NotNil(t, v.Status)
	assert.Equal(t, 3, v.Status.Step)
	assert.Equal(t, "₹90", v.TotalLabel)
}

func TestNewDashboard(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 30, 0, 0, time.UTC)
	placed := now.Add(-12 * time.Minute)
	done := now.Add(-40 * time.Minute)
	list := []models.Order{
		{ID: "done", Status: models.StatusCompleted, CreatedAt: &done},
		{ID: "new", Status: models.StatusPending, CreatedAt: &placed},
		{ID: "inflight", Status: models.StatusPending, OrderNumber: now.Add(-2 * time.Minute).UnixMilli()},
	}

	v := NewDashboard(nil, list, now)

	assert.Equal(t, Stats{Pending: 2, Total: 3}, v.Stats)
	require.Len(t, v.Pending, 2)
	assert.Equal(t, 12, v.Pending[0].MinutesAgo)
	assert.Equal(t, 2, v.Pending[1].MinutesAgo)
	assert.True(t, v.Pending[0].CanComplete)
	require.Len(t, v.Completed, 1)
	assert.False(t, v.Completed[0].CanComplete)
}
