package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"foodstall/internal/models"
)

func TestNormalizeCreatedAt(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	stored := time.Date(2026, 6, 1, 9, 0, 0, 0, time.FixedZone("IST", 5*3600+1800))
	placed := time.Date(2026, 6, 1, 9, 59, 0, 0, time.UTC)

	tests := []struct {
		name        string
		createdAt   *time.Time
		orderNumber int64
		want        time.Time
	}{
		{"store timestamp wins", &stored, placed.UnixMilli(), stored.UTC()},
		{"pending timestamp uses order number", nil, placed.UnixMilli(), placed},
		{"zero timestamp uses order number", &time.Time{}, placed.UnixMilli(), placed},
		{"nothing falls back to now", nil, 0, now},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeCreatedAt(tt.createdAt, tt.orderNumber, now)
			assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestNormalizeOrders_SortsPendingTimestampsIntoPlace(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	first := now.Add(-10 * time.Minute)
	third := now.Add(-1 * time.Minute)
	second := now.Add(-5 * time.Minute)

	list := []models.Order{
		{ID: "a", CreatedAt: &first},
		{ID: "c", CreatedAt: &third},
		{ID: "b", OrderNumber: second.UnixMilli()},
	}

	got := normalizeOrders(list, now)

	assert.Equal(t, []string{"a", "b", "c"}, []string{got[0].ID, got[1].ID, got[2].ID})
	for _, o := range got {
		assert.NotNil(t, o.CreatedAt)
	}
}
