package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodstall/internal/livequery"
	"foodstall/internal/logger"
	"foodstall/internal/models"
	"foodstall/internal/store"
)

func newTestStore() (*Store, *store.Memory) {
	mem := store.NewMemory()
	broker := livequery.NewBroker()
	return NewStore(mem, broker, broker, logger.Discard()), mem
}

func draft(orderNumber int64) models.OrderDraft {
	return models.OrderDraft{
		OrderNumber:   orderNumber,
		Items:         []models.CartLine{{MenuItem: models.MenuItem{ID: "1", Price: 100}, Quantity: 1}},
		Total:         100,
		PaymentMethod: models.PaymentCash,
		Status:        models.StatusPending,
	}
}

func waitFor[T any](t *testing.T, ch <-chan T, match func(T) bool) T {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case v := <-ch:
			if match(v) {
				return v
			}
		case <-deadline:
			t.Fatal("timed out waiting for matching delivery")
			var zero T
			return zero
		}
	}
}

func TestCreate_ReturnsIdentifiers(t *testing.T) {
	s, mem := newTestStore()
	n := &recordingNotifier{}
	s.WithNotifications(n)

	placed, err := s.Create(context.Background(), draft(1_750_000_000_000))
	require.NoError(t, err)

	assert.NotEmpty(t, placed.ID)
	assert.Equal(t, int64(1_750_000_000_000), placed.OrderNumber)
	assert.Equal(t, 1, mem.Calls("InsertOrder"))
	require.Len(t, n.msgs, 1)
	assert.Equal(t, "pending", n.msgs[0].NewStatus)
	assert.Equal(t, int64(100), n.msgs[0].Total)
}

func TestCreate_Failure(t *testing.T) {
	s, mem := newTestStore()
	mem.Fail("InsertOrder", errors.New("offline"))

	_, err := s.Create(context.Background(), draft(1))

	var writeErr *models.StoreWriteError
	assert.ErrorAs(t, err, &writeErr)
}

func TestSubscribeAll_FansOutToEverySubscriber(t *testing.T) {
	s, _ := newTestStore()
	tracker := make(chan []models.Order, 8)
	dashboard := make(chan []models.Order, 8)

	subA := s.SubscribeAll(func(list []models.Order) { tracker <- list })
	defer subA.Close()
	subB := s.SubscribeAll(func(list []models.Order) { dashboard <- list })
	defer subB.Close()

	_, err := s.Create(context.Background(), draft(1))
	require.NoError(t, err)

	hasOne := func(list []models.Order) bool { return len(list) == 1 }
	waitFor(t, tracker, hasOne)
	waitFor(t, dashboard, hasOne)
}

func TestSubscribeAll_NormalizesAndSorts(t *testing.T) {
	s, mem := newTestStore()
	mem.DeferTimestamps = true
	ctx := context.Background()

	early := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	_, err := s.Create(ctx, draft(early.Add(time.Minute).UnixMilli()))
	require.NoError(t, err)
	_, err = s.Create(ctx, draft(early.UnixMilli()))
	require.NoError(t, err)

	got := make(chan []models.Order, 4)
	sub := s.SubscribeAll(func(list []models.Order) { got <- list })
	defer sub.Close()

	list := waitFor(t, got, func(l []models.Order) bool { return len(l) == 2 })
	require.NotNil(t, list[0].CreatedAt)
	assert.True(t, list[0].CreatedAt.Equal(early))
	assert.True(t, list[1].CreatedAt.After(*list[0].CreatedAt))
}

func TestSubscribeAll_InitialReadFailureDeliversEmptyList(t *testing.T) {
	s, mem := newTestStore()
	mem.Fail("ListOrders", errors.New("unavailable"))
	got := make(chan []models.Order, 4)

	sub := s.SubscribeAll(func(list []models.Order) { got <- list })
	defer sub.Close()

	list := waitFor(t, got, func([]models.Order) bool { return true })
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestSubscribeAll_LaterReadFailureKeepsLastList(t *testing.T) {
	s, mem := newTestStore()
	ctx := context.Background()
	_, err := s.Create(ctx, draft(1))
	require.NoError(t, err)

	got := make(chan []models.Order, 4)
	sub := s.SubscribeAll(func(list []models.Order) { got <- list })
	defer sub.Close()
	waitFor(t, got, func(l []models.Order) bool { return len(l) == 1 })

	mem.Fail("ListOrders", errors.New("unavailable"))
	_, err = s.Create(ctx, draft(2))
	require.NoError(t, err)

	// the refetch after the create still ran
	require.Eventually(t, func() bool { return mem.Calls("ListOrders") >= 2 }, time.Second, 5*time.Millisecond)
	select {
	case list := <-got:
		t.Fatalf("failed refetch should not replace the list, got %d orders", len(list))
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribeOne_InitialReadFailureDeliversNil(t *testing.T) {
	s, mem := newTestStore()
	placed, err := s.Create(context.Background(), draft(1))
	require.NoError(t, err)
	mem.Fail("GetOrder", errors.New("unavailable"))

	got := make(chan *models.Order, 1)
	sub := s.SubscribeOne(placed.ID, func(o *models.Order) { got <- o })
	defer sub.Close()

	assert.Nil(t, waitFor(t, got, func(*models.Order) bool { return true }))
}

func TestListOrEmpty(t *testing.T) {
	s, mem := newTestStore()
	ctx := context.Background()
	_, err := s.Create(ctx, draft(1))
	require.NoError(t, err)
	assert.Len(t, s.ListOrEmpty(ctx), 1)

	mem.Fail("ListOrders", errors.New("unavailable"))
	list := s.ListOrEmpty(ctx)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestLookup(t *testing.T) {
	s, mem := newTestStore()
	ctx := context.Background()
	placed, err := s.Create(ctx, draft(1))
	require.NoError(t, err)

	o := s.Lookup(ctx, placed.ID)
	require.NotNil(t, o)
	assert.Equal(t, placed.ID, o.ID)
	assert.Nil(t, s.Lookup(ctx, "missing"))

	mem.Fail("GetOrder", errors.New("unavailable"))
	assert.Nil(t, s.Lookup(ctx, placed.ID))
}

func TestSubscribeOne_DeliversUpdatesThenNotFound(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()
	placed, err := s.Create(ctx, draft(1))
	require.NoError(t, err)

	got := make(chan *models.Order, 8)
	sub := s.SubscribeOne(placed.ID, func(o *models.Order) { got <- o })
	defer sub.Close()

	first := waitFor(t, got, func(o *models.Order) bool { return o != nil })
	assert.Equal(t, models.StatusPending, first.Status)

	require.NoError(t, s.Update(ctx, placed.ID, models.OrderUpdate{Status: models.StatusCompleted, UpdatedAt: time.Now()}))
	waitFor(t, got, func(o *models.Order) bool { return o != nil && o.Status == models.StatusCompleted })

	require.NoError(t, s.BatchDelete(ctx, []string{placed.ID}))
	waitFor(t, got, func(o *models.Order) bool { return o == nil })
}

func TestSubscribeOne_UnknownOrder(t *testing.T) {
	s, _ := newTestStore()
	got := make(chan *models.Order, 1)

	sub := s.SubscribeOne("missing", func(o *models.Order) { got <- o })
	defer sub.Close()

	assert.Nil(t, waitFor(t, got, func(*models.Order) bool { return true }))
}
