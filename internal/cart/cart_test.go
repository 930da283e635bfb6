package cart

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodstall/internal/livequery"
	"foodstall/internal/logger"
	"foodstall/internal/models"
	"foodstall/internal/orders"
	"foodstall/internal/store"
)

type fakeCreator struct {
	drafts []models.OrderDraft
	err    error
}

func (f *fakeCreator) Create(_ context.Context, d models.OrderDraft) (models.PlacedOrder, error) {
	f.drafts = append(f.drafts, d)
	if f.err != nil {
		return models.PlacedOrder{}, f.err
	}
	return models.PlacedOrder{ID: "order-" + strconv.Itoa(len(f.drafts)), OrderNumber: d.OrderNumber}, nil
}

func item(id string, price int64) models.MenuItem {
	return models.MenuItem{ID: id, Name: "Item " + id, Price: price, Category: models.CategorySnacks, Available: true}
}

func TestCart_AddIncrementsExistingLine(t *testing.T) {
	c := New(&fakeCreator{})
	c.AddItem(item("1", 30))
	c.AddItem(item("1", 30))
	c.AddItem(item("2", 40))

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, 3, c.TotalCount())
	assert.Equal(t, int64(100), c.TotalPrice())
}

func TestCart_SetQuantity(t *testing.T) {
	c := New(&fakeCreator{})
	c.AddItem(item("1", 30))

	c.SetQuantity("1", 4)
	assert.Equal(t, int64(120), c.TotalPrice())

	c.SetQuantity("missing", 3)
	assert.Len(t, c.Lines(), 1)

	c.SetQuantity("1", 0)
	assert.Empty(t, c.Lines())
}

func TestCart_LinesIsACopy(t *testing.T) {
	c := New(&fakeCreator{})
	c.AddItem(item("1", 30))

	lines := c.Lines()
	lines[0].Quantity = 99

	assert.Equal(t, 1, c.Lines()[0].Quantity)
}

func TestCart_TotalsHoldForRandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	menu := []models.MenuItem{item("1", 30), item("2", 45), item("3", 120), item("4", 0)}

	for run := 0; run < 200; run++ {
		c := New(&fakeCreator{})
		for step := 0; step < 50; step++ {
			it := menu[rng.Intn(len(menu))]
			switch rng.Intn(3) {
			case 0:
				c.AddItem(it)
			case 1:
				c.RemoveItem(it.ID)
			case 2:
				c.SetQuantity(it.ID, rng.Intn(6)-2)
			}

			var sum int64
			seen := map[string]bool{}
			for _, l := range c.Lines() {
				require.Greater(t, l.Quantity, 0)
				require.False(t, seen[l.ID], "duplicate line %s", l.ID)
				seen[l.ID] = true
				sum += l.Price * int64(l.Quantity)
			}
			require.Equal(t, sum, c.TotalPrice())
		}
	}
}

func TestPlaceOrder_SnapshotsAndClears(t *testing.T) {
	creator := &fakeCreator{}
	c := New(creator)
	fixed := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	c.AddItem(item("a", 100))
	c.AddItem(item("a", 100))
	c.AddItem(item("b", 50))

	placed, err := c.PlaceOrder(context.Background(), "upi")
	require.NoError(t, err)

	require.Len(t, creator.drafts, 1)
	d := creator.drafts[0]
	assert.Equal(t, int64(250), d.Total)
	require.Len(t, d.Items, 2)
	assert.Equal(t, 2, d.Items[0].Quantity)
	assert.Equal(t, 1, d.Items[1].Quantity)
	assert.Equal(t, models.StatusPending, d.Status)
	assert.Equal(t, models.PaymentUPI, d.PaymentMethod)
	assert.Equal(t, fixed.UnixMilli(), d.OrderNumber)

	assert.Equal(t, "order-1", placed.ID)
	assert.Equal(t, fixed.UnixMilli(), placed.OrderNumber)
	assert.Empty(t, c.Lines())
}

func TestPlaceOrder_DefaultsToCash(t *testing.T) {
	creator := &fakeCreator{}
	c := New(creator)
	c.AddItem(item("a", 10))

	_, err := c.PlaceOrder(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCash, creator.drafts[0].PaymentMethod)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	creator := &fakeCreator{}
	c := New(creator)

	_, err := c.PlaceOrder(context.Background(), "cash")

	assert.ErrorIs(t, err, models.ErrEmptyCart)
	assert.Empty(t, creator.drafts)
}

func TestPlaceOrder_UnknownPaymentMethod(t *testing.T) {
	creator := &fakeCreator{}
	c := New(creator)
	c.AddItem(item("a", 10))

	_, err := c.PlaceOrder(context.Background(), "bitcoin")

	var vErr models.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "paymentMethod", vErr.Field)
	assert.Empty(t, creator.drafts)
	assert.Len(t, c.Lines(), 1)
}

func TestPlaceOrder_StoreFailureKeepsCart(t *testing.T) {
	creator := &fakeCreator{err: &models.StoreWriteError{Op: "create_order", Err: errors.New("offline")}}
	c := New(creator)
	c.AddItem(item("a", 100))

	_, err := c.PlaceOrder(context.Background(), "card")

	var writeErr *models.StoreWriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Len(t, c.Lines(), 1)
}

func TestPlaceOrder_ThroughOrderStore(t *testing.T) {
	mem := store.NewMemory()
	broker := livequery.NewBroker()
	s := orders.NewStore(mem, broker, broker, logger.Discard())
	c := New(s)
	c.AddItem(item("a", 100))

	placed, err := c.PlaceOrder(context.Background(), "cash")
	require.NoError(t, err)

	o, err := s.Get(context.Background(), placed.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), o.Total)
	assert.Equal(t, models.StatusPending, o.Status)
}
