package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"farmmarket/internal/domain"
	apperrors "farmmarket/internal/errors"
	"farmmarket/internal/testutil"
)

// steppingClock returns times one second apart, starting at base.
func steppingClock(base time.Time) func() time.Time {
	var mu sync.Mutex
	next := base
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := next
		next = next.Add(time.Second)
		return t
	}
}

func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%03d", prefix, n)
	}
}

func newTestStore() *Store {
	return NewStore(zap.NewNop(),
		WithClock(steppingClock(time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC))),
		WithIDGenerator(sequentialIDs("ord")),
	)
}

func TestStore_CreateOrder_Tomatoes(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	draft := domain.OrderDraft{
		CustomerID: "c1",
		FarmerID:   "f1",
		Products: []domain.LineItem{
			{ProductID: "p1", ProductName: "Tomatoes", Quantity: 5, Price: decimal.RequireFromString("2.50")},
		},
		Total:  decimal.RequireFromString("12.50"),
		Status: domain.OrderStatusPending,
	}

	created, err := store.CreateOrder(ctx, draft)
	require.NoError(t, err)
	assert.Equal(t, "ord-001", created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	orders, err := store.ListOrdersByFarmer(ctx, "f1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, created.ID, orders[0].ID)
	require.Len(t, orders[0].Products, 1)
	assert.Equal(t, "Tomatoes", orders[0].Products[0].ProductName)
	assert.Equal(t, 5, orders[0].Products[0].Quantity)
	assert.True(t, orders[0].Products[0].Price.Equal(decimal.RequireFromString("2.50")))
	assert.True(t, orders[0].Total.Equal(decimal.RequireFromString("12.50")))
}

func TestStore_RoundTripGeneratedDrafts(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	drafts := map[string]domain.OrderDraft{}
	for i := 0; i < 20; i++ {
		draft := testutil.FakeDraft(fmt.Sprintf("farmer-%d", i%3), i%5)
		created, err := store.CreateOrder(ctx, draft)
		require.NoError(t, err)
		drafts[created.ID] = draft
	}

	orders, err := store.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 20)

	for _, o := range orders {
		draft, ok := drafts[o.ID]
		require.True(t, ok)

		assert.Equal(t, draft.CustomerID, o.CustomerID)
		assert.Equal(t, draft.FarmerID, o.FarmerID)
		assert.True(t, draft.Total.Equal(o.Total))
		require.Len(t, o.Products, len(draft.Products))
		for i := range draft.Products {
			assert.Equal(t, draft.Products[i].ProductID, o.Products[i].ProductID)
			assert.Equal(t, draft.Products[i].Quantity, o.Products[i].Quantity)
			assert.True(t, draft.Products[i].Price.Equal(o.Products[i].Price))
		}
	}
}

func TestStore_CreateOrder_RejectsSubCentPrice(t *testing.T) {
	store := newTestStore()
	draft := testutil.FakeDraft("f1", 1)
	draft.Products[0].Price = decimal.RequireFromString("2.555")

	order, err := store.CreateOrder(context.Background(), draft)
	assert.Nil(t, order)
	_, ok := apperrors.IsWriteError(err)
	require.True(t, ok)
	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "products[0].price", ve.Details[0].Field)

	orders, err := store.ListOrders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestStore_CreateOrder_NormalizesEstimatedDelivery(t *testing.T) {
	store := newTestStore()
	draft := testutil.FakeDraft("f1", 1)
	draft.EstimatedDelivery = time.Date(2026, 5, 1, 12, 0, 0, 123456789, time.FixedZone("UTC-5", -5*3600))

	_, err := store.CreateOrder(context.Background(), draft)
	require.NoError(t, err)

	orders, err := store.ListOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, time.Date(2026, 5, 1, 17, 0, 0, 123456000, time.UTC), orders[0].EstimatedDelivery)
	assert.Equal(t, time.UTC, orders[0].EstimatedDelivery.Location())
}

func TestStore_ZeroItemOrder(t *testing.T) {
	store := newTestStore()

	_, err := store.CreateOrder(context.Background(), testutil.FakeDraft("f1", 0))
	require.NoError(t, err)

	orders, err := store.ListOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.NotNil(t, orders[0].Products)
	assert.Empty(t, orders[0].Products)
}

func TestStore_ListOrders_NewestFirst(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		o, err := store.CreateOrder(ctx, testutil.FakeDraft("f1", 1))
		require.NoError(t, err)
		ids = append(ids, o.ID)
	}

	orders, err := store.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 5)
	for i := 1; i < len(orders); i++ {
		assert.False(t, orders[i].CreatedAt.After(orders[i-1].CreatedAt))
	}
	assert.Equal(t, ids[4], orders[0].ID)
	assert.Equal(t, ids[0], orders[4].ID)
}

func TestStore_ListOrders_TieBrokenByID(t *testing.T) {
	fixed := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	store := NewStore(zap.NewNop(),
		WithClock(func() time.Time { return fixed }),
		WithIDGenerator(sequentialIDs("tie")),
	)

	for i := 0; i < 3; i++ {
		_, err := store.CreateOrder(context.Background(), testutil.FakeDraft("f1", 0))
		require.NoError(t, err)
	}

	orders, err := store.ListOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, []string{"tie-003", "tie-002", "tie-001"}, []string{orders[0].ID, orders[1].ID, orders[2].ID})
}

func TestStore_ListOrdersByFarmer_Filters(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		_, err := store.CreateOrder(ctx, testutil.FakeDraft(fmt.Sprintf("f%d", i%2), 1))
		require.NoError(t, err)
	}

	orders, err := store.ListOrdersByFarmer(ctx, "f1")
	require.NoError(t, err)
	require.Len(t, orders, 3)
	for _, o := range orders {
		assert.Equal(t, "f1", o.FarmerID)
	}

	none, err := store.ListOrdersByFarmer(ctx, "unknown")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestStore_ReadsAreIdempotent(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := store.CreateOrder(ctx, testutil.FakeDraft("f1", 2))
		require.NoError(t, err)
	}

	first, err := store.ListOrders(ctx)
	require.NoError(t, err)
	second, err := store.ListOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestStore_NoAliasing(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	draft := testutil.FakeDraft("f1", 1)
	draft.Products[0].Quantity = 3
	created, err := store.CreateOrder(ctx, draft)
	require.NoError(t, err)

	draft.Products[0].Quantity = 100
	created.Products[0].Quantity = 200

	orders, err := store.ListOrders(ctx)
	require.NoError(t, err)
	orders[0].Products[0].Quantity = 300

	again, err := store.ListOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, again[0].Products[0].Quantity)
}

func TestStore_SetOrderStatus(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	created, err := store.CreateOrder(ctx, testutil.FakeDraft("f1", 1))
	require.NoError(t, err)

	matched, err := store.SetOrderStatus(ctx, created.ID, domain.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.True(t, matched)

	matched, err = store.SetOrderStatus(ctx, created.ID, domain.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.True(t, matched)

	orders, err := store.ListOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, orders[0].Status)
	assert.Equal(t, created.Products, orders[0].Products)

	matched, err = store.SetOrderStatus(ctx, "missing", domain.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.False(t, matched)

	unchanged, err := store.ListOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, unchanged, 1)
}

func TestStore_CancelledContext(t *testing.T) {
	store := newTestStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.CreateOrder(ctx, testutil.FakeDraft("f1", 1))
	_, ok := apperrors.IsWriteError(err)
	assert.True(t, ok)

	_, err = store.ListOrders(ctx)
	_, ok = apperrors.IsStoreError(err)
	assert.True(t, ok)

	orders, err := store.ListOrders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestStore_ConcurrentCreates(t *testing.T) {
	store := NewStore(zap.NewNop())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.CreateOrder(ctx, testutil.FakeDraft("f1", 3))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	orders, err := store.ListOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 50)
	for _, o := range orders {
		assert.Len(t, o.Products, 3)
	}
}
