package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"farmmarket/internal/domain"
	apperrors "farmmarket/internal/errors"
	"farmmarket/internal/order/codec"
)

// Store keeps whole order aggregates in process memory. It satisfies the same
// contract as the relational store and is meant for tests and local runs.
type Store struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

func NewStore(logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		orders: make(map[string]domain.Order),
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return s.collect(ctx, "list orders", func(domain.Order) bool { return true })
}

func (s *Store) ListOrdersByFarmer(ctx context.Context, farmerID string) ([]domain.Order, error) {
	return s.collect(ctx, "list orders by farmer", func(o domain.Order) bool { return o.FarmerID == farmerID })
}

func (s *Store) collect(ctx context.Context, op string, keep func(domain.Order) bool) ([]domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewStoreError(op, err)
	}

	s.mu.RLock()
	out := make([]domain.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if keep(o) {
			out = append(out, codec.CloneOrder(o))
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) CreateOrder(ctx context.Context, draft domain.OrderDraft) (*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewWriteError("create order", "", err)
	}
	if err := draft.CheckMoneyScale(); err != nil {
		return nil, apperrors.NewWriteError("create order", "", err)
	}

	order := draft.Materialize(s.newID(), s.now().UTC().Truncate(time.Microsecond))
	order.Products = codec.CloneItems(draft.Products)

	s.mu.Lock()
	s.orders[order.ID] = order
	s.mu.Unlock()

	s.logger.Debug("order stored in memory",
		zap.String("orderId", order.ID),
		zap.Int("itemCount", len(order.Products)),
	)

	created := codec.CloneOrder(order)
	return &created, nil
}

func (s *Store) SetOrderStatus(ctx context.Context, id string, status string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, apperrors.NewWriteError("update status", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return false, nil
	}
	o.Status = status
	s.orders[id] = o
	return true, nil
}
