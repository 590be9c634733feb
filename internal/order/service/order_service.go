package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"farmmarket/internal/domain"
	apperrors "farmmarket/internal/errors"
	"farmmarket/internal/order/codec"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type OrderRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, order domain.Order) error
	FindAll(ctx context.Context) ([]domain.Order, error)
	FindByFarmerID(ctx context.Context, farmerID string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status string) (bool, error)
}

type OrderItemRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, item domain.OrderItem) error
}

type Options struct {
	// TxTimeout bounds a whole create transaction. Expiry rolls it back.
	TxTimeout time.Duration
	// ItemWriteConcurrency is the number of item inserts in flight at once.
	// 1 issues them sequentially.
	ItemWriteConcurrency int
	Now                  func() time.Time
	NewID                func() string
}

func (o Options) withDefaults() Options {
	if o.TxTimeout <= 0 {
		o.TxTimeout = 5 * time.Second
	}
	if o.ItemWriteConcurrency < 1 {
		o.ItemWriteConcurrency = 1
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	return o
}

// OrderService is the relational order store. Every create runs in one
// transaction that commits only after the header and all items are written.
type OrderService struct {
	db            TransactionManager
	orderRepo     OrderRepository
	orderItemRepo OrderItemRepository
	logger        *zap.Logger
	opts          Options
}

func NewOrderService(
	db TransactionManager,
	orderRepo OrderRepository,
	orderItemRepo OrderItemRepository,
	logger *zap.Logger,
	opts Options,
) *OrderService {
	return &OrderService{
		db:            db,
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
		logger:        logger,
		opts:          opts.withDefaults(),
	}
}

func (s *OrderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.orderRepo.FindAll(ctx)
	if err != nil {
		return nil, classifyReadError("list orders", err)
	}
	return orders, nil
}

func (s *OrderService) ListOrdersByFarmer(ctx context.Context, farmerID string) ([]domain.Order, error) {
	orders, err := s.orderRepo.FindByFarmerID(ctx, farmerID)
	if err != nil {
		return nil, classifyReadError("list orders by farmer", err)
	}
	return orders, nil
}

func (s *OrderService) CreateOrder(ctx context.Context, draft domain.OrderDraft) (*domain.Order, error) {
	// DECIMAL(12,2) columns would round anything finer.
	if err := draft.CheckMoneyScale(); err != nil {
		return nil, apperrors.NewWriteError("create order", "", err)
	}

	order := draft.Materialize(s.opts.NewID(), s.opts.Now().UTC().Truncate(time.Microsecond))
	order.Products = codec.CloneItems(draft.Products)
	items := codec.EncodeItems(order.ID, order.Products)

	txCtx, cancel := context.WithTimeout(ctx, s.opts.TxTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.String("orderId", order.ID), zap.Error(err))
		return nil, apperrors.NewWriteError("create order", order.ID, err)
	}
	// Rollback is a no-op once the transaction has committed.
	defer tx.Rollback()

	if err := s.orderRepo.Insert(txCtx, tx, order); err != nil {
		s.logger.Error("failed to insert order header", zap.String("orderId", order.ID), zap.Error(err))
		return nil, s.abort(tx, order.ID, err)
	}

	if err := s.insertItems(txCtx, tx, items); err != nil {
		s.logger.Error("failed to insert order items", zap.String("orderId", order.ID), zap.Int("itemCount", len(items)), zap.Error(err))
		return nil, s.abort(tx, order.ID, err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit transaction", zap.String("orderId", order.ID), zap.Error(err))
		return nil, apperrors.NewWriteError("create order", order.ID, err)
	}

	s.logger.Info("order created",
		zap.String("orderId", order.ID),
		zap.String("farmerId", order.FarmerID),
		zap.Int("itemCount", len(items)),
	)

	return &order, nil
}

// insertItems writes every item and returns only after all writes have
// settled. The first failure cancels writes that have not started yet.
func (s *OrderService) insertItems(ctx context.Context, tx *sql.Tx, items []domain.OrderItem) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.ItemWriteConcurrency)

	for _, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return s.orderItemRepo.Insert(gctx, tx, item)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	// A deadline that expired between the last write and here must not commit.
	return ctx.Err()
}

func (s *OrderService) abort(tx *sql.Tx, orderID string, cause error) error {
	if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
		s.logger.Error("failed to roll back transaction", zap.String("orderId", orderID), zap.Error(err))
	}
	return apperrors.NewWriteError("create order", orderID, cause)
}

func (s *OrderService) SetOrderStatus(ctx context.Context, id string, status string) (bool, error) {
	matched, err := s.orderRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		s.logger.Error("failed to update order status", zap.String("orderId", id), zap.Error(err))
		return false, apperrors.NewWriteError("update status", id, err)
	}
	return matched, nil
}

func classifyReadError(op string, err error) error {
	if _, ok := apperrors.IsDecodeError(err); ok {
		return err
	}
	return apperrors.NewStoreError(op, err)
}
