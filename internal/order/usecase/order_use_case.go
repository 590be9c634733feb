package usecase

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"farmmarket/internal/domain"
	apperrors "farmmarket/internal/errors"
)

// OrderStore is implemented by both the relational and the in-memory store.
type OrderStore interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
	ListOrdersByFarmer(ctx context.Context, farmerID string) ([]domain.Order, error)
	CreateOrder(ctx context.Context, draft domain.OrderDraft) (*domain.Order, error)
	SetOrderStatus(ctx context.Context, id string, status string) (bool, error)
}

type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, order domain.Order) error
	PublishStatusChanged(ctx context.Context, orderID, status string) error
}

type MetricsRecorder interface {
	ObserveOperation(operation, outcome string, elapsed time.Duration)
	IncRetry(operation string)
}

const (
	OpListOrders         = "list_orders"
	OpListOrdersByFarmer = "list_orders_by_farmer"
	OpCreateOrder        = "create_order"
	OpSetOrderStatus     = "set_order_status"

	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

type OrderUseCase struct {
	store            OrderStore
	publisher        EventPublisher
	metrics          MetricsRecorder
	logger           *zap.Logger
	maxRetryAttempts int
	baseBackoff      time.Duration
}

func NewOrderUseCase(
	store OrderStore,
	publisher EventPublisher,
	metrics MetricsRecorder,
	logger *zap.Logger,
	maxRetryAttempts int,
) *OrderUseCase {
	if maxRetryAttempts < 1 {
		maxRetryAttempts = 1
	}
	return &OrderUseCase{
		store:            store,
		publisher:        publisher,
		metrics:          metrics,
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
		baseBackoff:      100 * time.Millisecond,
	}
}

func (uc *OrderUseCase) ListOrders(ctx context.Context) ([]domain.Order, error) {
	start := time.Now()
	orders, err := uc.store.ListOrders(ctx)
	uc.observe(OpListOrders, start, err)
	if err != nil {
		uc.logger.Error("failed to list orders", zap.Error(err))
		return nil, err
	}
	return orders, nil
}

func (uc *OrderUseCase) ListOrdersByFarmer(ctx context.Context, farmerID string) ([]domain.Order, error) {
	start := time.Now()
	orders, err := uc.store.ListOrdersByFarmer(ctx, farmerID)
	uc.observe(OpListOrdersByFarmer, start, err)
	if err != nil {
		uc.logger.Error("failed to list farmer orders", zap.String("farmerId", farmerID), zap.Error(err))
		return nil, err
	}
	return orders, nil
}

// CreateOrder persists draft and publishes an order.created event once the
// order is committed. Deadlocked attempts are retried as fresh creates.
func (uc *OrderUseCase) CreateOrder(ctx context.Context, draft domain.OrderDraft) (*domain.Order, error) {
	uc.logger.Info("create order started", zap.String("farmerId", draft.FarmerID), zap.Int("itemCount", len(draft.Products)))

	start := time.Now()
	order, err := uc.createWithRetry(ctx, draft)
	uc.observe(OpCreateOrder, start, err)
	if err != nil {
		return nil, err
	}

	if err := uc.publisher.PublishOrderCreated(ctx, *order); err != nil {
		uc.logger.Warn("failed to publish order created event", zap.String("orderId", order.ID), zap.Error(err))
	}

	return order, nil
}

func (uc *OrderUseCase) createWithRetry(ctx context.Context, draft domain.OrderDraft) (*domain.Order, error) {
	var lastErr error
	for attempt := 1; attempt <= uc.maxRetryAttempts; attempt++ {
		order, err := uc.store.CreateOrder(ctx, draft)
		if err == nil {
			return order, nil
		}
		lastErr = err

		if !isDeadlockError(err) {
			return nil, err
		}
		if attempt == uc.maxRetryAttempts {
			break
		}

		uc.metrics.IncRetry(OpCreateOrder)
		uc.logger.Warn("deadlock detected, retrying",
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", uc.maxRetryAttempts),
			zap.String("farmerId", draft.FarmerID),
		)
		if err := sleepContext(ctx, uc.backoff(attempt)); err != nil {
			return nil, apperrors.NewWriteError("create order", "", err)
		}
	}

	uc.logger.Error("deadlock retries exhausted",
		zap.Int("maxAttempts", uc.maxRetryAttempts),
		zap.String("farmerId", draft.FarmerID),
		zap.Error(lastErr),
	)
	return nil, apperrors.NewDeadlockError("max retries exceeded", lastErr)
}

// backoff grows linearly with the attempt number, jittered by ±20%.
func (uc *OrderUseCase) backoff(attempt int) time.Duration {
	base := uc.baseBackoff * time.Duration(attempt)
	factor := 0.8 + rand.Float64()*0.4
	return time.Duration(float64(base) * factor)
}

// UpdateStatus sets the status of an existing order. An unknown id yields a
// NotFoundError.
func (uc *OrderUseCase) UpdateStatus(ctx context.Context, orderID, status string) error {
	start := time.Now()
	matched, err := uc.store.SetOrderStatus(ctx, orderID, status)
	uc.observe(OpSetOrderStatus, start, err)
	if err != nil {
		return err
	}
	if !matched {
		return apperrors.NewNotFoundError("order not found")
	}

	uc.logger.Info("order status updated", zap.String("orderId", orderID), zap.String("status", status))

	if err := uc.publisher.PublishStatusChanged(ctx, orderID, status); err != nil {
		uc.logger.Warn("failed to publish status changed event", zap.String("orderId", orderID), zap.Error(err))
	}
	return nil
}

func (uc *OrderUseCase) observe(op string, start time.Time, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	uc.metrics.ObserveOperation(op, outcome, time.Since(start))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func isDeadlockError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1213 || mysqlErr.Number == 1205
	}
	return false
}
