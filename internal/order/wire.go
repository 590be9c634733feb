package order

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"farmmarket/internal/config"
	"farmmarket/internal/infrastructure/metrics"
	"farmmarket/internal/order/controller"
	"farmmarket/internal/order/memory"
	orderrepo "farmmarket/internal/order/repository"
	"farmmarket/internal/order/service"
	"farmmarket/internal/order/usecase"
)

// NewStore builds the order store selected by cfg.Order.Store. db is only
// used by the mysql backend.
func NewStore(db *sql.DB, cfg *config.Config, logger *zap.Logger) (usecase.OrderStore, error) {
	switch cfg.Order.Store {
	case config.StoreMemory:
		return memory.NewStore(logger), nil
	case config.StoreMySQL:
		if db == nil {
			return nil, fmt.Errorf("order store %q requires a database connection", cfg.Order.Store)
		}
		return service.NewOrderService(
			db,
			orderrepo.NewMySQLOrderRepository(db),
			orderrepo.NewMySQLOrderItemRepository(db),
			logger,
			service.Options{
				TxTimeout:            cfg.Order.TxTimeout,
				ItemWriteConcurrency: cfg.Order.ItemWriteConcurrency,
			},
		), nil
	default:
		return nil, fmt.Errorf("unsupported order store %q", cfg.Order.Store)
	}
}

func NewModule(
	db *sql.DB,
	cfg *config.Config,
	publisher usecase.EventPublisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) (*controller.OrderController, error) {
	store, err := NewStore(db, cfg, logger)
	if err != nil {
		return nil, err
	}

	uc := usecase.NewOrderUseCase(store, publisher, m, logger, cfg.Order.MaxRetryAttempts)
	return controller.NewOrderController(uc, logger), nil
}
