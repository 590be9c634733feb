package repository

import (
	"context"
	"database/sql"
	"fmt"

	"farmmarket/internal/domain"
)

type MySQLOrderItemRepository struct {
	db *sql.DB
}

func NewMySQLOrderItemRepository(db *sql.DB) *MySQLOrderItemRepository {
	return &MySQLOrderItemRepository{db: db}
}

func (r *MySQLOrderItemRepository) Insert(ctx context.Context, tx *sql.Tx, item domain.OrderItem) error {
	query := `
		INSERT INTO order_items (id, order_id, position, product_id, product_name, quantity, price)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := tx.ExecContext(ctx, query,
		item.ID, item.OrderID, item.Position, item.ProductID, item.ProductName, item.Quantity, item.Price,
	)
	if err != nil {
		return fmt.Errorf("inserting order item %s: %w", item.ID, err)
	}

	return nil
}
