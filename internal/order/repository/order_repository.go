package repository

import (
	"context"
	"database/sql"
	"fmt"

	"farmmarket/internal/domain"
	"farmmarket/internal/order/codec"
)

// selectOrdersQuery returns one row per order with its items aggregated into
// a JSON array. Orders without items get a NULL items column.
const selectOrdersQuery = `
	SELECT o.id, o.customer_id, o.customer_name, o.customer_phone, o.farmer_id,
	       o.total, o.status, o.delivery_address, o.estimated_delivery, o.notes, o.created_at,
	       IF(COUNT(oi.id) = 0, NULL,
	          JSON_ARRAYAGG(JSON_OBJECT(
	              'position', oi.position,
	              'productId', oi.product_id,
	              'productName', oi.product_name,
	              'quantity', oi.quantity,
	              'price', oi.price))) AS items
	FROM orders o
	LEFT JOIN order_items oi ON oi.order_id = o.id
	%s
	GROUP BY o.id
	ORDER BY o.created_at DESC, o.id DESC
`

var (
	findAllQuery        = fmt.Sprintf(selectOrdersQuery, "")
	findByFarmerIDQuery = fmt.Sprintf(selectOrdersQuery, "WHERE o.farmer_id = ?")
)

type MySQLOrderRepository struct {
	db *sql.DB
}

func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db}
}

// Insert writes the header row of order inside tx. Line items are written
// separately.
func (r *MySQLOrderRepository) Insert(ctx context.Context, tx *sql.Tx, order domain.Order) error {
	query := `
		INSERT INTO orders (id, customer_id, customer_name, customer_phone, farmer_id,
		                    total, status, delivery_address, estimated_delivery, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := tx.ExecContext(ctx, query,
		order.ID, order.CustomerID, order.CustomerName, order.CustomerPhone, order.FarmerID,
		order.Total, order.Status, order.DeliveryAddress, order.EstimatedDelivery.UTC(), order.Notes, order.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}

	return nil
}

func (r *MySQLOrderRepository) FindAll(ctx context.Context) ([]domain.Order, error) {
	return r.query(ctx, findAllQuery)
}

func (r *MySQLOrderRepository) FindByFarmerID(ctx context.Context, farmerID string) ([]domain.Order, error) {
	return r.query(ctx, findByFarmerIDQuery, farmerID)
}

// UpdateStatus sets the status of order id and reports whether a row matched.
func (r *MySQLOrderRepository) UpdateStatus(ctx context.Context, id string, status string) (bool, error) {
	query := `UPDATE orders SET status = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return false, fmt.Errorf("updating order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *MySQLOrderRepository) query(ctx context.Context, query string, args ...interface{}) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		var (
			o     domain.Order
			notes sql.NullString
			items []byte
		)
		err := rows.Scan(
			&o.ID, &o.CustomerID, &o.CustomerName, &o.CustomerPhone, &o.FarmerID,
			&o.Total, &o.Status, &o.DeliveryAddress, &o.EstimatedDelivery, &notes, &o.CreatedAt,
			&items,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}

		o.Notes = notes.String
		o.Products, err = codec.DecodeItems(o.ID, items)
		if err != nil {
			return nil, err
		}

		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order rows: %w", err)
	}

	return orders, nil
}
