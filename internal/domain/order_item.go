package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type LineItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// OrderItem is the relational row of a LineItem.
type OrderItem struct {
	ID          string
	OrderID     string
	Position    int
	ProductID   string
	ProductName string
	Quantity    int
	Price       decimal.Decimal
}

func OrderItemID(orderID string, position int) string {
	return fmt.Sprintf("%s-%d", orderID, position)
}

func (i OrderItem) LineItem() LineItem {
	return LineItem{
		ProductID:   i.ProductID,
		ProductName: i.ProductName,
		Quantity:    i.Quantity,
		Price:       i.Price,
	}
}
