package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"farmmarket/internal/domain"
)

type CreateOrderRequest struct {
	CustomerID        string            `json:"customerId"`
	CustomerName      string            `json:"customerName"`
	CustomerPhone     string            `json:"customerPhone"`
	FarmerID          string            `json:"farmerId"`
	Products          []LineItemRequest `json:"products"`
	Total             decimal.Decimal   `json:"total"`
	Status            string            `json:"status"`
	DeliveryAddress   string            `json:"deliveryAddress"`
	EstimatedDelivery time.Time         `json:"estimatedDelivery"`
	Notes             string            `json:"notes"`
}

type LineItemRequest struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// ToDraft maps the request onto an order draft. An empty status becomes
// pending.
func (r CreateOrderRequest) ToDraft() domain.OrderDraft {
	products := make([]domain.LineItem, len(r.Products))
	for i, p := range r.Products {
		products[i] = domain.LineItem{
			ProductID:   p.ProductID,
			ProductName: p.ProductName,
			Quantity:    p.Quantity,
			Price:       p.Price,
		}
	}

	status := r.Status
	if status == "" {
		status = domain.OrderStatusPending
	}

	return domain.OrderDraft{
		CustomerID:        r.CustomerID,
		CustomerName:      r.CustomerName,
		CustomerPhone:     r.CustomerPhone,
		FarmerID:          r.FarmerID,
		Products:          products,
		Total:             r.Total,
		Status:            status,
		DeliveryAddress:   r.DeliveryAddress,
		EstimatedDelivery: r.EstimatedDelivery,
		Notes:             r.Notes,
	}
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}
