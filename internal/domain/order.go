package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID                string          `json:"id"`
	CustomerID        string          `json:"customerId"`
	CustomerName      string          `json:"customerName"`
	CustomerPhone     string          `json:"customerPhone"`
	FarmerID          string          `json:"farmerId"`
	Products          []LineItem      `json:"products"`
	Total             decimal.Decimal `json:"total"`
	Status            string          `json:"status"`
	DeliveryAddress   string          `json:"deliveryAddress"`
	EstimatedDelivery time.Time       `json:"estimatedDelivery"`
	CreatedAt         time.Time       `json:"createdAt"`
	Notes             string          `json:"notes"`
}

// OrderDraft carries the caller-supplied fields of an Order. Identity and
// creation time are assigned by the store.
type OrderDraft struct {
	CustomerID        string          `json:"customerId"`
	CustomerName      string          `json:"customerName"`
	CustomerPhone     string          `json:"customerPhone"`
	FarmerID          string          `json:"farmerId"`
	Products          []LineItem      `json:"products"`
	Total             decimal.Decimal `json:"total"`
	Status            string          `json:"status"`
	DeliveryAddress   string          `json:"deliveryAddress"`
	EstimatedDelivery time.Time       `json:"estimatedDelivery"`
	Notes             string          `json:"notes"`
}

// Materialize builds the Order a draft becomes once it has been assigned an
// id and a creation time. Products are shared with the draft.
// EstimatedDelivery is held in UTC at microsecond precision, as DATETIME(6)
// stores it.
func (d OrderDraft) Materialize(id string, createdAt time.Time) Order {
	return Order{
		ID:                id,
		CustomerID:        d.CustomerID,
		CustomerName:      d.CustomerName,
		CustomerPhone:     d.CustomerPhone,
		FarmerID:          d.FarmerID,
		Products:          d.Products,
		Total:             d.Total,
		Status:            d.Status,
		DeliveryAddress:   d.DeliveryAddress,
		EstimatedDelivery: d.EstimatedDelivery.UTC().Truncate(time.Microsecond),
		CreatedAt:         createdAt,
		Notes:             d.Notes,
	}
}

const (
	OrderStatusPending        = "pending"
	OrderStatusConfirmed      = "confirmed"
	OrderStatusPreparing      = "preparing"
	OrderStatusOutForDelivery = "out_for_delivery"
	OrderStatusDelivered      = "delivered"
	OrderStatusCancelled      = "cancelled"
)

var knownStatuses = map[string]struct{}{
	OrderStatusPending:        {},
	OrderStatusConfirmed:      {},
	OrderStatusPreparing:      {},
	OrderStatusOutForDelivery: {},
	OrderStatusDelivered:      {},
	OrderStatusCancelled:      {},
}

// IsKnownStatus reports whether status belongs to the marketplace's status
// set. Stores never call it; they persist status verbatim.
func IsKnownStatus(status string) bool {
	_, ok := knownStatuses[status]
	return ok
}
