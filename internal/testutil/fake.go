package testutil

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"

	"farmmarket/internal/domain"
)

// FakeDraft returns a pending order draft for farmerID with itemCount
// generated line items and a matching total.
func FakeDraft(farmerID string, itemCount int) domain.OrderDraft {
	products := make([]domain.LineItem, itemCount)
	total := decimal.Zero
	for i := range products {
		products[i] = FakeLineItem()
		total = total.Add(products[i].Price.Mul(decimal.NewFromInt(int64(products[i].Quantity))))
	}

	return domain.OrderDraft{
		CustomerID:        gofakeit.UUID(),
		CustomerName:      gofakeit.Name(),
		CustomerPhone:     gofakeit.Phone(),
		FarmerID:          farmerID,
		Products:          products,
		Total:             total,
		Status:            domain.OrderStatusPending,
		DeliveryAddress:   gofakeit.Street() + ", " + gofakeit.City(),
		EstimatedDelivery: time.Now().UTC().Add(time.Duration(gofakeit.Number(24, 96)) * time.Hour).Truncate(time.Microsecond),
	}
}

func FakeLineItem() domain.LineItem {
	return domain.LineItem{
		ProductID:   gofakeit.UUID(),
		ProductName: gofakeit.ProductName(),
		Quantity:    gofakeit.Number(0, 20),
		Price:       decimal.New(int64(gofakeit.Number(0, 99999)), -2),
	}
}
