package codec

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmmarket/internal/domain"
	apperrors "farmmarket/internal/errors"
)

func TestEncodeItems(t *testing.T) {
	products := []domain.LineItem{
		{ProductID: "p1", ProductName: "Tomatoes", Quantity: 5, Price: decimal.RequireFromString("2.50")},
		{ProductID: "p2", ProductName: "Eggs: free range, dozen", Quantity: 1, Price: decimal.RequireFromString("4.00")},
	}

	items := EncodeItems("o-1", products)

	require.Len(t, items, 2)
	assert.Equal(t, "o-1-0", items[0].ID)
	assert.Equal(t, "o-1-1", items[1].ID)
	assert.Equal(t, "o-1", items[1].OrderID)
	assert.Equal(t, 1, items[1].Position)
	assert.Equal(t, "Eggs: free range, dozen", items[1].ProductName)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, "2.5", items[0].Price.String())
}

func TestEncodeItems_Empty(t *testing.T) {
	items := EncodeItems("o-1", nil)
	assert.Empty(t, items)
}

func TestDecodeItems_NullMeansNoItems(t *testing.T) {
	items, err := DecodeItems("o-1", nil)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestDecodeItems_EmptyArray(t *testing.T) {
	items, err := DecodeItems("o-1", []byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDecodeItems_RestoresPositionOrder(t *testing.T) {
	raw := []byte(`[
		{"position": 2, "productId": "p3", "productName": "Peppers: red, green", "quantity": 1, "price": 9.99},
		{"position": 0, "productId": "p1", "productName": "Tomatoes", "quantity": 5, "price": 2.50},
		{"position": 1, "productId": "p2", "productName": "Corn, sweet: yellow", "quantity": 12, "price": 0.75}
	]`)

	items, err := DecodeItems("o-1", raw)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "p1", items[0].ProductID)
	assert.Equal(t, "p2", items[1].ProductID)
	assert.Equal(t, "p3", items[2].ProductID)
	assert.Equal(t, "Corn, sweet: yellow", items[1].ProductName)
	assert.Equal(t, "Peppers: red, green", items[2].ProductName)
	assert.Equal(t, 12, items[1].Quantity)
	assert.True(t, items[0].Price.Equal(decimal.RequireFromString("2.50")))
	assert.True(t, items[2].Price.Equal(decimal.RequireFromString("9.99")))
}

func TestDecodeItems_ZeroValuesAreNotMissing(t *testing.T) {
	raw := []byte(`[{"position": 0, "productId": "", "productName": "", "quantity": 0, "price": 0}]`)

	items, err := DecodeItems("o-1", raw)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 0, items[0].Quantity)
	assert.True(t, items[0].Price.IsZero())
}

func TestDecodeItems_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `p1:Tomatoes:5:2.50`},
		{"object instead of array", `{"position": 0}`},
		{"missing price", `[{"position": 0, "productId": "p1", "productName": "Tomatoes", "quantity": 5}]`},
		{"missing position", `[{"productId": "p1", "productName": "Tomatoes", "quantity": 5, "price": 2.5}]`},
		{"null price", `[{"position": 0, "productId": "p1", "productName": "Tomatoes", "quantity": 5, "price": null}]`},
		{"unknown field", `[{"position": 0, "productId": "p1", "productName": "Tomatoes", "quantity": 5, "price": 2.5, "sku": "x"}]`},
		{"fractional quantity", `[{"position": 0, "productId": "p1", "productName": "Tomatoes", "quantity": 1.5, "price": 2.5}]`},
		{"negative quantity", `[{"position": 0, "productId": "p1", "productName": "Tomatoes", "quantity": -1, "price": 2.5}]`},
		{"bad price", `[{"position": 0, "productId": "p1", "productName": "Tomatoes", "quantity": 1, "price": "cheap"}]`},
		{"null element", `[null]`},
		{"duplicate position", `[{"position": 0, "productId": "p1", "productName": "A", "quantity": 1, "price": 1}, {"position": 0, "productId": "p2", "productName": "B", "quantity": 1, "price": 1}]`},
		{"trailing data", `[] []`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := DecodeItems("o-9", []byte(tt.raw))
			assert.Nil(t, items)

			de, ok := apperrors.IsDecodeError(err)
			require.True(t, ok, "expected DecodeError, got %v", err)
			assert.Equal(t, "o-9", de.OrderID)
		})
	}
}

func TestCloneOrder_DoesNotAlias(t *testing.T) {
	original := domain.Order{
		ID:       "o-1",
		Products: []domain.LineItem{{ProductID: "p1", Quantity: 1}},
	}

	clone := CloneOrder(original)
	clone.Products[0].Quantity = 99

	assert.Equal(t, 1, original.Products[0].Quantity)
}

func TestCloneItems_NilBecomesEmpty(t *testing.T) {
	out := CloneItems(nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}
