// Package codec converts orders between their API shape and the shapes the
// stores keep: one row per line item for the relational store, an embedded
// list for the in-memory store, and a JSON array for the grouped read query.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/shopspring/decimal"

	"farmmarket/internal/domain"
	apperrors "farmmarket/internal/errors"
)

// EncodeItems lays out the rows written for an order's line items. Each row
// id is "{orderID}-{position}".
func EncodeItems(orderID string, products []domain.LineItem) []domain.OrderItem {
	items := make([]domain.OrderItem, len(products))
	for i, p := range products {
		items[i] = domain.OrderItem{
			ID:          domain.OrderItemID(orderID, i),
			OrderID:     orderID,
			Position:    i,
			ProductID:   p.ProductID,
			ProductName: p.ProductName,
			Quantity:    p.Quantity,
			Price:       p.Price,
		}
	}
	return items
}

// encodedItem is one element of the aggregated items column. Pointers tell a
// missing field apart from a zero value.
type encodedItem struct {
	Position    *int             `json:"position"`
	ProductID   *string          `json:"productId"`
	ProductName *string          `json:"productName"`
	Quantity    *json.Number     `json:"quantity"`
	Price       *decimal.Decimal `json:"price"`
}

// DecodeItems rebuilds the line items of orderID from the aggregated items
// column. A nil column is the no-items marker and yields an empty slice.
func DecodeItems(orderID string, raw []byte) ([]domain.LineItem, error) {
	if raw == nil {
		return []domain.LineItem{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	dec.UseNumber()

	var encoded []*encodedItem
	if err := dec.Decode(&encoded); err != nil {
		return nil, apperrors.NewDecodeError(orderID, "invalid item encoding", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, apperrors.NewDecodeError(orderID, "trailing data after item encoding", nil)
	}

	rows := make([]domain.OrderItem, 0, len(encoded))
	seen := make(map[int]struct{}, len(encoded))
	for i, e := range encoded {
		row, err := decodeItem(orderID, e)
		if err != nil {
			return nil, apperrors.NewDecodeError(orderID, fmt.Sprintf("item %d: %s", i, err), nil)
		}
		if _, dup := seen[row.Position]; dup {
			return nil, apperrors.NewDecodeError(orderID, fmt.Sprintf("item %d: duplicate position %d", i, row.Position), nil)
		}
		seen[row.Position] = struct{}{}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Position < rows[j].Position })

	items := make([]domain.LineItem, len(rows))
	for i, row := range rows {
		items[i] = row.LineItem()
	}
	return items, nil
}

// decodeItem rebuilds the order_items row an encoded element was built from.
func decodeItem(orderID string, e *encodedItem) (domain.OrderItem, error) {
	if e == nil {
		return domain.OrderItem{}, fmt.Errorf("null item")
	}

	switch {
	case e.Position == nil:
		return domain.OrderItem{}, fmt.Errorf("missing field position")
	case e.ProductID == nil:
		return domain.OrderItem{}, fmt.Errorf("missing field productId")
	case e.ProductName == nil:
		return domain.OrderItem{}, fmt.Errorf("missing field productName")
	case e.Quantity == nil:
		return domain.OrderItem{}, fmt.Errorf("missing field quantity")
	case e.Price == nil:
		return domain.OrderItem{}, fmt.Errorf("missing field price")
	}

	qty, err := e.Quantity.Int64()
	if err != nil {
		return domain.OrderItem{}, fmt.Errorf("quantity %q is not an integer", e.Quantity.String())
	}
	if qty < 0 {
		return domain.OrderItem{}, fmt.Errorf("quantity %d is negative", qty)
	}

	return domain.OrderItem{
		ID:          domain.OrderItemID(orderID, *e.Position),
		OrderID:     orderID,
		Position:    *e.Position,
		ProductID:   *e.ProductID,
		ProductName: *e.ProductName,
		Quantity:    int(qty),
		Price:       *e.Price,
	}, nil
}

// CloneItems copies an embedded item list so stored aggregates never alias
// caller memory. The result is never nil.
func CloneItems(products []domain.LineItem) []domain.LineItem {
	out := make([]domain.LineItem, len(products))
	copy(out, products)
	return out
}

// CloneOrder returns a copy of o that shares no mutable state with it.
func CloneOrder(o domain.Order) domain.Order {
	o.Products = CloneItems(o.Products)
	return o
}
