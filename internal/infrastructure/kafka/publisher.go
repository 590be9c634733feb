package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"farmmarket/internal/domain"
	apperrors "farmmarket/internal/errors"
)

const (
	EventOrderCreated  = "order.created"
	EventStatusChanged = "order.status_changed"
)

type OrderCreatedEvent struct {
	Type       string          `json:"type"`
	OrderID    string          `json:"orderId"`
	FarmerID   string          `json:"farmerId"`
	CustomerID string          `json:"customerId"`
	Status     string          `json:"status"`
	Total      decimal.Decimal `json:"total"`
	ItemCount  int             `json:"itemCount"`
	OccurredAt time.Time       `json:"occurredAt"`
}

type StatusChangedEvent struct {
	Type       string    `json:"type"`
	OrderID    string    `json:"orderId"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurredAt"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher emits order events to a single topic, keyed by order id so all
// events of one order land on the same partition.
type Publisher struct {
	writer messageWriter
	logger *zap.Logger
	now    func() time.Time
}

func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

func NewPublisher(writer messageWriter, logger *zap.Logger) *Publisher {
	return &Publisher{writer: writer, logger: logger, now: time.Now}
}

func (p *Publisher) PublishOrderCreated(ctx context.Context, order domain.Order) error {
	return p.publish(ctx, order.ID, EventOrderCreated, OrderCreatedEvent{
		Type:       EventOrderCreated,
		OrderID:    order.ID,
		FarmerID:   order.FarmerID,
		CustomerID: order.CustomerID,
		Status:     order.Status,
		Total:      order.Total,
		ItemCount:  len(order.Products),
		OccurredAt: p.now().UTC(),
	})
}

func (p *Publisher) PublishStatusChanged(ctx context.Context, orderID, status string) error {
	return p.publish(ctx, orderID, EventStatusChanged, StatusChangedEvent{
		Type:       EventStatusChanged,
		OrderID:    orderID,
		Status:     status,
		OccurredAt: p.now().UTC(),
	})
}

func (p *Publisher) publish(ctx context.Context, key, eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return apperrors.NewInternalError(fmt.Sprintf("encoding %s event", eventType), err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  p.now().UTC(),
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
			{Key: "event-type", Value: []byte(eventType)},
		},
	})
	if err != nil {
		return fmt.Errorf("publishing %s event: %w", eventType, err)
	}

	p.logger.Debug("event published", zap.String("type", eventType), zap.String("orderId", key))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher is used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderCreated(context.Context, domain.Order) error { return nil }

func (NoopPublisher) PublishStatusChanged(context.Context, string, string) error { return nil }

func (NoopPublisher) Close() error { return nil }
