package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/segmentio/kafka-go"
	"kusina-service/internal/entity"
	"time"
)

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// EventTypeHeader carries the event type next to the payload.
const EventTypeHeader = "event-type"

// EventKey is the partition key shared by every event of one order.
func EventKey(order *entity.Order) string {
	return "order-" + order.ID.Hex()
}

// Publisher puts order events on the order topic for the notification
// consumer.
type Publisher struct {
	writer MessageWriter
	now    func() time.Time
}

func NewPublisher(writer MessageWriter) *Publisher {
	return &Publisher{writer: writer, now: time.Now}
}

func (p *Publisher) OrderCreated(ctx context.Context, order *entity.Order) error {
	return p.publish(ctx, entity.EventOrderCreated, order)
}

func (p *Publisher) OrderStatusChanged(ctx context.Context, order *entity.Order) error {
	return p.publish(ctx, entity.EventOrderStatusChanged, order)
}

func (p *Publisher) publish(ctx context.Context, eventType string, order *entity.Order) error {
	orderJSON, err := json.Marshal(entity.OrderEvent{
		Type:       eventType,
		Order:      *order,
		OccurredAt: p.now().UTC(),
	})
	if err != nil {
		return err
	}

	// Every event of one order shares a key so they stay on one partition
	// and are consumed in order.
	msg := kafka.Message{
		Key:     []byte(EventKey(order)),
		Value:   orderJSON,
		Headers: []kafka.Header{{Key: EventTypeHeader, Value: []byte(eventType)}},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publishing order %s event: %w", eventType, err)
	}
	return nil
}
