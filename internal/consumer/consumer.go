package consumer

import (
	"context"
	"encoding/json"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"kusina-service/internal/entity"
	"kusina-service/internal/notify"
	"kusina-service/internal/service"
	"time"
)

// MessageReader is the part of *kafka.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Consumer turns order events from the order topic into notifications.
type Consumer struct {
	reader   MessageReader
	notifier service.Notifier
	backoff  time.Duration
}

func NewConsumer(reader MessageReader, notifier service.Notifier) *Consumer {
	return &Consumer{reader: reader, notifier: notifier, backoff: time.Second}
}

// Run consumes until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Msgf("Error reading message: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.backoff):
			}
			continue
		}

		c.processMessage(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			log.Error().Msgf("Error committing message at offset %d: %v", msg.Offset, err)
		}
	}
}

// processMessage dispatches one order event. Failures are logged and the
// message is still committed; a notification is never retried.
func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) {
	var event entity.OrderEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error().Msgf("Error unmarshalling message: %v", err)
		return
	}

	eventType := event.Type
	if eventType == "" {
		for _, h := range msg.Headers {
			if h.Key == notify.EventTypeHeader {
				eventType = string(h.Value)
			}
		}
	}

	var err error
	switch eventType {
	case entity.EventOrderCreated:
		err = c.notifier.OrderCreated(ctx, &event.Order)
	case entity.EventOrderStatusChanged:
		err = c.notifier.OrderStatusChanged(ctx, &event.Order)
	default:
		log.Error().Msgf("Unknown order event: %q", eventType)
		return
	}
	if err != nil {
		log.Error().Msgf("Error sending %s notification for order %s: %v", eventType, event.Order.ID.Hex(), err)
	}
}
