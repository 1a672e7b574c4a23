package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Consumer reads payment confirmations from the payments topic. Malformed
// records and event types other than payment_completed are skipped, not
// surfaced, so one bad record never stalls the group.
type Consumer struct {
	reader *kafka.Reader
	log    *zap.Logger
}

func NewConsumer(brokers []string, groupID, topic string, log *zap.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		log: log,
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// ConsumePayments blocks reading the topic and invokes handler for every
// completed payment until the context is cancelled or the reader fails.
func (c *Consumer) ConsumePayments(ctx context.Context, handler func(context.Context, PaymentEvent) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		if err := c.handlePayment(ctx, msg.Value, handler); err != nil {
			return err
		}
	}
}

func (c *Consumer) handlePayment(ctx context.Context, value []byte, handler func(context.Context, PaymentEvent) error) error {
	var event PaymentEvent
	if err := json.Unmarshal(value, &event); err != nil {
		c.log.Warn("skipping malformed payment event", zap.Error(err))
		return nil
	}
	if event.Type != PaymentCompleted {
		return nil
	}
	return handler(ctx, event)
}
