package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// NotificationHandler processes one decoded notification.
type NotificationHandler func(ctx context.Context, n domain.Notification) error

var errMalformedNotification = errors.New("malformed notification")

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

// Consume feeds notifications to handler until ctx is done or handler fails.
// An offset is committed once its message is handled; malformed messages are
// logged and committed so they do not stall the partition. A canceled
// context ends the loop without an error.
func (c *Consumer) Consume(ctx context.Context, handler NotificationHandler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("fetch notification: %w", err)
		}

		n, err := decodeNotification(msg)
		switch {
		case err != nil:
			c.log.Warn("skip malformed notification",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		default:
			if err := handler(ctx, n); err != nil {
				return fmt.Errorf("handle notification %s: %w", n.EventID, err)
			}
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("commit offset %d: %w", msg.Offset, err)
		}
	}
}

func decodeNotification(msg kafka.Message) (domain.Notification, error) {
	var n domain.Notification
	if err := json.Unmarshal(msg.Value, &n); err != nil {
		return domain.Notification{}, fmt.Errorf("%w: %w", errMalformedNotification, err)
	}
	switch n.Type {
	case domain.NotificationBookingCreated, domain.NotificationBookingCanceled:
	default:
		return domain.Notification{}, fmt.Errorf("%w: unknown type %q", errMalformedNotification, n.Type)
	}
	if n.RecipientEmail == "" {
		return domain.Notification{}, fmt.Errorf("%w: no recipient", errMalformedNotification)
	}
	return n, nil
}
