// Package notify delivers ledger notifications after commit.
//
// Notify never blocks the caller: events go into a bounded queue and a
// single worker writes them to Kafka. A full queue or a failed write drops
// the event, so delivery is at-most-once.
package notify

import (
	"context"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultQueueSize = 256
	defaultTimeout   = 3 * time.Second
)

type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload interface{}) error
}

type Dispatcher struct {
	publisher Publisher
	topic     string
	timeout   time.Duration
	queue     chan domain.Notification
	log       *zap.Logger
	now       func() time.Time
}

type Option func(*Dispatcher)

func WithQueueSize(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.queue = make(chan domain.Notification, n)
		}
	}
}

func WithPublishTimeout(t time.Duration) Option {
	return func(d *Dispatcher) {
		if t > 0 {
			d.timeout = t
		}
	}
}

func NewDispatcher(publisher Publisher, topic string, log *zap.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		publisher: publisher,
		topic:     topic,
		timeout:   defaultTimeout,
		queue:     make(chan domain.Notification, defaultQueueSize),
		log:       log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Notify enqueues n and returns immediately.
func (d *Dispatcher) Notify(n domain.Notification) {
	if n.EventID == "" {
		n.EventID = uuid.NewString()
	}
	if n.OccurredAt.IsZero() {
		n.OccurredAt = d.now().UTC()
	}

	select {
	case d.queue <- n:
	default:
		metrics.IncNotificationDropped()
		d.log.Warn("notification queue full, dropping event",
			zap.String("event_id", n.EventID),
			zap.String("type", string(n.Type)),
			zap.Int64("booking_id", n.BookingID),
		)
	}
}

// Run publishes queued notifications until ctx is done. Events still queued
// at shutdown are dropped.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			if pending := len(d.queue); pending > 0 {
				d.log.Warn("dispatcher stopped with pending notifications", zap.Int("pending", pending))
			}
			return nil
		case n := <-d.queue:
			d.publish(ctx, n)
		}
	}
}

func (d *Dispatcher) publish(ctx context.Context, n domain.Notification) {
	pubCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.publisher.Publish(pubCtx, d.topic, n.EventID, n); err != nil {
		metrics.IncNotificationFailed()
		d.log.Warn("failed to publish notification",
			zap.String("event_id", n.EventID),
			zap.String("type", string(n.Type)),
			zap.Int64("booking_id", n.BookingID),
			zap.Error(err),
		)
		return
	}
	metrics.IncNotificationPublished()
}
