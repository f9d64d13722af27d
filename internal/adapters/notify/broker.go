package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/jsamuelsen/quote-sync/internal/ports"
)

const (
	// DefaultQueueSize is the capacity of the broker's inbound queue.
	DefaultQueueSize = 256

	// DefaultSubscriberBuffer is the capacity of each subscription.
	DefaultSubscriberBuffer = 16
)

// ErrQueueFull is returned by Notify when the inbound queue is saturated.
// The notification is dropped.
var ErrQueueFull = errors.New("notification queue full")

// Subscription receives notifications until it is closed by Unsubscribe or
// by the broker shutting down.
type Subscription struct {
	ID string

	ch      chan ports.Notification
	once    sync.Once
	dropped atomic.Uint64
}

// C returns the delivery channel. It is closed when the subscription ends.
func (s *Subscription) C() <-chan ports.Notification {
	return s.ch
}

// Dropped returns how many notifications this subscriber missed because its
// buffer was full.
func (s *Subscription) Dropped() uint64 {
	return s.dropped.Load()
}

func (s *Subscription) close() {
	s.once.Do(func() { close(s.ch) })
}

// Broker fans notifications out to subscriptions.
//
// Implements ports.Notifier.
type Broker struct {
	queue     chan ports.Notification
	subBuffer int
	logger    *slog.Logger

	mu   sync.RWMutex
	subs map[string]*Subscription
	done bool

	dropped atomic.Uint64
}

// BrokerConfig configures a Broker.
type BrokerConfig struct {
	// QueueSize defaults to DefaultQueueSize.
	QueueSize int

	// SubscriberBuffer defaults to DefaultSubscriberBuffer.
	SubscriberBuffer int

	Logger *slog.Logger
}

// NewBroker creates a broker. Call Run to start delivery.
func NewBroker(cfg BrokerConfig) *Broker {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}

	if cfg.SubscriberBuffer <= 0 {
		cfg.SubscriberBuffer = DefaultSubscriberBuffer
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Broker{
		queue:     make(chan ports.Notification, cfg.QueueSize),
		subBuffer: cfg.SubscriberBuffer,
		logger:    cfg.Logger.With(slog.String("component", "notify")),
		subs:      make(map[string]*Subscription),
	}
}

// Notify enqueues n for delivery without blocking.
func (b *Broker) Notify(ctx context.Context, n ports.Notification) error {
	select {
	case b.queue <- n:
		return nil
	default:
		b.dropped.Add(1)
		b.logger.WarnContext(ctx, "notification queue full, dropping",
			slog.String("kind", string(n.Kind)),
		)

		return ErrQueueFull
	}
}

// Subscribe registers a new subscription. After the broker has shut down
// the returned subscription is already closed.
func (b *Broker) Subscribe() *Subscription {
	sub := &Subscription{
		ID: uuid.NewString(),
		ch: make(chan ports.Notification, b.subBuffer),
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.done {
		sub.close()
		return sub
	}

	b.subs[sub.ID] = sub

	b.logger.Debug("subscriber registered",
		slog.String("subscriber_id", sub.ID),
		slog.Int("subscribers", len(b.subs)),
	)

	return sub
}

// Unsubscribe removes and closes the subscription with id. Unknown ids are
// ignored.
func (b *Broker) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.subs[id]
	if !ok {
		return
	}

	delete(b.subs, id)
	sub.close()

	b.logger.Debug("subscriber removed",
		slog.String("subscriber_id", id),
		slog.Int("subscribers", len(b.subs)),
	)
}

// SubscriberCount returns the number of live subscriptions.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.subs)
}

// Dropped returns how many notifications Notify rejected.
func (b *Broker) Dropped() uint64 {
	return b.dropped.Load()
}

// Run delivers queued notifications until ctx ends, then closes every
// subscription. It always returns nil so it can sit in an errgroup.
func (b *Broker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			b.shutdown()
			return nil

		case n := <-b.queue:
			b.broadcast(ctx, n)
		}
	}
}

func (b *Broker) broadcast(ctx context.Context, n ports.Notification) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		select {
		case sub.ch <- n:
		default:
			sub.dropped.Add(1)
			b.logger.WarnContext(ctx, "subscriber buffer full, dropping notification",
				slog.String("subscriber_id", sub.ID),
			)
		}
	}

	b.logger.DebugContext(ctx, "notification delivered",
		slog.String("kind", string(n.Kind)),
		slog.Int("subscribers", len(b.subs)),
	)
}

func (b *Broker) shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, sub := range b.subs {
		sub.close()
		delete(b.subs, id)
	}

	b.done = true

	b.logger.Info("notification broker stopped")
}
