package notifications

import (
	"context"
	"log/slog"
	"runtime/debug"

	"onchat/internal/observability"

	"github.com/redis/go-redis/v9"
)

// eventsChannel is the Redis channel every instance publishes committed
// ledger events to.
const eventsChannel = "ledger:events"

// Notifier publishes ledger events into Redis so peers can deliver them
// to their own WebSocket clients. All methods are no-ops without Redis.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a Notifier using the provided Redis client, which
// may be nil for single-instance deployments.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Enabled reports whether the notifier has a Redis connection to
// publish through.
func (n *Notifier) Enabled() bool {
	return n != nil && n.rdb != nil
}

// PublishEvent sends a serialized event to the shared event channel.
func (n *Notifier) PublishEvent(ctx context.Context, payload string) error {
	if !n.Enabled() {
		return nil
	}
	return n.rdb.Publish(ctx, eventsChannel, payload).Err()
}

// StartEventSubscriber subscribes to the shared event channel and calls
// onMessage for each incoming event until ctx is cancelled.
func (n *Notifier) StartEventSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if !n.Enabled() {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, eventsChannel)
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							observability.GlobalLogger.Error("event subscriber panic",
								slog.Any("panic", r),
								slog.String("stack", string(debug.Stack())),
							)
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
