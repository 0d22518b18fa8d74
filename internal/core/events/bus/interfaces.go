package bus

import (
	"context"
	"time"
)

// EventBus defines a thread-safe, in-process pub/sub event bus.
//
// Key characteristics:
//   - Type-based fan-out: handlers subscribe by Event.Type() string.
//   - Snapshot delivery: Publish copies the ordered handler list before any handler runs,
//     so subscribing or cancelling from inside a handler only affects later publishes.
//   - Concurrent delivery: every handler of one publish is started before any is awaited,
//     Publish returns when all of them settled.
//   - Error aggregation: handler errors and recovered panics are joined and returned.
//     A failing handler never prevents its siblings from running.
//   - Optional observability: metrics are produced only when observers are registered.
//
// A world owns one bus for game-scope events and every entity owns its own bus,
// which keeps entity events from leaking across entities.
type EventBus interface {
	// Publish delivers the event to all current subscribers of event.Type() and waits
	// for them. delivered reports whether at least one handler existed.
	Publish(ctx context.Context, event Event) (delivered bool, err error)
	// Subscribe registers a handler for a specific event type and returns a Subscription
	// handle that can be used to cancel later.
	Subscribe(eventType string, handler EventHandler) Subscription
	// HasSubscriptions returns the number of live handlers for eventType.
	HasSubscriptions(eventType string) int
	// Close cancels every subscription. Later Subscribe calls return inactive handles.
	Close()

	// AddObserver registers an observer to receive delivery callbacks.
	AddObserver(obs EventBusObserver)
	// RemoveObserver unregisters a previously added observer.
	RemoveObserver(obs EventBusObserver)
	// GetMetrics returns a best-effort snapshot of accumulated metrics. Metrics are only
	// collected when at least one observer is registered.
	GetMetrics() EventBusMetrics
}

// Event is an immutable message transported by the EventBus.
//
// Fields:
// - Type: routing key used to select handlers (required for delivery).
// - Source: identifier of the publisher (free-form).
// - Timestamp: creation time of the event.
// - Data: payload for consumers, see Payload for typed access.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
}

// EventHandler is a user callback invoked per delivered event. The context is the
// one given to Publish.
type EventHandler func(ctx context.Context, event Event) error

// Subscription represents a registered handler bound to an event type.
type Subscription interface {
	// ID is a unique identifier for this subscription.
	ID() string
	// EventType returns the event type this subscription listens to.
	EventType() string
	// IsActive reports whether this subscription is still registered.
	IsActive() bool
	// Cancel de-registers the handler from the bus. Multiple calls are safe.
	Cancel()
}

// EventBusObserver is notified about deliveries and errors. Observers should return quickly.
type EventBusObserver interface {
	OnPublish(eventType string, event Event)
	OnDelivered(eventType string, handlers int, err error, duration time.Duration)
}

// EventBusMetrics represents a minimal set of counters; it is updated only when
// at least one observer is registered.
type EventBusMetrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	Panics            uint64
	SubscribersActive uint64
}
