package bus

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/tilecore/pkg/concurrent"
)

// simpleEvent is a basic implementation of Event.
type simpleEvent struct {
	typeStr string
	source  string
	ts      time.Time
	data    any
}

func (e simpleEvent) Type() string         { return e.typeStr }
func (e simpleEvent) Source() string       { return e.source }
func (e simpleEvent) Timestamp() time.Time { return e.ts }
func (e simpleEvent) Data() any            { return e.data }

// NewEvent creates a simple Event implementation.
func NewEvent(typ, src string, data any) Event {
	return simpleEvent{typeStr: typ, source: src, ts: time.Now(), data: data}
}

// subscription implements Subscription interface.
type subscription struct {
	id        string
	eventType string
	handler   EventHandler
	active    atomic.Bool
	cancel    func()
	once      sync.Once
}

func (s *subscription) ID() string        { return s.id }
func (s *subscription) EventType() string { return s.eventType }
func (s *subscription) IsActive() bool    { return s.active.Load() }
func (s *subscription) Cancel() {
	s.once.Do(func() {
		s.active.Store(false)
		if s.cancel != nil {
			s.cancel()
		}
	})
}

// inMemoryBus is a thread-safe implementation of EventBus.
type inMemoryBus struct {
	mu sync.RWMutex
	// handlers: eventType -> ordered subscriptions. Slices are replaced, never
	// mutated in place, so a published snapshot stays valid without copying.
	handlers  map[string][]*subscription
	closed    bool
	metrics   EventBusMetrics
	observers map[EventBusObserver]struct{}
}

// New creates a new EventBus instance.
func New() EventBus {
	return &inMemoryBus{
		handlers:  make(map[string][]*subscription),
		observers: make(map[EventBusObserver]struct{}),
	}
}

func (b *inMemoryBus) Subscribe(eventType string, handler EventHandler) Subscription {
	s := &subscription{id: uuid.NewString(), eventType: eventType, handler: handler}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return s
	}
	s.active.Store(true)
	s.cancel = func() { b.remove(eventType, s) }

	current := b.handlers[eventType]
	next := make([]*subscription, len(current), len(current)+1)
	copy(next, current)
	b.handlers[eventType] = append(next, s)
	return s
}

func (b *inMemoryBus) remove(eventType string, s *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	current := b.handlers[eventType]
	for i, cur := range current {
		if cur != s {
			continue
		}
		if len(current) == 1 {
			delete(b.handlers, eventType)
			return
		}
		next := make([]*subscription, 0, len(current)-1)
		next = append(next, current[:i]...)
		next = append(next, current[i+1:]...)
		b.handlers[eventType] = next
		return
	}
}

func (b *inMemoryBus) HasSubscriptions(eventType string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[eventType])
}

func (b *inMemoryBus) Close() {
	b.mu.Lock()
	all := b.handlers
	b.handlers = make(map[string][]*subscription)
	b.closed = true
	b.mu.Unlock()

	for _, subs := range all {
		for _, s := range subs {
			s.active.Store(false)
			s.once.Do(func() {})
		}
	}
}

func (b *inMemoryBus) AddObserver(obs EventBusObserver) {
	b.mu.Lock()
	b.observers[obs] = struct{}{}
	b.mu.Unlock()
}

func (b *inMemoryBus) RemoveObserver(obs EventBusObserver) {
	b.mu.Lock()
	delete(b.observers, obs)
	b.mu.Unlock()
}

func (b *inMemoryBus) GetMetrics() EventBusMetrics {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.metrics
}

func (b *inMemoryBus) Publish(ctx context.Context, event Event) (bool, error) {
	start := time.Now()
	etype := event.Type()

	b.mu.RLock()
	subs := b.handlers[etype]
	var observers []EventBusObserver
	if len(b.observers) > 0 {
		observers = make([]EventBusObserver, 0, len(b.observers))
		for o := range b.observers {
			observers = append(observers, o)
		}
	}
	b.mu.RUnlock()

	for _, o := range observers {
		o.OnPublish(etype, event)
	}

	if len(subs) == 0 {
		b.observe(observers, etype, 0, nil, 0, start)
		return false, nil
	}

	var panics atomic.Uint64
	all := concurrent.JoinAll(subs, func(s *subscription) error {
		return invoke(ctx, s, event, &panics)
	})
	b.observe(observers, etype, len(subs), all, panics.Load(), start)
	return true, all
}

func (b *inMemoryBus) observe(observers []EventBusObserver, etype string, handlers int, err error, panics uint64, start time.Time) {
	if len(observers) == 0 {
		return
	}
	elapsed := time.Since(start)
	for _, o := range observers {
		o.OnDelivered(etype, handlers, err, elapsed)
	}

	b.mu.Lock()
	b.metrics.Published++
	b.metrics.DeliveredHandlers += uint64(handlers)
	if err != nil {
		b.metrics.Errors++
	}
	b.metrics.Panics += panics
	var subsCount uint64
	for _, m := range b.handlers {
		subsCount += uint64(len(m))
	}
	b.metrics.SubscribersActive = subsCount
	b.mu.Unlock()
}

func invoke(ctx context.Context, s *subscription, event Event, panics *atomic.Uint64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			panics.Add(1)
			err = fmt.Errorf("%w: %s: %v", ErrHandlerPanic, event.Type(), r)
		}
	}()
	return s.handler(ctx, event)
}
