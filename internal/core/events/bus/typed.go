package bus

import (
	"context"
	"fmt"
)

// Payload extracts the event data as T.
func Payload[T any](e Event) (T, error) {
	v, ok := e.Data().(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s carries %T, want %T", ErrPayloadType, e.Type(), e.Data(), zero)
	}
	return v, nil
}

// On subscribes fn to eventType and decodes the payload as T before calling it.
func On[T any](b EventBus, eventType string, fn func(ctx context.Context, payload T) error) Subscription {
	return b.Subscribe(eventType, func(ctx context.Context, e Event) error {
		v, err := Payload[T](e)
		if err != nil {
			return err
		}
		return fn(ctx, v)
	})
}

// Emit publishes a new event built from its arguments.
func Emit(ctx context.Context, b EventBus, eventType, source string, data any) (bool, error) {
	return b.Publish(ctx, NewEvent(eventType, source, data))
}
