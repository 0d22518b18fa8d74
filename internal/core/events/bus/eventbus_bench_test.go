package bus

import (
	"context"
	"strconv"
	"sync/atomic"
	"testing"
)

func makeHandler(c *int64) EventHandler {
	return func(context.Context, Event) error {
		atomic.AddInt64(c, 1)
		return nil
	}
}

func BenchmarkPublishSingleSubscriber(b *testing.B) {
	bus := New()
	var c int64
	bus.Subscribe("tick", makeHandler(&c))
	e := NewEvent("tick", "bench", nil)
	ctx := context.Background()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = bus.Publish(ctx, e)
	}
}

func BenchmarkPublishManySubscribers(b *testing.B) {
	for _, subs := range []int{1, 4, 16, 64} {
		b.Run("subs="+strconv.Itoa(subs), func(b *testing.B) {
			bus := New()
			var c int64
			for i := 0; i < subs; i++ {
				bus.Subscribe("tick", makeHandler(&c))
			}
			e := NewEvent("tick", "bench", nil)
			ctx := context.Background()
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = bus.Publish(ctx, e)
			}
		})
	}
}
