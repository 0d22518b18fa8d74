package systems

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerOrder(t *testing.T) {
	s := NewScheduler()
	var ran []string
	add := func(name string, phase ExecutionPhase, prio Priority) {
		require.NoError(t, s.Add(Func{SystemName: name, Order: prio, Phase: phase, Fn: func(context.Context, time.Duration) error {
			ran = append(ran, name)
			return nil
		}}))
	}
	add("late", PhaseLateUpdate, PriorityHighest)
	add("low", PhaseUpdate, PriorityLow)
	add("high", PhaseUpdate, PriorityHigh)
	add("pre", PhasePreUpdate, PriorityLowest)
	add("low2", PhaseUpdate, PriorityLow)

	require.NoError(t, s.Update(context.Background(), time.Millisecond))
	assert.Equal(t, []string{"pre", "high", "low", "low2", "late"}, ran)
	assert.Equal(t, ran, s.Names())
}

func TestSchedulerJoinsErrors(t *testing.T) {
	s := NewScheduler()
	boom := errors.New("boom")
	calls := 0
	require.NoError(t, s.Add(Func{SystemName: "bad", Order: PriorityHigh, Fn: func(context.Context, time.Duration) error { return boom }}))
	require.NoError(t, s.Add(Func{SystemName: "good", Fn: func(context.Context, time.Duration) error { calls++; return nil }}))

	err := s.Update(context.Background(), 0)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)

	m, ok := s.Metrics("bad")
	require.True(t, ok)
	assert.Equal(t, uint64(1), m.ExecutionCount)
	assert.Equal(t, uint64(1), m.ErrorCount)
	assert.ErrorIs(t, m.LastError, boom)
}

func TestSchedulerRejectsDuplicates(t *testing.T) {
	s := NewScheduler()
	fn := func(context.Context, time.Duration) error { return nil }
	require.NoError(t, s.Add(Func{SystemName: "idle", Fn: fn}))
	assert.ErrorIs(t, s.Add(Func{SystemName: "idle", Fn: fn}), ErrDuplicateSystem)
}

func TestSchedulerStopsOnCancel(t *testing.T) {
	s := NewScheduler()
	require.NoError(t, s.Add(Func{SystemName: "never", Fn: func(context.Context, time.Duration) error {
		t.Fatal("ran after cancel")
		return nil
	}}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Update(ctx, 0), context.Canceled)
}

func TestSchedulerAddDuringFrame(t *testing.T) {
	s := NewScheduler()
	var ran []string
	record := func(name string) func(context.Context, time.Duration) error {
		return func(context.Context, time.Duration) error {
			ran = append(ran, name)
			return nil
		}
	}
	added := false
	require.NoError(t, s.Add(Func{SystemName: "spawner", Order: PriorityHigh, Fn: func(context.Context, time.Duration) error {
		ran = append(ran, "spawner")
		if !added {
			added = true
			return s.Add(Func{SystemName: "urgent", Order: PriorityHighest, Fn: record("urgent")})
		}
		return nil
	}}))
	require.NoError(t, s.Add(Func{SystemName: "tail", Order: PriorityLow, Fn: record("tail")}))

	require.NoError(t, s.Update(context.Background(), 0))
	assert.Equal(t, []string{"spawner", "tail"}, ran, "the running frame keeps its order")

	ran = nil
	require.NoError(t, s.Update(context.Background(), 0))
	assert.Equal(t, []string{"urgent", "spawner", "tail"}, ran)
}
