package components

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/tilecore/internal/core/events"
	"github.com/zeusync/tilecore/internal/core/events/bus"
	"github.com/zeusync/tilecore/internal/core/models"
)

func TestMoveEmitsLifecycle(t *testing.T) {
	h := newHarness(t)
	h.floor(3, 1)
	player := h.spawn(models.EntitySpec{Name: "player", Layer: models.LayerCharacter})
	m := NewMoveable(h.env, player, false)
	l := watch(player.Bus(), events.AttemptMove, events.WillChangePosition, events.WillMove, events.DidChangePosition, events.DidMove)

	var movingSeen int
	var committedDuringAnimation bool
	bus.On(player.Bus(), events.Moving, func(_ context.Context, s events.MovingState) error {
		movingSeen++
		if len(h.env.Registry.FindByXY(1, 0)) == 2 {
			committedDuringAnimation = true
		}
		assert.Equal(t, models.Position{X: 1}, s.Next)
		assert.Equal(t, 1, s.Facing)
		return nil
	})

	ok, err := m.Move(context.Background(), models.Position{X: 1}, MoveWalk)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, []string{
		events.AttemptMove,
		events.WillChangePosition,
		events.WillMove,
		events.DidChangePosition,
		events.DidMove,
	}, l.list())
	assert.Positive(t, movingSeen)
	assert.True(t, committedDuringAnimation, "position is committed when the animation starts")
	assert.Equal(t, models.Position{X: 1}, player.Position())
	assert.Empty(t, without(h.env.Registry.FindByXY(0, 0), player))
	assert.Equal(t, StateIdle, m.State())
	assert.InDelta(t, 1.0, m.Current().Xv, 1e-9)
}

func TestBlockedTargetFailsAndBlocks(t *testing.T) {
	h := newHarness(t)
	h.floor(2, 1)
	h.wall(1, 0)
	player := h.spawn(models.EntitySpec{Layer: models.LayerCharacter})
	m := NewMoveable(h.env, player, false)
	l := watch(player.Bus(), events.AttemptMove, events.CannotMove, events.WillChangePosition)

	start := time.Now()
	ok, err := m.Move(context.Background(), models.Position{X: 1}, MoveWalk)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), h.env.MovementDuration/2)
	assert.Equal(t, []string{events.AttemptMove, events.CannotMove}, l.list())
	assert.Equal(t, models.Position{}, player.Position())
	assert.Equal(t, StateIdle, m.State())
}

func TestMoveIntoEmptySpaceFails(t *testing.T) {
	h := newHarness(t)
	h.floor(1, 1)
	player := h.spawn(models.EntitySpec{Layer: models.LayerCharacter})
	h.env.MovementDuration = 0
	m := NewMoveable(h.env, player, false)

	ok, err := m.Move(context.Background(), models.Position{X: -1}, MoveWalk)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestForcedMovesAreSilent(t *testing.T) {
	h := newHarness(t)
	h.floor(3, 1)
	crate := h.spawn(models.EntitySpec{Layer: models.LayerObstacle})
	m := NewMoveable(h.env, crate, false)
	l := watch(crate.Bus(), events.AttemptMove, events.WillChangePosition, events.WillMove, events.Moving, events.DidChangePosition, events.DidMove)

	ok, err := m.Move(context.Background(), models.Position{X: 1}, MovePush)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{events.WillChangePosition, events.DidChangePosition}, l.list())

	ok, err = m.Move(context.Background(), models.Position{X: 2}, MoveJump)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, l.count(events.AttemptMove), "jumps still announce the attempt")
	assert.Zero(t, l.count(events.Moving))
	assert.Zero(t, l.count(events.DidMove))
}

func TestBusyEntityCannotMove(t *testing.T) {
	h := newHarness(t)
	h.floor(3, 1)
	player := h.spawn(models.EntitySpec{Layer: models.LayerCharacter})
	m := NewMoveable(h.env, player, false)

	started := make(chan struct{})
	var once bool
	bus.On(player.Bus(), events.Moving, func(context.Context, events.MovingState) error {
		if !once {
			once = true
			close(started)
		}
		return nil
	})

	done := make(chan bool)
	go func() {
		ok, _ := m.Move(context.Background(), models.Position{X: 1}, MoveWalk)
		done <- ok
	}()
	<-started

	assert.True(t, m.IsMoving())
	assert.False(t, m.CanMove(nil))
	ok, err := m.Move(context.Background(), models.Position{X: 2}, MoveWalk)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, <-done)
	assert.True(t, m.CanMove(&models.Position{X: 2}))
	assert.False(t, m.CanMove(&models.Position{X: 9}))
}

func TestFacingIsSticky(t *testing.T) {
	h := newHarness(t)
	h.floor(2, 2)
	player := h.spawn(models.EntitySpec{Layer: models.LayerCharacter, Position: models.Position{X: 1}})
	h.env.MovementDuration = 0
	m := NewMoveable(h.env, player, false)
	ctx := context.Background()

	assert.Equal(t, 1, m.Facing())
	ok, _ := m.Move(ctx, models.Position{X: 0}, MoveWalk)
	require.True(t, ok)
	assert.Equal(t, -1, m.Facing())

	ok, _ = m.Move(ctx, models.Position{X: 0, Y: 1}, MoveWalk)
	require.True(t, ok)
	assert.Equal(t, -1, m.Facing(), "vertical moves keep the horizontal facing")
}

func TestBlockMovementSupersedes(t *testing.T) {
	h := newHarness(t)
	player := h.spawn(models.EntitySpec{})
	m := NewMoveable(h.env, player, false)
	ctx := context.Background()

	go func() { _ = m.BlockMovement(ctx, 10*time.Millisecond) }()
	require.Eventually(t, func() bool { return m.State() == StateBlocked }, time.Second, time.Millisecond)

	longDone := make(chan struct{})
	go func() {
		_ = m.BlockMovement(ctx, 60*time.Millisecond)
		close(longDone)
	}()

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, StateBlocked, m.State(), "the earlier timer must not release a later block")
	<-longDone
	assert.Equal(t, StateIdle, m.State())
}

func TestStaticNeverMoves(t *testing.T) {
	h := newHarness(t)
	h.floor(2, 1)
	statue := h.spawn(models.EntitySpec{})
	m := NewMoveable(h.env, statue, true)

	assert.False(t, m.CanMove(nil))
	assert.False(t, m.IsMoving())
	ok, err := m.Move(context.Background(), models.Position{X: 1}, MoveWalk)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestTeardownCancelsAnimation(t *testing.T) {
	h := newHarness(t)
	h.floor(2, 1)
	h.env.MovementDuration = time.Hour
	player := h.spawn(models.EntitySpec{Layer: models.LayerCharacter})
	m := NewMoveable(h.env, player, false)
	l := watch(player.Bus(), events.DidChangePosition, events.DidMove)

	started := make(chan struct{})
	bus.On(player.Bus(), events.WillMove, func(context.Context, models.Position) error {
		close(started)
		return nil
	})

	type result struct {
		ok  bool
		err error
	}
	done := make(chan result)
	go func() {
		ok, err := m.Move(context.Background(), models.Position{X: 1}, MoveWalk)
		done <- result{ok, err}
	}()
	<-started
	player.Teardown()

	select {
	case r := <-done:
		assert.False(t, r.ok)
		assert.ErrorIs(t, r.err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("animation survived teardown")
	}
	assert.Empty(t, l.list())
}

func TestMoveRespectsContext(t *testing.T) {
	h := newHarness(t)
	h.floor(2, 1)
	h.env.MovementDuration = time.Hour
	player := h.spawn(models.EntitySpec{})
	m := NewMoveable(h.env, player, false)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	ok, err := m.Move(ctx, models.Position{X: 1}, MoveWalk)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, StateIdle, m.State())
}

func without(list []*models.Entity, e *models.Entity) []*models.Entity {
	out := list[:0:0]
	for _, cur := range list {
		if cur != e && cur.Layer() != models.LayerGround {
			out = append(out, cur)
		}
	}
	return out
}

func TestMoveEventsSeeStateBeforeTransition(t *testing.T) {
	h := newHarness(t)
	h.floor(3, 1)
	h.wall(2, 0)
	h.env.MovementDuration = 0
	player := h.spawn(models.EntitySpec{Layer: models.LayerCharacter})
	m := NewMoveable(h.env, player, false)

	var seen []MoveState
	record := func(context.Context, models.Position) error {
		seen = append(seen, m.State())
		return nil
	}
	bus.On(player.Bus(), events.AttemptMove, record)
	bus.On(player.Bus(), events.CannotMove, record)
	bus.On(player.Bus(), events.WillMove, record)

	ok, err := m.Move(context.Background(), models.Position{X: 1}, MoveWalk)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []MoveState{StateIdle, StateIdle}, seen, "attempt-move then will-move")

	seen = nil
	ok, err = m.Move(context.Background(), models.Position{X: 2}, MoveWalk)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []MoveState{StateIdle, StateIdle}, seen, "attempt-move then cannot-move")
}
