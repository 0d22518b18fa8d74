package components

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/zeusync/tilecore/internal/core/events"
	"github.com/zeusync/tilecore/internal/core/events/bus"
	"github.com/zeusync/tilecore/internal/core/models"
	"github.com/zeusync/tilecore/internal/core/observability/log"
	"github.com/zeusync/tilecore/internal/core/systems/physics"
)

// MoveKind distinguishes regular moves from forced ones. Forced moves
// (push, jump) suppress will-move, moving and did-move.
type MoveKind uint8

const (
	MoveWalk MoveKind = iota
	MovePush
	MoveJump
)

func (k MoveKind) forced() bool { return k == MovePush || k == MoveJump }

// MoveState is the movement state of an entity.
type MoveState uint8

const (
	StateIdle MoveState = iota
	StateBlocked
	StateAnimating
)

func (s MoveState) String() string {
	switch s {
	case StateBlocked:
		return "blocked"
	case StateAnimating:
		return "animating"
	default:
		return "idle"
	}
}

// Moveable moves an entity tile by tile. The grid position is committed
// through the registry when the animation starts; the interpolated position
// is available from Current while the animation runs.
type Moveable struct {
	entity *models.Entity
	env    *Env
	static bool

	life   context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	claimed   bool
	animating bool
	blocked   bool
	blockGen  uint64
	facing    int
	current   physics.Vec2
}

// NewMoveable attaches a movement controller to e. Static entities never move.
func NewMoveable(env *Env, e *models.Entity, static bool) *Moveable {
	life, cancel := context.WithCancel(context.Background())
	m := &Moveable{
		entity:  e,
		env:     env,
		static:  static,
		life:    life,
		cancel:  cancel,
		facing:  1,
		current: physics.FromPosition(e.Position()),
	}
	e.RegisterComponent(m)
	return m
}

func (m *Moveable) Kind() models.ComponentKind { return models.KindMoveable }

func (m *Moveable) State() MoveState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

func (m *Moveable) stateLocked() MoveState {
	switch {
	case m.blocked:
		return StateBlocked
	case m.animating:
		return StateAnimating
	default:
		return StateIdle
	}
}

// Facing is the sticky horizontal facing, -1 or 1.
func (m *Moveable) Facing() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.facing
}

// Current is the interpolated position.
func (m *Moveable) Current() physics.Vec2 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// CanMove reports whether a move could start now. When target is given it
// must also pass the collision query.
func (m *Moveable) CanMove(target *models.Position) bool {
	if m.static {
		return false
	}
	if target != nil && !m.env.Query.Walkable(m.entity.ID(), *target) {
		return false
	}
	return m.State() == StateIdle
}

// IsMoving reports whether the entity is animating or blocked.
func (m *Moveable) IsMoving() bool {
	return !m.static && m.State() != StateIdle
}

// BlockMovement keeps the entity Blocked for d, whatever it is doing. A later
// block supersedes the timer of an earlier one.
func (m *Moveable) BlockMovement(ctx context.Context, d time.Duration) error {
	m.mu.Lock()
	gen := m.blockLocked()
	m.mu.Unlock()
	return m.waitBlock(ctx, d, gen)
}

func (m *Moveable) blockLocked() uint64 {
	m.blockGen++
	m.blocked = true
	return m.blockGen
}

func (m *Moveable) waitBlock(ctx context.Context, d time.Duration, gen uint64) error {
	t := time.NewTimer(d)
	defer t.Stop()

	var err error
	select {
	case <-t.C:
	case <-ctx.Done():
		err = ctx.Err()
	case <-m.life.Done():
		err = context.Canceled
	}

	m.mu.Lock()
	if m.blockGen == gen {
		m.blocked = false
	}
	m.mu.Unlock()
	return err
}

// Move tries to walk to target. It returns false without error when the
// entity is busy or the target is blocked, and false with the context error
// when the animation is cut short by ctx or by teardown. A move cut short by
// ctx still lands on target and publishes did-change-position. Handler errors of
// the published events are joined into the returned error; they never stop
// the move.
func (m *Moveable) Move(ctx context.Context, target models.Position, kind MoveKind) (bool, error) {
	if m.static {
		return false, nil
	}

	// claimed keeps a second Move out while the events before the state
	// change are published.
	m.mu.Lock()
	if m.claimed || m.stateLocked() != StateIdle {
		m.mu.Unlock()
		return false, nil
	}
	m.claimed = true
	m.mu.Unlock()

	var errs []error
	emit := func(name string, data any) {
		if _, err := bus.Emit(ctx, m.entity.Bus(), name, "moveable", data); err != nil {
			errs = append(errs, err)
		}
	}

	if kind != MovePush {
		emit(events.AttemptMove, target)
	}

	if !m.env.Query.Walkable(m.entity.ID(), target) {
		emit(events.CannotMove, target)
		m.mu.Lock()
		m.claimed = false
		gen := m.blockLocked()
		m.mu.Unlock()
		if err := m.waitBlock(ctx, m.env.MovementDuration/2, gen); err != nil {
			errs = append(errs, err)
		}
		return false, errors.Join(errs...)
	}

	emit(events.WillChangePosition, target)
	if !kind.forced() {
		emit(events.WillMove, target)
	}

	m.mu.Lock()
	m.animating = true
	m.mu.Unlock()

	from := m.entity.Position()
	delta := target.Sub(from)
	m.mu.Lock()
	if delta.X != 0 {
		m.facing = sign(delta.X)
	}
	facing := m.facing
	m.mu.Unlock()

	m.env.Registry.Relocate(m.entity, target)

	if err := m.animate(ctx, from, target, delta, facing, kind.forced()); err != nil {
		// The registry already holds target: land there so trigger tracking
		// follows the committed cell. A torn down entity reports nothing.
		m.mu.Lock()
		m.animating, m.claimed = false, false
		m.current = physics.FromPosition(target)
		m.mu.Unlock()
		if m.life.Err() == nil {
			if _, emitErr := bus.Emit(context.WithoutCancel(ctx), m.entity.Bus(), events.DidChangePosition, "moveable", target); emitErr != nil {
				errs = append(errs, emitErr)
			}
		}
		return false, errors.Join(append(errs, err)...)
	}

	m.mu.Lock()
	m.animating, m.claimed = false, false
	m.mu.Unlock()

	emit(events.DidChangePosition, target)
	if !kind.forced() {
		emit(events.DidMove, target)
	}
	return true, errors.Join(errs...)
}

func (m *Moveable) animate(ctx context.Context, from, to, delta models.Position, facing int, forced bool) error {
	start := physics.FromPosition(from)
	end := physics.FromPosition(to)
	duration := m.env.MovementDuration
	frame := m.env.FrameInterval
	if frame <= 0 {
		frame = 16 * time.Millisecond
	}

	ticker := time.NewTicker(frame)
	defer ticker.Stop()
	began := time.Now()

	for {
		progress := 1.0
		if duration > 0 {
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return ctx.Err()
			case <-m.life.Done():
				return context.Canceled
			}
			progress = float64(time.Since(began)) / float64(duration)
		}

		pos := start.Lerp(end, progress)
		m.mu.Lock()
		m.current = pos
		m.mu.Unlock()

		if !forced {
			state := events.MovingState{Current: pos, Next: to, Direction: delta, Facing: facing}
			if _, err := bus.Emit(ctx, m.entity.Bus(), events.Moving, "moveable", state); err != nil {
				m.env.logger().Debug("moving handler failed", log.Uint64("entity", uint64(m.entity.ID())), log.Error(err))
			}
		}
		if progress >= 1 {
			return nil
		}
	}
}

// snap drops the interpolated position onto p.
func (m *Moveable) snap(p models.Position) {
	m.mu.Lock()
	m.current = physics.FromPosition(p)
	m.mu.Unlock()
}

// OnDetach cancels a running animation and any pending block.
func (m *Moveable) OnDetach(*models.Entity) {
	m.cancel()
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
