package components

import (
	"context"
	"errors"
	"sync"

	"github.com/zeusync/tilecore/internal/core/events"
	"github.com/zeusync/tilecore/internal/core/events/bus"
	"github.com/zeusync/tilecore/internal/core/models"
	"github.com/zeusync/tilecore/pkg/concurrent"
)

// Collider makes an entity take part in collision. Colliders that are not
// walkable block movement onto their tile. A collider also reports the
// collisions and trigger enter/exit of other entities on its own bus.
type Collider struct {
	entity *models.Entity
	env    *Env

	mu       sync.RWMutex
	walkable bool
	prev     models.Position

	subs subscriptions
}

// NewCollider attaches a collider to e. Triggers start out walkable.
func NewCollider(env *Env, e *models.Entity, isTrigger bool) *Collider {
	c := &Collider{
		entity:   e,
		env:      env,
		walkable: isTrigger,
		prev:     e.Position(),
	}
	c.subs.add(bus.On(e.Bus(), events.CannotMove, c.handleCannotMove))
	c.subs.add(bus.On(e.Bus(), events.DidChangePosition, c.handleDidChangePosition))
	e.RegisterComponent(c)
	return c
}

func (c *Collider) Kind() models.ComponentKind { return models.KindCollider }

func (c *Collider) Walkable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.walkable
}

func (c *Collider) SetWalkable(v bool) {
	c.mu.Lock()
	c.walkable = v
	c.mu.Unlock()
}

// OnCollision is called when other failed to move onto this entity's tile.
func (c *Collider) OnCollision(ctx context.Context, other *models.Entity) error {
	_, err := bus.Emit(ctx, c.entity.Bus(), events.Collision, "collider", other)
	return err
}

// OnTrigger is called when other arrived on this entity's tile.
func (c *Collider) OnTrigger(ctx context.Context, other *models.Entity) error {
	_, err := bus.Emit(ctx, c.entity.Bus(), events.Trigger, "collider", other)
	return err
}

// OnTriggerExit is called when other left this entity's tile.
func (c *Collider) OnTriggerExit(ctx context.Context, other *models.Entity) error {
	_, err := bus.Emit(ctx, c.entity.Bus(), events.TriggerExit, "collider", other)
	return err
}

func (c *Collider) OnDetach(*models.Entity) {
	c.subs.cancel()
}

func (c *Collider) handleCannotMove(ctx context.Context, target models.Position) error {
	return concurrent.JoinAll(c.collidersAt(target, false), func(other *Collider) error {
		return other.OnCollision(ctx, c.entity)
	})
}

func (c *Collider) handleDidChangePosition(ctx context.Context, target models.Position) error {
	c.mu.Lock()
	prev := c.prev
	c.mu.Unlock()

	left := c.collidersAt(prev, true)

	c.mu.Lock()
	c.prev = target
	c.mu.Unlock()

	entered := c.collidersAt(target, true)
	enterErr := concurrent.JoinAll(entered, func(other *Collider) error {
		return other.OnTrigger(ctx, c.entity)
	})
	exitErr := concurrent.JoinAll(left, func(other *Collider) error {
		return other.OnTriggerExit(ctx, c.entity)
	})
	return errors.Join(enterErr, exitErr)
}

func (c *Collider) collidersAt(p models.Position, skipSelf bool) []*Collider {
	var out []*Collider
	for _, e := range c.env.Registry.FindAt(p) {
		if skipSelf && e.ID() == c.entity.ID() {
			continue
		}
		if other, ok := models.ComponentOf[*Collider](e, models.KindCollider); ok {
			out = append(out, other)
		}
	}
	return out
}

// resetPrevious forgets the tracked previous tile after a teleport, so the
// next move reports its exit against the new tile.
func (c *Collider) resetPrevious(p models.Position) {
	c.mu.Lock()
	c.prev = p
	c.mu.Unlock()
}

// Teleport relocates e to p without a movement animation or events.
func Teleport(env *Env, e *models.Entity, p models.Position) {
	env.Registry.Relocate(e, p)
	if c, ok := models.ComponentOf[*Collider](e, models.KindCollider); ok {
		c.resetPrevious(p)
	}
	if m, ok := models.ComponentOf[*Moveable](e, models.KindMoveable); ok {
		m.snap(p)
	}
}
