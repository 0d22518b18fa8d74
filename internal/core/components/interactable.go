package components

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/zeusync/tilecore/internal/core/events"
	"github.com/zeusync/tilecore/internal/core/events/bus"
	"github.com/zeusync/tilecore/internal/core/models"
	"github.com/zeusync/tilecore/pkg/concurrent"
)

// Interactable lets an entity start interactions and receive them. One guard
// covers both roles: while an entity is interacting, as initiator or as
// receiver, it accepts no other interaction. An initiator takes the guard
// after will-interact went out.
type Interactable struct {
	entity     *models.Entity
	env        *Env
	busy       atomic.Bool
	initiating atomic.Bool
}

func NewInteractable(env *Env, e *models.Entity) *Interactable {
	i := &Interactable{entity: e, env: env}
	e.RegisterComponent(i)
	return i
}

func (i *Interactable) Kind() models.ComponentKind { return models.KindInteractable }

// CanInteract reports whether no interaction is in flight.
func (i *Interactable) CanInteract() bool {
	return !i.busy.Load()
}

// CanReceiveInteraction is CanInteract plus at least one interaction handler.
func (i *Interactable) CanReceiveInteraction() bool {
	return i.CanInteract() && i.entity.Bus().HasSubscriptions(events.Interaction) > 0
}

// OnInteraction subscribes fn to interactions received by this entity.
func (i *Interactable) OnInteraction(fn func(ctx context.Context, initiator *models.Entity) error) bus.Subscription {
	return bus.On(i.entity.Bus(), events.Interaction, fn)
}

// Interact starts an interaction with every receiver at target. It returns
// false, without publishing anything, when no entity there can receive or
// when this entity is already interacting.
func (i *Interactable) Interact(ctx context.Context, target models.Position) (bool, error) {
	var receivers []*Interactable
	for _, e := range i.env.Registry.FindAt(target) {
		if e.ID() == i.entity.ID() {
			continue
		}
		if r, ok := models.ComponentOf[*Interactable](e, models.KindInteractable); ok && r.CanReceiveInteraction() {
			receivers = append(receivers, r)
		}
	}
	if len(receivers) == 0 || !i.CanInteract() {
		return false, nil
	}
	if !i.initiating.CompareAndSwap(false, true) {
		return false, nil
	}

	_, willErr := bus.Emit(ctx, i.entity.Bus(), events.WillInteract, "interactable", target)
	locked := i.busy.CompareAndSwap(false, true)
	err := concurrent.JoinAll(receivers, func(r *Interactable) error {
		_, err := r.OnInteract(ctx, i.entity)
		return err
	})
	if locked {
		i.busy.Store(false)
	}
	i.initiating.Store(false)
	_, didErr := bus.Emit(ctx, i.entity.Bus(), events.DidInteract, "interactable", target)

	return true, errors.Join(willErr, err, didErr)
}

// OnInteract receives an interaction from initiator. accepted is false when
// this entity was already interacting.
func (i *Interactable) OnInteract(ctx context.Context, initiator *models.Entity) (accepted bool, err error) {
	if !i.busy.CompareAndSwap(false, true) {
		return false, nil
	}
	defer i.busy.Store(false)

	from := initiator.Position()
	_, willErr := bus.Emit(ctx, i.entity.Bus(), events.WillInteract, "interactable", from)
	_, interactErr := bus.Emit(ctx, i.entity.Bus(), events.Interaction, "interactable", initiator)
	_, didErr := bus.Emit(ctx, i.entity.Bus(), events.DidInteract, "interactable", from)
	return true, errors.Join(willErr, interactErr, didErr)
}
