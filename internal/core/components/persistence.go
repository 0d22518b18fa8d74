package components

import (
	"context"
	"encoding/gob"

	"github.com/zeusync/tilecore/internal/core/events"
	"github.com/zeusync/tilecore/internal/core/events/bus"
	"github.com/zeusync/tilecore/internal/core/models"
	"github.com/zeusync/tilecore/internal/core/observability/log"
)

// ObjectState is what a persisted entity keeps in the scene store.
type ObjectState struct {
	X        int
	Y        int
	Disabled bool
}

const objectStateKey = "_gameObject"

func init() {
	gob.Register(ObjectState{})
}

// Persistence keeps a named entity's disabled flag across scene visits. The
// state is written on scene-pre-exit and pre-save-game and read back on
// scene-init.
type Persistence struct {
	entity *models.Entity
	env    *Env
	subs   subscriptions
}

// NewPersistence attaches persistence to e. Persisted state is keyed by the
// entity name, so an unnamed entity is rejected. In development builds the
// mistake is logged and an inert component is returned instead.
func NewPersistence(env *Env, e *models.Entity) (*Persistence, error) {
	p := &Persistence{entity: e, env: env}
	if e.Name() == "" {
		if !env.Development {
			return nil, ErrUnnamedEntity
		}
		env.logger().Error("persistence attached to an unnamed entity", log.Uint64("entity", uint64(e.ID())))
		e.RegisterComponent(p)
		return p, nil
	}

	p.subs.add(env.GameBus.Subscribe(events.ScenePreExit, p.save))
	p.subs.add(env.GameBus.Subscribe(events.PreSaveGame, p.save))
	p.subs.add(env.GameBus.Subscribe(events.SceneInit, p.restore))
	e.RegisterComponent(p)
	return p, nil
}

func (p *Persistence) Kind() models.ComponentKind { return models.KindPersistence }

// Key is the scene store key of this entity's state.
func (p *Persistence) Key() string {
	return p.entity.Name() + "." + objectStateKey
}

func (p *Persistence) OnDetach(*models.Entity) {
	p.subs.cancel()
}

func (p *Persistence) save(context.Context, bus.Event) error {
	pos := p.entity.Position()
	p.env.Scenes.SetState(p.Key(), ObjectState{X: pos.X, Y: pos.Y, Disabled: p.entity.Disabled()})
	return nil
}

func (p *Persistence) restore(context.Context, bus.Event) error {
	v, ok := p.env.Scenes.GetState(p.Key())
	if !ok {
		return nil
	}
	if state, ok := v.(ObjectState); ok {
		p.entity.SetDisabled(state.Disabled)
	}
	return nil
}
