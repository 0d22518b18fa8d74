// Package components implements the capabilities an entity can expose:
// colliders, movement, interaction, scene portals and switches, and
// persisted state.
package components

import (
	"context"
	"time"

	"github.com/zeusync/tilecore/internal/core/events/bus"
	"github.com/zeusync/tilecore/internal/core/observability/log"
	"github.com/zeusync/tilecore/internal/core/registry"
	"github.com/zeusync/tilecore/internal/core/scene"
	"github.com/zeusync/tilecore/internal/core/systems/physics"
)

// Scenes is the part of the scene manager components talk to.
type Scenes interface {
	SetScene(ctx context.Context, target string) error
	SetState(key string, value any)
	GetState(key string) (any, bool)
}

// Env carries the world services a component needs. It is built once per
// world and shared by every component.
type Env struct {
	Registry  *registry.Registry
	Query     *physics.Query
	GameBus   bus.EventBus
	Scenes    Scenes
	GameStore scene.Store
	Logger    log.Log

	MovementDuration time.Duration
	FrameInterval    time.Duration
	// Development relaxes programmer-error checks into logged warnings.
	Development bool
}

func (env *Env) logger() log.Log {
	if env.Logger == nil {
		return log.NewNop()
	}
	return env.Logger
}

// subscriptions collects the bus handles a component owns so they can be
// cancelled together on detach.
type subscriptions []bus.Subscription

func (s *subscriptions) add(sub bus.Subscription) {
	*s = append(*s, sub)
}

func (s *subscriptions) cancel() {
	for _, sub := range *s {
		sub.Cancel()
	}
	*s = nil
}
