package components

import (
	"context"
	"strings"

	"github.com/zeusync/tilecore/internal/core/events"
	"github.com/zeusync/tilecore/internal/core/events/bus"
	"github.com/zeusync/tilecore/internal/core/models"
	"github.com/zeusync/tilecore/internal/core/observability/log"
)

// Game store keys shared by all portals during a hand-off.
const (
	TargetPortalKey = "portal.target"
	PortedEntityKey = "portal.ported"
)

// PlayerName is the entity that portals carry between scenes.
const PlayerName = "player"

type PortalSpec struct {
	// Name identifies the portal inside its scene.
	Name string
	// Target is "scene/portal".
	Target string
	// EnterDirection is the step the ported entity takes after arriving.
	EnterDirection models.Position
	// Controlled portals ignore interactions and only port on demand.
	Controlled bool
}

// ScenePortal moves the player to a named portal of another scene.
type ScenePortal struct {
	spec   PortalSpec
	entity *models.Entity
	env    *Env
	subs   subscriptions
}

func NewScenePortal(env *Env, e *models.Entity, spec PortalSpec) *ScenePortal {
	p := &ScenePortal{spec: spec, entity: e, env: env}
	p.subs.add(bus.On(e.Bus(), events.Interaction, p.handleInteraction))
	p.subs.add(env.GameBus.Subscribe(events.SceneInit, p.handleSceneInit))
	p.subs.add(env.GameBus.Subscribe(events.SceneReady, p.handleSceneReady))
	e.RegisterComponent(p)
	return p
}

func (p *ScenePortal) Kind() models.ComponentKind { return models.KindScenePortal }

func (p *ScenePortal) Name() string   { return p.spec.Name }
func (p *ScenePortal) Target() string { return p.spec.Target }

func (p *ScenePortal) OnDetach(*models.Entity) {
	p.subs.cancel()
}

// Port records the hand-off and switches to the target scene. An empty
// target uses the portal's own.
func (p *ScenePortal) Port(ctx context.Context, target string) error {
	if target == "" {
		target = p.spec.Target
	}
	sceneID, portal, _ := strings.Cut(target, "/")
	p.env.GameStore.Set(TargetPortalKey, portal)
	p.env.GameStore.Set(PortedEntityKey, PlayerName)
	return p.env.Scenes.SetScene(ctx, sceneID)
}

func (p *ScenePortal) handleInteraction(ctx context.Context, initiator *models.Entity) error {
	if p.spec.Controlled || initiator.Name() != PlayerName {
		return nil
	}
	return p.Port(ctx, "")
}

func (p *ScenePortal) isTarget() bool {
	v, ok := p.env.GameStore.Get(TargetPortalKey)
	return ok && v == p.spec.Name
}

func (p *ScenePortal) ported() (*models.Entity, bool) {
	v, ok := p.env.GameStore.Get(PortedEntityKey)
	if !ok {
		return nil, false
	}
	name, _ := v.(string)
	return p.env.Registry.FindByName(name)
}

func (p *ScenePortal) handleSceneInit(context.Context, bus.Event) error {
	if !p.isTarget() {
		return nil
	}
	e, ok := p.ported()
	if !ok {
		p.env.logger().Warn("ported entity not found", log.String("portal", p.spec.Name))
		return nil
	}
	Teleport(p.env, e, p.entity.Position())
	return nil
}

func (p *ScenePortal) handleSceneReady(ctx context.Context, _ bus.Event) error {
	if !p.isTarget() {
		return nil
	}
	dir := p.spec.EnterDirection
	if dir == (models.Position{}) {
		return nil
	}
	e, ok := p.ported()
	if !ok {
		return nil
	}

	p.env.GameStore.Delete(TargetPortalKey)
	p.env.GameStore.Delete(PortedEntityKey)

	if m, ok := models.ComponentOf[*Moveable](e, models.KindMoveable); ok {
		_, err := m.Move(ctx, p.entity.Position().Add(dir), MoveWalk)
		return err
	}
	return nil
}

// SceneSwitch is a trigger that changes the scene when something enters it.
type SceneSwitch struct {
	target   string
	entity   *models.Entity
	env      *Env
	collider *Collider
	sub      bus.Subscription
}

// NewSceneSwitch attaches a trigger collider and the switch to e.
func NewSceneSwitch(env *Env, e *models.Entity, target string) *SceneSwitch {
	s := &SceneSwitch{target: target, entity: e, env: env}
	s.collider = NewCollider(env, e, true)
	s.sub = bus.On(e.Bus(), events.Trigger, func(ctx context.Context, _ *models.Entity) error {
		return env.Scenes.SetScene(ctx, s.target)
	})
	e.RegisterComponent(s)
	return s
}

func (s *SceneSwitch) Kind() models.ComponentKind { return models.KindSceneSwitch }
func (s *SceneSwitch) Target() string             { return s.target }

func (s *SceneSwitch) OnDetach(*models.Entity) {
	s.sub.Cancel()
}
