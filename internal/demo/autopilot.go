package demo

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/tilecore/internal/core/components"
	"github.com/zeusync/tilecore/internal/core/models"
	"github.com/zeusync/tilecore/internal/core/observability/log"
	"github.com/zeusync/tilecore/internal/core/systems"
	"github.com/zeusync/tilecore/internal/core/world"
)

// Autopilot walks the player to seeded random targets. A path that ends on
// an interactable, such as a portal, ends with an interaction instead of a
// step.
type Autopilot struct {
	world  *world.World
	next   func() float64
	logger log.Log

	busy atomic.Bool

	mu    sync.Mutex
	scene string
	path  []models.Position
}

var _ systems.System = (*Autopilot)(nil)

func NewAutopilot(w *world.World, logger log.Log) *Autopilot {
	return &Autopilot{
		world:  w,
		next:   w.Seed().Sequence("autopilot"),
		logger: logger.With(log.String("system", "autopilot")),
	}
}

func (a *Autopilot) Name() string                           { return "autopilot" }
func (a *Autopilot) Priority() systems.Priority             { return systems.PriorityNormal }
func (a *Autopilot) ExecutionPhase() systems.ExecutionPhase { return systems.PhaseUpdate }

// Update starts at most one step per frame. Steps run in the background so
// the frame loop keeps ticking during the animation.
func (a *Autopilot) Update(ctx context.Context, _ time.Duration) error {
	if a.busy.Load() {
		return nil
	}
	player, ok := a.world.Registry().FindByName(components.PlayerName)
	if !ok {
		return nil
	}
	m, ok := models.ComponentOf[*components.Moveable](player, models.KindMoveable)
	if !ok || !m.CanMove(nil) {
		return nil
	}

	step, last, ok := a.step(player)
	if !ok {
		return nil
	}

	a.busy.Store(true)
	go func() {
		defer a.busy.Store(false)
		var err error
		if last && a.world.Query().InteractableAt(player.ID(), step) {
			if i, ok := models.ComponentOf[*components.Interactable](player, models.KindInteractable); ok {
				_, err = i.Interact(ctx, step)
			}
		} else {
			var moved bool
			moved, err = m.Move(ctx, step, components.MoveWalk)
			if !moved {
				a.reset()
			}
		}
		if err != nil && ctx.Err() == nil {
			a.logger.Debug("autopilot step failed", log.Error(err))
		}
	}()
	return nil
}

// step pops the next position, planning a new path when the old one is
// used up or the scene changed.
func (a *Autopilot) step(player *models.Entity) (models.Position, bool, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	current := a.world.Scenes().CurrentScene()
	if current != a.scene {
		a.scene, a.path = current, nil
	}
	if len(a.path) == 0 {
		a.path = a.plan(player)
		if len(a.path) == 0 {
			return models.Position{}, false, false
		}
	}
	next := a.path[0]
	a.path = a.path[1:]
	return next, len(a.path) == 0, true
}

func (a *Autopilot) plan(player *models.Entity) []models.Position {
	width, height := a.world.MapSize()
	if width <= 0 || height <= 0 {
		return nil
	}
	target := models.Position{
		X: int(a.next() * float64(width)),
		Y: int(a.next() * float64(height)),
	}
	return a.world.Planner().PathFor(player, target)
}

func (a *Autopilot) reset() {
	a.mu.Lock()
	a.path = nil
	a.mu.Unlock()
}
