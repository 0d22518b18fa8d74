// Package world owns everything a running game shares: the entity registry,
// the game bus and store, the scene manager and the scene builders.
package world

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/tilecore/internal/config"
	"github.com/zeusync/tilecore/internal/core/components"
	"github.com/zeusync/tilecore/internal/core/events"
	"github.com/zeusync/tilecore/internal/core/events/bus"
	"github.com/zeusync/tilecore/internal/core/models"
	"github.com/zeusync/tilecore/internal/core/navigation"
	"github.com/zeusync/tilecore/internal/core/observability/log"
	"github.com/zeusync/tilecore/internal/core/registry"
	"github.com/zeusync/tilecore/internal/core/scene"
	"github.com/zeusync/tilecore/internal/core/systems/physics"
	"github.com/zeusync/tilecore/pkg/seed"
)

type Settings struct {
	MovementDuration time.Duration
	FrameInterval    time.Duration
	CameraZoom       float64
	MapWidth         int
	MapHeight        int
	Scene            scene.Config
	Seed             string
	Development      bool
}

// SettingsFrom picks the world settings out of the loaded config.
func SettingsFrom(c *config.Config) Settings {
	return Settings{
		MovementDuration: c.Game.MovementDuration,
		FrameInterval:    c.Game.FrameInterval,
		CameraZoom:       c.Game.CameraZoom,
		MapWidth:         c.Game.MapWidth,
		MapHeight:        c.Game.MapHeight,
		Scene: scene.Config{
			SettleDelay:  c.Scene.SettleDelay,
			ReadyTimeout: c.Scene.ReadyTimeout,
		},
		Seed:        c.Seed,
		Development: c.Log.Development,
	}
}

// Builder spawns the entities of a scene.
type Builder func(ctx context.Context, w *World, level int) error

// Attach adds a component to a freshly spawned entity.
type Attach func(env *components.Env, e *models.Entity) error

type World struct {
	settings Settings
	logger   log.Log

	registry  *registry.Registry
	query     *physics.Query
	gameBus   bus.EventBus
	gameStore scene.Store
	idle      *scene.IdleScheduler
	scenes    *scene.Manager
	planner   *navigation.Planner
	seed      *seed.Source
	env       *components.Env

	nextID atomic.Uint64
	paused atomic.Bool

	mu       sync.RWMutex
	builders map[string]Builder
	mapW     int
	mapH     int
}

func New(settings Settings, logger log.Log) *World {
	logger = logger.With(log.String("component", "world"))
	w := &World{
		settings:  settings,
		logger:    logger,
		registry:  registry.New(),
		gameBus:   bus.New(),
		gameStore: scene.NewStore(),
		idle:      scene.NewIdleScheduler(),
		seed:      seed.New(settings.Seed),
		builders:  make(map[string]Builder),
		mapW:      settings.MapWidth,
		mapH:      settings.MapHeight,
	}
	w.query = physics.NewQuery(w.registry)
	w.planner = navigation.NewPlanner(w.query, settings.MapWidth, settings.MapHeight)
	w.scenes = scene.NewManager(w.gameBus, w, w.idle, settings.Scene, logger)
	w.env = &components.Env{
		Registry:         w.registry,
		Query:            w.query,
		GameBus:          w.gameBus,
		Scenes:           w.scenes,
		GameStore:        w.gameStore,
		Logger:           logger,
		MovementDuration: settings.MovementDuration,
		FrameInterval:    settings.FrameInterval,
		Development:      settings.Development,
	}
	return w
}

func (w *World) Settings() Settings                 { return w.settings }
func (w *World) Logger() log.Log                    { return w.logger }
func (w *World) Env() *components.Env               { return w.env }
func (w *World) Registry() *registry.Registry       { return w.registry }
func (w *World) Query() *physics.Query              { return w.query }
func (w *World) GameBus() bus.EventBus              { return w.gameBus }
func (w *World) GameStore() scene.Store             { return w.gameStore }
func (w *World) Idle() *scene.IdleScheduler         { return w.idle }
func (w *World) Scenes() *scene.Manager             { return w.scenes }
func (w *World) Planner() *navigation.Planner       { return w.planner }
func (w *World) Seed() *seed.Source                 { return w.seed }
func (w *World) SetGameState(key string, value any) { w.gameStore.Set(key, value) }

func (w *World) GetGameState(key string) (any, bool) { return w.gameStore.Get(key) }

// Register makes sceneID available to SetScene. A later call replaces the
// builder.
func (w *World) Register(sceneID string, b Builder) {
	w.mu.Lock()
	w.builders[sceneID] = b
	w.mu.Unlock()
}

// Mount runs the builder of sceneID. It is called by the scene manager.
func (w *World) Mount(ctx context.Context, sceneID string, level int) error {
	w.mu.RLock()
	b, ok := w.builders[sceneID]
	w.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownScene, sceneID)
	}
	w.logger.Debug("mounting scene", log.String("scene", sceneID), log.Int("level", level))
	return b(ctx, w, level)
}

// Unmount tears down every entity. It is called by the scene manager.
func (w *World) Unmount(_ context.Context, sceneID string) error {
	entities := w.registry.Clear()
	for _, e := range entities {
		e.Teardown()
	}
	w.logger.Debug("unmounted scene", log.String("scene", sceneID), log.Int("entities", len(entities)))
	return nil
}

// Spawn registers a new entity and attaches components in order. When an
// attach fails the entity is destroyed again.
func (w *World) Spawn(spec models.EntitySpec, attach ...Attach) (*models.Entity, error) {
	e := models.NewEntity(models.EntityID(w.nextID.Add(1)), spec)
	w.registry.Register(e)
	for _, a := range attach {
		if err := a(w.env, e); err != nil {
			w.Destroy(e)
			return nil, fmt.Errorf("spawn %q: %w", spec.Name, err)
		}
	}
	return e, nil
}

// Destroy removes e from the registry and tears it down.
func (w *World) Destroy(e *models.Entity) {
	w.registry.Unregister(e.ID())
	e.Teardown()
}

// SetMapSize changes the bounds used for path planning.
func (w *World) SetMapSize(width, height int) {
	w.mu.Lock()
	w.mapW, w.mapH = width, height
	w.mu.Unlock()
	w.planner.Resize(width, height)
}

func (w *World) MapSize() (width, height int) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.mapW, w.mapH
}

func (w *World) Paused() bool     { return w.paused.Load() }
func (w *World) SetPaused(v bool) { w.paused.Store(v) }

// SaveGame publishes pre-save-game, so components write their state, and
// then save-game, so save slots flush it.
func (w *World) SaveGame(ctx context.Context) error {
	_, preErr := bus.Emit(ctx, w.gameBus, events.PreSaveGame, "world", nil)
	_, saveErr := bus.Emit(ctx, w.gameBus, events.SaveGame, "world", nil)
	return errors.Join(preErr, saveErr)
}

// Close stops the scene manager and tears down every entity.
func (w *World) Close() {
	w.scenes.Close()
	_ = w.Unmount(context.Background(), w.scenes.CurrentScene())
	w.gameBus.Close()
}
