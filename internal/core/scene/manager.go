// Package scene drives the scene and level lifecycle of a world and owns the
// scene-scoped key/value store.
package scene

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/zeusync/tilecore/internal/core/events"
	"github.com/zeusync/tilecore/internal/core/events/bus"
	"github.com/zeusync/tilecore/internal/core/observability/log"
)

// Mounter builds and tears down the entities of a scene.
type Mounter interface {
	Mount(ctx context.Context, scene string, level int) error
	Unmount(ctx context.Context, scene string) error
}

// Restorer fills the store of a scene that is about to be entered. It runs
// after the scene is mounted and before scene-init is published.
type Restorer func(ctx context.Context, scene string, state Store) error

type Config struct {
	// SettleDelay is how long the empty scene stays current during a switch.
	SettleDelay time.Duration
	// ReadyTimeout bounds the wait for an idle tick before scene-ready.
	ReadyTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		SettleDelay:  100 * time.Millisecond,
		ReadyTimeout: time.Second,
	}
}

type transitionKey struct{}

// Manager is the scene state machine. Transitions are serialized: a
// SetScene, SetLevel or ResetScene call made from an event handler of a
// running transition is queued and runs once that transition finished.
type Manager struct {
	bus     bus.EventBus
	mounter Mounter
	idle    *IdleScheduler
	store   Store
	cfg     Config
	logger  log.Log

	transition sync.Mutex

	pendingMu sync.Mutex
	active    bool
	pending   []func(ctx context.Context) error

	mu          sync.RWMutex
	current     string
	level       int
	prevLevel   int
	epoch       uint64
	cancelReady func()
	restorers   []Restorer
	closed      bool
}

func NewManager(gameBus bus.EventBus, mounter Mounter, idle *IdleScheduler, cfg Config, logger log.Log) *Manager {
	if mounter == nil {
		mounter = nopMounter{}
	}
	if idle == nil {
		idle = NewIdleScheduler()
	}
	return &Manager{
		bus:       gameBus,
		mounter:   mounter,
		idle:      idle,
		store:     NewStore(),
		cfg:       cfg,
		logger:    logger.With(log.String("component", "scene")),
		prevLevel: -1,
	}
}

// AddRestorer registers a hook run on every scene entry.
func (m *Manager) AddRestorer(r Restorer) {
	m.mu.Lock()
	m.restorers = append(m.restorers, r)
	m.mu.Unlock()
}

func (m *Manager) CurrentScene() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

func (m *Manager) Level() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.level
}

func (m *Manager) PrevLevel() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.prevLevel
}

// Transition is -1 when the current level was entered from a lower one,
// +1 otherwise.
func (m *Manager) Transition() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.prevLevel < m.level {
		return -1
	}
	return 1
}

// Store is the root scene store. Components should prefer SetState/GetState.
func (m *Manager) Store() Store { return m.store }

// State is the store view of the current scene.
func (m *Manager) State() Store {
	return m.store.Namespace(m.CurrentScene())
}

func (m *Manager) SetState(key string, value any) {
	m.State().Set(key, value)
}

func (m *Manager) GetState(key string) (any, bool) {
	return m.State().Get(key)
}

// SetScene switches to "id[:level]". Switching to another scene publishes
// scene-pre-exit and scene-exit for the current one, passes through the
// empty scene and enters the target. The same scene with another level
// delegates to SetLevel.
func (m *Manager) SetScene(ctx context.Context, target string) error {
	id, level, err := ParseID(target)
	if err != nil {
		return err
	}
	return m.run(ctx, func(ctx context.Context) error {
		return m.setScene(ctx, id, level)
	})
}

// SetLevel resets the current scene into level n. Same level is a no-op.
func (m *Manager) SetLevel(ctx context.Context, n int) error {
	return m.run(ctx, func(ctx context.Context) error {
		return m.setLevel(ctx, n)
	})
}

// ResetScene remounts the current scene and level through the empty scene.
func (m *Manager) ResetScene(ctx context.Context) error {
	return m.run(ctx, m.resetScene)
}

func (m *Manager) EnterNextLevel(ctx context.Context) error {
	return m.SetLevel(ctx, m.Level()+1)
}

func (m *Manager) EnterPrevLevel(ctx context.Context) error {
	return m.SetLevel(ctx, m.Level()-1)
}

// Close cancels a pending scene-ready and rejects later transitions.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	cancel := m.cancelReady
	m.cancelReady = nil
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (m *Manager) run(ctx context.Context, fn func(ctx context.Context) error) error {
	if owner, _ := ctx.Value(transitionKey{}).(*Manager); owner == m && m.enqueue(fn) {
		return nil
	}

	m.transition.Lock()
	defer m.transition.Unlock()

	m.mu.RLock()
	closed := m.closed
	m.mu.RUnlock()
	if closed {
		return ErrClosed
	}

	m.pendingMu.Lock()
	m.active = true
	m.pendingMu.Unlock()

	ctx = context.WithValue(ctx, transitionKey{}, m)
	err := fn(ctx)
	return errors.Join(err, m.drain(ctx))
}

func (m *Manager) enqueue(fn func(ctx context.Context) error) bool {
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()
	if !m.active {
		return false
	}
	m.pending = append(m.pending, fn)
	return true
}

func (m *Manager) drain(ctx context.Context) error {
	var errs []error
	for {
		m.pendingMu.Lock()
		if len(m.pending) == 0 {
			m.active = false
			m.pendingMu.Unlock()
			return errors.Join(errs...)
		}
		fn := m.pending[0]
		m.pending = m.pending[1:]
		m.pendingMu.Unlock()

		errs = append(errs, fn(ctx))
	}
}

func (m *Manager) setScene(ctx context.Context, id string, level int) error {
	m.mu.RLock()
	cur, curLevel := m.current, m.level
	m.mu.RUnlock()

	if id == cur {
		if level != curLevel {
			return m.setLevel(ctx, level)
		}
		return nil
	}

	var errs []error
	if cur != "" {
		errs = append(errs, m.exit(ctx, cur))
	}
	errs = append(errs, m.empty(ctx, cur))
	if id == "" {
		return errors.Join(errs...)
	}

	m.mu.Lock()
	m.prevLevel = -1
	m.level = level
	m.current = id
	m.mu.Unlock()

	errs = append(errs, m.enter(ctx))
	return errors.Join(errs...)
}

func (m *Manager) setLevel(ctx context.Context, n int) error {
	m.mu.Lock()
	if n == m.level {
		m.mu.Unlock()
		return nil
	}
	m.prevLevel = m.level
	m.level = n
	m.mu.Unlock()
	return m.resetScene(ctx)
}

func (m *Manager) resetScene(ctx context.Context) error {
	m.mu.RLock()
	scene, level, prev := m.current, m.level, m.prevLevel
	m.mu.RUnlock()
	if scene == "" {
		return nil
	}

	errs := []error{m.setScene(ctx, "", 0)}

	m.mu.Lock()
	m.current = scene
	m.level = level
	m.prevLevel = prev
	m.mu.Unlock()

	errs = append(errs, m.enter(ctx))
	return errors.Join(errs...)
}

func (m *Manager) exit(ctx context.Context, scene string) error {
	m.logger.Debug("exiting scene", log.String("scene", scene))
	_, preErr := bus.Emit(ctx, m.bus, events.ScenePreExit, "scene", scene)
	_, exitErr := bus.Emit(ctx, m.bus, events.SceneExit, "scene", scene)
	return errors.Join(preErr, exitErr)
}

// empty makes the empty scene current: the pending ready is dropped, the
// previous scene is unmounted, the store is cleared and the settle delay
// is awaited.
func (m *Manager) empty(ctx context.Context, prev string) error {
	m.mu.Lock()
	cancel := m.cancelReady
	m.cancelReady = nil
	m.epoch++
	m.current = ""
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	var err error
	if prev != "" {
		err = m.mounter.Unmount(ctx, prev)
	}
	m.store.Clear()

	if m.cfg.SettleDelay > 0 {
		t := time.NewTimer(m.cfg.SettleDelay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		}
	}
	return err
}

func (m *Manager) enter(ctx context.Context) error {
	m.mu.Lock()
	m.epoch++
	scene, level, epoch := m.current, m.level, m.epoch
	restorers := append([]Restorer(nil), m.restorers...)
	m.mu.Unlock()

	m.logger.Debug("entering scene", log.String("scene", scene), log.Int("level", level))

	if err := m.mounter.Mount(ctx, scene, level); err != nil {
		return err
	}

	var errs []error
	view := m.store.Namespace(scene)
	for _, restore := range restorers {
		errs = append(errs, restore(ctx, scene, view))
	}

	_, err := bus.Emit(ctx, m.bus, events.SceneInit, "scene", scene)
	errs = append(errs, err)

	cancel := m.idle.Schedule(m.cfg.ReadyTimeout, func() { m.ready(scene, epoch) })
	m.mu.Lock()
	if m.epoch == epoch {
		m.cancelReady = cancel
	} else {
		cancel()
	}
	m.mu.Unlock()

	return errors.Join(errs...)
}

func (m *Manager) ready(scene string, epoch uint64) {
	err := m.run(context.Background(), func(ctx context.Context) error {
		m.mu.Lock()
		if m.epoch != epoch || m.current != scene {
			m.mu.Unlock()
			return nil
		}
		m.cancelReady = nil
		m.mu.Unlock()

		_, err := bus.Emit(ctx, m.bus, events.SceneReady, "scene", scene)
		return err
	})
	if err != nil && !errors.Is(err, ErrClosed) {
		m.logger.Error("scene-ready handlers failed", log.String("scene", scene), log.Error(err))
	}
}

type nopMounter struct{}

func (nopMounter) Mount(context.Context, string, int) error { return nil }
func (nopMounter) Unmount(context.Context, string) error    { return nil }
