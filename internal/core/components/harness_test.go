package components

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/zeusync/tilecore/internal/core/events/bus"
	"github.com/zeusync/tilecore/internal/core/models"
	"github.com/zeusync/tilecore/internal/core/observability/log"
	"github.com/zeusync/tilecore/internal/core/registry"
	"github.com/zeusync/tilecore/internal/core/scene"
	"github.com/zeusync/tilecore/internal/core/systems/physics"
)

type fakeScenes struct {
	mu       sync.Mutex
	switches []string
	state    scene.Store
}

func (f *fakeScenes) SetScene(_ context.Context, target string) error {
	f.mu.Lock()
	f.switches = append(f.switches, target)
	f.mu.Unlock()
	return nil
}

func (f *fakeScenes) SetState(key string, v any)      { f.state.Set(key, v) }
func (f *fakeScenes) GetState(key string) (any, bool) { return f.state.Get(key) }

func (f *fakeScenes) targets() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.switches...)
}

type harness struct {
	env    *Env
	scenes *fakeScenes
	next   models.EntityID
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	reg := registry.New()
	scenes := &fakeScenes{state: scene.NewStore()}
	return &harness{
		scenes: scenes,
		env: &Env{
			Registry:         reg,
			Query:            physics.NewQuery(reg),
			GameBus:          bus.New(),
			Scenes:           scenes,
			GameStore:        scene.NewStore(),
			Logger:           log.NewNop(),
			MovementDuration: 20 * time.Millisecond,
			FrameInterval:    2 * time.Millisecond,
		},
	}
}

func (h *harness) spawn(spec models.EntitySpec) *models.Entity {
	h.next++
	e := models.NewEntity(h.next, spec)
	h.env.Registry.Register(e)
	return e
}

// floor lays walkable ground over [0,w) x [0,h).
func (h *harness) floor(w, ht int) {
	for y := 0; y < ht; y++ {
		for x := 0; x < w; x++ {
			h.spawn(models.EntitySpec{Layer: models.LayerGround, Position: models.Position{X: x, Y: y}})
		}
	}
}

func (h *harness) wall(x, y int) *models.Entity {
	e := h.spawn(models.EntitySpec{Layer: models.LayerWall, Position: models.Position{X: x, Y: y}})
	NewCollider(h.env, e, false)
	return e
}

// eventLog records event names published on a bus, in order.
type eventLog struct {
	mu    sync.Mutex
	names []string
	data  []any
}

func watch(b bus.EventBus, names ...string) *eventLog {
	l := &eventLog{}
	for _, name := range names {
		name := name
		b.Subscribe(name, func(_ context.Context, e bus.Event) error {
			l.mu.Lock()
			l.names = append(l.names, name)
			l.data = append(l.data, e.Data())
			l.mu.Unlock()
			return nil
		})
	}
	return l
}

func (l *eventLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.names...)
}

func (l *eventLog) count(name string) int {
	n := 0
	for _, s := range l.list() {
		if s == name {
			n++
		}
	}
	return n
}
