// Package savegame keeps scene stores across sessions. Each scene is saved
// as one property of the slot object in the platform data directory; when
// no data directory is available the slots live in memory.
package savegame

import (
	"context"
	"fmt"
	"sync"

	"github.com/quasilyte/gdata/v2"

	"github.com/zeusync/tilecore/internal/core/events"
	"github.com/zeusync/tilecore/internal/core/events/bus"
	"github.com/zeusync/tilecore/internal/core/observability/log"
	"github.com/zeusync/tilecore/internal/core/scene"
)

// Scenes is the part of the scene manager the slots need.
type Scenes interface {
	CurrentScene() string
	Store() scene.Store
	AddRestorer(r scene.Restorer)
}

// Open opens the data directory of appName. It returns a nil manager and
// no error when saving is disabled.
func Open(enabled bool, appName string) (*gdata.Manager, error) {
	if !enabled {
		return nil, nil
	}
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return m, nil
}

type Slots struct {
	slot    string
	backend backend
	scenes  Scenes
	logger  log.Log

	subs []bus.Subscription
}

// New binds the slot named slot to the game bus. A nil data manager keeps
// everything in memory.
func New(data *gdata.Manager, slot string, gameBus bus.EventBus, scenes Scenes, logger log.Log) *Slots {
	var b backend = newMemoryBackend()
	if data != nil {
		b = gdataBackend{m: data}
	}
	s := &Slots{
		slot:    slot,
		backend: b,
		scenes:  scenes,
		logger:  logger.With(log.String("component", "savegame"), log.String("slot", slot)),
	}
	s.subs = append(s.subs,
		bus.On(gameBus, events.SceneExit, s.onSceneExit),
		gameBus.Subscribe(events.SaveGame, s.onSaveGame),
	)
	scenes.AddRestorer(s.restore)
	return s
}

// Persistent reports whether the slots are written to disk.
func (s *Slots) Persistent() bool {
	_, ok := s.backend.(gdataBackend)
	return ok
}

// Has reports whether sceneID was saved in this slot.
func (s *Slots) Has(sceneID string) bool {
	return s.backend.exists(s.slot, sceneID)
}

// Save writes the current entries of sceneID's store.
func (s *Slots) Save(sceneID string) error {
	if sceneID == "" {
		return nil
	}
	data, err := s.scenes.Store().Namespace(sceneID).MarshalBinary()
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrSnapshot, sceneID, err)
	}
	if err := s.backend.save(s.slot, sceneID, data); err != nil {
		return fmt.Errorf("%w: save %s: %v", ErrSnapshot, sceneID, err)
	}
	s.logger.Debug("scene saved", log.String("scene", sceneID), log.Int("bytes", len(data)))
	return nil
}

// Close stops following the game bus.
func (s *Slots) Close() {
	for _, sub := range s.subs {
		sub.Cancel()
	}
	s.subs = nil
}

func (s *Slots) onSceneExit(_ context.Context, sceneID string) error {
	return s.Save(sceneID)
}

func (s *Slots) onSaveGame(context.Context, bus.Event) error {
	return s.Save(s.scenes.CurrentScene())
}

func (s *Slots) restore(_ context.Context, sceneID string, state scene.Store) error {
	if !s.backend.exists(s.slot, sceneID) {
		return nil
	}
	data, err := s.backend.load(s.slot, sceneID)
	if err != nil {
		return fmt.Errorf("%w: load %s: %v", ErrSnapshot, sceneID, err)
	}
	if err := state.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrSnapshot, sceneID, err)
	}
	s.logger.Debug("scene restored", log.String("scene", sceneID))
	return nil
}

type backend interface {
	exists(object, prop string) bool
	load(object, prop string) ([]byte, error)
	save(object, prop string, data []byte) error
}

type gdataBackend struct {
	m *gdata.Manager
}

func (b gdataBackend) exists(object, prop string) bool {
	return b.m.ObjectPropExists(object, prop)
}

func (b gdataBackend) load(object, prop string) ([]byte, error) {
	return b.m.LoadObjectProp(object, prop)
}

func (b gdataBackend) save(object, prop string, data []byte) error {
	return b.m.SaveObjectProp(object, prop, data)
}

type memoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{data: make(map[string][]byte)}
}

func (b *memoryBackend) exists(object, prop string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.data[object+"/"+prop]
	return ok
}

func (b *memoryBackend) load(object, prop string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.data[object+"/"+prop]
	if !ok {
		return nil, fmt.Errorf("%s/%s not found", object, prop)
	}
	return append([]byte(nil), data...), nil
}

func (b *memoryBackend) save(object, prop string, data []byte) error {
	b.mu.Lock()
	b.data[object+"/"+prop] = append([]byte(nil), data...)
	b.mu.Unlock()
	return nil
}
