package savegame

import (
	"context"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/quasilyte/gdata/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/tilecore/internal/core/events"
	"github.com/zeusync/tilecore/internal/core/events/bus"
	"github.com/zeusync/tilecore/internal/core/observability/log"
	"github.com/zeusync/tilecore/internal/core/scene"
)

type chest struct {
	Open  bool
	Coins int
}

func init() {
	gob.Register(chest{})
}

func newManager(t *testing.T) (*scene.Manager, bus.EventBus) {
	t.Helper()
	b := bus.New()
	m := scene.NewManager(b, nil, nil, scene.Config{ReadyTimeout: time.Second}, log.NewNop())
	t.Cleanup(m.Close)
	return m, b
}

func TestSceneExitRoundTrip(t *testing.T) {
	ctx := context.Background()
	m, b := newManager(t)
	slots := New(nil, "slot-1", b, m, log.NewNop())
	assert.False(t, slots.Persistent())

	require.NoError(t, m.SetScene(ctx, "office"))
	m.SetState("chest", chest{Open: true, Coins: 3})

	require.NoError(t, m.SetScene(ctx, "cellar"))
	_, ok := m.Store().Namespace("office").Get("chest")
	assert.False(t, ok, "the store was cleared on exit")
	assert.True(t, slots.Has("office"))

	require.NoError(t, m.SetScene(ctx, "office"))
	v, ok := m.GetState("chest")
	require.True(t, ok)
	assert.Equal(t, chest{Open: true, Coins: 3}, v)
}

func TestSaveGameWritesCurrentScene(t *testing.T) {
	ctx := context.Background()
	m, b := newManager(t)
	slots := New(nil, "slot-1", b, m, log.NewNop())

	require.NoError(t, m.SetScene(ctx, "office"))
	m.SetState("chest", chest{Coins: 7})
	assert.False(t, slots.Has("office"))

	_, err := bus.Emit(ctx, b, events.SaveGame, "test", nil)
	require.NoError(t, err)
	assert.True(t, slots.Has("office"))
}

func TestUnregisteredValueFailsSnapshot(t *testing.T) {
	m, b := newManager(t)
	slots := New(nil, "slot-1", b, m, log.NewNop())

	require.NoError(t, m.SetScene(context.Background(), "office"))
	m.SetState("weird", struct{ A int }{1})
	assert.ErrorIs(t, slots.Save("office"), ErrSnapshot)
}

func TestClosedSlotsIgnoreEvents(t *testing.T) {
	ctx := context.Background()
	m, b := newManager(t)
	slots := New(nil, "slot-1", b, m, log.NewNop())
	slots.Close()

	require.NoError(t, m.SetScene(ctx, "office"))
	_, err := bus.Emit(ctx, b, events.SaveGame, "test", nil)
	require.NoError(t, err)
	assert.False(t, slots.Has("office"))
}

func TestOpenDisabled(t *testing.T) {
	data, err := Open(false, "ignored")
	assert.NoError(t, err)
	assert.Nil(t, data)
}

func TestGdataSlots(t *testing.T) {
	appName := fmt.Sprintf("tilecore_test_%d", time.Now().UnixNano())
	data, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil || data == nil {
		t.Skip("no data directory available")
	}
	t.Cleanup(func() {
		if home, err := os.UserHomeDir(); err == nil {
			_ = os.RemoveAll(filepath.Join(home, ".local", "share", appName))
		}
	})

	ctx := context.Background()
	m, b := newManager(t)
	slots := New(data, "slot1", b, m, log.NewNop())
	require.True(t, slots.Persistent())

	require.NoError(t, m.SetScene(ctx, "office"))
	m.SetState("chest", chest{Coins: 9})
	require.NoError(t, slots.Save("office"))

	m2, b2 := newManager(t)
	New(data, "slot1", b2, m2, log.NewNop())
	require.NoError(t, m2.SetScene(ctx, "office"))
	v, ok := m2.GetState("chest")
	require.True(t, ok)
	assert.Equal(t, chest{Coins: 9}, v)
}
