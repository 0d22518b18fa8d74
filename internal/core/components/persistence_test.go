package components

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/tilecore/internal/core/events"
	"github.com/zeusync/tilecore/internal/core/events/bus"
	"github.com/zeusync/tilecore/internal/core/models"
)

func TestPersistenceRoundTrip(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	chest := h.spawn(models.EntitySpec{Name: "chest", Position: models.Position{X: 3, Y: 4}})
	p, err := NewPersistence(h.env, chest)
	require.NoError(t, err)
	assert.Equal(t, "chest._gameObject", p.Key())

	chest.SetDisabled(true)
	_, err = bus.Emit(ctx, h.env.GameBus, events.ScenePreExit, "test", "room")
	require.NoError(t, err)

	v, ok := h.scenes.GetState("chest._gameObject")
	require.True(t, ok)
	assert.Equal(t, ObjectState{X: 3, Y: 4, Disabled: true}, v)

	chest.Teardown()
	fresh := h.spawn(models.EntitySpec{Name: "chest", Position: models.Position{X: 3, Y: 4}})
	_, err = NewPersistence(h.env, fresh)
	require.NoError(t, err)
	assert.False(t, fresh.Disabled())

	_, err = bus.Emit(ctx, h.env.GameBus, events.SceneInit, "test", "room")
	require.NoError(t, err)
	assert.True(t, fresh.Disabled())
}

func TestPersistenceSavesBeforeSaveGame(t *testing.T) {
	h := newHarness(t)
	lever := h.spawn(models.EntitySpec{Name: "lever"})
	_, err := NewPersistence(h.env, lever)
	require.NoError(t, err)

	_, err = bus.Emit(context.Background(), h.env.GameBus, events.PreSaveGame, "test", nil)
	require.NoError(t, err)
	_, ok := h.scenes.GetState("lever._gameObject")
	assert.True(t, ok)
}

func TestPersistenceWithoutStateIsNoop(t *testing.T) {
	h := newHarness(t)
	door := h.spawn(models.EntitySpec{Name: "door"})
	_, err := NewPersistence(h.env, door)
	require.NoError(t, err)

	_, err = bus.Emit(context.Background(), h.env.GameBus, events.SceneInit, "test", "room")
	assert.NoError(t, err)
	assert.False(t, door.Disabled())
}

func TestPersistenceNeedsName(t *testing.T) {
	h := newHarness(t)
	anon := h.spawn(models.EntitySpec{})

	_, err := NewPersistence(h.env, anon)
	assert.ErrorIs(t, err, ErrUnnamedEntity)
	assert.False(t, anon.HasComponent(models.KindPersistence))

	h.env.Development = true
	p, err := NewPersistence(h.env, anon)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.True(t, anon.HasComponent(models.KindPersistence))
	assert.Zero(t, h.env.GameBus.HasSubscriptions(events.ScenePreExit), "inert component does not subscribe")
}

func TestPersistenceDetachUnsubscribes(t *testing.T) {
	h := newHarness(t)
	box := h.spawn(models.EntitySpec{Name: "box"})
	_, err := NewPersistence(h.env, box)
	require.NoError(t, err)
	require.Equal(t, 1, h.env.GameBus.HasSubscriptions(events.SceneInit))

	box.Teardown()
	assert.Zero(t, h.env.GameBus.HasSubscriptions(events.SceneInit))
}
