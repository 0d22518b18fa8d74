package tilemap

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/tilecore/internal/core/events"
	"github.com/zeusync/tilecore/internal/core/events/bus"
	"github.com/zeusync/tilecore/internal/core/models"
)

const room = `
# # # #
# · · #
· · · #
# # # #
`

func TestParse(t *testing.T) {
	data := Parse(room)

	require.Len(t, data, 4)
	assert.Equal(t, []string{"#", "#", "#", "#"}, data[0])
	assert.Equal(t, []string{"·", "·", "·", "#"}, data[2])
	assert.Empty(t, Parse(""))
	assert.Equal(t, Data{{"a", "b"}, {"c"}}, Parse("ab\nc\n"))
}

func TestMapIsBottomUp(t *testing.T) {
	m := New(Parse(room))

	w, h := m.Size()
	assert.Equal(t, 4, w)
	assert.Equal(t, 4, h)

	cell, ok := m.At(models.Position{X: 0, Y: 1})
	require.True(t, ok)
	assert.Equal(t, "·", cell, "the door row is second from the bottom")

	_, ok = m.At(models.Position{X: 4, Y: 0})
	assert.False(t, ok)

	assert.Equal(t, []models.Position{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1}, {X: 1, Y: 2}, {X: 2, Y: 2}},
		m.Positions(func(c string) bool { return c == "·" }))
}

func TestInject(t *testing.T) {
	source := Parse(`
. . . .
. . . .
. . . .
`)
	Inject(source, Parse("ab\ncd"), models.Position{X: 1, Y: 0})

	m := New(source)
	at := func(x, y int) string {
		c, _ := m.At(models.Position{X: x, Y: y})
		return c
	}
	assert.Equal(t, "c", at(1, 0))
	assert.Equal(t, "d", at(2, 0))
	assert.Equal(t, "a", at(1, 1))
	assert.Equal(t, "b", at(2, 1))
	assert.Equal(t, ".", at(1, 2))

	assert.NotPanics(t, func() { Inject(source, Parse("xy"), models.Position{X: 3, Y: 5}) })
}

type target struct {
	bus    bus.EventBus
	width  int
	height int
}

func (t *target) GameBus() bus.EventBus { return t.bus }
func (t *target) SetMapSize(w, h int)   { t.width, t.height = w, h }

func TestSpawn(t *testing.T) {
	tg := &target{bus: bus.New()}
	var updates int
	tg.bus.Subscribe(events.TileMapUpdate, func(context.Context, bus.Event) error {
		updates++
		return nil
	})

	var walls []models.Position
	err := Spawn(context.Background(), tg, New(Parse(room)), func(_ context.Context, cell string, p models.Position) error {
		if cell == "#" {
			walls = append(walls, p)
		}
		return nil
	}, SpawnOptions{DefinesMapSize: true})

	require.NoError(t, err)
	assert.Len(t, walls, 11)
	assert.Equal(t, 1, updates)
	assert.Equal(t, 4, tg.width)
	assert.Equal(t, 4, tg.height)
}

func TestSpawnStopsOnResolverError(t *testing.T) {
	tg := &target{bus: bus.New()}
	boom := errors.New("boom")
	calls := 0

	err := Spawn(context.Background(), tg, New(Parse(room)), func(context.Context, string, models.Position) error {
		calls++
		return boom
	}, SpawnOptions{DefinesMapSize: true})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
	assert.Zero(t, tg.width)
}
