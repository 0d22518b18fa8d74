// Package tilemap parses ASCII tile maps and turns them into entities.
package tilemap

import (
	"context"
	"strings"

	"github.com/zeusync/tilecore/internal/core/events"
	"github.com/zeusync/tilecore/internal/core/events/bus"
	"github.com/zeusync/tilecore/internal/core/models"
)

// Data holds cells as written: the first row is the top of the map.
type Data [][]string

// Parse splits an ASCII block into rows of single-rune cells. Spaces are
// ignored and one trailing newline is dropped. A leading newline opens the
// first row, so maps can start on the line after the opening quote.
func Parse(s string) Data {
	s = strings.TrimSuffix(s, "\n")
	var (
		data Data
		row  []string
		open bool
	)
	for _, r := range s {
		switch r {
		case ' ', '\t', '\r':
			continue
		case '\n':
			if open {
				data = append(data, row)
			}
			row, open = []string{}, true
		default:
			row = append(row, string(r))
			open = true
		}
	}
	if open {
		data = append(data, row)
	}
	return data
}

// Inject overlays data onto source. bottomLeft is the position of data's
// bottom-left cell in map coordinates, where y=0 is the bottom row of
// source. Cells outside source are dropped.
func Inject(source, data Data, bottomLeft models.Position) {
	for i, row := range data {
		y := len(source) - bottomLeft.Y - (len(data) - i)
		if y < 0 || y >= len(source) {
			continue
		}
		for j, cell := range row {
			x := bottomLeft.X + j
			if x < 0 || x >= len(source[y]) {
				continue
			}
			source[y][x] = cell
		}
	}
}

// Map is Data flipped so that y=0 is the bottom row.
type Map struct {
	rows Data
}

func New(data Data) *Map {
	rows := make(Data, len(data))
	for i, row := range data {
		rows[len(data)-1-i] = row
	}
	return &Map{rows: rows}
}

// Size is the width of the bottom row and the number of rows.
func (m *Map) Size() (width, height int) {
	if len(m.rows) == 0 {
		return 0, 0
	}
	return len(m.rows[0]), len(m.rows)
}

func (m *Map) At(p models.Position) (string, bool) {
	if p.Y < 0 || p.Y >= len(m.rows) || p.X < 0 || p.X >= len(m.rows[p.Y]) {
		return "", false
	}
	return m.rows[p.Y][p.X], true
}

// Each visits cells bottom row first, left to right.
func (m *Map) Each(fn func(cell string, p models.Position)) {
	for y, row := range m.rows {
		for x, cell := range row {
			fn(cell, models.Position{X: x, Y: y})
		}
	}
}

// Positions lists the cells for which keep returns true.
func (m *Map) Positions(keep func(cell string) bool) []models.Position {
	var out []models.Position
	m.Each(func(cell string, p models.Position) {
		if keep(cell) {
			out = append(out, p)
		}
	})
	return out
}

// Resolver creates the entities of one cell.
type Resolver func(ctx context.Context, cell string, p models.Position) error

// Target is what a map is spawned into.
type Target interface {
	GameBus() bus.EventBus
	SetMapSize(width, height int)
}

type SpawnOptions struct {
	// DefinesMapSize makes the map size the world's map size.
	DefinesMapSize bool
}

// Spawn resolves every cell and then publishes tile-map-update. Resolving
// stops at the first error.
func Spawn(ctx context.Context, t Target, m *Map, resolve Resolver, opts SpawnOptions) error {
	if resolve != nil {
		for y, row := range m.rows {
			for x, cell := range row {
				if err := resolve(ctx, cell, models.Position{X: x, Y: y}); err != nil {
					return err
				}
			}
		}
	}
	if opts.DefinesMapSize {
		if w, h := m.Size(); h > 0 {
			t.SetMapSize(w, h)
		}
	}
	_, err := bus.Emit(ctx, t.GameBus(), events.TileMapUpdate, "tilemap", nil)
	return err
}
