// Package navigation finds walking paths over a snapshot of the collision
// query.
package navigation

import (
	"github.com/zeusync/tilecore/internal/core/models"
	"github.com/zeusync/tilecore/internal/core/systems/physics"
)

// Grid is a walkability snapshot. Cells are stored row by row, y first.
type Grid struct {
	width  int
	height int
	cells  []bool
}

// NewGrid returns a grid where every cell is blocked.
func NewGrid(width, height int) *Grid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Grid{width: width, height: height, cells: make([]bool, width*height)}
}

// GridFromRows builds a grid from rows indexed [y][x], where 0 is walkable
// and anything else blocked. Rows shorter than the first one are padded
// with blocked cells.
func GridFromRows(rows [][]int) *Grid {
	if len(rows) == 0 {
		return NewGrid(0, 0)
	}
	g := NewGrid(len(rows[0]), len(rows))
	for y, row := range rows {
		for x := 0; x < g.width && x < len(row); x++ {
			g.Set(models.Position{X: x, Y: y}, row[x] == 0)
		}
	}
	return g
}

// Snapshot samples the walkable query for self over [0,width) x [0,height).
// The destination is marked walkable when another entity there can be
// interacted with, so a path can end next to, and onto, an interaction
// target.
func Snapshot(q *physics.Query, self models.EntityID, width, height int, dest models.Position) *Grid {
	g := NewGrid(width, height)
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			p := models.Position{X: x, Y: y}
			g.cells[g.index(p)] = q.Walkable(self, p)
		}
	}
	if g.Contains(dest) && q.InteractableAt(self, dest) {
		g.Set(dest, true)
	}
	return g
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

func (g *Grid) Contains(p models.Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < g.width && p.Y < g.height
}

// Walkable is false outside the grid.
func (g *Grid) Walkable(p models.Position) bool {
	return g.Contains(p) && g.cells[g.index(p)]
}

func (g *Grid) Set(p models.Position, walkable bool) {
	if g.Contains(p) {
		g.cells[g.index(p)] = walkable
	}
}

func (g *Grid) index(p models.Position) int {
	return p.Y*g.width + p.X
}

func (g *Grid) position(i int) models.Position {
	return models.Position{X: i % g.width, Y: i / g.width}
}
