package navigation

import (
	"github.com/zeusync/tilecore/internal/core/models"
	"github.com/zeusync/tilecore/pkg/generic"
	"github.com/zeusync/tilecore/pkg/sequence"
)

const (
	straightCost = 10
	diagonalCost = 14
)

var steps = append(models.Directions[:], models.Diagonals[:]...)

type node struct {
	index int
	h     int
}

// scratch holds the per-search buffers. Searches run on the caller's
// goroutine; buffers are recycled through a pool.
type scratch struct {
	g      []int
	parent []int
	closed []bool
	open   *sequence.PriorityQueue[node]
}

var scratchPool = generic.NewResettingPool(
	func() *scratch {
		return &scratch{open: sequence.NewMinQueue(func(a, b node) bool { return a.h < b.h })}
	},
	func(s *scratch) { s.open.Reset() },
)

func (s *scratch) prepare(n int) {
	if cap(s.g) < n {
		s.g = make([]int, n)
		s.parent = make([]int, n)
		s.closed = make([]bool, n)
	}
	s.g = s.g[:n]
	s.parent = s.parent[:n]
	s.closed = s.closed[:n]
	for i := range s.g {
		s.g[i] = -1
		s.parent[i] = -1
		s.closed[i] = false
	}
}

// FindPath runs A* with 8-directional moves. The result excludes from and
// includes to. It is empty when to is unreachable or blocked, when either
// end lies outside the grid, or when from equals to.
//
// A diagonal step is refused only when both orthogonal cells next to the
// corner are blocked.
func FindPath(g *Grid, from, to models.Position) []models.Position {
	if g == nil || !g.Contains(from) || !g.Walkable(to) || from == to {
		return nil
	}

	s := scratchPool.Get()
	defer scratchPool.Put(s)
	s.prepare(len(g.cells))

	start, goal := g.index(from), g.index(to)
	s.g[start] = 0
	s.open.Enqueue(node{index: start, h: octile(from, to)}, octile(from, to))

	for !s.open.IsEmpty() {
		cur, _ := s.open.Dequeue()
		if s.closed[cur.index] {
			continue
		}
		if cur.index == goal {
			return s.trace(g, goal)
		}
		s.closed[cur.index] = true

		p := g.position(cur.index)
		for _, d := range steps {
			next := p.Add(d)
			if !g.Walkable(next) {
				continue
			}
			cost := straightCost
			if d.X != 0 && d.Y != 0 {
				if !g.Walkable(models.Position{X: next.X, Y: p.Y}) && !g.Walkable(models.Position{X: p.X, Y: next.Y}) {
					continue
				}
				cost = diagonalCost
			}
			ni := g.index(next)
			if s.closed[ni] {
				continue
			}
			tentative := s.g[cur.index] + cost
			if s.g[ni] >= 0 && tentative >= s.g[ni] {
				continue
			}
			s.g[ni] = tentative
			s.parent[ni] = cur.index
			h := octile(next, to)
			s.open.Enqueue(node{index: ni, h: h}, tentative+h)
		}
	}
	return nil
}

func (s *scratch) trace(g *Grid, goal int) []models.Position {
	var out []models.Position
	for i := goal; s.parent[i] >= 0; i = s.parent[i] {
		out = append(out, g.position(i))
	}
	for l, r := 0, len(out)-1; l < r; l, r = l+1, r-1 {
		out[l], out[r] = out[r], out[l]
	}
	return out
}

func octile(a, b models.Position) int {
	dx, dy := abs(a.X-b.X), abs(a.Y-b.Y)
	if dx < dy {
		dx, dy = dy, dx
	}
	return straightCost*(dx-dy) + diagonalCost*dy
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
