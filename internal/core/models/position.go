package models

import (
	"math"
	"strconv"
)

// Position is an integer grid coordinate. y grows upwards, (0,0) is the
// bottom-left tile of a map.
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Cardinal directions, clockwise starting at north.
var Directions = [4]Position{{0, 1}, {1, 0}, {0, -1}, {-1, 0}}

// Diagonal directions, clockwise starting at north-west.
var Diagonals = [4]Position{{-1, 1}, {1, 1}, {1, -1}, {-1, -1}}

// Key is the coordinate index key "x,y".
func (p Position) Key() string {
	return strconv.Itoa(p.X) + "," + strconv.Itoa(p.Y)
}

func (p Position) String() string {
	return "[" + strconv.Itoa(p.X) + ", " + strconv.Itoa(p.Y) + "]"
}

func (p Position) Add(o Position) Position { return Position{X: p.X + o.X, Y: p.Y + o.Y} }
func (p Position) Sub(o Position) Position { return Position{X: p.X - o.X, Y: p.Y - o.Y} }

// FloatDistance is the euclidean distance between two tiles.
func (p Position) FloatDistance(o Position) float64 {
	dx := float64(p.X - o.X)
	dy := float64(p.Y - o.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Distance is FloatDistance rounded half up.
func (p Position) Distance(o Position) int {
	return roundHalfUp(p.FloatDistance(o))
}

// RangeNeighbors lists every tile of the (2rx+1)x(2ry+1) square centered on p,
// row by row from the bottom. The center is included.
func (p Position) RangeNeighbors(rx, ry int) []Position {
	out := make([]Position, 0, (2*rx+1)*(2*ry+1))
	for y := -ry; y <= ry; y++ {
		for x := -rx; x <= rx; x++ {
			out = append(out, Position{X: p.X + x, Y: p.Y + y})
		}
	}
	return out
}

// OuterRangeNeighbors lists only the border tiles of RangeNeighbors.
func (p Position) OuterRangeNeighbors(rx, ry int) []Position {
	out := make([]Position, 0, 4*(rx+ry))
	for y := -ry; y <= ry; y++ {
		for x := -rx; x <= rx; x++ {
			if x == -rx || x == rx || y == -ry || y == ry {
				out = append(out, Position{X: p.X + x, Y: p.Y + y})
			}
		}
	}
	return out
}

// lineProbes is the number of samples per tile of distance. One sample per
// tile skips corners on shallow lines.
const lineProbes = 1.5

// LineTo samples the straight line from p to o and returns the distinct tiles
// it crosses, starting with p and ending with o.
func (p Position) LineTo(o Position) []Position {
	probes := p.FloatDistance(o) * lineProbes
	step := 1 / math.Max(probes, 1)

	out := make([]Position, 0, int(probes)+2)
	for i := 0; float64(i) <= probes; i++ {
		t := step * float64(i)
		tile := Position{
			X: roundHalfUp(float64(p.X) + float64(o.X-p.X)*t),
			Y: roundHalfUp(float64(p.Y) + float64(o.Y-p.Y)*t),
		}
		if containsPosition(out, tile) {
			continue
		}
		out = append(out, tile)
	}
	if !containsPosition(out, o) {
		out = append(out, o)
	}
	return out
}

// Direction returns the per-axis sign of o - p.
func (p Position) Direction(o Position) Position {
	return Position{X: sign(o.X - p.X), Y: sign(o.Y - p.Y)}
}

func containsPosition(list []Position, p Position) bool {
	for _, q := range list {
		if q == p {
			return true
		}
	}
	return false
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
