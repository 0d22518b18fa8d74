package physics

import (
	"math"

	"github.com/zeusync/tilecore/internal/core/models"
)

// Vec2 is a continuous position in tile units, used while an entity is
// animating between two grid cells.
type Vec2 struct{ Xv, Yv float64 }

// FromPosition converts a grid cell to its continuous coordinate.
func FromPosition(p models.Position) Vec2 {
	return Vec2{Xv: float64(p.X), Yv: float64(p.Y)}
}

// Lerp interpolates linearly from v to to. t is clamped to [0, 1].
func (v Vec2) Lerp(to Vec2, t float64) Vec2 {
	t = math.Max(0, math.Min(1, t))
	return Vec2{Xv: v.Xv + (to.Xv-v.Xv)*t, Yv: v.Yv + (to.Yv-v.Yv)*t}
}
