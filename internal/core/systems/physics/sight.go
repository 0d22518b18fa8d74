package physics

import "github.com/zeusync/tilecore/internal/core/models"

// CanSee reports whether target lies within rng tiles of origin and every
// tile strictly between them lets sight pass.
func (q *Query) CanSee(self models.EntityID, origin, target models.Position, rng int) bool {
	if origin.Distance(target) > rng {
		return false
	}
	line := origin.LineTo(target)
	if len(line) <= 2 {
		return true
	}
	for _, tile := range line[1 : len(line)-1] {
		if !q.Test(self, tile, ModeSight) {
			return false
		}
	}
	return true
}

// CircleOfSight returns the tiles visible from origin within the square of
// half-size rng. Each ray stops at the first tile that blocks sight; that
// tile is still visible. origin comes first, the rest in discovery order.
func (q *Query) CircleOfSight(self models.EntityID, origin models.Position, rng int) []models.Position {
	seen := map[models.Position]struct{}{origin: {}}
	out := []models.Position{origin}

	for _, edge := range origin.RangeNeighbors(rng, rng) {
		line := origin.LineTo(edge)
		for _, tile := range line[1:] {
			if _, ok := seen[tile]; !ok {
				seen[tile] = struct{}{}
				out = append(out, tile)
			}
			if !q.Test(self, tile, ModeSight) {
				break
			}
		}
	}
	return out
}
