package physics

import "github.com/zeusync/tilecore/internal/core/models"

// Mode selects the blocking rule of a tile test.
type Mode uint8

const (
	// ModeWalkable asks whether an actor may occupy the tile.
	ModeWalkable Mode = iota
	// ModeSight asks whether the tile lets sight pass.
	ModeSight
	// ModeHit asks whether a projectile could pass the tile.
	ModeHit
)

func (m Mode) String() string {
	switch m {
	case ModeSight:
		return "sight"
	case ModeHit:
		return "hit"
	default:
		return "walkable"
	}
}

// Finder resolves the enabled entities standing on a tile.
type Finder interface {
	FindAt(p models.Position) []*models.Entity
}

// Walkable is implemented by colliders.
type Walkable interface {
	Walkable() bool
}

// Query answers collision and sight questions against a Finder.
type Query struct {
	finder Finder
}

func NewQuery(f Finder) *Query {
	return &Query{finder: f}
}

// Test reports whether tile p passes mode for the entity self. An empty tile
// is outside the map and never passes. self is skipped so an actor never
// blocks itself; pass models.NoEntity for an anonymous probe.
func (q *Query) Test(self models.EntityID, p models.Position, mode Mode) bool {
	entities := q.finder.FindAt(p)
	if len(entities) == 0 {
		return false
	}
	for _, e := range entities {
		if e.ID() == self {
			continue
		}
		if !passes(e, mode) {
			return false
		}
	}
	return true
}

// Walkable is Test with ModeWalkable.
func (q *Query) Walkable(self models.EntityID, p models.Position) bool {
	return q.Test(self, p, ModeWalkable)
}

func passes(e *models.Entity, mode Mode) bool {
	walkable, hasCollider := colliderWalkable(e)
	switch mode {
	case ModeSight:
		switch e.Layer() {
		case models.LayerWall, models.LayerObstacle:
			return hasCollider && walkable
		}
		return true
	case ModeHit:
		switch e.Layer() {
		case models.LayerWall, models.LayerVisibleWall, models.LayerObstacle:
			return hasCollider && walkable
		}
		return true
	default:
		return !hasCollider || walkable
	}
}

func colliderWalkable(e *models.Entity) (walkable, ok bool) {
	c, ok := e.Component(models.KindCollider)
	if !ok {
		return false, false
	}
	w, ok := c.(Walkable)
	if !ok {
		return false, false
	}
	return w.Walkable(), true
}

// InteractableAt reports whether an entity other than self at p exposes an
// Interactable component.
func (q *Query) InteractableAt(self models.EntityID, p models.Position) bool {
	for _, e := range q.finder.FindAt(p) {
		if e.ID() != self && e.HasComponent(models.KindInteractable) {
			return true
		}
	}
	return false
}
