package navigation

import (
	"sync"

	"github.com/zeusync/tilecore/internal/core/models"
	"github.com/zeusync/tilecore/internal/core/systems/physics"
)

// Planner plans paths for entities over the current map bounds.
type Planner struct {
	query *physics.Query

	mu     sync.RWMutex
	width  int
	height int
}

func NewPlanner(query *physics.Query, width, height int) *Planner {
	return &Planner{query: query, width: width, height: height}
}

// Resize changes the bounds used by later snapshots, usually after a new
// tile map was mounted.
func (p *Planner) Resize(width, height int) {
	p.mu.Lock()
	p.width, p.height = width, height
	p.mu.Unlock()
}

func (p *Planner) Bounds() (width, height int) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.width, p.height
}

// PathFor snapshots the world as e sees it and searches a path from its
// position to to.
func (p *Planner) PathFor(e *models.Entity, to models.Position) []models.Position {
	w, h := p.Bounds()
	grid := Snapshot(p.query, e.ID(), w, h, to)
	return FindPath(grid, e.Position(), to)
}
