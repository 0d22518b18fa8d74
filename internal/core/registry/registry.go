// Package registry indexes the live entities of a world by identity, name,
// grid coordinate and layer.
package registry

import (
	"sync"

	"github.com/zeusync/tilecore/internal/core/models"
)

// Registry is the spatial index of a world. Every registered entity sits in
// exactly one coordinate bucket, the one matching its current position.
// Disabled entities stay indexed but are hidden from FindByXY and FindByLayer.
type Registry struct {
	mu      sync.RWMutex
	byID    map[models.EntityID]*models.Entity
	byName  map[string]*models.Entity
	byXY    map[string][]*models.Entity
	byLayer map[models.Layer][]*models.Entity
}

func New() *Registry {
	return &Registry{
		byID:    make(map[models.EntityID]*models.Entity),
		byName:  make(map[string]*models.Entity),
		byXY:    make(map[string][]*models.Entity),
		byLayer: make(map[models.Layer][]*models.Entity),
	}
}

// Register adds e to every index. Registering an entity that is already
// present is a no-op. A name already taken by another entity is overwritten.
func (r *Registry) Register(e *models.Entity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[e.ID()]; ok {
		return
	}
	r.byID[e.ID()] = e
	if name := e.Name(); name != "" {
		r.byName[name] = e
	}
	key := e.Position().Key()
	r.byXY[key] = append(r.byXY[key], e)
	r.byLayer[e.Layer()] = append(r.byLayer[e.Layer()], e)
}

// Unregister removes the entity with id from every index. Unknown ids are ignored.
// The name index entry is only dropped if it still points at this entity.
func (r *Registry) Unregister(id models.EntityID) *models.Entity {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok {
		return nil
	}
	delete(r.byID, id)
	if name := e.Name(); name != "" && r.byName[name] == e {
		delete(r.byName, name)
	}
	r.removeXYLocked(e.Position().Key(), e)
	r.byLayer[e.Layer()] = without(r.byLayer[e.Layer()], e)
	if len(r.byLayer[e.Layer()]) == 0 {
		delete(r.byLayer, e.Layer())
	}
	return e
}

// Relocate moves a registered entity to p: it leaves its old coordinate bucket,
// its position is updated and it joins the new bucket in one step. An entity
// that is not registered only has its position updated.
func (r *Registry) Relocate(e *models.Entity, p models.Position) {
	r.mu.Lock()
	defer r.mu.Unlock()
	old := e.Position()
	if _, ok := r.byID[e.ID()]; !ok || r.byID[e.ID()] != e {
		e.SetPosition(p)
		return
	}
	if old == p {
		return
	}
	r.removeXYLocked(old.Key(), e)
	e.SetPosition(p)
	key := p.Key()
	r.byXY[key] = append(r.byXY[key], e)
}

func (r *Registry) FindByID(id models.EntityID) (*models.Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byID[id]
	return e, ok
}

func (r *Registry) FindByName(name string) (*models.Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byName[name]
	return e, ok
}

// FindByXY returns the enabled entities at (x, y) in registration order.
func (r *Registry) FindByXY(x, y int) []*models.Entity {
	return r.FindAt(models.Position{X: x, Y: y})
}

// FindAt is FindByXY for a Position.
func (r *Registry) FindAt(p models.Position) []*models.Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return enabled(r.byXY[p.Key()])
}

// FindByLayer returns the enabled entities tagged with layer.
func (r *Registry) FindByLayer(layer models.Layer) []*models.Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return enabled(r.byLayer[layer])
}

// All returns every registered entity, disabled ones included.
func (r *Registry) All() []*models.Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.Entity, 0, len(r.byID))
	for _, e := range r.byID {
		out = append(out, e)
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// Clear drops every index and returns the entities that were registered.
func (r *Registry) Clear() []*models.Entity {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Entity, 0, len(r.byID))
	for _, e := range r.byID {
		out = append(out, e)
	}
	r.byID = make(map[models.EntityID]*models.Entity)
	r.byName = make(map[string]*models.Entity)
	r.byXY = make(map[string][]*models.Entity)
	r.byLayer = make(map[models.Layer][]*models.Entity)
	return out
}

func (r *Registry) removeXYLocked(key string, e *models.Entity) {
	rest := without(r.byXY[key], e)
	if len(rest) == 0 {
		delete(r.byXY, key)
		return
	}
	r.byXY[key] = rest
}

func without(list []*models.Entity, e *models.Entity) []*models.Entity {
	for i, cur := range list {
		if cur == e {
			out := make([]*models.Entity, 0, len(list)-1)
			out = append(out, list[:i]...)
			return append(out, list[i+1:]...)
		}
	}
	return list
}

func enabled(list []*models.Entity) []*models.Entity {
	out := make([]*models.Entity, 0, len(list))
	for _, e := range list {
		if !e.Disabled() {
			out = append(out, e)
		}
	}
	return out
}
