package models

import (
	"sort"
	"sync"

	"github.com/zeusync/tilecore/internal/core/events/bus"
)

type EntityID uint64

// NoEntity is never assigned to a live entity.
const NoEntity EntityID = 0

// EntitySpec carries the construction-time attributes of an entity.
type EntitySpec struct {
	Name        string
	DisplayName string
	Layer       Layer
	Position    Position
	Disabled    bool
}

// Entity is a game object: a stable identity, a grid position, a layer tag,
// its registered components and its own event bus.
type Entity struct {
	id          EntityID
	name        string
	displayName string
	layer       Layer
	bus         bus.EventBus

	mu         sync.RWMutex
	position   Position
	disabled   bool
	torn       bool
	components map[ComponentKind]Component
}

func NewEntity(id EntityID, spec EntitySpec) *Entity {
	return &Entity{
		id:          id,
		name:        spec.Name,
		displayName: spec.DisplayName,
		layer:       spec.Layer,
		position:    spec.Position,
		disabled:    spec.Disabled,
		bus:         bus.New(),
		components:  make(map[ComponentKind]Component),
	}
}

func (e *Entity) ID() EntityID        { return e.id }
func (e *Entity) Name() string        { return e.name }
func (e *Entity) DisplayName() string { return e.displayName }
func (e *Entity) Layer() Layer        { return e.layer }

// Bus is the entity-scope event bus.
func (e *Entity) Bus() bus.EventBus { return e.bus }

func (e *Entity) Position() Position {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.position
}

// SetPosition mutates the raw position. Entities that live in a registry
// must be moved with Registry.Relocate so the coordinate index follows.
func (e *Entity) SetPosition(p Position) {
	e.mu.Lock()
	e.position = p
	e.mu.Unlock()
}

func (e *Entity) Disabled() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.disabled
}

func (e *Entity) SetDisabled(v bool) {
	e.mu.Lock()
	e.disabled = v
	e.mu.Unlock()
}

// RegisterComponent stores c under its kind. A previous instance of the
// same kind is detached.
func (e *Entity) RegisterComponent(c Component) {
	e.mu.Lock()
	prev, ok := e.components[c.Kind()]
	e.components[c.Kind()] = c
	e.mu.Unlock()

	if ok && prev != c {
		if d, ok := prev.(Detacher); ok {
			d.OnDetach(e)
		}
	}
}

// UnregisterComponent removes c only if it is the instance currently
// registered for its kind.
func (e *Entity) UnregisterComponent(c Component) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	cur, ok := e.components[c.Kind()]
	if !ok || cur != c {
		return false
	}
	delete(e.components, c.Kind())
	return true
}

func (e *Entity) Component(kind ComponentKind) (Component, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	c, ok := e.components[kind]
	return c, ok
}

func (e *Entity) HasComponent(kind ComponentKind) bool {
	_, ok := e.Component(kind)
	return ok
}

// Components returns the registered components ordered by kind.
func (e *Entity) Components() []Component {
	e.mu.RLock()
	out := make([]Component, 0, len(e.components))
	for _, c := range e.components {
		out = append(out, c)
	}
	e.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Kind() < out[j].Kind() })
	return out
}

// Teardown detaches every component and closes the entity bus. It runs once;
// later calls are no-ops.
func (e *Entity) Teardown() {
	e.mu.Lock()
	if e.torn {
		e.mu.Unlock()
		return
	}
	e.torn = true
	e.mu.Unlock()

	for _, c := range e.Components() {
		if d, ok := c.(Detacher); ok {
			d.OnDetach(e)
		}
		e.UnregisterComponent(c)
	}
	e.bus.Close()
}

// TornDown reports whether Teardown has run.
func (e *Entity) TornDown() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.torn
}
