package models

import "fmt"

// ComponentKind is the closed set of capabilities an entity can expose.
type ComponentKind uint8

const (
	KindCollider ComponentKind = iota + 1
	KindMoveable
	KindInteractable
	KindScenePortal
	KindSceneSwitch
	KindPersistence
	KindSprite
)

var kindNames = map[ComponentKind]string{
	KindCollider:     "Collider",
	KindMoveable:     "Moveable",
	KindInteractable: "Interactable",
	KindScenePortal:  "ScenePortal",
	KindSceneSwitch:  "SceneSwitch",
	KindPersistence:  "Persistence",
	KindSprite:       "Sprite",
}

func (k ComponentKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ComponentKind(%d)", uint8(k))
}

// ParseComponentKind maps a component name back to its kind.
func ParseComponentKind(s string) (ComponentKind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownComponent, s)
}

// Component is a capability bundle registered on an entity under its Kind.
// Implementations must be pointer types so registrations can be compared by identity.
type Component interface {
	Kind() ComponentKind
}

// Detacher is implemented by components that own goroutines, timers or
// subscriptions. OnDetach runs once when the owning entity is torn down.
type Detacher interface {
	OnDetach(e *Entity)
}

// ComponentOf returns the component of kind registered on e as T.
// A missing component, or one of another concrete type, yields (zero, false).
func ComponentOf[T Component](e *Entity, kind ComponentKind) (T, bool) {
	var zero T
	if e == nil {
		return zero, false
	}
	c, ok := e.Component(kind)
	if !ok {
		return zero, false
	}
	typed, ok := c.(T)
	return typed, ok
}
