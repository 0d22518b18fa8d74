package world

import (
	"github.com/zeusync/tilecore/internal/core/components"
	"github.com/zeusync/tilecore/internal/core/models"
)

func WithCollider(isTrigger bool) Attach {
	return func(env *components.Env, e *models.Entity) error {
		components.NewCollider(env, e, isTrigger)
		return nil
	}
}

func WithMoveable(static bool) Attach {
	return func(env *components.Env, e *models.Entity) error {
		components.NewMoveable(env, e, static)
		return nil
	}
}

func WithInteractable() Attach {
	return func(env *components.Env, e *models.Entity) error {
		components.NewInteractable(env, e)
		return nil
	}
}

func WithPortal(spec components.PortalSpec) Attach {
	return func(env *components.Env, e *models.Entity) error {
		components.NewScenePortal(env, e, spec)
		return nil
	}
}

func WithSwitch(target string) Attach {
	return func(env *components.Env, e *models.Entity) error {
		components.NewSceneSwitch(env, e, target)
		return nil
	}
}

func WithPersistence() Attach {
	return func(env *components.Env, e *models.Entity) error {
		_, err := components.NewPersistence(env, e)
		return err
	}
}

// WithComponent registers a component built elsewhere, such as a render
// marker.
func WithComponent(c models.Component) Attach {
	return func(_ *components.Env, e *models.Entity) error {
		e.RegisterComponent(c)
		return nil
	}
}
