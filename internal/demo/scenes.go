// Package demo holds the two sample scenes run by tilesim and an autopilot
// that walks the player around them.
package demo

import (
	"context"
	"fmt"

	"github.com/zeusync/tilecore/internal/core/components"
	"github.com/zeusync/tilecore/internal/core/events"
	"github.com/zeusync/tilecore/internal/core/events/bus"
	"github.com/zeusync/tilecore/internal/core/models"
	"github.com/zeusync/tilecore/internal/core/tilemap"
	"github.com/zeusync/tilecore/internal/core/world"
	"github.com/zeusync/tilecore/pkg/seed"
)

const (
	OfficeScene = "office"
	OtherScene  = "other"
)

// Legend: '#' wall, '·' floor, 'P' plant, 'C' coffee machine, 'Z' pizza,
// 'E' exit portal, 'W' workstation.
var officeMap = tilemap.Parse(`
# # # # # # # # # #
# · · · · W · · · #
# · P · · · · C · #
# · · · · · · · · E
# · · · Z · · P · #
# # # # # # # # # #
`)

var otherMap = tilemap.Parse(`
# # # # # #
# · · · · #
· · · · · #
# · · · · #
# # # # # #
`)

// Sprite is the render marker of an entity. Core logic ignores it.
type Sprite struct {
	Sheet string
	State string
}

func (*Sprite) Kind() models.ComponentKind { return models.KindSprite }

// Register adds the sample scenes to w.
func Register(w *world.World) {
	w.Register(OfficeScene, buildOffice)
	w.Register(OtherScene, buildOther)
}

func buildOffice(ctx context.Context, w *world.World, _ int) error {
	m := tilemap.New(officeMap)
	err := tilemap.Spawn(ctx, w, m, func(_ context.Context, cell string, p models.Position) error {
		return resolveOffice(w, cell, p)
	}, tilemap.SpawnOptions{DefinesMapSize: true})
	if err != nil {
		return err
	}
	_, err = spawnPlayer(w, models.Position{X: 2, Y: 2})
	return err
}

func buildOther(ctx context.Context, w *world.World, _ int) error {
	m := tilemap.New(otherMap)
	err := tilemap.Spawn(ctx, w, m, func(_ context.Context, cell string, p models.Position) error {
		return resolveFloorAndWalls(w, cell, p)
	}, tilemap.SpawnOptions{DefinesMapSize: true})
	if err != nil {
		return err
	}
	start := models.Position{X: 0, Y: 2}
	if _, err := w.Spawn(models.EntitySpec{Name: "start", Position: start},
		world.WithCollider(false),
		world.WithInteractable(),
		world.WithPortal(components.PortalSpec{Name: "start", Target: OfficeScene + "/exit", EnterDirection: models.Position{X: 1}}),
	); err != nil {
		return err
	}
	_, err = spawnPlayer(w, start)
	return err
}

func spawnPlayer(w *world.World, p models.Position) (*models.Entity, error) {
	return w.Spawn(models.EntitySpec{Name: components.PlayerName, DisplayName: "Player", Layer: models.LayerCharacter, Position: p},
		world.WithCollider(false),
		world.WithMoveable(false),
		world.WithInteractable(),
		world.WithComponent(&Sprite{Sheet: "player", State: "idle"}),
	)
}

func resolveFloorAndWalls(w *world.World, cell string, p models.Position) error {
	switch cell {
	case "#":
		_, err := w.Spawn(models.EntitySpec{Layer: models.LayerWall, Position: p},
			world.WithCollider(false),
			world.WithComponent(&Sprite{Sheet: "objects", State: "wall"}))
		return err
	case "·":
		return floor(w, p)
	default:
		return nil
	}
}

func floor(w *world.World, p models.Position) error {
	variant := []string{"floor", "floor", "floor-crack"}
	_, err := w.Spawn(models.EntitySpec{Layer: models.LayerGround, Position: p},
		world.WithComponent(&Sprite{Sheet: "objects", State: seed.Pick(w.Seed(), p.Key(), variant)}))
	return err
}

func resolveOffice(w *world.World, cell string, p models.Position) error {
	switch cell {
	case "#", "·":
		return resolveFloorAndWalls(w, cell, p)
	}
	if err := floor(w, p); err != nil {
		return err
	}

	switch cell {
	case "P":
		_, err := w.Spawn(models.EntitySpec{Layer: models.LayerObstacle, Position: p},
			world.WithCollider(false),
			world.WithComponent(&Sprite{Sheet: "objects", State: "plant"}))
		return err
	case "W":
		_, err := w.Spawn(models.EntitySpec{Name: "workstation", Layer: models.LayerObstacle, Position: p},
			world.WithCollider(false),
			world.WithInteractable(),
			world.WithComponent(&Sprite{Sheet: "objects", State: "workstation-1"}),
			onInteraction(func(ctx context.Context, e, initiator *models.Entity) error {
				sprite, _ := models.ComponentOf[*Sprite](e, models.KindSprite)
				if sprite.State == "workstation-1" {
					sprite.State = "workstation-2"
				} else {
					sprite.State = "workstation-1"
				}
				return nil
			}))
		return err
	case "C":
		_, err := w.Spawn(models.EntitySpec{Name: "coffee-machine", Layer: models.LayerObstacle, Position: p},
			world.WithCollider(false),
			world.WithInteractable(),
			world.WithComponent(&Sprite{Sheet: "objects", State: "coffee-machine"}),
			onInteraction(func(ctx context.Context, _, initiator *models.Entity) error {
				if m, ok := models.ComponentOf[*components.Moveable](initiator, models.KindMoveable); ok {
					return m.BlockMovement(ctx, w.Settings().MovementDuration*2)
				}
				return nil
			}))
		return err
	case "Z":
		_, err := w.Spawn(models.EntitySpec{Name: "pizza", Layer: models.LayerItem, Position: p},
			world.WithCollider(true),
			world.WithPersistence(),
			world.WithComponent(&Sprite{Sheet: "objects", State: "pizza"}),
			pickup)
		return err
	case "E":
		_, err := w.Spawn(models.EntitySpec{Name: "exit", Position: p},
			world.WithCollider(false),
			world.WithInteractable(),
			world.WithPortal(components.PortalSpec{Name: "exit", Target: OtherScene + "/start", EnterDirection: models.Position{X: -1}}))
		return err
	default:
		return fmt.Errorf("unknown tile %q at %s", cell, p)
	}
}

func onInteraction(fn func(ctx context.Context, e, initiator *models.Entity) error) world.Attach {
	return func(env *components.Env, e *models.Entity) error {
		i, ok := models.ComponentOf[*components.Interactable](e, models.KindInteractable)
		if !ok {
			return fmt.Errorf("%s has no interactable", e.Name())
		}
		i.OnInteraction(func(ctx context.Context, initiator *models.Entity) error {
			return fn(ctx, e, initiator)
		})
		return nil
	}
}

// pickup disables the entity once the player steps on it.
func pickup(env *components.Env, e *models.Entity) error {
	bus.On(e.Bus(), events.Trigger, func(_ context.Context, other *models.Entity) error {
		if other.Name() == components.PlayerName {
			e.SetDisabled(true)
		}
		return nil
	})
	return nil
}
