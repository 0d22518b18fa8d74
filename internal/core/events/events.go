// Package events names the events exchanged on game and entity buses and
// the payloads they carry.
package events

import (
	"github.com/zeusync/tilecore/internal/core/models"
	"github.com/zeusync/tilecore/internal/core/systems/physics"
)

// Entity scope. Movement events carry the target models.Position.
const (
	AttemptMove        = "attempt-move"
	CannotMove         = "cannot-move"
	WillChangePosition = "will-change-position"
	WillMove           = "will-move"
	Moving             = "moving"
	DidChangePosition  = "did-change-position"
	DidMove            = "did-move"
)

// Entity scope. Collider events carry the other *models.Entity.
const (
	Collision   = "collision"
	Trigger     = "trigger"
	TriggerExit = "trigger-exit"
)

// Entity scope. will-/did-interact carry the position of the other party,
// interaction carries the initiating *models.Entity.
const (
	WillInteract = "will-interact"
	DidInteract  = "did-interact"
	Interaction  = "interaction"
)

// Game scope. Scene lifecycle events carry the scene id as a string.
const (
	ScenePreExit = "scene-pre-exit"
	SceneExit    = "scene-exit"
	SceneInit    = "scene-init"
	SceneReady   = "scene-ready"
)

// Game scope, no payload.
const (
	PreSaveGame   = "pre-save-game"
	SaveGame      = "save-game"
	TileMapUpdate = "tile-map-update"
)

// MovingState is the payload of a moving event, sent on every animation frame.
type MovingState struct {
	Current   physics.Vec2
	Next      models.Position
	Direction models.Position
	Facing    int
}
