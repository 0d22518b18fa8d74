package models

import "fmt"

// Layer tags an entity for collision and sight rules and for render ordering.
type Layer uint8

const (
	LayerNone Layer = iota
	LayerGround
	LayerGroundDecal
	LayerWall
	LayerVisibleWall
	LayerWater
	LayerObstacle
	LayerCharacter
	LayerItem
	LayerFX
)

var layerNames = [...]string{
	LayerNone:        "",
	LayerGround:      "ground",
	LayerGroundDecal: "ground-decal",
	LayerWall:        "wall",
	LayerVisibleWall: "visible-wall",
	LayerWater:       "water",
	LayerObstacle:    "obstacle",
	LayerCharacter:   "character",
	LayerItem:        "item",
	LayerFX:          "fx",
}

func (l Layer) String() string {
	if int(l) < len(layerNames) {
		return layerNames[l]
	}
	return fmt.Sprintf("layer(%d)", uint8(l))
}

// ParseLayer is the inverse of Layer.String.
func ParseLayer(s string) (Layer, error) {
	for i, name := range layerNames {
		if name == s {
			return Layer(i), nil
		}
	}
	return LayerNone, fmt.Errorf("%w: %q", ErrUnknownLayer, s)
}

func (l Layer) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

func (l *Layer) UnmarshalText(b []byte) error {
	v, err := ParseLayer(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}
