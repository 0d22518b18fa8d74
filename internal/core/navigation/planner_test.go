package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zeusync/tilecore/internal/core/models"
	"github.com/zeusync/tilecore/internal/core/registry"
	"github.com/zeusync/tilecore/internal/core/systems/physics"
)

type blocker struct{}

func (blocker) Kind() models.ComponentKind { return models.KindCollider }
func (blocker) Walkable() bool             { return false }

type talker struct{}

func (talker) Kind() models.ComponentKind { return models.KindInteractable }

type scene struct {
	reg  *registry.Registry
	next models.EntityID
}

func (s *scene) add(layer models.Layer, p models.Position, comps ...models.Component) *models.Entity {
	s.next++
	e := models.NewEntity(s.next, models.EntitySpec{Layer: layer, Position: p})
	for _, c := range comps {
		e.RegisterComponent(c)
	}
	s.reg.Register(e)
	return e
}

func newScene(w, h int) *scene {
	s := &scene{reg: registry.New()}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			s.add(models.LayerGround, pos(x, y))
		}
	}
	return s
}

func TestSnapshot(t *testing.T) {
	s := newScene(3, 2)
	self := s.add(models.LayerCharacter, pos(0, 0), blocker{})
	s.add(models.LayerWall, pos(1, 0), blocker{})
	s.add(models.LayerCharacter, pos(2, 1), blocker{}, talker{})

	g := Snapshot(physics.NewQuery(s.reg), self.ID(), 4, 2, pos(2, 1))

	assert.True(t, g.Walkable(pos(0, 0)), "self does not block its own tile")
	assert.False(t, g.Walkable(pos(1, 0)))
	assert.True(t, g.Walkable(pos(2, 1)), "interactable destination is opened")
	assert.False(t, g.Walkable(pos(3, 0)), "no ground")

	g = Snapshot(physics.NewQuery(s.reg), self.ID(), 4, 2, pos(1, 0))
	assert.False(t, g.Walkable(pos(2, 1)))
}

func TestPlannerPathFor(t *testing.T) {
	s := newScene(4, 3)
	hero := s.add(models.LayerCharacter, pos(0, 1), blocker{})
	s.add(models.LayerWall, pos(1, 0), blocker{})
	s.add(models.LayerWall, pos(1, 1), blocker{})
	s.add(models.LayerCharacter, pos(3, 1), blocker{}, talker{})

	p := NewPlanner(physics.NewQuery(s.reg), 4, 3)
	path := p.PathFor(hero, pos(3, 1))

	assert.NotEmpty(t, path)
	assert.Equal(t, pos(3, 1), path[len(path)-1])
	assert.NotContains(t, path, pos(1, 1))

	p.Resize(1, 3)
	w, h := p.Bounds()
	assert.Equal(t, 1, w)
	assert.Equal(t, 3, h)
	assert.Empty(t, p.PathFor(hero, pos(3, 1)))
}
