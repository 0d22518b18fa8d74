package scene

import (
	"encoding/gob"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type savedDoor struct {
	Open bool
}

func init() {
	gob.Register(savedDoor{})
}

func TestNamespaces(t *testing.T) {
	root := NewStore()
	forest := root.Namespace("forest")
	cave := root.Namespace("cave")

	forest.Set("door", savedDoor{Open: true})
	cave.Set("door", savedDoor{})

	v, ok := root.Get("forest.door")
	require.True(t, ok)
	assert.Equal(t, savedDoor{Open: true}, v)
	assert.Equal(t, []string{"door"}, forest.Keys())
	assert.Equal(t, 2, root.Len())

	forest.Clear()
	assert.Zero(t, forest.Len())
	assert.Equal(t, 1, cave.Len())

	cave.Set("door", nil)
	assert.Zero(t, root.Len())
}

func TestNestedNamespace(t *testing.T) {
	root := NewStore()
	root.Namespace("forest").Namespace("player").Set("x", 3)
	v, ok := root.Get("forest.player.x")
	require.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestBinarySnapshotOfView(t *testing.T) {
	root := NewStore()
	root.Namespace("forest").Set("door", savedDoor{Open: true})
	root.Namespace("cave").Set("bats", 3)

	data, err := root.Namespace("forest").MarshalBinary()
	require.NoError(t, err)

	other := NewStore()
	require.NoError(t, other.Namespace("forest").UnmarshalBinary(data))
	assert.Equal(t, []string{"forest.door"}, other.Keys())

	v, _ := other.Get("forest.door")
	assert.Equal(t, savedDoor{Open: true}, v)
}
