package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlant(reg *Registry, name string) EntityID {
	return reg.Create(&Entity{Kind: KindPlant, Name: name, Vegetation: &VegetationComponent{Species: name}})
}

func TestChunk_AttachDetach(t *testing.T) {
	reg := NewRegistry()
	c := NewChunk(Pos(-1, 2))
	a := newPlant(reg, "oak")
	b := newPlant(reg, "fern")

	c.Attach(reg, a, UPos(3, 4))
	c.Attach(reg, b, UPos(3, 4))

	tile := c.At(UPos(3, 4))
	require.NotNil(t, tile)
	assert.Equal(t, []EntityID{a, b}, tile.Entities)
	assert.Equal(t, Pos(-32+3, 64+4), reg.Get(a).MustPos())
	assert.Equal(t, 2, c.EntityCount())

	c.Detach(reg, a)
	assert.Equal(t, []EntityID{b}, c.At(UPos(3, 4)).Entities)
	assert.Nil(t, reg.Get(a).Pos)
}

func TestChunk_AttachTwicePanics(t *testing.T) {
	reg := NewRegistry()
	c := NewChunk(Pos(0, 0))
	a := newPlant(reg, "oak")
	c.Attach(reg, a, UPos(0, 0))

	assert.Panics(t, func() { c.Attach(reg, a, UPos(1, 1)) })
}

func TestChunk_DetachDivergencePanics(t *testing.T) {
	reg := NewRegistry()
	c := NewChunk(Pos(0, 0))
	a := newPlant(reg, "oak")
	// Position component set without the tile list: the indexes disagree.
	reg.Get(a).Pos = &PositionComponent{Pos: Pos(2, 2)}

	assert.Panics(t, func() { c.Detach(reg, a) })
}

func TestChunk_ReverseIndexMatchesPositions(t *testing.T) {
	reg := NewRegistry()
	c := NewChunk(Pos(1, 1))
	for i := 0; i < 20; i++ {
		id := newPlant(reg, "grass")
		c.Attach(reg, id, UPos(uint(i%5), uint(i%7)))
	}

	rebuilt := map[Position][]EntityID{}
	reg.Each(func(e *Entity) {
		rebuilt[e.MustPos()] = append(rebuilt[e.MustPos()], e.ID)
	})
	c.Each(func(local UPosition, tile *ChunkTile) {
		if len(tile.Entities) == 0 {
			return
		}
		assert.ElementsMatch(t, rebuilt[c.Global(local)], tile.Entities)
	})
}

func TestChunk_Unload(t *testing.T) {
	reg := NewRegistry()
	c := NewChunk(Pos(0, 0))
	for i := 0; i < 5; i++ {
		c.Attach(reg, newPlant(reg, "reed"), UPos(uint(i), 0))
	}

	assert.Equal(t, 5, c.Unload(reg))
	assert.Zero(t, c.EntityCount())
	assert.Zero(t, reg.Len())
}

func TestChunk_RecordTerrain(t *testing.T) {
	c := NewChunk(Pos(4, -4))
	c.At(UPos(1, 1)).Tile = Tile{Seed: 77, Type: Wall(MaterialClay), Variant: ConnectN | ConnectE}

	rec := NewChunkRecord(c, nil)
	back, err := rec.Terrain()
	require.NoError(t, err)
	assert.Equal(t, c.Tiles, back.Tiles)

	rec.Tiles = rec.Tiles[:10]
	_, err = rec.Terrain()
	assert.Error(t, err)
}
