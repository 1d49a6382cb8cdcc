package dungeon

import (
	"math/rand"
	"os"
	"testing"

	"github.com/CodeConiglietto/diggdrasil-sub000/internal/domain"
	"github.com/CodeConiglietto/diggdrasil-sub000/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func TestGenerate_Deterministic(t *testing.T) {
	g := NewGenerator(99)
	a := g.Generate(domain.Pos(3, -2), domain.NewRegistry())
	b := g.Generate(domain.Pos(3, -2), domain.NewRegistry())

	for i := range a.Tiles {
		require.Equal(t, a.Tiles[i].Tile, b.Tiles[i].Tile, "tile %d", i)
		require.Equal(t, len(a.Tiles[i].Entities), len(b.Tiles[i].Entities), "tile %d", i)
	}

	other := g.Generate(domain.Pos(4, -2), domain.NewRegistry())
	same := true
	for i := range a.Tiles {
		if a.Tiles[i].Tile != other.Tiles[i].Tile {
			same = false
			break
		}
	}
	assert.False(t, same, "neighbouring chunks differ")
}

func TestGenerate_ScatterOnFreeGround(t *testing.T) {
	reg := domain.NewRegistry()
	c := NewGenerator(1).Generate(domain.Pos(-1, 0), reg)

	assert.Equal(t, DefaultScatterCount, c.EntityCount())
	assert.Equal(t, DefaultScatterCount, reg.Len())
	c.Each(func(local domain.UPosition, tile *domain.ChunkTile) {
		if len(tile.Entities) == 0 {
			return
		}
		assert.Len(t, tile.Entities, 1, "one scatter entity per tile")
		assert.Equal(t, domain.TileGround, tile.Tile.Type.Kind)
		e := reg.MustGet(tile.Entities[0])
		assert.Equal(t, c.Global(local), e.MustPos())
		assert.NotEqual(t, domain.KindCreature, e.Kind)
	})
}

func TestGenerate_PlaceholderRoom(t *testing.T) {
	c := NewGenerator(5).Generate(domain.Pos(0, 0), domain.NewRegistry())
	r := PlaceholderRoom

	corner := c.At(domain.UPos(uint(r.X), uint(r.Y))).Tile.Type
	assert.Equal(t, domain.TileConstructedWall, corner.Kind)
	assert.True(t, corner.Collides())

	cx, _ := r.Center()
	door := c.At(domain.UPos(uint(cx), uint(r.Y+r.H-1))).Tile.Type
	assert.Equal(t, domain.FeatureDoorway, door.Feature)
	assert.False(t, door.Collides())

	inside := c.At(domain.UPos(uint(r.X+1), uint(r.Y+1))).Tile.Type
	assert.Equal(t, domain.TileGround, inside.Kind)
}

func TestChunkBuilder_ScatterSkipsWhenFull(t *testing.T) {
	reg := domain.NewRegistry()
	rng := rand.New(rand.NewSource(1))
	// Без земли разбросать нечего.
	c := NewChunk(domain.Pos(0, 0), reg, rng).
		WithTerrain(TerrainWeights{Wall: 1}).
		Scatter(ScatterTable, 5, 10).
		Build()

	assert.Zero(t, c.EntityCount())
	assert.Zero(t, reg.Len())
}

func TestFindFreeGround(t *testing.T) {
	reg := domain.NewRegistry()
	c := NewChunk(domain.Pos(0, 0), reg, rand.New(rand.NewSource(1))).
		WithTerrain(TerrainWeights{Wall: 1}).
		Build()

	_, ok := FindFreeGround(c, domain.UPos(3, 3))
	assert.False(t, ok)

	c.At(domain.UPos(6, 1)).Tile.Type = domain.Ground()
	local, ok := FindFreeGround(c, domain.UPos(3, 3))
	require.True(t, ok)
	assert.Equal(t, domain.UPos(6, 1), local)
}

func TestTemplate_Build(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	tree := Tree.Build(rng)
	require.NotNil(t, tree.Vegetation)
	assert.True(t, tree.Blocks())

	stone := Stone.Build(rng)
	require.NotNil(t, stone.Item)
	assert.GreaterOrEqual(t, stone.Item.Count, 1)
	assert.LessOrEqual(t, stone.Item.Count, Stone.MaxStack)

	mole := Mole.Build(rng)
	require.NotNil(t, mole.AI)
	require.NotNil(t, mole.Vision)
	require.NotNil(t, mole.Memory)
	assert.Equal(t, 4, mole.Vision.Radius)
	assert.Equal(t, domain.GoalWander, mole.AI.Goal.Kind)
}

// Тест вспомогательной функции пересечения комнат
func TestRect_Intersects(t *testing.T) {
	r1 := Rect{0, 0, 10, 10}
	r2 := Rect{5, 5, 10, 10} // Пересекается
	r3 := Rect{20, 20, 5, 5} // Не пересекается

	assert.True(t, r1.Intersects(r2))
	assert.False(t, r1.Intersects(r3))
	assert.True(t, r1.Contains(9, 0))
	assert.False(t, r1.Contains(10, 0))
}
