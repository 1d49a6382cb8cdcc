package dungeon

import (
	"math/rand"

	"github.com/CodeConiglietto/diggdrasil-sub000/internal/domain"
	"github.com/CodeConiglietto/diggdrasil-sub000/pkg/utils"
)

// Константы генерации
const (
	DefaultScatterCount    = 12
	DefaultScatterAttempts = 16
)

// PlaceholderRoom - комната, вырезаемая в каждом чанке. Форма не важна,
// это заготовка под будущие постройки.
var PlaceholderRoom = Rect{X: 4, Y: 4, W: 9, H: 7}

// Generator наполняет свежие чанки. Один и тот же (Seed, coord) всегда даёт
// тот же рельеф и тот же набор сущностей.
type Generator struct {
	Seed            int64
	Terrain         TerrainWeights
	ScatterCount    int
	ScatterAttempts int
}

func NewGenerator(seed int64) *Generator {
	return &Generator{
		Seed:            seed,
		Terrain:         DefaultTerrain,
		ScatterCount:    DefaultScatterCount,
		ScatterAttempts: DefaultScatterAttempts,
	}
}

// Generate создает чанк; разбросанные сущности уже прикреплены к клеткам.
func (g *Generator) Generate(coord domain.Position, reg *domain.Registry) *domain.Chunk {
	rng := rand.New(rand.NewSource(utils.ChunkSeed(g.Seed, coord.X, coord.Y)))

	return NewChunk(coord, reg, rng).
		WithTerrain(g.Terrain).
		WithRoom(PlaceholderRoom).
		Scatter(ScatterTable, g.ScatterCount, g.ScatterAttempts).
		Build()
}

// FindFreeGround ищет свободную землю кольцами вокруг near.
func FindFreeGround(c *domain.Chunk, near domain.UPosition) (domain.UPosition, bool) {
	for r := 0; r < domain.ChunkSize; r++ {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if max(abs(dx), abs(dy)) != r {
					continue
				}
				local, err := near.Offset(domain.Pos(dx, dy))
				if err != nil || !domain.InChunk(local) {
					continue
				}
				if c.At(local).IsFreeGround() {
					return local, true
				}
			}
		}
	}
	return domain.UPosition{}, false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
