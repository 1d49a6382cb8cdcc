package dungeon

import (
	"math/rand"

	"github.com/CodeConiglietto/diggdrasil-sub000/internal/domain"
	"github.com/CodeConiglietto/diggdrasil-sub000/pkg/logger"
	"github.com/CodeConiglietto/diggdrasil-sub000/pkg/utils"
	"github.com/sirupsen/logrus"
)

// Rect - Вспомогательная структура для комнаты (координаты внутри чанка)
type Rect struct {
	X, Y, W, H int
}

func (r Rect) Center() (int, int) {
	return r.X + r.W/2, r.Y + r.H/2
}

func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.W && r.X+r.W >= other.X &&
		r.Y <= other.Y+other.H && r.Y+r.H >= other.Y
}

// Contains - точка внутри прямоугольника, включая стены.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// TerrainWeights - веса случайного выбора типа местности.
type TerrainWeights struct {
	Ground      int
	Wall        int
	Constructed int
}

var DefaultTerrain = TerrainWeights{Ground: 86, Wall: 12, Constructed: 2}

// ChunkBuilder предоставляет fluent API для наполнения чанка
type ChunkBuilder struct {
	chunk *domain.Chunk
	reg   *domain.Registry
	rng   *rand.Rand
	rooms []Rect
	log   *logrus.Entry
}

func NewChunk(coord domain.Position, reg *domain.Registry, rng *rand.Rand) *ChunkBuilder {
	return &ChunkBuilder{
		chunk: domain.NewChunk(coord),
		reg:   reg,
		rng:   rng,
		log:   logger.Log.WithFields(logrus.Fields{"component": "chunk_builder", "chunk": coord}),
	}
}

// WithTerrain заполняет каждую клетку случайным типом местности.
func (b *ChunkBuilder) WithTerrain(w TerrainWeights) *ChunkBuilder {
	weights := []int{w.Ground, w.Wall, w.Constructed}
	b.chunk.Each(func(_ domain.UPosition, t *domain.ChunkTile) {
		t.Tile.Seed = uint16(b.rng.Intn(1 << 16))
		switch utils.WeightedIndex(b.rng, weights) {
		case 1:
			t.Tile.Type = domain.Wall(b.material())
		case 2:
			t.Tile.Type = domain.Constructed(b.material(), domain.WallShape(b.rng.Intn(int(domain.ShapePalisade)+1)), domain.FeatureNone)
		default:
			t.Tile.Type = domain.Ground()
		}
	})
	return b
}

func (b *ChunkBuilder) material() domain.Material {
	return domain.Material(b.rng.Intn(int(domain.MaterialWood) + 1))
}

// WithRoom вырезает комнату: кирпичные стены по периметру, пол внутри и
// проём посередине нижней стены.
func (b *ChunkBuilder) WithRoom(room Rect) *ChunkBuilder {
	brick := domain.Constructed(domain.MaterialClay, domain.ShapeBrick, domain.FeatureNone)
	door := domain.Constructed(domain.MaterialClay, domain.ShapeBrick, domain.FeatureDoorway)
	cx, _ := room.Center()

	for y := room.Y; y < room.Y+room.H; y++ {
		for x := room.X; x < room.X+room.W; x++ {
			t := b.chunk.At(domain.UPos(uint(x), uint(y)))
			if t == nil {
				continue
			}
			edge := x == room.X || y == room.Y || x == room.X+room.W-1 || y == room.Y+room.H-1
			switch {
			case !edge:
				t.Tile.Type = domain.Ground()
			case x == cx && y == room.Y+room.H-1:
				t.Tile.Type = door
			default:
				t.Tile.Type = brick
			}
		}
	}
	b.rooms = append(b.rooms, room)
	return b
}

// Scatter раскладывает count сущностей из таблицы по свободной земле.
// Если за attempts попыток места не нашлось, сущность пропускается.
func (b *ChunkBuilder) Scatter(table []EntityTemplate, count, attempts int) *ChunkBuilder {
	for i := 0; i < count; i++ {
		local, ok := b.freeGround(attempts)
		if !ok {
			b.log.WithField("attempts", attempts).Debug("No free ground for scatter entity, skipping")
			continue
		}
		tmpl := Pick(b.rng, table)
		id := b.reg.Create(tmpl.Build(b.rng))
		b.chunk.Attach(b.reg, id, local)
	}
	return b
}

func (b *ChunkBuilder) freeGround(attempts int) (domain.UPosition, bool) {
	for a := 0; a < attempts; a++ {
		local := domain.UPos(uint(b.rng.Intn(domain.ChunkSize)), uint(b.rng.Intn(domain.ChunkSize)))
		if b.chunk.At(local).IsFreeGround() {
			return local, true
		}
	}
	return domain.UPosition{}, false
}

// Rooms - вырезанные комнаты.
func (b *ChunkBuilder) Rooms() []Rect {
	return b.rooms
}

// Build возвращает готовый чанк.
func (b *ChunkBuilder) Build() *domain.Chunk {
	return b.chunk
}
