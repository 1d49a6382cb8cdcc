package domain

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/zyedidia/generic/mapset"
)

// ChunkRecord is the persisted form of a chunk. Entity lists are replaced by
// the stable ids of the residents; their tile comes from EntityRecord.Pos.
type ChunkRecord struct {
	Coord    Position   `msgpack:"c"`
	Tiles    []Tile     `msgpack:"t"`
	Entities []StableID `msgpack:"e"`
}

// NewChunkRecord snapshots the terrain of c. ids must be the stable ids of
// c.Entities() in the same order.
func NewChunkRecord(c *Chunk, ids []StableID) *ChunkRecord {
	rec := &ChunkRecord{
		Coord:    c.Coord,
		Tiles:    make([]Tile, chunkArea),
		Entities: ids,
	}
	for i := range c.Tiles {
		rec.Tiles[i] = c.Tiles[i].Tile
	}
	return rec
}

// Terrain rebuilds an empty chunk (no entities) from the record.
func (r *ChunkRecord) Terrain() (*Chunk, error) {
	if len(r.Tiles) != chunkArea {
		return nil, fmt.Errorf("chunk %v: expected %d tiles, got %d", r.Coord, chunkArea, len(r.Tiles))
	}
	c := NewChunk(r.Coord)
	for i := range r.Tiles {
		c.Tiles[i].Tile = r.Tiles[i]
	}
	return c, nil
}

// EntityRecord is the persisted component set of one entity. Only the
// stable id identifies it; transient handles never appear here.
type EntityRecord struct {
	ID   StableID   `msgpack:"id"`
	Kind EntityKind `msgpack:"k"`
	Name string     `msgpack:"n"`
	Pos  Position   `msgpack:"p"`

	Render     *RenderComponent     `msgpack:"r,omitempty"`
	Vegetation *VegetationComponent `msgpack:"veg,omitempty"`
	Item       *ItemComponent       `msgpack:"it,omitempty"`
	AI         *AIComponent         `msgpack:"ai,omitempty"`
	VisionR    int                  `msgpack:"vr,omitempty"`
	// Explored - память тумана войны, отсортирована по строкам.
	Explored []Position `msgpack:"ex,omitempty"`
}

// NewEntityRecord captures e. The entity must carry a save marker and a position.
func NewEntityRecord(e *Entity) *EntityRecord {
	if e.Save == nil {
		panic(fmt.Sprintf("entity %v persisted without a save marker", e.ID))
	}
	rec := &EntityRecord{
		ID:         e.Save.ID,
		Kind:       e.Kind,
		Name:       e.Name,
		Pos:        e.MustPos(),
		Render:     e.Render,
		Vegetation: e.Vegetation,
		Item:       e.Item,
		AI:         e.AI,
	}
	if e.Vision != nil {
		rec.VisionR = e.Vision.Radius
	}
	if e.Memory != nil && e.Memory.Explored.Size() > 0 {
		rec.Explored = make([]Position, 0, e.Memory.Explored.Size())
		e.Memory.Explored.Each(func(p Position) {
			rec.Explored = append(rec.Explored, p)
		})
		slices.SortFunc(rec.Explored, func(a, b Position) int {
			return cmp.Or(cmp.Compare(a.Y, b.Y), cmp.Compare(a.X, b.X))
		})
	}
	return rec
}

// Materialize builds an unpositioned entity from the record; placing it is
// up to the caller (Chunk.Attach).
func (r *EntityRecord) Materialize() *Entity {
	e := &Entity{
		Kind:       r.Kind,
		Name:       r.Name,
		Render:     r.Render,
		Vegetation: r.Vegetation,
		Item:       r.Item,
		AI:         r.AI,
		Save:       &SaveMarker{ID: r.ID},
	}
	if r.VisionR > 0 {
		e.Vision = &VisionComponent{Radius: r.VisionR, IsDirty: true}
	}
	if len(r.Explored) > 0 {
		e.Memory = &MemoryComponent{Explored: mapset.Of(r.Explored...)}
	}
	return e
}
