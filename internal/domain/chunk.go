package domain

import (
	"fmt"
	"slices"
)

// ChunkSize is the side length of a chunk in tiles.
const ChunkSize = 32

const chunkArea = ChunkSize * ChunkSize

// ChunkTile is one grid cell: terrain plus the entities standing on it, in
// arrival order.
type ChunkTile struct {
	Tile     Tile       `json:"tile"`
	Entities []EntityID `json:"entities,omitempty"`
}

// Chunk is a ChunkSize x ChunkSize grid of tiles, indexed y*ChunkSize+x.
type Chunk struct {
	Coord Position
	Tiles [chunkArea]ChunkTile
}

func NewChunk(coord Position) *Chunk {
	return &Chunk{Coord: coord}
}

func chunkIndex(local UPosition) int {
	return int(local.Y)*ChunkSize + int(local.X)
}

// InChunk reports whether local addresses a tile of a chunk.
func InChunk(local UPosition) bool {
	return local.X < ChunkSize && local.Y < ChunkSize
}

// At returns the tile at local, or nil if local is outside the chunk.
func (c *Chunk) At(local UPosition) *ChunkTile {
	if !InChunk(local) {
		return nil
	}
	return &c.Tiles[chunkIndex(local)]
}

// Global converts a chunk-local position to world space.
func (c *Chunk) Global(local UPosition) Position {
	return LocalToGlobal(c.Coord, local, ChunkSize)
}

// Local converts a world position to chunk-local, failing if it lies in another chunk.
func (c *Chunk) Local(global Position) (UPosition, bool) {
	chunk, local := GlobalToLocal(global, ChunkSize)
	return local, chunk == c.Coord
}

// Each visits every tile in row-major order.
func (c *Chunk) Each(fn func(local UPosition, t *ChunkTile)) {
	for i := range c.Tiles {
		fn(UPosition{X: uint(i % ChunkSize), Y: uint(i / ChunkSize)}, &c.Tiles[i])
	}
}

// Attach places the entity on a tile of this chunk and sets its position
// component in the same step. An entity that already has a position is a
// caller bug.
func (c *Chunk) Attach(reg *Registry, id EntityID, local UPosition) {
	e := reg.MustGet(id)
	if e.Pos != nil {
		panic(fmt.Sprintf("entity %v already positioned at %v", id, e.Pos.Pos))
	}
	t := c.At(local)
	if t == nil {
		panic(fmt.Sprintf("attach of %v outside chunk %v at %v", id, c.Coord, local))
	}
	t.Entities = append(t.Entities, id)
	e.Pos = &PositionComponent{Pos: c.Global(local)}
}

// Detach removes the entity from its tile in this chunk and clears its
// position component. The two indexes disagreeing is a consistency bug.
func (c *Chunk) Detach(reg *Registry, id EntityID) {
	e := reg.MustGet(id)
	pos := e.MustPos()
	local, ok := c.Local(pos)
	if !ok {
		panic(fmt.Sprintf("entity %v at %v is not in chunk %v", id, pos, c.Coord))
	}
	t := c.At(local)
	i := slices.Index(t.Entities, id)
	if i < 0 {
		panic(fmt.Sprintf("entity %v missing from tile list at %v", id, pos))
	}
	t.Entities = slices.Delete(t.Entities, i, i+1)
	e.Pos = nil
}

// DetachAll empties every tile list and clears the position components of
// the detached entities. The ids are returned in row-major, arrival order.
func (c *Chunk) DetachAll(reg *Registry) []EntityID {
	var ids []EntityID
	for i := range c.Tiles {
		t := &c.Tiles[i]
		for _, id := range t.Entities {
			if e := reg.Get(id); e != nil {
				e.Pos = nil
			}
			ids = append(ids, id)
		}
		t.Entities = nil
	}
	return ids
}

// Unload detaches and deletes every entity held by the chunk.
func (c *Chunk) Unload(reg *Registry) int {
	ids := c.DetachAll(reg)
	for _, id := range ids {
		reg.Delete(id)
	}
	return len(ids)
}

// Entities lists resident entities in row-major, arrival order.
func (c *Chunk) Entities() []EntityID {
	var ids []EntityID
	for i := range c.Tiles {
		ids = append(ids, c.Tiles[i].Entities...)
	}
	return ids
}

// EntityCount returns the number of resident entities.
func (c *Chunk) EntityCount() int {
	n := 0
	for i := range c.Tiles {
		n += len(c.Tiles[i].Entities)
	}
	return n
}

// IsFreeGround is true for ground tiles nobody stands on.
func (t *ChunkTile) IsFreeGround() bool {
	return t.Tile.Type.Kind == TileGround && len(t.Entities) == 0
}
