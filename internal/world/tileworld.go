package world

import (
	"errors"
	"fmt"

	"github.com/CodeConiglietto/diggdrasil-sub000/internal/domain"
	"github.com/CodeConiglietto/diggdrasil-sub000/internal/infrastructure/storage"
	"github.com/CodeConiglietto/diggdrasil-sub000/internal/systems"
	"github.com/CodeConiglietto/diggdrasil-sub000/pkg/logger"
	"github.com/sirupsen/logrus"
)

// ErrNotLoaded is returned for edits addressed outside the resident window.
var ErrNotLoaded = errors.New("position not loaded")

// ChunkGenerator fills a fresh chunk. Scatter entities are created in reg
// and attached to the returned chunk.
type ChunkGenerator interface {
	Generate(coord domain.Position, reg *domain.Registry) *domain.Chunk
}

// TileWorldContext bundles the collaborators the world reads and writes.
type TileWorldContext struct {
	Registry  *domain.Registry
	Store     storage.Store
	Allocator *storage.StableIDAllocator
	Generator ChunkGenerator
}

// TileWorld presents global tile coordinates over the 3x3 resident window.
// It is not safe for concurrent use.
type TileWorld struct {
	ctx   TileWorldContext
	ring  *ChunkRing
	astar *systems.AStar
	log   *logrus.Entry
}

// New centres the window on center, loading persisted chunks where they
// exist and generating the rest.
func New(ctx TileWorldContext, center domain.Position) (*TileWorld, error) {
	w := &TileWorld{
		ctx:   ctx,
		ring:  NewChunkRing(windowOffset(center)),
		astar: systems.NewAStar(BufferSize, BufferSize),
		log:   logger.Log.WithField("component", "tile_world"),
	}

	var slots [RingSize][RingSize]*domain.Chunk
	var loaded []*domain.Chunk
	offset := w.ring.Offset()
	for y := 0; y < RingSize; y++ {
		for x := 0; x < RingSize; x++ {
			coord := offset.Add(domain.Pos(x, y))
			c, ok, err := w.loadChunk(coord)
			if err != nil {
				w.discard(loaded)
				return nil, fmt.Errorf("load chunk %v: %w", coord, err)
			}
			if !ok {
				c = ctx.Generator.Generate(coord, ctx.Registry)
			}
			loaded = append(loaded, c)
			slots[y][x] = c
		}
	}
	w.ring.install(slots, offset)
	w.RefreshAllVariants()

	w.log.WithFields(logrus.Fields{
		"offset":   offset,
		"entities": w.EntityCount(),
	}).Info("Tile world ready")
	return w, nil
}

// Ring exposes the window for read-only inspection.
func (w *TileWorld) Ring() *ChunkRing { return w.ring }

func (w *TileWorld) Offset() domain.Position { return w.ring.Offset() }

func (w *TileWorld) Bounds() (lo, hi domain.Position) { return w.ring.Bounds() }

// Get returns the tile at p, or false when p is outside the window.
func (w *TileWorld) Get(p domain.Position) (*domain.ChunkTile, bool) {
	c, local, ok := w.ring.Locate(p)
	if !ok {
		return nil, false
	}
	return c.At(local), true
}

func (w *TileWorld) Tile(p domain.Position) (domain.Tile, bool) {
	t, ok := w.Get(p)
	if !ok {
		return domain.Tile{}, false
	}
	return t.Tile, true
}

// Collides treats unloaded positions as solid.
func (w *TileWorld) Collides(p domain.Position) bool {
	t, ok := w.Get(p)
	return !ok || t.Tile.Type.Collides()
}

// Opaque treats unloaded positions as opaque.
func (w *TileWorld) Opaque(p domain.Position) bool {
	t, ok := w.Get(p)
	return !ok || t.Tile.Type.Opaque()
}

// EntitiesAt returns the entities on p in arrival order. The slice belongs
// to the tile and must not be modified.
func (w *TileWorld) EntitiesAt(p domain.Position) []domain.EntityID {
	t, ok := w.Get(p)
	if !ok {
		return nil
	}
	return t.Entities
}

// SetTileType edits terrain and refreshes the affected variants.
func (w *TileWorld) SetTileType(p domain.Position, tt domain.TileType) error {
	t, ok := w.Get(p)
	if !ok {
		return fmt.Errorf("set tile %v: %w", p, ErrNotLoaded)
	}
	t.Tile.Type = tt
	w.RefreshTileAndAdjacentVariants(p)
	return nil
}

// RefreshTileVariant recomputes the rendering variant of one tile.
func (w *TileWorld) RefreshTileVariant(p domain.Position) {
	t, ok := w.Get(p)
	if !ok {
		return
	}
	var neighbours [4]domain.TileType
	var present [4]bool
	for i, d := range domain.Neighbours4 {
		if n, ok := w.Get(p.Add(d)); ok {
			neighbours[i] = n.Tile.Type
			present[i] = true
		}
	}
	t.Tile.Variant = domain.ComputeVariant(t.Tile.Type, neighbours, present)
}

// RefreshTileAndAdjacentVariants refreshes p and its 4-neighbourhood.
func (w *TileWorld) RefreshTileAndAdjacentVariants(p domain.Position) {
	w.RefreshTileVariant(p)
	for _, d := range domain.Neighbours4 {
		w.RefreshTileVariant(p.Add(d))
	}
}

// RefreshAllVariants recomputes every tile of the window.
func (w *TileWorld) RefreshAllVariants() {
	lo, hi := w.Bounds()
	for y := lo.Y; y < hi.Y; y++ {
		for x := lo.X; x < hi.X; x++ {
			w.RefreshTileVariant(domain.Pos(x, y))
		}
	}
}

// SpawnEntity creates e and places it on p. Nothing is created when p is
// outside the window.
func (w *TileWorld) SpawnEntity(e *domain.Entity, p domain.Position) (domain.EntityID, error) {
	c, local, ok := w.ring.Locate(p)
	if !ok {
		return domain.NilEntityID, fmt.Errorf("spawn %s at %v: %w", e.Name, p, ErrNotLoaded)
	}
	id := w.ctx.Registry.Create(e)
	c.Attach(w.ctx.Registry, id, local)
	return id, nil
}

// PlaceEntity attaches an existing, unpositioned entity to p.
func (w *TileWorld) PlaceEntity(id domain.EntityID, p domain.Position) error {
	c, local, ok := w.ring.Locate(p)
	if !ok {
		return fmt.Errorf("place %v at %v: %w", id, p, ErrNotLoaded)
	}
	c.Attach(w.ctx.Registry, id, local)
	return nil
}

// DespawnEntity removes the entity from its tile; it stays in the registry
// without a position. Positioned entities always lie inside the window.
func (w *TileWorld) DespawnEntity(id domain.EntityID) {
	e := w.ctx.Registry.MustGet(id)
	pos := e.MustPos()
	c, _, ok := w.ring.Locate(pos)
	if !ok {
		panic(fmt.Sprintf("entity %v positioned outside the window at %v", id, pos))
	}
	c.Detach(w.ctx.Registry, id)
}

// MoveEntity relocates the entity to p, possibly across chunks.
func (w *TileWorld) MoveEntity(id domain.EntityID, p domain.Position) error {
	c, local, ok := w.ring.Locate(p)
	if !ok {
		return fmt.Errorf("move %v to %v: %w", id, p, ErrNotLoaded)
	}
	w.DespawnEntity(id)
	c.Attach(w.ctx.Registry, id, local)
	return nil
}

// DestroyEntity despawns and deletes the entity, dropping its persisted
// record if it ever had one.
func (w *TileWorld) DestroyEntity(id domain.EntityID) error {
	e := w.ctx.Registry.Get(id)
	if e == nil {
		return nil
	}
	if e.Pos != nil {
		w.DespawnEntity(id)
	}
	save := e.Save
	w.ctx.Registry.Delete(id)
	if save != nil {
		if err := w.ctx.Store.DeleteEntity(save.ID); err != nil {
			return fmt.Errorf("destroy %v: %w", id, err)
		}
	}
	return nil
}

// Pathfind returns the forward path from start to end, start excluded.
// Both ends must lie inside the window. Colliding tiles and tiles holding a
// static obstacle are impassable; creatures are not, they move on their own.
func (w *TileWorld) Pathfind(start, end domain.Position) ([]domain.Position, bool) {
	from, ok := w.ring.ToBufferLocal(start)
	if !ok {
		return nil, false
	}
	to, ok := w.ring.ToBufferLocal(end)
	if !ok {
		return nil, false
	}
	path, _, ok := w.astar.Simple(from, to, func(a, b domain.UPosition) (int, bool) {
		if p := w.ring.FromBufferLocal(b); w.Collides(p) || systems.HasObstacle(w, w.ctx.Registry, p) {
			return 0, false
		}
		return systems.GridStepCost(a, b), true
	})
	if !ok {
		w.log.WithFields(logrus.Fields{"start": start, "end": end}).Trace("No path")
		return nil, false
	}
	out := make([]domain.Position, 0, len(path)-1)
	for _, u := range path[1:] {
		out = append(out, w.ring.FromBufferLocal(u))
	}
	return out, true
}

// EntityCount is the number of entities placed in the window.
func (w *TileWorld) EntityCount() int {
	n := 0
	w.ring.Each(func(_ domain.UPosition, c *domain.Chunk) {
		n += c.EntityCount()
	})
	return n
}

// PersistAll writes every resident chunk without evicting anything.
func (w *TileWorld) PersistAll() error {
	var errs []error
	w.ring.Each(func(_ domain.UPosition, c *domain.Chunk) {
		if err := w.persistChunk(c); err != nil {
			errs = append(errs, fmt.Errorf("persist chunk %v: %w", c.Coord, err))
		}
	})
	return errors.Join(errs...)
}

// persistChunk writes the entity records first and the chunk record last,
// so a stored chunk never references a missing entity.
func (w *TileWorld) persistChunk(c *domain.Chunk) error {
	alloc := w.ctx.Allocator
	if err := alloc.Begin(); err != nil {
		return err
	}
	ids := c.Entities()
	stable := make([]domain.StableID, 0, len(ids))
	recs := make([]*domain.EntityRecord, 0, len(ids))
	for _, id := range ids {
		e := w.ctx.Registry.MustGet(id)
		var existing domain.StableID
		if e.Save != nil {
			existing = e.Save.ID
		}
		sid := alloc.Claim(existing)
		e.Save = &domain.SaveMarker{ID: sid}
		stable = append(stable, sid)
		recs = append(recs, domain.NewEntityRecord(e))
	}

	if err := w.ctx.Store.SaveEntities(recs); err != nil {
		alloc.Abort()
		return err
	}
	if err := w.ctx.Store.SaveChunk(domain.NewChunkRecord(c, stable)); err != nil {
		alloc.Abort()
		return err
	}
	for _, sid := range stable {
		alloc.Release(sid)
	}
	return alloc.End()
}

// loadChunk rebuilds a persisted chunk and its entities. It reports false
// when the chunk was never persisted. Entity records that are gone (the
// entity was destroyed after the chunk was last written) are skipped.
// On error nothing is left in the registry.
func (w *TileWorld) loadChunk(coord domain.Position) (*domain.Chunk, bool, error) {
	stored, err := w.ctx.Store.HasChunk(coord)
	if err != nil {
		return nil, false, err
	}
	if !stored {
		return nil, false, nil
	}
	rec, err := w.ctx.Store.LoadChunk(coord)
	if err != nil {
		return nil, false, err
	}
	c, err := rec.Terrain()
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", storage.ErrCorrupt, err)
	}

	alloc := w.ctx.Allocator
	if err := alloc.Begin(); err != nil {
		return nil, false, err
	}
	fail := func(err error) (*domain.Chunk, bool, error) {
		c.Unload(w.ctx.Registry)
		alloc.Abort()
		return nil, false, err
	}
	for _, sid := range rec.Entities {
		alloc.Mark(sid)
		er, err := w.ctx.Store.LoadEntity(sid)
		if errors.Is(err, storage.ErrNotFound) {
			w.log.WithFields(logrus.Fields{"chunk": coord, "stable_id": sid}).Warn("Entity record missing, skipped")
			alloc.Release(sid)
			continue
		}
		if err != nil {
			return fail(fmt.Errorf("entity %v: %w", sid, err))
		}
		local, ok := c.Local(er.Pos)
		if !ok {
			return fail(fmt.Errorf("%w: entity %v at %v outside chunk %v", storage.ErrCorrupt, sid, er.Pos, coord))
		}
		id := w.ctx.Registry.Create(er.Materialize())
		c.Attach(w.ctx.Registry, id, local)
		alloc.Release(sid)
	}
	if err := alloc.End(); err != nil {
		c.Unload(w.ctx.Registry)
		return nil, false, err
	}
	return c, true, nil
}

// discard unloads chunks that were never installed.
func (w *TileWorld) discard(chunks []*domain.Chunk) {
	for _, c := range chunks {
		c.Unload(w.ctx.Registry)
	}
}
