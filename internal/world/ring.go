package world

import "github.com/CodeConiglietto/diggdrasil-sub000/internal/domain"

// RingSize is the side of the resident chunk window.
const RingSize = 3

// BufferSize is the side of the window in tiles.
const BufferSize = RingSize * domain.ChunkSize

// ChunkRing is the fixed 3x3 window of resident chunks. All offset
// arithmetic between global, chunk and buffer coordinates lives here.
type ChunkRing struct {
	slots  [RingSize][RingSize]*domain.Chunk // [y][x]
	offset domain.Position
}

// NewChunkRing returns an empty ring whose top-left chunk is offset.
func NewChunkRing(offset domain.Position) *ChunkRing {
	return &ChunkRing{offset: offset}
}

// Offset is the chunk coordinate of the top-left slot.
func (r *ChunkRing) Offset() domain.Position {
	return r.offset
}

// SlotOf returns the slot holding chunk coordinate chunk, if it is inside the window.
func (r *ChunkRing) SlotOf(chunk domain.Position) (domain.UPosition, bool) {
	return slotIn(r.offset, chunk)
}

func slotIn(offset, chunk domain.Position) (domain.UPosition, bool) {
	d := chunk.Sub(offset)
	if d.X < 0 || d.Y < 0 || d.X >= RingSize || d.Y >= RingSize {
		return domain.UPosition{}, false
	}
	return domain.UPos(uint(d.X), uint(d.Y)), true
}

// Contains reports whether the chunk coordinate is inside the window.
func (r *ChunkRing) Contains(chunk domain.Position) bool {
	_, ok := r.SlotOf(chunk)
	return ok
}

// Slot returns the chunk in a slot. slot must be inside the ring.
func (r *ChunkRing) Slot(slot domain.UPosition) *domain.Chunk {
	return r.slots[slot.Y][slot.X]
}

// ChunkAt returns the resident chunk with the given coordinate, or nil.
func (r *ChunkRing) ChunkAt(chunk domain.Position) *domain.Chunk {
	slot, ok := r.SlotOf(chunk)
	if !ok {
		return nil
	}
	return r.Slot(slot)
}

// Locate translates a global tile position into its resident chunk and
// chunk-local coordinate.
func (r *ChunkRing) Locate(global domain.Position) (*domain.Chunk, domain.UPosition, bool) {
	chunk, local := domain.GlobalToLocal(global, domain.ChunkSize)
	c := r.ChunkAt(chunk)
	if c == nil {
		return nil, domain.UPosition{}, false
	}
	return c, local, true
}

// ToBufferLocal converts a global tile position into window tile coordinates.
func (r *ChunkRing) ToBufferLocal(global domain.Position) (domain.UPosition, bool) {
	u, err := global.Sub(r.offset.Mul(domain.ChunkSize)).ToUnsigned()
	if err != nil || u.X >= BufferSize || u.Y >= BufferSize {
		return domain.UPosition{}, false
	}
	return u, true
}

// FromBufferLocal is the inverse of ToBufferLocal.
func (r *ChunkRing) FromBufferLocal(u domain.UPosition) domain.Position {
	return u.MustSigned().Add(r.offset.Mul(domain.ChunkSize))
}

// Bounds returns the global tile rectangle of the window, max exclusive.
func (r *ChunkRing) Bounds() (lo, hi domain.Position) {
	lo = r.offset.Mul(domain.ChunkSize)
	return lo, lo.Add(domain.Pos(BufferSize, BufferSize))
}

// Each visits slots in row-major order.
func (r *ChunkRing) Each(fn func(slot domain.UPosition, c *domain.Chunk)) {
	for y := 0; y < RingSize; y++ {
		for x := 0; x < RingSize; x++ {
			fn(domain.UPos(uint(x), uint(y)), r.slots[y][x])
		}
	}
}

func (r *ChunkRing) install(slots [RingSize][RingSize]*domain.Chunk, offset domain.Position) {
	r.slots = slots
	r.offset = offset
}

// windowOffset is the ring offset that centres the window on the chunk of p.
func windowOffset(p domain.Position) domain.Position {
	chunk, _ := domain.GlobalToLocal(p, domain.ChunkSize)
	return chunk.Sub(domain.Pos(RingSize/2, RingSize/2))
}
