package world

import (
	"testing"

	"github.com/CodeConiglietto/diggdrasil-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestChunkRing_SlotOf(t *testing.T) {
	r := NewChunkRing(domain.Pos(-2, 5))

	tests := []struct {
		name  string
		chunk domain.Position
		slot  domain.UPosition
		ok    bool
	}{
		{"top-left", domain.Pos(-2, 5), domain.UPos(0, 0), true},
		{"centre", domain.Pos(-1, 6), domain.UPos(1, 1), true},
		{"bottom-right", domain.Pos(0, 7), domain.UPos(2, 2), true},
		{"left of window", domain.Pos(-3, 6), domain.UPosition{}, false},
		{"below window", domain.Pos(-1, 8), domain.UPosition{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot, ok := r.SlotOf(tt.chunk)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.slot, slot)
			assert.Equal(t, tt.ok, r.Contains(tt.chunk))
		})
	}
}

func TestChunkRing_BufferLocal(t *testing.T) {
	r := NewChunkRing(domain.Pos(-1, -1))

	u, ok := r.ToBufferLocal(domain.Pos(-32, -32))
	assert.True(t, ok)
	assert.Equal(t, domain.UPos(0, 0), u)

	u, ok = r.ToBufferLocal(domain.Pos(0, 5))
	assert.True(t, ok)
	assert.Equal(t, domain.UPos(32, 37), u)
	assert.Equal(t, domain.Pos(0, 5), r.FromBufferLocal(u))

	_, ok = r.ToBufferLocal(domain.Pos(-33, 0))
	assert.False(t, ok)
	_, ok = r.ToBufferLocal(domain.Pos(64, 0))
	assert.False(t, ok)
}

func TestChunkRing_LocateEmptySlot(t *testing.T) {
	r := NewChunkRing(domain.Pos(0, 0))
	_, _, ok := r.Locate(domain.Pos(1, 1))
	assert.False(t, ok, "uninstalled slots are not loaded")

	var slots [RingSize][RingSize]*domain.Chunk
	for y := range slots {
		for x := range slots[y] {
			slots[y][x] = domain.NewChunk(domain.Pos(x, y))
		}
	}
	r.install(slots, domain.Pos(0, 0))

	c, local, ok := r.Locate(domain.Pos(40, 70))
	assert.True(t, ok)
	assert.Equal(t, domain.Pos(1, 2), c.Coord)
	assert.Equal(t, domain.UPos(8, 6), local)
}

func TestWindowOffset(t *testing.T) {
	assert.Equal(t, domain.Pos(-1, -1), windowOffset(domain.Pos(0, 0)))
	assert.Equal(t, domain.Pos(-1, -1), windowOffset(domain.Pos(31, 31)))
	assert.Equal(t, domain.Pos(-2, -1), windowOffset(domain.Pos(-1, 0)))
	assert.Equal(t, domain.Pos(3, -5), windowOffset(domain.Pos(130, -100)))
}
