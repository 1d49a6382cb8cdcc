package storage

import (
	"testing"

	"github.com/CodeConiglietto/diggdrasil-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStableIDAllocator_ClaimAndReuse(t *testing.T) {
	a := NewStableIDAllocator(0)
	require.NoError(t, a.Begin())

	first := a.Claim(0)
	second := a.Claim(0)
	kept := a.Claim(first)
	assert.Equal(t, domain.StableID(1), first)
	assert.Equal(t, domain.StableID(2), second)
	assert.Equal(t, first, kept, "re-persisting reuses the existing id")
	assert.Equal(t, 2, a.Outstanding())

	a.Release(first)
	a.Release(second)
	require.NoError(t, a.End())
	assert.Equal(t, domain.StableID(3), a.Next())
}

func TestStableIDAllocator_StrayMarkers(t *testing.T) {
	a := NewStableIDAllocator(10)
	require.NoError(t, a.Begin())
	a.Claim(0)

	assert.ErrorIs(t, a.End(), ErrStrayMarkers)
	assert.Zero(t, a.Outstanding())
	require.NoError(t, a.Begin(), "allocator is usable after reporting strays")
	require.NoError(t, a.End())
}

func TestStableIDAllocator_Observe(t *testing.T) {
	a := NewStableIDAllocator(5)
	a.Observe(3)
	assert.Equal(t, domain.StableID(5), a.Next())
	a.Observe(40)
	assert.Equal(t, domain.StableID(41), a.Next())

	require.NoError(t, a.Begin())
	a.Mark(100)
	assert.Equal(t, domain.StableID(101), a.Next())
	a.Release(100)
	require.NoError(t, a.End())
}

func TestStableIDAllocator_Misuse(t *testing.T) {
	a := NewStableIDAllocator(1)
	assert.Panics(t, func() { a.Claim(0) })

	require.NoError(t, a.Begin())
	assert.Error(t, a.Begin())
	a.Abort()
	assert.NoError(t, a.Begin())
}
