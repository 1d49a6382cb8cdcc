package utils

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkSeed(t *testing.T) {
	assert.Equal(t, ChunkSeed(1, 3, -4), ChunkSeed(1, 3, -4))
	assert.NotEqual(t, ChunkSeed(1, 3, -4), ChunkSeed(1, -4, 3))
	assert.NotEqual(t, ChunkSeed(1, 0, 0), ChunkSeed(2, 0, 0))
}

func TestRandRange(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		v := RandRange(rng, -2, 3)
		assert.GreaterOrEqual(t, v, -2)
		assert.LessOrEqual(t, v, 3)
	}
}

func TestWeightedIndex(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	assert.Equal(t, -1, WeightedIndex(rng, []int{0, 0}))
	assert.Equal(t, -1, WeightedIndex(rng, nil))

	counts := make([]int, 3)
	for i := 0; i < 1000; i++ {
		counts[WeightedIndex(rng, []int{0, 1, 3})]++
	}
	assert.Zero(t, counts[0])
	assert.Greater(t, counts[2], counts[1])
}
