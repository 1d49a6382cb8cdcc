package utils

import "math/rand"

// ChunkSeed смешивает сид мира с координатой чанка (splitmix64), чтобы
// один и тот же чанк всегда генерировался одинаково.
func ChunkSeed(worldSeed int64, x, y int) int64 {
	z := uint64(worldSeed)
	z ^= uint64(int64(x)) * 0x9E3779B97F4A7C15
	z ^= uint64(int64(y)) * 0xC2B2AE3D27D4EB4F
	z += 0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return int64(z ^ (z >> 31))
}

// RandRange returns a value in [lo, hi].
func RandRange(rng *rand.Rand, lo, hi int) int {
	return rng.Intn(hi-lo+1) + lo
}

// WeightedIndex picks an index with probability proportional to its weight.
// Zero weights are never picked; all weights zero yields -1.
func WeightedIndex(rng *rand.Rand, weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return -1
	}
	roll := rng.Intn(total)
	for i, w := range weights {
		if roll < w {
			return i
		}
		roll -= w
	}
	return len(weights) - 1
}
