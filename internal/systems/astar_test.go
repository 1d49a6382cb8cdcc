package systems

import (
	"iter"
	"math"
	"math/rand"
	"slices"
	"testing"

	"github.com/CodeConiglietto/diggdrasil-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type boolGrid struct {
	w, h     uint
	passable []bool
}

func parseGrid(rows []string) boolGrid {
	g := boolGrid{w: uint(len(rows[0])), h: uint(len(rows))}
	for _, row := range rows {
		for _, c := range row {
			g.passable = append(g.passable, c != '#')
		}
	}
	return g
}

func randomGrid(rng *rand.Rand, w, h uint, wallChance float64) boolGrid {
	g := boolGrid{w: w, h: h, passable: make([]bool, w*h)}
	for i := range g.passable {
		g.passable[i] = rng.Float64() >= wallChance
	}
	return g
}

func (g boolGrid) open(p domain.UPosition) bool {
	return p.X < g.w && p.Y < g.h && g.passable[p.Y*g.w+p.X]
}

func (g boolGrid) cost(from, to domain.UPosition) (int, bool) {
	if !g.open(to) {
		return 0, false
	}
	return GridStepCost(from, to), true
}

// dijkstra - эталонный поиск перебором.
func (g boolGrid) dijkstra(start, goal domain.UPosition) (int, bool) {
	n := int(g.w * g.h)
	dist := make([]int, n)
	done := make([]bool, n)
	for i := range dist {
		dist[i] = math.MaxInt
	}
	dist[start.Y*g.w+start.X] = 0
	for {
		best := -1
		for i := 0; i < n; i++ {
			if !done[i] && dist[i] != math.MaxInt && (best < 0 || dist[i] < dist[best]) {
				best = i
			}
		}
		if best < 0 {
			return 0, false
		}
		done[best] = true
		cur := domain.UPos(uint(best)%g.w, uint(best)/g.w)
		if cur == goal {
			return dist[best], true
		}
		for _, d := range domain.Neighbours8 {
			next, err := cur.Offset(d)
			if err != nil {
				continue
			}
			c, ok := g.cost(cur, next)
			if !ok {
				continue
			}
			j := int(next.Y*g.w + next.X)
			if dist[best]+c < dist[j] {
				dist[j] = dist[best] + c
			}
		}
	}
}

func assertValidPath(t *testing.T, g boolGrid, path []domain.UPosition, start, goal domain.UPosition, cost int) {
	t.Helper()
	require.NotEmpty(t, path)
	assert.Equal(t, start, path[0])
	assert.Equal(t, goal, path[len(path)-1])

	seen := map[domain.UPosition]bool{}
	sum := 0
	for i, p := range path {
		assert.True(t, g.open(p), "step %d at %v is not passable", i, p)
		assert.False(t, seen[p], "path revisits %v", p)
		seen[p] = true
		if i > 0 {
			assert.True(t, p.MustSigned().IsAdjacent(path[i-1].MustSigned()), "step %d is not adjacent", i)
			sum += GridStepCost(path[i-1], p)
		}
	}
	assert.Equal(t, cost, sum)
}

func TestAStar_MatchesDijkstra(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	astar := NewAStar(12, 9)

	for trial := 0; trial < 200; trial++ {
		g := randomGrid(rng, 12, 9, 0.3)
		start := domain.UPos(uint(rng.Intn(12)), uint(rng.Intn(9)))
		goal := domain.UPos(uint(rng.Intn(12)), uint(rng.Intn(9)))
		g.passable[start.Y*g.w+start.X] = true
		g.passable[goal.Y*g.w+goal.X] = true

		want, reachable := g.dijkstra(start, goal)
		path, cost, ok := astar.Simple(start, goal, g.cost)

		require.Equal(t, reachable, ok, "trial %d: %v -> %v", trial, start, goal)
		if !ok {
			assert.Nil(t, path)
			continue
		}
		assert.Equal(t, want, cost, "trial %d: %v -> %v", trial, start, goal)
		assertValidPath(t, g, path, start, goal, cost)
	}
}

func TestAStar_NoPath(t *testing.T) {
	g := parseGrid([]string{
		".....",
		".###.",
		".#.#.",
		".###.",
		".....",
	})
	astar := NewAStar(g.w, g.h)

	path, _, ok := astar.Simple(domain.UPos(0, 0), domain.UPos(2, 2), g.cost)
	assert.False(t, ok)
	assert.Nil(t, path)

	// Цель вне сетки.
	_, _, ok = astar.Simple(domain.UPos(0, 0), domain.UPos(7, 0), g.cost)
	assert.False(t, ok)
}

func TestAStar_Symmetry(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	astar := NewAStar(10, 10)

	for trial := 0; trial < 100; trial++ {
		g := randomGrid(rng, 10, 10, 0.25)
		a := domain.UPos(uint(rng.Intn(10)), uint(rng.Intn(10)))
		b := domain.UPos(uint(rng.Intn(10)), uint(rng.Intn(10)))
		g.passable[a.Y*g.w+a.X] = true
		g.passable[b.Y*g.w+b.X] = true

		_, there, ok1 := astar.Simple(a, b, g.cost)
		_, back, ok2 := astar.Simple(b, a, g.cost)
		require.Equal(t, ok1, ok2)
		assert.Equal(t, there, back, "trial %d: %v <-> %v", trial, a, b)
	}
}

func TestAStar_Deterministic(t *testing.T) {
	g := parseGrid([]string{
		"..........",
		"..........",
		"..........",
		"..........",
	})
	first, _, ok := NewAStar(g.w, g.h).Simple(domain.UPos(0, 0), domain.UPos(9, 3), g.cost)
	require.True(t, ok)

	astar := NewAStar(g.w, g.h)
	for i := 0; i < 5; i++ {
		path, _, ok := astar.Simple(domain.UPos(0, 0), domain.UPos(9, 3), g.cost)
		require.True(t, ok)
		assert.Equal(t, first, path)
	}
}

func TestAStar_Fixture10x20(t *testing.T) {
	g := parseGrid([]string{
		"..........#.........",
		"########..#..######.",
		"......#...#..#......",
		".####.#.###..#.####.",
		".#....#...#..#....#.",
		".#.######.#.#####.#.",
		".#........#.....#.#.",
		".##########.###.#.#.",
		"............#...#.#.",
		"###########...#...#.",
	})
	require.Equal(t, uint(20), g.w)
	require.Equal(t, uint(10), g.h)

	start, goal := domain.UPos(0, 0), domain.UPos(19, 9)
	astar := NewAStar(g.w, g.h)

	forward, cost, ok := astar.Simple(start, goal, g.cost)
	require.True(t, ok)
	assertValidPath(t, g, forward, start, goal, cost)

	backward, backCost, ok := astar.Simple(goal, start, g.cost)
	require.True(t, ok)
	assertValidPath(t, g, backward, goal, start, backCost)
	assert.Equal(t, len(forward), len(backward))
	assert.Equal(t, cost, backCost)
}

func TestAStar_BacktrackRestartable(t *testing.T) {
	g := parseGrid([]string{
		"......",
		".####.",
		"......",
	})
	astar := NewAStar(g.w, g.h)
	forward, _, ok := astar.Simple(domain.UPos(0, 0), domain.UPos(5, 2), g.cost)
	require.True(t, ok)

	seq := astar.Backtrack(domain.UPos(5, 2))
	once := slices.Collect(seq)
	twice := slices.Collect(seq)
	assert.Equal(t, once, twice)

	slices.Reverse(once)
	assert.Equal(t, forward, once)

	// Ранний выход из range не ломает последовательность.
	for p := range seq {
		assert.Equal(t, domain.UPos(5, 2), p)
		break
	}
}

func TestAStar_ClearResetsState(t *testing.T) {
	g := parseGrid([]string{"....", "...."})
	astar := NewAStar(g.w, g.h)
	_, _, ok := astar.Simple(domain.UPos(0, 0), domain.UPos(3, 1), g.cost)
	require.True(t, ok)

	_, visited := astar.Distance(domain.UPos(3, 1))
	require.True(t, visited)

	astar.Clear()
	_, visited = astar.Distance(domain.UPos(3, 1))
	assert.False(t, visited)
	assert.Empty(t, slices.Collect(astar.Backtrack(domain.UPos(3, 1))))
}

func TestAStar_CustomSuccessors(t *testing.T) {
	// 4-связная сетка без эвристики: обычный Дейкстра.
	g := parseGrid([]string{
		"....",
		".##.",
		"....",
	})
	astar := NewAStar(g.w, g.h)
	succ := func(node domain.UPosition) iter.Seq2[domain.UPosition, int] {
		return func(yield func(domain.UPosition, int) bool) {
			for _, d := range domain.Neighbours4 {
				next, err := node.Offset(d)
				if err != nil || !g.open(next) {
					continue
				}
				if !yield(next, 1) {
					return
				}
			}
		}
	}
	zero := func(domain.UPosition) int { return 0 }
	goal := domain.UPos(3, 2)

	astar.AddToFrontier(domain.UPos(0, 0), 0, nil, 0)
	end, ok := astar.Search(succ, zero, func(p domain.UPosition) bool { return p == goal })
	require.True(t, ok)
	assert.Equal(t, goal, end)

	dist, ok := astar.Distance(end)
	require.True(t, ok)
	assert.Equal(t, 5, dist)
	assert.Len(t, astar.ExtractPath(end), 6)
}
