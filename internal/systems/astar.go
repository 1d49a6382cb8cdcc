package systems

import (
	"iter"
	"slices"

	"github.com/CodeConiglietto/diggdrasil-sub000/internal/domain"
	"github.com/zyedidia/generic/heap"
)

// SuccessorFunc enumerates the outgoing edges of node together with their cost.
type SuccessorFunc func(node domain.UPosition) iter.Seq2[domain.UPosition, int]

// HeuristicFunc estimates the remaining cost from node to the goal. It must
// never overestimate for Search to return optimal paths.
type HeuristicFunc func(node domain.UPosition) int

// CostFunc returns the cost of stepping from one cell to an adjacent one, or
// false when there is no edge.
type CostFunc func(from, to domain.UPosition) (int, bool)

type astarCell struct {
	visited bool
	hasPred bool
	dist    int
	pred    domain.UPosition
}

type frontierNode struct {
	node     domain.UPosition
	dist     int
	estimate int
	seq      uint64
}

// AStar holds the reusable scratch state of a grid search over a width x
// height area. One instance must never be used by two searches at once.
type AStar struct {
	width, height uint
	cells         []astarCell
	frontier      *heap.Heap[frontierNode]
	seq           uint64
}

func NewAStar(width, height uint) *AStar {
	return &AStar{
		width:    width,
		height:   height,
		cells:    make([]astarCell, width*height),
		frontier: heap.New[frontierNode](frontierLess),
	}
}

// Равные оценки разрешаются по порядку вставки, поэтому поиск детерминирован.
func frontierLess(a, b frontierNode) bool {
	if a.estimate != b.estimate {
		return a.estimate < b.estimate
	}
	return a.seq < b.seq
}

func (a *AStar) Width() uint  { return a.width }
func (a *AStar) Height() uint { return a.height }

func (a *AStar) index(p domain.UPosition) (int, bool) {
	if p.X >= a.width || p.Y >= a.height {
		return 0, false
	}
	return int(p.Y*a.width + p.X), true
}

// Clear resets every cell to unvisited and empties the frontier.
func (a *AStar) Clear() {
	clear(a.cells)
	for a.frontier.Size() > 0 {
		a.frontier.Pop()
	}
	a.seq = 0
}

// AddToFrontier records dist (and pred, if any) as the best known distance of
// node and queues it with estimate dist+h. It overwrites the previous record
// unconditionally; callers compare distances first.
func (a *AStar) AddToFrontier(node domain.UPosition, dist int, pred *domain.UPosition, h int) {
	i, ok := a.index(node)
	if !ok {
		return
	}
	cell := &a.cells[i]
	cell.visited = true
	cell.dist = dist
	cell.hasPred = pred != nil
	if pred != nil {
		cell.pred = *pred
	}
	a.seq++
	a.frontier.Push(frontierNode{node: node, dist: dist, estimate: dist + h, seq: a.seq})
}

// Search pops nodes in estimate order until goal accepts one. It returns
// false once the frontier is exhausted.
func (a *AStar) Search(successors SuccessorFunc, heuristic HeuristicFunc, goal func(domain.UPosition) bool) (domain.UPosition, bool) {
	for {
		cur, ok := a.frontier.Pop()
		if !ok {
			return domain.UPosition{}, false
		}
		i, _ := a.index(cur.node)
		if cur.dist > a.cells[i].dist {
			// Устаревшая запись: узел уже переложен с меньшей дистанцией.
			continue
		}
		if goal(cur.node) {
			return cur.node, true
		}
		from := cur.node
		for next, cost := range successors(from) {
			j, ok := a.index(next)
			if !ok {
				continue
			}
			tentative := cur.dist + cost
			if c := a.cells[j]; c.visited && c.dist <= tentative {
				continue
			}
			a.AddToFrontier(next, tentative, &from, heuristic(next))
		}
	}
}

// Distance returns the best known distance of p from the search start.
func (a *AStar) Distance(p domain.UPosition) (int, bool) {
	i, ok := a.index(p)
	if !ok || !a.cells[i].visited {
		return 0, false
	}
	return a.cells[i].dist, true
}

// Backtrack yields end and then its predecessors up to the search start. The
// sequence reads the scratch state on every iteration, so it can be ranged
// over repeatedly until the next Clear.
func (a *AStar) Backtrack(end domain.UPosition) iter.Seq[domain.UPosition] {
	return func(yield func(domain.UPosition) bool) {
		i, ok := a.index(end)
		if !ok || !a.cells[i].visited {
			return
		}
		cur := end
		for steps := len(a.cells); steps >= 0; steps-- {
			if !yield(cur) {
				return
			}
			cell := a.cells[i]
			if !cell.hasPred {
				return
			}
			cur = cell.pred
			i, _ = a.index(cur)
		}
	}
}

// ExtractPath returns the path from end back to the search start.
func (a *AStar) ExtractPath(end domain.UPosition) []domain.UPosition {
	return slices.Collect(a.Backtrack(end))
}

// GridStepCost is the edge cost convention used on tile grids.
func GridStepCost(from, to domain.UPosition) int {
	if from.X != to.X && from.Y != to.Y {
		return domain.StepCostDiagonal
	}
	return domain.StepCostCardinal
}

// Simple runs a full search on the 8-neighbourhood of the grid with a
// Chebyshev heuristic. The returned path goes from start to goal inclusive.
func (a *AStar) Simple(start, goal domain.UPosition, cost CostFunc) ([]domain.UPosition, int, bool) {
	a.Clear()
	if _, ok := a.index(start); !ok {
		return nil, 0, false
	}
	if _, ok := a.index(goal); !ok {
		return nil, 0, false
	}

	successors := func(node domain.UPosition) iter.Seq2[domain.UPosition, int] {
		return func(yield func(domain.UPosition, int) bool) {
			for _, d := range domain.Neighbours8 {
				next, err := node.Offset(d)
				if err != nil {
					continue
				}
				if _, ok := a.index(next); !ok {
					continue
				}
				c, ok := cost(node, next)
				if !ok {
					continue
				}
				if !yield(next, c) {
					return
				}
			}
		}
	}
	heuristic := func(node domain.UPosition) int {
		return chebyshevU(node, goal)
	}

	a.AddToFrontier(start, 0, nil, heuristic(start))
	end, ok := a.Search(successors, heuristic, func(n domain.UPosition) bool { return n == goal })
	if !ok {
		return nil, 0, false
	}
	path := a.ExtractPath(end)
	slices.Reverse(path)
	dist, _ := a.Distance(end)
	return path, dist, true
}

func chebyshevU(a, b domain.UPosition) int {
	return max(absDiff(a.X, b.X), absDiff(a.Y, b.Y))
}

func absDiff(a, b uint) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
