package systems

import "github.com/CodeConiglietto/diggdrasil-sub000/internal/domain"

// ShadowcastCallbacks connect the caster to a map. Both receive positions
// relative to the observer.
type ShadowcastCallbacks struct {
	IsTransparent func(rel domain.Position) bool
	OnVisible     func(rel domain.Position)
}

// FOV is a read-only view of the last computed visibility grid, centred on
// the observer.
type FOV struct {
	radius int
	cells  []bool
}

func (f FOV) Radius() int { return f.radius }

// Visible reports whether the cell at offset rel from the observer was seen.
func (f FOV) Visible(rel domain.Position) bool {
	if rel.X < -f.radius || rel.X > f.radius || rel.Y < -f.radius || rel.Y > f.radius {
		return false
	}
	return f.cells[f.index(rel)]
}

// Each visits visible offsets in row-major order.
func (f FOV) Each(fn func(rel domain.Position)) {
	side := 2*f.radius + 1
	for i, ok := range f.cells {
		if ok {
			fn(domain.Pos(i%side-f.radius, i/side-f.radius))
		}
	}
}

func (f FOV) index(rel domain.Position) int {
	side := 2*f.radius + 1
	return (rel.Y+f.radius)*side + rel.X + f.radius
}

// Мультипликаторы для трансформации канонического октанта (x >= y >= 0)
// в 4 квадранта; каждый квадрант дополнительно транспонируется.
var quadrants = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}

// slope is the exact rational num/den with den > 0.
type slope struct {
	num, den int
}

// tileSlope is the slope of the near edge of column col at depth.
func tileSlope(depth, col int) slope {
	return slope{num: 2*col - 1, den: 2 * depth}
}

type castRow struct {
	depth      int
	start, end slope
}

// minCol rounds depth*start half up.
func (r castRow) minCol() int {
	return floorDiv(2*r.depth*r.start.num+r.start.den, 2*r.start.den)
}

// maxCol rounds depth*end half down.
func (r castRow) maxCol() int {
	return -floorDiv(r.end.den-2*r.depth*r.end.num, 2*r.end.den)
}

func (r castRow) symmetric(col int) bool {
	return col*r.start.den >= r.depth*r.start.num && col*r.end.den <= r.depth*r.end.num
}

func (r castRow) next() castRow {
	return castRow{depth: r.depth + 1, start: r.start, end: r.end}
}

// Shadowcaster computes symmetric shadowcasting field of view within a
// circular radius. The work stack and grid are reused between casts.
type Shadowcaster struct {
	radius int
	grid   []bool
	count  int
	stack  []castRow
}

func NewShadowcaster(radius int) *Shadowcaster {
	if radius < 0 {
		radius = 0
	}
	side := 2*radius + 1
	return &Shadowcaster{radius: radius, grid: make([]bool, side*side)}
}

func (s *Shadowcaster) Radius() int { return s.radius }

// Count is the number of distinct visible cells of the last cast.
func (s *Shadowcaster) Count() int { return s.count }

// FOV returns the last computed grid. It is overwritten by the next cast.
func (s *Shadowcaster) FOV() FOV {
	return FOV{radius: s.radius, cells: s.grid}
}

// Shadowcast clears the grid and recomputes it. OnVisible fires once per
// visible cell, the observer's own cell first.
func (s *Shadowcaster) Shadowcast(cb ShadowcastCallbacks) {
	clear(s.grid)
	s.count = 0
	s.reveal(domain.Position{}, cb)
	if s.radius == 0 {
		return
	}
	for _, q := range quadrants {
		for _, transpose := range [2]bool{false, true} {
			s.castOctant(q[0], q[1], transpose, cb)
		}
	}
}

func (s *Shadowcaster) reveal(rel domain.Position, cb ShadowcastCallbacks) {
	i := s.FOV().index(rel)
	if s.grid[i] {
		return
	}
	s.grid[i] = true
	s.count++
	if cb.OnVisible != nil {
		cb.OnVisible(rel)
	}
}

func (s *Shadowcaster) castOctant(sx, sy int, transpose bool, cb ShadowcastCallbacks) {
	toRel := func(depth, col int) domain.Position {
		if transpose {
			return domain.Pos(sx*col, sy*depth)
		}
		return domain.Pos(sx*depth, sy*col)
	}
	rr := s.radius * s.radius

	s.stack = append(s.stack[:0], castRow{depth: 1, start: slope{0, 1}, end: slope{1, 1}})
	for len(s.stack) > 0 {
		row := s.stack[len(s.stack)-1]
		s.stack = s.stack[:len(s.stack)-1]

		const (
			prevNone = iota
			prevWall
			prevFloor
		)
		prev := prevNone
		for col := row.minCol(); col <= row.maxCol(); col++ {
			rel := toRel(row.depth, col)
			wall := cb.IsTransparent != nil && !cb.IsTransparent(rel)
			if (wall || row.symmetric(col)) && row.depth*row.depth+col*col <= rr {
				s.reveal(rel, cb)
			}
			if prev == prevWall && !wall {
				row.start = tileSlope(row.depth, col)
			}
			if prev == prevFloor && wall && row.depth < s.radius {
				next := row.next()
				next.end = tileSlope(row.depth, col)
				s.stack = append(s.stack, next)
			}
			if wall {
				prev = prevWall
			} else {
				prev = prevFloor
			}
		}
		if prev == prevFloor && row.depth < s.radius {
			s.stack = append(s.stack, row.next())
		}
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
