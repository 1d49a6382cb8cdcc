package domain

import (
	"errors"
	"fmt"
	"math"
)

// ErrOutOfRange is returned when a coordinate does not fit the target position type.
var ErrOutOfRange = errors.New("coordinate out of range")

// Position is a signed coordinate in global (world) space.
type Position struct {
	X int `json:"x" msgpack:"x"`
	Y int `json:"y" msgpack:"y"`
}

// UPosition is an unsigned coordinate inside a chunk or inside the chunk buffer.
type UPosition struct {
	X uint `json:"x" msgpack:"x"`
	Y uint `json:"y" msgpack:"y"`
}

// Pos is a convenience constructor for Position.
func Pos(x, y int) Position { return Position{X: x, Y: y} }

// UPos is a convenience constructor for UPosition.
func UPos(x, y uint) UPosition { return UPosition{X: x, Y: y} }

// Neighbours8 are the offsets of the 8-neighbourhood, cardinals first.
var Neighbours8 = [8]Position{
	{0, -1}, {1, 0}, {0, 1}, {-1, 0},
	{1, -1}, {1, 1}, {-1, 1}, {-1, -1},
}

// Neighbours4 are the offsets in N, E, S, W order.
var Neighbours4 = [4]Position{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

// ToUnsigned converts to a local position, failing on negative components.
func (p Position) ToUnsigned() (UPosition, error) {
	if p.X < 0 || p.Y < 0 {
		return UPosition{}, fmt.Errorf("%w: %v to unsigned", ErrOutOfRange, p)
	}
	return UPosition{X: uint(p.X), Y: uint(p.Y)}, nil
}

// ToSigned converts to a global position, failing when a component exceeds the int range.
func (u UPosition) ToSigned() (Position, error) {
	if u.X > math.MaxInt || u.Y > math.MaxInt {
		return Position{}, fmt.Errorf("%w: %v to signed", ErrOutOfRange, u)
	}
	return Position{X: int(u.X), Y: int(u.Y)}, nil
}

// MustSigned is ToSigned for positions that are known to be small (buffer or chunk local).
func (u UPosition) MustSigned() Position {
	p, err := u.ToSigned()
	if err != nil {
		panic(err)
	}
	return p
}

func (p Position) Add(o Position) Position { return Position{X: p.X + o.X, Y: p.Y + o.Y} }
func (p Position) Sub(o Position) Position { return Position{X: p.X - o.X, Y: p.Y - o.Y} }
func (p Position) Mul(k int) Position { return Position{X: p.X * k, Y: p.Y * k} }

// Div truncates toward zero like Go's integer division.
func (p Position) Div(k int) Position { return Position{X: p.X / k, Y: p.Y / k} }

// Rem keeps the sign of the dividend like Go's % operator.
func (p Position) Rem(k int) Position { return Position{X: p.X % k, Y: p.Y % k} }

// FloorDiv rounds toward negative infinity.
func (p Position) FloorDiv(k int) Position {
	return Position{X: floorDiv(p.X, k), Y: floorDiv(p.Y, k)}
}

// EuclidRem always returns components in [0, |k|).
func (p Position) EuclidRem(k int) Position {
	return Position{X: euclidRem(p.X, k), Y: euclidRem(p.Y, k)}
}

func (u UPosition) Add(o UPosition) UPosition { return UPosition{X: u.X + o.X, Y: u.Y + o.Y} }

// Sub subtracts componentwise; ok is false when a component would underflow.
func (u UPosition) Sub(o UPosition) (UPosition, bool) {
	if o.X > u.X || o.Y > u.Y {
		return UPosition{}, false
	}
	return UPosition{X: u.X - o.X, Y: u.Y - o.Y}, true
}

// Offset applies a signed delta, failing if the result is negative.
func (u UPosition) Offset(d Position) (UPosition, error) {
	return u.MustSigned().Add(d).ToUnsigned()
}

// GlobalToLocal splits a global position into its chunk coordinate and the
// position inside that chunk. Negative coordinates map to positive local ones,
// so (-1, -1) is the bottom-right tile of chunk (-1, -1).
func GlobalToLocal(p Position, size int) (Position, UPosition) {
	chunk := p.FloorDiv(size)
	rem := p.EuclidRem(size)
	return chunk, UPosition{X: uint(rem.X), Y: uint(rem.Y)}
}

// LocalToGlobal is the inverse of GlobalToLocal.
func LocalToGlobal(chunk Position, local UPosition, size int) Position {
	return chunk.Mul(size).Add(local.MustSigned())
}

// DistanceTo возвращает точное расстояние до другой точки (float)
func (p Position) DistanceTo(other Position) float64 {
	return math.Sqrt(float64(p.DistanceSquaredTo(other)))
}

// DistanceSquaredTo возвращает квадрат расстояния (int) для сравнения без корней
func (p Position) DistanceSquaredTo(other Position) int {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return dx*dx + dy*dy
}

// Chebyshev returns max(|dx|, |dy|).
func (p Position) Chebyshev(other Position) int {
	return max(abs(p.X-other.X), abs(p.Y-other.Y))
}

// IsAdjacent is true for the 8 surrounding cells and false for the cell itself.
func (p Position) IsAdjacent(other Position) bool {
	return p.Chebyshev(other) == 1
}

// IsAdjacentOrSame also accepts the cell itself.
func (p Position) IsAdjacentOrSame(other Position) bool {
	return p.Chebyshev(other) <= 1
}

// Shift возвращает новую позицию со смещением
func (p Position) Shift(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// DirectionTo returns the unit step (each component -1, 0 or 1) toward other.
func (p Position) DirectionTo(other Position) (int, int) {
	return sign(other.X - p.X), sign(other.Y - p.Y)
}

func (p Position) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }
func (u UPosition) String() string { return fmt.Sprintf("(%d,%d)u", u.X, u.Y) }

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func euclidRem(a, b int) int {
	r := a % b
	if r < 0 {
		r += abs(b)
	}
	return r
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	if x > 0 {
		return 1
	}
	if x < 0 {
		return -1
	}
	return 0
}
