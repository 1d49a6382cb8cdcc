package systems

import "github.com/CodeConiglietto/diggdrasil-sub000/internal/domain"

// TileSource is the read side of the world the systems need. Positions
// outside the loaded window collide and are opaque.
type TileSource interface {
	Collides(p domain.Position) bool
	Opaque(p domain.Position) bool
	EntitiesAt(p domain.Position) []domain.EntityID
}

// Pathfinder finds a forward path between global positions, start excluded.
type Pathfinder interface {
	Pathfind(start, end domain.Position) ([]domain.Position, bool)
}

// Navigator is what goal resolution needs from the world.
type Navigator interface {
	TileSource
	Pathfinder
}
