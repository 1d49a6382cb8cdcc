package systems

import (
	"github.com/CodeConiglietto/diggdrasil-sub000/internal/domain"
)

// MovementResult - результат вычисления движения
type MovementResult struct {
	Target    domain.Position
	HasMoved  bool
	BlockedBy domain.EntityID // Если врезались в кого-то
	IsWall    bool            // Стена или незагруженная клетка
}

// CalculateMove вычисляет новую позицию. Не меняет состояние мира!
func CalculateMove(src TileSource, reg *domain.Registry, e *domain.Entity, dx, dy int) MovementResult {
	target := e.MustPos().Shift(dx, dy)
	res := MovementResult{Target: target}

	if dx == 0 && dy == 0 {
		return res
	}

	// 1. Рельеф (и границы окна)
	if src.Collides(target) {
		res.IsWall = true
		return res
	}

	// 2. Сущности на клетке: блокируют существа и деревья.
	for _, id := range src.EntitiesAt(target) {
		if id == e.ID {
			continue
		}
		if other := reg.Get(id); other != nil && other.Blocks() {
			res.BlockedBy = id
			return res
		}
	}

	res.HasMoved = true
	return res
}

// HasObstacle сообщает, стоит ли на клетке неподвижная преграда (дерево).
// Существа не считаются: они уходят сами.
func HasObstacle(src TileSource, reg *domain.Registry, p domain.Position) bool {
	for _, id := range src.EntitiesAt(p) {
		if e := reg.Get(id); e != nil && e.Kind != domain.KindCreature && e.Blocks() {
			return true
		}
	}
	return false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
