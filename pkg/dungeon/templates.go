package dungeon

import (
	"math/rand"

	"github.com/CodeConiglietto/diggdrasil-sub000/internal/domain"
	"github.com/CodeConiglietto/diggdrasil-sub000/pkg/utils"
)

// EntityTemplate определяет шаблон для создания сущности
type EntityTemplate struct {
	Name   string
	Kind   domain.EntityKind
	Render domain.RenderComponent

	// Растения
	Species  string
	Blocking bool

	// Предметы
	Item     domain.ItemKind
	MaxStack int

	// Существа
	ActionCost   int
	VisionRadius int

	// Weight - вес при случайном выборе из таблицы.
	Weight int
}

// Build создает сущность без позиции; размещает её вызывающий (Chunk.Attach).
func (t EntityTemplate) Build(rng *rand.Rand) *domain.Entity {
	e := &domain.Entity{
		Kind:   t.Kind,
		Name:   t.Name,
		Render: &domain.RenderComponent{Symbol: t.Render.Symbol, Color: t.Render.Color},
	}

	switch t.Kind {
	case domain.KindPlant:
		e.Vegetation = &domain.VegetationComponent{
			Species:  t.Species,
			Growth:   rng.Intn(100),
			Blocking: t.Blocking,
		}
	case domain.KindItem:
		count := 1
		if t.MaxStack > 1 {
			count = 1 + rng.Intn(t.MaxStack)
		}
		e.Item = &domain.ItemComponent{Kind: t.Item, Count: count}
	case domain.KindCreature:
		cost := t.ActionCost
		if cost <= 0 {
			cost = domain.TimeCostMove
		}
		e.AI = &domain.AIComponent{ActionCost: cost, Goal: domain.WanderGoal()}
		radius := t.VisionRadius
		if radius <= 0 {
			radius = domain.VisionRadius
		}
		e.Vision = &domain.VisionComponent{Radius: radius, IsDirty: true}
		e.Memory = domain.NewMemoryComponent()
	}
	return e
}

// --- РАСТИТЕЛЬНОСТЬ ---

var Tree = EntityTemplate{
	Name:     "Дерево",
	Kind:     domain.KindPlant,
	Render:   domain.RenderComponent{Symbol: 'T', Color: "#15803D"},
	Species:  "oak",
	Blocking: true,
	Weight:   3,
}

var Bush = EntityTemplate{
	Name:    "Куст",
	Kind:    domain.KindPlant,
	Render:  domain.RenderComponent{Symbol: '"', Color: "#4ADE80"},
	Species: "hazel",
	Weight:  5,
}

var BerryBush = EntityTemplate{
	Name:    "Ягодный куст",
	Kind:    domain.KindPlant,
	Render:  domain.RenderComponent{Symbol: '%', Color: "#BE123C"},
	Species: "bramble",
	Weight:  2,
}

// --- ПРЕДМЕТЫ ---

var Stone = EntityTemplate{
	Name:     "Камень",
	Kind:     domain.KindItem,
	Render:   domain.RenderComponent{Symbol: '*', Color: "#A8A29E"},
	Item:     domain.ItemStone,
	MaxStack: 3,
	Weight:   3,
}

var Stick = EntityTemplate{
	Name:     "Палка",
	Kind:     domain.KindItem,
	Render:   domain.RenderComponent{Symbol: '/', Color: "#92400E"},
	Item:     domain.ItemStick,
	MaxStack: 2,
	Weight:   3,
}

var Berry = EntityTemplate{
	Name:     "Ягоды",
	Kind:     domain.KindItem,
	Render:   domain.RenderComponent{Symbol: ',', Color: "#DC2626"},
	Item:     domain.ItemBerry,
	MaxStack: 5,
	Weight:   1,
}

// --- СУЩЕСТВА ---

var Mole = EntityTemplate{
	Name:         "Крот",
	Kind:         domain.KindCreature,
	Render:       domain.RenderComponent{Symbol: 'm', Color: "#78716C"},
	ActionCost:   domain.TimeCostSlowMove,
	VisionRadius: 4,
	Weight:       2,
}

var Digger = EntityTemplate{
	Name:         "Землекоп",
	Kind:         domain.KindCreature,
	Render:       domain.RenderComponent{Symbol: '@', Color: "#22D3EE"},
	ActionCost:   domain.TimeCostMove,
	VisionRadius: domain.VisionRadius,
	Weight:       1,
}

var Fox = EntityTemplate{
	Name:         "Лиса",
	Kind:         domain.KindCreature,
	Render:       domain.RenderComponent{Symbol: 'f', Color: "#EA580C"},
	ActionCost:   domain.TimeCostMove,
	VisionRadius: 6,
	Weight:       3,
}

// ScatterTable - то, что разбрасывается по свежим чанкам.
var ScatterTable = []EntityTemplate{Tree, Bush, BerryBush, Stone, Stick, Berry}

// CreatureTable - кого сервер выпускает в мир при старте.
var CreatureTable = []EntityTemplate{Mole, Fox}

// Pick выбирает шаблон по весам.
func Pick(rng *rand.Rand, table []EntityTemplate) EntityTemplate {
	weights := make([]int, len(table))
	for i, t := range table {
		weights[i] = t.Weight
	}
	i := utils.WeightedIndex(rng, weights)
	if i < 0 {
		return table[0]
	}
	return table[i]
}
