package domain

import "github.com/zyedidia/generic/mapset"

// --- КОМПОНЕНТЫ ---

// PositionComponent is the canonical location of an entity. It is only ever
// set and cleared by Chunk.Attach/Detach together with the tile entity list.
type PositionComponent struct {
	Pos Position `json:"pos"`
}

// RenderComponent - Визуализация (Клиент)
type RenderComponent struct {
	Symbol byte   `json:"symbol" msgpack:"s"`
	Color  string `json:"color" msgpack:"c"`
}

// VegetationComponent marks scatter plants (trees, bushes).
type VegetationComponent struct {
	Species string `json:"species" msgpack:"sp"`
	Growth  int    `json:"growth" msgpack:"g"`
	// Blocking plants (tree trunks) collide like walls but stay transparent.
	Blocking bool `json:"blocking" msgpack:"b"`
}

// ItemKind enumerates loose items lying on tiles.
type ItemKind uint8

const (
	ItemStone ItemKind = iota
	ItemClod
	ItemBrick
	ItemLog
	ItemStick
	ItemBerry
)

// ItemComponent is a stack of loose items.
type ItemComponent struct {
	Kind  ItemKind `json:"kind" msgpack:"k"`
	Count int      `json:"count" msgpack:"n"`
}

// AIComponent - Мозги, Поведение и Время
type AIComponent struct {
	NextActionTick int `json:"nextActionTick" msgpack:"t"` // <-- Очередь ходов
	// ActionCost - сколько тиков занимает один шаг.
	ActionCost int        `json:"actionCost" msgpack:"c"`
	Goal       Goal       `json:"goal" msgpack:"g"`
	Path       []Position `json:"path,omitempty" msgpack:"p,omitempty"`
	// Pending is the step chosen by the action stage, applied by the movement stage.
	Pending *Position `json:"-" msgpack:"-"`
	// Blocked - сколько шагов подряд упёрлись в преграду.
	Blocked int `json:"-" msgpack:"-"`
}

// Wait добавляет задержку к следующему действию
func (a *AIComponent) Wait(ticks int) {
	a.NextActionTick += ticks
}

// IsReady проверяет, настал ли ход (относительно глобального времени)
func (a *AIComponent) IsReady(globalTick int) bool {
	return a.NextActionTick <= globalTick
}

// VisionComponent - настройки зрения
type VisionComponent struct {
	Radius int `json:"radius" msgpack:"r"`

	// Результат последнего расчёта FOV, не сериализуем
	Visible []EntityID `json:"-" msgpack:"-"`
	IsDirty bool       `json:"-" msgpack:"-"`
}

// MemoryComponent - туман войны: глобальные позиции, которые уже видели.
type MemoryComponent struct {
	Explored mapset.Set[Position] `json:"-" msgpack:"-"`
}

func NewMemoryComponent() *MemoryComponent {
	return &MemoryComponent{Explored: mapset.New[Position]()}
}

// SaveMarker holds the stable id assigned the first time the entity was persisted.
type SaveMarker struct {
	ID StableID `json:"id" msgpack:"id"`
}
