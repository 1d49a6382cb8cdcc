package api

import (
	"encoding/json"
)

// --- СЕРВЕР -> КЛИЕНТ ---

// Snapshot это корневой объект, который сервер отправляет наблюдателям после
// каждого тика. Он представляет собой то, что видит отслеживаемая сущность.
type Snapshot struct {
	// Type тип сообщения. На данный момент всегда "SNAPSHOT".
	Type string `json:"type"`

	// Tick номер тика, после которого снят снимок.
	Tick int `json:"tick"`

	// SaveID идентификатор сохранения (uuid).
	SaveID string `json:"saveId"`

	// Window положение окна загруженных чанков.
	Window WindowMeta `json:"window"`

	// TrackedEntityID ID сущности, за которой следует окно.
	TrackedEntityID string `json:"trackedEntityId,omitempty"`

	// Grid квадрат вокруг отслеживаемой сущности, в котором лежат тайлы Map.
	Grid *GridMeta `json:"grid,omitempty"`

	// Map срез всех видимых и/или исследованных тайлов внутри Grid.
	Map []TileView `json:"map,omitempty"`

	// Entities срез всех видимых сущностей.
	Entities []EntityView `json:"entities,omitempty"`

	// Logs срез новых сообщений, сгенерированных с прошлого тика.
	Logs []LogEntry `json:"logs,omitempty"`
}

// WindowMeta - смещение окна в чанках и его границы в тайлах.
type WindowMeta struct {
	OffsetX int `json:"offsetX"`
	OffsetY int `json:"offsetY"`
	MinX    int `json:"minX"`
	MinY    int `json:"minY"`
	MaxX    int `json:"maxX"`
	MaxY    int `json:"maxY"`
}

// GridMeta описывает квадрат карты, который нужно отрисовать.
type GridMeta struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"w"`
	Height int `json:"h"`
}

// TileView это DTO (Data Transfer Object) для одного тайла карты.
// Содержит всю необходимую информацию для его рендеринга.
type TileView struct {
	X int `json:"x"`
	Y int `json:"y"`

	// Symbol и Color - визуальное представление тайла (e.g. "#" для стены).
	Symbol string `json:"symbol"`
	Color  string `json:"color"`

	// Variant - маска соединений со соседними стенами (N=1, E=2, S=4, W=8).
	Variant uint8 `json:"variant,omitempty"`

	// IsWall true, если тайл является непроходимым препятствием.
	IsWall bool `json:"isWall"`

	// IsVisible true, если тайл находится в текущем поле зрения. Рендерится ярко.
	IsVisible bool `json:"isVisible"`

	// IsExplored true, если тайл когда-либо был увиден. Используется для "тумана войны".
	// Если IsVisible=false, а IsExplored=true, рендерится тускло.
	IsExplored bool `json:"isExplored"`
}

// EntityView это DTO для игровой сущности.
type EntityView struct {
	ID   string `json:"id"`
	Kind string `json:"kind"` // CREATURE, PLANT, ITEM
	Name string `json:"name"`

	Pos struct {
		X int `json:"x"`
		Y int `json:"y"`
	} `json:"pos"`

	Render struct {
		Symbol string `json:"symbol"`
		Color  string `json:"color"`
	} `json:"render"`

	// Goal текущая цель ИИ (для существ).
	Goal string `json:"goal,omitempty"`

	// Count размер стопки (для предметов).
	Count int `json:"count,omitempty"`
}

// LogEntry представляет одну запись в логе симуляции.
type LogEntry struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Type      string `json:"type"`      // INFO, WORLD, ERROR
	Timestamp int64  `json:"timestamp"` // Unix milliseconds
}

// --- КЛИЕНТ -> СЕРВЕР ---

// Команды наблюдателя.
const (
	ActionPause  = "PAUSE"
	ActionResume = "RESUME"
	ActionStep   = "STEP"
	ActionSave   = "SAVE"
)

// ClientCommand это корневой объект для всех сообщений от клиента к серверу.
type ClientCommand struct {
	// Action название действия, которое нужно выполнить.
	Action string `json:"action"`

	// Payload JSON-объект с данными для действия. Его структура зависит от Action.
	Payload json.RawMessage `json:"payload,omitempty"`
}

// StepPayload используется для STEP: сколько тиков прогнать на паузе.
type StepPayload struct {
	Ticks int `json:"ticks"`
}
