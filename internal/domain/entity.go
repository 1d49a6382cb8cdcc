package domain

import "fmt"

// EntityKind - тип сущности
type EntityKind uint8

const (
	KindCreature EntityKind = iota + 1
	KindPlant
	KindItem
)

func (k EntityKind) String() string {
	switch k {
	case KindCreature:
		return "CREATURE"
	case KindPlant:
		return "PLANT"
	case KindItem:
		return "ITEM"
	}
	return "UNKNOWN"
}

// Entity is a bag of optional components. A nil component means the
// entity does not have that property.
type Entity struct {
	ID   EntityID   `json:"id"`
	Kind EntityKind `json:"kind"`
	Name string     `json:"name"`

	Pos        *PositionComponent   `json:"pos,omitempty"`
	Render     *RenderComponent     `json:"render,omitempty"`
	Vegetation *VegetationComponent `json:"vegetation,omitempty"`
	Item       *ItemComponent       `json:"item,omitempty"`
	AI         *AIComponent         `json:"ai,omitempty"`
	Vision     *VisionComponent     `json:"vision,omitempty"`
	Memory     *MemoryComponent     `json:"-"`
	Save       *SaveMarker          `json:"save,omitempty"`
}

// Blocks reports whether the entity occupies its tile for movement purposes.
func (e *Entity) Blocks() bool {
	if e.Kind == KindCreature {
		return true
	}
	return e.Vegetation != nil && e.Vegetation.Blocking
}

// MustPos returns the entity position and panics if it has none.
func (e *Entity) MustPos() Position {
	if e.Pos == nil {
		panic(fmt.Sprintf("entity %v has no position component", e.ID))
	}
	return e.Pos.Pos
}

type registrySlot struct {
	gen    uint16
	entity *Entity
}

// Registry owns every live entity and hands out generation-checked handles.
// It is the entity creation/deletion facility of the simulation.
type Registry struct {
	slots []registrySlot
	free  []uint32
	live  int
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Create stores e and assigns its ID.
func (r *Registry) Create(e *Entity) EntityID {
	var index uint32
	if n := len(r.free); n > 0 {
		index = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		index = uint32(len(r.slots))
		// Поколение начинается с 1, чтобы ID никогда не совпал с NilEntityID.
		r.slots = append(r.slots, registrySlot{gen: 1})
	}
	slot := &r.slots[index]
	slot.entity = e
	e.ID = PackEntityID(e.Kind, slot.gen, index)
	r.live++
	return e.ID
}

// Get returns nil for unknown and stale handles.
func (r *Registry) Get(id EntityID) *Entity {
	index := id.Index()
	if id.IsNil() || int(index) >= len(r.slots) {
		return nil
	}
	slot := r.slots[index]
	if slot.gen != id.Generation() || slot.entity == nil {
		return nil
	}
	return slot.entity
}

// MustGet is Get for handles the caller knows are live.
func (r *Registry) MustGet(id EntityID) *Entity {
	e := r.Get(id)
	if e == nil {
		panic(fmt.Sprintf("entity %v is not alive", id))
	}
	return e
}

// Delete removes the entity. Deleting an entity that is still placed on a
// tile would leave a dangling reference in that tile, so it panics.
func (r *Registry) Delete(id EntityID) bool {
	e := r.Get(id)
	if e == nil {
		return false
	}
	if e.Pos != nil {
		panic(fmt.Sprintf("entity %v deleted while still positioned at %v", id, e.Pos.Pos))
	}
	index := id.Index()
	r.slots[index].entity = nil
	r.slots[index].gen++
	if r.slots[index].gen == 0 {
		r.slots[index].gen = 1
	}
	r.free = append(r.free, index)
	r.live--
	return true
}

// Len returns the number of live entities.
func (r *Registry) Len() int {
	return r.live
}

// Each visits live entities in slot order.
func (r *Registry) Each(fn func(e *Entity)) {
	for i := range r.slots {
		if e := r.slots[i].entity; e != nil {
			fn(e)
		}
	}
}
