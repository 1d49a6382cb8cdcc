package engine

import (
	"container/heap"

	"github.com/CodeConiglietto/diggdrasil-sub000/internal/domain"
	"github.com/CodeConiglietto/diggdrasil-sub000/pkg/logger"
)

// TurnManager manages the priority queue of entity turns.
type TurnManager struct {
	queue   TurnQueue
	itemMap map[domain.EntityID]*TurnItem
	seq     uint64
}

func NewTurnManager() *TurnManager {
	return &TurnManager{
		queue:   make(TurnQueue, 0),
		itemMap: make(map[domain.EntityID]*TurnItem),
	}
}

// AddEntity registers an entity in the turn system. Entities without AI
// never act.
func (tm *TurnManager) AddEntity(e *domain.Entity) {
	if e.AI == nil {
		return
	}
	if _, ok := tm.itemMap[e.ID]; ok {
		return
	}

	tm.seq++
	item := &TurnItem{
		ID:       e.ID,
		Priority: e.AI.NextActionTick,
		Seq:      tm.seq,
	}

	heap.Push(&tm.queue, item)
	tm.itemMap[e.ID] = item

	logger.Log.WithField("entity_id", e.ID).Debug("Entity added to TurnManager")
}

// UpdatePriority updates an entity's position in the queue (e.g. after they acted).
func (tm *TurnManager) UpdatePriority(entityID domain.EntityID, newTick int) {
	if item, ok := tm.itemMap[entityID]; ok {
		tm.seq++
		tm.queue.Update(item, newTick, tm.seq)
	}
}

// PeekNext returns the entity whose turn is next, without removing them.
func (tm *TurnManager) PeekNext() *TurnItem {
	if tm.queue.Len() == 0 {
		return nil
	}
	return tm.queue[0]
}

// NextReady returns the next entity due at or before tick.
func (tm *TurnManager) NextReady(tick int) (domain.EntityID, bool) {
	next := tm.PeekNext()
	if next == nil || next.Priority > tick {
		return domain.NilEntityID, false
	}
	return next.ID, true
}

// RemoveEntity removes an entity from the turn system (e.g. unloaded with its chunk).
func (tm *TurnManager) RemoveEntity(entityID domain.EntityID) {
	if item, ok := tm.itemMap[entityID]; ok {
		heap.Remove(&tm.queue, item.Index)
		delete(tm.itemMap, entityID)
	}
}

func (tm *TurnManager) Contains(entityID domain.EntityID) bool {
	_, ok := tm.itemMap[entityID]
	return ok
}

func (tm *TurnManager) Len() int {
	return tm.queue.Len()
}

// QueueEntry - строка отладочного дампа очереди.
type QueueEntry struct {
	ID       domain.EntityID `json:"id"`
	Name     string          `json:"name"`
	Priority int             `json:"next_tick"`
	Index    int             `json:"index"`
}

// DebugDump возвращает снимок очереди для отладки
func (tm *TurnManager) DebugDump(reg *domain.Registry) []QueueEntry {
	// Пустой слайс, а не nil: в JSON это будет "[]", а не "null"
	result := make([]QueueEntry, 0, tm.queue.Len())

	for _, item := range tm.queue {
		entry := QueueEntry{ID: item.ID, Priority: item.Priority, Index: item.Index}
		if e := reg.Get(item.ID); e != nil {
			entry.Name = e.Name
		}
		result = append(result, entry)
	}
	return result
}
