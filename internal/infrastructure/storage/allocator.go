package storage

import (
	"errors"
	"fmt"

	"github.com/CodeConiglietto/diggdrasil-sub000/internal/domain"
	"github.com/zyedidia/generic/mapset"
)

// ErrStrayMarkers means a save or load left stable ids outstanding.
var ErrStrayMarkers = errors.New("stray save markers outstanding")

// StableIDAllocator hands out persistence ids from a monotonic counter and
// tracks the ids marked during one save/load operation. Between operations
// nothing may be outstanding.
//
//	a.Begin()
//	id := a.Claim(existing) // for every persisted entity
//	...
//	a.Release(id)           // once the record is durable
//	err := a.End()
type StableIDAllocator struct {
	next        domain.StableID
	active      bool
	outstanding mapset.Set[domain.StableID]
}

func NewStableIDAllocator(next domain.StableID) *StableIDAllocator {
	if next == 0 {
		next = 1
	}
	return &StableIDAllocator{next: next, outstanding: mapset.New[domain.StableID]()}
}

// Next is the id the allocator would hand out next. It is persisted in Meta.
func (a *StableIDAllocator) Next() domain.StableID {
	return a.next
}

// Observe moves the counter past id, so ids read back from storage are
// never handed out again.
func (a *StableIDAllocator) Observe(id domain.StableID) {
	if id >= a.next {
		a.next = id + 1
	}
}

// Begin starts an operation. The allocator must be clean.
func (a *StableIDAllocator) Begin() error {
	if a.active {
		return fmt.Errorf("allocator: operation already in progress")
	}
	if a.outstanding.Size() > 0 {
		return fmt.Errorf("allocator: %w (%d)", ErrStrayMarkers, a.outstanding.Size())
	}
	a.active = true
	return nil
}

// Mark records an existing stable id as part of the current operation.
func (a *StableIDAllocator) Mark(id domain.StableID) {
	a.mustBeActive()
	a.Observe(id)
	a.outstanding.Put(id)
}

// Claim returns the existing id, or allocates a new one when existing is
// zero, and marks it.
func (a *StableIDAllocator) Claim(existing domain.StableID) domain.StableID {
	a.mustBeActive()
	id := existing
	if id == 0 {
		id = a.next
		a.next++
	}
	a.Mark(id)
	return id
}

// Release unmarks id.
func (a *StableIDAllocator) Release(id domain.StableID) {
	a.outstanding.Remove(id)
}

// Outstanding is the number of marked ids.
func (a *StableIDAllocator) Outstanding() int {
	return a.outstanding.Size()
}

// End finishes the operation. Stray markers are reported and dropped so the
// allocator is usable again.
func (a *StableIDAllocator) End() error {
	a.active = false
	if n := a.outstanding.Size(); n > 0 {
		a.outstanding = mapset.New[domain.StableID]()
		return fmt.Errorf("allocator: %w (%d)", ErrStrayMarkers, n)
	}
	return nil
}

// Abort ends a failed operation, dropping whatever is still marked.
func (a *StableIDAllocator) Abort() {
	a.active = false
	a.outstanding = mapset.New[domain.StableID]()
}

func (a *StableIDAllocator) mustBeActive() {
	if !a.active {
		panic("allocator: mark outside Begin/End")
	}
}
