package storage

import (
	"errors"
	"fmt"

	"github.com/CodeConiglietto/diggdrasil-sub000/internal/domain"
)

var (
	// ErrNotFound is returned when no record exists for a chunk, entity or meta key.
	ErrNotFound = errors.New("record not found")
	// ErrCorrupt is returned for records with a bad header or payload.
	ErrCorrupt = errors.New("corrupt record")
)

// PersistError is the I/O error kind of the persistence layer. Callers may
// retry or abort the session; a failed write never replaces an existing record.
type PersistError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist: %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// Store persists evicted chunks, their entities and the save metadata.
// Loads of missing records return an error wrapping ErrNotFound.
type Store interface {
	SaveChunk(rec *domain.ChunkRecord) error
	LoadChunk(coord domain.Position) (*domain.ChunkRecord, error)
	HasChunk(coord domain.Position) (bool, error)

	SaveEntities(recs []*domain.EntityRecord) error
	LoadEntity(id domain.StableID) (*domain.EntityRecord, error)
	DeleteEntity(id domain.StableID) error

	SaveMeta(m *Meta) error
	LoadMeta() (*Meta, error)

	Close() error
}

func chunkKey(coord domain.Position) string {
	return fmt.Sprintf("c_%+09d_%+09d", coord.X, coord.Y)
}

func entityKey(id domain.StableID) string {
	return fmt.Sprintf("e_%016d", uint64(id))
}
