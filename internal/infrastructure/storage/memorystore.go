package storage

import (
	"fmt"

	"github.com/CodeConiglietto/diggdrasil-sub000/internal/domain"
	"github.com/sasha-s/go-deadlock"
)

// MemoryStore keeps encoded records in maps. Records still go through the
// codec, so it behaves like the disk stores apart from durability.
type MemoryStore struct {
	mu       deadlock.RWMutex
	chunks   map[domain.Position][]byte
	entities map[domain.StableID][]byte
	meta     []byte

	// FailWrites makes every save fail, for exercising error paths.
	FailWrites error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		chunks:   make(map[domain.Position][]byte),
		entities: make(map[domain.StableID][]byte),
	}
}

func (s *MemoryStore) SaveChunk(rec *domain.ChunkRecord) error {
	if s.FailWrites != nil {
		return &PersistError{Op: "put", Key: chunkKey(rec.Coord), Err: s.FailWrites}
	}
	data, err := encodeRecord(KindChunk, rec)
	if err != nil {
		return &PersistError{Op: "encode", Key: chunkKey(rec.Coord), Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks[rec.Coord] = data
	return nil
}

func (s *MemoryStore) LoadChunk(coord domain.Position) (*domain.ChunkRecord, error) {
	s.mu.RLock()
	data, ok := s.chunks[coord]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("chunk %s: %w", chunkKey(coord), ErrNotFound)
	}
	rec := &domain.ChunkRecord{}
	if err := decodeRecord(data, KindChunk, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *MemoryStore) HasChunk(coord domain.Position) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.chunks[coord]
	return ok, nil
}

func (s *MemoryStore) SaveEntities(recs []*domain.EntityRecord) error {
	if s.FailWrites != nil {
		return &PersistError{Op: "batch", Key: "entity/*", Err: s.FailWrites}
	}
	encoded := make(map[domain.StableID][]byte, len(recs))
	for _, rec := range recs {
		data, err := encodeRecord(KindEntity, rec)
		if err != nil {
			return &PersistError{Op: "encode", Key: entityKey(rec.ID), Err: err}
		}
		encoded[rec.ID] = data
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, data := range encoded {
		s.entities[id] = data
	}
	return nil
}

func (s *MemoryStore) LoadEntity(id domain.StableID) (*domain.EntityRecord, error) {
	s.mu.RLock()
	data, ok := s.entities[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("entity %s: %w", entityKey(id), ErrNotFound)
	}
	rec := &domain.EntityRecord{}
	if err := decodeRecord(data, KindEntity, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *MemoryStore) DeleteEntity(id domain.StableID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entities, id)
	return nil
}

func (s *MemoryStore) SaveMeta(m *Meta) error {
	if s.FailWrites != nil {
		return &PersistError{Op: "put", Key: "meta", Err: s.FailWrites}
	}
	data, err := encodeRecord(KindMeta, m)
	if err != nil {
		return &PersistError{Op: "encode", Key: "meta", Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meta = data
	return nil
}

func (s *MemoryStore) LoadMeta() (*Meta, error) {
	s.mu.RLock()
	data := s.meta
	s.mu.RUnlock()
	if data == nil {
		return nil, fmt.Errorf("meta: %w", ErrNotFound)
	}
	m := &Meta{}
	if err := decodeRecord(data, KindMeta, m); err != nil {
		return nil, err
	}
	return m, nil
}

// ChunkCount and EntityCount report stored records.
func (s *MemoryStore) ChunkCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

func (s *MemoryStore) EntityCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities)
}

func (s *MemoryStore) Close() error { return nil }
