package storage

import (
	"errors"
	"fmt"

	"github.com/CodeConiglietto/diggdrasil-sub000/internal/domain"
	"github.com/CodeConiglietto/diggdrasil-sub000/pkg/logger"
	"github.com/df-mc/goleveldb/leveldb"
	"github.com/df-mc/goleveldb/leveldb/opt"
	"github.com/sirupsen/logrus"
)

var metaKey = []byte("meta")

// LevelStore keeps all records in one LevelDB database. Entity batches are
// written atomically.
type LevelStore struct {
	db  *leveldb.DB
	log *logrus.Entry
}

func OpenLevelStore(path string) (*LevelStore, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{})
	if err != nil {
		return nil, &PersistError{Op: "open", Key: path, Err: err}
	}
	return &LevelStore{
		db: db,
		log: logger.Log.WithFields(logrus.Fields{
			"component": "level_store",
			"path":      path,
		}),
	}, nil
}

func levelChunkKey(coord domain.Position) []byte {
	return []byte(fmt.Sprintf("chunk/%d/%d", coord.X, coord.Y))
}

func levelEntityKey(id domain.StableID) []byte {
	return []byte(fmt.Sprintf("entity/%d", uint64(id)))
}

var syncWrite = &opt.WriteOptions{Sync: true}

func (s *LevelStore) put(key []byte, kind RecordKind, v any) error {
	data, err := encodeRecord(kind, v)
	if err != nil {
		return &PersistError{Op: "encode", Key: string(key), Err: err}
	}
	if err := s.db.Put(key, data, syncWrite); err != nil {
		s.log.WithError(err).WithField("key", string(key)).Error("Failed to persist record")
		return &PersistError{Op: "put", Key: string(key), Err: err}
	}
	return nil
}

func (s *LevelStore) get(key []byte, kind RecordKind, v any) error {
	data, err := s.db.Get(key, nil)
	switch {
	case errors.Is(err, leveldb.ErrNotFound):
		return fmt.Errorf("%s %s: %w", kind, key, ErrNotFound)
	case err != nil:
		return &PersistError{Op: "get", Key: string(key), Err: err}
	}
	if err := decodeRecord(data, kind, v); err != nil {
		return fmt.Errorf("%s %s: %w", kind, key, err)
	}
	return nil
}

func (s *LevelStore) SaveChunk(rec *domain.ChunkRecord) error {
	return s.put(levelChunkKey(rec.Coord), KindChunk, rec)
}

func (s *LevelStore) LoadChunk(coord domain.Position) (*domain.ChunkRecord, error) {
	rec := &domain.ChunkRecord{}
	if err := s.get(levelChunkKey(coord), KindChunk, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *LevelStore) HasChunk(coord domain.Position) (bool, error) {
	ok, err := s.db.Has(levelChunkKey(coord), nil)
	if err != nil {
		return false, &PersistError{Op: "has", Key: string(levelChunkKey(coord)), Err: err}
	}
	return ok, nil
}

func (s *LevelStore) SaveEntities(recs []*domain.EntityRecord) error {
	batch := new(leveldb.Batch)
	for _, rec := range recs {
		data, err := encodeRecord(KindEntity, rec)
		if err != nil {
			return &PersistError{Op: "encode", Key: string(levelEntityKey(rec.ID)), Err: err}
		}
		batch.Put(levelEntityKey(rec.ID), data)
	}
	if err := s.db.Write(batch, syncWrite); err != nil {
		s.log.WithError(err).WithField("entities", len(recs)).Error("Failed to persist entity batch")
		return &PersistError{Op: "batch", Key: "entity/*", Err: err}
	}
	return nil
}

func (s *LevelStore) LoadEntity(id domain.StableID) (*domain.EntityRecord, error) {
	rec := &domain.EntityRecord{}
	if err := s.get(levelEntityKey(id), KindEntity, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *LevelStore) DeleteEntity(id domain.StableID) error {
	if err := s.db.Delete(levelEntityKey(id), syncWrite); err != nil {
		return &PersistError{Op: "delete", Key: string(levelEntityKey(id)), Err: err}
	}
	return nil
}

func (s *LevelStore) SaveMeta(m *Meta) error {
	return s.put(metaKey, KindMeta, m)
}

func (s *LevelStore) LoadMeta() (*Meta, error) {
	m := &Meta{}
	if err := s.get(metaKey, KindMeta, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *LevelStore) Close() error {
	return s.db.Close()
}
