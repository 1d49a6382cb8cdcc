package storage

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/CodeConiglietto/diggdrasil-sub000/internal/domain"
	"github.com/CodeConiglietto/diggdrasil-sub000/pkg/logger"
	"github.com/remeh/sizedwaitgroup"
	"github.com/sasha-s/go-deadlock"
	"github.com/sirupsen/logrus"
)

const (
	chunkDir   = "chunks"
	entityDir  = "entities"
	metaFile   = "meta.bin"
	chunkExt   = ".chunk"
	entityExt  = ".ent"
	defaultCap = 4
)

// FileStore keeps one file per chunk and per entity under a save directory.
// Every write goes to a temporary file that is renamed over the target.
type FileStore struct {
	SaveDir string
	workers int
	log     *logrus.Entry
}

// NewFileStore creates the directory layout if needed. workers bounds the
// number of entity files written in parallel.
func NewFileStore(dir string, workers int) (*FileStore, error) {
	for _, sub := range []string{chunkDir, entityDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, &PersistError{Op: "mkdir", Key: sub, Err: err}
		}
	}
	if workers <= 0 {
		workers = defaultCap
	}
	return &FileStore{
		SaveDir: dir,
		workers: workers,
		log: logger.Log.WithFields(logrus.Fields{
			"component": "file_store",
			"dir":       dir,
		}),
	}, nil
}

func (s *FileStore) chunkPath(coord domain.Position) string {
	return filepath.Join(s.SaveDir, chunkDir, chunkKey(coord)+chunkExt)
}

func (s *FileStore) entityPath(id domain.StableID) string {
	return filepath.Join(s.SaveDir, entityDir, entityKey(id)+entityExt)
}

func (s *FileStore) SaveChunk(rec *domain.ChunkRecord) error {
	return s.writeFile(s.chunkPath(rec.Coord), KindChunk, rec)
}

func (s *FileStore) LoadChunk(coord domain.Position) (*domain.ChunkRecord, error) {
	rec := &domain.ChunkRecord{}
	if err := s.readFile(s.chunkPath(coord), KindChunk, rec); err != nil {
		return nil, err
	}
	if rec.Coord != coord {
		return nil, fmt.Errorf("%w: chunk file for %v holds %v", ErrCorrupt, coord, rec.Coord)
	}
	return rec, nil
}

func (s *FileStore) HasChunk(coord domain.Position) (bool, error) {
	_, err := os.Stat(s.chunkPath(coord))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, &PersistError{Op: "stat", Key: chunkKey(coord), Err: err}
	}
}

// SaveEntities writes the records in parallel and reports every failure.
func (s *FileStore) SaveEntities(recs []*domain.EntityRecord) error {
	var (
		mu   deadlock.Mutex
		errs []error
	)
	swg := sizedwaitgroup.New(s.workers)
	for _, rec := range recs {
		swg.Add()
		go func(rec *domain.EntityRecord) {
			defer swg.Done()
			if err := s.writeFile(s.entityPath(rec.ID), KindEntity, rec); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(rec)
	}
	swg.Wait()
	return errors.Join(errs...)
}

func (s *FileStore) LoadEntity(id domain.StableID) (*domain.EntityRecord, error) {
	rec := &domain.EntityRecord{}
	if err := s.readFile(s.entityPath(id), KindEntity, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *FileStore) DeleteEntity(id domain.StableID) error {
	err := os.Remove(s.entityPath(id))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &PersistError{Op: "delete", Key: entityKey(id), Err: err}
	}
	return nil
}

func (s *FileStore) SaveMeta(m *Meta) error {
	return s.writeFile(filepath.Join(s.SaveDir, metaFile), KindMeta, m)
}

func (s *FileStore) LoadMeta() (*Meta, error) {
	m := &Meta{}
	if err := s.readFile(filepath.Join(s.SaveDir, metaFile), KindMeta, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *FileStore) Close() error { return nil }

// writeFile пишет запись во временный файл и атомарно переименовывает его.
func (s *FileStore) writeFile(path string, kind RecordKind, v any) (err error) {
	key := filepath.Base(path)
	tmp, err := os.CreateTemp(filepath.Dir(path), key+".tmp-*")
	if err != nil {
		return &PersistError{Op: "create", Key: key, Err: err}
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
			s.log.WithError(err).WithField("key", key).Error("Failed to persist record")
		}
	}()

	w := bufio.NewWriter(tmp)
	if err = writeRecord(w, kind, v); err != nil {
		return &PersistError{Op: "write", Key: key, Err: err}
	}
	if err = w.Flush(); err != nil {
		return &PersistError{Op: "write", Key: key, Err: err}
	}
	if err = tmp.Sync(); err != nil {
		return &PersistError{Op: "sync", Key: key, Err: err}
	}
	if err = tmp.Close(); err != nil {
		return &PersistError{Op: "close", Key: key, Err: err}
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return &PersistError{Op: "rename", Key: key, Err: err}
	}
	return nil
}

func (s *FileStore) readFile(path string, kind RecordKind, v any) error {
	key := filepath.Base(path)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s %s: %w", kind, key, ErrNotFound)
	}
	if err != nil {
		return &PersistError{Op: "open", Key: key, Err: err}
	}
	defer f.Close()

	if err := readRecord(bufio.NewReader(f), kind, v); err != nil {
		return fmt.Errorf("%s %s: %w", kind, key, err)
	}
	return nil
}
