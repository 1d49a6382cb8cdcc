package engine

import (
	"fmt"
	"path/filepath"

	"github.com/CodeConiglietto/diggdrasil-sub000/internal/infrastructure/storage"
	"github.com/CodeConiglietto/diggdrasil-sub000/pkg/logger"
	"github.com/sirupsen/logrus"
)

// OpenStore открывает хранилище сохранения по cfg.Backend.
func OpenStore(cfg Config) (storage.Store, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"component": "storage",
		"backend":   cfg.Backend,
		"dir":       cfg.SaveDir,
	})

	var (
		store storage.Store
		err   error
	)
	switch cfg.Backend {
	case BackendFile, "":
		store, err = storage.NewFileStore(cfg.SaveDir, cfg.PersistWorkers)
	case BackendLevelDB:
		store, err = storage.OpenLevelStore(filepath.Join(cfg.SaveDir, "world.ldb"))
	case BackendMemory:
		store = storage.NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Backend, err)
	}

	log.Info("Save store opened")
	return store, nil
}
