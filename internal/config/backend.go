package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/klubi/folio/internal/store"
)

// OpenBackend opens the storage backend selected by the store section,
// creating the data directory when needed.
func (c *Config) OpenBackend(logger *zap.Logger) (store.Backend, error) {
	if c.Store.Type == StoreMemory {
		return store.NewMemoryBackendWithQuota(c.Store.QuotaBytes), nil
	}

	if err := os.MkdirAll(c.Store.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory %s: %w", c.Store.DataDir, err)
	}

	switch c.Store.Type {
	case StoreBolt:
		b, err := store.NewBoltBackend(c.DBPath())
		if err != nil {
			return nil, fmt.Errorf("opening bolt store at %s: %w", c.DBPath(), err)
		}
		return b, nil
	case StoreSQLite:
		b, err := store.NewSQLiteBackend(c.DBPath())
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store at %s: %w", c.DBPath(), err)
		}
		return b, nil
	case StoreFile:
		dir := filepath.Join(c.Store.DataDir, "slots")
		b, err := store.NewFileBackend(dir, logger)
		if err != nil {
			return nil, fmt.Errorf("opening file store at %s: %w", dir, err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown store type %q", c.Store.Type)
	}
}
