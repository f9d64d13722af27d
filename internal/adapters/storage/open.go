package storage

import (
	"fmt"
	"io"

	"github.com/jsamuelsen/quote-sync/internal/platform/config"
	"github.com/jsamuelsen/quote-sync/internal/ports"
)

// Store is a slot store that reports its health and can be closed.
type Store interface {
	ports.SlotStore
	ports.HealthChecker
	io.Closer
}

// Open builds the store selected by cfg.Driver.
func Open(cfg *config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case config.StorageDriverFile:
		store, err := OpenFile(cfg.Path)
		if err != nil {
			return nil, err
		}

		return store, nil
	case config.StorageDriverSQLite:
		store, err := OpenSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}

		return store, nil
	case config.StorageDriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
