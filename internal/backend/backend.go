// Package backend selects and opens the configured record store.
package backend

import (
	"fmt"

	"spendtrack/internal/config"
	applog "spendtrack/internal/log"
	"spendtrack/internal/store"
)

// Open builds the store named by cfg.DataBackend.
func Open(cfg *config.Config) (store.Store, error) {
	logger := applog.For(applog.ComponentStore)

	switch cfg.DataBackend {
	case "file":
		st, err := store.OpenFileStore(cfg.DataFile)
		if err != nil {
			return nil, fmt.Errorf("open file store: %w", err)
		}
		logger.Info("Opened file-backed store", "path", cfg.DataFile)
		return st, nil

	case "sqlite":
		st, err := store.OpenSQLiteStore(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		logger.Info("Opened SQLite store", "path", cfg.SQLiteDBPath)
		return st, nil

	default:
		return nil, fmt.Errorf("unsupported data backend %q", cfg.DataBackend)
	}
}
