// Package backend selects and builds the remote store implementation.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/config"
	"fintrack/internal/remote"
	"fintrack/internal/remote/memory"
	"fintrack/internal/remote/sheets"
	"fintrack/internal/remote/sqlite"
)

type Type string

const (
	Memory Type = "memory"
	SQLite Type = "sqlite"
	Sheets Type = "sheets"
)

func (t Type) IsValid() bool {
	switch t {
	case Memory, SQLite, Sheets:
		return true
	}
	return false
}

func (t Type) String() string { return string(t) }

// Types returns every valid backend type.
func Types() []Type {
	return []Type{Memory, SQLite, Sheets}
}

// NewStore builds the remote store named by the config.
func NewStore(ctx context.Context, cfg *config.Config) (remote.Store, error) {
	backendType := Type(cfg.DataBackend)
	if !backendType.IsValid() {
		return nil, fmt.Errorf("unknown data backend %q (valid: %v)", cfg.DataBackend, Types())
	}

	slog.InfoContext(ctx, "Creating remote store", "backend", backendType)

	switch backendType {
	case Memory:
		return memory.New(), nil

	case SQLite:
		store, err := sqlite.NewStore(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("create sqlite store: %w", err)
		}
		return store, nil

	case Sheets:
		store, err := sheets.NewFromEnv(ctx)
		if err != nil {
			return nil, fmt.Errorf("create sheets store: %w", err)
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unknown data backend %q", cfg.DataBackend)
	}
}
