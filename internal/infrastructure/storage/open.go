package storage

import (
	"context"
	"fmt"
	"log/slog"

	"NewsPulse/internal/config"
	"NewsPulse/internal/ports"
)

// Open builds the configured backend. Callers that get an error are expected
// to fall back to NewMemoryStore. Backends holding connections implement io.Closer.
func Open(ctx context.Context, cfg config.DedupConfig, logger *slog.Logger) (ports.SeenRecords, error) {
	switch cfg.Backend {
	case config.BackendFile, "":
		return NewFileStore(cfg.Path, logger), nil
	case config.BackendMemory:
		return NewMemoryStore(), nil
	case config.BackendSQLite:
		store, err := NewSQLiteStore(ctx, cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("sqlite seen store: %w", err)
		}
		return store, nil
	case config.BackendPostgres:
		store, err := NewPostgresStore(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("postgres seen store: %w", err)
		}
		return store, nil
	case config.BackendRedis:
		store, err := NewRedisStore(ctx, cfg.DSN, cfg.RedisAddr, cfg.RedisKey)
		if err != nil {
			return nil, fmt.Errorf("redis seen store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown dedup backend %q", cfg.Backend)
	}
}
