package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"NewsPulse/internal/ports"
)

const seenTable = "seen_items"

const createSeenTable = `CREATE TABLE IF NOT EXISTS seen_items (
    id      TEXT PRIMARY KEY,
    seen_at BIGINT NOT NULL
)`

// SQLStore persists seen records in Postgres or SQLite. Writes go straight to
// the database, so Flush has nothing to do.
type SQLStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.SeenRecords = (*SQLStore)(nil)

// NewPostgresStore connects to dsn and ensures the schema exists.
func NewPostgresStore(ctx context.Context, dsn string) (*SQLStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is empty")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return newSQLStore(ctx, db, sq.Dollar)
}

// NewSQLiteStore opens (or creates) the database file at path.
func NewSQLiteStore(ctx context.Context, path string) (*SQLStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	return newSQLStore(ctx, db, sq.Question)
}

func newSQLStore(ctx context.Context, db *sql.DB, placeholder sq.PlaceholderFormat) (*SQLStore, error) {
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, createSeenTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholder),
	}, nil
}

// Get returns the timestamp recorded for id.
func (r *SQLStore) Get(ctx context.Context, id string) (time.Time, bool, error) {
	query, args, err := r.builder.Select("seen_at").From(seenTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("build select: %w", err)
	}

	var millis int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&millis); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("query seen: %w", err)
	}
	return time.UnixMilli(millis).UTC(), true, nil
}

// Set upserts the seen timestamp for id.
func (r *SQLStore) Set(ctx context.Context, id string, seenAt time.Time) error {
	query, args, err := r.builder.Insert(seenTable).
		Columns("id", "seen_at").
		Values(id, seenAt.UnixMilli()).
		Suffix("ON CONFLICT (id) DO UPDATE SET seen_at = EXCLUDED.seen_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert seen: %w", err)
	}
	return nil
}

// PurgeOlderThan deletes records strictly before cutoff.
func (r *SQLStore) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	query, args, err := r.builder.Delete(seenTable).Where(sq.Lt{"seen_at": cutoff.UnixMilli()}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("purge seen: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(affected), nil
}

// Count returns the number of records.
func (r *SQLStore) Count(ctx context.Context) (int, error) {
	query, args, err := r.builder.Select("COUNT(*)").From(seenTable).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count seen: %w", err)
	}
	return n, nil
}

// Flush is a no-op; every Set is already committed.
func (r *SQLStore) Flush(context.Context) error {
	return nil
}

// Close releases the connection pool.
func (r *SQLStore) Close() error {
	return r.db.Close()
}
