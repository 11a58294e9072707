// Package dedup tracks which items were already processed within a retention
// window. Storage errors never abort a run: an unreadable record counts as
// unseen, so the worst case is a repeated delivery.
package dedup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsPulse/internal/ports"
)

// DefaultRetention is how long a seen identifier blocks re-processing.
const DefaultRetention = 48 * time.Hour

// Store answers novelty questions on top of a SeenRecords backend.
type Store struct {
	records   ports.SeenRecords
	retention time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New wraps records with the given retention window.
func New(records ports.SeenRecords, retention time.Duration, logger *slog.Logger, opts ...Option) *Store {
	if retention <= 0 {
		retention = DefaultRetention
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		records:   records,
		retention: retention,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsSeen reports whether id was marked within the retention window.
func (s *Store) IsSeen(ctx context.Context, id string) bool {
	seenAt, ok, err := s.records.Get(ctx, id)
	if err != nil {
		s.logger.Warn("seen lookup failed, treating as unseen", "id", id, "error", err)
		return false
	}
	if !ok {
		return false
	}
	return !seenAt.Before(s.cutoff())
}

// MarkSeen records ids with the current time. Repeated ids overwrite.
func (s *Store) MarkSeen(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	now := s.now().UTC()
	for _, id := range ids {
		if id == "" {
			continue
		}
		if err := s.records.Set(ctx, id, now); err != nil {
			return fmt.Errorf("mark %s seen: %w", id, err)
		}
	}
	return nil
}

// Persist purges expired records and flushes the rest.
func (s *Store) Persist(ctx context.Context) error {
	purged, err := s.records.PurgeOlderThan(ctx, s.cutoff())
	if err != nil {
		return fmt.Errorf("purge expired: %w", err)
	}
	if err := s.records.Flush(ctx); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	s.logger.Debug("seen records persisted", "purged", purged)
	return nil
}

// Len returns the number of stored records, expired ones included until the next Persist.
func (s *Store) Len(ctx context.Context) int {
	n, err := s.records.Count(ctx)
	if err != nil {
		s.logger.Warn("seen count failed", "error", err)
		return 0
	}
	return n
}

// Retention exposes the configured window.
func (s *Store) Retention() time.Duration {
	return s.retention
}

func (s *Store) cutoff() time.Time {
	return s.now().UTC().Add(-s.retention)
}
