package storage

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"NewsPulse/internal/ports"
)

// MemoryStore keeps seen records for the life of the process only.
type MemoryStore struct {
	cache *gocache.Cache
}

var _ ports.SeenRecords = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store without background expiry;
// eviction happens through PurgeOlderThan.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cache: gocache.New(gocache.NoExpiration, 0)}
}

// Get returns the timestamp recorded for id.
func (m *MemoryStore) Get(_ context.Context, id string) (time.Time, bool, error) {
	val, found := m.cache.Get(id)
	if !found {
		return time.Time{}, false, nil
	}
	seenAt, ok := val.(time.Time)
	return seenAt, ok, nil
}

// Set records id as seen at seenAt.
func (m *MemoryStore) Set(_ context.Context, id string, seenAt time.Time) error {
	m.cache.Set(id, seenAt, gocache.NoExpiration)
	return nil
}

// PurgeOlderThan drops records strictly before cutoff.
func (m *MemoryStore) PurgeOlderThan(_ context.Context, cutoff time.Time) (int, error) {
	purged := 0
	for id, item := range m.cache.Items() {
		seenAt, ok := item.Object.(time.Time)
		if !ok || seenAt.Before(cutoff) {
			m.cache.Delete(id)
			purged++
		}
	}
	return purged, nil
}

// Count returns the number of records.
func (m *MemoryStore) Count(_ context.Context) (int, error) {
	return m.cache.ItemCount(), nil
}

// Flush is a no-op.
func (m *MemoryStore) Flush(context.Context) error {
	return nil
}
