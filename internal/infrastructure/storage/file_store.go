package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"NewsPulse/internal/ports"
)

// FileStore keeps seen records in memory and rewrites a JSON file on Flush.
type FileStore struct {
	path    string
	mu      sync.Mutex
	records map[string]time.Time
}

var _ ports.SeenRecords = (*FileStore)(nil)

type fileRecord struct {
	SeenAt time.Time `json:"seen_at"`
}

// NewFileStore loads path if it exists. A missing, unreadable or corrupt file
// yields an empty store.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	s := &FileStore{path: path, records: map[string]time.Time{}}
	if err := s.load(); err != nil {
		if logger != nil {
			logger.Warn("seen file unusable, starting empty", "path", path, "error", err)
		}
		s.records = map[string]time.Time{}
	}
	return s
}

func (s *FileStore) load() error {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	var decoded map[string]fileRecord
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	for id, rec := range decoded {
		if rec.SeenAt.IsZero() {
			continue
		}
		s.records[id] = rec.SeenAt
	}
	return nil
}

// Get returns the timestamp recorded for id.
func (s *FileStore) Get(_ context.Context, id string) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seenAt, ok := s.records[id]
	return seenAt, ok, nil
}

// Set records id as seen at seenAt.
func (s *FileStore) Set(_ context.Context, id string, seenAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[id] = seenAt
	return nil
}

// PurgeOlderThan drops records strictly before cutoff.
func (s *FileStore) PurgeOlderThan(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	purged := 0
	for id, seenAt := range s.records {
		if seenAt.Before(cutoff) {
			delete(s.records, id)
			purged++
		}
	}
	return purged, nil
}

// Count returns the number of records.
func (s *FileStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records), nil
}

// Flush rewrites the whole file through a temp file and rename.
func (s *FileStore) Flush(_ context.Context) error {
	s.mu.Lock()
	snapshot := make(map[string]fileRecord, len(s.records))
	for id, seenAt := range s.records {
		snapshot[id] = fileRecord{SeenAt: seenAt.UTC()}
	}
	s.mu.Unlock()

	payload, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encode seen records: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create seen dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".seen-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace seen file: %w", err)
	}
	return nil
}
