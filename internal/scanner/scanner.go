package scanner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"NewsPulse/internal/domain"
)

// DefaultType is used for sources that do not name a scanner.
const DefaultType = "rss"

// Source describes one configured feed handed to a scanner.
type Source struct {
	Name     string
	URL      string
	Type     string
	Trust    int
	Category string
}

// Request carries all parameters required to execute a scan.
type Request struct {
	Source      Source
	MaxItems    int
	CollectedAt time.Time
}

// Scanner captures a single strategy implementation (RSS, arXiv listing, etc.).
type Scanner interface {
	Name() string
	Scan(ctx context.Context, req Request) ([]domain.CandidateItem, error)
}

// Registry keeps a mapping from scanner names to their implementations.
type Registry struct {
	scanners map[string]Scanner
}

// NewRegistry builds a registry holding the given scanners.
func NewRegistry(scanners ...Scanner) *Registry {
	r := &Registry{scanners: map[string]Scanner{}}
	for _, s := range scanners {
		r.Register(s)
	}
	return r
}

// Register adds or replaces a scanner implementation.
func (r *Registry) Register(scanner Scanner) {
	if r.scanners == nil {
		r.scanners = map[string]Scanner{}
	}
	r.scanners[scanner.Name()] = scanner
}

// Resolve returns a scanner by name or an error if it is absent.
// An empty name resolves to DefaultType.
func (r *Registry) Resolve(name string) (Scanner, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = DefaultType
	}
	if scanner, ok := r.scanners[name]; ok {
		return scanner, nil
	}
	return nil, fmt.Errorf("scanner %s is not registered", name)
}

// NewItem fills the source-derived fields of a candidate item.
func NewItem(src Source, title, link, summary string, published *time.Time, collectedAt time.Time) domain.CandidateItem {
	link = strings.TrimSpace(link)
	return domain.CandidateItem{
		ID:          domain.ItemID(link),
		Title:       strings.TrimSpace(title),
		Link:        link,
		Summary:     summary,
		SourceName:  src.Name,
		SourceTrust: src.Trust,
		Category:    src.Category,
		PublishedAt: published,
		CollectedAt: collectedAt,
	}
}
