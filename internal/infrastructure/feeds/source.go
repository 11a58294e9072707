// Package feeds collects candidate items from the configured sources.
package feeds

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"NewsPulse/internal/config"
	"NewsPulse/internal/domain"
	"NewsPulse/internal/ports"
	"NewsPulse/internal/scanner"
)

// Options tunes collection. Zero values select the defaults.
type Options struct {
	MaxPerSource    int
	MaxSummary      int
	Concurrency     int
	Timeout         time.Duration
	UserAgent       string
	ExcludeKeywords []string
}

func (o *Options) withDefaults() Options {
	var out Options
	if o != nil {
		out = *o
	}
	if out.MaxPerSource <= 0 {
		out.MaxPerSource = 15
	}
	if out.MaxSummary <= 0 {
		out.MaxSummary = 500
	}
	if out.Concurrency <= 0 {
		out.Concurrency = 4
	}
	if out.Timeout <= 0 {
		out.Timeout = 20 * time.Second
	}
	if out.UserAgent == "" {
		out.UserAgent = "NewsPulse/1.0 (Personal Use)"
	}
	return out
}

// OptionsFromConfig maps the feeds and scoring sections onto Options.
func OptionsFromConfig(feeds config.FeedsConfig, scoring config.ScoringConfig) Options {
	return Options{
		MaxPerSource:    feeds.MaxPerSource,
		MaxSummary:      feeds.MaxSummary,
		Concurrency:     feeds.Concurrency,
		Timeout:         feeds.Timeout,
		UserAgent:       feeds.UserAgent,
		ExcludeKeywords: scoring.ExcludeKeywords,
	}
}

// StrategySource implements ItemSource via registered scanner strategies.
type StrategySource struct {
	registry *scanner.Registry
	sources  []scanner.Source
	opts     Options
	now      func() time.Time
	logger   *slog.Logger
}

var _ ports.ItemSource = (*StrategySource)(nil)

// NewStrategySource wires a scanner registry with the configured sources.
func NewStrategySource(reg *scanner.Registry, sources []config.SourceConfig, opts Options, log *slog.Logger) *StrategySource {
	if log == nil {
		log = slog.Default()
	}
	return &StrategySource{
		registry: reg,
		sources:  toScannerSources(sources),
		opts:     opts.withDefaults(),
		now:      time.Now,
		logger:   log.With("component", "feeds"),
	}
}

// NewDefaultSource registers the RSS and arXiv scanners with one shared client.
func NewDefaultSource(sources []config.SourceConfig, opts Options, log *slog.Logger) *StrategySource {
	o := opts.withDefaults()
	reg := scanner.NewRegistry(NewRSSScanner(nil, &o), NewArxivScanner(nil, &o))
	return NewStrategySource(reg, sources, o, log)
}

// SourceCount reports how many sources are configured.
func (s *StrategySource) SourceCount() int {
	return len(s.sources)
}

// Collect scans every source concurrently. Results keep source order, items
// with an exclude keyword are dropped and duplicate links are collapsed.
// A failing source is skipped; Collect fails only when every source failed.
func (s *StrategySource) Collect(ctx context.Context) ([]domain.CandidateItem, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}
	if len(s.sources) == 0 {
		return nil, nil
	}

	collectedAt := s.now().UTC()
	perSource := make([][]domain.CandidateItem, len(s.sources))
	errs := make([]error, len(s.sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i, src := range s.sources {
		i, src := i, src
		g.Go(func() error {
			items, err := s.scan(gctx, src, collectedAt)
			if err != nil {
				s.logger.Warn("source failed", "source", src.Name, "url", src.URL, "error", err)
				errs[i] = err
				return nil
			}
			s.logger.Debug("source scanned", "source", src.Name, "count", len(items))
			perSource[i] = items
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	if failed == len(s.sources) {
		return nil, fmt.Errorf("all %d sources failed: %w", failed, errs[0])
	}

	seen := domain.NewIDSet()
	var aggregated []domain.CandidateItem
	excluded := 0
	for _, items := range perSource {
		for _, item := range items {
			if seen.Has(item.ID) {
				continue
			}
			seen.Add(item.ID)
			if s.excluded(item) {
				excluded++
				continue
			}
			aggregated = append(aggregated, item)
		}
	}

	s.logger.Info("collection done", "sources", len(s.sources), "failed", failed, "items", len(aggregated), "excluded", excluded)
	return aggregated, nil
}

func (s *StrategySource) scan(ctx context.Context, src scanner.Source, collectedAt time.Time) ([]domain.CandidateItem, error) {
	strategy, err := s.registry.Resolve(src.Type)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", src.Name, err)
	}
	items, err := strategy.Scan(ctx, scanner.Request{
		Source:      src,
		MaxItems:    s.opts.MaxPerSource,
		CollectedAt: collectedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("scan source %s: %w", src.Name, err)
	}
	return items, nil
}

func (s *StrategySource) excluded(item domain.CandidateItem) bool {
	text := strings.ToLower(item.Title + " " + item.Summary)
	for _, kw := range s.opts.ExcludeKeywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func toScannerSources(cfg []config.SourceConfig) []scanner.Source {
	sources := make([]scanner.Source, 0, len(cfg))
	for _, src := range cfg {
		sources = append(sources, scanner.Source{
			Name:     src.Name,
			URL:      src.URL,
			Type:     src.Type,
			Trust:    src.Trust,
			Category: src.Category,
		})
	}
	return sources
}
