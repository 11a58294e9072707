// Package scoring turns candidate items into scored, localized items. The
// oracle is consulted first; whenever it fails or answers with something
// unusable the engine falls back to keyword and trust heuristics, so Score
// always returns a result.
package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"NewsPulse/internal/domain"
	"NewsPulse/internal/metrics"
	"NewsPulse/internal/pacing"
	"NewsPulse/internal/ports"
)

// AutoClassifiedReason is the rationale of heuristic-only results.
const AutoClassifiedReason = "자동 분류"

// DefaultMinSummaryRunes is the shortest localized summary kept as is.
const DefaultMinSummaryRunes = 30

// Failure stages reported to metrics.
const (
	stageCall      = "call"
	stageParse     = "parse"
	stageSummary   = "summary"
	stageTranslate = "translate"
)

// Options tunes an Engine. Zero values select the defaults.
type Options struct {
	Keywords         []string
	MinSummaryLength int
	// Timeout bounds each oracle call on top of the adapter's own timeout.
	Timeout time.Duration
	Parsers []Parser
	Pacer   ports.Pacer
	Metrics *metrics.Recorder
	Logger  *slog.Logger
}

// Engine scores candidate items.
type Engine struct {
	oracle     ports.Oracle
	keywords   []string
	minSummary int
	timeout    time.Duration
	parsers    []Parser
	pacer      ports.Pacer
	metrics    *metrics.Recorder
	logger     *slog.Logger
}

// NewEngine wires an oracle with scoring options.
func NewEngine(oracle ports.Oracle, opts Options) *Engine {
	e := &Engine{
		oracle:     oracle,
		keywords:   opts.Keywords,
		minSummary: opts.MinSummaryLength,
		timeout:    opts.Timeout,
		parsers:    opts.Parsers,
		pacer:      opts.Pacer,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
	}
	if e.minSummary <= 0 {
		e.minSummary = DefaultMinSummaryRunes
	}
	if len(e.parsers) == 0 {
		e.parsers = DefaultParsers()
	}
	if e.pacer == nil {
		e.pacer = pacing.None{}
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	e.logger = e.logger.With("component", "scoring")
	return e
}

// Score evaluates one item. It never fails; oracle problems degrade the
// result to heuristics and untranslated text.
func (e *Engine) Score(ctx context.Context, item domain.CandidateItem) domain.ScoredItem {
	reply, err := e.complete(ctx, analysisPrompt(item))
	if err != nil {
		e.logger.Warn("oracle call failed, using fallback", "id", item.ID, "error", err)
		e.metrics.OracleFailure(stageCall)
		return e.fallback(ctx, item)
	}

	analysis, parser, ok := ParseAnalysis(e.parsers, reply)
	if !ok {
		e.logger.Warn("oracle reply unparsable, using fallback", "id", item.ID, "reply", domain.Truncate(reply, 120))
		e.metrics.OracleFailure(stageParse)
		return e.fallback(ctx, item)
	}

	base := DefaultBaseScore
	if analysis.HasScore {
		base = analysis.Score
	}
	score := BlendScore(base, e.keywordBonus(item), TrustBonus(item.SourceTrust))

	title := strings.TrimSpace(analysis.Title)
	if title == "" {
		title = item.Title
	}
	summary := strings.TrimSpace(analysis.Summary)
	if summary == "" {
		summary = item.Summary
	}
	if domain.RuneLen(summary) < e.minSummary {
		e.logger.Debug("localized summary too short, translating", "id", item.ID, "runes", domain.RuneLen(summary))
		e.metrics.OracleFailure(stageSummary)
		_, summary = e.translate(ctx, item)
	}

	e.logger.Debug("oracle reply parsed", "id", item.ID, "parser", parser, "base", base, "score", score)
	return e.build(item, title, summary, strings.TrimSpace(analysis.Reason), score, domain.OriginOracle)
}

// ScoreAll scores items one at a time, waiting on the pacer between items,
// and returns them by descending score. If ctx ends while waiting, the items
// scored so far are returned.
func (e *Engine) ScoreAll(ctx context.Context, items []domain.CandidateItem) []domain.ScoredItem {
	scored := make([]domain.ScoredItem, 0, len(items))
	for i, item := range items {
		if i > 0 {
			if err := e.pacer.Wait(ctx); err != nil {
				e.logger.Warn("scoring interrupted", "scored", len(scored), "total", len(items), "error", err)
				break
			}
		}

		e.logger.Info("scoring item",
			"progress", fmt.Sprintf("[%d/%d]", i+1, len(items)),
			"title", domain.Truncate(item.Title, 40),
		)
		result := e.Score(ctx, item)
		e.logger.Info("item scored", "id", item.ID, "score", result.Score, "tier", result.Tier, "origin", result.Origin)
		scored = append(scored, result)
	}

	domain.SortByScore(scored)
	return scored
}

func (e *Engine) fallback(ctx context.Context, item domain.CandidateItem) domain.ScoredItem {
	score := BlendScore(DefaultBaseScore, e.keywordBonus(item), TrustBonus(item.SourceTrust))
	title, summary := e.translate(ctx, item)
	return e.build(item, title, summary, AutoClassifiedReason, score, domain.OriginFallback)
}

// translate asks the oracle for a plain translation. On failure the original
// text is returned.
func (e *Engine) translate(ctx context.Context, item domain.CandidateItem) (string, string) {
	title, summary := item.Title, item.Summary
	reply, err := e.complete(ctx, translationPrompt(item.Title, item.Summary))
	if err != nil {
		e.logger.Warn("translation failed, keeping original text", "id", item.ID, "error", err)
		e.metrics.OracleFailure(stageTranslate)
		return title, summary
	}
	return parseTranslation(reply, title, summary)
}

func (e *Engine) complete(ctx context.Context, prompt string) (string, error) {
	if e.oracle == nil {
		return "", fmt.Errorf("no oracle configured")
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	reply, err := e.oracle.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%s: %w", e.oracle.Name(), err)
	}
	if strings.TrimSpace(reply) == "" {
		return "", fmt.Errorf("%s: empty reply", e.oracle.Name())
	}
	return reply, nil
}

func (e *Engine) keywordBonus(item domain.CandidateItem) int {
	return KeywordBonus(item.Title+" "+item.Summary, e.keywords)
}

func (e *Engine) build(item domain.CandidateItem, title, summary, reason string, score int, origin domain.ScoreOrigin) domain.ScoredItem {
	score = domain.ClampScore(score)
	tier := domain.TierForScore(score)
	e.metrics.Scored(string(origin), string(tier))
	return domain.ScoredItem{
		Item:             item,
		LocalizedTitle:   domain.Truncate(strings.TrimSpace(title), domain.MaxTitleRunes),
		LocalizedSummary: domain.Truncate(strings.TrimSpace(summary), domain.MaxSummaryRunes),
		Score:            score,
		Tier:             tier,
		Rationale:        domain.Truncate(reason, domain.MaxRationaleRunes),
		Origin:           origin,
	}
}
