package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"NewsPulse/internal/dedup"
	"NewsPulse/internal/dispatch"
	"NewsPulse/internal/domain"
	"NewsPulse/internal/metrics"
	"NewsPulse/internal/ports"
	"NewsPulse/internal/router"
	"NewsPulse/internal/scoring"
)

const (
	// EmptyDailyNotice is sent by the daily run when nothing new arrived.
	EmptyDailyNotice = "📭 오늘의 AI 뉴스: 특별한 소식이 없습니다."
	// CheckMessage is sent by Check to prove the chat is reachable.
	CheckMessage = "🤖 AI 뉴스 봇이 정상 작동합니다!"

	probePrompt = `Reply with the single word "OK".`
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source     ports.ItemSource
	Seen       *dedup.Store
	Scorer     *scoring.Engine
	Dispatcher *dispatch.Dispatcher
	Notifier   ports.Notifier
	Oracle     ports.Oracle
	Limits     router.Limits
	BatchLabel string
	DailyLabel string
	Metrics    *metrics.Recorder
	Logger     *slog.Logger
}

// Pipeline implements one collect, score, route and deliver cycle.
type Pipeline struct {
	source     ports.ItemSource
	seen       *dedup.Store
	scorer     *scoring.Engine
	dispatcher *dispatch.Dispatcher
	notifier   ports.Notifier
	oracle     ports.Oracle
	limits     router.Limits
	batchLabel string
	dailyLabel string
	metrics    *metrics.Recorder
	logger     *slog.Logger
	now        func() time.Time
}

// Report summarizes a finished run.
type Report struct {
	RunID     string
	Mode      domain.Mode
	Collected int
	Fresh     int
	Scored    int
	Selected  int
	Delivered int
	Failed    int
	Duration  time.Duration
}

// CheckReport is the outcome of a connectivity check.
type CheckReport struct {
	Bot         string
	Collected   int
	OracleReply string
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	batchLabel := deps.BatchLabel
	if batchLabel == "" {
		batchLabel = "AI 뉴스 6시간 요약"
	}
	dailyLabel := deps.DailyLabel
	if dailyLabel == "" {
		dailyLabel = "오늘의 AI 뉴스 요약"
	}
	return &Pipeline{
		source:     deps.Source,
		seen:       deps.Seen,
		scorer:     deps.Scorer,
		dispatcher: deps.Dispatcher,
		notifier:   deps.Notifier,
		oracle:     deps.Oracle,
		limits:     deps.Limits,
		batchLabel: batchLabel,
		dailyLabel: dailyLabel,
		metrics:    deps.Metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// Run executes a single delivery run for mode.
func (p *Pipeline) Run(ctx context.Context, mode domain.Mode) (Report, error) {
	report, err := p.run(ctx, mode)
	p.metrics.Run(string(mode), err == nil)
	return report, err
}

func (p *Pipeline) run(ctx context.Context, mode domain.Mode) (Report, error) {
	switch mode {
	case domain.ModeRealtime, domain.ModeBatch, domain.ModeDaily:
	default:
		return Report{}, fmt.Errorf("mode %q is not a delivery run", mode)
	}
	if p.source == nil || p.seen == nil || p.scorer == nil || p.dispatcher == nil {
		return Report{}, errors.New("pipeline is not fully wired")
	}

	started := p.now()
	report := Report{RunID: uuid.NewString(), Mode: mode}
	log := p.logger.With("run_id", report.RunID, "mode", string(mode))
	log.Info("run started")

	candidates, err := p.source.Collect(ctx)
	if err != nil {
		return report, fmt.Errorf("collect items: %w", err)
	}
	report.Collected = len(candidates)
	p.metrics.Collected(len(candidates))

	fresh := p.freshItems(ctx, candidates)
	report.Fresh = len(fresh)
	p.metrics.Fresh(len(fresh))
	log.Info("items collected", "collected", report.Collected, "fresh", report.Fresh)

	if len(fresh) == 0 {
		if mode == domain.ModeDaily {
			if err := p.dispatcher.Notice(ctx, EmptyDailyNotice); err != nil {
				log.Error("empty notice failed", "error", err)
			}
		}
		if err := p.seen.Persist(ctx); err != nil {
			return p.finish(report, started), fmt.Errorf("persist seen records: %w", err)
		}
		log.Info("nothing new")
		return p.finish(report, started), nil
	}

	scored := p.scorer.ScoreAll(ctx, fresh)
	report.Scored = len(scored)

	selected := router.Select(mode, scored, p.limits)
	report.Selected = len(selected)

	delivered := p.deliver(ctx, mode, selected)
	report.Delivered = delivered.Len()

	failed := domain.NewIDSet()
	for _, it := range selected {
		if !delivered.Has(it.Item.ID) {
			failed.Add(it.Item.ID)
		}
	}
	report.Failed = failed.Len()

	var mark []string
	for _, id := range domain.IDs(scored) {
		if !failed.Has(id) {
			mark = append(mark, id)
		}
	}
	if err := p.seen.MarkSeen(ctx, mark); err != nil {
		log.Warn("mark seen failed", "error", err)
	}
	if err := p.seen.Persist(ctx); err != nil {
		return p.finish(report, started), fmt.Errorf("persist seen records: %w", err)
	}

	report = p.finish(report, started)
	log.Info("run finished",
		"scored", report.Scored,
		"selected", report.Selected,
		"delivered", report.Delivered,
		"failed", report.Failed,
		"duration", report.Duration)
	return report, nil
}

// freshItems drops duplicates within the run and items seen in earlier runs.
func (p *Pipeline) freshItems(ctx context.Context, candidates []domain.CandidateItem) []domain.CandidateItem {
	inRun := domain.NewIDSet()
	var fresh []domain.CandidateItem
	for _, item := range candidates {
		if item.ID == "" || inRun.Has(item.ID) {
			continue
		}
		inRun.Add(item.ID)
		if p.seen.IsSeen(ctx, item.ID) {
			continue
		}
		fresh = append(fresh, item)
	}
	return fresh
}

func (p *Pipeline) deliver(ctx context.Context, mode domain.Mode, selected []domain.ScoredItem) domain.IDSet {
	if len(selected) == 0 {
		return domain.NewIDSet()
	}
	switch mode {
	case domain.ModeRealtime:
		return p.dispatcher.DispatchEach(ctx, selected)
	case domain.ModeBatch:
		return p.dispatcher.Dispatch(ctx, selected, p.batchLabel)
	default:
		return p.dispatcher.Dispatch(ctx, selected, p.dailyLabel)
	}
}

func (p *Pipeline) notice(ctx context.Context, text string) error {
	if p.dispatcher != nil {
		return p.dispatcher.Notice(ctx, text)
	}
	return p.notifier.Send(ctx, text)
}

func (p *Pipeline) finish(report Report, started time.Time) Report {
	report.Duration = p.now().Sub(started)
	return report
}

// Check verifies the chat, the feeds and the oracle without touching the
// dedup store. Every step runs; failures are joined.
func (p *Pipeline) Check(ctx context.Context) (CheckReport, error) {
	var (
		report CheckReport
		errs   []error
	)
	log := p.logger.With("mode", string(domain.ModeTest))

	if p.notifier == nil {
		errs = append(errs, errors.New("no notifier configured"))
	} else if bot, err := p.notifier.Ping(ctx); err != nil {
		errs = append(errs, fmt.Errorf("telegram ping: %w", err))
	} else {
		report.Bot = bot
		log.Info("telegram reachable", "bot", bot)
		if err := p.notice(ctx, CheckMessage); err != nil {
			errs = append(errs, fmt.Errorf("telegram test message: %w", err))
		}
	}

	if p.source != nil {
		items, err := p.source.Collect(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("collect items: %w", err))
		} else {
			report.Collected = len(items)
			log.Info("feeds reachable", "items", len(items))
		}
	}

	if p.oracle == nil {
		errs = append(errs, errors.New("no oracle configured"))
	} else if answer, err := p.oracle.Complete(ctx, probePrompt); err != nil {
		errs = append(errs, fmt.Errorf("oracle probe %s: %w", p.oracle.Name(), err))
	} else {
		report.OracleReply = answer
		log.Info("oracle reachable", "oracle", p.oracle.Name(), "reply", answer)
	}

	err := errors.Join(errs...)
	p.metrics.Run(string(domain.ModeTest), err == nil)
	return report, err
}
