package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"NewsPulse/internal/config"
	"NewsPulse/internal/dedup"
	"NewsPulse/internal/dispatch"
	"NewsPulse/internal/domain"
	"NewsPulse/internal/infrastructure/feeds"
	"NewsPulse/internal/infrastructure/llm"
	"NewsPulse/internal/infrastructure/scheduler"
	"NewsPulse/internal/infrastructure/storage"
	"NewsPulse/internal/infrastructure/telegram"
	"NewsPulse/internal/logging"
	"NewsPulse/internal/metrics"
	"NewsPulse/internal/pacing"
	"NewsPulse/internal/ports"
	"NewsPulse/internal/router"
	"NewsPulse/internal/scoring"
	"NewsPulse/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
	records  ports.SeenRecords
	metrics  *metrics.Recorder
	logger   *slog.Logger
}

// New builds a runnable application. Missing credentials are fatal; an
// unavailable dedup backend degrades to an in-memory store.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	oracle, err := llm.NewOracle(ctx, cfg.Oracle)
	if err != nil {
		return nil, fmt.Errorf("oracle: %w", err)
	}

	notifier, err := telegram.NewNotifier(cfg.Telegram)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}

	storeLogger := baseLogger.With("component", "storage")
	records, err := storage.Open(ctx, cfg.Dedup, storeLogger)
	if err != nil {
		storeLogger.Warn("dedup backend unavailable, using memory store", "backend", cfg.Dedup.Backend, "error", err)
		records = storage.NewMemoryStore()
	}

	rec := metrics.New()

	engine := scoring.NewEngine(oracle, scoring.Options{
		Keywords:         cfg.Scoring.Keywords,
		MinSummaryLength: cfg.Scoring.MinSummaryLength,
		Timeout:          cfg.Oracle.Timeout,
		Pacer:            pacing.NewInterval(cfg.Scoring.Pacing),
		Metrics:          rec,
		Logger:           baseLogger.With("component", "scoring", "oracle", oracle.Name()),
	})

	dispatcher := dispatch.New(notifier, dispatch.Options{
		ChunkSize: cfg.Delivery.ChunkSize,
		Location:  cfg.Delivery.Location(),
		Metrics:   rec,
		Logger:    baseLogger,
	})

	source := feeds.NewDefaultSource(cfg.Sources, feeds.OptionsFromConfig(cfg.Feeds, cfg.Scoring), baseLogger)

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Seen:       dedup.New(records, cfg.Dedup.Retention, baseLogger.With("component", "dedup")),
		Scorer:     engine,
		Dispatcher: dispatcher,
		Notifier:   notifier,
		Oracle:     oracle,
		Limits:     router.Limits{MaxBatch: cfg.Delivery.MaxBatch, DailyTopN: cfg.Delivery.DailyTopN},
		BatchLabel: cfg.Delivery.BatchLabel,
		DailyLabel: cfg.Delivery.DailyLabel,
		Metrics:    rec,
		Logger:     baseLogger.With("component", "pipeline"),
	})

	return &Application{
		cfg:      cfg,
		pipeline: pipeline,
		records:  records,
		metrics:  rec,
		logger:   baseLogger,
	}, nil
}

// Run performs a single run of mode. The test mode runs the connectivity check.
func (a *Application) Run(ctx context.Context, mode domain.Mode) error {
	if mode == domain.ModeTest {
		return a.Check(ctx)
	}

	report, err := a.pipeline.Run(ctx, mode)
	a.push()
	if err != nil {
		return fmt.Errorf("%s run %s: %w", mode, report.RunID, err)
	}
	return nil
}

// Check verifies Telegram, the feeds and the oracle.
func (a *Application) Check(ctx context.Context) error {
	report, err := a.pipeline.Check(ctx)
	a.push()
	if err != nil {
		return fmt.Errorf("connectivity check: %w", err)
	}
	a.logger.Info("connectivity check passed",
		"bot", report.Bot,
		"sources", len(a.cfg.Sources),
		"items", report.Collected)
	return nil
}

// Schedule runs every mode on its configured interval until ctx is done.
func (a *Application) Schedule(ctx context.Context) error {
	drivers := map[domain.Mode]ports.Scheduler{}
	for mode, interval := range map[domain.Mode]time.Duration{
		domain.ModeRealtime: a.cfg.Schedule.Realtime,
		domain.ModeBatch:    a.cfg.Schedule.Batch,
		domain.ModeDaily:    a.cfg.Schedule.Daily,
	} {
		if interval <= 0 {
			continue
		}
		drivers[mode] = scheduler.NewIntervalScheduler(interval, false)
	}
	if len(drivers) == 0 {
		return fmt.Errorf("no schedule intervals configured")
	}

	sched := usecase.NewScheduler(scheduledRunner{a}, drivers, a.logger)
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler running",
		"realtime", a.cfg.Schedule.Realtime,
		"batch", a.cfg.Schedule.Batch,
		"daily", a.cfg.Schedule.Daily)

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := sched.Stop(stopCtx); err != nil {
		return fmt.Errorf("stop scheduler: %w", err)
	}
	a.logger.Info("scheduler stopped")
	return nil
}

// Close releases backends that hold connections.
func (a *Application) Close() error {
	if c, ok := a.records.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (a *Application) push() {
	if err := a.metrics.Push(a.cfg.Metrics.PushgatewayURL, a.cfg.Metrics.Job); err != nil {
		a.logger.Warn("metrics push failed", "error", err)
	}
}

// scheduledRunner pushes metrics after every scheduled run.
type scheduledRunner struct {
	app *Application
}

func (r scheduledRunner) Run(ctx context.Context, mode domain.Mode) (usecase.Report, error) {
	report, err := r.app.pipeline.Run(ctx, mode)
	r.app.push()
	return report, err
}
