package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"NewsPulse/internal/domain"
	"NewsPulse/internal/ports"
)

// Runner executes one delivery run.
type Runner interface {
	Run(ctx context.Context, mode domain.Mode) (Report, error)
}

// Scheduler wires one driver per mode with a runner. Jobs share a mutex so
// two runs never overlap inside the process.
type Scheduler struct {
	runner  Runner
	drivers map[domain.Mode]ports.Scheduler
	logger  *slog.Logger

	mu      sync.Mutex
	started []ports.Scheduler
}

// NewScheduler returns a helper to start/stop recurring jobs.
func NewScheduler(runner Runner, drivers map[domain.Mode]ports.Scheduler, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		runner:  runner,
		drivers: drivers,
		logger:  logger.With("component", "scheduler"),
	}
}

// Start registers a job for every configured mode. Modes start in a fixed
// order so realtime is considered first.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.runner == nil {
		return nil
	}

	for _, mode := range []domain.Mode{domain.ModeRealtime, domain.ModeBatch, domain.ModeDaily} {
		driver, ok := s.drivers[mode]
		if !ok || driver == nil {
			continue
		}
		if err := driver.Start(ctx, s.job(ctx, mode)); err != nil {
			_ = s.Stop(context.Background())
			return err
		}
		s.started = append(s.started, driver)
		s.logger.Info("mode scheduled", "mode", string(mode))
	}
	return nil
}

func (s *Scheduler) job(ctx context.Context, mode domain.Mode) func(time.Time) {
	return func(trigger time.Time) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		report, err := s.runner.Run(ctx, mode)
		if err != nil {
			s.logger.Error("scheduled run failed", "mode", string(mode), "trigger", trigger, "error", err)
			return
		}
		s.logger.Info("scheduled run done", "mode", string(mode), "delivered", report.Delivered)
	}
}

// Stop gracefully tears down every started driver.
func (s *Scheduler) Stop(ctx context.Context) error {
	var errs []error
	for _, driver := range s.started {
		if err := driver.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	s.started = nil
	return errors.Join(errs...)
}
