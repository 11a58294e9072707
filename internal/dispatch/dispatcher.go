// Package dispatch delivers scored items to the notification channel.
// Batches are split into chunks that are sent independently; only items of
// confirmed chunks are reported as delivered.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsPulse/internal/domain"
	"NewsPulse/internal/metrics"
	"NewsPulse/internal/ports"
)

// DefaultChunkSize is the number of items per batch message.
const DefaultChunkSize = 5

// Message kinds reported to metrics.
const (
	kindChunk  = "chunk"
	kindSingle = "single"
	kindNotice = "notice"
)

// Options configures a Dispatcher.
type Options struct {
	ChunkSize int
	Location  *time.Location
	Clock     func() time.Time
	Metrics   *metrics.Recorder
	Logger    *slog.Logger
}

// Dispatcher formats and sends scored items.
type Dispatcher struct {
	notifier  ports.Notifier
	formatter *Formatter
	chunkSize int
	metrics   *metrics.Recorder
	logger    *slog.Logger
}

// New builds a dispatcher on top of a notifier.
func New(notifier ports.Notifier, opts Options) *Dispatcher {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		notifier:  notifier,
		formatter: NewFormatter(opts.Location, opts.Clock),
		chunkSize: opts.ChunkSize,
		metrics:   opts.Metrics,
		logger:    logger.With("component", "dispatch"),
	}
}

// Dispatch sends items in chunks under label and returns the identifiers of
// items whose chunk was delivered. A failed chunk does not stop the rest.
func (d *Dispatcher) Dispatch(ctx context.Context, items []domain.ScoredItem, label string) domain.IDSet {
	delivered := domain.NewIDSet()
	chunks := Chunk(items, d.chunkSize)
	for i, chunk := range chunks {
		message := d.formatter.Chunk(chunk, label, i+1, len(chunks))
		if err := d.send(ctx, kindChunk, message); err != nil {
			d.logger.Error("chunk delivery failed", "label", label, "chunk", i+1, "of", len(chunks), "items", len(chunk), "error", err)
			continue
		}
		delivered.Add(domain.IDs(chunk)...)
		d.logger.Info("chunk delivered", "label", label, "chunk", i+1, "of", len(chunks), "items", len(chunk))
	}
	return delivered
}

// DispatchEach sends one alert per item, in order, and returns the
// identifiers that were delivered.
func (d *Dispatcher) DispatchEach(ctx context.Context, items []domain.ScoredItem) domain.IDSet {
	delivered := domain.NewIDSet()
	for _, it := range items {
		if err := d.send(ctx, kindSingle, d.formatter.Single(it)); err != nil {
			d.logger.Error("alert delivery failed", "id", it.Item.ID, "error", err)
			continue
		}
		delivered.Add(it.Item.ID)
		d.logger.Info("alert delivered", "id", it.Item.ID, "score", it.Score)
	}
	return delivered
}

// Notice sends a plain status message.
func (d *Dispatcher) Notice(ctx context.Context, text string) error {
	if err := d.send(ctx, kindNotice, d.formatter.Notice(text)); err != nil {
		return fmt.Errorf("send notice: %w", err)
	}
	return nil
}

func (d *Dispatcher) send(ctx context.Context, kind, message string) error {
	if d.notifier == nil {
		return fmt.Errorf("no notifier configured")
	}
	err := d.notifier.Send(ctx, message)
	d.metrics.Message(kind, err == nil)
	return err
}

// Chunk splits items into consecutive groups of at most size.
func Chunk(items []domain.ScoredItem, size int) [][]domain.ScoredItem {
	if size <= 0 {
		size = DefaultChunkSize
	}
	var chunks [][]domain.ScoredItem
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
