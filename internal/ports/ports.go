package ports

import (
	"context"
	"time"

	"NewsPulse/internal/domain"
)

// ItemSource pulls fresh candidate items from the configured feeds.
type ItemSource interface {
	Collect(ctx context.Context) ([]domain.CandidateItem, error)
}

// SeenRecords is the key-value backend behind the dedup store.
type SeenRecords interface {
	Get(ctx context.Context, id string) (time.Time, bool, error)
	Set(ctx context.Context, id string, seenAt time.Time) error
	// PurgeOlderThan removes records strictly before cutoff and reports how many went.
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error)
	Count(ctx context.Context) (int, error)
	// Flush makes buffered state durable. Write-through backends return nil.
	Flush(ctx context.Context) error
}

// Oracle sends a prompt to a text-analysis model and returns its raw reply.
type Oracle interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// Notifier delivers formatted messages to a chat.
type Notifier interface {
	Send(ctx context.Context, text string) error
	// Ping verifies credentials and returns the bot identity.
	Ping(ctx context.Context) (string, error)
}

// Pacer gates consecutive oracle calls.
type Pacer interface {
	Wait(ctx context.Context) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
