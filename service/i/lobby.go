package i

import (
	"context"

	"github.com/google/uuid"
)

// Lobby batches waiting players into new worlds.
type Lobby interface {
	Enqueue(ctx context.Context, id uuid.UUID) error
	Leave(ctx context.Context, id uuid.UUID) error
	SetMatchHandler(func([]uuid.UUID))
}

// SortedQueue is a score-ordered queue shared between API instances.
type SortedQueue interface {
	Enqueue(ctx context.Context, queueKey string, score float64, member string) error
	DequeTops(ctx context.Context, queueKey string, amount int64) ([]string, error)
	Count(ctx context.Context, queueKey string) int64
	Remove(ctx context.Context, queueKey string, member string) error
}
