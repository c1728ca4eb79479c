package users

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("user stats not found")

// Repo persists per-user aggregate counters.
type Repo interface {
	// Increment atomically adds delta to the user's counters, creating them when absent.
	Increment(ctx context.Context, userID string, delta Delta) (Stats, error)
	GetStats(ctx context.Context, userID string) (Stats, error)
}
