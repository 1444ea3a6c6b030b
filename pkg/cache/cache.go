package cache

import (
	"context"
	"time"
)

// Counter is a keyed counter whose keys expire a fixed window after their
// first increment. It backs fixed-window rate limiting.
type Counter interface {
	// Incr increments key and returns the new value. The window starts on
	// the first increment and is not extended by later ones.
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
	Close() error
}
