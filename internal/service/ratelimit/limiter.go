package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"FinCast/pkg/cache"
)

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Close() error
}

type bucket struct {
	tokens float64
	last   time.Time
}

// TokenBucket is an in-process limiter allowing bursts up to capacity,
// refilled at capacity per window.
type TokenBucket struct {
	mu         sync.Mutex
	m          map[string]*bucket
	capacity   float64
	refillRate float64 // tokens per second
	idle       time.Duration
	now        func() time.Time
	sweeps     int
}

// NewTokenBucket allows limit requests per window for each key.
func NewTokenBucket(limit int, window time.Duration) *TokenBucket {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &TokenBucket{
		m:          make(map[string]*bucket),
		capacity:   float64(limit),
		refillRate: float64(limit) / window.Seconds(),
		idle:       window,
		now:        time.Now,
	}
}

// Allow consumes one token for key.
func (l *TokenBucket) Allow(_ context.Context, key string) (bool, error) {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.m[key]
	if !ok {
		b = &bucket{tokens: l.capacity, last: now}
		l.m[key] = b
	}
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens += elapsed * l.refillRate
		if b.tokens > l.capacity {
			b.tokens = l.capacity
		}
		b.last = now
	}

	l.sweeps++
	if l.sweeps >= 1024 {
		l.sweeps = 0
		l.sweepLocked(now)
	}

	if b.tokens >= 1 {
		b.tokens--
		return true, nil
	}
	return false, nil
}

// sweepLocked drops buckets that have been full and idle for a whole window.
func (l *TokenBucket) sweepLocked(now time.Time) {
	for k, b := range l.m {
		if now.Sub(b.last) > l.idle {
			delete(l.m, k)
		}
	}
}

func (l *TokenBucket) Close() error { return nil }

// WindowLimiter is a fixed-window limiter over a shared counter (e.g. Redis).
type WindowLimiter struct {
	counter cache.Counter
	limit   int64
	window  time.Duration
}

// NewWindowLimiter allows limit requests per window for each key.
func NewWindowLimiter(counter cache.Counter, limit int, window time.Duration) *WindowLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &WindowLimiter{counter: counter, limit: int64(limit), window: window}
}

func (l *WindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	n, err := l.counter.Incr(ctx, "ratelimit:"+key, l.window)
	if err != nil {
		return false, fmt.Errorf("rate limit counter: %w", err)
	}
	return n <= l.limit, nil
}

func (l *WindowLimiter) Close() error { return l.counter.Close() }

// Unlimited admits everything.
type Unlimited struct{}

func (Unlimited) Allow(context.Context, string) (bool, error) { return true, nil }

func (Unlimited) Close() error { return nil }

var (
	_ Limiter = (*TokenBucket)(nil)
	_ Limiter = (*WindowLimiter)(nil)
	_ Limiter = Unlimited{}
)
