package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	count    int64
	expireAt time.Time
}

// MemoryCounter implements Counter in process memory.
type MemoryCounter struct {
	mu            sync.Mutex
	data          map[string]*memoryEntry
	maxKeys       int
	now           func() time.Time
	cleanupTicker *time.Ticker
	done          chan struct{}
	closeOnce     sync.Once
}

// NewMemoryCounter creates an in-memory counter.
func NewMemoryCounter(opts ...MemoryOption) *MemoryCounter {
	cfg := &MemoryConfig{
		MaxKeys:         10000,
		CleanupInterval: time.Minute,
		Now:             time.Now,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	mc := &MemoryCounter{
		data:          make(map[string]*memoryEntry),
		maxKeys:       cfg.MaxKeys,
		now:           cfg.Now,
		cleanupTicker: time.NewTicker(cfg.CleanupInterval),
		done:          make(chan struct{}),
	}

	go mc.cleanupExpired()
	return mc
}

func (mc *MemoryCounter) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	now := mc.now()
	e, ok := mc.data[key]
	if !ok || !now.Before(e.expireAt) {
		if !ok && len(mc.data) >= mc.maxKeys {
			mc.evictExpiredLocked(now)
		}
		e = &memoryEntry{expireAt: now.Add(window)}
		mc.data[key] = e
	}
	e.count++
	return e.count, nil
}

// Len reports the number of tracked keys.
func (mc *MemoryCounter) Len() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return len(mc.data)
}

func (mc *MemoryCounter) evictExpiredLocked(now time.Time) {
	for key, e := range mc.data {
		if !now.Before(e.expireAt) {
			delete(mc.data, key)
		}
	}
}

func (mc *MemoryCounter) cleanupExpired() {
	for {
		select {
		case <-mc.done:
			return
		case <-mc.cleanupTicker.C:
			mc.mu.Lock()
			mc.evictExpiredLocked(mc.now())
			mc.mu.Unlock()
		}
	}
}

// Close stops the cleanup goroutine.
func (mc *MemoryCounter) Close() error {
	mc.closeOnce.Do(func() {
		mc.cleanupTicker.Stop()
		close(mc.done)
	})
	return nil
}

var _ Counter = (*MemoryCounter)(nil)
