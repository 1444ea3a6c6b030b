package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCounterWindow(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mc := NewMemoryCounter(WithMemoryClock(func() time.Time { return now }))
	defer mc.Close()

	ctx := context.Background()
	for want := int64(1); want <= 3; want++ {
		got, err := mc.Incr(ctx, "ip:1", time.Minute)
		if err != nil || got != want {
			t.Fatalf("incr=%d err=%v want=%d", got, err, want)
		}
	}

	now = now.Add(59 * time.Second)
	if got, _ := mc.Incr(ctx, "ip:1", time.Minute); got != 4 {
		t.Fatalf("window should not be extended, got %d", got)
	}

	now = now.Add(time.Second)
	if got, _ := mc.Incr(ctx, "ip:1", time.Minute); got != 1 {
		t.Fatalf("expected reset after window, got %d", got)
	}
}

func TestMemoryCounterEvictsExpiredAtCapacity(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mc := NewMemoryCounter(WithMemoryMaxKeys(2), WithMemoryClock(func() time.Time { return now }))
	defer mc.Close()

	ctx := context.Background()
	_, _ = mc.Incr(ctx, "a", time.Second)
	_, _ = mc.Incr(ctx, "b", time.Second)
	now = now.Add(2 * time.Second)
	_, _ = mc.Incr(ctx, "c", time.Second)

	if mc.Len() != 1 {
		t.Fatalf("expected expired keys evicted, len=%d", mc.Len())
	}
}

func TestMemoryCounterCloseIdempotent(t *testing.T) {
	mc := NewMemoryCounter()
	if err := mc.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mc.Close(); err != nil {
		t.Fatalf("unexpected error on second close: %v", err)
	}
}
