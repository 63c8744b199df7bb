package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestAllow_Burst(t *testing.T) {
	krl := New(1, 3, 0)
	defer krl.Stop()

	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	krl.now = func() time.Time { return fixed }

	ctx := context.Background()
	for i := range 3 {
		if ok, _ := krl.Allow(ctx, "ip"); !ok {
			t.Fatalf("request %d within burst was rejected", i)
		}
	}
	if ok, _ := krl.Allow(ctx, "ip"); ok {
		t.Error("request beyond burst must be rejected")
	}
	if ok, _ := krl.Allow(ctx, "other"); !ok {
		t.Error("other keys have their own bucket")
	}

	fixed = fixed.Add(time.Second)
	if ok, _ := krl.Allow(ctx, "ip"); !ok {
		t.Error("bucket must refill after one second at 1 rps")
	}
}

func TestEvictIdle(t *testing.T) {
	krl := New(10, 10, time.Minute)
	defer krl.Stop()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	krl.now = func() time.Time { return now }

	ctx := context.Background()
	_, _ = krl.Allow(ctx, "old")
	now = now.Add(2 * time.Minute)
	_, _ = krl.Allow(ctx, "fresh")

	krl.evictIdle()
	if krl.Len() != 1 {
		t.Fatalf("Len = %d, want 1", krl.Len())
	}
}

func TestStop_Idempotent(t *testing.T) {
	krl := New(1, 1, time.Hour)
	krl.Stop()
	krl.Stop()
}
