package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryAdvisoryCacheExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	c := NewMemoryAdvisoryCache()
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "k", "forecast", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, ok, _ := c.Get(ctx, "k"); !ok || v != "forecast" {
		t.Fatalf("expected cached value, got %q %v", v, ok)
	}

	now = now.Add(time.Minute)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestMemoryAdvisoryCacheSweepsAndBounds(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	c := NewMemoryAdvisoryCache()
	c.now = func() time.Time { return now }
	c.maxEntries = 3

	_ = c.Set(ctx, "stale", "v", time.Minute)
	now = now.Add(2 * time.Minute)
	_ = c.Set(ctx, "fresh", "v", time.Minute)
	if _, ok := c.entries["stale"]; ok {
		t.Fatalf("expected expired entry to be swept on write")
	}

	_ = c.Set(ctx, "a", "v", 10*time.Minute)
	_ = c.Set(ctx, "b", "v", 10*time.Minute)
	_ = c.Set(ctx, "c", "v", 10*time.Minute)
	if len(c.entries) != 3 {
		t.Fatalf("expected cache bounded to 3 entries, got %d", len(c.entries))
	}
	if _, ok := c.entries["fresh"]; ok {
		t.Fatalf("expected the entry closest to expiry to be evicted")
	}
	if v, ok, _ := c.Get(ctx, "c"); !ok || v != "v" {
		t.Fatalf("expected newest entry to be kept")
	}
}

func TestMemoryAdvisoryCacheSkipsEmptyValues(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryAdvisoryCache()
	_ = c.Set(ctx, "k", "", time.Minute)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatalf("expected empty value not to be cached")
	}
}

func TestNoopAdvisoryCacheNeverHits(t *testing.T) {
	var c AdvisoryCache = NoopAdvisoryCache{}
	_ = c.Set(context.Background(), "k", "v", time.Minute)
	if _, ok, err := c.Get(context.Background(), "k"); ok || err != nil {
		t.Fatalf("expected miss, got %v %v", ok, err)
	}
}
