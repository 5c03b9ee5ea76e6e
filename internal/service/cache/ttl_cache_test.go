package cache

import (
	"testing"
	"time"
)

func TestTTLCacheFreshHit(t *testing.T) {
	c := NewTTLCache()
	c.Set("k", 42, TTLVolatile)
	v, ok := c.Get("k")
	if !ok || v.(int) != 42 {
		t.Fatalf("expected fresh hit, got %v ok=%v", v, ok)
	}
}

func TestTTLCacheStaleReadsAbsent(t *testing.T) {
	c := NewTTLCache()
	base := time.Date(2025, 5, 28, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }
	c.Set("k", "v", TTLVolatile)

	c.now = func() time.Time { return base.Add(TTLVolatile + time.Second) }
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected stale entry to read as absent")
	}
}

func TestTTLCacheBoundaryIsFresh(t *testing.T) {
	c := NewTTLCache()
	base := time.Date(2025, 5, 28, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }
	c.Set("k", "v", TTLVolatile)

	// age == ttl is still fresh; only strictly older entries expire
	c.now = func() time.Time { return base.Add(TTLVolatile) }
	if _, ok := c.Get("k"); !ok {
		t.Fatalf("expected entry at exact TTL age to be fresh")
	}
}

func TestTTLCacheSetOverwrites(t *testing.T) {
	c := NewTTLCache()
	c.Set("k", 1, TTLStable)
	c.Set("k", 2, TTLStable)
	v, ok := c.Get("k")
	if !ok || v.(int) != 2 {
		t.Fatalf("expected overwrite, got %v", v)
	}
}

func TestTTLCacheClear(t *testing.T) {
	c := NewTTLCache()
	c.Set("a", 1, TTLStable)
	c.Set("b", 2, TTLStable)
	c.Clear()
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected cleared cache")
	}
	if _, ok := c.Get("b"); ok {
		t.Fatalf("expected cleared cache")
	}
}

func TestGetTyped(t *testing.T) {
	c := NewTTLCache()
	c.Set("k", []int64{1, 2}, TTLShort)
	got, ok := GetTyped[[]int64](c, "k")
	if !ok || len(got) != 2 {
		t.Fatalf("expected typed hit, got %v ok=%v", got, ok)
	}
	if _, ok := GetTyped[string](c, "k"); ok {
		t.Fatalf("expected type mismatch to read as absent")
	}
}
