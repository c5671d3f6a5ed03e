package tools

import (
	"testing"
	"time"
)

func TestCacheKey_OrderIndependent(t *testing.T) {
	t.Parallel()

	a := map[string]any{"location": "San Francisco, CA", "when": "today"}
	b := map[string]any{"when": "today", "location": "San Francisco, CA"}

	ka, err := cacheKey("weather.get_daily", a)
	if err != nil {
		t.Fatalf("cacheKey() error: %v", err)
	}
	kb, err := cacheKey("weather.get_daily", b)
	if err != nil {
		t.Fatalf("cacheKey() error: %v", err)
	}
	if ka != kb {
		t.Errorf("logically equal inputs hash differently: %s vs %s", ka, kb)
	}
}

func TestCacheKey_DistinguishesToolAndInput(t *testing.T) {
	t.Parallel()

	in := map[string]any{"date": "2024-01-15"}

	k1, _ := cacheKey("calendar.list_events", in)
	k2, _ := cacheKey("todo.list", in)
	if k1 == k2 {
		t.Error("different tools with identical input must not collide")
	}

	k3, _ := cacheKey("calendar.list_events", map[string]any{"date": "2024-01-16"})
	if k1 == k3 {
		t.Error("different inputs must not collide")
	}
}

func TestCacheKey_NestedValues(t *testing.T) {
	t.Parallel()

	a := map[string]any{"symbols": []any{"MSFT", "NVDA"}, "data_type": "stocks"}
	b := map[string]any{"data_type": "stocks", "symbols": []any{"MSFT", "NVDA"}}
	c := map[string]any{"data_type": "stocks", "symbols": []any{"NVDA", "MSFT"}}

	ka, _ := cacheKey("finance.get_quotes", a)
	kb, _ := cacheKey("finance.get_quotes", b)
	kc, _ := cacheKey("finance.get_quotes", c)

	if ka != kb {
		t.Error("key order must not affect the hash")
	}
	if ka == kc {
		t.Error("array element order is significant and must affect the hash")
	}
}

func TestResponseCache_PutGet(t *testing.T) {
	t.Parallel()

	c := newResponseCache(8, time.Minute)
	out := map[string]any{"temp_hi": 72.5, "temp_lo": 58.2}

	if _, ok := c.get("k"); ok {
		t.Fatal("empty cache reported a hit")
	}
	c.put("k", out)
	got, ok := c.get("k")
	if !ok {
		t.Fatal("expected hit after put")
	}
	if got["temp_hi"] != 72.5 {
		t.Errorf("cached value = %v, want original", got)
	}
}

func TestResponseCache_Expiry(t *testing.T) {
	t.Parallel()

	c := newResponseCache(8, 30*time.Millisecond)
	c.put("k", map[string]any{"v": 1})

	if _, ok := c.get("k"); !ok {
		t.Fatal("expected hit before TTL")
	}

	time.Sleep(60 * time.Millisecond)
	if _, ok := c.get("k"); ok {
		t.Error("stale entry served past its TTL")
	}
}

func TestResponseCache_LRUBound(t *testing.T) {
	t.Parallel()

	c := newResponseCache(2, time.Minute)
	c.put("a", map[string]any{"v": 1})
	c.put("b", map[string]any{"v": 2})
	c.put("c", map[string]any{"v": 3})

	if c.len() > 2 {
		t.Errorf("cache size = %d, want <= 2", c.len())
	}
	if _, ok := c.get("a"); ok {
		t.Error("oldest entry should have been evicted")
	}
}

func TestResponseCache_DisabledWhenNoTTL(t *testing.T) {
	t.Parallel()

	c := newResponseCache(8, 0)
	if c != nil {
		t.Fatal("zero TTL should disable the cache")
	}

	// Nil receiver must be safe: caching off means every get is a miss.
	c.put("k", map[string]any{"v": 1})
	if _, ok := c.get("k"); ok {
		t.Error("disabled cache returned a hit")
	}
	if c.len() != 0 {
		t.Error("disabled cache reported entries")
	}
}
