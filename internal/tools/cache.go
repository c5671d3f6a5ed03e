package tools

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// defaultCacheSize bounds a tool's response cache when the spec leaves
// CacheSize zero.
const defaultCacheSize = 256

// responseCache maps canonical request keys to previously validated outputs
// for one tool. Each tool owns its own cache, so one chatty tool cannot
// evict another's entries, and the TTL is the tool's declared CacheTTL.
//
// Expiry is lazy: Get refuses entries past their deadline; there is no
// background refresh of values. Writes are idempotent upserts — concurrent
// writers for the same key store outputs derived from the same input, so
// last-write-wins races are harmless.
type responseCache struct {
	lru *expirable.LRU[string, map[string]any]
}

// newResponseCache builds a cache with the given LRU bound and TTL.
// A non-positive TTL disables caching entirely (returns nil; all methods
// tolerate the nil receiver).
func newResponseCache(size int, ttl time.Duration) *responseCache {
	if ttl <= 0 {
		return nil
	}
	if size <= 0 {
		size = defaultCacheSize
	}
	return &responseCache{
		lru: expirable.NewLRU[string, map[string]any](size, nil, ttl),
	}
}

// get returns the cached output for key, or false on miss or expiry.
func (c *responseCache) get(key string) (map[string]any, bool) {
	if c == nil {
		return nil, false
	}
	return c.lru.Get(key)
}

// put stores a validated output under key.
func (c *responseCache) put(key string, output map[string]any) {
	if c == nil {
		return
	}
	c.lru.Add(key, output)
}

// len reports the number of live entries (for tests and debugging).
func (c *responseCache) len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}

// cacheKey derives the deterministic cache key for a tool invocation.
//
// The input must already be validated and defaults-applied: two logically
// equal requests (different key order, incidental whitespace, omitted
// optional fields vs explicit defaults) then produce byte-identical
// canonical JSON, because encoding/json emits object keys sorted. The key
// is hashed so raw input values (locations, schedules) never appear in
// cache internals or logs.
func cacheKey(tool string, input map[string]any) (string, error) {
	canonical, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("canonicalizing input: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(tool))
	h.Write([]byte{0})
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}
