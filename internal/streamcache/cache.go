// Package streamcache implements C6: a memory-first, persistent-backed
// stream URL cache with TTL expiry and a 100-entry LRU eviction policy.
// Grounded on the teacher's client.go session map
// (evictLRULocked/evictExpiredLocked), generalized from a single
// in-process map into a two-tier cache fronting internal/kv.
package streamcache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/ytmresolve/core/internal/kv"
	"github.com/ytmresolve/core/internal/metrics"
)

// maxEntries is the LRU cap spec.md §4.6 specifies.
const maxEntries = 100

// expiryGuard is the non-negotiable minimum remaining lifetime a cached
// StreamRecord must have to be served, per spec.md §3.
const expiryGuard = 30 * time.Second

// Record is the StreamRecord data model from spec.md §3.
type Record struct {
	VideoID    string    `json:"videoId"`
	Variant    string    `json:"variant"` // itag, or "download"
	URL        string    `json:"url"`
	ExpiresAt  time.Time `json:"expiresAt"`
	FetchedVia string    `json:"fetchedVia"` // client profile name
}

// Valid reports whether r still has at least expiryGuard of life left.
func (r Record) Valid(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && r.ExpiresAt.Sub(now) > expiryGuard
}

type entry struct {
	record     Record
	lastAccess time.Time
}

// Cache is C6's public surface: read-through from memory, then the
// persistent tier, with writes promoted into both (the "write-then-
// promote" pattern spec.md describes).
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	persist kv.Store
	stats   *metrics.CacheAnalytics
}

// New builds a Cache. persist may be nil to run memory-only (tests, or a
// deployment that accepts losing the cache on restart).
func New(persist kv.Store, stats *metrics.CacheAnalytics) *Cache {
	return &Cache{entries: make(map[string]entry), persist: persist, stats: stats}
}

func cacheKey(videoID, variant string) string {
	return "streamcache/" + videoID + "/" + variant
}

// Get returns a cached record for (videoID, variant) if one exists and
// still satisfies the expiry guard.
func (c *Cache) Get(ctx context.Context, videoID, variant string) (Record, bool) {
	key := cacheKey(videoID, variant)
	now := time.Now()

	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.mu.Unlock()
		if !e.record.Valid(now) {
			c.recordMiss()
			return Record{}, false
		}
		c.touch(key)
		c.recordHit()
		return e.record, true
	}
	c.mu.Unlock()

	if c.persist == nil {
		c.recordMiss()
		return Record{}, false
	}
	raw, ok, err := c.persist.Get(ctx, key)
	if err != nil || !ok {
		c.recordMiss()
		return Record{}, false
	}
	var r Record
	if err := json.Unmarshal(raw, &r); err != nil || !r.Valid(now) {
		c.recordMiss()
		return Record{}, false
	}

	c.promote(key, r)
	c.recordHit()
	return r, true
}

// Put writes a record into the memory tier and promotes it to the
// persistent tier, trimming the LRU if the memory tier is over capacity.
func (c *Cache) Put(ctx context.Context, r Record) {
	key := cacheKey(r.VideoID, r.Variant)
	c.promote(key, r)

	if c.persist == nil {
		return
	}
	raw, err := json.Marshal(r)
	if err != nil {
		return
	}
	_ = c.persist.Set(ctx, key, raw)
}

func (c *Cache) promote(key string, r Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{record: r, lastAccess: time.Now()}
	c.evictLRULocked()
}

func (c *Cache) touch(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		e.lastAccess = time.Now()
		c.entries[key] = e
	}
}

// evictLRULocked drops the least-recently-accessed entries until the
// memory tier is back at or under maxEntries. Must be called with c.mu
// held.
func (c *Cache) evictLRULocked() {
	for len(c.entries) > maxEntries {
		var oldestKey string
		var oldest time.Time
		first := true
		for k, e := range c.entries {
			if first || e.lastAccess.Before(oldest) {
				oldestKey, oldest, first = k, e.lastAccess, false
			}
		}
		if first {
			return
		}
		delete(c.entries, oldestKey)
	}
}

// Clear removes a single video's cached variants (clearStreamCache with a
// variant) or all variants for that video when variant is empty.
func (c *Cache) Clear(ctx context.Context, videoID, variant string) {
	c.mu.Lock()
	for k := range c.entries {
		if matchesClear(k, videoID, variant) {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()

	if c.persist == nil {
		return
	}
	prefix := "streamcache/" + videoID + "/"
	var toDelete []string
	_ = c.persist.Iterate(ctx, prefix, func(e kv.Entry) bool {
		if variant == "" || e.Key == prefix+variant {
			toDelete = append(toDelete, e.Key)
		}
		return true
	})
	for _, k := range toDelete {
		_ = c.persist.Delete(ctx, k)
	}
}

func matchesClear(key, videoID, variant string) bool {
	prefix := "streamcache/" + videoID + "/"
	if variant == "" {
		return len(key) >= len(prefix) && key[:len(prefix)] == prefix
	}
	return key == prefix+variant
}

func (c *Cache) recordHit() {
	if c.stats != nil {
		c.stats.RecordHit()
	}
}

func (c *Cache) recordMiss() {
	if c.stats != nil {
		c.stats.RecordMiss()
	}
}
