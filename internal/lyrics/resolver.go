package lyrics

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/ytmresolve/core/internal/kv"
	"github.com/ytmresolve/core/log"
)

const cacheTTL = 7 * 24 * time.Hour

// Resolver is C10's public surface: it races the configured providers,
// scores whichever complete, and keeps the active pick sticky once a
// caller has manually overridden it for a track.
type Resolver struct {
	providers []Provider
	cache     kv.Store
	logger    log.Logger

	mu       sync.Mutex
	override map[string]string // videoID -> provider name pinned by the user
}

// New builds a lyrics Resolver over the given providers, tried in the
// order given when scores tie. cache may be nil to disable persistence
// (results are still returned, just not reused across calls).
func New(providers []Provider, cache kv.Store, logger log.Logger) *Resolver {
	if logger == nil {
		logger = log.Nop
	}
	return &Resolver{
		providers: providers,
		cache:     cache,
		logger:    logger,
		override:  make(map[string]string),
	}
}

type cachedRecord struct {
	Record    Record    `json:"record"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// Resolve returns the best lyrics for a track, consulting the 7-day TTL
// cache first. On a cache miss it queries every provider in parallel,
// scores the results, and honors a prior manual override if one exists
// for this video.
func (r *Resolver) Resolve(ctx context.Context, videoID string, q Query) (Record, error) {
	if rec, ok := r.readCache(ctx, videoID); ok {
		return rec, nil
	}

	results := r.fetchAll(ctx, q)
	for i := range results {
		results[i].VideoID = videoID
	}

	r.mu.Lock()
	pinned, hasOverride := r.override[videoID]
	r.mu.Unlock()

	if hasOverride {
		for _, rec := range results {
			if rec.Provider == pinned && (rec.Plain != "" || len(rec.Synced) > 0) {
				r.writeCache(ctx, videoID, rec)
				return rec, nil
			}
		}
	}

	rec, ok := best(results)
	if !ok {
		return Record{VideoID: videoID}, &NotFoundError{VideoID: videoID}
	}
	r.writeCache(ctx, videoID, rec)
	return rec, nil
}

// SetOverride pins a provider as the active one for a video, sticky
// across future Resolve calls until cleared or the cache entry expires.
func (r *Resolver) SetOverride(videoID, provider string) {
	r.mu.Lock()
	r.override[videoID] = provider
	r.mu.Unlock()
}

// ClearOverride removes a sticky provider pin, letting auto-selection
// resume for the video.
func (r *Resolver) ClearOverride(videoID string) {
	r.mu.Lock()
	delete(r.override, videoID)
	r.mu.Unlock()
}

func (r *Resolver) fetchAll(ctx context.Context, q Query) []Record {
	var wg sync.WaitGroup
	results := make([]Record, len(r.providers))

	for i, p := range r.providers {
		wg.Add(1)
		go func(i int, p Provider) {
			defer wg.Done()
			candidates, err := p.Search(ctx, q)
			if err != nil {
				r.logger.Debugf("lyrics: %s: %v", p.Name(), err)
				return
			}
			if rec, ok := bestCandidate(candidates); ok {
				results[i] = rec
			}
		}(i, p)
	}
	wg.Wait()

	out := results[:0]
	for _, rec := range results {
		if rec.Provider != "" {
			out = append(out, rec)
		}
	}
	return out
}

func (r *Resolver) readCache(ctx context.Context, videoID string) (Record, bool) {
	if r.cache == nil {
		return Record{}, false
	}
	raw, ok, err := r.cache.Get(ctx, cacheKey(videoID))
	if err != nil || !ok {
		return Record{}, false
	}
	var cached cachedRecord
	if err := json.Unmarshal(raw, &cached); err != nil {
		return Record{}, false
	}
	if time.Since(cached.FetchedAt) > cacheTTL {
		return Record{}, false
	}
	return cached.Record, true
}

func (r *Resolver) writeCache(ctx context.Context, videoID string, rec Record) {
	if r.cache == nil {
		return
	}
	raw, err := json.Marshal(cachedRecord{Record: rec, FetchedAt: time.Now()})
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, cacheKey(videoID), raw); err != nil {
		r.logger.Debugf("lyrics: cache write %s: %v", videoID, err)
	}
}

func cacheKey(videoID string) string {
	return "lyrics/" + videoID
}

// NotFoundError indicates no provider returned usable lyrics.
type NotFoundError struct {
	VideoID string
}

func (e *NotFoundError) Error() string {
	return "lyrics: no result for " + e.VideoID
}
