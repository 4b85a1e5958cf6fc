// Package ytmresolve is the composition root: it wires C1-C10 into the
// nine public operations spec.md §6 defines, the way the teacher's
// client.New used to wire internal/innertube and internal/orchestrator
// into client.Client.
package ytmresolve

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ytmresolve/core/config"
	"github.com/ytmresolve/core/internal/browser"
	"github.com/ytmresolve/core/internal/browser/chromedp"
	"github.com/ytmresolve/core/internal/formats"
	"github.com/ytmresolve/core/internal/innertube"
	"github.com/ytmresolve/core/internal/jsonoffload"
	"github.com/ytmresolve/core/internal/kv"
	"github.com/ytmresolve/core/internal/kv/badgerstore"
	"github.com/ytmresolve/core/internal/kv/memstore"
	"github.com/ytmresolve/core/internal/lyrics"
	"github.com/ytmresolve/core/internal/metrics"
	"github.com/ytmresolve/core/internal/playerjs"
	"github.com/ytmresolve/core/internal/potoken"
	"github.com/ytmresolve/core/internal/prefetch"
	"github.com/ytmresolve/core/internal/resolver"
	"github.com/ytmresolve/core/internal/streamcache"
	"github.com/ytmresolve/core/internal/throttle"
	"github.com/ytmresolve/core/log"
)

// Resolver is the library's single entry point, exposing spec.md §6's
// nine public operations as methods.
type Resolver struct {
	stream    *resolver.Resolver
	lyricsRes *lyrics.Resolver
	prefetch  *prefetch.Scheduler
	tokens    *potoken.Manager
	store     kv.Store
}

// New builds a Resolver and every component it depends on from cfg.
func New(cfg config.Config) (*Resolver, error) {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
		if cfg.ProxyURL != "" {
			// A proxy-only override builds its own client; an explicit
			// HTTPClient always wins (mirrors the teacher's client.Config
			// precedence).
			tr, err := proxiedTransport(cfg.ProxyURL)
			if err != nil {
				return nil, fmt.Errorf("ytmresolve: proxy transport: %w", err)
			}
			httpClient = &http.Client{Transport: tr}
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.Nop
	}

	store, err := openStore(cfg.StreamCacheDir)
	if err != nil {
		return nil, fmt.Errorf("ytmresolve: open store: %w", err)
	}

	registry := innertube.NewRegistry()
	decodePool := jsonoffload.New(4)
	transport := innertube.NewTransport(httpClient, decodePool)
	if cfg.RequestTimeout > 0 {
		transport.SetRequestTimeout(cfg.RequestTimeout)
	}

	playerCache := playerjs.NewMemoryCache()
	playerResolver := playerjs.NewResolver(httpClient, playerCache)
	assets := resolver.NewPlayerAssets(playerResolver)

	var browserFactory potoken.BrowserFactory
	if cfg.BrowserFactory != nil {
		browserFactory = func(context.Context) (browser.Context, error) { return cfg.BrowserFactory() }
	} else {
		browserFactory = chromedp.New
	}
	tokens := potoken.NewManager(store, browserFactory, logger)

	stats := metrics.NewCacheAnalytics(cfg.MetricsRegisterer)
	cache := streamcache.New(store, stats)
	gate := throttle.New(time.Now)

	streamResolver := resolver.New(registry, transport, tokens, assets, cache, gate, stats, logger)

	lyricsProviders := []lyrics.Provider{
		lyrics.NewLRCLibProvider(httpClient),
		lyrics.NewGeniusProvider(httpClient),
	}
	lyricsResolver := lyrics.New(lyricsProviders, store, logger)

	res := &Resolver{stream: streamResolver, lyricsRes: lyricsResolver, tokens: tokens, store: store}

	if !cfg.DisablePrefetch {
		res.prefetch = prefetch.New(context.Background(), prefetchAdapter{streamResolver}, logger)
	}

	return res, nil
}

// prefetchAdapter satisfies prefetch.Resolver by translating its
// deliberately-duplicated ResolveOptions into resolver.Options, avoiding
// the import cycle a direct dependency would create (see
// internal/prefetch/scheduler.go).
type prefetchAdapter struct {
	res *resolver.Resolver
}

func (a prefetchAdapter) Resolve(ctx context.Context, videoID string, opts prefetch.ResolveOptions) error {
	_, err := a.res.Resolve(ctx, videoID, resolver.Options{Quality: opts.Quality, Metered: opts.Metered})
	return err
}

func openStore(dir string) (kv.Store, error) {
	if dir == "" {
		return memstore.New(), nil
	}
	return badgerstore.Open(dir)
}

// ResolveStream implements spec.md §6's resolveStream(videoId, quality,
// metered) -> Result<StreamInfo>.
func (r *Resolver) ResolveStream(ctx context.Context, videoID string, quality formats.Quality, metered bool) (streamcache.Record, error) {
	return r.stream.Resolve(ctx, videoID, resolver.Options{Quality: quality, Metered: metered})
}

// ResolveDownloadStream implements resolveDownloadStream(videoId) ->
// Result<StreamInfo>.
func (r *Resolver) ResolveDownloadStream(ctx context.Context, videoID string) (streamcache.Record, error) {
	return r.stream.Resolve(ctx, videoID, resolver.Options{Download: true})
}

// Prefetch implements prefetch(videoIds[], quality, metered) -> void.
// It is advisory: per-item failures are logged, never returned.
func (r *Resolver) Prefetch(videoIDs []string, quality formats.Quality, metered bool) {
	if r.prefetch == nil {
		return
	}
	r.prefetch.Enqueue(videoIDs, quality, metered)
}

// ClearStreamCache implements clearStreamCache(videoId) -> void,
// dropping every cached variant for the video.
func (r *Resolver) ClearStreamCache(ctx context.Context, videoID string) {
	r.stream.ClearCache(ctx, videoID, "")
}

// ClearStreamCacheVariant implements clearStreamCache(videoId, variant)
// -> void.
func (r *Resolver) ClearStreamCacheVariant(ctx context.Context, videoID, variant string) {
	r.stream.ClearCache(ctx, videoID, variant)
}

// ResolveLyrics implements resolveLyrics(trackId, title, artist, album?,
// durationSeconds) -> Result<LyricsRecord>.
func (r *Resolver) ResolveLyrics(ctx context.Context, trackID, title, artist string, durationSeconds int) (lyrics.Record, error) {
	return r.lyricsRes.Resolve(ctx, trackID, lyrics.Query{
		Title:      title,
		Artist:     artist,
		DurationMs: int64(durationSeconds) * 1000,
	})
}

// SetLyricsOverride pins a provider as active for a track, sticky until
// cleared, per spec.md §4.10's manual-override flag.
func (r *Resolver) SetLyricsOverride(trackID, provider string) {
	r.lyricsRes.SetOverride(trackID, provider)
}

// InvalidateTokens implements invalidateTokens() -> void.
func (r *Resolver) InvalidateTokens(ctx context.Context) error {
	return r.stream.InvalidateTokens(ctx)
}

// CacheStats implements the public cache analytics operation.
func (r *Resolver) CacheStats() metrics.Stats {
	return r.stream.CacheStats()
}

// Close releases the underlying persistent store and stops the
// background prefetch worker.
func (r *Resolver) Close() error {
	if r.prefetch != nil {
		r.prefetch.Stop()
	}
	return r.store.Close()
}
