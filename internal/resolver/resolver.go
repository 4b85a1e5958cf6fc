// Package resolver implements C8, the Stream Resolver: the orchestration
// of C1-C7 that turns a video id into a playable or downloadable stream
// URL. Grounded on the teacher's internal/orchestrator/engine.go for the
// overall "loop over profiles, build a request, classify the response"
// shape, but deliberately sequential and throttled rather than the
// teacher's hedged-parallel tryPhase — see DESIGN.md.
package resolver

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/ytmresolve/core/internal/formats"
	"github.com/ytmresolve/core/internal/innertube"
	"github.com/ytmresolve/core/internal/metrics"
	"github.com/ytmresolve/core/internal/playerjs"
	"github.com/ytmresolve/core/internal/potoken"
	"github.com/ytmresolve/core/internal/streamcache"
	"github.com/ytmresolve/core/internal/throttle"
	"github.com/ytmresolve/core/log"
)

// PlayabilityVerdict is the outcome of one profile attempt, per spec.md
// §3.
type PlayabilityVerdict struct {
	OK      bool
	Reason  string
	Profile string
}

// Options carries the per-call knobs resolveStream/resolveDownloadStream
// accept.
type Options struct {
	Quality formats.Quality
	Metered bool
	// Download selects the download-mode format selector (Opus-first,
	// metered-ignoring) instead of the playback selector.
	Download bool
}

// Assets resolves the player JS-derived material (cipher steps, sts) a
// profile needs to decipher and stamp requests. It exists as an
// interface so the resolver doesn't hard-depend on a live HTTP fetch in
// tests.
type Assets interface {
	CipherSteps(ctx context.Context, videoID string) (playerjs.CipherSteps, error)
	SignatureTimestamp(ctx context.Context, videoID string) (int, error)
}

// Resolver is C8's public orchestration surface.
type Resolver struct {
	registry  innertube.Registry
	transport *innertube.Transport
	tokens    *potoken.Manager
	assets    Assets
	cache     *streamcache.Cache
	gate      *throttle.Gate
	stats     *metrics.CacheAnalytics
	logger    log.Logger
}

// New builds a Resolver from its constituent components. All arguments
// are required except logger and stats.
func New(
	registry innertube.Registry,
	transport *innertube.Transport,
	tokens *potoken.Manager,
	assets Assets,
	cache *streamcache.Cache,
	gate *throttle.Gate,
	stats *metrics.CacheAnalytics,
	logger log.Logger,
) *Resolver {
	if logger == nil {
		logger = log.Nop
	}
	return &Resolver{
		registry: registry, transport: transport, tokens: tokens,
		assets: assets, cache: cache, gate: gate, stats: stats, logger: logger,
	}
}

func variantKey(download bool, quality formats.Quality) string {
	if download {
		return "download"
	}
	return "playback:" + string(quality)
}

// Resolve implements spec.md §4.8's eleven-step algorithm: cache check,
// sequential per-profile trial with throttling, on-demand token/cipher
// material, format selection, HEAD validation, and cache write.
func (r *Resolver) Resolve(ctx context.Context, videoID string, opts Options) (streamcache.Record, error) {
	variant := variantKey(opts.Download, opts.Quality)

	if rec, ok := r.cache.Get(ctx, videoID, variant); ok {
		return rec, nil
	}

	var lastFailure *Failure
	for _, profile := range r.registry.PlaybackOrder() {
		rec, err := r.tryProfile(ctx, profile, videoID, variant, opts, true)
		if err == nil {
			r.cache.Put(ctx, rec)
			return rec, nil
		}

		var f *Failure
		if asFailure(err, &f) {
			lastFailure = f
		} else {
			lastFailure = &Failure{Kind: FailureTransient, Reason: err.Error(), Profile: profile.Name}
		}
		// Every non-OK outcome, including ContentRefused, simply moves to
		// the next profile in declared order; ContentRefused is only
		// surfaced once every profile has been tried. See DESIGN.md Open
		// Question 1.
	}

	if lastFailure == nil {
		lastFailure = &Failure{Kind: FailureNoSuitableFormat, Reason: "no client profile produced a format"}
	}
	return streamcache.Record{}, lastFailure
}

func asFailure(err error, out **Failure) bool {
	f, ok := err.(*Failure)
	if ok {
		*out = f
	}
	return ok
}

// tryProfile runs one profile's full attempt: throttle, token ensure,
// request, classify, select, validate. allowRetry gates the single
// post-token-generation retry spec.md §4.8 step 5e allows.
func (r *Resolver) tryProfile(ctx context.Context, profile innertube.ClientProfile, videoID, variant string, opts Options, allowRetry bool) (streamcache.Record, error) {
	if err := r.gate.Wait(ctx, profile.Name); err != nil {
		return streamcache.Record{}, &Failure{Kind: FailureTransient, Reason: err.Error(), Profile: profile.Name}
	}

	var tok potoken.Tokens
	if profile.NeedsOriginToken {
		t, err := r.tokens.Ensure(ctx)
		if err != nil {
			r.gate.RecordFailure(profile.Name)
			return streamcache.Record{}, &Failure{Kind: FailureNeedsOriginToken, Reason: err.Error(), Profile: profile.Name}
		}
		tok = t
	}

	reqOpts := innertube.PlayerRequestOptions{VisitorID: tok.VisitorID}
	if profile.SupportsSignatureCipher {
		if sts, err := r.assets.SignatureTimestamp(ctx, videoID); err == nil {
			reqOpts.SignatureTimestamp = sts
		}
	}

	req := innertube.NewPlayerRequest(profile, videoID, reqOpts)
	if profile.NeedsOriginToken && tok.StreamingToken != "" {
		// Only token-bound profiles ever get pot= attached — the fix
		// spec.md's Open Question 3 asked for.
		req.SetPoToken(tok.StreamingToken)
	}

	resp, err := r.transport.Player(ctx, profile, req)
	if r.stats != nil {
		r.stats.RecordNetworkCall()
	}
	if err != nil {
		r.gate.RecordFailure(profile.Name)
		return streamcache.Record{}, &Failure{Kind: FailureTransient, Reason: err.Error(), Profile: profile.Name}
	}

	if !resp.PlayabilityStatus.IsOK() {
		r.gate.RecordFailure(profile.Name)
		if allowRetry && profile.NeedsOriginToken && isBotCheck(resp.PlayabilityStatus.Reason) {
			if err := r.tokens.Invalidate(ctx); err == nil {
				return r.tryProfile(ctx, profile, videoID, variant, opts, false)
			}
		}
		return streamcache.Record{}, &Failure{
			Kind: FailureContentRefused, Reason: resp.PlayabilityStatus.Reason, Profile: profile.Name,
		}
	}
	r.gate.RecordSuccess(profile.Name)

	raw := formats.Parse(resp)
	if len(raw) == 0 {
		raw = r.parseManifestFallback(ctx, resp)
	}
	selected, ok := r.selectFormat(raw, opts)
	if !ok {
		return streamcache.Record{}, &Failure{Kind: FailureNoSuitableFormat, Reason: "no audio variant matched", Profile: profile.Name}
	}

	streamURL, err := r.finalizeURL(ctx, selected, profile, videoID)
	if err != nil {
		return streamcache.Record{}, &Failure{Kind: FailureTransient, Reason: err.Error(), Profile: profile.Name}
	}

	if status, err := r.transport.ValidateStreamURL(ctx, streamURL); err != nil || status >= 400 {
		return streamcache.Record{}, &Failure{Kind: FailureTransient, Reason: fmt.Sprintf("head validation failed: status=%d err=%v", status, err), Profile: profile.Name}
	}

	expiresIn := 21600 * time.Second // 6h default if the response omits it
	if resp.StreamingData.ExpiresInSeconds != "" {
		if secs, err := strconv.Atoi(resp.StreamingData.ExpiresInSeconds); err == nil {
			expiresIn = time.Duration(secs) * time.Second
		}
	}

	return streamcache.Record{
		VideoID:    videoID,
		Variant:    variant,
		URL:        streamURL,
		ExpiresAt:  time.Now().Add(expiresIn),
		FetchedVia: profile.Name,
	}, nil
}

// parseManifestFallback covers the case where a player response carries
// no direct formats/adaptiveFormats array (typically a live or
// post-live stream) and instead points at a DASH or HLS manifest.
// Fetched via the same Transport so the fallback goes through the same
// timeout/throttle-adjacent path as every other outbound call.
func (r *Resolver) parseManifestFallback(ctx context.Context, resp *innertube.PlayerResponse) []formats.Format {
	if u := resp.StreamingData.HlsManifestURL; u != "" {
		body, err := r.transport.FetchBlob(ctx, u, nil)
		if err == nil {
			if parsed, err := formats.ParseHLSManifest(string(body), u); err == nil && len(parsed) > 0 {
				formats.SortByBest(parsed)
				return parsed
			}
		}
	}
	if u := resp.StreamingData.DashManifestURL; u != "" {
		body, err := r.transport.FetchBlob(ctx, u, nil)
		if err == nil {
			if parsed, err := formats.ParseDASHManifest(string(body), u); err == nil && len(parsed) > 0 {
				formats.SortByBest(parsed)
				return parsed
			}
		}
	}
	return nil
}

func (r *Resolver) selectFormat(raw []formats.Format, opts Options) (formats.Format, bool) {
	if opts.Download {
		return formats.SelectDownload(raw)
	}
	return formats.SelectPlayback(raw, opts.Quality, opts.Metered)
}

// finalizeURL returns a playable URL for the selected format: either its
// bare URL, or the signature-ciphered URL deciphered via C3.
func (r *Resolver) finalizeURL(ctx context.Context, f formats.Format, profile innertube.ClientProfile, videoID string) (string, error) {
	if f.URL != "" {
		return f.URL, nil
	}
	cipherPayload := f.SignatureCipher
	if cipherPayload == "" {
		cipherPayload = f.Cipher
	}
	if cipherPayload == "" {
		return "", fmt.Errorf("format %d has no url and no signature cipher", f.Itag)
	}

	values, err := url.ParseQuery(cipherPayload)
	if err != nil {
		return "", fmt.Errorf("parse signature cipher: %w", err)
	}

	steps, err := r.assets.CipherSteps(ctx, videoID)
	if err != nil {
		return "", fmt.Errorf("cipher steps: %w", err)
	}

	sig := steps.Apply(values.Get("s"))
	streamURL, err := url.Parse(values.Get("url"))
	if err != nil {
		return "", fmt.Errorf("parse cipher url: %w", err)
	}
	q := streamURL.Query()
	sp := values.Get("sp")
	if sp == "" {
		sp = "signature"
	}
	q.Set(sp, sig)
	streamURL.RawQuery = q.Encode()
	return streamURL.String(), nil
}

// ClearCache implements clearStreamCache / clearStreamCache(variant).
func (r *Resolver) ClearCache(ctx context.Context, videoID string, variant string) {
	r.cache.Clear(ctx, videoID, variant)
}

// CacheStats implements the public cache analytics operation.
func (r *Resolver) CacheStats() metrics.Stats {
	if r.stats == nil {
		return metrics.Stats{}
	}
	return r.stats.Snapshot()
}

// InvalidateTokens implements the public invalidateTokens operation.
func (r *Resolver) InvalidateTokens(ctx context.Context) error {
	return r.tokens.Invalidate(ctx)
}
