// Package config holds the typed configuration used to construct the
// root ytmresolve.Resolver, generalizing the teacher's client.Config
// (a flat struct of optional overrides) to the larger set of components
// spec.md's composition root wires together.
package config

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ytmresolve/core/internal/browser"
	"github.com/ytmresolve/core/log"
)

// Config configures every component the composition root builds.
type Config struct {
	// HTTPClient is shared by all outbound RPC/HTTP calls. If nil,
	// http.DefaultClient is used.
	HTTPClient *http.Client

	// ProxyURL is an optional proxy applied when HTTPClient is nil and a
	// client is built internally.
	ProxyURL string

	// StreamCacheDir, if set, opens a badger-backed persistent store at
	// this path for the stream cache, PoToken storage, and the lyrics
	// cache. If empty, an in-memory store is used instead (no
	// persistence across process restarts).
	StreamCacheDir string

	// BrowserFactory builds the JS-capable browser context C4 uses to
	// generate PoTokens. If nil, chromedp's default implementation is
	// used.
	BrowserFactory func() (browser.Context, error)

	// DisablePrefetch turns off the C9 background warming scheduler.
	DisablePrefetch bool

	// MetricsRegisterer receives the Prometheus collectors the stream
	// cache registers. If nil, collectors are created but never
	// registered for scraping.
	MetricsRegisterer prometheus.Registerer

	// RequestTimeout bounds each outbound player/validate/blob request.
	// Zero uses the package defaults (see internal/innertube).
	RequestTimeout time.Duration

	// Logger receives structured log output from every component. If
	// nil, a no-op logger is used.
	Logger log.Logger
}
