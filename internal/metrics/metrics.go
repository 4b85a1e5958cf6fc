// Package metrics exposes the stream-cache analytics counters spec.md
// §6 lists (hits, misses, networkCalls, hitRate) as real Prometheus
// collectors, alongside the resolver outcome counters the ambient stack
// naturally wants.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// CacheAnalytics tracks the four public counters spec.md §6 requires for
// the stream cache, backed by Prometheus counters for scraping and plain
// atomics for the cheap synchronous snapshot the public CacheStats
// operation returns.
type CacheAnalytics struct {
	hits         atomic.Int64
	misses       atomic.Int64
	networkCalls atomic.Int64

	hitsCounter         prometheus.Counter
	missesCounter       prometheus.Counter
	networkCallsCounter prometheus.Counter
}

// NewCacheAnalytics registers its counters with reg. Pass
// prometheus.NewRegistry() in tests to avoid colliding with the default
// global registry.
func NewCacheAnalytics(reg prometheus.Registerer) *CacheAnalytics {
	c := &CacheAnalytics{
		hitsCounter: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ytmresolve_stream_cache_hits_total",
			Help: "Stream cache lookups satisfied without a network call.",
		}),
		missesCounter: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ytmresolve_stream_cache_misses_total",
			Help: "Stream cache lookups that required resolution.",
		}),
		networkCallsCounter: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ytmresolve_stream_cache_network_calls_total",
			Help: "Outbound InnerTube calls made while resolving a stream.",
		}),
	}
	if reg != nil {
		reg.MustRegister(c.hitsCounter, c.missesCounter, c.networkCallsCounter)
	}
	return c
}

func (c *CacheAnalytics) RecordHit() {
	c.hits.Add(1)
	c.hitsCounter.Inc()
}

func (c *CacheAnalytics) RecordMiss() {
	c.misses.Add(1)
	c.missesCounter.Inc()
}

func (c *CacheAnalytics) RecordNetworkCall() {
	c.networkCalls.Add(1)
	c.networkCallsCounter.Inc()
}

// Stats is the plain-struct snapshot the public CacheStats operation
// returns.
type Stats struct {
	Hits         int64
	Misses       int64
	NetworkCalls int64
	HitRate      float64
}

func (c *CacheAnalytics) Snapshot() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()
	total := hits + misses
	var rate float64
	if total > 0 {
		rate = float64(hits) / float64(total)
	}
	return Stats{
		Hits:         hits,
		Misses:       misses,
		NetworkCalls: c.networkCalls.Load(),
		HitRate:      rate,
	}
}
