package ytmresolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ytmresolve/core/config"
)

// TestNew_WiresDefaultComponentsWithoutNetworkAccess confirms the
// composition root builds every component from a zero-value Config
// without reaching the network or a real browser: BrowserFactory is only
// invoked lazily from C4's Ensure, never at construction time.
func TestNew_WiresDefaultComponentsWithoutNetworkAccess(t *testing.T) {
	r, err := New(config.Config{})
	require.NoError(t, err)
	require.NotNil(t, r)
	defer r.Close()

	require.NotNil(t, r.stream)
	require.NotNil(t, r.lyricsRes)
	require.NotNil(t, r.prefetch, "prefetch must be started unless DisablePrefetch is set")
}

func TestNew_DisablePrefetchSkipsScheduler(t *testing.T) {
	r, err := New(config.Config{DisablePrefetch: true})
	require.NoError(t, err)
	defer r.Close()

	require.Nil(t, r.prefetch)
	// Prefetch becomes a silent no-op rather than a nil-pointer panic.
	require.NotPanics(t, func() { r.Prefetch([]string{"abc"}, "auto", false) })
}

func TestClearStreamCache_ClearsBothVariantAndWholeVideo(t *testing.T) {
	r, err := New(config.Config{DisablePrefetch: true})
	require.NoError(t, err)
	defer r.Close()

	ctx := context.Background()
	require.NotPanics(t, func() { r.ClearStreamCache(ctx, "vid1") })
	require.NotPanics(t, func() { r.ClearStreamCacheVariant(ctx, "vid1", "download") })
}

func TestCacheStats_ZeroValueBeforeAnyResolve(t *testing.T) {
	r, err := New(config.Config{DisablePrefetch: true})
	require.NoError(t, err)
	defer r.Close()

	stats := r.CacheStats()
	require.Zero(t, stats.Hits)
	require.Zero(t, stats.Misses)
}
