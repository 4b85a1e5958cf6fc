package streamcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ytmresolve/core/internal/kv/memstore"
)

func TestCache_PutThenGet(t *testing.T) {
	c := New(memstore.New(), nil)
	ctx := context.Background()

	rec := Record{VideoID: "v1", Variant: "playback:auto", URL: "https://example/v1", ExpiresAt: time.Now().Add(time.Hour)}
	c.Put(ctx, rec)

	got, ok := c.Get(ctx, "v1", "playback:auto")
	require.True(t, ok)
	require.Equal(t, rec.URL, got.URL)
}

func TestCache_ExpiryGuardRejectsNearExpiry(t *testing.T) {
	c := New(memstore.New(), nil)
	ctx := context.Background()

	rec := Record{VideoID: "v1", Variant: "playback:auto", URL: "https://example/v1", ExpiresAt: time.Now().Add(10 * time.Second)}
	c.Put(ctx, rec)

	_, ok := c.Get(ctx, "v1", "playback:auto")
	require.False(t, ok, "a record with under 30s left should not be served")
}

func TestCache_PromotesFromPersistentTier(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()

	writer := New(store, nil)
	writer.Put(ctx, Record{VideoID: "v2", Variant: "download", URL: "https://example/v2", ExpiresAt: time.Now().Add(time.Hour)})

	reader := New(store, nil) // fresh Cache, empty memory tier, shared persistent store
	got, ok := reader.Get(ctx, "v2", "download")
	require.True(t, ok)
	require.Equal(t, "https://example/v2", got.URL)
}

func TestCache_ClearSingleVariant(t *testing.T) {
	c := New(memstore.New(), nil)
	ctx := context.Background()

	c.Put(ctx, Record{VideoID: "v3", Variant: "playback:auto", URL: "a", ExpiresAt: time.Now().Add(time.Hour)})
	c.Put(ctx, Record{VideoID: "v3", Variant: "download", URL: "b", ExpiresAt: time.Now().Add(time.Hour)})

	c.Clear(ctx, "v3", "download")

	_, ok := c.Get(ctx, "v3", "download")
	require.False(t, ok)
	_, ok = c.Get(ctx, "v3", "playback:auto")
	require.True(t, ok, "clearing one variant must not touch the other")
}

func TestCache_ClearAllVariants(t *testing.T) {
	c := New(memstore.New(), nil)
	ctx := context.Background()

	c.Put(ctx, Record{VideoID: "v4", Variant: "playback:auto", URL: "a", ExpiresAt: time.Now().Add(time.Hour)})
	c.Put(ctx, Record{VideoID: "v4", Variant: "download", URL: "b", ExpiresAt: time.Now().Add(time.Hour)})

	c.Clear(ctx, "v4", "")

	_, ok := c.Get(ctx, "v4", "playback:auto")
	require.False(t, ok)
	_, ok = c.Get(ctx, "v4", "download")
	require.False(t, ok)
}

func TestCache_EvictsLRUBeyondCap(t *testing.T) {
	c := New(nil, nil)
	ctx := context.Background()

	for i := 0; i < maxEntries+10; i++ {
		id := string(rune('a' + i%26))
		c.Put(ctx, Record{VideoID: id, Variant: string(rune(i)), URL: "u", ExpiresAt: time.Now().Add(time.Hour)})
	}

	c.mu.Lock()
	n := len(c.entries)
	c.mu.Unlock()
	require.LessOrEqual(t, n, maxEntries)
}
