package jsonoffload

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPool_DecodesOnWorker(t *testing.T) {
	p := New(2)
	var out struct {
		Name string `json:"name"`
	}
	body := io.NopCloser(strings.NewReader(`{"name":"ok"}`))

	err := p.Decode(context.Background(), body, &out)
	require.NoError(t, err)
	require.Equal(t, "ok", out.Name)
}

func TestPool_InvalidJSON(t *testing.T) {
	p := New(1)
	var out map[string]any
	body := io.NopCloser(strings.NewReader(`not json`))

	err := p.Decode(context.Background(), body, &out)
	require.Error(t, err)
}

func TestPool_CancelledContext(t *testing.T) {
	p := New(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	body := io.NopCloser(strings.NewReader(`{}`))
	err := p.Decode(ctx, body, &struct{}{})
	require.Error(t, err)
}

func TestPool_ConcurrentDecodes(t *testing.T) {
	p := New(4)
	ctx := context.Background()
	errs := make(chan error, 10)

	for i := 0; i < 10; i++ {
		go func() {
			var out map[string]any
			body := io.NopCloser(strings.NewReader(`{"a":1}`))
			errs <- p.Decode(ctx, body, &out)
		}()
	}

	deadline := time.After(2 * time.Second)
	for i := 0; i < 10; i++ {
		select {
		case err := <-errs:
			require.NoError(t, err)
		case <-deadline:
			t.Fatal("timed out waiting for concurrent decodes")
		}
	}
}
