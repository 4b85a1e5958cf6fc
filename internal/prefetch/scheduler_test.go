package prefetch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ytmresolve/core/internal/formats"
)

type recordingResolver struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (r *recordingResolver) Resolve(ctx context.Context, videoID string, opts ResolveOptions) error {
	r.mu.Lock()
	r.calls = append(r.calls, videoID)
	r.mu.Unlock()
	return r.err
}

func (r *recordingResolver) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

func waitForCalls(t *testing.T, res *recordingResolver, n int, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if len(res.Calls()) >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d calls, got %d", n, len(res.Calls()))
}

func TestScheduler_EnqueueResolvesInOrder(t *testing.T) {
	res := &recordingResolver{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New(ctx, res, nil)
	defer s.Stop()

	s.Enqueue([]string{"a", "b", "c"}, formats.QualityAuto, false)

	waitForCalls(t, res, 3, 2*time.Second)
	require.Equal(t, []string{"a", "b", "c"}, res.Calls())
}

func TestScheduler_ResolveErrorsDoNotStopTheWorker(t *testing.T) {
	res := &recordingResolver{err: errors.New("boom")}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New(ctx, res, nil)
	defer s.Stop()

	s.Enqueue([]string{"a", "b"}, formats.QualityAuto, false)

	waitForCalls(t, res, 2, 2*time.Second)
}

func TestScheduler_StopHaltsFurtherProcessing(t *testing.T) {
	res := &recordingResolver{}
	ctx := context.Background()

	s := New(ctx, res, nil)
	s.Enqueue([]string{"a"}, formats.QualityAuto, false)
	waitForCalls(t, res, 1, 2*time.Second)

	s.Stop()
	time.Sleep(20 * time.Millisecond) // let the worker goroutine observe done

	s.Enqueue([]string{"b"}, formats.QualityAuto, false)
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, []string{"a"}, res.Calls(), "a stopped scheduler must not resolve items enqueued afterward")
}

func TestScheduler_EnqueueDropsOnceQueueFull(t *testing.T) {
	// block the worker on the very first job so the queue backs up
	block := make(chan struct{})
	blockingRes := resolveFunc(func(ctx context.Context, videoID string, opts ResolveOptions) error {
		if videoID == "first" {
			<-block
		}
		return nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New(ctx, blockingRes, nil)
	defer func() {
		close(block)
		s.Stop()
	}()

	s.Enqueue([]string{"first"}, formats.QualityAuto, false)
	time.Sleep(10 * time.Millisecond) // let the worker pick up "first" and block

	ids := make([]string, 300)
	for i := range ids {
		ids[i] = "filler"
	}
	require.NotPanics(t, func() {
		s.Enqueue(ids, formats.QualityAuto, false)
	}, "enqueue past capacity must drop, not block or panic")
}

type resolveFunc func(ctx context.Context, videoID string, opts ResolveOptions) error

func (f resolveFunc) Resolve(ctx context.Context, videoID string, opts ResolveOptions) error {
	return f(ctx, videoID, opts)
}
