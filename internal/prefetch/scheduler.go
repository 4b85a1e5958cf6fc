// Package prefetch implements C9: a low-priority, single-worker scheduler
// that warms the stream cache ahead of playback without competing with
// foreground resolves for throttle slots.
package prefetch

import (
	"context"
	"time"

	"github.com/ytmresolve/core/internal/formats"
	"github.com/ytmresolve/core/log"
)

// Resolver is the subset of the stream resolver prefetch needs.
type Resolver interface {
	Resolve(ctx context.Context, videoID string, opts ResolveOptions) error
}

// ResolveOptions mirrors resolver.Options without importing the resolver
// package (which would create an import cycle with the composition
// root); ytmresolve adapts between the two.
type ResolveOptions struct {
	Quality formats.Quality
	Metered bool
}

type job struct {
	videoID string
	opts    ResolveOptions
}

// Scheduler is C9's public surface.
type Scheduler struct {
	resolver Resolver
	logger   log.Logger
	queue    chan job
	done     chan struct{}
}

// New starts a Scheduler with a single background worker. Callers should
// call Stop when shutting down to release the worker goroutine.
func New(ctx context.Context, resolver Resolver, logger log.Logger) *Scheduler {
	if logger == nil {
		logger = log.Nop
	}
	s := &Scheduler{
		resolver: resolver,
		logger:   logger,
		queue:    make(chan job, 256),
		done:     make(chan struct{}),
	}
	go s.run(ctx)
	return s
}

// Enqueue schedules videoIDs for background resolution, in order,
// without blocking the caller (the queue is dropped, not backpressured,
// once full — prefetch is advisory).
func (s *Scheduler) Enqueue(videoIDs []string, quality formats.Quality, metered bool) {
	for _, id := range videoIDs {
		select {
		case s.queue <- job{videoID: id, opts: ResolveOptions{Quality: quality, Metered: metered}}:
		default:
			s.logger.Warnf("prefetch: queue full, dropping %s", id)
		}
	}
}

// Stop releases the background worker. Enqueue after Stop is a no-op
// once the queue drains.
func (s *Scheduler) Stop() {
	close(s.done)
}

func (s *Scheduler) run(ctx context.Context) {
	count := 0
	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if err := s.resolver.Resolve(ctx, j.videoID, j.opts); err != nil {
				s.logger.Debugf("prefetch: %s: %v", j.videoID, err)
			}
			count++
			s.yield(ctx, count)
		}
	}
}

// yield sleeps between prefetch resolves so the scheduler never crowds
// out a foreground request: 50ms for the first three resolves (fast warm
// start), 150ms after, per spec.md §4.9.
func (s *Scheduler) yield(ctx context.Context, count int) {
	d := 150 * time.Millisecond
	if count <= 3 {
		d = 50 * time.Millisecond
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
