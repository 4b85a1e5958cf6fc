// Package throttle implements C7: per-client-profile request spacing,
// exponential backoff with jitter, and a 3-failure circuit-open.
package throttle

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// minInterval is the minimum spacing between requests to the same
// profile, per spec.md §4.7/§5.
const minInterval = 1500 * time.Millisecond

// circuitOpenThreshold is the consecutive-failure count at which a
// profile is skipped outright for the current call, per spec.md §4.7/§4.8
// step 5a. It is distinct from backoff, which applies starting at the
// first failure (step 5b).
const circuitOpenThreshold = 3

// baseBackoff and maxBackoff bound the exponential delay spec.md §4.7
// specifies: min(30000, 2000·2^(n-1)) ms for the n-th consecutive failure.
const baseBackoff = 2000 * time.Millisecond
const maxBackoff = 30 * time.Second

// ErrCircuitOpen is returned by Wait when a profile has failed
// circuitOpenThreshold times in a row and its backoff window hasn't
// elapsed yet; the caller should skip this profile for the current call.
type ErrCircuitOpen struct {
	Profile string
	RetryAt time.Time
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("throttle: circuit open for %s until %s", e.Profile, e.RetryAt.Format(time.RFC3339))
}

type profileState struct {
	limiter   *rate.Limiter
	failures  int
	openUntil time.Time
}

// Gate enforces the spacing+backoff+circuit-open policy across every
// client profile the resolver trials. One Gate is shared by all
// concurrent callers; per-profile state is created lazily.
type Gate struct {
	mu    sync.Mutex
	state map[string]*profileState
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New builds a Gate. now is injectable for deterministic tests; pass nil
// to use time.Now.
func New(now func() time.Time) *Gate {
	if now == nil {
		now = time.Now
	}
	g := &Gate{state: make(map[string]*profileState), now: now}
	g.sleep = g.realSleep
	return g
}

func (g *Gate) realSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *Gate) stateFor(profile string) *profileState {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.state[profile]
	if !ok {
		s = &profileState{limiter: rate.NewLimiter(rate.Every(minInterval), 1)}
		g.state[profile] = s
	}
	return s
}

// Wait blocks until profile may be called again. Below circuitOpenThreshold
// it sleeps out the remainder of the failure backoff (spec.md §4.8 step
// 5b) before applying the usual minimum spacing; at or beyond the
// threshold it returns ErrCircuitOpen immediately instead of waiting, so
// the caller skips this profile for the current call (step 5a).
func (g *Gate) Wait(ctx context.Context, profile string) error {
	s := g.stateFor(profile)

	g.mu.Lock()
	failures := s.failures
	openUntil := s.openUntil
	g.mu.Unlock()

	if failures >= circuitOpenThreshold {
		if now := g.now(); now.Before(openUntil) {
			return &ErrCircuitOpen{Profile: profile, RetryAt: openUntil}
		}
	} else if failures > 0 {
		if d := openUntil.Sub(g.now()); d > 0 {
			if err := g.sleep(ctx, d); err != nil {
				return err
			}
		}
	}

	return s.limiter.Wait(ctx)
}

// RecordSuccess resets a profile's failure count, closing its circuit.
func (g *Gate) RecordSuccess(profile string) {
	s := g.stateFor(profile)
	g.mu.Lock()
	s.failures = 0
	s.openUntil = time.Time{}
	g.mu.Unlock()
}

// RecordFailure increments a profile's consecutive-failure count and
// recomputes its backoff window. Backoff applies starting at the first
// failure; circuitOpenThreshold only changes how Wait reacts to it (skip
// vs. sleep-then-proceed), per spec.md §4.8 steps 5a/5b.
func (g *Gate) RecordFailure(profile string) {
	s := g.stateFor(profile)
	g.mu.Lock()
	s.failures++
	s.openUntil = g.now().Add(backoff(s.failures))
	g.mu.Unlock()
}

// backoff computes spec.md §4.7's delay for the n-th consecutive failure:
// min(30000, 2000·2^(n-1)) ms, plus additive jitter of up to a quarter of
// that base.
func backoff(failures int) time.Duration {
	exp := failures - 1
	if exp < 0 {
		exp = 0
	}
	base := math.Min(float64(baseBackoff)*math.Pow(2, float64(exp)), float64(maxBackoff))
	jitter := rand.Float64() * base / 4
	return time.Duration(base + jitter)
}
