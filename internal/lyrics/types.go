// Package lyrics implements C10: searching LRCLib and Genius for lyrics,
// scoring candidates, and exposing a sticky manual-override selection.
package lyrics

import "context"

// SyncedLine is one timed lyric line.
type SyncedLine struct {
	TimeMs uint32
	Text   string
}

// Record is the LyricsRecord data model from spec.md §3.
type Record struct {
	VideoID  string
	Provider string
	Synced   []SyncedLine
	Plain    string
	IsTimed  bool // true if Synced is non-empty and trustworthy
	Score    float64
}

// Query is what a provider needs to search for a lyrics match.
type Query struct {
	Title      string
	Artist     string
	DurationMs int64
}

// Candidate is one unscored result a provider returned.
type Candidate struct {
	Record     Record
	DurationMs int64
}

// Provider is the closed variant spec.md §9 asks for instead of
// reflection: a small, explicit interface every lyrics source
// implements identically.
type Provider interface {
	Name() string
	Search(ctx context.Context, q Query) ([]Candidate, error)
}
