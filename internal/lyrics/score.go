package lyrics

// providerOutcome is the state a provider's fetch attempt ended in, used
// by scoreRecord per the weights in spec.md §4.10.
type providerOutcome int

const (
	outcomeDone providerOutcome = iota
	outcomeFetching
	outcomeError
	outcomeUnknown
)

// scoreRecord implements the spec.md §4.10 auto-selector bias table:
// provider state contributes ±, having synced/plain lyrics contributes
// +, and LRCLib specifically gets a further +1 bonus for synced lyrics
// (it tends to carry more reliable timing data than Genius's scrape).
func scoreRecord(rec Record, outcome providerOutcome) float64 {
	var score float64
	switch outcome {
	case outcomeDone:
		score += 1
	case outcomeFetching:
		score -= 1
	case outcomeError:
		score -= 2
	case outcomeUnknown:
		score -= 10
	}

	hasSynced := rec.IsTimed && len(rec.Synced) > 0
	hasPlain := rec.Plain != ""
	if hasSynced {
		score += 3
	}
	if hasPlain {
		score += 1
	}

	if rec.Provider == "lrclib" && hasSynced {
		score += 1
	}

	return score
}

// best picks the highest-scoring completed record among candidates that
// actually returned lyrics. Ties keep the first (the caller's provider
// preference order).
func best(results []Record) (Record, bool) {
	var top Record
	var topScore float64
	found := false

	for _, rec := range results {
		if rec.Plain == "" && len(rec.Synced) == 0 {
			continue
		}
		s := scoreRecord(rec, outcomeDone)
		if !found || s > topScore {
			top = rec
			top.Score = s
			topScore = s
			found = true
		}
	}
	return top, found
}

// bestCandidate unwraps a provider's raw Candidates to Records before
// scoring; DurationMs has already done its filtering job in Search.
func bestCandidate(candidates []Candidate) (Record, bool) {
	records := make([]Record, len(candidates))
	for i, c := range candidates {
		records[i] = c.Record
	}
	return best(records)
}
