package formats

import "sort"

// Quality is the playback quality tier a caller requests.
type Quality string

const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
	QualityMax    Quality = "max"
	QualityAuto   Quality = "auto"
)

var qualityFactor = map[Quality]float64{
	QualityLow:    0.3,
	QualityMedium: 0.6,
	QualityHigh:   1.0,
	QualityMax:    1.5,
	QualityAuto:   1.0,
}

const (
	opusBonus     = 10240.0
	meteredFactor = 0.5
)

// audioOnly returns the adaptive, audio-having, non-video, non-live
// candidates from a parsed format list — the only ones the resolver ever
// scores.
func audioOnly(candidates []Format) []Format {
	out := make([]Format, 0, len(candidates))
	for _, f := range candidates {
		if !f.HasAudio || f.HasVideo || f.ThisIsLive {
			continue
		}
		out = append(out, f)
	}
	return out
}

func isOpus(f Format) bool {
	for _, c := range f.Codecs {
		if len(c) >= 4 && (c[:4] == "opus" || c == "opus") {
			return true
		}
	}
	return false
}

// score implements spec.md §4.5's ranking formula:
// bitrate × qualityFactor + 10240·isOpus, with a metered override that
// unconditionally replaces the requested quality's factor with 0.5.
func score(f Format, quality Quality, metered bool) float64 {
	factor, ok := qualityFactor[quality]
	if !ok {
		factor = qualityFactor[QualityAuto]
	}
	if metered {
		factor = meteredFactor
	}
	s := float64(f.Bitrate) * factor
	if isOpus(f) {
		s += opusBonus
	}
	return s
}

// SelectPlayback picks the best audio-only variant for live playback
// under the requested quality/metered constraints.
func SelectPlayback(candidates []Format, quality Quality, metered bool) (Format, bool) {
	pool := audioOnly(candidates)
	if len(pool) == 0 {
		return Format{}, false
	}
	sort.Slice(pool, func(i, j int) bool {
		return score(pool[i], quality, metered) > score(pool[j], quality, metered)
	})
	return pool[0], true
}

// SelectDownload picks the best audio-only variant for offline download:
// Opus-first, then AAC, by bitrate within the chosen codec family. It
// intentionally ignores the metered flag — spec.md keeps this source
// behavior rather than "fixing" it; see DESIGN.md Open Question 2.
func SelectDownload(candidates []Format) (Format, bool) {
	pool := audioOnly(candidates)
	if len(pool) == 0 {
		return Format{}, false
	}

	var opusPool, aacPool []Format
	for _, f := range pool {
		if isOpus(f) {
			opusPool = append(opusPool, f)
		} else {
			aacPool = append(aacPool, f)
		}
	}

	byBitrateDesc := func(fs []Format) (Format, bool) {
		if len(fs) == 0 {
			return Format{}, false
		}
		sort.Slice(fs, func(i, j int) bool { return fs[i].Bitrate > fs[j].Bitrate })
		return fs[0], true
	}

	if best, ok := byBitrateDesc(opusPool); ok {
		return best, true
	}
	return byBitrateDesc(aacPool)
}
