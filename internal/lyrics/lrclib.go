package lyrics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// LRCLibProvider queries the LRCLib public API, which returns both exact
// (track/artist-keyed) and fuzzy (free-text) matches with synced LRC
// lyrics when available.
type LRCLibProvider struct {
	client  *http.Client
	baseURL string
}

// NewLRCLibProvider builds an LRCLibProvider. client may be nil to use
// http.DefaultClient.
func NewLRCLibProvider(client *http.Client) *LRCLibProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &LRCLibProvider{client: client, baseURL: "https://lrclib.net/api"}
}

func (p *LRCLibProvider) Name() string { return "lrclib" }

type lrclibResult struct {
	TrackName    string `json:"trackName"`
	ArtistName   string `json:"artistName"`
	Duration     float64 `json:"duration"`
	SyncedLyrics string `json:"syncedLyrics"`
	PlainLyrics  string `json:"plainLyrics"`
}

// Search tries an exact /get lookup first, falling back to /search
// (fuzzy free-text) and filtering results whose duration differs from
// the query by more than 15 seconds, per spec.md §4.10.
func (p *LRCLibProvider) Search(ctx context.Context, q Query) ([]Candidate, error) {
	if exact, ok := p.getExact(ctx, q); ok {
		return []Candidate{exact}, nil
	}
	return p.searchFuzzy(ctx, q)
}

func (p *LRCLibProvider) getExact(ctx context.Context, q Query) (Candidate, bool) {
	u := fmt.Sprintf("%s/get?track_name=%s&artist_name=%s", p.baseURL, url.QueryEscape(q.Title), url.QueryEscape(q.Artist))
	var res lrclibResult
	if err := p.fetch(ctx, u, &res); err != nil {
		return Candidate{}, false
	}
	return p.toCandidate(res), true
}

func (p *LRCLibProvider) searchFuzzy(ctx context.Context, q Query) ([]Candidate, error) {
	u := fmt.Sprintf("%s/search?q=%s", p.baseURL, url.QueryEscape(q.Title+" "+q.Artist))
	var results []lrclibResult
	if err := p.fetch(ctx, u, &results); err != nil {
		return nil, fmt.Errorf("lrclib: search: %w", err)
	}

	var candidates []Candidate
	for _, res := range results {
		durationDeltaMs := int64(res.Duration*1000) - q.DurationMs
		if durationDeltaMs < 0 {
			durationDeltaMs = -durationDeltaMs
		}
		if durationDeltaMs > 15_000 {
			continue
		}
		candidates = append(candidates, p.toCandidate(res))
	}
	return candidates, nil
}

func (p *LRCLibProvider) toCandidate(res lrclibResult) Candidate {
	rec := Record{
		Provider: p.Name(),
		Plain:    res.PlainLyrics,
	}
	if res.SyncedLyrics != "" {
		rec.Synced = ParseLRC(res.SyncedLyrics)
		rec.IsTimed = len(rec.Synced) > 0
	}
	return Candidate{Record: rec, DurationMs: int64(res.Duration * 1000)}
}

func (p *LRCLibProvider) fetch(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("lrclib: http %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// ParseLRC parses the [mm:ss.xx]text LRC format into SyncedLines,
// skipping metadata tags and malformed lines rather than failing outright
// — a partially-parsed lyric sheet is still useful.
func ParseLRC(raw string) []SyncedLine {
	var lines []SyncedLine
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "[") {
			continue
		}
		end := strings.Index(line, "]")
		if end < 0 {
			continue
		}
		ts := line[1:end]
		text := strings.TrimSpace(line[end+1:])
		ms, ok := parseLRCTimestamp(ts)
		if !ok {
			continue
		}
		lines = append(lines, SyncedLine{TimeMs: ms, Text: text})
	}
	return lines
}

// parseLRCTimestamp parses "mm:ss.xx" into milliseconds. The fractional
// part's digit count decides its scale, per spec.md §4.10: two digits are
// centiseconds (×10), three digits are already milliseconds.
func parseLRCTimestamp(ts string) (uint32, bool) {
	mmStr, rest, ok := strings.Cut(ts, ":")
	if !ok {
		return 0, false
	}
	ssStr, fracStr, ok := strings.Cut(rest, ".")
	if !ok {
		return 0, false
	}
	mm, err1 := strconv.Atoi(mmStr)
	ss, err2 := strconv.Atoi(ssStr)
	cc, err3 := strconv.Atoi(fracStr)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, false
	}

	var fracMs int
	switch len(fracStr) {
	case 2:
		fracMs = cc * 10
	case 3:
		fracMs = cc
	default:
		return 0, false
	}
	return uint32(mm*60000 + ss*1000 + fracMs), true
}

// EmitLRC serializes SyncedLines back into "[mm:ss.mmm]text" LRC lines,
// the inverse of ParseLRC. It always emits 3-digit milliseconds so that
// parsing its own output round-trips exactly.
func EmitLRC(lines []SyncedLine) string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		mm := l.TimeMs / 60000
		ss := (l.TimeMs % 60000) / 1000
		ms := l.TimeMs % 1000
		out = append(out, fmt.Sprintf("[%02d:%02d.%03d]%s", mm, ss, ms, l.Text))
	}
	return strings.Join(out, "\n")
}
