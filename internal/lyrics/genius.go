package lyrics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// GeniusProvider scrapes Genius song pages. Lyrics aren't behind an API
// there, so it extracts the rendered `data-lyrics-container` blocks and
// falls back to the page's `__PRELOADED_STATE__` JSON blob when the
// markup changes and the container selector misses. Grounded on
// alexander-bruun-Orb's goquery-based page scraping.
type GeniusProvider struct {
	client *http.Client
}

func NewGeniusProvider(client *http.Client) *GeniusProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &GeniusProvider{client: client}
}

func (p *GeniusProvider) Name() string { return "genius" }

func (p *GeniusProvider) Search(ctx context.Context, q Query) ([]Candidate, error) {
	songURL, err := p.findSongURL(ctx, q)
	if err != nil {
		return nil, err
	}
	plain, err := p.scrapeLyrics(ctx, songURL)
	if err != nil {
		return nil, err
	}
	return []Candidate{{
		Record: Record{Provider: p.Name(), Plain: plain},
	}}, nil
}

type geniusSearchResponse struct {
	Response struct {
		Hits []struct {
			Result struct {
				URL string `json:"url"`
			} `json:"result"`
		} `json:"hits"`
	} `json:"response"`
}

func (p *GeniusProvider) findSongURL(ctx context.Context, q Query) (string, error) {
	u := "https://genius.com/api/search/multi?q=" + url.QueryEscape(q.Title+" "+q.Artist)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("genius: search http %d", resp.StatusCode)
	}

	var out geniusSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("genius: decode search: %w", err)
	}
	if len(out.Response.Hits) == 0 || out.Response.Hits[0].Result.URL == "" {
		return "", fmt.Errorf("genius: no results for %q", q.Title)
	}
	return out.Response.Hits[0].Result.URL, nil
}

var preloadedStateRegexp = regexp.MustCompile(`__PRELOADED_STATE__\s*=\s*JSON\.parse\((".*?")\)\s*;`)

func (p *GeniusProvider) scrapeLyrics(ctx context.Context, songURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, songURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("genius: song page http %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("genius: parse page: %w", err)
	}

	if text := extractLyricsContainers(doc); text != "" {
		return text, nil
	}
	if text := extractPreloadedState(doc); text != "" {
		return text, nil
	}
	return "", fmt.Errorf("genius: no lyrics found in page markup")
}

func extractLyricsContainers(doc *goquery.Document) string {
	var b strings.Builder
	doc.Find("[data-lyrics-container]").Each(func(_ int, s *goquery.Selection) {
		b.WriteString(strings.TrimSpace(s.Text()))
		b.WriteString("\n")
	})
	return strings.TrimSpace(b.String())
}

// extractPreloadedState is the fallback path when Genius ships lyrics
// only inside the page's embedded Redux state rather than as rendered
// DOM nodes (a layout variant seen on some song pages).
func extractPreloadedState(doc *goquery.Document) string {
	var raw string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		m := preloadedStateRegexp.FindStringSubmatch(s.Text())
		if len(m) == 2 {
			raw = m[1]
			return false
		}
		return true
	})
	if raw == "" {
		return ""
	}

	var jsonEscaped string
	if err := json.Unmarshal([]byte(raw), &jsonEscaped); err != nil {
		return ""
	}

	var state struct {
		SongPage struct {
			Lyricsdata struct {
				Body struct {
					HTML string `json:"html"`
				} `json:"body"`
			} `json:"lyricsData"`
		} `json:"songPage"`
	}
	if err := json.Unmarshal([]byte(jsonEscaped), &state); err != nil {
		return ""
	}
	if state.SongPage.Lyricsdata.Body.HTML == "" {
		return ""
	}
	fragment, err := goquery.NewDocumentFromReader(strings.NewReader(state.SongPage.Lyricsdata.Body.HTML))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(fragment.Text())
}
