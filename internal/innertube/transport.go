package innertube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/ytmresolve/core/internal/jsonoffload"
)

// Timeouts spec.md §4.2 assigns to each outbound call the transport makes.
const (
	PlayerTimeout    = 15 * time.Second
	HeadTimeout      = 8 * time.Second
	BlobFetchTimeout = 15 * time.Second
)

// HTTPStatusError is returned when InnerTube answers with a non-2xx
// status; the resolver classifies it into one of the typed failure kinds.
type HTTPStatusError struct {
	URL    string
	Status int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("innertube: %s: http %d", e.URL, e.Status)
}

// Transport issues the three kinds of outbound HTTPS calls the resolver
// needs: a player RPC, a HEAD validation probe, and a raw blob fetch (for
// embed pages and player JS). Grounded on the request/response shaping of
// the teacher's client/http_client.go and orchestrator/engine.go fetch
// path, generalized into a standalone, client-owned component.
type Transport struct {
	httpClient *http.Client
	decode     jsonoffload.Pool
	timeout    time.Duration
}

// NewTransport builds a Transport. httpClient may be nil to use a
// sensible default; decode may be nil to decode inline (useful in tests).
func NewTransport(httpClient *http.Client, decode jsonoffload.Pool) *Transport {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Transport{httpClient: httpClient, decode: decode}
}

// SetRequestTimeout overrides PlayerTimeout/HeadTimeout/BlobFetchTimeout
// with a single caller-configured timeout applied to every outbound call.
// A non-positive d restores the per-call defaults.
func (t *Transport) SetRequestTimeout(d time.Duration) {
	t.timeout = d
}

func (t *Transport) timeoutOr(fallback time.Duration) time.Duration {
	if t.timeout > 0 {
		return t.timeout
	}
	return fallback
}

// Player calls POST /youtubei/v1/player impersonating profile and decodes
// the response into a PlayerResponse.
func (t *Transport) Player(ctx context.Context, profile ClientProfile, req *PlayerRequest) (*PlayerResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeoutOr(PlayerTimeout))
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("innertube: marshal player request: %w", err)
	}

	url := fmt.Sprintf("https://%s/youtubei/v1/player?key=%s", profile.Host, profile.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("innertube: build player request: %w", err)
	}
	t.setCommonHeaders(httpReq, profile)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Goog-Api-Format-Version", "2")

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("innertube: player request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &HTTPStatusError{URL: url, Status: resp.StatusCode}
	}

	var out PlayerResponse
	if err := t.decodeBody(ctx, resp.Body, &out); err != nil {
		return nil, fmt.Errorf("innertube: decode player response: %w", err)
	}
	return &out, nil
}

// ValidateStreamURL issues a HEAD request against a candidate stream URL
// to confirm it resolves before it's cached, per spec.md §4.2/§4.8.
func (t *Transport) ValidateStreamURL(ctx context.Context, streamURL string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeoutOr(HeadTimeout))
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, streamURL, nil)
	if err != nil {
		return 0, fmt.Errorf("innertube: build head request: %w", err)
	}
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("innertube: head request: %w", err)
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

// FetchBlob GETs an arbitrary URL (an embed page, player JS) and returns
// the raw body.
func (t *Transport) FetchBlob(ctx context.Context, url string, headers http.Header) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeoutOr(BlobFetchTimeout))
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("innertube: build blob request: %w", err)
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("innertube: blob request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPStatusError{URL: url, Status: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

func (t *Transport) setCommonHeaders(req *http.Request, profile ClientProfile) {
	req.Header.Set("User-Agent", profile.UserAgent)
	req.Header.Set("X-YouTube-Client-Name", fmt.Sprintf("%d", profile.ContextNameID))
	req.Header.Set("X-YouTube-Client-Version", profile.Version)
	req.Header.Set("X-Request-Id", uuid.NewString())
	for k, vs := range profile.Headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
}

func (t *Transport) decodeBody(ctx context.Context, body io.ReadCloser, v any) error {
	if t.decode != nil {
		return t.decode.Decode(ctx, body, v)
	}
	defer body.Close()
	return json.NewDecoder(body).Decode(v)
}
