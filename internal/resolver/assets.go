package resolver

import (
	"context"
	"sync"

	"github.com/ytmresolve/core/internal/playerjs"
)

// playerAssets is the default Assets implementation: it resolves a
// video's embed page to find the current player JS, then delegates to C3
// for cipher steps and the sts constant. Player URL lookups are cached
// per video for the process lifetime since a given upload's embed page
// names a stable player JS revision for long stretches.
type playerAssets struct {
	resolver playerjs.Resolver

	mu         sync.Mutex
	playerURLs map[string]string
}

// NewPlayerAssets builds an Assets implementation backed by a
// playerjs.Resolver.
func NewPlayerAssets(resolver playerjs.Resolver) Assets {
	return &playerAssets{resolver: resolver, playerURLs: make(map[string]string)}
}

func (a *playerAssets) playerJS(ctx context.Context, videoID string) ([]byte, error) {
	a.mu.Lock()
	playerURL, ok := a.playerURLs[videoID]
	a.mu.Unlock()

	if !ok {
		u, err := a.resolver.GetPlayerURL(ctx, videoID)
		if err != nil {
			return nil, err
		}
		playerURL = u
		a.mu.Lock()
		a.playerURLs[videoID] = playerURL
		a.mu.Unlock()
	}

	body, err := a.resolver.GetPlayerJS(ctx, playerURL)
	if err != nil {
		return nil, err
	}
	return []byte(body), nil
}

func (a *playerAssets) CipherSteps(ctx context.Context, videoID string) (playerjs.CipherSteps, error) {
	jsBody, err := a.playerJS(ctx, videoID)
	if err != nil {
		return nil, err
	}
	return playerjs.ExtractCipherSteps(jsBody)
}

func (a *playerAssets) SignatureTimestamp(ctx context.Context, videoID string) (int, error) {
	jsBody, err := a.playerJS(ctx, videoID)
	if err != nil {
		return playerjs.DefaultSignatureTimestamp, err
	}
	return playerjs.ExtractSignatureTimestamp(jsBody), nil
}
