// Package potoken implements C4, the PoToken Manager: a cached,
// single-flighted origin-token provider backed by a headless-browser
// challenge solve.
package potoken

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ytmresolve/core/internal/browser"
	"github.com/ytmresolve/core/internal/kv"
	"github.com/ytmresolve/core/log"
)

// generationTimeout is the hard ceiling on one browser-driven token
// generation, per spec.md §4.4.
const generationTimeout = 20 * time.Second

// settleWait is how long the manager waits after page load before
// evaluating the challenge script, giving the page's own JS time to
// finish initializing, per spec.md §4.4.
const settleWait = 1500 * time.Millisecond

const (
	keyStreaming = "potoken/streaming_token"
	keyPlayer    = "potoken/player_token"
	keyVisitor   = "potoken/visitor_id"
	keyFetchedAt = "potoken/fetched_at"
)

// BrowserFactory opens a fresh browser.Context for one generation
// attempt. It exists as a factory, not a long-lived field, because
// chromedp sessions are cheap to throw away and expensive to keep
// healthy across unrelated failures.
type BrowserFactory func(ctx context.Context) (browser.Context, error)

// Manager is C4. It holds the single mutable cache of origin tokens a
// process needs; all concurrent callers share one in-flight generation
// via singleflight, satisfying the single-holder-gate invariant without a
// hand-rolled completion channel.
type Manager struct {
	store   kv.Store
	newTab  BrowserFactory
	logger  log.Logger
	sf      singleflight.Group
	mu      sync.Mutex
	state   State
	cached  Tokens
	loaded  bool
}

// NewManager builds a Manager. store persists tokens across process
// restarts; newTab opens a browser context on demand.
func NewManager(store kv.Store, newTab BrowserFactory, logger log.Logger) *Manager {
	if logger == nil {
		logger = log.Nop
	}
	return &Manager{store: store, newTab: newTab, logger: logger, state: StateUninitialized}
}

// State returns the manager's current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Ensure returns a valid token pair, generating (or regenerating) one if
// necessary. Concurrent calls collapse onto a single generation.
func (m *Manager) Ensure(ctx context.Context) (Tokens, error) {
	if t, ok := m.memoryOrPersisted(ctx); ok {
		return t, nil
	}

	m.setState(StateGenerating)
	v, err, _ := m.sf.Do("tokens", func() (any, error) {
		return m.generate(ctx)
	})
	if err != nil {
		m.setState(StateFailed)
		return Tokens{}, err
	}
	t := v.(Tokens)
	m.setState(StateReady)

	m.mu.Lock()
	m.cached = t
	m.loaded = true
	m.mu.Unlock()

	m.persist(ctx, t)
	return t, nil
}

func (m *Manager) memoryOrPersisted(ctx context.Context) (Tokens, bool) {
	m.mu.Lock()
	if m.cached.Valid(time.Now()) {
		t := m.cached
		m.mu.Unlock()
		return t, true
	}
	alreadyLoaded := m.loaded
	m.mu.Unlock()

	if alreadyLoaded {
		return Tokens{}, false
	}

	m.setState(StateLoading)
	t, ok := m.loadPersisted(ctx)
	m.mu.Lock()
	m.loaded = true
	m.mu.Unlock()
	if !ok || !t.Valid(time.Now()) {
		m.setState(StateEmpty)
		return Tokens{}, false
	}

	m.mu.Lock()
	m.cached = t
	m.mu.Unlock()
	m.setState(StateReady)
	return t, true
}

// Invalidate clears the cached and persisted tokens, per the public
// invalidateTokens operation in spec.md §6.
func (m *Manager) Invalidate(ctx context.Context) error {
	m.mu.Lock()
	m.cached = Tokens{}
	m.loaded = false
	m.mu.Unlock()
	m.setState(StateUninitialized)

	for _, k := range []string{keyStreaming, keyPlayer, keyVisitor, keyFetchedAt} {
		if err := m.store.Delete(ctx, k); err != nil {
			return fmt.Errorf("potoken: invalidate: %w", err)
		}
	}
	return nil
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

func (m *Manager) loadPersisted(ctx context.Context) (Tokens, bool) {
	streaming, ok1, _ := m.store.Get(ctx, keyStreaming)
	player, _, _ := m.store.Get(ctx, keyPlayer)
	visitor, _, _ := m.store.Get(ctx, keyVisitor)
	fetchedRaw, _, _ := m.store.Get(ctx, keyFetchedAt)
	if !ok1 || len(streaming) == 0 {
		return Tokens{}, false
	}
	var fetchedAt time.Time
	_ = json.Unmarshal(fetchedRaw, &fetchedAt)
	return Tokens{
		StreamingToken: string(streaming),
		PlayerToken:    string(player),
		VisitorID:      string(visitor),
		FetchedAt:      fetchedAt,
	}, true
}

func (m *Manager) persist(ctx context.Context, t Tokens) {
	fetchedAt, err := json.Marshal(t.FetchedAt)
	if err != nil {
		m.logger.Warnf("potoken: marshal fetched_at: %v", err)
		return
	}
	for k, v := range map[string][]byte{
		keyStreaming: []byte(t.StreamingToken),
		keyPlayer:    []byte(t.PlayerToken),
		keyVisitor:   []byte(t.VisitorID),
		keyFetchedAt: fetchedAt,
	} {
		if err := m.store.Set(ctx, k, v); err != nil {
			m.logger.Warnf("potoken: persist %s: %v", k, err)
		}
	}
}

// generate drives a headless browser through the origin-token challenge
// on music.youtube.com, per spec.md §4.4.
func (m *Manager) generate(parent context.Context) (Tokens, error) {
	ctx, cancel := context.WithTimeout(parent, generationTimeout)
	defer cancel()

	tab, err := m.newTab(ctx)
	if err != nil {
		return Tokens{}, fmt.Errorf("potoken: open browser context: %w", err)
	}
	defer tab.Close()

	if err := tab.LoadURL(ctx, "https://music.youtube.com/"); err != nil {
		return Tokens{}, fmt.Errorf("potoken: load challenge page: %w", err)
	}

	select {
	case <-time.After(settleWait):
	case <-ctx.Done():
		return Tokens{}, ctx.Err()
	}

	raw, err := tab.EvalJavascript(ctx, challengeScript)
	if err != nil {
		return Tokens{}, fmt.Errorf("potoken: evaluate challenge: %w", err)
	}

	var result struct {
		VisitorData      string `json:"visitorData"`
		PlayerPoToken    string `json:"playerPoToken"`
		StreamingPoToken string `json:"streamingPoToken"`
	}
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return Tokens{}, fmt.Errorf("potoken: parse challenge result: %w", err)
	}
	// Tokens become Ready only if visitorData is present, per spec.md
	// §4.4.
	if result.VisitorData == "" {
		return Tokens{}, fmt.Errorf("potoken: challenge produced no visitorData")
	}

	streamingToken := result.StreamingPoToken
	if streamingToken == "" {
		streamingToken = result.VisitorData
	}

	return Tokens{
		StreamingToken: streamingToken,
		PlayerToken:    result.PlayerPoToken,
		VisitorID:      result.VisitorData,
		FetchedAt:      time.Now(),
	}, nil
}

// challengeScript is evaluated in the page after it settles, per
// spec.md §4.4: visitorData comes from ytcfg, the BotGuard-derived
// tokens are scraped out of the inline scripts the page ships rather
// than any JS API, since YouTube Music never exposes them on window.
const challengeScript = `
(function() {
  try {
    var visitorData = '';
    try {
      if (window.ytcfg && typeof window.ytcfg.get === 'function') {
        visitorData = window.ytcfg.get('VISITOR_DATA') || '';
      }
    } catch (e) {}

    var scripts = '';
    var nodes = document.getElementsByTagName('script');
    for (var i = 0; i < nodes.length; i++) {
      scripts += nodes[i].textContent || '';
    }

    function firstMatch(re) {
      var m = re.exec(scripts);
      return m ? m[1] : '';
    }

    var playerPoToken = firstMatch(/"poToken"\s*:\s*"([^"]+)"/);
    if (!playerPoToken) {
      playerPoToken = firstMatch(/"attestationToken"\s*:\s*"([^"]+)"/);
    }
    var streamingPoToken = firstMatch(/botguardData[\s\S]*?"([A-Za-z0-9_-]{20,})"\s*token/);
    if (!streamingPoToken) {
      streamingPoToken = firstMatch(/botguardData[\s\S]{0,500}?token["']?\s*:\s*"([^"]+)"/);
    }

    return JSON.stringify({
      visitorData: visitorData,
      playerPoToken: playerPoToken,
      streamingPoToken: streamingPoToken
    });
  } catch (e) {
    return JSON.stringify({});
  }
})()
`
