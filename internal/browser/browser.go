// Package browser defines the JS-capable browser context interface
// spec.md §6 requires for PoToken generation (C4), plus a chromedp-backed
// default implementation.
package browser

import "context"

// Context is a single navigable, JS-evaluating browser session. A real
// implementation drives a headless Chrome instance; tests can substitute
// a fake that returns canned script results.
type Context interface {
	// LoadURL navigates to url and blocks until the page's load event
	// fires or ctx is canceled.
	LoadURL(ctx context.Context, url string) error
	// EvalJavascript runs script in the page and returns its JSON-ish
	// result as a string.
	EvalJavascript(ctx context.Context, script string) (string, error)
	// Close releases the underlying browser resources.
	Close() error
}
