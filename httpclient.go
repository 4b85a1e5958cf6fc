package ytmresolve

import (
	"fmt"
	"net/http"
	"net/url"
)

// proxiedTransport builds an *http.Transport routing through proxyURL,
// grounded on the teacher's client.defaultHTTPClient.
func proxiedTransport(proxyURL string) (*http.Transport, error) {
	parsed, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("parse proxy url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("proxy url %q missing scheme or host", proxyURL)
	}
	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		base = &http.Transport{}
	}
	transport := base.Clone()
	transport.Proxy = http.ProxyURL(parsed)
	return transport, nil
}
