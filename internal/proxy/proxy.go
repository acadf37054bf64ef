// internal/proxy/proxy.go

// Package proxy provides health-aware proxy rotation for the browser layer.
// One proxy is chosen per browser launch; callers mark a proxy unhealthy when
// its session keeps failing so the next launch skips it.
package proxy

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// Rotator cycles through a proxy list, skipping entries marked unhealthy.
type Rotator struct {
	proxies []string
	healthy map[string]bool
	mu      sync.Mutex
	index   int
}

// NewRotator validates and stores the proxy list. Entries must be absolute
// URLs (http, https or socks5).
func NewRotator(proxies []string) (*Rotator, error) {
	healthy := make(map[string]bool, len(proxies))
	for _, raw := range proxies {
		parsed, err := url.Parse(strings.TrimSpace(raw))
		if err != nil || parsed.Host == "" {
			return nil, fmt.Errorf("invalid proxy URL: %q", raw)
		}
		switch parsed.Scheme {
		case "http", "https", "socks5":
		default:
			return nil, fmt.Errorf("unsupported proxy scheme %q in %q", parsed.Scheme, raw)
		}
		healthy[raw] = true
	}

	return &Rotator{proxies: proxies, healthy: healthy}, nil
}

// Next returns the next healthy proxy, or "" when the list is empty. With
// every proxy marked unhealthy the first entry is returned anyway; a possibly
// dead proxy beats no proxy once the operator asked for one.
func (r *Rotator) Next() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.proxies) == 0 {
		return ""
	}

	for range r.proxies {
		proxy := r.proxies[r.index]
		r.index = (r.index + 1) % len(r.proxies)
		if r.healthy[proxy] {
			return proxy
		}
	}
	return r.proxies[0]
}

// MarkUnhealthy excludes a proxy from rotation.
func (r *Rotator) MarkUnhealthy(proxy string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.healthy[proxy]; ok {
		r.healthy[proxy] = false
	}
}

// MarkHealthy returns a proxy to rotation.
func (r *Rotator) MarkHealthy(proxy string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.healthy[proxy]; ok {
		r.healthy[proxy] = true
	}
}
