// internal/antidetect/antidetect.go

// Package antidetect provides user-agent rotation for the browser layer.
// Profiles behind aggressive bot walls respond better when successive runs do
// not present an identical browser signature.
package antidetect

import (
	"math/rand"
	"sync"
)

// UserAgentRotator rotates user agents.
type UserAgentRotator struct {
	agents []string
	mu     sync.Mutex
	index  int
}

// NewUserAgentRotator creates a rotator over the given pool, falling back to
// the built-in pool when agents is empty.
func NewUserAgentRotator(agents []string) *UserAgentRotator {
	if len(agents) == 0 {
		agents = defaultUserAgents()
	}
	return &UserAgentRotator{agents: agents}
}

// GetNext returns the next user agent in round-robin order.
func (r *UserAgentRotator) GetNext() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	agent := r.agents[r.index]
	r.index = (r.index + 1) % len(r.agents)
	return agent
}

// GetRandom returns a random user agent.
func (r *UserAgentRotator) GetRandom() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.agents[rand.Intn(len(r.agents))]
}

// defaultUserAgents returns current desktop browser signatures. Mobile agents
// are deliberately absent: the selector sets target the desktop layouts.
func defaultUserAgents() []string {
	return []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	}
}
