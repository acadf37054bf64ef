// internal/browser/types.go

// Package browser provides the headless-browser page capability consumed by
// the extraction pipeline. The pipeline only sees the Page interface; browser
// and tab lifecycle stays here.
package browser

import (
	"context"
	"errors"
	"time"
)

// ErrNavigationTimeout reports that a page did not reach DOM-content-loaded
// within the navigation timeout.
var ErrNavigationTimeout = errors.New("navigation timeout")

// Config defines browser automation configuration.
type Config struct {
	// Visible runs Chrome with a window; the zero value is headless.
	Visible         bool          `yaml:"visible,omitempty" json:"visible,omitempty"`
	UserAgent       string        `yaml:"user_agent,omitempty" json:"user_agent,omitempty"`
	UserDataDir     string        `yaml:"user_data_dir,omitempty" json:"user_data_dir,omitempty"`
	ViewportWidth   int           `yaml:"viewport_width" json:"viewport_width"`
	ViewportHeight  int           `yaml:"viewport_height" json:"viewport_height"`
	NavigateTimeout time.Duration `yaml:"navigate_timeout" json:"navigate_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	DisableImages   bool          `yaml:"disable_images" json:"disable_images"`

	// Proxies lists proxy URLs to rotate across browser launches. Empty
	// means a direct connection.
	Proxies []string `yaml:"proxies,omitempty" json:"proxies,omitempty"`
}

// DefaultConfig returns default browser configuration.
func DefaultConfig() *Config {
	return &Config{
		// UserAgent stays empty so the launcher draws one from the
		// rotation pool.
		ViewportWidth:   1280,
		ViewportHeight:  800,
		NavigateTimeout: 30 * time.Second,
		IdleTimeout:     8 * time.Second,
		DisableImages:   true,
	}
}

// Page is the capability a single extraction strategy drives. Each Page owns
// one browser tab; a Page must not be shared between concurrently running
// strategies.
type Page interface {
	// Navigate loads a URL, waiting for DOM content to be ready. A short
	// network-quiet wait follows and is allowed to fail silently. Returns
	// ErrNavigationTimeout (wrapped) on timeout.
	Navigate(ctx context.Context, url string) error

	// Text waits up to timeout for the selector to become visible and
	// returns the text content of the first match.
	Text(ctx context.Context, selector string, timeout time.Duration) (string, error)

	// Meta returns the content attribute of a <meta property=...> tag, or
	// "" when absent.
	Meta(ctx context.Context, property string) (string, error)

	// HTML returns the rendered page HTML.
	HTML(ctx context.Context) (string, error)

	// ScrollToBottom scrolls the window to the bottom of the document to
	// trigger lazy-loaded content.
	ScrollToBottom(ctx context.Context) error

	// Click waits up to timeout for the selector and clicks the first match.
	Click(ctx context.Context, selector string, timeout time.Duration) error

	// Close releases the tab.
	Close() error
}

// Stats contains page-level automation statistics.
type Stats struct {
	PagesLoaded      int           `json:"pages_loaded"`
	AverageLoadTime  time.Duration `json:"average_load_time"`
	Errors           int           `json:"errors"`
	TimeoutsOccurred int           `json:"timeouts_occurred"`
}
