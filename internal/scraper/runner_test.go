// internal/scraper/runner_test.go
package scraper

import (
	"context"
	"reflect"
	"testing"

	"github.com/valpere/LeadScrapexter/internal/browser"
	"github.com/valpere/LeadScrapexter/internal/config"
)

func testPlatform() config.PlatformConfig {
	return config.PlatformConfig{
		Name:      "twitter",
		Domains:   []string{"twitter.com", "x.com"},
		LinkField: "twitter_link",
	}
}

func TestPrepareURLs(t *testing.T) {
	runner := NewRunner(testPlatform(), nil, nil)

	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "drops empties and off-platform URLs",
			input:    []string{"", "https://x.com/alice", "https://example.com/nope", "  "},
			expected: []string{"https://x.com/alice"},
		},
		{
			name:     "dedupes preserving first occurrence",
			input:    []string{"https://x.com/alice", "https://x.com/bob", "https://x.com/alice"},
			expected: []string{"https://x.com/alice", "https://x.com/bob"},
		},
		{
			name:     "dedupes trailing-slash variants",
			input:    []string{"https://x.com/alice", "https://x.com/alice/"},
			expected: []string{"https://x.com/alice"},
		},
		{
			name:     "trims whitespace",
			input:    []string{"  https://twitter.com/carol  "},
			expected: []string{"https://twitter.com/carol"},
		},
		{
			name:     "accepts subdomains of platform domains",
			input:    []string{"https://mobile.twitter.com/alice"},
			expected: []string{"https://mobile.twitter.com/alice"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := runner.PrepareURLs(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("PrepareURLs(%v) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRunOneRecordPerURLInOrder(t *testing.T) {
	urls := []string{"https://x.com/alice", "https://x.com/bob", "https://x.com/carol"}

	page := newFakePage()
	strategy := &stubStrategy{name: "stub", records: map[string]Record{
		urls[0]: {"twitter_link": urls[0], "bio": "a"},
		urls[1]: {"twitter_link": urls[1], "bio": "b"},
		urls[2]: {"twitter_link": urls[2], "bio": "c"},
	}}

	runner := NewRunner(testPlatform(), nil, nil)
	results := runner.Run(context.Background(), strategy, page, urls)

	if len(results) != len(urls) {
		t.Fatalf("got %d records, want %d", len(results), len(urls))
	}
	for i, url := range urls {
		if results[i].String("twitter_link") != url {
			t.Errorf("result %d = %q, want %q (order must be preserved)", i, results[i].String("twitter_link"), url)
		}
	}
}

func TestRunNavigationTimeoutTagged(t *testing.T) {
	urls := []string{"https://x.com/alice", "https://x.com/bob"}

	page := newFakePage()
	page.navErrs[urls[1]] = browser.ErrNavigationTimeout

	strategy := &stubStrategy{name: "stub", records: map[string]Record{
		urls[0]: {"twitter_link": urls[0], "bio": "a"},
	}}

	runner := NewRunner(testPlatform(), nil, nil)
	results := runner.Run(context.Background(), strategy, page, urls)

	if len(results) != 2 {
		t.Fatalf("got %d records, want 2", len(results))
	}
	if results[0].Failed() {
		t.Errorf("alice should succeed, got error %q", results[0].String(FieldError))
	}
	if results[1].String(FieldError) != ErrNavigationTimeoutTag {
		t.Errorf("bob error = %q, want %q", results[1].String(FieldError), ErrNavigationTimeoutTag)
	}
	if results[1].String("twitter_link") != urls[1] {
		t.Error("error record must still carry the join field")
	}
	if _, ok := results[1][FieldScrapedAt]; !ok {
		t.Error("error record must carry a capture timestamp")
	}
}

func TestRunSurvivesExtractionPanic(t *testing.T) {
	urls := []string{"https://x.com/alice", "https://x.com/broken", "https://x.com/carol"}

	page := newFakePage()
	// stubStrategy panics for /broken: no canned record.
	strategy := &stubStrategy{name: "stub", records: map[string]Record{
		urls[0]: {"twitter_link": urls[0]},
		urls[2]: {"twitter_link": urls[2]},
	}}

	runner := NewRunner(testPlatform(), nil, nil)
	results := runner.Run(context.Background(), strategy, page, urls)

	if len(results) != 3 {
		t.Fatalf("got %d records, want 3 (batch must not abort)", len(results))
	}
	if !results[1].Failed() {
		t.Error("panicking URL must produce an error-tagged record")
	}
	if results[2].Failed() {
		t.Error("URLs after a fault must still be processed")
	}
}

func TestRunOtherNavigationErrorCarriesMessage(t *testing.T) {
	url := "https://x.com/alice"

	page := newFakePage()
	page.navErrs[url] = contextCancelledErr{}

	runner := NewRunner(testPlatform(), nil, nil)
	results := runner.Run(context.Background(), &stubStrategy{name: "stub"}, page, []string{url})

	if len(results) != 1 {
		t.Fatalf("got %d records, want 1", len(results))
	}
	if results[0].String(FieldError) != "connection refused" {
		t.Errorf("error = %q, want the navigation error message", results[0].String(FieldError))
	}
}

type contextCancelledErr struct{}

func (contextCancelledErr) Error() string { return "connection refused" }
