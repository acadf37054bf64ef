// internal/scraper/structured_test.go
package scraper

import (
	"context"
	"testing"
	"time"

	"github.com/valpere/LeadScrapexter/internal/config"
)

func testStructuredConfig() config.StructuredConfig {
	return config.StructuredConfig{
		Selectors: map[string][]string{
			"name":      {"#name-missing", "#name"},
			"handle":    {"#handle"},
			"bio":       {"#bio"},
			"followers": {"#followers"},
			"following": {"#following"},
		},
		SelectorTimeout: 100 * time.Millisecond,
		FailureFields:   []string{"name", "bio"},
	}
}

func TestStructuredExtract(t *testing.T) {
	page := newFakePage()
	page.texts["#name"] = "Alice Example"
	page.texts["#handle"] = "@alice"
	page.texts["#bio"] = "Gopher.  Reach me at alice@example.com"
	page.texts["#followers"] = "12.3K"
	page.texts["#following"] = "1,234"

	strategy := NewStructuredStrategy(testPlatform(), testStructuredConfig())
	record := strategy.Extract(context.Background(), page, "https://x.com/alice")

	if record.Failed() {
		t.Fatalf("unexpected error: %q", record.String(FieldError))
	}
	if record.String("name") != "Alice Example" {
		t.Errorf("name = %q (fallback candidate must win after first selector misses)", record.String("name"))
	}
	if record.String("bio") != "Gopher. Reach me at alice@example.com" {
		t.Errorf("bio = %q, want normalized whitespace", record.String("bio"))
	}
	if record["followers_num"] != int64(12300) {
		t.Errorf("followers_num = %v, want 12300", record["followers_num"])
	}
	if record["following_num"] != int64(1234) {
		t.Errorf("following_num = %v, want 1234", record["following_num"])
	}
	if record.String(FieldPlatform) != "twitter" {
		t.Errorf("platform = %q, want twitter", record.String(FieldPlatform))
	}
	if record.String("twitter_link") != "https://x.com/alice" {
		t.Errorf("join field = %q", record.String("twitter_link"))
	}
}

func TestStructuredHandleFallbackFromURL(t *testing.T) {
	page := newFakePage()
	page.texts["#name"] = "Alice"
	// No #handle text available.

	strategy := NewStructuredStrategy(testPlatform(), testStructuredConfig())
	record := strategy.Extract(context.Background(), page, "https://x.com/alice_dev/")

	if record.String("handle") != "@alice_dev" {
		t.Errorf("handle = %q, want @alice_dev derived from URL path", record.String("handle"))
	}
}

func TestStructuredMissingFieldsAreIndependent(t *testing.T) {
	page := newFakePage()
	page.texts["#name"] = "Alice"
	page.texts["#followers"] = "500"
	// bio and following missing entirely.

	strategy := NewStructuredStrategy(testPlatform(), testStructuredConfig())
	record := strategy.Extract(context.Background(), page, "https://x.com/alice")

	if record.Failed() {
		t.Fatalf("partial extraction must not be an error: %q", record.String(FieldError))
	}
	if record["followers_num"] != int64(500) {
		t.Errorf("followers_num = %v, want 500 despite missing bio", record["followers_num"])
	}
	if record.String("bio") != "" {
		t.Errorf("bio = %q, want empty", record.String("bio"))
	}
}

func TestStructuredTotalFailureTagged(t *testing.T) {
	page := newFakePage() // nothing renders

	strategy := NewStructuredStrategy(testPlatform(), testStructuredConfig())
	record := strategy.Extract(context.Background(), page, "https://x.com/alice")

	if record.String(FieldError) != ErrFailedToExtract {
		t.Errorf("error = %q, want %q", record.String(FieldError), ErrFailedToExtract)
	}
	// Partial fields captured before the failure verdict stay on the record.
	if record.String("handle") != "@alice" {
		t.Errorf("handle = %q, fallback fields must survive the error tag", record.String("handle"))
	}
}

func TestStructuredFailureFieldsConfigurable(t *testing.T) {
	cfg := testStructuredConfig()
	cfg.FailureFields = []string{"name"}

	page := newFakePage()
	page.texts["#bio"] = "still here"

	strategy := NewStructuredStrategy(testPlatform(), cfg)
	record := strategy.Extract(context.Background(), page, "https://x.com/alice")

	if record.String(FieldError) != ErrFailedToExtract {
		t.Error("missing name alone should trigger the configured heuristic")
	}
}
