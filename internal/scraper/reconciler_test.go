// internal/scraper/reconciler_test.go
package scraper

import (
	"context"
	"reflect"
	"testing"

	"github.com/valpere/LeadScrapexter/internal/browser"
)

func newTestReconciler(structured, visible Strategy) *Reconciler {
	runner := NewRunner(testPlatform(), nil, nil)
	return NewReconciler(runner, structured, visible, testPlatform(), nil)
}

// panicNavPage fails the whole batch: the panic escapes the runner's loop
// before per-URL containment kicks in.
type panicNavPage struct {
	*fakePage
}

func (p *panicNavPage) Navigate(ctx context.Context, url string) error {
	panic("browser process died")
}

func TestReconcileMergePrecedence(t *testing.T) {
	url := "https://x.com/alice"

	structured := &stubStrategy{name: "structured", records: map[string]Record{
		url: {
			"twitter_link":  url,
			"name":          "Alice Example",
			"bio":           "a",
			"followers_num": int64(12300),
			FieldEmails:     []string{"e1"},
		},
	}}
	visible := &stubStrategy{name: "visible", records: map[string]Record{
		url: {
			"twitter_link": url,
			"name":         "", // empty must not clobber
			"bio":          "b",
			FieldEmails:    []string{"e2"},
		},
	}}

	rc := newTestReconciler(structured, visible)
	merged := rc.Reconcile(context.Background(), []string{url}, newFakePage(), newFakePage())

	if len(merged) != 1 {
		t.Fatalf("got %d records, want 1", len(merged))
	}
	record := merged[0]

	if record.String("bio") != "b" {
		t.Errorf("bio = %q, want %q (visible-text value wins scalar collisions)", record.String("bio"), "b")
	}
	if record.String("name") != "Alice Example" {
		t.Errorf("name = %q, empty value must not overwrite existing data", record.String("name"))
	}
	if record["followers_num"] != int64(12300) {
		t.Errorf("followers_num = %v, fields unique to one strategy must survive", record["followers_num"])
	}
	if got := record.StringList(FieldEmails); !reflect.DeepEqual(got, []string{"e1", "e2"}) {
		t.Errorf("emails = %v, want union {e1, e2}", got)
	}
}

func TestReconcileNavigationTimeoutStillMerges(t *testing.T) {
	alice := "https://x.com/alice"
	bob := "https://x.com/bob"

	structured := &stubStrategy{name: "structured", records: map[string]Record{
		alice: {"twitter_link": alice, "name": "Alice"},
		// bob never extracts: his navigation times out below.
	}}
	visible := &stubStrategy{name: "visible", records: map[string]Record{
		alice: {"twitter_link": alice, "main_tweet_text": "hello"},
		bob:   {"twitter_link": bob, "main_tweet_text": "still reachable"},
	}}

	structuredPage := newFakePage()
	structuredPage.navErrs[bob] = browser.ErrNavigationTimeout

	rc := newTestReconciler(structured, visible)
	merged := rc.Reconcile(context.Background(), []string{alice, bob}, structuredPage, newFakePage())

	if len(merged) != 2 {
		t.Fatalf("got %d records, want 2", len(merged))
	}
	if merged[0].Failed() {
		t.Errorf("alice should merge cleanly, got error %q", merged[0].String(FieldError))
	}
	if merged[1].String(FieldError) != ErrNavigationTimeoutTag {
		t.Errorf("bob error = %q, want %q", merged[1].String(FieldError), ErrNavigationTimeoutTag)
	}
	if merged[1].String("main_tweet_text") != "still reachable" {
		t.Error("bob's record must still carry the other strategy's successful fields")
	}
}

func TestReconcileDegradedMergeWhenOneBatchDies(t *testing.T) {
	url := "https://x.com/alice"

	structured := &stubStrategy{name: "structured", records: map[string]Record{}}
	visible := &stubStrategy{name: "visible", records: map[string]Record{
		url: {"twitter_link": url, "bio": "survivor"},
	}}

	rc := newTestReconciler(structured, visible)
	merged := rc.Reconcile(context.Background(), []string{url}, &panicNavPage{newFakePage()}, newFakePage())

	if len(merged) != 1 {
		t.Fatalf("got %d records, want 1", len(merged))
	}
	if merged[0].Failed() {
		t.Errorf("degraded merge from one strategy must not be error-tagged, got %q", merged[0].String(FieldError))
	}
	if merged[0].String("bio") != "survivor" {
		t.Errorf("bio = %q, want the surviving strategy's data", merged[0].String("bio"))
	}
}

func TestReconcileFallbackRecordWhenBothStrategiesLoseURL(t *testing.T) {
	alice := "https://x.com/alice"
	bob := "https://x.com/bob"

	// bob's canned records lack the join field entirely, so neither batch
	// contributes a mergeable record for him.
	structured := &stubStrategy{name: "structured", records: map[string]Record{
		alice: {"twitter_link": alice, "name": "Alice"},
		bob:   {"name": "Bob"},
	}}
	visible := &stubStrategy{name: "visible", records: map[string]Record{
		alice: {"twitter_link": alice},
		bob:   {"bio": "orphan"},
	}}

	rc := newTestReconciler(structured, visible)
	merged := rc.Reconcile(context.Background(), []string{alice, bob}, newFakePage(), newFakePage())

	if len(merged) != 2 {
		t.Fatalf("got %d records, want one per input URL", len(merged))
	}
	if merged[1].String(FieldError) != "extraction failed in both strategies" {
		t.Errorf("bob error = %q, want the fallback tag", merged[1].String(FieldError))
	}
	if merged[1].String("twitter_link") != bob {
		t.Error("fallback record must carry the join field")
	}
	if merged[1].String(FieldPlatform) != "twitter" {
		t.Error("fallback record must carry the platform tag")
	}
}

func TestReconcileEnrichesEntitiesFromMergedText(t *testing.T) {
	url := "https://x.com/alice"

	structured := &stubStrategy{name: "structured", records: map[string]Record{
		url: {"twitter_link": url, "bio": "DMs open. sales@corp.io"},
	}}
	visible := &stubStrategy{name: "visible", records: map[string]Record{
		url: {"twitter_link": url, "main_tweet_text": "Call +1 (212) 555-0100 today"},
	}}

	rc := newTestReconciler(structured, visible)
	merged := rc.Reconcile(context.Background(), []string{url}, newFakePage(), newFakePage())

	record := merged[0]
	if got := record.StringList(FieldEmails); !reflect.DeepEqual(got, []string{"sales@corp.io"}) {
		t.Errorf("emails = %v, want address recovered from merged bio", got)
	}
	if phones := record.StringList(FieldPhones); len(phones) != 1 {
		t.Errorf("phones = %v, want number recovered from merged tweet text", phones)
	}
}

func TestReconcileIdempotent(t *testing.T) {
	url := "https://x.com/alice"

	structured := &stubStrategy{name: "structured", records: map[string]Record{
		url: {"twitter_link": url, "name": "Alice", "bio": "a", FieldScrapedAt: int64(1700000000)},
	}}
	visible := &stubStrategy{name: "visible", records: map[string]Record{
		url: {"twitter_link": url, "bio": "b", FieldScrapedAt: int64(1700000000)},
	}}

	rc := newTestReconciler(structured, visible)

	first := rc.Reconcile(context.Background(), []string{url}, newFakePage(), newFakePage())
	second := rc.Reconcile(context.Background(), []string{url}, newFakePage(), newFakePage())

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated reconciliation diverged:\nfirst:  %v\nsecond: %v", first, second)
	}
}
