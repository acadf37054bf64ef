// internal/scraper/visible_test.go
package scraper

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/valpere/LeadScrapexter/internal/config"
)

func testVisibleConfig() config.VisibleConfig {
	return config.VisibleConfig{
		ScrollPasses:      2,
		ScrollPause:       time.Millisecond,
		PostSelector:      "article",
		AuthorSelector:    "a.author",
		BioSelector:       "#bio",
		OverlaySelector:   "#consent-dismiss",
		ExcludedLinkPaths: []string{"/i/", "/search"},
	}
}

const profileHTML = `<html><body>
<div id="bio">Building things.  Email me: alice@example.com #golang</div>
<article>
  <div>First tweet text #launch</div>
  <a class="author" href="/alice"></a>
</article>
<article>
  <div>Reply text</div>
  <a class="author" href="/bob"></a>
</article>
<article>
  <div>First tweet text #launch</div>
  <a class="author" href="/alice"></a>
</article>
<a href="/alice/status/1">permalink</a>
<a href="https://twitter.com/alice">legacy domain</a>
<a href="https://example.com/page">blog</a>
<a href="/i/flow/login">login wall</a>
<a href="#top">anchor</a>
<a href="javascript:void(0)">noop</a>
</body></html>`

func TestVisibleExtract(t *testing.T) {
	url := "https://x.com/alice"

	page := newFakePage()
	page.htmlByURL[url] = profileHTML
	page.meta["og:description"] = "Alice | Call +1 212-555-0100"
	if err := page.Navigate(context.Background(), url); err != nil {
		t.Fatal(err)
	}

	strategy := NewVisibleTextStrategy(testPlatform(), testVisibleConfig())
	record := strategy.Extract(context.Background(), page, url)

	if record.Failed() {
		t.Fatalf("unexpected error: %q", record.String(FieldError))
	}

	if record.String("bio") != "Building things. Email me: alice@example.com #golang" {
		t.Errorf("bio = %q", record.String("bio"))
	}
	if record.String("main_tweet_text") != "First tweet text #launch" {
		t.Errorf("main_tweet_text = %q", record.String("main_tweet_text"))
	}
	if got := record.StringList("post_texts"); !reflect.DeepEqual(got, []string{"First tweet text #launch", "Reply text"}) {
		t.Errorf("post_texts = %v (duplicates must collapse in document order)", got)
	}
	if record.String("primary_author") != "@alice" {
		t.Errorf("primary_author = %q", record.String("primary_author"))
	}
	if got := record.StringList("reply_authors"); !reflect.DeepEqual(got, []string{"@bob"}) {
		t.Errorf("reply_authors = %v", got)
	}
}

func TestVisibleLinkClassification(t *testing.T) {
	url := "https://x.com/alice"

	page := newFakePage()
	page.htmlByURL[url] = profileHTML
	if err := page.Navigate(context.Background(), url); err != nil {
		t.Fatal(err)
	}

	strategy := NewVisibleTextStrategy(testPlatform(), testVisibleConfig())
	record := strategy.Extract(context.Background(), page, url)

	// The author anchors inside the articles surface as handles, not links.
	wantInternal := []string{"https://x.com/alice/status/1", "https://twitter.com/alice"}
	if got := record.StringList("internal_links"); !reflect.DeepEqual(got, wantInternal) {
		t.Errorf("internal_links = %v, want %v (author anchors belong to the author set)", got, wantInternal)
	}
	wantExternal := []string{"https://example.com/page"}
	if got := record.StringList("external_links"); !reflect.DeepEqual(got, wantExternal) {
		t.Errorf("external_links = %v, want %v (excluded paths, fragments and javascript: must be dropped)", got, wantExternal)
	}
}

func TestVisibleEntities(t *testing.T) {
	url := "https://x.com/alice"

	page := newFakePage()
	page.htmlByURL[url] = profileHTML
	page.meta["og:description"] = "Alice | Call +1 212-555-0100"
	if err := page.Navigate(context.Background(), url); err != nil {
		t.Fatal(err)
	}

	strategy := NewVisibleTextStrategy(testPlatform(), testVisibleConfig())
	record := strategy.Extract(context.Background(), page, url)

	if got := record.StringList(FieldEmails); !reflect.DeepEqual(got, []string{"alice@example.com"}) {
		t.Errorf("emails = %v", got)
	}
	if got := record.StringList(FieldPhones); !reflect.DeepEqual(got, []string{"+1 212-555-0100"}) {
		t.Errorf("phones = %v", got)
	}
	if got := record.StringList("hashtags"); !reflect.DeepEqual(got, []string{"#golang", "#launch"}) {
		t.Errorf("hashtags = %v", got)
	}
}

func TestVisibleScrollsAndDismissesOverlay(t *testing.T) {
	url := "https://x.com/alice"

	page := newFakePage()
	page.htmlByURL[url] = profileHTML
	if err := page.Navigate(context.Background(), url); err != nil {
		t.Fatal(err)
	}

	cfg := testVisibleConfig()
	strategy := NewVisibleTextStrategy(testPlatform(), cfg)
	strategy.Extract(context.Background(), page, url)

	if page.scrolls != cfg.ScrollPasses {
		t.Errorf("scrolls = %d, want %d", page.scrolls, cfg.ScrollPasses)
	}
	if len(page.clicks) != 1 || page.clicks[0] != cfg.OverlaySelector {
		t.Errorf("clicks = %v, want one attempt on the overlay selector", page.clicks)
	}
}

func TestVisibleDocumentUnavailableTagged(t *testing.T) {
	page := newFakePage() // nothing loaded: HTML() errors

	strategy := NewVisibleTextStrategy(testPlatform(), testVisibleConfig())
	record := strategy.Extract(context.Background(), page, "https://x.com/alice")

	if !record.Failed() {
		t.Error("an unreadable document must produce an error-tagged record")
	}
	if record.String("twitter_link") != "https://x.com/alice" {
		t.Error("error record must still carry the join field")
	}
}
