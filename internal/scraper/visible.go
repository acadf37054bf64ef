// internal/scraper/visible.go
package scraper

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/valpere/LeadScrapexter/internal/browser"
	"github.com/valpere/LeadScrapexter/internal/config"
	"github.com/valpere/LeadScrapexter/internal/textutil"
	"github.com/valpere/LeadScrapexter/internal/utils"
)

var visibleLogger = utils.NewComponentLogger("visible-strategy")

// VisibleTextStrategy reads everything a human would see: it scrolls to
// trigger lazy content, then parses the rendered HTML for post texts, author
// handles and hyperlinks, and feeds the combined text through the entity
// extractor.
type VisibleTextStrategy struct {
	platform  string
	linkField string
	domains   []string
	cfg       config.VisibleConfig
}

// NewVisibleTextStrategy creates the visible-text strategy.
func NewVisibleTextStrategy(platform config.PlatformConfig, cfg config.VisibleConfig) *VisibleTextStrategy {
	return &VisibleTextStrategy{
		platform:  platform.Name,
		linkField: platform.LinkField,
		domains:   platform.Domains,
		cfg:       cfg,
	}
}

// Name implements Strategy.
func (s *VisibleTextStrategy) Name() string { return "visible_text" }

// Extract implements Strategy. The page must already be positioned at url.
func (s *VisibleTextStrategy) Extract(ctx context.Context, page browser.Page, url string) Record {
	record := NewRecord(s.platform, s.linkField, url)

	s.dismissOverlay(ctx, page)
	s.scroll(ctx, page)

	html, err := page.HTML(ctx)
	if err != nil {
		record[FieldError] = err.Error()
		return record
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		record[FieldError] = err.Error()
		return record
	}

	bio := textutil.NormalizeWhitespace(doc.Find(s.cfg.BioSelector).First().Text())
	record["bio"] = bio

	postTexts, authors := s.collectPosts(doc)
	if len(postTexts) > 0 {
		record["main_tweet_text"] = postTexts[0]
		record["post_texts"] = postTexts
	}
	if len(authors) > 0 {
		record["primary_author"] = authors[0]
		record["reply_authors"] = authors[1:]
	}

	internal, external := s.collectLinks(doc, url)
	record["internal_links"] = internal
	record["external_links"] = external

	ogDesc, _ := page.Meta(ctx, "og:description")

	blob := strings.Join(append([]string{bio, ogDesc}, postTexts...), " ")
	entities := textutil.ExtractEntities(blob)
	record[FieldEmails] = entities.Emails
	record[FieldPhones] = entities.Phones
	record["hashtags"] = entities.Hashtags

	return record
}

// dismissOverlay clicks the configured overlay selector if one is present.
// Failure is ignored by design: this is the single allowed-to-fail side
// effect, kept narrow so real extraction bugs are not hidden.
func (s *VisibleTextStrategy) dismissOverlay(ctx context.Context, page browser.Page) {
	if s.cfg.OverlaySelector == "" {
		return
	}
	if err := page.Click(ctx, s.cfg.OverlaySelector, time.Second); err != nil {
		visibleLogger.Debugf("no overlay to dismiss: %v", err)
	}
}

// scroll performs the configured number of scroll-and-wait cycles to trigger
// lazy-loaded content.
func (s *VisibleTextStrategy) scroll(ctx context.Context, page browser.Page) {
	for i := 0; i < s.cfg.ScrollPasses; i++ {
		if err := page.ScrollToBottom(ctx); err != nil {
			visibleLogger.Debugf("scroll pass %d failed: %v", i+1, err)
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.cfg.ScrollPause):
		}
	}
}

// collectPosts gathers normalized post texts and their author handles,
// deduplicated in document order. The first distinct author is the page's
// primary author; the rest are reply authors.
func (s *VisibleTextStrategy) collectPosts(doc *goquery.Document) (texts, authors []string) {
	doc.Find(s.cfg.PostSelector).Each(func(i int, post *goquery.Selection) {
		if text := textutil.NormalizeWhitespace(post.Text()); text != "" {
			texts = append(texts, text)
		}

		author := post.Find(s.cfg.AuthorSelector).First()
		if href, ok := author.Attr("href"); ok {
			if segment := utils.LastPathSegment(href); segment != "" {
				authors = append(authors, "@"+segment)
				return
			}
		}
		if handle := textutil.NormalizeWhitespace(author.Text()); strings.HasPrefix(handle, "@") {
			authors = append(authors, handle)
		}
	})

	return textutil.Dedupe(texts), textutil.Dedupe(authors)
}

// collectLinks gathers every hyperlink on the page, resolves relative ones
// against the page URL, filters known non-content paths and classifies the
// rest as same-site or external. Both lists are deduplicated independently.
func (s *VisibleTextStrategy) collectLinks(doc *goquery.Document, pageURL string) (internal, external []string) {
	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}

	doc.Find("a[href]").Each(func(i int, a *goquery.Selection) {
		// Author anchors are harvested as handles by collectPosts; listing
		// them again as internal links would just echo the author set.
		if s.cfg.AuthorSelector != "" && a.Is(s.cfg.AuthorSelector) {
			return
		}

		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		if base != nil {
			ref = base.ResolveReference(ref)
		}
		if ref.Scheme != "http" && ref.Scheme != "https" {
			return
		}
		if s.excludedPath(ref.Path) {
			return
		}

		if s.sameSite(ref.Hostname()) {
			internal = append(internal, ref.String())
		} else {
			external = append(external, ref.String())
		}
	})

	return textutil.Dedupe(internal), textutil.Dedupe(external)
}

func (s *VisibleTextStrategy) excludedPath(path string) bool {
	for _, excluded := range s.cfg.ExcludedLinkPaths {
		if strings.Contains(path, excluded) {
			return true
		}
	}
	return false
}

func (s *VisibleTextStrategy) sameSite(host string) bool {
	host = strings.ToLower(host)
	for _, domain := range s.domains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}
