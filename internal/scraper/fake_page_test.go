// internal/scraper/fake_page_test.go
package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/valpere/LeadScrapexter/internal/browser"
)

// fakePage implements browser.Page against canned responses.
type fakePage struct {
	// texts maps selector -> text for the currently "loaded" URL
	texts map[string]string
	// htmlByURL maps url -> rendered HTML
	htmlByURL map[string]string
	// meta maps og property -> content
	meta map[string]string
	// navErrs maps url -> navigation error
	navErrs map[string]error

	current   string
	navigated []string
	scrolls   int
	clicks    []string
}

func newFakePage() *fakePage {
	return &fakePage{
		texts:     map[string]string{},
		htmlByURL: map[string]string{},
		meta:      map[string]string{},
		navErrs:   map[string]error{},
	}
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	p.navigated = append(p.navigated, url)
	if err, ok := p.navErrs[url]; ok {
		return err
	}
	p.current = url
	return nil
}

func (p *fakePage) Text(ctx context.Context, selector string, timeout time.Duration) (string, error) {
	if text, ok := p.texts[selector]; ok {
		return text, nil
	}
	return "", fmt.Errorf("selector not found: %s", selector)
}

func (p *fakePage) Meta(ctx context.Context, property string) (string, error) {
	return p.meta[property], nil
}

func (p *fakePage) HTML(ctx context.Context) (string, error) {
	if html, ok := p.htmlByURL[p.current]; ok {
		return html, nil
	}
	return "", errors.New("no document loaded")
}

func (p *fakePage) ScrollToBottom(ctx context.Context) error {
	p.scrolls++
	return nil
}

func (p *fakePage) Click(ctx context.Context, selector string, timeout time.Duration) error {
	p.clicks = append(p.clicks, selector)
	return errors.New("no overlay present")
}

func (p *fakePage) Close() error { return nil }

var _ browser.Page = (*fakePage)(nil)

// stubStrategy returns canned records keyed by URL. A URL with no canned
// record panics, exercising the runner's fault containment.
type stubStrategy struct {
	name    string
	records map[string]Record
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Extract(ctx context.Context, page browser.Page, url string) Record {
	canned, ok := s.records[url]
	if !ok {
		panic("no canned record for " + url)
	}
	// Return a copy so merging never mutates the canned fixture.
	record := Record{}
	for k, v := range canned {
		record[k] = v
	}
	return record
}
