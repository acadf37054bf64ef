// internal/scraper/types.go

// Package scraper implements the dual-strategy extraction pipeline: a
// structured-fields strategy and a visible-text strategy run concurrently over
// the same URL set, with per-URL fault isolation and a reconciliation step
// that merges both strategies' partial results by join key.
package scraper

import (
	"context"
	"time"

	"github.com/valpere/LeadScrapexter/internal/browser"
)

// Record is one extraction result: a free-form mapping from field name to
// value (string, number, list-of-string). Every record carries the platform
// tag, the join field and a capture timestamp; a failed extraction carries an
// "error" field alongside whatever partial fields were captured.
type Record map[string]interface{}

// Reserved record fields.
const (
	FieldPlatform  = "platform"
	FieldURL       = "url"
	FieldScrapedAt = "scraped_at"
	FieldError     = "error"
	FieldEmails    = "emails"
	FieldPhones    = "phones"
)

// NewRecord creates a record pre-populated with platform, join field and
// capture timestamp.
func NewRecord(platform, linkField, url string) Record {
	return Record{
		FieldPlatform:  platform,
		linkField:      url,
		FieldScrapedAt: time.Now().Unix(),
	}
}

// String returns the record's value under key as a normalized string, or ""
// when absent or not a string.
func (r Record) String(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

// StringList returns the record's value under key as a string slice,
// tolerating []interface{} values from decoded documents.
func (r Record) StringList(key string) []string {
	switch v := r[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Failed reports whether the record is error-tagged.
func (r Record) Failed() bool {
	return r.String(FieldError) != ""
}

// Strategy is one of the two independent extraction procedures run against
// the same page set. Extract never returns an error: failures are converted
// into error-tagged records so one bad page cannot abort a batch.
type Strategy interface {
	// Name identifies the strategy in logs and metrics.
	Name() string

	// Extract reads the already-navigated page and produces a record for
	// the given URL.
	Extract(ctx context.Context, page browser.Page, url string) Record
}
