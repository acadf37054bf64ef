// internal/scraper/structured.go
package scraper

import (
	"context"

	"github.com/valpere/LeadScrapexter/internal/browser"
	"github.com/valpere/LeadScrapexter/internal/config"
	"github.com/valpere/LeadScrapexter/internal/textutil"
	"github.com/valpere/LeadScrapexter/internal/utils"
)

var structuredLogger = utils.NewComponentLogger("structured-strategy")

// ErrFailedToExtract is the error string tagged onto records where none of
// the configured failure fields rendered, the usual signature of a login wall
// or rate limit page.
const ErrFailedToExtract = "Failed to extract"

// StructuredStrategy extracts profile fields through ordered lists of
// selector candidates. Field extraction failures are independent: a missing
// bio never blocks extraction of follower counts.
type StructuredStrategy struct {
	platform  string
	linkField string
	cfg       config.StructuredConfig
}

// NewStructuredStrategy creates the structured-fields strategy.
func NewStructuredStrategy(platform config.PlatformConfig, cfg config.StructuredConfig) *StructuredStrategy {
	return &StructuredStrategy{
		platform:  platform.Name,
		linkField: platform.LinkField,
		cfg:       cfg,
	}
}

// Name implements Strategy.
func (s *StructuredStrategy) Name() string { return "structured" }

// Extract implements Strategy. The page must already be positioned at url.
func (s *StructuredStrategy) Extract(ctx context.Context, page browser.Page, url string) Record {
	record := NewRecord(s.platform, s.linkField, url)

	fields := make(map[string]string, len(s.cfg.Selectors))
	for field, candidates := range s.cfg.Selectors {
		fields[field] = s.firstText(ctx, page, candidates)
	}

	name := fields["name"]
	handle := fields["handle"]
	if handle == "" {
		// Derive the handle from the URL when no selector matched.
		if segment := utils.LastPathSegment(url); segment != "" {
			handle = "@" + segment
		}
	}

	record["name"] = name
	record["handle"] = handle
	record["bio"] = fields["bio"]

	record["followers"] = fields["followers"]
	if n, ok := textutil.CompactToInt(fields["followers"]); ok {
		record["followers_num"] = n
	}
	record["following"] = fields["following"]
	if n, ok := textutil.CompactToInt(fields["following"]); ok {
		record["following_num"] = n
	}

	// Any additionally configured fields are carried through as-is.
	for field, value := range fields {
		switch field {
		case "name", "handle", "bio", "followers", "following":
		default:
			record[field] = value
		}
	}

	if s.totalFailure(fields) {
		structuredLogger.Warnf("no identifying fields rendered for %s", url)
		record[FieldError] = ErrFailedToExtract
	}

	return record
}

// firstText tries each selector candidate in order and returns the first
// non-empty normalized text, or "".
func (s *StructuredStrategy) firstText(ctx context.Context, page browser.Page, candidates []string) string {
	for _, selector := range candidates {
		text, err := page.Text(ctx, selector, s.cfg.SelectorTimeout)
		if err != nil {
			continue
		}
		if normalized := textutil.NormalizeWhitespace(text); normalized != "" {
			return normalized
		}
	}
	return ""
}

// totalFailure reports whether every configured failure field came back
// empty. The trigger set is configuration, not a hard-coded heuristic.
func (s *StructuredStrategy) totalFailure(fields map[string]string) bool {
	if len(s.cfg.FailureFields) == 0 {
		return false
	}
	for _, field := range s.cfg.FailureFields {
		if fields[field] != "" {
			return false
		}
	}
	return true
}
