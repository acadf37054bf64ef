// internal/scraper/reconciler.go
package scraper

import (
	"context"
	"strings"
	"sync"

	"github.com/valpere/LeadScrapexter/internal/browser"
	"github.com/valpere/LeadScrapexter/internal/config"
	"github.com/valpere/LeadScrapexter/internal/monitoring"
	"github.com/valpere/LeadScrapexter/internal/textutil"
	"github.com/valpere/LeadScrapexter/internal/utils"
)

var reconcileLogger = utils.NewComponentLogger("reconciler")

// Reconciler runs both strategies concurrently over the same URL set, each
// on its own page handle, and merges their outputs by normalized join key.
type Reconciler struct {
	runner     *Runner
	structured Strategy
	visible    Strategy
	platform   config.PlatformConfig
	metrics    *monitoring.Metrics
}

// NewReconciler creates a reconciliation engine over the two strategies.
func NewReconciler(runner *Runner, structured, visible Strategy, platform config.PlatformConfig, metrics *monitoring.Metrics) *Reconciler {
	return &Reconciler{
		runner:     runner,
		structured: structured,
		visible:    visible,
		platform:   platform,
		metrics:    metrics,
	}
}

// Reconcile schedules both strategies concurrently, waits for both batches to
// complete, and merges field-by-field with later-writer-wins (visible-text
// wins on scalar collision; emails and phones are unioned). The result has
// exactly one record per prepared input URL, in input order, even when both
// strategies failed for a URL.
func (rc *Reconciler) Reconcile(ctx context.Context, urls []string, structuredPage, visiblePage browser.Page) []Record {
	resultsA := make([]Record, 0)
	resultsB := make([]Record, 0)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		resultsA = rc.runBatchSafe(ctx, rc.structured, structuredPage, urls)
	}()
	go func() {
		defer wg.Done()
		resultsB = rc.runBatchSafe(ctx, rc.visible, visiblePage, urls)
	}()
	wg.Wait()

	merged := rc.merge(resultsA, resultsB, rc.runner.PrepareURLs(urls))

	for _, record := range merged {
		rc.enrich(record)
	}

	rc.metrics.RecordsMerged(len(merged))
	return merged
}

// runBatchSafe contains a whole-batch fault: a strategy whose batch escapes
// with a panic yields an empty result list so reconciliation can still
// proceed as a degraded merge from the other strategy's data.
func (rc *Reconciler) runBatchSafe(ctx context.Context, strategy Strategy, page browser.Page, urls []string) (results []Record) {
	defer func() {
		if p := recover(); p != nil {
			reconcileLogger.Errorf("[%s] batch failed outright: %v", strategy.Name(), p)
			results = nil
		}
	}()

	return rc.runner.Run(ctx, strategy, page, urls)
}

// merge folds both result lists into one record per join key. Records are
// applied in order (structured first, then visible), so the visible-text
// strategy's non-empty fields win scalar collisions; entity lists are always
// unioned instead of overwritten.
func (rc *Reconciler) merge(resultsA, resultsB []Record, prepared []string) []Record {
	accumulators := make(map[string]Record, len(prepared))

	for _, record := range append(resultsA, resultsB...) {
		key := rc.joinKey(record)
		if key == "" {
			continue
		}

		acc, ok := accumulators[key]
		if !ok {
			acc = Record{}
			accumulators[key] = acc
		}
		mergeInto(acc, record)
	}

	// One output record per prepared URL, in input order. A URL missing from
	// both batches (e.g. one whole strategy degraded and the other dropped
	// it) still yields a bare error record.
	merged := make([]Record, 0, len(prepared))
	for _, url := range prepared {
		key := normalizeKey(url)
		if acc, ok := accumulators[key]; ok {
			merged = append(merged, acc)
			continue
		}
		fallback := NewRecord(rc.platform.Name, rc.platform.LinkField, url)
		fallback[FieldError] = "extraction failed in both strategies"
		merged = append(merged, fallback)
	}

	return merged
}

// mergeInto applies src onto acc with shallow overwrite. Nil and empty-string
// values never clobber existing data; emails and phones are set-unioned.
func mergeInto(acc, src Record) {
	for key, value := range src {
		switch key {
		case FieldEmails, FieldPhones:
			acc[key] = textutil.Union(acc.StringList(key), src.StringList(key))
			continue
		}

		if value == nil {
			continue
		}
		if s, ok := value.(string); ok && s == "" {
			if _, exists := acc[key]; exists {
				continue
			}
		}
		acc[key] = value
	}
}

// enrich re-runs entity extraction over the merged free text and unions any
// newly found emails and phones. Deliberate redundancy: an address visible in
// one strategy's captured text may not have been parsed by that strategy.
func (rc *Reconciler) enrich(record Record) {
	blob := strings.TrimSpace(record.String("bio") + " " + record.String("main_tweet_text"))
	if blob == "" {
		return
	}

	entities := textutil.ExtractEntities(blob)
	record[FieldEmails] = textutil.Union(record.StringList(FieldEmails), entities.Emails)
	record[FieldPhones] = textutil.Union(record.StringList(FieldPhones), entities.Phones)
}

// joinKey extracts the record's join key: the platform link field, falling
// back to the generic url field, normalized.
func (rc *Reconciler) joinKey(record Record) string {
	link := record.String(rc.platform.LinkField)
	if link == "" {
		link = record.String(FieldURL)
	}
	return normalizeKey(link)
}

func normalizeKey(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	key, err := utils.NormalizeURL(rawURL)
	if err != nil {
		return strings.TrimSpace(rawURL)
	}
	return key
}
