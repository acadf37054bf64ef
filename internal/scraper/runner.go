// internal/scraper/runner.go
package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valpere/LeadScrapexter/internal/browser"
	"github.com/valpere/LeadScrapexter/internal/config"
	"github.com/valpere/LeadScrapexter/internal/monitoring"
	"github.com/valpere/LeadScrapexter/internal/utils"
)

var runnerLogger = utils.NewComponentLogger("batch-runner")

// ErrNavigationTimeoutTag is the error string tagged onto records whose page
// never reached DOM-content-loaded.
const ErrNavigationTimeoutTag = "Navigation timeout"

// Runner iterates a URL list against a single strategy on a single page
// handle. URLs are processed one at a time in input order; per-URL failures
// become error-tagged records and never abort the batch.
type Runner struct {
	platform config.PlatformConfig
	limiter  *utils.RateLimiter
	metrics  *monitoring.Metrics
}

// NewRunner creates a batch runner. limiter and metrics may be nil.
func NewRunner(platform config.PlatformConfig, limiter *utils.RateLimiter, metrics *monitoring.Metrics) *Runner {
	return &Runner{
		platform: platform,
		limiter:  limiter,
		metrics:  metrics,
	}
}

// PrepareURLs trims, drops empty strings and URLs outside the target
// platform's domains, and deduplicates while preserving the order of first
// occurrence. Run operates on exactly this list.
func (r *Runner) PrepareURLs(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	prepared := make([]string, 0, len(urls))

	for _, raw := range urls {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || !r.onPlatform(trimmed) {
			continue
		}

		key, err := utils.NormalizeURL(trimmed)
		if err != nil {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		prepared = append(prepared, trimmed)
	}

	return prepared
}

// Run processes every prepared URL through the strategy. The returned slice
// has exactly one record per prepared URL, in input order.
func (r *Runner) Run(ctx context.Context, strategy Strategy, page browser.Page, urls []string) []Record {
	prepared := r.PrepareURLs(urls)
	results := make([]Record, 0, len(prepared))
	start := time.Now()

	for i, url := range prepared {
		runnerLogger.Infof("[%s] %d/%d %s", strategy.Name(), i+1, len(prepared), url)

		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				results = append(results, r.errorRecord(url, err.Error()))
				continue
			}
		}

		if err := page.Navigate(ctx, url); err != nil {
			if errors.Is(err, browser.ErrNavigationTimeout) {
				runnerLogger.Warnf("[%s] navigation timeout: %s", strategy.Name(), url)
				r.metrics.NavigationTimeout(strategy.Name())
				results = append(results, r.errorRecord(url, ErrNavigationTimeoutTag))
			} else {
				runnerLogger.Warnf("[%s] navigation failed: %s (%v)", strategy.Name(), url, err)
				results = append(results, r.errorRecord(url, err.Error()))
			}
			r.metrics.PageScraped(strategy.Name(), true)
			continue
		}

		record := r.extractSafe(ctx, strategy, page, url)
		r.metrics.PageScraped(strategy.Name(), record.Failed())
		results = append(results, record)
	}

	r.metrics.BatchCompleted(strategy.Name(), time.Since(start))
	return results
}

// extractSafe runs the strategy with per-URL panic containment so one bad
// page never loses the rest of the batch.
func (r *Runner) extractSafe(ctx context.Context, strategy Strategy, page browser.Page, url string) (record Record) {
	defer func() {
		if p := recover(); p != nil {
			runnerLogger.Errorf("[%s] extraction panic on %s: %v", strategy.Name(), url, p)
			record = r.errorRecord(url, fmt.Sprintf("extraction panic: %v", p))
		}
	}()

	return strategy.Extract(ctx, page, url)
}

func (r *Runner) errorRecord(url, message string) Record {
	record := NewRecord(r.platform.Name, r.platform.LinkField, url)
	record[FieldError] = message
	return record
}

func (r *Runner) onPlatform(rawURL string) bool {
	host, err := utils.ExtractDomain(rawURL)
	if err != nil || host == "" {
		return false
	}
	for _, domain := range r.platform.Domains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}
