// internal/pipeline/pipeline.go

// Package pipeline wires the full run: open one page per strategy, reconcile
// both strategies' results, project them onto the output schema and hand the
// mapped records to the configured sink.
package pipeline

import (
	"context"
	"fmt"

	"github.com/valpere/LeadScrapexter/internal/browser"
	"github.com/valpere/LeadScrapexter/internal/config"
	"github.com/valpere/LeadScrapexter/internal/monitoring"
	"github.com/valpere/LeadScrapexter/internal/output"
	"github.com/valpere/LeadScrapexter/internal/schema"
	"github.com/valpere/LeadScrapexter/internal/scraper"
	"github.com/valpere/LeadScrapexter/internal/utils"
)

var pipelineLogger = utils.NewComponentLogger("pipeline")

// PageFactory hands out independent page handles. Satisfied by
// browser.Browser in production and by fakes in tests.
type PageFactory interface {
	NewPage() (browser.Page, error)
}

// Result summarizes one completed run.
type Result struct {
	Total  int
	Failed int
}

// Pipeline is the assembled extraction run.
type Pipeline struct {
	cfg        *config.ScraperConfig
	factory    PageFactory
	writer     output.Writer
	metrics    *monitoring.Metrics
	reconciler *scraper.Reconciler
	template   schema.Template
}

// New assembles a pipeline from validated configuration. metrics may be nil.
func New(cfg *config.ScraperConfig, factory PageFactory, writer output.Writer, metrics *monitoring.Metrics) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	template, err := cfg.Template()
	if err != nil {
		return nil, fmt.Errorf("failed to load schema template: %w", err)
	}

	limiter := utils.NewRateLimiter(cfg.Navigation.RequestsPerSecond)
	runner := scraper.NewRunner(cfg.Platform, limiter, metrics)
	structured := scraper.NewStructuredStrategy(cfg.Platform, cfg.Structured)
	visible := scraper.NewVisibleTextStrategy(cfg.Platform, cfg.Visible)

	return &Pipeline{
		cfg:        cfg,
		factory:    factory,
		writer:     writer,
		metrics:    metrics,
		reconciler: scraper.NewReconciler(runner, structured, visible, cfg.Platform, metrics),
		template:   template,
	}, nil
}

// Run scrapes the URL set and persists the mapped records. Partial failures
// are carried inside the records; Run errors only on infrastructure faults
// such as failing to open a page or write the output.
func (p *Pipeline) Run(ctx context.Context, urls []string) (*Result, error) {
	structuredPage, err := p.factory.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to open structured-strategy page: %w", err)
	}
	defer structuredPage.Close()

	visiblePage, err := p.factory.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to open visible-strategy page: %w", err)
	}
	defer visiblePage.Close()

	records := p.reconciler.Reconcile(ctx, urls, structuredPage, visiblePage)

	mapped := make([]map[string]interface{}, len(records))
	failed := 0
	for i, record := range records {
		if record.Failed() {
			failed++
		}
		mapped[i] = schema.MapRecord(record, p.template, p.cfg.Schema.Aliases)
	}

	if err := p.writer.Write(ctx, mapped); err != nil {
		return nil, fmt.Errorf("failed to write output: %w", err)
	}
	p.metrics.RecordsWritten(p.cfg.Output.Format, len(mapped))

	pipelineLogger.Infof("run complete: %d records, %d with errors", len(mapped), failed)
	return &Result{Total: len(mapped), Failed: failed}, nil
}
