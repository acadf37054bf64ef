// cmd/leadscrapexter/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"github.com/valpere/LeadScrapexter/internal/browser"
	"github.com/valpere/LeadScrapexter/internal/config"
	"github.com/valpere/LeadScrapexter/internal/monitoring"
	"github.com/valpere/LeadScrapexter/internal/output"
	"github.com/valpere/LeadScrapexter/internal/pipeline"
)

// Version information (set by build flags)
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch command := os.Args[1]; command {
	case "run":
		if len(os.Args) < 4 {
			fmt.Fprintf(os.Stderr, "Error: config file and URL list required\n")
			fmt.Fprintf(os.Stderr, "Usage: leadscrapexter run <config.yaml> <urls.txt>\n")
			os.Exit(1)
		}
		if err := runScraper(os.Args[2], os.Args[3]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "validate":
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, "Error: config file required\n")
			fmt.Fprintf(os.Stderr, "Usage: leadscrapexter validate <config.yaml>\n")
			os.Exit(1)
		}
		if err := validateConfig(os.Args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Configuration file '%s' is valid\n", os.Args[2])

	case "template":
		template, err := generateTemplate()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(template)

	case "version", "--version":
		printVersion()

	case "help", "--help", "-h":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command '%s'\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runScraper(configFile, urlFile string) error {
	cfg, err := config.LoadFromFile(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	urls, err := pipeline.ReadURLFile(urlFile)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return fmt.Errorf("URL file %s contains no URLs", urlFile)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(registry)
	if cfg.Monitoring.Enabled {
		server := monitoring.NewServer(cfg.Monitoring.Address, registry)
		server.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			server.Shutdown(shutdownCtx)
		}()
	}

	b, err := browser.NewBrowser(&cfg.Browser)
	if err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer b.Close()

	writer, err := output.NewWriter(ctx, cfg.Output)
	if err != nil {
		return fmt.Errorf("failed to open output sink: %w", err)
	}
	defer writer.Close()

	p, err := pipeline.New(cfg, b, writer, metrics)
	if err != nil {
		return err
	}

	result, err := p.Run(ctx, urls)
	if err != nil {
		return err
	}

	fmt.Printf("Scraped %d profiles (%d with errors)\n", result.Total, result.Failed)
	return nil
}

func validateConfig(configFile string) error {
	if _, err := config.LoadFromFile(configFile); err != nil {
		return err
	}
	return nil
}

// generateTemplate dumps the built-in configuration as a starting point.
func generateTemplate() (string, error) {
	data, err := yaml.Marshal(config.Default())
	if err != nil {
		return "", fmt.Errorf("failed to marshal template: %w", err)
	}
	return string(data), nil
}

func printUsage() {
	fmt.Println("LeadScrapexter - Social Media Lead Extraction Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  leadscrapexter run <config.yaml> <urls.txt>  Scrape the listed profile URLs")
	fmt.Println("  leadscrapexter validate <config.yaml>        Validate configuration file")
	fmt.Println("  leadscrapexter template                      Print a configuration template")
	fmt.Println("  leadscrapexter version                       Show version information")
	fmt.Println("  leadscrapexter help                          Show this help message")
}

func printVersion() {
	fmt.Printf("LeadScrapexter %s\n", version)
	fmt.Printf("Build time: %s\n", buildTime)
	fmt.Printf("Git commit: %s\n", gitCommit)
}
