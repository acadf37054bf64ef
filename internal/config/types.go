// internal/config/types.go

// Package config provides configuration types for the lead scraping pipeline:
// target platform, browser settings, per-strategy extraction rules, schema
// mapping, output sinks and monitoring.
package config

import (
	"time"

	"github.com/valpere/LeadScrapexter/internal/browser"
	"github.com/valpere/LeadScrapexter/internal/schema"
)

// ScraperConfig is the root configuration for one scraping run.
type ScraperConfig struct {
	// Name identifies this configuration
	Name string `yaml:"name" json:"name"`

	// Version of the configuration format
	Version string `yaml:"version,omitempty" json:"version,omitempty"`

	// Platform defines the target site
	Platform PlatformConfig `yaml:"platform" json:"platform"`

	// Browser settings for the headless Chrome instance
	Browser browser.Config `yaml:"browser" json:"browser"`

	// Navigation pacing and timeouts shared by both strategies
	Navigation NavigationConfig `yaml:"navigation" json:"navigation"`

	// Structured configures the structured-fields strategy
	Structured StructuredConfig `yaml:"structured" json:"structured"`

	// Visible configures the visible-text strategy
	Visible VisibleConfig `yaml:"visible" json:"visible"`

	// Schema configures the output schema mapping
	Schema SchemaConfig `yaml:"schema" json:"schema"`

	// Output configures the storage sinks
	Output OutputConfig `yaml:"output" json:"output"`

	// Monitoring configures the metrics endpoint
	Monitoring MonitoringConfig `yaml:"monitoring" json:"monitoring"`
}

// PlatformConfig defines the target platform.
type PlatformConfig struct {
	// Name is the platform tag written into every record
	Name string `yaml:"name" json:"name"`

	// Domains lists hosts accepted by the URL filter
	Domains []string `yaml:"domains" json:"domains"`

	// LinkField is the platform-style join field (e.g. twitter_link)
	LinkField string `yaml:"link_field" json:"link_field"`
}

// NavigationConfig defines pacing between page navigations.
type NavigationConfig struct {
	// RequestsPerSecond paces navigations per strategy
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
}

// StructuredConfig defines the structured-fields strategy.
type StructuredConfig struct {
	// Selectors maps field name to an ordered list of selector candidates,
	// tried in sequence until one yields non-empty text
	Selectors map[string][]string `yaml:"selectors" json:"selectors"`

	// SelectorTimeout bounds the wait per selector candidate
	SelectorTimeout time.Duration `yaml:"selector_timeout" json:"selector_timeout"`

	// FailureFields lists the fields that must ALL be empty before the
	// record is tagged as a total extraction failure (bot-wall heuristic)
	FailureFields []string `yaml:"failure_fields" json:"failure_fields"`
}

// VisibleConfig defines the visible-text strategy.
type VisibleConfig struct {
	// ScrollPasses is the number of scroll-and-wait cycles
	ScrollPasses int `yaml:"scroll_passes" json:"scroll_passes"`

	// ScrollPause is the settle time after each scroll
	ScrollPause time.Duration `yaml:"scroll_pause" json:"scroll_pause"`

	// PostSelector matches post/comment containers
	PostSelector string `yaml:"post_selector" json:"post_selector"`

	// AuthorSelector matches the author handle within a post container
	AuthorSelector string `yaml:"author_selector" json:"author_selector"`

	// BioSelector matches the profile bio in the rendered page
	BioSelector string `yaml:"bio_selector" json:"bio_selector"`

	// OverlaySelector, when present, is clicked best-effort before extraction
	OverlaySelector string `yaml:"overlay_selector,omitempty" json:"overlay_selector,omitempty"`

	// ExcludedLinkPaths filters known non-content link paths
	ExcludedLinkPaths []string `yaml:"excluded_link_paths" json:"excluded_link_paths"`
}

// SchemaConfig defines the output schema mapping.
type SchemaConfig struct {
	// TemplateFile optionally overrides the built-in schema template
	TemplateFile string `yaml:"template_file,omitempty" json:"template_file,omitempty"`

	// Aliases optionally overrides the built-in alias table
	Aliases schema.AliasTable `yaml:"aliases,omitempty" json:"aliases,omitempty"`
}

// OutputConfig defines where mapped records are written.
type OutputConfig struct {
	// Format selects the writer: json, csv, excel, mongodb, postgresql,
	// mysql or sqlite
	Format string `yaml:"format" json:"format"`

	// File is the output path for file-based formats
	File string `yaml:"file,omitempty" json:"file,omitempty"`

	// MongoDB settings, used when format is mongodb
	MongoDB MongoDBConfig `yaml:"mongodb,omitempty" json:"mongodb,omitempty"`

	// Database settings, used for the SQL formats
	Database DatabaseConfig `yaml:"database,omitempty" json:"database,omitempty"`
}

// MongoDBConfig defines the document-store sink.
type MongoDBConfig struct {
	URI        string        `yaml:"uri" json:"uri"`
	Database   string        `yaml:"database" json:"database"`
	Collection string        `yaml:"collection" json:"collection"`
	Timeout    time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// DatabaseConfig defines a SQL sink.
type DatabaseConfig struct {
	DSN   string `yaml:"dsn" json:"dsn"`
	Table string `yaml:"table" json:"table"`
}

// MonitoringConfig defines the metrics endpoint.
type MonitoringConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Address string `yaml:"address,omitempty" json:"address,omitempty"`
}
