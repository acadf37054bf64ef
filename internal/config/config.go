// internal/config/config.go
package config

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/valpere/LeadScrapexter/internal/browser"
	"github.com/valpere/LeadScrapexter/internal/schema"
)

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(filename string) (*ScraperConfig, error) {
	if filename == "" {
		return nil, fmt.Errorf("configuration filename cannot be empty")
	}

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", filename)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %v", err)
	}

	return LoadFromBytes(data)
}

// LoadFromBytes loads configuration from YAML bytes.
func LoadFromBytes(data []byte) (*ScraperConfig, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("configuration data cannot be empty")
	}

	expandedData := expandEnvironmentVariables(string(data))

	var config ScraperConfig
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML configuration: %v", err)
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %v", err)
	}

	return &config, nil
}

// LoadFromReader loads configuration from an io.Reader.
func LoadFromReader(reader io.Reader) (*ScraperConfig, error) {
	if reader == nil {
		return nil, fmt.Errorf("reader cannot be nil")
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read from reader: %v", err)
	}

	return LoadFromBytes(data)
}

// Default returns the built-in Twitter/X profile configuration.
func Default() *ScraperConfig {
	config := &ScraperConfig{Name: "twitter-leads"}
	applyDefaults(config)
	return config
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvironmentVariables substitutes ${VAR} references with environment
// values, leaving unset references intact.
func expandEnvironmentVariables(data string) string {
	return envVarPattern.ReplaceAllStringFunc(data, func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		return match
	})
}

// applyDefaults fills in zero-valued fields.
func applyDefaults(config *ScraperConfig) {
	if config.Platform.Name == "" {
		config.Platform.Name = "twitter"
	}
	if len(config.Platform.Domains) == 0 {
		config.Platform.Domains = []string{"twitter.com", "x.com"}
	}
	if config.Platform.LinkField == "" {
		config.Platform.LinkField = "twitter_link"
	}

	defaults := browser.DefaultConfig()
	if config.Browser.ViewportWidth == 0 {
		config.Browser.ViewportWidth = defaults.ViewportWidth
	}
	if config.Browser.ViewportHeight == 0 {
		config.Browser.ViewportHeight = defaults.ViewportHeight
	}
	if config.Browser.NavigateTimeout == 0 {
		config.Browser.NavigateTimeout = defaults.NavigateTimeout
	}
	if config.Browser.IdleTimeout == 0 {
		config.Browser.IdleTimeout = defaults.IdleTimeout
	}

	if config.Navigation.RequestsPerSecond == 0 {
		config.Navigation.RequestsPerSecond = 0.5
	}

	if len(config.Structured.Selectors) == 0 {
		config.Structured.Selectors = map[string][]string{
			"name":      {`div[data-testid="UserName"] span`},
			"handle":    {`div[data-testid="UserName"] div[dir="ltr"] span`},
			"bio":       {`div[data-testid="UserDescription"]`, `div[data-testid="UserDescription"] span`},
			"followers": {`a[href$="/verified_followers"] span`, `a[href$="/followers"] span`},
			"following": {`a[href$="/following"] span`},
		}
	}
	if config.Structured.SelectorTimeout == 0 {
		config.Structured.SelectorTimeout = 6 * time.Second
	}
	if len(config.Structured.FailureFields) == 0 {
		config.Structured.FailureFields = []string{"name", "bio"}
	}

	if config.Visible.ScrollPasses == 0 {
		config.Visible.ScrollPasses = 6
	}
	if config.Visible.ScrollPause == 0 {
		config.Visible.ScrollPause = 350 * time.Millisecond
	}
	if config.Visible.PostSelector == "" {
		config.Visible.PostSelector = `article[data-testid="tweet"]`
	}
	if config.Visible.AuthorSelector == "" {
		config.Visible.AuthorSelector = `div[data-testid="User-Name"] a[href^="/"]`
	}
	if config.Visible.BioSelector == "" {
		config.Visible.BioSelector = `div[data-testid="UserDescription"]`
	}
	if config.Visible.OverlaySelector == "" {
		config.Visible.OverlaySelector = `div[data-testid="sheetDialog"] div[role="button"]`
	}
	if len(config.Visible.ExcludedLinkPaths) == 0 {
		config.Visible.ExcludedLinkPaths = []string{"/hashtag/", "/search", "/i/", "/intent/", "analytics"}
	}

	if len(config.Schema.Aliases) == 0 {
		config.Schema.Aliases = schema.DefaultAliasTable()
	}

	if config.Output.Format == "" {
		config.Output.Format = "json"
	}
	if config.Output.File == "" {
		config.Output.File = "leads.json"
	}
	if config.Output.MongoDB.Timeout == 0 {
		config.Output.MongoDB.Timeout = 30 * time.Second
	}

	if config.Monitoring.Enabled && config.Monitoring.Address == "" {
		config.Monitoring.Address = ":9090"
	}
}

// Validate checks the configuration for errors that must fail at startup.
func (c *ScraperConfig) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("name is required")
	}

	if len(c.Platform.Domains) == 0 {
		return fmt.Errorf("platform must declare at least one domain")
	}

	for field, candidates := range c.Structured.Selectors {
		if len(candidates) == 0 {
			return fmt.Errorf("structured field %q has no selector candidates", field)
		}
		for _, sel := range candidates {
			if strings.TrimSpace(sel) == "" {
				return fmt.Errorf("structured field %q has an empty selector", field)
			}
		}
	}

	for _, field := range c.Structured.FailureFields {
		if _, ok := c.Structured.Selectors[field]; !ok {
			return fmt.Errorf("failure field %q has no selector configuration", field)
		}
	}

	if c.Visible.ScrollPasses < 0 {
		return fmt.Errorf("scroll_passes cannot be negative")
	}
	if c.Navigation.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests_per_second must be positive")
	}

	switch c.Output.Format {
	case "json", "csv", "excel":
		if c.Output.File == "" {
			return fmt.Errorf("output format %q requires a file path", c.Output.Format)
		}
	case "mongodb":
		if c.Output.MongoDB.URI == "" {
			return fmt.Errorf("mongodb output requires a connection URI")
		}
		if c.Output.MongoDB.Database == "" || c.Output.MongoDB.Collection == "" {
			return fmt.Errorf("mongodb output requires database and collection")
		}
	case "postgresql", "mysql", "sqlite":
		if c.Output.Database.DSN == "" {
			return fmt.Errorf("%s output requires a DSN", c.Output.Format)
		}
		if c.Output.Database.Table == "" {
			return fmt.Errorf("%s output requires a table name", c.Output.Format)
		}
	default:
		return fmt.Errorf("unsupported output format: %s", c.Output.Format)
	}

	// Alias table errors are configuration errors, not runtime data errors.
	tmpl := schema.DefaultTemplate()
	if c.Schema.TemplateFile != "" {
		loaded, err := schema.LoadTemplate(c.Schema.TemplateFile)
		if err != nil {
			return fmt.Errorf("schema template: %w", err)
		}
		tmpl = loaded
	}
	if err := c.Schema.Aliases.Validate(tmpl); err != nil {
		return fmt.Errorf("schema aliases: %w", err)
	}

	return nil
}

// Template returns the schema template configured for this run.
func (c *ScraperConfig) Template() (schema.Template, error) {
	if c.Schema.TemplateFile == "" {
		return schema.DefaultTemplate(), nil
	}
	return schema.LoadTemplate(c.Schema.TemplateFile)
}
