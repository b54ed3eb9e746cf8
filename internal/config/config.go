// internal/config/config.go
package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(filename string) (*ScraperConfig, error) {
	if filename == "" {
		return nil, fmt.Errorf("configuration filename cannot be empty")
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	return LoadFromBytes(data)
}

// LoadFromBytes loads configuration from YAML bytes. Environment
// variables referenced as ${VAR} are expanded before parsing.
func LoadFromBytes(data []byte) (*ScraperConfig, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("configuration data cannot be empty")
	}

	expanded := os.Expand(string(data), func(name string) string {
		return os.Getenv(name)
	})

	var cfg ScraperConfig
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML configuration: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadFromReader loads configuration from an io.Reader.
func LoadFromReader(reader io.Reader) (*ScraperConfig, error) {
	if reader == nil {
		return nil, fmt.Errorf("reader cannot be nil")
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	return LoadFromBytes(data)
}

func applyDefaults(cfg *ScraperConfig) {
	if cfg.Listing.PageSize <= 0 {
		cfg.Listing.PageSize = 50
	}
	if cfg.Listing.Pagination == "" {
		cfg.Listing.Pagination = PaginationOffset
	}
	if cfg.Listing.LoadMore != nil {
		if cfg.Listing.LoadMore.MaxSteps <= 0 {
			cfg.Listing.LoadMore.MaxSteps = 3
		}
		if cfg.Listing.LoadMore.Wait <= 0 {
			cfg.Listing.LoadMore.Wait = Duration(1_000_000_000)
		}
	}

	if cfg.Request.Timeout <= 0 {
		cfg.Request.Timeout = Duration(10_000_000_000)
	}
	if cfg.Request.RateLimit <= 0 {
		cfg.Request.RateLimit = 1.0
	}
	if cfg.Request.RateBurst <= 0 {
		cfg.Request.RateBurst = 5
	}
	if cfg.Request.PageDelay <= 0 {
		cfg.Request.PageDelay = Duration(2_000_000_000)
	}
	if len(cfg.Request.UserAgents) == 0 {
		cfg.Request.UserAgents = defaultUserAgents()
	}
	if cfg.Request.Headers == nil {
		cfg.Request.Headers = map[string]string{
			"Accept-Language": "en-US,en;q=0.9",
		}
	}

	if cfg.Engine.Concurrency <= 0 {
		cfg.Engine.Concurrency = 10
	}

	if cfg.Classify != nil {
		if cfg.Classify.TitleField == "" {
			cfg.Classify.TitleField = "review_title"
		}
		if cfg.Classify.ContentField == "" {
			cfg.Classify.ContentField = "review_content"
		}
		if cfg.Classify.Timeout <= 0 {
			cfg.Classify.Timeout = Duration(120_000_000_000)
		}
	}

	if cfg.Metrics != nil && cfg.Metrics.Listen == "" {
		cfg.Metrics.Listen = ":9090"
	}
}

func defaultUserAgents() []string {
	return []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	}
}

// Validate checks the configuration before any work starts. Validation
// failures are run-fatal.
func (c *ScraperConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}

	if len(c.Jobs) == 0 {
		return fmt.Errorf("at least one country job is required")
	}
	for i, job := range c.Jobs {
		if job.Code == "" {
			return fmt.Errorf("job %d: country code is required", i)
		}
		if job.StartYear > 0 && job.EndYear > 0 && job.EndYear < job.StartYear {
			return fmt.Errorf("job %d: end_year precedes start_year", i)
		}
	}

	switch c.Listing.Pagination {
	case PaginationOffset:
		if c.Listing.URLTemplate == "" {
			return fmt.Errorf("listing.url_template is required for offset pagination")
		}
	case PaginationLoadMore:
		if c.Listing.URLTemplate == "" {
			return fmt.Errorf("listing.url_template is required for load_more pagination")
		}
		if c.Listing.LoadMore == nil || c.Listing.LoadMore.Selector == "" {
			return fmt.Errorf("listing.load_more.selector is required for load_more pagination")
		}
	default:
		return fmt.Errorf("unsupported pagination type: %s", c.Listing.Pagination)
	}
	if c.Listing.MaxPages < 0 {
		return fmt.Errorf("listing.max_pages cannot be negative")
	}

	if c.Links.BaseURL == "" {
		return fmt.Errorf("links.base_url is required")
	}
	if len(c.Links.Strategies) == 0 {
		return fmt.Errorf("at least one link strategy is required")
	}
	for i, s := range c.Links.Strategies {
		if s.Selector == "" {
			return fmt.Errorf("link strategy %d: selector is required", i)
		}
	}

	if len(c.Fields) == 0 {
		return fmt.Errorf("at least one field is required")
	}
	for _, field := range c.Fields {
		if err := field.Validate(); err != nil {
			return fmt.Errorf("field %q: %w", field.Name, err)
		}
	}

	if c.Derived != nil {
		if c.Derived.CountBy == "" || c.Derived.As == "" {
			return fmt.Errorf("derived requires both count_by and as")
		}
	}

	if len(c.Output.Sinks) == 0 {
		return fmt.Errorf("at least one output sink is required")
	}
	for i, sink := range c.Output.Sinks {
		if err := sink.Validate(); err != nil {
			return fmt.Errorf("output sink %d: %w", i, err)
		}
	}

	if c.Classify != nil && c.Classify.Enabled {
		if c.Classify.Endpoint == "" {
			return fmt.Errorf("classify.endpoint is required when classification is enabled")
		}
		if c.Classify.Model == "" {
			return fmt.Errorf("classify.model is required when classification is enabled")
		}
	}

	return nil
}

// Validate checks a single field declaration.
func (f FieldConfig) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("field name is required")
	}

	switch f.Type {
	case FieldText, FieldInt, FieldFloat, FieldYear, FieldList, FieldCurrency:
	default:
		return fmt.Errorf("invalid field type: %s", f.Type)
	}

	if len(f.Strategies) == 0 {
		return fmt.Errorf("at least one strategy is required")
	}
	for i, s := range f.Strategies {
		switch s.Kind {
		case StrategyCSS:
			if s.Selector == "" {
				return fmt.Errorf("strategy %d: css strategy requires selector", i)
			}
		case StrategyAttr:
			if s.Selector == "" || s.Attribute == "" {
				return fmt.Errorf("strategy %d: attr strategy requires selector and attribute", i)
			}
		case StrategyRegex:
			if s.Pattern == "" {
				return fmt.Errorf("strategy %d: regex strategy requires pattern", i)
			}
		default:
			return fmt.Errorf("strategy %d: unknown strategy kind %q", i, s.Kind)
		}
	}

	for i, rule := range f.Transform {
		if err := rule.Validate(); err != nil {
			return fmt.Errorf("transform %d: %w", i, err)
		}
	}

	return nil
}

// Validate checks a single output sink declaration.
func (s SinkConfig) Validate() error {
	switch s.Format {
	case "csv", "json", "xlsx":
		if s.File == "" {
			return fmt.Errorf("%s sink requires file", s.Format)
		}
	case "sqlite":
		if s.File == "" || s.Table == "" {
			return fmt.Errorf("sqlite sink requires file and table")
		}
	case "mongodb":
		if s.URI == "" || s.Database == "" || s.Collection == "" {
			return fmt.Errorf("mongodb sink requires uri, database and collection")
		}
	default:
		return fmt.Errorf("unsupported output format: %s", s.Format)
	}
	return nil
}
