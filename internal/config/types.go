// internal/config/types.go
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"cinescrape/internal/pipeline"
	"cinescrape/internal/utils"
)

// Duration wraps time.Duration so YAML values like "10s" parse directly.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// ScraperConfig is the complete run configuration.
type ScraperConfig struct {
	Name    string          `yaml:"name"`
	Jobs    []CountryJob    `yaml:"jobs"`
	Listing ListingConfig   `yaml:"listing"`
	Request RequestConfig   `yaml:"request"`
	Engine  EngineConfig    `yaml:"engine"`
	Links   LinksConfig     `yaml:"links"`
	Fields  []FieldConfig   `yaml:"fields"`
	Derived *DerivedConfig  `yaml:"derived,omitempty"`
	Output  OutputConfig    `yaml:"output"`
	Classify *ClassifyConfig `yaml:"classify,omitempty"`
	Metrics *MetricsConfig  `yaml:"metrics,omitempty"`
}

// CountryJob is one catalog slice: a country plus a release-year window.
type CountryJob struct {
	Country   string `yaml:"country"`
	Code      string `yaml:"code"`
	StartYear int    `yaml:"start_year"`
	EndYear   int    `yaml:"end_year"`
}

// Pagination modes for the listing page.
const (
	PaginationOffset   = "offset"
	PaginationLoadMore = "load_more"
)

// ListingConfig describes how listing pages are reached.
type ListingConfig struct {
	// URLTemplate supports {country}, {start_year}, {end_year} and
	// {start} placeholders; {start} advances by PageSize per page.
	URLTemplate string          `yaml:"url_template"`
	PageSize    int             `yaml:"page_size"`
	MaxPages    int             `yaml:"max_pages"`
	Pagination  string          `yaml:"pagination"`
	LoadMore    *LoadMoreConfig `yaml:"load_more,omitempty"`
}

// LoadMoreConfig drives the interactive-pagination collaborator.
type LoadMoreConfig struct {
	Selector string   `yaml:"selector"`
	MaxSteps int      `yaml:"max_steps"`
	Wait     Duration `yaml:"wait"`
	Headless bool     `yaml:"headless"`
}

// RequestConfig configures the document fetch collaborator.
type RequestConfig struct {
	Timeout    Duration          `yaml:"timeout"`
	RateLimit  float64           `yaml:"rate_limit"`
	RateBurst  int               `yaml:"rate_burst"`
	PageDelay  Duration          `yaml:"page_delay"`
	UserAgents []string          `yaml:"user_agents,omitempty"`
	Headers    map[string]string `yaml:"headers,omitempty"`
	Retry      RetryConfig       `yaml:"retry"`
}

// RetryConfig mirrors utils.RetryPolicy in YAML-friendly form.
type RetryConfig struct {
	MaxAttempts int      `yaml:"max_attempts"`
	BaseDelay   Duration `yaml:"base_delay"`
	Multiplier  float64  `yaml:"multiplier"`
	MaxDelay    Duration `yaml:"max_delay"`
}

// Policy converts the config into a utils.RetryPolicy, filling defaults.
func (r RetryConfig) Policy() utils.RetryPolicy {
	p := utils.DefaultRetryPolicy()
	if r.MaxAttempts > 0 {
		p.MaxAttempts = r.MaxAttempts
	}
	if r.BaseDelay > 0 {
		p.BaseDelay = r.BaseDelay.Std()
	}
	if r.Multiplier > 1 {
		p.Multiplier = r.Multiplier
	}
	if r.MaxDelay > 0 {
		p.MaxDelay = r.MaxDelay.Std()
	}
	return p
}

// EngineConfig bounds the concurrent orchestrator.
type EngineConfig struct {
	Concurrency int `yaml:"concurrency"`
	// FailureBudget stops dispatch once this many detail fetches have
	// failed permanently; 0 means unlimited.
	FailureBudget int `yaml:"failure_budget"`
}

// LinksConfig holds the ordered anchor-selection strategies for the
// link discoverer.
type LinksConfig struct {
	BaseURL    string         `yaml:"base_url"`
	Strategies []LinkStrategy `yaml:"strategies"`
}

// LinkStrategy is one candidate rule for locating detail-page anchors.
type LinkStrategy struct {
	Selector string `yaml:"selector"`
	// HrefPrefix filters matched anchors to hrefs with this prefix.
	HrefPrefix string `yaml:"href_prefix,omitempty"`
}

// Field value types.
const (
	FieldText     = "text"
	FieldInt      = "int"
	FieldFloat    = "float"
	FieldYear     = "year"
	FieldList     = "list"
	FieldCurrency = "currency"
)

// FieldConfig declares one extracted field: an ordered strategy list plus
// normalization transforms.
type FieldConfig struct {
	Name       string                   `yaml:"name"`
	Type       string                   `yaml:"type"`
	Required   bool                     `yaml:"required,omitempty"`
	Strategies []StrategyConfig         `yaml:"strategies"`
	Transform  []pipeline.TransformRule `yaml:"transform,omitempty"`
}

// Strategy kinds (closed set).
const (
	StrategyCSS   = "css"
	StrategyRegex = "regex"
	StrategyAttr  = "attr"
)

// StrategyConfig is one tagged extraction strategy.
type StrategyConfig struct {
	Kind      string `yaml:"kind"`
	Selector  string `yaml:"selector,omitempty"`
	Attribute string `yaml:"attribute,omitempty"`
	Pattern   string `yaml:"pattern,omitempty"`
}

// DerivedConfig declares a run-wide derived column computed by the
// aggregator in a final merge step.
type DerivedConfig struct {
	CountBy string `yaml:"count_by"`
	As      string `yaml:"as"`
}

// OutputConfig lists the persistence sinks; every sink receives the same
// result table.
type OutputConfig struct {
	Sinks []SinkConfig `yaml:"sinks"`
}

// SinkConfig configures one persistence sink.
type SinkConfig struct {
	Format     string `yaml:"format"`
	File       string `yaml:"file,omitempty"`
	Sheet      string `yaml:"sheet,omitempty"`
	Table      string `yaml:"table,omitempty"`
	URI        string `yaml:"uri,omitempty"`
	Database   string `yaml:"database,omitempty"`
	Collection string `yaml:"collection,omitempty"`
}

// ClassifyConfig configures the review-category classification pass.
type ClassifyConfig struct {
	Enabled      bool        `yaml:"enabled"`
	Endpoint     string      `yaml:"endpoint"`
	Model        string      `yaml:"model"`
	Timeout      Duration    `yaml:"timeout"`
	Retry        RetryConfig `yaml:"retry"`
	TitleField   string      `yaml:"title_field"`
	ContentField string      `yaml:"content_field"`
}

// MetricsConfig configures the optional metrics HTTP server.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}
