// internal/config/config_test.go
package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

const validYAML = `
name: test-films
jobs:
  - country: South Korea
    code: kr
    start_year: 2010
    end_year: 2020
listing:
  url_template: "https://example.com/search?country={country}&start={start}"
  page_size: 25
  pagination: offset
request:
  timeout: 5s
  page_delay: 500ms
  retry:
    max_attempts: 4
    base_delay: 2s
    multiplier: 3.0
    max_delay: 20s
engine:
  concurrency: 4
  failure_budget: 10
links:
  base_url: "https://example.com"
  strategies:
    - selector: "h3 a"
      href_prefix: "/title/"
fields:
  - name: title
    type: text
    required: true
    strategies:
      - kind: css
        selector: "h1"
output:
  sinks:
    - format: csv
      file: out.csv
`

func TestLoadFromBytesValid(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(validYAML))
	if err != nil {
		t.Fatalf("LoadFromBytes failed: %v", err)
	}

	if cfg.Name != "test-films" {
		t.Errorf("unexpected name: %s", cfg.Name)
	}
	if len(cfg.Jobs) != 1 || cfg.Jobs[0].Code != "kr" {
		t.Errorf("unexpected jobs: %+v", cfg.Jobs)
	}
	if cfg.Request.Timeout.Std() != 5*time.Second {
		t.Errorf("timeout not parsed: %v", cfg.Request.Timeout.Std())
	}
	if cfg.Request.PageDelay.Std() != 500*time.Millisecond {
		t.Errorf("page delay not parsed: %v", cfg.Request.PageDelay.Std())
	}

	policy := cfg.Request.Retry.Policy()
	if policy.MaxAttempts != 4 || policy.BaseDelay != 2*time.Second || policy.Multiplier != 3.0 {
		t.Errorf("retry policy not converted: %+v", policy)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	minimal := strings.Replace(validYAML, "  page_size: 25\n", "", 1)
	minimal = strings.Replace(minimal, "engine:\n  concurrency: 4\n  failure_budget: 10\n", "", 1)

	cfg, err := LoadFromBytes([]byte(minimal))
	if err != nil {
		t.Fatalf("LoadFromBytes failed: %v", err)
	}
	if cfg.Listing.PageSize != 50 {
		t.Errorf("expected default page size 50, got %d", cfg.Listing.PageSize)
	}
	if cfg.Engine.Concurrency != 10 {
		t.Errorf("expected default concurrency 10, got %d", cfg.Engine.Concurrency)
	}
	if len(cfg.Request.UserAgents) == 0 {
		t.Error("expected default user agents")
	}
}

func TestLoadExpandsEnvironment(t *testing.T) {
	os.Setenv("TEST_CINE_BASE", "https://env.example.com")
	defer os.Unsetenv("TEST_CINE_BASE")

	yaml := strings.Replace(validYAML,
		`base_url: "https://example.com"`,
		`base_url: "${TEST_CINE_BASE}"`, 1)

	cfg, err := LoadFromBytes([]byte(yaml))
	if err != nil {
		t.Fatalf("LoadFromBytes failed: %v", err)
	}
	if cfg.Links.BaseURL != "https://env.example.com" {
		t.Errorf("environment not expanded: %s", cfg.Links.BaseURL)
	}
}

func TestValidateFailures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(string) string
		wantErr string
	}{
		{
			name:    "missing name",
			mutate:  func(y string) string { return strings.Replace(y, "name: test-films", "name: \"\"", 1) },
			wantErr: "name is required",
		},
		{
			name:    "no jobs",
			mutate:  func(y string) string { return strings.Replace(y, "jobs:\n  - country: South Korea\n    code: kr\n    start_year: 2010\n    end_year: 2020\n", "jobs: []\n", 1) },
			wantErr: "country job",
		},
		{
			name:    "inverted year window",
			mutate:  func(y string) string { return strings.Replace(y, "end_year: 2020", "end_year: 2005", 1) },
			wantErr: "end_year precedes start_year",
		},
		{
			name:    "unknown pagination",
			mutate:  func(y string) string { return strings.Replace(y, "pagination: offset", "pagination: cursor", 1) },
			wantErr: "unsupported pagination",
		},
		{
			name:    "no link strategies",
			mutate:  func(y string) string { return strings.Replace(y, "  strategies:\n    - selector: \"h3 a\"\n      href_prefix: \"/title/\"\n", "  strategies: []\n", 1) },
			wantErr: "link strategy",
		},
		{
			name:    "bad field type",
			mutate:  func(y string) string { return strings.Replace(y, "type: text", "type: decimal", 1) },
			wantErr: "invalid field type",
		},
		{
			name:    "bad sink format",
			mutate:  func(y string) string { return strings.Replace(y, "format: csv", "format: parquet", 1) },
			wantErr: "unsupported output format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromBytes([]byte(tt.mutate(validYAML)))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadMoreRequiresSelector(t *testing.T) {
	yaml := strings.Replace(validYAML, "pagination: offset", "pagination: load_more", 1)
	if _, err := LoadFromBytes([]byte(yaml)); err == nil {
		t.Fatal("expected an error without load_more selector")
	}

	withSelector := strings.Replace(validYAML, "pagination: offset",
		"pagination: load_more\n  load_more:\n    selector: \"button.load-more\"\n    max_steps: 5\n    wait: 2s", 1)
	cfg, err := LoadFromBytes([]byte(withSelector))
	if err != nil {
		t.Fatalf("LoadFromBytes failed: %v", err)
	}
	if cfg.Listing.LoadMore.MaxSteps != 5 || cfg.Listing.LoadMore.Wait.Std() != 2*time.Second {
		t.Errorf("load_more block not parsed: %+v", cfg.Listing.LoadMore)
	}
}

func TestDurationRoundTrip(t *testing.T) {
	d := Duration(90 * time.Second)
	out, err := d.MarshalYAML()
	if err != nil {
		t.Fatalf("MarshalYAML failed: %v", err)
	}
	if out != "1m30s" {
		t.Errorf("expected 1m30s, got %v", out)
	}
}
