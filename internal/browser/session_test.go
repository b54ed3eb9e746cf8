// internal/browser/session_test.go
package browser

import (
	"context"
	"errors"
	"testing"

	"cinescrape/internal/config"
	"cinescrape/internal/scraper"
)

func TestNewSessionRequiresSelector(t *testing.T) {
	if _, err := NewSession(nil); err == nil {
		t.Error("expected an error for nil config")
	}
	if _, err := NewSession(&config.LoadMoreConfig{}); err == nil {
		t.Error("expected an error for empty selector")
	}
}

func TestSessionDefaults(t *testing.T) {
	s, err := NewSession(&config.LoadMoreConfig{Selector: "button.load-more"})
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	defer s.Close()

	if s.maxSteps != 3 {
		t.Errorf("expected default step ceiling 3, got %d", s.maxSteps)
	}
	if s.wait <= 0 {
		t.Error("expected a positive default wait")
	}
}

func TestLoadMoreBeforeOpen(t *testing.T) {
	s, err := NewSession(&config.LoadMoreConfig{Selector: "button.load-more"})
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	defer s.Close()

	if _, err := s.LoadMore(context.Background()); err == nil {
		t.Error("expected an error before Open")
	}
}

func TestLoadMoreStepCeiling(t *testing.T) {
	s, err := NewSession(&config.LoadMoreConfig{Selector: "button.load-more", MaxSteps: 2})
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	defer s.Close()

	s.opened = true
	s.steps = 2

	_, err = s.LoadMore(context.Background())
	if !errors.Is(err, scraper.ErrNoMorePages) {
		t.Errorf("expected ErrNoMorePages at the ceiling, got %v", err)
	}
}
