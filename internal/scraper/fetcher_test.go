// internal/scraper/fetcher_test.go
package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cinescrape/internal/config"
	"cinescrape/internal/utils"
)

func testClient() *HTTPClient {
	return NewHTTPClient(ClientConfig{
		Timeout:   2 * time.Second,
		RateLimit: 1000,
		RateBurst: 1000,
		Retry:     utils.RetryPolicy{MaxAttempts: 1, BaseDelay: time.Millisecond, Multiplier: 2, MaxDelay: time.Millisecond},
	})
}

func filmFields() []config.FieldConfig {
	return []config.FieldConfig{
		{
			Name:     "title",
			Type:     config.FieldText,
			Required: true,
			Strategies: []config.StrategyConfig{
				{Kind: config.StrategyCSS, Selector: "h1.title"},
			},
		},
		{
			Name:     "rating",
			Type:     config.FieldFloat,
			Required: true,
			Strategies: []config.StrategyConfig{
				{Kind: config.StrategyCSS, Selector: "span.rating"},
			},
		},
		{
			Name: "year",
			Type: config.FieldYear,
			Strategies: []config.StrategyConfig{
				{Kind: config.StrategyCSS, Selector: "span.year"},
			},
		},
	}
}

func TestFetchValidRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<h1 class="title">The Long Voyage</h1>
			<span class="rating">7.4</span>
			<span class="year">2014</span>
		</body></html>`)
	}))
	defer server.Close()

	fetcher := NewDetailFetcher(testClient(), filmFields(), server.URL)

	record, err := fetcher.Fetch(context.Background(), server.URL+"/title/tt0001/")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if record.URL != server.URL+"/title/tt0001/" {
		t.Errorf("record keyed by wrong URL: %s", record.URL)
	}
	if record.Fields["title"] != "The Long Voyage" {
		t.Errorf("unexpected title: %v", record.Fields["title"])
	}
	if record.Fields["rating"] != 7.4 {
		t.Errorf("unexpected rating: %v", record.Fields["rating"])
	}
	if record.Fields["year"] != 2014 {
		t.Errorf("unexpected year: %v", record.Fields["year"])
	}
}

func TestFetchDiscardsRecordMissingRequiredField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Title present, rating absent.
		fmt.Fprint(w, `<html><body><h1 class="title">No Rating Yet</h1></body></html>`)
	}))
	defer server.Close()

	fetcher := NewDetailFetcher(testClient(), filmFields(), server.URL)

	record, err := fetcher.Fetch(context.Background(), server.URL+"/title/tt0002/")
	if !errors.Is(err, ErrRecordDiscarded) {
		t.Fatalf("expected ErrRecordDiscarded, got %v", err)
	}
	if record != nil {
		t.Error("discarded fetch must not return a partial record")
	}
}

func TestFetchOptionalFieldMayBeAbsent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Year (optional) absent, required fields present.
		fmt.Fprint(w, `<html><body>
			<h1 class="title">Undated</h1>
			<span class="rating">6.1</span>
		</body></html>`)
	}))
	defer server.Close()

	fetcher := NewDetailFetcher(testClient(), filmFields(), server.URL)

	record, err := fetcher.Fetch(context.Background(), server.URL+"/title/tt0003/")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if _, present := record.Fields["year"]; present {
		t.Error("absent optional field must not appear in the record")
	}
}

func TestFetchTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := NewDetailFetcher(testClient(), filmFields(), server.URL)

	_, err := fetcher.Fetch(context.Background(), server.URL+"/title/tt0404/")
	if err == nil {
		t.Fatal("expected an error")
	}
	if errors.Is(err, ErrRecordDiscarded) {
		t.Error("transport failure must not be reported as a discard")
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusNotFound {
		t.Errorf("expected a 404 StatusError, got %v", err)
	}
}
