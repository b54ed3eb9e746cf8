// internal/scraper/fetcher.go
package scraper

import (
	"context"
	"fmt"

	"cinescrape/internal/config"
	"cinescrape/internal/utils"
)

// DetailFetcher fetches and parses one detail page, extracts every
// configured field and applies the record-validity gate.
type DetailFetcher struct {
	client  *HTTPClient
	fields  []config.FieldConfig
	baseURL string
	log     utils.Logger
}

// NewDetailFetcher creates a detail fetcher over the configured fields.
func NewDetailFetcher(client *HTTPClient, fields []config.FieldConfig, baseURL string) *DetailFetcher {
	return &DetailFetcher{
		client:  client,
		fields:  fields,
		baseURL: baseURL,
		log:     utils.NewComponentLogger("fetcher"),
	}
}

// Fetch returns the extracted record for one canonical detail URL.
// Transport failures (already retried by the client) come back as plain
// errors; a record failing the validity gate returns ErrRecordDiscarded
// wrapped with the missing field's name. Neither aborts the run.
func (f *DetailFetcher) Fetch(ctx context.Context, pageURL string) (*DetailRecord, error) {
	body, err := f.client.Get(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("detail fetch %s: %w", pageURL, err)
	}

	doc, err := ParseDocument(string(body), f.baseURL)
	if err != nil {
		return nil, fmt.Errorf("detail parse %s: %w", pageURL, err)
	}

	record := &DetailRecord{
		URL:    pageURL,
		Fields: make(map[string]interface{}, len(f.fields)),
	}

	for _, spec := range f.fields {
		value, ok, err := Extract(ctx, doc, spec)
		if err != nil {
			return nil, fmt.Errorf("detail extract %s: %w", pageURL, err)
		}
		if ok {
			record.Fields[spec.Name] = value
			continue
		}
		// Validity gate: every required field must resolve non-empty
		// under some strategy, or the whole record is discarded.
		if spec.Required {
			return nil, fmt.Errorf("%w: required field %q empty for %s", ErrRecordDiscarded, spec.Name, pageURL)
		}
	}

	return record, nil
}
