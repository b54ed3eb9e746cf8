// internal/scraper/types.go
package scraper

import (
	"errors"
	"fmt"
	"sync"
)

// Sentinel errors for the extraction pipeline.
var (
	// ErrNoLinksFound is the terminal pagination signal: no strategy
	// matched any anchor on the listing page. Not a failure.
	ErrNoLinksFound = errors.New("no links found")

	// ErrNoMorePages signals that the interactive collaborator has no
	// further load action available.
	ErrNoMorePages = errors.New("no more pages")

	// ErrRecordDiscarded marks a detail record that failed the validity
	// gate: a required field resolved empty under every strategy.
	ErrRecordDiscarded = errors.New("record discarded")
)

// StatusError reports a non-success HTTP status from the fetch
// collaborator.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d fetching %s", e.Code, e.URL)
}

// DetailRecord is one extracted catalog item, keyed by its canonical URL.
type DetailRecord struct {
	URL    string
	Fields map[string]interface{}
}

// LinkSet is the run-wide set of canonical detail-page URLs. It only
// grows; insertion is idempotent and safe for concurrent use.
type LinkSet struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	order []string
}

// NewLinkSet creates an empty link set.
func NewLinkSet() *LinkSet {
	return &LinkSet{seen: make(map[string]struct{})}
}

// Add inserts a canonical URL and reports whether it was new.
func (s *LinkSet) Add(u string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[u]; ok {
		return false
	}
	s.seen[u] = struct{}{}
	s.order = append(s.order, u)
	return true
}

// Contains reports membership.
func (s *LinkSet) Contains(u string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[u]
	return ok
}

// Len returns the number of distinct URLs.
func (s *LinkSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

// URLs returns the URLs in insertion order.
func (s *LinkSet) URLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// ResultTable is the ordered, append-only output of one run.
type ResultTable struct {
	Columns []string
	Rows    []map[string]interface{}
}

// Summary counts the run outcome per item.
type Summary struct {
	Collected int
	Discarded int
	Failed    int
}

func (s Summary) String() string {
	return fmt.Sprintf("collected=%d discarded=%d failed=%d", s.Collected, s.Discarded, s.Failed)
}
