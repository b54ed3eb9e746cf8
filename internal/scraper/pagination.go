// internal/scraper/pagination.go
package scraper

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"cinescrape/internal/config"
	"cinescrape/internal/utils"
)

// PageSource produces listing-page documents, one per pagination step.
// Page is 1-based. A source returns ErrNoMorePages when it cannot
// advance further.
type PageSource interface {
	Page(ctx context.Context, n int) (*Document, error)
	Name() string
}

// paginationState tracks where the driver is in its state machine:
// Fetching -> LinksFound -> Continue|Stop, Fetching -> NoLinks -> Stop,
// Fetching -> FetchFailed -> Stop.
type paginationState int

const (
	stateFetching paginationState = iota
	stateLinksFound
	stateNoLinks
	stateFetchFailed
	stateExhausted
)

func (s paginationState) String() string {
	switch s {
	case stateFetching:
		return "fetching"
	case stateLinksFound:
		return "links_found"
	case stateNoLinks:
		return "no_links"
	case stateFetchFailed:
		return "fetch_failed"
	case stateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Driver walks listing pages sequentially, feeding each document to the
// link discoverer and accumulating canonical URLs into the run-wide set.
// It advances only while a page contributes at least one new URL and the
// page ceiling is not reached.
type Driver struct {
	source     PageSource
	discoverer *LinkDiscoverer
	set        *LinkSet
	maxPages   int
	pace       *rate.Limiter
	log        utils.Logger
	state      paginationState

	pageCallback func() // invoked per fetched page, for metrics
}

// DriverConfig configures the pagination driver.
type DriverConfig struct {
	Source     PageSource
	Discoverer *LinkDiscoverer
	Set        *LinkSet
	MaxPages   int
	// PageDelay is the minimum pacing interval between listing fetches.
	PageDelay rate.Limit
}

// NewDriver creates a pagination driver.
func NewDriver(cfg DriverConfig) (*Driver, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("page source is required")
	}
	if cfg.Discoverer == nil {
		return nil, fmt.Errorf("link discoverer is required")
	}
	if cfg.Set == nil {
		cfg.Set = NewLinkSet()
	}

	pace := rate.NewLimiter(rate.Inf, 1)
	if cfg.PageDelay > 0 {
		pace = rate.NewLimiter(cfg.PageDelay, 1)
	}

	return &Driver{
		source:     cfg.Source,
		discoverer: cfg.Discoverer,
		set:        cfg.Set,
		maxPages:   cfg.MaxPages,
		pace:       pace,
		log:        utils.NewComponentLogger("pagination"),
	}, nil
}

// OnPage registers a callback invoked for every fetched listing page.
func (d *Driver) OnPage(fn func()) { d.pageCallback = fn }

// State returns the driver's last pagination state.
func (d *Driver) State() string { return d.state.String() }

// Run drives pagination to completion. Stop conditions: the source is
// exhausted, a page fetch fails, no strategy finds links, a page
// contributes no new URLs, or the page ceiling is reached. None of these
// abort the run; the accumulated set is whatever was discovered.
func (d *Driver) Run(ctx context.Context) error {
	for page := 1; d.maxPages == 0 || page <= d.maxPages; page++ {
		d.state = stateFetching
		if err := d.pace.Wait(ctx); err != nil {
			return err
		}

		doc, err := d.source.Page(ctx, page)
		if err != nil {
			if errors.Is(err, ErrNoMorePages) {
				d.state = stateExhausted
				d.log.Infof("source %s exhausted after %d pages", d.source.Name(), page-1)
				return nil
			}
			d.state = stateFetchFailed
			d.log.Warnf("page %d fetch failed, stopping pagination: %v", page, err)
			return nil
		}
		if d.pageCallback != nil {
			d.pageCallback()
		}

		links, err := d.discoverer.Discover(doc)
		if errors.Is(err, ErrNoLinksFound) {
			d.state = stateNoLinks
			d.log.Infof("no links on page %d, stopping pagination", page)
			return nil
		}
		if err != nil {
			return fmt.Errorf("link discovery on page %d: %w", page, err)
		}

		d.state = stateLinksFound
		newCount := 0
		for _, link := range links {
			if d.set.Add(link) {
				newCount++
			}
		}

		d.log.Infof("page %d: %d links, %d new (total %d)", page, len(links), newCount, d.set.Len())
		if newCount == 0 {
			return nil
		}
	}

	d.log.Infof("page ceiling reached with %d links accumulated", d.set.Len())
	return nil
}

// offsetSource fetches listing pages through the HTTP client using a URL
// template with {country}, {start_year}, {end_year} and {start}
// placeholders; {start} advances by the page size.
type offsetSource struct {
	client   *HTTPClient
	template string
	pageSize int
	job      config.CountryJob
	baseURL  string
}

// NewOffsetSource creates a URL-template page source for one country job.
func NewOffsetSource(client *HTTPClient, listing config.ListingConfig, job config.CountryJob, baseURL string) PageSource {
	return &offsetSource{
		client:   client,
		template: listing.URLTemplate,
		pageSize: listing.PageSize,
		job:      job,
		baseURL:  baseURL,
	}
}

func (s *offsetSource) Name() string { return "offset" }

func (s *offsetSource) Page(ctx context.Context, n int) (*Document, error) {
	pageURL := ExpandListingURL(s.template, s.job, 1+(n-1)*s.pageSize)

	body, err := s.client.Get(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("listing fetch: %w", err)
	}
	return ParseDocument(string(body), s.baseURL)
}

// ExpandListingURL substitutes job and pagination placeholders into the
// listing URL template.
func ExpandListingURL(template string, job config.CountryJob, start int) string {
	r := strings.NewReplacer(
		"{country}", job.Code,
		"{start_year}", strconv.Itoa(job.StartYear),
		"{end_year}", strconv.Itoa(job.EndYear),
		"{start}", strconv.Itoa(start),
	)
	return r.Replace(template)
}

// Interactor is the interactive-pagination collaborator: it renders a
// listing page and performs "load more" actions on it.
type Interactor interface {
	// Open navigates to the listing URL and returns the initial markup.
	Open(ctx context.Context, url string) (string, error)
	// LoadMore performs one load action and returns the updated markup,
	// or ErrNoMorePages when no further action is available.
	LoadMore(ctx context.Context) (string, error)
}

// loadMoreSource adapts an Interactor into a PageSource: step n > 1
// performs one additional load action on the already-open page.
type loadMoreSource struct {
	interactor Interactor
	startURL   string
	baseURL    string
}

// NewLoadMoreSource creates an interactive page source.
func NewLoadMoreSource(interactor Interactor, startURL, baseURL string) PageSource {
	return &loadMoreSource{interactor: interactor, startURL: startURL, baseURL: baseURL}
}

func (s *loadMoreSource) Name() string { return "load_more" }

func (s *loadMoreSource) Page(ctx context.Context, n int) (*Document, error) {
	var html string
	var err error
	if n == 1 {
		html, err = s.interactor.Open(ctx, s.startURL)
	} else {
		html, err = s.interactor.LoadMore(ctx)
	}
	if err != nil {
		return nil, err
	}
	return ParseDocument(html, s.baseURL)
}
