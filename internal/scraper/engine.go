// internal/scraper/engine.go
package scraper

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"cinescrape/internal/config"
	"cinescrape/internal/monitoring"
	"cinescrape/internal/utils"
)

// Engine runs one extraction job end to end: sequential link discovery
// over the listing pages, then bounded-parallel detail fetching over the
// accumulated link set. Discovery never overlaps fetching.
type Engine struct {
	cfg        *config.ScraperConfig
	client     *HTTPClient
	discoverer *LinkDiscoverer
	fetcher    *DetailFetcher
	agg        *Aggregator
	set        *LinkSet
	interactor Interactor
	metrics    *monitoring.Metrics
	log        utils.Logger
}

// EngineOption customizes engine construction.
type EngineOption func(*Engine)

// WithInteractor supplies the interactive collaborator used when the
// listing paginates via load-more actions instead of offset URLs.
func WithInteractor(i Interactor) EngineOption {
	return func(e *Engine) { e.interactor = i }
}

// WithMetrics wires the engine's progress into the given instrument set.
func WithMetrics(m *monitoring.Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine assembles the collaborators for one scraper configuration.
func NewEngine(cfg *config.ScraperConfig, opts ...EngineOption) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	client := NewHTTPClient(ClientConfig{
		Timeout:    cfg.Request.Timeout.Std(),
		UserAgents: cfg.Request.UserAgents,
		Headers:    cfg.Request.Headers,
		RateLimit:  cfg.Request.RateLimit,
		RateBurst:  cfg.Request.RateBurst,
		Retry:      cfg.Request.Retry.Policy(),
	})

	e := &Engine{
		cfg:        cfg,
		client:     client,
		discoverer: NewLinkDiscoverer(cfg.Links.Strategies),
		fetcher:    NewDetailFetcher(client, cfg.Fields, cfg.Links.BaseURL),
		agg:        NewAggregator(cfg.Fields),
		set:        NewLinkSet(),
		log:        utils.NewComponentLogger("engine"),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.metrics != nil {
		client.OnRetry(e.metrics.FetchRetries.Inc)
	}

	if cfg.Listing.Pagination == config.PaginationLoadMore && e.interactor == nil {
		return nil, fmt.Errorf("load_more pagination requires an interactor")
	}
	return e, nil
}

// Aggregator exposes the engine's result aggregator for post-run merge
// steps (derived columns, currency conversion, constant columns).
func (e *Engine) Aggregator() *Aggregator { return e.agg }

// Links returns the accumulated canonical link set.
func (e *Engine) Links() *LinkSet { return e.set }

// Run executes one country job: discover all detail links, then fetch
// them in parallel and aggregate the surviving records.
func (e *Engine) Run(ctx context.Context, job config.CountryJob) (*ResultTable, error) {
	if err := e.discover(ctx, job); err != nil {
		return nil, err
	}

	urls := e.set.URLs()
	e.log.Infof("discovery complete for %s: %d detail pages", job.Country, len(urls))
	if e.metrics != nil {
		e.metrics.LinksDiscovered.Add(float64(len(urls)))
	}

	if err := e.fetchAll(ctx, urls); err != nil {
		return nil, err
	}

	summary := e.agg.Summary()
	e.log.Infof("job %s done: %s", job.Country, summary)
	return e.agg.Table(), nil
}

// discover walks the listing pages sequentially, feeding the run-wide
// link set.
func (e *Engine) discover(ctx context.Context, job config.CountryJob) error {
	source, err := e.pageSource(job)
	if err != nil {
		return err
	}

	var pace rate.Limit
	if d := e.cfg.Request.PageDelay.Std(); d > 0 {
		pace = rate.Every(d)
	}

	driver, err := NewDriver(DriverConfig{
		Source:     source,
		Discoverer: e.discoverer,
		Set:        e.set,
		MaxPages:   e.cfg.Listing.MaxPages,
		PageDelay:  pace,
	})
	if err != nil {
		return err
	}
	if e.metrics != nil {
		driver.OnPage(e.metrics.PagesFetched.Inc)
	}

	if err := driver.Run(ctx); err != nil {
		return fmt.Errorf("pagination for %s: %w", job.Country, err)
	}
	return nil
}

func (e *Engine) pageSource(job config.CountryJob) (PageSource, error) {
	switch e.cfg.Listing.Pagination {
	case config.PaginationLoadMore:
		startURL := ExpandListingURL(e.cfg.Listing.URLTemplate, job, 1)
		return NewLoadMoreSource(e.interactor, startURL, e.cfg.Links.BaseURL), nil
	case config.PaginationOffset, "":
		return NewOffsetSource(e.client, e.cfg.Listing, job, e.cfg.Links.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown pagination mode %q", e.cfg.Listing.Pagination)
	}
}

// fetchAll fans the link set out to a bounded worker pool. Per-item
// failures and discards are absorbed by the aggregator; the pool stops
// issuing new work only when the failure budget is exhausted, and
// in-flight fetches always drain before return.
func (e *Engine) fetchAll(ctx context.Context, urls []string) error {
	if len(urls) == 0 {
		return nil
	}

	workers := e.cfg.Engine.Concurrency
	if workers <= 0 {
		workers = 1
	}
	budget := e.cfg.Engine.FailureBudget

	jobs := make(chan string)
	var wg sync.WaitGroup
	var failMu sync.Mutex
	failures := 0
	budgetHit := false

	overBudget := func() bool {
		failMu.Lock()
		defer failMu.Unlock()
		return budget > 0 && failures >= budget
	}
	recordFailure := func() {
		failMu.Lock()
		failures++
		if budget > 0 && failures >= budget && !budgetHit {
			budgetHit = true
			e.log.Warnf("failure budget of %d exhausted, no new fetches will be issued", budget)
		}
		failMu.Unlock()
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pageURL := range jobs {
				e.fetchOne(ctx, pageURL, recordFailure)
			}
		}()
	}

feed:
	for _, u := range urls {
		if overBudget() {
			break
		}
		select {
		case jobs <- u:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	return ctx.Err()
}

func (e *Engine) fetchOne(ctx context.Context, pageURL string, recordFailure func()) {
	if e.metrics != nil {
		e.metrics.InFlight.Inc()
		defer e.metrics.InFlight.Dec()
	}

	record, err := e.fetcher.Fetch(ctx, pageURL)
	switch {
	case err == nil:
		e.agg.Append(record)
		if e.metrics != nil {
			e.metrics.RecordsCollected.Inc()
		}
	case errors.Is(err, ErrRecordDiscarded):
		e.agg.Discard(pageURL, err)
		if e.metrics != nil {
			e.metrics.RecordsDiscarded.Inc()
		}
	default:
		e.agg.Fail(pageURL, err)
		recordFailure()
		if e.metrics != nil {
			e.metrics.FetchFailures.Inc()
		}
	}
}
