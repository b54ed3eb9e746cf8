// internal/scraper/client.go
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"cinescrape/internal/utils"
)

// HTTPClient is the document fetch collaborator: it applies the header
// set, rotates user agents, rate-limits requests and retries transport
// failures according to the configured policy.
type HTTPClient struct {
	httpClient *http.Client
	userAgents []string
	uaIndex    int
	uaMu       sync.Mutex
	headers    map[string]string
	limiter    *rate.Limiter
	retry      utils.RetryPolicy
	log        utils.Logger

	retryCallback func() // invoked once per retried attempt, for metrics
}

// ClientConfig defines the fetch collaborator's options.
type ClientConfig struct {
	Timeout    time.Duration
	UserAgents []string
	Headers    map[string]string
	RateLimit  float64 // requests per second
	RateBurst  int
	Retry      utils.RetryPolicy
}

// NewHTTPClient creates a fetch client with the given configuration.
func NewHTTPClient(cfg ClientConfig) *HTTPClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 1.0
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 5
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = utils.DefaultRetryPolicy()
	}
	if len(cfg.UserAgents) == 0 {
		cfg.UserAgents = []string{
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		}
	}

	return &HTTPClient{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgents: cfg.UserAgents,
		headers:    cfg.Headers,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		retry:      cfg.Retry,
		log:        utils.NewComponentLogger("http-client"),
	}
}

// OnRetry registers a callback invoked for every failed attempt that
// will be retried.
func (c *HTTPClient) OnRetry(fn func()) { c.retryCallback = fn }

// Get fetches raw markup for the target URL. A timed-out request counts
// as one retry attempt; 4xx statuses other than 429 are permanent.
func (c *HTTPClient) Get(ctx context.Context, targetURL string) ([]byte, error) {
	if _, err := url.ParseRequestURI(targetURL); err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	var body []byte
	first := true
	err := c.retry.Do(ctx, func() error {
		if !first && c.retryCallback != nil {
			c.retryCallback()
		}
		first = false

		if err := c.limiter.Wait(ctx); err != nil {
			return utils.Permanent(err)
		}

		var err error
		body, err = c.fetchOnce(ctx, targetURL)
		return err
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (c *HTTPClient) fetchOnce(ctx context.Context, targetURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, utils.Permanent(fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("User-Agent", c.nextUserAgent())
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		statusErr := &StatusError{URL: targetURL, Code: resp.StatusCode}
		// Rate limiting and server errors are worth retrying; other
		// client errors are not.
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, statusErr
		}
		return nil, utils.Permanent(statusErr)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

func (c *HTTPClient) nextUserAgent() string {
	c.uaMu.Lock()
	defer c.uaMu.Unlock()

	ua := c.userAgents[c.uaIndex]
	c.uaIndex = (c.uaIndex + 1) % len(c.userAgents)
	return ua
}
