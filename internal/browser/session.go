// internal/browser/session.go
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"cinescrape/internal/config"
	"cinescrape/internal/scraper"
	"cinescrape/internal/utils"
)

// Session drives a headless Chrome tab through a load-more listing. It
// implements the pagination driver's interactive collaborator: Open
// renders the listing once, each LoadMore performs one click on the
// configured control and returns the grown markup.
type Session struct {
	ctx    context.Context
	cancel context.CancelFunc

	selector string
	maxSteps int
	wait     time.Duration
	steps    int
	opened   bool
	log      utils.Logger
}

// NewSession launches a browser tab for one listing run.
func NewSession(cfg *config.LoadMoreConfig) (*Session, error) {
	if cfg == nil || cfg.Selector == "" {
		return nil, fmt.Errorf("load-more selector is required")
	}

	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.DisableGPU,
		chromedp.NoSandbox, // Required for Docker environments
	}
	if cfg.Headless {
		opts = append(opts, chromedp.Headless)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	ctx, ctxCancel := chromedp.NewContext(allocCtx)
	cancel := func() {
		ctxCancel()
		allocCancel()
	}

	wait := cfg.Wait.Std()
	if wait <= 0 {
		wait = time.Second
	}
	maxSteps := cfg.MaxSteps
	if maxSteps <= 0 {
		maxSteps = 3
	}

	return &Session{
		ctx:      ctx,
		cancel:   cancel,
		selector: cfg.Selector,
		maxSteps: maxSteps,
		wait:     wait,
		log:      utils.NewComponentLogger("browser"),
	}, nil
}

// Open navigates to the listing URL and returns the initial markup.
func (s *Session) Open(ctx context.Context, url string) (string, error) {
	runCtx := s.runContext(ctx)

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(s.wait),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("navigation failed: %w", err)
	}

	s.opened = true
	s.steps = 0
	s.log.Debugf("opened %s (%d bytes)", url, len(html))
	return html, nil
}

// LoadMore scrolls to the bottom, clicks the configured control once and
// returns the updated markup. When the control is gone or the step
// ceiling is reached it reports that no further pages exist.
func (s *Session) LoadMore(ctx context.Context) (string, error) {
	if !s.opened {
		return "", fmt.Errorf("no listing page is open")
	}
	if s.steps >= s.maxSteps {
		s.log.Debugf("load-more step ceiling %d reached", s.maxSteps)
		return "", scraper.ErrNoMorePages
	}

	runCtx := s.runContext(ctx)

	var present bool
	err := chromedp.Run(runCtx,
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
		chromedp.Sleep(s.wait),
		chromedp.Evaluate(fmt.Sprintf(`document.querySelector(%q) !== null`, s.selector), &present),
	)
	if err != nil {
		return "", fmt.Errorf("load-more probe failed: %w", err)
	}
	if !present {
		return "", scraper.ErrNoMorePages
	}

	var html string
	err = chromedp.Run(runCtx,
		chromedp.Click(s.selector, chromedp.NodeVisible),
		chromedp.Sleep(s.wait),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("load-more click failed: %w", err)
	}

	s.steps++
	s.log.Debugf("load-more step %d/%d (%d bytes)", s.steps, s.maxSteps, len(html))
	return html, nil
}

// runContext bounds one browser action with the caller's deadline while
// keeping the tab's lifetime on the session context.
func (s *Session) runContext(ctx context.Context) context.Context {
	if deadline, ok := ctx.Deadline(); ok {
		bounded, cancel := context.WithDeadline(s.ctx, deadline)
		go func() {
			<-bounded.Done()
			cancel()
		}()
		return bounded
	}
	return s.ctx
}

// Close shuts the browser down.
func (s *Session) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

var _ scraper.Interactor = (*Session)(nil)
