// Package browser wraps chromedp for the adapters that scrape JS-rendered
// calendar pages. Each Session owns one browser process; the owning adapter
// must Close it on every exit path.
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/icetimehq/icetime-api/pkg/config"
	appErrors "github.com/icetimehq/icetime-api/pkg/errors"
)

// Session is one exclusive headless-browser instance.
type Session struct {
	ctx     context.Context
	cancels []context.CancelFunc

	navTimeout     time.Duration
	stepTimeout    time.Duration
	contentTimeout time.Duration
}

// NewSession launches a browser context. Callers must defer Close.
func NewSession(parent context.Context, cfg config.BrowserConfig) (*Session, error) {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if !cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	s := &Session{
		ctx:            browserCtx,
		cancels:        []context.CancelFunc{browserCancel, allocCancel},
		navTimeout:     cfg.NavTimeout,
		stepTimeout:    cfg.StepTimeout,
		contentTimeout: cfg.ContentTimeout,
	}

	// Start the browser process eagerly so a missing binary fails here,
	// not on the first navigation step.
	if err := chromedp.Run(browserCtx); err != nil {
		s.Close()
		return nil, appErrors.Wrap(err, appErrors.ErrSourceUnavailable.Code, appErrors.ErrSourceUnavailable.Status, "failed to launch browser")
	}
	return s, nil
}

// Close releases the browser process. Safe to call more than once.
func (s *Session) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
}

// Navigate opens url and waits for the load event, bounded by the
// navigation timeout.
func (s *Session) Navigate(url string) error {
	return s.run(s.navTimeout, fmt.Sprintf("navigate %s", url), chromedp.Navigate(url))
}

// WaitVisible blocks until sel is visible, bounded by the step timeout.
func (s *Session) WaitVisible(sel string) error {
	return s.run(s.stepTimeout, fmt.Sprintf("wait for %s", sel), chromedp.WaitVisible(sel, chromedp.ByQuery))
}

// WaitVisibleLong is WaitVisible with the longer content deadline, for the
// final marker that only appears once the page's data has rendered.
func (s *Session) WaitVisibleLong(sel string) error {
	return s.run(s.contentTimeout, fmt.Sprintf("wait for %s", sel), chromedp.WaitVisible(sel, chromedp.ByQuery))
}

// Click waits for sel and clicks it, bounded by the step timeout.
func (s *Session) Click(sel string) error {
	return s.run(s.stepTimeout, fmt.Sprintf("click %s", sel),
		chromedp.WaitVisible(sel, chromedp.ByQuery),
		chromedp.Click(sel, chromedp.ByQuery),
	)
}

// OuterHTML extracts the rendered markup of the first node matching sel.
func (s *Session) OuterHTML(sel string) (string, error) {
	var html string
	err := s.run(s.stepTimeout, fmt.Sprintf("extract %s", sel), chromedp.OuterHTML(sel, &html, chromedp.ByQuery))
	return html, err
}

// EvaluateJSON runs a JS expression in the page and decodes its result.
func (s *Session) EvaluateJSON(expr string, out interface{}) error {
	return s.run(s.stepTimeout, "evaluate expression", chromedp.Evaluate(expr, out))
}

func (s *Session) run(timeout time.Duration, step string, actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	if err := chromedp.Run(ctx, actions...); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return appErrors.Wrap(err, appErrors.ErrNavigationTimeout.Code, appErrors.ErrNavigationTimeout.Status,
				fmt.Sprintf("timed out: %s", step))
		}
		return appErrors.Wrap(err, appErrors.ErrSourceUnavailable.Code, appErrors.ErrSourceUnavailable.Status,
			fmt.Sprintf("browser step failed: %s", step))
	}
	return nil
}
