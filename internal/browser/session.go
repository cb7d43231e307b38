// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package browser owns the headless Chrome session used to render the
// archive's JavaScript-driven listing pages.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// NavigationError reports a page load or in-page wait that failed or
// timed out.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigating %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// Session is a scoped handle on one headless Chrome instance. The
// caller creates it at run start, passes it down explicitly, and must
// call Close on every exit path; Close terminates the browser process.
type Session struct {
	ctx     context.Context
	cancels []context.CancelFunc
}

// NewSession launches headless Chrome. A launch failure is the one
// unrecoverable setup error in the pipeline, so callers should treat a
// non-nil error as fatal.
func NewSession(ctx context.Context) (*Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	s := &Session{
		ctx:     browserCtx,
		cancels: []context.CancelFunc{cancelBrowser, cancelAlloc},
	}

	// Running an empty task forces the browser process to start now,
	// surfacing launch failures before any page work begins.
	if err := chromedp.Run(browserCtx); err != nil {
		s.Close()
		return nil, fmt.Errorf("launching headless browser: %w", err)
	}
	return s, nil
}

// Close terminates the browser process. Safe to call more than once.
func (s *Session) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
}

// Navigate loads url and waits until the element matching waitFor is
// visible, bounded by timeout.
func (s *Session) Navigate(url, waitFor string, timeout time.Duration) error {
	tctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	err := chromedp.Run(tctx,
		chromedp.Navigate(url),
		chromedp.WaitVisible(waitFor, chromedp.ByQuery),
	)
	if err != nil {
		return &NavigationError{URL: url, Err: err}
	}
	return nil
}

// OuterHTML returns the rendered markup of the first element matching sel.
func (s *Session) OuterHTML(sel string, timeout time.Duration) (string, error) {
	tctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(tctx, chromedp.OuterHTML(sel, &html, chromedp.ByQuery))
	if err != nil {
		return "", &NavigationError{URL: sel, Err: err}
	}
	return html, nil
}

// Evaluate runs a JavaScript expression in the page and decodes the
// result into out.
func (s *Session) Evaluate(expr string, out any, timeout time.Duration) error {
	tctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	if err := chromedp.Run(tctx, chromedp.Evaluate(expr, out)); err != nil {
		return &NavigationError{URL: expr, Err: err}
	}
	return nil
}

// Click dispatches a click on the first element matching sel and waits
// settle for the page to react.
func (s *Session) Click(sel string, settle, timeout time.Duration) error {
	tctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	err := chromedp.Run(tctx,
		chromedp.Click(sel, chromedp.ByQuery),
		chromedp.Sleep(settle),
	)
	if err != nil {
		return &NavigationError{URL: sel, Err: err}
	}
	return nil
}
