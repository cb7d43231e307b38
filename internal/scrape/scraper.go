// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scrape

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/reallyblaised/beauty-in-stats/pkg/types"
)

// Pager is the listing navigation surface the scraper drives. The
// production implementation is browser.Listing; tests substitute an
// in-memory fake.
type Pager interface {
	// Open loads the first listing page.
	Open(ctx context.Context) error

	// HTML returns the current page's rendered listing table.
	HTML(ctx context.Context) (string, error)

	// Next advances to the following page, reporting false when the
	// archive has no more pages.
	Next(ctx context.Context) (bool, error)
}

// fetchState is one node of the per-page retry machine.
type fetchState int

const (
	stateFetching fetchState = iota
	stateRetrying
	stateSuccess
	stateSkipped
)

// pageFetch models the retry-then-skip policy for one page operation:
// Fetching → Retrying(n) → Success | Skipped.
type pageFetch struct {
	state    fetchState
	attempt  int
	attempts int
}

func newPageFetch(attempts int) *pageFetch {
	if attempts <= 0 {
		attempts = 3
	}
	return &pageFetch{state: stateFetching, attempts: attempts}
}

// observe records the outcome of one attempt and returns the machine's
// next state.
func (f *pageFetch) observe(err error) fetchState {
	f.attempt++
	switch {
	case err == nil:
		f.state = stateSuccess
	case f.attempt >= f.attempts:
		f.state = stateSkipped
	default:
		f.state = stateRetrying
	}
	return f.state
}

// Result summarizes one scrape run.
type Result struct {
	Papers       []*types.Paper
	PagesVisited int
	PagesSkipped int
	RowsSkipped  int
}

// Scraper drives the listing pagination and per-row extraction.
type Scraper struct {
	pager Pager
	cfg   types.ScrapeConfig

	// out receives run status; debug receives per-row detail and
	// defaults to io.Discard unless verbose output was requested.
	out   io.Writer
	debug io.Writer
}

// New builds a Scraper over an open pager.
func New(pager Pager, cfg types.ScrapeConfig, out, debug io.Writer) *Scraper {
	if out == nil {
		out = io.Discard
	}
	if debug == nil {
		debug = io.Discard
	}
	return &Scraper{pager: pager, cfg: cfg, out: out, debug: debug}
}

// Run paginates the archive until cfg.MaxPapers records are collected
// or pages are exhausted. After each parsed page the collected batch is
// handed to onPage (when non-nil) so the caller can flush incrementally;
// an onPage error aborts the run. Navigation failures are retried per
// the page state machine and then skipped, never failing the run.
func (s *Scraper) Run(ctx context.Context, onPage func([]*types.Paper) error) (Result, error) {
	var result Result

	if err := s.withRetry(ctx, "listing page load", s.pager.Open); err != nil {
		fmt.Fprintf(s.out, "listing page unreachable, no papers collected: %v\n", err)
		return result, nil
	}

	for page := 1; ; page++ {
		result.PagesVisited++

		batch, err := s.scrapePage(ctx, page, &result)
		if err != nil {
			result.PagesSkipped++
			fmt.Fprintf(s.out, "skipping page %d: %v\n", page, err)
		} else if len(batch) > 0 && onPage != nil {
			if err := onPage(batch); err != nil {
				return result, fmt.Errorf("flushing page %d: %w", page, err)
			}
		}

		if s.cfg.MaxPapers > 0 && len(result.Papers) >= s.cfg.MaxPapers {
			fmt.Fprintf(s.out, "reached limit of %d papers\n", s.cfg.MaxPapers)
			break
		}

		var more bool
		err = s.withRetry(ctx, "pagination", func(ctx context.Context) error {
			var nerr error
			more, nerr = s.pager.Next(ctx)
			return nerr
		})
		if err != nil {
			fmt.Fprintf(s.out, "pagination failed, stopping: %v\n", err)
			break
		}
		if !more {
			fmt.Fprintln(s.out, "reached last page")
			break
		}

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}
	}

	fmt.Fprintf(s.out, "collected %d papers over %d pages (%d pages skipped, %d rows dropped)\n",
		len(result.Papers), result.PagesVisited, result.PagesSkipped, result.RowsSkipped)
	return result, nil
}

// scrapePage fetches and parses the current page, appending records to
// the result up to the configured cap. It returns the records appended
// from this page.
func (s *Scraper) scrapePage(ctx context.Context, page int, result *Result) ([]*types.Paper, error) {
	var html string
	err := s.withRetry(ctx, "table fetch", func(ctx context.Context) error {
		var herr error
		html, herr = s.pager.HTML(ctx)
		return herr
	})
	if err != nil {
		return nil, err
	}

	parsed, err := ParsePage(html)
	if err != nil {
		return nil, err
	}
	result.RowsSkipped += parsed.Malformed

	var batch []*types.Paper
	for _, paper := range parsed.Papers {
		if s.cfg.MaxPapers > 0 && len(result.Papers) >= s.cfg.MaxPapers {
			break
		}
		result.Papers = append(result.Papers, paper)
		batch = append(batch, paper)
		fmt.Fprintf(s.debug, "parsed %s: %s\n", paper.LHCbID, truncate(paper.Title, 60))
	}

	fmt.Fprintf(s.out, "page %d: %d papers (%d rows dropped)\n", page, len(parsed.Papers), parsed.Malformed)
	return batch, nil
}

// withRetry drives fn through the page retry machine.
func (s *Scraper) withRetry(ctx context.Context, what string, fn func(context.Context) error) error {
	fetch := newPageFetch(s.cfg.MaxRetries)
	delay := s.cfg.RetryDelay
	if delay <= 0 {
		delay = 2 * time.Second
	}

	for {
		err := fn(ctx)
		switch fetch.observe(err) {
		case stateSuccess:
			return nil
		case stateSkipped:
			return err
		case stateRetrying:
			fmt.Fprintf(s.debug, "%s failed (attempt %d/%d), retrying: %v\n",
				what, fetch.attempt, fetch.attempts, err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
