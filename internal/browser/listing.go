// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package browser

import (
	"context"
	"time"

	"github.com/reallyblaised/beauty-in-stats/pkg/types"
)

const (
	tableSel      = "table"
	nextButtonSel = `button[aria-label="Next page"]`

	// nextButtonState reports whether the pagination control can
	// advance: absent or disabled means the last page was reached.
	nextButtonState = `(() => {
		const b = document.querySelector('button[aria-label="Next page"]');
		if (!b) return true;
		return b.disabled || b.className.includes('disabled');
	})()`

	// settleDelay gives the listing table time to re-render after a
	// pagination click.
	settleDelay = 1 * time.Second
)

// Listing paginates the publication archive's listing table through a
// live browser session.
type Listing struct {
	session *Session
	cfg     types.ScrapeConfig
}

// NewListing wraps a session with the archive's pagination behavior.
func NewListing(session *Session, cfg types.ScrapeConfig) *Listing {
	return &Listing{session: session, cfg: cfg}
}

// Open navigates to the listing page and waits for the table to render.
func (l *Listing) Open(ctx context.Context) error {
	return l.session.Navigate(l.cfg.ArchiveURL, tableSel, l.cfg.PageTimeout)
}

// HTML returns the rendered listing table markup for the current page.
func (l *Listing) HTML(ctx context.Context) (string, error) {
	return l.session.OuterHTML(tableSel, l.cfg.PageTimeout)
}

// Next advances to the following listing page. It returns false when
// the archive reports no further pages.
func (l *Listing) Next(ctx context.Context) (bool, error) {
	var exhausted bool
	if err := l.session.Evaluate(nextButtonState, &exhausted, l.cfg.PageTimeout); err != nil {
		return false, err
	}
	if exhausted {
		return false, nil
	}
	if err := l.session.Click(nextButtonSel, settleDelay, l.cfg.PageTimeout); err != nil {
		return false, err
	}
	return true, nil
}
