// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/reallyblaised/beauty-in-stats/internal/fetch"
	"github.com/reallyblaised/beauty-in-stats/internal/inspire"
	"github.com/reallyblaised/beauty-in-stats/internal/latex"
	"github.com/reallyblaised/beauty-in-stats/pkg/types"
)

const (
	defaultTimeout     = 60 * time.Second
	defaultDelay       = 3 * time.Second
	defaultUserAgent   = "beauty-in-stats/0.1"
	defaultPageTimeout = 30 * time.Second
	defaultOutputDir   = "data"

	expandedDir = "expanded"
	strippedDir = "boilerplate_free_tex"
)

// processPaper runs the per-paper pipeline: INSPIRE enrichment when a
// client is given, artifact download, and LaTeX expansion plus
// boilerplate stripping when a source bundle was obtained. Failures are
// reported on w and leave the record partially populated rather than
// aborting the batch.
func processPaper(ctx context.Context, client *inspire.Client, fetcher *fetch.Fetcher, paper *types.Paper, maxDepth int, outputDir string, w io.Writer) {
	if client != nil {
		if err := client.Enrich(ctx, paper); err != nil {
			fmt.Fprintf(w, "warning: enriching %s: %v\n", paper.ArxivID, err)
		}
	}

	if fetcher == nil {
		return
	}
	if !fetcher.FetchPaper(ctx, paper, w) {
		return
	}
	if !paper.HasSource {
		return
	}

	res, err := latex.ProcessSource(
		paper.SourcePath,
		filepath.Join(outputDir, expandedDir, paper.ArxivID+".tex"),
		filepath.Join(outputDir, strippedDir, paper.ArxivID+".tex"),
		maxDepth, nil,
	)
	if err != nil {
		fmt.Fprintf(w, "warning: processing %s: %v\n", paper.ArxivID, err)
		return
	}
	paper.ExpandedPath = res.ExpandedPath
}

// sleepCtx pauses between downloads without ignoring cancellation.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// validateDates checks optional YYYY-MM-DD bounds and their ordering.
func validateDates(start, end string) error {
	var from, to time.Time
	var err error
	if start != "" {
		if from, err = time.Parse("2006-01-02", start); err != nil {
			return fmt.Errorf("invalid --start-date %q: want YYYY-MM-DD", start)
		}
	}
	if end != "" {
		if to, err = time.Parse("2006-01-02", end); err != nil {
			return fmt.Errorf("invalid --end-date %q: want YYYY-MM-DD", end)
		}
	}
	if start != "" && end != "" && to.Before(from) {
		return fmt.Errorf("--end-date %s precedes --start-date %s", end, start)
	}
	return nil
}
