// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/reallyblaised/beauty-in-stats/internal/browser"
	"github.com/reallyblaised/beauty-in-stats/internal/corpus"
	"github.com/reallyblaised/beauty-in-stats/internal/fetch"
	"github.com/reallyblaised/beauty-in-stats/internal/inspire"
	"github.com/reallyblaised/beauty-in-stats/internal/latex"
	"github.com/reallyblaised/beauty-in-stats/internal/scrape"
	"github.com/reallyblaised/beauty-in-stats/pkg/types"
)

const defaultArchiveURL = "https://lbfence.cern.ch/alcm/public/analysis"

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape the LHCb publication archive into a corpus",
	Long: `Scrape renders the LHCb analysis archive in a headless browser, walks
its paginated publication table, and builds a corpus record per paper.
Each record is enriched through INSPIRE-HEP; with --download the arXiv
PDF and LaTeX source are fetched, the source is expanded into a single
document, and boilerplate is stripped.

Pages that repeatedly fail to load are skipped, not fatal; the corpus
is flushed after every listing page so an interrupted run keeps what
it collected.`,
	RunE: runScrape,
}

func init() {
	scrapeCmd.Flags().String("archive-url", defaultArchiveURL, "publication listing page")
	scrapeCmd.Flags().Int("max-papers", 0, "stop after this many papers (0 = all)")
	scrapeCmd.Flags().Bool("download", true, "download PDF and LaTeX artifacts")
	scrapeCmd.Flags().String("output-dir", defaultOutputDir, "base directory for the corpus")
	scrapeCmd.Flags().String("start-date", "", "earliest paper date (YYYY-MM-DD)")
	scrapeCmd.Flags().String("end-date", "", "latest paper date (YYYY-MM-DD)")
	scrapeCmd.Flags().Duration("timeout", defaultTimeout, "HTTP request timeout")
	scrapeCmd.Flags().Duration("delay", defaultDelay, "delay between consecutive downloads")
	scrapeCmd.Flags().Duration("page-timeout", defaultPageTimeout, "wait for the listing table to render")
	scrapeCmd.Flags().Int("max-depth", latex.DefaultMaxDepth, "LaTeX include expansion depth limit")
	scrapeCmd.Flags().Bool("verbose", false, "log page-level scrape detail to stderr")

	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	startDate, _ := cmd.Flags().GetString("start-date")
	endDate, _ := cmd.Flags().GetString("end-date")
	if err := validateDates(startDate, endDate); err != nil {
		return err
	}

	outputDir := stringSetting(cmd, "output-dir", "output_dir")
	archiveURL := stringSetting(cmd, "archive-url", "archive_url")
	maxPapers, _ := cmd.Flags().GetInt("max-papers")
	download, _ := cmd.Flags().GetBool("download")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	delay, _ := cmd.Flags().GetDuration("delay")
	pageTimeout, _ := cmd.Flags().GetDuration("page-timeout")
	maxDepth, _ := cmd.Flags().GetInt("max-depth")
	verbose, _ := cmd.Flags().GetBool("verbose")

	scrapeCfg := types.ScrapeConfig{
		ArchiveURL:  archiveURL,
		MaxPapers:   maxPapers,
		StartDate:   startDate,
		EndDate:     endDate,
		PageTimeout: pageTimeout,
	}
	httpCfg := types.HTTPConfig{Timeout: timeout, UserAgent: defaultUserAgent}

	ctx := cmd.Context()

	session, err := browser.NewSession(ctx)
	if err != nil {
		return fmt.Errorf("starting headless browser: %w", err)
	}
	defer session.Close()

	client := inspire.NewClient(types.InspireConfig{HTTPConfig: httpCfg})
	var fetcher *fetch.Fetcher
	if download {
		fetcher = fetch.New(types.FetchConfig{
			HTTPConfig:    httpCfg,
			OutputDir:     outputDir,
			DownloadDelay: delay,
		})
	}

	table := corpus.NewTable(types.Provenance{
		ScrapedAt:  time.Now().UTC(),
		ArchiveURL: archiveURL,
		StartDate:  startDate,
		EndDate:    endDate,
		MaxPapers:  maxPapers,
	})
	writer := corpus.NewWriter(outputDir)

	debug := io.Writer(io.Discard)
	if verbose {
		debug = os.Stderr
	}
	scraper := scrape.New(browser.NewListing(session, scrapeCfg), scrapeCfg, os.Stdout, debug)

	onPage := func(papers []*types.Paper) error {
		for _, p := range papers {
			processPaper(ctx, client, fetcher, p, maxDepth, outputDir, os.Stdout)
			table.Append(p)
			if download {
				if err := sleepCtx(ctx, delay); err != nil {
					return err
				}
			}
		}
		return writer.Flush(table)
	}

	result, err := scraper.Run(ctx, onPage)
	if err != nil {
		return err
	}

	if err := writer.Flush(table); err != nil {
		return fmt.Errorf("final corpus flush: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "corpus: %d paper(s) in %s (%d page(s) visited, %d skipped)\n",
		table.Len(), outputDir, result.PagesVisited, result.PagesSkipped)
	return nil
}
