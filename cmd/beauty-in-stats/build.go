// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/reallyblaised/beauty-in-stats/internal/corpus"
	"github.com/reallyblaised/beauty-in-stats/internal/fetch"
	"github.com/reallyblaised/beauty-in-stats/internal/inspire"
	"github.com/reallyblaised/beauty-in-stats/internal/latex"
	"github.com/reallyblaised/beauty-in-stats/pkg/types"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a corpus from INSPIRE-HEP without touching the archive",
	Long: `Build queries INSPIRE-HEP for LHCb collaboration articles and assembles
a corpus directly from the results, skipping the archive listing scrape.
Records arrive already enriched with citation counts and abstracts; with
--download the arXiv artifacts are fetched and processed as in scrape.

Records found this way carry no LHCb paper id or working-group labels;
they are keyed by arXiv id in the corpus.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().Int("max-results", 100, "maximum records to fetch (0 = all)")
	buildCmd.Flags().String("sort", "mostcited", "result order: mostcited or mostrecent")
	buildCmd.Flags().Bool("download", true, "download PDF and LaTeX artifacts")
	buildCmd.Flags().String("output-dir", defaultOutputDir, "base directory for the corpus")
	buildCmd.Flags().String("start-date", "", "earliest paper date (YYYY-MM-DD)")
	buildCmd.Flags().String("end-date", "", "latest paper date (YYYY-MM-DD)")
	buildCmd.Flags().Duration("timeout", defaultTimeout, "HTTP request timeout")
	buildCmd.Flags().Duration("delay", defaultDelay, "delay between consecutive downloads")
	buildCmd.Flags().Int("max-depth", latex.DefaultMaxDepth, "LaTeX include expansion depth limit")

	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	startDate, _ := cmd.Flags().GetString("start-date")
	endDate, _ := cmd.Flags().GetString("end-date")
	if err := validateDates(startDate, endDate); err != nil {
		return err
	}

	sortBy, _ := cmd.Flags().GetString("sort")
	if sortBy != "mostcited" && sortBy != "mostrecent" {
		return fmt.Errorf("invalid --sort %q: want mostcited or mostrecent", sortBy)
	}

	outputDir := stringSetting(cmd, "output-dir", "output_dir")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	download, _ := cmd.Flags().GetBool("download")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	delay, _ := cmd.Flags().GetDuration("delay")
	maxDepth, _ := cmd.Flags().GetInt("max-depth")

	httpCfg := types.HTTPConfig{Timeout: timeout, UserAgent: defaultUserAgent}
	client := inspire.NewClient(types.InspireConfig{HTTPConfig: httpCfg})

	ctx := cmd.Context()

	papers, err := client.FetchLHCbPapers(ctx, startDate, endDate, maxResults, sortBy, os.Stdout)
	if err != nil {
		return fmt.Errorf("querying INSPIRE-HEP: %w", err)
	}

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
		ArchiveURL: inspire.APIBase,
		StartDate:  startDate,
		EndDate:    endDate,
		MaxPapers:  maxResults,
	})
	writer := corpus.NewWriter(outputDir)

	for _, p := range papers {
		// Already enriched by the literature query; no second lookup.
		processPaper(ctx, nil, fetcher, p, maxDepth, outputDir, os.Stdout)
		table.Append(p)
		if download {
			if err := sleepCtx(ctx, delay); err != nil {
				return err
			}
		}
	}

	if err := writer.Flush(table); err != nil {
		return fmt.Errorf("writing corpus: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "corpus: %d paper(s) in %s\n", table.Len(), outputDir)
	return nil
}
