// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/reallyblaised/beauty-in-stats/internal/latex"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Re-run LaTeX expansion and stripping over downloaded sources",
	Long: `Process walks the source/ tree of an existing corpus and regenerates
the expanded and boilerplate-free documents for every paper, without any
network access. Useful after changing the expansion depth or when a
previous run was interrupted mid-pipeline.`,
	RunE: runProcess,
}

func init() {
	processCmd.Flags().String("output-dir", defaultOutputDir, "base directory for the corpus")
	processCmd.Flags().Int("max-depth", latex.DefaultMaxDepth, "LaTeX include expansion depth limit")

	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	outputDir := stringSetting(cmd, "output-dir", "output_dir")
	maxDepth, _ := cmd.Flags().GetInt("max-depth")

	sourceRoot := filepath.Join(outputDir, "source")
	entries, err := os.ReadDir(sourceRoot)
	if err != nil {
		return fmt.Errorf("reading %s: %w", sourceRoot, err)
	}

	out := cmd.OutOrStdout()
	processed, failed := 0, 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		arxivID := entry.Name()

		_, err := latex.ProcessSource(
			filepath.Join(sourceRoot, arxivID),
			filepath.Join(outputDir, expandedDir, arxivID+".tex"),
			filepath.Join(outputDir, strippedDir, arxivID+".tex"),
			maxDepth, nil,
		)
		if err != nil {
			fmt.Fprintf(out, "failed    %s: %v\n", arxivID, err)
			failed++
			continue
		}
		fmt.Fprintf(out, "processed %s\n", arxivID)
		processed++
	}

	fmt.Fprintf(out, "\nprocessed: %d, failed: %d\n", processed, failed)
	if processed == 0 && failed > 0 {
		return fmt.Errorf("no sources processed")
	}
	return nil
}
