// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the beauty-in-stats CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the beauty-in-stats CLI.
var rootCmd = &cobra.Command{
	Use:   "beauty-in-stats",
	Short: "Build a corpus of LHCb physics papers",
	Long: `beauty-in-stats assembles a machine-readable corpus of LHCb publications.
It scrapes the public analysis archive for paper metadata, enriches records
through INSPIRE-HEP, downloads PDF and LaTeX artifacts from arXiv, expands
multi-file LaTeX sources into single documents, and strips boilerplate to
leave physics prose.

Each pipeline surface is a subcommand: scrape walks the archive listing,
build queries INSPIRE-HEP directly, and process re-runs the LaTeX stages
over already-downloaded sources.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./beauty-in-stats.yaml or ~/.config/beauty-in-stats/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("beauty-in-stats")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "beauty-in-stats"))
		}
	}

	viper.SetEnvPrefix("BEAUTY_IN_STATS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// stringSetting resolves a string option: an explicitly set flag wins,
// then the config file or environment, then the flag default.
func stringSetting(cmd *cobra.Command, flag, key string) string {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetString(flag)
		return v
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	v, _ := cmd.Flags().GetString(flag)
	return v
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
