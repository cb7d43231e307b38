package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "beauty-in-stats/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ScrapeConfig holds settings for the archive listing scrape.
type ScrapeConfig struct {
	// ArchiveURL is the publication listing page.
	ArchiveURL string `json:"archive_url" yaml:"archive_url"`

	// MaxPapers caps the number of records collected; 0 means unbounded.
	MaxPapers int `json:"max_papers" yaml:"max_papers"`

	// StartDate and EndDate are optional YYYY-MM-DD bounds on the query.
	StartDate string `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty" yaml:"end_date,omitempty"`

	// PageTimeout is how long to wait for the listing table to render.
	PageTimeout time.Duration `json:"page_timeout" yaml:"page_timeout"`

	// MaxRetries is the number of attempts before a page is skipped (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// RetryDelay is the pause between page-load attempts (default 2s).
	RetryDelay time.Duration `json:"retry_delay" yaml:"retry_delay"`
}

// FetchConfig holds settings for artifact (PDF and LaTeX source) downloads.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// OutputDir is the base directory for the corpus
	// (contains pdfs/, source/, expanded/, boilerplate_free_tex/, abstracts/, metadata/).
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// DownloadDelay is the delay between consecutive downloads
	// (default 3s per arXiv guidelines).
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay"`

	// MaxSourceBytes rejects e-print payloads larger than this (default 50 MiB).
	MaxSourceBytes int64 `json:"max_source_bytes" yaml:"max_source_bytes"`
}

// InspireConfig holds settings for the INSPIRE-HEP metadata enrichment.
type InspireConfig struct {
	HTTPConfig `yaml:",inline"`
}

// ExpandConfig holds settings for LaTeX include expansion.
type ExpandConfig struct {
	// MaxDepth bounds recursive include resolution (default 10).
	MaxDepth int `json:"max_depth" yaml:"max_depth"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Scrape  ScrapeConfig  `json:"scrape" yaml:"scrape"`
	Fetch   FetchConfig   `json:"fetch" yaml:"fetch"`
	Inspire InspireConfig `json:"inspire" yaml:"inspire"`
	Expand  ExpandConfig  `json:"expand" yaml:"expand"`
}
