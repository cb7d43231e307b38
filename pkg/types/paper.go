// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Paper holds metadata and artifact paths for one LHCb publication.
type Paper struct {
	// LHCbID is the internal publication identifier (e.g. "LHCb-PAPER-2023-001").
	// Unique across the corpus.
	LHCbID string `json:"lhcb_paper_id" yaml:"lhcb_paper_id"`

	// ArxivID is the arXiv identifier if the paper has a preprint (e.g. "2301.07041").
	ArxivID string `json:"arxiv_id,omitempty" yaml:"arxiv_id,omitempty"`

	// Title is the paper title as shown on the archive listing.
	Title string `json:"title" yaml:"title"`

	// Journal is the publication venue reported by the archive.
	Journal string `json:"journal,omitempty" yaml:"journal,omitempty"`

	// WorkingGroups lists the snake_case analysis working groups.
	// Empty when the listing carries no recognizable group; the record
	// is kept either way.
	WorkingGroups []string `json:"working_groups" yaml:"working_groups"`

	// DataTakingYears lists the years of data taking, as strings.
	DataTakingYears []string `json:"data_taking_years" yaml:"data_taking_years"`

	// RunPeriod is derived from DataTakingYears (e.g. "Run1", "Run1+Run2").
	RunPeriod string `json:"run_period" yaml:"run_period"`

	// Citations is the citation count reported by INSPIRE-HEP.
	Citations int `json:"citations" yaml:"citations"`

	// Abstract is the paper abstract, preferring the arXiv-sourced text.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// HasPDF and HasSource record which artifacts were fetched.
	HasPDF    bool `json:"has_pdf" yaml:"has_pdf"`
	HasSource bool `json:"has_source" yaml:"has_source"`

	// PDFPath, SourcePath and ExpandedPath are local paths, set once the
	// corresponding artifact has been written.
	PDFPath      string `json:"pdf_path,omitempty" yaml:"pdf_path,omitempty"`
	SourcePath   string `json:"source_path,omitempty" yaml:"source_path,omitempty"`
	ExpandedPath string `json:"expanded_path,omitempty" yaml:"expanded_path,omitempty"`
}

// Provenance records where and when a corpus was scraped.
type Provenance struct {
	// ScrapedAt is the time the run started.
	ScrapedAt time.Time `json:"scraped_at" yaml:"scraped_at"`

	// ArchiveURL is the listing page the run paginated.
	ArchiveURL string `json:"archive_url" yaml:"archive_url"`

	// StartDate and EndDate are the optional YYYY-MM-DD query bounds.
	StartDate string `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty" yaml:"end_date,omitempty"`

	// MaxPapers is the requested record cap, 0 for unbounded.
	MaxPapers int `json:"max_papers" yaml:"max_papers"`
}
