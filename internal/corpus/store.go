// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/reallyblaised/beauty-in-stats/pkg/types"
)

// Store manages the summary.db SQLite snapshot.
type Store struct {
	db *sql.DB
}

// OpenStore opens or creates the snapshot database at path and ensures
// the schema exists.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			lhcb_paper_id TEXT,
			arxiv_id TEXT,
			title TEXT,
			journal TEXT,
			working_groups TEXT,
			data_taking_years TEXT,
			run_period TEXT,
			citations INTEGER,
			abstract TEXT,
			has_pdf INTEGER,
			has_source INTEGER,
			pdf_path TEXT,
			source_path TEXT,
			expanded_path TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_arxiv_id ON papers(arxiv_id)`,
		`CREATE TABLE IF NOT EXISTS provenance (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			scraped_at TEXT,
			archive_url TEXT,
			start_date TEXT,
			end_date TEXT,
			max_papers INTEGER
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// UpsertPaper inserts or replaces one record keyed by Key(p).
func (s *Store) UpsertPaper(p *types.Paper) error {
	key := Key(p)
	if key == "" {
		return fmt.Errorf("paper has no identifier")
	}

	_, err := s.db.Exec(
		`INSERT INTO papers (id, lhcb_paper_id, arxiv_id, title, journal,
			working_groups, data_taking_years, run_period, citations,
			abstract, has_pdf, has_source, pdf_path, source_path, expanded_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			lhcb_paper_id=excluded.lhcb_paper_id, arxiv_id=excluded.arxiv_id,
			title=excluded.title, journal=excluded.journal,
			working_groups=excluded.working_groups,
			data_taking_years=excluded.data_taking_years,
			run_period=excluded.run_period, citations=excluded.citations,
			abstract=excluded.abstract, has_pdf=excluded.has_pdf,
			has_source=excluded.has_source, pdf_path=excluded.pdf_path,
			source_path=excluded.source_path, expanded_path=excluded.expanded_path`,
		key, p.LHCbID, p.ArxivID, p.Title, p.Journal,
		strings.Join(p.WorkingGroups, ";"),
		strings.Join(p.DataTakingYears, ";"),
		p.RunPeriod, p.Citations,
		p.Abstract, p.HasPDF, p.HasSource,
		p.PDFPath, p.SourcePath, p.ExpandedPath,
	)
	if err != nil {
		return fmt.Errorf("upserting paper %s: %w", key, err)
	}
	return nil
}

// WriteProvenance records the run metadata, replacing any earlier row.
func (s *Store) WriteProvenance(prov types.Provenance) error {
	scrapedAt := ""
	if !prov.ScrapedAt.IsZero() {
		scrapedAt = prov.ScrapedAt.UTC().Format(time.RFC3339)
	}
	_, err := s.db.Exec(
		`INSERT INTO provenance (id, scraped_at, archive_url, start_date, end_date, max_papers)
		 VALUES (1, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			scraped_at=excluded.scraped_at, archive_url=excluded.archive_url,
			start_date=excluded.start_date, end_date=excluded.end_date,
			max_papers=excluded.max_papers`,
		scrapedAt, prov.ArchiveURL, prov.StartDate, prov.EndDate, prov.MaxPapers,
	)
	if err != nil {
		return fmt.Errorf("writing provenance: %w", err)
	}
	return nil
}

// CountPapers returns the number of stored records.
func (s *Store) CountPapers() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT count(*) FROM papers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting papers: %w", err)
	}
	return n, nil
}

// GetPaper loads one record by its snapshot key. Returns sql.ErrNoRows
// wrapped when the key is absent.
func (s *Store) GetPaper(key string) (*types.Paper, error) {
	var (
		p      types.Paper
		id     string
		groups string
		years  string
	)
	err := s.db.QueryRow(
		`SELECT id, lhcb_paper_id, arxiv_id, title, journal,
			working_groups, data_taking_years, run_period, citations,
			abstract, has_pdf, has_source, pdf_path, source_path, expanded_path
		 FROM papers WHERE id = ?`, key,
	).Scan(
		&id, &p.LHCbID, &p.ArxivID, &p.Title, &p.Journal,
		&groups, &years, &p.RunPeriod, &p.Citations,
		&p.Abstract, &p.HasPDF, &p.HasSource,
		&p.PDFPath, &p.SourcePath, &p.ExpandedPath,
	)
	if err != nil {
		return nil, fmt.Errorf("loading paper %s: %w", key, err)
	}
	if groups != "" {
		p.WorkingGroups = strings.Split(groups, ";")
	}
	if years != "" {
		p.DataTakingYears = strings.Split(years, ";")
	}
	return &p, nil
}
