// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus accumulates Paper records and persists them as a CSV
// mirror, a SQLite snapshot, and per-paper YAML metadata files.
package corpus

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/reallyblaised/beauty-in-stats/pkg/types"
)

const (
	csvFile      = "summary.csv"
	snapshotFile = "summary.db"
	metadataDir  = "metadata"
)

// WriteError reports a filesystem failure while persisting the corpus.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Table is the ordered, id-keyed corpus accumulator. Appending a
// record whose identifier is already present overwrites it in place,
// so re-runs never duplicate rows.
type Table struct {
	papers []*types.Paper
	index  map[string]int
	prov   types.Provenance
}

// NewTable creates an empty table carrying the run's provenance.
func NewTable(prov types.Provenance) *Table {
	return &Table{index: map[string]int{}, prov: prov}
}

// Key returns the identifier a paper is stored under: the LHCb id,
// falling back to the arXiv id for records located through INSPIRE.
func Key(p *types.Paper) string {
	if p.LHCbID != "" {
		return p.LHCbID
	}
	return p.ArxivID
}

// Append adds or overwrites a record. Papers with no usable identifier
// are ignored.
func (t *Table) Append(p *types.Paper) {
	key := Key(p)
	if key == "" {
		return
	}
	if i, ok := t.index[key]; ok {
		t.papers[i] = p
		return
	}
	t.index[key] = len(t.papers)
	t.papers = append(t.papers, p)
}

// Papers returns the records in insertion order.
func (t *Table) Papers() []*types.Paper { return t.papers }

// Len returns the number of records.
func (t *Table) Len() int { return len(t.papers) }

// Provenance returns the run metadata the table was created with.
func (t *Table) Provenance() types.Provenance { return t.prov }

// Writer persists a table under the output directory.
type Writer struct {
	OutputDir string
}

// NewWriter builds a Writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{OutputDir: dir}
}

// Flush writes the CSV mirror, the SQLite snapshot, and one YAML
// metadata file per record. Flush is safe to call repeatedly during a
// run; each call rewrites the outputs from the current table.
func (w *Writer) Flush(table *Table) error {
	if err := os.MkdirAll(w.OutputDir, 0o755); err != nil {
		return &WriteError{Path: w.OutputDir, Err: err}
	}

	if err := w.writeCSV(table); err != nil {
		return err
	}
	if err := w.writeSnapshot(table); err != nil {
		return err
	}
	return w.writeMetadata(table)
}

var csvHeader = []string{
	"lhcb_paper_id", "arxiv_id", "title", "journal",
	"working_groups", "data_taking_years", "run_period",
	"citations", "abstract", "has_pdf", "has_source",
	"pdf_path", "source_path", "expanded_path",
}

// writeCSV rewrites summary.csv through a temp file so an interrupted
// flush never leaves a half-written table behind.
func (w *Writer) writeCSV(table *Table) error {
	path := filepath.Join(w.OutputDir, csvFile)

	tmp, err := os.CreateTemp(w.OutputDir, ".summary-*.csv")
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	tmpPath := tmp.Name()

	cw := csv.NewWriter(tmp)
	writeErr := cw.Write(csvHeader)
	for _, p := range table.Papers() {
		if writeErr != nil {
			break
		}
		writeErr = cw.Write([]string{
			p.LHCbID, p.ArxivID, p.Title, p.Journal,
			strings.Join(p.WorkingGroups, ";"),
			strings.Join(p.DataTakingYears, ";"),
			p.RunPeriod,
			strconv.Itoa(p.Citations),
			p.Abstract,
			strconv.FormatBool(p.HasPDF),
			strconv.FormatBool(p.HasSource),
			p.PDFPath, p.SourcePath, p.ExpandedPath,
		})
	}
	cw.Flush()
	if writeErr == nil {
		writeErr = cw.Error()
	}
	closeErr := tmp.Close()

	if writeErr != nil {
		os.Remove(tmpPath)
		return &WriteError{Path: path, Err: writeErr}
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return &WriteError{Path: path, Err: closeErr}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// writeSnapshot upserts every record into the summary.db SQLite file.
func (w *Writer) writeSnapshot(table *Table) error {
	path := filepath.Join(w.OutputDir, snapshotFile)
	store, err := OpenStore(path)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	defer store.Close()

	if err := store.WriteProvenance(table.Provenance()); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	for _, p := range table.Papers() {
		if err := store.UpsertPaper(p); err != nil {
			return &WriteError{Path: path, Err: err}
		}
	}
	return nil
}

// writeMetadata writes metadata/[id].yaml for each record.
func (w *Writer) writeMetadata(table *Table) error {
	dir := filepath.Join(w.OutputDir, metadataDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &WriteError{Path: dir, Err: err}
	}

	for _, p := range table.Papers() {
		data, err := yaml.Marshal(p)
		if err != nil {
			return &WriteError{Path: dir, Err: err}
		}
		path := filepath.Join(dir, Key(p)+".yaml")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return &WriteError{Path: path, Err: err}
		}
	}
	return nil
}

// ReadMetadata loads one per-paper YAML metadata file.
func ReadMetadata(outputDir, key string) (*types.Paper, error) {
	path := filepath.Join(outputDir, metadataDir, key+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var paper types.Paper
	if err := yaml.Unmarshal(data, &paper); err != nil {
		return nil, err
	}
	return &paper, nil
}
