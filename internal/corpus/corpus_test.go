// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/reallyblaised/beauty-in-stats/pkg/types"
)

func samplePaper() *types.Paper {
	return &types.Paper{
		LHCbID:          "LHCb-PAPER-2024-001",
		ArxivID:         "2401.01234",
		Title:           "Observation of a new decay mode",
		Journal:         "PRL",
		WorkingGroups:   []string{"b_and_q_to_open_charm"},
		DataTakingYears: []string{"2016", "2017"},
		RunPeriod:       "Run2",
		Citations:       42,
		Abstract:        "We report the first observation.",
		HasPDF:          true,
	}
}

func sampleProvenance() types.Provenance {
	return types.Provenance{
		ScrapedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		ArchiveURL: "https://lbfence.cern.ch/alcm/public/analysis",
		MaxPapers:  100,
	}
}

func TestTableAppendOverwritesDuplicates(t *testing.T) {
	table := NewTable(sampleProvenance())

	first := samplePaper()
	table.Append(first)

	second := samplePaper()
	second.Citations = 99
	table.Append(second)

	if table.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", table.Len())
	}
	if got := table.Papers()[0].Citations; got != 99 {
		t.Errorf("Citations = %d, want 99", got)
	}
}

func TestTablePreservesInsertionOrder(t *testing.T) {
	table := NewTable(sampleProvenance())
	ids := []string{"LHCb-PAPER-2024-003", "LHCb-PAPER-2024-001", "LHCb-PAPER-2024-002"}
	for _, id := range ids {
		p := samplePaper()
		p.LHCbID = id
		table.Append(p)
	}

	for i, p := range table.Papers() {
		if p.LHCbID != ids[i] {
			t.Errorf("Papers()[%d] = %s, want %s", i, p.LHCbID, ids[i])
		}
	}
}

func TestTableIgnoresUnidentifiedPapers(t *testing.T) {
	table := NewTable(sampleProvenance())
	table.Append(&types.Paper{Title: "no identifiers at all"})
	if table.Len() != 0 {
		t.Errorf("Len() = %d, want 0", table.Len())
	}
}

func TestKeyFallsBackToArxivID(t *testing.T) {
	p := &types.Paper{ArxivID: "2401.01234"}
	if got := Key(p); got != "2401.01234" {
		t.Errorf("Key() = %q, want %q", got, "2401.01234")
	}
}

func TestFlushWritesAllOutputs(t *testing.T) {
	dir := t.TempDir()
	table := NewTable(sampleProvenance())
	table.Append(samplePaper())

	if err := NewWriter(dir).Flush(table); err != nil {
		t.Fatalf("Flush() error: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, csvFile))
	if err != nil {
		t.Fatalf("opening summary.csv: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading summary.csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("summary.csv has %d rows, want 2", len(rows))
	}
	if rows[1][0] != "LHCb-PAPER-2024-001" {
		t.Errorf("first data row id = %q", rows[1][0])
	}
	if rows[1][4] != "b_and_q_to_open_charm" {
		t.Errorf("working_groups column = %q", rows[1][4])
	}

	if _, err := os.Stat(filepath.Join(dir, snapshotFile)); err != nil {
		t.Errorf("summary.db missing: %v", err)
	}

	meta, err := ReadMetadata(dir, "LHCb-PAPER-2024-001")
	if err != nil {
		t.Fatalf("ReadMetadata() error: %v", err)
	}
	if meta.ArxivID != "2401.01234" {
		t.Errorf("metadata ArxivID = %q", meta.ArxivID)
	}
	if meta.Citations != 42 {
		t.Errorf("metadata Citations = %d", meta.Citations)
	}
}

func TestFlushIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	table := NewTable(sampleProvenance())
	table.Append(samplePaper())

	other := samplePaper()
	other.LHCbID = "LHCb-PAPER-2024-002"
	other.ArxivID = "2402.05678"
	table.Append(other)

	w := NewWriter(dir)
	if err := w.Flush(table); err != nil {
		t.Fatalf("first Flush() error: %v", err)
	}
	if err := w.Flush(table); err != nil {
		t.Fatalf("second Flush() error: %v", err)
	}

	store, err := OpenStore(filepath.Join(dir, snapshotFile))
	if err != nil {
		t.Fatalf("OpenStore() error: %v", err)
	}
	defer store.Close()

	n, err := store.CountPapers()
	if err != nil {
		t.Fatalf("CountPapers() error: %v", err)
	}
	if n != 2 {
		t.Errorf("CountPapers() = %d after double flush, want 2", n)
	}
}

func TestStoreUpsertOverwritesByKey(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "summary.db"))
	if err != nil {
		t.Fatalf("OpenStore() error: %v", err)
	}
	defer store.Close()

	if err := store.UpsertPaper(samplePaper()); err != nil {
		t.Fatalf("UpsertPaper() error: %v", err)
	}

	updated := samplePaper()
	updated.Citations = 100
	updated.HasSource = true
	if err := store.UpsertPaper(updated); err != nil {
		t.Fatalf("UpsertPaper() update error: %v", err)
	}

	n, err := store.CountPapers()
	if err != nil {
		t.Fatalf("CountPapers() error: %v", err)
	}
	if n != 1 {
		t.Fatalf("CountPapers() = %d, want 1", n)
	}

	got, err := store.GetPaper("LHCb-PAPER-2024-001")
	if err != nil {
		t.Fatalf("GetPaper() error: %v", err)
	}
	if got.Citations != 100 {
		t.Errorf("Citations = %d, want 100", got.Citations)
	}
	if !got.HasSource {
		t.Error("HasSource = false, want true")
	}
	if len(got.WorkingGroups) != 1 || got.WorkingGroups[0] != "b_and_q_to_open_charm" {
		t.Errorf("WorkingGroups = %v", got.WorkingGroups)
	}
}

func TestStoreRejectsUnidentifiedPaper(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "summary.db"))
	if err != nil {
		t.Fatalf("OpenStore() error: %v", err)
	}
	defer store.Close()

	if err := store.UpsertPaper(&types.Paper{Title: "anonymous"}); err == nil {
		t.Error("UpsertPaper() accepted a paper with no identifier")
	}
}
