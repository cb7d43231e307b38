// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scrape

import (
	"errors"
	"reflect"
	"testing"
)

// listingPage mirrors the archive's rendered table: cells 2-7 carry
// title, LHCb id, arXiv id, journal, working groups, and years.
const listingPage = `<table>
<tr><th>0</th><th>1</th><th>Title</th><th>ID</th><th>arXiv</th><th>Journal</th><th>WG</th><th>Years</th></tr>
<tr>
  <td>x</td><td>x</td>
  <td>Observation of a new baryon state</td>
  <td>LHCb-PAPER-2023-001</td>
  <td>2301.07041</td>
  <td>PRL</td>
  <td><span>B and Q to open charm</span><span>QCD, electroweak and exotica</span></td>
  <td>2016 2017 2018</td>
</tr>
<tr>
  <td>x</td><td>x</td>
  <td>Measurement with missing optional fields</td>
  <td>LHCb-PAPER-2023-002</td>
  <td></td>
  <td></td>
  <td></td>
  <td>performance</td>
</tr>
<tr>
  <td>x</td><td>x</td>
  <td></td>
  <td>LHCb-PAPER-2023-003</td>
  <td>2302.00001</td>
  <td>JHEP</td>
  <td><span>Semileptonic</span></td>
  <td>2011 2012</td>
</tr>
</table>`

func TestParsePage(t *testing.T) {
	result, err := ParsePage(listingPage)
	if err != nil {
		t.Fatalf("ParsePage() error = %v", err)
	}

	// Three entry rows, one missing the mandatory title.
	if len(result.Papers) != 2 {
		t.Fatalf("ParsePage() papers = %d, want 2", len(result.Papers))
	}
	if result.Malformed != 1 {
		t.Errorf("ParsePage() malformed = %d, want 1", result.Malformed)
	}

	first := result.Papers[0]
	if first.LHCbID != "LHCb-PAPER-2023-001" {
		t.Errorf("LHCbID = %q", first.LHCbID)
	}
	if first.ArxivID != "2301.07041" {
		t.Errorf("ArxivID = %q", first.ArxivID)
	}
	wantGroups := []string{"b_and_q_to_open_charm", "qcd_electroweak_and_exotica"}
	if !reflect.DeepEqual(first.WorkingGroups, wantGroups) {
		t.Errorf("WorkingGroups = %v, want %v", first.WorkingGroups, wantGroups)
	}
	if first.RunPeriod != "Run2" {
		t.Errorf("RunPeriod = %q, want Run2", first.RunPeriod)
	}

	// Optional fields degrade to empty values, record retained.
	second := result.Papers[1]
	if second.ArxivID != "" || len(second.WorkingGroups) != 0 {
		t.Errorf("optional fields should degrade to empty: %+v", second)
	}
	if second.RunPeriod != "unknown" {
		t.Errorf("RunPeriod = %q, want unknown", second.RunPeriod)
	}
}

func TestParsePage_HeaderOnlyTable(t *testing.T) {
	result, err := ParsePage(`<table><tr><th>Title</th></tr></table>`)
	if err != nil {
		t.Fatalf("ParsePage() error = %v", err)
	}
	if len(result.Papers) != 0 || result.Malformed != 0 {
		t.Errorf("ParsePage() = %+v, want empty", result)
	}
}

func TestExtractionErrorMessage(t *testing.T) {
	err := error(&ExtractionError{Row: 4, Field: "title"})
	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Fatal("error should unwrap to *ExtractionError")
	}
	if extractionErr.Field != "title" {
		t.Errorf("Field = %q", extractionErr.Field)
	}
}

func TestNormalizeWorkingGroup(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"B and Q to open charm", "b_and_q_to_open_charm"},
		{"  QCD, electroweak & exotica ", "qcd_electroweak_exotica"},
		{"Charm", "charm"},
		{"---", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeWorkingGroup(tt.in); got != tt.want {
			t.Errorf("NormalizeWorkingGroup(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseYears(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"2016 2017 2018", []string{"2016", "2017", "2018"}},
		{"  2011\n2012 ", []string{"2011", "2012"}},
		{"performance", nil},
		{"", nil},
	}
	for _, tt := range tests {
		if got := ParseYears(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseYears(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRunPeriod(t *testing.T) {
	tests := []struct {
		name  string
		years []string
		want  string
	}{
		{"run1", []string{"2011", "2012"}, "Run1"},
		{"run2", []string{"2016"}, "Run2"},
		{"run3", []string{"2024"}, "Run3"},
		{"spanning runs", []string{"2012", "2016"}, "Run1+Run2"},
		{"unmapped year", []string{"2013"}, "unknown"},
		{"mixed known and unknown", []string{"2013", "2016"}, "Run2+unknown"},
		{"no years", nil, "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RunPeriod(tt.years); got != tt.want {
				t.Errorf("RunPeriod(%v) = %q, want %q", tt.years, got, tt.want)
			}
		})
	}
}
