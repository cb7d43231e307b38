// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scrape paginates the LHCb publication archive listing and
// extracts one Paper record per listing row.
package scrape

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/reallyblaised/beauty-in-stats/pkg/types"
)

// Listing column order on the archive table.
const (
	colTitle         = 2
	colLHCbID        = 3
	colArxivID       = 4
	colJournal       = 5
	colWorkingGroups = 6
	colYears         = 7

	minCells = 8
)

// ExtractionError reports a listing row missing a mandatory field.
type ExtractionError struct {
	Row   int
	Field string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("listing row %d: missing mandatory field %q", e.Row, e.Field)
}

// PageResult holds the outcome of parsing one listing page.
type PageResult struct {
	Papers []*types.Paper

	// Malformed counts rows with enough cells that still lacked a
	// mandatory field. Papers + Malformed equals the page's entry count.
	Malformed int
}

// ParsePage extracts Paper records from the rendered listing table
// markup. Rows missing mandatory fields are counted and dropped; rows
// with malformed optional fields degrade to empty values.
func ParsePage(html string) (PageResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return PageResult{}, fmt.Errorf("parsing listing markup: %w", err)
	}

	var result PageResult
	doc.Find("tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < minCells {
			// Header and decoration rows.
			return
		}
		paper, err := paperFromRow(cells, i)
		if err != nil {
			result.Malformed++
			return
		}
		result.Papers = append(result.Papers, paper)
	})
	return result, nil
}

// paperFromRow builds a Paper from one listing row's cells.
func paperFromRow(cells *goquery.Selection, row int) (*types.Paper, error) {
	lhcbID := strings.TrimSpace(cells.Eq(colLHCbID).Text())
	if lhcbID == "" {
		return nil, &ExtractionError{Row: row, Field: "lhcb_paper_id"}
	}
	title := strings.TrimSpace(cells.Eq(colTitle).Text())
	if title == "" {
		return nil, &ExtractionError{Row: row, Field: "title"}
	}

	years := ParseYears(cells.Eq(colYears).Text())
	return &types.Paper{
		LHCbID:          lhcbID,
		Title:           title,
		ArxivID:         strings.TrimSpace(cells.Eq(colArxivID).Text()),
		Journal:         strings.TrimSpace(cells.Eq(colJournal).Text()),
		WorkingGroups:   ParseWorkingGroups(cellLines(cells.Eq(colWorkingGroups))),
		DataTakingYears: years,
		RunPeriod:       RunPeriod(years),
	}, nil
}

// cellLines splits a cell into its visual lines. The archive renders
// one child element per working group; plain-text cells fall back to
// newline splitting.
func cellLines(sel *goquery.Selection) []string {
	var lines []string
	sel.Children().Each(func(_ int, c *goquery.Selection) {
		if t := strings.TrimSpace(c.Text()); t != "" {
			lines = append(lines, t)
		}
	})
	if len(lines) > 0 {
		return lines
	}
	for _, part := range strings.Split(sel.Text(), "\n") {
		if t := strings.TrimSpace(part); t != "" {
			lines = append(lines, t)
		}
	}
	return lines
}

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeWorkingGroup converts a working-group label to snake_case.
func NormalizeWorkingGroup(wg string) string {
	wg = strings.ToLower(strings.TrimSpace(wg))
	wg = nonAlnumRe.ReplaceAllString(wg, "_")
	return strings.Trim(wg, "_")
}

// ParseWorkingGroups normalizes the labels from one listing cell.
// An unrecognizable cell yields an empty slice; the record is kept.
func ParseWorkingGroups(labels []string) []string {
	var groups []string
	for _, label := range labels {
		if g := NormalizeWorkingGroup(label); g != "" {
			groups = append(groups, g)
		}
	}
	return groups
}

// ParseYears extracts the numeric data-taking years from a cell.
func ParseYears(cell string) []string {
	var years []string
	for _, field := range strings.Fields(cell) {
		if _, err := strconv.Atoi(field); err == nil {
			years = append(years, field)
		}
	}
	return years
}

// RunPeriod maps data-taking years to LHC run periods. Multiple
// periods join with "+"; unmappable or absent years yield "unknown".
func RunPeriod(years []string) string {
	if len(years) == 0 {
		return "unknown"
	}

	seen := map[string]bool{}
	for _, y := range years {
		year, err := strconv.Atoi(y)
		if err != nil {
			seen["unknown"] = true
			continue
		}
		switch {
		case year == 2011 || year == 2012:
			seen["Run1"] = true
		case year >= 2015 && year <= 2018:
			seen["Run2"] = true
		case year >= 2023 && year <= 2025:
			seen["Run3"] = true
		default:
			seen["unknown"] = true
		}
	}

	periods := make([]string, 0, len(seen))
	for p := range seen {
		periods = append(periods, p)
	}
	sort.Strings(periods)
	return strings.Join(periods, "+")
}
