// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package latex

import (
	"regexp"
	"sort"
	"strings"
)

// DefaultStripSections names the sections whose content is removed as
// back matter.
var DefaultStripSections = []string{
	"Acknowledgements",
	"Acknowledgments",
	"References",
	"Bibliography",
}

var (
	preambleRes = []*regexp.Regexp{
		regexp.MustCompile(`\\documentclass[^\n]*\n`),
		regexp.MustCompile(`\\usepackage[^\n]*\n`),
		regexp.MustCompile(`\\def\\[^\n]*\n`),
	}
	flushleftRe  = regexp.MustCompile(`(?s)\\begin\{flushleft\}.*?\\end\{flushleft\}`)
	bibRes       = []*regexp.Regexp{
		regexp.MustCompile(`\\bibliographystyle\{[^}]*\}`),
		regexp.MustCompile(`\\bibliography\{[^}]*\}`),
	}
	appendicesRe = regexp.MustCompile(`(?s)\\begin\{appendices\}.*?\\end\{appendices\}`)

	introRes = []*regexp.Regexp{
		regexp.MustCompile(`\\section\{Introduction\}`),
		regexp.MustCompile(`\\section\*\{Introduction\}`),
	}

	sectionRe   = regexp.MustCompile(`\\(?:sub)*section\*?\{([^}]*)\}`)
	pageBreakRe = regexp.MustCompile(`\\(?:new|clear)page`)

	// Markers for the institutional author list appended to LHCb papers.
	collabStartRes = []*regexp.Regexp{
		regexp.MustCompile(`\\centerline\s*\{\s*\\large\s*\\bf\s*LHCb collaboration\s*\}`),
		regexp.MustCompile(`\\begin\{center\}\s*\\large\s*\\bf\s*LHCb collaboration`),
		regexp.MustCompile(`\\section\*?\{LHCb collaboration\}`),
	}
	collabEndRes = []*regexp.Regexp{
		regexp.MustCompile(`\\begin\s*\{appendices\}`),
		regexp.MustCompile(`\\section\*?\{Appendix`),
		regexp.MustCompile(`\\appendix`),
	}

	blankRunRe = regexp.MustCompile(`\n\s*\n\s*\n`)
)

// Strip removes journal and collaboration boilerplate from an expanded
// document: preamble lines, flushleft affiliation blocks, bibliography
// commands, everything before the Introduction section, the content of
// the named back-matter sections, and the LHCb collaboration author
// list. It is purely textual; when no marker matches, the input is
// returned unchanged.
func Strip(text string, sections []string) string {
	if sections == nil {
		sections = DefaultStripSections
	}

	stripped := text
	matched := false

	for _, re := range preambleRes {
		if re.MatchString(stripped) {
			matched = true
			stripped = re.ReplaceAllString(stripped, "")
		}
	}
	if flushleftRe.MatchString(stripped) {
		matched = true
		stripped = flushleftRe.ReplaceAllString(stripped, "")
	}
	for _, re := range bibRes {
		if re.MatchString(stripped) {
			matched = true
			stripped = re.ReplaceAllString(stripped, "")
		}
	}
	if appendicesRe.MatchString(stripped) {
		matched = true
		stripped = appendicesRe.ReplaceAllString(stripped, "")
	}

	if cut, ok := cutBeforeIntroduction(stripped); ok {
		matched = true
		stripped = cut
	}

	regions := sectionRegions(stripped, sections)
	if start, end, ok := collaborationRegion(stripped); ok {
		regions = append(regions, region{start, end})
	}
	if len(regions) > 0 {
		matched = true
		stripped = removeRegions(stripped, regions)
	}

	if !matched {
		return text
	}

	stripped = blankRunRe.ReplaceAllString(stripped, "\n\n")
	return strings.TrimSpace(stripped)
}

type region struct{ start, end int }

// cutBeforeIntroduction drops front matter preceding the earliest
// Introduction section heading.
func cutBeforeIntroduction(text string) (string, bool) {
	start := -1
	for _, re := range introRes {
		if loc := re.FindStringIndex(text); loc != nil && (start < 0 || loc[0] < start) {
			start = loc[0]
		}
	}
	if start < 0 {
		return text, false
	}
	return text[start:], true
}

// sectionRegions finds the spans of sections whose title contains any
// of the given names, each span ending at the next section heading or
// page break.
func sectionRegions(text string, names []string) []region {
	headings := sectionRe.FindAllStringSubmatchIndex(text, -1)
	var regions []region

	for i, h := range headings {
		title := strings.ToLower(text[h[2]:h[3]])
		remove := false
		for _, name := range names {
			if strings.Contains(title, strings.ToLower(name)) {
				remove = true
				break
			}
		}
		if !remove {
			continue
		}

		start := h[0]
		end := len(text)
		if i < len(headings)-1 {
			end = headings[i+1][0]
		}
		if brk := pageBreakRe.FindStringIndex(text[start:]); brk != nil && start+brk[0] < end {
			end = start + brk[0]
		}
		regions = append(regions, region{start, end})
	}
	return regions
}

// collaborationRegion locates the LHCb collaboration author list, ended
// by an appendix marker or the end of the document.
func collaborationRegion(text string) (int, int, bool) {
	start := -1
	for _, re := range collabStartRes {
		if loc := re.FindStringIndex(text); loc != nil && (start < 0 || loc[0] < start) {
			start = loc[0]
		}
	}
	if start < 0 {
		return 0, 0, false
	}

	end := len(text)
	tail := text[start:]
	for _, re := range collabEndRes {
		if loc := re.FindStringIndex(tail); loc != nil && start+loc[0] < end {
			end = start + loc[0]
		}
	}
	return start, end, true
}

// removeRegions deletes possibly-overlapping spans, working backwards
// so earlier offsets stay valid.
func removeRegions(text string, regions []region) string {
	sort.Slice(regions, func(i, j int) bool { return regions[i].start > regions[j].start })
	for _, r := range regions {
		end := min(r.end, len(text))
		if r.start < 0 || r.start >= end {
			continue
		}
		text = text[:r.start] + text[end:]
	}
	return text
}
