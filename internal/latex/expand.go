// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package latex flattens a paper's TeX source into one document and
// strips editorial boilerplate from it.
package latex

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultMaxDepth bounds recursive include resolution. Real papers nest
// two or three levels; ten keeps a self-referential include finite.
const DefaultMaxDepth = 10

// includeRe matches \input{...} and \include{...} directives.
var includeRe = regexp.MustCompile(`\\(?:input|include)\{([^}]+)\}`)

// ExpansionError reports an unreadable root document.
type ExpansionError struct {
	Path string
	Err  error
}

func (e *ExpansionError) Error() string {
	return fmt.Sprintf("expanding %s: %v", e.Path, e.Err)
}

func (e *ExpansionError) Unwrap() error { return e.Err }

// FindMainTex locates the root TeX file in an extracted source tree.
// It prefers the conventional names, then falls back to the first file
// containing \documentclass. Returns "" when no candidate exists.
func FindMainTex(dir string) string {
	for _, name := range []string{"main.tex", "paper.tex", "article.tex"} {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.tex"))
	if err != nil {
		return ""
	}
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if strings.Contains(string(data), `\documentclass`) {
			return path
		}
	}
	return ""
}

// Expand reads the root document and recursively inlines every
// \input/\include directive, resolving referenced files relative to the
// including file's directory. Expansion is best-effort: a missing or
// unreadable referenced file, a file already expanded elsewhere, or a
// reference past maxDepth leaves the directive in place. The output is
// deterministic for identical inputs.
func Expand(rootPath string, maxDepth int) (string, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	data, err := os.ReadFile(rootPath)
	if err != nil {
		return "", &ExpansionError{Path: rootPath, Err: err}
	}

	visited := map[string]bool{}
	if abs, err := filepath.Abs(rootPath); err == nil {
		visited[abs] = true
	}

	return expandText(string(data), filepath.Dir(rootPath), visited, 1, maxDepth), nil
}

// expandText replaces include directives in text. dir is the directory
// of the file the text came from; visited holds resolved absolute paths
// already inlined.
func expandText(text, dir string, visited map[string]bool, depth, maxDepth int) string {
	if depth > maxDepth {
		return text
	}

	return includeRe.ReplaceAllStringFunc(text, func(directive string) string {
		name := includeRe.FindStringSubmatch(directive)[1]
		path := resolveInclude(dir, name)

		abs, err := filepath.Abs(path)
		if err != nil || visited[abs] {
			return directive
		}

		data, err := os.ReadFile(path)
		if err != nil {
			// Best-effort: keep the directive for missing files.
			return directive
		}

		visited[abs] = true
		return expandText(string(data), filepath.Dir(path), visited, depth+1, maxDepth)
	})
}

// resolveInclude maps an include argument to a path relative to the
// including file, appending the implied .tex extension when absent.
func resolveInclude(dir, name string) string {
	name = strings.TrimSpace(name)
	if filepath.Ext(name) == "" {
		name += ".tex"
	}
	return filepath.Join(dir, name)
}
