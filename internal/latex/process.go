// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package latex

import (
	"fmt"
	"os"
	"path/filepath"
)

// ProcessResult reports where the processed documents were written.
type ProcessResult struct {
	ExpandedPath string
	StrippedPath string
}

// ProcessSource expands the main TeX file found under srcDir and
// writes the result to expandedPath, then strips boilerplate and
// writes strippedPath. The sections argument names the back-matter
// sections to remove; nil means DefaultStripSections.
func ProcessSource(srcDir, expandedPath, strippedPath string, maxDepth int, sections []string) (ProcessResult, error) {
	main := FindMainTex(srcDir)
	if main == "" {
		return ProcessResult{}, fmt.Errorf("no main tex file under %s", srcDir)
	}

	expanded, err := Expand(main, maxDepth)
	if err != nil {
		return ProcessResult{}, err
	}
	if err := writeDoc(expandedPath, expanded); err != nil {
		return ProcessResult{}, err
	}

	if sections == nil {
		sections = DefaultStripSections
	}
	stripped := Strip(expanded, sections)
	if err := writeDoc(strippedPath, stripped); err != nil {
		return ProcessResult{}, err
	}

	return ProcessResult{ExpandedPath: expandedPath, StrippedPath: strippedPath}, nil
}

func writeDoc(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
