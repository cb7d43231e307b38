// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch downloads per-paper artifacts: the arXiv PDF and the
// LaTeX source bundle. PDF and source retrieval are independent, and
// neither failure stops a batch.
package fetch

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/reallyblaised/beauty-in-stats/internal/httputil"
	"github.com/reallyblaised/beauty-in-stats/pkg/types"
)

// Artifact URL bases. Declared as vars so tests can substitute an
// httptest server.
var (
	PDFBase    = "https://arxiv.org/pdf/"
	SourceBase = "http://export.arxiv.org/e-print/"
)

const (
	pdfDir      = "pdfs"
	sourceDir   = "source"
	abstractDir = "abstracts"

	// minSourceBytes guards against truncated or error-page payloads
	// masquerading as e-prints.
	minSourceBytes = 1000

	defaultMaxSourceBytes = 50 << 20
)

// FetchError reports a failed artifact retrieval for one paper.
type FetchError struct {
	ArxivID  string
	Artifact string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s for arXiv:%s: %v", e.Artifact, e.ArxivID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher retrieves paper artifacts into the corpus output tree.
type Fetcher struct {
	HTTP *http.Client
	Cfg  types.FetchConfig
}

// New builds a Fetcher with the configured timeout.
func New(cfg types.FetchConfig) *Fetcher {
	if cfg.MaxSourceBytes <= 0 {
		cfg.MaxSourceBytes = defaultMaxSourceBytes
	}
	return &Fetcher{
		HTTP: &http.Client{Timeout: cfg.Timeout},
		Cfg:  cfg,
	}
}

// FetchPaper downloads the PDF and LaTeX source for one paper and
// records the outcomes on its availability flags. Each artifact is
// attempted independently; failures are reported on w and never abort
// the caller's batch. It returns true when at least one artifact was
// obtained.
func (f *Fetcher) FetchPaper(ctx context.Context, paper *types.Paper, w io.Writer) bool {
	if paper.ArxivID == "" {
		fmt.Fprintf(w, "skipping artifacts for %s: no arXiv id\n", paper.LHCbID)
		return false
	}

	if err := f.fetchPDF(ctx, paper); err != nil {
		fmt.Fprintf(w, "warning: %v\n", err)
	} else {
		paper.HasPDF = true
	}

	if err := f.fetchSource(ctx, paper); err != nil {
		fmt.Fprintf(w, "warning: %v\n", err)
	} else {
		paper.HasSource = true
	}

	if paper.Abstract != "" {
		if err := f.writeAbstract(paper); err != nil {
			fmt.Fprintf(w, "warning: %v\n", err)
		}
	}

	return paper.HasPDF || paper.HasSource
}

// fetchPDF downloads pdfs/[arxiv id].pdf, skipping existing files so
// re-runs are idempotent.
func (f *Fetcher) fetchPDF(ctx context.Context, paper *types.Paper) error {
	dir := filepath.Join(f.Cfg.OutputDir, pdfDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &FetchError{ArxivID: paper.ArxivID, Artifact: "pdf", Err: err}
	}

	dest := filepath.Join(dir, paper.ArxivID+".pdf")
	if _, err := os.Stat(dest); err == nil {
		paper.PDFPath = dest
		return nil
	}

	if err := f.download(ctx, PDFBase+paper.ArxivID+".pdf", "application/pdf", dest); err != nil {
		return &FetchError{ArxivID: paper.ArxivID, Artifact: "pdf", Err: err}
	}
	paper.PDFPath = dest
	return nil
}

// fetchSource downloads the e-print bundle and unpacks it under
// source/[arxiv id]/. Bundles are usually gzipped tars; a bare TeX
// payload is written as main.tex.
func (f *Fetcher) fetchSource(ctx context.Context, paper *types.Paper) error {
	fail := func(err error) error {
		return &FetchError{ArxivID: paper.ArxivID, Artifact: "source", Err: err}
	}

	destDir := filepath.Join(f.Cfg.OutputDir, sourceDir, paper.ArxivID)
	if _, err := os.Stat(destDir); err == nil {
		paper.SourcePath = destDir
		return nil
	}

	data, err := f.downloadBytes(ctx, SourceBase+paper.ArxivID, "application/x-tar, application/x-gzip, */*")
	if err != nil {
		return fail(err)
	}

	// arXiv answers rate-limited scrapers with an HTML interstitial.
	if looksLikeHTML(data) {
		return fail(fmt.Errorf("received HTML instead of an e-print bundle"))
	}
	if int64(len(data)) < minSourceBytes {
		return fail(fmt.Errorf("suspiciously small e-print: %d bytes", len(data)))
	}
	if int64(len(data)) > f.Cfg.MaxSourceBytes {
		return fail(fmt.Errorf("e-print too large: %d bytes", len(data)))
	}

	if err := extractSource(data, destDir); err != nil {
		// Some e-prints are a single uncompressed TeX file.
		if err := os.MkdirAll(destDir, 0o755); err != nil {
			return fail(err)
		}
		if err := os.WriteFile(filepath.Join(destDir, "main.tex"), data, 0o644); err != nil {
			os.RemoveAll(destDir)
			return fail(err)
		}
	}

	paper.SourcePath = destDir
	return nil
}

// writeAbstract stores the enriched abstract as abstracts/[arxiv id].tex.
func (f *Fetcher) writeAbstract(paper *types.Paper) error {
	dir := filepath.Join(f.Cfg.OutputDir, abstractDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &FetchError{ArxivID: paper.ArxivID, Artifact: "abstract", Err: err}
	}
	path := filepath.Join(dir, paper.ArxivID+".tex")
	if err := os.WriteFile(path, []byte(paper.Abstract), 0o644); err != nil {
		return &FetchError{ArxivID: paper.ArxivID, Artifact: "abstract", Err: err}
	}
	return nil
}

// download fetches url to destPath using a temporary file so an
// interrupted run never leaves a partial artifact in place.
func (f *Fetcher) download(ctx context.Context, url, accept, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.Cfg.UserAgent)
	req.Header.Set("Accept", accept)

	resp, err := httputil.DoWithRetry(ctx, f.HTTP, req, 0)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".fetch-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// downloadBytes fetches url fully into memory, for payloads that need
// sniffing before they touch the output tree.
func (f *Fetcher) downloadBytes(ctx context.Context, url, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.Cfg.UserAgent)
	req.Header.Set("Accept", accept)

	resp, err := httputil.DoWithRetry(ctx, f.HTTP, req, 0)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.Cfg.MaxSourceBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return data, nil
}

func looksLikeHTML(data []byte) bool {
	head := bytes.TrimSpace(data)
	if len(head) > 100 {
		head = head[:100]
	}
	lower := bytes.ToLower(head)
	return bytes.HasPrefix(lower, []byte("<html")) || bytes.HasPrefix(lower, []byte("<!doctype"))
}

// extractSource unpacks a gzipped tar into dstDir, refusing entries
// that would escape it.
func extractSource(data []byte, dstDir string) error {
	gzr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer gzr.Close()

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return err
	}

	tr := tar.NewReader(gzr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			os.RemoveAll(dstDir)
			return err
		}

		name := filepath.Clean(hdr.Name)
		if strings.HasPrefix(name, "..") || filepath.IsAbs(name) {
			continue
		}
		target := filepath.Join(dstDir, name)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				os.RemoveAll(dstDir)
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				os.RemoveAll(dstDir)
				return err
			}
			out, err := os.Create(target)
			if err != nil {
				os.RemoveAll(dstDir)
				return err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				os.RemoveAll(dstDir)
				return err
			}
			out.Close()
		}
	}
	return nil
}
