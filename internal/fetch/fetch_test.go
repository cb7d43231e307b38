// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/reallyblaised/beauty-in-stats/pkg/types"
)

// sourceBundle builds a gzipped tar holding the given files.
func sourceBundle(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gzw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gzw)
	for name, content := range files {
		if err := tw.WriteHeader(&tar.Header{
			Name:     name,
			Typeflag: tar.TypeReg,
			Mode:     0o644,
			Size:     int64(len(content)),
		}); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gzw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// padding inflates small fixtures past the truncation guard, with
// enough distinct content to survive gzip.
var padding = func() string {
	var b strings.Builder
	for i := 0; i < 3000; i++ {
		b.WriteString("% ")
		b.WriteString(strconv.Itoa(i * 7919))
		b.WriteString("\n")
	}
	return b.String()
}()

func newTestFetcher(t *testing.T, handler http.HandlerFunc) *Fetcher {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	oldPDF, oldSource := PDFBase, SourceBase
	PDFBase = ts.URL + "/pdf/"
	SourceBase = ts.URL + "/e-print/"
	t.Cleanup(func() { PDFBase, SourceBase = oldPDF, oldSource })

	return New(types.FetchConfig{
		HTTPConfig: types.HTTPConfig{UserAgent: "beauty-in-stats-test"},
		OutputDir:  t.TempDir(),
	})
}

func TestFetchPaper_BothArtifacts(t *testing.T) {
	bundle := sourceBundle(t, map[string]string{
		"main.tex":       `\documentclass{article}` + padding,
		"sections/a.tex": "section a",
	})

	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/pdf/"):
			w.Write([]byte("%PDF-1.5 fake"))
		case strings.HasPrefix(r.URL.Path, "/e-print/"):
			w.Write(bundle)
		default:
			http.NotFound(w, r)
		}
	})

	paper := &types.Paper{LHCbID: "LHCb-PAPER-2023-001", ArxivID: "2301.07041"}
	var out bytes.Buffer
	if ok := f.FetchPaper(context.Background(), paper, &out); !ok {
		t.Fatalf("FetchPaper() = false, output: %s", out.String())
	}

	if !paper.HasPDF || !paper.HasSource {
		t.Errorf("flags = pdf:%v source:%v, want both true", paper.HasPDF, paper.HasSource)
	}

	if _, err := os.Stat(filepath.Join(f.Cfg.OutputDir, "pdfs", "2301.07041.pdf")); err != nil {
		t.Errorf("pdf not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(f.Cfg.OutputDir, "source", "2301.07041", "sections", "a.tex")); err != nil {
		t.Errorf("source tree not extracted: %v", err)
	}
}

func TestFetchPaper_PDFFailureDoesNotBlockSource(t *testing.T) {
	bundle := sourceBundle(t, map[string]string{"main.tex": padding})

	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/pdf/") {
			http.NotFound(w, r)
			return
		}
		w.Write(bundle)
	})

	paper := &types.Paper{ArxivID: "2301.07041"}
	var out bytes.Buffer
	if ok := f.FetchPaper(context.Background(), paper, &out); !ok {
		t.Fatal("FetchPaper() = false, want source success despite pdf failure")
	}

	if paper.HasPDF {
		t.Error("HasPDF = true after a 404")
	}
	if !paper.HasSource {
		t.Error("HasSource = false, want true")
	}
	if !strings.Contains(out.String(), "warning") {
		t.Errorf("pdf failure not reported: %s", out.String())
	}
}

func TestFetchPaper_NoArxivID(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected without an arXiv id")
	})

	paper := &types.Paper{LHCbID: "LHCb-PAPER-2023-002"}
	var out bytes.Buffer
	if ok := f.FetchPaper(context.Background(), paper, &out); ok {
		t.Error("FetchPaper() = true without an arXiv id")
	}
}

func TestFetchSource_RejectsHTMLInterstitial(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<!DOCTYPE html><html>captcha</html>"))
	})

	paper := &types.Paper{ArxivID: "2301.07041"}
	if err := f.fetchSource(context.Background(), paper); err == nil {
		t.Fatal("fetchSource() should reject HTML payloads")
	}
	if paper.SourcePath != "" {
		t.Errorf("SourcePath = %q, want empty", paper.SourcePath)
	}
}

func TestFetchSource_RejectsTruncatedPayload(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("tiny"))
	})

	paper := &types.Paper{ArxivID: "2301.07041"}
	if err := f.fetchSource(context.Background(), paper); err == nil {
		t.Fatal("fetchSource() should reject truncated payloads")
	}
}

func TestFetchSource_SingleFileFallback(t *testing.T) {
	// An uncompressed bare TeX file instead of a tar.gz bundle.
	payload := `\documentclass{article}` + padding

	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	})

	paper := &types.Paper{ArxivID: "2301.07041"}
	if err := f.fetchSource(context.Background(), paper); err != nil {
		t.Fatalf("fetchSource() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(f.Cfg.OutputDir, "source", "2301.07041", "main.tex"))
	if err != nil {
		t.Fatalf("fallback main.tex not written: %v", err)
	}
	if string(data) != payload {
		t.Error("fallback main.tex content mismatch")
	}
}

func TestFetchPDF_SkipsExisting(t *testing.T) {
	var calls int
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte("%PDF"))
	})

	paper := &types.Paper{ArxivID: "2301.07041"}
	if err := f.fetchPDF(context.Background(), paper); err != nil {
		t.Fatal(err)
	}
	if err := f.fetchPDF(context.Background(), paper); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (existing pdf should be kept)", calls)
	}
}

func TestExtractSource_PathTraversalEntrySkipped(t *testing.T) {
	bundle := sourceBundle(t, map[string]string{
		"../escape.tex": "evil",
		"main.tex":      "good",
	})

	dir := t.TempDir()
	dst := filepath.Join(dir, "out")
	if err := extractSource(bundle, dst); err != nil {
		t.Fatalf("extractSource() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "escape.tex")); err == nil {
		t.Error("traversal entry escaped the destination directory")
	}
	if _, err := os.Stat(filepath.Join(dst, "main.tex")); err != nil {
		t.Errorf("regular entry not extracted: %v", err)
	}
}
