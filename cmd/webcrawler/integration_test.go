package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/BijayaThebe/webcrawler/internal/config"
	"github.com/BijayaThebe/webcrawler/internal/log"
	"github.com/BijayaThebe/webcrawler/internal/model"
)

// TestRunCrawlEndToEnd exercises the full crawl pipeline against a local
// HTTP server: fetch, extract, follow links, write page files, write the
// manifest, and render the summary.
func TestRunCrawlEndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/{$}", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>Home</title></head><body>
<h1>Welcome</h1>
<p>Landing page.</p>
<a href="/docs">Docs</a>
<a href="https://elsewhere.example/">Elsewhere</a>
</body></html>`))
	})
	mux.HandleFunc("/docs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>Docs</title></head><body>
<h1>Documentation</h1>
<p>Read me.</p>
<a href="/missing">Missing</a>
</body></html>`))
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	outDir := filepath.Join(t.TempDir(), "out")
	summaryPath := filepath.Join(t.TempDir(), "summary.json")

	cfg := config.NewConfig()
	cfg.Seeds = []string{srv.URL + "/"}
	cfg.AllowedDomains = []string{"127.0.0.1"}
	cfg.MaxDepth = 2
	cfg.Workers = 2
	cfg.RequestTimeout = 5 * time.Second
	cfg.RetryCount = 0
	cfg.PoliteDelay = time.Millisecond
	cfg.OutputDir = outDir
	cfg.SaveToDB = false
	cfg.JSONSummary = true
	cfg.SummaryFile = summaryPath

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	logger := log.NewLogger(os.Stderr, false)
	if err := runCrawl(context.Background(), cfg, logger); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("writes page files", func(t *testing.T) {
		entries, err := os.ReadDir(filepath.Join(outDir, "pages"))
		if err != nil {
			t.Fatalf("failed to read pages dir: %v", err)
		}
		if len(entries) != 2 {
			t.Errorf("expected 2 page files, got %d", len(entries))
		}
	})

	t.Run("writes manifest", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(outDir, "index.json"))
		if err != nil {
			t.Fatalf("failed to read index.json: %v", err)
		}
		var manifest struct {
			PageCount int `json:"page_count"`
		}
		if err := json.Unmarshal(data, &manifest); err != nil {
			t.Fatalf("invalid manifest JSON: %v", err)
		}
		if manifest.PageCount != 2 {
			t.Errorf("expected pageCount 2, got %d", manifest.PageCount)
		}
	})

	t.Run("writes event logs", func(t *testing.T) {
		for _, name := range []string{"success_urls.txt", "failed_urls.txt", "blocked_urls.txt"} {
			if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
				t.Errorf("expected %s to exist: %v", name, err)
			}
		}
	})

	t.Run("writes summary file", func(t *testing.T) {
		data, err := os.ReadFile(summaryPath)
		if err != nil {
			t.Fatalf("failed to read summary file: %v", err)
		}

		var summary model.Summary
		if err := json.Unmarshal(data, &summary); err != nil {
			t.Fatalf("invalid summary JSON: %v", err)
		}
		if summary.Counters.Succeeded != 2 {
			t.Errorf("expected 2 succeeded, got %d", summary.Counters.Succeeded)
		}
		if summary.Counters.Failed != 1 {
			t.Errorf("expected 1 failed (missing page), got %d", summary.Counters.Failed)
		}
		if summary.Counters.Blocked != 1 {
			t.Errorf("expected 1 blocked (off-scope link), got %d", summary.Counters.Blocked)
		}
	})
}
