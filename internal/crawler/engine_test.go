package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/BijayaThebe/webcrawler/internal/model"
)

// memorySink accumulates crawl outcomes in memory for assertions.
type memorySink struct {
	mu       sync.Mutex
	pages    []*model.PageRecord
	failures []*model.FailureRecord
	blocked  []string
}

func (s *memorySink) RecordPage(_ context.Context, page *model.PageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages = append(s.pages, page)
	return nil
}

func (s *memorySink) RecordFailure(_ context.Context, failure *model.FailureRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failure)
	return nil
}

func (s *memorySink) RecordBlocked(_ context.Context, rawURL string, _ BlockReason) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocked = append(s.blocked, rawURL)
	return nil
}

func (s *memorySink) pageURLs() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	urls := make(map[string]bool, len(s.pages))
	for _, p := range s.pages {
		urls[p.URL] = true
	}
	return urls
}

// newTestSite serves a small linked site and counts requests per path.
func newTestSite(t *testing.T, hits *sync.Map) *httptest.Server {
	t.Helper()

	pages := map[string]string{
		"/":       `<html><title>Home</title><body><p>Welcome home.</p><a href="/about">about</a> <a href="/blog">blog</a></body></html>`,
		"/about":  `<html><title>About</title><body><p>About us.</p><a href="/team">team</a> <a href="/shared">shared</a></body></html>`,
		"/blog":   `<html><title>Blog</title><body><p>Posts.</p><a href="/shared">shared</a> <a href="https://evil.example.org/">external</a></body></html>`,
		"/team":   `<html><title>Team</title><body><p>The team.</p></body></html>`,
		"/shared": `<html><title>Shared</title><body><p>Reachable twice.</p></body></html>`,
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		count, _ := hits.LoadOrStore(r.URL.Path, new(atomic.Int32))
		count.(*atomic.Int32).Add(1)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))
}

// siteFilter builds a filter admitting only the test server's host.
func siteFilter(t *testing.T, srv *httptest.Server) *Filter {
	t.Helper()

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return NewFilter([]string{u.Hostname()}, nil, nil)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// TestEngineCrawl tests a full BFS over the test site.
func TestEngineCrawl(t *testing.T) {
	t.Parallel()

	var hits sync.Map
	srv := newTestSite(t, &hits)
	defer srv.Close()

	sink := &memorySink{}
	engine := NewEngine(
		siteFilter(t, srv),
		NewFetcher(5*time.Second),
		NewExtractor(),
		WithMaxDepth(2),
		WithSink(sink),
		WithLogger(quietLogger()),
	)

	summary, err := engine.Crawl(context.Background(), []string{srv.URL + "/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Depth 0: /. Depth 1: /about, /blog. Depth 2: /team, /shared.
	got := sink.pageURLs()
	for _, path := range []string{"/", "/about", "/blog", "/team", "/shared"} {
		if !got[srv.URL+path] {
			t.Errorf("expected page %s to be crawled, got %v", path, got)
		}
	}
	if summary.Counters.Succeeded != 5 {
		t.Errorf("expected 5 succeeded, got %d", summary.Counters.Succeeded)
	}

	// /shared is linked from both /about and /blog but fetched once.
	hits.Range(func(path, count any) bool {
		if n := count.(*atomic.Int32).Load(); n != 1 {
			t.Errorf("expected exactly 1 request for %s, got %d", path, n)
		}
		return true
	})

	// The external link is rejected by the filter, not fetched.
	if summary.Counters.Blocked != 1 {
		t.Errorf("expected 1 blocked URL, got %d", summary.Counters.Blocked)
	}

	if len(summary.Seeds) != 1 || summary.Seeds[0].Status != model.SeedDone {
		t.Errorf("expected one finished seed, got %+v", summary.Seeds)
	}
}

// TestEngineDepthBound tests that pages beyond maxDepth are never fetched.
func TestEngineDepthBound(t *testing.T) {
	t.Parallel()

	var hits sync.Map
	srv := newTestSite(t, &hits)
	defer srv.Close()

	sink := &memorySink{}
	engine := NewEngine(
		siteFilter(t, srv),
		NewFetcher(5*time.Second),
		NewExtractor(),
		WithMaxDepth(1),
		WithSink(sink),
		WithLogger(quietLogger()),
	)

	if _, err := engine.Crawl(context.Background(), []string{srv.URL + "/"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := sink.pageURLs()
	for _, path := range []string{"/team", "/shared"} {
		if got[srv.URL+path] {
			t.Errorf("expected depth-2 page %s to be skipped", path)
		}
	}
	for _, p := range sink.pages {
		if p.Depth > 1 {
			t.Errorf("expected no page beyond depth 1, got %s at depth %d", p.URL, p.Depth)
		}
	}
}

// TestEngineSeedOnly tests maxDepth 0.
func TestEngineSeedOnly(t *testing.T) {
	t.Parallel()

	var hits sync.Map
	srv := newTestSite(t, &hits)
	defer srv.Close()

	sink := &memorySink{}
	engine := NewEngine(
		siteFilter(t, srv),
		NewFetcher(5*time.Second),
		NewExtractor(),
		WithMaxDepth(0),
		WithSink(sink),
		WithLogger(quietLogger()),
	)

	summary, err := engine.Crawl(context.Background(), []string{srv.URL + "/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Counters.Succeeded != 1 {
		t.Errorf("expected only the seed to be fetched, got %d pages", summary.Counters.Succeeded)
	}
}

// TestEngineSharedVisitedAcrossSeeds tests that two overlapping seeds never
// refetch a page.
func TestEngineSharedVisitedAcrossSeeds(t *testing.T) {
	t.Parallel()

	var hits sync.Map
	srv := newTestSite(t, &hits)
	defer srv.Close()

	sink := &memorySink{}
	engine := NewEngine(
		siteFilter(t, srv),
		NewFetcher(5*time.Second),
		NewExtractor(),
		WithMaxDepth(1),
		WithSink(sink),
		WithLogger(quietLogger()),
	)

	seeds := []string{srv.URL + "/about", srv.URL + "/blog"}
	summary, err := engine.Crawl(context.Background(), seeds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// /shared is reachable from both seeds; the global visited set makes
	// the second seed skip it.
	count, ok := hits.Load("/shared")
	if !ok {
		t.Fatal("expected /shared to be fetched")
	}
	if n := count.(*atomic.Int32).Load(); n != 1 {
		t.Errorf("expected exactly 1 request for /shared, got %d", n)
	}

	if len(summary.Seeds) != 2 {
		t.Fatalf("expected 2 seed results, got %d", len(summary.Seeds))
	}
	for _, s := range summary.Seeds {
		if s.Status != model.SeedDone {
			t.Errorf("expected seed %s to finish, got status %s", s.Seed, s.Status)
		}
	}
}

// TestEngineInvalidSeed tests that a bad seed is recorded and skipped
// without aborting the run.
func TestEngineInvalidSeed(t *testing.T) {
	t.Parallel()

	var hits sync.Map
	srv := newTestSite(t, &hits)
	defer srv.Close()

	sink := &memorySink{}
	engine := NewEngine(
		siteFilter(t, srv),
		NewFetcher(5*time.Second),
		NewExtractor(),
		WithSink(sink),
		WithLogger(quietLogger()),
	)

	summary, err := engine.Crawl(context.Background(), []string{"mailto:nobody@example.com", srv.URL + "/team"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Seeds[0].Status != model.SeedInvalid {
		t.Errorf("expected first seed invalid, got %s", summary.Seeds[0].Status)
	}
	if summary.Seeds[1].Status != model.SeedDone {
		t.Errorf("expected second seed done, got %s", summary.Seeds[1].Status)
	}

	if len(sink.failures) != 1 || sink.failures[0].Reason != model.FailureInvalidSeed {
		t.Errorf("expected one invalid-seed failure, got %+v", sink.failures)
	}
	if summary.Counters.Succeeded != 1 {
		t.Errorf("expected the valid seed page to be crawled, got %d", summary.Counters.Succeeded)
	}
}

// TestEngineRecordsFetchFailures tests failure recording for error pages.
func TestEngineRecordsFetchFailures(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, `<html><title>Root</title><body><p>root</p><a href="/missing">gone</a></body></html>`)
	}))
	defer srv.Close()

	sink := &memorySink{}
	engine := NewEngine(
		siteFilter(t, srv),
		NewFetcher(5*time.Second),
		NewExtractor(),
		WithMaxDepth(1),
		WithSink(sink),
		WithLogger(quietLogger()),
	)

	summary, err := engine.Crawl(context.Background(), []string{srv.URL + "/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Counters.Failed != 1 {
		t.Errorf("expected 1 failure, got %d", summary.Counters.Failed)
	}
	if len(sink.failures) != 1 || sink.failures[0].Reason != model.FailureHTTPError {
		t.Errorf("expected one http-error failure, got %+v", sink.failures)
	}
	// The failed page still finished the seed.
	if summary.Seeds[0].Status != model.SeedDone {
		t.Errorf("expected seed done despite failures, got %s", summary.Seeds[0].Status)
	}
}

// TestEngineConcurrentWorkers tests that parallel workers produce the same
// page set as the sequential baseline.
func TestEngineConcurrentWorkers(t *testing.T) {
	t.Parallel()

	var hits sync.Map
	srv := newTestSite(t, &hits)
	defer srv.Close()

	sink := &memorySink{}
	engine := NewEngine(
		siteFilter(t, srv),
		NewFetcher(5*time.Second),
		NewExtractor(),
		WithMaxDepth(2),
		WithWorkers(4),
		WithSink(sink),
		WithLogger(quietLogger()),
	)

	summary, err := engine.Crawl(context.Background(), []string{srv.URL + "/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Counters.Succeeded != 5 {
		t.Errorf("expected 5 pages with 4 workers, got %d", summary.Counters.Succeeded)
	}
	hits.Range(func(path, count any) bool {
		if n := count.(*atomic.Int32).Load(); n != 1 {
			t.Errorf("expected exactly 1 request for %s, got %d", path, n)
		}
		return true
	})
}

// TestEngineCancellation tests that a cancelled context stops the run and
// is reported alongside the partial summary.
func TestEngineCancellation(t *testing.T) {
	t.Parallel()

	var hits sync.Map
	srv := newTestSite(t, &hits)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := NewEngine(
		siteFilter(t, srv),
		NewFetcher(5*time.Second),
		NewExtractor(),
		WithLogger(quietLogger()),
	)

	summary, err := engine.Crawl(ctx, []string{srv.URL + "/"})
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if summary == nil {
		t.Fatal("expected partial summary alongside the error")
	}
	if summary.Counters.Succeeded != 0 {
		t.Errorf("expected no pages after immediate cancellation, got %d", summary.Counters.Succeeded)
	}
	if len(summary.Seeds) != 1 || summary.Seeds[0].Status != model.SeedPending {
		t.Errorf("expected a never-started seed to stay pending, got %+v", summary.Seeds)
	}
}

// TestEngineCancelledSeedStatus tests that a seed interrupted mid-crawl
// reaches a terminal cancelled status instead of being left running.
func TestEngineCancelledSeedStatus(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cancel()
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><p>late</p><a href="/next">next</a></body></html>`))
	}))
	defer srv.Close()

	engine := NewEngine(
		siteFilter(t, srv),
		NewFetcher(5*time.Second),
		NewExtractor(),
		WithMaxDepth(2),
		WithLogger(quietLogger()),
	)

	summary, _ := engine.Crawl(ctx, []string{srv.URL + "/"})
	if len(summary.Seeds) != 1 {
		t.Fatalf("expected 1 seed result, got %d", len(summary.Seeds))
	}
	if got := summary.Seeds[0].Status; got != model.SeedCancelled {
		t.Errorf("expected seed status %q, got %q", model.SeedCancelled, got)
	}
}
