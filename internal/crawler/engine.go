package crawler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/BijayaThebe/webcrawler/internal/model"
)

// Sink receives crawl outcomes as they happen. Implementations accumulate
// page records, append event log lines, or persist to a database. Sink
// errors are logged and never abort the crawl.
type Sink interface {
	// RecordPage is called once per successfully extracted page.
	RecordPage(ctx context.Context, page *model.PageRecord) error

	// RecordFailure is called once per URL whose fetch or extraction
	// failed, and once per seed that fails normalization.
	RecordFailure(ctx context.Context, failure *model.FailureRecord) error

	// RecordBlocked is called once per URL rejected by the admission
	// filter.
	RecordBlocked(ctx context.Context, rawURL string, reason BlockReason) error
}

// nopSink discards all events.
type nopSink struct{}

func (nopSink) RecordPage(context.Context, *model.PageRecord) error       { return nil }
func (nopSink) RecordFailure(context.Context, *model.FailureRecord) error { return nil }
func (nopSink) RecordBlocked(context.Context, string, BlockReason) error  { return nil }

// Engine drives the breadth-first crawl: it dequeues frontier entries,
// gates them through the admission filter, fetches and extracts admitted
// pages, and feeds discovered links back into the frontier while the depth
// bound allows.
//
// Seeds are crawled in order and share one global visited set and one set
// of counters, so a page reachable from two seeds is processed exactly
// once. Termination is guaranteed: depth is strictly bounded and every URL
// enters the visited set at most once.
type Engine struct {
	filter    *Filter
	fetcher   *Fetcher
	extractor *Extractor
	sink      Sink
	logger    *slog.Logger

	// maxDepth limits link following. 0 means only the seed pages.
	maxDepth int

	// workers bounds how many entries of one BFS layer are processed
	// concurrently. 1 is the sequential baseline.
	workers int

	// visited is the global dedup guard shared by all seeds.
	visited *VisitedSet

	// mu protects the counters below.
	mu       sync.Mutex
	counters model.Counters
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithMaxDepth sets the maximum crawl depth. 0 = only the seed pages,
// 1 = seeds plus their links, and so on.
func WithMaxDepth(depth int) EngineOption {
	return func(e *Engine) {
		if depth >= 0 {
			e.maxDepth = depth
		}
	}
}

// WithWorkers sets how many pages are processed concurrently within one
// BFS layer. The default of 1 preserves strictly sequential crawling.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithSink sets the destination for crawl outcomes.
func WithSink(s Sink) EngineOption {
	return func(e *Engine) {
		if s != nil {
			e.sink = s
		}
	}
}

// WithLogger sets the structured logger used for crawl progress.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an Engine from its three collaborators.
func NewEngine(filter *Filter, fetcher *Fetcher, extractor *Extractor, opts ...EngineOption) *Engine {
	e := &Engine{
		filter:    filter,
		fetcher:   fetcher,
		extractor: extractor,
		sink:      nopSink{},
		logger:    slog.Default(),
		maxDepth:  1,
		workers:   1,
		visited:   NewVisitedSet(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Crawl runs the full crawl over the given seeds and returns the run
// summary. Per-URL errors never abort the run; the only error returned is
// context cancellation, alongside the partial summary.
func (e *Engine) Crawl(ctx context.Context, seeds []string) (*model.Summary, error) {
	summary := &model.Summary{
		StartedAt: time.Now(),
		Seeds:     make([]model.SeedResult, 0, len(seeds)),
	}

	var runErr error
	for _, seed := range seeds {
		result := model.SeedResult{Seed: seed, Status: model.SeedPending}

		if ctx.Err() != nil {
			summary.Seeds = append(summary.Seeds, result)
			runErr = ctx.Err()
			continue
		}

		result.Status = model.SeedRunning
		e.crawlSeed(ctx, seed, &result)
		if result.Status == model.SeedRunning {
			if ctx.Err() != nil {
				result.Status = model.SeedCancelled
			} else {
				result.Status = model.SeedDone
			}
		}

		summary.Seeds = append(summary.Seeds, result)
	}

	summary.FinishedAt = time.Now()
	summary.Counters = e.Counters()
	summary.Visited = e.visited.Len()
	return summary, runErr
}

// Counters returns a snapshot of the global counters.
func (e *Engine) Counters() model.Counters {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.counters
}

// crawlSeed runs the BFS loop for a single seed. The per-seed frontier is
// fresh, but the visited set and counters are the engine's shared ones.
func (e *Engine) crawlSeed(ctx context.Context, seed string, result *model.SeedResult) {
	norm, err := Normalize(nil, seed)
	if err != nil {
		e.logger.Warn("invalid seed", "seed", seed, "error", err)
		e.recordFailure(ctx, &result.Counters, &model.FailureRecord{
			URL:       seed,
			Reason:    model.FailureInvalidSeed,
			Timestamp: time.Now(),
		})
		result.Status = model.SeedInvalid
		return
	}

	e.logger.Info("crawling seed", "seed", norm, "maxDepth", e.maxDepth)

	frontier := NewFrontier()
	frontier.Push(Entry{URL: norm, Depth: 0})

	for frontier.Len() > 0 {
		if ctx.Err() != nil {
			return
		}

		// Sequential mode dequeues one entry at a time; FIFO order alone
		// preserves the breadth-first guarantee.
		if e.workers <= 1 {
			entry, ok := frontier.Pop()
			if !ok {
				return
			}
			e.process(ctx, entry, frontier, &result.Counters)
			continue
		}

		// Concurrent mode processes one BFS layer at a time. Entries of
		// the current layer only ever push depth+1 entries, so layer
		// boundaries stay intact and the depth ordering guarantee holds.
		layer := frontier.PopLayer()

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.workers)
		for _, entry := range layer {
			g.Go(func() error {
				e.process(gctx, entry, frontier, &result.Counters)
				return nil
			})
		}
		_ = g.Wait() //nolint:errcheck // workers never return errors; outcomes land in the sink
	}
}

// process handles one dequeued frontier entry through the full pipeline:
// visited guard, admission, fetch, extract, record, enqueue children.
func (e *Engine) process(ctx context.Context, entry Entry, frontier *Frontier, seedCounters *model.Counters) {
	if ctx.Err() != nil {
		return
	}
	if entry.Depth > e.maxDepth {
		return
	}

	// Mark visited before any further processing. MarkIfNew is atomic, so
	// re-discovery of the same URL can never cause a duplicate fetch.
	if !e.visited.MarkIfNew(entry.URL) {
		return
	}

	decision := e.filter.Decide(entry.URL)
	if !decision.Allowed {
		e.recordBlocked(ctx, seedCounters, entry.URL, decision.Reason)
		return
	}

	e.logger.Debug("fetching", "url", entry.URL, "depth", entry.Depth)

	resp, err := e.fetcher.Fetch(ctx, entry.URL)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		e.recordFailure(ctx, seedCounters, &model.FailureRecord{
			URL:       entry.URL,
			Reason:    fetchFailureReason(err),
			Timestamp: time.Now(),
		})
		return
	}

	page, err := e.extractor.Extract(bytes.NewReader(resp.Body), resp.ContentType, entry.URL)
	if err != nil {
		e.recordFailure(ctx, seedCounters, &model.FailureRecord{
			URL:       entry.URL,
			Reason:    extractFailureReason(err),
			Timestamp: time.Now(),
		})
		return
	}

	record := &model.PageRecord{
		URL:           entry.URL,
		Title:         page.Title,
		Depth:         entry.Depth,
		StatusCode:    resp.StatusCode,
		FetchedAt:     time.Now(),
		ContentLength: len(page.Markdown),
		Links:         len(page.Links),
		Markdown:      page.Markdown,
	}
	record.Excerpt = record.MakeExcerpt()

	if err := e.sink.RecordPage(ctx, record); err != nil {
		e.logger.Warn("sink rejected page record", "url", entry.URL, "error", err)
	}

	e.mu.Lock()
	e.counters.Succeeded++
	seedCounters.Succeeded++
	e.mu.Unlock()

	// Discovered links re-enter the frontier only while the depth bound
	// allows, so no entry is ever created beyond maxDepth. Admission is
	// deliberately NOT checked here; it runs at dequeue time to keep all
	// filtering in one place.
	if entry.Depth >= e.maxDepth {
		return
	}

	base, err := url.Parse(entry.URL)
	if err != nil {
		return
	}
	for _, href := range page.Links {
		child, err := Normalize(base, href)
		if err != nil {
			continue
		}
		if e.visited.Seen(child) {
			continue
		}
		frontier.Push(Entry{URL: child, Depth: entry.Depth + 1})
	}
}

// recordBlocked bumps the blocked counters and emits the event.
func (e *Engine) recordBlocked(ctx context.Context, seedCounters *model.Counters, rawURL string, reason BlockReason) {
	e.mu.Lock()
	e.counters.Blocked++
	seedCounters.Blocked++
	e.mu.Unlock()

	e.logger.Debug("blocked", "url", rawURL, "reason", string(reason))
	if err := e.sink.RecordBlocked(ctx, rawURL, reason); err != nil {
		e.logger.Warn("sink rejected blocked event", "url", rawURL, "error", err)
	}
}

// recordFailure bumps the failure counters and emits the record.
func (e *Engine) recordFailure(ctx context.Context, seedCounters *model.Counters, failure *model.FailureRecord) {
	e.mu.Lock()
	e.counters.Failed++
	seedCounters.Failed++
	e.mu.Unlock()

	e.logger.Debug("failed", "url", failure.URL, "reason", string(failure.Reason))
	if err := e.sink.RecordFailure(ctx, failure); err != nil {
		e.logger.Warn("sink rejected failure record", "url", failure.URL, "error", err)
	}
}

// fetchFailureReason maps a fetch error to the recorded failure reason.
func fetchFailureReason(err error) model.FailureReason {
	var fe *FetchError
	if errors.As(err, &fe) {
		switch fe.Reason {
		case FetchTimeout:
			return model.FailureTimeout
		case FetchHTTPError:
			return model.FailureHTTPError
		case FetchNetworkError:
			return model.FailureNetworkError
		}
	}
	return model.FailureNetworkError
}

// extractFailureReason maps an extraction error to the recorded reason.
func extractFailureReason(err error) model.FailureReason {
	if errors.Is(err, ErrNoContent) {
		return model.FailureNoContent
	}
	return model.FailureParseError
}
