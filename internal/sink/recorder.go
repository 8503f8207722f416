package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nao1215/markdown"

	"github.com/BijayaThebe/webcrawler/internal/crawler"
	"github.com/BijayaThebe/webcrawler/internal/model"
)

// maxSlugLen caps generated page file names. Long URLs would otherwise
// exceed filesystem name limits.
const maxSlugLen = 150

// Recorder writes crawl outcomes to an output directory:
//
//	<dir>/pages/<slug>.md   one Markdown file per crawled page
//	<dir>/success_urls.txt  one line per crawled page
//	<dir>/failed_urls.txt   one line per failed URL
//	<dir>/blocked_urls.txt  one line per blocked URL
//	<dir>/index.json        run manifest, written by WriteIndex
//
// The log files are truncated when the Recorder is created, so each run
// starts from a clean slate.
type Recorder struct {
	dir      string
	pagesDir string

	success *os.File
	failed  *os.File
	blocked *os.File

	mu       sync.Mutex
	pages    []*model.PageRecord
	failures []*model.FailureRecord
	slugs    map[string]int
}

// NewRecorder creates the output directory layout and opens the event log
// files. The caller must Close the Recorder when the crawl finishes.
func NewRecorder(dir string) (*Recorder, error) {
	pagesDir := filepath.Join(dir, "pages")
	if err := os.MkdirAll(pagesDir, 0750); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	r := &Recorder{
		dir:      dir,
		pagesDir: pagesDir,
		slugs:    make(map[string]int),
	}

	var err error
	for _, f := range []struct {
		name string
		dst  **os.File
	}{
		{"success_urls.txt", &r.success},
		{"failed_urls.txt", &r.failed},
		{"blocked_urls.txt", &r.blocked},
	} {
		*f.dst, err = os.Create(filepath.Join(dir, f.name)) //nolint:gosec // path built from the configured output dir
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("create %s: %w", f.name, err)
		}
	}

	return r, nil
}

// RecordPage writes the page's Markdown file and appends its success line.
func (r *Recorder) RecordPage(_ context.Context, page *model.PageRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := r.uniqueSlug(page.URL) + ".md"
	if err := r.writePageFile(filepath.Join(r.pagesDir, name), page); err != nil {
		return err
	}

	page.File = filepath.Join("pages", name)
	r.pages = append(r.pages, page)

	return r.appendLine(r.success, fmt.Sprintf("%s|status:%d|%s", page.URL, page.StatusCode, page.FetchedAt.Format(time.RFC3339)))
}

// RecordFailure appends the failure line and keeps the record for the
// manifest.
func (r *Recorder) RecordFailure(_ context.Context, failure *model.FailureRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.failures = append(r.failures, failure)
	return r.appendLine(r.failed, fmt.Sprintf("%s|error:%s|%s", failure.URL, failure.Reason, failure.Timestamp.Format(time.RFC3339)))
}

// RecordBlocked appends the blocked line.
func (r *Recorder) RecordBlocked(_ context.Context, rawURL string, reason crawler.BlockReason) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.appendLine(r.blocked, fmt.Sprintf("%s|blocked:%s|%s", rawURL, reason, time.Now().Format(time.RFC3339)))
}

// Pages returns a copy of the recorded page records in crawl order.
func (r *Recorder) Pages() []*model.PageRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*model.PageRecord(nil), r.pages...)
}

// Failures returns a copy of the recorded failures in crawl order.
func (r *Recorder) Failures() []*model.FailureRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*model.FailureRecord(nil), r.failures...)
}

// index is the shape of the index.json manifest.
type index struct {
	GeneratedAt time.Time              `json:"generated_at"`
	PageCount   int                    `json:"page_count"`
	Pages       []*model.PageRecord    `json:"pages"`
	Failures    []*model.FailureRecord `json:"failures,omitempty"`
}

// WriteIndex writes the index.json manifest listing every recorded page.
// Call it once, after the crawl finishes.
func (r *Recorder) WriteIndex() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.MarshalIndent(index{
		GeneratedAt: time.Now(),
		PageCount:   len(r.pages),
		Pages:       r.pages,
		Failures:    r.failures,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(filepath.Join(r.dir, "index.json"), data, 0600); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

// Close closes the event log files.
func (r *Recorder) Close() error {
	var firstErr error
	for _, f := range []*os.File{r.success, r.failed, r.blocked} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// writePageFile writes one page as a Markdown document: title heading,
// metadata table, then the converted content.
func (r *Recorder) writePageFile(path string, page *model.PageRecord) error {
	f, err := os.Create(path) //nolint:gosec // slug generation keeps the path inside pagesDir
	if err != nil {
		return fmt.Errorf("create page file: %w", err)
	}
	defer f.Close()

	md := markdown.NewMarkdown(f)
	md.H1(page.Title)
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"URL", page.URL},
			{"Fetched", page.FetchedAt.Format("2006-01-02 15:04:05 MST")},
			{"Status", fmt.Sprintf("%d", page.StatusCode)},
			{"Depth", fmt.Sprintf("%d", page.Depth)},
			{"Links", fmt.Sprintf("%d", page.Links)},
		},
	})
	md.PlainText("")
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText(page.Markdown)

	if err := md.Build(); err != nil {
		return fmt.Errorf("write page file: %w", err)
	}
	return nil
}

// uniqueSlug derives the page file base name from the URL and disambiguates
// collisions with a numeric suffix. Caller holds r.mu.
func (r *Recorder) uniqueSlug(rawURL string) string {
	slug := Slug(rawURL)
	n := r.slugs[slug]
	r.slugs[slug] = n + 1
	if n == 0 {
		return slug
	}
	return fmt.Sprintf("%s_%d", slug, n)
}

// Slug converts a URL into a safe file base name: host and path joined,
// every non-alphanumeric run collapsed to a single underscore, capped at
// maxSlugLen characters.
func Slug(rawURL string) string {
	base := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		base = u.Host + u.Path
	}

	var sb strings.Builder
	lastUnderscore := false
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				sb.WriteByte('_')
				lastUnderscore = true
			}
		}
	}

	slug := strings.Trim(sb.String(), "_")
	if slug == "" {
		slug = "page"
	}
	if len(slug) > maxSlugLen {
		slug = slug[:maxSlugLen]
	}
	return slug
}

// appendLine writes one line to an event log file.
func (r *Recorder) appendLine(f *os.File, line string) error {
	if _, err := fmt.Fprintln(f, line); err != nil {
		return fmt.Errorf("append event line: %w", err)
	}
	return nil
}
