package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/BijayaThebe/webcrawler/internal/crawler"
	"github.com/BijayaThebe/webcrawler/internal/model"
)

// ErrDatabaseNotFound is returned when opening an existing database that
// does not exist on disk.
var ErrDatabaseNotFound = errors.New("database not found")

// CrawlDB provides SQLite-based storage for crawl results. It implements
// the crawler.Sink interface, so persistence happens as the crawl runs, and
// it keeps run summaries for the history command.
//
// Design decision: One database file holds every run rather than a file
// per run. This keeps the history queryable in one place and simplifies
// backup/restore.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is
// returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, "webcrawler.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s (use CreateIfNotExists option to create)", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; readers share the same connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Pages store successfully crawled and extracted documents
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL UNIQUE,
		title TEXT,
		depth INTEGER NOT NULL,
		status_code INTEGER,
		fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		content_length INTEGER,
		links INTEGER,
		excerpt TEXT,
		markdown TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_pages_fetched ON pages(fetched_at);

	-- Failures store URLs whose fetch or extraction failed
	CREATE TABLE IF NOT EXISTS failures (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		reason TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_failures_url ON failures(url);

	-- Blocked stores URLs rejected by the admission filter
	CREATE TABLE IF NOT EXISTS blocked (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		reason TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Runs store one summary row per crawl run
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		seeds INTEGER NOT NULL,
		succeeded INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		blocked INTEGER NOT NULL,
		visited INTEGER NOT NULL,
		summary_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// RecordPage inserts or updates a crawled page.
// Uses UPSERT so a re-crawl of the same URL replaces the stored content.
func (cdb *CrawlDB) RecordPage(ctx context.Context, page *model.PageRecord) error {
	query := `
	INSERT INTO pages (url, title, depth, status_code, fetched_at, content_length, links, excerpt, markdown)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(url) DO UPDATE SET
		title = excluded.title,
		depth = excluded.depth,
		status_code = excluded.status_code,
		fetched_at = excluded.fetched_at,
		content_length = excluded.content_length,
		links = excluded.links,
		excerpt = excluded.excerpt,
		markdown = excluded.markdown
	`

	_, err := cdb.db.ExecContext(ctx, query,
		page.URL,
		page.Title,
		page.Depth,
		page.StatusCode,
		page.FetchedAt.UTC().Format(time.RFC3339),
		page.ContentLength,
		page.Links,
		page.Excerpt,
		page.Markdown,
	)
	if err != nil {
		return fmt.Errorf("failed to insert page: %w", err)
	}

	return nil
}

// RecordFailure inserts a failure record.
func (cdb *CrawlDB) RecordFailure(ctx context.Context, failure *model.FailureRecord) error {
	query := `INSERT INTO failures (url, reason, timestamp) VALUES (?, ?, ?)`

	_, err := cdb.db.ExecContext(ctx, query,
		failure.URL,
		string(failure.Reason),
		failure.Timestamp.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert failure: %w", err)
	}

	return nil
}

// RecordBlocked inserts a blocked URL record.
func (cdb *CrawlDB) RecordBlocked(ctx context.Context, rawURL string, reason crawler.BlockReason) error {
	query := `INSERT INTO blocked (url, reason) VALUES (?, ?)`

	if _, err := cdb.db.ExecContext(ctx, query, rawURL, string(reason)); err != nil {
		return fmt.Errorf("failed to insert blocked URL: %w", err)
	}

	return nil
}

// GetPage retrieves a stored page by URL. Returns nil when the URL has not
// been crawled.
func (cdb *CrawlDB) GetPage(ctx context.Context, url string) (*model.PageRecord, error) {
	query := `
	SELECT url, title, depth, status_code, fetched_at, content_length, links, excerpt, markdown
	FROM pages
	WHERE url = ?
	`

	var page model.PageRecord
	var fetchedAt string

	err := cdb.db.QueryRowContext(ctx, query, url).Scan(
		&page.URL,
		&page.Title,
		&page.Depth,
		&page.StatusCode,
		&fetchedAt,
		&page.ContentLength,
		&page.Links,
		&page.Excerpt,
		&page.Markdown,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page: %w", err)
	}

	page.FetchedAt = parseTimestamp(fetchedAt)
	return &page, nil
}

// CountPages returns the number of stored pages.
func (cdb *CrawlDB) CountPages(ctx context.Context) (int, error) {
	var count int
	if err := cdb.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return count, nil
}

// SaveRun stores one run summary row, with the full summary as JSON for
// later inspection.
func (cdb *CrawlDB) SaveRun(ctx context.Context, summary *model.Summary) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to serialize summary: %w", err)
	}

	query := `
	INSERT INTO runs (started_at, finished_at, seeds, succeeded, failed, blocked, visited, summary_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = cdb.db.ExecContext(ctx, query,
		summary.StartedAt.UTC().Format(time.RFC3339),
		summary.FinishedAt.UTC().Format(time.RFC3339),
		len(summary.Seeds),
		summary.Counters.Succeeded,
		summary.Counters.Failed,
		summary.Counters.Blocked,
		summary.Visited,
		string(summaryJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	return nil
}

// Run is one stored run summary row.
type Run struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt time.Time
	Seeds      int
	Counters   model.Counters
	Visited    int
}

// ListRuns returns the most recent runs, newest first.
func (cdb *CrawlDB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
	SELECT id, started_at, finished_at, seeds, succeeded, failed, blocked, visited
	FROM runs
	ORDER BY started_at DESC
	LIMIT ?
	`

	rows, err := cdb.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var startedAt, finishedAt string

		err := rows.Scan(
			&run.ID,
			&startedAt,
			&finishedAt,
			&run.Seeds,
			&run.Counters.Succeeded,
			&run.Counters.Failed,
			&run.Counters.Blocked,
			&run.Visited,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.StartedAt = parseTimestamp(startedAt)
		run.FinishedAt = parseTimestamp(finishedAt)
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// GetRunSummary retrieves the full summary JSON of one run.
func (cdb *CrawlDB) GetRunSummary(ctx context.Context, id int64) (*model.Summary, error) {
	var summaryJSON string
	err := cdb.db.QueryRowContext(ctx, `SELECT summary_json FROM runs WHERE id = ?`, id).Scan(&summaryJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var summary model.Summary
	if err := json.Unmarshal([]byte(summaryJSON), &summary); err != nil {
		return nil, fmt.Errorf("failed to parse run summary: %w", err)
	}

	return &summary, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
