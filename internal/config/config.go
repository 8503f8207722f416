package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values. These mirror conservative crawling practice:
// shallow depth, modest timeouts, and a polite delay between requests.
const (
	// DefaultMaxDepth of 1 crawls the seed pages plus the pages they link
	// to. Deeper crawls grow quickly, so anything beyond 1 is opt-in.
	DefaultMaxDepth = 1

	// DefaultRequestTimeout is the per-request deadline. 10 seconds covers
	// slow-but-working servers without letting a dead one stall the crawl.
	DefaultRequestTimeout = 10 * time.Second

	// DefaultRetryCount is the number of retries after a failed attempt.
	// Three retries ride out transient network hiccups; persistent failures
	// are recorded and skipped.
	DefaultRetryCount = 3

	// DefaultPoliteDelay is the minimum interval between any two fetch
	// attempts. 500ms keeps request rates well under what small sites can
	// serve. Can be adjusted via the --delay CLI flag.
	DefaultPoliteDelay = 500 * time.Millisecond

	// DefaultUserAgent identifies the crawler in HTTP requests.
	// A descriptive User-Agent lets site operators identify crawler traffic
	// in their logs.
	DefaultUserAgent = "webcrawler/1.0 (+https://github.com/BijayaThebe/webcrawler)"

	// DefaultOutputDir is where page files, event logs, and the index
	// manifest are written.
	DefaultOutputDir = "output"

	// DefaultWorkers of 1 crawls strictly sequentially. Concurrency is
	// opt-in because the polite delay already dominates throughput for
	// single-site crawls.
	DefaultWorkers = 1

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 5MB is sufficient for most HTML pages while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// AppName is the application name used for XDG directory paths.
	AppName = "webcrawler"
)

// Config holds all configuration options for a crawl run.
// This struct is populated from CLI flags and the optional config file and
// passed through the application via dependency injection rather than
// global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, OutputConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant
// benefit.
type Config struct {
	// Seeds is the list of starting URLs. Must contain at least one entry.
	Seeds []string

	// SeedsFile is the path of a file listing seed URLs, one per line.
	// Blank lines and lines starting with # are skipped.
	SeedsFile string

	// AllowedDomains is the crawl scope: only these domains and their
	// subdomains are fetched. Required.
	AllowedDomains []string

	// DeniedDomains are domains rejected even when they would match the
	// allow-list.
	DeniedDomains []string

	// BlockPatterns are regular expressions matched against full URLs;
	// matching URLs are not fetched.
	BlockPatterns []string

	// MaxDepth is the maximum link-following depth. Depth 0 means only
	// fetch the seed pages.
	MaxDepth int

	// RequestTimeout is the deadline for each HTTP request.
	RequestTimeout time.Duration

	// RetryCount is how many times a failed fetch is retried.
	RetryCount int

	// PoliteDelay is the minimum interval between any two fetch attempts
	// across the whole process.
	PoliteDelay time.Duration

	// Workers is the number of pages processed concurrently within one
	// BFS layer.
	Workers int

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated. Set to 0 for the default.
	MaxBodySize int64

	// OutputDir is the directory where page files, event logs, and the
	// index manifest are written.
	OutputDir string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .webcrawler in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// JSONSummary prints the run summary as JSON instead of the
	// human-readable format. Mutually exclusive with MarkdownSummary.
	JSONSummary bool

	// MarkdownSummary prints the run summary as Markdown instead of the
	// human-readable format. Mutually exclusive with JSONSummary.
	MarkdownSummary bool

	// SummaryFile is the output file path for the summary.
	// When set, the summary is written to this file in addition to stdout.
	SummaryFile string

	// DBDir is the directory path for storing the SQLite database.
	// When set, crawl results are saved for historical comparison.
	// When empty, results are only written to OutputDir.
	DBDir string

	// SaveToDB indicates whether to save crawl results to the database.
	// This is automatically set to true when DBDir is configured.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use
// cases. Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, polite
// delay). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		MaxDepth:       DefaultMaxDepth,
		RequestTimeout: DefaultRequestTimeout,
		RetryCount:     DefaultRetryCount,
		PoliteDelay:    DefaultPoliteDelay,
		Workers:        DefaultWorkers,
		UserAgent:      DefaultUserAgent,
		MaxBodySize:    DefaultMaxBodySize,
		OutputDir:      DefaultOutputDir,
	}
}

// XDGDataDir returns the XDG data directory for the crawler.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/webcrawler
// On macOS: ~/Library/Application Support/webcrawler
// On Windows: %LOCALAPPDATA%\webcrawler
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for the crawler.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/webcrawler
// On macOS: ~/Library/Application Support/webcrawler
// On Windows: %APPDATA%\webcrawler
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any crawling begins.
//
// We chose to return the first error found rather than collecting all
// errors because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeeds
	}

	if len(c.AllowedDomains) == 0 {
		return ErrNoAllowedDomains
	}

	// Timeout must be positive; zero timeout would cause immediate failures
	if c.RequestTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}

	if c.RetryCount < 0 {
		return ErrInvalidRetryCount
	}

	if c.PoliteDelay < 0 {
		return ErrInvalidPoliteDelay
	}

	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	// JSONSummary and MarkdownSummary are mutually exclusive
	if c.JSONSummary && c.MarkdownSummary {
		return ErrConflictingSummaryFormats
	}

	return nil
}
