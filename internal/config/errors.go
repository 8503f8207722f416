package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoSeeds is returned when no seed URL is specified.
	// This error occurs when neither --seeds nor a positional argument
	// provides a starting point.
	ErrNoSeeds = errors.New("no seeds specified: provide a seed URL or use --seeds")

	// ErrNoAllowedDomains is returned when the allow-list is empty.
	// Crawling without an allow-list would follow links anywhere on the
	// web, so at least one allowed domain is required.
	ErrNoAllowedDomains = errors.New("no allowed domains: use --allow to scope the crawl")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxDepth is returned when the crawl depth is negative.
	// Use 0 to crawl only the seed pages.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be non-negative")

	// ErrInvalidRetryCount is returned when the retry count is negative.
	// Use 0 to disable retries.
	ErrInvalidRetryCount = errors.New("invalid retry count: must be non-negative")

	// ErrInvalidPoliteDelay is returned when the polite delay is negative.
	// Use 0 to disable pacing between requests.
	ErrInvalidPoliteDelay = errors.New("invalid polite delay: must be non-negative")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	// A worker count of zero would mean no crawling at all.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 to apply the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConflictingSummaryFormats is returned when both --json and
	// --markdown are specified. Only one summary format can be used at a
	// time.
	ErrConflictingSummaryFormats = errors.New("conflicting summary formats: --json and --markdown cannot be used together")
)
