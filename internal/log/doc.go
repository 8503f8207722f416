// Package log provides crawl-friendly logging built on top of the standard
// slog package.
//
// This package extends slog to provide:
//   - Automatic truncation of oversized string attributes (page titles,
//     excerpts, long URLs) so one noisy page cannot flood the log
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// # Usage
//
//	// Create a logger
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Info("page crawled",
//	    "url", "https://example.com/docs",
//	    "title", veryLongTitle, // truncated before it reaches the output
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log
