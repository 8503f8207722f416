// Package report renders crawl run summaries.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: Markdown output for documentation and sharing
//
// Design decision: Rendering is separated from the summary data structures
// (which live in the model package) so new output formats can be added
// without touching the crawl pipeline. Writers implement the Writer
// interface and can be composed with MultiWriter for simultaneous
// terminal-and-file output.
package report
