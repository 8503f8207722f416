// Package sink persists crawl outcomes as they happen.
//
// The Recorder is the primary implementation: it writes one Markdown file
// per crawled page, appends event lines to per-outcome log files, and
// produces the index.json manifest at the end of the run. Multi fans a
// single event stream out to several sinks, so file output and database
// persistence can run side by side.
//
// Design decision: Sinks receive events one at a time instead of the whole
// result set at the end, so a crawl interrupted halfway still leaves every
// finished page on disk.
package sink
