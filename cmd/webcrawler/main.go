// Package main provides the entry point for the webcrawler CLI.
//
// webcrawler is a polite breadth-first web crawler that converts pages to
// Markdown. It stays inside a configured set of allowed domains, paces its
// requests, and writes one Markdown file per page plus an index manifest.
//
// Usage:
//
//	webcrawler crawl --allow example.com https://example.com/
//	webcrawler crawl --seeds seeds.txt --allow example.com
//
// See --help for all available options.
package main

// main is the entry point for webcrawler.
func main() {
	Execute()
}
