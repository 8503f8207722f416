package model

import (
	"strings"
	"time"
	"unicode"
)

// PageRecord is the durable metadata entry produced for one successfully
// fetched and extracted page. It is created once, never mutated afterwards,
// and owned by the result sink until it is serialized into the metadata
// index at the end of the run.
type PageRecord struct {
	// URL is the normalized URL of the page.
	URL string `json:"url"`

	// Title is the page title derived by the content extractor.
	Title string `json:"title"`

	// Depth is the BFS depth at which the page was discovered.
	// Seeds are depth 0.
	Depth int `json:"depth"`

	// StatusCode is the final HTTP status of the successful fetch.
	StatusCode int `json:"status"`

	// FetchedAt is when the page was fetched.
	FetchedAt time.Time `json:"fetched_at"`

	// ContentLength is the length in bytes of the converted Markdown text.
	ContentLength int `json:"content_length"`

	// Links is the number of outbound links collected from the page.
	Links int `json:"links"`

	// File is the path of the per-page Markdown file, relative to the
	// output directory. Empty if the page was not written to disk.
	File string `json:"file,omitempty"`

	// Excerpt is a short plain-text preview of the converted content.
	Excerpt string `json:"excerpt,omitempty"`

	// Markdown holds the full converted text. It is written to the
	// per-page file and excluded from the metadata index to keep
	// index.json small.
	Markdown string `json:"-"`
}

// MaxExcerptLen is the maximum length of a PageRecord excerpt in runes.
const MaxExcerptLen = 200

// MakeExcerpt derives a single-line preview from the converted Markdown.
// Newlines collapse to spaces and the result is capped at MaxExcerptLen
// runes with an ellipsis.
func (p *PageRecord) MakeExcerpt() string {
	fields := strings.FieldsFunc(p.Markdown, unicode.IsSpace)
	text := strings.Join(fields, " ")

	runes := []rune(text)
	if len(runes) <= MaxExcerptLen {
		return text
	}
	return string(runes[:MaxExcerptLen]) + "..."
}

// FailureReason classifies why processing of a single URL failed.
type FailureReason string

// Failure reasons recorded in FailureRecord entries. Fetch reasons imply
// that the configured retries were already exhausted.
const (
	// FailureTimeout means every fetch attempt timed out.
	FailureTimeout FailureReason = "timeout"

	// FailureHTTPError means the server kept answering with a non-2xx status.
	FailureHTTPError FailureReason = "http-error"

	// FailureNetworkError means the connection itself kept failing.
	FailureNetworkError FailureReason = "network-error"

	// FailureNoContent means the response carried no extractable text.
	FailureNoContent FailureReason = "no-content"

	// FailureParseError means the response body could not be parsed as HTML.
	FailureParseError FailureReason = "parse-error"

	// FailureInvalidSeed means a seed URL could not be normalized.
	FailureInvalidSeed FailureReason = "invalid-seed"
)

// FailureRecord captures one failed URL. It is created whenever the fetcher
// exhausts its retries or the extractor cannot produce content, and once for
// every seed that fails normalization.
type FailureRecord struct {
	// URL is the URL that failed.
	URL string `json:"url"`

	// Reason classifies the failure.
	Reason FailureReason `json:"reason"`

	// Timestamp is when the failure was recorded.
	Timestamp time.Time `json:"timestamp"`
}
