package sink

import (
	"context"

	"github.com/BijayaThebe/webcrawler/internal/crawler"
	"github.com/BijayaThebe/webcrawler/internal/model"
)

// Multi fans every event out to several sinks.
//
// Design decision: We implement this as a separate type rather than using
// io.MultiWriter because sinks receive typed records, not raw bytes. Events
// are delivered to every sink even when an earlier one fails; the first
// error is returned after the fan-out completes.
type Multi struct {
	sinks []crawler.Sink
}

// NewMulti creates a sink that forwards every event to all given sinks.
func NewMulti(sinks ...crawler.Sink) *Multi {
	return &Multi{sinks: sinks}
}

// RecordPage forwards the page record to every sink.
func (m *Multi) RecordPage(ctx context.Context, page *model.PageRecord) error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.RecordPage(ctx, page); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// RecordFailure forwards the failure record to every sink.
func (m *Multi) RecordFailure(ctx context.Context, failure *model.FailureRecord) error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.RecordFailure(ctx, failure); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// RecordBlocked forwards the blocked event to every sink.
func (m *Multi) RecordBlocked(ctx context.Context, rawURL string, reason crawler.BlockReason) error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.RecordBlocked(ctx, rawURL, reason); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
