package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/BijayaThebe/webcrawler/internal/model"
)

// SimpleWriter outputs human-readable text summaries.
// This format is designed for terminal display.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors because it works in all terminals and pipes cleanly to
// files or other tools.
type SimpleWriter struct {
	baseWriter

	// verbose enables the per-seed breakdown in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables the per-seed breakdown.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write renders the summary in human-readable format.
func (w *SimpleWriter) Write(summary *model.Summary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeCounters(&sb, summary)
	if w.verbose {
		w.writeSeeds(&sb, summary)
	}

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the run header with timing information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, summary *model.Summary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 60))
	sb.WriteString("\n")
	sb.WriteString("                    CRAWL SUMMARY\n")
	sb.WriteString(strings.Repeat("=", 60))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Started:  %s\n", summary.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Finished: %s\n", summary.FinishedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration: %s\n", summary.Duration().Round(10*time.Millisecond)))
	sb.WriteString(fmt.Sprintf("Seeds:    %d\n", len(summary.Seeds)))
	sb.WriteString("\n")
}

// writeCounters writes the global outcome counts.
func (w *SimpleWriter) writeCounters(sb *strings.Builder, summary *model.Summary) {
	sb.WriteString(strings.Repeat("-", 60))
	sb.WriteString("\n")
	sb.WriteString("OUTCOMES\n")
	sb.WriteString(strings.Repeat("-", 60))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  CRAWLED: %d\n", summary.Counters.Succeeded))
	sb.WriteString(fmt.Sprintf("  FAILED:  %d\n", summary.Counters.Failed))
	sb.WriteString(fmt.Sprintf("  BLOCKED: %d\n", summary.Counters.Blocked))
	sb.WriteString(fmt.Sprintf("  VISITED: %d\n", summary.Visited))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  TOTAL:   %d URLs reached an outcome\n", summary.Counters.Total()))
	sb.WriteString("\n")
}

// writeSeeds writes the per-seed breakdown.
func (w *SimpleWriter) writeSeeds(sb *strings.Builder, summary *model.Summary) {
	sb.WriteString(strings.Repeat("-", 60))
	sb.WriteString("\n")
	sb.WriteString("SEEDS\n")
	sb.WriteString(strings.Repeat("-", 60))
	sb.WriteString("\n\n")

	for _, seed := range summary.Seeds {
		sb.WriteString(fmt.Sprintf("  [%s] %s\n", statusIndicator(seed.Status), seed.Seed))
		sb.WriteString(fmt.Sprintf("      crawled %d, failed %d, blocked %d\n",
			seed.Counters.Succeeded, seed.Counters.Failed, seed.Counters.Blocked))
	}
	sb.WriteString("\n")
}

// statusIndicator returns a short marker for the seed state.
func statusIndicator(status model.SeedStatus) string {
	switch status {
	case model.SeedDone:
		return "+"
	case model.SeedInvalid:
		return "x"
	case model.SeedPending:
		return "."
	case model.SeedRunning:
		return "~"
	case model.SeedCancelled:
		return "!"
	default:
		return "?"
	}
}
