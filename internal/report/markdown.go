package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"

	"github.com/BijayaThebe/webcrawler/internal/model"
)

// MarkdownWriter outputs summaries in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides type-safe tables and headings instead of
// hand-assembled strings.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given
// writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write renders the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeCounters(md, summary)
	w.writeSeeds(md, summary)

	return len(md.String()), md.Build()
}

// writeHeader writes the run information table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.Summary) {
	md.H1("Crawl Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Started", summary.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Finished", summary.FinishedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", summary.Duration().Round(10 * time.Millisecond).String()},
			{"Seeds", strconv.Itoa(len(summary.Seeds))},
		},
	})
	md.PlainText("")
}

// writeCounters writes the outcome counts table.
func (w *MarkdownWriter) writeCounters(md *markdown.Markdown, summary *model.Summary) {
	md.H2("Outcomes")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Count"},
		Rows: [][]string{
			{"Crawled", strconv.Itoa(summary.Counters.Succeeded)},
			{"Failed", strconv.Itoa(summary.Counters.Failed)},
			{"Blocked", strconv.Itoa(summary.Counters.Blocked)},
			{"Visited", strconv.Itoa(summary.Visited)},
			{"**Total**", "**" + strconv.Itoa(summary.Counters.Total()) + "**"},
		},
	})
	md.PlainText("")
}

// writeSeeds writes the per-seed breakdown table.
func (w *MarkdownWriter) writeSeeds(md *markdown.Markdown, summary *model.Summary) {
	if len(summary.Seeds) == 0 {
		return
	}

	md.H2("Seeds")
	md.PlainText("")

	rows := make([][]string, 0, len(summary.Seeds))
	for _, seed := range summary.Seeds {
		rows = append(rows, []string{
			"`" + seed.Seed + "`",
			string(seed.Status),
			strconv.Itoa(seed.Counters.Succeeded),
			strconv.Itoa(seed.Counters.Failed),
			strconv.Itoa(seed.Counters.Blocked),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Seed", "Status", "Crawled", "Failed", "Blocked"},
		Rows:   rows,
	})
	md.PlainText("")
}
