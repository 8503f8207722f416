package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/BijayaThebe/webcrawler/internal/model"
)

// createTestSummary creates a summary with sample data for testing.
func createTestSummary() *model.Summary {
	return &model.Summary{
		StartedAt:  time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		FinishedAt: time.Date(2026, 3, 14, 9, 30, 42, 0, time.UTC),
		Seeds: []model.SeedResult{
			{
				Seed:     "https://example.com/",
				Status:   model.SeedDone,
				Counters: model.Counters{Succeeded: 7, Failed: 1, Blocked: 2},
			},
			{
				Seed:   "not a url",
				Status: model.SeedInvalid,
				Counters: model.Counters{
					Failed: 1,
				},
			},
		},
		Counters: model.Counters{Succeeded: 7, Failed: 2, Blocked: 2},
		Visited:  10,
	}
}

// TestSimpleWriter tests the human-readable summary writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header and outcomes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"CRAWL SUMMARY", "OUTCOMES", "CRAWLED: 7", "FAILED:  2", "BLOCKED: 2", "VISITED: 10"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("hides seeds by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if strings.Contains(buf.String(), "https://example.com/") {
			t.Error("expected seed breakdown to be hidden by default")
		}
	})

	t.Run("shows seeds when verbose", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithVerbose(true))

		if _, err := w.Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "[+] https://example.com/") {
			t.Errorf("expected finished seed marker, got:\n%s", output)
		}
		if !strings.Contains(output, "[x] not a url") {
			t.Errorf("expected invalid seed marker, got:\n%s", output)
		}
	})

	t.Run("marks cancelled seeds", func(t *testing.T) {
		t.Parallel()

		summary := createTestSummary()
		summary.Seeds = append(summary.Seeds, model.SeedResult{
			Seed:   "https://interrupted.example/",
			Status: model.SeedCancelled,
		})

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithVerbose(true))

		if _, err := w.Write(summary); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "[!] https://interrupted.example/") {
			t.Errorf("expected cancelled seed marker, got:\n%s", buf.String())
		}
	})
}

// TestJSONWriter tests the JSON summary writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes valid JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		if _, err := w.Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got model.Summary
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Counters.Succeeded != 7 || got.Visited != 10 {
			t.Errorf("unexpected round-tripped summary %+v", got)
		}
		if len(got.Seeds) != 2 || got.Seeds[1].Status != model.SeedInvalid {
			t.Errorf("unexpected seeds %+v", got.Seeds)
		}
	})

	t.Run("pretty print indents output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint())

		if _, err := w.Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "\n  \"") {
			t.Error("expected indented JSON output")
		}
	})
}

// TestMarkdownWriter tests the Markdown summary writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewMarkdownWriter(&buf)

	if _, err := w.Write(createTestSummary()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	for _, want := range []string{"# Crawl Summary", "## Outcomes", "## Seeds", "`https://example.com/`", "Crawled"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, output)
		}
	}
}

// TestMultiWriter tests fan-out to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var text, js bytes.Buffer
	m := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&js))

	n, err := m.Write(createTestSummary())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != text.Len()+js.Len() {
		t.Errorf("expected total of %d bytes, got %d", text.Len()+js.Len(), n)
	}
	if text.Len() == 0 || js.Len() == 0 {
		t.Error("expected both writers to receive output")
	}
}
