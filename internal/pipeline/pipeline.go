package pipeline

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"newsdesk/features/article"
	"newsdesk/internal/canonical"
	"newsdesk/internal/enrich"
)

// ErrNoInput marks a run that found zero input records. It is the only
// fatal outcome of a run; everything per-item is recovered locally.
var ErrNoInput = errors.New("no input records found")

// Summarizer is the enrichment collaborator, normally *enrich.Summarizer.
type Summarizer interface {
	Summarize(ctx context.Context, title, body string) (enrich.Analysis, error)
}

// Runner drives the sequential enrichment loop: canonicalize, dedupe,
// summarize, write. One item at a time, no concurrent LLM calls; the
// dedupe set and sink are owned exclusively by the loop.
type Runner struct {
	summarizer Summarizer
	writer     *DedupWriter
}

func NewRunner(s Summarizer, sink Sink) *Runner {
	return &Runner{summarizer: s, writer: NewDedupWriter(sink)}
}

// Process enriches a single raw article. It returns (nil, false, nil)
// when the article's identity was already written this run. The worker
// mode calls this directly, one message at a time.
func (r *Runner) Process(ctx context.Context, a *article.Article) (*article.Enriched, bool, error) {
	if err := a.Validate(); err != nil {
		return nil, false, err
	}

	id := a.ID
	if id == "" {
		id = canonical.Identity(a.Title, canonical.URL(a.URL))
	}
	if r.writer.Seen(id) {
		slog.DebugContext(ctx, "duplicate identity, skipping", "id", id, "url", a.URL)
		return nil, false, nil
	}

	analysis, err := r.summarizer.Summarize(ctx, a.Title, a.BodyText())
	if err != nil {
		return nil, false, fmt.Errorf("enrich %q: %w", a.Title, err)
	}

	enriched := &article.Enriched{
		ID:          id,
		Source:      a.Source,
		URL:         a.URL,
		Title:       a.Title,
		Description: a.Description,
		Content:     a.Content,
		PublishedAt: a.PublishedAt,
		Summary:     analysis.Summary,
		Topics:      analysis.Topics,
		Sentiment:   analysis.Sentiment,
	}

	written, err := r.writer.Write(ctx, enriched)
	if err != nil {
		return nil, false, fmt.Errorf("write %q: %w", id, err)
	}
	return enriched, written, nil
}

// Run consumes line-delimited JSON articles from in until EOF and reports
// final accounting. A line that fails to parse or validate counts as
// failed and never halts the loop. Returns ErrNoInput when the stream
// held no records at all.
func (r *Runner) Run(ctx context.Context, in io.Reader) (Report, error) {
	progress := NewProgress()

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		progress.Processed()

		var a article.Article
		if err := json.Unmarshal([]byte(line), &a); err != nil {
			progress.Failed()
			slog.ErrorContext(ctx, "malformed input record", "error", err)
			continue
		}

		_, written, err := r.Process(ctx, &a)
		switch {
		case err != nil:
			progress.Failed()
			slog.ErrorContext(ctx, "article failed", "title", a.Title, "error", err)
		case !written:
			progress.Skipped()
		default:
			progress.Succeeded()
		}
	}

	report := progress.Report()
	if err := scanner.Err(); err != nil {
		return report, fmt.Errorf("read input: %w", err)
	}
	if report.Processed == 0 {
		return report, ErrNoInput
	}
	return report, nil
}
