package pipeline

import (
	"bufio"
	"context"
	"encoding/json"
	"io"

	"newsdesk/features/article"
)

// Sink receives enriched articles accepted by the dedup writer.
type Sink interface {
	Write(ctx context.Context, item *article.Enriched) error
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc func(ctx context.Context, item *article.Enriched) error

func (f SinkFunc) Write(ctx context.Context, item *article.Enriched) error {
	return f(ctx, item)
}

// Multi fans a write out to every sink in order, stopping at the first
// error.
func Multi(sinks ...Sink) Sink {
	return SinkFunc(func(ctx context.Context, item *article.Enriched) error {
		for _, s := range sinks {
			if err := s.Write(ctx, item); err != nil {
				return err
			}
		}
		return nil
	})
}

// DedupWriter passes enriched articles through to a sink at most once per
// identity, first seen wins. The seen set lives for one run and is never
// persisted; membership checks are O(1).
type DedupWriter struct {
	sink Sink
	seen map[string]struct{}
}

func NewDedupWriter(sink Sink) *DedupWriter {
	return &DedupWriter{sink: sink, seen: make(map[string]struct{})}
}

// Seen reports whether id has already been written this run, without
// recording anything. The run loop uses it to skip enrichment work for
// duplicates before any LLM call is made.
func (w *DedupWriter) Seen(id string) bool {
	_, ok := w.seen[id]
	return ok
}

// Write forwards the item to the sink unless its id was written before.
// It reports whether the item was actually written.
func (w *DedupWriter) Write(ctx context.Context, item *article.Enriched) (bool, error) {
	if _, ok := w.seen[item.ID]; ok {
		return false, nil
	}
	w.seen[item.ID] = struct{}{}
	if err := w.sink.Write(ctx, item); err != nil {
		return false, err
	}
	return true, nil
}

// JSONLSink writes one JSON object per line. Flush must be called before
// the underlying writer is closed.
type JSONLSink struct {
	w   *bufio.Writer
	enc *json.Encoder
}

func NewJSONLSink(w io.Writer) *JSONLSink {
	bw := bufio.NewWriter(w)
	return &JSONLSink{w: bw, enc: json.NewEncoder(bw)}
}

func (s *JSONLSink) Write(_ context.Context, item *article.Enriched) error {
	return s.enc.Encode(item)
}

func (s *JSONLSink) Flush() error {
	return s.w.Flush()
}
