package worker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"newsdesk/features/article"
)

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorStore persists an enriched article with its vector.
type VectorStore interface {
	StoreArticle(ctx context.Context, item *article.Enriched, vec []float32) error
}

const embedTimeout = 60 * time.Second

// EmbedSink embeds an enriched article and stores it in the vector
// store. It satisfies pipeline.Sink so it can sit behind the dedup
// writer next to the Postgres sink.
type EmbedSink struct {
	embedder Embedder
	store    VectorStore
}

func NewEmbedSink(e Embedder, s VectorStore) *EmbedSink {
	return &EmbedSink{embedder: e, store: s}
}

func (s *EmbedSink) Write(ctx context.Context, item *article.Enriched) error {
	embedCtx, cancel := context.WithTimeout(ctx, embedTimeout)
	defer cancel()

	vec, err := s.embedder.Embed(embedCtx, contextualText(item))
	if err != nil {
		return fmt.Errorf("embed article %s: %w", item.ID, err)
	}

	if err := s.store.StoreArticle(embedCtx, item, vec); err != nil {
		return fmt.Errorf("store article %s: %w", item.ID, err)
	}
	return nil
}

// contextualText builds the string that gets embedded. Prefixing the
// body with structured fields keeps source and topic signal in the
// vector, not just the prose.
func contextualText(item *article.Enriched) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\nSource: %s\nURL: %s", item.Title, item.Source, item.URL)
	if len(item.Topics) > 0 {
		fmt.Fprintf(&b, "\nTopics: %s", strings.Join(item.Topics, ", "))
	}
	if item.Sentiment != "" {
		fmt.Fprintf(&b, "\nSentiment: %s", item.Sentiment)
	}

	body := item.Summary
	if body == "" {
		body = item.BodyText()
	}
	fmt.Fprintf(&b, "\n---\n%s", body)
	return b.String()
}
