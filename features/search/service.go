package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"newsdesk/internal/llm"
)

const answerSystemPrompt = "You are a news assistant. Answer the question using only the " +
	"provided articles. If they do not contain the answer, say so. Be concise."

// Result is one article hit from the vector store.
type Result struct {
	ID        string  `json:"id"`
	Title     string  `json:"title,omitempty"`
	URL       string  `json:"url,omitempty"`
	Source    string  `json:"source,omitempty"`
	Summary   string  `json:"summary,omitempty"`
	Sentiment string  `json:"sentiment,omitempty"`
	Topics    string  `json:"topics,omitempty"`
	Content   string  `json:"content,omitempty"`
	Score     float32 `json:"score"`
}

// Answer is the response to a question: generated text plus the articles
// it was grounded on.
type Answer struct {
	Answer  string   `json:"answer"`
	Sources []Result `json:"sources"`
}

type Stats struct {
	Articles int `json:"articles"`
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type VectorStore interface {
	Search(ctx context.Context, query string, vector []float32, alpha float32, limit int) ([]Result, error)
	Count(ctx context.Context) (int, error)
}

// Service answers semantic search and QA requests over the enriched
// corpus.
type Service struct {
	embedder Embedder
	store    VectorStore
	caller   llm.Caller
	logger   *QueryLogger

	alpha        float32
	defaultLimit int
}

func NewService(e Embedder, s VectorStore, caller llm.Caller, logger *QueryLogger) *Service {
	return &Service{
		embedder:     e,
		store:        s,
		caller:       caller,
		logger:       logger,
		alpha:        0.5,
		defaultLimit: 5,
	}
}

// Search embeds the query and runs a hybrid (BM25 + vector) search.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	start := time.Now()
	if limit <= 0 {
		limit = s.defaultLimit
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := s.store.Search(ctx, query, vec, s.alpha, limit)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	if s.logger != nil {
		s.logger.Log(ctx, QueryLogEntry{
			Query:      query,
			NumResults: len(results),
			Duration:   time.Since(start),
		})
	}
	return results, nil
}

// Ask retrieves the top matching articles and asks the model to answer
// the question from them.
func (s *Service) Ask(ctx context.Context, question string) (*Answer, error) {
	results, err := s.Search(ctx, question, s.defaultLimit)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return &Answer{Answer: "No relevant articles found.", Sources: []Result{}}, nil
	}

	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "ARTICLE %d: %s (%s)\n%s\n\n", i+1, r.Title, r.Source, r.Content)
	}
	prompt := fmt.Sprintf("QUESTION: %s\n\nARTICLES:\n%s", question, b.String())

	answer, err := s.caller.Call(ctx, answerSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("answer question: %w", err)
	}
	return &Answer{Answer: strings.TrimSpace(answer), Sources: results}, nil
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count articles: %w", err)
	}
	return &Stats{Articles: count}, nil
}
