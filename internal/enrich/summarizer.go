package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"newsdesk/features/article"
	"newsdesk/internal/llm"
	"newsdesk/internal/text"
)

const (
	// fallbackSummaryCap bounds the summary when the model response is
	// used verbatim because it failed to parse as JSON.
	fallbackSummaryCap = 1000

	// chunkSummaryCap bounds each chunk condensation so the combine
	// prompt stays a predictable size regardless of model verbosity.
	chunkSummaryCap = 600
)

const analysisSystemPrompt = "You are a news analyst. Respond with a single JSON object " +
	`with keys "summary" (2-3 sentence summary), "topics" (3-5 main topics, most relevant first) ` +
	`and "sentiment" (one of "Positive", "Negative", "Neutral", "Mixed"). No other text.`

const condenseSystemPrompt = "You are a news analyst. Condense the given excerpt of an article " +
	"into 2-3 plain sentences covering only what the excerpt says. No preamble, no JSON."

// Analysis is the structured result of summarizing one article.
type Analysis struct {
	Summary   string
	Topics    []string
	Sentiment string
}

// Options configures path selection and chunking. Zero values fall back
// to the documented defaults.
type Options struct {
	SingleShotCharLimit int
	ChunkChars          int
	ChunkOverlap        int
	MaxChunks           int
}

func (o Options) withDefaults() Options {
	if o.SingleShotCharLimit <= 0 {
		o.SingleShotCharLimit = 12000
	}
	if o.ChunkChars <= 0 {
		o.ChunkChars = 6000
	}
	if o.ChunkOverlap < 0 {
		o.ChunkOverlap = 0
	}
	if o.MaxChunks <= 0 {
		o.MaxChunks = 10
	}
	return o
}

// Summarizer runs the two-path summarization protocol: one call over the
// whole text for short articles, per-chunk condensation plus a combine
// call for long ones.
type Summarizer struct {
	caller llm.Caller
	opts   Options
}

// New builds a Summarizer. The caller is expected to already carry retry
// behaviour; the Summarizer treats a returned error as terminal for that
// invocation and degrades instead of aborting.
func New(caller llm.Caller, opts Options) *Summarizer {
	return &Summarizer{caller: caller, opts: opts.withDefaults()}
}

// Summarize analyzes the selected article text. The single-shot versus
// chunked decision is made exactly once, on the untruncated input length.
// An error is returned only when the final LLM call fails past all
// fallbacks; unparseable model output degrades, it never errors.
func (s *Summarizer) Summarize(ctx context.Context, title, body string) (Analysis, error) {
	if len([]rune(body)) <= s.opts.SingleShotCharLimit {
		return s.singleShot(ctx, title, body)
	}
	return s.chunked(ctx, title, body)
}

func (s *Summarizer) singleShot(ctx context.Context, title, body string) (Analysis, error) {
	prompt := fmt.Sprintf("ARTICLE TITLE: %s\nARTICLE CONTENT: %s", title, body)
	out, err := s.caller.Call(ctx, analysisSystemPrompt, prompt)
	if err != nil {
		return Analysis{}, fmt.Errorf("single-shot summarization for %q: %w", title, err)
	}
	return parseAnalysis(out), nil
}

func (s *Summarizer) chunked(ctx context.Context, title, body string) (Analysis, error) {
	chunks := text.Split(body, s.opts.ChunkChars, s.opts.ChunkOverlap, s.opts.MaxChunks)

	condensed := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		prompt := fmt.Sprintf("ARTICLE TITLE: %s\nEXCERPT %d of %d:\n%s", title, i+1, len(chunks), chunk)
		out, err := s.caller.Call(ctx, condenseSystemPrompt, prompt)
		if err != nil {
			slog.WarnContext(ctx, "chunk condensation failed, skipping chunk",
				"title", title, "chunk", i+1, "chunks", len(chunks), "error", err)
			continue
		}
		out = strings.TrimSpace(out)
		if out == "" {
			continue
		}
		condensed = append(condensed, truncateRunes(out, chunkSummaryCap))
	}

	// Nothing survived the per-chunk pass: retreat to one call over the
	// truncated text rather than failing the article.
	if len(condensed) == 0 {
		slog.WarnContext(ctx, "no chunk summaries produced, falling back to single-shot", "title", title)
		return s.singleShot(ctx, title, truncateRunes(body, s.opts.SingleShotCharLimit))
	}

	// Chunk summaries are joined in original text order.
	prompt := fmt.Sprintf("ARTICLE TITLE: %s\nSECTION SUMMARIES:\n%s", title, strings.Join(condensed, "\n\n"))
	out, err := s.caller.Call(ctx, analysisSystemPrompt, prompt)
	if err != nil {
		return Analysis{}, fmt.Errorf("combine summarization for %q: %w", title, err)
	}
	return parseAnalysis(out), nil
}

// parseAnalysis interprets a model response that should be the analysis
// JSON object. It never fails: when neither the raw response nor its
// salvaged JSON parses, the raw text itself becomes the summary.
func parseAnalysis(raw string) Analysis {
	var payload struct {
		Summary   string   `json:"summary"`
		Topics    []string `json:"topics"`
		Sentiment string   `json:"sentiment"`
	}

	candidate := strings.TrimSpace(raw)
	if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
		salvaged := llm.ExtractJSON(candidate)
		if salvaged == "" || json.Unmarshal([]byte(salvaged), &payload) != nil {
			return Analysis{
				Summary:   truncateRunes(candidate, fallbackSummaryCap),
				Topics:    []string{},
				Sentiment: article.SentimentNeutral,
			}
		}
	}

	if payload.Topics == nil {
		payload.Topics = []string{}
	}
	return Analysis{
		Summary:   strings.TrimSpace(payload.Summary),
		Topics:    payload.Topics,
		Sentiment: NormalizeSentiment(payload.Sentiment),
	}
}

// NormalizeSentiment folds model output onto the closed label set,
// defaulting to Neutral.
func NormalizeSentiment(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive":
		return article.SentimentPositive
	case "negative":
		return article.SentimentNegative
	case "mixed":
		return article.SentimentMixed
	case "neutral":
		return article.SentimentNeutral
	default:
		return article.SentimentNeutral
	}
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
