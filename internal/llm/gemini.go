package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiCaller implements Caller on top of the Gemini API.
type GeminiCaller struct {
	client      *genai.Client
	model       string
	callTimeout time.Duration
}

var _ Caller = (*GeminiCaller)(nil)

// NewGeminiCaller connects to the Gemini API. callTimeout bounds each
// individual request; zero disables the per-call deadline.
func NewGeminiCaller(ctx context.Context, apiKey, model string, callTimeout time.Duration) (*GeminiCaller, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiCaller{client: client, model: model, callTimeout: callTimeout}, nil
}

func (c *GeminiCaller) Call(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
	}

	m := c.client.GenerativeModel(c.model)
	if systemPrompt != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	}

	slog.DebugContext(ctx, "calling gemini", "model", c.model, "prompt_len", len(userPrompt))
	resp, err := m.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	var out strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				out.WriteString(string(txt))
			}
		}
		break
	}

	if out.Len() == 0 {
		return "", fmt.Errorf("gemini returned no text for model %s", c.model)
	}
	return out.String(), nil
}

func (c *GeminiCaller) Close() error {
	return c.client.Close()
}
