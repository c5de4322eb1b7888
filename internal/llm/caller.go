package llm

import "context"

// Caller issues a single completion request to a language model.
// Implementations return the raw response text; callers decide how to
// interpret it. Errors are transient from the caller's point of view and
// are normally wrapped with WithRetry before use.
type Caller interface {
	Call(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// CallerFunc adapts a plain function to the Caller interface.
type CallerFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)

func (f CallerFunc) Call(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return f(ctx, systemPrompt, userPrompt)
}
