package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"
)

// ErrRetriesExhausted marks a call that failed on every attempt. The last
// underlying error is wrapped alongside it.
var ErrRetriesExhausted = errors.New("llm retries exhausted")

// RetryConfig holds retry behaviour for a single LLM invocation.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// JitterMin and JitterMax bound the random base wait drawn before
	// each retry. The wait doubles with every subsequent attempt.
	JitterMin time.Duration
	JitterMax time.Duration
}

// DefaultRetryConfig returns the retry defaults used across the pipeline.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		JitterMin:   1 * time.Second,
		JitterMax:   3 * time.Second,
	}
}

type retryCaller struct {
	inner Caller
	cfg   RetryConfig

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// WithRetry wraps a Caller so each Call is attempted up to
// cfg.MaxAttempts times with jittered exponential backoff between
// attempts. When every attempt fails, the returned error wraps both
// ErrRetriesExhausted and the last failure; nothing is swallowed.
func WithRetry(inner Caller, cfg RetryConfig) Caller {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.JitterMin < 0 {
		cfg.JitterMin = 0
	}
	if cfg.JitterMax < cfg.JitterMin {
		cfg.JitterMax = cfg.JitterMin
	}
	return &retryCaller{inner: inner, cfg: cfg, sleep: sleepCtx}
}

func (r *retryCaller) Call(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		out, err := r.inner.Call(ctx, systemPrompt, userPrompt)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if attempt == r.cfg.MaxAttempts {
			break
		}

		wait := r.backoff(attempt)
		slog.WarnContext(ctx, "llm call failed, backing off",
			"attempt", attempt, "max_attempts", r.cfg.MaxAttempts, "wait", wait, "error", err)
		if err := r.sleep(ctx, wait); err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, r.cfg.MaxAttempts, lastErr)
}

// backoff draws a base wait in [JitterMin, JitterMax] and doubles it for
// every completed attempt beyond the first.
func (r *retryCaller) backoff(attempt int) time.Duration {
	base := r.cfg.JitterMin
	if span := r.cfg.JitterMax - r.cfg.JitterMin; span > 0 {
		base += time.Duration(rand.Int63n(int64(span) + 1))
	}
	return base << uint(attempt-1)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
