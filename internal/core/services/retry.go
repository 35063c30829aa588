package services

import (
	"context"
	"math/rand"
	"time"

	"github.com/arcline-labs/chartpress/internal/core/domain"
	"github.com/arcline-labs/chartpress/internal/logger"
)

// truncateAt limits error text in retry diagnostics.
const truncateAt = 120

// Retry runs op with bounded exponential backoff and jitter. Every
// failure is retried identically until the attempt budget is spent;
// no distinction is made between transient and permanent errors. That
// is deliberate policy: callers that need classification must apply it
// inside op.
//
// After the final failure the returned error is a
// *domain.RetryExhaustedError carrying label and wrapping the last
// underlying error. Backoff sleeps honour ctx cancellation.
func Retry[T any](ctx context.Context, label string, cfg domain.RetryConfig, op func(context.Context) (T, error)) (T, error) {
	var zero T

	wait := cfg.InitialWait
	var lastErr error

	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if attempt == cfg.Attempts {
			break
		}

		sleep := wait
		if cfg.MaxJitter > 0 {
			sleep += time.Duration(rand.Int63n(int64(cfg.MaxJitter)))
		}
		logger.Warn("%s: attempt %d/%d failed, retrying in %s: %s",
			label, attempt, cfg.Attempts, sleep.Round(time.Millisecond), truncate(err.Error()))

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(sleep):
		}

		wait = nextWait(wait, cfg)
	}

	return zero, &domain.RetryExhaustedError{Label: label, Attempts: cfg.Attempts, Err: lastErr}
}

// nextWait doubles the backoff up to the configured ceiling.
func nextWait(wait time.Duration, cfg domain.RetryConfig) time.Duration {
	wait *= 2
	if wait > cfg.MaxWait {
		wait = cfg.MaxWait
	}
	return wait
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= truncateAt {
		return s
	}
	return string(runes[:truncateAt]) + "..."
}
