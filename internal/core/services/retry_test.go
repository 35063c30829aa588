package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcline-labs/chartpress/internal/core/domain"
)

func TestRetrySucceedsFirstTry(t *testing.T) {
	calls := 0
	got, err := Retry(context.Background(), "op", fastRetry(), func(context.Context) (int, error) {
		calls++
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 1, calls)
}

func TestRetryRecoversAfterFailures(t *testing.T) {
	cfg := fastRetry()
	cfg.Attempts = 4

	calls := 0
	got, err := Retry(context.Background(), "op", cfg, func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
}

func TestRetryExhaustsExactly(t *testing.T) {
	cfg := fastRetry()
	cfg.Attempts = 5

	calls := 0
	boom := errors.New("boom")
	_, err := Retry(context.Background(), "doomed", cfg, func(context.Context) (int, error) {
		calls++
		return 0, boom
	})

	// Exactly N attempts, no more, no fewer.
	assert.Equal(t, 5, calls)

	var exhausted *domain.RetryExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, "doomed", exhausted.Label)
	assert.Equal(t, 5, exhausted.Attempts)
	assert.ErrorIs(t, err, boom)
}

func TestRetryHonoursContextCancellation(t *testing.T) {
	cfg := domain.RetryConfig{Attempts: 5, InitialWait: time.Hour, MaxWait: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := Retry(ctx, "op", cfg, func(context.Context) (int, error) {
			return 0, errors.New("always")
		})
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Retry did not observe cancellation")
	}
}

func TestBackoffDoublesUpToCap(t *testing.T) {
	cfg := domain.DefaultRetry()

	wait := cfg.InitialWait
	prev := wait
	for i := 0; i < 10; i++ {
		wait = nextWait(wait, cfg)
		assert.GreaterOrEqual(t, wait, prev, "backoff must be non-decreasing")
		assert.LessOrEqual(t, wait, cfg.MaxWait)
		prev = wait
	}
	assert.Equal(t, cfg.MaxWait, wait)
}

func TestTruncateKeepsRunesIntact(t *testing.T) {
	short := "plain error"
	assert.Equal(t, short, truncate(short))

	long := strings.Repeat("é", truncateAt+40)
	got := truncate(long)
	assert.True(t, utf8.ValidString(got), "truncation must not split a rune")
	assert.Equal(t, truncateAt+len("..."), utf8.RuneCountInString(got))
}

func TestDefaultRetryConstants(t *testing.T) {
	cfg := domain.DefaultRetry()
	assert.Equal(t, 5, cfg.Attempts)
	assert.Equal(t, 700*time.Millisecond, cfg.InitialWait)
	assert.Equal(t, 8*time.Second, cfg.MaxWait)
	assert.Equal(t, 300*time.Millisecond, cfg.MaxJitter)
}
