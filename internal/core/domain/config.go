package domain

import (
	"fmt"
	"time"
)

// Strategy selects the scratch render session lifecycle.
type Strategy string

const (
	// StrategyReuse keeps one scratch document per store and
	// serializes page mutation across its charts.
	StrategyReuse Strategy = "reuse"
	// StrategyPerChart gives every chart task its own scratch
	// document so renders run concurrently.
	StrategyPerChart Strategy = "perchart"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyReuse, StrategyPerChart:
		return Strategy(s), nil
	case "":
		return StrategyReuse, nil
	default:
		return "", fmt.Errorf("%w: unknown strategy %q", ErrInvalidConfig, s)
	}
}

// RetryConfig bounds the exponential backoff applied to remote calls.
type RetryConfig struct {
	// Attempts is the total number of tries, including the first.
	Attempts int
	// InitialWait is the sleep before the second attempt.
	InitialWait time.Duration
	// MaxWait caps the doubling backoff.
	MaxWait time.Duration
	// MaxJitter is the upper bound of the uniform jitter added to
	// every sleep.
	MaxJitter time.Duration
}

// DefaultRetry returns the standard retry policy: 5 attempts, 700ms
// initial wait doubling to an 8s ceiling, up to 300ms jitter.
func DefaultRetry() RetryConfig {
	return RetryConfig{
		Attempts:    5,
		InitialWait: 700 * time.Millisecond,
		MaxWait:     8 * time.Second,
		MaxJitter:   300 * time.Millisecond,
	}
}

// ExportConfig is the full, validated run configuration. It is built
// once at startup and passed explicitly into the orchestrator.
type ExportConfig struct {
	SpreadsheetID string
	Stores        []Store
	Strategy      Strategy
	// Concurrency caps simultaneously in-flight chart tasks.
	Concurrency int
	Retry       RetryConfig
	// MarginPT is the page margin, in points, kept clear around the
	// fitted chart.
	MarginPT float64
	// DateKey partitions output folders, formatted YYYY-MM-DD.
	DateKey string
	// DryRun enumerates charts without rendering or uploading.
	DryRun bool
}

// DefaultConcurrency is the chart-task cap used when none is configured.
const DefaultConcurrency = 3

// Validate checks the parts of the configuration whose absence must
// abort the run before any store is processed.
func (c *ExportConfig) Validate() error {
	if c.SpreadsheetID == "" {
		return fmt.Errorf("%w: spreadsheet id is required", ErrInvalidConfig)
	}
	if len(c.Stores) == 0 {
		return fmt.Errorf("%w: no stores configured", ErrInvalidConfig)
	}
	for i, s := range c.Stores {
		if s.Name == "" || s.Sheet == "" || s.FolderID == "" {
			return fmt.Errorf("%w: store %d is missing name, sheet or folder_id", ErrInvalidConfig, i)
		}
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("%w: concurrency must be positive", ErrInvalidConfig)
	}
	if _, err := time.Parse("2006-01-02", c.DateKey); err != nil {
		return fmt.Errorf("%w: date key %q is not YYYY-MM-DD", ErrInvalidConfig, c.DateKey)
	}
	return nil
}
