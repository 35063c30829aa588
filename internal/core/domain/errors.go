package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidConfig indicates the run configuration is unusable.
	// Configuration errors are fatal and abort before any store runs.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrSheetNotFound indicates a store's sheet is absent from the
	// source spreadsheet. The store is skipped, not failed.
	ErrSheetNotFound = errors.New("sheet not found")

	// ErrNoCharts indicates a store's sheet exists but embeds no
	// charts. The store is skipped with a diagnostic.
	ErrNoCharts = errors.New("sheet has no charts")

	// ErrSessionClosed indicates a render was attempted on a session
	// that has already been destroyed.
	ErrSessionClosed = errors.New("render session closed")
)

// RetryExhaustedError is returned when an operation keeps failing after
// all retry attempts. It carries the label of the failed operation and
// unwraps to the last underlying error.
type RetryExhaustedError struct {
	Label    string
	Attempts int
	Err      error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("%s: exhausted %d attempts: %v", e.Label, e.Attempts, e.Err)
}

func (e *RetryExhaustedError) Unwrap() error {
	return e.Err
}
