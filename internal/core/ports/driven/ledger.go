package driven

import (
	"context"

	"github.com/arcline-labs/chartpress/internal/core/domain"
)

// RunLedger persists run reports for later inspection.
type RunLedger interface {
	// Record stores a finished run and its per-chart outcomes.
	Record(ctx context.Context, report *domain.RunReport) error

	// List returns the most recent runs, newest first.
	List(ctx context.Context, limit int) ([]domain.RunSummary, error)
}
