package driving

import (
	"context"

	"github.com/arcline-labs/chartpress/internal/core/domain"
)

// Exporter runs the chart export pipeline across all configured stores.
type Exporter interface {
	// Run processes every store and returns the aggregated report.
	// Per-store and per-chart failures are recorded in the report,
	// not returned as errors; Run errs only on defects that prevent
	// the pipeline from operating at all.
	Run(ctx context.Context) (*domain.RunReport, error)
}
