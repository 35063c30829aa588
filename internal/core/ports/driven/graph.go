package driven

import (
	"context"

	"github.com/arcline-labs/chartpress/internal/core/domain"
)

// DocumentGraph enumerates the sheets of a tabular document and the
// charts embedded in each. Queried once per run; the result is
// consumed read-only afterwards.
type DocumentGraph interface {
	// ChartsBySheet returns the document's charts keyed by sheet
	// title. Sheets without charts appear with an empty slice.
	ChartsBySheet(ctx context.Context, documentID string) (map[string]domain.SheetCharts, error)
}
