package driven

import (
	"context"

	"github.com/arcline-labs/chartpress/internal/core/domain"
)

// ScratchDoc describes a freshly created scratch presentation: its id,
// the id of its first (blank) page, and the page size in the
// presentation service's native unit.
type ScratchDoc struct {
	ID         string
	PageID     string
	PageWidth  float64
	PageHeight float64
}

// Presentation is the ephemeral rendering surface used to turn a chart
// reference into a single-page PDF. Implementations must treat every
// method as a remote call.
type Presentation interface {
	// Create makes a new scratch presentation with one blank page.
	Create(ctx context.Context, title string) (*ScratchDoc, error)

	// InsertChart places a linked chart reference on the page and
	// returns the new element's id. The service assigns an intrinsic
	// render size; callers must measure rather than assume one.
	InsertChart(ctx context.Context, docID, pageID, spreadsheetID string, chartID int64) (string, error)

	// ElementSize re-reads the document and reports the rendered
	// size of the element, in the same unit as ScratchDoc's page
	// size.
	ElementSize(ctx context.Context, docID, elementID string) (width, height float64, err error)

	// SetTransform repositions and scales the element absolutely.
	// The call returns only after the service has acknowledged the
	// update, so a following export reflects the new layout.
	SetTransform(ctx context.Context, docID, elementID string, t domain.Transform) error

	// DeleteElement removes the element so the page can be reused.
	DeleteElement(ctx context.Context, docID, elementID string) error

	// ExportPDF renders the whole document as a PDF byte stream.
	ExportPDF(ctx context.Context, docID string) ([]byte, error)

	// Delete destroys the scratch document.
	Delete(ctx context.Context, docID string) error
}
