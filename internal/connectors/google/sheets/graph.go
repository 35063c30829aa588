// Package sheets adapts the Google Sheets API to the DocumentGraph
// port: it enumerates the charts embedded in each sheet of the source
// spreadsheet.
package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/sheets/v4"

	"github.com/arcline-labs/chartpress/internal/connectors/google"
	"github.com/arcline-labs/chartpress/internal/core/domain"
	"github.com/arcline-labs/chartpress/internal/core/ports/driven"
)

// chartFields restricts the spreadsheet read to sheet properties and
// embedded chart identity; chart data and cell contents are never
// fetched.
const chartFields = "sheets(properties(sheetId,title),charts(chartId,spec.title))"

// Ensure Graph implements the interface.
var _ driven.DocumentGraph = (*Graph)(nil)

// Graph queries a spreadsheet's sheets and embedded charts.
type Graph struct {
	svc     *sheets.Service
	limiter *google.RateLimiter
}

// NewGraph creates a DocumentGraph over the Sheets API.
func NewGraph(svc *sheets.Service) *Graph {
	return &Graph{
		svc:     svc,
		limiter: google.NewRateLimiter(google.ServiceSheets),
	}
}

// ChartsBySheet returns the document's charts keyed by sheet title.
func (g *Graph) ChartsBySheet(ctx context.Context, documentID string) (map[string]domain.SheetCharts, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	doc, err := g.svc.Spreadsheets.Get(documentID).Fields(chartFields).Context(ctx).Do()
	if err != nil {
		wrapped := google.WrapError(err)
		if google.IsRateLimited(wrapped) {
			g.limiter.RecordRateLimitError(0)
		}
		return nil, fmt.Errorf("get spreadsheet %s: %w", documentID, wrapped)
	}

	return mapSheets(doc), nil
}

// mapSheets converts the API response into the domain's per-sheet
// chart listing. Sheets without charts stay present with a nil slice
// so the orchestrator can tell "no charts" from "no such sheet".
func mapSheets(doc *sheets.Spreadsheet) map[string]domain.SheetCharts {
	out := make(map[string]domain.SheetCharts, len(doc.Sheets))
	for _, sheet := range doc.Sheets {
		if sheet.Properties == nil {
			continue
		}
		sc := domain.SheetCharts{SheetID: sheet.Properties.SheetId}
		for _, chart := range sheet.Charts {
			ref := domain.ChartRef{
				ChartID: chart.ChartId,
				SheetID: sheet.Properties.SheetId,
			}
			if chart.Spec != nil {
				ref.Title = chart.Spec.Title
			}
			sc.Charts = append(sc.Charts, ref)
		}
		out[sheet.Properties.Title] = sc
	}
	return out
}
