package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/arcline-labs/chartpress/internal/core/domain"
	"github.com/arcline-labs/chartpress/internal/core/ports/driven"
	"github.com/arcline-labs/chartpress/internal/core/ports/driving"
	"github.com/arcline-labs/chartpress/internal/logger"
)

// mimePDF is the content type of every uploaded artifact.
const mimePDF = "application/pdf"

// retryLabelUpload labels the retry diagnostics for uploads.
const retryLabelUpload = "upload-pdf"

// Ensure Exporter implements the interface.
var _ driving.Exporter = (*Exporter)(nil)

// Exporter is the top-level pipeline: it enumerates stores, fans chart
// tasks out through the concurrency limiter, and aggregates results.
// Stores are processed strictly sequentially; only chart tasks within
// one store overlap.
type Exporter struct {
	cfg     domain.ExportConfig
	graph   driven.DocumentGraph
	pres    driven.Presentation
	objects driven.ObjectStore
	ledger  driven.RunLedger

	folders *FolderResolver
	// margin in the presentation service's native unit.
	margin float64
}

// NewExporter wires the pipeline. The ledger is optional: a nil ledger
// disables run recording. margin is in the presentation service's
// native unit (the CLI converts from points).
func NewExporter(
	cfg domain.ExportConfig,
	graph driven.DocumentGraph,
	pres driven.Presentation,
	objects driven.ObjectStore,
	ledger driven.RunLedger,
	margin float64,
) *Exporter {
	return &Exporter{
		cfg:     cfg,
		graph:   graph,
		pres:    pres,
		objects: objects,
		ledger:  ledger,
		folders: NewFolderResolver(objects, cfg.Retry),
		margin:  margin,
	}
}

// Run executes the pipeline across every configured store.
//
// Failures never cross a chart or store boundary upward: a failed
// chart is recorded and its siblings continue; a failed store-level
// step (missing sheet, folder resolution, session open) skips that
// store and the run continues. Run itself errs only when the document
// graph cannot be queried at all.
func (e *Exporter) Run(ctx context.Context) (*domain.RunReport, error) {
	report := &domain.RunReport{
		ID:            uuid.NewString(),
		SpreadsheetID: e.cfg.SpreadsheetID,
		DateKey:       e.cfg.DateKey,
		StartedAt:     time.Now(),
	}

	// One graph query per run; every store reads the same snapshot.
	sheets, err := Retry(ctx, "list-charts", e.cfg.Retry, func(ctx context.Context) (map[string]domain.SheetCharts, error) {
		return e.graph.ChartsBySheet(ctx, e.cfg.SpreadsheetID)
	})
	if err != nil {
		return nil, fmt.Errorf("enumerate charts: %w", err)
	}

	for _, store := range e.cfg.Stores {
		logger.Section(fmt.Sprintf("store %s", store.Name))

		results, skip := e.runStore(ctx, store, sheets)
		if skip != nil {
			logger.Warn("store %s skipped: %v", store.Name, skip)
			report.SkippedStores = append(report.SkippedStores, store.Name)
			continue
		}
		report.Results = append(report.Results, results...)
	}

	report.FinishedAt = time.Now()
	logger.Info("run complete: %d exported, %d failed, %d stores skipped",
		report.Succeeded(), report.Failures(), len(report.SkippedStores))

	if e.ledger != nil {
		// Best effort: the uploads already happened, so a ledger
		// write failure must not change the run's outcome.
		if err := e.ledger.Record(ctx, report); err != nil {
			logger.Warn("run not recorded in ledger: %v", err)
		}
	}
	return report, nil
}

// runStore drives one store's batch. A non-nil skip reason means no
// chart of this store was attempted (or the batch could not start);
// otherwise one result per chart is returned, in chart order.
func (e *Exporter) runStore(ctx context.Context, store domain.Store, sheets map[string]domain.SheetCharts) ([]domain.ExportResult, error) {
	sheet, ok := sheets[store.Sheet]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrSheetNotFound, store.Sheet)
	}
	if len(sheet.Charts) == 0 {
		return nil, fmt.Errorf("%w: %q", domain.ErrNoCharts, store.Sheet)
	}

	if e.cfg.DryRun {
		return e.dryRunResults(store, sheet.Charts), nil
	}

	folderID, err := e.folders.Resolve(ctx, store.FolderID, e.cfg.DateKey)
	if err != nil {
		return nil, fmt.Errorf("resolve dated folder: %w", err)
	}

	session, err := OpenRenderSession(ctx, e.cfg.Strategy, e.pres, store, SessionConfig{
		SpreadsheetID: e.cfg.SpreadsheetID,
		Margin:        e.margin,
		Retry:         e.cfg.Retry,
	})
	if err != nil {
		return nil, err
	}
	// The scratch document dies with the batch on every path.
	defer session.Destroy(ctx)

	// One slot per chart: tasks write disjoint indices, so no lock.
	results := make([]domain.ExportResult, len(sheet.Charts))
	limiter := NewLimiter(e.cfg.Concurrency)

	for i, chart := range sheet.Charts {
		err := limiter.Go(ctx, func() {
			results[i] = e.exportChart(ctx, store, folderID, chart, i, session)
		})
		if err != nil {
			results[i] = domain.ExportResult{
				Store:      store.Name,
				ChartTitle: chart.Title,
				Outcome:    domain.OutcomeFailed,
				Reason:     err.Error(),
			}
		}
	}
	limiter.Wait()

	return results, nil
}

// exportChart renders one chart and uploads the PDF. index is the
// chart's 0-based position in its sheet, used to synthesize titles.
func (e *Exporter) exportChart(ctx context.Context, store domain.Store, folderID string, chart domain.ChartRef, index int, session RenderSession) domain.ExportResult {
	title := domain.SanitizeTitle(chart.Title, index+1)
	filename := domain.ExportFilename(store.Name, title, e.cfg.DateKey)

	result := domain.ExportResult{
		Store:      store.Name,
		ChartTitle: title,
		Filename:   filename,
		Outcome:    domain.OutcomeSuccess,
	}

	pdf, err := session.Render(ctx, chart)
	if err != nil {
		result.Outcome = domain.OutcomeFailed
		result.Reason = fmt.Sprintf("render: %v", err)
		logger.Warn("chart %s (%s) failed: %v", title, store.Name, err)
		return result
	}

	fileID, err := Retry(ctx, retryLabelUpload, e.cfg.Retry, func(ctx context.Context) (string, error) {
		return e.objects.Upload(ctx, folderID, filename, mimePDF, bytes.NewReader(pdf))
	})
	if err != nil {
		result.Outcome = domain.OutcomeFailed
		result.Reason = fmt.Sprintf("upload: %v", err)
		logger.Warn("chart %s (%s) failed: %v", title, store.Name, err)
		return result
	}

	logger.Debug("uploaded %s as file %s", filename, fileID)
	logger.Info("exported %s (%d bytes)", filename, len(pdf))
	return result
}

func (e *Exporter) dryRunResults(store domain.Store, charts []domain.ChartRef) []domain.ExportResult {
	results := make([]domain.ExportResult, len(charts))
	for i, chart := range charts {
		title := domain.SanitizeTitle(chart.Title, i+1)
		results[i] = domain.ExportResult{
			Store:      store.Name,
			ChartTitle: title,
			Filename:   domain.ExportFilename(store.Name, title, e.cfg.DateKey),
			Outcome:    domain.OutcomeSuccess,
			Reason:     "dry-run",
		}
		logger.Info("dry-run: would export %s", results[i].Filename)
	}
	return results
}
