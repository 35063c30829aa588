package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/arcline-labs/chartpress/internal/core/domain"
	"github.com/arcline-labs/chartpress/internal/core/ports/driven"
	"github.com/arcline-labs/chartpress/internal/logger"
)

// Retry labels for the render pipeline steps.
const (
	retryLabelCreateScratch = "create-scratch"
	retryLabelInsertChart   = "insert-chart"
	retryLabelMeasure       = "measure-element"
	retryLabelTransform     = "apply-transform"
	retryLabelExport        = "export-pdf"
	retryLabelCleanup       = "cleanup-element"
	retryLabelDestroy       = "destroy-scratch"
)

// RenderSession turns chart references into single-page PDF byte
// streams using an ephemeral scratch presentation. A session belongs
// to exactly one store's export batch and must be destroyed when the
// batch ends, regardless of per-chart outcomes.
type RenderSession interface {
	// Render produces the fitted, centred PDF for one chart.
	Render(ctx context.Context, chart domain.ChartRef) ([]byte, error)

	// Destroy releases the session's scratch resources. Failures are
	// logged, never escalated: they cannot affect already-produced
	// output.
	Destroy(ctx context.Context)
}

// SessionConfig carries the per-run settings a session needs.
type SessionConfig struct {
	// SpreadsheetID is the source document the charts live in.
	SpreadsheetID string
	// Margin is kept clear around the fitted chart, in the
	// presentation service's native unit.
	Margin float64
	Retry  domain.RetryConfig
}

// OpenRenderSession opens a session for one store using the configured
// lifecycle strategy.
func OpenRenderSession(
	ctx context.Context,
	strategy domain.Strategy,
	pres driven.Presentation,
	store domain.Store,
	cfg SessionConfig,
) (RenderSession, error) {
	switch strategy {
	case domain.StrategyPerChart:
		return &perChartSession{pres: pres, store: store, cfg: cfg, open: make(map[string]struct{})}, nil
	case domain.StrategyReuse, "":
		doc, err := createScratch(ctx, pres, store, cfg)
		if err != nil {
			return nil, fmt.Errorf("open session for store %s: %w", store.Name, err)
		}
		return &reuseSession{pres: pres, doc: doc, cfg: cfg}, nil
	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", domain.ErrInvalidConfig, strategy)
	}
}

func createScratch(ctx context.Context, pres driven.Presentation, store domain.Store, cfg SessionConfig) (*driven.ScratchDoc, error) {
	title := fmt.Sprintf("chartpress-scratch-%s-%s", store.Name, uuid.NewString())
	return Retry(ctx, retryLabelCreateScratch, cfg.Retry, func(ctx context.Context) (*driven.ScratchDoc, error) {
		return pres.Create(ctx, title)
	})
}

// renderOnPage drives insert -> measure -> fit -> transform -> export
// against one page. The inserted element's id is returned so the
// caller can clean it up if the page outlives this chart.
func renderOnPage(ctx context.Context, pres driven.Presentation, doc *driven.ScratchDoc, chart domain.ChartRef, cfg SessionConfig) ([]byte, string, error) {
	elementID, err := Retry(ctx, retryLabelInsertChart, cfg.Retry, func(ctx context.Context) (string, error) {
		return pres.InsertChart(ctx, doc.ID, doc.PageID, cfg.SpreadsheetID, chart.ChartID)
	})
	if err != nil {
		return nil, "", err
	}
	logger.Debug("chart %d: inserted as element %s", chart.ChartID, elementID)

	// The insert response does not carry authoritative dimensions;
	// re-read the document for the service-assigned render size.
	size, err := Retry(ctx, retryLabelMeasure, cfg.Retry, func(ctx context.Context) ([2]float64, error) {
		w, h, err := pres.ElementSize(ctx, doc.ID, elementID)
		return [2]float64{w, h}, err
	})
	if err != nil {
		return nil, elementID, err
	}
	logger.Debug("chart %d: element %s measures %.0fx%.0f", chart.ChartID, elementID, size[0], size[1])

	t := FitTransform(size[0], size[1], doc.PageWidth, doc.PageHeight, cfg.Margin)
	_, err = Retry(ctx, retryLabelTransform, cfg.Retry, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, pres.SetTransform(ctx, doc.ID, elementID, t)
	})
	if err != nil {
		return nil, elementID, err
	}

	// SetTransform has been acknowledged, so the export below reads
	// the fitted layout.
	pdf, err := Retry(ctx, retryLabelExport, cfg.Retry, func(ctx context.Context) ([]byte, error) {
		return pres.ExportPDF(ctx, doc.ID)
	})
	if err != nil {
		return nil, elementID, err
	}
	return pdf, elementID, nil
}

// reuseSession keeps one scratch presentation for the whole batch and
// renders every chart on its single page. The page is shared mutable
// state, so insert through cleanup is serialized under mu; callers
// still upload the returned bytes concurrently.
type reuseSession struct {
	pres driven.Presentation
	doc  *driven.ScratchDoc
	cfg  SessionConfig

	mu     sync.Mutex
	closed bool
}

func (s *reuseSession) Render(ctx context.Context, chart domain.ChartRef) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, domain.ErrSessionClosed
	}

	pdf, elementID, err := renderOnPage(ctx, s.pres, s.doc, chart, s.cfg)
	if elementID != "" {
		s.cleanupElement(ctx, elementID)
	}
	if err != nil {
		return nil, err
	}
	return pdf, nil
}

// cleanupElement clears the page for the next chart. A leftover
// element would bleed into later exports, so failure here is retried;
// if it still fails the next Render's insert coexists with the orphan
// and the warning tells the operator which export to distrust.
func (s *reuseSession) cleanupElement(ctx context.Context, elementID string) {
	_, err := Retry(ctx, retryLabelCleanup, s.cfg.Retry, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.pres.DeleteElement(ctx, s.doc.ID, elementID)
	})
	if err != nil {
		logger.Warn("scratch %s: element %s not cleaned up: %v", s.doc.ID, elementID, err)
	}
}

func (s *reuseSession) Destroy(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	_, err := Retry(ctx, retryLabelDestroy, s.cfg.Retry, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.pres.Delete(ctx, s.doc.ID)
	})
	if err != nil {
		logger.Warn("scratch %s not destroyed: %v", s.doc.ID, err)
	}
}

// perChartSession isolates every chart in its own scratch
// presentation, so renders run fully concurrently up to the limiter
// cap. Each Render destroys its own document; Destroy sweeps anything
// a failed task left behind.
type perChartSession struct {
	pres  driven.Presentation
	store domain.Store
	cfg   SessionConfig

	mu     sync.Mutex
	closed bool
	open   map[string]struct{}
}

func (s *perChartSession) Render(ctx context.Context, chart domain.ChartRef) ([]byte, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, domain.ErrSessionClosed
	}
	s.mu.Unlock()

	doc, err := createScratch(ctx, s.pres, s.store, s.cfg)
	if err != nil {
		return nil, err
	}
	s.track(doc.ID)
	defer s.destroyDoc(ctx, doc.ID)

	pdf, _, err := renderOnPage(ctx, s.pres, doc, chart, s.cfg)
	if err != nil {
		return nil, err
	}
	return pdf, nil
}

func (s *perChartSession) track(docID string) {
	s.mu.Lock()
	s.open[docID] = struct{}{}
	s.mu.Unlock()
}

func (s *perChartSession) destroyDoc(ctx context.Context, docID string) {
	s.mu.Lock()
	if _, ok := s.open[docID]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.open, docID)
	s.mu.Unlock()

	_, err := Retry(ctx, retryLabelDestroy, s.cfg.Retry, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.pres.Delete(ctx, docID)
	})
	if err != nil {
		logger.Warn("scratch %s not destroyed: %v", docID, err)
	}
}

func (s *perChartSession) Destroy(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	leaked := make([]string, 0, len(s.open))
	for id := range s.open {
		leaked = append(leaked, id)
	}
	s.mu.Unlock()

	for _, id := range leaked {
		s.destroyDoc(ctx, id)
	}
}
