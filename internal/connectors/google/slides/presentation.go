// Package slides adapts the Google Slides API to the Presentation
// port. A scratch presentation is a throwaway deck with a single blank
// page; PDF export goes through the Drive API, which renders the whole
// deck.
package slides

import (
	"context"
	"fmt"
	"io"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/slides/v1"

	"github.com/arcline-labs/chartpress/internal/connectors/google"
	"github.com/arcline-labs/chartpress/internal/core/domain"
	"github.com/arcline-labs/chartpress/internal/core/ports/driven"
)

// EMUPerPoint converts typographic points to English Metric Units,
// the native unit of Slides page geometry.
const EMUPerPoint = 12700

// mimePDF is the Drive export target for scratch decks.
const mimePDF = "application/pdf"

// maxExportSize bounds a single exported PDF (20MB).
const maxExportSize = 20 * 1024 * 1024

// Ensure Service implements the interface.
var _ driven.Presentation = (*Service)(nil)

// Service renders charts through scratch Google Slides decks.
type Service struct {
	slides  *slides.Service
	drive   *drive.Service
	limiter *google.RateLimiter
	// Drive has its own quota bucket for export/delete calls.
	driveLimiter *google.RateLimiter
}

// NewService creates a Presentation adapter. The Drive service is used
// for PDF export and scratch-deck deletion, which the Slides API does
// not offer.
func NewService(slidesSvc *slides.Service, driveSvc *drive.Service) *Service {
	return &Service{
		slides:       slidesSvc,
		drive:        driveSvc,
		limiter:      google.NewRateLimiter(google.ServiceSlides),
		driveLimiter: google.NewRateLimiter(google.ServiceDrive),
	}
}

// Create makes a new presentation and replaces its default title slide
// with one blank page, so nothing but the inserted chart reaches the
// exported PDF.
func (s *Service) Create(ctx context.Context, title string) (*driven.ScratchDoc, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	p, err := s.slides.Presentations.Create(&slides.Presentation{Title: title}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("create presentation: %w", s.wrap(err))
	}
	if p.PageSize == nil || p.PageSize.Width == nil || p.PageSize.Height == nil {
		return nil, fmt.Errorf("presentation %s: no page size reported", p.PresentationId)
	}
	if len(p.Slides) == 0 {
		return nil, fmt.Errorf("presentation %s: no initial slide", p.PresentationId)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := s.slides.Presentations.BatchUpdate(p.PresentationId, &slides.BatchUpdatePresentationRequest{
		Requests: []*slides.Request{
			{CreateSlide: &slides.CreateSlideRequest{
				SlideLayoutReference: &slides.LayoutReference{PredefinedLayout: "BLANK"},
			}},
			{DeleteObject: &slides.DeleteObjectRequest{ObjectId: p.Slides[0].ObjectId}},
		},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("blank page for %s: %w", p.PresentationId, s.wrap(err))
	}
	if len(resp.Replies) == 0 || resp.Replies[0].CreateSlide == nil {
		return nil, fmt.Errorf("presentation %s: no slide id in reply", p.PresentationId)
	}

	return &driven.ScratchDoc{
		ID:         p.PresentationId,
		PageID:     resp.Replies[0].CreateSlide.ObjectId,
		PageWidth:  p.PageSize.Width.Magnitude,
		PageHeight: p.PageSize.Height.Magnitude,
	}, nil
}

// InsertChart places a linked Sheets chart on the page. The service
// assigns the element's intrinsic render size; callers must measure it
// afterwards.
func (s *Service) InsertChart(ctx context.Context, docID, pageID, spreadsheetID string, chartID int64) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}
	resp, err := s.slides.Presentations.BatchUpdate(docID, &slides.BatchUpdatePresentationRequest{
		Requests: []*slides.Request{
			{CreateSheetsChart: &slides.CreateSheetsChartRequest{
				SpreadsheetId: spreadsheetID,
				ChartId:       chartID,
				LinkingMode:   "LINKED",
				ElementProperties: &slides.PageElementProperties{
					PageObjectId: pageID,
				},
			}},
		},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("insert chart %d: %w", chartID, s.wrap(err))
	}
	if len(resp.Replies) == 0 || resp.Replies[0].CreateSheetsChart == nil {
		return "", fmt.Errorf("insert chart %d: no element id in reply", chartID)
	}
	return resp.Replies[0].CreateSheetsChart.ObjectId, nil
}

// ElementSize re-reads the presentation and returns the element's base
// size in EMU. Fit transforms are applied absolutely against this base
// size, so any initial transform the service set is superseded rather
// than compounded.
func (s *Service) ElementSize(ctx context.Context, docID, elementID string) (float64, float64, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return 0, 0, err
	}
	p, err := s.slides.Presentations.Get(docID).Context(ctx).Do()
	if err != nil {
		return 0, 0, fmt.Errorf("get presentation %s: %w", docID, s.wrap(err))
	}
	for _, page := range p.Slides {
		for _, el := range page.PageElements {
			if el.ObjectId != elementID {
				continue
			}
			if el.Size == nil || el.Size.Width == nil || el.Size.Height == nil {
				return 0, 0, fmt.Errorf("element %s: no size reported", elementID)
			}
			return el.Size.Width.Magnitude, el.Size.Height.Magnitude, nil
		}
	}
	return 0, 0, fmt.Errorf("element %s: %w", elementID, google.ErrNotFound)
}

// SetTransform repositions and scales the element absolutely.
func (s *Service) SetTransform(ctx context.Context, docID, elementID string, t domain.Transform) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := s.slides.Presentations.BatchUpdate(docID, &slides.BatchUpdatePresentationRequest{
		Requests: []*slides.Request{
			{UpdatePageElementTransform: &slides.UpdatePageElementTransformRequest{
				ObjectId:  elementID,
				ApplyMode: "ABSOLUTE",
				Transform: &slides.AffineTransform{
					ScaleX:     t.ScaleX,
					ScaleY:     t.ScaleY,
					TranslateX: t.TranslateX,
					TranslateY: t.TranslateY,
					Unit:       "EMU",
				},
			}},
		},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("transform element %s: %w", elementID, s.wrap(err))
	}
	return nil
}

// DeleteElement removes the element from its page.
func (s *Service) DeleteElement(ctx context.Context, docID, elementID string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := s.slides.Presentations.BatchUpdate(docID, &slides.BatchUpdatePresentationRequest{
		Requests: []*slides.Request{
			{DeleteObject: &slides.DeleteObjectRequest{ObjectId: elementID}},
		},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("delete element %s: %w", elementID, s.wrap(err))
	}
	return nil
}

// ExportPDF renders the deck as a PDF via the Drive export endpoint.
func (s *Service) ExportPDF(ctx context.Context, docID string) ([]byte, error) {
	if err := s.driveLimiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := s.drive.Files.Export(docID, mimePDF).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", docID, s.wrap(err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxExportSize))
	if err != nil {
		return nil, fmt.Errorf("read export %s: %w", docID, err)
	}
	return data, nil
}

// Delete destroys the scratch deck through Drive.
func (s *Service) Delete(ctx context.Context, docID string) error {
	if err := s.driveLimiter.Wait(ctx); err != nil {
		return err
	}
	if err := s.drive.Files.Delete(docID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete presentation %s: %w", docID, s.wrap(err))
	}
	return nil
}

func (s *Service) wrap(err error) error {
	wrapped := google.WrapError(err)
	if google.IsRateLimited(wrapped) {
		s.limiter.RecordRateLimitError(0)
	}
	return wrapped
}
