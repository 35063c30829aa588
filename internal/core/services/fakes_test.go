package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/arcline-labs/chartpress/internal/core/domain"
	"github.com/arcline-labs/chartpress/internal/core/ports/driven"
)

var (
	_ driven.DocumentGraph = (*fakeGraph)(nil)
	_ driven.ObjectStore   = (*fakeObjects)(nil)
	_ driven.Presentation  = (*fakePres)(nil)
	_ driven.RunLedger     = (*fakeLedger)(nil)
)

// fastRetry keeps test backoff invisible.
func fastRetry() domain.RetryConfig {
	return domain.RetryConfig{Attempts: 2, InitialWait: 1, MaxWait: 2, MaxJitter: 0}
}

// fakeGraph serves a static charts-by-sheet map.
type fakeGraph struct {
	sheets map[string]domain.SheetCharts
	err    error
	calls  int
}

func (g *fakeGraph) ChartsBySheet(_ context.Context, _ string) (map[string]domain.SheetCharts, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.sheets, nil
}

type uploadRec struct {
	parentID string
	name     string
	mimeType string
	size     int
}

// fakeObjects is an in-memory object store with injectable failures.
type fakeObjects struct {
	mu sync.Mutex

	folders map[string]string // "parent/name" -> folder id
	uploads []uploadRec

	findCalls   int
	createCalls int

	findErr   error
	createErr error
	// uploadErrFor fails uploads whose filename contains the key.
	uploadErrFor map[string]error
	// findErrFor fails lookups under a specific parent.
	findErrFor map[string]error
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{
		folders:      make(map[string]string),
		uploadErrFor: make(map[string]error),
		findErrFor:   make(map[string]error),
	}
}

func (o *fakeObjects) FindFolder(_ context.Context, parentID, name string) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.findCalls++
	if o.findErr != nil {
		return "", o.findErr
	}
	if err, ok := o.findErrFor[parentID]; ok {
		return "", err
	}
	return o.folders[parentID+"/"+name], nil
}

func (o *fakeObjects) CreateFolder(_ context.Context, parentID, name string) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.createCalls++
	if o.createErr != nil {
		return "", o.createErr
	}
	id := fmt.Sprintf("folder-%d", len(o.folders)+1)
	o.folders[parentID+"/"+name] = id
	return id, nil
}

func (o *fakeObjects) Upload(_ context.Context, parentID, name, mimeType string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	for key, uerr := range o.uploadErrFor {
		if key != "" && strings.Contains(name, key) {
			return "", uerr
		}
	}
	o.uploads = append(o.uploads, uploadRec{parentID: parentID, name: name, mimeType: mimeType, size: len(data)})
	return fmt.Sprintf("file-%d", len(o.uploads)), nil
}

func (o *fakeObjects) Delete(_ context.Context, _ string) error {
	return nil
}

func (o *fakeObjects) uploadNames() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	names := make([]string, len(o.uploads))
	for i, u := range o.uploads {
		names[i] = u.name
	}
	return names
}

// fakePres is an in-memory presentation service. Page size 100x50,
// intrinsic element size 40x30 unless overridden.
type fakePres struct {
	mu sync.Mutex

	nextDoc  int
	nextElem int

	liveDocs     map[string]bool
	deletedDocs  []string
	deletedElems []string
	transforms   map[string]domain.Transform
	inserts      int

	// Live elements per document, and the high-water mark. A reuse
	// session must never have two charts on its page at once.
	liveByDoc    map[string]int
	maxLiveByDoc map[string]int

	elemW, elemH float64

	createErr error
	// insertErrFor permanently fails inserts of a chart id.
	insertErrFor map[int64]error
	exportErr    error
	deleteErr    error
	elemDelErr   error
}

func newFakePres() *fakePres {
	return &fakePres{
		liveDocs:     make(map[string]bool),
		transforms:   make(map[string]domain.Transform),
		insertErrFor: make(map[int64]error),
		liveByDoc:    make(map[string]int),
		maxLiveByDoc: make(map[string]int),
		elemW:        40,
		elemH:        30,
	}
}

func (p *fakePres) Create(_ context.Context, _ string) (*driven.ScratchDoc, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.createErr != nil {
		return nil, p.createErr
	}
	p.nextDoc++
	id := fmt.Sprintf("doc-%d", p.nextDoc)
	p.liveDocs[id] = true
	return &driven.ScratchDoc{
		ID:         id,
		PageID:     fmt.Sprintf("page-%d", p.nextDoc),
		PageWidth:  100,
		PageHeight: 50,
	}, nil
}

func (p *fakePres) InsertChart(_ context.Context, docID, _, _ string, chartID int64) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err, ok := p.insertErrFor[chartID]; ok {
		return "", err
	}
	if !p.liveDocs[docID] {
		return "", fmt.Errorf("document %s gone", docID)
	}
	p.inserts++
	p.nextElem++
	p.liveByDoc[docID]++
	if p.liveByDoc[docID] > p.maxLiveByDoc[docID] {
		p.maxLiveByDoc[docID] = p.liveByDoc[docID]
	}
	return fmt.Sprintf("elem-%d", p.nextElem), nil
}

func (p *fakePres) ElementSize(_ context.Context, _, _ string) (float64, float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.elemW, p.elemH, nil
}

func (p *fakePres) SetTransform(_ context.Context, _, elementID string, t domain.Transform) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.transforms[elementID] = t
	return nil
}

func (p *fakePres) DeleteElement(_ context.Context, docID, elementID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.elemDelErr != nil {
		return p.elemDelErr
	}
	p.liveByDoc[docID]--
	p.deletedElems = append(p.deletedElems, elementID)
	return nil
}

func (p *fakePres) ExportPDF(_ context.Context, docID string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.exportErr != nil {
		return nil, p.exportErr
	}
	return []byte("pdf-" + docID), nil
}

func (p *fakePres) Delete(_ context.Context, docID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.deleteErr != nil {
		return p.deleteErr
	}
	delete(p.liveDocs, docID)
	p.deletedDocs = append(p.deletedDocs, docID)
	return nil
}

func (p *fakePres) maxLiveElements(docID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.maxLiveByDoc[docID]
}

func (p *fakePres) destroyCount(docID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, id := range p.deletedDocs {
		if id == docID {
			n++
		}
	}
	return n
}

// fakeLedger records reports in memory.
type fakeLedger struct {
	mu      sync.Mutex
	reports []*domain.RunReport
	err     error
}

func (l *fakeLedger) Record(_ context.Context, report *domain.RunReport) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.reports = append(l.reports, report)
	return nil
}

func (l *fakeLedger) List(_ context.Context, _ int) ([]domain.RunSummary, error) {
	return nil, nil
}
