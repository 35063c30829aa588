package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcline-labs/chartpress/internal/core/domain"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := NewLedger(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func sampleReport(dateKey string, started time.Time) *domain.RunReport {
	return &domain.RunReport{
		ID:            uuid.NewString(),
		SpreadsheetID: "sheet-1",
		DateKey:       dateKey,
		StartedAt:     started,
		FinishedAt:    started.Add(time.Minute),
		SkippedStores: []string{"GHOST"},
		Results: []domain.ExportResult{
			{
				Store:      "ARENAL",
				ChartTitle: "Sales",
				Filename:   "ARENAL__Sales__" + dateKey + ".pdf",
				Outcome:    domain.OutcomeSuccess,
			},
			{
				Store:      "ARENAL",
				ChartTitle: "Grafico_2",
				Filename:   "ARENAL__Grafico_2__" + dateKey + ".pdf",
				Outcome:    domain.OutcomeFailed,
				Reason:     "upload: quota exceeded",
			},
		},
	}
}

func TestLedgerRecordAndList(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	report := sampleReport("2024-01-01", time.Now().Add(-time.Hour))
	require.NoError(t, l.Record(ctx, report))

	runs, err := l.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	assert.Equal(t, report.ID, runs[0].ID)
	assert.Equal(t, "sheet-1", runs[0].SpreadsheetID)
	assert.Equal(t, "2024-01-01", runs[0].DateKey)
	assert.Equal(t, 1, runs[0].Succeeded)
	assert.Equal(t, 1, runs[0].Failed)
}

func TestLedgerListNewestFirst(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	old := sampleReport("2024-01-01", time.Now().Add(-48*time.Hour))
	recent := sampleReport("2024-01-03", time.Now().Add(-time.Hour))
	require.NoError(t, l.Record(ctx, old))
	require.NoError(t, l.Record(ctx, recent))

	runs, err := l.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, recent.ID, runs[0].ID)
	assert.Equal(t, old.ID, runs[1].ID)

	runs, err = l.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, recent.ID, runs[0].ID)
}

func TestLedgerReopenIsIdempotent(t *testing.T) {
	dir := t.TempDir()

	l, err := NewLedger(dir)
	require.NoError(t, err)
	require.NoError(t, l.Record(context.Background(), sampleReport("2024-01-01", time.Now())))
	require.NoError(t, l.Close())

	// Re-running migrations on an existing database is a no-op.
	l2, err := NewLedger(dir)
	require.NoError(t, err)
	defer l2.Close()

	runs, err := l2.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestLedgerEmptyList(t *testing.T) {
	l := newTestLedger(t)
	runs, err := l.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
