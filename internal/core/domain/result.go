package domain

import "time"

// Outcome is the terminal state of one chart export.
type Outcome string

const (
	// OutcomeSuccess means the chart PDF was uploaded.
	OutcomeSuccess Outcome = "success"
	// OutcomeFailed means the chart could not be exported or uploaded.
	OutcomeFailed Outcome = "failed"
)

// ExportResult records the outcome of one chart export. Results are
// immutable once created.
type ExportResult struct {
	Store      string
	ChartTitle string
	Filename   string
	Outcome    Outcome
	Reason     string
}

// Failed returns true if the export did not succeed.
func (r ExportResult) Failed() bool {
	return r.Outcome == OutcomeFailed
}

// RunReport aggregates everything one pipeline run produced.
type RunReport struct {
	ID            string
	SpreadsheetID string
	DateKey       string
	StartedAt     time.Time
	FinishedAt    time.Time
	SkippedStores []string
	Results       []ExportResult
}

// Succeeded counts successful chart exports.
func (r *RunReport) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == OutcomeSuccess {
			n++
		}
	}
	return n
}

// Failures counts failed chart exports.
func (r *RunReport) Failures() int {
	return len(r.Results) - r.Succeeded()
}

// RunSummary is the ledger's compact view of a past run.
type RunSummary struct {
	ID            string
	SpreadsheetID string
	DateKey       string
	StartedAt     time.Time
	FinishedAt    time.Time
	Succeeded     int
	Failed        int
}
