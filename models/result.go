package models

import (
	"time"

	"github.com/google/uuid"
)

// Run status values.
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusFailed  = "failed"
)

// Non-fatal diagnostic flags recorded on a RunResult.
const (
	DiagCycleDetected    = "cycle-detected"
	DiagPageLimitReached = "page-limit-reached"
	DiagShapeMismatch    = "shape-mismatch"
	DiagPaginationFault  = "pagination-fault"
)

// RunResult is the final product of one extraction run: the ordered record
// sequence plus status and diagnostic counters. It is built up during the
// walk and must not be mutated after Finish.
type RunResult struct {
	RunID      string    `json:"run_id"`
	County     string    `json:"county"`
	Status     string    `json:"status"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Records []*Record `json:"records"`

	PagesVisited int `json:"pages_visited"`
	RowsSeen     int `json:"rows_seen"`
	RowsMapped   int `json:"rows_mapped"`
	RowsSkipped  int `json:"rows_skipped"`

	Flags []string `json:"flags,omitempty"`
}

// NewRunResult creates a RunResult with a fresh run id.
func NewRunResult(county string) *RunResult {
	return &RunResult{
		RunID:     uuid.NewString(),
		County:    county,
		Status:    StatusFailed,
		StartedAt: time.Now().UTC(),
	}
}

// AddFlag records a diagnostic flag once, preserving first-seen order.
func (r *RunResult) AddFlag(flag string) {
	for _, f := range r.Flags {
		if f == flag {
			return
		}
	}
	r.Flags = append(r.Flags, flag)
}

// HasFlag reports whether the diagnostic flag was recorded.
func (r *RunResult) HasFlag(flag string) bool {
	for _, f := range r.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// Finish stamps the end time and derives the final status: success when
// records exist and no degrading flags were raised, partial when records
// exist alongside pagination trouble, failed otherwise.
func (r *RunResult) Finish() {
	r.FinishedAt = time.Now().UTC()
	switch {
	case len(r.Records) == 0:
		r.Status = StatusFailed
	case r.HasFlag(DiagPaginationFault):
		r.Status = StatusPartial
	default:
		r.Status = StatusSuccess
	}
}
