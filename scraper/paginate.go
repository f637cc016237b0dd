package scraper

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"

	"github.com/civicgrab/laredo/models"
)

// NextState describes the pager's "next" affordance at capture time.
type NextState int

const (
	// NextNone means no affordance was found (single-page table).
	NextNone NextState = iota
	// NextDisabled means the affordance exists but is inert (last page).
	NextDisabled
	// NextReady means another page can be requested.
	NextReady
)

// TableView is the walker's window onto one rendered table. The production
// implementation drives a rod frame; tests substitute static fixtures.
// A view is consumed as it advances: the walk is finite and not
// restartable.
type TableView interface {
	// Capture returns the current page's header, rows and pager label.
	Capture() (models.PageCapture, error)

	// NextState inspects the "next" affordance.
	NextState() (NextState, error)

	// Advance triggers the next page and blocks until the rendered rows
	// visibly change or the affordance goes inert, bounded by the view's
	// wait budget.
	Advance(ctx context.Context) error
}

// WalkResult is the raw outcome of one pagination walk: per-page row
// groups in visit order plus any non-fatal diagnostic flags.
type WalkResult struct {
	Pages []models.PageCapture
	Flags []string
}

// Walker drives a TableView through successive pages with cycle detection
// and a hard page cap, pacing advances through a politeness limiter.
type Walker struct {
	maxPages int
	limiter  *rate.Limiter
	flow     *models.FlowLog
}

// NewWalker builds a Walker. advancesPerSecond throttles how fast "next"
// is clicked; flow may be nil.
func NewWalker(maxPages int, advancesPerSecond float64, flow *models.FlowLog) *Walker {
	return &Walker{
		maxPages: maxPages,
		limiter:  rate.NewLimiter(rate.Limit(advancesPerSecond), 1),
		flow:     flow,
	}
}

// Walk captures pages until a termination condition holds. Checked in
// order each iteration: affordance absent (done), affordance disabled
// (done), repeated fingerprint (done, cycle-detected), page cap reached
// (done, page-limit-reached). A failed capture or advance after the first
// page degrades to a pagination-fault flag: already captured pages are
// kept. A failed first capture is returned as an error since nothing was
// extracted at all.
func (w *Walker) Walk(ctx context.Context, view TableView) (*WalkResult, error) {
	result := &WalkResult{}
	seen := make(map[string]bool)

	for pages := 0; ; pages++ {
		capture, err := view.Capture()
		if err != nil {
			if pages == 0 {
				return nil, models.NewExtractError(models.ErrCodePagination, "first page capture failed", err)
			}
			slog.Warn("page capture failed, keeping captured pages", "page", pages+1, "error", err)
			result.Flags = append(result.Flags, models.DiagPaginationFault)
			return result, nil
		}

		fp := Fingerprint(capture)
		if seen[fp] {
			// The site silently failed to advance; stop rather than loop.
			slog.Warn("pagination cycle detected", "page", pages+1, "fingerprint", fp[:12])
			result.Flags = append(result.Flags, models.DiagCycleDetected)
			return result, nil
		}
		seen[fp] = true
		result.Pages = append(result.Pages, capture)
		w.step(models.FlowStep{Event: "page_captured", Page: pages + 1, Count: len(capture.Rows)})

		state, err := view.NextState()
		if err != nil {
			slog.Warn("pager state probe failed", "page", pages+1, "error", err)
			result.Flags = append(result.Flags, models.DiagPaginationFault)
			return result, nil
		}
		switch state {
		case NextNone:
			slog.Info("no next affordance, walk complete", "pages", len(result.Pages))
			return result, nil
		case NextDisabled:
			slog.Info("next affordance disabled, walk complete", "pages", len(result.Pages))
			return result, nil
		}

		// More pages exist but the cap is reached: stop before clicking
		// an affordance whose result would never be captured.
		if len(result.Pages) >= w.maxPages {
			slog.Warn("page limit reached", "maxPages", w.maxPages)
			result.Flags = append(result.Flags, models.DiagPageLimitReached)
			return result, nil
		}

		if err := w.limiter.Wait(ctx); err != nil {
			result.Flags = append(result.Flags, models.DiagPaginationFault)
			return result, nil
		}
		if err := view.Advance(ctx); err != nil {
			slog.Warn("advance failed, keeping captured pages", "page", pages+1, "error", err)
			w.step(models.FlowStep{Event: "advance_failed", Page: pages + 1, Outcome: err.Error()})
			result.Flags = append(result.Flags, models.DiagPaginationFault)
			return result, nil
		}
		w.step(models.FlowStep{Event: "advanced", Page: pages + 2})
	}
}

func (w *Walker) step(s models.FlowStep) {
	if w.flow != nil {
		w.flow.Step(s)
	}
}

// Fingerprint summarizes a page's visible content: first and last row,
// row count and pager label. Advancing must change it, or the walk is
// cycling.
func Fingerprint(capture models.PageCapture) string {
	var first, last string
	if n := len(capture.Rows); n > 0 {
		first = strings.Join(capture.Rows[0], "|")
		last = strings.Join(capture.Rows[n-1], "|")
	}
	sum := sha256.Sum256(fmt.Appendf(nil, "%s\x1f%s\x1f%d\x1f%s",
		first, last, len(capture.Rows), capture.PagerLabel))
	return fmt.Sprintf("%x", sum)
}
