package scraper

import (
	"context"
	"errors"
	"log/slog"

	"github.com/civicgrab/laredo/config"
	"github.com/civicgrab/laredo/extract"
	"github.com/civicgrab/laredo/models"
)

// Runner executes one extraction run end to end: session, optional login,
// frame and table resolution, pagination walk, record mapping. One runner
// per run; no state crosses runs.
type Runner struct {
	cfg  *config.Config
	flow *models.FlowLog
}

// NewRunner builds a Runner. flow may be nil when no step log is wanted.
func NewRunner(cfg *config.Config, flow *models.FlowLog) *Runner {
	return &Runner{cfg: cfg, flow: flow}
}

// Run performs the extraction. The returned RunResult is always non-nil;
// on a fatal error it carries the failed status and the error describes
// the failing step. Session teardown runs on every exit path; debug
// artifacts are captured for fatal faults while the session is still open.
func (r *Runner) Run(ctx context.Context) (*models.RunResult, error) {
	result := models.NewRunResult(r.cfg.CountySlug)

	fm := extract.DefaultFieldMap()
	if r.cfg.Mapper.FieldsFile != "" {
		loaded, err := extract.LoadFieldMap(r.cfg.Mapper.FieldsFile)
		if err != nil {
			result.Finish()
			return result, models.NewExtractError(models.ErrCodeInvalidInput, "bad fields file", err)
		}
		fm = loaded
	}

	sess, err := Open(r.cfg.Browser, r.cfg.Wait)
	if err != nil {
		r.step(models.FlowStep{Event: "session_open", Outcome: err.Error()})
		result.Finish()
		return result, err
	}
	defer sess.Close()
	r.step(models.FlowStep{Event: "session_open", Outcome: "ok"})

	walk, err := r.extractPages(ctx, sess)
	if err != nil {
		var xerr *models.ExtractError
		if !errors.As(err, &xerr) || xerr.Fatal() {
			sess.DumpArtifacts(r.cfg.OutDir, r.cfg.CountySlug)
		}
		result.Finish()
		return result, err
	}

	r.assemble(result, walk, fm)
	result.Finish()
	if err := gateRecords(result); err != nil {
		sess.DumpArtifacts(r.cfg.OutDir, r.cfg.CountySlug)
		return result, err
	}
	return result, nil
}

// gateRecords turns an empty final record set into a hard error. Output
// files are only written for runs that produced records; the surrounding
// workflow gates its commit step on the exit code.
func gateRecords(result *models.RunResult) error {
	if result.Status == models.StatusFailed {
		return models.NewExtractError(models.ErrCodeNoRecords,
			"extraction finished with zero records", nil)
	}
	return nil
}

// extractPages runs the browser-facing half of the pipeline and returns
// the raw per-page captures.
func (r *Runner) extractPages(ctx context.Context, sess *Session) (*WalkResult, error) {
	if err := sess.Navigate(ctx, r.cfg.StartURL); err != nil {
		r.step(models.FlowStep{Event: "navigate", Selector: r.cfg.StartURL, Outcome: err.Error()})
		return nil, err
	}
	r.step(models.FlowStep{Event: "navigate", Selector: r.cfg.StartURL, Outcome: "ok"})

	loggedIn, err := MaybeLogin(ctx, sess, r.cfg.Auth)
	if err != nil {
		r.step(models.FlowStep{Event: "login", Outcome: err.Error()})
		return nil, err
	}
	if loggedIn {
		r.step(models.FlowStep{Event: "login", Outcome: "ok"})
	}

	frame, rowSelector, err := r.locate(ctx, sess)
	if err != nil {
		return nil, err
	}

	view := NewRodTableView(frame, rowSelector, r.cfg.Walk, r.cfg.Wait)
	walker := NewWalker(r.cfg.Walk.MaxPages, r.cfg.Walk.AdvancesPerSecond, r.flow)
	walk, err := walker.Walk(ctx, view)
	if err != nil {
		return nil, err
	}
	return walk, nil
}

// locate resolves the frame and the table row selector. Without an
// explicit frame hint, a table missing from the top document triggers an
// iframe sweep; if everything misses, the page is reloaded once and the
// whole resolution is retried before giving up.
func (r *Runner) locate(ctx context.Context, sess *Session) (*FrameHandle, string, error) {
	frame, sel, err := r.locateOnce(ctx, sess)
	if err == nil {
		return frame, sel, nil
	}

	slog.Warn("table not found on first attempt, reloading once", "error", err)
	r.step(models.FlowStep{Event: "reload", Outcome: "table missing"})
	if reloadErr := sess.Reload(ctx); reloadErr != nil {
		slog.Warn("reload failed", "error", reloadErr)
		return nil, "", err
	}
	return r.locateOnce(ctx, sess)
}

func (r *Runner) locateOnce(ctx context.Context, sess *Session) (*FrameHandle, string, error) {
	frame, err := ResolveFrame(ctx, sess, r.cfg.Frame)
	if err != nil {
		r.step(models.FlowStep{Event: "resolve_frame", Outcome: err.Error()})
		return nil, "", err
	}
	r.step(models.FlowStep{Event: "resolve_frame", Outcome: frame.String()})

	sel, err := LocateTable(ctx, frame, r.cfg.Table, r.cfg.Wait)
	if err == nil {
		r.step(models.FlowStep{Event: "locate_table", Selector: sel, Outcome: "ok"})
		return frame, sel, nil
	}
	r.step(models.FlowStep{Event: "locate_table", Outcome: err.Error()})

	// No hint and nothing in the top document: the table may live in a
	// nested iframe.
	if !r.cfg.Frame.Hinted() && frame.Top() {
		if swept, ok := SweepFrames(ctx, sess, r.cfg.Table.RowFallbacks); ok {
			r.step(models.FlowStep{Event: "frame_sweep", Outcome: swept.String()})
			sel, err = LocateTable(ctx, swept, r.cfg.Table, r.cfg.Wait)
			if err == nil {
				r.step(models.FlowStep{Event: "locate_table", Selector: sel, Outcome: "ok"})
				return swept, sel, nil
			}
		} else {
			r.step(models.FlowStep{Event: "frame_sweep", Outcome: "no matching iframe"})
		}
	}
	return nil, "", err
}

// assemble turns raw page captures into the final record sequence.
func (r *Runner) assemble(result *models.RunResult, walk *WalkResult, fm extract.FieldMap) {
	for _, flag := range walk.Flags {
		result.AddFlag(flag)
	}
	result.PagesVisited = len(walk.Pages)

	var header []string
	for _, page := range walk.Pages {
		if len(page.Header) > 0 {
			header = page.Header
			break
		}
	}
	columns := extract.EstablishColumns(header, fm)

	var mapped []*models.Record
	for _, page := range walk.Pages {
		for _, row := range page.Rows {
			result.RowsSeen++
			rec, mismatch := columns.MapRow(row)
			if mismatch {
				result.AddFlag(models.DiagShapeMismatch)
				slog.Warn("row shape mismatch, mapped best-effort",
					"cells", len(row), "expected", columns.Width())
			}
			mapped = append(mapped, rec)
		}
	}

	agg := extract.NewAggregator(fm, r.cfg.CountySlug, r.cfg.Mapper.MaxParties, r.cfg.Mapper.DaysBack)
	records, skipped := agg.Apply(mapped)

	result.Records = records
	result.RowsMapped = result.RowsSeen - skipped
	result.RowsSkipped = skipped
	r.step(models.FlowStep{Event: "records_assembled", Count: len(records)})
}

func (r *Runner) step(s models.FlowStep) {
	if r.flow != nil {
		r.flow.Step(s)
	}
}
