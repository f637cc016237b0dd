package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/civicgrab/laredo/config"
	"github.com/civicgrab/laredo/extract"
	"github.com/civicgrab/laredo/models"
)

// rodTableView adapts a resolved frame + row selector to the TableView
// interface. The browser only ever hands over rendered markup; row
// extraction happens offline in the extract package.
type rodTableView struct {
	frame         *FrameHandle
	rowSelector   string
	nextSelectors []string
	wait          config.WaitConfig
	lastPrint     string
}

// NewRodTableView wraps a located table for the pagination walker.
func NewRodTableView(frame *FrameHandle, rowSelector string, walkCfg config.WalkConfig, wait config.WaitConfig) TableView {
	return &rodTableView{
		frame:         frame,
		rowSelector:   rowSelector,
		nextSelectors: walkCfg.NextSelectors,
		wait:          wait,
	}
}

func (v *rodTableView) Capture() (models.PageCapture, error) {
	capture, err := v.snapshot()
	if err != nil {
		return capture, err
	}
	v.lastPrint = Fingerprint(capture)
	return capture, nil
}

func (v *rodTableView) snapshot() (models.PageCapture, error) {
	rawHTML, err := v.frame.page.HTML()
	if err != nil {
		return models.PageCapture{}, fmt.Errorf("frame HTML unavailable: %w", err)
	}
	return extract.ParseTableHTML(rawHTML, v.rowSelector)
}

func (v *rodTableView) NextState() (NextState, error) {
	el, found, err := v.findNext()
	if err != nil {
		return NextNone, err
	}
	if !found {
		return NextNone, nil
	}
	disabled, err := affordanceDisabled(el)
	if err != nil {
		return NextNone, err
	}
	if disabled {
		return NextDisabled, nil
	}
	return NextReady, nil
}

// Advance clicks the next affordance and polls until the rendered rows
// differ from the pre-click capture or the affordance goes inert. Bounded
// by the step timeout; a timeout means the site did not advance.
func (v *rodTableView) Advance(ctx context.Context) error {
	el, found, err := v.findNext()
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("next affordance disappeared before advance")
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("next click failed: %w", err)
	}

	deadline := time.Now().Add(v.wait.StepTimeout)
	for {
		capture, err := v.snapshot()
		if err == nil && Fingerprint(capture) != v.lastPrint && len(capture.Rows) > 0 {
			return nil
		}

		if el, found, ferr := v.findNext(); ferr == nil && found {
			if disabled, derr := affordanceDisabled(el); derr == nil && disabled {
				// Some pagers disable "next" while re-rendering the last
				// page in place; the walker's fingerprint check settles it.
				return nil
			}
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("rows did not change within %s after next click", v.wait.StepTimeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(v.wait.PollInterval):
		}
	}
}

func (v *rodTableView) findNext() (*rod.Element, bool, error) {
	for _, sel := range v.nextSelectors {
		has, el, err := v.frame.page.Has(sel)
		if err != nil {
			return nil, false, fmt.Errorf("pager probe %q failed: %w", sel, err)
		}
		if has {
			return el, true, nil
		}
	}
	return nil, false, nil
}

func affordanceDisabled(el *rod.Element) (bool, error) {
	if attr, err := el.Attribute("disabled"); err != nil {
		return false, err
	} else if attr != nil {
		return true, nil
	}
	if attr, err := el.Attribute("aria-disabled"); err == nil && attr != nil && *attr == "true" {
		return true, nil
	}
	if attr, err := el.Attribute("class"); err == nil && attr != nil {
		if strings.Contains(*attr, "p-disabled") || strings.Contains(*attr, "disabled") {
			return true, nil
		}
	}
	return false, nil
}
