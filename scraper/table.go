package scraper

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/civicgrab/laredo/config"
	"github.com/civicgrab/laredo/models"
)

// LocateTable polls the frame until one of the candidate selectors yields a
// non-empty element set, returning that selector. Candidates are the
// explicit configured selector (when present) followed by the fallback
// patterns, evaluated in priority order each poll. Polling is bounded by
// the step timeout with scroll nudges between polls to coax late-rendering
// widgets; when the table appears early no time is wasted.
func LocateTable(ctx context.Context, frame *FrameHandle, tableCfg config.TableConfig, wait config.WaitConfig) (string, error) {
	candidates := make([]string, 0, len(tableCfg.RowFallbacks)+1)
	if tableCfg.CSS != "" {
		candidates = append(candidates, tableCfg.CSS)
	}
	candidates = append(candidates, tableCfg.RowFallbacks...)

	deadline := time.Now().Add(wait.StepTimeout)
	for {
		for _, sel := range candidates {
			els, err := frame.page.Elements(sel)
			if err != nil {
				slog.Debug("table probe failed", "selector", sel, "error", err)
				continue
			}
			if len(els) > 0 {
				slog.Info("table located", "selector", sel, "elements", len(els), "frame", frame.String())
				return sel, nil
			}
		}

		if time.Now().After(deadline) {
			return "", models.NewExtractError(
				models.ErrCodeTableNotFound,
				"no table selector matched within the wait budget in "+frame.String(),
				nil,
			)
		}
		select {
		case <-ctx.Done():
			return "", models.NewExtractError(models.ErrCodeTableNotFound, "run canceled while waiting for table", ctx.Err())
		case <-time.After(wait.PollInterval):
		}
		scrollNudge(frame.page)
	}
}

// MatchAnySelector parses markup once and returns the first selector in
// order that matches at least one element. Pure: used both by the live
// iframe sweep and by fixture tests.
func MatchAnySelector(rawHTML string, selectors []string) (string, bool) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", false
	}
	for _, selector := range selectors {
		if selector == "" {
			continue
		}
		sel, err := cascadia.Parse(selector)
		if err != nil {
			continue
		}
		if cascadia.Query(doc, sel) != nil {
			return selector, true
		}
	}
	return "", false
}
