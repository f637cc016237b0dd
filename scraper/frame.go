package scraper

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-rod/rod"

	"github.com/civicgrab/laredo/config"
	"github.com/civicgrab/laredo/models"
)

// FrameHandle references the document context holding the table: the top
// document or one nested iframe. At most one handle is active at a time;
// element references from a previously resolved frame are invalid once a
// new handle is taken.
type FrameHandle struct {
	page *rod.Page
	top  bool
	desc string
}

// Page returns the document context behind the handle.
func (f *FrameHandle) Page() *rod.Page {
	return f.page
}

// Top reports whether the handle is the top document.
func (f *FrameHandle) Top() bool {
	return f.top
}

func (f *FrameHandle) String() string {
	return f.desc
}

// ResolveFrame picks the document context per the configured hint. An
// explicit hint must succeed or the run fails with FRAME_NOT_FOUND; without
// a hint the top document is used (the iframe sweep happens later, only if
// the table is missing there).
func ResolveFrame(ctx context.Context, sess *Session, frameCfg config.FrameConfig) (*FrameHandle, error) {
	if !frameCfg.Hinted() {
		return &FrameHandle{page: sess.page, top: true, desc: "top document"}, nil
	}

	stepCtx, cancel := context.WithTimeout(ctx, sess.wait.StepTimeout)
	defer cancel()
	p := sess.page.Context(stepCtx)

	if frameCfg.CSS != "" {
		el, err := p.Element(frameCfg.CSS)
		if err != nil {
			return nil, models.NewExtractError(
				models.ErrCodeFrameNotFound,
				"iframe not found for selector "+frameCfg.CSS,
				err,
			)
		}
		frame, err := el.Frame()
		if err != nil {
			return nil, models.NewExtractError(
				models.ErrCodeFrameNotFound,
				"failed to enter iframe "+frameCfg.CSS,
				err,
			)
		}
		slog.Info("switched into iframe", "selector", frameCfg.CSS)
		return &FrameHandle{page: frame, desc: "iframe " + frameCfg.CSS}, nil
	}

	frames, err := p.Elements("iframe")
	if err != nil || frameCfg.Index >= len(frames) {
		return nil, models.NewExtractError(
			models.ErrCodeFrameNotFound,
			fmt.Sprintf("iframe index %d out of range", frameCfg.Index),
			err,
		)
	}
	frame, err := frames[frameCfg.Index].Frame()
	if err != nil {
		return nil, models.NewExtractError(
			models.ErrCodeFrameNotFound,
			fmt.Sprintf("failed to enter iframe %d", frameCfg.Index),
			err,
		)
	}
	slog.Info("switched into iframe", "index", frameCfg.Index)
	return &FrameHandle{page: frame, desc: fmt.Sprintf("iframe[%d]", frameCfg.Index)}, nil
}

// SweepFrames walks the page's iframes and returns a handle to the first
// one whose document matches any of the row patterns. Used when no frame
// hint was given and the table is absent from the top document.
func SweepFrames(ctx context.Context, sess *Session, rowFallbacks []string) (*FrameHandle, bool) {
	stepCtx, cancel := context.WithTimeout(ctx, sess.wait.StepTimeout)
	defer cancel()
	p := sess.page.Context(stepCtx)

	frames, err := p.Elements("iframe")
	if err != nil {
		slog.Warn("iframe sweep failed to list frames", "error", err)
		return nil, false
	}

	for i, el := range frames {
		frame, err := el.Frame()
		if err != nil {
			// Cross-origin frames are not enterable; skip them.
			slog.Debug("iframe sweep: frame not enterable", "index", i, "error", err)
			continue
		}
		html, err := frame.Context(stepCtx).HTML()
		if err != nil {
			slog.Debug("iframe sweep: frame HTML unavailable", "index", i, "error", err)
			continue
		}
		if sel, ok := MatchAnySelector(html, rowFallbacks); ok {
			slog.Info("iframe sweep matched", "index", i, "selector", sel)
			return &FrameHandle{page: frame, desc: fmt.Sprintf("iframe[%d] (swept)", i)}, true
		}
	}
	return nil, false
}
