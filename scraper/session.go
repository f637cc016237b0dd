package scraper

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/civicgrab/laredo/config"
	"github.com/civicgrab/laredo/models"
)

// Session owns the rendering context for a single run: one browser, one
// page, closed exactly once on every exit path.
type Session struct {
	browser *rod.Browser
	page    *rod.Page
	wait    config.WaitConfig
	closed  bool
}

// Open launches a headless browser and prepares the working page. Fails
// with a SESSION_FAILED error when the browser cannot be launched or the
// page cannot be created.
func Open(browserCfg config.BrowserConfig, waitCfg config.WaitConfig) (*Session, error) {
	l := launcher.New().
		Headless(browserCfg.Headless).
		NoSandbox(browserCfg.NoSandbox)

	if browserCfg.BrowserBin != "" {
		l = l.Bin(browserCfg.BrowserBin)
	}
	if browserCfg.Proxy != "" {
		l = l.Proxy(browserCfg.Proxy)
	}

	// ── Anti-automation / CI-friendly flags ─────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-gpu"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-notifications"))
	l.Set(flags.Flag("no-first-run"))
	l.Set(flags.Flag("window-size"), "1920,1480")

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewExtractError(
			models.ErrCodeSession,
			"failed to launch browser",
			err,
		)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewExtractError(
			models.ErrCodeSession,
			"failed to connect to browser",
			err,
		)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		return nil, models.NewExtractError(
			models.ErrCodeSession,
			"failed to create page",
			err,
		)
	}

	// Stealth JS must be installed before any navigation happens.
	if browserCfg.Stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth",
				"error", evalErr,
			)
		}
	}

	_ = proto.NetworkSetExtraHTTPHeaders{
		Headers: proto.NetworkHeaders{
			"Accept-Language": gson.New("en-US,en;q=0.9"),
		},
	}.Call(page)

	return &Session{browser: browser, page: page, wait: waitCfg}, nil
}

// Page returns the session's top-level page.
func (s *Session) Page() *rod.Page {
	return s.page
}

// Navigate opens the target URL and waits for the DOM to settle. Fails
// with a SESSION_FAILED error when navigation does not complete within the
// navigation timeout.
func (s *Session) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, s.wait.NavTimeout)
	defer cancel()

	p := s.page.Context(navCtx)
	if err := p.Navigate(url); err != nil {
		return categorizeNavError(err, "navigation to target URL failed")
	}
	if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM",
			"error", err,
		)
	}
	return nil
}

// Reload refreshes the current page; used once when the table does not
// show up on the first attempt.
func (s *Session) Reload(ctx context.Context) error {
	navCtx, cancel := context.WithTimeout(ctx, s.wait.NavTimeout)
	defer cancel()

	p := s.page.Context(navCtx)
	if err := p.Reload(); err != nil {
		return categorizeNavError(err, "page reload failed")
	}
	_ = p.WaitDOMStable(300*time.Millisecond, 0.1)
	return nil
}

// Close tears the browser down. Safe to call more than once; the runner
// defers it so teardown runs on every exit path.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	slog.Info("session shutting down: closing browser")
	if err := s.browser.Close(); err != nil {
		slog.Warn("browser close failed", "error", err)
	}
}

// DumpArtifacts writes the rendered page HTML and a screenshot into outDir
// for post-mortem diagnosis. Best-effort: each artifact failure is logged
// and skipped, never fatal.
func (s *Session) DumpArtifacts(outDir, slug string) {
	htmlPath := filepath.Join(outDir, slug+"_page.html")
	if html, err := s.page.HTML(); err != nil {
		slog.Warn("failed to capture page HTML", "error", err)
	} else if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		slog.Warn("failed to save page HTML", "path", htmlPath, "error", err)
	} else {
		slog.Info("saved page HTML", "path", htmlPath)
	}

	pngPath := filepath.Join(outDir, slug+"_page.png")
	shot, err := s.page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		slog.Warn("failed to capture screenshot", "error", err)
		return
	}
	if err := os.WriteFile(pngPath, shot, 0o644); err != nil {
		slog.Warn("failed to save screenshot", "path", pngPath, "error", err)
		return
	}
	slog.Info("saved screenshot", "path", pngPath)
}

// scrollNudge scrolls the page top-to-bottom to trigger lazily rendered
// widgets. Errors are ignored; this is only a nudge.
func scrollNudge(p *rod.Page) {
	_, _ = p.Eval(`() => window.scrollTo(0, 0)`)
	time.Sleep(200 * time.Millisecond)
	_, _ = p.Eval(`() => window.scrollTo(0, document.body.scrollHeight / 2)`)
	time.Sleep(200 * time.Millisecond)
	_, _ = p.Eval(`() => window.scrollTo(0, document.body.scrollHeight)`)
}

func categorizeNavError(err error, msg string) *models.ExtractError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewExtractError(models.ErrCodeSession, msg+" (timeout)", err)
	case errors.Is(err, context.Canceled):
		return models.NewExtractError(models.ErrCodeSession, "run canceled", err)
	default:
		return models.NewExtractError(models.ErrCodeSession, msg, err)
	}
}
