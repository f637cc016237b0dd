package scraper

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-rod/rod/lib/proto"

	"github.com/civicgrab/laredo/config"
	"github.com/civicgrab/laredo/models"
)

// MaybeLogin performs the optional login flow and reports whether a login
// happened. Without configured credentials it is a no-op. With credentials,
// a login form that cannot be found within the wait budget is a hard
// AUTH_FAILED stop: silently skipping would risk scraping the login page
// as if it were data.
func MaybeLogin(ctx context.Context, sess *Session, authCfg config.AuthConfig) (bool, error) {
	if !authCfg.Configured() {
		slog.Info("no credentials configured, skipping login")
		return false, nil
	}

	stepCtx, cancel := context.WithTimeout(ctx, sess.wait.StepTimeout)
	defer cancel()
	p := sess.page.Context(stepCtx)

	userField, err := p.Element(authCfg.UsernameSelector)
	if err != nil {
		return false, models.NewExtractError(
			models.ErrCodeAuth,
			"login form username field not found: "+authCfg.UsernameSelector,
			err,
		)
	}
	passField, err := p.Element(authCfg.PasswordSelector)
	if err != nil {
		return false, models.NewExtractError(
			models.ErrCodeAuth,
			"login form password field not found: "+authCfg.PasswordSelector,
			err,
		)
	}
	submit, err := p.Element(authCfg.SubmitSelector)
	if err != nil {
		return false, models.NewExtractError(
			models.ErrCodeAuth,
			"login form submit control not found: "+authCfg.SubmitSelector,
			err,
		)
	}

	if err := userField.Input(authCfg.Username); err != nil {
		return false, models.NewExtractError(models.ErrCodeAuth, "failed to enter username", err)
	}
	if err := passField.Input(authCfg.Password); err != nil {
		return false, models.NewExtractError(models.ErrCodeAuth, "failed to enter password", err)
	}
	if err := submit.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return false, models.NewExtractError(models.ErrCodeAuth, "failed to submit login form", err)
	}
	slog.Info("login form submitted", "user", authCfg.Username)

	if err := waitPostLogin(ctx, sess, authCfg); err != nil {
		return false, err
	}
	return true, nil
}

// waitPostLogin blocks until the configured settle condition holds: either
// a readiness selector appears, or a fixed delay elapses.
func waitPostLogin(ctx context.Context, sess *Session, authCfg config.AuthConfig) error {
	if authCfg.PostLoginSelector != "" {
		stepCtx, cancel := context.WithTimeout(ctx, sess.wait.StepTimeout)
		defer cancel()
		p := sess.page.Context(stepCtx)
		if err := p.WaitElementsMoreThan(authCfg.PostLoginSelector, 0); err != nil {
			return models.NewExtractError(
				models.ErrCodeAuth,
				"post-login readiness selector never appeared: "+authCfg.PostLoginSelector,
				err,
			)
		}
		return nil
	}

	select {
	case <-time.After(authCfg.PostLoginWait):
		return nil
	case <-ctx.Done():
		return models.NewExtractError(models.ErrCodeAuth, "run canceled during post-login settle", ctx.Err())
	}
}
