package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"linkedin-leads/internal/browser"
	"linkedin-leads/internal/models"
)

const diagnoseTimeout = 5 * time.Second

const diagnoseScript = `(() => ({
	url: location.href,
	challenge: /checkpoint|challenge/.test(location.pathname) ||
		document.querySelectorAll('iframe[src*="captcha"], iframe[src*="challenge"]').length > 0
}))()`

// Session is one authenticated browsing context
type Session struct {
	ID        string
	Page      browser.Page
	StartedAt time.Time

	releaseOnce sync.Once
	releaseErr  error
}

// NewSession wraps an open page
func NewSession(page browser.Page) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Page:      page,
		StartedAt: time.Now(),
	}
}

// Release closes the page and its browser. Only the first call does any work.
func (s *Session) Release() error {
	s.releaseOnce.Do(func() {
		s.releaseErr = s.Page.Close()
	})
	return s.releaseErr
}

// SessionManager logs in to LinkedIn and owns the browser lifecycle
type SessionManager struct {
	launcher browser.Launcher
	cfg      models.SessionConfig
	logger   *zap.Logger
}

// NewSessionManager creates a new SessionManager instance
func NewSessionManager(launcher browser.Launcher, cfg models.SessionConfig, logger *zap.Logger) *SessionManager {
	return &SessionManager{
		launcher: launcher,
		cfg:      cfg,
		logger:   logger,
	}
}

// Acquire opens a fresh browser and logs in. On any failure the browser is
// closed before returning.
func (sm *SessionManager) Acquire(ctx context.Context, account models.Account) (*Session, error) {
	if account.Empty() {
		return nil, fmt.Errorf("%w: missing LinkedIn credentials", models.ErrConfig)
	}

	page, err := sm.launcher.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	session := NewSession(page)
	log := sm.logger.With(zap.String("session_id", session.ID), zap.String("account_domain", account.Domain()))

	log.Info("logging in")
	if err := sm.login(ctx, page, account); err != nil {
		if relErr := session.Release(); relErr != nil {
			log.Warn("release after failed login", zap.Error(relErr))
		}
		return nil, err
	}
	log.Info("logged in", zap.Duration("elapsed", time.Since(session.StartedAt)))
	return session, nil
}

// WithSession runs fn inside an acquired session and releases it on every exit
// path. A release failure is logged and never replaces fn's result.
func (sm *SessionManager) WithSession(ctx context.Context, account models.Account, fn func(*Session) error) error {
	session, err := sm.Acquire(ctx, account)
	if err != nil {
		return err
	}
	defer func() {
		if relErr := session.Release(); relErr != nil {
			sm.logger.Warn("release session", zap.String("session_id", session.ID), zap.Error(relErr))
		}
	}()
	return fn(session)
}

func (sm *SessionManager) login(ctx context.Context, page browser.Page, account models.Account) error {
	navCtx, cancel := context.WithTimeout(ctx, sm.cfg.NavigationTimeout)
	err := page.Navigate(navCtx, sm.cfg.LoginURL)
	cancel()
	if err != nil {
		if ctx.Err() == nil && errors.Is(err, browser.ErrTimeout) {
			return fmt.Errorf("%w: open login page: %w", models.ErrNavigationTimeout, err)
		}
		return stepError(ctx, "open login page", err)
	}

	if err := page.WaitForSelector(ctx, sm.cfg.UsernameSelector, sm.cfg.NavigationTimeout); err != nil {
		return stepError(ctx, "login form", err)
	}

	stepCtx, cancel := context.WithTimeout(ctx, sm.cfg.NavigationTimeout)
	defer cancel()
	if err := page.Fill(stepCtx, sm.cfg.UsernameSelector, account.Email); err != nil {
		return stepError(ctx, "fill username", err)
	}
	if err := page.Fill(stepCtx, sm.cfg.PasswordSelector, account.Password); err != nil {
		return stepError(ctx, "fill password", err)
	}
	if err := page.Click(stepCtx, sm.cfg.SubmitSelector); err != nil {
		return stepError(ctx, "submit login", err)
	}

	if err := page.WaitForSelector(ctx, sm.cfg.PostLoginSelector, sm.cfg.LoginTimeout); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: post-login page did not appear within %s%s", models.ErrAuth, sm.cfg.LoginTimeout, sm.diagnose(ctx, page))
	}
	return nil
}

type pageState struct {
	URL       string `json:"url"`
	Challenge bool   `json:"challenge"`
}

// diagnose describes where the login flow ended up, for the error message
func (sm *SessionManager) diagnose(ctx context.Context, page browser.Page) string {
	diagCtx, cancel := context.WithTimeout(ctx, diagnoseTimeout)
	defer cancel()

	var state pageState
	if err := page.Evaluate(diagCtx, diagnoseScript, &state); err != nil || state.URL == "" {
		return ""
	}
	if state.Challenge {
		return fmt.Sprintf(" (security checkpoint at %s)", state.URL)
	}
	return fmt.Sprintf(" (stopped at %s)", state.URL)
}

// stepError marks a failed login step as an auth failure. Caller cancellation passes through.
func stepError(ctx context.Context, step string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("%w: %s: %w", models.ErrAuth, step, err)
}
