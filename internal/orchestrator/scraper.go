package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"linkedin-leads/internal/auth"
	"linkedin-leads/internal/browser"
	"linkedin-leads/internal/crawler"
	"linkedin-leads/internal/metrics"
	"linkedin-leads/internal/models"
	"linkedin-leads/internal/utils"
)

// Sessions hands out logged-in browser sessions and releases them when fn returns
type Sessions interface {
	WithSession(ctx context.Context, account models.Account, fn func(*auth.Session) error) error
}

// Revealer loads a search page and returns its result cards
type Revealer interface {
	Reveal(ctx context.Context, page browser.Page, targetURL string) ([]crawler.CardHandle, error)
}

// ProfileStore commits one profile keyed on its profile URL
type ProfileStore interface {
	Upsert(ctx context.Context, profile models.ProfileRecord) (models.ProfileRecord, error)
}

// Result is what one scrape produced
type Result struct {
	RunID    string
	Profiles []models.ProfileRecord
	Warnings int
}

// Scraper runs the scrape pipeline: login, reveal, parse, cap, upsert.
// Runs sharing a LinkedIn account are queued one behind the other.
type Scraper struct {
	account  models.Account
	cfg      models.ScrapeConfig
	sessions Sessions
	revealer Revealer
	batch    *BatchProcessor
	state    *StateManager
	metrics  *metrics.Metrics
	logger   *zap.Logger

	locksMu sync.Mutex
	locks   map[string]*semaphore.Weighted
}

// NewScraper creates a new Scraper instance
func NewScraper(cfg models.Config, sessions Sessions, revealer Revealer, parser crawler.CardParser, store ProfileStore, m *metrics.Metrics, logger *zap.Logger) *Scraper {
	retry := NewRetryHandler(cfg.Scrape.UpsertAttempts, logger)
	return &Scraper{
		account:  cfg.Account,
		cfg:      cfg.Scrape,
		sessions: sessions,
		revealer: revealer,
		batch:    NewBatchProcessor(parser, store, retry, cfg.Scrape.ResultCap, m),
		state:    NewStateManager(cfg.Scrape.HistorySize),
		metrics:  m,
		logger:   logger,
		locks:    make(map[string]*semaphore.Weighted),
	}
}

// Scrape runs targetURL with the configured account
func (s *Scraper) Scrape(ctx context.Context, targetURL string) (Result, error) {
	return s.ScrapeAs(ctx, s.account, targetURL)
}

// ScrapeAs runs targetURL logged in as account. It returns the profiles
// committed by this call in discovery order, at most the result cap.
func (s *Scraper) ScrapeAs(ctx context.Context, account models.Account, targetURL string) (Result, error) {
	targetURL = strings.TrimSpace(targetURL)
	if err := ValidateTargetURL(targetURL); err != nil {
		return Result{}, err
	}
	if account.Empty() {
		return Result{}, fmt.Errorf("%w: missing LinkedIn credentials", models.ErrConfig)
	}

	runID := s.state.Queue(targetURL)
	log := s.logger.With(zap.String("run_id", runID), zap.String("target_url", targetURL))

	lock := s.lockFor(account)
	if err := lock.Acquire(ctx, 1); err != nil {
		s.state.Finish(runID, BatchStats{}, err)
		s.metrics.ObserveRun(outcome(err), 0)
		return Result{RunID: runID}, err
	}
	defer lock.Release(1)

	s.state.Start(runID)
	s.metrics.ScrapesInFlight.Inc()
	defer s.metrics.ScrapesInFlight.Dec()
	started := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	var stats BatchStats
	var stored []models.ProfileRecord
	err := s.sessions.WithSession(ctx, account, func(session *auth.Session) error {
		log := log.With(zap.String("session_id", session.ID))

		cards, err := s.revealer.Reveal(ctx, session.Page, targetURL)
		if err != nil {
			return err
		}
		profiles := s.batch.Parse(cards, &stats, log)
		stored, err = s.batch.Persist(ctx, profiles, &stats, log)
		return err
	})

	elapsed := time.Since(started)
	s.state.Finish(runID, stats, err)
	s.metrics.ObserveRun(outcome(err), elapsed)

	fields := []zap.Field{
		zap.Int("cards", stats.Cards),
		zap.Int("skipped", stats.Skipped),
		zap.Int("duplicates", stats.Duplicates),
		zap.Int("upserted", stats.Upserted),
		zap.Int("warnings", stats.Warnings),
		zap.String("elapsed", utils.FormatDuration(elapsed)),
	}
	if err != nil {
		log.Error("scrape failed", append(fields, zap.Error(err))...)
		return Result{RunID: runID, Profiles: stored, Warnings: stats.Warnings}, err
	}
	log.Info("scrape finished", fields...)
	return Result{RunID: runID, Profiles: stored, Warnings: stats.Warnings}, nil
}

// Runs returns the recent scrape runs, newest first
func (s *Scraper) Runs() []models.ScrapeRun {
	return s.state.Runs()
}

func (s *Scraper) lockFor(account models.Account) *semaphore.Weighted {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	key := account.Key()
	lock, ok := s.locks[key]
	if !ok {
		lock = semaphore.NewWeighted(1)
		s.locks[key] = lock
	}
	return lock
}

// ValidateTargetURL accepts absolute http(s) URLs only
func ValidateTargetURL(targetURL string) error {
	if targetURL == "" {
		return fmt.Errorf("%w: searchUrl is required", models.ErrValidation)
	}
	u, err := url.Parse(targetURL)
	if err != nil {
		return fmt.Errorf("%w: searchUrl is not a valid URL: %w", models.ErrValidation, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: searchUrl must be an absolute http(s) URL", models.ErrValidation)
	}
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, models.ErrAuth):
		return "auth_error"
	case errors.Is(err, models.ErrNavigationTimeout):
		return "navigation_timeout"
	case errors.Is(err, models.ErrNoResults):
		return "no_results"
	case errors.Is(err, models.ErrStoreUnavailable):
		return "store_unavailable"
	case errors.Is(err, models.ErrConfig):
		return "config_error"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	}
	return "error"
}
