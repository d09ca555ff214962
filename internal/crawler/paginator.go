package crawler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"linkedin-leads/internal/browser"
	"linkedin-leads/internal/models"
	"linkedin-leads/internal/utils"
)

// CardHandle is the outer HTML of one result card as rendered
type CardHandle string

// Paginator drives scroll-triggered lazy loading on a search result page
type Paginator struct {
	cfg        models.PaginationConfig
	selectors  models.CardSelectors
	navTimeout time.Duration
	logger     *zap.Logger

	jitter func() time.Duration
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewPaginator creates a new Paginator instance
func NewPaginator(cfg models.PaginationConfig, selectors models.CardSelectors, navTimeout time.Duration, logger *zap.Logger) *Paginator {
	p := &Paginator{
		cfg:        cfg,
		selectors:  selectors,
		navTimeout: navTimeout,
		logger:     logger,
		sleep:      utils.Sleep,
	}
	p.jitter = p.randomJitter
	return p
}

// Reveal navigates to targetURL, scrolls up to the configured number of
// iterations and returns the result cards in DOM order. Every call starts over
// from a fresh navigation.
//
// A page that never renders a result container fails with ErrNoResults; a
// container without cards returns an empty slice.
func (p *Paginator) Reveal(ctx context.Context, page browser.Page, targetURL string) ([]CardHandle, error) {
	log := p.logger.With(zap.String("target_url", targetURL))

	navCtx, cancel := context.WithTimeout(ctx, p.navTimeout)
	err := page.Navigate(navCtx, targetURL)
	cancel()
	if err != nil {
		return nil, navigationError(ctx, "navigate to search page", err)
	}
	if err := waitUntil(ctx, page, p.cfg.SettleTimeout, p.cfg.PollInterval, `document.readyState === "complete"`); err != nil {
		return nil, navigationError(ctx, "wait for search page to settle", err)
	}

	seen, err := p.countCards(ctx, page)
	if err != nil {
		return nil, err
	}
	for i := 1; i <= p.cfg.RevealIterations; i++ {
		if err := page.Scroll(ctx, p.cfg.ScrollDelta); err != nil {
			return nil, fmt.Errorf("scroll iteration %d: %w", i, err)
		}
		if err := p.sleep(ctx, p.jitter()); err != nil {
			return nil, err
		}

		count, err := p.countCards(ctx, page)
		if err != nil {
			return nil, err
		}
		log.Debug("reveal iteration", zap.Int("iteration", i), zap.Int("cards", count))

		// an empty page may still be rendering, so only stop once cards have shown up
		if count > 0 && count <= seen {
			break
		}
		seen = count
	}

	if err := page.WaitForSelector(ctx, p.selectors.Container, p.cfg.ResultsTimeout); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: no result container after %s: %w", models.ErrNoResults, p.cfg.ResultsTimeout, err)
	}

	cards, err := p.harvest(ctx, page)
	if err != nil {
		return nil, err
	}
	log.Info("cards harvested", zap.Int("cards", len(cards)))
	return cards, nil
}

// cardScript builds an expression over the result cards: every card element
// that contains a result container, mapped with body.
func (p *Paginator) cardScript(body string) string {
	card, _ := json.Marshal(p.selectors.Card)
	container, _ := json.Marshal(p.selectors.Container)
	return fmt.Sprintf(`Array.from(document.querySelectorAll(%s)).filter(c => c.querySelector(%s))%s`, card, container, body)
}

func (p *Paginator) countCards(ctx context.Context, page browser.Page) (int, error) {
	var n int
	if err := page.Evaluate(ctx, p.cardScript(".length"), &n); err != nil {
		return 0, fmt.Errorf("count cards: %w", err)
	}
	return n, nil
}

func (p *Paginator) harvest(ctx context.Context, page browser.Page) ([]CardHandle, error) {
	var html []string
	if err := page.Evaluate(ctx, p.cardScript(".map(c => c.outerHTML)"), &html); err != nil {
		return nil, fmt.Errorf("harvest cards: %w", err)
	}
	cards := make([]CardHandle, 0, len(html))
	for _, h := range html {
		cards = append(cards, CardHandle(h))
	}
	return cards, nil
}

// randomJitter picks a delay in [JitterMin, JitterMax] so iterations do not
// share a uniform timing signature
func (p *Paginator) randomJitter() time.Duration {
	spread := p.cfg.JitterMax - p.cfg.JitterMin
	if spread <= 0 {
		return p.cfg.JitterMin
	}
	return p.cfg.JitterMin + rand.N(spread+1)
}

func navigationError(ctx context.Context, step string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, browser.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %w", models.ErrNavigationTimeout, step, err)
	}
	return fmt.Errorf("%s: %w", step, err)
}
