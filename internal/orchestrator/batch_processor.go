package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"linkedin-leads/internal/crawler"
	"linkedin-leads/internal/metrics"
	"linkedin-leads/internal/models"
)

// BatchStats counts what happened to the cards of one run
type BatchStats struct {
	Cards      int
	Skipped    int
	Duplicates int
	Upserted   int
	Warnings   int
}

// BatchProcessor turns harvested cards into stored profiles
type BatchProcessor struct {
	parser  crawler.CardParser
	store   ProfileStore
	retry   *RetryHandler
	cap     int
	metrics *metrics.Metrics
}

// NewBatchProcessor creates a new BatchProcessor keeping at most resultCap
// profiles per batch
func NewBatchProcessor(parser crawler.CardParser, store ProfileStore, retry *RetryHandler, resultCap int, m *metrics.Metrics) *BatchProcessor {
	return &BatchProcessor{
		parser:  parser,
		store:   store,
		retry:   retry,
		cap:     resultCap,
		metrics: m,
	}
}

// Parse converts cards to profiles in DOM order, dropping unparseable cards
// and repeated profile URLs, and stops once the cap is reached
func (bp *BatchProcessor) Parse(cards []crawler.CardHandle, stats *BatchStats, log *zap.Logger) []models.ProfileRecord {
	stats.Cards = len(cards)
	profiles := make([]models.ProfileRecord, 0, min(len(cards), bp.cap))
	seen := make(map[string]struct{}, len(cards))

	for i, card := range cards {
		if len(profiles) == bp.cap {
			break
		}
		profile, ok, err := bp.parser.Parse(card)
		if err != nil {
			err = fmt.Errorf("%w: card %d: %w", models.ErrExtraction, i, err)
			log.Debug("skipping card", zap.Error(err))
		}
		if err != nil || !ok {
			stats.Skipped++
			bp.metrics.CardsSkipped.Inc()
			continue
		}
		if _, dup := seen[profile.ProfileURL]; dup {
			stats.Duplicates++
			continue
		}
		seen[profile.ProfileURL] = struct{}{}
		profiles = append(profiles, profile)
	}
	return profiles
}

// Persist upserts each profile on its own. Rejected profiles become warnings
// and the rest of the batch continues; an unreachable store or a cancelled
// context stops the batch. Profiles committed before a failure stay committed.
func (bp *BatchProcessor) Persist(ctx context.Context, profiles []models.ProfileRecord, stats *BatchStats, log *zap.Logger) ([]models.ProfileRecord, error) {
	stored := make([]models.ProfileRecord, 0, len(profiles))
	for _, profile := range profiles {
		var committed models.ProfileRecord
		err := bp.retry.Do(ctx, func(ctx context.Context) error {
			var err error
			committed, err = bp.store.Upsert(ctx, profile)
			return err
		})

		switch {
		case err == nil:
			stored = append(stored, committed)
			stats.Upserted++
			bp.metrics.ProfilesUpserted.Inc()
		case ctx.Err() != nil:
			return stored, ctx.Err()
		case errors.Is(err, models.ErrStoreUnavailable):
			return stored, err
		default:
			stats.Warnings++
			bp.metrics.PersistenceWarnings.Inc()
			log.Warn("profile not persisted", zap.String("profile_url", profile.ProfileURL), zap.Error(err))
		}
	}
	return stored, nil
}
