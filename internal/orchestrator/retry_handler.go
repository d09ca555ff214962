package orchestrator

import (
	"context"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"linkedin-leads/internal/storage"
	"linkedin-leads/internal/utils"
)

const retryBaseDelay = 50 * time.Millisecond

// RetryHandler retries store writes that failed on lock contention
type RetryHandler struct {
	attempts int
	logger   *zap.Logger

	backoff func(attempt int) time.Duration
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewRetryHandler creates a new RetryHandler making at most attempts tries
func NewRetryHandler(attempts int, logger *zap.Logger) *RetryHandler {
	if attempts < 1 {
		attempts = 1
	}
	return &RetryHandler{
		attempts: attempts,
		logger:   logger,
		backoff:  jitteredBackoff,
		sleep:    utils.Sleep,
	}
}

// Do runs op until it succeeds, fails with a non-transient error or the
// attempts run out. The last error is returned.
func (rh *RetryHandler) Do(ctx context.Context, op func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= rh.attempts; attempt++ {
		if err = op(ctx); err == nil || !storage.IsTransient(err) {
			return err
		}
		if attempt == rh.attempts {
			break
		}
		delay := rh.backoff(attempt)
		rh.logger.Debug("store busy, retrying", zap.Int("attempt", attempt), zap.Duration("delay", delay), zap.Error(err))
		if sleepErr := rh.sleep(ctx, delay); sleepErr != nil {
			return sleepErr
		}
	}
	return err
}

// jitteredBackoff grows linearly and adds up to one base delay of jitter
func jitteredBackoff(attempt int) time.Duration {
	return time.Duration(attempt)*retryBaseDelay + rand.N(retryBaseDelay)
}
