package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"linkedin-leads/internal/models"
	"linkedin-leads/internal/storage"
)

func newTestRetry(attempts int) (*RetryHandler, *[]time.Duration) {
	rh := NewRetryHandler(attempts, zap.NewNop())
	var delays []time.Duration
	rh.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	return rh, &delays
}

func TestRetryHandlerStopsOnNonTransientError(t *testing.T) {
	rh, delays := newTestRetry(5)
	calls := 0
	err := rh.Do(context.Background(), func(context.Context) error {
		calls++
		return models.ErrPersistence
	})
	assert.ErrorIs(t, err, models.ErrPersistence)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *delays)
}

func TestRetryHandlerRetriesBusy(t *testing.T) {
	rh, delays := newTestRetry(3)
	busy := fmt.Errorf("%w: database is locked", storage.ErrBusy)
	calls := 0
	err := rh.Do(context.Background(), func(context.Context) error {
		calls++
		return busy
	})
	assert.ErrorIs(t, err, storage.ErrBusy)
	assert.Equal(t, 3, calls)
	assert.Len(t, *delays, 2, "no sleep after the last attempt")
	for i, d := range *delays {
		assert.GreaterOrEqual(t, d, time.Duration(i+1)*retryBaseDelay)
		assert.Less(t, d, time.Duration(i+2)*retryBaseDelay)
	}
}

func TestRetryHandlerSleepCancelled(t *testing.T) {
	rh := NewRetryHandler(3, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := rh.Do(ctx, func(context.Context) error {
		return fmt.Errorf("%w: busy", storage.ErrBusy)
	})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNewRetryHandlerClampsAttempts(t *testing.T) {
	rh, _ := newTestRetry(0)
	calls := 0
	_ = rh.Do(context.Background(), func(context.Context) error {
		calls++
		return storage.ErrBusy
	})
	assert.Equal(t, 1, calls)
}
