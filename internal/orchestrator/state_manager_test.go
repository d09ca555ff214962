package orchestrator

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkedin-leads/internal/models"
)

func TestStateManagerKeepsNewestRuns(t *testing.T) {
	sm := NewStateManager(3)
	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, sm.Queue(fmt.Sprintf("https://www.linkedin.com/search/%d", i)))
	}

	runs := sm.Runs()
	require.Len(t, runs, 3)
	assert.Equal(t, ids[4], runs[0].ID)
	assert.Equal(t, ids[2], runs[2].ID)
	assert.Equal(t, models.RunQueued, runs[0].Status)

	// evicted runs are ignored
	sm.Finish(ids[0], BatchStats{}, nil)
	for _, run := range sm.Runs() {
		assert.NotEqual(t, ids[0], run.ID)
	}
}

func TestStateManagerLifecycle(t *testing.T) {
	sm := NewStateManager(10)
	ok := sm.Queue("https://www.linkedin.com/search/ok")
	bad := sm.Queue("https://www.linkedin.com/search/bad")

	sm.Start(ok)
	sm.Finish(ok, BatchStats{Cards: 12, Skipped: 2, Upserted: 9, Warnings: 1}, nil)
	sm.Start(bad)
	sm.Finish(bad, BatchStats{}, errors.New("navigation timeout"))

	runs := sm.Runs()
	require.Len(t, runs, 2)

	assert.Equal(t, models.RunFailed, runs[0].Status)
	assert.Equal(t, "navigation timeout", runs[0].Error)

	assert.Equal(t, models.RunSucceeded, runs[1].Status)
	assert.Equal(t, 12, runs[1].Cards)
	assert.Equal(t, 9, runs[1].Profiles)
	assert.Equal(t, 1, runs[1].Warnings)
	require.NotNil(t, runs[1].StartedAt)
	require.NotNil(t, runs[1].FinishedAt)
	assert.False(t, runs[1].FinishedAt.Before(*runs[1].StartedAt))
}

func TestStateManagerRunsAreCopies(t *testing.T) {
	sm := NewStateManager(1)
	sm.Queue("https://www.linkedin.com/search/x")

	runs := sm.Runs()
	runs[0].Status = models.RunSucceeded
	assert.Equal(t, models.RunQueued, sm.Runs()[0].Status)
}
