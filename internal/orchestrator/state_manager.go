package orchestrator

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"linkedin-leads/internal/models"
)

// StateManager keeps the most recent scrape runs in memory
type StateManager struct {
	mu   sync.Mutex
	size int
	runs []*models.ScrapeRun // oldest first
	now  func() time.Time
}

// NewStateManager creates a new StateManager keeping at most size runs
func NewStateManager(size int) *StateManager {
	if size < 1 {
		size = 1
	}
	return &StateManager{size: size, now: time.Now}
}

// Queue records a new run waiting for its credential slot and returns its ID
func (sm *StateManager) Queue(targetURL string) string {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	run := &models.ScrapeRun{
		ID:        uuid.NewString(),
		TargetURL: targetURL,
		Status:    models.RunQueued,
		QueuedAt:  sm.now(),
	}
	sm.runs = append(sm.runs, run)
	if len(sm.runs) > sm.size {
		sm.runs = sm.runs[len(sm.runs)-sm.size:]
	}
	return run.ID
}

// Start marks the run as holding a session
func (sm *StateManager) Start(id string) {
	sm.update(id, func(run *models.ScrapeRun) {
		now := sm.now()
		run.Status = models.RunRunning
		run.StartedAt = &now
	})
}

// Finish records the outcome of a run. A nil err means success.
func (sm *StateManager) Finish(id string, stats BatchStats, err error) {
	sm.update(id, func(run *models.ScrapeRun) {
		now := sm.now()
		run.FinishedAt = &now
		run.Cards = stats.Cards
		run.Skipped = stats.Skipped
		run.Profiles = stats.Upserted
		run.Warnings = stats.Warnings
		run.Status = models.RunSucceeded
		if err != nil {
			run.Status = models.RunFailed
			run.Error = err.Error()
		}
	})
}

func (sm *StateManager) update(id string, fn func(*models.ScrapeRun)) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for i := len(sm.runs) - 1; i >= 0; i-- {
		if sm.runs[i].ID == id {
			fn(sm.runs[i])
			return
		}
	}
}

// Runs returns copies of the kept runs, newest first
func (sm *StateManager) Runs() []models.ScrapeRun {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	runs := make([]models.ScrapeRun, 0, len(sm.runs))
	for i := len(sm.runs) - 1; i >= 0; i-- {
		runs = append(runs, *sm.runs[i])
	}
	return runs
}
