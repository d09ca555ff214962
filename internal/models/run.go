package models

import "time"

// RunStatus is the lifecycle state of one scrape run
type RunStatus string

const (
	RunQueued    RunStatus = "queued"
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// ScrapeRun summarises one call to the scraper
type ScrapeRun struct {
	ID         string     `json:"id"`
	TargetURL  string     `json:"targetUrl"`
	Status     RunStatus  `json:"status"`
	QueuedAt   time.Time  `json:"queuedAt"`
	StartedAt  *time.Time `json:"startedAt,omitempty"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	Cards      int        `json:"cards"`
	Skipped    int        `json:"skipped"`
	Profiles   int        `json:"profiles"`
	Warnings   int        `json:"warnings"`
	Error      string     `json:"error,omitempty"`
}
