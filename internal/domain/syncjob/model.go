package syncjob

import (
	"fmt"
	"time"
)

// Job statuses form a one-way lifecycle; succeeded and failed are terminal.
const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// MaxErrorLength bounds the persisted failure message.
const MaxErrorLength = 1000

// Job is one asynchronous ingestion run request and its outcome.
type Job struct {
	ID               string
	Season           int
	IncludeSecondary bool
	Status           string
	Error            string
	Summary          map[string]any
	CreatedAt        time.Time
	StartedAt        *time.Time
	FinishedAt       *time.Time
}

func (j Job) Terminal() bool {
	return j.Status == StatusSucceeded || j.Status == StatusFailed
}

func (j Job) Validate() error {
	if j.Season <= 0 {
		return fmt.Errorf("sync job season must be greater than zero")
	}
	switch j.Status {
	case StatusQueued, StatusRunning, StatusSucceeded, StatusFailed:
		return nil
	default:
		return fmt.Errorf("unknown sync job status %q", j.Status)
	}
}

// TruncateError clips a failure message to the persisted limit.
func TruncateError(message string) string {
	if len(message) > MaxErrorLength {
		return message[:MaxErrorLength]
	}
	return message
}
