package syncjob

import "context"

// Repository persists sync job lifecycle records.
type Repository interface {
	Create(ctx context.Context, job Job) error
	GetByID(ctx context.Context, jobID string) (Job, bool, error)
	// GetActive returns the queued or running job, if any. At most one job is
	// active system-wide.
	GetActive(ctx context.Context) (Job, bool, error)
	MarkRunning(ctx context.Context, jobID string) error
	MarkSucceeded(ctx context.Context, jobID string, summary map[string]any) error
	MarkFailed(ctx context.Context, jobID string, message string) error
}
