package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/swaggerdagger987/FDL/internal/domain/syncjob"
)

type SyncJobRepository struct {
	mu   sync.RWMutex
	jobs map[string]syncjob.Job
	now  func() time.Time
}

func NewSyncJobRepository() *SyncJobRepository {
	return &SyncJobRepository{
		jobs: make(map[string]syncjob.Job),
		now:  time.Now,
	}
}

func (r *SyncJobRepository) Create(_ context.Context, job syncjob.Job) error {
	if err := job.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[job.ID]; exists {
		return fmt.Errorf("job %s already exists", job.ID)
	}
	// Mirrors the partial unique index on active status: at most one job may
	// be queued or running at a time.
	for _, existing := range r.jobs {
		if existing.Status == syncjob.StatusQueued || existing.Status == syncjob.StatusRunning {
			return fmt.Errorf("job %s is already active", existing.ID)
		}
	}
	r.jobs[job.ID] = job
	return nil
}

func (r *SyncJobRepository) GetByID(_ context.Context, jobID string) (syncjob.Job, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[jobID]
	return job, ok, nil
}

func (r *SyncJobRepository) GetActive(_ context.Context) (syncjob.Job, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, job := range r.jobs {
		if job.Status == syncjob.StatusQueued || job.Status == syncjob.StatusRunning {
			return job, true, nil
		}
	}
	return syncjob.Job{}, false, nil
}

func (r *SyncJobRepository) MarkRunning(_ context.Context, jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[jobID]
	if !ok {
		return fmt.Errorf("job %s not found", jobID)
	}
	if job.Terminal() {
		return fmt.Errorf("job %s is already terminal", jobID)
	}

	now := r.now().UTC()
	job.Status = syncjob.StatusRunning
	job.StartedAt = &now
	r.jobs[jobID] = job
	return nil
}

func (r *SyncJobRepository) MarkSucceeded(_ context.Context, jobID string, summary map[string]any) error {
	return r.finish(jobID, syncjob.StatusSucceeded, "", summary)
}

func (r *SyncJobRepository) MarkFailed(_ context.Context, jobID string, message string) error {
	return r.finish(jobID, syncjob.StatusFailed, message, nil)
}

func (r *SyncJobRepository) finish(jobID, status, message string, summary map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[jobID]
	if !ok {
		return fmt.Errorf("job %s not found", jobID)
	}
	if job.Terminal() {
		return fmt.Errorf("job %s is already terminal", jobID)
	}

	now := r.now().UTC()
	job.Status = status
	job.Error = message
	job.Summary = summary
	job.FinishedAt = &now
	r.jobs[jobID] = job
	return nil
}
