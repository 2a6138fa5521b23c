package usecase

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/panjf2000/ants/v2"

	"github.com/swaggerdagger987/FDL/internal/domain/syncjob"
	"github.com/swaggerdagger987/FDL/internal/platform/id"
	"github.com/swaggerdagger987/FDL/internal/platform/logging"
)

const jobDebounceWindow = 2 * time.Second

// SyncRunner is the synchronous ingestion entrypoint executed by queued jobs.
type SyncRunner interface {
	RunSync(ctx context.Context, season int, includeSecondary bool) (SyncSummary, error)
}

type SyncJobConfig struct {
	DebounceWindow time.Duration
	JobTimeout     time.Duration
}

// SyncJobService owns the asynchronous job lifecycle. Execution is strictly
// serial: a single-worker pool drains queued jobs one at a time, and at most
// one job may be queued or running system-wide.
type SyncJobService struct {
	jobRepo syncjob.Repository
	runner  SyncRunner
	idGen   id.Generator
	cfg     SyncJobConfig
	logger  *logging.Logger
	now     func() time.Time

	pool *ants.Pool
	wg   sync.WaitGroup

	mu        sync.Mutex
	recentKey string
	recentJob syncjob.Job
	recentAt  time.Time
}

func NewSyncJobService(
	jobRepo syncjob.Repository,
	runner SyncRunner,
	idGen id.Generator,
	cfg SyncJobConfig,
	logger *logging.Logger,
) (*SyncJobService, error) {
	if idGen == nil {
		idGen = id.NewRandomGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.DebounceWindow <= 0 {
		cfg.DebounceWindow = jobDebounceWindow
	}

	pool, err := ants.NewPool(1)
	if err != nil {
		return nil, fmt.Errorf("create sync worker pool: %w", err)
	}

	return &SyncJobService{
		jobRepo: jobRepo,
		runner:  runner,
		idGen:   idGen,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
		pool:    pool,
	}, nil
}

// Close drains in-flight work and releases the worker pool.
func (s *SyncJobService) Close() {
	s.wg.Wait()
	s.pool.Release()
}

// CreateJob accepts a sync request. An identical request inside the debounce
// window returns the same job without touching storage; otherwise an already
// active job is returned as-is; otherwise a new job is created and enqueued.
func (s *SyncJobService) CreateJob(ctx context.Context, season int, includeSecondary bool) (syncjob.Job, error) {
	ctx, span := startUsecaseSpan(ctx, "SyncJobService.CreateJob")
	defer span.End()

	if season <= 0 {
		season = CurrentSeason(s.now())
	}
	requestKey := strconv.Itoa(season) + ":" + strconv.FormatBool(includeSecondary)

	job, created, err := s.claimJob(ctx, season, includeSecondary, requestKey)
	if err != nil {
		return syncjob.Job{}, err
	}
	if !created {
		return job, nil
	}

	s.wg.Add(1)
	if err := s.pool.Submit(func() {
		defer s.wg.Done()
		s.execute(job)
	}); err != nil {
		s.wg.Done()
		failErr := s.jobRepo.MarkFailed(ctx, job.ID, syncjob.TruncateError(err.Error()))
		if failErr != nil {
			s.logger.ErrorContext(ctx, "mark job failed after submit error", "job_id", job.ID, "error", failErr)
		}
		return syncjob.Job{}, fmt.Errorf("enqueue job: %w", err)
	}

	return job, nil
}

// claimJob resolves a request to a job under the service lock. The lock spans
// the debounce check, the active-job lookup and the insert: concurrent
// requests must never observe the gap between "no active job" and the new
// queued row. The second return reports whether the job was created by this
// call and still needs to be enqueued.
func (s *SyncJobService) claimJob(ctx context.Context, season int, includeSecondary bool, requestKey string) (syncjob.Job, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.recentKey == requestKey && s.recentJob.ID != "" && s.now().Sub(s.recentAt) < s.cfg.DebounceWindow {
		return s.recentJob, false, nil
	}

	if active, ok, err := s.jobRepo.GetActive(ctx); err != nil {
		return syncjob.Job{}, false, fmt.Errorf("lookup active job: %w", err)
	} else if ok {
		return active, false, nil
	}

	jobID, err := s.idGen.NewID()
	if err != nil {
		return syncjob.Job{}, false, fmt.Errorf("generate job id: %w", err)
	}

	job := syncjob.Job{
		ID:               jobID,
		Season:           season,
		IncludeSecondary: includeSecondary,
		Status:           syncjob.StatusQueued,
		CreatedAt:        s.now().UTC(),
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return syncjob.Job{}, false, fmt.Errorf("create job: %w", err)
	}

	s.recentKey = requestKey
	s.recentJob = job
	s.recentAt = s.now()
	return job, true, nil
}

func (s *SyncJobService) GetJob(ctx context.Context, jobID string) (syncjob.Job, error) {
	ctx, span := startUsecaseSpan(ctx, "SyncJobService.GetJob")
	defer span.End()

	if jobID == "" {
		return syncjob.Job{}, fmt.Errorf("%w: job id is required", ErrInvalidInput)
	}
	job, ok, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return syncjob.Job{}, fmt.Errorf("get job: %w", err)
	}
	if !ok {
		return syncjob.Job{}, fmt.Errorf("%w: job %s", ErrNotFound, jobID)
	}
	return job, nil
}

// execute runs one job to completion on the dedicated worker. Jobs carry no
// timeout unless one is configured; committed ingestion batches are never
// rolled back on failure.
func (s *SyncJobService) execute(job syncjob.Job) {
	ctx := context.Background()
	if s.cfg.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.JobTimeout)
		defer cancel()
	}

	if err := s.jobRepo.MarkRunning(ctx, job.ID); err != nil {
		s.logger.Error("mark job running", "job_id", job.ID, "error", err)
		return
	}
	s.logger.Info("sync job started", "job_id", job.ID, "season", job.Season, "include_secondary", job.IncludeSecondary)

	summary, err := s.runner.RunSync(ctx, job.Season, job.IncludeSecondary)
	if err != nil {
		s.logger.Error("sync job failed", "job_id", job.ID, "error", err)
		if markErr := s.jobRepo.MarkFailed(ctx, job.ID, syncjob.TruncateError(err.Error())); markErr != nil {
			s.logger.Error("mark job failed", "job_id", job.ID, "error", markErr)
		}
		return
	}

	if err := s.jobRepo.MarkSucceeded(ctx, job.ID, summaryAsMap(summary)); err != nil {
		s.logger.Error("mark job succeeded", "job_id", job.ID, "error", err)
		return
	}
	s.logger.Info("sync job finished", "job_id", job.ID, "season", job.Season)
}

func summaryAsMap(summary SyncSummary) map[string]any {
	encoded, err := sonic.Marshal(summary)
	if err != nil {
		return map[string]any{"season": summary.Season}
	}
	out := make(map[string]any)
	if err := sonic.Unmarshal(encoded, &out); err != nil {
		return map[string]any{"season": summary.Season}
	}
	return out
}
