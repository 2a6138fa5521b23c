package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/swaggerdagger987/FDL/internal/domain/syncjob"
	qb "github.com/swaggerdagger987/FDL/internal/platform/querybuilder"
)

type SyncJobRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

var syncJobSelectColumns = []string{
	"id",
	"season",
	"include_secondary",
	"status",
	"error_message",
	"summary",
	"created_at",
	"started_at",
	"finished_at",
}

func NewSyncJobRepository(db *sqlx.DB) *SyncJobRepository {
	return &SyncJobRepository{db: db, now: time.Now}
}

func (r *SyncJobRepository) Create(ctx context.Context, job syncjob.Job) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("validate sync job id=%s: %w", job.ID, err)
	}
	if strings.TrimSpace(job.ID) == "" {
		return fmt.Errorf("sync job id is required")
	}

	insertModel := syncJobInsertModel{
		ID:               strings.TrimSpace(job.ID),
		Season:           job.Season,
		IncludeSecondary: job.IncludeSecondary,
		Status:           job.Status,
		ErrorMessage:     job.Error,
		Summary:          encodeJSONMap(job.Summary),
		CreatedAt:        job.CreatedAt.UTC(),
		StartedAt:        nullableTime(job.StartedAt),
		FinishedAt:       nullableTime(job.FinishedAt),
	}

	query, args, err := qb.InsertModel("sync_jobs", insertModel, "")
	if err != nil {
		return fmt.Errorf("build insert sync job query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert sync job id=%s: %w", job.ID, err)
	}
	return nil
}

func (r *SyncJobRepository) GetByID(ctx context.Context, jobID string) (syncjob.Job, bool, error) {
	query, args, err := qb.Select(syncJobSelectColumns...).From("sync_jobs").
		Where(qb.Eq("id", jobID)).
		ToSQL()
	if err != nil {
		return syncjob.Job{}, false, fmt.Errorf("build select sync job query: %w", err)
	}

	var row syncJobTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return syncjob.Job{}, false, nil
		}
		return syncjob.Job{}, false, fmt.Errorf("select sync job id=%s: %w", jobID, err)
	}
	return syncJobFromTableModel(row), true, nil
}

func (r *SyncJobRepository) GetActive(ctx context.Context) (syncjob.Job, bool, error) {
	statuses := []any{syncjob.StatusQueued, syncjob.StatusRunning}
	query, args, err := qb.Select(syncJobSelectColumns...).From("sync_jobs").
		Where(qb.In("status", statuses)).
		OrderBy("created_at DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return syncjob.Job{}, false, fmt.Errorf("build select active sync job query: %w", err)
	}

	var row syncJobTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return syncjob.Job{}, false, nil
		}
		return syncjob.Job{}, false, fmt.Errorf("select active sync job: %w", err)
	}
	return syncJobFromTableModel(row), true, nil
}

// MarkRunning is guarded on the queued status so a terminal job can never be
// restarted.
func (r *SyncJobRepository) MarkRunning(ctx context.Context, jobID string) error {
	query, args, err := qb.Update("sync_jobs").
		Set("status", syncjob.StatusRunning).
		Set("started_at", r.now().UTC()).
		Where(
			qb.Eq("id", jobID),
			qb.Eq("status", syncjob.StatusQueued),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark sync job running query: %w", err)
	}
	return r.execLifecycle(ctx, "running", jobID, query, args)
}

func (r *SyncJobRepository) MarkSucceeded(ctx context.Context, jobID string, summary map[string]any) error {
	query, args, err := qb.Update("sync_jobs").
		Set("status", syncjob.StatusSucceeded).
		Set("summary", encodeJSONMap(summary)).
		Set("error_message", "").
		Set("finished_at", r.now().UTC()).
		Where(
			qb.Eq("id", jobID),
			qb.In("status", []any{syncjob.StatusQueued, syncjob.StatusRunning}),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark sync job succeeded query: %w", err)
	}
	return r.execLifecycle(ctx, "succeeded", jobID, query, args)
}

func (r *SyncJobRepository) MarkFailed(ctx context.Context, jobID string, message string) error {
	query, args, err := qb.Update("sync_jobs").
		Set("status", syncjob.StatusFailed).
		Set("error_message", syncjob.TruncateError(message)).
		Set("finished_at", r.now().UTC()).
		Where(
			qb.Eq("id", jobID),
			qb.In("status", []any{syncjob.StatusQueued, syncjob.StatusRunning}),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark sync job failed query: %w", err)
	}
	return r.execLifecycle(ctx, "failed", jobID, query, args)
}

func (r *SyncJobRepository) execLifecycle(ctx context.Context, target, jobID, query string, args []any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("mark sync job %s id=%s: %w", target, jobID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark sync job %s id=%s rows affected: %w", target, jobID, err)
	}
	if affected == 0 {
		return fmt.Errorf("sync job id=%s is not in a markable state for %s", jobID, target)
	}
	return nil
}

type syncJobInsertModel struct {
	ID               string     `db:"id"`
	Season           int        `db:"season"`
	IncludeSecondary bool       `db:"include_secondary"`
	Status           string     `db:"status"`
	ErrorMessage     string     `db:"error_message"`
	Summary          string     `db:"summary"`
	CreatedAt        time.Time  `db:"created_at"`
	StartedAt        *time.Time `db:"started_at"`
	FinishedAt       *time.Time `db:"finished_at"`
}

type syncJobTableModel struct {
	ID               string     `db:"id"`
	Season           int        `db:"season"`
	IncludeSecondary bool       `db:"include_secondary"`
	Status           string     `db:"status"`
	ErrorMessage     string     `db:"error_message"`
	Summary          []byte     `db:"summary"`
	CreatedAt        time.Time  `db:"created_at"`
	StartedAt        *time.Time `db:"started_at"`
	FinishedAt       *time.Time `db:"finished_at"`
}

func syncJobFromTableModel(row syncJobTableModel) syncjob.Job {
	return syncjob.Job{
		ID:               row.ID,
		Season:           row.Season,
		IncludeSecondary: row.IncludeSecondary,
		Status:           row.Status,
		Error:            row.ErrorMessage,
		Summary:          decodeJSONMap(row.Summary),
		CreatedAt:        row.CreatedAt,
		StartedAt:        row.StartedAt,
		FinishedAt:       row.FinishedAt,
	}
}
