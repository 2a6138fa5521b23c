package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/swaggerdagger987/FDL/internal/domain/syncjob"
	"github.com/swaggerdagger987/FDL/internal/usecase"
)

func (h *Handler) RunSync(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSync")
	defer span.End()

	req, err := decodeSyncRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	summary, err := h.syncService.RunSync(ctx, req.season(), req.IncludeSecondary)
	if err != nil {
		h.logger.ErrorContext(ctx, "blocking sync failed", "season", req.season(), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, summary)
}

func (h *Handler) CreateSyncJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateSyncJob")
	defer span.End()

	req, err := decodeSyncRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	job, err := h.syncJobService.CreateJob(ctx, req.season(), req.IncludeSecondary)
	if err != nil {
		h.logger.WarnContext(ctx, "create sync job failed", "season", req.season(), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusAccepted, syncJobToDTO(job))
}

func (h *Handler) GetSyncJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSyncJob")
	defer span.End()

	jobID := strings.TrimSpace(r.PathValue("jobID"))
	job, err := h.syncJobService.GetJob(ctx, jobID)
	if err != nil {
		h.logger.WarnContext(ctx, "get sync job failed", "job_id", jobID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, syncJobToDTO(job))
}

type syncRequest struct {
	Season           int  `json:"season"`
	IncludeSecondary bool `json:"include_secondary"`
}

// season resolves the requested season, defaulting to the season in progress.
func (r syncRequest) season() int {
	if r.Season > 0 {
		return r.Season
	}
	return usecase.CurrentSeason(time.Now())
}

func decodeSyncRequest(r *http.Request) (syncRequest, error) {
	var req syncRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return syncRequest{}, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return req, nil
}

type syncJobDTO struct {
	ID               string         `json:"id"`
	Season           int            `json:"season"`
	IncludeSecondary bool           `json:"includeSecondary"`
	Status           string         `json:"status"`
	Error            string         `json:"error,omitempty"`
	Summary          map[string]any `json:"summary,omitempty"`
	CreatedAt        string         `json:"createdAt"`
	StartedAt        string         `json:"startedAt,omitempty"`
	FinishedAt       string         `json:"finishedAt,omitempty"`
}

func syncJobToDTO(job syncjob.Job) syncJobDTO {
	dto := syncJobDTO{
		ID:               job.ID,
		Season:           job.Season,
		IncludeSecondary: job.IncludeSecondary,
		Status:           job.Status,
		Error:            job.Error,
		Summary:          job.Summary,
		CreatedAt:        job.CreatedAt.UTC().Format(time.RFC3339),
	}
	if job.StartedAt != nil {
		dto.StartedAt = job.StartedAt.UTC().Format(time.RFC3339)
	}
	if job.FinishedAt != nil {
		dto.FinishedAt = job.FinishedAt.UTC().Format(time.RFC3339)
	}
	return dto
}
