package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/swaggerdagger987/FDL/internal/domain/screener"
	"github.com/swaggerdagger987/FDL/internal/usecase"
)

func (h *Handler) QueryScreener(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.QueryScreener")
	defer span.End()

	var req screenerQueryRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	filters := make([]usecase.FilterInput, 0, len(req.Filters))
	for _, f := range req.Filters {
		filters = append(filters, usecase.FilterInput{
			Key:      f.Key,
			Op:       f.Op,
			Value:    f.Value,
			ValueMax: f.ValueMax,
		})
	}

	result, err := h.screenerService.Query(ctx, usecase.ScreenerInput{
		Search:        req.Search,
		Position:      req.Position,
		Positions:     req.Positions,
		Team:          req.Team,
		AgeMin:        req.AgeMin,
		AgeMax:        req.AgeMax,
		Filters:       filters,
		SortKey:       req.SortKey,
		SortDirection: req.SortDirection,
		Columns:       req.Columns,
		Limit:         req.Limit,
		Offset:        req.Offset,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "screener query failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, screenerResultToDTO(result))
}

func (h *Handler) ListFilterOptions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFilterOptions")
	defer span.End()

	query := r.URL.Query()
	limit := 0
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(ctx, w, fmt.Errorf("%w: invalid limit %q", usecase.ErrInvalidInput, raw))
			return
		}
		limit = parsed
	}

	options, err := h.screenerService.ListFilterOptions(ctx, usecase.OptionsInput{
		Search:   query.Get("search"),
		Position: query.Get("position"),
		Team:     query.Get("team"),
		Limit:    limit,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "list filter options failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, options)
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	teams, err := h.screenerService.ListTeams(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list teams failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teams)
}

type screenerQueryRequest struct {
	Search        string           `json:"search"`
	Position      string           `json:"position"`
	Positions     []string         `json:"positions" validate:"max=16,dive,required"`
	Team          string           `json:"team"`
	AgeMin        *float64         `json:"age_min"`
	AgeMax        *float64         `json:"age_max"`
	Filters       []filterInputDTO `json:"filters" validate:"max=64,dive"`
	SortKey       string           `json:"sort_key"`
	SortDirection string           `json:"sort_direction"`
	Columns       []string         `json:"columns" validate:"max=120,dive,required"`
	Limit         int              `json:"limit" validate:"min=0,max=500"`
	Offset        int              `json:"offset" validate:"min=0"`
}

type filterInputDTO struct {
	Key      string `json:"key" validate:"required"`
	Op       string `json:"op"`
	Value    any    `json:"value"`
	ValueMax any    `json:"value_max"`
}

type screenerRowDTO struct {
	ID       string             `json:"id"`
	FullName string             `json:"fullName"`
	Position string             `json:"position"`
	Team     string             `json:"team"`
	Status   string             `json:"status"`
	Age      *float64           `json:"age,omitempty"`
	YearsExp *int               `json:"yearsExp,omitempty"`
	Metrics  map[string]float64 `json:"metrics"`
}

type screenerResultDTO struct {
	Items          []screenerRowDTO  `json:"items"`
	Total          int               `json:"total"`
	Columns        []string          `json:"columns"`
	AppliedFilters []screener.Filter `json:"appliedFilters"`
	AppliedSort    screener.Sort     `json:"appliedSort"`
}

func screenerResultToDTO(result usecase.ScreenerResult) screenerResultDTO {
	items := make([]screenerRowDTO, 0, len(result.Items))
	for _, row := range result.Items {
		items = append(items, screenerRowDTO{
			ID:       row.Player.ID,
			FullName: row.Player.FullName,
			Position: row.Player.Position,
			Team:     row.Player.Team,
			Status:   row.Player.Status,
			Age:      row.Player.Age,
			YearsExp: row.Player.YearsExp,
			Metrics:  row.Metrics,
		})
	}

	return screenerResultDTO{
		Items:          items,
		Total:          result.Total,
		Columns:        result.Columns,
		AppliedFilters: result.AppliedFilters,
		AppliedSort:    result.AppliedSort,
	}
}
