package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/swaggerdagger987/FDL/internal/domain/weeklystat"
	"github.com/swaggerdagger987/FDL/internal/usecase"
)

func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayer")
	defer span.End()

	playerID := strings.TrimSpace(r.PathValue("playerID"))
	detail, err := h.playerService.GetPlayer(ctx, playerID)
	if err != nil {
		h.logger.WarnContext(ctx, "get player failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerDetailToDTO(detail))
}

func (h *Handler) GetPlayerHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerHistory")
	defer span.End()

	playerID := strings.TrimSpace(r.PathValue("playerID"))
	query := r.URL.Query()

	season := 0
	if raw := strings.TrimSpace(query.Get("season")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(ctx, w, fmt.Errorf("%w: invalid season %q", usecase.ErrInvalidInput, raw))
			return
		}
		season = parsed
	}
	limit := 0
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(ctx, w, fmt.Errorf("%w: invalid limit %q", usecase.ErrInvalidInput, raw))
			return
		}
		limit = parsed
	}

	history, err := h.playerService.GetHistory(ctx, playerID, season, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "get player history failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]weeklyStatDTO, 0, len(history))
	for _, stat := range history {
		items = append(items, weeklyStatToDTO(stat))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

type playerDetailDTO struct {
	ID               string             `json:"id"`
	FullName         string             `json:"fullName"`
	FirstName        string             `json:"firstName"`
	LastName         string             `json:"lastName"`
	Position         string             `json:"position"`
	Team             string             `json:"team"`
	Status           string             `json:"status"`
	Age              *float64           `json:"age,omitempty"`
	YearsExp         *int               `json:"yearsExp,omitempty"`
	GsisID           string             `json:"gsisId,omitempty"`
	EspnID           string             `json:"espnId,omitempty"`
	YahooID          string             `json:"yahooId,omitempty"`
	FantasyPositions []string           `json:"fantasyPositions,omitempty"`
	Metrics          map[string]float64 `json:"metrics"`
	UpdatedAt        string             `json:"updatedAt"`
}

type weeklyStatDTO struct {
	Season               int      `json:"season"`
	Week                 int      `json:"week"`
	SeasonType           string   `json:"seasonType"`
	Team                 string   `json:"team"`
	OpponentTeam         string   `json:"opponentTeam,omitempty"`
	FantasyPointsPPR     *float64 `json:"fantasyPointsPpr,omitempty"`
	FantasyPointsHalfPPR *float64 `json:"fantasyPointsHalfPpr,omitempty"`
	FantasyPointsStd     *float64 `json:"fantasyPointsStd,omitempty"`
	PassingYards         *float64 `json:"passingYards,omitempty"`
	RushingYards         *float64 `json:"rushingYards,omitempty"`
	ReceivingYards       *float64 `json:"receivingYards,omitempty"`
	Receptions           *float64 `json:"receptions,omitempty"`
	Touchdowns           *float64 `json:"touchdowns,omitempty"`
	Turnovers            *float64 `json:"turnovers,omitempty"`
	Source               string   `json:"source"`
	UpdatedAt            string   `json:"updatedAt"`
}

func playerDetailToDTO(detail usecase.PlayerDetail) playerDetailDTO {
	return playerDetailDTO{
		ID:               detail.Player.ID,
		FullName:         detail.Player.FullName,
		FirstName:        detail.Player.FirstName,
		LastName:         detail.Player.LastName,
		Position:         detail.Player.Position,
		Team:             detail.Player.Team,
		Status:           detail.Player.Status,
		Age:              detail.Player.Age,
		YearsExp:         detail.Player.YearsExp,
		GsisID:           detail.Player.GsisID,
		EspnID:           detail.Player.EspnID,
		YahooID:          detail.Player.YahooID,
		FantasyPositions: append([]string(nil), detail.Player.FantasyPositions...),
		Metrics:          detail.Metrics,
		UpdatedAt:        detail.Player.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func weeklyStatToDTO(stat weeklystat.Stat) weeklyStatDTO {
	return weeklyStatDTO{
		Season:               stat.Season,
		Week:                 stat.Week,
		SeasonType:           stat.SeasonType,
		Team:                 stat.Team,
		OpponentTeam:         stat.OpponentTeam,
		FantasyPointsPPR:     stat.FantasyPointsPPR,
		FantasyPointsHalfPPR: stat.FantasyPointsHalfPPR,
		FantasyPointsStd:     stat.FantasyPointsStd,
		PassingYards:         stat.PassingYards,
		RushingYards:         stat.RushingYards,
		ReceivingYards:       stat.ReceivingYards,
		Receptions:           stat.Receptions,
		Touchdowns:           stat.Touchdowns,
		Turnovers:            stat.Turnovers,
		Source:               stat.Source,
		UpdatedAt:            stat.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
