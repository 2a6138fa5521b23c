package usecase

import (
	"context"
	"fmt"

	"github.com/swaggerdagger987/FDL/internal/domain/metric"
	"github.com/swaggerdagger987/FDL/internal/domain/player"
	"github.com/swaggerdagger987/FDL/internal/domain/weeklystat"
	"github.com/swaggerdagger987/FDL/internal/platform/logging"
)

const (
	defaultHistoryLimit = 36
	maxHistoryLimit     = 200
)

// PlayerDetail pairs a player record with its materialized latest metrics.
type PlayerDetail struct {
	Player  player.Player
	Metrics map[string]float64
}

type PlayerService struct {
	playerRepo player.Repository
	statRepo   weeklystat.Repository
	metricRepo metric.Repository
	logger     *logging.Logger
}

func NewPlayerService(
	playerRepo player.Repository,
	statRepo weeklystat.Repository,
	metricRepo metric.Repository,
	logger *logging.Logger,
) *PlayerService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PlayerService{
		playerRepo: playerRepo,
		statRepo:   statRepo,
		metricRepo: metricRepo,
		logger:     logger,
	}
}

func (s *PlayerService) GetPlayer(ctx context.Context, playerID string) (PlayerDetail, error) {
	ctx, span := startUsecaseSpan(ctx, "PlayerService.GetPlayer")
	defer span.End()

	if playerID == "" {
		return PlayerDetail{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	p, ok, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return PlayerDetail{}, fmt.Errorf("get player: %w", err)
	}
	if !ok {
		return PlayerDetail{}, fmt.Errorf("%w: player %s", ErrNotFound, playerID)
	}

	latest, err := s.metricRepo.GetLatestForPlayer(ctx, playerID)
	if err != nil {
		return PlayerDetail{}, fmt.Errorf("get latest metrics: %w", err)
	}

	metrics := make(map[string]float64, len(latest))
	for _, row := range latest {
		metrics[row.StatKey] = row.Value
	}
	return PlayerDetail{Player: p, Metrics: metrics}, nil
}

// GetHistory returns weekly stat lines for a player, newest first.
func (s *PlayerService) GetHistory(ctx context.Context, playerID string, season, limit int) ([]weeklystat.Stat, error) {
	ctx, span := startUsecaseSpan(ctx, "PlayerService.GetHistory")
	defer span.End()

	if playerID == "" {
		return nil, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	history, err := s.statRepo.ListHistory(ctx, weeklystat.HistoryQuery{
		PlayerID: playerID,
		Season:   season,
		Limit:    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return history, nil
}
