package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/swaggerdagger987/FDL/internal/domain/metric"
	"github.com/swaggerdagger987/FDL/internal/domain/player"
	"github.com/swaggerdagger987/FDL/internal/infrastructure/repository/memory"
	metricmock "github.com/swaggerdagger987/FDL/internal/mocks/domain/metric"
	playermock "github.com/swaggerdagger987/FDL/internal/mocks/domain/player"
)

func TestPlayerService_GetPlayer_SuccessUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	playerRepo := playermock.NewRepository(t)
	metricRepo := metricmock.NewRepository(t)

	service := NewPlayerService(playerRepo, memory.NewWeeklyStatRepository(), metricRepo, nil)
	playerID := "4046"
	expectedPlayer := player.Player{
		ID:       playerID,
		FullName: "Patrick Mahomes",
		Position: "QB",
		Team:     "KC",
	}
	expectedLatest := []metric.Latest{
		{
			PlayerID:  playerID,
			StatKey:   "pass_yd",
			Value:     320,
			Season:    2025,
			Week:      12,
			Source:    metric.SourceSleeper,
			UpdatedAt: time.Date(2025, 11, 24, 9, 0, 0, 0, time.UTC),
		},
		{
			PlayerID: playerID,
			StatKey:  "age",
			Value:    30,
			Source:   metric.SourceProfile,
		},
	}

	playerRepo.
		On("GetByID", mock.MatchedBy(func(v context.Context) bool { return v != nil }), playerID).
		Return(expectedPlayer, true, nil).
		Once()
	metricRepo.
		On("GetLatestForPlayer", mock.MatchedBy(func(v context.Context) bool { return v != nil }), playerID).
		Return(expectedLatest, nil).
		Once()

	got, err := service.GetPlayer(ctx, playerID)
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	if got.Player.ID != expectedPlayer.ID {
		t.Fatalf("unexpected player id: got=%s want=%s", got.Player.ID, expectedPlayer.ID)
	}
	if len(got.Metrics) != len(expectedLatest) {
		t.Fatalf("unexpected metric count: got=%d want=%d", len(got.Metrics), len(expectedLatest))
	}
	if got.Metrics["pass_yd"] != 320 {
		t.Fatalf("unexpected pass_yd value: got=%v want=320", got.Metrics["pass_yd"])
	}
}

func TestPlayerService_GetPlayer_NotFoundUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	playerRepo := playermock.NewRepository(t)
	metricRepo := metricmock.NewRepository(t)

	service := NewPlayerService(playerRepo, memory.NewWeeklyStatRepository(), metricRepo, nil)
	playerID := "missing-player"

	playerRepo.
		On("GetByID", mock.MatchedBy(func(v context.Context) bool { return v != nil }), playerID).
		Return(player.Player{}, false, nil).
		Once()

	_, err := service.GetPlayer(ctx, playerID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPlayerService_GetPlayer_MetricLookupErrorUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	playerRepo := playermock.NewRepository(t)
	metricRepo := metricmock.NewRepository(t)

	service := NewPlayerService(playerRepo, memory.NewWeeklyStatRepository(), metricRepo, nil)
	playerID := "4046"
	repoErr := errors.New("connection reset")

	playerRepo.
		On("GetByID", mock.MatchedBy(func(v context.Context) bool { return v != nil }), playerID).
		Return(player.Player{ID: playerID, FullName: "Patrick Mahomes"}, true, nil).
		Once()
	metricRepo.
		On("GetLatestForPlayer", mock.MatchedBy(func(v context.Context) bool { return v != nil }), playerID).
		Return(nil, repoErr).
		Once()

	_, err := service.GetPlayer(ctx, playerID)
	if !errors.Is(err, repoErr) {
		t.Fatalf("expected repository error, got %v", err)
	}
}
