package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/swaggerdagger987/FDL/internal/domain/metric"
	"github.com/swaggerdagger987/FDL/internal/infrastructure/repository/memory"
	"github.com/swaggerdagger987/FDL/internal/platform/logging"
)

type fakeSleeperGateway struct {
	players    map[string]any
	playersErr error
	weeks      map[int]map[string]any
	weekErrs   map[int]error
	weekCalls  int
}

func (f *fakeSleeperGateway) Players(context.Context) (map[string]any, error) {
	if f.playersErr != nil {
		return nil, f.playersErr
	}
	return f.players, nil
}

func (f *fakeSleeperGateway) WeekStats(_ context.Context, _ int, week int) (map[string]any, error) {
	f.weekCalls++
	if err := f.weekErrs[week]; err != nil {
		return nil, err
	}
	return f.weeks[week], nil
}

type fakeNflverseGateway struct {
	releases []Release
	rows     []map[string]string
	listErr  error
}

func (f *fakeNflverseGateway) ListReleases(context.Context) ([]Release, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.releases, nil
}

func (f *fakeNflverseGateway) StreamCSV(_ context.Context, _ string, fn func(record map[string]string) error) error {
	for _, row := range f.rows {
		if err := fn(row); err != nil {
			return err
		}
	}
	return nil
}

type syncFixture struct {
	players  *memory.PlayerRepository
	stats    *memory.WeeklyStatRepository
	metrics  *memory.MetricRepository
	state    *memory.SyncStateRepository
	sleeper  *fakeSleeperGateway
	nflverse *fakeNflverseGateway
	service  *SyncService
}

func newSyncFixture(sleeper *fakeSleeperGateway, nflverse *fakeNflverseGateway) *syncFixture {
	players := memory.NewPlayerRepository(nil)
	stats := memory.NewWeeklyStatRepository()
	metrics := memory.NewMetricRepository()
	state := memory.NewSyncStateRepository()

	service := NewSyncService(
		players, stats, metrics, state,
		sleeper, nflverse,
		SyncConfig{Weeks: 2},
		logging.NewNop(),
	)

	return &syncFixture{
		players:  players,
		stats:    stats,
		metrics:  metrics,
		state:    state,
		sleeper:  sleeper,
		nflverse: nflverse,
		service:  service,
	}
}

func sleeperTestPlayers() map[string]any {
	return map[string]any{
		"p1": map[string]any{
			"full_name":  "Test Receiver",
			"first_name": "Test",
			"last_name":  "Receiver",
			"position":   "WR",
			"team":       "KC",
			"status":     "Active",
			"age":        25.0,
			"years_exp":  3.0,
		},
		"p2": map[string]any{
			"full_name":  "Other Back",
			"first_name": "Other",
			"last_name":  "Back",
			"position":   "RB",
			"team":       "SF",
			"status":     "Active",
			"age":        28.0,
			"years_exp":  6.0,
		},
	}
}

func TestSyncService_EndToEndScreener(t *testing.T) {
	ctx := context.Background()
	sleeper := &fakeSleeperGateway{
		players: sleeperTestPlayers(),
		weeks: map[int]map[string]any{
			1: {
				"p1": map[string]any{"pts_ppr": 20.2, "rec_yd": 120.0, "rec": 7.0},
			},
		},
	}
	fx := newSyncFixture(sleeper, &fakeNflverseGateway{})

	summary, err := fx.service.RunSync(ctx, 2025, false)
	if err != nil {
		t.Fatalf("run sync: %v", err)
	}
	if summary.PlayersUpserted != 2 {
		t.Fatalf("expected 2 players upserted, got %d", summary.PlayersUpserted)
	}
	if summary.StatRowsUpserted != 1 {
		t.Fatalf("expected 1 stat row, got %d", summary.StatRowsUpserted)
	}
	if summary.Sources["sleeper_stats"].WeeksFetched != 1 {
		t.Fatalf("unexpected weeks fetched: %+v", summary.Sources["sleeper_stats"])
	}

	screenerRepo := memory.NewScreenerRepository(fx.players, fx.metrics)
	screenerSvc := NewScreenerService(screenerRepo, fx.players, fx.state, logging.NewNop())

	result, err := screenerSvc.Query(ctx, ScreenerInput{
		Filters: []FilterInput{{Key: "receiving_yards", Op: "gte", Value: 100}},
	})
	if err != nil {
		t.Fatalf("screener query: %v", err)
	}

	if len(result.Items) != 1 {
		t.Fatalf("expected exactly one item, got %d", len(result.Items))
	}
	item := result.Items[0]
	if item.Player.ID != "p1" {
		t.Fatalf("expected p1, got %s", item.Player.ID)
	}
	if item.Metrics["receiving_yards"] != 120 {
		t.Fatalf("expected receiving_yards 120, got %v", item.Metrics["receiving_yards"])
	}
}

func TestSyncService_WeekFailureSkipsWeek(t *testing.T) {
	ctx := context.Background()
	sleeper := &fakeSleeperGateway{
		players: sleeperTestPlayers(),
		weeks: map[int]map[string]any{
			2: {
				"p1": map[string]any{"pts_ppr": 11.0},
			},
		},
		weekErrs: map[int]error{1: errors.New("upstream down")},
	}
	fx := newSyncFixture(sleeper, &fakeNflverseGateway{})

	summary, err := fx.service.RunSync(ctx, 2025, false)
	if err != nil {
		t.Fatalf("run sync: %v", err)
	}

	report := summary.Sources["sleeper_stats"]
	if report.WeeksSkipped != 1 || report.WeeksFetched != 1 {
		t.Fatalf("unexpected week accounting: %+v", report)
	}
	if summary.StatRowsUpserted != 1 {
		t.Fatalf("expected surviving week row, got %d", summary.StatRowsUpserted)
	}
}

func TestSyncService_SecondaryIngestion(t *testing.T) {
	ctx := context.Background()
	sleeper := &fakeSleeperGateway{players: map[string]any{
		"p1": map[string]any{
			"full_name": "Test Receiver",
			"position":  "WR",
			"team":      "KC",
			"gsis_id":   "00-0011111",
		},
	}}
	nflverse := &fakeNflverseGateway{
		releases: []Release{{
			TagName: "player_stats",
			Assets:  []ReleaseAsset{{Name: "player_stats_week_2025.csv", URL: "https://example.com/2025.csv"}},
		}},
		rows: []map[string]string{
			{
				"season": "2025", "week": "1",
				"player_id":           "00-0011111",
				"player_display_name": "Test Receiver",
				"recent_team":         "KC",
				"position":            "WR",
				"receiving_yards":     "88",
			},
			{
				"season": "2025", "week": "1",
				"player_id":           "00-404",
				"player_display_name": "Unknown Guy",
				"recent_team":         "NE",
				"position":            "QB",
				"passing_yards":       "300",
			},
		},
	}
	fx := newSyncFixture(sleeper, nflverse)

	summary, err := fx.service.RunSync(ctx, 2025, true)
	if err != nil {
		t.Fatalf("run sync: %v", err)
	}

	report := summary.Sources["nflverse_stats"]
	if report.StatRowsUpserted != 1 {
		t.Fatalf("expected one resolved row, got %+v", report)
	}
	if report.UnresolvedRows != 1 {
		t.Fatalf("expected one unresolved row counted, got %+v", report)
	}

	row, ok := fx.metrics.Latest("p1", "receiving_yards")
	if !ok || row.Value != 88 || row.Source != metric.SourceNflverse {
		t.Fatalf("expected materialized nflverse metric, got %+v ok=%v", row, ok)
	}

	// The discovery choice is cached; a second pass must not re-list releases.
	nflverse.listErr = errors.New("listing should not be called")
	if _, err := fx.service.RunSync(ctx, 2025, true); err != nil {
		t.Fatalf("second run sync: %v", err)
	}
}

func TestSyncService_ProfileMetricsMaterialized(t *testing.T) {
	ctx := context.Background()
	sleeper := &fakeSleeperGateway{players: map[string]any{
		"p1": map[string]any{
			"full_name": "Test Receiver",
			"position":  "WR",
			"age":       25.0,
			"years_exp": 3.0,
			"weight":    "190",
			"espn_id":   4262921.0,
			"search_rank": 12.0,
		},
	}}
	fx := newSyncFixture(sleeper, &fakeNflverseGateway{})

	if _, err := fx.service.RunSync(ctx, 2025, false); err != nil {
		t.Fatalf("run sync: %v", err)
	}

	if row, ok := fx.metrics.Latest("p1", "age"); !ok || row.Value != 25 || row.Source != metric.SourceProfile {
		t.Fatalf("expected profile age metric, got %+v ok=%v", row, ok)
	}
	if row, ok := fx.metrics.Latest("p1", "weight"); !ok || row.Value != 190 {
		t.Fatalf("expected coerced profile weight, got %+v ok=%v", row, ok)
	}
	if _, ok := fx.metrics.Latest("p1", "espn_id"); ok {
		t.Fatal("identifier keys must not become metrics")
	}
	if _, ok := fx.metrics.Latest("p1", "search_rank"); ok {
		t.Fatal("search_ keys must not become metrics")
	}
}
