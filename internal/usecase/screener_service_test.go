package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/swaggerdagger987/FDL/internal/domain/metric"
	"github.com/swaggerdagger987/FDL/internal/domain/player"
	"github.com/swaggerdagger987/FDL/internal/domain/screener"
	"github.com/swaggerdagger987/FDL/internal/infrastructure/repository/memory"
	"github.com/swaggerdagger987/FDL/internal/platform/logging"
)

func TestNormalizeFilters(t *testing.T) {
	t.Run("synonyms fold to canonical operators", func(t *testing.T) {
		cases := map[string]string{
			">=":      screener.OpGte,
			"min":     screener.OpGte,
			"<=":      screener.OpLte,
			"max":     screener.OpLte,
			">":       screener.OpGt,
			"<":       screener.OpLt,
			"=":       screener.OpEq,
			"!=":      screener.OpNeq,
			"range":   screener.OpBetween,
			"bogus":   screener.OpGte,
			"BETWEEN": screener.OpBetween,
		}
		for raw, want := range cases {
			if got := NormalizeFilterOperator(raw); got != want {
				t.Fatalf("operator %q: got %q want %q", raw, got, want)
			}
		}
	})

	t.Run("between bounds are swapped", func(t *testing.T) {
		filters := NormalizeFilters([]FilterInput{
			{Key: "age", Op: "between", Value: 30, ValueMax: 22},
		})
		if len(filters) != 1 {
			t.Fatalf("expected one filter, got %d", len(filters))
		}
		f := filters[0]
		if f.Value != 22 || f.ValueMax == nil || *f.ValueMax != 30 {
			t.Fatalf("expected swapped bounds, got %+v", f)
		}
	})

	t.Run("unparseable values dropped silently", func(t *testing.T) {
		filters := NormalizeFilters([]FilterInput{
			{Key: "receiving_yards", Op: "gte", Value: "not a number"},
			{Key: "receptions", Op: "gte", Value: "5"},
			{Key: "age", Op: "between", Value: 20, ValueMax: nil},
		})
		if len(filters) != 1 || filters[0].Key != "receptions" {
			t.Fatalf("unexpected filters: %+v", filters)
		}
	})

	t.Run("filter count capped", func(t *testing.T) {
		raw := make([]FilterInput, 0, screener.MaxFilters+10)
		for i := 0; i < screener.MaxFilters+10; i++ {
			raw = append(raw, FilterInput{Key: "metric_" + string(rune('a'+i%26)) + string(rune('a'+i/26)), Op: "gte", Value: i})
		}
		if got := len(NormalizeFilters(raw)); got != screener.MaxFilters {
			t.Fatalf("expected cap at %d, got %d", screener.MaxFilters, got)
		}
	})
}

func TestBuildColumnList(t *testing.T) {
	filters := []screener.Filter{{Key: "receiving_yards", Op: screener.OpGte, Value: 100}}
	columns := buildColumnList([]string{"Target Share", "receiving_yards"}, filters, "yac")

	want := []string{"fantasy_points_ppr", "age", "years_exp", "receiving_yards", "yac", "target_share"}
	if len(columns) != len(want) {
		t.Fatalf("unexpected columns: %v", columns)
	}
	for i, key := range want {
		if columns[i] != key {
			t.Fatalf("column %d: got %q want %q (all: %v)", i, columns[i], key, columns)
		}
	}
}

func seedScreenerFixture(t *testing.T) (*ScreenerService, *memory.SyncStateRepository, *memory.MetricRepository) {
	t.Helper()

	age27 := 27.0
	age23 := 23.0
	players := memory.NewPlayerRepository([]player.Player{
		{ID: "p1", FullName: "Alpha Receiver", Position: "WR", Team: "KC", Age: &age27},
		{ID: "p2", FullName: "Bravo Receiver", Position: "WR", Team: "SF", Age: &age23},
		{ID: "p3", FullName: "Charlie Back", Position: "RB", Team: "KC"},
	})

	metrics := memory.NewMetricRepository()
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	err := metrics.UpsertWeeklyMany(context.Background(), []metric.Weekly{
		{PlayerID: "p1", Season: 2025, Week: 1, StatKey: "target_share", Value: 0.31, Source: metric.SourceSleeper, UpdatedAt: now},
		{PlayerID: "p1", Season: 2025, Week: 1, StatKey: "receiving_yards", Value: 120, Source: metric.SourceSleeper, UpdatedAt: now},
		{PlayerID: "p2", Season: 2025, Week: 1, StatKey: "receiving_yards", Value: 80, Source: metric.SourceSleeper, UpdatedAt: now},
	})
	if err != nil {
		t.Fatalf("seed weekly metrics: %v", err)
	}
	if err := metrics.RecomputeLatest(context.Background(), nil); err != nil {
		t.Fatalf("recompute: %v", err)
	}

	state := memory.NewSyncStateRepository()
	repo := memory.NewScreenerRepository(players, metrics)
	return NewScreenerService(repo, players, state, logging.NewNop()), state, metrics
}

func TestScreenerService_Query(t *testing.T) {
	ctx := context.Background()

	t.Run("missing filter key excludes player", func(t *testing.T) {
		svc, _, _ := seedScreenerFixture(t)
		result, err := svc.Query(ctx, ScreenerInput{
			Filters: []FilterInput{{Key: "target_share", Op: "gte", Value: 0.3}},
		})
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if len(result.Items) != 1 || result.Items[0].Player.ID != "p1" {
			t.Fatalf("expected only p1, got %+v", result.Items)
		}
	})

	t.Run("players missing sort metric sort last ascending", func(t *testing.T) {
		svc, _, _ := seedScreenerFixture(t)
		result, err := svc.Query(ctx, ScreenerInput{
			SortKey:       "receiving_yards",
			SortDirection: "asc",
		})
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if len(result.Items) != 3 {
			t.Fatalf("expected all players, got %d", len(result.Items))
		}
		ids := []string{result.Items[0].Player.ID, result.Items[1].Player.ID, result.Items[2].Player.ID}
		if ids[0] != "p2" || ids[1] != "p1" || ids[2] != "p3" {
			t.Fatalf("unexpected order: %v", ids)
		}
	})

	t.Run("applied filters echoed back", func(t *testing.T) {
		svc, _, _ := seedScreenerFixture(t)
		result, err := svc.Query(ctx, ScreenerInput{
			Filters: []FilterInput{
				{Key: "receiving_yards", Op: ">=", Value: 100},
				{Key: "broken", Op: "gte", Value: "nope"},
			},
			SortKey:       "Receiving Yards",
			SortDirection: "desc",
		})
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if len(result.AppliedFilters) != 1 || result.AppliedFilters[0].Op != screener.OpGte {
			t.Fatalf("unexpected applied filters: %+v", result.AppliedFilters)
		}
		if result.AppliedSort.Key != "receiving_yards" || result.AppliedSort.Direction != "desc" {
			t.Fatalf("unexpected applied sort: %+v", result.AppliedSort)
		}
	})

	t.Run("base attribute filters compose", func(t *testing.T) {
		svc, _, _ := seedScreenerFixture(t)
		ageMin := 25.0
		result, err := svc.Query(ctx, ScreenerInput{
			Position: "wr",
			AgeMin:   &ageMin,
		})
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if len(result.Items) != 1 || result.Items[0].Player.ID != "p1" {
			t.Fatalf("expected p1 only, got %+v", result.Items)
		}
	})
}

func TestScreenerService_FilterOptionsCache(t *testing.T) {
	ctx := context.Background()
	svc, state, metrics := seedScreenerFixture(t)

	first, err := svc.ListFilterOptions(ctx, OptionsInput{})
	if err != nil {
		t.Fatalf("first options: %v", err)
	}
	if len(first) == 0 {
		t.Fatal("expected some options")
	}

	// New metric lands but the stamp is unchanged: the cached listing holds.
	now := time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC)
	if err := metrics.UpsertWeeklyMany(ctx, []metric.Weekly{
		{PlayerID: "p3", Season: 2025, Week: 2, StatKey: "rushing_yards", Value: 60, Source: metric.SourceSleeper, UpdatedAt: now},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := metrics.RecomputeLatest(ctx, nil); err != nil {
		t.Fatalf("recompute: %v", err)
	}

	second, err := svc.ListFilterOptions(ctx, OptionsInput{})
	if err != nil {
		t.Fatalf("second options: %v", err)
	}
	if len(second) != len(first) {
		t.Fatalf("expected cached listing, got %d then %d", len(first), len(second))
	}

	// A sync stamp change invalidates the whole cache.
	if err := state.Set(ctx, "last_sync_report", "{}"); err != nil {
		t.Fatalf("set stamp: %v", err)
	}
	third, err := svc.ListFilterOptions(ctx, OptionsInput{})
	if err != nil {
		t.Fatalf("third options: %v", err)
	}
	if len(third) != len(first)+1 {
		t.Fatalf("expected refreshed listing with new key, got %d", len(third))
	}
}
