package memory

import (
	"context"
	"testing"
	"time"

	"github.com/swaggerdagger987/FDL/internal/domain/metric"
	"github.com/swaggerdagger987/FDL/internal/domain/weeklystat"
)

func statRow(playerID string, season, week int, seasonType, source string, points float64) weeklystat.Stat {
	return weeklystat.Stat{
		PlayerID:         playerID,
		Season:           season,
		Week:             week,
		SeasonType:       seasonType,
		FantasyPointsPPR: &points,
		Source:           source,
		UpdatedAt:        time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestWeeklyStatRepository_SeasonTypeKeyed(t *testing.T) {
	ctx := context.Background()
	repo := NewWeeklyStatRepository()

	if err := repo.UpsertMany(ctx, []weeklystat.Stat{
		statRow("p1", 2024, 1, "", metric.SourceSleeper, 18.5),
		statRow("p1", 2024, 1, "post", metric.SourceSleeper, 24.0),
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	rows, err := repo.ListHistory(ctx, weeklystat.HistoryQuery{PlayerID: "p1"})
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected regular and postseason rows to coexist, got %d", len(rows))
	}

	// Re-ingesting the regular row overwrites it without touching the
	// postseason one.
	if err := repo.UpsertMany(ctx, []weeklystat.Stat{
		statRow("p1", 2024, 1, weeklystat.SeasonTypeRegular, metric.SourceSleeper, 19.1),
	}); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}
	rows, err = repo.ListHistory(ctx, weeklystat.HistoryQuery{PlayerID: "p1"})
	if err != nil {
		t.Fatalf("list history after re-upsert: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected re-upsert to overwrite in place, got %d rows", len(rows))
	}
}
