package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/swaggerdagger987/FDL/internal/domain/player"
	"github.com/swaggerdagger987/FDL/internal/infrastructure/repository/memory"
)

func TestScoreStatAssets(t *testing.T) {
	releases := []Release{
		{
			TagName: "player_stats",
			Assets: []ReleaseAsset{
				{Name: "player_stats_2024.csv.gz", URL: "https://example.com/2024.csv.gz"},
				{Name: "player_stats_week_2025.csv", URL: "https://example.com/2025.csv"},
				{Name: "player_stats.parquet", URL: "https://example.com/skip.parquet"},
			},
		},
		{
			TagName: "schedules",
			Assets: []ReleaseAsset{
				{Name: "player_stats_2025.csv", URL: "https://example.com/wrong-release.csv"},
			},
		},
	}

	t.Run("exact season with weekly bonus wins", func(t *testing.T) {
		asset, ok := ScoreStatAssets(releases, 2025)
		if !ok {
			t.Fatal("expected an asset")
		}
		if asset.URL != "https://example.com/2025.csv" {
			t.Fatalf("unexpected asset: %+v", asset)
		}
		if asset.SeasonHint != 2025 {
			t.Fatalf("unexpected season hint: %d", asset.SeasonHint)
		}
	})

	t.Run("earlier season beats nothing", func(t *testing.T) {
		earlier := []Release{{
			TagName: "player_stats",
			Assets:  []ReleaseAsset{{Name: "player_stats_2024.csv.gz", URL: "https://example.com/2024.csv.gz"}},
		}}
		asset, ok := ScoreStatAssets(earlier, 2026)
		if !ok || asset.SeasonHint != 2024 {
			t.Fatalf("expected 2024 fallback asset, got %+v ok=%v", asset, ok)
		}
	})

	t.Run("no candidates", func(t *testing.T) {
		if _, ok := ScoreStatAssets(nil, 2025); ok {
			t.Fatal("expected no asset")
		}
	})
}

func TestConvertNflverseRow(t *testing.T) {
	repo := memory.NewPlayerRepository([]player.Player{
		{ID: "p1", FullName: "Test Receiver", SearchFullName: "testreceiver", Team: "KC", Position: "WR", GsisID: "00-0011111"},
	})
	index, err := BuildIdentityIndex(context.Background(), repo)
	if err != nil {
		t.Fatalf("build index: %v", err)
	}
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	baseRecord := func() map[string]string {
		return map[string]string{
			"season":              "2025",
			"week":                "3",
			"player_id":           "00-0011111",
			"player_display_name": "Test Receiver",
			"recent_team":         "KC",
			"opponent_team":       "LV",
			"position":            "WR",
			"receiving_yards":     "120",
			"receptions":          "7",
			"receiving_tds":       "1",
			"rushing_tds":         "0",
			"passing_tds":         "0",
			"interceptions":       "0",
		}
	}

	t.Run("resolved row carries summed headline fields", func(t *testing.T) {
		result := convertNflverseRow(baseRecord(), index, 2025, 2025, now)
		if !result.OK {
			t.Fatal("expected row to convert")
		}
		if result.Stat.PlayerID != "p1" {
			t.Fatalf("unexpected player id: %s", result.Stat.PlayerID)
		}
		if result.Stat.Touchdowns == nil || *result.Stat.Touchdowns != 1 {
			t.Fatalf("unexpected touchdowns: %+v", result.Stat.Touchdowns)
		}
		if result.Fallback {
			t.Fatal("did not expect fallback flag")
		}

		found := false
		for _, m := range result.Metrics {
			if m.StatKey == "receiving_yards" && m.Value == 120 {
				found = true
			}
		}
		if !found {
			t.Fatal("expected receiving_yards metric")
		}
	})

	t.Run("earlier asset season flagged as fallback", func(t *testing.T) {
		record := baseRecord()
		record["season"] = "2024"
		result := convertNflverseRow(record, index, 2025, 2024, now)
		if !result.OK || !result.Fallback {
			t.Fatalf("expected fallback acceptance, got %+v", result)
		}
	})

	t.Run("other season mismatch dropped", func(t *testing.T) {
		record := baseRecord()
		record["season"] = "2023"
		result := convertNflverseRow(record, index, 2025, 2024, now)
		if result.OK || result.Unresolved {
			t.Fatalf("expected silent drop, got %+v", result)
		}
	})

	t.Run("malformed week dropped", func(t *testing.T) {
		record := baseRecord()
		record["week"] = "abc"
		if result := convertNflverseRow(record, index, 2025, 2025, now); result.OK {
			t.Fatal("expected malformed row to drop")
		}
	})

	t.Run("unresolved identity counted", func(t *testing.T) {
		record := baseRecord()
		record["player_id"] = "00-9999999"
		record["player_display_name"] = "Nobody Known"
		result := convertNflverseRow(record, index, 2025, 2025, now)
		if result.OK || !result.Unresolved {
			t.Fatalf("expected unresolved drop, got %+v", result)
		}
	})
}
