package usecase

import (
	"testing"
	"time"

	"github.com/swaggerdagger987/FDL/internal/domain/metric"
)

func TestSleeperWeekRows(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	payload := map[string]any{
		"p1": map[string]any{
			"team":     "KC",
			"opp":      "LV",
			"pts_ppr":  20.2,
			"rec_yd":   120.0,
			"rec":      7.0,
			"rec_td":   1.0,
			"pass_int": 1.0,
			"fum_lost": 1.0,
		},
		"bogus": "not a stats object",
	}

	stats, metrics := SleeperWeekRows(payload, 2025, 1, now)
	if len(stats) != 1 {
		t.Fatalf("expected one stat line, got %d", len(stats))
	}

	stat := stats[0]
	if stat.PlayerID != "p1" || stat.Season != 2025 || stat.Week != 1 {
		t.Fatalf("unexpected stat identity: %+v", stat)
	}
	if stat.Source != metric.SourceSleeper {
		t.Fatalf("unexpected source: %s", stat.Source)
	}
	if stat.ReceivingYards == nil || *stat.ReceivingYards != 120 {
		t.Fatalf("unexpected receiving yards: %+v", stat.ReceivingYards)
	}
	if stat.Touchdowns == nil || *stat.Touchdowns != 1 {
		t.Fatalf("unexpected touchdowns: %+v", stat.Touchdowns)
	}
	if stat.Turnovers == nil || *stat.Turnovers != 2 {
		t.Fatalf("unexpected turnovers: %+v", stat.Turnovers)
	}

	byKey := make(map[string]float64)
	for _, m := range metrics {
		if m.PlayerID == "p1" {
			byKey[m.StatKey] = m.Value
		}
	}

	// Aliases translate short codes without dropping the originals.
	if byKey["rec_yd"] != 120 || byKey["receiving_yards"] != 120 {
		t.Fatalf("expected alias metrics, got %v", byKey)
	}
	if byKey["fantasy_points_ppr"] != 20.2 {
		t.Fatalf("expected fantasy_points_ppr alias, got %v", byKey)
	}
	if byKey["touchdowns"] != 1 || byKey["turnovers"] != 2 {
		t.Fatalf("expected summed headline metrics, got %v", byKey)
	}
}

func TestSleeperWeekRows_AliasDoesNotOverwriteCanonicalKey(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	payload := map[string]any{
		"p1": map[string]any{
			"rec_yd":          120.0,
			"receiving_yards": 115.0,
		},
	}

	_, metrics := SleeperWeekRows(payload, 2025, 1, now)
	byKey := make(map[string]float64)
	for _, m := range metrics {
		byKey[m.StatKey] = m.Value
	}
	if byKey["receiving_yards"] != 115 {
		t.Fatalf("canonical key should win, got %v", byKey)
	}
}

func TestSleeperPlayersFromPayload(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	payload := map[string]any{
		"p1": map[string]any{
			"full_name":         "Justin Jefferson",
			"first_name":        "Justin",
			"last_name":         "Jefferson",
			"position":          "WR",
			"team":              "MIN",
			"status":            "Active",
			"age":               26.0,
			"years_exp":         5.0,
			"gsis_id":           "00-0036322",
			"fantasy_positions": []any{"WR"},
		},
		"p2": map[string]any{
			"first_name": "",
			"last_name":  "",
		},
	}

	players := SleeperPlayersFromPayload(payload, now)
	if len(players) != 1 {
		t.Fatalf("expected nameless entry skipped, got %d players", len(players))
	}

	p := players[0]
	if p.ID != "p1" || p.SearchFullName != "justinjefferson" {
		t.Fatalf("unexpected player: %+v", p)
	}
	if p.Age == nil || *p.Age != 26 {
		t.Fatalf("unexpected age: %+v", p.Age)
	}
	if p.YearsExp == nil || *p.YearsExp != 5 {
		t.Fatalf("unexpected years_exp: %+v", p.YearsExp)
	}
	if len(p.FantasyPositions) != 1 || p.FantasyPositions[0] != "WR" {
		t.Fatalf("unexpected fantasy positions: %v", p.FantasyPositions)
	}
}
