package usecase

import (
	"strconv"
	"strings"
	"time"

	"github.com/swaggerdagger987/FDL/internal/domain/metric"
	"github.com/swaggerdagger987/FDL/internal/domain/player"
	"github.com/swaggerdagger987/FDL/internal/domain/weeklystat"
	"github.com/swaggerdagger987/FDL/internal/statkey"
)

// sleeperMetricAliases maps short feed codes to canonical long-form keys. The
// alias never overwrites a canonical key already present in the same payload.
var sleeperMetricAliases = map[string]string{
	"pts_ppr":      "fantasy_points_ppr",
	"pts_half_ppr": "fantasy_points_half_ppr",
	"pts_std":      "fantasy_points_std",
	"pass_yd":      "passing_yards",
	"rush_yd":      "rushing_yards",
	"rec_yd":       "receiving_yards",
	"rec":          "receptions",
	"pass_td":      "passing_tds",
	"rush_td":      "rushing_tds",
	"rec_td":       "receiving_tds",
	"pass_int":     "interceptions",
	"fum_lost":     "fumbles_lost",
	"yac":          "yards_after_catch",
	"pass_ypa":     "yards_per_pass_attempt",
	"rush_ypa":     "yards_per_rush_attempt",
}

// SleeperPlayersFromPayload converts the raw players payload into canonical
// player records. Entries without a usable display name are skipped.
func SleeperPlayersFromPayload(payload map[string]any, now time.Time) []player.Player {
	players := make([]player.Player, 0, len(payload))
	for playerID, raw := range payload {
		fields, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		fullName := stringField(fields, "full_name")
		if fullName == "" {
			fullName = strings.TrimSpace(stringField(fields, "first_name") + " " + stringField(fields, "last_name"))
		}
		if fullName == "" {
			continue
		}

		p := player.Player{
			ID:             playerID,
			FullName:       fullName,
			FirstName:      stringField(fields, "first_name"),
			LastName:       stringField(fields, "last_name"),
			SearchFullName: statkey.NormalizeName(fullName),
			Position:       stringField(fields, "position"),
			Team:           stringField(fields, "team"),
			Status:         stringField(fields, "status"),
			GsisID:         stringField(fields, "gsis_id"),
			EspnID:         stringField(fields, "espn_id"),
			YahooID:        stringField(fields, "yahoo_id"),
			Profile:        fields,
			UpdatedAt:      now,
		}
		if age, ok := statkey.CoerceFloat(fields["age"]); ok {
			p.Age = &age
		}
		if years, ok := intField(fields, "years_exp"); ok {
			p.YearsExp = &years
		}
		if rawPositions, ok := fields["fantasy_positions"].([]any); ok {
			positions := make([]string, 0, len(rawPositions))
			for _, item := range rawPositions {
				if s, ok := item.(string); ok && s != "" {
					positions = append(positions, s)
				}
			}
			p.FantasyPositions = positions
		}
		players = append(players, p)
	}
	return players
}

// SleeperWeekRows converts one week's stats payload into stat lines and
// flattened metric rows. Headline touchdown and turnover fields are summed
// from the per-category codes.
func SleeperWeekRows(payload map[string]any, season, week int, now time.Time) ([]weeklystat.Stat, []metric.Weekly) {
	stats := make([]weeklystat.Stat, 0, len(payload))
	var metricRows []metric.Weekly

	for playerID, raw := range payload {
		fields, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		passTD := floatOrZero(fields["pass_td"])
		rushTD := floatOrZero(fields["rush_td"])
		recTD := floatOrZero(fields["rec_td"])
		touchdowns := passTD + rushTD + recTD
		turnovers := floatOrZero(fields["pass_int"]) + floatOrZero(fields["fum_lost"])

		stat := weeklystat.Stat{
			PlayerID:             playerID,
			Season:               season,
			Week:                 week,
			SeasonType:           weeklystat.SeasonTypeRegular,
			Team:                 stringField(fields, "team"),
			OpponentTeam:         stringField(fields, "opp"),
			FantasyPointsPPR:     floatPtr(fields["pts_ppr"]),
			FantasyPointsHalfPPR: floatPtr(fields["pts_half_ppr"]),
			FantasyPointsStd:     floatPtr(fields["pts_std"]),
			PassingYards:         floatPtr(fields["pass_yd"]),
			RushingYards:         floatPtr(fields["rush_yd"]),
			ReceivingYards:       floatPtr(fields["rec_yd"]),
			Receptions:           floatPtr(fields["rec"]),
			Touchdowns:           &touchdowns,
			RawStats:             fields,
			Source:               metric.SourceSleeper,
			UpdatedAt:            now,
		}
		if turnovers != 0 {
			stat.Turnovers = &turnovers
		}
		stats = append(stats, stat)

		metrics := statkey.FlattenNumeric(fields)
		applyMetricAliases(metrics)
		metrics["touchdowns"] = touchdowns
		metrics["turnovers"] = turnovers
		metricRows = append(metricRows, weeklyMetricsFromMap(playerID, season, week, metric.SeasonTypeRegular, metric.SourceSleeper, metrics, now)...)
	}

	return stats, metricRows
}

func applyMetricAliases(metrics map[string]float64) {
	for sourceKey, aliasKey := range sleeperMetricAliases {
		if value, ok := metrics[sourceKey]; ok {
			if _, exists := metrics[aliasKey]; !exists {
				metrics[aliasKey] = value
			}
		}
	}
}

func weeklyMetricsFromMap(playerID string, season, week int, seasonType, source string, metrics map[string]float64, now time.Time) []metric.Weekly {
	rows := make([]metric.Weekly, 0, len(metrics))
	for statKey, value := range metrics {
		if statKey == "" {
			continue
		}
		rows = append(rows, metric.Weekly{
			PlayerID:   playerID,
			Season:     season,
			Week:       week,
			SeasonType: seasonType,
			StatKey:    statKey,
			Value:      value,
			Source:     source,
			UpdatedAt:  now,
		})
	}
	return rows
}

func stringField(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func intField(fields map[string]any, key string) (int, bool) {
	value, ok := statkey.CoerceFloat(fields[key])
	if !ok {
		return 0, false
	}
	return int(value), true
}

func floatPtr(value any) *float64 {
	if v, ok := statkey.CoerceFloat(value); ok {
		return &v
	}
	return nil
}

func floatOrZero(value any) float64 {
	v, _ := statkey.CoerceFloat(value)
	return v
}
