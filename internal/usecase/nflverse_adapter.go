package usecase

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/swaggerdagger987/FDL/internal/domain/metric"
	"github.com/swaggerdagger987/FDL/internal/domain/weeklystat"
	"github.com/swaggerdagger987/FDL/internal/statkey"
)

// Release mirrors the upstream release listing shape consumed during asset
// discovery.
type Release struct {
	TagName string
	Name    string
	Assets  []ReleaseAsset
}

type ReleaseAsset struct {
	Name string
	URL  string
}

// StatAsset is the chosen player-stats file for one discovery pass.
type StatAsset struct {
	URL        string `json:"url"`
	Name       string `json:"name"`
	SeasonHint int    `json:"season_hint"`
	Score      int    `json:"score"`
}

var assetYearRegex = regexp.MustCompile(`(19\d{2}|20\d{2})`)

func parseYearFromName(name string) int {
	matches := assetYearRegex.FindAllString(name, -1)
	if len(matches) == 0 {
		return 0
	}
	year, _ := strconv.Atoi(matches[len(matches)-1])
	return year
}

// ScoreStatAssets picks the best player-stats CSV from the release listing.
// Weekly files get a flat bonus, the exact requested season is heavily
// favored, and earlier seasons beat no season match at all.
func ScoreStatAssets(releases []Release, season int) (StatAsset, bool) {
	var candidates []StatAsset

	for _, release := range releases {
		tagName := strings.ToLower(release.TagName)
		releaseName := strings.ToLower(release.Name)
		if !strings.Contains(tagName, "player") && !strings.Contains(releaseName, "player") {
			continue
		}

		for _, asset := range release.Assets {
			assetName := strings.ToLower(asset.Name)
			if !strings.Contains(assetName, "player") || !strings.Contains(assetName, "stat") {
				continue
			}
			if !strings.HasSuffix(assetName, ".csv") && !strings.HasSuffix(assetName, ".csv.gz") {
				continue
			}

			assetYear := parseYearFromName(assetName)
			score := 0
			if strings.Contains(assetName, "weekly") || strings.Contains(assetName, "_week") {
				score += 30
			}
			if assetYear > 0 {
				score += assetYear
				if season > 0 && assetYear == season {
					score += 5000
				} else if season > 0 && assetYear <= season {
					score += 500
				}
			}
			candidates = append(candidates, StatAsset{
				URL:        asset.URL,
				Name:       asset.Name,
				SeasonHint: assetYear,
				Score:      score,
			})
		}
	}

	if len(candidates) == 0 {
		return StatAsset{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates[0], true
}

// nflverseRowResult classifies one CSV record.
type nflverseRowResult struct {
	Stat       weeklystat.Stat
	Metrics    []metric.Weekly
	OK         bool
	Unresolved bool
	Fallback   bool
}

// convertNflverseRow maps one CSV record to canonical rows. Records with a
// malformed season or week are dropped; records from an earlier asset season
// are accepted as fallback data when the requested season is unpublished.
func convertNflverseRow(record map[string]string, index *IdentityIndex, season, assetYear int, now time.Time) nflverseRowResult {
	rowSeason, err := strconv.Atoi(strings.TrimSpace(record["season"]))
	if err != nil {
		return nflverseRowResult{}
	}
	rowWeek, err := strconv.Atoi(strings.TrimSpace(record["week"]))
	if err != nil || rowWeek <= 0 {
		return nflverseRowResult{}
	}

	fallback := false
	if rowSeason != season {
		if assetYear > 0 && rowSeason == assetYear && season > assetYear {
			fallback = true
		} else {
			return nflverseRowResult{}
		}
	}

	displayName := record["player_display_name"]
	if displayName == "" {
		displayName = record["player_name"]
	}
	playerID, ok := index.Resolve(record["player_id"], displayName, record["recent_team"], record["position"])
	if !ok {
		return nflverseRowResult{Unresolved: true}
	}

	touchdowns := csvFloatOrZero(record["passing_tds"]) +
		csvFloatOrZero(record["rushing_tds"]) +
		csvFloatOrZero(record["receiving_tds"])
	turnovers := csvFloatOrZero(record["interceptions"]) + csvFloatOrZero(record["rushing_fumbles_lost"])

	raw := make(map[string]any, len(record))
	for key, value := range record {
		raw[key] = value
	}

	stat := weeklystat.Stat{
		PlayerID:             playerID,
		Season:               rowSeason,
		Week:                 rowWeek,
		SeasonType:           weeklystat.SeasonTypeRegular,
		Team:                 record["recent_team"],
		OpponentTeam:         record["opponent_team"],
		FantasyPointsPPR:     csvFloatPtr(record["fantasy_points_ppr"]),
		FantasyPointsHalfPPR: csvFloatPtr(record["fantasy_points_half_ppr"]),
		FantasyPointsStd:     csvFloatPtr(record["fantasy_points"]),
		PassingYards:         csvFloatPtr(record["passing_yards"]),
		RushingYards:         csvFloatPtr(record["rushing_yards"]),
		ReceivingYards:       csvFloatPtr(record["receiving_yards"]),
		Receptions:           csvFloatPtr(record["receptions"]),
		Touchdowns:           &touchdowns,
		RawStats:             raw,
		Source:               metric.SourceNflverse,
		UpdatedAt:            now,
	}
	if turnovers != 0 {
		stat.Turnovers = &turnovers
	}

	metrics := statkey.FlattenNumeric(raw)
	metrics["touchdowns"] = touchdowns
	metrics["turnovers"] = turnovers

	return nflverseRowResult{
		Stat:     stat,
		Metrics:  weeklyMetricsFromMap(playerID, rowSeason, rowWeek, metric.SeasonTypeRegular, metric.SourceNflverse, metrics, now),
		OK:       true,
		Fallback: fallback,
	}
}

func csvFloatPtr(value string) *float64 {
	if v, ok := statkey.CoerceFloat(value); ok {
		return &v
	}
	return nil
}

func csvFloatOrZero(value string) float64 {
	v, _ := statkey.CoerceFloat(value)
	return v
}
