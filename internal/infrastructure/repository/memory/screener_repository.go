package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/swaggerdagger987/FDL/internal/domain/player"
	"github.com/swaggerdagger987/FDL/internal/domain/screener"
	"github.com/swaggerdagger987/FDL/internal/statkey"
)

// ScreenerRepository evaluates screener queries over the in-memory player and
// metric stores.
type ScreenerRepository struct {
	players *PlayerRepository
	metrics *MetricRepository
}

func NewScreenerRepository(players *PlayerRepository, metrics *MetricRepository) *ScreenerRepository {
	return &ScreenerRepository{players: players, metrics: metrics}
}

func (r *ScreenerRepository) Query(_ context.Context, query screener.Query) (screener.Result, error) {
	latestByPlayer := make(map[string]map[string]float64)
	for _, row := range r.metrics.AllLatest() {
		byKey, ok := latestByPlayer[row.PlayerID]
		if !ok {
			byKey = make(map[string]float64)
			latestByPlayer[row.PlayerID] = byKey
		}
		byKey[row.StatKey] = row.Value
	}

	positionSet := make(map[string]struct{}, len(query.Positions))
	for _, p := range query.Positions {
		positionSet[p] = struct{}{}
	}

	var matched []screener.Row
	for _, p := range r.players.All() {
		if !playerMatchesBase(p, query, positionSet) {
			continue
		}
		if !playerMatchesFilters(latestByPlayer[p.ID], query.Filters) {
			continue
		}

		metrics := make(map[string]float64, len(query.Columns))
		for _, key := range query.Columns {
			if value, ok := latestByPlayer[p.ID][key]; ok {
				metrics[key] = value
			}
		}
		matched = append(matched, screener.Row{
			Player: player.Summary{
				ID:       p.ID,
				FullName: p.FullName,
				Position: p.Position,
				Team:     p.Team,
				Status:   p.Status,
				Age:      p.Age,
				YearsExp: p.YearsExp,
			},
			Metrics: metrics,
		})
	}

	sortRows(matched, latestByPlayer, query.Sort)

	total := len(matched)
	if query.Offset > 0 {
		if query.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[query.Offset:]
		}
	}
	if query.Limit > 0 && len(matched) > query.Limit {
		matched = matched[:query.Limit]
	}

	return screener.Result{Items: matched, Total: total}, nil
}

func playerMatchesBase(p player.Player, query screener.Query, positions map[string]struct{}) bool {
	if query.Search != "" {
		haystack := strings.ToLower(p.FullName + " " + p.FirstName + " " + p.LastName)
		if !strings.Contains(haystack, query.Search) {
			return false
		}
	}
	if len(positions) > 0 {
		if _, ok := positions[p.Position]; !ok {
			return false
		}
	}
	if query.Team != "" && p.Team != query.Team {
		return false
	}
	if query.AgeMin != nil && (p.Age == nil || *p.Age < *query.AgeMin) {
		return false
	}
	if query.AgeMax != nil && (p.Age == nil || *p.Age > *query.AgeMax) {
		return false
	}
	return true
}

// playerMatchesFilters applies existence semantics: a player missing the
// filter key entirely fails that filter.
func playerMatchesFilters(metrics map[string]float64, filters []screener.Filter) bool {
	for _, f := range filters {
		value, ok := metrics[f.Key]
		if !ok {
			return false
		}
		if !filterSatisfied(f, value) {
			return false
		}
	}
	return true
}

func filterSatisfied(f screener.Filter, value float64) bool {
	switch f.Op {
	case screener.OpLt:
		return value < f.Value
	case screener.OpLte:
		return value <= f.Value
	case screener.OpGt:
		return value > f.Value
	case screener.OpEq:
		return value == f.Value
	case screener.OpNeq:
		return value != f.Value
	case screener.OpBetween:
		if f.ValueMax == nil {
			return false
		}
		return value >= f.Value && value <= *f.ValueMax
	default:
		return value >= f.Value
	}
}

func sortRows(rows []screener.Row, latestByPlayer map[string]map[string]float64, sortSpec screener.Sort) {
	asc := sortSpec.Direction == "asc"
	missing := float64(screener.MissingSortValueDesc)
	if asc {
		missing = float64(screener.MissingSortValueAsc)
	}

	sortValue := func(row screener.Row) float64 {
		if value, ok := latestByPlayer[row.Player.ID][sortSpec.Key]; ok {
			return value
		}
		return missing
	}

	sort.SliceStable(rows, func(i, j int) bool {
		vi, vj := sortValue(rows[i]), sortValue(rows[j])
		if vi != vj {
			if asc {
				return vi < vj
			}
			return vi > vj
		}
		return rows[i].Player.FullName < rows[j].Player.FullName
	})
}

func (r *ScreenerRepository) ListFilterOptions(_ context.Context, query screener.OptionsQuery) ([]screener.FilterOption, error) {
	playerFilter := make(map[string]bool)
	needsPlayerFilter := query.Position != "" || query.Team != ""
	if needsPlayerFilter {
		for _, p := range r.players.All() {
			if query.Position != "" && p.Position != query.Position {
				continue
			}
			if query.Team != "" && p.Team != query.Team {
				continue
			}
			playerFilter[p.ID] = true
		}
	}

	type aggregate struct {
		min   float64
		max   float64
		count int
	}
	byKey := make(map[string]*aggregate)

	for _, row := range r.metrics.AllLatest() {
		if needsPlayerFilter && !playerFilter[row.PlayerID] {
			continue
		}
		if query.Search != "" && !optionKeyMatches(row.StatKey, query.Search) {
			continue
		}
		agg, ok := byKey[row.StatKey]
		if !ok {
			byKey[row.StatKey] = &aggregate{min: row.Value, max: row.Value, count: 1}
			continue
		}
		if row.Value < agg.min {
			agg.min = row.Value
		}
		if row.Value > agg.max {
			agg.max = row.Value
		}
		agg.count++
	}

	options := make([]screener.FilterOption, 0, len(byKey))
	for key, agg := range byKey {
		options = append(options, screener.FilterOption{
			Key:         key,
			Label:       statkey.Label(key),
			Min:         agg.min,
			Max:         agg.max,
			PlayerCount: agg.count,
		})
	}

	sort.Slice(options, func(i, j int) bool {
		ri, rj := optionRank(options[i].Key), optionRank(options[j].Key)
		if ri != rj {
			return ri < rj
		}
		return options[i].Key < options[j].Key
	})

	if query.Limit > 0 && len(options) > query.Limit {
		options = options[:query.Limit]
	}
	return options, nil
}

// optionRank pins the headline keys ahead of the alphabetical tail.
func optionRank(key string) int {
	switch key {
	case "fantasy_points_ppr":
		return 0
	case "age":
		return 1
	case "years_exp":
		return 2
	default:
		return 100
	}
}

func optionKeyMatches(statKey, search string) bool {
	token := statkey.Normalize(search)
	if token == "yac" {
		return strings.Contains(statKey, "yac") || strings.Contains(statKey, "yards_after_catch")
	}
	if token == "" {
		return strings.Contains(statKey, search)
	}
	// An underscore in the token matches any infix, mirroring a SQL LIKE
	// with wildcards substituted for separators.
	parts := strings.Split(token, "_")
	rest := statKey
	for _, part := range parts {
		idx := strings.Index(rest, part)
		if idx < 0 {
			return false
		}
		rest = rest[idx+len(part):]
	}
	return true
}
