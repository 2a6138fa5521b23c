package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/swaggerdagger987/FDL/internal/domain/metric"
	"github.com/swaggerdagger987/FDL/internal/domain/weeklystat"
)

type statKey struct {
	playerID   string
	season     int
	week       int
	seasonType string
	source     string
}

type WeeklyStatRepository struct {
	mu      sync.RWMutex
	rows    map[statKey]weeklystat.Stat
	current map[string]weeklystat.Stat
}

func NewWeeklyStatRepository() *WeeklyStatRepository {
	return &WeeklyStatRepository{
		rows:    make(map[statKey]weeklystat.Stat),
		current: make(map[string]weeklystat.Stat),
	}
}

func (r *WeeklyStatRepository) UpsertMany(_ context.Context, stats []weeklystat.Stat) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range stats {
		if err := s.Validate(); err != nil {
			return err
		}
		if s.SeasonType == "" {
			s.SeasonType = weeklystat.SeasonTypeRegular
		}
		r.rows[statKey{playerID: s.PlayerID, season: s.Season, week: s.Week, seasonType: s.SeasonType, source: s.Source}] = s
	}
	return nil
}

func (r *WeeklyStatRepository) ListHistory(_ context.Context, query weeklystat.HistoryQuery) ([]weeklystat.Stat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]weeklystat.Stat, 0)
	for _, s := range r.rows {
		if s.PlayerID != query.PlayerID {
			continue
		}
		if query.Season > 0 && s.Season != query.Season {
			continue
		}
		out = append(out, s)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Season != out[j].Season {
			return out[i].Season > out[j].Season
		}
		if out[i].Week != out[j].Week {
			return out[i].Week > out[j].Week
		}
		return metric.SourceRank(out[i].Source) < metric.SourceRank(out[j].Source)
	})

	if query.Limit > 0 && len(out) > query.Limit {
		out = out[:query.Limit]
	}
	return out, nil
}

// RefreshCurrent rebuilds the per-player snapshot: latest season, then week,
// with source rank breaking ties. The swap is atomic under the write lock.
func (r *WeeklyStatRepository) RefreshCurrent(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := make(map[string]weeklystat.Stat)
	for _, s := range r.rows {
		best, ok := current[s.PlayerID]
		if !ok || statRowLess(best, s) {
			current[s.PlayerID] = s
		}
	}
	r.current = current
	return nil
}

// statRowLess reports whether candidate outranks best.
func statRowLess(best, candidate weeklystat.Stat) bool {
	if candidate.Season != best.Season {
		return candidate.Season > best.Season
	}
	if candidate.Week != best.Week {
		return candidate.Week > best.Week
	}
	return metric.SourceRank(candidate.Source) < metric.SourceRank(best.Source)
}

// Current returns the materialized snapshot row for a player, if present.
func (r *WeeklyStatRepository) Current(playerID string) (weeklystat.Stat, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.current[playerID]
	return s, ok
}
