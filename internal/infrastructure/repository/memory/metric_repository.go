package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/swaggerdagger987/FDL/internal/domain/metric"
)

type weeklyMetricKey struct {
	playerID   string
	season     int
	week       int
	seasonType string
	statKey    string
	source     string
}

type latestKey struct {
	playerID string
	statKey  string
}

type MetricRepository struct {
	mu     sync.RWMutex
	weekly map[weeklyMetricKey]metric.Weekly
	latest map[latestKey]metric.Latest
}

func NewMetricRepository() *MetricRepository {
	return &MetricRepository{
		weekly: make(map[weeklyMetricKey]metric.Weekly),
		latest: make(map[latestKey]metric.Latest),
	}
}

func (r *MetricRepository) UpsertWeeklyMany(_ context.Context, metrics []metric.Weekly) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range metrics {
		if err := m.Validate(); err != nil {
			return err
		}
		if m.SeasonType == "" {
			m.SeasonType = metric.SeasonTypeRegular
		}
		key := weeklyMetricKey{
			playerID:   m.PlayerID,
			season:     m.Season,
			week:       m.Week,
			seasonType: m.SeasonType,
			statKey:    m.StatKey,
			source:     m.Source,
		}
		r.weekly[key] = m
	}
	return nil
}

func (r *MetricRepository) ListHistory(_ context.Context, query metric.HistoryQuery) ([]metric.Weekly, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wantKeys := make(map[string]struct{}, len(query.StatKeys))
	for _, key := range query.StatKeys {
		wantKeys[key] = struct{}{}
	}

	out := make([]metric.Weekly, 0)
	for _, m := range r.weekly {
		if m.PlayerID != query.PlayerID {
			continue
		}
		if query.Season > 0 && m.Season != query.Season {
			continue
		}
		if len(wantKeys) > 0 {
			if _, ok := wantKeys[m.StatKey]; !ok {
				continue
			}
		}
		out = append(out, m)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Season != out[j].Season {
			return out[i].Season > out[j].Season
		}
		if out[i].Week != out[j].Week {
			return out[i].Week > out[j].Week
		}
		return out[i].StatKey < out[j].StatKey
	})

	if query.Limit > 0 && len(out) > query.Limit {
		out = out[:query.Limit]
	}
	return out, nil
}

// RecomputeLatest rebuilds the latest table in one swap under the write lock:
// readers see either the prior state or the fully recomputed one.
func (r *MetricRepository) RecomputeLatest(_ context.Context, profileRows []metric.Latest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := make(map[latestKey]metric.Latest)
	for _, m := range r.weekly {
		key := latestKey{playerID: m.PlayerID, statKey: m.StatKey}
		candidate := metric.Latest{
			PlayerID:  m.PlayerID,
			StatKey:   m.StatKey,
			Value:     m.Value,
			Season:    m.Season,
			Week:      m.Week,
			Source:    m.Source,
			UpdatedAt: m.UpdatedAt,
		}
		best, ok := snapshot[key]
		if !ok || latestRowOutranks(best, candidate) {
			snapshot[key] = candidate
		}
	}

	next := make(map[latestKey]metric.Latest, len(snapshot)+len(profileRows))

	// Carry forward existing profile rows first so weekly winners and fresh
	// profile rows can overwrite them below.
	for key, row := range r.latest {
		if row.Source == metric.SourceProfile {
			next[key] = row
		}
	}
	for key, row := range snapshot {
		next[key] = row
	}
	for _, row := range profileRows {
		if row.PlayerID == "" || row.StatKey == "" {
			continue
		}
		row.Source = metric.SourceProfile
		next[latestKey{playerID: row.PlayerID, statKey: row.StatKey}] = row
	}

	r.latest = next
	return nil
}

// latestRowOutranks reports whether candidate beats best under the
// (season desc, week desc, source rank asc) total order.
func latestRowOutranks(best, candidate metric.Latest) bool {
	if candidate.Season != best.Season {
		return candidate.Season > best.Season
	}
	if candidate.Week != best.Week {
		return candidate.Week > best.Week
	}
	return metric.SourceRank(candidate.Source) < metric.SourceRank(best.Source)
}

func (r *MetricRepository) ListLatestKeys(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	for key := range r.latest {
		seen[key.statKey] = struct{}{}
	}

	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (r *MetricRepository) GetLatestForPlayer(_ context.Context, playerID string) ([]metric.Latest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]metric.Latest, 0)
	for key, row := range r.latest {
		if key.playerID == playerID {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StatKey < out[j].StatKey })
	return out, nil
}

// Latest returns one materialized row, for assertions and in-memory joins.
func (r *MetricRepository) Latest(playerID, statKey string) (metric.Latest, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.latest[latestKey{playerID: playerID, statKey: statKey}]
	return row, ok
}

// AllLatest snapshots the materialized table for in-memory screener scans.
func (r *MetricRepository) AllLatest() []metric.Latest {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]metric.Latest, 0, len(r.latest))
	for _, row := range r.latest {
		out = append(out, row)
	}
	return out
}
