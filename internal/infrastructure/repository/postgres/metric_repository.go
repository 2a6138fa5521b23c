package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/swaggerdagger987/FDL/internal/domain/metric"
	qb "github.com/swaggerdagger987/FDL/internal/platform/querybuilder"
)

// metricInsertChunkSize keeps multi-row inserts well below the wire protocol
// parameter limit (8 columns per row).
const metricInsertChunkSize = 2000

type MetricRepository struct {
	db *sqlx.DB
}

var metricColumns = []string{
	"player_id",
	"season",
	"week",
	"season_type",
	"stat_key",
	"value",
	"source",
	"updated_at",
}

func NewMetricRepository(db *sqlx.DB) *MetricRepository {
	return &MetricRepository{db: db}
}

func (r *MetricRepository) UpsertWeeklyMany(ctx context.Context, metrics []metric.Weekly) error {
	if len(metrics) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert weekly metrics: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for start := 0; start < len(metrics); start += metricInsertChunkSize {
		end := start + metricInsertChunkSize
		if end > len(metrics) {
			end = len(metrics)
		}

		builder := qb.InsertInto("player_week_metrics").Columns(metricColumns...)
		for _, item := range metrics[start:end] {
			if err := item.Validate(); err != nil {
				return fmt.Errorf("validate weekly metric player_id=%s stat_key=%s: %w",
					item.PlayerID, item.StatKey, err)
			}
			seasonType := strings.TrimSpace(item.SeasonType)
			if seasonType == "" {
				seasonType = metric.SeasonTypeRegular
			}
			builder.Values(
				strings.TrimSpace(item.PlayerID),
				item.Season,
				item.Week,
				seasonType,
				strings.TrimSpace(item.StatKey),
				item.Value,
				strings.TrimSpace(item.Source),
				item.UpdatedAt.UTC(),
			)
		}

		query, args, err := builder.Suffix(`ON CONFLICT (player_id, season, week, season_type, stat_key, source)
DO UPDATE SET
    value = EXCLUDED.value,
    updated_at = EXCLUDED.updated_at`).ToSQL()
		if err != nil {
			return fmt.Errorf("build upsert weekly metrics query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert weekly metrics chunk [%d:%d]: %w", start, end, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert weekly metrics tx: %w", err)
	}
	return nil
}

func (r *MetricRepository) ListHistory(ctx context.Context, historyQuery metric.HistoryQuery) ([]metric.Weekly, error) {
	builder := qb.Select(metricColumns...).From("player_week_metrics").
		Where(qb.Eq("player_id", historyQuery.PlayerID))
	if historyQuery.Season > 0 {
		builder = builder.Where(qb.Eq("season", historyQuery.Season))
	}
	if len(historyQuery.StatKeys) > 0 {
		keys := make([]any, 0, len(historyQuery.StatKeys))
		for _, key := range historyQuery.StatKeys {
			keys = append(keys, key)
		}
		builder = builder.Where(qb.In("stat_key", keys))
	}
	query, args, err := builder.
		OrderBy("season DESC", "week DESC", "stat_key").
		Limit(historyQuery.Limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select metric history query: %w", err)
	}

	var rows []metricWeeklyTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select metric history player_id=%s: %w", historyQuery.PlayerID, err)
	}

	out := make([]metric.Weekly, 0, len(rows))
	for _, row := range rows {
		out = append(out, metric.Weekly{
			PlayerID:   row.PlayerID,
			Season:     row.Season,
			Week:       row.Week,
			SeasonType: row.SeasonType,
			StatKey:    row.StatKey,
			Value:      row.Value,
			Source:     row.Source,
			UpdatedAt:  row.UpdatedAt,
		})
	}
	return out, nil
}

// RecomputeLatest rebuilds player_latest_metrics in one transaction: snapshot
// the ranked winner per (player, stat key), upsert winners, prune non-profile
// rows no longer backed by a winner, then re-apply profile descriptor rows.
func (r *MetricRepository) RecomputeLatest(ctx context.Context, profileRows []metric.Latest) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx recompute latest metrics: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	snapshot := `CREATE TEMP TABLE latest_snapshot ON COMMIT DROP AS
SELECT DISTINCT ON (player_id, stat_key)
    player_id, stat_key, value, season, week, source, updated_at
FROM player_week_metrics
ORDER BY player_id, stat_key, season DESC, week DESC, ` + sourceRankSQL + ` ASC`
	if _, err := tx.ExecContext(ctx, snapshot); err != nil {
		return fmt.Errorf("snapshot latest metric winners: %w", err)
	}

	upsert := `INSERT INTO player_latest_metrics (player_id, stat_key, value, season, week, source, updated_at)
SELECT player_id, stat_key, value, season, week, source, updated_at FROM latest_snapshot
ON CONFLICT (player_id, stat_key)
DO UPDATE SET
    value = EXCLUDED.value,
    season = EXCLUDED.season,
    week = EXCLUDED.week,
    source = EXCLUDED.source,
    updated_at = EXCLUDED.updated_at`
	if _, err := tx.ExecContext(ctx, upsert); err != nil {
		return fmt.Errorf("upsert latest metric winners: %w", err)
	}

	prune := `DELETE FROM player_latest_metrics plm
WHERE plm.source <> 'profile'
  AND NOT EXISTS (
    SELECT 1 FROM latest_snapshot s
    WHERE s.player_id = plm.player_id AND s.stat_key = plm.stat_key
  )`
	if _, err := tx.ExecContext(ctx, prune); err != nil {
		return fmt.Errorf("prune orphaned latest metrics: %w", err)
	}

	if err := upsertProfileRows(ctx, tx, profileRows); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit recompute latest metrics tx: %w", err)
	}
	return nil
}

// upsertProfileRows overwrites descriptor rows unconditionally; they outrank
// whatever a feed may have written under the same key.
func upsertProfileRows(ctx context.Context, tx *sqlx.Tx, profileRows []metric.Latest) error {
	for start := 0; start < len(profileRows); start += metricInsertChunkSize {
		end := start + metricInsertChunkSize
		if end > len(profileRows) {
			end = len(profileRows)
		}

		builder := qb.InsertInto("player_latest_metrics").
			Columns("player_id", "stat_key", "value", "season", "week", "source", "updated_at")
		for _, row := range profileRows[start:end] {
			builder.Values(
				strings.TrimSpace(row.PlayerID),
				strings.TrimSpace(row.StatKey),
				row.Value,
				0,
				0,
				metric.SourceProfile,
				row.UpdatedAt.UTC(),
			)
		}

		query, args, err := builder.Suffix(`ON CONFLICT (player_id, stat_key)
DO UPDATE SET
    value = EXCLUDED.value,
    season = EXCLUDED.season,
    week = EXCLUDED.week,
    source = EXCLUDED.source,
    updated_at = EXCLUDED.updated_at`).ToSQL()
		if err != nil {
			return fmt.Errorf("build upsert profile metrics query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert profile metrics chunk [%d:%d]: %w", start, end, err)
		}
	}
	return nil
}

func (r *MetricRepository) ListLatestKeys(ctx context.Context) ([]string, error) {
	query, args, err := qb.Select("DISTINCT stat_key").From("player_latest_metrics").
		OrderBy("stat_key").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select latest metric keys query: %w", err)
	}

	var keys []string
	if err := r.db.SelectContext(ctx, &keys, query, args...); err != nil {
		return nil, fmt.Errorf("select latest metric keys: %w", err)
	}
	return keys, nil
}

func (r *MetricRepository) GetLatestForPlayer(ctx context.Context, playerID string) ([]metric.Latest, error) {
	query, args, err := qb.Select("player_id", "stat_key", "value", "season", "week", "source", "updated_at").
		From("player_latest_metrics").
		Where(qb.Eq("player_id", playerID)).
		OrderBy("stat_key").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select latest metrics query: %w", err)
	}

	var rows []metricLatestTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select latest metrics player_id=%s: %w", playerID, err)
	}

	out := make([]metric.Latest, 0, len(rows))
	for _, row := range rows {
		out = append(out, metric.Latest{
			PlayerID:  row.PlayerID,
			StatKey:   row.StatKey,
			Value:     row.Value,
			Season:    row.Season,
			Week:      row.Week,
			Source:    row.Source,
			UpdatedAt: row.UpdatedAt,
		})
	}
	return out, nil
}

type metricWeeklyTableModel struct {
	PlayerID   string    `db:"player_id"`
	Season     int       `db:"season"`
	Week       int       `db:"week"`
	SeasonType string    `db:"season_type"`
	StatKey    string    `db:"stat_key"`
	Value      float64   `db:"value"`
	Source     string    `db:"source"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type metricLatestTableModel struct {
	PlayerID  string    `db:"player_id"`
	StatKey   string    `db:"stat_key"`
	Value     float64   `db:"value"`
	Season    int       `db:"season"`
	Week      int       `db:"week"`
	Source    string    `db:"source"`
	UpdatedAt time.Time `db:"updated_at"`
}
