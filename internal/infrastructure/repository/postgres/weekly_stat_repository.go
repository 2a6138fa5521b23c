package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/swaggerdagger987/FDL/internal/domain/weeklystat"
	qb "github.com/swaggerdagger987/FDL/internal/platform/querybuilder"
)

type WeeklyStatRepository struct {
	db *sqlx.DB
}

var weeklyStatSelectColumns = []string{
	"player_id",
	"season",
	"week",
	"season_type",
	"team",
	"opponent_team",
	"fantasy_points_ppr",
	"fantasy_points_half_ppr",
	"fantasy_points_std",
	"passing_yards",
	"rushing_yards",
	"receiving_yards",
	"receptions",
	"touchdowns",
	"turnovers",
	"raw_stats",
	"source",
	"updated_at",
}

// sourceRankSQL mirrors the domain source priority so ranking happens in one
// place per query: sleeper first, nflverse second, everything else after.
const sourceRankSQL = "CASE source WHEN 'sleeper' THEN 0 WHEN 'nflverse' THEN 1 ELSE 2 END"

func NewWeeklyStatRepository(db *sqlx.DB) *WeeklyStatRepository {
	return &WeeklyStatRepository{db: db}
}

func (r *WeeklyStatRepository) UpsertMany(ctx context.Context, stats []weeklystat.Stat) error {
	if len(stats) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert weekly stats: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range stats {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("validate weekly stat player_id=%s season=%d week=%d: %w",
				item.PlayerID, item.Season, item.Week, err)
		}

		seasonType := strings.TrimSpace(item.SeasonType)
		if seasonType == "" {
			seasonType = weeklystat.SeasonTypeRegular
		}
		insertModel := weeklyStatInsertModel{
			PlayerID:             strings.TrimSpace(item.PlayerID),
			Season:               item.Season,
			Week:                 item.Week,
			SeasonType:           seasonType,
			Team:                 strings.TrimSpace(item.Team),
			OpponentTeam:         strings.TrimSpace(item.OpponentTeam),
			FantasyPointsPPR:     item.FantasyPointsPPR,
			FantasyPointsHalfPPR: item.FantasyPointsHalfPPR,
			FantasyPointsStd:     item.FantasyPointsStd,
			PassingYards:         item.PassingYards,
			RushingYards:         item.RushingYards,
			ReceivingYards:       item.ReceivingYards,
			Receptions:           item.Receptions,
			Touchdowns:           item.Touchdowns,
			Turnovers:            item.Turnovers,
			RawStats:             encodeJSONMap(item.RawStats),
			Source:               strings.TrimSpace(item.Source),
			UpdatedAt:            item.UpdatedAt.UTC(),
		}

		query, args, err := qb.InsertModel("player_week_stats", insertModel, `ON CONFLICT (player_id, season, week, season_type, source)
DO UPDATE SET
    team = EXCLUDED.team,
    opponent_team = EXCLUDED.opponent_team,
    fantasy_points_ppr = EXCLUDED.fantasy_points_ppr,
    fantasy_points_half_ppr = EXCLUDED.fantasy_points_half_ppr,
    fantasy_points_std = EXCLUDED.fantasy_points_std,
    passing_yards = EXCLUDED.passing_yards,
    rushing_yards = EXCLUDED.rushing_yards,
    receiving_yards = EXCLUDED.receiving_yards,
    receptions = EXCLUDED.receptions,
    touchdowns = EXCLUDED.touchdowns,
    turnovers = EXCLUDED.turnovers,
    raw_stats = EXCLUDED.raw_stats,
    updated_at = EXCLUDED.updated_at`)
		if err != nil {
			return fmt.Errorf("build upsert weekly stat query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert weekly stat player_id=%s season=%d week=%d source=%s: %w",
				item.PlayerID, item.Season, item.Week, item.Source, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert weekly stats tx: %w", err)
	}
	return nil
}

func (r *WeeklyStatRepository) ListHistory(ctx context.Context, historyQuery weeklystat.HistoryQuery) ([]weeklystat.Stat, error) {
	builder := qb.Select(weeklyStatSelectColumns...).From("player_week_stats").
		Where(qb.Eq("player_id", historyQuery.PlayerID))
	if historyQuery.Season > 0 {
		builder = builder.Where(qb.Eq("season", historyQuery.Season))
	}
	query, args, err := builder.
		OrderBy("season DESC", "week DESC", sourceRankSQL+" ASC").
		Limit(historyQuery.Limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select weekly stat history query: %w", err)
	}

	var rows []weeklyStatTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select weekly stat history player_id=%s: %w", historyQuery.PlayerID, err)
	}

	out := make([]weeklystat.Stat, 0, len(rows))
	for _, row := range rows {
		out = append(out, weeklyStatFromTableModel(row))
	}
	return out, nil
}

// RefreshCurrent replaces the per-player current-stats snapshot with the top
// ranked weekly row for each player, all inside one transaction.
func (r *WeeklyStatRepository) RefreshCurrent(ctx context.Context) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx refresh current stats: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM player_current_stats"); err != nil {
		return fmt.Errorf("clear current stats: %w", err)
	}

	insert := `INSERT INTO player_current_stats (` + strings.Join(weeklyStatSelectColumns, ", ") + `)
SELECT DISTINCT ON (player_id) ` + strings.Join(weeklyStatSelectColumns, ", ") + `
FROM player_week_stats
ORDER BY player_id, season DESC, week DESC, ` + sourceRankSQL + ` ASC`
	if _, err := tx.ExecContext(ctx, insert); err != nil {
		return fmt.Errorf("rebuild current stats: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit refresh current stats tx: %w", err)
	}
	return nil
}

func weeklyStatFromTableModel(row weeklyStatTableModel) weeklystat.Stat {
	return weeklystat.Stat{
		PlayerID:             row.PlayerID,
		Season:               row.Season,
		Week:                 row.Week,
		SeasonType:           row.SeasonType,
		Team:                 row.Team,
		OpponentTeam:         row.OpponentTeam,
		FantasyPointsPPR:     row.FantasyPointsPPR,
		FantasyPointsHalfPPR: row.FantasyPointsHalfPPR,
		FantasyPointsStd:     row.FantasyPointsStd,
		PassingYards:         row.PassingYards,
		RushingYards:         row.RushingYards,
		ReceivingYards:       row.ReceivingYards,
		Receptions:           row.Receptions,
		Touchdowns:           row.Touchdowns,
		Turnovers:            row.Turnovers,
		RawStats:             decodeJSONMap(row.RawStats),
		Source:               row.Source,
		UpdatedAt:            row.UpdatedAt,
	}
}
