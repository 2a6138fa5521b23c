package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/swaggerdagger987/FDL/internal/domain/player"
	"github.com/swaggerdagger987/FDL/internal/domain/screener"
	qb "github.com/swaggerdagger987/FDL/internal/platform/querybuilder"
	"github.com/swaggerdagger987/FDL/internal/statkey"
)

// ScreenerRepository evaluates normalized screener queries against the
// materialized latest-metrics table. Every metric filter becomes its own
// inner join so a player missing the key fails the filter.
type ScreenerRepository struct {
	db *sqlx.DB
}

var screenerPlayerColumns = []string{
	"p.id",
	"p.full_name",
	"p.position",
	"p.team",
	"p.status",
	"p.age",
	"p.years_exp",
}

func NewScreenerRepository(db *sqlx.DB) *ScreenerRepository {
	return &ScreenerRepository{db: db}
}

func (r *ScreenerRepository) Query(ctx context.Context, query screener.Query) (screener.Result, error) {
	total, err := r.countMatches(ctx, query)
	if err != nil {
		return screener.Result{}, err
	}
	if total == 0 {
		return screener.Result{Items: []screener.Row{}, Total: 0}, nil
	}

	summaries, err := r.selectPage(ctx, query)
	if err != nil {
		return screener.Result{}, err
	}

	metricsByPlayer, err := r.selectProjectedMetrics(ctx, summaries, query.Columns)
	if err != nil {
		return screener.Result{}, err
	}

	items := make([]screener.Row, 0, len(summaries))
	for _, summary := range summaries {
		metrics := metricsByPlayer[summary.ID]
		if metrics == nil {
			metrics = map[string]float64{}
		}
		items = append(items, screener.Row{Player: summary, Metrics: metrics})
	}
	return screener.Result{Items: items, Total: total}, nil
}

func (r *ScreenerRepository) countMatches(ctx context.Context, query screener.Query) (int, error) {
	builder := qb.Select("COUNT(*)").From("players p")
	applyScreenerFilterJoins(builder, query.Filters)
	applyScreenerBaseConditions(builder, query)

	sql, args, err := builder.ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build screener count query: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, sql, args...); err != nil {
		return 0, fmt.Errorf("count screener matches: %w", err)
	}
	return total, nil
}

func (r *ScreenerRepository) selectPage(ctx context.Context, query screener.Query) ([]player.Summary, error) {
	builder := qb.Select(screenerPlayerColumns...).From("players p")
	applyScreenerFilterJoins(builder, query.Filters)
	applyScreenerBaseConditions(builder, query)

	builder.LeftJoin("player_latest_metrics ms",
		qb.Expr("ms.player_id = p.id AND ms.stat_key = ?", query.Sort.Key))

	direction := "DESC"
	missing := screener.MissingSortValueDesc
	if query.Sort.Direction == "asc" {
		direction = "ASC"
		missing = screener.MissingSortValueAsc
	}
	builder.OrderBy(
		"COALESCE(ms.value, "+strconv.Itoa(missing)+") "+direction,
		"p.full_name ASC",
	)
	builder.Limit(query.Limit).Offset(query.Offset)

	sql, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build screener page query: %w", err)
	}

	var rows []struct {
		ID       string   `db:"id"`
		FullName string   `db:"full_name"`
		Position string   `db:"position"`
		Team     string   `db:"team"`
		Status   string   `db:"status"`
		Age      *float64 `db:"age"`
		YearsExp *int     `db:"years_exp"`
	}
	if err := r.db.SelectContext(ctx, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select screener page: %w", err)
	}

	out := make([]player.Summary, 0, len(rows))
	for _, row := range rows {
		out = append(out, player.Summary{
			ID:       row.ID,
			FullName: row.FullName,
			Position: row.Position,
			Team:     row.Team,
			Status:   row.Status,
			Age:      row.Age,
			YearsExp: row.YearsExp,
		})
	}
	return out, nil
}

func (r *ScreenerRepository) selectProjectedMetrics(
	ctx context.Context,
	summaries []player.Summary,
	columns []string,
) (map[string]map[string]float64, error) {
	if len(summaries) == 0 || len(columns) == 0 {
		return map[string]map[string]float64{}, nil
	}

	playerIDs := make([]any, 0, len(summaries))
	for _, summary := range summaries {
		playerIDs = append(playerIDs, summary.ID)
	}
	keys := make([]any, 0, len(columns))
	for _, key := range columns {
		keys = append(keys, key)
	}

	sql, args, err := qb.Select("player_id", "stat_key", "value").
		From("player_latest_metrics").
		Where(
			qb.In("player_id", playerIDs),
			qb.In("stat_key", keys),
		).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build screener projection query: %w", err)
	}

	var rows []struct {
		PlayerID string  `db:"player_id"`
		StatKey  string  `db:"stat_key"`
		Value    float64 `db:"value"`
	}
	if err := r.db.SelectContext(ctx, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select screener projection: %w", err)
	}

	out := make(map[string]map[string]float64, len(summaries))
	for _, row := range rows {
		byKey, ok := out[row.PlayerID]
		if !ok {
			byKey = make(map[string]float64, len(columns))
			out[row.PlayerID] = byKey
		}
		byKey[row.StatKey] = row.Value
	}
	return out, nil
}

// applyScreenerFilterJoins adds one inner join per metric filter. Operators
// come from the normalized domain set, never from raw caller input.
func applyScreenerFilterJoins(builder *qb.SelectBuilder, filters []screener.Filter) {
	for i, filter := range filters {
		alias := "mf" + strconv.Itoa(i)
		prefix := alias + ".player_id = p.id AND " + alias + ".stat_key = ?"

		var on qb.Condition
		switch filter.Op {
		case screener.OpBetween:
			high := filter.Value
			if filter.ValueMax != nil {
				high = *filter.ValueMax
			}
			on = qb.Expr(prefix+" AND "+alias+".value BETWEEN ? AND ?", filter.Key, filter.Value, high)
		default:
			on = qb.Expr(prefix+" AND "+alias+".value "+filterOpSQL(filter.Op)+" ?", filter.Key, filter.Value)
		}
		builder.Join("player_latest_metrics "+alias, on)
	}
}

func filterOpSQL(op string) string {
	switch op {
	case screener.OpLt:
		return "<"
	case screener.OpLte:
		return "<="
	case screener.OpGt:
		return ">"
	case screener.OpEq:
		return "="
	case screener.OpNeq:
		return "<>"
	default:
		return ">="
	}
}

func applyScreenerBaseConditions(builder *qb.SelectBuilder, query screener.Query) {
	if query.Search != "" {
		pattern := "%" + query.Search + "%"
		builder.Where(qb.Expr("(p.full_name ILIKE ? OR p.first_name ILIKE ? OR p.last_name ILIKE ?)",
			pattern, pattern, pattern))
	}
	if len(query.Positions) > 0 {
		positions := make([]any, 0, len(query.Positions))
		for _, position := range query.Positions {
			positions = append(positions, position)
		}
		builder.Where(qb.In("p.position", positions))
	}
	if query.Team != "" {
		builder.Where(qb.Eq("p.team", query.Team))
	}
	if query.AgeMin != nil {
		builder.Where(qb.Gte("p.age", *query.AgeMin))
	}
	if query.AgeMax != nil {
		builder.Where(qb.Lte("p.age", *query.AgeMax))
	}
}

func (r *ScreenerRepository) ListFilterOptions(ctx context.Context, query screener.OptionsQuery) ([]screener.FilterOption, error) {
	builder := qb.Select(
		"m.stat_key",
		"MIN(m.value) AS min_value",
		"MAX(m.value) AS max_value",
		"COUNT(*) AS player_count",
	).From("player_latest_metrics m")

	if query.Position != "" || query.Team != "" {
		builder.Join("players p", qb.Expr("p.id = m.player_id"))
		if query.Position != "" {
			builder.Where(qb.Eq("p.position", query.Position))
		}
		if query.Team != "" {
			builder.Where(qb.Eq("p.team", query.Team))
		}
	}
	applyOptionSearch(builder, query.Search)

	builder.GroupBy("m.stat_key")
	builder.OrderBy(
		"CASE m.stat_key WHEN 'fantasy_points_ppr' THEN 0 WHEN 'age' THEN 1 WHEN 'years_exp' THEN 2 ELSE 100 END",
		"m.stat_key",
	)
	builder.Limit(query.Limit)

	sql, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build filter options query: %w", err)
	}

	var rows []struct {
		StatKey     string  `db:"stat_key"`
		MinValue    float64 `db:"min_value"`
		MaxValue    float64 `db:"max_value"`
		PlayerCount int     `db:"player_count"`
	}
	if err := r.db.SelectContext(ctx, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select filter options: %w", err)
	}

	options := make([]screener.FilterOption, 0, len(rows))
	for _, row := range rows {
		options = append(options, screener.FilterOption{
			Key:         row.StatKey,
			Label:       statkey.Label(row.StatKey),
			Min:         row.MinValue,
			Max:         row.MaxValue,
			PlayerCount: row.PlayerCount,
		})
	}
	return options, nil
}

// applyOptionSearch turns a search token into key pattern matching. The yac
// shorthand also matches the spelled-out yards_after_catch family; otherwise
// separators become wildcards so partial words match across key segments.
func applyOptionSearch(builder *qb.SelectBuilder, search string) {
	token := statkey.Normalize(search)
	if token == "" {
		return
	}
	if token == "yac" {
		builder.Where(qb.Expr("(m.stat_key LIKE '%yac%' OR m.stat_key LIKE '%yards_after_catch%')"))
		return
	}
	pattern := "%" + strings.ReplaceAll(token, "_", "%") + "%"
	builder.Where(qb.Expr("m.stat_key LIKE ?", pattern))
}
