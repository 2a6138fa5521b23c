package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/swaggerdagger987/FDL/internal/domain/player"
	qb "github.com/swaggerdagger987/FDL/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db *sqlx.DB
}

var playerSelectColumns = []string{
	"id",
	"full_name",
	"first_name",
	"last_name",
	"search_full_name",
	"position",
	"team",
	"status",
	"age",
	"years_exp",
	"gsis_id",
	"espn_id",
	"yahoo_id",
	"fantasy_positions",
	"profile",
	"updated_at",
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) UpsertMany(ctx context.Context, players []player.Player) error {
	if len(players) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert players: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range players {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("validate player id=%s: %w", item.ID, err)
		}

		insertModel := playerInsertModel{
			ID:               strings.TrimSpace(item.ID),
			FullName:         strings.TrimSpace(item.FullName),
			FirstName:        strings.TrimSpace(item.FirstName),
			LastName:         strings.TrimSpace(item.LastName),
			SearchFullName:   strings.TrimSpace(item.SearchFullName),
			Position:         strings.TrimSpace(item.Position),
			Team:             strings.TrimSpace(item.Team),
			Status:           strings.TrimSpace(item.Status),
			Age:              item.Age,
			YearsExp:         item.YearsExp,
			GsisID:           strings.TrimSpace(item.GsisID),
			EspnID:           strings.TrimSpace(item.EspnID),
			YahooID:          strings.TrimSpace(item.YahooID),
			FantasyPositions: encodeJSONStrings(item.FantasyPositions),
			Profile:          encodeJSONMap(item.Profile),
			UpdatedAt:        item.UpdatedAt.UTC(),
		}

		query, args, err := qb.InsertModel("players", insertModel, `ON CONFLICT (id)
DO UPDATE SET
    full_name = EXCLUDED.full_name,
    first_name = EXCLUDED.first_name,
    last_name = EXCLUDED.last_name,
    search_full_name = EXCLUDED.search_full_name,
    position = EXCLUDED.position,
    team = EXCLUDED.team,
    status = EXCLUDED.status,
    age = EXCLUDED.age,
    years_exp = EXCLUDED.years_exp,
    gsis_id = EXCLUDED.gsis_id,
    espn_id = EXCLUDED.espn_id,
    yahoo_id = EXCLUDED.yahoo_id,
    fantasy_positions = EXCLUDED.fantasy_positions,
    profile = EXCLUDED.profile,
    updated_at = EXCLUDED.updated_at`)
		if err != nil {
			return fmt.Errorf("build upsert player query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert player id=%s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert players tx: %w", err)
	}
	return nil
}

func (r *PlayerRepository) GetByID(ctx context.Context, playerID string) (player.Player, bool, error) {
	query, args, err := qb.Select(playerSelectColumns...).From("players").
		Where(qb.Eq("id", playerID)).
		ToSQL()
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build select player query: %w", err)
	}

	var row playerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("select player id=%s: %w", playerID, err)
	}

	return playerFromTableModel(row), true, nil
}

func (r *PlayerRepository) ListProfiles(ctx context.Context) ([]player.Player, error) {
	query, args, err := qb.Select("id", "age", "years_exp", "profile").From("players").
		Where(qb.Expr("(profile <> '{}'::jsonb OR age IS NOT NULL OR years_exp IS NOT NULL)")).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select player profiles query: %w", err)
	}

	var rows []struct {
		ID       string   `db:"id"`
		Age      *float64 `db:"age"`
		YearsExp *int     `db:"years_exp"`
		Profile  []byte   `db:"profile"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select player profiles: %w", err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, player.Player{
			ID:       row.ID,
			Age:      row.Age,
			YearsExp: row.YearsExp,
			Profile:  decodeJSONMap(row.Profile),
		})
	}
	return out, nil
}

func (r *PlayerRepository) ListIdentityIndex(ctx context.Context) ([]player.Player, error) {
	query, args, err := qb.Select("id", "gsis_id", "search_full_name", "full_name", "team", "position").
		From("players").
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select identity index query: %w", err)
	}

	var rows []struct {
		ID             string `db:"id"`
		GsisID         string `db:"gsis_id"`
		SearchFullName string `db:"search_full_name"`
		FullName       string `db:"full_name"`
		Team           string `db:"team"`
		Position       string `db:"position"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select identity index: %w", err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, player.Player{
			ID:             row.ID,
			GsisID:         row.GsisID,
			SearchFullName: row.SearchFullName,
			FullName:       row.FullName,
			Team:           row.Team,
			Position:       row.Position,
		})
	}
	return out, nil
}

func (r *PlayerRepository) ListTeams(ctx context.Context) ([]string, error) {
	query, args, err := qb.Select("DISTINCT team").From("players").
		Where(qb.Expr("team <> ''")).
		OrderBy("team").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select teams query: %w", err)
	}

	var teams []string
	if err := r.db.SelectContext(ctx, &teams, query, args...); err != nil {
		return nil, fmt.Errorf("select teams: %w", err)
	}
	return teams, nil
}

func playerFromTableModel(row playerTableModel) player.Player {
	return player.Player{
		ID:               row.ID,
		FullName:         row.FullName,
		FirstName:        row.FirstName,
		LastName:         row.LastName,
		SearchFullName:   row.SearchFullName,
		Position:         row.Position,
		Team:             row.Team,
		Status:           row.Status,
		Age:              row.Age,
		YearsExp:         row.YearsExp,
		GsisID:           row.GsisID,
		EspnID:           row.EspnID,
		YahooID:          row.YahooID,
		FantasyPositions: decodeJSONStrings(row.FantasyPositions),
		Profile:          decodeJSONMap(row.Profile),
		UpdatedAt:        row.UpdatedAt,
	}
}
