package postgres

import (
	"time"
)

type weeklyStatTableModel struct {
	PlayerID             string    `db:"player_id"`
	Season               int       `db:"season"`
	Week                 int       `db:"week"`
	SeasonType           string    `db:"season_type"`
	Team                 string    `db:"team"`
	OpponentTeam         string    `db:"opponent_team"`
	FantasyPointsPPR     *float64  `db:"fantasy_points_ppr"`
	FantasyPointsHalfPPR *float64  `db:"fantasy_points_half_ppr"`
	FantasyPointsStd     *float64  `db:"fantasy_points_std"`
	PassingYards         *float64  `db:"passing_yards"`
	RushingYards         *float64  `db:"rushing_yards"`
	ReceivingYards       *float64  `db:"receiving_yards"`
	Receptions           *float64  `db:"receptions"`
	Touchdowns           *float64  `db:"touchdowns"`
	Turnovers            *float64  `db:"turnovers"`
	RawStats             []byte    `db:"raw_stats"`
	Source               string    `db:"source"`
	UpdatedAt            time.Time `db:"updated_at"`
}

type weeklyStatInsertModel struct {
	PlayerID             string    `db:"player_id"`
	Season               int       `db:"season"`
	Week                 int       `db:"week"`
	SeasonType           string    `db:"season_type"`
	Team                 string    `db:"team"`
	OpponentTeam         string    `db:"opponent_team"`
	FantasyPointsPPR     *float64  `db:"fantasy_points_ppr"`
	FantasyPointsHalfPPR *float64  `db:"fantasy_points_half_ppr"`
	FantasyPointsStd     *float64  `db:"fantasy_points_std"`
	PassingYards         *float64  `db:"passing_yards"`
	RushingYards         *float64  `db:"rushing_yards"`
	ReceivingYards       *float64  `db:"receiving_yards"`
	Receptions           *float64  `db:"receptions"`
	Touchdowns           *float64  `db:"touchdowns"`
	Turnovers            *float64  `db:"turnovers"`
	RawStats             string    `db:"raw_stats"`
	Source               string    `db:"source"`
	UpdatedAt            time.Time `db:"updated_at"`
}
