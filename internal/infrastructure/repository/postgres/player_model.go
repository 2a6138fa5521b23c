package postgres

import (
	"time"
)

type playerTableModel struct {
	ID               string    `db:"id"`
	FullName         string    `db:"full_name"`
	FirstName        string    `db:"first_name"`
	LastName         string    `db:"last_name"`
	SearchFullName   string    `db:"search_full_name"`
	Position         string    `db:"position"`
	Team             string    `db:"team"`
	Status           string    `db:"status"`
	Age              *float64  `db:"age"`
	YearsExp         *int      `db:"years_exp"`
	GsisID           string    `db:"gsis_id"`
	EspnID           string    `db:"espn_id"`
	YahooID          string    `db:"yahoo_id"`
	FantasyPositions []byte    `db:"fantasy_positions"`
	Profile          []byte    `db:"profile"`
	UpdatedAt        time.Time `db:"updated_at"`
}

type playerInsertModel struct {
	ID               string    `db:"id"`
	FullName         string    `db:"full_name"`
	FirstName        string    `db:"first_name"`
	LastName         string    `db:"last_name"`
	SearchFullName   string    `db:"search_full_name"`
	Position         string    `db:"position"`
	Team             string    `db:"team"`
	Status           string    `db:"status"`
	Age              *float64  `db:"age"`
	YearsExp         *int      `db:"years_exp"`
	GsisID           string    `db:"gsis_id"`
	EspnID           string    `db:"espn_id"`
	YahooID          string    `db:"yahoo_id"`
	FantasyPositions string    `db:"fantasy_positions"`
	Profile          string    `db:"profile"`
	UpdatedAt        time.Time `db:"updated_at"`
}
