package weeklystat

import (
	"fmt"
	"strings"
	"time"
)

const SeasonTypeRegular = "regular"

// Stat is one source's weekly stat line for a player. The composite key
// includes Source, so the same player-week can hold independent rows from
// each upstream for provenance comparison.
type Stat struct {
	PlayerID             string
	Season               int
	Week                 int
	SeasonType           string
	Team                 string
	OpponentTeam         string
	FantasyPointsPPR     *float64
	FantasyPointsHalfPPR *float64
	FantasyPointsStd     *float64
	PassingYards         *float64
	RushingYards         *float64
	ReceivingYards       *float64
	Receptions           *float64
	Touchdowns           *float64
	Turnovers            *float64
	RawStats             map[string]any
	Source               string
	UpdatedAt            time.Time
}

func (s Stat) Validate() error {
	if strings.TrimSpace(s.PlayerID) == "" {
		return fmt.Errorf("stat player id is required")
	}
	if s.Season <= 0 {
		return fmt.Errorf("stat season must be greater than zero")
	}
	if s.Week <= 0 {
		return fmt.Errorf("stat week must be greater than zero")
	}
	if strings.TrimSpace(s.Source) == "" {
		return fmt.Errorf("stat source is required")
	}
	return nil
}
