package player

import (
	"fmt"
	"strings"
	"time"
)

// Player is the canonical identity record for an NFL athlete. It is fully
// replaced on every identity sync pass and never deleted.
type Player struct {
	ID               string
	FullName         string
	FirstName        string
	LastName         string
	SearchFullName   string
	Position         string
	Team             string
	Status           string
	Age              *float64
	YearsExp         *int
	GsisID           string
	EspnID           string
	YahooID          string
	FantasyPositions []string
	Profile          map[string]any
	UpdatedAt        time.Time
}

func (p Player) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("player id is required")
	}
	if strings.TrimSpace(p.FullName) == "" {
		return fmt.Errorf("player full name is required")
	}
	return nil
}

// Summary is the projection of a player carried on screener result rows.
type Summary struct {
	ID       string
	FullName string
	Position string
	Team     string
	Status   string
	Age      *float64
	YearsExp *int
}
