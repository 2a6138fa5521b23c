package metric

import (
	"fmt"
	"strings"
	"time"
)

// Source names recognized by the ranking rules. Anything else ranks after
// both feeds.
const (
	SourceSleeper  = "sleeper"
	SourceNflverse = "nflverse"
	// SourceProfile marks descriptor rows derived from player profiles. They
	// are re-injected on every recompute and exempt from orphan pruning.
	SourceProfile = "profile"
)

// SeasonTypeRegular is the default season type; postseason rows carry their
// own value so the same week number never collides across phases.
const SeasonTypeRegular = "regular"

// SourceRank orders sources for conflict resolution; lower wins.
func SourceRank(source string) int {
	switch source {
	case SourceSleeper:
		return 0
	case SourceNflverse:
		return 1
	default:
		return 2
	}
}

// Weekly is one numeric metric observation for a player-week from one source.
// SeasonType is part of the composite key; empty values are stored as regular.
type Weekly struct {
	PlayerID   string
	Season     int
	Week       int
	SeasonType string
	StatKey    string
	Value      float64
	Source     string
	UpdatedAt  time.Time
}

func (w Weekly) Validate() error {
	if strings.TrimSpace(w.PlayerID) == "" {
		return fmt.Errorf("metric player id is required")
	}
	if strings.TrimSpace(w.StatKey) == "" {
		return fmt.Errorf("metric stat key is required")
	}
	if strings.TrimSpace(w.Source) == "" {
		return fmt.Errorf("metric source is required")
	}
	return nil
}

// Latest is the materialized per-player winner for one stat key. Season and
// week are zero for profile descriptor rows, which have no game context.
type Latest struct {
	PlayerID  string
	StatKey   string
	Value     float64
	Season    int
	Week      int
	Source    string
	UpdatedAt time.Time
}
