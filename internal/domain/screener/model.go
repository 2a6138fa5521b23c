package screener

import (
	"github.com/swaggerdagger987/FDL/internal/domain/player"
)

// Operator names accepted after synonym folding.
const (
	OpGte     = "gte"
	OpLte     = "lte"
	OpGt      = "gt"
	OpLt      = "lt"
	OpEq      = "eq"
	OpNeq     = "neq"
	OpBetween = "between"
)

const (
	// MaxFilters bounds dynamic query cost.
	MaxFilters = 24
	// MaxColumns caps the projected metric column list.
	MaxColumns = 80
)

// Sentinel values substituted for a missing sort metric so that players
// without the metric always sort last in either direction.
const (
	MissingSortValueAsc  = 9999999
	MissingSortValueDesc = -9999999
)

// Filter is one normalized metric predicate. For OpBetween, Value holds the
// lower bound and ValueMax the upper bound.
type Filter struct {
	Key      string   `json:"key"`
	Op       string   `json:"op"`
	Value    float64  `json:"value"`
	ValueMax *float64 `json:"value_max,omitempty"`
}

type Sort struct {
	Key       string `json:"key"`
	Direction string `json:"direction"`
}

// Query is the fully normalized screener request handed to storage. All
// synonym folding, filter capping, and between-bound swapping happens before
// a Query is built.
type Query struct {
	Search    string
	Positions []string
	Team      string
	AgeMin    *float64
	AgeMax    *float64
	Filters   []Filter
	Sort      Sort
	Columns   []string
	Limit     int
	Offset    int
}

// Row is one ranked result: the player summary plus a sparse metric map
// holding only the projected keys the player actually has.
type Row struct {
	Player  player.Summary
	Metrics map[string]float64
}

type Result struct {
	Items []Row
	Total int
}

// FilterOption describes one discoverable metric key with its observed range.
type FilterOption struct {
	Key         string  `json:"key"`
	Label       string  `json:"label"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	PlayerCount int     `json:"player_count"`
}
