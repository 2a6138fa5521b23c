package screener

import "context"

type OptionsQuery struct {
	Search   string
	Position string
	Team     string
	Limit    int
}

// Repository executes normalized screener queries against the materialized
// metric store.
type Repository interface {
	Query(ctx context.Context, query Query) (Result, error)
	ListFilterOptions(ctx context.Context, query OptionsQuery) ([]FilterOption, error)
}
