package metric

import "context"

type HistoryQuery struct {
	PlayerID string
	Season   int
	StatKeys []string
	Limit    int
}

// Repository persists the long-format weekly metric store and its latest-value
// materialization.
type Repository interface {
	UpsertWeeklyMany(ctx context.Context, metrics []Weekly) error
	ListHistory(ctx context.Context, query HistoryQuery) ([]Weekly, error)
	// RecomputeLatest rebuilds the latest-metrics table in a single
	// transaction: snapshot winners from the weekly store ranked by
	// (season desc, week desc, source rank asc), upsert them, prune
	// non-profile rows no longer backed by a winner, then unconditionally
	// re-apply the supplied profile descriptor rows.
	RecomputeLatest(ctx context.Context, profileRows []Latest) error
	ListLatestKeys(ctx context.Context) ([]string, error)
	GetLatestForPlayer(ctx context.Context, playerID string) ([]Latest, error)
}
