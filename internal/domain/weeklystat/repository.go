package weeklystat

import "context"

type HistoryQuery struct {
	PlayerID string
	Season   int
	Limit    int
}

// Repository persists per-source weekly stat lines. Upsert only; re-ingestion
// of an existing composite key overwrites value fields.
type Repository interface {
	UpsertMany(ctx context.Context, stats []Stat) error
	ListHistory(ctx context.Context, query HistoryQuery) ([]Stat, error)
	// RefreshCurrent rebuilds the per-player "current stats" snapshot from the
	// ranked weekly rows (season desc, week desc, source priority asc).
	RefreshCurrent(ctx context.Context) error
}
