package syncstate

import "context"

// Repository persists small key/value bookkeeping entries.
type Repository interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, value string) error
}
