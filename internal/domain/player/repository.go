package player

import "context"

// Repository describes player persistence needs from use cases.
type Repository interface {
	UpsertMany(ctx context.Context, players []Player) error
	GetByID(ctx context.Context, playerID string) (Player, bool, error)
	// ListProfiles returns every player carrying a non-empty profile blob.
	ListProfiles(ctx context.Context) ([]Player, error)
	// ListIdentityIndex returns the rows needed to build the cross-source
	// identity lookup maps: id, gsis id, search name, team, position.
	ListIdentityIndex(ctx context.Context) ([]Player, error)
	ListTeams(ctx context.Context) ([]string, error)
}
