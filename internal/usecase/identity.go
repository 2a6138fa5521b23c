package usecase

import (
	"context"

	"github.com/swaggerdagger987/FDL/internal/domain/player"
	"github.com/swaggerdagger987/FDL/internal/statkey"
)

type nameKey struct {
	search   string
	team     string
	position string
}

// IdentityIndex resolves secondary-source rows to canonical player IDs via a
// waterfall: gsis cross-reference, then (name, team, position), then
// (name, "", position). Unresolved rows are dropped by the caller.
type IdentityIndex struct {
	gsis  map[string]string
	names map[nameKey]string
}

func BuildIdentityIndex(ctx context.Context, repo player.Repository) (*IdentityIndex, error) {
	rows, err := repo.ListIdentityIndex(ctx)
	if err != nil {
		return nil, err
	}

	index := &IdentityIndex{
		gsis:  make(map[string]string, len(rows)),
		names: make(map[nameKey]string, len(rows)*2),
	}
	for _, row := range rows {
		if row.GsisID != "" {
			index.gsis[row.GsisID] = row.ID
		}
		index.names[nameKey{search: row.SearchFullName, team: row.Team, position: row.Position}] = row.ID
		if row.SearchFullName != "" {
			index.names[nameKey{search: row.SearchFullName, team: "", position: row.Position}] = row.ID
		}
	}
	return index, nil
}

func (x *IdentityIndex) Resolve(gsisID, displayName, team, position string) (string, bool) {
	if x == nil {
		return "", false
	}
	if gsisID != "" {
		if playerID, ok := x.gsis[gsisID]; ok {
			return playerID, true
		}
	}

	search := statkey.NormalizeName(displayName)
	if playerID, ok := x.names[nameKey{search: search, team: team, position: position}]; ok {
		return playerID, true
	}
	if playerID, ok := x.names[nameKey{search: search, team: "", position: position}]; ok {
		return playerID, true
	}
	return "", false
}
