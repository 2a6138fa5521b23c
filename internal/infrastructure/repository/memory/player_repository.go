package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/swaggerdagger987/FDL/internal/domain/player"
)

type PlayerRepository struct {
	mu      sync.RWMutex
	players map[string]player.Player
}

func NewPlayerRepository(players []player.Player) *PlayerRepository {
	index := make(map[string]player.Player, len(players))
	for _, p := range players {
		index[p.ID] = p
	}
	return &PlayerRepository{players: index}
}

func (r *PlayerRepository) UpsertMany(_ context.Context, players []player.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range players {
		if err := p.Validate(); err != nil {
			return err
		}
		r.players[p.ID] = p
	}
	return nil
}

func (r *PlayerRepository) GetByID(_ context.Context, playerID string) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.players[playerID]
	return p, ok, nil
}

func (r *PlayerRepository) ListProfiles(_ context.Context) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Player, 0, len(r.players))
	for _, p := range r.players {
		if len(p.Profile) == 0 && p.Age == nil && p.YearsExp == nil {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *PlayerRepository) ListIdentityIndex(_ context.Context) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, player.Player{
			ID:             p.ID,
			GsisID:         p.GsisID,
			SearchFullName: p.SearchFullName,
			Team:           p.Team,
			Position:       p.Position,
		})
	}
	return out, nil
}

func (r *PlayerRepository) ListTeams(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, p := range r.players {
		if p.Team != "" {
			seen[p.Team] = struct{}{}
		}
	}

	teams := make([]string, 0, len(seen))
	for team := range seen {
		teams = append(teams, team)
	}
	sort.Strings(teams)
	return teams, nil
}

// All returns a snapshot of every player, for in-memory query joins.
func (r *PlayerRepository) All() []player.Player {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p)
	}
	return out
}
