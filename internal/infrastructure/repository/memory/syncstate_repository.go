package memory

import (
	"context"
	"sync"
	"time"

	"github.com/swaggerdagger987/FDL/internal/domain/syncstate"
)

type SyncStateRepository struct {
	mu      sync.RWMutex
	entries map[string]syncstate.Entry
	now     func() time.Time
}

func NewSyncStateRepository() *SyncStateRepository {
	return &SyncStateRepository{
		entries: make(map[string]syncstate.Entry),
		now:     time.Now,
	}
}

func (r *SyncStateRepository) Get(_ context.Context, key string) (syncstate.Entry, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[key]
	return entry, ok, nil
}

func (r *SyncStateRepository) Set(_ context.Context, key string, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[key] = syncstate.Entry{
		Key:       key,
		Value:     value,
		UpdatedAt: r.now().UTC(),
	}
	return nil
}
