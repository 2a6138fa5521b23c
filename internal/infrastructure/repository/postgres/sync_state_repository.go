package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/swaggerdagger987/FDL/internal/domain/syncstate"
	qb "github.com/swaggerdagger987/FDL/internal/platform/querybuilder"
)

type SyncStateRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewSyncStateRepository(db *sqlx.DB) *SyncStateRepository {
	return &SyncStateRepository{db: db, now: time.Now}
}

func (r *SyncStateRepository) Get(ctx context.Context, key string) (syncstate.Entry, bool, error) {
	query, args, err := qb.Select("key", "value", "updated_at").From("sync_state").
		Where(qb.Eq("key", key)).
		ToSQL()
	if err != nil {
		return syncstate.Entry{}, false, fmt.Errorf("build select sync state query: %w", err)
	}

	var row syncStateTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return syncstate.Entry{}, false, nil
		}
		return syncstate.Entry{}, false, fmt.Errorf("select sync state key=%s: %w", key, err)
	}
	return syncstate.Entry{Key: row.Key, Value: row.Value, UpdatedAt: row.UpdatedAt}, true, nil
}

func (r *SyncStateRepository) Set(ctx context.Context, key string, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("sync state key is required")
	}

	insertModel := syncStateTableModel{
		Key:       key,
		Value:     value,
		UpdatedAt: r.now().UTC(),
	}
	query, args, err := qb.InsertModel("sync_state", insertModel, `ON CONFLICT (key)
DO UPDATE SET
    value = EXCLUDED.value,
    updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build upsert sync state query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert sync state key=%s: %w", key, err)
	}
	return nil
}

type syncStateTableModel struct {
	Key       string    `db:"key"`
	Value     string    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}
