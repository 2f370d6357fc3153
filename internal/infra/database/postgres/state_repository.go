package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ryanlattanzi/algo-trading/internal/domain/signal"
)

// StateRepository implements signal.KeyValueRepository on a signals.states
// table. Values are the opaque JSON wire form; the schema stays typed at the
// core's edge, not here.
type StateRepository struct {
	pool *pgxpool.Pool
}

// NewStateRepository creates a new StateRepository
func NewStateRepository(pool *pgxpool.Pool) *StateRepository {
	return &StateRepository{pool: pool}
}

// EnsureTable creates the backing table if it does not exist.
func (r *StateRepository) EnsureTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS signals.states (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_ts TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`
	if _, err := r.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("%w: %v", signal.ErrStateStore, err)
	}
	return nil
}

// Get returns the stored value for key.
func (r *StateRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.pool.QueryRow(ctx, `SELECT value FROM signals.states WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", fmt.Errorf("key %s: %w", key, signal.ErrStateNotFound)
		}
		return "", fmt.Errorf("key %s: %w: %v", key, signal.ErrStateStore, err)
	}
	return value, nil
}

// Set stores value under key, overwriting any previous value.
func (r *StateRepository) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO signals.states (key, value, updated_ts)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_ts = EXCLUDED.updated_ts
	`
	if _, err := r.pool.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("key %s: %w: %v", key, signal.ErrStateStore, err)
	}
	return nil
}
