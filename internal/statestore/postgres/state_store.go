// Package postgres persists the result table in a single-row jsonb slot.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/SkiltonTrading/cmrv2/internal/port"
)

type stateStore struct {
	db *sqlx.DB
}

// NewStore creates a PostgreSQL-backed StateStore. The row_state table holds
// exactly one row; Save upserts it with the full serialized table.
func NewStore(db *sqlx.DB) port.StateStore {
	return &stateStore{db: db}
}

const loadQuery = `SELECT payload FROM row_state WHERE id = 1`

const saveQuery = `INSERT INTO row_state (id, payload, updated_at)
VALUES (1, $1, now())
ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`

func (s *stateStore) Load(ctx context.Context) ([]byte, error) {
	var payload []byte
	if err := s.db.GetContext(ctx, &payload, loadQuery); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("stateStore.Load: %w", err)
	}
	return payload, nil
}

func (s *stateStore) Save(ctx context.Context, data []byte) error {
	if _, err := s.db.ExecContext(ctx, saveQuery, data); err != nil {
		return fmt.Errorf("stateStore.Save: %w", err)
	}
	return nil
}

func (s *stateStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
