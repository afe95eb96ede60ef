package sqlindex

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// FindOrCreateKey returns the row id for key, inserting a new row if none
// exists yet. See FindOrCreateAuthor for the concurrency discipline this
// relies on.
func (t *Tx) FindOrCreateKey(ctx context.Context, key string) (int64, error) {
	var id int64
	err := t.tx.QueryRowContext(ctx, `SELECT id FROM keys WHERE key = ?`, key).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("sqlindex: find key: %w", err)
	}

	if _, err := t.tx.ExecContext(ctx,
		`INSERT INTO keys(key) VALUES (?) ON CONFLICT(key) DO NOTHING`, key,
	); err != nil {
		return 0, fmt.Errorf("sqlindex: insert key: %w", err)
	}
	if err := t.tx.QueryRowContext(ctx, `SELECT id FROM keys WHERE key = ?`, key).Scan(&id); err != nil {
		return 0, fmt.Errorf("sqlindex: reselect key: %w", err)
	}
	return id, nil
}
