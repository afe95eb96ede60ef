package sqlindex

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// FindOrCreateAuthor returns the row id for author, inserting a new row if
// none exists yet. Safe under the single-writer discipline this package
// requires (one open connection, transactions serialized by the caller).
func (t *Tx) FindOrCreateAuthor(ctx context.Context, author string) (int64, error) {
	var id int64
	err := t.tx.QueryRowContext(ctx, `SELECT id FROM authors WHERE author = ?`, author).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("sqlindex: find author: %w", err)
	}

	if _, err := t.tx.ExecContext(ctx,
		`INSERT INTO authors(author) VALUES (?) ON CONFLICT(author) DO NOTHING`, author,
	); err != nil {
		return 0, fmt.Errorf("sqlindex: insert author: %w", err)
	}
	if err := t.tx.QueryRowContext(ctx, `SELECT id FROM authors WHERE author = ?`, author).Scan(&id); err != nil {
		return 0, fmt.Errorf("sqlindex: reselect author: %w", err)
	}
	return id, nil
}
