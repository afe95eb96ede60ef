package sqlindex

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// InsertMessage records one message row. flumeSeq is the log offset the
// message frame starts at, and is the row's primary key.
func (t *Tx) InsertMessage(ctx context.Context, seq int32, flumeSeq int64, keyID, authorID int64) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO messages(flume_seq, seq, key_id, author_id) VALUES (?, ?, ?, ?)`,
		flumeSeq, seq, keyID, authorID,
	)
	if err != nil {
		return fmt.Errorf("sqlindex: insert message at flume_seq %d: %w", flumeSeq, err)
	}
	return nil
}

// GetLatest returns the highest flume_seq recorded in the index, and false
// if the index is empty.
func (s *Store) GetLatest(ctx context.Context) (int64, bool, error) {
	var v sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(flume_seq) FROM messages`).Scan(&v); err != nil {
		return 0, false, fmt.Errorf("sqlindex: get latest: %w", err)
	}
	if !v.Valid {
		return 0, false, nil
	}
	return v.Int64, true, nil
}

// FindMessageFlumeSeqByKey looks up the flume_seq of the message with the
// given key. It returns ErrNotFound if no message has that key.
func (s *Store) FindMessageFlumeSeqByKey(ctx context.Context, key string) (int64, error) {
	var flumeSeq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT m.flume_seq
		FROM messages m
		JOIN keys k ON m.key_id = k.id
		WHERE k.key = ?
	`, key).Scan(&flumeSeq)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("sqlindex: find message by key: %w", err)
	}
	return flumeSeq, nil
}

// FindMessageFlumeSeqByAuthorAndSequence looks up the flume_seq of the
// message at the given feed sequence for author. The bool return is false,
// with no error, if no such message is indexed.
func (s *Store) FindMessageFlumeSeqByAuthorAndSequence(ctx context.Context, author string, seq int32) (int64, bool, error) {
	var flumeSeq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT m.flume_seq
		FROM messages m
		JOIN authors a ON m.author_id = a.id
		WHERE a.author = ? AND m.seq = ?
	`, author, seq).Scan(&flumeSeq)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("sqlindex: find message by author+seq: %w", err)
	}
	return flumeSeq, true, nil
}

// FindFeedLatestSeq returns the highest indexed sequence number for author.
// The bool return is false, with no error, if the author has no indexed
// messages.
func (s *Store) FindFeedLatestSeq(ctx context.Context, author string) (int32, bool, error) {
	var v sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(m.seq)
		FROM messages m
		JOIN authors a ON m.author_id = a.id
		WHERE a.author = ?
	`, author).Scan(&v)
	if err != nil {
		return 0, false, fmt.Errorf("sqlindex: find feed latest seq: %w", err)
	}
	if !v.Valid {
		return 0, false, nil
	}
	return int32(v.Int64), true, nil
}

// FindFeedFlumeSeqsNewerThan returns, in ascending log order, the
// flume_seqs of author's messages with sequence greater than seq. A nil
// limit means unbounded.
func (s *Store) FindFeedFlumeSeqsNewerThan(ctx context.Context, author string, seq int32, limit *int64) ([]int64, error) {
	lim := int64(-1)
	if limit != nil {
		lim = *limit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.flume_seq
		FROM messages m
		JOIN authors a ON m.author_id = a.id
		WHERE a.author = ? AND m.seq > ?
		ORDER BY m.flume_seq ASC
		LIMIT ?
	`, author, seq, lim)
	if err != nil {
		return nil, fmt.Errorf("sqlindex: find feed flume seqs newer than: %w", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var flumeSeq int64
		if err := rows.Scan(&flumeSeq); err != nil {
			return nil, fmt.Errorf("sqlindex: scan flume_seq: %w", err)
		}
		out = append(out, flumeSeq)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlindex: iterate flume_seqs: %w", err)
	}
	return out, nil
}
