package sqlindex

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Initial schema (authors, keys, messages)
const currentSchemaVersion = 1

// Store is the relational index backing an ssbdb store. It is safe for
// concurrent use; SQLite access is serialized through a single connection.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens a SQLite database at path, applying pragmas and
// schema migrations. If the existing file's schema can't be recognized
// (e.g. it isn't a sqlindex database at all), Open deletes it and starts
// over from an empty file rather than failing outright.
func Open(path string) (*Store, error) {
	db, err := openAndMigrate(path, true)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, path: path}, nil
}

func openAndMigrate(path string, allowRecover bool) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=rwc", path))
	if err != nil {
		return nil, fmt.Errorf("sqlindex: open %s: %w", path, err)
	}
	// SQLite only supports one writer at a time; limiting the pool to a
	// single connection avoids SQLITE_BUSY under our own concurrency.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	// A file that is not a usable SQLite database can fail at any of these
	// steps, so each failure takes the same delete-and-recreate path.
	err = db.Ping()
	if err == nil {
		err = applyPragmas(db)
	}
	if err == nil {
		err = applySchema(db)
	}
	if err != nil {
		db.Close()
		if !allowRecover || path == ":memory:" {
			return nil, fmt.Errorf("sqlindex: open %s: %w", path, err)
		}
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			return nil, fmt.Errorf("sqlindex: recover from bad schema: remove %s: %w", path, rmErr)
		}
		return openAndMigrate(path, false)
	}

	return db, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version < currentSchemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the file path the store was opened with.
func (s *Store) Path() string { return s.path }

// Tx wraps a single write transaction, used by the indexing pipeline to
// commit one chunk of frames atomically.
type Tx struct {
	tx *sql.Tx
}

// BeginTx starts a new write transaction.
func (s *Store) BeginTx(ctx context.Context) (*Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlindex: begin tx: %w", err)
	}
	return &Tx{tx: tx}, nil
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("sqlindex: commit: %w", err)
	}
	return nil
}

// Rollback aborts the transaction. It is safe to call after a failed
// Commit or a failed operation within the transaction.
func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}
