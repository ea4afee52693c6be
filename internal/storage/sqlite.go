package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore is the durable implementation of Store. A single connection
// pool is used; SQLite serializes writes, so MaxOpenConns is kept low and
// _busy_timeout absorbs contention.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path, enables foreign keys
// and WAL, and runs pending migrations.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dsn := path + "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL&_synchronous=NORMAL"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(4)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// isUniqueViolation matches the go-sqlite3 constraint error without importing
// its error codes into every repository method.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// Timestamps are stored as UTC RFC 3339 text with a fixed-width fraction so
// lexicographic order matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func timeFrom(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func timeTo(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// inTx runs fn inside a transaction, committing on nil and rolling back on
// error.
func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

var _ Store = (*SQLiteStore)(nil)
