// Package store provides database access methods for all site entities.
// Each store struct wraps a DBTX so the same typed queries run on the pool
// or inside a transaction opened with InTx.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"

	"sitebuilder/internal/database"
)

var (
	// ErrNotFound is returned by mutations targeting a missing row.
	// Lookups return nil, nil instead.
	ErrNotFound = errors.New("not found")
	// ErrConflict wraps a unique-constraint violation that survived retry.
	ErrConflict = errors.New("conflict")
	// ErrRoleInUse blocks deleting a role still referenced by a profile.
	ErrRoleInUse = errors.New("role in use")
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// now returns the current time truncated to what both backends store.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// InTx runs fn inside a transaction. It commits when fn returns nil and
// rolls back otherwise.
func InTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// LockTable takes a write lock on table for the rest of the transaction,
// serializing writers that restore cross-row invariants. SQLite
// transactions already hold the database write lock from BEGIN IMMEDIATE.
func LockTable(ctx context.Context, tx DBTX, dialect database.Dialect, table string) error {
	if dialect != database.Postgres {
		return nil
	}
	if _, err := tx.ExecContext(ctx, `LOCK TABLE `+table+` IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return fmt.Errorf("lock %s: %w", table, err)
	}
	return nil
}

// IsUniqueViolation reports whether err comes from a unique constraint on
// either backend.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) {
		return sqErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// isForeignKeyViolation reports whether err comes from a foreign key
// restriction on either backend.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) {
		return sqErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}

// IsMissingTable reports whether err means the schema has not been
// migrated yet.
func IsMissingTable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "42P01"
	}
	return err != nil && strings.Contains(err.Error(), "no such table")
}

// mustAffect turns a zero-row mutation into ErrNotFound.
func mustAffect(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
