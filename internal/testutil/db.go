// Package testutil provides helpers shared by package tests that need a
// migrated database.
package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"sitebuilder/internal/database"
)

// SQLite returns a migrated SQLite database stored in the test's temp
// directory. It is closed when the test finishes.
func SQLite(t testing.TB) *sql.DB {
	t.Helper()

	db, err := database.Connect(database.SQLite, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db, database.SQLite); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}
