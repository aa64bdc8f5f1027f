// Package database handles connection management and migration execution
// using goose. PostgreSQL (through pgx) is the production backend; SQLite
// serves single-node installs and the test suites. Both get the same schema
// from per-dialect migration directories embedded in the binary.
package database

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

// sqliteDriver is go-sqlite3 with LOWER replaced by Unicode case mapping.
// The built-in only folds ASCII, which breaks case-insensitive search on
// Spanish titles.
const sqliteDriver = "sqlite3_unicode"

func init() {
	sql.Register(sqliteDriver, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("lower", unicodeLower, true)
		},
	})
}

// unicodeLower lowercases TEXT values and passes anything else through.
func unicodeLower(v any) any {
	if s, ok := v.(string); ok {
		return strings.ToLower(s)
	}
	return v
}

//go:embed migrations
var embedMigrations embed.FS

// Dialect identifies the SQL backend. Its value is also the goose dialect
// name and the migrations subdirectory.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite3"
)

// driverName returns the database/sql driver registered for d.
func (d Dialect) driverName() string {
	if d == SQLite {
		return sqliteDriver
	}
	return "pgx"
}

// ParseDialect maps a configuration value to a Dialect.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "postgres", "postgresql", "pgx":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	}
	return "", fmt.Errorf("unknown database driver %q", s)
}

// sqliteParams are appended to every SQLite DSN: foreign keys on, writers
// take the database lock at BEGIN, and contended writers wait.
var sqliteParams = []string{"_foreign_keys=on", "_txlock=immediate", "_busy_timeout=5000"}

// SQLiteDSN builds a DSN for a database file at path with the required
// connection parameters.
func SQLiteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return "file:" + strings.TrimPrefix(path, "file:") + sep + strings.Join(sqliteParams, "&")
}

// Connect opens a connection pool for the given dialect and DSN. It
// verifies the connection with a ping before returning.
func Connect(dialect Dialect, dsn string) (*sql.DB, error) {
	if dialect == SQLite && !strings.Contains(dsn, "_txlock=") {
		dsn = SQLiteDSN(dsn)
	}

	db, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("database open: %w", err)
	}

	if dialect == SQLite {
		// SQLite allows a single writer; one connection keeps every
		// transaction serialized without SQLITE_BUSY churn.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping: %w", err)
	}

	slog.Info("database connected", "dialect", string(dialect))
	return db, nil
}

// gooseMu guards goose's package-level base FS and dialect.
var gooseMu sync.Mutex

// Migrate runs all pending goose migrations for the dialect from the
// embedded SQL files.
func Migrate(db *sql.DB, dialect Dialect) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(embedMigrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(string(dialect)); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}

	if err := goose.Up(db, "migrations/"+string(dialect)); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	slog.Info("database migrations applied", "dialect", string(dialect))
	return nil
}
