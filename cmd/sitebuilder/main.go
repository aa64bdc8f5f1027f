// Package main is the entry point for the sitebuilder server. The serve
// command loads configuration, connects to services, sets up routing, and
// starts the HTTP server with graceful shutdown support; migrate and seed
// prepare the database.
package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"sitebuilder/internal/config"
	"sitebuilder/internal/database"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	if err := newRootCommand().Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "sitebuilder",
		Short:         "Content site with public pages, maintenance API and admin area",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newMigrateCommand())
	cmd.AddCommand(newSeedCommand())
	return cmd
}

// openDatabase loads the configuration, connects and applies migrations.
func openDatabase() (*config.Config, *sql.DB, database.Dialect, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, "", fmt.Errorf("load configuration: %w", err)
	}
	dialect, err := cfg.Dialect()
	if err != nil {
		return nil, nil, "", err
	}
	db, err := database.Connect(dialect, cfg.DSN())
	if err != nil {
		return nil, nil, "", err
	}
	if err := database.Migrate(db, dialect); err != nil {
		db.Close()
		return nil, nil, "", err
	}
	return cfg, db, dialect, nil
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, _, err := openDatabase()
			if err != nil {
				return err
			}
			return db.Close()
		},
	}
}
