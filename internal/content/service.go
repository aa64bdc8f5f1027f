// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package content owns the write paths of every site entity. Each save
// validates its input, then resolves unique titles and slugs, rebalances
// the home page and persists the row inside one locked transaction. Only
// after commit are events published for thumbnails, media cleanup and
// cache invalidation.
package content

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"sitebuilder/internal/database"
	"sitebuilder/internal/events"
	"sitebuilder/internal/store"
)

// Service runs the save and delete pipelines.
type Service struct {
	db      *sql.DB
	dialect database.Dialect
	bus     *events.Bus
}

// NewService returns a Service writing to db. bus may be nil.
func NewService(db *sql.DB, dialect database.Dialect, bus *events.Bus) *Service {
	return &Service{db: db, dialect: dialect, bus: bus}
}

// DB returns the pool the service writes to.
func (s *Service) DB() *sql.DB {
	return s.db
}

// saveTx runs fn in a transaction holding the write lock on table. A
// unique-constraint violation rolls the transaction back and runs fn once
// more with regenerate set, so the caller derives its slug from scratch.
// A second violation is reported as store.ErrConflict.
func (s *Service) saveTx(ctx context.Context, table string, fn func(tx *sql.Tx, regenerate bool) error) error {
	attempt := func(regenerate bool) error {
		return store.InTx(ctx, s.db, func(tx *sql.Tx) error {
			if err := store.LockTable(ctx, tx, s.dialect, table); err != nil {
				return err
			}
			return fn(tx, regenerate)
		})
	}

	err := attempt(false)
	if err == nil || !store.IsUniqueViolation(err) {
		return err
	}
	slog.Info("unique collision on save, regenerating", "table", table, "error", err)

	err = attempt(true)
	if err != nil && store.IsUniqueViolation(err) {
		return fmt.Errorf("save %s: %w: %w", table, store.ErrConflict, err)
	}
	return err
}

// deleteTx runs fn in a plain transaction.
func (s *Service) deleteTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return store.InTx(ctx, s.db, fn)
}

// staleFile returns old when a save replaces or clears it.
func staleFile(old, current string) []string {
	if old != "" && old != current {
		return []string{old}
	}
	return nil
}
