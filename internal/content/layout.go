// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"context"
	"database/sql"

	"sitebuilder/internal/events"
	"sitebuilder/internal/models"
	"sitebuilder/internal/store"
)

// Layout returns the site layout, creating it with defaults on first
// access.
func (s *Service) Layout(ctx context.Context) (*models.Layout, error) {
	if l, err := store.NewLayoutStore(s.db).Get(ctx); err != nil || l != nil {
		return l, err
	}

	var l *models.Layout
	err := s.saveTx(ctx, "layout", func(tx *sql.Tx, _ bool) error {
		var err error
		l, err = layoutTx(ctx, tx)
		return err
	})
	return l, err
}

// layoutTx is the get-or-create step run under the layout lock, so two
// first readers cannot both insert.
func layoutTx(ctx context.Context, tx *sql.Tx) (*models.Layout, error) {
	layouts := store.NewLayoutStore(tx)
	l, err := layouts.Get(ctx)
	if err != nil || l != nil {
		return l, err
	}
	l = &models.Layout{Title: models.DefaultLayoutTitle}
	if err := layouts.Insert(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// SaveLayout writes the title and logo of the single layout row. A logo
// replaced or cleared by the save is reported as stale.
func (s *Service) SaveLayout(ctx context.Context, l *models.Layout) error {
	if err := l.Validate(); err != nil {
		return err
	}
	in := *l

	var saved models.Layout
	var stale []string
	err := s.saveTx(ctx, "layout", func(tx *sql.Tx, _ bool) error {
		current, err := layoutTx(ctx, tx)
		if err != nil {
			return err
		}
		saved = in
		saved.ID = current.ID
		stale = staleFile(current.Logo, saved.Logo)
		return store.NewLayoutStore(tx).Update(ctx, &saved)
	})
	if err != nil {
		return err
	}

	*l = saved
	s.bus.Publish(ctx, events.Event{Name: events.LayoutSaved, ID: l.ID, Entity: &saved, Stale: stale})
	return nil
}

// DeleteLayout removes the layout row and reports its logo as stale. The
// next Layout call recreates the defaults.
func (s *Service) DeleteLayout(ctx context.Context) error {
	var deleted *models.Layout
	err := s.deleteTx(ctx, func(tx *sql.Tx) error {
		layouts := store.NewLayoutStore(tx)
		var err error
		if deleted, err = layouts.Get(ctx); err != nil || deleted == nil {
			return err
		}
		return layouts.Delete(ctx)
	})
	if err != nil || deleted == nil {
		return err
	}
	s.bus.Publish(ctx, events.Event{Name: events.LayoutDeleted, ID: deleted.ID, Entity: deleted, Stale: staleFile(deleted.Logo, "")})
	return nil
}
