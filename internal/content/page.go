// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"sitebuilder/internal/events"
	"sitebuilder/internal/models"
	"sitebuilder/internal/slug"
	"sitebuilder/internal/store"
	"sitebuilder/internal/unique"
)

// SavePage creates the page when p.ID is nil and updates it otherwise. On
// success p holds the persisted values: the de-duplicated title, the
// resolved slug, and for the home page slug "" and order 0.
//
// Promoting a page to home demotes the previous home page in the same
// transaction and gives every other page left with an empty slug a fresh
// one derived from its title, moving it one position down.
func (s *Service) SavePage(ctx context.Context, p *models.Page) error {
	if err := p.Validate(); err != nil {
		return err
	}
	in := *p
	in.Content = Sanitize(in.Content)

	var saved models.Page
	var created bool
	err := s.saveTx(ctx, "pages", func(tx *sql.Tx, regenerate bool) error {
		saved = in
		if regenerate {
			saved.Slug = ""
		}
		var err error
		created, err = savePage(ctx, tx, &saved)
		return err
	})
	if err != nil {
		return err
	}

	*p = saved
	s.bus.Publish(ctx, events.Event{Name: events.PageSaved, ID: p.ID, Entity: &saved, Created: created})
	return nil
}

// savePage runs the uniqueness and home rules for p on tx and persists it.
// It reports whether the page was inserted.
func savePage(ctx context.Context, tx *sql.Tx, p *models.Page) (bool, error) {
	pages := store.NewPageStore(tx)

	var existing *models.Page
	if p.ID != uuid.Nil {
		var err error
		if existing, err = pages.FindByID(ctx, p.ID); err != nil {
			return false, err
		}
		if existing == nil {
			return false, fmt.Errorf("save page: %w", store.ErrNotFound)
		}
	}

	title, err := unique.Title(ctx, tx, "pages", "title", p.Title, models.PageTitleMax, p.ID)
	if err != nil {
		return false, err
	}
	p.Title = title

	base := p.Slug
	if base == "" {
		base = slug.GenerateOr(p.Title, models.DefaultPageSlugBase)
	}
	if p.Slug, err = unique.Slug(ctx, tx, "pages", base, p.ID); err != nil {
		return false, err
	}

	if p.IsHome {
		if err := promoteHome(ctx, tx, pages, p); err != nil {
			return false, err
		}
	}

	if existing == nil {
		return true, pages.Insert(ctx, p)
	}
	p.CreatedBy = existing.CreatedBy
	p.CreatedAt = existing.CreatedAt
	return false, pages.Update(ctx, p)
}

// promoteHome makes p the only home page. Displaced pages are re-slugged
// before p takes the empty slug so the slug constraint holds after every
// statement.
func promoteHome(ctx context.Context, tx *sql.Tx, pages *store.PageStore, p *models.Page) error {
	if err := pages.ClearHome(ctx, p.ID); err != nil {
		return err
	}
	p.Slug = ""
	p.SortOrder = 0

	displaced, err := pages.ListEmptySlug(ctx, p.ID)
	if err != nil {
		return err
	}
	for _, d := range displaced {
		base := slug.GenerateOr(d.Title, models.DefaultPageSlugBase)
		fresh, err := unique.Slug(ctx, tx, "pages", base, d.ID)
		if err != nil {
			return err
		}
		if err := pages.SetSlugAndOrder(ctx, d.ID, fresh, d.SortOrder+1); err != nil {
			return err
		}
	}
	return nil
}

// DeletePage removes a page.
func (s *Service) DeletePage(ctx context.Context, id uuid.UUID) error {
	var deleted *models.Page
	err := s.deleteTx(ctx, func(tx *sql.Tx) error {
		pages := store.NewPageStore(tx)
		var err error
		if deleted, err = pages.FindByID(ctx, id); err != nil {
			return err
		}
		if deleted == nil {
			return fmt.Errorf("delete page: %w", store.ErrNotFound)
		}
		return pages.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.bus.Publish(ctx, events.Event{Name: events.PageDeleted, ID: id, Entity: deleted})
	return nil
}
