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

// Slug bases used when a name has no sluggable characters.
const (
	subCategorySlugBase = "subcategoria"
	typeSlugBase        = "tipo"
)

// resolveSlug keeps a supplied slug unless regenerate is set, derives one
// from name otherwise, and makes the result unique within table.
func resolveSlug(ctx context.Context, tx *sql.Tx, table, supplied, name, fallback string, self uuid.UUID, regenerate bool) (string, error) {
	base := supplied
	if base == "" || regenerate {
		base = slug.GenerateOr(name, fallback)
	}
	return unique.Slug(ctx, tx, table, base, self)
}

// SaveCategory creates or updates a category with a unique name and
// replaces its page assignments.
func (s *Service) SaveCategory(ctx context.Context, c *models.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	in := *c

	var saved models.Category
	var created bool
	err := s.saveTx(ctx, "categories", func(tx *sql.Tx, _ bool) error {
		saved = in
		cats := store.NewCategoryStore(tx)
		existing, err := findExisting(ctx, saved.ID, "category", cats.FindByID)
		if err != nil {
			return err
		}
		if saved.Name, err = unique.Title(ctx, tx, "categories", "name", saved.Name, models.CategoryNameMax, saved.ID); err != nil {
			return err
		}
		if existing == nil {
			created = true
			return cats.Insert(ctx, &saved)
		}
		saved.CreatedBy, saved.CreatedAt = existing.CreatedBy, existing.CreatedAt
		return cats.Update(ctx, &saved)
	})
	if err != nil {
		return err
	}

	*c = saved
	s.bus.Publish(ctx, events.Event{Name: events.CategorySaved, ID: c.ID, Entity: &saved, Created: created})
	return nil
}

// DeleteCategory removes a category. Its subcategories and articles
// cascade, so their stored files are reported as stale.
func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	var deleted *models.Category
	var stale []string
	err := s.deleteTx(ctx, func(tx *sql.Tx) error {
		cats := store.NewCategoryStore(tx)
		var err error
		if deleted, err = cats.FindByID(ctx, id); err != nil {
			return err
		}
		if deleted == nil {
			return fmt.Errorf("delete category: %w", store.ErrNotFound)
		}
		subFiles, err := store.NewSubCategoryStore(tx).FilesByCategory(ctx, id)
		if err != nil {
			return err
		}
		artFiles, err := store.NewArticleStore(tx).FilesWhere(ctx, "category_id", id)
		if err != nil {
			return err
		}
		stale = append(subFiles, artFiles...)
		return cats.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.bus.Publish(ctx, events.Event{Name: events.CategoryDeleted, ID: id, Entity: deleted, Stale: stale})
	return nil
}

// SaveSubCategory creates or updates a subcategory with a unique name and
// slug. Image and video files replaced or cleared by the save are reported
// as stale.
func (s *Service) SaveSubCategory(ctx context.Context, c *models.SubCategory) error {
	if err := c.Validate(); err != nil {
		return err
	}
	in := *c

	var saved models.SubCategory
	var created bool
	var stale []string
	err := s.saveTx(ctx, "subcategories", func(tx *sql.Tx, regenerate bool) error {
		saved, stale = in, nil
		subs := store.NewSubCategoryStore(tx)
		existing, err := findExisting(ctx, saved.ID, "subcategory", subs.FindByID)
		if err != nil {
			return err
		}
		if saved.Name, err = unique.Title(ctx, tx, "subcategories", "name", saved.Name, models.SubCategoryNameMax, saved.ID); err != nil {
			return err
		}
		if saved.Slug, err = resolveSlug(ctx, tx, "subcategories", saved.Slug, saved.Name, subCategorySlugBase, saved.ID, regenerate); err != nil {
			return err
		}
		if existing == nil {
			created = true
			return subs.Insert(ctx, &saved)
		}
		stale = append(staleFile(existing.Image, saved.Image), staleFile(existing.VideoFile, saved.VideoFile)...)
		saved.CreatedBy, saved.CreatedAt = existing.CreatedBy, existing.CreatedAt
		return subs.Update(ctx, &saved)
	})
	if err != nil {
		return err
	}

	*c = saved
	s.bus.Publish(ctx, events.Event{Name: events.SubCategorySaved, ID: c.ID, Entity: c, Created: created, Stale: stale})
	return nil
}

// DeleteSubCategory removes a subcategory and reports its files as stale.
func (s *Service) DeleteSubCategory(ctx context.Context, id uuid.UUID) error {
	var deleted *models.SubCategory
	err := s.deleteTx(ctx, func(tx *sql.Tx) error {
		subs := store.NewSubCategoryStore(tx)
		var err error
		if deleted, err = subs.FindByID(ctx, id); err != nil {
			return err
		}
		if deleted == nil {
			return fmt.Errorf("delete subcategory: %w", store.ErrNotFound)
		}
		return subs.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.bus.Publish(ctx, events.Event{Name: events.SubCategoryDeleted, ID: id, Entity: deleted, Stale: deleted.Files()})
	return nil
}

// SaveType creates or updates a type with a unique name and slug.
func (s *Service) SaveType(ctx context.Context, t *models.Type) error {
	if err := t.Validate(); err != nil {
		return err
	}
	in := *t

	var saved models.Type
	var created bool
	err := s.saveTx(ctx, "types", func(tx *sql.Tx, regenerate bool) error {
		saved = in
		types := store.NewTypeStore(tx)
		existing, err := findExisting(ctx, saved.ID, "type", types.FindByID)
		if err != nil {
			return err
		}
		if saved.Name, err = unique.Title(ctx, tx, "types", "name", saved.Name, models.TypeNameMax, saved.ID); err != nil {
			return err
		}
		if saved.Slug, err = resolveSlug(ctx, tx, "types", saved.Slug, saved.Name, typeSlugBase, saved.ID, regenerate); err != nil {
			return err
		}
		if existing == nil {
			created = true
			return types.Insert(ctx, &saved)
		}
		saved.CreatedBy, saved.CreatedAt = existing.CreatedBy, existing.CreatedAt
		return types.Update(ctx, &saved)
	})
	if err != nil {
		return err
	}

	*t = saved
	s.bus.Publish(ctx, events.Event{Name: events.TypeSaved, ID: t.ID, Entity: &saved, Created: created})
	return nil
}

// DeleteType removes a type. Its articles cascade and their files are
// reported as stale; pages only lose the reference.
func (s *Service) DeleteType(ctx context.Context, id uuid.UUID) error {
	var deleted *models.Type
	var stale []string
	err := s.deleteTx(ctx, func(tx *sql.Tx) error {
		types := store.NewTypeStore(tx)
		var err error
		if deleted, err = types.FindByID(ctx, id); err != nil {
			return err
		}
		if deleted == nil {
			return fmt.Errorf("delete type: %w", store.ErrNotFound)
		}
		if stale, err = store.NewArticleStore(tx).FilesWhere(ctx, "type_id", id); err != nil {
			return err
		}
		return types.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.bus.Publish(ctx, events.Event{Name: events.TypeDeleted, ID: id, Entity: deleted, Stale: stale})
	return nil
}

// SaveArticle creates or updates an article with a unique title. The
// creator of an existing article is kept. A thumbnail generated by the
// saved handlers is reflected in a.Image.
func (s *Service) SaveArticle(ctx context.Context, a *models.Article) error {
	if err := a.Validate(); err != nil {
		return err
	}
	in := *a
	in.Content = Sanitize(in.Content)

	var saved models.Article
	var created bool
	var stale []string
	err := s.saveTx(ctx, "articles", func(tx *sql.Tx, _ bool) error {
		saved, stale = in, nil
		arts := store.NewArticleStore(tx)
		existing, err := findExisting(ctx, saved.ID, "article", arts.FindByID)
		if err != nil {
			return err
		}
		if saved.Title, err = unique.Title(ctx, tx, "articles", "title", saved.Title, models.ArticleTitleMax, saved.ID); err != nil {
			return err
		}
		if existing == nil {
			created = true
			return arts.Insert(ctx, &saved)
		}
		stale = append(staleFile(existing.Image, saved.Image), staleFile(existing.VideoFile, saved.VideoFile)...)
		saved.CreatedBy, saved.CreatedAt = existing.CreatedBy, existing.CreatedAt
		return arts.Update(ctx, &saved)
	})
	if err != nil {
		return err
	}

	*a = saved
	s.bus.Publish(ctx, events.Event{Name: events.ArticleSaved, ID: a.ID, Entity: a, Created: created, Stale: stale})
	return nil
}

// DeleteArticle removes an article and reports its files as stale.
func (s *Service) DeleteArticle(ctx context.Context, id uuid.UUID) error {
	var deleted *models.Article
	err := s.deleteTx(ctx, func(tx *sql.Tx) error {
		arts := store.NewArticleStore(tx)
		var err error
		if deleted, err = arts.FindByID(ctx, id); err != nil {
			return err
		}
		if deleted == nil {
			return fmt.Errorf("delete article: %w", store.ErrNotFound)
		}
		return arts.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.bus.Publish(ctx, events.Event{Name: events.ArticleDeleted, ID: id, Entity: deleted, Stale: deleted.Files()})
	return nil
}

// findExisting loads the row being updated. A nil id means a create and
// returns nil; an unknown id is ErrNotFound.
func findExisting[T any](ctx context.Context, id uuid.UUID, what string, find func(context.Context, uuid.UUID) (*T, error)) (*T, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	existing, err := find(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("save %s: %w", what, store.ErrNotFound)
	}
	return existing, nil
}
