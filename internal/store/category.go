// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"sitebuilder/internal/models"
)

// CategoryStore manages categories and their page assignments.
type CategoryStore struct {
	db DBTX
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db DBTX) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, description, public, created_by, created_at`

var (
	categorySearchable = newColumnSet("name")
	categorySortable   = newColumnSet("name", "description", "public", "created_at")
)

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(&c.ID, &c.Name, &c.Description, &c.Public, &c.CreatedBy, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindByID retrieves a category with its page IDs. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	if c.PageIDs, err = s.PageIDs(ctx, c.ID); err != nil {
		return nil, err
	}
	return c, nil
}

// List returns categories matching q, ordered by name by default.
func (s *CategoryStore) List(ctx context.Context, q ListQuery) ([]models.Category, error) {
	where, order, args := q.clauses(categorySearchable, categorySortable, "name ASC")
	return s.query(ctx, `SELECT `+categoryColumns+` FROM categories`+where+order, args...)
}

// ListForPage returns the public categories attached to a page.
func (s *CategoryStore) ListForPage(ctx context.Context, pageID uuid.UUID) ([]models.Category, error) {
	return s.query(ctx, `
		SELECT c.id, c.name, c.description, c.public, c.created_by, c.created_at
		FROM categories c
		JOIN category_pages cp ON cp.category_id = c.id
		WHERE cp.page_id = $1 AND c.public = $2
		ORDER BY c.name`, pageID, true)
}

func (s *CategoryStore) query(ctx context.Context, query string, args ...any) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// PageIDs returns the pages a category is attached to.
func (s *CategoryStore) PageIDs(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT page_id FROM category_pages WHERE category_id = $1 ORDER BY page_id`, id)
	if err != nil {
		return nil, fmt.Errorf("list category pages: %w", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var pid uuid.UUID
		if err := rows.Scan(&pid); err != nil {
			return nil, fmt.Errorf("scan category page: %w", err)
		}
		ids = append(ids, pid)
	}
	return ids, rows.Err()
}

// Insert stores a new category and its page assignments.
func (s *CategoryStore) Insert(ctx context.Context, c *models.Category) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (`+categoryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.Name, c.Description, c.Public, c.CreatedBy, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return s.SetPages(ctx, c.ID, c.PageIDs)
}

// Update writes the editable columns and replaces the page assignments.
func (s *CategoryStore) Update(ctx context.Context, c *models.Category) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE categories SET name = $1, description = $2, public = $3
		WHERE id = $4`,
		c.Name, c.Description, c.Public, c.ID,
	)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if err := mustAffect(res, "update category"); err != nil {
		return err
	}
	return s.SetPages(ctx, c.ID, c.PageIDs)
}

// SetPages replaces the pages a category is attached to. Call it inside a
// transaction so the delete and inserts land together.
func (s *CategoryStore) SetPages(ctx context.Context, id uuid.UUID, pageIDs []uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM category_pages WHERE category_id = $1`, id); err != nil {
		return fmt.Errorf("clear category pages: %w", err)
	}
	seen := make(map[uuid.UUID]bool, len(pageIDs))
	for _, pid := range pageIDs {
		if seen[pid] {
			continue
		}
		seen[pid] = true
		_, err := s.db.ExecContext(ctx, `INSERT INTO category_pages (category_id, page_id) VALUES ($1, $2)`, id, pid)
		if err != nil {
			return fmt.Errorf("attach category page: %w", err)
		}
	}
	return nil
}

// Delete removes a category. Its subcategories and articles cascade.
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return mustAffect(res, "delete category")
}
