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

// PageStore manages pages in the database.
type PageStore struct {
	db DBTX
}

// NewPageStore returns a new PageStore.
func NewPageStore(db DBTX) *PageStore {
	return &PageStore{db: db}
}

const pageColumns = `id, title, content, sort_order, slug, public, type_id, is_home, created_by, created_at, updated_at`

// pageOrder is the navigation order: explicit order first, newest first
// among equals.
const pageOrder = `sort_order ASC, created_at DESC`

var (
	pageSearchable = newColumnSet("title")
	pageSortable   = newColumnSet("title", "slug", "sort_order", "public", "is_home", "created_at", "updated_at")
)

// scanPage scans a row into a Page struct.
func scanPage(scanner interface{ Scan(...any) error }) (*models.Page, error) {
	var p models.Page
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Content, &p.SortOrder, &p.Slug, &p.Public,
		&p.TypeID, &p.IsHome, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PageStore) findOne(ctx context.Context, what, where string, args ...any) (*models.Page, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM pages WHERE `+where, args...)
	p, err := scanPage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find page by %s: %w", what, err)
	}
	return p, nil
}

// FindByID retrieves a page by ID. Returns nil if not found.
func (s *PageStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Page, error) {
	return s.findOne(ctx, "id", `id = $1`, id)
}

// FindBySlug retrieves a page by its slug. Returns nil if not found.
func (s *PageStore) FindBySlug(ctx context.Context, slug string) (*models.Page, error) {
	return s.findOne(ctx, "slug", `slug = $1 AND is_home = $2`, slug, false)
}

// FindHome retrieves the home page. Returns nil if none is marked.
func (s *PageStore) FindHome(ctx context.Context) (*models.Page, error) {
	return s.findOne(ctx, "home", `is_home = $1`, true)
}

func (s *PageStore) query(ctx context.Context, query string, args ...any) ([]models.Page, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()

	var items []models.Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// List returns pages matching q, in navigation order by default.
func (s *PageStore) List(ctx context.Context, q ListQuery) ([]models.Page, error) {
	where, order, args := q.clauses(pageSearchable, pageSortable, pageOrder)
	return s.query(ctx, `SELECT `+pageColumns+` FROM pages`+where+order, args...)
}

// ListPublic returns the published pages in navigation order.
func (s *PageStore) ListPublic(ctx context.Context) ([]models.Page, error) {
	return s.query(ctx, `SELECT `+pageColumns+` FROM pages WHERE public = $1 ORDER BY `+pageOrder, true)
}

// ListEmptySlug returns every page other than exclude whose slug is empty.
func (s *PageStore) ListEmptySlug(ctx context.Context, exclude uuid.UUID) ([]models.Page, error) {
	return s.query(ctx, `SELECT `+pageColumns+` FROM pages WHERE slug = $1 AND id <> $2 ORDER BY `+pageOrder, "", exclude)
}

// Insert stores a new page. A nil ID is replaced with a fresh one; the
// timestamps are set here.
func (s *PageStore) Insert(ctx context.Context, p *models.Page) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pages (`+pageColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.Title, p.Content, p.SortOrder, p.Slug, p.Public,
		p.TypeID, p.IsHome, p.CreatedBy, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert page: %w", err)
	}
	return nil
}

// Update writes every editable column of an existing page. The creator
// and creation time are never changed.
func (s *PageStore) Update(ctx context.Context, p *models.Page) error {
	p.UpdatedAt = now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE pages
		SET title = $1, content = $2, sort_order = $3, slug = $4, public = $5,
		    type_id = $6, is_home = $7, updated_at = $8
		WHERE id = $9`,
		p.Title, p.Content, p.SortOrder, p.Slug, p.Public,
		p.TypeID, p.IsHome, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update page: %w", err)
	}
	return mustAffect(res, "update page")
}

// ClearHome unmarks every page other than keep as home in one statement.
func (s *PageStore) ClearHome(ctx context.Context, keep uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `UPDATE pages SET is_home = $1 WHERE is_home = $2 AND id <> $3`, false, true, keep)
	if err != nil {
		return fmt.Errorf("clear home pages: %w", err)
	}
	return nil
}

// SetSlugAndOrder updates only the slug and order of a page. It is used
// when a page is displaced from the home position.
func (s *PageStore) SetSlugAndOrder(ctx context.Context, id uuid.UUID, slug string, order int) error {
	res, err := s.db.ExecContext(ctx, `UPDATE pages SET slug = $1, sort_order = $2 WHERE id = $3`, slug, order, id)
	if err != nil {
		return fmt.Errorf("set page slug: %w", err)
	}
	return mustAffect(res, "set page slug")
}

// Delete removes a page by ID.
func (s *PageStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM pages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	return mustAffect(res, "delete page")
}
