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

// ArticleStore manages articles in the database.
type ArticleStore struct {
	db DBTX
}

// NewArticleStore returns a new ArticleStore.
func NewArticleStore(db DBTX) *ArticleStore {
	return &ArticleStore{db: db}
}

const articleColumns = `id, title, content, image, use_thumbnail, video_url, video_file, public, created_by, category_id, subcategory_id, type_id, created_at, updated_at`

var (
	articleSearchable = newColumnSet("title")
	articleSortable   = newColumnSet("title", "use_thumbnail", "public", "created_at", "updated_at")
)

func scanArticle(scanner interface{ Scan(...any) error }) (*models.Article, error) {
	var a models.Article
	err := scanner.Scan(
		&a.ID, &a.Title, &a.Content, &a.Image, &a.UseThumbnail, &a.VideoURL, &a.VideoFile,
		&a.Public, &a.CreatedBy, &a.CategoryID, &a.SubCategoryID, &a.TypeID,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// FindByID retrieves an article by ID. Returns nil if not found.
func (s *ArticleStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = $1`, id)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find article by id: %w", err)
	}
	return a, nil
}

// List returns articles matching q, newest first by default.
func (s *ArticleStore) List(ctx context.Context, q ListQuery) ([]models.Article, error) {
	where, order, args := q.clauses(articleSearchable, articleSortable, "created_at DESC")
	return s.query(ctx, `SELECT `+articleColumns+` FROM articles`+where+order, args...)
}

// ListPublic returns published articles that are not inside an
// unpublished category, newest first.
func (s *ArticleStore) ListPublic(ctx context.Context) ([]models.Article, error) {
	return s.query(ctx, `
		SELECT `+prefixed("a.", articleColumns)+`
		FROM articles a
		LEFT JOIN categories c ON c.id = a.category_id
		WHERE a.public = $1 AND (a.category_id IS NULL OR c.public = $1)
		ORDER BY a.created_at DESC`, true)
}

// ListPublicByType returns the published articles of a type that are
// not inside an unpublished category, newest first.
func (s *ArticleStore) ListPublicByType(ctx context.Context, typeID uuid.UUID) ([]models.Article, error) {
	return s.query(ctx, `
		SELECT `+prefixed("a.", articleColumns)+`
		FROM articles a
		LEFT JOIN categories c ON c.id = a.category_id
		WHERE a.public = $1 AND a.type_id = $2 AND (a.category_id IS NULL OR c.public = $1)
		ORDER BY a.created_at DESC`, true, typeID)
}

func (s *ArticleStore) query(ctx context.Context, query string, args ...any) ([]models.Article, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	var items []models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

// Insert stores a new article.
func (s *ArticleStore) Insert(ctx context.Context, a *models.Article) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = now()
	a.UpdatedAt = a.CreatedAt

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO articles (`+articleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		a.ID, a.Title, a.Content, a.Image, a.UseThumbnail, a.VideoURL, a.VideoFile,
		a.Public, a.CreatedBy, a.CategoryID, a.SubCategoryID, a.TypeID,
		a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert article: %w", err)
	}
	return nil
}

// Update writes every editable column of an existing article.
func (s *ArticleStore) Update(ctx context.Context, a *models.Article) error {
	a.UpdatedAt = now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE articles
		SET title = $1, content = $2, image = $3, use_thumbnail = $4, video_url = $5,
		    video_file = $6, public = $7, category_id = $8, subcategory_id = $9,
		    type_id = $10, updated_at = $11
		WHERE id = $12`,
		a.Title, a.Content, a.Image, a.UseThumbnail, a.VideoURL,
		a.VideoFile, a.Public, a.CategoryID, a.SubCategoryID,
		a.TypeID, a.UpdatedAt, a.ID,
	)
	if err != nil {
		return fmt.Errorf("update article: %w", err)
	}
	return mustAffect(res, "update article")
}

// SetImage updates only the image column.
func (s *ArticleStore) SetImage(ctx context.Context, id uuid.UUID, image string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE articles SET image = $1 WHERE id = $2`, image, id)
	if err != nil {
		return fmt.Errorf("set article image: %w", err)
	}
	return mustAffect(res, "set article image")
}

// FilesWhere returns the stored files of every article whose column
// equals id. column is one of category_id or type_id, whose deletion
// cascades to articles.
func (s *ArticleStore) FilesWhere(ctx context.Context, column string, id uuid.UUID) ([]string, error) {
	if column != "category_id" && column != "type_id" {
		return nil, fmt.Errorf("article files: unsupported column %q", column)
	}
	items, err := s.query(ctx, `SELECT `+articleColumns+` FROM articles WHERE `+column+` = $1`, id)
	if err != nil {
		return nil, err
	}
	var files []string
	for i := range items {
		files = append(files, items[i].Files()...)
	}
	return files, nil
}

// Delete removes an article by ID.
func (s *ArticleStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return mustAffect(res, "delete article")
}
