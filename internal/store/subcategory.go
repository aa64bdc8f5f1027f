package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"sitebuilder/internal/models"
)

// SubCategoryStore manages subcategories in the database.
type SubCategoryStore struct {
	db DBTX
}

// NewSubCategoryStore returns a new SubCategoryStore.
func NewSubCategoryStore(db DBTX) *SubCategoryStore {
	return &SubCategoryStore{db: db}
}

const subCategoryColumns = `id, name, description, category_id, slug, image, use_thumbnail, video_url, video_file, public, created_by, created_at`

var (
	subCategorySearchable = newColumnSet("name")
	subCategorySortable   = newColumnSet("name", "description", "slug", "use_thumbnail", "public", "created_at")
)

func scanSubCategory(scanner interface{ Scan(...any) error }) (*models.SubCategory, error) {
	var c models.SubCategory
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Description, &c.CategoryID, &c.Slug, &c.Image,
		&c.UseThumbnail, &c.VideoURL, &c.VideoFile, &c.Public, &c.CreatedBy, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindByID retrieves a subcategory by ID. Returns nil if not found.
func (s *SubCategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.SubCategory, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+subCategoryColumns+` FROM subcategories WHERE id = $1`, id)
	c, err := scanSubCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find subcategory by id: %w", err)
	}
	return c, nil
}

// List returns subcategories matching q, ordered by name by default.
func (s *SubCategoryStore) List(ctx context.Context, q ListQuery) ([]models.SubCategory, error) {
	where, order, args := q.clauses(subCategorySearchable, subCategorySortable, "name ASC")
	return s.query(ctx, `SELECT `+subCategoryColumns+` FROM subcategories`+where+order, args...)
}

// ListByCategory returns every subcategory of a category.
func (s *SubCategoryStore) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]models.SubCategory, error) {
	return s.query(ctx, `SELECT `+subCategoryColumns+` FROM subcategories WHERE category_id = $1 ORDER BY name`, categoryID)
}

// ListPublicByCategory returns the published subcategories of a category.
func (s *SubCategoryStore) ListPublicByCategory(ctx context.Context, categoryID uuid.UUID) ([]models.SubCategory, error) {
	return s.query(ctx, `SELECT `+subCategoryColumns+` FROM subcategories WHERE category_id = $1 AND public = $2 ORDER BY name`, categoryID, true)
}

func (s *SubCategoryStore) query(ctx context.Context, query string, args ...any) ([]models.SubCategory, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	defer rows.Close()

	var items []models.SubCategory
	for rows.Next() {
		c, err := scanSubCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subcategory: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// Insert stores a new subcategory.
func (s *SubCategoryStore) Insert(ctx context.Context, c *models.SubCategory) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subcategories (`+subCategoryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		c.ID, c.Name, c.Description, c.CategoryID, c.Slug, c.Image,
		c.UseThumbnail, c.VideoURL, c.VideoFile, c.Public, c.CreatedBy, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert subcategory: %w", err)
	}
	return nil
}

// Update writes every editable column of an existing subcategory.
func (s *SubCategoryStore) Update(ctx context.Context, c *models.SubCategory) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE subcategories
		SET name = $1, description = $2, category_id = $3, slug = $4, image = $5,
		    use_thumbnail = $6, video_url = $7, video_file = $8, public = $9
		WHERE id = $10`,
		c.Name, c.Description, c.CategoryID, c.Slug, c.Image,
		c.UseThumbnail, c.VideoURL, c.VideoFile, c.Public, c.ID,
	)
	if err != nil {
		return fmt.Errorf("update subcategory: %w", err)
	}
	return mustAffect(res, "update subcategory")
}

// SetImage updates only the image column.
func (s *SubCategoryStore) SetImage(ctx context.Context, id uuid.UUID, image string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE subcategories SET image = $1 WHERE id = $2`, image, id)
	if err != nil {
		return fmt.Errorf("set subcategory image: %w", err)
	}
	return mustAffect(res, "set subcategory image")
}

// FilesByCategory returns the stored files of every subcategory in a
// category, for cleanup before the category cascade removes them.
func (s *SubCategoryStore) FilesByCategory(ctx context.Context, categoryID uuid.UUID) ([]string, error) {
	items, err := s.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	var files []string
	for i := range items {
		files = append(files, items[i].Files()...)
	}
	return files, nil
}

// Delete removes a subcategory. Articles referencing it keep existing.
func (s *SubCategoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM subcategories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete subcategory: %w", err)
	}
	return mustAffect(res, "delete subcategory")
}
