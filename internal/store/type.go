package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"sitebuilder/internal/models"
)

// TypeStore manages article types in the database.
type TypeStore struct {
	db DBTX
}

// NewTypeStore returns a new TypeStore.
func NewTypeStore(db DBTX) *TypeStore {
	return &TypeStore{db: db}
}

const typeColumns = `id, name, slug, public, created_by, created_at`

var (
	typeSearchable = newColumnSet("name")
	typeSortable   = newColumnSet("name", "slug", "public", "created_at")
)

func scanType(scanner interface{ Scan(...any) error }) (*models.Type, error) {
	var t models.Type
	if err := scanner.Scan(&t.ID, &t.Name, &t.Slug, &t.Public, &t.CreatedBy, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// FindByID retrieves a type by ID. Returns nil if not found.
func (s *TypeStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Type, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+typeColumns+` FROM types WHERE id = $1`, id)
	t, err := scanType(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find type by id: %w", err)
	}
	return t, nil
}

// List returns types matching q, ordered by name by default.
func (s *TypeStore) List(ctx context.Context, q ListQuery) ([]models.Type, error) {
	where, order, args := q.clauses(typeSearchable, typeSortable, "name ASC")
	rows, err := s.db.QueryContext(ctx, `SELECT `+typeColumns+` FROM types`+where+order, args...)
	if err != nil {
		return nil, fmt.Errorf("list types: %w", err)
	}
	defer rows.Close()

	var items []models.Type
	for rows.Next() {
		t, err := scanType(rows)
		if err != nil {
			return nil, fmt.Errorf("scan type: %w", err)
		}
		items = append(items, *t)
	}
	return items, rows.Err()
}

// Insert stores a new type.
func (s *TypeStore) Insert(ctx context.Context, t *models.Type) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.CreatedAt = now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO types (`+typeColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.Name, t.Slug, t.Public, t.CreatedBy, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert type: %w", err)
	}
	return nil
}

// Update writes the editable columns of an existing type.
func (s *TypeStore) Update(ctx context.Context, t *models.Type) error {
	res, err := s.db.ExecContext(ctx, `UPDATE types SET name = $1, slug = $2, public = $3 WHERE id = $4`,
		t.Name, t.Slug, t.Public, t.ID)
	if err != nil {
		return fmt.Errorf("update type: %w", err)
	}
	return mustAffect(res, "update type")
}

// Delete removes a type. Its articles cascade; pages lose the reference.
func (s *TypeStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM types WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete type: %w", err)
	}
	return mustAffect(res, "delete type")
}
