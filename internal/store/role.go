package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"sitebuilder/internal/models"
)

// RoleStore manages the role catalog.
type RoleStore struct {
	db DBTX
}

// NewRoleStore returns a new RoleStore.
func NewRoleStore(db DBTX) *RoleStore {
	return &RoleStore{db: db}
}

func (s *RoleStore) findOne(ctx context.Context, what, where string, arg any) (*models.Role, error) {
	var r models.Role
	err := s.db.QueryRowContext(ctx, `SELECT id, name, description FROM roles WHERE `+where, arg).
		Scan(&r.ID, &r.Name, &r.Description)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find role by %s: %w", what, err)
	}
	return &r, nil
}

// FindByID retrieves a role by ID. Returns nil if not found.
func (s *RoleStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	return s.findOne(ctx, "id", `id = $1`, id)
}

// FindByName retrieves a role by name. Returns nil if not found.
func (s *RoleStore) FindByName(ctx context.Context, name string) (*models.Role, error) {
	return s.findOne(ctx, "name", `name = $1`, name)
}

// List returns every role ordered by name.
func (s *RoleStore) List(ctx context.Context) ([]models.Role, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description FROM roles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	var items []models.Role
	for rows.Next() {
		var r models.Role
		if err := rows.Scan(&r.ID, &r.Name, &r.Description); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

// Insert stores a new role.
func (s *RoleStore) Insert(ctx context.Context, r *models.Role) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO roles (id, name, description) VALUES ($1, $2, $3)`,
		r.ID, r.Name, r.Description)
	if err != nil {
		return fmt.Errorf("insert role: %w", err)
	}
	return nil
}

// Update writes the role name and description.
func (s *RoleStore) Update(ctx context.Context, r *models.Role) error {
	res, err := s.db.ExecContext(ctx, `UPDATE roles SET name = $1, description = $2 WHERE id = $3`,
		r.Name, r.Description, r.ID)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	return mustAffect(res, "update role")
}

// Delete removes a role. It fails with ErrRoleInUse while any profile
// references the role.
func (s *RoleStore) Delete(ctx context.Context, id uuid.UUID) error {
	var inUse bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM profiles WHERE role_id = $1)`, id).Scan(&inUse)
	if err != nil {
		return fmt.Errorf("check role usage: %w", err)
	}
	if inUse {
		return fmt.Errorf("delete role: %w", ErrRoleInUse)
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("delete role: %w", ErrRoleInUse)
	}
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	return mustAffect(res, "delete role")
}
