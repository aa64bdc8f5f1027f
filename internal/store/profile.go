package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"sitebuilder/internal/models"
)

// ProfileStore manages the one-to-one account profiles holding roles.
type ProfileStore struct {
	db DBTX
}

// NewProfileStore returns a new ProfileStore.
func NewProfileStore(db DBTX) *ProfileStore {
	return &ProfileStore{db: db}
}

// FindByAccount retrieves the profile of an account. Returns nil if the
// account has none.
func (s *ProfileStore) FindByAccount(ctx context.Context, accountID uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	err := s.db.QueryRowContext(ctx, `SELECT id, account_id, role_id FROM profiles WHERE account_id = $1`, accountID).
		Scan(&p.ID, &p.AccountID, &p.RoleID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return &p, nil
}

// RoleName returns the role name held by an account's profile, or "" when
// the account has no profile or the profile has no role.
func (s *ProfileStore) RoleName(ctx context.Context, accountID uuid.UUID) (string, error) {
	var name sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT r.name
		FROM profiles p
		LEFT JOIN roles r ON r.id = p.role_id
		WHERE p.account_id = $1`, accountID).Scan(&name)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("find profile role: %w", err)
	}
	return name.String, nil
}

// RoleNames maps every account with a role to its role name.
func (s *ProfileStore) RoleNames(ctx context.Context) (map[uuid.UUID]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.account_id, r.name
		FROM profiles p
		JOIN roles r ON r.id = p.role_id`)
	if err != nil {
		return nil, fmt.Errorf("list profile roles: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID]string)
	for rows.Next() {
		var id uuid.UUID
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan profile role: %w", err)
		}
		out[id] = name
	}
	return out, rows.Err()
}

// Insert creates a profile for an account.
func (s *ProfileStore) Insert(ctx context.Context, p *models.Profile) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO profiles (id, account_id, role_id) VALUES ($1, $2, $3)`,
		p.ID, p.AccountID, p.RoleID)
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

// SetRole updates only the role of a profile.
func (s *ProfileStore) SetRole(ctx context.Context, id uuid.UUID, roleID *uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `UPDATE profiles SET role_id = $1 WHERE id = $2`, roleID, id)
	if err != nil {
		return fmt.Errorf("set profile role: %w", err)
	}
	return mustAffect(res, "set profile role")
}
