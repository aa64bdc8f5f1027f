// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"sitebuilder/internal/models"
)

// AccountStore handles all account-related database operations.
type AccountStore struct {
	db DBTX
}

// NewAccountStore creates a new AccountStore with the given connection.
func NewAccountStore(db DBTX) *AccountStore {
	return &AccountStore{db: db}
}

const accountColumns = `id, username, email, first_name, last_name, password_hash, is_active, is_staff, is_superuser, created_at`

func scanAccount(scanner interface{ Scan(...any) error }) (*models.Account, error) {
	var a models.Account
	err := scanner.Scan(
		&a.ID, &a.Username, &a.Email, &a.FirstName, &a.LastName, &a.PasswordHash,
		&a.IsActive, &a.IsStaff, &a.IsSuperuser, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *AccountStore) findOne(ctx context.Context, what, where string, arg any) (*models.Account, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE `+where, arg)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find account by %s: %w", what, err)
	}
	return a, nil
}

// FindByID retrieves an account by its UUID. Returns nil if not found.
func (s *AccountStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	return s.findOne(ctx, "id", `id = $1`, id)
}

// FindByUsername retrieves an account by username. Returns nil if not found.
func (s *AccountStore) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	return s.findOne(ctx, "username", `username = $1`, username)
}

// List returns all accounts ordered by username.
func (s *AccountStore) List(ctx context.Context) ([]models.Account, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var items []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

// Create hashes password with bcrypt and inserts the account.
func (s *AccountStore) Create(ctx context.Context, a *models.Account, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	a.PasswordHash = string(hash)
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = now()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ID, a.Username, a.Email, a.FirstName, a.LastName, a.PasswordHash,
		a.IsActive, a.IsStaff, a.IsSuperuser, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// SetPassword replaces the password hash of an account.
func (s *AccountStore) SetPassword(ctx context.Context, id uuid.UUID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE accounts SET password_hash = $1 WHERE id = $2`, string(hash), id)
	if err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	return mustAffect(res, "set password")
}

// SetStaff writes only the staff flag.
func (s *AccountStore) SetStaff(ctx context.Context, id uuid.UUID, staff bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE accounts SET is_staff = $1 WHERE id = $2`, staff, id)
	if err != nil {
		return fmt.Errorf("set staff flag: %w", err)
	}
	return mustAffect(res, "set staff flag")
}

// SetFlags writes the active, staff and superuser flags.
func (s *AccountStore) SetFlags(ctx context.Context, id uuid.UUID, active, staff, superuser bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE accounts SET is_active = $1, is_staff = $2, is_superuser = $3 WHERE id = $4`,
		active, staff, superuser, id)
	if err != nil {
		return fmt.Errorf("set account flags: %w", err)
	}
	return mustAffect(res, "set account flags")
}

// UpdateProfile writes the personal details of an account.
func (s *AccountStore) UpdateProfile(ctx context.Context, a *models.Account) error {
	res, err := s.db.ExecContext(ctx, `UPDATE accounts SET email = $1, first_name = $2, last_name = $3 WHERE id = $4`,
		a.Email, a.FirstName, a.LastName, a.ID)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return mustAffect(res, "update account")
}

// Delete removes an account. Its profile cascades.
func (s *AccountStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return mustAffect(res, "delete account")
}

// CheckPassword compares a plaintext password against the stored hash.
func CheckPassword(a *models.Account, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}
