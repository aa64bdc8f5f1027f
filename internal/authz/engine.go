// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package authz maps accounts to roles and decides what each request may
// do. The Engine keeps the role catalog, profiles and staff flags
// consistent; the guard and policy functions are pure decisions over a
// freshly loaded models.Identity.
package authz

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"sitebuilder/internal/database"
	"sitebuilder/internal/events"
	"sitebuilder/internal/models"
	"sitebuilder/internal/store"
)

// ErrInvalidCredentials is returned by Authenticate for an unknown
// username, a wrong password or an inactive account.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Engine runs the role and account rules.
type Engine struct {
	db      *sql.DB
	dialect database.Dialect
	bus     *events.Bus
}

// NewEngine returns an Engine. bus may be nil.
func NewEngine(db *sql.DB, dialect database.Dialect, bus *events.Bus) *Engine {
	return &Engine{db: db, dialect: dialect, bus: bus}
}

// EnsureCatalog creates the roles of models.RoleCatalog that do not exist
// yet. A schema without the roles table is logged and tolerated.
func (e *Engine) EnsureCatalog(ctx context.Context) error {
	err := store.InTx(ctx, e.db, func(tx *sql.Tx) error {
		if err := store.LockTable(ctx, tx, e.dialect, "roles"); err != nil {
			return err
		}
		for _, r := range models.RoleCatalog {
			if _, err := ensureRole(ctx, tx, r.Name); err != nil {
				return err
			}
		}
		return nil
	})
	if store.IsMissingTable(err) {
		slog.Warn("role catalog skipped, schema not migrated", "error", err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("ensure role catalog: %w", err)
	}
	return nil
}

// ensureRole returns the role named name, creating it with the catalog
// description when missing.
func ensureRole(ctx context.Context, db store.DBTX, name string) (*models.Role, error) {
	roles := store.NewRoleStore(db)
	r, err := roles.FindByName(ctx, name)
	if err != nil || r != nil {
		return r, err
	}
	r = &models.Role{Name: name}
	for _, c := range models.RoleCatalog {
		if c.Name == name {
			r.Description = c.Description
		}
	}
	if err := roles.Insert(ctx, r); err != nil {
		return nil, err
	}
	slog.Info("role created", "role", name)
	return r, nil
}

// SyncStaff aligns the staff flag of an account with its profile role:
// the Staff role sets it, any other role clears it unless the account is a
// superuser. Nothing is written when the flag already matches or the Staff
// role does not exist. It reports whether the flag changed.
func SyncStaff(ctx context.Context, db store.DBTX, accountID uuid.UUID, roleID *uuid.UUID) (bool, error) {
	staff, err := store.NewRoleStore(db).FindByName(ctx, models.RoleStaff)
	if store.IsMissingTable(err) {
		return false, nil
	}
	if err != nil || staff == nil {
		return false, err
	}

	accounts := store.NewAccountStore(db)
	a, err := accounts.FindByID(ctx, accountID)
	if err != nil {
		return false, err
	}
	if a == nil {
		return false, fmt.Errorf("sync staff: %w", store.ErrNotFound)
	}

	want := roleID != nil && *roleID == staff.ID
	switch {
	case want && !a.IsStaff:
		return true, accounts.SetStaff(ctx, a.ID, true)
	case !want && a.IsStaff && !a.IsSuperuser:
		return true, accounts.SetStaff(ctx, a.ID, false)
	}
	return false, nil
}

// SetRole assigns roleID (nil clears it) to the profile of an account,
// creating the profile when missing, and syncs the staff flag in the same
// transaction. profile.role_changed is published after commit.
func (e *Engine) SetRole(ctx context.Context, accountID uuid.UUID, roleID *uuid.UUID) error {
	var profile *models.Profile
	err := store.InTx(ctx, e.db, func(tx *sql.Tx) error {
		if roleID != nil {
			r, err := store.NewRoleStore(tx).FindByID(ctx, *roleID)
			if err != nil {
				return err
			}
			if r == nil {
				return fmt.Errorf("set role: %w", store.ErrNotFound)
			}
		}
		var err error
		if profile, err = setProfileRole(ctx, tx, accountID, roleID); err != nil {
			return err
		}
		_, err = SyncStaff(ctx, tx, accountID, roleID)
		return err
	})
	if err != nil {
		return err
	}
	e.bus.Publish(ctx, events.Event{Name: events.RoleChanged, ID: accountID, Entity: profile})
	return nil
}

// setProfileRole gets or creates the profile of an account and sets its
// role.
func setProfileRole(ctx context.Context, db store.DBTX, accountID uuid.UUID, roleID *uuid.UUID) (*models.Profile, error) {
	profiles := store.NewProfileStore(db)
	p, err := profiles.FindByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		p = &models.Profile{AccountID: accountID, RoleID: roleID}
		return p, profiles.Insert(ctx, p)
	}
	p.RoleID = roleID
	return p, profiles.SetRole(ctx, p.ID, roleID)
}

// AccountCreated gives a new account its profile. Regular accounts get the
// Ingresante role when they have no profile yet. Superusers always end up
// with the Staff role and the staff flag.
func AccountCreated(ctx context.Context, db store.DBTX, a *models.Account) error {
	if !a.IsSuperuser {
		existing, err := store.NewProfileStore(db).FindByAccount(ctx, a.ID)
		if err != nil || existing != nil {
			return err
		}
		role, err := ensureRole(ctx, db, models.RoleIngresante)
		if err != nil {
			return err
		}
		return store.NewProfileStore(db).Insert(ctx, &models.Profile{AccountID: a.ID, RoleID: &role.ID})
	}

	role, err := ensureRole(ctx, db, models.RoleStaff)
	if err != nil {
		return err
	}
	if _, err := setProfileRole(ctx, db, a.ID, &role.ID); err != nil {
		return err
	}
	if !a.IsStaff {
		if err := store.NewAccountStore(db).SetStaff(ctx, a.ID, true); err != nil {
			return err
		}
		a.IsStaff = true
	}
	return nil
}

// CreateAccount inserts an account with a hashed password and its profile
// in one transaction. A taken username is store.ErrConflict.
func (e *Engine) CreateAccount(ctx context.Context, a *models.Account, password string) error {
	err := store.InTx(ctx, e.db, func(tx *sql.Tx) error {
		if err := store.NewAccountStore(tx).Create(ctx, a, password); err != nil {
			return err
		}
		return AccountCreated(ctx, tx, a)
	})
	if store.IsUniqueViolation(err) {
		return fmt.Errorf("create account %q: %w: %w", a.Username, store.ErrConflict, err)
	}
	if err != nil {
		return err
	}
	e.bus.Publish(ctx, events.Event{Name: events.AccountCreated, ID: a.ID, Entity: a, Created: true})
	return nil
}

// Authenticate checks a username and password pair.
func (e *Engine) Authenticate(ctx context.Context, username, password string) (*models.Account, error) {
	a, err := store.NewAccountStore(e.db).FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if a == nil || !a.IsActive || !store.CheckPassword(a, password) {
		return nil, ErrInvalidCredentials
	}
	return a, nil
}

// LoadIdentity reads the account and its role name. It returns nil for an
// unknown or inactive account. A missing role catalog means no role.
func (e *Engine) LoadIdentity(ctx context.Context, accountID uuid.UUID) (*models.Identity, error) {
	a, err := store.NewAccountStore(e.db).FindByID(ctx, accountID)
	if err != nil || a == nil || !a.IsActive {
		return nil, err
	}
	role, err := store.NewProfileStore(e.db).RoleName(ctx, accountID)
	if store.IsMissingTable(err) {
		role, err = "", nil
	}
	if err != nil {
		return nil, err
	}
	return &models.Identity{Account: *a, RoleName: role}, nil
}
