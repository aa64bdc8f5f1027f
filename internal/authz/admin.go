// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package authz

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"sitebuilder/internal/events"
	"sitebuilder/internal/models"
	"sitebuilder/internal/store"
)

// AccountView is an account listed with its role name.
type AccountView struct {
	models.Account
	Role string `json:"role,omitempty"`
}

// Accounts lists every account with its role, ordered by username.
func (e *Engine) Accounts(ctx context.Context) ([]AccountView, error) {
	accounts, err := store.NewAccountStore(e.db).List(ctx)
	if err != nil {
		return nil, err
	}
	roles, err := store.NewProfileStore(e.db).RoleNames(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]AccountView, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, AccountView{Account: a, Role: roles[a.ID]})
	}
	return out, nil
}

// Account returns one account or nil when it does not exist.
func (e *Engine) Account(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	return store.NewAccountStore(e.db).FindByID(ctx, id)
}

// Flags is a partial update of the account flags. Nil fields keep their
// current value.
type Flags struct {
	IsActive    *bool `json:"is_active"`
	IsStaff     *bool `json:"is_staff"`
	IsSuperuser *bool `json:"is_superuser"`
}

// SetFlags applies f to an account and returns the result. A superuser
// keeps the staff flag whatever f says and is moved to the Staff role in
// the same transaction.
func (e *Engine) SetFlags(ctx context.Context, id uuid.UUID, f Flags) (*models.Account, error) {
	var a *models.Account
	err := store.InTx(ctx, e.db, func(tx *sql.Tx) error {
		accounts := store.NewAccountStore(tx)
		var err error
		if a, err = accounts.FindByID(ctx, id); err != nil {
			return err
		}
		if a == nil {
			return fmt.Errorf("set account flags: %w", store.ErrNotFound)
		}
		if f.IsActive != nil {
			a.IsActive = *f.IsActive
		}
		if f.IsStaff != nil {
			a.IsStaff = *f.IsStaff
		}
		if f.IsSuperuser != nil {
			a.IsSuperuser = *f.IsSuperuser
		}
		if a.IsSuperuser {
			a.IsStaff = true
		}
		if err := accounts.SetFlags(ctx, id, a.IsActive, a.IsStaff, a.IsSuperuser); err != nil {
			return err
		}
		if !a.IsSuperuser {
			return nil
		}
		return AccountCreated(ctx, tx, a)
	})
	if err != nil {
		return nil, err
	}
	if a.IsSuperuser {
		e.bus.Publish(ctx, events.Event{Name: events.RoleChanged, ID: a.ID})
	}
	return a, nil
}

// Roles lists the role catalog.
func (e *Engine) Roles(ctx context.Context) ([]models.Role, error) {
	return store.NewRoleStore(e.db).List(ctx)
}

// Role returns one role or nil when it does not exist.
func (e *Engine) Role(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	return store.NewRoleStore(e.db).FindByID(ctx, id)
}

// SaveRole inserts r when its ID is zero and updates it otherwise. A
// duplicate name is a field error.
func (e *Engine) SaveRole(ctx context.Context, r *models.Role) error {
	if err := r.Validate(); err != nil {
		return err
	}
	roles := store.NewRoleStore(e.db)
	var err error
	if created := r.ID == uuid.Nil; created {
		if err = roles.Insert(ctx, r); err != nil {
			r.ID = uuid.Nil
		}
	} else {
		err = roles.Update(ctx, r)
	}
	if store.IsUniqueViolation(err) {
		var v models.ValidationError
		v.Add("name", MsgRoleTaken)
		return v.Err()
	}
	return err
}

// DeleteRole removes a role. It fails with store.ErrRoleInUse while any
// profile holds the role.
func (e *Engine) DeleteRole(ctx context.Context, id uuid.UUID) error {
	return store.NewRoleStore(e.db).Delete(ctx, id)
}
