// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package authz

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"sitebuilder/internal/models"
	"sitebuilder/internal/store"
)

// DefaultSeedPassword is used when no password is given to Seed.
const DefaultSeedPassword = "test1234"

// OwnerUsername is the seeded superuser.
const OwnerUsername = "dueno"

// Collaborators are the seeded non-staff accounts.
var Collaborators = []string{"colaborador1", "colaborador2"}

// SeedOptions controls Seed.
type SeedOptions struct {
	// Password is set on accounts created by the seed.
	Password string
	// ForcePassword also resets the password of existing seeded accounts.
	ForcePassword bool
}

// Seed ensures the role catalog, a superuser owner with the Staff role and
// two collaborators with the Usuario role. It is safe to run repeatedly.
func (e *Engine) Seed(ctx context.Context, opts SeedOptions) error {
	if opts.Password == "" {
		opts.Password = DefaultSeedPassword
	}
	if err := e.EnsureCatalog(ctx); err != nil {
		return err
	}

	return store.InTx(ctx, e.db, func(tx *sql.Tx) error {
		usuario, err := ensureRole(ctx, tx, models.RoleUsuario)
		if err != nil {
			return err
		}
		for _, name := range Collaborators {
			a := &models.Account{Username: name, Email: name + "@example.com", IsActive: true}
			if err := seedAccount(ctx, tx, a, opts); err != nil {
				return err
			}
			if _, err := setProfileRole(ctx, tx, a.ID, &usuario.ID); err != nil {
				return err
			}
			if _, err := SyncStaff(ctx, tx, a.ID, &usuario.ID); err != nil {
				return err
			}
			slog.Info("seed account ensured", "username", name, "role", models.RoleUsuario)
		}

		owner := &models.Account{Username: OwnerUsername, Email: "dueno@example.com", IsActive: true, IsStaff: true, IsSuperuser: true}
		if err := seedAccount(ctx, tx, owner, opts); err != nil {
			return err
		}
		if !owner.IsStaff || !owner.IsSuperuser {
			if err := store.NewAccountStore(tx).SetFlags(ctx, owner.ID, true, true, true); err != nil {
				return err
			}
			owner.IsActive, owner.IsStaff, owner.IsSuperuser = true, true, true
			slog.Info("seed owner promoted to superuser", "username", OwnerUsername)
		}
		if err := AccountCreated(ctx, tx, owner); err != nil {
			return err
		}
		slog.Info("seed account ensured", "username", OwnerUsername, "role", models.RoleStaff)
		return nil
	})
}

// seedAccount loads the account named a.Username into a, creating it
// from a when missing.
func seedAccount(ctx context.Context, tx *sql.Tx, a *models.Account, opts SeedOptions) error {
	accounts := store.NewAccountStore(tx)
	existing, err := accounts.FindByUsername(ctx, a.Username)
	if err != nil {
		return err
	}
	if existing == nil {
		if err := accounts.Create(ctx, a, opts.Password); err != nil {
			return fmt.Errorf("seed %s: %w", a.Username, err)
		}
		slog.Info("seed account created", "username", a.Username)
		return nil
	}

	*a = *existing
	if opts.ForcePassword {
		if err := accounts.SetPassword(ctx, a.ID, opts.Password); err != nil {
			return err
		}
		slog.Warn("seed password forced", "username", a.Username)
	}
	return nil
}
