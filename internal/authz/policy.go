// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package authz

import (
	"sitebuilder/internal/models"
)

// Operation is an action checked by Decide.
type Operation string

const (
	OpView       Operation = "view"
	OpAdd        Operation = "add"
	OpChange     Operation = "change"
	OpDelete     Operation = "delete"
	OpAssignRole Operation = "assign_role"
	OpSetFlags   Operation = "set_flags"
)

// Entity names understood by Decide.
const (
	EntityPage        = "page"
	EntityCategory    = "category"
	EntitySubCategory = "subcategory"
	EntityType        = "type"
	EntityArticle     = "article"
	EntityLayout      = "layout"
	EntityRole        = "role"
	EntityAccount     = "account"
)

// MaintenanceRoles may manage site content.
var MaintenanceRoles = []string{models.RoleUsuario, models.RoleStaff}

// Target is what an operation acts on. Account and Role are only read for
// account operations.
type Target struct {
	Entity  string
	Account *models.Account
	// Role is the role name being assigned by OpAssignRole.
	Role string
}

// Decide evaluates one operation for an already loaded identity.
func Decide(id *models.Identity, op Operation, t Target) Decision {
	if id == nil {
		return deny(OutcomeUnauthenticated, MsgLoginRequired, LoginPath)
	}

	switch t.Entity {
	case EntityPage, EntityCategory, EntitySubCategory, EntityType, EntityArticle:
		return RequireRole(id, "", MaintenanceRoles...)
	case EntityLayout:
		if op == OpAdd || op == OpDelete {
			return deny(OutcomeForbidden, MsgActionDenied, HomePath)
		}
		return RequireRole(id, "", MaintenanceRoles...)
	case EntityRole:
		return superuserOnly(id, MsgForbidden)
	case EntityAccount:
		return decideAccount(id, op, t)
	}
	return deny(OutcomeForbidden, MsgForbidden, HomePath)
}

func superuserOnly(id *models.Identity, msg string) Decision {
	if id.IsSuperuser() {
		return allow
	}
	return deny(OutcomeForbidden, msg, AdminPath)
}

func decideAccount(id *models.Identity, op Operation, t Target) Decision {
	if id.IsSuperuser() {
		return allow
	}
	denied := deny(OutcomeForbidden, MsgActionDenied, AdminPath)
	if !id.IsStaff() {
		return denied
	}

	switch op {
	case OpView:
		return allow
	case OpChange:
		if t.Account != nil && (t.Account.ID == id.Account.ID || ordinary(t.Account)) {
			return allow
		}
	case OpAssignRole:
		if t.Account != nil && t.Account.ID != id.Account.ID && ordinary(t.Account) && t.Role != models.RoleStaff {
			return allow
		}
	}
	return denied
}

// ordinary reports whether an account is neither staff nor superuser.
func ordinary(a *models.Account) bool {
	return !a.IsStaff && !a.IsSuperuser
}

// AssignableRoles filters roles to those the identity may hand out.
func AssignableRoles(id *models.Identity, roles []models.Role) []models.Role {
	if id.IsSuperuser() {
		return roles
	}
	if !id.IsStaff() {
		return nil
	}
	var out []models.Role
	for _, r := range roles {
		if r.Name != models.RoleStaff {
			out = append(out, r)
		}
	}
	return out
}
