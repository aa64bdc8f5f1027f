package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"sitebuilder/internal/authz"
	"sitebuilder/internal/middleware"
	"sitebuilder/internal/models"
	"sitebuilder/internal/store"
)

// Admin groups the account and role administration handlers. The router
// restricts /admin to superusers; every action is still decided by the
// policy for the acting identity and its target.
type Admin struct {
	engine *authz.Engine
}

// NewAdmin creates the admin handler group.
func NewAdmin(engine *authz.Engine) *Admin {
	return &Admin{engine: engine}
}

type setRoleRequest struct {
	RoleID *uuid.UUID `json:"role_id"`
}

type roleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Accounts lists every account with its role.
func (a *Admin) Accounts(w http.ResponseWriter, r *http.Request) {
	if !a.decide(w, r, authz.OpView, authz.Target{Entity: authz.EntityAccount}) {
		return
	}
	views, err := a.engine.Accounts(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// SetRole assigns or clears the role of an account. The staff flag follows
// the new role.
func (a *Admin) SetRole(w http.ResponseWriter, r *http.Request) {
	acc, ok := a.account(w, r)
	if !ok {
		return
	}
	var req setRoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err)
		return
	}

	var roleName string
	if req.RoleID != nil {
		role, err := a.engine.Role(r.Context(), *req.RoleID)
		if err != nil {
			fail(w, r, err)
			return
		}
		if role == nil {
			fail(w, r, fmt.Errorf("role %s: %w", req.RoleID, store.ErrNotFound))
			return
		}
		roleName = role.Name
	}

	target := authz.Target{Entity: authz.EntityAccount, Account: acc, Role: roleName}
	if !a.decide(w, r, authz.OpAssignRole, target) {
		return
	}
	if err := a.engine.SetRole(r.Context(), acc.ID, req.RoleID); err != nil {
		fail(w, r, err)
		return
	}

	updated, err := a.engine.Account(r.Context(), acc.ID)
	if err != nil {
		fail(w, r, err)
		return
	}
	slog.Info("role assigned", "account", acc.Username, "role", roleName,
		"by", middleware.IdentityFromCtx(r.Context()).Account.Username)
	writeJSON(w, http.StatusOK, authz.AccountView{Account: *updated, Role: roleName})
}

// SetFlags changes the active, staff and superuser flags of an account.
func (a *Admin) SetFlags(w http.ResponseWriter, r *http.Request) {
	acc, ok := a.account(w, r)
	if !ok {
		return
	}
	if !a.decide(w, r, authz.OpSetFlags, authz.Target{Entity: authz.EntityAccount, Account: acc}) {
		return
	}
	var f authz.Flags
	if err := decodeJSON(w, r, &f); err != nil {
		fail(w, r, err)
		return
	}
	updated, err := a.engine.SetFlags(r.Context(), acc.ID, f)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Roles lists the roles the current identity may assign.
func (a *Admin) Roles(w http.ResponseWriter, r *http.Request) {
	roles, err := a.engine.Roles(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	out := authz.AssignableRoles(middleware.IdentityFromCtx(r.Context()), roles)
	if out == nil {
		out = []models.Role{}
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateRole adds a role to the catalog.
func (a *Admin) CreateRole(w http.ResponseWriter, r *http.Request) {
	if !a.decide(w, r, authz.OpAdd, authz.Target{Entity: authz.EntityRole}) {
		return
	}
	var req roleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err)
		return
	}
	role := &models.Role{Name: req.Name, Description: req.Description}
	if err := a.engine.SaveRole(r.Context(), role); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, role)
}

// UpdateRole renames or redescribes a role.
func (a *Admin) UpdateRole(w http.ResponseWriter, r *http.Request) {
	if !a.decide(w, r, authz.OpChange, authz.Target{Entity: authz.EntityRole}) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var req roleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err)
		return
	}
	role := &models.Role{ID: id, Name: req.Name, Description: req.Description}
	if err := a.engine.SaveRole(r.Context(), role); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, role)
}

// DeleteRole removes a role no profile holds.
func (a *Admin) DeleteRole(w http.ResponseWriter, r *http.Request) {
	if !a.decide(w, r, authz.OpDelete, authz.Target{Entity: authz.EntityRole}) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := a.engine.DeleteRole(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// account loads the {id} account, answering 400 or 404 itself.
func (a *Admin) account(w http.ResponseWriter, r *http.Request) (*models.Account, bool) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err)
		return nil, false
	}
	acc, err := a.engine.Account(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return nil, false
	}
	if acc == nil {
		writeError(w, http.StatusNotFound, msgNotFound)
		return nil, false
	}
	return acc, true
}

func (a *Admin) decide(w http.ResponseWriter, r *http.Request, op authz.Operation, t authz.Target) bool {
	d := authz.Decide(middleware.IdentityFromCtx(r.Context()), op, t)
	if !d.Allowed {
		middleware.Deny(w, r, d)
	}
	return d.Allowed
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: id %q", errBadRequest, chi.URLParam(r, "id"))
	}
	return id, nil
}
