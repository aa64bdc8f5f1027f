// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"sitebuilder/internal/authz"
	"sitebuilder/internal/maintenance"
	"sitebuilder/internal/middleware"
)

// Maintenance serves the generic content CRUD over the entity registry.
// The router admits Usuario and Staff; each action is also checked
// against the policy so the layout singleton cannot be created or
// removed.
type Maintenance struct {
	registry *maintenance.Registry
}

// NewMaintenance creates the maintenance handler group.
func NewMaintenance(registry *maintenance.Registry) *Maintenance {
	return &Maintenance{registry: registry}
}

type indexResponse struct {
	Entities []*maintenance.Entity `json:"entities"`
	Layout   *maintenance.Entity   `json:"layout"`
}

type deleteManyRequest struct {
	IDs []string `json:"ids"`
}

type deleteManyResponse struct {
	Deleted int `json:"deleted"`
}

// Index lists the maintainable entities with their form schemas.
func (m *Maintenance) Index(w http.ResponseWriter, r *http.Request) {
	layout, err := m.registry.Entity(authz.EntityLayout)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, indexResponse{Entities: m.registry.Entities(), Layout: layout})
}

// List returns the rows of an entity filtered by ?q= and sorted by
// ?sort= and ?order=.
func (m *Maintenance) List(w http.ResponseWriter, r *http.Request) {
	name, ok := m.allowed(w, r, authz.OpView)
	if !ok {
		return
	}
	q := r.URL.Query()
	listing, err := m.registry.List(r.Context(), name, maintenance.ListParams{
		Search: q.Get("q"),
		Sort:   q.Get("sort"),
		Order:  q.Get("order"),
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

// Create saves a new row from a JSON form.
func (m *Maintenance) Create(w http.ResponseWriter, r *http.Request) {
	name, ok := m.allowed(w, r, authz.OpAdd)
	if !ok {
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		fail(w, r, err)
		return
	}
	item, err := m.registry.Create(r.Context(), name, body, middleware.IdentityFromCtx(r.Context()))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// DeleteMany removes the rows listed in {"ids": [...]}.
func (m *Maintenance) DeleteMany(w http.ResponseWriter, r *http.Request) {
	name, ok := m.allowed(w, r, authz.OpDelete)
	if !ok {
		return
	}
	var req deleteManyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err)
		return
	}
	n, err := m.registry.DeleteMany(r.Context(), name, req.IDs)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteManyResponse{Deleted: n})
}

// Get returns one row.
func (m *Maintenance) Get(w http.ResponseWriter, r *http.Request) {
	name, ok := m.allowed(w, r, authz.OpView)
	if !ok {
		return
	}
	item, err := m.registry.Get(r.Context(), name, chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Update overlays a JSON form on an existing row.
func (m *Maintenance) Update(w http.ResponseWriter, r *http.Request) {
	name, ok := m.allowed(w, r, authz.OpChange)
	if !ok {
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		fail(w, r, err)
		return
	}
	item, err := m.registry.Update(r.Context(), name, chi.URLParam(r, "id"), body)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Delete removes one row.
func (m *Maintenance) Delete(w http.ResponseWriter, r *http.Request) {
	name, ok := m.allowed(w, r, authz.OpDelete)
	if !ok {
		return
	}
	if err := m.registry.Delete(r.Context(), name, chi.URLParam(r, "id")); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Layout returns the site layout, creating the defaults on first access.
func (m *Maintenance) Layout(w http.ResponseWriter, r *http.Request) {
	if !m.decide(w, r, authz.OpView, authz.EntityLayout) {
		return
	}
	l, err := m.registry.Layout(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// SaveLayout overlays a JSON form on the site layout.
func (m *Maintenance) SaveLayout(w http.ResponseWriter, r *http.Request) {
	if !m.decide(w, r, authz.OpChange, authz.EntityLayout) {
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		fail(w, r, err)
		return
	}
	l, err := m.registry.SaveLayout(r.Context(), body)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// allowed resolves the {entity} route parameter and checks op on it.
// Unknown entities are answered with 404 before the policy runs.
func (m *Maintenance) allowed(w http.ResponseWriter, r *http.Request, op authz.Operation) (string, bool) {
	e, err := m.registry.Entity(chi.URLParam(r, "entity"))
	if err != nil {
		fail(w, r, err)
		return "", false
	}
	return e.Name, m.decide(w, r, op, e.Name)
}

func (m *Maintenance) decide(w http.ResponseWriter, r *http.Request, op authz.Operation, entity string) bool {
	d := authz.Decide(middleware.IdentityFromCtx(r.Context()), op, authz.Target{Entity: entity})
	if !d.Allowed {
		middleware.Deny(w, r, d)
	}
	return d.Allowed
}
