// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package maintenance is the generic CRUD surface over the site entities.
// Every entity is registered explicitly with its listing metadata and
// form schema; writes go through the content service so the uniqueness
// and home rules always apply.
package maintenance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"sitebuilder/internal/content"
	"sitebuilder/internal/models"
	"sitebuilder/internal/store"
)

var (
	// ErrUnknownEntity is returned for names missing from the registry.
	ErrUnknownEntity = errors.New("unknown entity")
	// ErrSingleton rejects create and delete on the layout.
	ErrSingleton = errors.New("singleton entity")
	// ErrInvalidID is returned when an ID does not parse.
	ErrInvalidID = errors.New("invalid id")
	// ErrInvalidBody is returned when a form body does not decode.
	ErrInvalidBody = errors.New("invalid body")
)

// FieldKind tells a client how to render and parse a form field.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindTextArea FieldKind = "textarea"
	KindRichText FieldKind = "richtext"
	KindSlug     FieldKind = "slug"
	KindInt      FieldKind = "int"
	KindBool     FieldKind = "bool"
	KindURL      FieldKind = "url"
	KindFile     FieldKind = "file"
	KindRef      FieldKind = "ref"
	KindRefs     FieldKind = "refs"
)

// Field describes one form input.
type Field struct {
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Kind     FieldKind `json:"kind"`
	Required bool      `json:"required,omitempty"`
	MaxLen   int       `json:"max_length,omitempty"`
	// Ref names the entity a ref or refs field points to.
	Ref string `json:"ref,omitempty"`
}

// Entity is the registered metadata of one maintainable model.
type Entity struct {
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Searchable  []string `json:"searchable"`
	Sortable    []string `json:"sortable"`
	Fields      []Field  `json:"fields"`
	Singleton   bool     `json:"singleton,omitempty"`

	ops ops
}

// ops are the typed operations behind an entity, erased to any.
type ops struct {
	list   func(ctx context.Context, q store.ListQuery) (any, error)
	get    func(ctx context.Context, id uuid.UUID) (any, error)
	create func(ctx context.Context, body []byte, actor *models.Identity) (any, error)
	update func(ctx context.Context, id uuid.UUID, body []byte) (any, error)
	delete func(ctx context.Context, id uuid.UUID) error
}

// ListParams are the raw listing parameters of a request.
type ListParams struct {
	Search string
	Sort   string
	Order  string
}

// Listing is a filtered and sorted set of rows.
type Listing struct {
	Entity string `json:"entity"`
	Items  any    `json:"items"`
	Search string `json:"search,omitempty"`
	// Sort is the applied sort field, empty when the request's was
	// ignored.
	Sort  string `json:"sort,omitempty"`
	Order string `json:"order"`
}

// Registry holds the registered entities in display order.
type Registry struct {
	svc      *content.Service
	entities map[string]*Entity
	order    []string
}

// NewRegistry registers every site entity against svc.
func NewRegistry(svc *content.Service) *Registry {
	r := &Registry{svc: svc, entities: make(map[string]*Entity)}
	r.registerAll()
	return r
}

func (r *Registry) register(e *Entity) {
	r.entities[e.Name] = e
	r.order = append(r.order, e.Name)
}

// Entities lists the registered non-singleton entities.
func (r *Registry) Entities() []*Entity {
	var out []*Entity
	for _, name := range r.order {
		if e := r.entities[name]; !e.Singleton {
			out = append(out, e)
		}
	}
	return out
}

// Entity returns the metadata of a registered entity.
func (r *Registry) Entity(name string) (*Entity, error) {
	e, ok := r.entities[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownEntity, name)
	}
	return e, nil
}

// collection is like Entity but rejects singletons, which have no
// listing or per-ID routes.
func (r *Registry) collection(name string) (*Entity, error) {
	e, err := r.Entity(name)
	if err != nil {
		return nil, err
	}
	if e.Singleton {
		return nil, fmt.Errorf("%s: %w", e.Name, ErrSingleton)
	}
	return e, nil
}

// List searches by case-insensitive prefix on the searchable fields and
// sorts on a whitelisted field. An order other than "desc" is ascending;
// an unknown sort field is ignored.
func (r *Registry) List(ctx context.Context, name string, p ListParams) (*Listing, error) {
	e, err := r.collection(name)
	if err != nil {
		return nil, err
	}

	order := strings.ToLower(strings.TrimSpace(p.Order))
	if order != "desc" {
		order = "asc"
	}
	sort := strings.TrimSpace(p.Sort)
	if !slices.Contains(e.Sortable, sort) {
		sort = ""
	}
	q := store.ListQuery{
		Search:        strings.TrimSpace(p.Search),
		SearchColumns: e.Searchable,
		Sort:          sort,
		Desc:          order == "desc",
	}

	items, err := e.ops.list(ctx, q)
	if err != nil {
		return nil, err
	}
	return &Listing{Entity: e.Name, Items: items, Search: q.Search, Sort: sort, Order: order}, nil
}

// Get returns one row. A missing row is store.ErrNotFound.
func (r *Registry) Get(ctx context.Context, name, rawID string) (any, error) {
	e, err := r.collection(name)
	if err != nil {
		return nil, err
	}
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	return e.ops.get(ctx, id)
}

// Create decodes a JSON form into a new row. The creator is the acting
// identity.
func (r *Registry) Create(ctx context.Context, name string, body []byte, actor *models.Identity) (any, error) {
	e, err := r.collection(name)
	if err != nil {
		return nil, err
	}
	return e.ops.create(ctx, body, actor)
}

// Update decodes a JSON form over an existing row. Fields missing from the
// form keep their stored value; the creator never changes.
func (r *Registry) Update(ctx context.Context, name, rawID string, body []byte) (any, error) {
	e, err := r.collection(name)
	if err != nil {
		return nil, err
	}
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	return e.ops.update(ctx, id, body)
}

// Delete removes one row.
func (r *Registry) Delete(ctx context.Context, name, rawID string) error {
	e, err := r.collection(name)
	if err != nil {
		return err
	}
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	return e.ops.delete(ctx, id)
}

// DeleteMany removes every listed row. All IDs must parse before anything
// is deleted; rows already gone are skipped. It returns how many rows
// were removed.
func (r *Registry) DeleteMany(ctx context.Context, name string, rawIDs []string) (int, error) {
	e, err := r.collection(name)
	if err != nil {
		return 0, err
	}
	ids := make([]uuid.UUID, 0, len(rawIDs))
	for _, raw := range rawIDs {
		id, err := parseID(raw)
		if err != nil {
			return 0, err
		}
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}

	deleted := 0
	for _, id := range ids {
		err := e.ops.delete(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// Layout returns the singleton layout.
func (r *Registry) Layout(ctx context.Context) (*models.Layout, error) {
	return r.svc.Layout(ctx)
}

// SaveLayout decodes a JSON form over the current layout.
func (r *Registry) SaveLayout(ctx context.Context, body []byte) (*models.Layout, error) {
	l, err := r.svc.Layout(ctx)
	if err != nil {
		return nil, err
	}
	if err := decode(body, l); err != nil {
		return nil, err
	}
	if err := r.svc.SaveLayout(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w %q", ErrInvalidID, raw)
	}
	return id, nil
}

// decode reads a JSON form into dst, rejecting unknown fields.
func decode(body []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return nil
}
