// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to database tables
// and the field-level validation each entity performs before it is saved.
package models

import (
	"time"

	"github.com/google/uuid"

	"sitebuilder/internal/slug"
)

// Field limits shared by the validation rules, the maintenance form schema
// and the database migrations.
const (
	PageTitleMax        = 50
	CategoryNameMax     = 50
	DescriptionMax      = 255
	SubCategoryNameMax  = 100
	TypeNameMax         = 100
	ArticleTitleMax     = 100
	ArticleContentMax   = 1000
	LayoutTitleMax      = 200
	RoleNameMax         = 50
	DefaultLayoutTitle  = "Mi sitio"
	DefaultPageSlugBase = "pagina"
)

// Page is a navigable content node shown in the site navigation. At most
// one page is the home page; it always has an empty slug and order 0.
type Page struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	SortOrder int        `json:"sort_order"`
	Slug      string     `json:"slug"`
	Public    bool       `json:"public"`
	TypeID    *uuid.UUID `json:"type_id,omitempty"`
	IsHome    bool       `json:"is_home"`
	CreatedBy *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Validate checks the page fields that can be verified without touching
// storage.
func (p *Page) Validate() error {
	var v ValidationError
	v.required("title", p.Title, PageTitleMax)
	if p.SortOrder < 0 {
		v.Add("sort_order", MsgNegative)
	}
	if p.Slug != "" {
		if !slug.Valid(p.Slug) {
			v.Add("slug", MsgInvalidSlug)
		}
		v.maxLen("slug", p.Slug, slug.MaxLen)
	}
	return v.Err()
}
