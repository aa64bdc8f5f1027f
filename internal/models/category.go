// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"

	"sitebuilder/internal/slug"
)

// Category groups subcategories and articles under one or more pages.
// It is shown as a dropdown when hovering its pages in the navigation.
type Category struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Public      bool        `json:"public"`
	CreatedBy   *uuid.UUID  `json:"created_by,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	PageIDs     []uuid.UUID `json:"page_ids"`
}

// Validate checks name and description lengths.
func (c *Category) Validate() error {
	var v ValidationError
	v.required("name", c.Name, CategoryNameMax)
	v.required("description", c.Description, DescriptionMax)
	return v.Err()
}

// SubCategory belongs to exactly one category and lists the articles that
// reference it. Without articles it shows its own description and video.
type SubCategory struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	CategoryID   uuid.UUID  `json:"category_id"`
	Slug         string     `json:"slug"`
	Image        string     `json:"image"`
	UseThumbnail bool       `json:"use_thumbnail"`
	VideoURL     string     `json:"video_url"`
	VideoFile    string     `json:"video_file"`
	Public       bool       `json:"public"`
	CreatedBy    *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Validate checks lengths, the parent category and video exclusivity.
func (s *SubCategory) Validate() error {
	var v ValidationError
	v.required("name", s.Name, SubCategoryNameMax)
	v.maxLen("description", s.Description, DescriptionMax)
	if s.CategoryID == uuid.Nil {
		v.Add("category_id", MsgRequired)
	}
	validSlug(&v, s.Slug)
	v.videoURL("video_url", s.VideoURL)
	v.videoExclusive(s.VideoURL, s.VideoFile)
	return v.Err()
}

// Files returns the stored file references owned by the subcategory.
func (s *SubCategory) Files() []string {
	return nonEmpty(s.Image, s.VideoFile)
}

// NeedsThumbnail reports whether a frame should be grabbed from the
// uploaded video to fill the missing image.
func (s *SubCategory) NeedsThumbnail() bool {
	return s.UseThumbnail && s.VideoFile != "" && s.Image == ""
}

// Type relates pages with the articles shown on them.
type Type struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug"`
	Public    bool       `json:"public"`
	CreatedBy *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Validate checks the name and an optional supplied slug.
func (t *Type) Validate() error {
	var v ValidationError
	v.required("name", t.Name, TypeNameMax)
	validSlug(&v, t.Slug)
	return v.Err()
}

// Article is shown inside a category and subcategory. Its type decides on
// which pages it appears.
type Article struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	Image         string     `json:"image"`
	UseThumbnail  bool       `json:"use_thumbnail"`
	VideoURL      string     `json:"video_url"`
	VideoFile     string     `json:"video_file"`
	Public        bool       `json:"public"`
	CreatedBy     uuid.UUID  `json:"created_by"`
	CategoryID    *uuid.UUID `json:"category_id,omitempty"`
	SubCategoryID *uuid.UUID `json:"subcategory_id,omitempty"`
	TypeID        *uuid.UUID `json:"type_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Validate checks title, content, creator and video exclusivity.
func (a *Article) Validate() error {
	var v ValidationError
	v.required("title", a.Title, ArticleTitleMax)
	v.required("content", a.Content, ArticleContentMax)
	if a.CreatedBy == uuid.Nil {
		v.Add("created_by", MsgRequired)
	}
	v.videoURL("video_url", a.VideoURL)
	v.videoExclusive(a.VideoURL, a.VideoFile)
	return v.Err()
}

// Files returns the stored file references owned by the article.
func (a *Article) Files() []string {
	return nonEmpty(a.Image, a.VideoFile)
}

// NeedsThumbnail mirrors SubCategory.NeedsThumbnail.
func (a *Article) NeedsThumbnail() bool {
	return a.UseThumbnail && a.VideoFile != "" && a.Image == ""
}

func validSlug(v *ValidationError, s string) {
	if s == "" {
		return
	}
	if !slug.Valid(s) {
		v.Add("slug", MsgInvalidSlug)
	}
	v.maxLen("slug", s, slug.MaxLen)
}

func nonEmpty(refs ...string) []string {
	var out []string
	for _, r := range refs {
		if r != "" {
			out = append(out, r)
		}
	}
	return out
}
