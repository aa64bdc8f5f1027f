// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Layout is the single site-wide configuration row.
type Layout struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Logo      string    `json:"logo"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the title length.
func (l *Layout) Validate() error {
	var v ValidationError
	v.required("title", l.Title, LayoutTitleMax)
	return v.Err()
}
