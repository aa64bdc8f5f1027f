package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"sitebuilder/internal/models"
)

// LayoutStore manages the single layout row.
type LayoutStore struct {
	db DBTX
}

// NewLayoutStore returns a new LayoutStore.
func NewLayoutStore(db DBTX) *LayoutStore {
	return &LayoutStore{db: db}
}

// Get returns the layout row. Returns nil if it has not been created yet.
func (s *LayoutStore) Get(ctx context.Context) (*models.Layout, error) {
	var l models.Layout
	err := s.db.QueryRowContext(ctx, `SELECT id, title, logo, updated_at FROM layout WHERE singleton = 1`).
		Scan(&l.ID, &l.Title, &l.Logo, &l.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get layout: %w", err)
	}
	return &l, nil
}

// Insert creates the layout row. A second insert violates the singleton
// constraint.
func (s *LayoutStore) Insert(ctx context.Context, l *models.Layout) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	l.UpdatedAt = now()
	_, err := s.db.ExecContext(ctx, `INSERT INTO layout (id, title, logo, updated_at) VALUES ($1, $2, $3, $4)`,
		l.ID, l.Title, l.Logo, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert layout: %w", err)
	}
	return nil
}

// Update writes the title and logo.
func (s *LayoutStore) Update(ctx context.Context, l *models.Layout) error {
	l.UpdatedAt = now()
	res, err := s.db.ExecContext(ctx, `UPDATE layout SET title = $1, logo = $2, updated_at = $3 WHERE id = $4`,
		l.Title, l.Logo, l.UpdatedAt, l.ID)
	if err != nil {
		return fmt.Errorf("update layout: %w", err)
	}
	return mustAffect(res, "update layout")
}

// Delete removes the layout row. The next Get through the content service
// recreates it with defaults.
func (s *LayoutStore) Delete(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM layout`); err != nil {
		return fmt.Errorf("delete layout: %w", err)
	}
	return nil
}
