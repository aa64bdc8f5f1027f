// Package events is the in-process signal boundary between the save and
// delete pipelines and their collaborators (thumbnails, media cleanup,
// cache invalidation). Handlers are registered explicitly and run in
// registration order after the owning transaction has committed.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
)

// Event names published by the content and authorization services.
const (
	PageSaved          = "page.saved"
	PageDeleted        = "page.deleted"
	CategorySaved      = "category.saved"
	CategoryDeleted    = "category.deleted"
	SubCategorySaved   = "subcategory.saved"
	SubCategoryDeleted = "subcategory.deleted"
	TypeSaved          = "type.saved"
	TypeDeleted        = "type.deleted"
	ArticleSaved       = "article.saved"
	ArticleDeleted     = "article.deleted"
	LayoutSaved        = "layout.saved"
	LayoutDeleted      = "layout.deleted"
	RoleChanged        = "profile.role_changed"
	AccountCreated     = "account.created"
)

// Event describes a committed change.
type Event struct {
	Name string
	ID   uuid.UUID
	// Entity is the saved or deleted value, e.g. *models.Article.
	Entity any
	// Created is true when a save inserted the row.
	Created bool
	// Stale lists stored files that the change orphaned.
	Stale []string
}

// Handler reacts to an event. Returned errors are logged; they never
// undo the committed change.
type Handler func(ctx context.Context, e Event) error

type subscription struct {
	name    string
	names   map[string]bool
	handler Handler
}

// Bus dispatches events synchronously to subscribed handlers.
type Bus struct {
	mu   sync.RWMutex
	subs []subscription
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers h under a descriptive name for the given event
// names. With no event names the handler receives every event.
func (b *Bus) Subscribe(name string, h Handler, eventNames ...string) {
	var names map[string]bool
	if len(eventNames) > 0 {
		names = make(map[string]bool, len(eventNames))
		for _, n := range eventNames {
			names[n] = true
		}
	}
	b.mu.Lock()
	b.subs = append(b.subs, subscription{name: name, names: names, handler: h})
	b.mu.Unlock()
}

// Handlers returns the handler names subscribed to eventName, in the order
// they run.
func (b *Bus) Handlers(eventName string) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []string
	for _, s := range b.subs {
		if s.names == nil || s.names[eventName] {
			out = append(out, s.name)
		}
	}
	return out
}

// Publish runs every matching handler in registration order. A failing or
// panicking handler is logged and does not stop the ones after it. A nil
// Bus drops the event.
func (b *Bus) Publish(ctx context.Context, e Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		if s.names != nil && !s.names[e.Name] {
			continue
		}
		if err := run(ctx, s, e); err != nil {
			slog.Warn("event handler failed",
				"event", e.Name, "handler", s.name, "id", e.ID, "error", err)
		}
	}
}

func run(ctx context.Context, s subscription, e Event) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("event handler panic",
				"event", e.Name, "handler", s.name, "panic", rec, "stack", string(debug.Stack()))
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return s.handler(ctx, e)
}
