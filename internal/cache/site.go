// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"sitebuilder/internal/events"
)

const (
	// siteKeyPrefix is the Valkey key prefix for cached public responses.
	siteKeyPrefix = "site:"

	// DefaultTTL is how long a public response stays cached.
	DefaultTTL = 5 * time.Minute
)

// Keys of the cached public responses.
const (
	NavKey      = "nav"
	HomeKey     = "home"
	ArticlesKey = "articles"
	LayoutKey   = "layout"
)

// PageKey returns the cache key for the public page with the given slug.
func PageKey(slug string) string {
	return "page:" + slug
}

// Site caches encoded public responses in Valkey. A nil *Site is a valid
// cache that never hits, so the site runs unchanged without Valkey.
type Site struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSite creates a response cache backed by the given Valkey client.
func NewSite(client *redis.Client, ttl time.Duration) *Site {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Site{client: client, ttl: ttl}
}

// Get returns the cached body for key.
func (c *Site) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	val, err := c.client.Get(ctx, siteKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("site cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("site cache hit", "key", key)
	return val, true
}

// Set stores body under key with the configured TTL.
func (c *Site) Set(ctx context.Context, key string, body []byte) {
	if c == nil {
		return
	}
	if err := c.client.Set(ctx, siteKeyPrefix+key, body, c.ttl).Err(); err != nil {
		slog.Warn("site cache set error", "key", key, "error", err)
	}
}

// InvalidateAll removes every cached response by scanning for the prefix.
// Any content change can alter the navigation, so nothing finer is kept.
func (c *Site) InvalidateAll(ctx context.Context) error {
	if c == nil {
		return nil
	}
	var cursor uint64
	var deleted int
	for {
		keys, next, err := c.client.Scan(ctx, cursor, siteKeyPrefix+"*", 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("site cache cleared", "deleted", deleted)
	}
	return nil
}

// InvalidatedBy lists the events after which cached responses are stale.
var InvalidatedBy = []string{
	events.PageSaved, events.PageDeleted,
	events.CategorySaved, events.CategoryDeleted,
	events.SubCategorySaved, events.SubCategoryDeleted,
	events.TypeSaved, events.TypeDeleted,
	events.ArticleSaved, events.ArticleDeleted,
	events.LayoutSaved, events.LayoutDeleted,
}

// Invalidate returns the event handler clearing the cache.
func (c *Site) Invalidate() events.Handler {
	return func(ctx context.Context, _ events.Event) error {
		return c.InvalidateAll(ctx)
	}
}

// Register subscribes the invalidation handler to every content event.
// It runs after the content handlers so a regenerated thumbnail is
// already persisted when the next request repopulates the cache.
func (c *Site) Register(bus *events.Bus) {
	bus.Subscribe("site-cache", c.Invalidate(), InvalidatedBy...)
}
