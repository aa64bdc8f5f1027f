// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage stores uploaded media (images, videos, logos, generated
// thumbnails) under slash-separated keys such as "videos/clip.mp4". Two
// backends exist: an S3-compatible bucket and a local directory.
package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
)

// ErrNotExist is returned by Open when the key has no object.
var ErrNotExist = errors.New("storage: object does not exist")

// Storage is the set of operations the site needs from a media backend.
// Delete must succeed when the object is already gone.
type Storage interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Discard deletes every non-empty key, logging and swallowing failures.
// A nil Storage discards nothing.
func Discard(ctx context.Context, s Storage, keys ...string) {
	if s == nil {
		return
	}
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.Delete(ctx, key); err != nil {
			slog.Warn("media cleanup failed", "key", key, "error", err)
			continue
		}
		slog.Debug("media deleted", "key", key)
	}
}
