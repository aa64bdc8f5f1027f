// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"slices"
	"time"

	"github.com/google/uuid"

	"sitebuilder/internal/events"
	"sitebuilder/internal/imaging"
	"sitebuilder/internal/models"
	"sitebuilder/internal/storage"
	"sitebuilder/internal/store"
)

// FrameGrabber extracts one JPEG frame from a local video file.
type FrameGrabber interface {
	Frame(ctx context.Context, path string, offset time.Duration) ([]byte, error)
}

// ThumbnailKey is where the generated thumbnail of an entity is stored.
func ThumbnailKey(id uuid.UUID) string {
	return fmt.Sprintf("thumbnails/%s_thumb.jpg", id)
}

// Thumbnails fills in the image of subcategories and articles that ask for
// a thumbnail, have an uploaded video and no image yet.
type Thumbnails struct {
	db      *sql.DB
	media   storage.Storage
	grabber FrameGrabber
}

// NewThumbnails returns the thumbnail handler.
func NewThumbnails(db *sql.DB, media storage.Storage, grabber FrameGrabber) *Thumbnails {
	return &Thumbnails{db: db, media: media, grabber: grabber}
}

// Handle reacts to article.saved and subcategory.saved. Failures are
// returned for logging; the save has already committed.
func (t *Thumbnails) Handle(ctx context.Context, e events.Event) error {
	var video string
	var setImage func(context.Context, uuid.UUID, string) error
	switch v := e.Entity.(type) {
	case *models.Article:
		if !v.NeedsThumbnail() {
			return nil
		}
		video, setImage = v.VideoFile, store.NewArticleStore(t.db).SetImage
	case *models.SubCategory:
		if !v.NeedsThumbnail() {
			return nil
		}
		video, setImage = v.VideoFile, store.NewSubCategoryStore(t.db).SetImage
	default:
		return nil
	}

	frame, err := t.grab(ctx, video)
	if err != nil {
		return err
	}
	key := ThumbnailKey(e.ID)
	if err := t.media.Put(ctx, key, "image/jpeg", bytes.NewReader(frame), int64(len(frame))); err != nil {
		return fmt.Errorf("store thumbnail: %w", err)
	}
	if err := setImage(ctx, e.ID, key); err != nil {
		return err
	}

	switch v := e.Entity.(type) {
	case *models.Article:
		v.Image = key
	case *models.SubCategory:
		v.Image = key
	}
	slog.Info("thumbnail generated", "event", e.Name, "id", e.ID, "key", key)
	return nil
}

// grab copies the stored video to a temp file and extracts the frame.
func (t *Thumbnails) grab(ctx context.Context, key string) ([]byte, error) {
	src, err := t.media.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("open video: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "video-*"+path.Ext(key))
	if err != nil {
		return nil, fmt.Errorf("create temp video: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := io.Copy(tmp, src); err != nil {
		return nil, fmt.Errorf("copy video: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp video: %w", err)
	}
	return t.grabber.Frame(ctx, tmp.Name(), imaging.ThumbnailOffset)
}

// fileOwner is implemented by entities that reference stored files.
type fileOwner interface {
	Files() []string
}

// MediaCleanup deletes the stale files an event reports. After a save it
// keeps those the entity references again by the time it runs, such as a
// regenerated thumbnail. Deletion is best effort and never fails the handler chain.
func MediaCleanup(media storage.Storage) events.Handler {
	return func(ctx context.Context, e events.Event) error {
		stale := e.Stale
		owner, ok := e.Entity.(fileOwner)
		if ok && len(stale) > 0 && (e.Name == events.ArticleSaved || e.Name == events.SubCategorySaved) {
			stale = withoutKeys(stale, owner.Files())
		}
		storage.Discard(ctx, media, stale...)
		return nil
	}
}

func withoutKeys(keys, keep []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if !slices.Contains(keep, k) {
			out = append(out, k)
		}
	}
	return out
}

// Register subscribes the content handlers in the order they must run:
// thumbnails first, so a generated image is in place before cleanup.
func Register(bus *events.Bus, thumbs *Thumbnails, media storage.Storage) {
	if thumbs != nil {
		bus.Subscribe("thumbnails", thumbs.Handle, events.ArticleSaved, events.SubCategorySaved)
	}
	bus.Subscribe("media-cleanup", MediaCleanup(media))
}
