package content

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"sitebuilder/internal/events"
	"sitebuilder/internal/imaging"
	"sitebuilder/internal/models"
	"sitebuilder/internal/storage"
	"sitebuilder/internal/store"
)

// fakeGrabber returns a fixed frame and records the video it was given.
type fakeGrabber struct {
	frame  []byte
	err    error
	video  string
	offset time.Duration
	calls  int
}

func (g *fakeGrabber) Frame(_ context.Context, path string, offset time.Duration) ([]byte, error) {
	g.calls++
	g.offset = offset
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	g.video = string(data)
	return g.frame, g.err
}

func newMediaDir(t *testing.T) *storage.Dir {
	t.Helper()
	dir, err := storage.NewDir(t.TempDir(), "/media")
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	if err := dir.Put(context.Background(), "videos/clip.mp4", "video/mp4", strings.NewReader("movie"), 5); err != nil {
		t.Fatalf("put video: %v", err)
	}
	return dir
}

func readObject(t *testing.T, s storage.Storage, key string) string {
	t.Helper()
	rc, err := s.Open(context.Background(), key)
	if err != nil {
		t.Fatalf("open %s: %v", key, err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	return string(data)
}

func TestThumbnails_Article(t *testing.T) {
	svc, db, bus := newService(t)
	ctx := context.Background()
	media := newMediaDir(t)
	grabber := &fakeGrabber{frame: []byte("jpeg")}
	Register(bus, NewThumbnails(db, media, grabber), media)

	a := &models.Article{Title: "Clip", Content: "<p>x</p>", CreatedBy: newAuthor(t, svc, "ana"), UseThumbnail: true, VideoFile: "videos/clip.mp4"}
	if err := svc.SaveArticle(ctx, a); err != nil {
		t.Fatalf("SaveArticle: %v", err)
	}

	key := ThumbnailKey(a.ID)
	if a.Image != key {
		t.Errorf("a.Image = %q, want %q", a.Image, key)
	}
	if grabber.video != "movie" || grabber.offset != imaging.ThumbnailOffset {
		t.Errorf("grabber got video %q at %v", grabber.video, grabber.offset)
	}
	got, _ := store.NewArticleStore(db).FindByID(ctx, a.ID)
	if got == nil || got.Image != key {
		t.Errorf("stored image = %v, want %q", got, key)
	}
	if readObject(t, media, key) != "jpeg" {
		t.Error("thumbnail content mismatch")
	}

	// With an image in place, another save does not grab again.
	if err := svc.SaveArticle(ctx, a); err != nil {
		t.Fatalf("re-save: %v", err)
	}
	if grabber.calls != 1 {
		t.Errorf("grabber calls = %d, want 1", grabber.calls)
	}
}

// TestThumbnails_RegeneratedNotDeleted clears a generated thumbnail. The
// old key is stale, but the handler writes it again before cleanup runs.
func TestThumbnails_RegeneratedNotDeleted(t *testing.T) {
	svc, db, bus := newService(t)
	ctx := context.Background()
	media := newMediaDir(t)
	grabber := &fakeGrabber{frame: []byte("jpeg")}
	Register(bus, NewThumbnails(db, media, grabber), media)

	cat := mustSaveCategory(t, svc, "Videos")
	s := &models.SubCategory{Name: "Clips", CategoryID: cat.ID, UseThumbnail: true, VideoFile: "videos/clip.mp4"}
	if err := svc.SaveSubCategory(ctx, s); err != nil {
		t.Fatalf("create: %v", err)
	}
	key := ThumbnailKey(s.ID)

	s.Image = ""
	if err := svc.SaveSubCategory(ctx, s); err != nil {
		t.Fatalf("clear image: %v", err)
	}
	if s.Image != key || grabber.calls != 2 {
		t.Errorf("image = %q after %d grabs", s.Image, grabber.calls)
	}
	if readObject(t, media, key) != "jpeg" {
		t.Error("regenerated thumbnail was deleted")
	}
}

func TestThumbnails_FailureKeepsSave(t *testing.T) {
	svc, db, bus := newService(t)
	ctx := context.Background()
	media := newMediaDir(t)
	Register(bus, NewThumbnails(db, media, &fakeGrabber{err: imaging.ErrNoFrame}), media)

	a := &models.Article{Title: "Roto", Content: "<p>x</p>", CreatedBy: newAuthor(t, svc, "ana"), UseThumbnail: true, VideoFile: "videos/clip.mp4"}
	if err := svc.SaveArticle(ctx, a); err != nil {
		t.Fatalf("SaveArticle: %v", err)
	}
	if a.Image != "" {
		t.Errorf("image = %q, want empty", a.Image)
	}
	if _, err := media.Open(ctx, ThumbnailKey(a.ID)); !errors.Is(err, storage.ErrNotExist) {
		t.Errorf("thumbnail exists after failure: %v", err)
	}
}

func TestThumbnails_IgnoresOtherEntities(t *testing.T) {
	grabber := &fakeGrabber{}
	th := NewThumbnails(nil, nil, grabber)
	for _, e := range []any{&models.Page{}, &models.Article{VideoFile: "v.mp4"}, &models.SubCategory{UseThumbnail: true}} {
		if err := th.Handle(context.Background(), events.Event{Name: events.ArticleSaved, Entity: e}); err != nil {
			t.Errorf("Handle(%T) = %v", e, err)
		}
	}
	if grabber.calls != 0 {
		t.Errorf("grabber called %d times", grabber.calls)
	}
}
