package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestDir_PutOpenDelete(t *testing.T) {
	ctx := context.Background()
	d, err := NewDir(t.TempDir(), "/media/")
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}

	if err := d.Put(ctx, "videos/clip.mp4", "video/mp4", strings.NewReader("data"), 4); err != nil {
		t.Fatalf("Put: %v", err)
	}
	rc, err := d.Open(ctx, "videos/clip.mp4")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, _ := io.ReadAll(rc)
	rc.Close()
	if string(got) != "data" {
		t.Errorf("content = %q, want %q", got, "data")
	}

	if err := d.Delete(ctx, "videos/clip.mp4"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := d.Delete(ctx, "videos/clip.mp4"); err != nil {
		t.Errorf("Delete of missing file = %v, want nil", err)
	}
	if _, err := d.Open(ctx, "videos/clip.mp4"); !errors.Is(err, ErrNotExist) {
		t.Errorf("Open after delete error = %v, want ErrNotExist", err)
	}
	if u := d.URL("videos/clip.mp4"); u != "/media/videos/clip.mp4" {
		t.Errorf("URL = %q", u)
	}
}

func TestDir_KeysStayInsideRoot(t *testing.T) {
	d, err := NewDir(t.TempDir(), "/media")
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	p, err := d.path("../../etc/passwd")
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if !strings.HasPrefix(p, d.Root()) {
		t.Errorf("path %q escaped root %q", p, d.Root())
	}
	for _, key := range []string{"", "/", `a\b`} {
		if _, err := d.path(key); err == nil {
			t.Errorf("path(%q) should be rejected", key)
		}
	}
}

// failingStorage fails every delete to exercise Discard's error handling.
type failingStorage struct {
	Dir
	attempts []string
}

func (f *failingStorage) Delete(_ context.Context, key string) error {
	f.attempts = append(f.attempts, key)
	return errors.New("backend down")
}

func TestDiscard_BestEffort(t *testing.T) {
	f := &failingStorage{}
	Discard(context.Background(), f, "images/a.jpg", "", "videos/b.mp4")
	if len(f.attempts) != 2 {
		t.Errorf("attempts = %v, want both non-empty keys tried", f.attempts)
	}
	Discard(context.Background(), nil, "images/a.jpg")
}

func TestNewS3_Unconfigured(t *testing.T) {
	c, err := NewS3("", "us-east-1", "", "", "media", "")
	if err != nil || c != nil {
		t.Errorf("NewS3 without endpoint = %v, %v; want nil, nil", c, err)
	}
	if _, err := NewS3("http://localhost:9000", "us-east-1", "k", "s", "", ""); err == nil {
		t.Error("NewS3 without bucket should fail")
	}
}

func TestS3_URL(t *testing.T) {
	c, err := NewS3("http://localhost:9000/", "us-east-1", "k", "s", "media", "")
	if err != nil {
		t.Fatalf("NewS3: %v", err)
	}
	if got := c.URL("images/a.jpg"); got != "http://localhost:9000/media/images/a.jpg" {
		t.Errorf("URL = %q", got)
	}
	c, _ = NewS3("http://localhost:9000", "us-east-1", "k", "s", "media", "https://cdn.example.com/")
	if got := c.URL("images/a.jpg"); got != "https://cdn.example.com/images/a.jpg" {
		t.Errorf("URL with public URL = %q", got)
	}
}
