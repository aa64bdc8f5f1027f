package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"sitebuilder/internal/cache"
)

// testValkeyClient returns a client on the test environment's Valkey
// database 15, or nil when no server answers.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	opts := cache.Options{
		Host:     envOr("VALKEY_HOST", "localhost"),
		Port:     envOr("VALKEY_PORT", "6379"),
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	}
	client, err := cache.Connect(context.Background(), opts)
	if err != nil {
		return nil
	}

	t.Cleanup(func() {
		ctx := context.Background()
		keys, _ := client.Keys(ctx, keyPrefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})
	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// eachBackend runs fn against the memory backend and, when reachable,
// against Valkey.
func eachBackend(t *testing.T, fn func(t *testing.T, b Backend)) {
	t.Run("memory", func(t *testing.T) { fn(t, NewMemory()) })
	t.Run("valkey", func(t *testing.T) {
		client := testValkeyClient(t)
		if client == nil {
			t.Skip("skipping integration test: Valkey not reachable")
		}
		fn(t, NewValkey(client))
	})
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	t.Fatal("expected session cookie to be set")
	return nil
}

// withCookie returns a request carrying c.
func withCookie(c *http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if c != nil {
		req.AddCookie(c)
	}
	return req
}

// countingBackend records Get calls on top of a memory backend.
type countingBackend struct {
	*Memory
	gets int
}

func (c *countingBackend) Get(ctx context.Context, key string) ([]byte, error) {
	c.gets++
	return c.Memory.Get(ctx, key)
}

func TestSessionStartAndLoad(t *testing.T) {
	eachBackend(t, func(t *testing.T, b Backend) {
		store := NewStore(b, false)
		ctx := context.Background()
		w := httptest.NewRecorder()

		data := &Data{AccountID: uuid.New(), Username: "colaborador1"}
		id, err := store.Start(ctx, w, withCookie(nil), data)
		if err != nil {
			t.Fatalf("Start: %v", err)
		}
		if len(id) != idLen {
			t.Errorf("session ID length = %d, want %d", len(id), idLen)
		}

		cookie := sessionCookie(t, w)
		if !cookie.HttpOnly || cookie.Secure || cookie.SameSite != http.SameSiteLaxMode {
			t.Errorf("cookie attributes: HttpOnly %v Secure %v SameSite %v", cookie.HttpOnly, cookie.Secure, cookie.SameSite)
		}
		if cookie.MaxAge != int(DefaultTTL.Seconds()) {
			t.Errorf("MaxAge = %d", cookie.MaxAge)
		}

		got, err := store.Load(ctx, withCookie(cookie))
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if got == nil {
			t.Fatal("expected session data, got nil")
		}
		if got.AccountID != data.AccountID || got.Username != "colaborador1" {
			t.Errorf("Load() = %+v, want %+v", got, data)
		}
		if got.CreatedAt.IsZero() {
			t.Error("CreatedAt not set")
		}
	})
}

// TestSessionStartRotates verifies that logging in again from a browser
// that already holds a session invalidates the old ID.
func TestSessionStartRotates(t *testing.T) {
	eachBackend(t, func(t *testing.T, b Backend) {
		store := NewStore(b, false)
		ctx := context.Background()

		w1 := httptest.NewRecorder()
		if _, err := store.Start(ctx, w1, withCookie(nil), &Data{AccountID: uuid.New()}); err != nil {
			t.Fatalf("Start: %v", err)
		}
		first := sessionCookie(t, w1)

		w2 := httptest.NewRecorder()
		if _, err := store.Start(ctx, w2, withCookie(first), &Data{AccountID: uuid.New()}); err != nil {
			t.Fatalf("Start again: %v", err)
		}
		second := sessionCookie(t, w2)

		if first.Value == second.Value {
			t.Fatal("session ID was not rotated")
		}
		if got, _ := store.Load(ctx, withCookie(first)); got != nil {
			t.Error("old session still loads after rotation")
		}
		if got, _ := store.Load(ctx, withCookie(second)); got == nil {
			t.Error("new session does not load")
		}
	})
}

func TestSessionLoadWithoutSession(t *testing.T) {
	tests := []struct {
		name   string
		cookie *http.Cookie
		gets   int
	}{
		{"no cookie", nil, 0},
		{"malformed", &http.Cookie{Name: CookieName, Value: "nonexistent-session-id"}, 0},
		{"bad encoding", &http.Cookie{Name: CookieName, Value: strings.Repeat("*", idLen)}, 0},
		{"unknown id", &http.Cookie{Name: CookieName, Value: strings.Repeat("A", idLen)}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &countingBackend{Memory: NewMemory()}
			data, err := NewStore(b, false).Load(context.Background(), withCookie(tt.cookie))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if data != nil {
				t.Errorf("Load() = %+v, want nil", data)
			}
			if b.gets != tt.gets {
				t.Errorf("backend reads = %d, want %d", b.gets, tt.gets)
			}
		})
	}
}

func TestSessionEnd(t *testing.T) {
	eachBackend(t, func(t *testing.T, b Backend) {
		store := NewStore(b, false)
		ctx := context.Background()

		w := httptest.NewRecorder()
		if _, err := store.Start(ctx, w, withCookie(nil), &Data{AccountID: uuid.New(), Username: "dueno"}); err != nil {
			t.Fatalf("Start: %v", err)
		}
		req := withCookie(sessionCookie(t, w))

		w2 := httptest.NewRecorder()
		if err := store.End(ctx, w2, req); err != nil {
			t.Fatalf("End: %v", err)
		}
		if c := sessionCookie(t, w2); c.MaxAge != -1 || c.Value != "" {
			t.Errorf("cookie after End: MaxAge %d Value %q", c.MaxAge, c.Value)
		}
		if got, _ := store.Load(ctx, req); got != nil {
			t.Error("expected nil after End")
		}
	})
}

func TestSessionEndWithoutSession(t *testing.T) {
	store := NewStore(NewMemory(), false)
	w := httptest.NewRecorder()

	if err := store.End(context.Background(), w, withCookie(nil)); err != nil {
		t.Errorf("End (no cookie): %v", err)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("End without a session must not set cookies")
	}
}

func TestSessionSecureCookie(t *testing.T) {
	store := NewStore(NewMemory(), true)

	w := httptest.NewRecorder()
	if _, err := store.Start(context.Background(), w, withCookie(nil), &Data{AccountID: uuid.New()}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !sessionCookie(t, w).Secure {
		t.Error("expected Secure=true for secure store")
	}
}

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	if err := m.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, err := m.Get(ctx, "k"); err != nil || string(got) != "v" {
		t.Fatalf("Get() = %q, %v", got, err)
	}

	now = now.Add(time.Minute)
	if _, err := m.Get(ctx, "k"); err != ErrMissing {
		t.Errorf("Get() after TTL err = %v, want ErrMissing", err)
	}
}
