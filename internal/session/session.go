// Package session provides cookie-identified HTTP sessions stored as JSON
// with automatic TTL expiry, in Valkey or, for single-node installs and
// tests, in process memory.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	// CookieName is the name of the session cookie sent to the browser.
	CookieName = "sb_session"

	// DefaultTTL is how long a session lives before automatic expiry.
	DefaultTTL = 24 * time.Hour

	keyPrefix = "session:"

	// idBytes is the entropy of a session ID.
	idBytes = 32
)

// idLen is the encoded length of a session ID. Cookies of any other length
// are ignored without a backend round trip.
var idLen = base64.RawURLEncoding.EncodedLen(idBytes)

// ErrMissing is returned by a Backend when the key does not exist.
var ErrMissing = errors.New("session: key does not exist")

// Backend stores session payloads with a TTL.
type Backend interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Del(ctx context.Context, key string) error
}

// Data holds the session payload. Only the account reference is kept;
// flags and role are reloaded on every request so changes apply at once.
type Data struct {
	AccountID uuid.UUID `json:"account_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Store manages the session lifecycle.
type Store struct {
	backend Backend
	ttl     time.Duration
	secure  bool
}

// NewStore creates a session store on backend. secure marks the cookie
// for TLS-only transport.
func NewStore(backend Backend, secure bool) *Store {
	return &Store{backend: backend, ttl: DefaultTTL, secure: secure}
}

// Start opens a session for data and sets its cookie. A session already
// referenced by r is discarded first, so a login always gets a fresh ID.
func (s *Store) Start(ctx context.Context, w http.ResponseWriter, r *http.Request, data *Data) (string, error) {
	if old, ok := cookieID(r); ok {
		if err := s.backend.Del(ctx, keyPrefix+old); err != nil {
			return "", fmt.Errorf("session rotate: %w", err)
		}
	}

	id, err := newID()
	if err != nil {
		return "", fmt.Errorf("session id: %w", err)
	}
	data.CreatedAt = time.Now().UTC()

	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("session marshal: %w", err)
	}
	if err := s.backend.Set(ctx, keyPrefix+id, payload, s.ttl); err != nil {
		return "", fmt.Errorf("session store: %w", err)
	}

	http.SetCookie(w, s.cookie(id, int(s.ttl.Seconds())))
	return id, nil
}

// Load returns the session referenced by the request cookie, or nil when
// there is none or it expired.
func (s *Store) Load(ctx context.Context, r *http.Request) (*Data, error) {
	id, ok := cookieID(r)
	if !ok {
		return nil, nil
	}

	payload, err := s.backend.Get(ctx, keyPrefix+id)
	if errors.Is(err, ErrMissing) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}

	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("session unmarshal: %w", err)
	}
	return &data, nil
}

// End removes the session and expires its cookie. Requests without a
// session are left alone.
func (s *Store) End(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id, ok := cookieID(r)
	if !ok {
		return nil
	}
	if err := s.backend.Del(ctx, keyPrefix+id); err != nil {
		return fmt.Errorf("session destroy: %w", err)
	}
	http.SetCookie(w, s.cookie("", -1))
	return nil
}

func (s *Store) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
}

// cookieID returns a well-formed session ID from the request cookie.
func cookieID(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || len(c.Value) != idLen {
		return "", false
	}
	if _, err := base64.RawURLEncoding.DecodeString(c.Value); err != nil {
		return "", false
	}
	return c.Value, true
}

func newID() (string, error) {
	b := make([]byte, idBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
