package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"sitebuilder/internal/authz"
	"sitebuilder/internal/models"
	"sitebuilder/internal/session"
)

// newTestIdentity returns an identity holding role.
func newTestIdentity(role string, superuser bool) *models.Identity {
	return &models.Identity{
		Account: models.Account{
			ID:          uuid.New(),
			Username:    "colaborador1",
			IsActive:    true,
			IsSuperuser: superuser,
			IsStaff:     superuser || role == models.RoleStaff,
		},
		RoleName: role,
	}
}

// okHandler is a simple handler that records whether it was invoked.
func okHandler() (http.Handler, *bool) {
	var called bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	return h, &called
}

// fakeLoader serves identities from a map, simulating authz.Engine.
type fakeLoader struct {
	identities map[uuid.UUID]*models.Identity
	err        error
	calls      int
}

func (f *fakeLoader) LoadIdentity(_ context.Context, id uuid.UUID) (*models.Identity, error) {
	f.calls++
	return f.identities[id], f.err
}

// loggedIn creates a session for accountID and returns a request
// carrying its cookie.
func loggedIn(t *testing.T, store *session.Store, accountID uuid.UUID) *http.Request {
	t.Helper()
	w := httptest.NewRecorder()
	if _, err := store.Start(context.Background(), w, httptest.NewRequest(http.MethodPost, "/login", nil), &session.Data{AccountID: accountID}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/maintenance/", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

// ---------- IdentityFromCtx ----------

func TestIdentityFromCtx(t *testing.T) {
	t.Run("returns identity when present", func(t *testing.T) {
		id := newTestIdentity(models.RoleUsuario, false)
		if got := IdentityFromCtx(WithIdentity(context.Background(), id)); got != id {
			t.Errorf("got %+v, want %+v", got, id)
		}
	})

	t.Run("returns nil when not present", func(t *testing.T) {
		if got := IdentityFromCtx(context.Background()); got != nil {
			t.Errorf("expected nil identity, got %+v", got)
		}
	})

	t.Run("returns nil for wrong type in context", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), IdentityKey, "not-an-identity")
		if got := IdentityFromCtx(ctx); got != nil {
			t.Errorf("expected nil for wrong type, got %+v", got)
		}
	})
}

// ---------- LoadIdentity ----------

func TestLoadIdentity(t *testing.T) {
	store := session.NewStore(session.NewMemory(), false)
	id := newTestIdentity(models.RoleUsuario, false)
	loader := &fakeLoader{identities: map[uuid.UUID]*models.Identity{id.Account.ID: id}}

	var got *models.Identity
	handler := LoadIdentity(store, loader)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = IdentityFromCtx(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("anonymous request proceeds without identity", func(t *testing.T) {
		got = nil
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		if rr.Code != http.StatusOK || got != nil {
			t.Errorf("status %d identity %+v, want 200 and nil", rr.Code, got)
		}
		if loader.calls != 0 {
			t.Errorf("loader called %d times without a session", loader.calls)
		}
	})

	t.Run("session loads the current identity", func(t *testing.T) {
		got = nil
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, loggedIn(t, store, id.Account.ID))
		if got != id {
			t.Fatalf("identity = %+v, want %+v", got, id)
		}
	})

	t.Run("role change applies on the next request", func(t *testing.T) {
		req := loggedIn(t, store, id.Account.ID)
		handler.ServeHTTP(httptest.NewRecorder(), req)

		promoted := newTestIdentity(models.RoleStaff, false)
		promoted.Account.ID = id.Account.ID
		loader.identities[id.Account.ID] = promoted
		defer func() { loader.identities[id.Account.ID] = id }()

		handler.ServeHTTP(httptest.NewRecorder(), req)
		if got == nil || got.RoleName != models.RoleStaff {
			t.Errorf("identity = %+v, want role %q", got, models.RoleStaff)
		}
	})

	t.Run("deleted or inactive account is anonymous", func(t *testing.T) {
		got = nil
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, loggedIn(t, store, uuid.New()))
		if rr.Code != http.StatusOK || got != nil {
			t.Errorf("status %d identity %+v, want 200 and nil", rr.Code, got)
		}
	})

	t.Run("loader failure is a server error", func(t *testing.T) {
		failing := &fakeLoader{err: errors.New("db down")}
		inner, called := okHandler()
		rr := httptest.NewRecorder()
		LoadIdentity(store, failing)(inner).ServeHTTP(rr, loggedIn(t, store, id.Account.ID))
		if *called {
			t.Error("next handler should NOT have been called")
		}
		if rr.Code != http.StatusInternalServerError {
			t.Errorf("status: got %d, want 500", rr.Code)
		}
	})
}

// ---------- RequireRole ----------

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name           string
		identity       *models.Identity
		wantCode       int
		wantLocation   string
		wantOutcome    authz.Outcome
		wantNextCalled bool
	}{
		{
			name:         "anonymous goes to login with next",
			wantCode:     http.StatusSeeOther,
			wantLocation: "/login?next=%2Fmaintenance%2Fpage%3Fq%3Dno",
			wantOutcome:  authz.OutcomeUnauthenticated,
		},
		{
			name:         "account without role is pending",
			identity:     newTestIdentity("", false),
			wantCode:     http.StatusSeeOther,
			wantLocation: "/",
			wantOutcome:  authz.OutcomePending,
		},
		{
			name:         "ingresante is forbidden",
			identity:     newTestIdentity(models.RoleIngresante, false),
			wantCode:     http.StatusSeeOther,
			wantLocation: "/",
			wantOutcome:  authz.OutcomeForbidden,
		},
		{
			name:           "usuario passes",
			identity:       newTestIdentity(models.RoleUsuario, false),
			wantCode:       http.StatusOK,
			wantNextCalled: true,
		},
		{
			name:           "superuser passes without role",
			identity:       newTestIdentity("", true),
			wantCode:       http.StatusOK,
			wantNextCalled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner, called := okHandler()
			handler := RequireRole(models.RoleUsuario, models.RoleStaff)(inner)

			req := httptest.NewRequest(http.MethodGet, "/maintenance/page?q=no", nil)
			if tt.identity != nil {
				req = req.WithContext(WithIdentity(req.Context(), tt.identity))
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if *called != tt.wantNextCalled {
				t.Errorf("next handler called: got %v, want %v", *called, tt.wantNextCalled)
			}
			if rr.Code != tt.wantCode {
				t.Errorf("status: got %d, want %d", rr.Code, tt.wantCode)
			}
			if tt.wantNextCalled {
				return
			}
			if loc := rr.Header().Get("Location"); loc != tt.wantLocation {
				t.Errorf("redirect location: got %q, want %q", loc, tt.wantLocation)
			}
			var d authz.Decision
			if err := json.NewDecoder(rr.Body).Decode(&d); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if d.Outcome != tt.wantOutcome || d.Message == "" {
				t.Errorf("body = %+v, want outcome %q with a message", d, tt.wantOutcome)
			}
			if !hasCookie(rr, FlashCookie) {
				t.Error("expected a flash cookie on denial")
			}
		})
	}
}

// ---------- RequireSuperuser ----------

func TestRequireSuperuser(t *testing.T) {
	tests := []struct {
		name           string
		identity       *models.Identity
		wantNextCalled bool
	}{
		{name: "anonymous", identity: nil},
		{name: "staff role is not enough", identity: newTestIdentity(models.RoleStaff, false)},
		{name: "superuser", identity: newTestIdentity(models.RoleStaff, true), wantNextCalled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner, called := okHandler()
			req := httptest.NewRequest(http.MethodGet, "/admin/accounts", nil)
			if tt.identity != nil {
				req = req.WithContext(WithIdentity(req.Context(), tt.identity))
			}
			rr := httptest.NewRecorder()
			RequireSuperuser(inner).ServeHTTP(rr, req)

			if *called != tt.wantNextCalled {
				t.Errorf("next handler called: got %v, want %v", *called, tt.wantNextCalled)
			}
			if !tt.wantNextCalled {
				if rr.Code != http.StatusSeeOther {
					t.Errorf("status: got %d, want 303", rr.Code)
				}
				if loc := rr.Header().Get("Location"); loc != authz.LoginPath {
					t.Errorf("redirect location: got %q, want %q", loc, authz.LoginPath)
				}
			}
		})
	}
}

func hasCookie(rr *httptest.ResponseRecorder, name string) bool {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return true
		}
	}
	return false
}
