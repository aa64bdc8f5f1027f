// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"sitebuilder/internal/authz"
	"sitebuilder/internal/models"
	"sitebuilder/internal/session"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// IdentityKey is the context key for the authenticated identity.
	IdentityKey contextKey = "identity"
)

// IdentityLoader resolves the current account state for a session.
type IdentityLoader interface {
	LoadIdentity(ctx context.Context, accountID uuid.UUID) (*models.Identity, error)
}

// LoadIdentity reads the session cookie and stores the account's current
// identity in the request context. Flags and role are reloaded on every
// request, so a role change applies without signing in again. This
// middleware does NOT enforce authentication.
func LoadIdentity(store *session.Store, loader IdentityLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, err := store.Load(r.Context(), r)
			if err != nil {
				// Log but don't block; treat as anonymous.
				slog.Warn("session load failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if data == nil {
				next.ServeHTTP(w, r)
				return
			}

			id, err := loader.LoadIdentity(r.Context(), data.AccountID)
			if err != nil {
				slog.Error("identity load failed", "error", err, "account_id", data.AccountID)
				writeError(w, http.StatusInternalServerError, MsgInternalError)
				return
			}
			if id != nil {
				r = r.WithContext(WithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithIdentity returns ctx carrying id.
func WithIdentity(ctx context.Context, id *models.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}

// IdentityFromCtx extracts the identity from the request context.
// Returns nil if the request is anonymous.
func IdentityFromCtx(ctx context.Context) *models.Identity {
	id, _ := ctx.Value(IdentityKey).(*models.Identity)
	return id
}

// RequireRole admits superusers and identities holding one of the allowed
// roles. Must be applied after LoadIdentity in the middleware chain.
func RequireRole(allowed ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := authz.RequireRole(IdentityFromCtx(r.Context()), r.URL.RequestURI(), allowed...)
			if !d.Allowed {
				Deny(w, r, d)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSuperuser admits superusers only.
func RequireSuperuser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := authz.RequireSuperuser(IdentityFromCtx(r.Context()))
		if !d.Allowed {
			Deny(w, r, d)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Deny answers a refused request: the message is stored as a flash, the
// client is sent to the decision's redirect with 303 See Other, and the
// body repeats the decision as JSON.
func Deny(w http.ResponseWriter, r *http.Request, d authz.Decision) {
	if d.Message != "" {
		SetFlash(w, d.Message)
	}
	target := d.Redirect
	if target == "" {
		target = authz.HomePath
	}
	w.Header().Set("Location", target)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusSeeOther)
	if err := json.NewEncoder(w).Encode(d); err != nil {
		slog.Warn("deny encode failed", "error", err, "path", r.URL.Path)
	}
}
