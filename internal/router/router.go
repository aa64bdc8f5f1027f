// Package router sets up all HTTP routes and middleware chains for the
// site. It organizes routes into public, account, maintenance and admin
// groups with the middleware each needs.
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"sitebuilder/internal/authz"
	"sitebuilder/internal/handlers"
	"sitebuilder/internal/middleware"
	"sitebuilder/internal/session"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps are the collaborators the routes are wired to.
type Deps struct {
	DB          Pinger
	Sessions    *session.Store
	Identities  middleware.IdentityLoader
	Public      *handlers.Public
	Auth        *handlers.Auth
	Maintenance *handlers.Maintenance
	Admin       *handlers.Admin
	// AuthLimiter throttles login and registration. Nil disables it.
	AuthLimiter *middleware.RateLimiter
	// SecureCookies marks CSRF cookies TLS-only and enables HSTS.
	SecureCookies bool
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders(d.SecureCookies))
	r.Use(middleware.MediaRanges)

	// Health check: no session, no CSRF.
	r.Get("/health", healthHandler(d.DB))

	// Stored files.
	r.Get(middleware.MediaPrefix+"*", d.Public.Media)

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewCSRF(d.SecureCookies))
		r.Use(middleware.LoadIdentity(d.Sessions, d.Identities))

		// Public site.
		r.Get("/", d.Public.Home)
		r.Get("/p/{slug}", d.Public.Page)
		r.Get("/nav", d.Public.Nav)
		r.Get("/articles", d.Public.Articles)
		r.Get("/layout", d.Public.Layout)
		r.Get("/messages", d.Public.Messages)

		// Accounts.
		r.Group(func(r chi.Router) {
			if d.AuthLimiter != nil {
				r.Use(d.AuthLimiter.Middleware)
			}
			r.Post("/register", d.Auth.Register)
			r.Post("/login", d.Auth.Login)
		})
		r.Post("/logout", d.Auth.Logout)
		r.Get("/me", d.Auth.Me)

		// Content maintenance for Usuario and Staff.
		r.Route("/maintenance", func(r chi.Router) {
			r.Use(middleware.RequireRole(authz.MaintenanceRoles...))

			r.Get("/", d.Maintenance.Index)
			r.Get("/layout", d.Maintenance.Layout)
			r.Put("/layout", d.Maintenance.SaveLayout)

			r.Route("/{entity}", func(r chi.Router) {
				r.Get("/", d.Maintenance.List)
				r.Post("/", d.Maintenance.Create)
				r.Post("/delete", d.Maintenance.DeleteMany)
				r.Get("/{id}", d.Maintenance.Get)
				r.Put("/{id}", d.Maintenance.Update)
				r.Delete("/{id}", d.Maintenance.Delete)
			})
		})

		// Admin area, superusers only.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireSuperuser)

			r.Route("/accounts", func(r chi.Router) {
				r.Get("/", d.Admin.Accounts)
				r.Put("/{id}/role", d.Admin.SetRole)
				r.Put("/{id}/flags", d.Admin.SetFlags)
			})
			r.Route("/roles", func(r chi.Router) {
				r.Get("/", d.Admin.Roles)
				r.Post("/", d.Admin.CreateRole)
				r.Put("/{id}", d.Admin.UpdateRole)
				r.Delete("/{id}", d.Admin.DeleteRole)
			})
		})
	})

	return r
}

// healthHandler reports {"status":"ok"}, or 503 when the database does
// not answer a ping.
func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}
}
