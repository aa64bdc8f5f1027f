// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"strings"
)

// Header values set by SecureHeaders.
const (
	// Responses are JSON or stored media; nothing needs to run.
	apiCSP = "default-src 'none'; frame-ancestors 'none'"
	// Media may be embedded by the site's own pages.
	mediaCSP = "default-src 'none'; img-src 'self'; media-src 'self'; frame-ancestors 'self'"
	hsts     = "max-age=31536000; includeSubDomains"
)

// SecureHeaders returns middleware adding security headers to every
// response. API responses may not be framed at all; stored media may be
// framed by the same origin. tls adds Strict-Transport-Security.
func SecureHeaders(tls bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			h.Set("Cross-Origin-Resource-Policy", "same-origin")

			if strings.HasPrefix(r.URL.Path, MediaPrefix) {
				h.Set("X-Frame-Options", "SAMEORIGIN")
				h.Set("Content-Security-Policy", mediaCSP)
			} else {
				h.Set("X-Frame-Options", "DENY")
				h.Set("Content-Security-Policy", apiCSP)
				// Responses depend on the session.
				h.Set("Cache-Control", "no-store")
			}
			if tls {
				h.Set("Strict-Transport-Security", hsts)
			}

			next.ServeHTTP(w, r)
		})
	}
}
