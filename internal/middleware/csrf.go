package middleware

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"mime"
	"net/http"
)

const (
	// CSRFCookieName is the cookie that holds the CSRF token.
	CSRFCookieName = "sb_csrf"

	// CSRFHeaderName is the header clients echo the token in.
	CSRFHeaderName = "X-CSRF-Token"

	// CSRFFormField is accepted only on form posts, never on JSON bodies.
	CSRFFormField = "csrf_token"

	// MsgCSRFMismatch is the body of rejected writes.
	MsgCSRFMismatch = "La sesión de seguridad expiró. Recarga la página e inténtalo de nuevo."
)

// csrfTokenBytes is the entropy of an issued token.
const csrfTokenBytes = 32

const csrfTokenKey contextKey = "csrf_token"

// NewCSRF protects writes with a double-submit cookie. Every response
// carries a token cookie readable by scripts; POST, PUT, PATCH and DELETE
// must echo it. secure restricts the cookie to TLS.
func NewCSRF(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := ensureCSRFCookie(w, r, secure)
			if err != nil {
				writeError(w, http.StatusInternalServerError, MsgInternalError)
				return
			}
			r = r.WithContext(context.WithValue(r.Context(), csrfTokenKey, token))

			if !isSafeMethod(r.Method) && !csrfMatches(token, submittedCSRF(r)) {
				writeError(w, http.StatusForbidden, MsgCSRFMismatch)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CSRFTokenFromCtx returns the token issued or accepted for the request,
// so a handler can hand it to a client that has not read the cookie yet.
func CSRFTokenFromCtx(ctx context.Context) string {
	token, _ := ctx.Value(csrfTokenKey).(string)
	return token
}

// ensureCSRFCookie returns the request's token, issuing a new cookie when
// none was sent.
func ensureCSRFCookie(w http.ResponseWriter, r *http.Request, secure bool) (string, error) {
	if c, err := r.Cookie(CSRFCookieName); err == nil && c.Value != "" {
		return c.Value, nil
	}

	b := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := base64.RawURLEncoding.EncodeToString(b)

	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
	return token, nil
}

// submittedCSRF reads the echoed token from the header, falling back to the
// form field for url-encoded and multipart posts.
func submittedCSRF(r *http.Request) string {
	if v := r.Header.Get(CSRFHeaderName); v != "" {
		return v
	}
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "application/json" {
		return ""
	}
	return r.FormValue(CSRFFormField)
}

func csrfMatches(want, got string) bool {
	return got != "" && subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}
