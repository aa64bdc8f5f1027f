package middleware

import (
	"net/http"
	"strings"
)

// MediaPrefix is the URL prefix under which stored files are served.
const MediaPrefix = "/media/"

// MediaRanges advertises byte-range support on media responses so
// browsers can seek inside uploaded videos.
func MediaRanges(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, MediaPrefix) {
			w.Header().Set("Accept-Ranges", "bytes")
		}
		next.ServeHTTP(w, r)
	})
}
