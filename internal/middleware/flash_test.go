package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"sitebuilder/internal/authz"
)

func TestFlashRoundTrip(t *testing.T) {
	w := httptest.NewRecorder()
	SetFlash(w, authz.MsgAdminOnly)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}

	w2 := httptest.NewRecorder()
	if got := PopFlash(w2, req); got != authz.MsgAdminOnly {
		t.Errorf("PopFlash() = %q, want %q", got, authz.MsgAdminOnly)
	}
	cleared := false
	for _, c := range w2.Result().Cookies() {
		if c.Name == FlashCookie && c.MaxAge == -1 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("PopFlash must expire the cookie")
	}
}

func TestPopFlashWithoutCookie(t *testing.T) {
	w := httptest.NewRecorder()
	if got := PopFlash(w, httptest.NewRequest(http.MethodGet, "/", nil)); got != "" {
		t.Errorf("PopFlash() = %q, want empty", got)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("PopFlash without a flash must not set cookies")
	}
}

func TestPopFlashGarbage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: FlashCookie, Value: "%%%"})
	if got := PopFlash(httptest.NewRecorder(), req); got != "" {
		t.Errorf("PopFlash() = %q, want empty for undecodable value", got)
	}
}

func TestMediaRanges(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/media/videos/clip.mp4", "bytes"},
		{"/media/", "bytes"},
		{"/mediateca", ""},
		{"/p/inicio", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			inner, _ := okHandler()
			rr := httptest.NewRecorder()
			MediaRanges(inner).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if got := rr.Header().Get("Accept-Ranges"); got != tt.want {
				t.Errorf("Accept-Ranges = %q, want %q", got, tt.want)
			}
		})
	}
}
