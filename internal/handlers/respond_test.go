package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sitebuilder/internal/maintenance"
	"sitebuilder/internal/middleware"
	"sitebuilder/internal/models"
	"sitebuilder/internal/store"
)

func TestFailStatus(t *testing.T) {
	var ve models.ValidationError
	ve.Add("title", models.MsgRequired)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", fmt.Errorf("save: %w", &ve), http.StatusUnprocessableEntity},
		{"invalid id", maintenance.ErrInvalidID, http.StatusBadRequest},
		{"invalid body", maintenance.ErrInvalidBody, http.StatusBadRequest},
		{"bad request", fmt.Errorf("%w: eof", errBadRequest), http.StatusBadRequest},
		{"not found", fmt.Errorf("page x: %w", store.ErrNotFound), http.StatusNotFound},
		{"unknown entity", maintenance.ErrUnknownEntity, http.StatusNotFound},
		{"singleton", maintenance.ErrSingleton, http.StatusMethodNotAllowed},
		{"role in use", store.ErrRoleInUse, http.StatusConflict},
		{"conflict", store.ErrConflict, http.StatusConflict},
		{"other", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			fail(w, httptest.NewRequest("GET", "/", nil), tt.err)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			var body errorBody
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error == "" {
				t.Error("error message is empty")
			}
		})
	}
}

func TestFailValidationFields(t *testing.T) {
	var ve models.ValidationError
	ve.Add("slug", models.MsgInvalidSlug)
	w := httptest.NewRecorder()
	fail(w, httptest.NewRequest("POST", "/", nil), ve.Err())

	var body errorBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Fields["slug"] != models.MsgInvalidSlug {
		t.Errorf("fields = %v", body.Fields)
	}
}

func TestFailHidesInternalDetail(t *testing.T) {
	w := httptest.NewRecorder()
	fail(w, httptest.NewRequest("GET", "/", nil), errors.New("pq: password authentication failed"))
	var body errorBody
	json.NewDecoder(w.Body).Decode(&body)
	if body.Error != msgInternal {
		t.Errorf("error = %q, want %q", body.Error, msgInternal)
	}
}

func TestLocalPath(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{"/maintenance/page", "/maintenance/page"},
		{"/p/contacto?x=1", "/p/contacto?x=1"},
		{"", "/"},
		{"maintenance", "/"},
		{"//evil.example/", "/"},
		{`/\evil.example`, "/"},
		{"https://evil.example/", "/"},
	}
	for _, tt := range tests {
		if got := localPath(tt.next, "/"); got != tt.want {
			t.Errorf("localPath(%q) = %q, want %q", tt.next, got, tt.want)
		}
	}
}

func TestRedirectWithMessage(t *testing.T) {
	w := httptest.NewRecorder()
	redirectWithMessage(w, "/", MsgEmptyPage)

	if w.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want 303", w.Code)
	}
	if got := w.Header().Get("Location"); got != "/" {
		t.Errorf("Location = %q", got)
	}

	r := httptest.NewRequest("GET", "/messages", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	if got := middleware.PopFlash(httptest.NewRecorder(), r); got != MsgEmptyPage {
		t.Errorf("flash = %q, want %q", got, MsgEmptyPage)
	}
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"username":"a","admin":true}`))
	var req loginRequest
	err := decodeJSON(httptest.NewRecorder(), r, &req)
	if !errors.Is(err, errBadRequest) {
		t.Errorf("err = %v, want errBadRequest", err)
	}
}
