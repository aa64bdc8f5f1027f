package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"sitebuilder/internal/authz"
	"sitebuilder/internal/middleware"
	"sitebuilder/internal/models"
	"sitebuilder/internal/session"
)

// Messages of the sign-in flow.
const (
	MsgInvalidLogin = "Usuario o contraseña incorrectos."
	MsgRegistered   = "Tu cuenta fue creada y está pendiente de aprobación."
)

// Auth groups the account handlers: registration, sign-in and sign-out.
type Auth struct {
	engine   *authz.Engine
	sessions *session.Store
}

// NewAuth creates a new Auth handler group.
func NewAuth(engine *authz.Engine, sessions *session.Store) *Auth {
	return &Auth{engine: engine, sessions: sessions}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Next     string `json:"next"`
}

type loginResponse struct {
	Account  models.Account `json:"account"`
	Redirect string         `json:"redirect"`
}

// meResponse describes the current visitor.
type meResponse struct {
	Identity  *models.Identity `json:"identity"`
	CSRFToken string           `json:"csrf_token"`
}

// Register creates an account with the Ingresante role. The account can
// sign in but sees nothing beyond the public site until a staff member
// assigns a role.
func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req authz.Registration
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err)
		return
	}

	acc, err := a.engine.Register(r.Context(), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	slog.Info("account registered", "username", acc.Username)
	middleware.SetFlash(w, MsgRegistered)
	writeJSON(w, http.StatusCreated, acc)
}

// Login checks the credentials and starts a session. The response names
// where to continue: the requested next path when it is local, else "/".
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err)
		return
	}

	acc, err := a.engine.Authenticate(r.Context(), req.Username, req.Password)
	if errors.Is(err, authz.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, MsgInvalidLogin)
		return
	}
	if err != nil {
		fail(w, r, err)
		return
	}

	if _, err := a.sessions.Start(r.Context(), w, r, &session.Data{AccountID: acc.ID, Username: acc.Username}); err != nil {
		fail(w, r, err)
		return
	}
	slog.Info("login", "username", acc.Username)
	writeJSON(w, http.StatusOK, loginResponse{Account: *acc, Redirect: localPath(req.Next, "/")})
}

// Logout ends the session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.End(r.Context(), w, r); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the current identity, or null for anonymous visitors, along
// with the CSRF token state-changing requests must echo.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, meResponse{
		Identity:  middleware.IdentityFromCtx(r.Context()),
		CSRFToken: middleware.CSRFTokenFromCtx(r.Context()),
	})
}
