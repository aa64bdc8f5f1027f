// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package authz

import (
	"net/url"
	"slices"

	"sitebuilder/internal/models"
)

// Outcome classifies a Decision.
type Outcome string

const (
	OutcomeAllow           Outcome = "allow"
	OutcomeUnauthenticated Outcome = "unauthenticated"
	OutcomePending         Outcome = "pending_approval"
	OutcomeForbidden       Outcome = "forbidden"
)

// Messages attached to denials.
const (
	MsgLoginRequired = "Debes iniciar sesión para acceder a esta sección."
	MsgPending       = "Tu cuenta está pendiente de aprobación por un administrador."
	MsgForbidden     = "No tienes permiso para acceder a esta sección."
	MsgActionDenied  = "No tienes permiso para realizar esta acción."
	MsgAdminOnly     = "No tenés permiso para acceder al panel de administración."
)

// Paths used as denial redirects.
const (
	LoginPath = "/login"
	HomePath  = "/"
	AdminPath = "/admin/"
)

// Decision is the result of an authorization check. Denials carry the
// message to show and where to send the user.
type Decision struct {
	Allowed  bool    `json:"allowed"`
	Outcome  Outcome `json:"outcome"`
	Message  string  `json:"message,omitempty"`
	Redirect string  `json:"redirect,omitempty"`
}

var allow = Decision{Allowed: true, Outcome: OutcomeAllow}

func deny(outcome Outcome, msg, redirect string) Decision {
	return Decision{Outcome: outcome, Message: msg, Redirect: redirect}
}

// LoginRedirect is the login URL that returns to next after sign-in.
func LoginRedirect(next string) string {
	if next == "" {
		return LoginPath
	}
	return LoginPath + "?next=" + url.QueryEscape(next)
}

// RequireRole lets superusers and identities holding one of the allowed
// roles through. path is the requested location, remembered when the
// request is anonymous.
func RequireRole(id *models.Identity, path string, allowed ...string) Decision {
	switch {
	case id == nil:
		return deny(OutcomeUnauthenticated, MsgLoginRequired, LoginRedirect(path))
	case id.IsSuperuser():
		return allow
	case id.RoleName == "":
		return deny(OutcomePending, MsgPending, HomePath)
	case slices.Contains(allowed, id.RoleName):
		return allow
	}
	return deny(OutcomeForbidden, MsgForbidden, HomePath)
}

// RequireSuperuser gates the admin area.
func RequireSuperuser(id *models.Identity) Decision {
	if id == nil {
		return deny(OutcomeUnauthenticated, MsgAdminOnly, LoginPath)
	}
	if !id.IsSuperuser() {
		return deny(OutcomeForbidden, MsgAdminOnly, LoginPath)
	}
	return allow
}
