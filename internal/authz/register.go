// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package authz

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"sitebuilder/internal/models"
	"sitebuilder/internal/store"
)

// PasswordMinLen is the shortest accepted password.
const PasswordMinLen = 8

// Username and name limits of the registration form.
const (
	usernameMax = 150
	nameMax     = 150
)

// Registration messages shown next to the form fields.
const (
	MsgPasswordShort    = "La contraseña debe tener al menos 8 caracteres."
	MsgPasswordMismatch = "Las contraseñas no coinciden."
	MsgUsernameTaken    = "Ya existe un usuario con ese nombre."
	MsgRoleTaken        = "Ya existe un rol con ese nombre."
	MsgUsernameInvalid  = "Solo letras, números y los caracteres @/./+/-/_."
	MsgEmailInvalid     = "Introduce una dirección de correo válida."
)

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}.@+_-]+$`)

// Registration is the sign-up form.
type Registration struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

// Validate checks the form without touching the database.
func (r *Registration) Validate() error {
	var v models.ValidationError
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)

	switch {
	case r.Username == "":
		v.Add("username", models.MsgRequired)
	case utf8.RuneCountInString(r.Username) > usernameMax:
		v.Add("username", fmt.Sprintf(models.MsgTooLong, usernameMax))
	case !usernamePattern.MatchString(r.Username):
		v.Add("username", MsgUsernameInvalid)
	}

	if r.Email == "" {
		v.Add("email", models.MsgRequired)
	} else if addr, err := mail.ParseAddress(r.Email); err != nil || addr.Address != r.Email {
		v.Add("email", MsgEmailInvalid)
	}

	for field, value := range map[string]string{"first_name": r.FirstName, "last_name": r.LastName} {
		if utf8.RuneCountInString(value) > nameMax {
			v.Add(field, fmt.Sprintf(models.MsgTooLong, nameMax))
		}
	}

	if utf8.RuneCountInString(r.Password) < PasswordMinLen {
		v.Add("password", MsgPasswordShort)
	}
	if r.Password != r.Password2 {
		v.Add("password2", MsgPasswordMismatch)
	}
	return v.Err()
}

// Register creates an active account with the Ingresante role. A taken
// username is reported as a field error.
func (e *Engine) Register(ctx context.Context, r Registration) (*models.Account, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	a := &models.Account{
		Username:  r.Username,
		Email:     r.Email,
		FirstName: strings.TrimSpace(r.FirstName),
		LastName:  strings.TrimSpace(r.LastName),
		IsActive:  true,
	}
	if err := e.CreateAccount(ctx, a, r.Password); err != nil {
		if errors.Is(err, store.ErrConflict) {
			var v models.ValidationError
			v.Add("username", MsgUsernameTaken)
			return nil, v.Err()
		}
		return nil, err
	}
	return a, nil
}
