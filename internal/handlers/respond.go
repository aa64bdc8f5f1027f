// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON HTTP surface: the public site,
// sign-in, content maintenance and the superuser admin area.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"sitebuilder/internal/maintenance"
	"sitebuilder/internal/middleware"
	"sitebuilder/internal/models"
	"sitebuilder/internal/store"
)

// maxBodyBytes caps request bodies. Article content is limited to a few
// thousand characters, so forms are far below it.
const maxBodyBytes = 1 << 20

// Error messages returned in the "error" field.
const (
	msgValidation = "Revisa los campos del formulario."
	msgNotFound   = "No encontrado."
	msgConflict   = "El registro entra en conflicto con otro existente."
	msgRoleInUse  = "El rol está asignado a usuarios y no se puede eliminar."
	msgBadRequest = "Solicitud inválida."
	msgInternal   = "Error interno del servidor."
)

// errBadRequest marks malformed input detected by a handler.
var errBadRequest = errors.New("bad request")

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response encode failed", "error", err)
	}
}

// writeRaw sends an already encoded JSON body, e.g. a cached response.
func writeRaw(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// fail maps a service error to its HTTP status. Unclassified errors are
// logged and reported as 500 without detail.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: msgValidation, Fields: ve.Fields})
	case errors.Is(err, maintenance.ErrInvalidID), errors.Is(err, maintenance.ErrInvalidBody), errors.Is(err, errBadRequest):
		writeError(w, http.StatusBadRequest, msgBadRequest)
	case errors.Is(err, store.ErrNotFound), errors.Is(err, maintenance.ErrUnknownEntity):
		writeError(w, http.StatusNotFound, msgNotFound)
	case errors.Is(err, maintenance.ErrSingleton):
		writeError(w, http.StatusMethodNotAllowed, msgBadRequest)
	case errors.Is(err, store.ErrRoleInUse):
		writeError(w, http.StatusConflict, msgRoleInUse)
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, msgConflict)
	default:
		slog.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}

// readBody reads a request body up to maxBodyBytes.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return body, nil
}

// decodeJSON reads a JSON request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// localPath returns next when it is a path on this site, and fallback
// otherwise, so a login redirect cannot leave the site.
func localPath(next, fallback string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	return next
}

// redirectBody is sent with a 303 so JSON clients see where to go.
type redirectBody struct {
	Message  string `json:"message,omitempty"`
	Redirect string `json:"redirect"`
}

// redirectWithMessage stores msg as a flash and sends the client to target.
func redirectWithMessage(w http.ResponseWriter, target, msg string) {
	if msg != "" {
		middleware.SetFlash(w, msg)
	}
	w.Header().Set("Location", target)
	writeJSON(w, http.StatusSeeOther, redirectBody{Message: msg, Redirect: target})
}
