// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"
)

// Field-level error messages shown next to the submitted form.
const (
	MsgRequired       = "Este campo es obligatorio."
	MsgTooLong        = "Asegúrese de que este valor tenga como máximo %d caracteres."
	MsgNegative       = "Asegúrese de que este valor sea mayor o igual a 0."
	MsgInvalidSlug    = "Introduzca un slug válido: letras, números, guiones o guiones bajos."
	MsgInvalidURL     = "Introduzca una URL válida."
	MsgVideoExclusive = "Solo se permite 1 tipo de video: URL o ARCHIVO."
)

// FieldVideo is the key used for the video mutual-exclusion error.
const FieldVideo = "video"

// ValidationError collects per-field validation failures. It is returned
// before any persistence work starts.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

// Add records msg for field, keeping the first message per field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// Error lists the failing fields in a stable order.
func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Err returns e as an error, or nil when no field failed.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// required checks that value has visible characters and fits within max
// runes. A max of zero disables the length check.
func (e *ValidationError) required(field, value string, max int) {
	if strings.TrimSpace(value) == "" {
		e.Add(field, MsgRequired)
		return
	}
	e.maxLen(field, value, max)
}

func (e *ValidationError) maxLen(field, value string, max int) {
	if max > 0 && utf8.RuneCountInString(value) > max {
		e.Add(field, tooLong(max))
	}
}

// videoURL validates an optional external video reference.
func (e *ValidationError) videoURL(field, value string) {
	if value == "" {
		return
	}
	u, err := url.Parse(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		e.Add(field, MsgInvalidURL)
	}
}

// videoExclusive rejects an entity carrying both an external video URL and
// an uploaded video file.
func (e *ValidationError) videoExclusive(videoURL, videoFile string) {
	if videoURL != "" && videoFile != "" {
		e.Add(FieldVideo, MsgVideoExclusive)
	}
}

func tooLong(max int) string {
	return fmt.Sprintf(MsgTooLong, max)
}
