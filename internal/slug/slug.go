// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings.
// Accented Latin letters are folded to ASCII before filtering, so Spanish
// titles such as "Página Única" become "pagina-unica".
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLen is the longest slug accepted for any entity.
const MaxLen = 150

var (
	// disallowed matches anything that isn't a letter, digit, underscore,
	// whitespace, or hyphen once the input is ASCII-folded.
	disallowed = regexp.MustCompile(`[^a-z0-9_\s-]`)
	// separators collapses runs of hyphens and whitespace into one hyphen.
	separators = regexp.MustCompile(`[-\s]+`)
	// valid is the accepted shape of a user-supplied slug.
	valid = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// Generate creates a URL-friendly slug from the given string.
// Example: "¡Hola, Año 2026!" → "hola-ano-2026"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(fold(s)))
	result = disallowed.ReplaceAllString(result, "")
	result = separators.ReplaceAllString(result, "-")
	return strings.Trim(result, "-_")
}

// GenerateOr returns Generate(s), or fallback when s yields an empty slug
// (e.g. a title made only of punctuation or non-Latin script).
func GenerateOr(s, fallback string) string {
	if out := Generate(s); out != "" {
		return out
	}
	return fallback
}

// Valid reports whether s is an acceptable user-supplied slug.
func Valid(s string) bool {
	return valid.MatchString(s)
}

// fold decomposes s and drops combining marks and any remaining non-ASCII
// runes.
func fold(s string) string {
	t := transform.Chain(
		norm.NFKD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
