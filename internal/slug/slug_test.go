package slug

import "testing"

// TestGenerate covers typical Spanish titles, punctuation, whitespace and
// the edge cases that collapse to an empty slug.
func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		// --- Normal titles ---
		{name: "single word", input: "Inicio", want: "inicio"},
		{name: "two words", input: "Segunda Pagina", want: "segunda-pagina"},
		{name: "title with year", input: "Noticias 2026", want: "noticias-2026"},
		{name: "already a slug", input: "quienes-somos", want: "quienes-somos"},

		// --- Accented characters ---
		{name: "acute accents", input: "Página de Inicio", want: "pagina-de-inicio"},
		{name: "enie", input: "Año Nuevo", want: "ano-nuevo"},
		{name: "diaeresis", input: "Pingüino Ünico", want: "pinguino-unico"},
		{name: "inverted punctuation", input: "¿Qué es esto?", want: "que-es-esto"},
		{name: "exclamation", input: "¡Hola, Año 2026!", want: "hola-ano-2026"},
		{name: "non-latin script dropped", input: "Hola 世界", want: "hola"},

		// --- Special characters ---
		{name: "ampersand", input: "Rock & Roll", want: "rock-roll"},
		{name: "parentheses", input: "Versión (2.0)", want: "version-20"},
		{name: "dedup suffix", input: "Inicio (1)", want: "inicio-1"},
		{name: "underscore kept", input: "mi_pagina", want: "mi_pagina"},
		{name: "slashes", input: "Ventas/Compras", want: "ventascompras"},

		// --- Whitespace and hyphens ---
		{name: "leading and trailing spaces", input: "  hola mundo  ", want: "hola-mundo"},
		{name: "tabs and newlines", input: "hola\t\nmundo", want: "hola-mundo"},
		{name: "hyphen runs", input: "--hola -- mundo--", want: "hola-mundo"},
		{name: "trailing underscore trimmed", input: "hola_", want: "hola"},

		// --- Edge cases ---
		{name: "empty", input: "", want: ""},
		{name: "only spaces", input: "    ", want: ""},
		{name: "only punctuation", input: "¡¿!?", want: ""},
		{name: "only digits", input: "123", want: "123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(tt.input)
			if got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	for _, s := range []string{"inicio", "pagina-de-inicio", "a", "123", "mi_pagina"} {
		t.Run(s, func(t *testing.T) {
			if got := Generate(s); got != s {
				t.Errorf("Generate(%q) = %q, want idempotent result", s, got)
			}
		})
	}
}

func TestGenerateOr(t *testing.T) {
	if got := GenerateOr("!!!", "pagina"); got != "pagina" {
		t.Errorf("GenerateOr(punctuation) = %q, want %q", got, "pagina")
	}
	if got := GenerateOr("Contacto", "pagina"); got != "contacto" {
		t.Errorf("GenerateOr(Contacto) = %q, want %q", got, "contacto")
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"inicio", true},
		{"Pagina-2", true},
		{"mi_pagina", true},
		{"", false},
		{"con espacio", false},
		{"página", false},
		{"a/b", false},
	}
	for _, tt := range tests {
		if got := Valid(tt.input); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
