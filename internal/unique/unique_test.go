package unique

import (
	"context"
	"database/sql"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"sitebuilder/internal/testutil"
)

// insertType seeds a row in the types table, which carries both a unique
// name and a unique slug.
func insertType(t *testing.T, db *sql.DB, name, slug string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := db.Exec(`INSERT INTO types (id, name, slug, created_at) VALUES ($1, $2, $3, $4)`,
		id, name, slug, time.Now().UTC())
	if err != nil {
		t.Fatalf("insert type: %v", err)
	}
	return id
}

func TestSlug(t *testing.T) {
	db := testutil.SQLite(t)
	ctx := context.Background()

	first := insertType(t, db, "Noticias", "noticias")
	insertType(t, db, "Noticias 1", "noticias-1")
	insertType(t, db, "Eventos", "eventos")

	tests := []struct {
		name    string
		base    string
		exclude uuid.UUID
		want    string
	}{
		{name: "free base", base: "contacto", want: "contacto"},
		{name: "taken base skips taken suffix", base: "noticias", want: "noticias-2"},
		{name: "single collision", base: "eventos", want: "eventos-1"},
		{name: "own row is excluded", base: "noticias", exclude: first, want: "noticias"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Slug(ctx, db, "types", tt.base, tt.exclude)
			if err != nil {
				t.Fatalf("Slug: %v", err)
			}
			if got != tt.want {
				t.Errorf("Slug(%q) = %q, want %q", tt.base, got, tt.want)
			}
		})
	}
}

func TestTitle(t *testing.T) {
	db := testutil.SQLite(t)
	ctx := context.Background()

	own := insertType(t, db, "Blog", "blog")
	insertType(t, db, "Blog (1)", "blog-1")

	got, err := Title(ctx, db, "types", "name", "Blog", 0, uuid.Nil)
	if err != nil {
		t.Fatalf("Title: %v", err)
	}
	if got != "Blog (2)" {
		t.Errorf("Title(Blog) = %q, want %q", got, "Blog (2)")
	}

	got, err = Title(ctx, db, "types", "name", "Blog", 0, own)
	if err != nil {
		t.Fatalf("Title excluding self: %v", err)
	}
	if got != "Blog" {
		t.Errorf("Title(Blog, self) = %q, want unchanged", got)
	}
}

// TestTitleKeepsVariantsWithinLimit verifies that a suffixed title never
// exceeds the column limit, so saving it again validates.
func TestTitleKeepsVariantsWithinLimit(t *testing.T) {
	db := testutil.SQLite(t)
	ctx := context.Background()

	const limit = 20
	base := "Árbol genealógico xy" // exactly limit runes
	insertType(t, db, base, "arbol")

	got, err := Title(ctx, db, "types", "name", base, limit, uuid.Nil)
	if err != nil {
		t.Fatalf("Title: %v", err)
	}
	if want := "Árbol genealógic (1)"; got != want {
		t.Errorf("Title() = %q, want %q", got, want)
	}
	if n := utf8.RuneCountInString(got); n > limit {
		t.Errorf("Title() has %d runes, limit %d", n, limit)
	}

	// The stored variant resolves to itself on the next save.
	own := insertType(t, db, got, "arbol-1")
	again, err := Title(ctx, db, "types", "name", got, limit, own)
	if err != nil {
		t.Fatalf("Title(again): %v", err)
	}
	if again != got {
		t.Errorf("second save changed %q to %q", got, again)
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"Noticias", 0, "Noticias"},
		{"Noticias", 20, "Noticias"},
		{"Noticias", 4, "Noti"},
		{"Él dijo", 3, "Él"},
		{"ñandú", 2, "ña"},
	}
	for _, tt := range tests {
		if got := truncateRunes(tt.in, tt.n); got != tt.want {
			t.Errorf("truncateRunes(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestInvalidIdentifier(t *testing.T) {
	db := testutil.SQLite(t)
	for _, table := range []string{"types; DROP TABLE pages", "Types", ""} {
		if _, err := Slug(context.Background(), db, table, "x", uuid.Nil); err == nil {
			t.Errorf("Slug with table %q: expected error", table)
		}
	}
}
