// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package unique resolves collisions in unique text columns by probing
// numbered variants of a base value: "base-1", "base-2" for slugs and
// "Base (1)", "Base (2)" for titles and names. Resolution only reads; it
// must run on the same transaction that later writes the value.
package unique

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// maxProbes bounds the suffix search so a corrupted table cannot spin
// forever.
const maxProbes = 10000

// identifier matches safe table and column names; they are interpolated
// into SQL and never come from user input.
var identifier = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Slug returns base if no row of table other than exclude uses it as its
// slug, otherwise the first free "base-N" for N = 1, 2, ...
func Slug(ctx context.Context, q Querier, table, base string, exclude uuid.UUID) (string, error) {
	return resolve(ctx, q, table, "slug", base, exclude, func(n int) string {
		return fmt.Sprintf("%s-%d", base, n)
	})
}

// Title returns base if no row of table other than exclude has it in
// column, otherwise the first free "base (N)" for N = 1, 2, ... When
// maxLen is positive the base is shortened so every variant stays within
// maxLen runes.
func Title(ctx context.Context, q Querier, table, column, base string, maxLen int, exclude uuid.UUID) (string, error) {
	return resolve(ctx, q, table, column, base, exclude, func(n int) string {
		suffix := fmt.Sprintf(" (%d)", n)
		return truncateRunes(base, maxLen-len(suffix)) + suffix
	})
}

// truncateRunes cuts s to at most n runes, dropping trailing spaces left
// by the cut. n <= 0 leaves s alone.
func truncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimRight(string([]rune(s)[:n]), " ")
}

func resolve(ctx context.Context, q Querier, table, column, base string, exclude uuid.UUID, variant func(int) string) (string, error) {
	if !identifier.MatchString(table) || !identifier.MatchString(column) {
		return "", fmt.Errorf("unique: invalid identifier %q.%q", table, column)
	}
	query := `SELECT EXISTS (SELECT 1 FROM ` + table + ` WHERE ` + column + ` = $1 AND id <> $2)`

	candidate := base
	for n := 1; n <= maxProbes; n++ {
		var taken bool
		if err := q.QueryRowContext(ctx, query, candidate, exclude).Scan(&taken); err != nil {
			return "", fmt.Errorf("check %s.%s uniqueness: %w", table, column, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = variant(n)
	}
	return "", fmt.Errorf("unique: no free %s.%s value for %q", table, column, base)
}
