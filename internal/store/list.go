package store

import (
	"fmt"
	"strings"
)

// ListQuery narrows and orders a maintenance listing. Column names must be
// present in the store's allowlists; anything else is ignored.
type ListQuery struct {
	// Search is matched as a case-insensitive prefix of SearchColumns.
	Search        string
	SearchColumns []string
	Sort          string
	Desc          bool
}

// likeEscaper escapes LIKE wildcards so user input matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// PrefixPattern returns the LIKE pattern matching strings starting with s.
// Case is folded in SQL on both sides of the comparison.
func PrefixPattern(s string) string {
	return likeEscaper.Replace(s) + "%"
}

// columnSet is the allowlist of columns a listing may search or sort on.
type columnSet map[string]bool

func newColumnSet(cols ...string) columnSet {
	set := make(columnSet, len(cols))
	for _, c := range cols {
		set[c] = true
	}
	return set
}

// clauses renders the WHERE and ORDER BY parts for q. Placeholders start
// at $1. defaultOrder is used when q.Sort is empty or not allowlisted.
func (q ListQuery) clauses(searchable, sortable columnSet, defaultOrder string) (where, order string, args []any) {
	if term := strings.TrimSpace(q.Search); term != "" {
		var conds []string
		for _, col := range q.SearchColumns {
			if searchable[col] {
				conds = append(conds, fmt.Sprintf(`LOWER(%s) LIKE LOWER($1) ESCAPE '\'`, col))
			}
		}
		if len(conds) > 0 {
			where = " WHERE (" + strings.Join(conds, " OR ") + ")"
			args = append(args, PrefixPattern(term))
		}
	}

	order = " ORDER BY " + defaultOrder
	if sortable[q.Sort] {
		dir := "ASC"
		if q.Desc {
			dir = "DESC"
		}
		order = " ORDER BY " + q.Sort + " " + dir
	}
	return where, order, args
}

// prefixed qualifies every column of a comma-separated list with p.
func prefixed(p, columns string) string {
	parts := strings.Split(columns, ", ")
	for i := range parts {
		parts[i] = p + parts[i]
	}
	return strings.Join(parts, ", ")
}
