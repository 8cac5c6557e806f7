// Package query builds the dynamic WHERE/ORDER/LIMIT tail for list queries.
// Repositories keep their base SELECT as a literal and append the tail, so
// the static part of every query stays greppable.
package query

import (
	"fmt"
	"strings"
)

// Builder accumulates conditions with positional ($1, $2, ...) placeholders.
// The zero value is not usable; construct with New.
type Builder struct {
	conds   []string
	args    []any
	orderBy string
	limit   int
	offset  int
}

func New() *Builder {
	return &Builder{limit: -1, offset: -1}
}

// Eq appends "column = $N".
func (b *Builder) Eq(column string, value any) *Builder {
	b.args = append(b.args, value)
	b.conds = append(b.conds, fmt.Sprintf("%s = $%d", column, len(b.args)))
	return b
}

// ILike appends a case-insensitive substring match over one or more columns,
// OR-ed together. The term is escaped so user input cannot inject LIKE
// wildcards.
func (b *Builder) ILike(term string, columns ...string) *Builder {
	if term == "" || len(columns) == 0 {
		return b
	}
	b.args = append(b.args, "%"+escapeLike(term)+"%")
	n := len(b.args)
	parts := make([]string, 0, len(columns))
	for _, col := range columns {
		parts = append(parts, fmt.Sprintf("%s ILIKE $%d", col, n))
	}
	b.conds = append(b.conds, "("+strings.Join(parts, " OR ")+")")
	return b
}

// OrderBy sets the ORDER BY clause verbatim. Callers pass constants, never
// user input.
func (b *Builder) OrderBy(clause string) *Builder {
	b.orderBy = clause
	return b
}

// Paginate sets LIMIT/OFFSET. Non-positive limit means no limit; negative
// offset means no offset.
func (b *Builder) Paginate(limit, offset int) *Builder {
	b.limit = limit
	b.offset = offset
	return b
}

// Build renders the clause tail and the argument slice. The tail starts with
// a leading space when non-empty, so it can be appended directly to a base
// query.
func (b *Builder) Build() (string, []any) {
	var sb strings.Builder
	if len(b.conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.conds, " AND "))
	}
	if b.orderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(b.orderBy)
	}
	if b.limit > 0 {
		b.args = append(b.args, b.limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(b.args))
	}
	if b.offset > 0 {
		b.args = append(b.args, b.offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(b.args))
	}
	return sb.String(), b.args
}

// escapeLike backslash-escapes the LIKE metacharacters.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
