package db

import (
	"fmt"
	"strings"

	"github.com/patrickwarner/chatads/internal/models"
)

// listQuery accumulates WHERE clauses with positional arguments.
type listQuery struct {
	where []string
	args  []any
}

// add appends a condition. cond contains a single %d for the argument's
// placeholder number.
func (q *listQuery) add(cond string, arg any) {
	q.args = append(q.args, arg)
	q.where = append(q.where, fmt.Sprintf(cond, len(q.args)))
}

// build renders base with the accumulated filters, keyset pagination on the
// key column and a limit of one extra row so the caller can tell whether
// more exist.
func (q *listQuery) build(base, key, cursor string, limit int) (string, []any) {
	if cursor != "" {
		q.add(key+" > $%d", cursor)
	}
	var sb strings.Builder
	sb.WriteString(base)
	if len(q.where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(q.where, " AND "))
	}
	q.args = append(q.args, limit+1)
	fmt.Fprintf(&sb, " ORDER BY %s LIMIT $%d", key, len(q.args))
	return sb.String(), q.args
}

// likePattern escapes LIKE metacharacters and wraps s for a substring match.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// paginate trims the extra row fetched by build and sets the next cursor.
func paginate[T any](items []T, limit int, id func(T) string) models.Page[T] {
	if items == nil {
		items = []T{}
	}
	if len(items) <= limit {
		return models.Page[T]{Items: items}
	}
	items = items[:limit]
	return models.Page[T]{Items: items, NextCursor: id(items[len(items)-1])}
}
