// Paged, sorted and filtered SELECT building shared by the grid tables.
package sqlite

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/billyloki/module-shop-admin/pkg/types"
)

// filterFunc turns one filter value into a WHERE condition. ok is false when
// the value does not apply and the filter is skipped.
type filterFunc func(value any) (cond string, args []any, ok bool)

// pageSpec describes how one grid is queried.
type pageSpec struct {
	columns     string
	from        string
	id          string            // tiebreaker column
	sortable    map[string]string // predicate to ORDER BY expression
	defaultSort string
	filters     map[string]filterFunc
}

// pageQuery holds the built statements of one page request.
type pageQuery struct {
	count     string
	selection string
	args      []any
	pageArgs  []any
}

// build turns q plus fixed scope conditions into the count and page queries.
// Unknown sort predicates fall back to the default sort; unknown filters are
// ignored. Rows with equal sort keys are ordered by the id column.
func (s pageSpec) build(q types.QueryState, scope []string, scopeArgs []any) pageQuery {
	conds := append([]string(nil), scope...)
	args := append([]any(nil), scopeArgs...)
	for key, value := range q.Filters {
		fn, ok := s.filters[key]
		if !ok {
			continue
		}
		cond, condArgs, ok := fn(value)
		if !ok {
			continue
		}
		conds = append(conds, cond)
		args = append(args, condArgs...)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	order, ok := s.sortable[q.SortPredicate]
	if !ok {
		order = s.sortable[s.defaultSort]
	}
	dir := "ASC"
	if q.SortDescending {
		dir = "DESC"
	}

	id := s.id
	if id == "" {
		id = "id"
	}

	size := q.PageSize
	if size <= 0 {
		size = types.DefaultPageSize
	}
	page := max(q.PageNumber, 1)

	return pageQuery{
		count:     "SELECT COUNT(*) FROM " + s.from + where,
		selection: fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s %s, %s %s LIMIT ? OFFSET ?", s.columns, s.from, where, order, dir, id, dir),
		args:      args,
		pageArgs:  append(append([]any(nil), args...), size, (page-1)*size),
	}
}

// keywordFilter matches column against a case-insensitive substring.
func keywordFilter(columns ...string) filterFunc {
	return func(value any) (string, []any, bool) {
		s, ok := value.(string)
		s = strings.TrimSpace(s)
		if !ok || s == "" {
			return "", nil, false
		}
		pattern := "%" + escapeLike(s) + "%"
		parts := make([]string, len(columns))
		args := make([]any, len(columns))
		for i, col := range columns {
			parts[i] = col + ` LIKE ? ESCAPE '\'`
			args[i] = pattern
		}
		return "(" + strings.Join(parts, " OR ") + ")", args, true
	}
}

// boolFilter matches an INTEGER boolean column. Table filters arrive either
// as a bare value or as a list of selected values; a list with both true and
// false selects everything.
func boolFilter(column string) filterFunc {
	return func(value any) (string, []any, bool) {
		values, ok := value.([]any)
		if !ok {
			values = []any{value}
		}
		var seenTrue, seenFalse bool
		for _, v := range values {
			if b, ok := asBool(v); ok {
				seenTrue = seenTrue || b
				seenFalse = seenFalse || !b
			}
		}
		if seenTrue == seenFalse {
			return "", nil, false
		}
		return column + " = ?", []any{seenTrue}, true
	}
}

func asBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		b, err := strconv.ParseBool(t)
		return b, err == nil
	case float64:
		return t != 0, true
	case int:
		return t != 0, true
	case int64:
		return t != 0, true
	default:
		return false, false
	}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
