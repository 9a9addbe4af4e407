package types

import "maps"

// Query state defaults applied at mount.
const (
	DefaultPageSize      = 10
	DefaultSortPredicate = "id"
)

// QueryState holds the page, sort and filter state of one table view.
// It is mutated only by the grid controller that owns it.
type QueryState struct {
	PageNumber     int            // 1-based page number.
	PageSize       int            // Rows per page, always positive.
	SortPredicate  string         // Sort field name; empty means unsorted.
	SortDescending bool           // Sort direction.
	Filters        map[string]any // Free-form predicate map sent as search.predicateObject.
}

// NewQueryState returns the mount-time state: page 1, the default page size
// and the default sort column descending.
func NewQueryState() QueryState {
	return QueryState{
		PageNumber:     1,
		PageSize:       DefaultPageSize,
		SortPredicate:  DefaultSortPredicate,
		SortDescending: true,
		Filters:        map[string]any{},
	}
}

// SetPage sets the page number and page size.
// Returns a ValidationError wrapping ErrInvalidPage or ErrInvalidPageSize when
// either value is out of range; the state is left untouched in that case.
func (q *QueryState) SetPage(pageNumber, pageSize int) error {
	if pageNumber < 1 {
		return NewValidationError("pageNumber", ErrInvalidPage)
	}
	if pageSize <= 0 {
		return NewValidationError("pageSize", ErrInvalidPageSize)
	}
	q.PageNumber = pageNumber
	q.PageSize = pageSize
	return nil
}

// SetSort sets the sort predicate and direction. When the predicate differs
// from the previous one the page number returns to 1. Reports whether the
// predicate changed.
func (q *QueryState) SetSort(predicate string, descending bool) bool {
	changed := predicate != q.SortPredicate
	q.SortPredicate = predicate
	q.SortDescending = descending
	if changed {
		q.PageNumber = 1
	}
	return changed
}

// SetFilters replaces the filter map wholesale and returns to page 1.
// The map is copied; later changes to filters do not leak into the state.
func (q *QueryState) SetFilters(filters map[string]any) {
	q.Filters = copyFilters(filters)
	q.PageNumber = 1
}

// Clone returns a copy whose filter map is independent of q.
func (q QueryState) Clone() QueryState {
	c := q
	c.Filters = copyFilters(q.Filters)
	return c
}

// Request builds the wire request for the state, merged with scope keys.
func (q QueryState) Request(scope map[string]any) QueryRequest {
	return QueryRequest{
		Pagination: RequestPagination{Current: q.PageNumber, PageSize: q.PageSize},
		Sort:       RequestSort{Predicate: q.SortPredicate, Reverse: q.SortDescending},
		Search:     RequestSearch{PredicateObject: copyFilters(q.Filters)},
		Scope:      maps.Clone(scope),
	}
}

func copyFilters(filters map[string]any) map[string]any {
	if filters == nil {
		return map[string]any{}
	}
	return maps.Clone(filters)
}
