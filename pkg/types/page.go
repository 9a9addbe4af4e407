package types

import "fmt"

// PageResult is one page of a remote query. It is never patched in place;
// a new fetch builds a new value.
type PageResult[T any] struct {
	items      []T
	totalCount int
}

// NewPageResult copies items into a new PageResult. A negative total is
// treated as zero.
func NewPageResult[T any](items []T, totalCount int) PageResult[T] {
	cp := make([]T, len(items))
	copy(cp, items)
	if totalCount < 0 {
		totalCount = 0
	}
	return PageResult[T]{items: cp, totalCount: totalCount}
}

// Items returns a copy of the page rows in server order.
func (p PageResult[T]) Items() []T {
	cp := make([]T, len(p.items))
	copy(cp, p.items)
	return cp
}

// Len returns the number of rows on the page.
func (p PageResult[T]) Len() int {
	return len(p.items)
}

// TotalCount returns the row count across all pages.
func (p PageResult[T]) TotalCount() int {
	return p.totalCount
}

// PageCount returns ceil(total/pageSize), or 0 when pageSize is not positive.
func PageCount(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// PageRange is the 1-based row span shown under a table.
type PageRange struct {
	Start int
	End   int
	Total int
}

// RangeOf computes the displayed span of page for the given size and total.
// Start is (page-1)*size+1 and End is min(page*size, total). An empty result
// yields 0-0.
func RangeOf(page, pageSize, total int) PageRange {
	if total <= 0 || page < 1 || pageSize <= 0 {
		return PageRange{Total: max(total, 0)}
	}
	start := (page-1)*pageSize + 1
	end := min(page*pageSize, total)
	if start > total {
		return PageRange{Total: total}
	}
	return PageRange{Start: start, End: end, Total: total}
}

func (r PageRange) String() string {
	return fmt.Sprintf("%d-%d of %d", r.Start, r.End, r.Total)
}
