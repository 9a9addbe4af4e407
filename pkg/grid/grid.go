// Package grid binds a remote paginated table to its query state.
//
// A Controller owns one types.QueryState and the last applied page. Table
// events update the state, apply the first-page rule, and trigger a fetch
// through a Fetcher. Every fetch is tagged with a sequence number; a response
// that settles after a newer one is discarded.
package grid

import (
	"context"
	"maps"
	"reflect"
	"sync"

	"github.com/rs/zerolog"

	"github.com/billyloki/module-shop-admin/pkg/notify"
	"github.com/billyloki/module-shop-admin/pkg/types"
)

// Status is the loading state of a controller.
type Status int

// Controller states.
const (
	Idle Status = iota
	Loading
)

func (s Status) String() string {
	if s == Loading {
		return "loading"
	}
	return "idle"
}

// Fetcher runs a remote query. gateway.Resource implements it.
type Fetcher[T any] interface {
	Fetch(ctx context.Context, q types.QueryState) (types.PageResult[T], error)
}

// FetchFunc adapts a function to the Fetcher interface.
type FetchFunc[T any] func(ctx context.Context, q types.QueryState) (types.PageResult[T], error)

// Fetch calls f(ctx, q).
func (f FetchFunc[T]) Fetch(ctx context.Context, q types.QueryState) (types.PageResult[T], error) {
	return f(ctx, q)
}

// SortOrder is the direction reported by a table sorter.
type SortOrder string

// Sort orders. The zero value means no direction.
const (
	Ascend  SortOrder = "ascend"
	Descend SortOrder = "descend"
)

// Pagination is the pager part of a table event.
type Pagination struct {
	Current  int
	PageSize int
}

// Sorter is the sort part of a table event. An empty Field means the table
// reported no sort column.
type Sorter struct {
	Field string
	Order SortOrder
}

// TableChange is one user-driven table event.
type TableChange struct {
	Pagination Pagination
	Filters    map[string]any
	Sorter     Sorter
}

// Snapshot is a consistent view of a controller.
type Snapshot[T any] struct {
	Query     types.QueryState
	Result    types.PageResult[T]
	Status    Status
	Range     types.PageRange
	PageCount int
}

// Option configures a Controller.
type Option[T any] func(*Controller[T])

// WithPageSize sets the initial page size. Non-positive sizes are ignored.
func WithPageSize[T any](size int) Option[T] {
	return func(c *Controller[T]) {
		if size > 0 {
			c.query.PageSize = size
		}
	}
}

// WithDefaultSort sets the sort applied at mount.
func WithDefaultSort[T any](predicate string, descending bool) Option[T] {
	return func(c *Controller[T]) {
		c.query.SortPredicate = predicate
		c.query.SortDescending = descending
	}
}

// WithFilters sets the filters applied at mount.
func WithFilters[T any](filters map[string]any) Option[T] {
	return func(c *Controller[T]) { c.query.Filters = maps.Clone(filters) }
}

// WithNotifier sets where fetch failures are reported.
func WithNotifier[T any](n notify.Notifier) Option[T] {
	return func(c *Controller[T]) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger[T any](l zerolog.Logger) Option[T] {
	return func(c *Controller[T]) { c.logger = l }
}

// WithObserver registers fn to receive a snapshot after every state
// transition. fn runs outside the controller lock.
func WithObserver[T any](fn func(Snapshot[T])) Option[T] {
	return func(c *Controller[T]) { c.observer = fn }
}

// Controller binds one table view to a Fetcher. It is safe for concurrent use.
type Controller[T any] struct {
	fetcher  Fetcher[T]
	notifier notify.Notifier
	logger   zerolog.Logger
	observer func(Snapshot[T])

	mu       sync.Mutex
	query    types.QueryState
	result   types.PageResult[T]
	inflight int
	issued   uint64 // sequence of the newest fetch started
	settled  uint64 // sequence of the newest fetch whose response was applied
}

// New returns a controller with the mount-time query state.
func New[T any](fetcher Fetcher[T], opts ...Option[T]) *Controller[T] {
	c := &Controller[T]{
		fetcher:  fetcher,
		notifier: notify.Discard,
		logger:   zerolog.Nop(),
		query:    types.NewQueryState(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.query.Filters == nil {
		c.query.Filters = map[string]any{}
	}
	return c
}

// Mount loads the first page with the mount-time state.
func (c *Controller[T]) Mount(ctx context.Context) error {
	return c.SearchFirst(ctx)
}

// Search refetches the current page.
func (c *Controller[T]) Search(ctx context.Context) error {
	return c.fetch(ctx)
}

// SearchFirst returns to page 1 and fetches.
func (c *Controller[T]) SearchFirst(ctx context.Context) error {
	c.mu.Lock()
	c.query.PageNumber = 1
	c.mu.Unlock()
	return c.fetch(ctx)
}

// ApplyFilters replaces the filters, returns to page 1 and fetches.
func (c *Controller[T]) ApplyFilters(ctx context.Context, filters map[string]any) error {
	c.mu.Lock()
	c.query.SetFilters(filters)
	c.mu.Unlock()
	return c.fetch(ctx)
}

// Sort sets the sort column and direction and fetches. A new column returns
// to page 1.
func (c *Controller[T]) Sort(ctx context.Context, predicate string, descending bool) error {
	c.mu.Lock()
	c.query.SetSort(predicate, descending)
	c.mu.Unlock()
	return c.fetch(ctx)
}

// OnTableChange applies a table event and fetches.
//
// The page returns to 1 when the sorter field differs from the current
// predicate or the filters differ from the current ones; otherwise the page
// from the event is kept. An empty sorter field leaves the predicate as it
// is. An invalid page or page size is notified and returned without a fetch.
func (c *Controller[T]) OnTableChange(ctx context.Context, change TableChange) error {
	c.mu.Lock()
	filtersChanged := !sameFilters(change.Filters, c.query.Filters)
	firstPage := change.Sorter.Field != c.query.SortPredicate || filtersChanged

	if err := c.query.SetPage(change.Pagination.Current, change.Pagination.PageSize); err != nil {
		c.mu.Unlock()
		notify.Error(c.notifier, err)
		return err
	}
	if filtersChanged {
		c.query.Filters = maps.Clone(change.Filters)
		if c.query.Filters == nil {
			c.query.Filters = map[string]any{}
		}
	}
	if change.Sorter.Field != "" {
		c.query.SetSort(change.Sorter.Field, change.Sorter.Order == Descend)
	}
	if firstPage {
		c.query.PageNumber = 1
	}
	c.mu.Unlock()
	return c.fetch(ctx)
}

// NextPage fetches the following page. It does nothing on the last page.
func (c *Controller[T]) NextPage(ctx context.Context) error {
	c.mu.Lock()
	if c.query.PageNumber >= types.PageCount(c.result.TotalCount(), c.query.PageSize) {
		c.mu.Unlock()
		return nil
	}
	c.query.PageNumber++
	c.mu.Unlock()
	return c.fetch(ctx)
}

// PrevPage fetches the preceding page. It does nothing on page 1.
func (c *Controller[T]) PrevPage(ctx context.Context) error {
	c.mu.Lock()
	if c.query.PageNumber <= 1 {
		c.mu.Unlock()
		return nil
	}
	c.query.PageNumber--
	c.mu.Unlock()
	return c.fetch(ctx)
}

// Snapshot returns the current state.
func (c *Controller[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Query returns a copy of the current query state.
func (c *Controller[T]) Query() types.QueryState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query.Clone()
}

func (c *Controller[T]) snapshotLocked() Snapshot[T] {
	status := Idle
	if c.inflight > 0 {
		status = Loading
	}
	total := c.result.TotalCount()
	return Snapshot[T]{
		Query:     c.query.Clone(),
		Result:    c.result,
		Status:    status,
		Range:     types.RangeOf(c.query.PageNumber, c.query.PageSize, total),
		PageCount: types.PageCount(total, c.query.PageSize),
	}
}

func (c *Controller[T]) fetch(ctx context.Context) error {
	c.mu.Lock()
	c.issued++
	seq := c.issued
	q := c.query.Clone()
	c.inflight++
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.observe(snap)

	result, err := c.fetcher.Fetch(ctx, q)

	c.mu.Lock()
	c.inflight--
	if seq < c.settled {
		settled := c.settled
		snap = c.snapshotLocked()
		c.mu.Unlock()
		c.logger.Debug().Uint64("seq", seq).Uint64("settled", settled).AnErr("fetch_err", err).Msg("discarding stale response")
		c.observe(snap)
		return nil
	}
	c.settled = seq
	if err == nil {
		c.result = result
	}
	snap = c.snapshotLocked()
	c.mu.Unlock()
	c.observe(snap)

	if err != nil {
		c.logger.Debug().Err(err).Int("page", q.PageNumber).Msg("fetch failed")
		notify.Error(c.notifier, err)
		return err
	}
	return nil
}

func (c *Controller[T]) observe(s Snapshot[T]) {
	if c.observer != nil {
		c.observer(s)
	}
}

func sameFilters(a, b map[string]any) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}
