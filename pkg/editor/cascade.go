package editor

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/billyloki/module-shop-admin/pkg/notify"
	"github.com/billyloki/module-shop-admin/pkg/types"
)

// ChildLoader fetches the options under a parent. gateway.Lookup implements
// it.
type ChildLoader interface {
	Children(ctx context.Context, parentID string) ([]types.Option, error)
}

// ListLoader fetches a flat option list. gateway.Lookup implements it.
type ListLoader interface {
	List(ctx context.Context) ([]types.Option, error)
}

// Cascade is a child option list bound to a parent selection. The list is
// fetched only for the selected parent and cleared whenever the parent
// changes. It is safe for concurrent use.
type Cascade struct {
	loader ChildLoader
	settings
	group singleflight.Group

	mu       sync.Mutex
	parentID string
	children []types.Option
	loading  int
	seq      uint64
}

// NewCascade returns an empty cascade over loader.
func NewCascade(loader ChildLoader, opts ...Option) *Cascade {
	return &Cascade{loader: loader, settings: newSettings(opts)}
}

// Select sets the parent and replaces the child list. An empty parentID
// clears the list without a fetch. When selections overlap only the latest
// one is applied; loads for the same parent share one request, which a
// caller's cancellation does not abort for the others.
func (c *Cascade) Select(ctx context.Context, parentID string) error {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.parentID = parentID
	c.children = nil
	if parentID == "" {
		c.mu.Unlock()
		return nil
	}
	c.loading++
	c.mu.Unlock()

	// The shared load outlives any one caller; the loader's own timeout
	// bounds it.
	ch := c.group.DoChan(parentID, func() (any, error) {
		return c.loader.Children(context.WithoutCancel(ctx), parentID)
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		res = singleflight.Result{Err: ctx.Err()}
	}

	c.mu.Lock()
	c.loading--
	if seq != c.seq {
		c.mu.Unlock()
		c.logger.Debug().Str("parent", parentID).Msg("discarding superseded child list")
		return nil
	}
	if res.Err != nil {
		c.mu.Unlock()
		if ctx.Err() == nil {
			notify.Error(c.notifier, res.Err)
		}
		return res.Err
	}
	c.children = cloneOptions(res.Val.([]types.Option))
	n := len(c.children)
	c.mu.Unlock()
	c.logger.Debug().Str("parent", parentID).Bool("shared", res.Shared).Int("children", n).Msg("child list loaded")
	return nil
}

// Reload refetches the list of the current parent.
func (c *Cascade) Reload(ctx context.Context) error {
	return c.Select(ctx, c.ParentID())
}

// Clear drops the parent and the child list.
func (c *Cascade) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.parentID = ""
	c.children = nil
}

// ParentID returns the selected parent, empty when none.
func (c *Cascade) ParentID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.parentID
}

// Children returns a copy of the child list.
func (c *Cascade) Children() []types.Option {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneOptions(c.children)
}

// Loading reports whether a child fetch is in flight.
func (c *Cascade) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading > 0
}

// Options is a flat option list loaded on demand. It is safe for concurrent
// use.
type Options struct {
	loader ListLoader
	settings

	mu      sync.Mutex
	items   []types.Option
	loading int
	seq     uint64
}

// NewOptions returns an empty list over loader.
func NewOptions(loader ListLoader, opts ...Option) *Options {
	return &Options{loader: loader, settings: newSettings(opts)}
}

// Load fetches the list. A failed load keeps the previous items.
func (o *Options) Load(ctx context.Context) error {
	o.mu.Lock()
	o.seq++
	seq := o.seq
	o.loading++
	o.mu.Unlock()

	items, err := o.loader.List(ctx)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.loading--
	if seq != o.seq {
		return nil
	}
	if err != nil {
		notify.Error(o.notifier, err)
		return err
	}
	o.items = cloneOptions(items)
	return nil
}

// Reload is Load; it refreshes the cached list after a save.
func (o *Options) Reload(ctx context.Context) error {
	return o.Load(ctx)
}

// Items returns a copy of the list.
func (o *Options) Items() []types.Option {
	o.mu.Lock()
	defer o.mu.Unlock()
	return cloneOptions(o.items)
}

// Loading reports whether a fetch is in flight.
func (o *Options) Loading() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.loading > 0
}

// Find returns the option with the given id, searching nested children.
func Find(opts []types.Option, id int64) (types.Option, bool) {
	for _, o := range opts {
		if o.ID == id {
			return o, true
		}
		if found, ok := Find(o.Children, id); ok {
			return found, true
		}
	}
	return types.Option{}, false
}

func cloneOptions(opts []types.Option) []types.Option {
	if opts == nil {
		return nil
	}
	out := make([]types.Option, len(opts))
	for i, o := range opts {
		out[i] = o
		out[i].Children = cloneOptions(o.Children)
	}
	return out
}
