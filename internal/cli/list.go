package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/billyloki/module-shop-admin/pkg/grid"
	"github.com/billyloki/module-shop-admin/pkg/shopadmin"
	"github.com/billyloki/module-shop-admin/pkg/types"
)

// listFlags are the query flags of the list commands.
type listFlags struct {
	page    int
	size    int
	sort    string
	desc    bool
	keyword string
}

func (f *listFlags) register(cmd *cobra.Command, keywordHelp string) {
	fl := cmd.Flags()
	fl.IntVar(&f.page, "page", 1, "page number")
	fl.IntVar(&f.size, "size", 0, "rows per page (default: page_size from config)")
	fl.StringVar(&f.sort, "sort", "", "sort field (default: sort_predicate from config)")
	fl.BoolVar(&f.desc, "desc", false, "sort descending")
	fl.StringVar(&f.keyword, "keyword", "", keywordHelp)
}

// options returns the screen options for cfg with the flags set on cmd
// applied on top. --sort alone sorts ascending; --desc alone reverses the
// configured column.
func (f *listFlags) options(cmd *cobra.Command, cfg types.Config) []shopadmin.Option {
	opts := shopadmin.FromConfig(cfg)
	if f.size > 0 {
		opts = append(opts, shopadmin.WithPageSize(f.size))
	}
	switch {
	case cmd.Flags().Changed("sort"):
		opts = append(opts, shopadmin.WithDefaultSort(f.sort, f.desc))
	case cmd.Flags().Changed("desc"):
		opts = append(opts, shopadmin.WithDefaultSort(cfg.SortPredicate, f.desc))
	}
	return opts
}

// loadPage mounts g, applies the keyword filter under filterKey and moves
// to the requested page.
func loadPage[T any](ctx context.Context, g *grid.Controller[T], f *listFlags, filterKey string) error {
	if f.page < 1 {
		return types.NewValidationError("page", types.ErrInvalidPage)
	}
	var err error
	if f.keyword != "" {
		err = g.ApplyFilters(ctx, map[string]any{filterKey: f.keyword})
	} else {
		err = g.Mount(ctx)
	}
	if err != nil || f.page == 1 {
		return err
	}
	q := g.Query()
	order := grid.Ascend
	if q.SortDescending {
		order = grid.Descend
	}
	return g.OnTableChange(ctx, grid.TableChange{
		Pagination: grid.Pagination{Current: f.page, PageSize: q.PageSize},
		Filters:    q.Filters,
		Sorter:     grid.Sorter{Field: q.SortPredicate, Order: order},
	})
}

// findRow walks the pages of a mounted grid until it finds the row with
// the given key.
func findRow[T any](ctx context.Context, g *grid.Controller[T], key func(T) string, id string) (T, bool, error) {
	for {
		snap := g.Snapshot()
		for _, rec := range snap.Result.Items() {
			if key(rec) == id {
				return rec, true, nil
			}
		}
		if snap.Query.PageNumber >= snap.PageCount {
			var zero T
			return zero, false, nil
		}
		if err := g.NextPage(ctx); err != nil {
			var zero T
			return zero, false, err
		}
	}
}
