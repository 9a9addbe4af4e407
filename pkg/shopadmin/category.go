package shopadmin

import (
	"context"
	"fmt"

	"github.com/billyloki/module-shop-admin/pkg/gateway"
	"github.com/billyloki/module-shop-admin/pkg/grid"
	"github.com/billyloki/module-shop-admin/pkg/notify"
	"github.com/billyloki/module-shop-admin/pkg/toggle"
	"github.com/billyloki/module-shop-admin/pkg/types"
)

// CategoryEndpoints are the category list routes.
var CategoryEndpoints = gateway.Endpoints{
	Grid:   PathCategoryGrid,
	Delete: PathCategoryDelete,
	Toggle: PathCategorySwitch,
}

// IncludeInMenu is the inline switch of the category list.
var IncludeInMenu = toggle.Field[types.Category]{
	Name: types.CategoryFieldIncludeInMenu,
	Get:  func(c *types.Category) bool { return c.IncludeInMenu },
	Set:  func(c *types.Category, v bool) { c.IncludeInMenu = v },
}

// CategoryList is the catalog category screen.
type CategoryList struct {
	Grid   *grid.Controller[types.Category]
	Toggle *toggle.Controller[types.Category]

	resource *gateway.Resource[types.Category]
	settings
}

// NewCategoryList wires the category grid and its include-in-menu switch
// over client.
func NewCategoryList(client *gateway.Client, opts ...Option) *CategoryList {
	s := newSettings(opts)
	res := gateway.NewResource[types.Category](client, CategoryEndpoints, nil)

	gridOpts := []grid.Option[types.Category]{
		grid.WithPageSize[types.Category](s.pageSize),
		grid.WithDefaultSort[types.Category](s.sortPredicate, s.sortDescending),
		grid.WithNotifier[types.Category](s.notifier),
		grid.WithLogger[types.Category](s.logger),
	}
	if s.categoryObserver != nil {
		gridOpts = append(gridOpts, grid.WithObserver(s.categoryObserver))
	}
	g := grid.New[types.Category](res, gridOpts...)

	t := toggle.New(res, types.Category.Key,
		toggle.WithField(IncludeInMenu),
		toggle.WithRefresher[types.Category](g),
		toggle.WithNotifier[types.Category](s.notifier),
		toggle.WithLogger[types.Category](s.logger),
	)

	return &CategoryList{Grid: g, Toggle: t, resource: res, settings: s}
}

// Mount loads the first page.
func (l *CategoryList) Mount(ctx context.Context) error {
	return l.Grid.Mount(ctx)
}

// ToggleMenu flips IncludeInMenu on rec.
func (l *CategoryList) ToggleMenu(ctx context.Context, rec *types.Category) error {
	return l.Toggle.Toggle(ctx, rec, IncludeInMenu.Name)
}

// Delete removes a category, notifies the deletion and refreshes the current
// page. A failure is notified and the page is left as it is.
func (l *CategoryList) Delete(ctx context.Context, id string) error {
	if err := l.resource.Delete(ctx, id); err != nil {
		l.logger.Debug().Err(err).Str("id", id).Msg("delete failed")
		notify.Error(l.notifier, err)
		return err
	}
	notify.Info(l.notifier, fmt.Sprintf("Deleted category %s", id))
	return l.Grid.Search(ctx)
}

// Find returns the row of the current page with the given id.
func (l *CategoryList) Find(id string) (types.Category, bool) {
	for _, c := range l.Grid.Snapshot().Result.Items() {
		if c.Key() == id {
			return c, true
		}
	}
	return types.Category{}, false
}
