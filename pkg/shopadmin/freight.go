package shopadmin

import (
	"context"
	"fmt"
	"strconv"

	"github.com/billyloki/module-shop-admin/pkg/editor"
	"github.com/billyloki/module-shop-admin/pkg/gateway"
	"github.com/billyloki/module-shop-admin/pkg/grid"
	"github.com/billyloki/module-shop-admin/pkg/notify"
	"github.com/billyloki/module-shop-admin/pkg/types"
)

// DestinationEndpoints are the price destination routes.
var DestinationEndpoints = gateway.Endpoints{
	Grid:   PathDestinationGrid,
	Create: PathDestinationAdd,
	Update: PathDestinationEdit,
	Delete: PathDestinationDelete,
}

// DestinationEditor edits price destinations through their form values.
type DestinationEditor = editor.Editor[types.PriceDestination, types.PriceDestinationForm]

// FreightSettings is the destination pricing screen of one freight template.
type FreightSettings struct {
	TemplateID int64
	Grid       *grid.Controller[types.PriceDestination]
	Countries  *editor.Options
	Provinces  *editor.Cascade
	Editor     *DestinationEditor

	resource *gateway.Resource[types.PriceDestination]
	settings
}

// NewFreightSettings wires the destination grid of templateID, the country
// and province lookups, and the modal editor. Every request carries the
// template id as freightTemplateId.
func NewFreightSettings(client *gateway.Client, templateID int64, opts ...Option) (*FreightSettings, error) {
	if templateID <= 0 {
		return nil, types.NewValidationError(types.FreightTemplateScopeKey, types.ErrInvalidID)
	}
	s := newSettings(opts)
	scope := map[string]any{types.FreightTemplateScopeKey: templateID}
	res := gateway.NewResource[types.PriceDestination](client, DestinationEndpoints, scope)

	gridOpts := []grid.Option[types.PriceDestination]{
		grid.WithPageSize[types.PriceDestination](s.pageSize),
		grid.WithDefaultSort[types.PriceDestination](s.sortPredicate, s.sortDescending),
		grid.WithNotifier[types.PriceDestination](s.notifier),
		grid.WithLogger[types.PriceDestination](s.logger),
	}
	if s.destinationObserver != nil {
		gridOpts = append(gridOpts, grid.WithObserver(s.destinationObserver))
	}
	g := grid.New[types.PriceDestination](res, gridOpts...)

	editorOpts := []editor.Option{editor.WithNotifier(s.notifier), editor.WithLogger(s.logger)}
	countries := editor.NewOptions(gateway.NewLookup(client, PathCountries, ""), editorOpts...)
	provinces := editor.NewCascade(gateway.NewLookup(client, PathProvinces, ProvinceParentKey), editorOpts...)

	ed := editor.New(editor.Config[types.PriceDestination, types.PriceDestinationForm]{
		Saver:     res,
		Key:       types.PriceDestination.Key,
		Form:      types.PriceDestination.Form,
		Parent:    func(d types.PriceDestination) string { return d.Form().ParentKey() },
		SetParent: setCountry,
		Cascade:   provinces,
		Reload:    []editor.Reloader{countries},
		Refresher: g,
	}, editorOpts...)

	return &FreightSettings{
		TemplateID: templateID,
		Grid:       g,
		Countries:  countries,
		Provinces:  provinces,
		Editor:     ed,
		resource:   res,
		settings:   s,
	}, nil
}

// setCountry stores the selected country and clears the province, which
// belonged to the previous country.
func setCountry(form *types.PriceDestinationForm, countryID string) error {
	form.StateOrProvinceID = nil
	if countryID == "" {
		form.CountryID = 0
		return nil
	}
	id, err := strconv.ParseInt(countryID, 10, 64)
	if err != nil || id <= 0 {
		return types.NewValidationError("countryId", types.ErrInvalidID)
	}
	form.CountryID = id
	return nil
}

// Mount loads the country list and the first page. Both run even when one
// fails; the first error is returned.
func (f *FreightSettings) Mount(ctx context.Context) error {
	errCountries := f.Countries.Load(ctx)
	errGrid := f.Grid.Mount(ctx)
	if errCountries != nil {
		return errCountries
	}
	return errGrid
}

// Delete removes a destination and refreshes the current page.
func (f *FreightSettings) Delete(ctx context.Context, id string) error {
	if err := f.resource.Delete(ctx, id); err != nil {
		f.logger.Debug().Err(err).Str("id", id).Msg("delete failed")
		notify.Error(f.notifier, err)
		return err
	}
	notify.Info(f.notifier, fmt.Sprintf("Deleted destination price %s", id))
	return f.Grid.Search(ctx)
}

// Find returns the row of the current page with the given id.
func (f *FreightSettings) Find(id string) (types.PriceDestination, bool) {
	for _, d := range f.Grid.Snapshot().Result.Items() {
		if d.Key() == id {
			return d, true
		}
	}
	return types.PriceDestination{}, false
}
