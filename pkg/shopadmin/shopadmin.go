// Package shopadmin composes the table bindings into the two back-office
// screens: the catalog category list and the freight template destination
// settings.
package shopadmin

import (
	"github.com/rs/zerolog"

	"github.com/billyloki/module-shop-admin/pkg/grid"
	"github.com/billyloki/module-shop-admin/pkg/notify"
	"github.com/billyloki/module-shop-admin/pkg/types"
)

// Version is the shopadmin release.
const Version = "0.3.0"

// API paths, relative to the client base URL.
const (
	PathCategoryGrid      = "/category/grid"
	PathCategorySwitch    = "/category/switch"
	PathCategoryDelete    = "/category/delete"
	PathCountries         = "/system/countries"
	PathProvinces         = "/system/provinces"
	PathDestinationGrid   = "/price-destination/grid"
	PathDestinationAdd    = "/price-destination/add"
	PathDestinationEdit   = "/price-destination/edit"
	PathDestinationDelete = "/price-destination/delete"
)

// ProvinceParentKey is the request key naming the country of a province
// lookup.
const ProvinceParentKey = "countryId"

// Option configures a screen.
type Option func(*settings)

type settings struct {
	notifier       notify.Notifier
	logger         zerolog.Logger
	pageSize       int
	sortPredicate  string
	sortDescending bool

	categoryObserver    func(grid.Snapshot[types.Category])
	destinationObserver func(grid.Snapshot[types.PriceDestination])
}

func newSettings(opts []Option) settings {
	s := settings{
		notifier:       notify.Discard,
		logger:         zerolog.Nop(),
		pageSize:       types.DefaultPageSize,
		sortPredicate:  types.DefaultSortPredicate,
		sortDescending: true,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithNotifier sets where failures are reported.
func WithNotifier(n notify.Notifier) Option {
	return func(s *settings) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithLogger sets the logger shared by the screen's controllers.
func WithLogger(l zerolog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithPageSize sets the rows per page.
func WithPageSize(size int) Option {
	return func(s *settings) {
		if size > 0 {
			s.pageSize = size
		}
	}
}

// WithDefaultSort sets the sort applied at mount.
func WithDefaultSort(predicate string, descending bool) Option {
	return func(s *settings) {
		s.sortPredicate = predicate
		s.sortDescending = descending
	}
}

// WithCategoryObserver receives every category grid snapshot.
func WithCategoryObserver(fn func(grid.Snapshot[types.Category])) Option {
	return func(s *settings) { s.categoryObserver = fn }
}

// WithDestinationObserver receives every destination grid snapshot.
func WithDestinationObserver(fn func(grid.Snapshot[types.PriceDestination])) Option {
	return func(s *settings) { s.destinationObserver = fn }
}

// FromConfig maps the client config onto screen options.
func FromConfig(cfg types.Config) []Option {
	return []Option{
		WithPageSize(cfg.PageSize),
		WithDefaultSort(cfg.SortPredicate, cfg.SortDescending),
	}
}
