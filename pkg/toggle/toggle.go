// Package toggle flips boolean fields of table rows optimistically.
//
// The local value changes first, then the backend is asked to store it. On
// success the owning table is refreshed; on failure the local value is
// restored and the failure is notified. Toggles on the same record run one
// at a time.
package toggle

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/billyloki/module-shop-admin/pkg/notify"
	"github.com/billyloki/module-shop-admin/pkg/types"
)

// Flagger stores one boolean field of a record. gateway.Resource implements it.
type Flagger interface {
	SetFlag(ctx context.Context, id, field string, value bool) error
}

// Refresher refetches the table a record belongs to. grid.Controller
// implements it.
type Refresher interface {
	Search(ctx context.Context) error
}

// Field names a boolean field of T and how to read and write it.
type Field[T any] struct {
	Name string
	Get  func(rec *T) bool
	Set  func(rec *T, value bool)
}

// Option configures a Controller.
type Option[T any] func(*Controller[T])

// WithField registers a toggleable field.
func WithField[T any](f Field[T]) Option[T] {
	return func(c *Controller[T]) { c.fields[f.Name] = f }
}

// WithRefresher sets the table refreshed after a confirmed toggle.
func WithRefresher[T any](r Refresher) Option[T] {
	return func(c *Controller[T]) { c.refresher = r }
}

// WithNotifier sets where failures are reported.
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

// Controller toggles boolean fields of T records. It is safe for concurrent
// use.
type Controller[T any] struct {
	flagger   Flagger
	key       func(T) string
	fields    map[string]Field[T]
	refresher Refresher
	notifier  notify.Notifier
	logger    zerolog.Logger
	locks     keyedMutex
}

// New returns a controller storing flags through flagger. key returns the
// record identifier sent to the backend.
func New[T any](flagger Flagger, key func(T) string, opts ...Option[T]) *Controller[T] {
	c := &Controller[T]{
		flagger:  flagger,
		key:      key,
		fields:   make(map[string]Field[T]),
		notifier: notify.Discard,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fields returns the names of the registered fields.
func (c *Controller[T]) Fields() []string {
	names := make([]string, 0, len(c.fields))
	for name := range c.fields {
		names = append(names, name)
	}
	return names
}

// Toggle flips field on rec and stores the new value. rec holds the
// pre-toggle value again when the call fails. A failed table refresh after a
// confirmed toggle is reported by the table itself and not returned here.
func (c *Controller[T]) Toggle(ctx context.Context, rec *T, field string) error {
	f, ok := c.fields[field]
	if !ok {
		err := types.NewValidationError(field, types.ErrUnknownField)
		notify.Error(c.notifier, err)
		return err
	}

	id := c.key(*rec)
	unlock := c.locks.Lock(id)
	defer unlock()

	before := f.Get(rec)
	f.Set(rec, !before)

	if err := c.flagger.SetFlag(ctx, id, field, !before); err != nil {
		f.Set(rec, before)
		c.logger.Debug().Err(err).Str("id", id).Str("field", field).Msg("toggle rolled back")
		notify.Error(c.notifier, err)
		return err
	}

	if c.refresher != nil {
		if err := c.refresher.Search(ctx); err != nil {
			c.logger.Debug().Err(err).Str("id", id).Msg("refresh after toggle failed")
		}
	}
	return nil
}
