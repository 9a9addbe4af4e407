package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/billyloki/module-shop-admin/pkg/notify"
	"github.com/billyloki/module-shop-admin/pkg/types"
)

// Mode is the purpose an editor was opened for.
type Mode int

// Editor modes.
const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// Saver stores form values. gateway.Resource implements it.
type Saver interface {
	Create(ctx context.Context, values any) error
	Update(ctx context.Context, id string, values any) error
}

// Reloader refreshes a cached list. *Options and *Cascade implement it.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Refresher refetches the owning table. grid.Controller implements it.
type Refresher interface {
	Search(ctx context.Context) error
}

// Config wires an Editor for records T edited through form values V.
type Config[T, V any] struct {
	Saver Saver
	// Key returns the identifier sent with updates.
	Key func(T) string
	// Form returns the form values of an existing record.
	Form func(T) V
	// Parent returns the cascade parent of a record; the child list is
	// fetched for it when the record is opened for edit.
	Parent func(T) string
	// SetParent stores a new parent in the values and clears the child field.
	SetParent func(values *V, parentID string) error
	Cascade   *Cascade
	// Reload lists the lookup caches refreshed after a successful save.
	Reload    []Reloader
	Refresher Refresher
	Validate  *validator.Validate
}

// State is a snapshot of an editor.
type State[T, V any] struct {
	Open       bool
	Mode       Mode
	Current    T
	Values     V
	Submitting bool
}

// Editor is the modal form state machine. It is safe for concurrent use.
type Editor[T, V any] struct {
	cfg Config[T, V]
	settings

	mu         sync.Mutex
	open       bool
	mode       Mode
	current    T
	values     V
	submitting bool
	gen        uint64 // bumped by every open and cancel
}

// New returns a closed editor.
func New[T, V any](cfg Config[T, V], opts ...Option) *Editor[T, V] {
	if cfg.Validate == nil {
		cfg.Validate = NewValidator()
	}
	return &Editor[T, V]{cfg: cfg, settings: newSettings(opts)}
}

// OpenForCreate opens the editor with empty values and clears the cascade.
// A save still in flight from an earlier modal no longer affects the editor.
func (e *Editor[T, V]) OpenForCreate() {
	e.mu.Lock()
	var zeroT T
	var zeroV V
	e.nextLocked()
	e.open = true
	e.mode = ModeCreate
	e.current = zeroT
	e.values = zeroV
	e.mu.Unlock()
	if e.cfg.Cascade != nil {
		e.cfg.Cascade.Clear()
	}
}

// OpenForEdit opens the editor on rec and loads the child list of its
// parent. The editor stays open when that load fails.
func (e *Editor[T, V]) OpenForEdit(ctx context.Context, rec T) error {
	e.mu.Lock()
	e.nextLocked()
	e.open = true
	e.mode = ModeEdit
	e.current = rec
	if e.cfg.Form != nil {
		e.values = e.cfg.Form(rec)
	}
	e.mu.Unlock()

	if e.cfg.Cascade == nil || e.cfg.Parent == nil {
		return nil
	}
	return e.cfg.Cascade.Select(ctx, e.cfg.Parent(rec))
}

// ChangeParent selects a new parent while open: the child field is cleared
// and the child list is refetched, or emptied without a fetch when parentID
// is empty.
func (e *Editor[T, V]) ChangeParent(ctx context.Context, parentID string) error {
	e.mu.Lock()
	if !e.open {
		e.mu.Unlock()
		return types.ErrEditorClosed
	}
	if e.cfg.SetParent != nil {
		if err := e.cfg.SetParent(&e.values, parentID); err != nil {
			e.mu.Unlock()
			notify.Error(e.notifier, err)
			return err
		}
	}
	e.mu.Unlock()

	if e.cfg.Cascade == nil {
		return nil
	}
	return e.cfg.Cascade.Select(ctx, parentID)
}

// Cancel closes the editor, keeping nothing. A save in flight runs to
// completion but leaves the editor alone.
func (e *Editor[T, V]) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextLocked()
	e.closeLocked()
}

// Submit validates values and saves them: an update in edit mode, a create
// otherwise. On success the editor closes, the lookup caches reload and the
// owning table refreshes. On failure the editor stays open with values and
// the failure is notified. A submit while another is in flight returns
// ErrSubmitInProgress and is not notified. When the modal was cancelled or
// reopened meanwhile, the outcome is still notified and a success still
// refreshes the table, but the editor state is left to the new modal.
func (e *Editor[T, V]) Submit(ctx context.Context, values V) error {
	e.mu.Lock()
	if !e.open {
		e.mu.Unlock()
		return types.ErrEditorClosed
	}
	if e.submitting {
		e.mu.Unlock()
		return types.ErrSubmitInProgress
	}
	e.values = values
	if err := e.validate(values); err != nil {
		e.mu.Unlock()
		notify.Error(e.notifier, err)
		return err
	}
	e.submitting = true
	gen := e.gen
	mode := e.mode
	current := e.current
	e.mu.Unlock()

	var err error
	if mode == ModeEdit {
		err = e.cfg.Saver.Update(ctx, e.cfg.Key(current), values)
	} else {
		err = e.cfg.Saver.Create(ctx, values)
	}

	e.mu.Lock()
	live := gen == e.gen
	if live {
		e.submitting = false
	}
	if err != nil {
		e.mu.Unlock()
		e.logger.Debug().Err(err).Stringer("mode", mode).Bool("stale", !live).Msg("submit failed")
		notify.Error(e.notifier, err)
		return err
	}
	if live {
		e.closeLocked()
	} else {
		e.logger.Debug().Stringer("mode", mode).Msg("save settled after its modal closed")
	}
	e.mu.Unlock()

	for _, r := range e.cfg.Reload {
		if err := r.Reload(ctx); err != nil {
			e.logger.Debug().Err(err).Msg("reloading lookup after save")
		}
	}
	if e.cfg.Refresher != nil {
		if err := e.cfg.Refresher.Search(ctx); err != nil {
			e.logger.Debug().Err(err).Msg("refreshing table after save")
		}
	}
	return nil
}

// State returns a snapshot of the editor.
func (e *Editor[T, V]) State() State[T, V] {
	e.mu.Lock()
	defer e.mu.Unlock()
	return State[T, V]{
		Open:       e.open,
		Mode:       e.mode,
		Current:    e.current,
		Values:     e.values,
		Submitting: e.submitting,
	}
}

// nextLocked starts a new modal generation; saves of older ones no longer
// touch the editor.
func (e *Editor[T, V]) nextLocked() {
	e.gen++
	e.submitting = false
}

func (e *Editor[T, V]) closeLocked() {
	var zeroT T
	var zeroV V
	e.open = false
	e.mode = ModeCreate
	e.current = zeroT
	e.values = zeroV
}

// validate runs struct validation on values. Non-struct values are not
// validated.
func (e *Editor[T, V]) validate(values V) error {
	err := e.cfg.Validate.Struct(values)
	if err == nil {
		return nil
	}
	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &types.ValidationError{Message: err.Error(), Err: err}
	}
	fe := fieldErrs[0]
	return &types.ValidationError{Field: fe.Field(), Message: fieldMessage(fe), Err: err}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed the %s check", fe.Tag())
	}
}
