// Package notify delivers user-visible notifications raised by the table
// bindings. Every remote-call failure ends here instead of propagating as an
// unhandled fault.
package notify

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/billyloki/module-shop-admin/pkg/types"
)

// Level is the severity of a notification.
type Level int

// Notification levels.
const (
	LevelInfo Level = iota
	LevelError
)

func (l Level) String() string {
	if l == LevelError {
		return "error"
	}
	return "info"
}

// GenericFailureMessage is shown for transport failures, whose details are
// not meaningful to the user.
const GenericFailureMessage = "request failed, please try again"

// Notification is one message shown to the user.
type Notification struct {
	Level   Level
	Message string
}

// Notifier shows notifications to the user.
type Notifier interface {
	Notify(n Notification)
}

// Func adapts a function to the Notifier interface.
type Func func(n Notification)

// Notify calls f(n).
func (f Func) Notify(n Notification) { f(n) }

// Discard drops every notification.
var Discard Notifier = Func(func(Notification) {})

// FromError maps an error to the notification shown for it. Remote failures
// keep the backend's message verbatim; validation errors show their own
// message; anything else gets the generic transport message.
func FromError(err error) Notification {
	var remote *types.RemoteFailure
	if errors.As(err, &remote) {
		return Notification{Level: LevelError, Message: remote.Message}
	}
	var invalid *types.ValidationError
	if errors.As(err, &invalid) {
		return Notification{Level: LevelError, Message: invalid.Error()}
	}
	return Notification{Level: LevelError, Message: GenericFailureMessage}
}

// Error notifies n about err. A nil err or nil n is a no-op.
func Error(n Notifier, err error) {
	if n == nil || err == nil {
		return
	}
	n.Notify(FromError(err))
}

// Info notifies n with an informational message.
func Info(n Notifier, msg string) {
	if n == nil {
		return
	}
	n.Notify(Notification{Level: LevelInfo, Message: msg})
}

// Log writes notifications to a zerolog logger.
type Log struct {
	Logger zerolog.Logger
}

// Notify logs n at the matching level.
func (l Log) Notify(n Notification) {
	if n.Level == LevelError {
		l.Logger.Error().Msg(n.Message)
		return
	}
	l.Logger.Info().Msg(n.Message)
}

// Recorder keeps notifications in memory. It is safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// Notify appends n.
func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// All returns a copy of the recorded notifications, oldest first.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Last returns the most recent notification.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}

// Messages returns the recorded messages, oldest first.
func (r *Recorder) Messages() []string {
	all := r.All()
	out := make([]string, len(all))
	for i, n := range all {
		out[i] = n.Message
	}
	return out
}

// Reset drops all recorded notifications.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
}
