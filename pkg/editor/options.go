package editor

import (
	"github.com/rs/zerolog"

	"github.com/billyloki/module-shop-admin/pkg/notify"
)

// Option configures the notifier and logger of a Cascade, Options or Editor.
type Option func(*settings)

type settings struct {
	notifier notify.Notifier
	logger   zerolog.Logger
}

func newSettings(opts []Option) settings {
	s := settings{notifier: notify.Discard, logger: zerolog.Nop()}
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

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *settings) { s.logger = l }
}
