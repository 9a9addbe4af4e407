// Package logging builds the zerolog loggers used by the shopadmin CLI, the
// stub API and the table bindings.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Log output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

const filePermission = 0o664

// ErrUnknownFormat is returned for a format other than console or json.
var ErrUnknownFormat = errors.New("unknown log format")

// Options configures a logger.
type Options struct {
	Level  string    // zerolog level name; empty means info.
	Format string    // FormatConsole or FormatJSON; empty means console.
	Writer io.Writer // Defaults to os.Stderr.
	Path   string    // When set, logs are appended to this file instead of Writer.
}

// Logger is a built logger plus the file it writes to, if any.
type Logger struct {
	zerolog.Logger
	file *os.File
}

// Close releases the log file. It is a no-op for writer-backed loggers.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// New builds a logger from opts.
func New(opts Options) (*Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	out := &Logger{}
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	if opts.Path != "" {
		out.file, err = os.OpenFile(opts.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePermission)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		w = zerolog.SyncWriter(out.file)
	}

	switch strings.ToLower(opts.Format) {
	case "", FormatConsole:
		if opts.Path == "" {
			w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
		}
	case FormatJSON:
	default:
		out.Close()
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
	}

	out.Logger = zerolog.New(w).Level(level).With().Timestamp().Logger()
	return out, nil
}

// ParseLevel parses a level name; empty means info.
func ParseLevel(name string) (zerolog.Level, error) {
	if name == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(name))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("parsing log level %q: %w", name, err)
	}
	return level, nil
}
