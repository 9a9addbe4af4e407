package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
		check   func(t *testing.T, l *Logger, buf *bytes.Buffer)
	}{
		{
			name: "json output filters below level",
			opts: Options{Level: "warn", Format: FormatJSON},
			check: func(t *testing.T, l *Logger, buf *bytes.Buffer) {
				l.Info().Msg("hidden")
				l.Warn().Str("path", "/category/delete").Msg("double-encoded response")
				assert.NotContains(t, buf.String(), "hidden")
				assert.Contains(t, buf.String(), `"path":"/category/delete"`)
			},
		},
		{
			name: "console output is human readable",
			opts: Options{Format: FormatConsole},
			check: func(t *testing.T, l *Logger, buf *bytes.Buffer) {
				l.Info().Msg("listening")
				assert.Contains(t, buf.String(), "listening")
				assert.NotContains(t, buf.String(), `"message"`)
			},
		},
		{
			name: "default level is info",
			opts: Options{Format: FormatJSON},
			check: func(t *testing.T, l *Logger, buf *bytes.Buffer) {
				assert.Equal(t, zerolog.InfoLevel, l.GetLevel())
			},
		},
		{
			name:    "unknown level",
			opts:    Options{Level: "loud"},
			wantErr: true,
		},
		{
			name:    "unknown format",
			opts:    Options{Format: "xml"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.opts.Writer = &buf
			l, err := New(tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer l.Close()
			if tt.check != nil {
				tt.check(t, l, &buf)
			}
		})
	}
}

func TestNewWithPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shopadmin.log")
	l, err := New(Options{Path: path, Format: FormatJSON})
	require.NoError(t, err)

	l.Info().Msg("first")
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"first"`)
}
