package types

import (
	"errors"
	"net/url"
	"time"
)

// Config holds the client settings loaded from config.yaml and the
// environment.
type Config struct {
	APIBaseURL     string        `json:"api_base_url" yaml:"api_base_url" mapstructure:"api_base_url"`
	Timeout        time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
	PageSize       int           `json:"page_size" yaml:"page_size" mapstructure:"page_size"`
	SortPredicate  string        `json:"sort_predicate" yaml:"sort_predicate" mapstructure:"sort_predicate"`
	SortDescending bool          `json:"sort_descending" yaml:"sort_descending" mapstructure:"sort_descending"`
	LogLevel       string        `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
	LogFormat      string        `json:"log_format" yaml:"log_format" mapstructure:"log_format"`
	DataDir        string        `json:"data_dir,omitempty" yaml:"data_dir,omitempty" mapstructure:"data_dir"`
}

// Supported log formats.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// Config validation errors.
var (
	ErrBaseURLEmpty     = errors.New("api base url must not be empty")
	ErrBaseURLInvalid   = errors.New("api base url must be an absolute http(s) url")
	ErrTimeoutInvalid   = errors.New("timeout must be positive")
	ErrLogLevelUnknown  = errors.New("unknown log level")
	ErrLogFormatUnknown = errors.New("unknown log format")
)

// knownLogLevels lists the levels that Validate accepts.
var knownLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// DefaultConfig returns the settings used when config.yaml is absent.
func DefaultConfig() Config {
	return Config{
		APIBaseURL:     "http://127.0.0.1:8088/api",
		Timeout:        10 * time.Second,
		PageSize:       DefaultPageSize,
		SortPredicate:  DefaultSortPredicate,
		SortDescending: true,
		LogLevel:       "info",
		LogFormat:      LogFormatConsole,
	}
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.APIBaseURL == "" {
		return ErrBaseURLEmpty
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrBaseURLInvalid
	}
	if c.Timeout <= 0 {
		return ErrTimeoutInvalid
	}
	if c.PageSize <= 0 {
		return ErrInvalidPageSize
	}
	if !knownLogLevels[c.LogLevel] {
		return ErrLogLevelUnknown
	}
	if c.LogFormat != LogFormatConsole && c.LogFormat != LogFormatJSON {
		return ErrLogFormatUnknown
	}
	return nil
}
