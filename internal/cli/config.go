// Config loading for the shopadmin CLI.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/billyloki/module-shop-admin/internal/paths"
	"github.com/billyloki/module-shop-admin/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "SHOPADMIN"
)

// Config keys.
const (
	cfgKeyAPIBaseURL     = "api_base_url"
	cfgKeyTimeout        = "timeout"
	cfgKeyPageSize       = "page_size"
	cfgKeySortPredicate  = "sort_predicate"
	cfgKeySortDescending = "sort_descending"
	cfgKeyLogLevel       = "log_level"
	cfgKeyLogFormat      = "log_format"
	cfgKeyDataDir        = "data_dir"
)

func resolveConfigDir(flag string) (string, error) {
	return paths.ResolveConfigDir(flag)
}

// loadConfig reads config.yaml from configDir, applies SHOPADMIN_*
// environment overrides and the --api-url and --log-level flags, and
// validates the result. A missing config.yaml is not an error.
func loadConfig(configDir string, cmd *cobra.Command) (*viper.Viper, types.Config, error) {
	def := types.DefaultConfig()
	v := viper.New()
	v.SetDefault(cfgKeyAPIBaseURL, def.APIBaseURL)
	v.SetDefault(cfgKeyTimeout, def.Timeout)
	v.SetDefault(cfgKeyPageSize, def.PageSize)
	v.SetDefault(cfgKeySortPredicate, def.SortPredicate)
	v.SetDefault(cfgKeySortDescending, def.SortDescending)
	v.SetDefault(cfgKeyLogLevel, def.LogLevel)
	v.SetDefault(cfgKeyLogFormat, def.LogFormat)
	v.SetDefault(cfgKeyDataDir, "")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if f := cmd.Flags().Lookup("api-url"); f != nil {
		if err := v.BindPFlag(cfgKeyAPIBaseURL, f); err != nil {
			return nil, types.Config{}, err
		}
	}
	if f := cmd.Flags().Lookup("log-level"); f != nil {
		if err := v.BindPFlag(cfgKeyLogLevel, f); err != nil {
			return nil, types.Config{}, err
		}
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, types.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, types.Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, types.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return v, cfg, nil
}

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long:  "Print config.yaml merged with defaults, SHOPADMIN_* variables and flags.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), a.cfg)
			}
			data, err := yaml.Marshal(a.cfg)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", filepath.Join(a.configDir, paths.ConfigFileName), data)
			return nil
		},
	}
}

// writeConfigIfMissing creates config.yaml with the default values. An
// existing file is left alone and reported as not written.
func writeConfigIfMissing(path string, cfg types.Config) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, err
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	header := []byte("# shopadmin configuration; SHOPADMIN_<KEY> environment variables override these values.\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return false, err
	}
	return true, nil
}
