// Package cli implements the shopadmin command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/billyloki/module-shop-admin/internal/logging"
	"github.com/billyloki/module-shop-admin/pkg/gateway"
	"github.com/billyloki/module-shop-admin/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	apiURL    string
	logLevel  string
	jsonMode  bool
}

// app is the state shared by the commands of one invocation.
type app struct {
	flags     rootFlags
	v         *viper.Viper
	cfg       types.Config
	configDir string
	logger    *logging.Logger
}

// NewRootCmd creates the top-level "shopadmin" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "shopadmin",
		Short: "Browse and edit shop back-office tables",
		Long: "shopadmin drives the paginated category list and freight template\n" +
			"destination pricing of a shop back-office API.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.logger != nil {
				return a.logger.Close()
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&a.flags.apiURL, "api-url", "", "API base URL (overrides api_base_url)")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	pf.BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newConfigCmd(a))
	root.AddCommand(newCategoryCmd(a))
	root.AddCommand(newFreightCmd(a))
	root.AddCommand(newLookupCmd(a))
	root.AddCommand(newServeCmd(a))
	root.AddCommand(newBrowseCmd(a))

	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	return run(NewRootCmd(), os.Args[1:], os.Stderr)
}

func run(root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitCode(err)
	}
	return exitSuccess
}

// exitCode maps an error to an exit status: transport, storage and I/O
// failures are system errors, everything else is a usage or remote error.
func exitCode(err error) int {
	var sys *sysError
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, types.ErrTransport), errors.As(err, &sys):
		return exitSysError
	default:
		return exitUserError
	}
}

// sysError marks failures of the local environment.
type sysError struct {
	err error
}

func (e *sysError) Error() string { return e.err.Error() }
func (e *sysError) Unwrap() error { return e.err }

func systemError(format string, args ...any) error {
	return &sysError{err: fmt.Errorf(format, args...)}
}

// setup loads the configuration and builds the logger before any command.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}
	dir, err := resolveConfigDir(a.flags.configDir)
	if err != nil {
		return systemError("resolve config dir: %w", err)
	}
	a.configDir = dir

	v, cfg, err := loadConfig(dir, cmd)
	if err != nil {
		return err
	}
	a.v, a.cfg = v, cfg

	a.logger, err = logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	return nil
}

// client returns an API client for the configured base URL.
func (a *app) client() (*gateway.Client, error) {
	return gateway.New(a.cfg.APIBaseURL,
		gateway.WithTimeout(a.cfg.Timeout),
		gateway.WithLogger(a.logger.With().Str("component", "gateway").Logger()),
	)
}
