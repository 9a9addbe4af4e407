package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/billyloki/module-shop-admin/internal/paths"
	"github.com/billyloki/module-shop-admin/pkg/types"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config.yaml",
		Long:  "Create the configuration directory and a config.yaml with default values. An existing file is kept.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(a.configDir, 0o755); err != nil {
				return systemError("create config directory: %w", err)
			}
			path := filepath.Join(a.configDir, paths.ConfigFileName)
			written, err := writeConfigIfMissing(path, types.DefaultConfig())
			if err != nil {
				return systemError("write config: %w", err)
			}
			if written {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Kept existing %s\n", path)
			}
			return nil
		},
	}
}
