package cli

import (
	"github.com/spf13/cobra"

	"github.com/billyloki/module-shop-admin/internal/tui"
	"github.com/billyloki/module-shop-admin/pkg/shopadmin"
)

func newBrowseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Open the interactive category list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, notes, err := a.categoryList(shopadmin.FromConfig(a.cfg)...)
			if err != nil {
				return err
			}
			if err := tui.Run(cmd.Context(), list, notes); err != nil {
				return systemError("browse: %w", err)
			}
			return nil
		},
	}
}
