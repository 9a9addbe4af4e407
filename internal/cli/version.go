package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/billyloki/module-shop-admin/pkg/shopadmin"
)

const modulePath = "github.com/billyloki/module-shop-admin"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the shopadmin version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "shopadmin v%s\nmodule: %s\n", shopadmin.Version, modulePath)
			return nil
		},
	}
}
