package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/billyloki/module-shop-admin/pkg/editor"
	"github.com/billyloki/module-shop-admin/pkg/gateway"
	"github.com/billyloki/module-shop-admin/pkg/notify"
	"github.com/billyloki/module-shop-admin/pkg/shopadmin"
	"github.com/billyloki/module-shop-admin/pkg/types"
)

func newLookupCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Show the country and region lists used by the freight editor",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "countries",
		Short: "List countries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			notes := &notify.Recorder{}
			countries := editor.NewOptions(gateway.NewLookup(client, shopadmin.PathCountries, ""), editor.WithNotifier(notes))
			if err := countries.Load(cmd.Context()); err != nil {
				return report(err, notes)
			}
			return a.printOptions(cmd.OutOrStdout(), countries.Items())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "provinces <countryID>",
		Short: "List the regions of a country as a tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := parseID("countryId", args[0]); err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			notes := &notify.Recorder{}
			provinces := editor.NewCascade(gateway.NewLookup(client, shopadmin.PathProvinces, shopadmin.ProvinceParentKey), editor.WithNotifier(notes))
			if err := provinces.Select(cmd.Context(), args[0]); err != nil {
				return report(err, notes)
			}
			return a.printOptions(cmd.OutOrStdout(), provinces.Children())
		},
	})
	return cmd
}

func (a *app) printOptions(w io.Writer, opts []types.Option) error {
	if a.flags.jsonMode {
		if opts == nil {
			opts = []types.Option{}
		}
		return printJSON(w, opts)
	}
	if len(opts) == 0 {
		fmt.Fprintln(w, "None.")
		return nil
	}
	writeTree(w, opts, 0)
	return nil
}

// writeTree prints one option per line, children indented under parents.
func writeTree(w io.Writer, opts []types.Option, depth int) {
	for _, o := range opts {
		line := fmt.Sprintf("%s%d  %s", strings.Repeat("  ", depth), o.ID, o.Name)
		if o.Level != nil {
			line += fmt.Sprintf(" (%s)", *o.Level)
		}
		fmt.Fprintln(w, line)
		writeTree(w, o.Children, depth+1)
	}
}
