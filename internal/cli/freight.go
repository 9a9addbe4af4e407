package cli

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/billyloki/module-shop-admin/pkg/editor"
	"github.com/billyloki/module-shop-admin/pkg/notify"
	"github.com/billyloki/module-shop-admin/pkg/shopadmin"
	"github.com/billyloki/module-shop-admin/pkg/types"
)

func newFreightCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "freight",
		Short: "Manage destination prices of a freight template",
	}
	cmd.AddCommand(newFreightListCmd(a))
	cmd.AddCommand(newFreightAddCmd(a))
	cmd.AddCommand(newFreightEditCmd(a))
	cmd.AddCommand(newFreightDeleteCmd(a))
	return cmd
}

func parseID(field, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, types.NewValidationError(field, types.ErrInvalidID)
	}
	return id, nil
}

// freightSettings builds the destination screen of the template named by arg.
func (a *app) freightSettings(arg string, opts ...shopadmin.Option) (*shopadmin.FreightSettings, *notify.Recorder, error) {
	templateID, err := parseID("templateId", arg)
	if err != nil {
		return nil, nil, err
	}
	client, err := a.client()
	if err != nil {
		return nil, nil, err
	}
	notes := &notify.Recorder{}
	opts = append(opts,
		shopadmin.WithNotifier(notes),
		shopadmin.WithLogger(a.logger.With().Str("screen", "freight").Int64("template", templateID).Logger()),
	)
	fs, err := shopadmin.NewFreightSettings(client, templateID, opts...)
	if err != nil {
		return nil, nil, err
	}
	return fs, notes, nil
}

func newFreightListCmd(a *app) *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:   "list <templateID>",
		Short: "Show one page of destination prices",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, notes, err := a.freightSettings(args[0], f.options(cmd, a.cfg)...)
			if err != nil {
				return err
			}
			if err := loadPage(cmd.Context(), fs.Grid, &f, types.DestinationKeywordFilter); err != nil {
				return report(err, notes)
			}

			snap := fs.Grid.Snapshot()
			out := cmd.OutOrStdout()
			if a.flags.jsonMode {
				return printJSON(out, pageOf(snap))
			}
			items := snap.Result.Items()
			if len(items) == 0 {
				fmt.Fprintln(out, "No destinations found.")
				return nil
			}
			rows := make([][]string, 0, len(items))
			for _, d := range items {
				region := d.StateOrProvinceName
				if region == "" {
					region = "*"
				}
				rows = append(rows, []string{
					d.Key(),
					d.CountryName,
					region,
					d.MinOrderSubtotal.StringFixed(2),
					d.ShippingPrice.StringFixed(2),
					yesNo(d.IsEnabled),
					truncate(d.Note, 30),
				})
			}
			printTable(out, []string{"ID", "COUNTRY", "REGION", "MIN SUBTOTAL", "PRICE", "ENABLED", "NOTE"}, rows)
			printFooter(out, snap)
			return nil
		},
	}
	f.register(cmd, "filter by country or region name")
	return cmd
}

// formFlags are the editable destination fields.
type formFlags struct {
	country     int64
	province    int64
	minSubtotal string
	price       string
	note        string
	enabled     bool
}

func (f *formFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.Int64Var(&f.country, "country", 0, "country id")
	fl.Int64Var(&f.province, "province", 0, "state or province id (0 for the whole country)")
	fl.StringVar(&f.minSubtotal, "min-subtotal", "0", "minimum order subtotal")
	fl.StringVar(&f.price, "price", "0", "shipping price")
	fl.StringVar(&f.note, "note", "", "note")
	fl.BoolVar(&f.enabled, "enabled", true, "whether the price applies")
}

// apply copies the flags changed on cmd into form. The country is handled
// by the caller since changing it goes through the editor cascade.
func (f *formFlags) apply(cmd *cobra.Command, form *types.PriceDestinationForm) error {
	changed := cmd.Flags().Changed
	if changed("province") {
		if f.province == 0 {
			form.StateOrProvinceID = nil
		} else {
			id := f.province
			form.StateOrProvinceID = &id
		}
	}
	if changed("min-subtotal") {
		v, err := decimal.NewFromString(f.minSubtotal)
		if err != nil {
			return &types.ValidationError{Field: "minOrderSubtotal", Message: "must be a number"}
		}
		form.MinOrderSubtotal = v
	}
	if changed("price") {
		v, err := decimal.NewFromString(f.price)
		if err != nil {
			return &types.ValidationError{Field: "shippingPrice", Message: "must be a number"}
		}
		form.ShippingPrice = v
	}
	if changed("note") {
		form.Note = f.note
	}
	if changed("enabled") {
		form.IsEnabled = f.enabled
	}
	return nil
}

// checkProvince rejects a province that is not in the loaded child list of
// the selected country.
func checkProvince(fs *shopadmin.FreightSettings, form types.PriceDestinationForm) error {
	if form.StateOrProvinceID == nil {
		return nil
	}
	if _, ok := editor.Find(fs.Provinces.Children(), *form.StateOrProvinceID); !ok {
		return &types.ValidationError{
			Field:   "stateOrProvinceId",
			Message: fmt.Sprintf("%d is not a region of country %d", *form.StateOrProvinceID, form.CountryID),
		}
	}
	return nil
}

func newFreightAddCmd(a *app) *cobra.Command {
	var f formFlags
	cmd := &cobra.Command{
		Use:   "add <templateID>",
		Short: "Add a destination price",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			fs, notes, err := a.freightSettings(args[0], shopadmin.FromConfig(a.cfg)...)
			if err != nil {
				return err
			}

			fs.Editor.OpenForCreate()
			if err := fs.Editor.ChangeParent(ctx, strconv.FormatInt(f.country, 10)); err != nil {
				return report(err, notes)
			}
			form := fs.Editor.State().Values
			form.IsEnabled = f.enabled
			if err := f.apply(cmd, &form); err != nil {
				return err
			}
			if err := checkProvince(fs, form); err != nil {
				return err
			}
			if err := fs.Editor.Submit(ctx, form); err != nil {
				return report(err, notes)
			}
			return a.printSaved(cmd, fs, "Added")
		},
	}
	f.register(cmd)
	_ = cmd.MarkFlagRequired("country")
	return cmd
}

func newFreightEditCmd(a *app) *cobra.Command {
	var f formFlags
	cmd := &cobra.Command{
		Use:   "edit <templateID> <id>",
		Short: "Change a destination price",
		Long:  "Change the fields given as flags; the others keep their current values. Changing the country clears the region unless --province is given.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			fs, notes, err := a.freightSettings(args[0], shopadmin.FromConfig(a.cfg)...)
			if err != nil {
				return err
			}
			if err := fs.Mount(ctx); err != nil {
				return report(err, notes)
			}
			rec, ok, err := findRow(ctx, fs.Grid, types.PriceDestination.Key, args[1])
			if err != nil {
				return report(err, notes)
			}
			if !ok {
				return types.NewValidationError("id", types.ErrNotFound)
			}

			if err := fs.Editor.OpenForEdit(ctx, rec); err != nil {
				return report(err, notes)
			}
			if cmd.Flags().Changed("country") && f.country != rec.CountryID {
				if err := fs.Editor.ChangeParent(ctx, strconv.FormatInt(f.country, 10)); err != nil {
					return report(err, notes)
				}
			}
			form := fs.Editor.State().Values
			if err := f.apply(cmd, &form); err != nil {
				return err
			}
			if err := checkProvince(fs, form); err != nil {
				return err
			}
			if err := fs.Editor.Submit(ctx, form); err != nil {
				return report(err, notes)
			}
			return a.printSaved(cmd, fs, "Updated")
		},
	}
	f.register(cmd)
	return cmd
}

// printSaved reports a save; the editor has already refreshed the grid.
func (a *app) printSaved(cmd *cobra.Command, fs *shopadmin.FreightSettings, verb string) error {
	snap := fs.Grid.Snapshot()
	if a.flags.jsonMode {
		return printJSON(cmd.OutOrStdout(), pageOf(snap))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s destination price of template %d (%d total)\n", verb, fs.TemplateID, snap.Result.TotalCount())
	return nil
}

func newFreightDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <templateID> <id>",
		Short: "Delete a destination price",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, notes, err := a.freightSettings(args[0], shopadmin.FromConfig(a.cfg)...)
			if err != nil {
				return err
			}
			if _, err := parseID("id", args[1]); err != nil {
				return err
			}
			if err := fs.Delete(cmd.Context(), args[1]); err != nil {
				return report(err, notes)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted destination price %s\n", args[1])
			return nil
		},
	}
}
