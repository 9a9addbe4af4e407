package cli

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/billyloki/module-shop-admin/pkg/notify"
	"github.com/billyloki/module-shop-admin/pkg/shopadmin"
	"github.com/billyloki/module-shop-admin/pkg/types"
)

func newCategoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "List, toggle and delete catalog categories",
	}
	cmd.AddCommand(newCategoryListCmd(a))
	cmd.AddCommand(newCategoryToggleCmd(a))
	cmd.AddCommand(newCategoryDeleteCmd(a))
	return cmd
}

// categoryList builds the category screen with a fresh recorder.
func (a *app) categoryList(opts ...shopadmin.Option) (*shopadmin.CategoryList, *notify.Recorder, error) {
	client, err := a.client()
	if err != nil {
		return nil, nil, err
	}
	notes := &notify.Recorder{}
	opts = append(opts,
		shopadmin.WithNotifier(notes),
		shopadmin.WithLogger(a.logger.With().Str("screen", "categories").Logger()),
	)
	return shopadmin.NewCategoryList(client, opts...), notes, nil
}

func newCategoryListCmd(a *app) *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show one page of categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("sort") && !slices.Contains(types.CategorySortFields, f.sort) {
				return &types.ValidationError{
					Field:   "sort",
					Message: fmt.Sprintf("unknown sort field %q (valid: %s)", f.sort, strings.Join(types.CategorySortFields, ", ")),
				}
			}
			list, notes, err := a.categoryList(f.options(cmd, a.cfg)...)
			if err != nil {
				return err
			}
			if err := loadPage(cmd.Context(), list.Grid, &f, types.CategoryFieldName); err != nil {
				return report(err, notes)
			}

			snap := list.Grid.Snapshot()
			out := cmd.OutOrStdout()
			if a.flags.jsonMode {
				return printJSON(out, pageOf(snap))
			}
			items := snap.Result.Items()
			if len(items) == 0 {
				fmt.Fprintln(out, "No categories found.")
				return nil
			}
			rows := make([][]string, 0, len(items))
			for _, c := range items {
				rows = append(rows, []string{
					c.Key(),
					truncate(c.Name, 40),
					strconv.Itoa(c.DisplayOrder),
					yesNo(c.IncludeInMenu),
					yesNo(c.IsPublished),
					c.UpdatedOn.Format("2006-01-02 15:04"),
				})
			}
			printTable(out, []string{"ID", "NAME", "ORDER", "MENU", "PUBLISHED", "UPDATED"}, rows)
			printFooter(out, snap)
			return nil
		},
	}
	f.register(cmd, "filter by name")
	return cmd
}

func newCategoryToggleCmd(a *app) *cobra.Command {
	var field string
	cmd := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a boolean field of a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			list, notes, err := a.categoryList(shopadmin.FromConfig(a.cfg)...)
			if err != nil {
				return err
			}
			if err := list.Mount(ctx); err != nil {
				return report(err, notes)
			}
			rec, ok, err := findRow(ctx, list.Grid, types.Category.Key, args[0])
			if err != nil {
				return report(err, notes)
			}
			if !ok {
				return types.NewValidationError("id", types.ErrNotFound)
			}
			if err := list.Toggle.Toggle(ctx, &rec, field); err != nil {
				return report(err, notes)
			}

			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), rec)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Category %s (%s): %s=%t\n", rec.Key(), rec.Name, field, rec.IncludeInMenu)
			return nil
		},
	}
	cmd.Flags().StringVar(&field, "field", shopadmin.IncludeInMenu.Name, "field to toggle")
	return cmd
}

func newCategoryDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, notes, err := a.categoryList(shopadmin.FromConfig(a.cfg)...)
			if err != nil {
				return err
			}
			if err := list.Delete(cmd.Context(), args[0]); err != nil {
				return report(err, notes)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted category %s\n", args[0])
			return nil
		},
	}
}
