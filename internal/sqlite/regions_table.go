// Region lookups: the country list and each country's state-or-province
// tree, as served to the cascading selects of the freight editor.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/billyloki/module-shop-admin/pkg/types"
)

// RegionsTable reads the countries and states_or_provinces tables of a
// Backend.
type RegionsTable struct {
	backend *Backend
}

// Countries returns every country in display order.
func (t *RegionsTable) Countries(ctx context.Context) ([]types.Option, error) {
	var out []types.Option
	err := t.backend.read(func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, "SELECT id, name FROM countries ORDER BY display_order, id")
		if err != nil {
			return fmt.Errorf("listing countries: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var o types.Option
			if err := rows.Scan(&o.ID, &o.Name); err != nil {
				return fmt.Errorf("scanning country: %w", err)
			}
			out = append(out, o)
		}
		return rows.Err()
	})
	return out, err
}

// Provinces returns the region tree of a country. Top-level entries are the
// regions without a parent; deeper levels nest under Children. An unknown
// country yields ErrCountryNotFound.
func (t *RegionsTable) Provinces(ctx context.Context, countryID int64) ([]types.Option, error) {
	var out []types.Option
	err := t.backend.read(func(db *sql.DB) error {
		var one int
		err := db.QueryRowContext(ctx, "SELECT 1 FROM countries WHERE id = ?", countryID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCountryNotFound
		}
		if err != nil {
			return fmt.Errorf("checking country: %w", err)
		}

		rows, err := db.QueryContext(ctx,
			"SELECT id, parent_id, name, level FROM states_or_provinces WHERE country_id = ? ORDER BY level, id",
			countryID,
		)
		if err != nil {
			return fmt.Errorf("listing states or provinces: %w", err)
		}
		defer rows.Close()

		type node struct {
			opt    types.Option
			parent sql.NullInt64
		}
		var nodes []node
		for rows.Next() {
			var n node
			var level int
			if err := rows.Scan(&n.opt.ID, &n.parent, &n.opt.Name, &level); err != nil {
				return fmt.Errorf("scanning state or province: %w", err)
			}
			lv := types.Level(level)
			n.opt.Level = &lv
			nodes = append(nodes, n)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		children := make(map[int64][]int)
		var roots []int
		for i, n := range nodes {
			if n.parent.Valid {
				children[n.parent.Int64] = append(children[n.parent.Int64], i)
			} else {
				roots = append(roots, i)
			}
		}
		var build func(i int) types.Option
		build = func(i int) types.Option {
			o := nodes[i].opt
			for _, c := range children[o.ID] {
				o.Children = append(o.Children, build(c))
			}
			return o
		}
		out = make([]types.Option, 0, len(roots))
		for _, i := range roots {
			out = append(out, build(i))
		}
		return nil
	})
	return out, err
}
