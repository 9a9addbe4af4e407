// Price destination table: the destination pricing rows of freight
// templates, joined with country and region names for display.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/billyloki/module-shop-admin/pkg/types"
)

const destinationColumns = "d.id, d.freight_template_id, d.country_id, c.name, d.state_or_province_id, s.name, s.level, " +
	"d.min_order_subtotal, d.shipping_price, d.is_enabled, d.note"

var destinationPage = pageSpec{
	columns: destinationColumns,
	from: "price_destinations d JOIN countries c ON c.id = d.country_id " +
		"LEFT JOIN states_or_provinces s ON s.id = d.state_or_province_id",
	id: "d.id",
	sortable: map[string]string{
		types.DestinationFieldID:                  "d.id",
		types.DestinationFieldCountryName:         "c.name",
		types.DestinationFieldStateOrProvinceName: "s.name",
		types.DestinationFieldMinOrderSubtotal:    "CAST(d.min_order_subtotal AS REAL)",
		types.DestinationFieldShippingPrice:       "CAST(d.shipping_price AS REAL)",
		types.DestinationFieldIsEnabled:           "d.is_enabled",
		types.DestinationFieldNote:                "d.note",
	},
	defaultSort: types.DestinationFieldID,
	filters: map[string]filterFunc{
		types.DestinationKeywordFilter:  keywordFilter("c.name", "s.name"),
		types.DestinationFieldIsEnabled: boolFilter("d.is_enabled"),
	},
}

// DestinationsTable accesses the price destinations of a Backend.
type DestinationsTable struct {
	backend *Backend
}

// Page returns one page of the destinations of a freight template.
func (t *DestinationsTable) Page(ctx context.Context, templateID int64, q types.QueryState) (types.PageResult[types.PriceDestination], error) {
	pq := destinationPage.build(q, []string{"d.freight_template_id = ?"}, []any{templateID})
	var result types.PageResult[types.PriceDestination]
	err := t.backend.read(func(db *sql.DB) error {
		var total int
		if err := db.QueryRowContext(ctx, pq.count, pq.args...).Scan(&total); err != nil {
			return fmt.Errorf("counting price destinations: %w", err)
		}
		rows, err := db.QueryContext(ctx, pq.selection, pq.pageArgs...)
		if err != nil {
			return fmt.Errorf("fetching price destinations: %w", err)
		}
		defer rows.Close()

		var items []types.PriceDestination
		for rows.Next() {
			d, err := scanDestination(rows)
			if err != nil {
				return fmt.Errorf("hydrating price destination: %w", err)
			}
			items = append(items, d)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterating price destinations: %w", err)
		}
		result = types.NewPageResult(items, total)
		return nil
	})
	return result, err
}

// Get returns the destination with the given id.
func (t *DestinationsTable) Get(ctx context.Context, id int64) (types.PriceDestination, error) {
	var d types.PriceDestination
	err := t.backend.read(func(db *sql.DB) error {
		var err error
		d, err = scanDestination(db.QueryRowContext(ctx,
			"SELECT "+destinationColumns+" FROM "+destinationPage.from+" WHERE d.id = ?", id))
		if errors.Is(err, sql.ErrNoRows) {
			return types.ErrNotFound
		}
		return err
	})
	return d, err
}

// Create adds a destination to a freight template and returns its id.
func (t *DestinationsTable) Create(ctx context.Context, templateID int64, form types.PriceDestinationForm) (int64, error) {
	if templateID <= 0 {
		return 0, types.NewValidationError(types.FreightTemplateScopeKey, types.ErrInvalidID)
	}
	var id int64
	err := t.backend.write(ctx, "price_destinations", func(tx *sql.Tx) error {
		if err := checkDestination(ctx, tx, 0, templateID, form); err != nil {
			return err
		}
		now := timestamp(t.backend.now())
		res, err := tx.ExecContext(ctx,
			`INSERT INTO price_destinations (freight_template_id, country_id, state_or_province_id,
    min_order_subtotal, shipping_price, is_enabled, note, created_on, updated_on)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			templateID, form.CountryID, form.StateOrProvinceID,
			form.MinOrderSubtotal.String(), form.ShippingPrice.String(), form.IsEnabled, form.Note, now, now,
		)
		if err != nil {
			return fmt.Errorf("inserting price destination: %w", err)
		}
		id, err = res.LastInsertId()
		return err
	})
	return id, err
}

// Update replaces the editable fields of a destination.
func (t *DestinationsTable) Update(ctx context.Context, id, templateID int64, form types.PriceDestinationForm) error {
	return t.backend.write(ctx, "price_destinations", func(tx *sql.Tx) error {
		if templateID <= 0 {
			if err := tx.QueryRowContext(ctx,
				"SELECT freight_template_id FROM price_destinations WHERE id = ?", id,
			).Scan(&templateID); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return types.ErrNotFound
				}
				return fmt.Errorf("looking up price destination: %w", err)
			}
		}
		if err := checkDestination(ctx, tx, id, templateID, form); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE price_destinations SET country_id = ?, state_or_province_id = ?, min_order_subtotal = ?,
    shipping_price = ?, is_enabled = ?, note = ?, updated_on = ?
WHERE id = ? AND freight_template_id = ?`,
			form.CountryID, form.StateOrProvinceID, form.MinOrderSubtotal.String(),
			form.ShippingPrice.String(), form.IsEnabled, form.Note, timestamp(t.backend.now()),
			id, templateID,
		)
		if err != nil {
			return fmt.Errorf("updating price destination: %w", err)
		}
		return requireRow(res)
	})
}

// Delete removes a destination.
func (t *DestinationsTable) Delete(ctx context.Context, id int64) error {
	return t.backend.write(ctx, "price_destinations", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM price_destinations WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("deleting price destination: %w", err)
		}
		return requireRow(res)
	})
}

// checkDestination applies the store rules: the country exists, the region
// belongs to it, prices are not negative, and a template prices each region
// once.
func checkDestination(ctx context.Context, tx *sql.Tx, id, templateID int64, form types.PriceDestinationForm) error {
	if form.MinOrderSubtotal.IsNegative() || form.ShippingPrice.IsNegative() {
		return ErrNegativePrice
	}

	var one int
	err := tx.QueryRowContext(ctx, "SELECT 1 FROM countries WHERE id = ?", form.CountryID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCountryNotFound
	}
	if err != nil {
		return fmt.Errorf("checking country: %w", err)
	}

	if form.StateOrProvinceID != nil {
		var countryID int64
		err := tx.QueryRowContext(ctx,
			"SELECT country_id FROM states_or_provinces WHERE id = ?", *form.StateOrProvinceID,
		).Scan(&countryID)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && countryID != form.CountryID) {
			return ErrProvinceMismatch
		}
		if err != nil {
			return fmt.Errorf("checking state or province: %w", err)
		}
	}

	var dup int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM price_destinations
WHERE freight_template_id = ? AND country_id = ? AND state_or_province_id IS ? AND id != ?`,
		templateID, form.CountryID, form.StateOrProvinceID, id,
	).Scan(&dup)
	if err == nil {
		return ErrDuplicateRegion
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking duplicate region: %w", err)
	}
	return nil
}

func scanDestination(row rowScanner) (types.PriceDestination, error) {
	var d types.PriceDestination
	var regionID, regionLevel sql.NullInt64
	var regionName sql.NullString
	var minSubtotal, price string
	if err := row.Scan(&d.ID, &d.FreightTemplateID, &d.CountryID, &d.CountryName,
		&regionID, &regionName, &regionLevel,
		&minSubtotal, &price, &d.IsEnabled, &d.Note); err != nil {
		return types.PriceDestination{}, err
	}
	if regionID.Valid {
		id := regionID.Int64
		d.StateOrProvinceID = &id
		d.StateOrProvinceName = regionName.String
		if regionLevel.Valid {
			level := types.Level(regionLevel.Int64)
			d.StateOrProvinceLevel = &level
		}
	}
	var err error
	if d.MinOrderSubtotal, err = decimal.NewFromString(minSubtotal); err != nil {
		return types.PriceDestination{}, fmt.Errorf("parsing min order subtotal: %w", err)
	}
	if d.ShippingPrice, err = decimal.NewFromString(price); err != nil {
		return types.PriceDestination{}, fmt.Errorf("parsing shipping price: %w", err)
	}
	return d, nil
}
