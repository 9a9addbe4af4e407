// Category table: the paged category list, inline flag switches and delete.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/billyloki/module-shop-admin/pkg/types"
)

const categoryColumns = "id, name, display_order, include_in_menu, is_published, created_on, updated_on"

// categoryFlagColumns maps the switchable wire fields to their columns.
var categoryFlagColumns = map[string]string{
	types.CategoryFieldIncludeInMenu: "include_in_menu",
	types.CategoryFieldIsPublished:   "is_published",
}

var categoryPage = pageSpec{
	columns: categoryColumns,
	from:    "categories",
	sortable: map[string]string{
		types.CategoryFieldID:            "id",
		types.CategoryFieldName:          "name",
		types.CategoryFieldDisplayOrder:  "display_order",
		types.CategoryFieldIncludeInMenu: "include_in_menu",
		types.CategoryFieldIsPublished:   "is_published",
		types.CategoryFieldCreatedOn:     "created_on",
		types.CategoryFieldUpdatedOn:     "updated_on",
	},
	defaultSort: types.CategoryFieldID,
	filters: map[string]filterFunc{
		types.CategoryFieldName:          keywordFilter("name"),
		types.CategoryFieldIncludeInMenu: boolFilter("include_in_menu"),
		types.CategoryFieldIsPublished:   boolFilter("is_published"),
	},
}

// CategoriesTable accesses the categories of a Backend.
type CategoriesTable struct {
	backend *Backend
}

// Page returns one page of categories for q.
func (t *CategoriesTable) Page(ctx context.Context, q types.QueryState) (types.PageResult[types.Category], error) {
	pq := categoryPage.build(q, nil, nil)
	var result types.PageResult[types.Category]
	err := t.backend.read(func(db *sql.DB) error {
		var total int
		if err := db.QueryRowContext(ctx, pq.count, pq.args...).Scan(&total); err != nil {
			return fmt.Errorf("counting categories: %w", err)
		}
		rows, err := db.QueryContext(ctx, pq.selection, pq.pageArgs...)
		if err != nil {
			return fmt.Errorf("fetching categories: %w", err)
		}
		defer rows.Close()

		var items []types.Category
		for rows.Next() {
			c, err := scanCategory(rows)
			if err != nil {
				return fmt.Errorf("hydrating category: %w", err)
			}
			items = append(items, c)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterating categories: %w", err)
		}
		result = types.NewPageResult(items, total)
		return nil
	})
	return result, err
}

// Get returns the category with the given id.
func (t *CategoriesTable) Get(ctx context.Context, id int64) (types.Category, error) {
	var c types.Category
	err := t.backend.read(func(db *sql.DB) error {
		var err error
		c, err = scanCategory(db.QueryRowContext(ctx, "SELECT "+categoryColumns+" FROM categories WHERE id = ?", id))
		if errors.Is(err, sql.ErrNoRows) {
			return types.ErrNotFound
		}
		return err
	})
	return c, err
}

// Save inserts c when its ID is zero and updates it otherwise. It returns
// the stored id.
func (t *CategoriesTable) Save(ctx context.Context, c types.Category) (int64, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return 0, ErrNameRequired
	}
	id := c.ID
	err := t.backend.write(ctx, "categories", func(tx *sql.Tx) error {
		now := timestamp(t.backend.now())
		if id == 0 {
			res, err := tx.ExecContext(ctx,
				"INSERT INTO categories (name, display_order, include_in_menu, is_published, created_on, updated_on) VALUES (?, ?, ?, ?, ?, ?)",
				c.Name, c.DisplayOrder, c.IncludeInMenu, c.IsPublished, now, now,
			)
			if err != nil {
				return fmt.Errorf("inserting category: %w", err)
			}
			id, err = res.LastInsertId()
			return err
		}
		res, err := tx.ExecContext(ctx,
			"UPDATE categories SET name = ?, display_order = ?, include_in_menu = ?, is_published = ?, updated_on = ? WHERE id = ?",
			c.Name, c.DisplayOrder, c.IncludeInMenu, c.IsPublished, now, id,
		)
		if err != nil {
			return fmt.Errorf("updating category: %w", err)
		}
		return requireRow(res)
	})
	return id, err
}

// SetFlag sets one switchable boolean field.
func (t *CategoriesTable) SetFlag(ctx context.Context, id int64, field string, value bool) error {
	column, ok := categoryFlagColumns[field]
	if !ok {
		return types.NewValidationError(field, types.ErrUnknownField)
	}
	return t.backend.write(ctx, "categories", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE categories SET "+column+" = ?, updated_on = ? WHERE id = ?",
			value, timestamp(t.backend.now()), id,
		)
		if err != nil {
			return fmt.Errorf("switching %s: %w", field, err)
		}
		return requireRow(res)
	})
}

// Delete removes a category.
func (t *CategoriesTable) Delete(ctx context.Context, id int64) error {
	return t.backend.write(ctx, "categories", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("deleting category: %w", err)
		}
		return requireRow(res)
	})
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (types.Category, error) {
	var c types.Category
	var created, updated string
	if err := row.Scan(&c.ID, &c.Name, &c.DisplayOrder, &c.IncludeInMenu, &c.IsPublished, &created, &updated); err != nil {
		return types.Category{}, err
	}
	c.CreatedOn = parseTimestamp(created)
	c.UpdatedOn = parseTimestamp(updated)
	return c, nil
}

// requireRow maps an UPDATE or DELETE that touched nothing to ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return nil
}
