// Built-in data seeded into empty tables on attach: the countries and
// administrative regions the freight screens select from, and a set of
// sample categories.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/billyloki/module-shop-admin/pkg/types"
)

type builtInCountry struct {
	id      int64
	name    string
	code    string
	order   int
	regions []builtInRegion
}

type builtInRegion struct {
	id       int64
	name     string
	level    types.Level
	children []builtInRegion
}

// Built-in country identifiers.
const (
	CountryChina        int64 = 1
	CountryUnitedStates int64 = 2
)

var builtInCountries = []builtInCountry{
	{
		id: CountryChina, name: "中国", code: "CN", order: 0,
		regions: []builtInRegion{
			{id: 10, name: "广东省", level: types.LevelProvince, children: []builtInRegion{
				{id: 11, name: "深圳市", level: types.LevelCity, children: []builtInRegion{
					{id: 12, name: "南山区", level: types.LevelDistrict},
					{id: 13, name: "福田区", level: types.LevelDistrict},
				}},
				{id: 14, name: "广州市", level: types.LevelCity},
			}},
			{id: 20, name: "浙江省", level: types.LevelProvince, children: []builtInRegion{
				{id: 21, name: "杭州市", level: types.LevelCity},
			}},
			{id: 30, name: "北京市", level: types.LevelProvince},
			{id: 40, name: "上海市", level: types.LevelProvince},
		},
	},
	{
		id: CountryUnitedStates, name: "United States", code: "US", order: 1,
		regions: []builtInRegion{
			{id: 100, name: "California", level: types.LevelProvince},
			{id: 101, name: "New York", level: types.LevelProvince},
			{id: 102, name: "Washington", level: types.LevelProvince},
		},
	},
}

// builtInCategories are seeded in this order; ids follow it.
var builtInCategories = []struct {
	name          string
	includeInMenu bool
	isPublished   bool
}{
	{"Electronics", true, true},
	{"Phones", true, true},
	{"Laptops", true, true},
	{"Cameras", false, true},
	{"Audio", true, true},
	{"Wearables", false, false},
	{"Home", true, true},
	{"Kitchen", false, true},
	{"Furniture", true, false},
	{"Books", true, true},
	{"Toys", false, true},
	{"Sports", true, true},
}

// seedBuiltIns fills empty region and category tables and persists what it
// inserted. Tables that already hold rows are left alone.
func seedBuiltIns(db *sql.DB, dataDir string, now time.Time) error {
	seeded, err := seedRegions(db)
	if err != nil {
		return err
	}
	if seeded {
		for _, table := range []string{"countries", "states_or_provinces"} {
			if err := persistTable(db, dataDir, table); err != nil {
				return err
			}
		}
	}

	seeded, err = seedCategories(db, now)
	if err != nil {
		return err
	}
	if seeded {
		return persistTable(db, dataDir, "categories")
	}
	return nil
}

func seedRegions(db *sql.DB) (bool, error) {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM countries").Scan(&count); err != nil {
		return false, fmt.Errorf("counting countries: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	tx, err := db.Begin()
	if err != nil {
		return false, fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer tx.Rollback()

	for _, c := range builtInCountries {
		if _, err := tx.Exec(
			"INSERT INTO countries (id, name, code, display_order) VALUES (?, ?, ?, ?)",
			c.id, c.name, c.code, c.order,
		); err != nil {
			return false, fmt.Errorf("seeding country %s: %w", c.code, err)
		}
		if err := seedRegionTree(tx, c.id, nil, c.regions); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing seed transaction: %w", err)
	}
	return true, nil
}

func seedRegionTree(tx *sql.Tx, countryID int64, parentID *int64, regions []builtInRegion) error {
	for _, r := range regions {
		if _, err := tx.Exec(
			"INSERT INTO states_or_provinces (id, country_id, parent_id, name, level) VALUES (?, ?, ?, ?, ?)",
			r.id, countryID, parentID, r.name, int(r.level),
		); err != nil {
			return fmt.Errorf("seeding region %s: %w", r.name, err)
		}
		id := r.id
		if err := seedRegionTree(tx, countryID, &id, r.children); err != nil {
			return err
		}
	}
	return nil
}

func seedCategories(db *sql.DB, now time.Time) (bool, error) {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return false, fmt.Errorf("counting categories: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	tx, err := db.Begin()
	if err != nil {
		return false, fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer tx.Rollback()

	ts := timestamp(now)
	for i, c := range builtInCategories {
		if _, err := tx.Exec(
			"INSERT INTO categories (name, display_order, include_in_menu, is_published, created_on, updated_on) VALUES (?, ?, ?, ?, ?, ?)",
			c.name, i, c.includeInMenu, c.isPublished, ts, ts,
		); err != nil {
			return false, fmt.Errorf("seeding category %s: %w", c.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing seed transaction: %w", err)
	}
	return true, nil
}
