// Schema for the stub back-office store. Column names double as the keys of
// the JSONL records each table is persisted to.
package sqlite

// Schema DDL for all tables.
const (
	createCategories = `CREATE TABLE categories (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    display_order INTEGER NOT NULL DEFAULT 0,
    include_in_menu INTEGER NOT NULL DEFAULT 0,
    is_published INTEGER NOT NULL DEFAULT 0,
    created_on TEXT NOT NULL,
    updated_on TEXT NOT NULL
);`

	createCountries = `CREATE TABLE countries (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    code TEXT NOT NULL,
    display_order INTEGER NOT NULL DEFAULT 0
);`

	createStatesOrProvinces = `CREATE TABLE states_or_provinces (
    id INTEGER PRIMARY KEY,
    country_id INTEGER NOT NULL,
    parent_id INTEGER,
    name TEXT NOT NULL,
    level INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (country_id) REFERENCES countries(id)
);`

	createPriceDestinations = `CREATE TABLE price_destinations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    freight_template_id INTEGER NOT NULL,
    country_id INTEGER NOT NULL,
    state_or_province_id INTEGER,
    min_order_subtotal TEXT NOT NULL DEFAULT '0',
    shipping_price TEXT NOT NULL DEFAULT '0',
    is_enabled INTEGER NOT NULL DEFAULT 0,
    note TEXT NOT NULL DEFAULT '',
    created_on TEXT NOT NULL,
    updated_on TEXT NOT NULL,
    FOREIGN KEY (country_id) REFERENCES countries(id)
);`
)

// Index DDL for common queries.
const (
	idxCategoriesName            = `CREATE INDEX idx_categories_name ON categories(name);`
	idxProvincesCountry          = `CREATE INDEX idx_provinces_country ON states_or_provinces(country_id);`
	idxProvincesParent           = `CREATE INDEX idx_provinces_parent ON states_or_provinces(parent_id);`
	idxPriceDestinationsTemplate = `CREATE INDEX idx_price_destinations_template ON price_destinations(freight_template_id);`
	idxPriceDestinationsRegion   = `CREATE INDEX idx_price_destinations_region ON price_destinations(freight_template_id, country_id, state_or_province_id);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createCategories,
	createCountries,
	createStatesOrProvinces,
	createPriceDestinations,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxCategoriesName,
	idxProvincesCountry,
	idxProvincesParent,
	idxPriceDestinationsTemplate,
	idxPriceDestinationsRegion,
}
