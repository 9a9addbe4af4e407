// Package sqlite implements the storage of the reference back-office API
// served by internal/stubapi. SQLite is the query engine; one JSONL file per
// table is the source of truth and is rewritten after every change.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// dbFile is rebuilt from the JSONL files on every attach.
const dbFile = "shopadmin.db"

// Backend holds the stub store. Reads may run concurrently; writes are
// serialized together with their JSONL persistence.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	dataDir  string
	db       *sql.DB
	logger   zerolog.Logger
	now      func() time.Time

	categories   *CategoriesTable
	destinations *DestinationsTable
	regions      *RegionsTable
}

// BackendOption configures a Backend.
type BackendOption func(*Backend)

// WithLogger sets the backend logger.
func WithLogger(l zerolog.Logger) BackendOption {
	return func(b *Backend) { b.logger = l }
}

// WithClock replaces time.Now for created/updated timestamps.
func WithClock(now func() time.Time) BackendOption {
	return func(b *Backend) { b.now = now }
}

// NewBackend creates a detached backend; call Attach before use.
func NewBackend(opts ...BackendOption) *Backend {
	b := &Backend{logger: zerolog.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	b.categories = &CategoriesTable{backend: b}
	b.destinations = &DestinationsTable{backend: b}
	b.regions = &RegionsTable{backend: b}
	return b
}

// Attach opens the store in dataDir. The directory and missing JSONL files
// are created, the database is rebuilt from the JSONL files, and built-in
// regions and sample categories are seeded into empty tables.
func (b *Backend) Attach(dataDir string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return ErrAlreadyAttached
	}
	if dataDir == "" {
		return ErrDataDirEmpty
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	if err := initJSONLFiles(dataDir); err != nil {
		return err
	}

	dbPath := filepath.Join(dataDir, dbFile)
	_ = os.Remove(dbPath)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		return err
	}
	if err := loadAllJSONL(db, dataDir); err != nil {
		db.Close()
		return fmt.Errorf("load JSONL: %w", err)
	}
	if err := seedBuiltIns(db, dataDir, b.now()); err != nil {
		db.Close()
		return fmt.Errorf("seed: %w", err)
	}

	b.db = db
	b.dataDir = dataDir
	b.attached = true
	b.logger.Debug().Str("data_dir", dataDir).Msg("backend attached")
	return nil
}

// Detach closes the database. It is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if err := b.db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	b.db = nil
	b.attached = false
	return nil
}

// DataDir returns the attached data directory.
func (b *Backend) DataDir() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dataDir
}

// Categories returns the category table.
func (b *Backend) Categories() *CategoriesTable { return b.categories }

// Destinations returns the price destination table.
func (b *Backend) Destinations() *DestinationsTable { return b.destinations }

// Regions returns the country and province lookups.
func (b *Backend) Regions() *RegionsTable { return b.regions }

// read runs fn against the database under the read lock.
func (b *Backend) read(fn func(db *sql.DB) error) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return ErrDetached
	}
	return fn(b.db)
}

// write runs fn in a transaction and, once committed, rewrites the JSONL
// file of table.
func (b *Backend) write(ctx context.Context, table string, fn func(tx *sql.Tx) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return ErrDetached
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %s: %w", table, err)
	}
	if err := persistTable(b.db, b.dataDir, table); err != nil {
		return fmt.Errorf("persisting %s: %w", table, err)
	}
	return nil
}

func initSchema(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		return fmt.Errorf("enabling foreign keys: %w", err)
	}
	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	for _, ddl := range indexDDL {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}
	return nil
}

// timestamp formats t the way created_on and updated_on are stored.
func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
