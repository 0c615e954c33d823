// Package sqlstore implements the property catalog, the property value store
// and the sample profiles table on top of database/sql. SQLite
// (modernc.org/sqlite) is the default engine; PostgreSQL is reached through
// the pgx stdlib driver.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/satchel/pkg/types"
)

// DatabaseFile is the SQLite file created inside Config.DataDir.
const DatabaseFile = "satchel.db"

// Backend implements types.Backend over a single *sql.DB.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	dialect  dialect

	catalog  *catalogTable
	values   *valuesTable
	profiles *ProfilesTable

	// now is overridable in tests.
	now func() time.Time
}

var _ types.Backend = (*Backend)(nil)

// NewBackend creates a new backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Attach opens the database described by config and creates the schema if it
// does not exist. For SQLite, DataDir is created when missing.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	d, ok := dialects[config.Backend]
	if !ok {
		return types.ErrBackendUnknown
	}

	dsn, err := dataSource(config)
	if err != nil {
		return err
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return fmt.Errorf("opening %s database: %w", d.name, err)
	}
	if d.name == types.BackendSQLite {
		// A single writer avoids SQLITE_BUSY between pooled connections.
		db.SetMaxOpenConns(1)
	}

	ctx := context.Background()
	for _, ddl := range d.schema {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			db.Close()
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	b.db = db
	b.config = config
	b.dialect = d
	b.catalog = &catalogTable{backend: b}
	b.values = &valuesTable{backend: b}
	b.profiles = &ProfilesTable{backend: b}
	b.attached = true

	return nil
}

// Detach closes the database connection. After Detach, accessors return
// ErrDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}

	b.attached = false
	b.catalog = nil
	b.values = nil
	b.profiles = nil

	return nil
}

// Catalog returns the properties table accessor.
func (b *Backend) Catalog() (types.Catalog, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}
	return b.catalog, nil
}

// Values returns the property_values table accessor.
func (b *Backend) Values() (types.ValueStore, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}
	return b.values, nil
}

// Profiles returns the profiles table accessor.
func (b *Backend) Profiles() (*ProfilesTable, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}
	return b.profiles, nil
}

// Config returns the configuration the backend was attached with.
func (b *Backend) Config() types.Config {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config
}

// conn returns the open database and the active dialect, or ErrDetached.
func (b *Backend) conn() (*sql.DB, dialect, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, dialect{}, types.ErrDetached
	}
	return b.db, b.dialect, nil
}

// dataSource returns the driver DSN for config.
func dataSource(config types.Config) (string, error) {
	if config.Backend == types.BackendPostgres {
		return config.DSN, nil
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dataDir, DatabaseFile), nil
}

// formatTime renders timestamps the way they are stored in TEXT columns.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime reads a timestamp written by formatTime.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}
