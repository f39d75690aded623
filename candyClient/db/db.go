// Package db opens the SQLite file that backs the run journal.
package db

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pushchain/candy-machine-client/candyClient/store"
)

const (
	// InMemorySQLiteDSN opens an ephemeral database, used by tests.
	InMemorySQLiteDSN = ":memory:"

	dbDirPermissions = 0o750

	// WAL lets `pcandy serve` read while a workflow writes.
	filePragmas = "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on&mode=rwc"
)

// journalModels are the tables created by migration, in dependency order.
var journalModels = []any{
	&store.Deployment{},
	&store.CatalogAppend{},
	&store.Mint{},
}

// DB is an open journal database.
type DB struct {
	client *gorm.DB
	path   string
}

// OpenFileDB opens or creates dir/filename, creating dir when missing.
// migrate creates or updates the journal tables.
func OpenFileDB(dir, filename string, migrate bool) (*DB, error) {
	if err := os.MkdirAll(dir, dbDirPermissions); err != nil {
		return nil, errors.Wrapf(err, "failed to prepare database path %s", dir)
	}
	path := filepath.Join(dir, filename)
	d, err := open(path+filePragmas, migrate)
	if err != nil {
		return nil, errors.Wrapf(err, "journal %s", path)
	}
	d.path = path
	return d, nil
}

// OpenInMemoryDB opens a journal that disappears on Close.
func OpenInMemoryDB(migrate bool) (*DB, error) {
	d, err := open(InMemorySQLiteDSN, migrate)
	if err != nil {
		return nil, err
	}
	d.path = InMemorySQLiteDSN
	return d, nil
}

func open(dsn string, migrate bool) (*DB, error) {
	client, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open SQLite database")
	}

	sqlDB, err := client.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get underlying sql.DB")
	}
	// A single connection keeps :memory: alive and serializes journal writes.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	d := &DB{client: client}
	if migrate {
		if err := d.Migrate(); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}
	return d, nil
}

// Migrate creates or updates the journal tables.
func (d *DB) Migrate() error {
	if err := d.client.AutoMigrate(journalModels...); err != nil {
		return errors.Wrap(err, "failed to migrate journal schema")
	}
	return nil
}

// Client returns the underlying gorm handle.
func (d *DB) Client() *gorm.DB {
	return d.client
}

// Conn returns a gorm session bound to ctx.
func (d *DB) Conn(ctx context.Context) *gorm.DB {
	return d.client.WithContext(ctx)
}

// Path is the database file, or ":memory:".
func (d *DB) Path() string {
	return d.path
}

// Close releases the connection.
func (d *DB) Close() error {
	sqlDB, err := d.client.DB()
	if err != nil {
		return errors.Wrap(err, "failed to retrieve native sql.DB")
	}
	return errors.Wrap(sqlDB.Close(), "failed to close journal database")
}
