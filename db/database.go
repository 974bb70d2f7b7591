package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Database owns the history connection. Open migrates the schema first.
type Database struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string
}

// Open creates the file and its parent directories if needed, applies
// pending migrations and returns a ready connection.
func Open(path string) (*Database, error) {
	if path == "" {
		return nil, ErrNoPath
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	if err := migrateFromPath(path, MigrateUp); err != nil {
		return nil, err
	}

	conn, err := NewSQLiteConnection(DefaultConnectionConfig(path))
	if err != nil {
		return nil, err
	}
	return &Database{db: conn, path: path}, nil
}

// DB returns the underlying connection.
func (d *Database) DB() *sql.DB {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.db
}

// Path returns the database file path.
func (d *Database) Path() string {
	return d.path
}

// Version returns the applied schema version.
func (d *Database) Version() (uint, bool, error) {
	var version uint
	var dirty bool
	err := migrateFromPath(d.path, func(conn *sql.DB) error {
		var err error
		version, dirty, err = MigrationVersion(conn)
		return err
	})
	return version, dirty, err
}

// Close closes the connection. It is safe to call more than once.
func (d *Database) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}
