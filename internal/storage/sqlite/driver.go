// Package sqlite is the storage driver and schema/migration layer: an
// embedded SQL database with an FTS5 virtual table, opened through a
// pure-Go driver with no cgo dependency.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DriverName is the database/sql driver name ncruces/go-sqlite3
// registers itself under.
const DriverName = "sqlite3"

// DB bundles the two connection pools the single-writer concurrency
// model calls for: a single-connection writer pool (serialized further by an
// in-process semaphore in the repository layer) and an N-connection
// reader pool for lock-free reads against the last committed state.
type DB struct {
	Write *sql.DB
	Read  *sql.DB
	path  string
}

// Open creates the data root if needed, opens both pools, applies
// pragmas, and runs outstanding migrations.
func Open(ctx context.Context, dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite: creating data dir: %w", err)
	}

	writeDSN := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", dbPath)
	write, err := sql.Open(DriverName, writeDSN)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening writer: %w", err)
	}
	write.SetMaxOpenConns(1) // single-writer model
	write.SetMaxIdleConns(1)

	readDSN := fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(5000)", dbPath)
	read, err := sql.Open(DriverName, readDSN)
	if err != nil {
		write.Close()
		return nil, fmt.Errorf("sqlite: opening reader pool: %w", err)
	}
	read.SetMaxOpenConns(8)

	if _, err := write.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		write.Close()
		read.Close()
		return nil, fmt.Errorf("sqlite: enabling WAL: %w", err)
	}
	if _, err := write.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		write.Close()
		read.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{Write: write, Read: read, path: dbPath}

	if err := applySchema(ctx, write); err != nil {
		db.Close()
		return nil, err
	}
	if err := runMigrations(ctx, write); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) Close() error {
	werr := db.Write.Close()
	rerr := db.Read.Close()
	if werr != nil {
		return werr
	}
	return rerr
}

func (db *DB) Path() string { return db.path }
