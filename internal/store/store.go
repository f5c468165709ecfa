// Package store keeps a SQLite history of export runs.
//
// Every export written with --history becomes one row in runs, holding the
// encoded snapshot, plus one row per layer result in results. The history
// backs `rdsdash history`, which lists runs and re-checks stored exports.
package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"net/url"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// historyBusyTimeout is how long a scheduled export waits for the
// database lock while `rdsdash history` or another export holds it.
const historyBusyTimeout = 15 * time.Second

// migrations upgrade databases created by older builds. Entry i moves a
// database from user_version i to i+1.
var migrations = []struct {
	name string
	stmt string
}{
	{
		name: "index results by layer",
		stmt: `CREATE INDEX IF NOT EXISTS idx_results_layer ON results(operation_id, layer_id)`,
	},
}

var currentSchemaVersion = len(migrations)

// Store is the run history database.
type Store struct {
	db *sql.DB
}

// Open opens the run history at path, creating it on first use, and brings
// its schema up to date. Connection settings travel in the DSN so that
// every pooled connection gets them.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", historyDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}

	// One writer per export; readers share the same connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func historyDSN(path string) string {
	params := url.Values{}
	params.Set("_journal_mode", "WAL")
	params.Set("_synchronous", "NORMAL")
	params.Set("_foreign_keys", "on")
	params.Set("_busy_timeout", strconv.FormatInt(historyBusyTimeout.Milliseconds(), 10))
	return path + "?" + params.Encode()
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// migrate applies the migrations the database has not seen yet, each in
// its own transaction together with the user_version bump.
func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read history schema version: %w", err)
	}
	for v := version; v < len(migrations); v++ {
		m := migrations[v]
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("migrate history to v%d (%s): %w", v+1, m.name, err)
		}
		if _, err := tx.Exec(m.stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("migrate history to v%d (%s): %w", v+1, m.name, err)
		}
		// PRAGMA does not accept bound parameters.
		if _, err := tx.Exec("PRAGMA user_version = " + strconv.Itoa(v+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migrate history to v%d (%s): %w", v+1, m.name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migrate history to v%d (%s): %w", v+1, m.name, err)
		}
	}
	return nil
}
