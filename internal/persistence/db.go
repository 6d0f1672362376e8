// Package persistence provides the SQLite catalog of building layouts and
// profile sets. It stores simulation inputs only; run state is never saved.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a layout or profile set does not exist.
var ErrNotFound = errors.New("not found")

// DB wraps a SQLite connection for the catalog.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS layouts (
		name TEXT PRIMARY KEY,
		min_x REAL NOT NULL,
		max_x REAL NOT NULL,
		min_z REAL NOT NULL,
		max_z REAL NOT NULL,
		origin_x REAL NOT NULL,
		origin_y REAL NOT NULL,
		origin_z REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS exits (
		layout TEXT NOT NULL REFERENCES layouts(name) ON DELETE CASCADE,
		idx INTEGER NOT NULL,
		name TEXT NOT NULL,
		x REAL NOT NULL,
		y REAL NOT NULL,
		z REAL NOT NULL,
		room TEXT NOT NULL,
		PRIMARY KEY (layout, idx)
	);

	CREATE TABLE IF NOT EXISTS safe_spots (
		layout TEXT NOT NULL REFERENCES layouts(name) ON DELETE CASCADE,
		idx INTEGER NOT NULL,
		kind TEXT NOT NULL,
		x REAL NOT NULL,
		y REAL NOT NULL,
		z REAL NOT NULL,
		size_x REAL NOT NULL,
		size_y REAL NOT NULL,
		size_z REAL NOT NULL,
		room TEXT NOT NULL,
		PRIMARY KEY (layout, idx)
	);

	CREATE TABLE IF NOT EXISTS doors (
		layout TEXT NOT NULL REFERENCES layouts(name) ON DELETE CASCADE,
		idx INTEGER NOT NULL,
		x REAL NOT NULL,
		y REAL NOT NULL,
		z REAL NOT NULL,
		open INTEGER NOT NULL,
		PRIMARY KEY (layout, idx)
	);

	CREATE TABLE IF NOT EXISTS walls (
		layout TEXT NOT NULL REFERENCES layouts(name) ON DELETE CASCADE,
		idx INTEGER NOT NULL,
		min_x REAL NOT NULL,
		max_x REAL NOT NULL,
		min_z REAL NOT NULL,
		max_z REAL NOT NULL,
		PRIMARY KEY (layout, idx)
	);

	CREATE TABLE IF NOT EXISTS profiles (
		set_name TEXT NOT NULL,
		idx INTEGER NOT NULL,
		role TEXT NOT NULL,
		name TEXT NOT NULL,
		speed REAL NOT NULL,
		panic_sensitivity REAL NOT NULL,
		x REAL NOT NULL,
		y REAL NOT NULL,
		z REAL NOT NULL,
		yaw REAL NOT NULL,
		color TEXT NOT NULL,
		model TEXT NOT NULL,
		leads_dance INTEGER NOT NULL,
		PRIMARY KEY (set_name, idx)
	);
	`
	_, err := db.conn.Exec(schema)
	if err == nil {
		slog.Debug("catalog schema ready")
	}
	return err
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}
