// Package sqlite implements the repository interfaces on SQLite via the
// pure-Go modernc.org/sqlite driver (no CGo, works wherever Go compiles;
// ":memory:" gives tests a throwaway database).
//
// Two schema decisions matter here:
//
//   - Uniqueness is enforced by the database, not by check-then-insert.
//     usernames and entity IDs carry UNIQUE / PRIMARY KEY constraints, and
//     constraint violations are translated to apperror.Conflict. Two
//     concurrent creates for the same key therefore race safely: exactly one
//     wins, the other observes a conflict.
//
//   - List-valued product fields are stored as JSON arrays in TEXT columns.
//     SQLite's JSON1 functions (json_each) make the category filter a real
//     membership test instead of a substring hack.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	sqlite3 "modernc.org/sqlite"
)

// SQLite extended result codes for unique-constraint violations.
const (
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

// DB wraps a sql.DB connection pool. It is created once at startup and
// shared by reference; the pool inside sql.DB handles per-request
// concurrency. The per-entity stores returned by Users, Products, and
// Orders all operate on this pool.
type DB struct {
	conn *sql.DB
}

// Users returns the user store backed by this pool.
func (db *DB) Users() *UserStore { return &UserStore{conn: db.conn} }

// Products returns the product store backed by this pool.
func (db *DB) Products() *ProductStore { return &ProductStore{conn: db.conn} }

// Orders returns the order store backed by this pool.
func (db *DB) Orders() *OrderStore { return &OrderStore{conn: db.conn} }

// New opens (or creates) the database at dbPath, configures it, and runs
// migrations. Use ":memory:" for tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// SQLite serialises writers anyway, and every pooled connection to
	// ":memory:" would otherwise be a separate empty database. One
	// connection keeps both file and in-memory modes correct.
	conn.SetMaxOpenConns(1)

	// Surface a bad path or permission problem now rather than on the
	// first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets reads proceed while a write is in flight — required for a
	// web server where requests hit the store concurrently.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}
	return db, nil
}

// Close closes the connection pool. The server defers this on shutdown so
// the WAL is flushed and the file lock released.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS products (
			id           TEXT PRIMARY KEY,
			title        TEXT NOT NULL,
			product_type TEXT NOT NULL DEFAULT '',
			price        REAL NOT NULL DEFAULT 0,
			quantity     INTEGER NOT NULL DEFAULT 0,
			interest     TEXT NOT NULL DEFAULT '[]',
			license      TEXT NOT NULL DEFAULT '[]',
			tags         TEXT NOT NULL DEFAULT '[]',
			vendor       TEXT NOT NULL DEFAULT '',
			form_factor  TEXT NOT NULL DEFAULT '[]',
			feature      TEXT NOT NULL DEFAULT '[]',
			related      TEXT NOT NULL DEFAULT '[]',
			description  TEXT NOT NULL DEFAULT '',
			img          TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_products_price ON products(price);
		CREATE INDEX IF NOT EXISTS idx_products_title ON products(title);
	`)
	if err != nil {
		return fmt.Errorf("creating products table: %w", err)
	}

	// Orders embed the user and product snapshots; items is a JSON array of
	// {product, quantity}. The (username, date) index serves the account
	// order-history read, which sorts by date descending.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS orders (
			id         TEXT PRIMARY KEY,
			username   TEXT NOT NULL,
			user_email TEXT NOT NULL DEFAULT '',
			items      TEXT NOT NULL DEFAULT '[]',
			total      REAL NOT NULL DEFAULT 0,
			date       TEXT NOT NULL,
			status     TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_orders_username_date ON orders(username, date);
	`)
	if err != nil {
		return fmt.Errorf("creating orders table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY
// constraint failure. The repositories translate these to apperror.Conflict
// so callers see a domain error, not a driver error.
func isUniqueViolation(err error) bool {
	var se *sqlite3.Error
	if errors.As(err, &se) {
		return se.Code() == sqliteConstraintPrimaryKey || se.Code() == sqliteConstraintUnique
	}
	return false
}
