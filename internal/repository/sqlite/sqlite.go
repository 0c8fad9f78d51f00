// Package sqlite implements the repository interfaces on an embedded SQLite
// database via the pure-Go modernc.org/sqlite driver (no CGo, so the binary
// cross-compiles anywhere Go runs).
//
// Concurrency notes: the database runs in WAL mode so reads proceed while a
// write is in flight, and every balance mutation or uniqueness-sensitive
// insert happens inside a single transaction. SQLite serializes writers, so
// two concurrent registrations or ledger mutations cannot interleave between
// their read and their write.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"

	"github.com/sakif/waste-portal/internal/apperror"
)

// DB wraps a sql.DB pool and provides the repository methods. One *DB value
// implements every repository interface; the server hands the same value to
// each service under the interface it needs.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" in tests for a throwaway instance.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed during writes; foreign keys are off by
	// default in SQLite and this schema depends on them.
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
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			username           TEXT NOT NULL COLLATE NOCASE UNIQUE,
			email              TEXT NOT NULL COLLATE NOCASE UNIQUE,
			password_hash      TEXT NOT NULL,
			full_name          TEXT NOT NULL DEFAULT '',
			phone              TEXT NOT NULL DEFAULT '',
			address            TEXT NOT NULL DEFAULT '',
			role               TEXT NOT NULL DEFAULT 'citizen',
			ward               TEXT NOT NULL DEFAULT '',
			tracking_code      TEXT NOT NULL UNIQUE,
			registered_at      TEXT NOT NULL,
			training_completed INTEGER NOT NULL DEFAULT 0,
			points             INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS waste_collections (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id        INTEGER NOT NULL REFERENCES users(id),
			scheduled_for  TEXT NOT NULL,
			waste_type     TEXT NOT NULL,
			weight_kg      REAL NOT NULL,
			segregated     INTEGER NOT NULL DEFAULT 0,
			collected_by   TEXT NOT NULL DEFAULT '',
			vehicle_number TEXT NOT NULL DEFAULT '',
			status         TEXT NOT NULL DEFAULT 'scheduled',
			address        TEXT NOT NULL DEFAULT '',
			latitude       REAL NOT NULL DEFAULT 0,
			longitude      REAL NOT NULL DEFAULT 0,
			created_at     TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_collections_user ON waste_collections(user_id);
		CREATE INDEX IF NOT EXISTS idx_collections_scheduled ON waste_collections(scheduled_for);

		CREATE TABLE IF NOT EXISTS complaints (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			reference      TEXT NOT NULL UNIQUE,
			user_id        INTEGER NOT NULL REFERENCES users(id),
			complaint_type TEXT NOT NULL,
			description    TEXT NOT NULL DEFAULT '',
			location       TEXT NOT NULL DEFAULT '',
			latitude       REAL NOT NULL DEFAULT 0,
			longitude      REAL NOT NULL DEFAULT 0,
			status         TEXT NOT NULL DEFAULT 'pending',
			created_at     TEXT NOT NULL,
			resolved_at    TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_complaints_user ON complaints(user_id);
		CREATE INDEX IF NOT EXISTS idx_complaints_status ON complaints(status);

		CREATE TABLE IF NOT EXISTS facilities (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			name              TEXT NOT NULL,
			facility_type     TEXT NOT NULL DEFAULT '',
			address           TEXT NOT NULL DEFAULT '',
			latitude          REAL NOT NULL DEFAULT 0,
			longitude         REAL NOT NULL DEFAULT 0,
			capacity_tpd      REAL NOT NULL DEFAULT 0,
			contact_number    TEXT NOT NULL DEFAULT '',
			operational_hours TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS vehicles (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			vehicle_number TEXT NOT NULL UNIQUE,
			vehicle_type   TEXT NOT NULL DEFAULT '',
			capacity_tons  REAL NOT NULL DEFAULT 0,
			latitude       REAL NOT NULL DEFAULT 0,
			longitude      REAL NOT NULL DEFAULT 0,
			driver_name    TEXT NOT NULL DEFAULT '',
			driver_phone   TEXT NOT NULL DEFAULT '',
			status         TEXT NOT NULL DEFAULT 'idle',
			last_updated   TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS rewards (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id     INTEGER NOT NULL REFERENCES users(id),
			reward_type TEXT NOT NULL,
			points      INTEGER NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			earned_at   TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_rewards_user ON rewards(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}
	return nil
}

// withTx runs fn inside a transaction, rolling back on error.
// All multi-statement mutations (ledger credits, scheduling, status
// advances) go through here so partial state can never commit.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing transaction: %w", err)
	}
	return nil
}

// Timestamps are stored as UTC text with second precision. Storing a fixed
// layout (rather than the driver's time encoding) keeps lexicographic
// ordering, SQL date() and range comparisons all working on the same bytes.
const timeLayout = "2006-01-02 15:04:05"

func encodeTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func decodeTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(timeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parsing stored time %q: %w", s, err)
	}
	return t, nil
}

// now returns the current UTC time truncated to the stored precision, so a
// value written and read back compares equal.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// duplicateError maps a SQLite UNIQUE violation onto the duplicate sentinel,
// naming the offending column. Returns nil if err is not a UNIQUE violation.
func duplicateError(err error) *apperror.AppError {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return nil
	}
	switch {
	case strings.Contains(msg, "users.username"):
		return apperror.Duplicate("username")
	case strings.Contains(msg, "users.email"):
		return apperror.Duplicate("email")
	case strings.Contains(msg, "users.tracking_code"):
		return apperror.Duplicate("tracking code")
	case strings.Contains(msg, "vehicles.vehicle_number"):
		return apperror.Duplicate("vehicle number")
	}
	return apperror.Duplicate("record")
}
