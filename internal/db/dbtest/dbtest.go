// Package dbtest opens a migrated SQLite database for tests.
package dbtest

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/fitfuel/fitfuel/internal/db"
	"github.com/jmoiron/sqlx"
)

// Open returns a fresh database in t.TempDir with all migrations applied.
func Open(t *testing.T) *sqlx.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_time_format=sqlite"

	database, err := db.Init("sqlite", dsn)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := db.RunMigrations(database.DB, "sqlite"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	return database
}

// CreateUser inserts a bare user row so foreign keys resolve.
func CreateUser(t *testing.T, database *sqlx.DB, id string) {
	t.Helper()

	_, err := database.Exec(`INSERT INTO users (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
		id, id+"@example.com", "x", time.Now().UTC())
	if err != nil {
		t.Fatalf("create user %s: %v", id, err)
	}
}
