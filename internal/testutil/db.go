package testutil

import (
	"database/sql"
	"testing"

	"fieldshot/internal/db"
	fssql "fieldshot/sql"

	_ "modernc.org/sqlite"
)

// SetupTestDB creates a temporary in-memory SQLite database with migrations applied.
// Returns the database connection and a cleanup function that should be deferred.
func SetupTestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	database, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// Ensure in-memory DB uses a single connection to avoid per-connection isolation
	database.SetMaxOpenConns(1)
	database.SetMaxIdleConns(1)

	if _, err := database.Exec("PRAGMA foreign_keys = ON"); err != nil {
		database.Close()
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	if err := db.ApplyMigrations(database, fssql.MigrationsFS); err != nil {
		database.Close()
		t.Fatalf("failed to apply migrations: %v", err)
	}

	var count int
	err = database.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('snapshots', 'ingest_events')").Scan(&count)
	if err != nil {
		database.Close()
		t.Fatalf("failed to verify tables: %v", err)
	}
	if count != 2 {
		database.Close()
		t.Fatalf("expected 2 tables, found %d", count)
	}

	cleanup := func() {
		database.Close()
	}

	return database, cleanup
}
