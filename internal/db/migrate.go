package db

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
)

var migrationName = regexp.MustCompile(`^(\d+)_.*\.sql$`)

// ApplyMigrations applies SQL migrations from migrationsFS to the given db.
// Files live under schema/ and are named NNN_description.sql; each version
// is applied at most once, inside a transaction.
func ApplyMigrations(db *sql.DB, migrationsFS embed.FS) error {
	// Ensure schema_migrations exists
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
        version INTEGER PRIMARY KEY,
        applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );`); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	// Read applied versions
	rows, err := db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("query applied migrations: %w", err)
	}
	defer rows.Close()
	applied := map[int]bool{}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return err
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	// Read migration files from the embedded FS
	entries, err := fs.ReadDir(migrationsFS, "schema")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	type mig struct {
		name string
		ver  int
	}
	var items []mig
	for _, e := range entries {
		m := migrationName.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		ver, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		items = append(items, mig{name: e.Name(), ver: ver})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ver < items[j].ver })

	for _, item := range items {
		if applied[item.ver] {
			continue
		}
		raw, err := fs.ReadFile(migrationsFS, "schema/"+item.name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", item.name, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", item.name, err)
		}
		if _, err := tx.Exec(string(raw)); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration %s: %w", item.name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, item.ver); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %s: %w", item.name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", item.name, err)
		}
	}

	return nil
}
