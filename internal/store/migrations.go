package store

import (
	"database/sql"
	"fmt"

	"pathwise/internal/logging"
)

// Schema versions (PRAGMA user_version):
// v1: records table keyed by (collection, role, id) with insertion sequence
// v2: owner lookup index in insertion order
const CurrentSchemaVersion = 2

// Migration is one schema step.
type Migration struct {
	Version     int
	Description string
	Statements  []string
}

// migrations lists every schema step in version order.
var migrations = []Migration{
	{1, "create records", []string{`
		CREATE TABLE IF NOT EXISTS records (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			collection TEXT NOT NULL,
			role TEXT NOT NULL,
			owner_id TEXT NOT NULL,
			id TEXT NOT NULL,
			data TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			UNIQUE(collection, role, id)
		)`,
	}},
	{2, "index owner lookups", []string{
		`CREATE INDEX IF NOT EXISTS idx_records_owner ON records(collection, role, owner_id, seq)`,
	}},
}

// RunMigrations brings db up to CurrentSchemaVersion. Each step runs in its
// own transaction together with the version bump.
func RunMigrations(db *sql.DB) error {
	timer := logging.StartTimer(logging.CategoryStore, "RunMigrations")
	defer timer.Stop()

	version, err := schemaVersion(db)
	if err != nil {
		return err
	}
	if version > CurrentSchemaVersion {
		return fmt.Errorf("database schema v%d is newer than supported v%d", version, CurrentSchemaVersion)
	}

	applied := 0
	for _, m := range migrations {
		if m.Version <= version {
			continue
		}
		logging.StoreDebug("Applying migration v%d: %s", m.Version, m.Description)
		if err := apply(db, m); err != nil {
			return fmt.Errorf("migration v%d (%s) failed: %w", m.Version, m.Description, err)
		}
		applied++
	}

	if applied > 0 {
		logging.Store("Schema migrations complete: v%d -> v%d (%d applied)", version, CurrentSchemaVersion, applied)
	}
	return nil
}

func apply(db *sql.DB, m Migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	for _, stmt := range m.Statements {
		if _, err := tx.Exec(stmt); err != nil {
			tx.Rollback()
			return err
		}
	}
	// PRAGMA does not accept bound parameters.
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.Version)); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func schemaVersion(db *sql.DB) (int, error) {
	var v int
	if err := db.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}

// tableExists checks if a table exists in the database.
func tableExists(db *sql.DB, table string) bool {
	var count int
	query := "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?"
	if err := db.QueryRow(query, table).Scan(&count); err != nil {
		logging.StoreDebug("Table existence check failed for %s: %v", table, err)
		return false
	}
	return count > 0
}

// indexExists checks if an index exists in the database.
func indexExists(db *sql.DB, index string) bool {
	var count int
	query := "SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name=?"
	if err := db.QueryRow(query, index).Scan(&count); err != nil {
		return false
	}
	return count > 0
}
