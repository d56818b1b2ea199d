package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"pathwise/internal/logging"
)

// SQL driver names as registered by the two SQLite packages.
const (
	DriverMattn   = "sqlite3"
	DriverModernc = "sqlite"
)

// SQLStore implements RecordStore on SQLite.
type SQLStore struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
	now    func() time.Time
}

// NewSQLStore initializes the SQLite database at the given path.
func NewSQLStore(driver, path string) (*SQLStore, error) {
	timer := logging.StartTimer(logging.CategoryStore, "NewSQLStore")
	defer timer.Stop()

	logging.Store("Initializing SQLStore driver=%s path=%s", driver, path)

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open(driver, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			logging.StoreDebug("Failed to apply %q: %v", pragma, err)
		}
	}

	s := &SQLStore{db: db, dbPath: path, now: time.Now}
	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Store("SQLStore ready (schema v%d)", CurrentSchemaVersion)
	return s, nil
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *SQLStore) Path() string {
	return s.dbPath
}

// Save implements RecordStore.
func (s *SQLStore) Save(ctx context.Context, collection string, rec Record, role string) error {
	if err := validate(collection, rec, role); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO records (collection, role, owner_id, id, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(collection, role, id) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
		WHERE records.owner_id = excluded.owner_id
	`, collection, role, rec.OwnerID, rec.ID, string(rec.Data), now, now)
	if err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to save %s/%s: %v", collection, rec.ID, err)
		return fmt.Errorf("failed to save %s record %s: %w", collection, rec.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to save %s record %s: %w", collection, rec.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("save %s record %s: %w", collection, rec.ID, ErrOwnerMismatch)
	}

	logging.StoreDebug("Saved %s/%s owner=%s role=%s", collection, rec.ID, rec.OwnerID, role)
	return nil
}

// Query implements RecordStore.
func (s *SQLStore) Query(ctx context.Context, collection, ownerID, role string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, data, created_at, updated_at
		FROM records
		WHERE collection = ? AND role = ? AND owner_id = ?
		ORDER BY seq ASC
	`, collection, role, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var data, created, updated string
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &data, &created, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan %s record: %w", collection, err)
		}
		rec.Data = []byte(data)
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", collection, err)
	}

	logging.StoreDebug("Query %s owner=%s role=%s -> %d records", collection, ownerID, role, len(records))
	return records, nil
}
