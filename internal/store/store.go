// Package store persists pathwise records. The pipeline sees the store as an
// opaque keyed collection: upsert by record id, read back in insertion order,
// always scoped to one owner and one role tag.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Collections used by pathwise.
const (
	CollectionProfiles    = "profiles"
	CollectionReflections = "reflections"
	CollectionAudits      = "audits"
)

// ErrOwnerMismatch is returned when an upsert targets a record id that
// belongs to another owner.
var ErrOwnerMismatch = errors.New("record belongs to another owner")

// Record is one stored document.
type Record struct {
	ID        string
	OwnerID   string
	Data      json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RecordStore is the persistence contract consumed by the pipeline and the
// history flows.
type RecordStore interface {
	// Save upserts rec by id. An existing record keeps its insertion position.
	Save(ctx context.Context, collection string, rec Record, role string) error
	// Query returns the owner's records in insertion order.
	Query(ctx context.Context, collection, ownerID, role string) ([]Record, error)
}

// Backend is a RecordStore that owns resources.
type Backend interface {
	RecordStore
	Close() error
}

// Open opens the backend for driver: "sqlite3" (mattn, cgo), "sqlite"
// (modernc, pure Go) or "memory".
func Open(driver, path string) (Backend, error) {
	switch driver {
	case "memory":
		return NewMemoryStore(), nil
	case DriverMattn, DriverModernc:
		return NewSQLStore(driver, path)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}
}

func validate(collection string, rec Record, role string) error {
	switch {
	case collection == "":
		return fmt.Errorf("collection is required")
	case rec.ID == "":
		return fmt.Errorf("record id is required")
	case rec.OwnerID == "":
		return fmt.Errorf("record owner is required")
	case role == "":
		return fmt.Errorf("role scope is required")
	case !json.Valid(rec.Data):
		return fmt.Errorf("record %s: data is not valid JSON", rec.ID)
	}
	return nil
}

// =============================================================================
// TYPED HELPERS
// =============================================================================

// SaveJSON marshals v and saves it under id.
func SaveJSON(ctx context.Context, s RecordStore, collection, role, ownerID, id string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s record %s: %w", collection, id, err)
	}
	return s.Save(ctx, collection, Record{ID: id, OwnerID: ownerID, Data: data}, role)
}

// QueryJSON reads the owner's records and decodes each into T, in insertion order.
func QueryJSON[T any](ctx context.Context, s RecordStore, collection, ownerID, role string) ([]T, error) {
	records, err := s.Query(ctx, collection, ownerID, role)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(records))
	for _, rec := range records {
		var v T
		if err := json.Unmarshal(rec.Data, &v); err != nil {
			return nil, fmt.Errorf("failed to decode %s record %s: %w", collection, rec.ID, err)
		}
		out = append(out, v)
	}
	return out, nil
}
