package store

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore is an in-process RecordStore.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]*memCollection // key: collection + "\x00" + role
	now  func() time.Time
}

type memCollection struct {
	order []string
	byID  map[string]Record
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]*memCollection), now: time.Now}
}

// Save implements RecordStore.
func (m *MemoryStore) Save(ctx context.Context, collection string, rec Record, role string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validate(collection, rec, role); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := collection + "\x00" + role
	c, ok := m.data[key]
	if !ok {
		c = &memCollection{byID: make(map[string]Record)}
		m.data[key] = c
	}

	now := m.now().UTC()
	rec.Data = append([]byte(nil), rec.Data...)
	if existing, ok := c.byID[rec.ID]; ok {
		if existing.OwnerID != rec.OwnerID {
			return fmt.Errorf("save %s record %s: %w", collection, rec.ID, ErrOwnerMismatch)
		}
		rec.CreatedAt = existing.CreatedAt
		rec.UpdatedAt = now
		c.byID[rec.ID] = rec
		return nil
	}
	rec.CreatedAt, rec.UpdatedAt = now, now
	c.byID[rec.ID] = rec
	c.order = append(c.order, rec.ID)
	return nil
}

// Query implements RecordStore.
func (m *MemoryStore) Query(ctx context.Context, collection, ownerID, role string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.data[collection+"\x00"+role]
	if !ok {
		return nil, nil
	}
	var out []Record
	for _, id := range c.order {
		rec := c.byID[id]
		if rec.OwnerID != ownerID {
			continue
		}
		rec.Data = append([]byte(nil), rec.Data...)
		out = append(out, rec)
	}
	return out, nil
}

// Close implements Backend.
func (m *MemoryStore) Close() error {
	return nil
}
