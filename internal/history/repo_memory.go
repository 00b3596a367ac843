package history

import (
	"context"
	"sync"
)

// MemoryRepo implements Repo in process, for local runs and tests.
type MemoryRepo struct {
	mu      sync.Mutex
	nextID  int64
	records []Record
}

// NewMemoryRepo creates an empty in-memory history repo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{nextID: 1}
}

// Create appends a record.
func (m *MemoryRepo) Create(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.ID = m.nextID
	m.nextID++
	m.records = append(m.records, rec)
	return nil
}

// Get returns one record by ID.
func (m *MemoryRepo) Get(ctx context.Context, id int64) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return Record{}, ErrNotFound
}

// List returns records newest-first.
func (m *MemoryRepo) List(ctx context.Context, limit, offset int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Record, 0, limit)
	for i := len(m.records) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

// DeleteAll removes every record and returns stored object keys.
func (m *MemoryRepo) DeleteAll(ctx context.Context) (int64, []string, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var keys []string
	for _, rec := range m.records {
		if rec.StorageKey != "" {
			keys = append(keys, rec.StorageKey)
		}
	}
	deleted := int64(len(m.records))
	m.records = nil
	return deleted, keys, nil
}

var _ Repo = (*MemoryRepo)(nil)
