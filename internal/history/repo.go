package history

import (
	"context"
	"errors"
)

// ErrNotFound marks a history record ID with no matching row.
var ErrNotFound = errors.New("history record not found")

// Repo is the append-only history sink. Records are never updated;
// DeleteAll is the only destructive operation.
type Repo interface {
	Create(ctx context.Context, rec Record) error
	// Get returns one record by ID, or ErrNotFound.
	Get(ctx context.Context, id int64) (Record, error)
	// List returns records newest-first.
	List(ctx context.Context, limit, offset int) ([]Record, error)
	// DeleteAll removes every record. It returns the number of deleted
	// records and the storage keys of the stored source documents, so the
	// caller can clean up objects.
	DeleteAll(ctx context.Context) (deleted int64, storageKeys []string, err error)
}
