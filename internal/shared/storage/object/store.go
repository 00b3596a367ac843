package object

import (
	"context"
	"io"
)

// ObjectStore defines the contract for saving, retrieving and deleting
// binary objects. Save assigns a unique storage key derived from the file
// name; Delete must be idempotent for already-removed keys.
type ObjectStore interface {
	Save(ctx context.Context, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
}
