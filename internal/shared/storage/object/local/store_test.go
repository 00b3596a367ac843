package local

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestSaveOpenDelete(t *testing.T) {
	ctx := context.Background()
	store := New(t.TempDir())

	key, size, mimeType, err := store.Save(ctx, "lease.pdf", strings.NewReader("%PDF-1.4 fake body"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(key, "documents/") || !strings.HasSuffix(key, "-lease.pdf") {
		t.Fatalf("key = %q", key)
	}
	if size != int64(len("%PDF-1.4 fake body")) {
		t.Fatalf("size = %d", size)
	}
	if !strings.HasPrefix(mimeType, "application/pdf") && !strings.HasPrefix(mimeType, "text/plain") {
		t.Fatalf("mime = %q", mimeType)
	}

	rc, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	body, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(body) != "%PDF-1.4 fake body" {
		t.Fatalf("body = %q", body)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	// Deleting a missing key is not an error.
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if _, err := store.Open(ctx, key); err == nil {
		t.Fatal("open after delete should fail")
	}
}

func TestSaveRejectsTraversalNames(t *testing.T) {
	ctx := context.Background()
	store := New(t.TempDir())

	if _, _, _, err := store.Save(ctx, "../../etc/passwd", strings.NewReader("x")); err == nil {
		t.Fatal("want error for traversal name")
	}
}

func TestOpenRejectsTraversalKeys(t *testing.T) {
	ctx := context.Background()
	store := New(t.TempDir())

	if _, err := store.Open(ctx, "../outside"); err == nil {
		t.Fatal("want error for traversal key")
	}
}
