package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/todo/internal/testutil"
)

// openMemStore opens a store over an in-memory file holding content.
func openMemStore(t *testing.T, content string) (*Store, *testutil.MemFile) {
	t.Helper()
	f := testutil.NewMemFile(content)
	s, err := Open(context.Background(), NewFileBackend(f))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, f
}

// openFileStore opens a store over todo.txt in a fresh temp data dir.
func openFileStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "todo", FileName)
	s := reopenFileStore(t, path)
	return s, path
}

// reopenFileStore opens a store over an existing (or new) path.
func reopenFileStore(t *testing.T, path string) *Store {
	t.Helper()
	b, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() failed: %v", err)
	}
	s, err := Open(context.Background(), b)
	if err != nil {
		b.Close()
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}
