package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// FileName is the name of the backing file inside the data directory.
const FileName = "todo.txt"

// BootstrapLabel is the item seeded into a newly created backing store.
const BootstrapLabel = "placeholder"

// bootstrapRecord is written to a backing file that did not exist before it
// was opened.
var bootstrapRecord = []byte(BootstrapLabel + fieldSeparator + tokenFalse + "\n")

// File is the handle a FileBackend reads from and rewrites.
// *os.File satisfies it.
type File interface {
	io.ReadWriteSeeker
	Truncate(size int64) error
}

// FileBackend persists the list as a flat text file.
type FileBackend struct {
	file File
	path string // empty when wrapping a caller-supplied handle
}

// NewFileBackend wraps an already open read+write handle.
// The handle is owned by the backend from here on and closed by Close if it
// implements io.Closer.
func NewFileBackend(f File) *FileBackend {
	return &FileBackend{file: f}
}

// OpenFile opens or creates the backing file at path.
// The parent directory is created if needed. The file is opened read+write
// without truncation; if it did not exist before this call it is seeded with
// the bootstrap record.
func OpenFile(path string) (*FileBackend, error) {
	_, statErr := os.Stat(path)
	created := errors.Is(statErr, fs.ErrNotExist)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, newOpenError(path, fmt.Errorf("create data dir: %w", err))
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, newOpenError(path, err)
	}

	if created {
		if err := seedFile(f); err != nil {
			f.Close()
			return nil, newOpenError(path, fmt.Errorf("write bootstrap record: %w", err))
		}
	}

	return &FileBackend{file: f, path: path}, nil
}

// seedFile writes the bootstrap record if the file is empty and rewinds it.
func seedFile(f *os.File) error {
	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		if _, err := f.Write(bootstrapRecord); err != nil {
			return err
		}
	}
	_, err = f.Seek(0, io.SeekStart)
	return err
}

// Path returns the path the backend was opened from, or "" for a wrapped
// handle.
func (b *FileBackend) Path() string {
	return b.path
}

// Load reads and decodes the whole file.
func (b *FileBackend) Load(ctx context.Context) (map[string]bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := b.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek: %w", err)
	}
	data, err := io.ReadAll(b.file)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	items, err := Unmarshal(data)
	if err != nil {
		return nil, newCorruptError(err)
	}
	return items, nil
}

// Save truncates the file and rewrites the full snapshot.
func (b *FileBackend) Save(ctx context.Context, items map[string]bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.file.Truncate(0); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}
	if _, err := b.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seek: %w", err)
	}
	if _, err := b.file.Write(Marshal(items)); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if s, ok := b.file.(interface{ Sync() error }); ok {
		if err := s.Sync(); err != nil {
			return fmt.Errorf("sync: %w", err)
		}
	}
	return nil
}

// Close releases the underlying handle.
func (b *FileBackend) Close() error {
	if c, ok := b.file.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
