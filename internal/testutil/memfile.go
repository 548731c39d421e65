package testutil

import (
	"errors"
	"io"
	"sync"
)

// MemFile is an in-memory read/write/seek/truncate file for tests.
//
// Failures can be injected per operation to exercise persistence error paths.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type MemFile struct {
	mu     sync.Mutex
	data   []byte
	off    int64
	closed bool

	// WriteErr, if set, is returned by every Write.
	WriteErr error

	// TruncateErr, if set, is returned by every Truncate.
	TruncateErr error
}

// NewMemFile creates a MemFile holding content, positioned at offset 0.
func NewMemFile(content string) *MemFile {
	return &MemFile{data: []byte(content)}
}

// Read reads from the current offset.
func (f *MemFile) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return 0, errors.New("memfile: read on closed file")
	}
	if f.off >= int64(len(f.data)) {
		return 0, io.EOF
	}
	n := copy(p, f.data[f.off:])
	f.off += int64(n)
	return n, nil
}

// Write writes at the current offset, growing the file as needed.
func (f *MemFile) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return 0, errors.New("memfile: write on closed file")
	}
	if f.WriteErr != nil {
		return 0, f.WriteErr
	}
	end := f.off + int64(len(p))
	if end > int64(len(f.data)) {
		grown := make([]byte, end)
		copy(grown, f.data)
		f.data = grown
	}
	copy(f.data[f.off:], p)
	f.off = end
	return len(p), nil
}

// Seek sets the offset for the next Read or Write.
func (f *MemFile) Seek(offset int64, whence int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = f.off + offset
	case io.SeekEnd:
		abs = int64(len(f.data)) + offset
	default:
		return 0, errors.New("memfile: invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("memfile: negative position")
	}
	f.off = abs
	return abs, nil
}

// Truncate changes the size of the file. The offset is left unchanged.
func (f *MemFile) Truncate(size int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.TruncateErr != nil {
		return f.TruncateErr
	}
	if size < 0 {
		return errors.New("memfile: negative size")
	}
	if size <= int64(len(f.data)) {
		f.data = f.data[:size]
		return nil
	}
	grown := make([]byte, size)
	copy(grown, f.data)
	f.data = grown
	return nil
}

// Close marks the file closed. Further reads and writes fail.
func (f *MemFile) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (f *MemFile) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// String returns the current file content.
func (f *MemFile) String() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return string(f.data)
}
