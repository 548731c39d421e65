package store

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/todo/internal/testutil"
)

func TestOpen_LoadsFile(t *testing.T) {
	s, _ := openMemStore(t, "placeholder:false\nbuy milk:true\n")

	assert.Equal(t, 2, s.Len())
	checked, ok := s.Get("buy milk")
	assert.True(t, ok)
	assert.True(t, checked)
}

func TestOpen_CorruptStore(t *testing.T) {
	f := testutil.NewMemFile("ok:true\nfoo:maybe\n")

	s, err := Open(context.Background(), NewFileBackend(f))
	require.Error(t, err)
	assert.Nil(t, s)
	assert.True(t, IsCorrupt(err))
	assert.Contains(t, err.Error(), "line 2")

	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "foo:maybe", de.Text)
}

func TestOpen_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Open(ctx, NewFileBackend(testutil.NewMemFile("")))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAdd_InsertsUnchecked(t *testing.T) {
	s, f := openMemStore(t, "placeholder:false\n")

	require.NoError(t, s.Add(context.Background(), "buy milk"))

	assert.Equal(t, map[string]bool{"placeholder": false, "buy milk": false}, s.Snapshot())
	assert.Equal(t, "buy milk:false\nplaceholder:false\n", f.String())
}

func TestAdd_OverwritesChecked(t *testing.T) {
	s, _ := openMemStore(t, "")
	ctx := context.Background()

	require.NoError(t, s.Check(ctx, "buy milk"))
	require.NoError(t, s.Add(ctx, "buy milk"))

	assert.Equal(t, 1, s.Len())
	checked, ok := s.Get("buy milk")
	assert.True(t, ok)
	assert.False(t, checked)
}

func TestAdd_EmptyLabelAccepted(t *testing.T) {
	s, f := openMemStore(t, "")

	require.NoError(t, s.Add(context.Background(), ""))
	assert.Equal(t, ":false\n", f.String())
}

func TestCheck_Idempotent(t *testing.T) {
	s, _ := openMemStore(t, "placeholder:false\nbuy milk:false\n")
	ctx := context.Background()

	require.NoError(t, s.Check(ctx, "buy milk"))
	once := s.Snapshot()
	require.NoError(t, s.Check(ctx, "buy milk"))

	assert.Equal(t, once, s.Snapshot())
}

func TestCheck_CreatesAbsentItem(t *testing.T) {
	s, _ := openMemStore(t, "placeholder:false\n")

	require.NoError(t, s.Check(context.Background(), "never added"))

	checked, ok := s.Get("never added")
	assert.True(t, ok)
	assert.True(t, checked)
	assert.Equal(t, 2, s.Len())
}

func TestDelete_RemovesExactlyOne(t *testing.T) {
	s, f := openMemStore(t, "a:true\nb:false\nc:true\n")

	require.NoError(t, s.Delete(context.Background(), "b"))

	assert.Equal(t, map[string]bool{"a": true, "c": true}, s.Snapshot())
	assert.Equal(t, "a:true\nc:true\n", f.String())
}

func TestDelete_AbsentIsNoop(t *testing.T) {
	s, f := openMemStore(t, "a:true\nb:false\n")

	require.NoError(t, s.Delete(context.Background(), "zzz"))

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, "a:true\nb:false\n", f.String())
}

func TestSet_InvalidLabel(t *testing.T) {
	labels := []string{"a:b", "two\nlines", "cr\rlf"}

	for _, label := range labels {
		s, f := openMemStore(t, "placeholder:false\n")

		err := s.Add(context.Background(), label)
		require.Error(t, err)
		assert.True(t, IsInvalidLabel(err))
		assert.Equal(t, 1, s.Len(), "store must be unchanged")
		assert.Equal(t, "placeholder:false\n", f.String(), "nothing saved")
	}
}

func TestSet_NormalizesLabel(t *testing.T) {
	s, _ := openMemStore(t, "")
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, "caf\u00e9"))
	require.NoError(t, s.Check(ctx, "cafe\u0301"))

	assert.Equal(t, map[string]bool{"caf\u00e9": true}, s.Snapshot())

	require.NoError(t, s.Delete(ctx, "cafe\u0301"))
	assert.Equal(t, 0, s.Len())
}

func TestSave_PersistFailure(t *testing.T) {
	s, f := openMemStore(t, "placeholder:false\n")
	f.WriteErr = errors.New("disk full")

	err := s.Add(context.Background(), "buy milk")
	require.Error(t, err)
	assert.True(t, IsPersistFailure(err))
	assert.Contains(t, err.Error(), "disk full")
}

func TestSave_TruncateFailure(t *testing.T) {
	s, f := openMemStore(t, "placeholder:false\n")
	f.TruncateErr = errors.New("read-only file system")

	err := s.Delete(context.Background(), "placeholder")
	require.Error(t, err)
	assert.True(t, IsPersistFailure(err))
	assert.Equal(t, "placeholder:false\n", f.String())
}

func TestSave_ShorterSnapshotLeavesNoTail(t *testing.T) {
	s, f := openMemStore(t, "a very long label that will be removed:false\nb:true\n")

	require.NoError(t, s.Delete(context.Background(), "a very long label that will be removed"))
	assert.Equal(t, "b:true\n", f.String())
}

func TestClose_ClosesFile(t *testing.T) {
	f := testutil.NewMemFile("")
	s, err := Open(context.Background(), NewFileBackend(f))
	require.NoError(t, err)

	require.NoError(t, s.Close())
	assert.True(t, f.Closed())
}

func TestClose_NilBackend(t *testing.T) {
	s := &Store{}
	assert.NoError(t, s.Close())
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s, err := Open(context.Background(), NewFileBackend(testutil.NewMemFile("")), WithLogger(logger))
	require.NoError(t, err)
	require.NoError(t, s.Add(context.Background(), "buy milk"))

	assert.Contains(t, buf.String(), "store loaded")
	assert.Contains(t, buf.String(), "label=\"buy milk\"")
}

func TestItems_SortedByLabel(t *testing.T) {
	s, _ := openMemStore(t, "c:true\na:false\nb:true\n")

	assert.Equal(t, []Item{
		{Label: "a", Checked: false},
		{Label: "b", Checked: true},
		{Label: "c", Checked: true},
	}, s.Items())
}

func TestSnapshot_IsCopy(t *testing.T) {
	s, _ := openMemStore(t, "a:true\n")

	snap := s.Snapshot()
	snap["b"] = true

	assert.Equal(t, 1, s.Len())
}

// File-backed tests

func TestOpenFile_Bootstrap(t *testing.T) {
	s, path := openFileStore(t)

	assert.Equal(t, map[string]bool{BootstrapLabel: false}, s.Snapshot())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "placeholder:false\n", string(data))
}

func TestOpenFile_ExistingFileNotSeeded(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("buy milk:true\n"), 0644))

	s := reopenFileStore(t, path)
	assert.Equal(t, map[string]bool{"buy milk": true}, s.Snapshot())
}

func TestOpenFile_ExistingEmptyFileStaysEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, nil, 0644))

	s := reopenFileStore(t, path)
	assert.Equal(t, 0, s.Len())
}

func TestOpenFile_InvalidPath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := OpenFile(filepath.Join(blocker, FileName))
	require.Error(t, err)

	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, ErrCodeOpen, se.Code)
}

func TestOpenFile_Path(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	b, err := OpenFile(path)
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, path, b.Path())
	assert.Empty(t, NewFileBackend(testutil.NewMemFile("")).Path())
}

func TestEndToEnd_File(t *testing.T) {
	ctx := context.Background()
	s, path := openFileStore(t)

	require.NoError(t, s.Add(ctx, "buy milk"))
	assert.Equal(t, map[string]bool{"placeholder": false, "buy milk": false}, s.Snapshot())

	require.NoError(t, s.Check(ctx, "buy milk"))
	assert.Equal(t, map[string]bool{"placeholder": false, "buy milk": true}, s.Snapshot())

	require.NoError(t, s.Delete(ctx, "placeholder"))
	assert.Equal(t, map[string]bool{"buy milk": true}, s.Snapshot())

	// Reload the file externally
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	reloaded, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"buy milk": true}, reloaded)

	// And through a fresh store
	require.NoError(t, s.Close())
	again := reopenFileStore(t, path)
	assert.Equal(t, map[string]bool{"buy milk": true}, again.Snapshot())
}

func TestEndToEnd_DeleteAllThenReopen(t *testing.T) {
	ctx := context.Background()
	s, path := openFileStore(t)

	require.NoError(t, s.Delete(ctx, BootstrapLabel))
	require.NoError(t, s.Close())

	again := reopenFileStore(t, path)
	assert.Equal(t, 0, again.Len(), "bootstrap record is only written on creation")
}

func TestError_Format(t *testing.T) {
	err := &Error{Code: ErrCodeInvalidLabel, Message: "bad", Label: "a:b"}
	assert.Equal(t, `INVALID_LABEL: bad (label="a:b")`, err.Error())

	wrapped := &Error{Code: ErrCodePersist, Message: "failed", Err: errors.New("boom")}
	assert.Equal(t, "PERSIST_FAILED: failed: boom", wrapped.Error())
	assert.False(t, IsCorrupt(errors.New("plain")))
}
