package atomicfile

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kjk/tabdb/assert"
	"github.com/kjk/tabdb/require"
)

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var res []string
	for _, e := range entries {
		res = append(res, e.Name())
	}
	return res
}

func readString(t *testing.T, path string) string {
	t.Helper()
	d, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(d)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")
	err := os.WriteFile(path, []byte("old"), 0644)
	require.NoError(t, err)

	errFailed := errors.New("failed")
	err = WriteFile(path, func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return errFailed
	})
	assert.ErrorIs(t, err, errFailed)
	assert.Equal(t, "old", readString(t, path))
	assert.Equal(t, []string{"file.txt"}, listDir(t, dir))

	err = WriteFile(path, func(w io.Writer) error {
		_, err := w.Write([]byte("new"))
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "new", readString(t, path))
	assert.Equal(t, []string{"file.txt"}, listDir(t, dir))
}

func TestCancel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")
	f, err := New(path)
	require.NoError(t, err)
	_, err = f.Write([]byte("data"))
	require.NoError(t, err)
	f.Cancel()
	assert.ErrorIs(t, f.Close(), ErrCancelled)
	_, err = f.Write([]byte("more"))
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Empty(t, listDir(t, dir))

	// Cancel after Close keeps the file
	f, err = New(path)
	require.NoError(t, err)
	_, err = f.Write([]byte("data"))
	require.NoError(t, err)
	require.NoError(t, f.Close())
	f.Cancel()
	require.NoError(t, f.Close())
	assert.Equal(t, "data", readString(t, path))
}

func TestCopyFrom(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "copy.txt")
	s := strings.Repeat("line\n", 10000)
	n, err := CopyFrom(path, strings.NewReader(s))
	require.NoError(t, err)
	assert.Equal(t, int64(len(s)), n)
	assert.Equal(t, s, readString(t, path))
}

func TestNewInvalidPath(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "file.txt"))
	assert.Error(t, err)
	_, err = New(t.TempDir() + string(filepath.Separator))
	assert.Error(t, err)
}
