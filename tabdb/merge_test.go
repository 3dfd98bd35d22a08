package tabdb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kjk/tabdb/assert"
	"github.com/kjk/tabdb/require"
)

func makeStore(t *testing.T, path string, header []string, nRows int) *Store {
	t.Helper()
	s := New(path)
	require.NoError(t, s.SetHeader(header))
	for i := 0; i < nRows; i++ {
		vals := make([]float64, len(header))
		for j := range vals {
			vals[j] = float64(i*10 + j)
		}
		require.NoError(t, s.AddDataRow(vals))
	}
	return s
}

func TestAppendFromIntoEmpty(t *testing.T) {
	dir := t.TempDir()
	src := makeStore(t, "", []string{"id", "day"}, 10)
	dst := New(filepath.Join(dir, "dst.txt"))

	require.NoError(t, dst.AppendFrom(src, 3))
	assert.Equal(t, src.HeaderNames(), dst.HeaderNames())
	assert.Equal(t, 7, dst.RecordCount())
	for i := 0; i < dst.RecordCount(); i++ {
		assert.Equal(t, src.Row(i+3).Values(), dst.Row(i).Values())
	}

	// result was persisted
	reread := New(dst.Path())
	require.NoError(t, reread.ParseFile())
	assert.Equal(t, 7, reread.RecordCount())
	assert.Equal(t, []float64{30, 31}, reread.Row(0).Values())

	lazy := New(dst.Path())
	require.NoError(t, lazy.ReadFileByStructure())
	assert.Equal(t, []string{"id", "day"}, lazy.HeaderNames())
	assert.Equal(t, 7, lazy.RecordCount())
}

func TestAppendFromExisting(t *testing.T) {
	dir := t.TempDir()
	dst := makeStore(t, filepath.Join(dir, "dst.txt"), []string{"a", "b"}, 2)
	// names differ but the column count matches
	src := makeStore(t, "", []string{"x", "y"}, 4)

	require.NoError(t, dst.AppendFrom(src, 0))
	assert.Equal(t, 6, dst.RecordCount())
	assert.Equal(t, []string{"a", "b"}, dst.HeaderNames())

	// indices stay unique
	seen := map[int]bool{}
	for i := 0; i < dst.RecordCount(); i++ {
		idx := dst.Row(i).Index
		assert.False(t, seen[idx], "duplicate index %d", idx)
		seen[idx] = true
	}

	other := makeStore(t, "", []string{"x", "y", "z"}, 1)
	assert.ErrorIs(t, dst.AppendFrom(other, 0), ErrSchemaMismatch)
	assert.Equal(t, 6, dst.RecordCount())
}

func TestAppendFromEdgeCases(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dst.txt")
	dst := New(path)

	empty := New("")
	require.NoError(t, dst.AppendFrom(empty, 0))
	assert.Equal(t, 0, dst.RecordCount())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	headerOnly := makeStore(t, "", []string{"id"}, 0)
	require.NoError(t, dst.AppendFrom(headerOnly, 0))
	assert.Nil(t, dst.HeaderNames())

	src := makeStore(t, "", []string{"id"}, 3)
	assert.ErrorIs(t, dst.AppendFrom(src, -1), ErrOutOfRange)

	// start past the end adds nothing but the header is still written
	require.NoError(t, dst.AppendFrom(src, 5))
	assert.Equal(t, 0, dst.RecordCount())
	assert.Equal(t, []string{"id"}, dst.HeaderNames())
	d, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "id\t\n", string(d))
}

func TestAppendFromLazySource(t *testing.T) {
	dir := t.TempDir()
	src := makeStore(t, filepath.Join(dir, "src.txt"), []string{"id", "day"}, 5)
	require.NoError(t, src.Persist())

	lazy := New(src.Path())
	require.NoError(t, lazy.ReadFileByStructure())
	dst := New(filepath.Join(dir, "dst.txt"))
	require.NoError(t, dst.AppendFrom(lazy, 2))
	assert.Equal(t, 3, dst.RecordCount())
	assert.Equal(t, []float64{20, 21}, dst.Row(0).Values())
	assert.Equal(t, []float64{40, 41}, dst.Row(2).Values())
}

func TestAppendFromBadSourceRow(t *testing.T) {
	src := createStore(t, "id\t\n1\t\nxx\t\n")
	writeTestFile(t, src.IndexPath(), "0:0:2:1\t1:4:1:2\t2:7:2:2\t\n")
	require.NoError(t, src.ReadFileByStructure())
	require.Equal(t, 2, src.RecordCount())

	dir := t.TempDir()
	dst := New(filepath.Join(dir, "dst.txt"))
	assert.Error(t, dst.AppendFrom(src, 0))
	assert.Nil(t, dst.HeaderNames())
	assert.Equal(t, 0, dst.RecordCount())
	assert.Empty(t, listDir(t, dir))

	existing := makeStore(t, filepath.Join(dir, "existing.txt"), []string{"id"}, 2)
	require.NoError(t, existing.Persist())
	assert.Error(t, existing.AppendFrom(src, 0))
	assert.Equal(t, 2, existing.RecordCount())
	// the next row gets the index it would have got without the failed append
	require.NoError(t, existing.AddDataRow([]float64{5}))
	assert.Equal(t, 3, existing.Row(2).Index)
}

func TestJoinByKey(t *testing.T) {
	left := New("")
	require.NoError(t, left.SetHeader([]string{"id", "day"}))
	require.NoError(t, left.AddDataRow([]float64{1, 5}))
	require.NoError(t, left.AddDataRow([]float64{2, 12}))
	require.NoError(t, left.AddDataRow([]float64{3, 40}))

	right := New("")
	require.NoError(t, right.SetHeader([]string{"temp", "id"}))
	require.NoError(t, right.AddDataRow([]float64{-3.5, 2}))
	require.NoError(t, right.AddDataRow([]float64{20, 3}))
	require.NoError(t, right.AddDataRow([]float64{21, 3}))
	require.NoError(t, right.AddDataRow([]float64{7, 9}))

	res, err := left.JoinByKey(right, "id")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "day", "temp"}, res.HeaderNames())
	require.Equal(t, 3, res.RecordCount())
	assert.Equal(t, []float64{2, 12, -3.5}, res.Row(0).Values())
	assert.Equal(t, []float64{3, 40, 20}, res.Row(1).Values())
	assert.Equal(t, []float64{3, 40, 21}, res.Row(2).Values())

	// result lives only in memory
	assert.ErrorIs(t, res.Persist(), ErrNoPath)

	_, err = left.JoinByKey(right, "day")
	assert.ErrorIs(t, err, ErrUnknownColumn)
	_, err = left.JoinByKey(right, "nope")
	assert.ErrorIs(t, err, ErrUnknownColumn)
}
