package tabdb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kjk/tabdb/assert"
	"github.com/kjk/tabdb/require"
	"github.com/kjk/tabdb/structidx"
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

func TestPersistLayout(t *testing.T) {
	dir := t.TempDir()
	s := makeStore(t, filepath.Join(dir, "data.txt"), []string{"id", "day"}, 0)
	require.NoError(t, s.AddDataRow([]float64{1, 5}))
	require.NoError(t, s.Persist())

	d, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "id\tday\t\n1.0\t5.0\t\n", string(d))

	d, err = os.ReadFile(s.IndexPath())
	require.NoError(t, err)
	assert.Equal(t, "0:0:2:1\t0:3:3:1\t1:8:3:2\t1:12:3:2\t\n", string(d))

	assert.Equal(t, []string{"data.txt", "data.txt.pos"}, listDir(t, dir))

	// in-memory positions were updated
	c := s.Row(0).Cells[1]
	assert.Equal(t, 12, c.Offset)
	assert.Equal(t, 3, c.Length)
	assert.Equal(t, "5.0", s.ReadCellText(c))
}

func TestPersistMatchesTokenizer(t *testing.T) {
	s := mustParse(t, "a  b\n7 8.25\n-1 1e30\n")
	require.NoError(t, s.Persist())

	entries, err := structidx.ReadFile(s.IndexPath())
	require.NoError(t, err)

	reparsed := New(s.Path())
	require.NoError(t, reparsed.ParseFile())
	i := 0
	for _, r := range reparsed.rows {
		for _, c := range r.Cells {
			require.True(t, i < len(entries))
			assert.Equal(t, entries[i].Offset, c.Offset)
			i++
		}
	}
	assert.Equal(t, len(entries), i)
	assert.Equal(t, []float64{-1, 1e30}, reparsed.Row(1).Values())
}

func TestPersistRoundTrip(t *testing.T) {
	s := makeStore(t, filepath.Join(t.TempDir(), "data.txt"), []string{"id", "v"}, 0)
	vals := [][]float64{{1, 0}, {2, -0.001}, {3, 1234567.5}, {4, 3e-9}}
	for _, v := range vals {
		require.NoError(t, s.AddDataRow(v))
	}
	require.NoError(t, s.Persist())
	// persisting twice gives the same files
	d1, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	require.NoError(t, s.Persist())
	d2, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, string(d1), string(d2))

	reread := New(s.Path())
	require.NoError(t, reread.ParseFile())
	require.Equal(t, len(vals), reread.RecordCount())
	for i, v := range vals {
		assert.Equal(t, v, reread.Row(i).Values())
	}
}

func TestPersistFails(t *testing.T) {
	s := makeStore(t, filepath.Join(t.TempDir(), "missing", "data.txt"), []string{"id"}, 1)
	assert.Error(t, s.Persist())
}

func TestPersistKeepsOldOnError(t *testing.T) {
	s := createStore(t, "id\t\nxx\t\n")
	writeTestFile(t, s.IndexPath(), "0:0:2:1\t1:4:2:2\t\n")
	require.NoError(t, s.ReadFileByStructure())
	assert.Error(t, s.Persist())
	d, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "id\t\nxx\t\n", string(d))
	assert.Equal(t, []string{"data.txt", "data.txt.pos"}, listDir(t, filepath.Dir(s.Path())))
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		v   float64
		exp string
	}{
		{0, "0.0"},
		{5, "5.0"},
		{-3, "-3.0"},
		{12.5, "12.5"},
		{1234567, "1234567.0"},
		{0.001, "0.001"},
		{1e-7, "1e-07"},
		{1e21, "1e+21"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.exp, formatNumber(tc.v))
	}
}
