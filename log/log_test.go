package log

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kjk/tabdb/assert"
	"github.com/kjk/tabdb/require"
)

func TestEventLineRoundTrip(t *testing.T) {
	ts := time.UnixMilli(1700000000123).UTC()
	var buf bytes.Buffer
	buf.Write(marshalEventLine("tabdb.persist", ts, []byte("rows: 3")))
	buf.Write(marshalEventLine("empty", ts, nil))
	buf.Write(marshalEventLine("nl", ts, []byte("a: 1\n")))

	assert.True(t, strings.HasPrefix(buf.String(), "--- 7 1700000000123 tabdb.persist\nrows: 3\n"))

	recs, err := ReadEvents(&buf)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "tabdb.persist", recs[0].Name)
	assert.Equal(t, ts, recs[0].Timestamp)
	assert.Equal(t, "rows: 3", string(recs[0].Data))
	assert.Equal(t, "empty", recs[1].Name)
	assert.Empty(t, recs[1].Data)
	assert.Equal(t, "a: 1\n", string(recs[2].Data))
}

func TestReadEventsInvalid(t *testing.T) {
	_, err := ReadEvents(strings.NewReader("garbage\n"))
	assert.Error(t, err)
	_, err = ReadEvents(strings.NewReader("--- 10 1 name\nshort"))
	assert.Error(t, err)
}

func TestEventToFile(t *testing.T) {
	dir := t.TempDir()
	var gotName string
	var gotVals map[string]any
	Init(&Config{
		Dir: dir,
		OnEvent: func(name string, m map[string]any) {
			gotName = name
			gotVals = m
		},
	})
	defer Close()

	Event("tabdb.append", "rows", 2, "path", "data.txt")
	assert.Equal(t, "tabdb.append", gotName)
	assert.Equal(t, 2, gotVals["rows"])

	path := EventsPath()
	require.NoError(t, eventFile.Sync())
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	recs, err := ReadEvents(f)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "tabdb.append", recs[0].Name)
	assert.True(t, strings.Contains(string(recs[0].Data), "rows"))
}

func TestNoopBeforeInit(t *testing.T) {
	// must not panic when logging isn't initialized
	Close()
	Event("noop", "k", 1)
	Verbosef("not printed\n")
	assert.False(t, IfErrf(nil))
	assert.Equal(t, "", EventsPath())
}

func TestDailyFile(t *testing.T) {
	var nilFile *DailyFile
	assert.NoError(t, nilFile.WriteString("x"))
	assert.NoError(t, nilFile.Close())
	assert.Equal(t, "", nilFile.Path())

	dir := t.TempDir()
	w := NewDailyFile(filepath.Join(dir, "log"))
	require.NoError(t, w.WriteString("one\n"))
	require.NoError(t, w.Close())
	// re-opened in append mode
	require.NoError(t, w.WriteString("two\n"))
	require.NoError(t, w.Close())

	d, err := os.ReadFile(w.Path())
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", string(d))
	assert.True(t, strings.HasSuffix(w.Path(), time.Now().UTC().Format("2006-01-02")+".txt"))
}

func TestErrorfWritesCallstack(t *testing.T) {
	dir := t.TempDir()
	var logged, errs []string
	Init(&Config{
		Dir: dir,
		OnLog: func(s string) {
			logged = append(logged, s)
		},
		OnError: func(s string) {
			errs = append(errs, s)
		},
	})
	defer Close()
	var out, errOut bytes.Buffer
	stdout, stderr = &out, &errOut
	defer func() {
		stdout, stderr = os.Stdout, os.Stderr
	}()

	assert.True(t, IfErrf(os.ErrNotExist, "open failed with '%s'", os.ErrNotExist))
	require.Len(t, errs, 1)
	assert.Empty(t, logged)
	assert.True(t, strings.HasPrefix(errs[0], "open failed with 'file does not exist'\n"))
	assert.True(t, strings.Contains(errs[0], "log_test.go:"))
	assert.Equal(t, errs[0], errOut.String())
	assert.Equal(t, "", out.String())

	Logf("done\n")
	assert.Equal(t, "done\n", out.String())
	assert.Equal(t, []string{"done\n"}, logged)

	day := time.Now().UTC().Format("2006-01-02") + ".txt"
	Close()
	d, err := os.ReadFile(filepath.Join(dir, "errors", day))
	require.NoError(t, err)
	assert.Equal(t, errs[0], string(d))
	// errors are in the main log too
	d, err = os.ReadFile(filepath.Join(dir, "log", day))
	require.NoError(t, err)
	assert.Equal(t, errs[0]+"done\n", string(d))
}

func TestEventOddArgs(t *testing.T) {
	var got map[string]any
	Init(&Config{
		OnEvent: func(name string, m map[string]any) {
			got = m
		},
	})
	defer Close()
	Event("odd", "a", 1, "b")
	assert.Equal(t, map[string]any{"a": 1, "b": "!missing"}, got)
}
