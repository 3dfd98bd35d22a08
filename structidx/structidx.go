// Package structidx reads and writes the structural index of a table file.
//
// The structural index (stored next to the table file as "<table>.pos")
// records position of every cell of the table file without its value:
//
//	<row>:<offset>:<length>:<kind>\t<row>:<offset>:<length>:<kind>\t...\n
//
// There is no row delimiter. Rows are recovered from the <row> field:
// a new row starts when <row> changes between consecutive entries.
package structidx

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Kind of a cell, written as integer in the index
const (
	KindUnset  = 0
	KindTitle  = 1
	KindNumber = 2
)

// Entry is a position of a single cell in the table file
type Entry struct {
	Row    int
	Offset int
	Length int
	Kind   int
}

func (e Entry) String() string {
	return fmt.Sprintf("%d:%d:%d:%d", e.Row, e.Offset, e.Length, e.Kind)
}

// Write writes entries to w in index format
func Write(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	var buf []byte
	for _, e := range entries {
		buf = buf[:0]
		buf = strconv.AppendInt(buf, int64(e.Row), 10)
		buf = append(buf, ':')
		buf = strconv.AppendInt(buf, int64(e.Offset), 10)
		buf = append(buf, ':')
		buf = strconv.AppendInt(buf, int64(e.Length), 10)
		buf = append(buf, ':')
		buf = strconv.AppendInt(buf, int64(e.Kind), 10)
		buf = append(buf, '\t')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	return bw.Flush()
}

// Marshal returns entries serialized in index format
func Marshal(entries []Entry) []byte {
	var buf bytes.Buffer
	// writing to bytes.Buffer doesn't fail
	_ = Write(&buf, entries)
	return buf.Bytes()
}

// ParseField parses a single "row:offset:length:kind" entry.
// perf: allow re-using Entry
func ParseField(s string, res *Entry) error {
	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return fmt.Errorf("invalid index entry: '%s'", s)
	}
	var vals [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("invalid number '%s' in index entry: '%s'", p, s)
		}
		if n < 0 {
			return fmt.Errorf("negative number in index entry: '%s'", s)
		}
		vals[i] = n
	}
	res.Row = vals[0]
	res.Offset = vals[1]
	res.Length = vals[2]
	res.Kind = vals[3]
	return nil
}

// Parse parses index data. Newlines are ignored and malformed
// entries are skipped.
func Parse(d []byte) []Entry {
	var res []Entry
	s := strings.ReplaceAll(string(d), "\n", "")
	for _, field := range strings.Split(s, "\t") {
		if field == "" {
			continue
		}
		var e Entry
		if err := ParseField(field, &e); err != nil {
			continue
		}
		res = append(res, e)
	}
	return res
}

// ReadFile reads and parses index file at path
func ReadFile(path string) ([]Entry, error) {
	d, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(d), nil
}

// GroupRows splits entries into rows, starting a new row every time
// Row changes between consecutive entries
func GroupRows(entries []Entry) [][]Entry {
	var res [][]Entry
	start := 0
	for i := 1; i <= len(entries); i++ {
		if i == len(entries) || entries[i].Row != entries[start].Row {
			res = append(res, entries[start:i])
			start = i
		}
	}
	return res
}
