package tabdb

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kjk/tabdb/log"
	"github.com/kjk/tabdb/structidx"
	"github.com/kjk/tabdb/tokenizer"
)

// Store is an in-memory table backed by a table file and its
// structural index
type Store struct {
	path string
	rows []*Row
	// Index of the next added row
	nextIndex int
}

// New creates a Store for table file at path.
// It doesn't read anything, call ParseFile or ReadFileByStructure.
// A Store with empty path lives only in memory.
func New(path string) *Store {
	return &Store{
		path: path,
	}
}

// Path returns path of the table file
func (s *Store) Path() string {
	return s.path
}

// IndexPath returns path of the structural index file
func (s *Store) IndexPath() string {
	if s.path == "" {
		return ""
	}
	return s.path + ".pos"
}

func (s *Store) recomputeNextIndex() {
	s.nextIndex = 0
	for _, r := range s.rows {
		if r.Index >= s.nextIndex {
			s.nextIndex = r.Index + 1
		}
	}
}

func schemaMismatch(rowNo int, got int, exp int) error {
	return fmt.Errorf("%w: row %d has %d cells, header has %d", ErrSchemaMismatch, rowNo, got, exp)
}

// ParseFile reads the table file and builds all rows with values.
// On error the Store is not modified.
func (s *Store) ParseFile() error {
	if s.path == "" {
		return ErrNoPath
	}
	d, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("tabdb: failed to read table file: %w", err)
	}
	if len(d) == 0 {
		return ErrEmptyFile
	}
	rows, err := buildRowsFromTokens(tokenizer.Tokenize(d))
	if err != nil {
		return err
	}
	s.rows = rows
	s.recomputeNextIndex()
	log.Verbosef("tabdb: parsed '%s', %d records\n", s.path, s.RecordCount())
	return nil
}

func buildRowsFromTokens(tokens []tokenizer.Token) ([]*Row, error) {
	if len(tokens) == 0 || tokens[0].Row != 0 {
		return nil, ErrNoHeader
	}
	var rows []*Row
	var curr *Row
	for _, t := range tokens {
		if curr == nil || curr.RowNumber != t.Row {
			if curr != nil && len(rows) > 1 && len(curr.Cells) != len(rows[0].Cells) {
				return nil, schemaMismatch(curr.RowNumber, len(curr.Cells), len(rows[0].Cells))
			}
			curr = &Row{
				Index:     len(rows),
				RowNumber: t.Row,
			}
			rows = append(rows, curr)
		}
		var c *Cell
		if t.Row == 0 {
			c = newTitleCell(t.Value)
		} else {
			v, err := tokenizer.ParseNumber(t)
			if err != nil {
				return nil, err
			}
			c = newNumberCell(t.Row, v)
			c.Length = len(t.Value)
		}
		c.Offset = t.Offset
		curr.Cells = append(curr.Cells, c)
	}
	if len(rows) > 1 && len(curr.Cells) != len(rows[0].Cells) {
		return nil, schemaMismatch(curr.RowNumber, len(curr.Cells), len(rows[0].Cells))
	}
	return rows, nil
}

// ReadFileByStructure builds rows from the structural index without
// reading values. Only header names are read from the table file,
// data cells have to be read with ReadCellText or Materialize.
func (s *Store) ReadFileByStructure() error {
	if s.path == "" {
		return ErrNoPath
	}
	entries, err := structidx.ReadFile(s.IndexPath())
	if err != nil {
		return fmt.Errorf("tabdb: failed to read structural index: %w", err)
	}
	if len(entries) == 0 {
		return ErrEmptyIndex
	}
	groups := structidx.GroupRows(entries)
	if groups[0][0].Row != 0 {
		return ErrNoHeader
	}
	rows := make([]*Row, 0, len(groups))
	for i, g := range groups {
		if i > 0 && g[0].Row == 0 {
			// only the first group can be the header
			log.Verbosef("tabdb: '%s' has header entries after row %d, skipping them\n", s.IndexPath(), rows[len(rows)-1].RowNumber)
			continue
		}
		r := &Row{
			Index:     len(rows),
			RowNumber: g[0].Row,
		}
		for _, e := range g {
			kind := KindNumber
			if i == 0 {
				kind = KindTitle
			}
			r.Cells = append(r.Cells, &Cell{
				Kind:   kind,
				Row:    e.Row,
				Offset: e.Offset,
				Length: e.Length,
			})
		}
		rows = append(rows, r)
	}
	s.rows = rows
	s.recomputeNextIndex()
	// columns are resolved by name so header must be known
	for _, c := range s.rows[0].Cells {
		c.Text = s.ReadCellText(c)
		c.Loaded = true
	}
	log.Verbosef("tabdb: read structure of '%s', %d records\n", s.path, s.RecordCount())
	return nil
}

// HeaderNames returns names of columns
func (s *Store) HeaderNames() []string {
	if len(s.rows) == 0 {
		return nil
	}
	hdr := s.rows[0].Cells
	res := make([]string, len(hdr))
	for i, c := range hdr {
		res[i] = c.Text
	}
	return res
}

// ColumnIndex returns index of the column with a given name, -1 if not found
func (s *Store) ColumnIndex(name string) int {
	for i, h := range s.HeaderNames() {
		if h == name {
			return i
		}
	}
	return -1
}

// Row returns i-th data row (0 is the first row after the header)
// or nil if i is out of range
func (s *Store) Row(i int) *Row {
	if i < 0 || i+1 >= len(s.rows) {
		return nil
	}
	return s.rows[i+1]
}

// RecordCount returns number of data rows
func (s *Store) RecordCount() int {
	if len(s.rows) == 0 {
		return 0
	}
	return len(s.rows) - 1
}

// Rows returns data rows, without the header. The slice is shared
// with s and must not be modified.
func (s *Store) Rows() []*Row {
	if len(s.rows) < 2 {
		return nil
	}
	return s.rows[1:]
}

func validateColumnName(name string) error {
	if name == "" {
		return errors.New("tabdb: empty column name")
	}
	if strings.ContainsAny(name, " \t\n") {
		return fmt.Errorf("tabdb: column name '%s' contains whitespace", name)
	}
	return nil
}

// SetHeader sets column names of an empty Store
func (s *Store) SetHeader(names []string) error {
	if len(s.rows) > 0 {
		return ErrHeaderExists
	}
	if len(names) == 0 {
		return ErrNoHeader
	}
	r := &Row{
		Index: s.nextIndex,
	}
	for _, name := range names {
		if err := validateColumnName(name); err != nil {
			return err
		}
		r.Cells = append(r.Cells, newTitleCell(name))
	}
	s.nextIndex++
	s.rows = append(s.rows, r)
	return nil
}

// AddDataRow adds a row with values, one per column.
// The row is only in memory until Persist.
func (s *Store) AddDataRow(values []float64) error {
	if len(s.rows) == 0 {
		return ErrNoHeader
	}
	rowNo := len(s.rows)
	if n := len(s.rows[0].Cells); len(values) != n {
		return schemaMismatch(rowNo, len(values), n)
	}
	r := &Row{
		Index:     s.nextIndex,
		RowNumber: rowNo,
	}
	for _, v := range values {
		r.Cells = append(r.Cells, newNumberCell(rowNo, v))
	}
	s.nextIndex++
	s.rows = append(s.rows, r)
	return nil
}
