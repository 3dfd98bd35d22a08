package tabdb

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/kjk/tabdb/log"
	"github.com/kjk/tabdb/tokenizer"
)

// readFilePart reads n bytes at offset.
// If there's less data than n, returns what was read and an error.
func readFilePart(path string, offset int64, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, n)
	nRead, err := f.ReadAt(buf, offset)
	if nRead < n {
		if err == nil || err == io.EOF {
			err = fmt.Errorf("read %d bytes at offset %d, expected %d", nRead, offset, n)
		}
		return buf[:nRead], err
	}
	return buf, nil
}

// ReadCellText reads text of the cell directly from the table file,
// using cell's offset and length.
// If the file is shorter than expected, returns partial or empty text.
func (s *Store) ReadCellText(c *Cell) string {
	if c == nil || c.Length <= 0 || s.path == "" {
		return ""
	}
	d, err := readFilePart(s.path, int64(c.Offset), c.Length)
	if err != nil {
		log.Verbosef("tabdb: ReadCellText('%s') failed with '%s'\n", s.path, err)
	}
	return string(d)
}

// valueOf returns numeric value of a data cell, reading it
// from the table file if it wasn't loaded
func (s *Store) valueOf(c *Cell) (float64, error) {
	if c.Loaded {
		return c.Value, nil
	}
	text := s.ReadCellText(c)
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, &tokenizer.ParseError{
			Row:    c.Row,
			Offset: c.Offset,
			Text:   text,
			Err:    err,
		}
	}
	c.Value = v
	c.Loaded = true
	return v, nil
}

// RowValues returns values of a row, reading cells that were not loaded
func (s *Store) RowValues(r *Row) ([]float64, error) {
	res := make([]float64, len(r.Cells))
	for i, c := range r.Cells {
		v, err := s.valueOf(c)
		if err != nil {
			return nil, err
		}
		res[i] = v
	}
	return res, nil
}

// Materialize reads values of all cells that were not loaded yet
func (s *Store) Materialize() error {
	for _, r := range s.rows {
		for _, c := range r.Cells {
			if c.Loaded {
				continue
			}
			if c.Kind == KindTitle {
				c.Text = s.ReadCellText(c)
				c.Loaded = true
				continue
			}
			if _, err := s.valueOf(c); err != nil {
				return err
			}
		}
	}
	return nil
}
