package tabdb

import (
	"fmt"
	"time"

	"github.com/kjk/tabdb/log"
)

// AppendFrom appends data rows of src, starting with src data row start,
// and persists the result.
// If s is empty, it gets src's header first. Otherwise s and src must
// have the same number of columns; column names are not compared.
// Nothing happens if src has no data rows.
func (s *Store) AppendFrom(src *Store, start int) error {
	if start < 0 {
		return fmt.Errorf("%w: start %d", ErrOutOfRange, start)
	}
	n := src.RecordCount()
	if n == 0 {
		return nil
	}
	timeStart := time.Now()
	srcHeader := src.HeaderNames()
	if len(s.rows) > 0 {
		if nCols := len(s.rows[0].Cells); nCols != len(srcHeader) {
			return fmt.Errorf("%w: source has %d columns, destination has %d", ErrSchemaMismatch, len(srcHeader), nCols)
		}
	}
	// read all values before changing s so that a bad source row leaves s as it was
	var added [][]float64
	for i := start; i < n; i++ {
		vals, err := src.RowValues(src.Row(i))
		if err != nil {
			return err
		}
		added = append(added, vals)
	}

	rows, nextIndex := s.rows, s.nextIndex
	err := s.appendRows(srcHeader, added)
	if err == nil {
		err = s.Persist()
	}
	if err != nil {
		s.rows, s.nextIndex = rows, nextIndex
		return err
	}
	log.EventWithDuration("tabdb.append", time.Since(timeStart), "path", s.path, "from", src.path, "start", start, "added", len(added))
	return nil
}

func (s *Store) appendRows(header []string, added [][]float64) error {
	if len(s.rows) == 0 {
		if err := s.SetHeader(header); err != nil {
			return err
		}
	}
	for _, vals := range added {
		if err := s.AddDataRow(vals); err != nil {
			return err
		}
	}
	return nil
}

// JoinByKey returns a new, in-memory Store with rows of s joined with
// rows of right that have the same value in column.
// Result has columns of s followed by columns of right without column.
// Right rows are indexed by value first so the cost is O(len(s) + len(right)).
func (s *Store) JoinByKey(right *Store, column string) (*Store, error) {
	li := s.ColumnIndex(column)
	if li < 0 {
		return nil, fmt.Errorf("%w: '%s' in '%s'", ErrUnknownColumn, column, s.path)
	}
	ri := right.ColumnIndex(column)
	if ri < 0 {
		return nil, fmt.Errorf("%w: '%s' in '%s'", ErrUnknownColumn, column, right.path)
	}

	byKey := map[float64][][]float64{}
	for _, r := range right.Rows() {
		vals, err := right.RowValues(r)
		if err != nil {
			return nil, err
		}
		if ri >= len(vals) {
			continue
		}
		k := vals[ri]
		rest := append(append([]float64{}, vals[:ri]...), vals[ri+1:]...)
		byKey[k] = append(byKey[k], rest)
	}

	header := s.HeaderNames()
	for i, name := range right.HeaderNames() {
		if i != ri {
			header = append(header, name)
		}
	}
	res := New("")
	if err := res.SetHeader(header); err != nil {
		return nil, err
	}
	for _, r := range s.Rows() {
		vals, err := s.RowValues(r)
		if err != nil {
			return nil, err
		}
		if li >= len(vals) {
			continue
		}
		for _, rest := range byKey[vals[li]] {
			joined := append(append([]float64{}, vals...), rest...)
			if err = res.AddDataRow(joined); err != nil {
				return nil, err
			}
		}
	}
	return res, nil
}
