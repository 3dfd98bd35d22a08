package tabdb

import (
	"io"
	"time"

	"github.com/kjk/tabdb/atomicfile"
	"github.com/kjk/tabdb/log"
	"github.com/kjk/tabdb/structidx"
)

// layout computes the table file content and position of every cell in it
func (s *Store) layout() ([]byte, []structidx.Entry) {
	var d []byte
	var entries []structidx.Entry
	for rowNo, r := range s.rows {
		for _, c := range r.Cells {
			text := c.text()
			kind := KindNumber
			if rowNo == 0 {
				kind = KindTitle
			}
			entries = append(entries, structidx.Entry{
				Row:    rowNo,
				Offset: len(d),
				Length: len(text),
				Kind:   int(kind),
			})
			d = append(d, text...)
			d = append(d, '\t')
		}
		d = append(d, '\n')
	}
	return d, entries
}

// Persist re-writes table file and structural index.
// Each file is written atomically.
func (s *Store) Persist() error {
	if s.path == "" {
		return ErrNoPath
	}
	err := s.persist()
	log.IfErrf(err, "tabdb: Persist('%s') failed with '%v'", s.path, err)
	return err
}

func (s *Store) persist() error {
	timeStart := time.Now()
	// lazy cells are read from the file we're about to replace
	if err := s.Materialize(); err != nil {
		return err
	}
	d, entries := s.layout()
	err := atomicfile.WriteFile(s.path, func(w io.Writer) error {
		_, err := w.Write(d)
		return err
	})
	if err != nil {
		return err
	}
	err = atomicfile.WriteFile(s.IndexPath(), func(w io.Writer) error {
		return structidx.Write(w, entries)
	})
	if err != nil {
		return err
	}

	// in-memory positions now match the files
	i := 0
	for rowNo, r := range s.rows {
		r.RowNumber = rowNo
		for _, c := range r.Cells {
			e := entries[i]
			c.Row = e.Row
			c.Offset = e.Offset
			c.Length = e.Length
			i++
		}
	}
	log.EventWithDuration("tabdb.persist", time.Since(timeStart), "path", s.path, "records", s.RecordCount(), "size", len(d))
	return nil
}
