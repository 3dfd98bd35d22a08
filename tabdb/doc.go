/*
Package tabdb is a minimal flat-file table store.

A table is a text file: the first line holds column names, every
following line holds numbers, cells are separated by tabs (or spaces):

	id	day	hour
	1.0	5.0	3600.0
	2.0	12.0	7200.0

Next to the table file we keep a structural index ("<table>.pos", see
package structidx) with offset and length of every cell. It allows
building the table layout without tokenizing the table file and reading
cell values lazily, when needed.

# Basic Usage

	s := tabdb.New("data.txt")
	if err := s.ParseFile(); err != nil {
	    return err
	}
	rows := s.SelectByIntervalExclusive("day", 1, 31)
	err := s.AddDataRow([]float64{3, 40, 10800})
	err = s.Persist()

Building from structural index only reads the index and header names:

	s := tabdb.New("data.txt")
	err := s.ReadFileByStructure()
	text := s.ReadCellText(s.Row(2).Cells[1])

# Thread Safety

A Store is not safe for concurrent use. There should be only one Store
for a given file at a time.
*/
package tabdb
