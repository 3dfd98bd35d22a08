package tabdb

import (
	"math"
	"strconv"
	"strings"

	"github.com/kjk/tabdb/structidx"
)

type CellKind int

const (
	KindUnset  CellKind = structidx.KindUnset
	KindTitle  CellKind = structidx.KindTitle
	KindNumber CellKind = structidx.KindNumber
)

func (k CellKind) String() string {
	switch k {
	case KindTitle:
		return "title"
	case KindNumber:
		return "number"
	}
	return "unset"
}

// Cell is a single value of a table. Header cells are KindTitle
// and have Text, data cells are KindNumber and have Value.
type Cell struct {
	Kind  CellKind
	Text  string
	Value float64

	// location of cell's text in the table file
	Row    int
	Offset int
	Length int

	// false if the cell was built from structural index
	// and its value wasn't read from table file yet
	Loaded bool
}

// Row is a line of the table. Row 0 is the header
type Row struct {
	// unique within a Store, assigned when the row is added
	Index     int
	RowNumber int
	Cells     []*Cell
}

// Values returns numeric values of a data row.
// Values of cells that were not loaded are 0.
func (r *Row) Values() []float64 {
	res := make([]float64, len(r.Cells))
	for i, c := range r.Cells {
		res[i] = c.Value
	}
	return res
}

func newTitleCell(text string) *Cell {
	return &Cell{
		Kind:   KindTitle,
		Text:   text,
		Length: len(text),
		Loaded: true,
	}
}

func newNumberCell(row int, v float64) *Cell {
	return &Cell{
		Kind:   KindNumber,
		Value:  v,
		Row:    row,
		Loaded: true,
	}
}

// formatNumber returns the shortest text that parses back to v.
// Integral values keep ".0" so that they read as floats.
func formatNumber(v float64) string {
	format := byte('f')
	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e21) {
		format = 'g'
	}
	s := strconv.FormatFloat(v, format, -1, 64)
	if strings.ContainsAny(s, ".eEnN") {
		// has fraction, exponent, NaN or Inf
		return s
	}
	return s + ".0"
}

// text returns text of the cell as written to table file
func (c *Cell) text() string {
	if c.Kind == KindTitle {
		return c.Text
	}
	return formatNumber(c.Value)
}
