package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/kjk/tabdb/tabdb"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
)

// printer handles table or JSON output
type printer struct {
	asJSON bool
	w      io.Writer
}

func newPrinter(cmd *cobra.Command) *printer {
	asJSON, _ := cmd.Flags().GetBool("json")
	return &printer{asJSON: asJSON, w: cmd.OutOrStdout()}
}

func (p *printer) json(v any) error {
	d, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = p.w.Write(pretty.Pretty(d))
	return err
}

// table writes rows using tabwriter. header is the first row
func (p *printer) table(header []string, rows [][]string) {
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	writeRow := func(row []string) {
		for i, col := range row {
			if i > 0 {
				_, _ = fmt.Fprint(tw, "\t")
			}
			_, _ = fmt.Fprint(tw, col)
		}
		_, _ = fmt.Fprintln(tw)
	}
	writeRow(header)
	for _, row := range rows {
		writeRow(row)
	}
	_ = tw.Flush()
}

func (p *printer) line(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format+"\n", args...)
}

type rowsResult struct {
	Header []string    `json:"header"`
	Rows   [][]float64 `json:"rows"`
}

// rows prints rows of s, reading values that were not loaded
func (p *printer) rows(s *tabdb.Store, rows []*tabdb.Row) error {
	res := rowsResult{
		Header: s.HeaderNames(),
		Rows:   [][]float64{},
	}
	for _, r := range rows {
		vals, err := s.RowValues(r)
		if err != nil {
			return err
		}
		res.Rows = append(res.Rows, vals)
	}
	if p.asJSON {
		return p.json(res)
	}
	var table [][]string
	for _, vals := range res.Rows {
		row := make([]string, len(vals))
		for i, v := range vals {
			row[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		table = append(table, row)
	}
	p.table(res.Header, table)
	return nil
}
