package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/kjk/tabdb/tabdb"
	"github.com/kjk/tabdb/u"
	"github.com/spf13/cobra"
)

// openStore builds a store from its structural index if there is one,
// otherwise parses the whole table file
func openStore(path string) (*tabdb.Store, error) {
	s := tabdb.New(path)
	if u.FileExists(s.IndexPath()) {
		return s, s.ReadFileByStructure()
	}
	return s, s.ParseFile()
}

func parseNumbers(args []string) ([]float64, error) {
	res := make([]float64, len(args))
	for i, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, fmt.Errorf("'%s' is not a number", arg)
		}
		res[i] = v
	}
	return res, nil
}

func newCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <file> <column>...",
		Short: "Create a table file with a given header",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if u.PathExists(path) {
				return fmt.Errorf("'%s' already exists", path)
			}
			if dir := filepath.Dir(path); !u.DirExists(dir) {
				return fmt.Errorf("directory '%s' doesn't exist", dir)
			}
			s := tabdb.New(path)
			if err := s.SetHeader(args[1:]); err != nil {
				return err
			}
			if err := s.Persist(); err != nil {
				return err
			}
			newPrinter(cmd).line("created '%s' with %d columns", path, len(args)-1)
			return nil
		},
	}
}

func newIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index <file>",
		Short: "Parse a table file and write its structural index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := tabdb.New(args[0])
			if err := s.ParseFile(); err != nil {
				return err
			}
			if err := s.Persist(); err != nil {
				return err
			}
			newPrinter(cmd).line("indexed '%s', %d records", s.Path(), s.RecordCount())
			return nil
		},
	}
}

func newHeaderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "header <file>",
		Short: "Print column names",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(args[0])
			if err != nil {
				return err
			}
			p := newPrinter(cmd)
			if p.asJSON {
				return p.json(s.HeaderNames())
			}
			for _, name := range s.HeaderNames() {
				p.line("%s", name)
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "output as JSON")
	return cmd
}

func newCountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count <file>",
		Short: "Print number of data rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(args[0])
			if err != nil {
				return err
			}
			newPrinter(cmd).line("%d", s.RecordCount())
			return nil
		},
	}
}

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <file> <value>...",
		Short: "Append a data row",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			vals, err := parseNumbers(args[1:])
			if err != nil {
				return err
			}
			s, err := openStore(args[0])
			if err != nil {
				return err
			}
			if err = s.AddDataRow(vals); err != nil {
				return err
			}
			return s.Persist()
		},
	}
	// flags must come first so that negative values are not parsed as flags
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query [--json] <file> <column> <low> <high>",
		Short: "Print rows where low < column < high",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			bounds, err := parseNumbers(args[2:])
			if err != nil {
				return err
			}
			s, err := openStore(args[0])
			if err != nil {
				return err
			}
			if s.ColumnIndex(args[1]) < 0 {
				return fmt.Errorf("%w: '%s'", tabdb.ErrUnknownColumn, args[1])
			}
			rows := s.SelectByIntervalExclusive(args[1], bounds[0], bounds[1])
			return newPrinter(cmd).rows(s, rows)
		},
	}
	cmd.Flags().Bool("json", false, "output as JSON")
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func newMergeCmd() *cobra.Command {
	var start int
	cmd := &cobra.Command{
		Use:   "merge <dst> <src>",
		Short: "Append data rows of src to dst, creating dst if needed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := openStore(args[1])
			if err != nil {
				return err
			}
			dst := tabdb.New(args[0])
			if _, err := os.Stat(args[0]); err == nil {
				if dst, err = openStore(args[0]); err != nil {
					return err
				}
			}
			nBefore := dst.RecordCount()
			if err = dst.AppendFrom(src, start); err != nil {
				return err
			}
			newPrinter(cmd).line("added %d records, '%s' has %d records", dst.RecordCount()-nBefore, dst.Path(), dst.RecordCount())
			return nil
		},
	}
	cmd.Flags().IntVar(&start, "start", 0, "index of the first data row of src to append")
	return cmd
}

func newJoinCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "join <left> <right> <column>",
		Short: "Print rows of left and right with the same value in column",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			left, err := openStore(args[0])
			if err != nil {
				return err
			}
			right, err := openStore(args[1])
			if err != nil {
				return err
			}
			res, err := left.JoinByKey(right, args[2])
			if err != nil {
				return err
			}
			return newPrinter(cmd).rows(res, res.Rows())
		},
	}
	cmd.Flags().Bool("json", false, "output as JSON")
	return cmd
}

func newCellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cell <file> <row> <column>",
		Short: "Print text of a single cell, read directly from the file",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			rowNo, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("'%s' is not a row number", args[1])
			}
			s := tabdb.New(args[0])
			if err = s.ReadFileByStructure(); err != nil {
				return err
			}
			r := s.Row(rowNo)
			if r == nil {
				return fmt.Errorf("%w: row %d, table has %d records", tabdb.ErrOutOfRange, rowNo, s.RecordCount())
			}
			col := s.ColumnIndex(args[2])
			if col < 0 || col >= len(r.Cells) {
				return fmt.Errorf("%w: '%s'", tabdb.ErrUnknownColumn, args[2])
			}
			newPrinter(cmd).line("%s", s.ReadCellText(r.Cells[col]))
			return nil
		},
	}
}
