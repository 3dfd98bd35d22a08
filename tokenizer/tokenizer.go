// Package tokenizer splits a tab/newline delimited text file into
// positioned tokens.
//
// Cells are separated by runs of tabs or spaces, rows by '\n'.
// '\r' is a separator too, so "\r\n" line endings work.
// Every token remembers the row (line) it was found on and its byte
// offset in the input, so a caller can later re-read the token's
// text directly from the file.
package tokenizer

import (
	"fmt"
	"strconv"
)

type state int

const (
	stateNone state = iota
	stateSeparator
	stateNewString
	stateNode
)

// Token is a single cell value found in the input
type Token struct {
	// 0-based line number, row 0 is the header
	Row int
	// byte offset of the first byte of Value
	Offset int
	Value  string
}

// Tokenize returns tokens of d in the order they appear.
// It is a pure function of d.
func Tokenize(d []byte) []Token {
	var res []Token
	offset := 0
	row := 0
	st := stateNone
	start := -1 // start of the current token in d, -1 if none

	flush := func(end int) {
		v := string(d[start:end])
		res = append(res, Token{
			Row:    row,
			Offset: offset,
			Value:  v,
		})
		offset += len(v)
		start = -1
	}

	for i, c := range d {
		switch c {
		case '\t', ' ', '\r':
			if st == stateNode {
				flush(i)
			}
			offset++
			st = stateSeparator
		case '\n':
			if st == stateNode && start >= 0 {
				flush(i)
			}
			start = -1
			row++
			offset++
			st = stateNewString
		default:
			if start < 0 {
				start = i
			}
			st = stateNode
		}
	}
	if st == stateNode && start >= 0 {
		flush(len(d))
	}
	return res
}

// ParseError is returned when a data token is not a number
type ParseError struct {
	Row    int
	Offset int
	Text   string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d, offset %d: '%s' is not a number: %s", e.Row, e.Offset, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseNumber parses value of a data token as float64
func ParseNumber(t Token) (float64, error) {
	v, err := strconv.ParseFloat(t.Value, 64)
	if err != nil {
		return 0, &ParseError{
			Row:    t.Row,
			Offset: t.Offset,
			Text:   t.Value,
			Err:    err,
		}
	}
	return v, nil
}
