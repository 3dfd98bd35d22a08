package tabdb

import "errors"

var (
	ErrEmptyFile      = errors.New("tabdb: table file is empty")
	ErrEmptyIndex     = errors.New("tabdb: structural index is empty")
	ErrNoHeader       = errors.New("tabdb: table has no header")
	ErrHeaderExists   = errors.New("tabdb: table already has a header")
	ErrSchemaMismatch = errors.New("tabdb: column count mismatch")
	ErrOutOfRange     = errors.New("tabdb: index out of range")
	ErrUnknownColumn  = errors.New("tabdb: unknown column")
	ErrNoPath         = errors.New("tabdb: store has no file path")
)
