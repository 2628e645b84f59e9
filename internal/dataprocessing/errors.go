package dataprocessing

import (
	"errors"
	"fmt"
)

// Parsing errors
var (
	ErrFileNotFound  = errors.New("data file not found")
	ErrSheetNotFound = errors.New("sheet not found")
	ErrMissingColumn = errors.New("required column missing")
	ErrInvalidRow    = errors.New("invalid row")
	ErrEmptySheet    = errors.New("sheet has no header row")
)

// RowError reports a data row that could not be turned into an observation.
// Row is the 1-based sheet row number, matching what spreadsheet users see.
type RowError struct {
	Row    int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column %s: %v", e.Row, e.Column, e.Err)
	}
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Is makes every RowError match ErrInvalidRow
func (e *RowError) Is(target error) bool {
	return target == ErrInvalidRow
}
