package tables

import (
	"errors"
	"fmt"
)

var (
	// ErrProtocol is returned for an event arriving in a state that forbids it.
	ErrProtocol = errors.New("table event out of order")
	// ErrOverflow is returned when a row uses more columns than the table declares.
	ErrOverflow = errors.New("table row exceeds declared column count")
	// ErrUnderflow is returned when a row other than the last leaves columns unused.
	ErrUnderflow = errors.New("table row leaves columns unused")
	// ErrDegenerateSpan is returned for non-positive column spans, negative
	// row spans or a negative column count.
	ErrDegenerateSpan = errors.New("degenerate table span")
)

// GridError locates an error within a table. Row and Column are 1-indexed;
// zero means the position is not known or not applicable.
type GridError struct {
	Row    int
	Column int
	Issue  string
	Err    error
}

func (e *GridError) Error() string {
	switch {
	case e.Row > 0 && e.Column > 0:
		return fmt.Sprintf("row %d, column %d: %s: %v", e.Row, e.Column, e.Issue, e.Err)
	case e.Row > 0:
		return fmt.Sprintf("row %d: %s: %v", e.Row, e.Issue, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Issue, e.Err)
}

func (e *GridError) Unwrap() error {
	return e.Err
}
