package tables

import "fmt"

// Align is the horizontal alignment requested for a cell.
type Align int

const (
	AlignUnspecified Align = iota
	AlignLeft
	AlignCenter
	AlignRight
)

func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "unspecified"
	}
}

// ParseAlign maps "left", "center" ("centre", "middle") and "right" to an
// Align. Anything else is AlignUnspecified.
func ParseAlign(s string) Align {
	switch s {
	case "left", "l":
		return AlignLeft
	case "center", "centre", "middle", "c":
		return AlignCenter
	case "right", "r":
		return AlignRight
	}
	return AlignUnspecified
}

// CellKind distinguishes header cells from data cells.
type CellKind int

const (
	DataCell CellKind = iota
	HeaderCell
)

func (k CellKind) String() string {
	if k == HeaderCell {
		return "header"
	}
	return "data"
}

// Role tells real cells from the cells a Tracker inserts.
type Role int

const (
	RoleReal        Role = iota // reported by the document walker
	RolePlaceholder             // seat for a cell from an earlier row
	RoleFiller                  // completes a short row (padding mode only)
)

func (r Role) String() string {
	return [...]string{"real", "placeholder", "filler"}[r]
}

// Cell describes a cell open or close event.
//
// A placeholder stands for one claim of a cell from an earlier row, not for
// one column: its Colspan is the width of that cell, so a renderer can give
// it a single \multicolumn. Its Rowspan is always 1.
type Cell struct {
	Kind    CellKind
	Colspan int
	Rowspan int
	Align   Align
	Role    Role
}

// Inserted reports whether the cell was inserted by a Tracker.
func (c Cell) Inserted() bool {
	return c.Role != RoleReal
}

func (c Cell) String() string {
	return fmt.Sprintf("%s/%s(c=%d,r=%d,%s)", c.Kind, c.Role, c.Colspan, c.Rowspan, c.Align)
}

// Sink receives a corrected table event stream.
//
// Every row a Tracker forwards accounts for all columns of the table
// (except possibly the last row), and Rule calls for a row arrive after its
// last cell and before RowClose.
type Sink interface {
	TableOpen(maxColumns int) error
	RowOpen() error
	CellOpen(c Cell) error
	Text(s string) error
	CellClose(c Cell) error
	Rule(r Rule) error
	RowClose() error
	TableClose() error
}
