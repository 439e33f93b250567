package tables

import (
	"fmt"
	"strings"
)

// Span is the state of one grid column as carried from the current row into
// the next one.
type Span struct {
	ColWidth      int // columns covered by the owning cell, valid at its leftmost column
	RowsRemaining int // rows (including the current one) the owning cell still claims
}

var defaultSpan = Span{ColWidth: 1}

// Claims reports whether a cell from an earlier row still occupies the column.
func (s Span) Claims() bool {
	return s.RowsRemaining > 0
}

// terminates reports whether a horizontal rule belongs under the column at
// the end of the current row. Spans without rows behave like spans ending here.
func (s Span) terminates() bool {
	return s.RowsRemaining <= 1
}

func (s Span) next() Span {
	if s.RowsRemaining > 0 {
		return Span{ColWidth: s.ColWidth, RowsRemaining: s.RowsRemaining - 1}
	}
	return defaultSpan
}

func (s Span) String() string {
	return fmt.Sprintf("<c=%d,r=%d>", s.ColWidth, s.RowsRemaining)
}

// Grid holds one Span per table column.
//
// A Grid is treated as a value: Rules and Decay never modify the receiver.
// The Tracker writes a span at a cell's start column only while the row is
// being scanned.
type Grid []Span

// NewGrid creates a grid of n default spans.
func NewGrid(n int) Grid {
	g := make(Grid, n)
	for i := range g {
		g[i] = defaultSpan
	}
	return g
}

// Width is the number of columns of the grid.
func (g Grid) Width() int {
	return len(g)
}

// Rule is a partial horizontal rule from column From to column To, 1-indexed
// and inclusive.
type Rule struct {
	From, To int
}

func (r Rule) String() string {
	return fmt.Sprintf("%d-%d", r.From, r.To)
}

// Rules computes the maximal runs of columns whose covering spans end in the
// current row. The scan skips over a wide cell by its ColWidth, so a wide
// cell counts as one unit.
func (g Grid) Rules() []Rule {
	var rules []Rule
	open, start := false, 0
	column := 0
	for column < len(g) {
		span := g[column]
		if span.terminates() && !open {
			start, open = column+1, true
		} else if !span.terminates() && open {
			rules = append(rules, Rule{From: start, To: column})
			open = false
		}
		column += max(span.ColWidth, 1)
	}
	if open {
		rules = append(rules, Rule{From: start, To: len(g)})
	}
	return rules
}

// Decay returns the grid for the following row: every active span loses one
// row, every inactive span is reset to the default.
func (g Grid) Decay() Grid {
	next := make(Grid, len(g))
	for i, span := range g {
		next[i] = span.next()
	}
	return next
}

// Occupied returns the column following the run of claimed columns starting
// at column, together with the claims found on the way. It stops at the
// first column not claimed by an earlier row or at the grid's right edge.
func (g Grid) Occupied(column int) (int, []Span) {
	var claims []Span
	for column < len(g) && g[column].Claims() {
		claims = append(claims, g[column])
		column += max(g[column].ColWidth, 1)
	}
	return column, claims
}

func (g Grid) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, span := range g {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(span.String())
	}
	b.WriteByte(']')
	return b.String()
}
