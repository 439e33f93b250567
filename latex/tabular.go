package latex

import (
	"fmt"
	"io"
	"strings"

	"github.com/wudi/texport/tables"
)

// Tabular writes a corrected table event stream as a tabular environment.
// Cells spanning rows become \multirow, cells spanning columns or deviating
// from the column alignment become \multicolumn. Rules are written after the
// row end: \hline when covering all columns, \cline otherwise.
//
// Tabular relies on a tables.Tracker in front of it; it does not track spans
// itself.
type Tabular struct {
	w           io.Writer
	borders     bool
	boldHeaders bool
	align       tables.Align

	columns int  // of the open table
	skip    bool // zero-column table, nothing is written
	column  int  // columns used in the current row
	cells   int  // cells written in the current row
	rules   []tables.Rule
	content strings.Builder
}

var _ tables.Sink = (*Tabular)(nil)

// Option configures a Tabular.
type Option func(*Tabular)

// WithBorders draws vertical rules between and around all columns.
func WithBorders(borders bool) Option {
	return func(t *Tabular) {
		t.borders = borders
	}
}

// WithBoldHeaders sets the content of header cells in bold face.
func WithBoldHeaders(bold bool) Option {
	return func(t *Tabular) {
		t.boldHeaders = bold
	}
}

// WithDefaultAlign sets the alignment of the column specification.
// AlignUnspecified means left.
func WithDefaultAlign(align tables.Align) Option {
	return func(t *Tabular) {
		if align == tables.AlignUnspecified {
			align = tables.AlignLeft
		}
		t.align = align
	}
}

// NewTabular creates a tabular writer. Without options columns are left
// aligned with vertical borders.
func NewTabular(w io.Writer, opts ...Option) *Tabular {
	t := &Tabular{
		w:       w,
		borders: true,
		align:   tables.AlignLeft,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func letter(a tables.Align) string {
	switch a {
	case tables.AlignCenter:
		return "c"
	case tables.AlignRight:
		return "r"
	}
	return "l"
}

func (t *Tabular) printf(format string, args ...interface{}) error {
	if t.skip {
		return nil
	}
	_, err := fmt.Fprintf(t.w, format, args...)
	return err
}

func (t *Tabular) TableOpen(maxColumns int) error {
	t.columns = maxColumns
	t.skip = maxColumns == 0
	var spec strings.Builder
	if t.borders {
		spec.WriteByte('|')
	}
	for i := 0; i < maxColumns; i++ {
		spec.WriteString(letter(t.align))
		if t.borders {
			spec.WriteByte('|')
		}
	}
	return t.printf("\\begin{tabular}{%s}\n\\hline\n", spec.String())
}

func (t *Tabular) RowOpen() error {
	t.column, t.cells = 0, 0
	t.rules = t.rules[:0]
	return nil
}

func (t *Tabular) CellOpen(c tables.Cell) error {
	t.content.Reset()
	if t.cells > 0 {
		return t.printf(" & ")
	}
	return nil
}

func (t *Tabular) Text(s string) error {
	t.content.WriteString(s)
	return nil
}

func (t *Tabular) CellClose(c tables.Cell) error {
	err := t.printf("%s", t.cell(c))
	t.column += c.Colspan
	t.cells++
	return err
}

// cell renders one cell without separators.
func (t *Tabular) cell(c tables.Cell) string {
	text := ""
	if !c.Inserted() {
		text = Escape(collapse(t.content.String()))
	}
	if text != "" && c.Kind == tables.HeaderCell && t.boldHeaders {
		text = `\textbf{` + text + `}`
	}
	if c.Rowspan > 1 && !c.Inserted() {
		text = fmt.Sprintf(`\multirow{%d}{*}{%s}`, c.Rowspan, text)
	}
	align := c.Align
	if align == tables.AlignUnspecified || c.Inserted() {
		align = t.align
	}
	if c.Colspan > 1 || align != t.align {
		text = fmt.Sprintf(`\multicolumn{%d}{%s}{%s}`, c.Colspan, t.spec(align), text)
	}
	return text
}

// spec is the column specification of a \multicolumn starting at the
// current column. Only the first column of a row carries a left border.
func (t *Tabular) spec(align tables.Align) string {
	if !t.borders {
		return letter(align)
	}
	if t.column == 0 {
		return "|" + letter(align) + "|"
	}
	return letter(align) + "|"
}

func (t *Tabular) Rule(r tables.Rule) error {
	t.rules = append(t.rules, r)
	return nil
}

func (t *Tabular) RowClose() error {
	if err := t.printf(" \\\\\n"); err != nil {
		return err
	}
	for _, r := range t.rules {
		var err error
		if r.From == 1 && r.To == t.columns {
			err = t.printf("\\hline\n")
		} else {
			err = t.printf("\\cline{%d-%d}\n", r.From, r.To)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *Tabular) TableClose() error {
	err := t.printf("\\end{tabular}\n")
	t.skip = false
	return err
}
