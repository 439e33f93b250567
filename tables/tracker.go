package tables

import "fmt"

type state int

const (
	stateClosed state = iota
	stateTable
	stateRow
	stateCell
)

func (s state) String() string {
	return [...]string{"closed", "table open", "row open", "cell open"}[s]
}

// Tracker corrects the table events it receives and forwards them to a Sink.
type Tracker struct {
	sink    Sink
	padding bool
	session *session // nil while no table is open
}

// session is the state of the table currently open.
type session struct {
	grid     Grid
	cursor   int
	row      int // 1-indexed, 0 before the first row
	state    state
	cell     Cell     // open cell, valid in stateCell
	lastKind CellKind // kind of the row's last real cell
	short    int      // first unused column of the last closed row, or -1
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithPadding makes the tracker complete short rows with filler cells
// instead of reporting ErrUnderflow.
func WithPadding(pad bool) Option {
	return func(t *Tracker) {
		t.padding = pad
	}
}

// NewTracker creates a tracker forwarding to sink.
func NewTracker(sink Sink, opts ...Option) *Tracker {
	t := &Tracker{sink: sink}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Grid returns a copy of the current grid, or nil if no table is open.
func (t *Tracker) Grid() Grid {
	if t.session == nil {
		return nil
	}
	return append(Grid(nil), t.session.grid...)
}

func (t *Tracker) current() state {
	if t.session == nil {
		return stateClosed
	}
	return t.session.state
}

func (t *Tracker) expect(op string, want state) error {
	if have := t.current(); have != want {
		err := &GridError{Issue: fmt.Sprintf("%s while %s", op, have), Err: ErrProtocol}
		if t.session != nil {
			err.Row = t.session.row
		}
		return err
	}
	return nil
}

// OpenTable starts a table of maxColumns columns.
func (t *Tracker) OpenTable(maxColumns int) error {
	if err := t.expect("table open", stateClosed); err != nil {
		return err
	}
	if maxColumns < 0 {
		return &GridError{Issue: fmt.Sprintf("column count %d", maxColumns), Err: ErrDegenerateSpan}
	}
	t.session = &session{grid: NewGrid(maxColumns), state: stateTable, short: -1}
	tracer().Debugf("table open, %d columns", maxColumns)
	return t.sink.TableOpen(maxColumns)
}

// OpenRow starts a row.
func (t *Tracker) OpenRow() error {
	if err := t.expect("row open", stateTable); err != nil {
		return err
	}
	s := t.session
	if s.short >= 0 {
		return &GridError{
			Row:    s.row,
			Column: s.short + 1,
			Issue:  fmt.Sprintf("%d of %d columns used", s.short, s.grid.Width()),
			Err:    ErrUnderflow,
		}
	}
	s.row++
	s.cursor = 0
	s.state = stateRow
	s.lastKind = DataCell
	return t.sink.RowOpen()
}

// OpenCell starts a header or data cell. Placeholders for columns still
// claimed by earlier rows are forwarded first.
func (t *Tracker) OpenCell(kind CellKind, colspan int, align Align, rowspan int) error {
	if err := t.expect("cell open", stateRow); err != nil {
		return err
	}
	s := t.session
	if colspan < 1 || rowspan < 0 {
		return &GridError{
			Row:    s.row,
			Column: s.cursor + 1,
			Issue:  fmt.Sprintf("colspan %d, rowspan %d", colspan, rowspan),
			Err:    ErrDegenerateSpan,
		}
	}
	skipped, err := t.seat(kind)
	if err != nil {
		return err
	}
	if s.cursor+colspan > s.grid.Width() {
		return &GridError{
			Row:    s.row,
			Column: s.cursor + 1,
			Issue: fmt.Sprintf("cell of width %d after %d used columns in a %d-column table",
				colspan, s.cursor, s.grid.Width()),
			Err: ErrOverflow,
		}
	}
	for c := s.cursor + 1; c < s.cursor+colspan; c++ {
		if s.grid[c].Claims() {
			return &GridError{
				Row:    s.row,
				Column: c + 1,
				Issue:  "cell overlaps a cell spanning from an earlier row",
				Err:    ErrOverflow,
			}
		}
	}
	if skipped > 0 {
		tracer().Debugf("row %d: %d placeholder columns before column %d", s.row, skipped, s.cursor+1)
	}
	s.grid[s.cursor] = Span{ColWidth: colspan, RowsRemaining: rowspan}
	s.cursor += colspan
	s.cell = Cell{Kind: kind, Colspan: colspan, Rowspan: rowspan, Align: align}
	s.lastKind = kind
	s.state = stateCell
	return t.sink.CellOpen(s.cell)
}

// Text forwards cell content.
func (t *Tracker) Text(text string) error {
	if err := t.expect("cell text", stateCell); err != nil {
		return err
	}
	return t.sink.Text(text)
}

// CloseCell closes the cell opened last.
func (t *Tracker) CloseCell() error {
	if err := t.expect("cell close", stateCell); err != nil {
		return err
	}
	t.session.state = stateRow
	return t.sink.CellClose(t.session.cell)
}

// CloseRow completes the row, forwards the rules under all spans ending in
// it and advances the grid to the next row.
func (t *Tracker) CloseRow() error {
	if err := t.expect("row close", stateRow); err != nil {
		return err
	}
	s := t.session
	if _, err := t.seat(s.lastKind); err != nil {
		return err
	}
	if err := t.complete(); err != nil {
		return err
	}
	for _, rule := range s.grid.Rules() {
		if err := t.sink.Rule(rule); err != nil {
			return err
		}
	}
	s.grid = s.grid.Decay()
	s.cursor = 0
	s.state = stateTable
	return t.sink.RowClose()
}

// CloseTable ends the table and discards its grid.
func (t *Tracker) CloseTable() error {
	if err := t.expect("table close", stateTable); err != nil {
		return err
	}
	tracer().Debugf("table close after %d rows", t.session.row)
	t.session = nil
	return t.sink.TableClose()
}

// seat forwards one placeholder per claim found at the cursor and moves the
// cursor behind them. It returns the number of columns skipped.
func (t *Tracker) seat(kind CellKind) (int, error) {
	s := t.session
	next, claims := s.grid.Occupied(s.cursor)
	for _, claim := range claims {
		ph := Cell{Kind: kind, Colspan: claim.ColWidth, Rowspan: 1, Role: RolePlaceholder}
		if err := t.sink.CellOpen(ph); err != nil {
			return 0, err
		}
		if err := t.sink.CellClose(ph); err != nil {
			return 0, err
		}
	}
	skipped := next - s.cursor
	s.cursor = next
	return skipped, nil
}

// complete deals with columns left unused at the end of a row: they are
// filled in padding mode and remembered otherwise, as only the last row of a
// table may be short.
func (t *Tracker) complete() error {
	s := t.session
	s.short = -1
	if s.cursor >= s.grid.Width() {
		return nil
	}
	if !t.padding {
		s.short = s.cursor
		tracer().Debugf("row %d: %d of %d columns used", s.row, s.cursor, s.grid.Width())
		return nil
	}
	tracer().Infof("row %d: padding %d unused columns", s.row, s.grid.Width()-s.cursor)
	for s.cursor < s.grid.Width() {
		if s.grid[s.cursor].Claims() {
			if _, err := t.seat(s.lastKind); err != nil {
				return err
			}
			continue
		}
		filler := Cell{Kind: DataCell, Colspan: 1, Rowspan: 1, Role: RoleFiller}
		if err := t.sink.CellOpen(filler); err != nil {
			return err
		}
		if err := t.sink.CellClose(filler); err != nil {
			return err
		}
		s.cursor++
	}
	return nil
}
