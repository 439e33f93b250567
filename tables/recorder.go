package tables

import "fmt"

// EventType identifies a recorded sink call.
type EventType int

const (
	EventTableOpen EventType = iota
	EventRowOpen
	EventCellOpen
	EventText
	EventCellClose
	EventRule
	EventRowClose
	EventTableClose
)

func (t EventType) String() string {
	return [...]string{"table-open", "row-open", "cell-open", "text", "cell-close",
		"rule", "row-close", "table-close"}[t]
}

// Event is one recorded sink call. Only the fields of its type are set.
type Event struct {
	Type    EventType
	Columns int    // EventTableOpen
	Cell    Cell   // EventCellOpen, EventCellClose
	Text    string // EventText
	Rule    Rule   // EventRule
}

func (e Event) String() string {
	switch e.Type {
	case EventTableOpen:
		return fmt.Sprintf("%s(%d)", e.Type, e.Columns)
	case EventCellOpen, EventCellClose:
		return fmt.Sprintf("%s %s", e.Type, e.Cell)
	case EventText:
		return fmt.Sprintf("%s %q", e.Type, e.Text)
	case EventRule:
		return fmt.Sprintf("%s %s", e.Type, e.Rule)
	}
	return e.Type.String()
}

// Recorder is a Sink storing every event it receives. If Next is set, events
// are forwarded to it after recording.
type Recorder struct {
	Events []Event
	Next   Sink
}

var _ Sink = (*Recorder)(nil)

func (r *Recorder) record(e Event, forward func(Sink) error) error {
	r.Events = append(r.Events, e)
	if r.Next == nil {
		return nil
	}
	return forward(r.Next)
}

func (r *Recorder) TableOpen(maxColumns int) error {
	return r.record(Event{Type: EventTableOpen, Columns: maxColumns},
		func(s Sink) error { return s.TableOpen(maxColumns) })
}

func (r *Recorder) RowOpen() error {
	return r.record(Event{Type: EventRowOpen}, Sink.RowOpen)
}

func (r *Recorder) CellOpen(c Cell) error {
	return r.record(Event{Type: EventCellOpen, Cell: c},
		func(s Sink) error { return s.CellOpen(c) })
}

func (r *Recorder) Text(text string) error {
	return r.record(Event{Type: EventText, Text: text},
		func(s Sink) error { return s.Text(text) })
}

func (r *Recorder) CellClose(c Cell) error {
	return r.record(Event{Type: EventCellClose, Cell: c},
		func(s Sink) error { return s.CellClose(c) })
}

func (r *Recorder) Rule(rule Rule) error {
	return r.record(Event{Type: EventRule, Rule: rule},
		func(s Sink) error { return s.Rule(rule) })
}

func (r *Recorder) RowClose() error {
	return r.record(Event{Type: EventRowClose}, Sink.RowClose)
}

func (r *Recorder) TableClose() error {
	return r.record(Event{Type: EventTableClose}, Sink.TableClose)
}

// Counts summarizes the recorded events.
type Counts struct {
	Tables, Rows                    int
	Cells, Placeholders, Fillers    int
	Rules                           int
	PlaceholderColumns, RuleColumns int
}

// Counts tallies the cell opens by role and the rules recorded so far.
func (r *Recorder) Counts() Counts {
	var c Counts
	for _, e := range r.Events {
		switch e.Type {
		case EventTableOpen:
			c.Tables++
		case EventRowOpen:
			c.Rows++
		case EventCellOpen:
			switch e.Cell.Role {
			case RoleReal:
				c.Cells++
			case RolePlaceholder:
				c.Placeholders++
				c.PlaceholderColumns += e.Cell.Colspan
			case RoleFiller:
				c.Fillers++
			}
		case EventRule:
			c.Rules++
			c.RuleColumns += e.Rule.To - e.Rule.From + 1
		}
	}
	return c
}

// Rows splits the recorded events into rows, each holding the events from a
// row open up to and including its row close.
func (r *Recorder) Rows() [][]Event {
	var rows [][]Event
	var cur []Event
	for _, e := range r.Events {
		switch e.Type {
		case EventRowOpen:
			cur = []Event{e}
		case EventRowClose:
			rows = append(rows, append(cur, e))
			cur = nil
		default:
			if cur != nil {
				cur = append(cur, e)
			}
		}
	}
	return rows
}
