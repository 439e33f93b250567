package recovery

// Strategy decides what to do about a table that could not be converted.
type Strategy interface {
	OnError(ctx Context, err error, location Location) Action
}

// Location points at the failing table. Row and Column are 1-indexed and
// zero if unknown.
type Location struct {
	Table     int
	Row       int
	Column    int
	Component string
}

type Action int

const (
	ActionFail Action = iota // abort the conversion
	ActionSkip               // drop the table silently
	ActionFix                // convert the table again with padded rows
	ActionWarn               // drop the table, leaving a comment in the output
)

func (a Action) String() string {
	switch a {
	case ActionFail:
		return "fail"
	case ActionSkip:
		return "skip"
	case ActionFix:
		return "fix"
	case ActionWarn:
		return "warn"
	}
	return "unknown"
}

type Context interface{ Done() <-chan struct{} }
