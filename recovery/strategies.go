package recovery

import (
	"errors"
	"fmt"

	"github.com/wudi/texport/tables"
)

// StrictStrategy implements a fail-fast recovery strategy.
type StrictStrategy struct{}

func NewStrictStrategy() *StrictStrategy {
	return &StrictStrategy{}
}

func (s *StrictStrategy) OnError(ctx Context, err error, location Location) Action {
	return ActionFail
}

// LenientStrategy implements a best-effort recovery strategy. Short rows are
// padded, every other broken table is dropped with a warning. Protocol
// violations still fail, they indicate a broken document walker rather than
// a broken document.
type LenientStrategy struct {
	Errors []error
}

func NewLenientStrategy() *LenientStrategy {
	return &LenientStrategy{}
}

func (s *LenientStrategy) OnError(ctx Context, err error, location Location) Action {
	s.Errors = append(s.Errors, fmt.Errorf("[%s] table %d: %w", location.Component, location.Table, err))
	switch {
	case errors.Is(err, tables.ErrProtocol):
		return ActionFail
	case errors.Is(err, tables.ErrUnderflow):
		return ActionFix
	}
	return ActionWarn
}

// SkipStrategy drops every broken table without a trace in the output.
type SkipStrategy struct{}

func (SkipStrategy) OnError(ctx Context, err error, location Location) Action {
	return ActionSkip
}

// ByName returns the strategy called "strict", "lenient" or "skip".
func ByName(name string) (Strategy, error) {
	switch name {
	case "", "strict":
		return NewStrictStrategy(), nil
	case "lenient":
		return NewLenientStrategy(), nil
	case "skip":
		return SkipStrategy{}, nil
	}
	return nil, fmt.Errorf("unknown recovery strategy %q", name)
}
