package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/wudi/texport/latex"
	"github.com/wudi/texport/observability"
	"github.com/wudi/texport/recovery"
	"github.com/wudi/texport/tables"
)

// Engine converts the tables of Markdown and HTML documents to LaTeX tabular
// environments. Every table is corrected by a fresh tables.Tracker and
// written only once it converted completely.
type Engine struct {
	w io.Writer

	// Configuration
	Tabular      []latex.Option
	Padding      bool
	CaptionLevel int // heading level for captions, 0 writes them as comments
	Strategy     recovery.Strategy
	Logger       observability.Logger
	Tracer       observability.Tracer
	Inspect      func(index int, events []tables.Event) // called with the events of every table written

	// State
	index int
	wrote bool
	stats Stats
}

// Stats counts the tables an Engine has handled.
type Stats struct {
	Written int
	Skipped int
	Fixed   int // written after padding short rows, included in Written
}

// Option defines a configuration option for the Engine.
type Option func(*Engine)

// WithTabularOptions sets the options of the LaTeX tabular writer.
func WithTabularOptions(opts ...latex.Option) Option {
	return func(e *Engine) {
		e.Tabular = append(e.Tabular, opts...)
	}
}

// WithPadding completes short table rows with empty cells.
func WithPadding(pad bool) Option {
	return func(e *Engine) {
		e.Padding = pad
	}
}

// WithCaptionHeadings writes table captions as sectioning commands of the
// given level instead of comments.
func WithCaptionHeadings(level int) Option {
	return func(e *Engine) {
		e.CaptionLevel = level
	}
}

// WithStrategy sets how tables that cannot be converted are handled.
func WithStrategy(s recovery.Strategy) Option {
	return func(e *Engine) {
		e.Strategy = s
	}
}

// WithLogger sets the logger.
func WithLogger(l observability.Logger) Option {
	return func(e *Engine) {
		e.Logger = l
	}
}

// WithTracer sets the tracer opening a span per table.
func WithTracer(t observability.Tracer) Option {
	return func(e *Engine) {
		e.Tracer = t
	}
}

// WithInspector registers a function receiving the corrected event stream of
// every table written.
func WithInspector(fn func(index int, events []tables.Event)) Option {
	return func(e *Engine) {
		e.Inspect = fn
	}
}

// NewEngine creates a new conversion engine writing to w.
func NewEngine(w io.Writer, opts ...Option) *Engine {
	e := &Engine{
		w:        w,
		Strategy: recovery.NewStrictStrategy(),
		Logger:   observability.NopLogger{},
		Tracer:   observability.NopTracer(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Stats returns the counts of tables handled so far.
func (e *Engine) Stats() Stats {
	return e.stats
}

// table is a table as found in a source document.
type table struct {
	source  string // "html" or "markdown"
	caption string
	columns int
	pad     bool // the source format allows short rows
	rows    [][]entry
}

// entry is a cell as found in a source document.
type entry struct {
	kind    tables.CellKind
	colspan int
	rowspan int
	align   tables.Align
	text    string
}

// replay feeds a table into a tracker.
func replay(tr *tables.Tracker, tbl *table) error {
	if err := tr.OpenTable(tbl.columns); err != nil {
		return err
	}
	for _, row := range tbl.rows {
		if err := tr.OpenRow(); err != nil {
			return err
		}
		for _, c := range row {
			if err := tr.OpenCell(c.kind, c.colspan, c.align, c.rowspan); err != nil {
				return err
			}
			if c.text != "" {
				if err := tr.Text(c.text); err != nil {
					return err
				}
			}
			if err := tr.CloseCell(); err != nil {
				return err
			}
		}
		if err := tr.CloseRow(); err != nil {
			return err
		}
	}
	return tr.CloseTable()
}

// render converts a table into buf.
func (e *Engine) render(buf *bytes.Buffer, tbl *table, pad bool) ([]tables.Event, error) {
	rec := &tables.Recorder{Next: latex.NewTabular(buf, e.Tabular...)}
	tr := tables.NewTracker(rec, tables.WithPadding(pad || tbl.pad))
	if err := replay(tr, tbl); err != nil {
		return nil, err
	}
	return rec.Events, nil
}

// writeTable converts a table and writes it, consulting the recovery
// strategy if the table is broken.
func (e *Engine) writeTable(ctx context.Context, tbl *table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.index++
	ctx, span := e.Tracer.StartSpan(ctx, observability.SpanConvertTable)
	defer span.Finish()
	span.SetTag(observability.TagTableIndex, e.index)
	span.SetTag(observability.TagTableColumns, tbl.columns)
	span.SetTag(observability.TagTableRows, len(tbl.rows))
	log := e.Logger.With(observability.Int("table", e.index), observability.String("source", tbl.source))

	var buf bytes.Buffer
	events, err := e.render(&buf, tbl, e.Padding)
	if err != nil {
		loc := recovery.Location{Table: e.index, Component: tbl.source}
		var gerr *tables.GridError
		if errors.As(err, &gerr) {
			loc.Row, loc.Column = gerr.Row, gerr.Column
		}
		action := e.Strategy.OnError(ctx, err, loc)
		span.SetTag(observability.TagRecovery, action.String())
		log.Warn("table cannot be converted", observability.Error("error", err),
			observability.String("action", action.String()))
		switch action {
		case recovery.ActionFix:
			buf.Reset()
			if events, err = e.render(&buf, tbl, true); err != nil {
				span.SetError(err)
				return fmt.Errorf("table %d: %w", e.index, err)
			}
			e.stats.Fixed++
		case recovery.ActionSkip:
			e.stats.Skipped++
			return nil
		case recovery.ActionWarn:
			e.stats.Skipped++
			if err := e.separate(); err != nil {
				return err
			}
			e.wrote = true
			return latex.Comment(e.w, fmt.Sprintf("table %d skipped: %v", e.index, err))
		default:
			span.SetError(err)
			return fmt.Errorf("table %d: %w", e.index, err)
		}
	}
	if buf.Len() == 0 {
		e.stats.Skipped++
		log.Debug("table without columns")
		return nil
	}
	if err := e.separate(); err != nil {
		return err
	}
	if err := e.writeCaption(tbl.caption); err != nil {
		return err
	}
	if _, err := buf.WriteTo(e.w); err != nil {
		return err
	}
	e.wrote = true
	e.stats.Written++
	log.Debug("table written", observability.Int("columns", tbl.columns), observability.Int("rows", len(tbl.rows)))
	if e.Inspect != nil {
		e.Inspect(e.index, events)
	}
	return nil
}

func (e *Engine) writeCaption(caption string) error {
	switch {
	case caption == "":
		return nil
	case e.CaptionLevel > 0:
		return latex.Heading(e.w, e.CaptionLevel, caption)
	}
	return latex.Comment(e.w, caption)
}

// separate writes a blank line between consecutive outputs.
func (e *Engine) separate() error {
	if !e.wrote {
		return nil
	}
	_, err := io.WriteString(e.w, "\n")
	return err
}
