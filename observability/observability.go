package observability

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/npillmayer/schuko/tracing"
)

type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

type Field interface {
	Key() string
	Value() interface{}
}

type stringField struct{ key, val string }

func (f stringField) Key() string        { return f.key }
func (f stringField) Value() interface{} { return f.val }

type intField struct {
	key string
	val int
}

func (f intField) Key() string        { return f.key }
func (f intField) Value() interface{} { return f.val }

type errorField struct {
	key string
	err error
}

func (f errorField) Key() string        { return f.key }
func (f errorField) Value() interface{} { return f.err }

func String(key, value string) Field    { return stringField{key, value} }
func Int(key string, value int) Field   { return intField{key, value} }
func Error(key string, err error) Field { return errorField{key, err} }

type NopLogger struct{}

func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Warn(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}
func (NopLogger) With(...Field) Logger   { return NopLogger{} }

// TraceLogger is a Logger writing to a schuko trace. Fields are appended to
// the message as key=value pairs.
type TraceLogger struct {
	key    string
	fields []Field
}

// NewTraceLogger returns a Logger tracing to the schuko tracer selected by key.
func NewTraceLogger(key string) *TraceLogger {
	return &TraceLogger{key: key}
}

func (l *TraceLogger) trace() tracing.Trace {
	return tracing.Select(l.key)
}

func (l *TraceLogger) Debug(msg string, fields ...Field) {
	l.trace().Debugf("%s", l.format(msg, fields))
}

func (l *TraceLogger) Info(msg string, fields ...Field) {
	l.trace().Infof("%s", l.format(msg, fields))
}

// Warn traces on info level, schuko has no level between info and error.
func (l *TraceLogger) Warn(msg string, fields ...Field) {
	l.trace().Infof("WARN %s", l.format(msg, fields))
}

func (l *TraceLogger) Error(msg string, fields ...Field) {
	l.trace().Errorf("%s", l.format(msg, fields))
}

func (l *TraceLogger) With(fields ...Field) Logger {
	all := make([]Field, 0, len(l.fields)+len(fields))
	all = append(all, l.fields...)
	all = append(all, fields...)
	return &TraceLogger{key: l.key, fields: all}
}

func (l *TraceLogger) format(msg string, fields []Field) string {
	if len(l.fields)+len(fields) == 0 {
		return msg
	}
	var b strings.Builder
	b.WriteString(msg)
	for _, f := range append(append([]Field(nil), l.fields...), fields...) {
		fmt.Fprintf(&b, " %s=%v", f.Key(), f.Value())
	}
	return b.String()
}

// Tracer provides tracing hooks around conversion steps.
type Tracer interface {
	StartSpan(ctx context.Context, name string) (context.Context, Span)
}

// Span represents a tracing span.
type Span interface {
	SetTag(key string, value interface{})
	SetError(err error)
	Finish()
}

type nopTracer struct{}

func (nopTracer) StartSpan(ctx context.Context, _ string) (context.Context, Span) {
	return ctx, nopSpan{}
}

// NopTracer returns a tracer that does nothing.
func NopTracer() Tracer { return nopTracer{} }

type nopSpan struct{}

func (nopSpan) SetTag(string, interface{}) {}
func (nopSpan) SetError(error)             {}
func (nopSpan) Finish()                    {}

// TraceTracer is a Tracer writing span starts and ends, with their tags, to
// a schuko trace at debug level.
type TraceTracer struct {
	key string
}

// NewTraceTracer returns a Tracer tracing to the schuko tracer selected by key.
func NewTraceTracer(key string) *TraceTracer {
	return &TraceTracer{key: key}
}

func (t *TraceTracer) StartSpan(ctx context.Context, name string) (context.Context, Span) {
	s := &traceSpan{trace: tracing.Select(t.key), name: name, start: time.Now()}
	s.trace.Debugf("span %s started", name)
	return ctx, s
}

type traceSpan struct {
	trace tracing.Trace
	name  string
	start time.Time
	tags  []tag
	err   error
}

type tag struct {
	key   string
	value interface{}
}

func (s *traceSpan) SetTag(key string, value interface{}) {
	for i := range s.tags {
		if s.tags[i].key == key {
			s.tags[i].value = value
			return
		}
	}
	s.tags = append(s.tags, tag{key, value})
}

func (s *traceSpan) SetError(err error) {
	s.err = err
}

func (s *traceSpan) Finish() {
	s.trace.Debugf("%s after %s", s.summary(), time.Since(s.start))
}

func (s *traceSpan) summary() string {
	var b strings.Builder
	b.WriteString("span " + s.name + " finished")
	for _, t := range s.tags {
		fmt.Fprintf(&b, " %s=%v", t.key, t.value)
	}
	if s.err != nil {
		fmt.Fprintf(&b, " error=%q", s.err.Error())
	}
	return b.String()
}

// Standard span and tag names used by the converter.
const (
	SpanConvertTable = "texport.convert.table"
	TagTableIndex    = "table.index"
	TagTableColumns  = "table.columns"
	TagTableRows     = "table.rows"
	TagRecovery      = "table.recovery"
)
