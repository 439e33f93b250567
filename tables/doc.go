/*
Package tables corrects a stream of table events for renderers without native
row-span support.

A Tracker sits between a document walker and a Sink. The walker reports cells
in reading order, each with a requested column and row span. Cells spanning
several rows are only reported once, in the row where they start. A
column-oriented renderer such as LaTeX's tabular environment, however, needs
every row to account for every column. The tracker therefore keeps a Grid of
per-column spans carried over from previous rows and

  - inserts placeholder cells wherever an earlier cell still claims columns,
  - emits partial horizontal rules under every run of columns whose covering
    cell ends in the current row.

A Tracker handles one table at a time and is not safe for concurrent use.
Independent tables may be processed by independent trackers.
*/
package tables

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'texport.tables'.
func tracer() tracing.Trace {
	return tracing.Select("texport.tables")
}
