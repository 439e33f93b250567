package convert

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/wudi/texport/latex"
	"github.com/wudi/texport/observability"
	"github.com/wudi/texport/recovery"
	"github.com/wudi/texport/tables"
)

const spanningHTML = `
<html><body>
<p>Some text before.</p>
<table>
<caption>Prices</caption>
<thead><tr><th>Item</th><th>Kind</th><th>Cost</th></tr></thead>
<tbody>
<tr><td colspan="2" rowspan="2">tea</td><td align="right">3</td></tr>
<tr><td align="right">4</td></tr>
<tr><td>a</td><td style="color: red; text-align: center">b</td><td>c &amp; d</td></tr>
</tbody>
</table>
</body></html>
`

func TestConvertHTMLWithSpans(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "texport.tables")
	defer teardown()
	//
	var buf bytes.Buffer
	e := NewEngine(&buf)
	require.NoError(t, e.ConvertHTML(context.Background(), strings.NewReader(spanningHTML)))
	assert.Equal(t, strings.Join([]string{
		`% Prices`,
		`\begin{tabular}{|l|l|l|}`,
		`\hline`,
		`Item & Kind & Cost \\`,
		`\hline`,
		`\multicolumn{2}{|l|}{\multirow{2}{*}{tea}} & \multicolumn{1}{r|}{3} \\`,
		`\cline{3-3}`,
		`\multicolumn{2}{|l|}{} & \multicolumn{1}{r|}{4} \\`,
		`\hline`,
		`a & \multicolumn{1}{c|}{b} & c \& d \\`,
		`\hline`,
		`\end{tabular}`,
		``,
	}, "\n"), buf.String())
	assert.Equal(t, Stats{Written: 1}, e.Stats())
}

func TestConvertHTMLBoldHeadersWithoutBorders(t *testing.T) {
	var buf bytes.Buffer
	e := NewEngine(&buf, WithTabularOptions(latex.WithBorders(false), latex.WithBoldHeaders(true)))
	src := `<table><tr><th>H</th><td>x</td></tr></table>`
	require.NoError(t, e.ConvertHTML(context.Background(), strings.NewReader(src)))
	assert.Contains(t, buf.String(), "\\begin{tabular}{ll}\n")
	assert.Contains(t, buf.String(), `\textbf{H} & x \\`)
}

func TestConvertMarkdownTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "texport.tables")
	defer teardown()
	//
	src := []byte(`# Groceries

| Name | Qty |
|:-----|----:|
| tea  | 2   |
| *cake* | ` + "`1`" + ` |

Done.
`)
	var buf bytes.Buffer
	e := NewEngine(&buf)
	require.NoError(t, e.ConvertMarkdown(context.Background(), src))
	assert.Equal(t, strings.Join([]string{
		`\begin{tabular}{|l|l|}`,
		`\hline`,
		`Name & \multicolumn{1}{r|}{Qty} \\`,
		`\hline`,
		`tea & \multicolumn{1}{r|}{2} \\`,
		`\hline`,
		`cake & \multicolumn{1}{r|}{1} \\`,
		`\hline`,
		`\end{tabular}`,
		``,
	}, "\n"), buf.String())
}

func TestConvertMarkdownShortRowIsPadded(t *testing.T) {
	src := []byte("| a | b |\n|---|---|\n| c |\n| d | e |\n")
	var buf bytes.Buffer
	e := NewEngine(&buf)
	require.NoError(t, e.ConvertMarkdown(context.Background(), src))
	assert.Contains(t, buf.String(), "c & ")
	assert.Equal(t, 1, e.Stats().Written)
}

const raggedHTML = `<table>
<tr><td>a</td><td>b</td></tr>
<tr><td>c</td></tr>
<tr><td>d</td><td>e</td></tr>
</table>`

func TestRecoveryOfShortRows(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "texport.tables")
	defer teardown()
	//
	ctx := context.Background()

	var buf bytes.Buffer
	e := NewEngine(&buf)
	err := e.ConvertHTML(ctx, strings.NewReader(raggedHTML))
	require.ErrorIs(t, err, tables.ErrUnderflow)
	assert.Contains(t, err.Error(), "table 1")
	assert.Empty(t, buf.String(), "a broken table must not be written partially")

	buf.Reset()
	lenient := recovery.NewLenientStrategy()
	e = NewEngine(&buf, WithStrategy(lenient), WithLogger(observability.NewTraceLogger("texport.tables")))
	require.NoError(t, e.ConvertHTML(ctx, strings.NewReader(raggedHTML)))
	assert.Contains(t, buf.String(), "c &  \\\\\n")
	assert.Equal(t, Stats{Written: 1, Fixed: 1}, e.Stats())
	assert.Len(t, lenient.Errors, 1)

	buf.Reset()
	e = NewEngine(&buf, WithPadding(true))
	require.NoError(t, e.ConvertHTML(ctx, strings.NewReader(raggedHTML)))
	assert.Equal(t, Stats{Written: 1}, e.Stats())

	buf.Reset()
	e = NewEngine(&buf, WithStrategy(recovery.SkipStrategy{}))
	require.NoError(t, e.ConvertHTML(ctx, strings.NewReader(raggedHTML)))
	assert.Empty(t, buf.String())
	assert.Equal(t, Stats{Skipped: 1}, e.Stats())
}

func TestOverlappingSpansAreWarnedAbout(t *testing.T) {
	src := `<table>
<tr><td>a</td><td rowspan="2">b</td></tr>
<tr><td colspan="2">c</td></tr>
</table>
<table><tr><td>ok</td></tr></table>`
	var buf bytes.Buffer
	e := NewEngine(&buf, WithStrategy(recovery.NewLenientStrategy()))
	require.NoError(t, e.ConvertHTML(context.Background(), strings.NewReader(src)))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "% table 1 skipped: "), out)
	assert.Contains(t, out, "overlaps")
	assert.Contains(t, out, "\n\n\\begin{tabular}{|l|}\n")
	assert.Equal(t, Stats{Written: 1, Skipped: 1}, e.Stats())
}

func TestTablesAreSeparatedAndInspected(t *testing.T) {
	src := `<table><tr><td>1</td></tr></table><div><table><tr><td>2</td><td>3</td></tr></table></div>`
	var buf bytes.Buffer
	var seen []int
	var cells int
	e := NewEngine(&buf, WithInspector(func(index int, events []tables.Event) {
		seen = append(seen, index)
		for _, ev := range events {
			if ev.Type == tables.EventCellOpen {
				cells++
			}
		}
	}))
	require.NoError(t, e.ConvertHTML(context.Background(), strings.NewReader(src)))
	assert.Equal(t, []int{1, 2}, seen)
	assert.Equal(t, 3, cells)
	assert.Contains(t, buf.String(), "\\end{tabular}\n\n\\begin{tabular}{|l|l|}")
}

func TestNestedTablesAreFlattened(t *testing.T) {
	src := `<table><tr><td>outer <table><tr><td>in1</td><td>in2</td></tr></table></td></tr></table>`
	var buf bytes.Buffer
	e := NewEngine(&buf)
	require.NoError(t, e.ConvertHTML(context.Background(), strings.NewReader(src)))
	assert.Equal(t, 1, e.Stats().Written)
	assert.Contains(t, buf.String(), `outer in1 in2 \\`)
}

func TestCancelledContextStopsConversion(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	e := NewEngine(&buf)
	err := e.ConvertHTML(ctx, strings.NewReader(raggedHTML))
	require.ErrorIs(t, err, context.Canceled)
}

func TestMeasure(t *testing.T) {
	cell := func(colspan, rowspan int) entry {
		return entry{colspan: colspan, rowspan: rowspan}
	}
	assert.Equal(t, 0, measure(nil))
	assert.Equal(t, 3, measure([][]entry{
		{cell(2, 2), cell(1, 1)},
		{cell(1, 1)},
	}))
	// the spanning cell shifts the later rows to the right
	assert.Equal(t, 3, measure([][]entry{
		{cell(1, 3), cell(1, 1), cell(1, 1)},
		{cell(1, 1), cell(1, 1)},
		{cell(2, 1)},
	}))
	// claims to the right of the last cell count as well
	assert.Equal(t, 2, measure([][]entry{
		{cell(1, 1), cell(1, 2)},
		{cell(1, 1)},
	}))
	assert.Equal(t, 4, measure([][]entry{
		{cell(1, 1)},
		{cell(4, 0)},
	}))
}

func TestSpanAttributes(t *testing.T) {
	src := `<table><tr>
<td colspan="0" rowspan="0">a</td>
<td colspan="x" rowspan="-1">b</td>
<td colspan=" 2 " rowspan="70000">c</td>
</tr></table>`
	tbl := collectHTMLTables(mustParse(t, src), nil)[0]
	require.Len(t, tbl.rows, 1)
	row := tbl.rows[0]
	assert.Equal(t, entry{kind: tables.DataCell, colspan: 1, rowspan: 1, text: "a"}, row[0])
	assert.Equal(t, entry{kind: tables.DataCell, colspan: 1, rowspan: 1, text: "b"}, row[1])
	assert.Equal(t, entry{kind: tables.DataCell, colspan: 2, rowspan: 1, text: "c"}, row[2])
	assert.Equal(t, 4, tbl.columns)

	doc := mustParse(t, `<table><tr><td rowspan="0">x</td><td rowspan="70000">y</td></tr></table>`)
	raw := parseHTMLRow(firstElement(doc, atom.Tr), false)
	require.Len(t, raw, 2)
	assert.Equal(t, 0, raw[0].rowspan)
	assert.Equal(t, maxRowspan, raw[1].rowspan)
}

func TestRowspansEndWithTheirRowGroup(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "texport.tables")
	defer teardown()
	//
	src := `<table>
<thead><tr><th rowspan="2">a</th><th>b</th></tr></thead>
<tbody><tr><td>c</td><td>d</td></tr></tbody>
</table>`
	var buf bytes.Buffer
	e := NewEngine(&buf)
	require.NoError(t, e.ConvertHTML(context.Background(), strings.NewReader(src)))
	assert.Equal(t, strings.Join([]string{
		`\begin{tabular}{|l|l|}`,
		`\hline`,
		`a & b \\`,
		`\hline`,
		`c & d \\`,
		`\hline`,
		`\end{tabular}`,
		``,
	}, "\n"), buf.String())
}

func TestZeroRowspanFillsTheRowGroup(t *testing.T) {
	src := `<table>
<tbody>
<tr><td rowspan="0">x</td><td>1</td></tr>
<tr><td>2</td></tr>
<tr><td>3</td></tr>
</tbody>
<tfoot><tr><td>f</td><td>g</td></tr></tfoot>
</table>`
	tbl := collectHTMLTables(mustParse(t, src), nil)[0]
	require.Len(t, tbl.rows, 4)
	assert.Equal(t, 3, tbl.rows[0][0].rowspan)
	assert.Equal(t, 1, tbl.rows[3][0].rowspan)
	assert.Equal(t, 2, tbl.columns)

	var buf bytes.Buffer
	e := NewEngine(&buf)
	require.NoError(t, e.ConvertHTML(context.Background(), strings.NewReader(src)))
	assert.Contains(t, buf.String(), "\\multirow{3}{*}{x} & 1 \\\\\n\\cline{2-2}\n & 2 \\\\\n\\cline{2-2}\n & 3 \\\\\n\\hline\nf & g")
}

func firstElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := firstElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

func mustParse(t *testing.T, src string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(src))
	require.NoError(t, err)
	return doc
}

func TestEmptyTablesAreSkipped(t *testing.T) {
	var buf bytes.Buffer
	e := NewEngine(&buf)
	require.NoError(t, e.ConvertHTML(context.Background(), strings.NewReader(`<table></table><table><tr></tr></table>`)))
	assert.Empty(t, buf.String())
	assert.Equal(t, Stats{Skipped: 2}, e.Stats())
}

func TestCaptionAsHeading(t *testing.T) {
	var buf bytes.Buffer
	e := NewEngine(&buf, WithCaptionHeadings(3))
	src := `<table><caption>Fees &amp; taxes</caption><tr><td>x</td></tr></table>`
	require.NoError(t, e.ConvertHTML(context.Background(), strings.NewReader(src)))
	assert.True(t, strings.HasPrefix(buf.String(), "\\section{Fees \\& taxes}\n\\begin{tabular}{|l|}\n"), buf.String())
}

type recordingTracer struct {
	spans []*recordingSpan
}

type recordingSpan struct {
	name     string
	tags     map[string]interface{}
	err      error
	finished bool
}

func (r *recordingTracer) StartSpan(ctx context.Context, name string) (context.Context, observability.Span) {
	s := &recordingSpan{name: name, tags: map[string]interface{}{}}
	r.spans = append(r.spans, s)
	return ctx, s
}

func (s *recordingSpan) SetTag(key string, value interface{}) { s.tags[key] = value }
func (s *recordingSpan) SetError(err error)                   { s.err = err }
func (s *recordingSpan) Finish()                              { s.finished = true }

func TestEverySpanCoversOneTable(t *testing.T) {
	tracer := &recordingTracer{}
	var buf bytes.Buffer
	e := NewEngine(&buf, WithTracer(tracer))
	src := `<table><tr><td>ok</td></tr></table>` + raggedHTML
	err := e.ConvertHTML(context.Background(), strings.NewReader(src))
	require.ErrorIs(t, err, tables.ErrUnderflow)

	require.Len(t, tracer.spans, 2)
	good, bad := tracer.spans[0], tracer.spans[1]
	for _, s := range tracer.spans {
		assert.Equal(t, observability.SpanConvertTable, s.name)
		assert.True(t, s.finished)
	}
	assert.Equal(t, map[string]interface{}{
		observability.TagTableIndex:   1,
		observability.TagTableColumns: 1,
		observability.TagTableRows:    1,
	}, good.tags)
	assert.NoError(t, good.err)

	assert.Equal(t, map[string]interface{}{
		observability.TagTableIndex:   2,
		observability.TagTableColumns: 2,
		observability.TagTableRows:    3,
		observability.TagRecovery:     "fail",
	}, bad.tags)
	assert.ErrorIs(t, bad.err, tables.ErrUnderflow)
}
