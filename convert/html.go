package convert

import (
	"context"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/wudi/texport/tables"
)

// Limits on span attributes as applied by browsers.
const (
	maxColspan = 1000
	maxRowspan = 65534
)

// ConvertHTML writes every table of an HTML document. Tables nested in a
// cell are flattened into the text of that cell.
func (e *Engine) ConvertHTML(ctx context.Context, r io.Reader) error {
	doc, err := html.Parse(r)
	if err != nil {
		return err
	}
	for _, tbl := range collectHTMLTables(doc, nil) {
		if err := e.writeTable(ctx, tbl); err != nil {
			return err
		}
	}
	return nil
}

func collectHTMLTables(n *html.Node, found []*table) []*table {
	if n.Type == html.ElementNode && n.DataAtom == atom.Table {
		return append(found, parseHTMLTable(n))
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		found = collectHTMLTables(c, found)
	}
	return found
}

func parseHTMLTable(n *html.Node) *table {
	tbl := &table{source: "html"}
	var loose [][]entry // rows directly below <table> form one group
	flush := func() {
		tbl.rows = append(tbl.rows, clipRowspans(loose)...)
		loose = nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Caption:
			tbl.caption = extractText(c)
		case atom.Thead:
			flush()
			tbl.rows = append(tbl.rows, clipRowspans(groupRows(c, true))...)
		case atom.Tbody, atom.Tfoot:
			flush()
			tbl.rows = append(tbl.rows, clipRowspans(groupRows(c, false))...)
		case atom.Tr:
			loose = append(loose, parseHTMLRow(c, false))
		}
	}
	flush()
	tbl.columns = measure(tbl.rows)
	return tbl
}

func groupRows(section *html.Node, head bool) [][]entry {
	var rows [][]entry
	for c := section.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Tr {
			rows = append(rows, parseHTMLRow(c, head))
		}
	}
	return rows
}

// clipRowspans ends every row span with its row group. A rowspan of 0
// extends to the end of the group.
func clipRowspans(rows [][]entry) [][]entry {
	for i, row := range rows {
		left := len(rows) - i
		for k := range row {
			if row[k].rowspan == 0 || row[k].rowspan > left {
				row[k].rowspan = left
			}
		}
	}
	return rows
}

func parseHTMLRow(tr *html.Node, head bool) []entry {
	row := make([]entry, 0)
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.DataAtom != atom.Td && c.DataAtom != atom.Th) {
			continue
		}
		cell := entry{
			kind:    tables.DataCell,
			colspan: spanAttr(c, "colspan", 1, maxColspan),
			rowspan: spanAttr(c, "rowspan", 0, maxRowspan),
			align:   htmlAlign(c),
			text:    extractText(c),
		}
		if head || c.DataAtom == atom.Th {
			cell.kind = tables.HeaderCell
		}
		row = append(row, cell)
	}
	return row
}

// spanAttr reads a span attribute. Missing or invalid values and values
// below lowest yield 1, values above limit are clipped.
func spanAttr(n *html.Node, key string, lowest, limit int) int {
	v, ok := attr(n, key)
	if !ok {
		return 1
	}
	span, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || span < lowest {
		return 1
	}
	return min(span, limit)
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// htmlAlign reads the align attribute, falling back to a text-align
// declaration in the style attribute.
func htmlAlign(n *html.Node) tables.Align {
	if v, ok := attr(n, "align"); ok {
		return tables.ParseAlign(strings.ToLower(strings.TrimSpace(v)))
	}
	style, _ := attr(n, "style")
	for _, decl := range strings.Split(style, ";") {
		prop, val, found := strings.Cut(decl, ":")
		if found && strings.EqualFold(strings.TrimSpace(prop), "text-align") {
			return tables.ParseAlign(strings.ToLower(strings.TrimSpace(val)))
		}
	}
	return tables.AlignUnspecified
}

func extractText(n *html.Node) string {
	var sb strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			sb.WriteString(n.Data)
		case n.Type == html.ElementNode && (n.DataAtom == atom.Br || n.DataAtom == atom.Td || n.DataAtom == atom.Th):
			sb.WriteByte(' ')
		case n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style):
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return strings.TrimSpace(sb.String())
}
