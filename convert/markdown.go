package convert

import (
	"context"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/wudi/texport/tables"
)

// ConvertMarkdown writes every GFM table of a Markdown document. Missing
// cells at the end of a row are treated as empty, as GFM prescribes.
func (e *Engine) ConvertMarkdown(ctx context.Context, source []byte) error {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	doc := md.Parser().Parse(text.NewReader(source))

	var found []*table
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := n.(*east.Table); ok {
			found = append(found, markdownTable(t, source))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return err
	}
	for _, tbl := range found {
		if err := e.writeTable(ctx, tbl); err != nil {
			return err
		}
	}
	return nil
}

func markdownTable(t *east.Table, source []byte) *table {
	tbl := &table{source: "markdown", columns: len(t.Alignments), pad: true}
	for child := t.FirstChild(); child != nil; child = child.NextSibling() {
		switch child.(type) {
		case *east.TableHeader:
			tbl.rows = append(tbl.rows, markdownRow(child, tables.HeaderCell, source))
		case *east.TableRow:
			tbl.rows = append(tbl.rows, markdownRow(child, tables.DataCell, source))
		}
	}
	return tbl
}

func markdownRow(row ast.Node, kind tables.CellKind, source []byte) []entry {
	cells := make([]entry, 0, row.ChildCount())
	for c := row.FirstChild(); c != nil; c = c.NextSibling() {
		cell, ok := c.(*east.TableCell)
		if !ok {
			continue
		}
		cells = append(cells, entry{
			kind:    kind,
			colspan: 1,
			rowspan: 1,
			align:   markdownAlign(cell.Alignment),
			text:    inlineText(cell, source),
		})
	}
	return cells
}

func markdownAlign(a east.Alignment) tables.Align {
	switch a {
	case east.AlignLeft:
		return tables.AlignLeft
	case east.AlignCenter:
		return tables.AlignCenter
	case east.AlignRight:
		return tables.AlignRight
	}
	return tables.AlignUnspecified
}

// inlineText concatenates the text of all inline nodes below n.
func inlineText(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(t.Value)
		case *ast.AutoLink:
			sb.Write(t.Label(source))
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}
