package output

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/ukaji3/sheetview-go/pkg/sheetview/models"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTML renders result as a <style> element followed by a table. Head rows
// go into <thead> as header cells and body rows into <tbody>. The table
// carries rootID as its id so the scoped stylesheet applies.
func HTML(result *models.Result, rootID string) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("nil result")
	}

	root := &html.Node{Type: html.DocumentNode}
	if result.CSS != "" {
		styleEl := element(atom.Style)
		styleEl.AppendChild(&html.Node{Type: html.TextNode, Data: result.CSS})
		root.AppendChild(styleEl)
	}

	table := element(atom.Table)
	if rootID != "" {
		setAttr(table, "id", rootID)
	}
	setAttr(table, "data-locator", result.Locator)
	if result.Direction != "" {
		setAttr(table, "data-direction", result.Direction)
	}
	root.AppendChild(table)

	if result.Head != nil && len(result.Head.Rows) > 0 {
		thead := element(atom.Thead)
		if err := appendRows(thead, result.Head.Rows, atom.Th); err != nil {
			return nil, err
		}
		table.AppendChild(thead)
	}
	tbody := element(atom.Tbody)
	if result.Body != nil {
		if err := appendRows(tbody, result.Body.Rows, atom.Td); err != nil {
			return nil, err
		}
	}
	table.AppendChild(tbody)

	var buf bytes.Buffer
	if err := html.Render(&buf, root); err != nil {
		return nil, fmt.Errorf("failed to render html: %w", err)
	}
	return buf.Bytes(), nil
}

func appendRows(parent *html.Node, rows []models.Row, cellAtom atom.Atom) error {
	for _, row := range rows {
		tr := element(atom.Tr)
		setAttr(tr, "data-row", strconv.Itoa(row.Number))
		for _, c := range row.Cells {
			cell, err := cellNode(c, cellAtom)
			if err != nil {
				return err
			}
			tr.AppendChild(cell)
		}
		parent.AppendChild(tr)
	}
	return nil
}

func cellNode(c models.Cell, cellAtom atom.Atom) (*html.Node, error) {
	n := element(cellAtom)
	setAttr(n, "class", strings.Join(c.Classes(), " "))
	setAttr(n, "data-ref", c.Ref)
	if c.RowSpan > 1 {
		setAttr(n, "rowspan", strconv.Itoa(c.RowSpan))
	}
	if c.ColSpan > 1 {
		setAttr(n, "colspan", strconv.Itoa(c.ColSpan))
	}

	content := n
	if c.Hyperlink != nil && c.Hyperlink.URL != "" {
		a := element(atom.A)
		setAttr(a, "href", c.Hyperlink.URL)
		if c.Hyperlink.Title != "" {
			setAttr(a, "title", c.Hyperlink.Title)
		}
		n.AppendChild(a)
		content = a
	}

	if !c.HTML {
		content.AppendChild(&html.Node{Type: html.TextNode, Data: c.Value})
		return n, nil
	}
	nodes, err := html.ParseFragment(strings.NewReader(c.Value), element(atom.Span))
	if err != nil {
		return nil, fmt.Errorf("cell %s: failed to parse markup: %w", c.Ref, err)
	}
	for _, child := range nodes {
		content.AppendChild(child)
	}
	return n, nil
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}

func setAttr(n *html.Node, key, val string) {
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
