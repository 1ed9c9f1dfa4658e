// Package models defines the data structures produced by region extraction.
package models

import "strconv"

// DataType classifies a rendered cell.
type DataType string

const (
	DataTypeBoolean      DataType = "boolean"
	DataTypeError        DataType = "error"
	DataTypeFormula      DataType = "formula"
	DataTypeInlineString DataType = "inlineString"
	DataTypeNumeric      DataType = "numeric"
	DataTypeString       DataType = "string"
	DataTypeNull         DataType = "null"
)

// Hyperlink is the link attached to a cell.
type Hyperlink struct {
	// URL is the link target.
	URL string `json:"url"`
	// Title is the link tooltip, if any.
	Title string `json:"title,omitempty"`
}

// Cell is one rendered grid position.
type Cell struct {
	// Key is the cell's key within its row: a zero-based position or a
	// column name, depending on how the grid was keyed.
	Key string `json:"key"`
	// Ref is the A1 reference of the cell.
	Ref string `json:"ref"`
	// DataType is the cell's data type.
	DataType DataType `json:"dataType"`
	// Value is the display value.
	Value string `json:"value"`
	// HTML is true when Value is markup rather than plain text.
	HTML bool `json:"html,omitempty"`
	// RowSpan is the merge row span, 0 when the cell owns no merge.
	RowSpan int `json:"rowspan"`
	// ColSpan is the merge column span, 0 when the cell owns no merge.
	ColSpan int `json:"colspan"`
	// StyleBucket is the index of the cell's style record.
	StyleBucket int `json:"styleBucket"`
	// AdditionalStyleBuckets are the style buckets of cells swallowed by
	// the merge this cell owns.
	AdditionalStyleBuckets []int `json:"additionalStyleBuckets,omitempty"`
	// RichText is true when the value came from formatted text runs.
	RichText bool `json:"richText"`
	// Superscript is true when the cell font is superscript.
	Superscript bool `json:"superscript,omitempty"`
	// Subscript is true when the cell font is subscript.
	Subscript bool `json:"subscript,omitempty"`
	// Hyperlink is the cell's link (nil if none).
	Hyperlink *Hyperlink `json:"hyperlink,omitempty"`
}

// Merged reports whether the cell owns a merge.
func (c Cell) Merged() bool {
	return c.RowSpan > 0 || c.ColSpan > 0
}

// Classes returns the CSS classes of the cell.
func (c Cell) Classes() []string {
	classes := []string{
		"cell-type-" + string(c.DataType),
		"cell-style-" + strconv.Itoa(c.StyleBucket),
	}
	for _, id := range c.AdditionalStyleBuckets {
		if id == c.StyleBucket {
			continue
		}
		classes = append(classes, "cell-style-"+strconv.Itoa(id))
	}
	return classes
}
