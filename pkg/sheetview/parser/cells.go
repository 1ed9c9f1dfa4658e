// Package parser walks worksheet regions and renders their cells.
package parser

import (
	"strconv"

	"github.com/ukaji3/sheetview-go/pkg/sheetview/address"
	"github.com/ukaji3/sheetview-go/pkg/sheetview/models"
	"github.com/xuri/excelize/v2"
	"golang.org/x/net/html"
)

// renderCell builds the rendered form of one grid position. Style and
// hyperlink lookups that fail leave their defaults in place.
func (e *Extractor) renderCell(f *excelize.File, sheetName string, c address.Coordinate) models.Cell {
	axis := c.String()
	cell := models.Cell{Ref: axis}

	typ, _ := f.GetCellType(sheetName, axis)
	formula, _ := f.GetCellFormula(sheetName, axis)
	raw, _ := f.GetCellValue(sheetName, axis, excelize.Options{RawCellValue: true})
	cell.DataType = classify(typ, formula, raw)

	res := e.formatter().Render(f, sheetName, axis, e.Calculate, e.Format)
	cell.Value = res.Value
	cell.RichText = res.RichText
	cell.HTML = res.RichText

	styleID, err := f.GetCellStyle(sheetName, axis)
	if err != nil {
		e.logger().Debug("Failed to look up cell style", "sheet", sheetName, "cell", axis, "error", err)
		styleID = 0
	}
	cell.StyleBucket = styleID
	if st, err := f.GetStyle(styleID); err == nil && st != nil && st.Font != nil {
		cell.Superscript = st.Font.VertAlign == "superscript"
		cell.Subscript = st.Font.VertAlign == "subscript"
	}
	if !cell.RichText && cell.Value != "" {
		switch {
		case cell.Superscript:
			cell.Value = "<sup>" + html.EscapeString(cell.Value) + "</sup>"
			cell.HTML = true
		case cell.Subscript:
			cell.Value = "<sub>" + html.EscapeString(cell.Value) + "</sub>"
			cell.HTML = true
		}
	}

	if ok, target, err := f.GetCellHyperLink(sheetName, axis); err == nil && ok && target != "" {
		cell.Hyperlink = &models.Hyperlink{URL: target}
	}
	return cell
}

// classify maps the stored type of a cell to its data type. Cells without
// an explicit type are classified by their raw value.
func classify(typ excelize.CellType, formula, raw string) models.DataType {
	if formula != "" {
		return models.DataTypeFormula
	}
	switch typ {
	case excelize.CellTypeBool:
		return models.DataTypeBoolean
	case excelize.CellTypeError:
		return models.DataTypeError
	case excelize.CellTypeSharedString:
		return models.DataTypeString
	case excelize.CellTypeInlineString:
		return models.DataTypeInlineString
	case excelize.CellTypeNumber, excelize.CellTypeDate:
		return models.DataTypeNumeric
	case excelize.CellTypeFormula:
		return models.DataTypeFormula
	}
	return parseValue(raw)
}

// parseValue classifies an untyped raw value.
func parseValue(s string) models.DataType {
	if s == "" {
		return models.DataTypeNull
	}
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return models.DataTypeNumeric
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return models.DataTypeNumeric
	}
	return models.DataTypeString
}
