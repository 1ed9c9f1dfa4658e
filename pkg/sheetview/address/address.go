// Package address resolves shorthand cell selections ("2:24", "B", "B2:D")
// into absolute cell ranges against the bounds of a worksheet.
package address

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Coordinate is a 1-based cell position.
type Coordinate struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// String returns the A1 name of the coordinate, e.g. "B2".
func (c Coordinate) String() string {
	name, err := excelize.CoordinatesToCellName(c.Col, c.Row)
	if err != nil {
		return fmt.Sprintf("R%dC%d", c.Row, c.Col)
	}
	return name
}

// ColumnName returns the column letters of the coordinate.
func (c Coordinate) ColumnName() string {
	name, err := excelize.ColumnNumberToName(c.Col)
	if err != nil {
		return ""
	}
	return name
}

// ParseCoordinate parses an A1 cell name. "$" markers are accepted.
func ParseCoordinate(cell string) (Coordinate, error) {
	col, row, err := excelize.CellNameToCoordinates(strings.ReplaceAll(cell, "$", ""))
	if err != nil {
		return Coordinate{}, err
	}
	return Coordinate{Col: col, Row: row}, nil
}

// Range is an inclusive rectangle of cells.
type Range struct {
	Start Coordinate `json:"start"`
	End   Coordinate `json:"end"`
}

// Normalize swaps reversed bounds so that Start is the top-left corner.
func (r Range) Normalize() Range {
	if r.End.Row < r.Start.Row {
		r.Start.Row, r.End.Row = r.End.Row, r.Start.Row
	}
	if r.End.Col < r.Start.Col {
		r.Start.Col, r.End.Col = r.End.Col, r.Start.Col
	}
	return r
}

// Contains reports whether c lies inside the range.
func (r Range) Contains(c Coordinate) bool {
	return c.Row >= r.Start.Row && c.Row <= r.End.Row &&
		c.Col >= r.Start.Col && c.Col <= r.End.Col
}

// Single reports whether the range covers exactly one cell.
func (r Range) Single() bool {
	return r.Start == r.End
}

// String returns "B2" for single cells and "A2:G24" otherwise.
func (r Range) String() string {
	if r.Single() {
		return r.Start.String()
	}
	return r.Start.String() + ":" + r.End.String()
}

// ParseRange parses a fully qualified reference such as "A1:C3" or "B2".
func ParseRange(ref string) (Range, error) {
	tok, err := Tokenize(ref)
	if err != nil {
		return Range{}, err
	}
	if tok.Shape != ShapeCell && tok.Shape != ShapeCellSpan {
		return Range{}, fmt.Errorf("%w: %q is not a qualified range", ErrMalformedRange, ref)
	}
	return tok.Resolve(Bounds{}), nil
}

// Bounds is the used extent of a worksheet.
type Bounds struct {
	MaxRow int `json:"maxRow"`
	MaxCol int `json:"maxCol"`
}

// Empty reports whether the bounds contain no cells.
func (b Bounds) Empty() bool {
	return b.MaxRow < 1 || b.MaxCol < 1
}

// Range returns the used range A1:{MaxCol}{MaxRow}.
func (b Bounds) Range() Range {
	return Range{
		Start: Coordinate{Col: 1, Row: 1},
		End:   Coordinate{Col: max(b.MaxCol, 1), Row: max(b.MaxRow, 1)},
	}
}

// Resolve tokenizes a selection and resolves it against b.
func Resolve(b Bounds, selection string) (Range, error) {
	tok, err := Tokenize(selection)
	if err != nil {
		return Range{}, err
	}
	return tok.Resolve(b), nil
}
