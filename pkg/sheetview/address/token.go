package address

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrMalformedRange indicates a selection that matches no accepted shape.
var ErrMalformedRange = errors.New("malformed range")

// Shape identifies the structure of a selection token.
type Shape int

const (
	// ShapeRow is a single row, e.g. "2".
	ShapeRow Shape = iota + 1
	// ShapeColumn is a single column, e.g. "B".
	ShapeColumn
	// ShapeCell is a single qualified cell, e.g. "B2".
	ShapeCell
	// ShapeRowSpan is a row range, e.g. "2:24".
	ShapeRowSpan
	// ShapeColumnSpan is a column range, e.g. "B:D".
	ShapeColumnSpan
	// ShapeRowColumn addresses one cell as row then column, e.g. "2:B".
	ShapeRowColumn
	// ShapeColumnRow addresses one cell as column then row, e.g. "B:2".
	ShapeColumnRow
	// ShapeCellToRow keeps the column and spans rows, e.g. "B2:10".
	ShapeCellToRow
	// ShapeCellToColumn keeps the row and spans columns, e.g. "B2:D".
	ShapeCellToColumn
	// ShapeRowToCell takes the column from the second part, e.g. "2:B10".
	ShapeRowToCell
	// ShapeColumnToCell takes the row from the second part, e.g. "B:D5".
	ShapeColumnToCell
	// ShapeCellSpan is a fully qualified range, e.g. "B2:D24".
	ShapeCellSpan
)

var shapeNames = map[Shape]string{
	ShapeRow:          "ROW",
	ShapeColumn:       "COL",
	ShapeCell:         "CELL",
	ShapeRowSpan:      "ROW:ROW",
	ShapeColumnSpan:   "COL:COL",
	ShapeRowColumn:    "ROW:COL",
	ShapeColumnRow:    "COL:ROW",
	ShapeCellToRow:    "CELL:ROW",
	ShapeCellToColumn: "CELL:COL",
	ShapeRowToCell:    "ROW:CELL",
	ShapeColumnToCell: "COL:CELL",
	ShapeCellSpan:     "CELL:CELL",
}

func (s Shape) String() string {
	if name, ok := shapeNames[s]; ok {
		return name
	}
	return "Shape(" + strconv.Itoa(int(s)) + ")"
}

type partKind int

const (
	partNone partKind = iota
	partRow
	partColumn
	partCell
)

// shapes maps the kinds of the first and second part to a token shape.
var shapes = [4][4]Shape{
	partRow:    {partNone: ShapeRow, partRow: ShapeRowSpan, partColumn: ShapeRowColumn, partCell: ShapeRowToCell},
	partColumn: {partNone: ShapeColumn, partRow: ShapeColumnRow, partColumn: ShapeColumnSpan, partCell: ShapeColumnToCell},
	partCell:   {partNone: ShapeCell, partRow: ShapeCellToRow, partColumn: ShapeCellToColumn, partCell: ShapeCellSpan},
}

type part struct {
	kind partKind
	col  int
	row  int
}

// Token is a tokenized selection. Col/Row fields are zero when the shape
// does not carry them.
type Token struct {
	Shape Shape
	Col1  int
	Row1  int
	Col2  int
	Row2  int
	Raw   string
}

// Tokenize classifies a raw selection string. Column letters are
// case-insensitive and "$" markers are ignored.
func Tokenize(selection string) (Token, error) {
	raw := strings.TrimSpace(selection)
	if raw == "" {
		return Token{}, fmt.Errorf("%w: empty selection", ErrMalformedRange)
	}

	pieces := strings.Split(raw, ":")
	if len(pieces) > 2 {
		return Token{}, fmt.Errorf("%w: %q", ErrMalformedRange, selection)
	}

	first, err := scanPart(pieces[0])
	if err != nil {
		return Token{}, fmt.Errorf("%w: %q: %v", ErrMalformedRange, selection, err)
	}
	second := part{kind: partNone}
	if len(pieces) == 2 {
		if second, err = scanPart(pieces[1]); err != nil {
			return Token{}, fmt.Errorf("%w: %q: %v", ErrMalformedRange, selection, err)
		}
	}

	return Token{
		Shape: shapes[first.kind][second.kind],
		Col1:  first.col,
		Row1:  first.row,
		Col2:  second.col,
		Row2:  second.row,
		Raw:   raw,
	}, nil
}

// scanPart reads one side of a selection: letters, digits, or letters
// followed by digits.
func scanPart(s string) (part, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "$", "")
	i := 0
	for i < len(s) && isLetter(s[i]) {
		i++
	}
	letters, digits := s[:i], s[i:]
	for j := 0; j < len(digits); j++ {
		if digits[j] < '0' || digits[j] > '9' {
			return part{}, fmt.Errorf("unexpected character %q", digits[j])
		}
	}

	p := part{}
	if letters != "" {
		col, err := excelize.ColumnNameToNumber(letters)
		if err != nil {
			return part{}, err
		}
		p.col = col
		p.kind = partColumn
	}
	if digits != "" {
		row, err := strconv.Atoi(digits)
		if err != nil || row < 1 || row > excelize.TotalRows {
			return part{}, fmt.Errorf("row %q out of range", digits)
		}
		p.row = row
		if p.kind == partColumn {
			p.kind = partCell
		} else {
			p.kind = partRow
		}
	}
	if p.kind == partNone {
		return part{}, errors.New("empty part")
	}
	return p, nil
}

func isLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// Resolve turns the token into an absolute range. Open-ended shapes are
// clamped to b; bounds below 1 count as 1.
func (t Token) Resolve(b Bounds) Range {
	maxRow, maxCol := max(b.MaxRow, 1), max(b.MaxCol, 1)

	var r Range
	switch t.Shape {
	case ShapeRow:
		r = Range{Start: Coordinate{1, t.Row1}, End: Coordinate{maxCol, t.Row1}}
	case ShapeRowSpan:
		r = Range{Start: Coordinate{1, t.Row1}, End: Coordinate{maxCol, t.Row2}}
	case ShapeColumn:
		r = Range{Start: Coordinate{t.Col1, 1}, End: Coordinate{t.Col1, maxRow}}
	case ShapeColumnSpan:
		r = Range{Start: Coordinate{t.Col1, 1}, End: Coordinate{t.Col2, maxRow}}
	case ShapeRowColumn:
		c := Coordinate{t.Col2, t.Row1}
		r = Range{Start: c, End: c}
	case ShapeColumnRow:
		c := Coordinate{t.Col1, t.Row2}
		r = Range{Start: c, End: c}
	case ShapeCellToRow:
		r = Range{Start: Coordinate{t.Col1, t.Row1}, End: Coordinate{t.Col1, t.Row2}}
	case ShapeCellToColumn:
		r = Range{Start: Coordinate{t.Col1, t.Row1}, End: Coordinate{t.Col2, t.Row1}}
	case ShapeRowToCell:
		r = Range{Start: Coordinate{t.Col2, t.Row1}, End: Coordinate{t.Col2, t.Row2}}
	case ShapeColumnToCell:
		r = Range{Start: Coordinate{t.Col1, t.Row2}, End: Coordinate{t.Col2, t.Row2}}
	case ShapeCell:
		c := Coordinate{t.Col1, t.Row1}
		r = Range{Start: c, End: c}
	case ShapeCellSpan:
		r = Range{Start: Coordinate{t.Col1, t.Row1}, End: Coordinate{t.Col2, t.Row2}}
	}
	return r.Normalize()
}
