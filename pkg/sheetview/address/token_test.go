package address

import (
	"errors"
	"testing"
)

func TestResolve(t *testing.T) {
	bounds := Bounds{MaxRow: 10, MaxCol: 7} // A1:G10

	tests := []struct {
		input    string
		expected string
		shape    Shape
	}{
		{"2:24", "A2:G24", ShapeRowSpan},
		{"24:2", "A2:G24", ShapeRowSpan},
		{"3", "A3:G3", ShapeRow},
		{"B:D", "B1:D10", ShapeColumnSpan},
		{"d:b", "B1:D10", ShapeColumnSpan},
		{"B", "B1:B10", ShapeColumn},
		{"2:B", "B2", ShapeRowColumn},
		{"B:2", "B2", ShapeColumnRow},
		{"B2:10", "B2:B10", ShapeCellToRow},
		{"B2:D", "B2:D2", ShapeCellToColumn},
		{"2:B10", "B2:B10", ShapeRowToCell},
		{"B:D5", "B5:D5", ShapeColumnToCell},
		{"B2:D24", "B2:D24", ShapeCellSpan},
		{"$B$2:$D$24", "B2:D24", ShapeCellSpan},
		{"D24:B2", "B2:D24", ShapeCellSpan},
		{"c7", "C7", ShapeCell},
		{" 2:24 ", "A2:G24", ShapeRowSpan},
	}

	for _, tt := range tests {
		tok, err := Tokenize(tt.input)
		if err != nil {
			t.Fatalf("Tokenize(%q) failed: %v", tt.input, err)
		}
		if tok.Shape != tt.shape {
			t.Errorf("Tokenize(%q).Shape = %s, expected %s", tt.input, tok.Shape, tt.shape)
		}
		r, err := Resolve(bounds, tt.input)
		if err != nil {
			t.Fatalf("Resolve(%q) failed: %v", tt.input, err)
		}
		if r.String() != tt.expected {
			t.Errorf("Resolve(%q) = %q, expected %q", tt.input, r.String(), tt.expected)
		}
	}
}

func TestResolveClampsEmptyBounds(t *testing.T) {
	r, err := Resolve(Bounds{}, "2:4")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if r.String() != "A2:A4" {
		t.Errorf("Resolve with empty bounds = %q, expected A2:A4", r.String())
	}
}

func TestResolveMalformed(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"A1:B2:C3",
		"1A",
		"A-1",
		"B0",
		"0:4",
		"vertical",
		"A1:",
		":A1",
		"#REF!",
	}

	for _, input := range inputs {
		_, err := Resolve(Bounds{MaxRow: 5, MaxCol: 5}, input)
		if !errors.Is(err, ErrMalformedRange) {
			t.Errorf("Resolve(%q) error = %v, expected ErrMalformedRange", input, err)
		}
	}
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange("C3:A1")
	if err != nil {
		t.Fatalf("ParseRange failed: %v", err)
	}
	if r.Start != (Coordinate{Col: 1, Row: 1}) || r.End != (Coordinate{Col: 3, Row: 3}) {
		t.Errorf("ParseRange(C3:A1) = %+v", r)
	}
	if !r.Contains(Coordinate{Col: 2, Row: 2}) {
		t.Error("expected B2 inside A1:C3")
	}
	if r.Contains(Coordinate{Col: 4, Row: 2}) {
		t.Error("expected D2 outside A1:C3")
	}

	if _, err := ParseRange("2:24"); !errors.Is(err, ErrMalformedRange) {
		t.Errorf("ParseRange(2:24) error = %v, expected ErrMalformedRange", err)
	}
}

func TestCoordinateNames(t *testing.T) {
	tests := []struct {
		c      Coordinate
		name   string
		column string
	}{
		{Coordinate{Col: 1, Row: 1}, "A1", "A"},
		{Coordinate{Col: 26, Row: 3}, "Z3", "Z"},
		{Coordinate{Col: 27, Row: 10}, "AA10", "AA"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.name {
			t.Errorf("%+v.String() = %q, expected %q", tt.c, got, tt.name)
		}
		if got := tt.c.ColumnName(); got != tt.column {
			t.Errorf("%+v.ColumnName() = %q, expected %q", tt.c, got, tt.column)
		}
	}

	c, err := ParseCoordinate("$AA$10")
	if err != nil {
		t.Fatalf("ParseCoordinate failed: %v", err)
	}
	if c != (Coordinate{Col: 27, Row: 10}) {
		t.Errorf("ParseCoordinate($AA$10) = %+v", c)
	}
}
