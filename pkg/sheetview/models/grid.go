package models

// Row is one emitted row of a grid.
type Row struct {
	// Key is the row's key: a zero-based position or a row number.
	Key string `json:"key"`
	// Number is the 1-based worksheet row.
	Number int `json:"number"`
	// Cells are the surviving cells of the row, left to right.
	Cells []Cell `json:"cells"`
}

// Grid is the extracted region of a sheet.
type Grid struct {
	// SheetIndex is the zero-based index of the source sheet.
	SheetIndex int `json:"sheetIndex"`
	// Range is the resolved A1 range, empty when nothing was extracted.
	Range string `json:"range,omitempty"`
	// Rows are the emitted rows, top to bottom.
	Rows []Row `json:"rows"`
}

// Empty reports whether the grid holds no cells.
func (g Grid) Empty() bool {
	for _, r := range g.Rows {
		if len(r.Cells) > 0 {
			return false
		}
	}
	return true
}

// CellCount returns the number of emitted cells.
func (g Grid) CellCount() int {
	n := 0
	for _, r := range g.Rows {
		n += len(r.Cells)
	}
	return n
}

// Cell returns the cell with the given A1 reference.
func (g Grid) Cell(ref string) (Cell, bool) {
	for _, r := range g.Rows {
		for _, c := range r.Cells {
			if c.Ref == ref {
				return c, true
			}
		}
	}
	return Cell{}, false
}
