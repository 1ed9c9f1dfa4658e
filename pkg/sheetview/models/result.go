package models

// Result is the rendered output of one locator.
type Result struct {
	// Locator is the canonical URI form of the requested locator.
	Locator string `json:"locator"`
	// DocumentID is the id of the source document.
	DocumentID int `json:"documentId"`
	// SheetIndex is the zero-based index of the rendered sheet.
	SheetIndex int `json:"sheetIndex"`
	// SheetName is the name of the rendered sheet.
	SheetName string `json:"sheetName,omitempty"`
	// Direction is the requested reading direction, if any.
	Direction string `json:"direction,omitempty"`
	// Head holds the header rows (nil when none are rendered).
	Head *Grid `json:"head,omitempty"`
	// Body holds the data rows.
	Body *Grid `json:"body"`
	// CSS is the stylesheet of the workbook, empty when styles are ignored.
	CSS string `json:"css,omitempty"`
}
