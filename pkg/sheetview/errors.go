package sheetview

import (
	"fmt"

	"github.com/ukaji3/sheetview-go/pkg/sheetview/address"
	"github.com/ukaji3/sheetview-go/pkg/sheetview/dsn"
	"github.com/ukaji3/sheetview-go/pkg/sheetview/parser"
	"github.com/ukaji3/sheetview-go/pkg/sheetview/source"
)

var (
	// ErrInvalidLocator indicates a data source name that cannot be decoded.
	ErrInvalidLocator = dsn.ErrInvalidLocator
	// ErrMalformedRange indicates a selection that is not a range token.
	ErrMalformedRange = address.ErrMalformedRange
	// ErrDocumentNotFound indicates the document id does not resolve.
	ErrDocumentNotFound = source.ErrDocumentNotFound
	// ErrUnsupportedType indicates the document is not an xlsx workbook.
	ErrUnsupportedType = source.ErrUnsupportedType
	// ErrSheetNotFound indicates a sheet index outside the workbook.
	ErrSheetNotFound = parser.ErrSheetNotFound
)

// ExtractionError represents an error while rendering one sheet.
type ExtractionError struct {
	SheetIndex int
	Component  string // "document", "styles"
	Err        error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction error in sheet %d (%s): %v", e.SheetIndex, e.Component, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// NewExtractionError creates a new ExtractionError.
func NewExtractionError(sheetIndex int, component string, err error) *ExtractionError {
	return &ExtractionError{
		SheetIndex: sheetIndex,
		Component:  component,
		Err:        err,
	}
}
