// Package source loads workbooks by numeric document id.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"
)

// ErrDocumentNotFound indicates that no document exists for an id.
var ErrDocumentNotFound = errors.New("document not found")

// ErrUnsupportedType indicates a document that is not an xlsx workbook.
var ErrUnsupportedType = errors.New("unsupported document type")

// Resolver opens the workbook behind a document id.
type Resolver interface {
	Open(ctx context.Context, id int) (*excelize.File, error)
}

// acceptedTypes are the detected MIME types excelize is asked to open.
// Plain zip is accepted because detection of OOXML depends on the order
// of the archive entries.
var acceptedTypes = []string{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"application/zip",
}

// OpenBytes sniffs data and opens it as a workbook.
func OpenBytes(id int, data []byte) (*excelize.File, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: document %d is empty", ErrUnsupportedType, id)
	}
	mtype := mimetype.Detect(data)
	if !accepted(mtype) {
		return nil, fmt.Errorf("%w: document %d is %s", ErrUnsupportedType, id, mtype.String())
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: document %d: %v", ErrUnsupportedType, id, err)
	}
	return f, nil
}

func accepted(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		for _, t := range acceptedTypes {
			if m.Is(t) {
				return true
			}
		}
	}
	return false
}
