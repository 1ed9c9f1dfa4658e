package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// DefaultPattern names document files after their id.
const DefaultPattern = "%d.xlsx"

// DirResolver opens documents stored as files in one directory.
type DirResolver struct {
	// Root is the directory holding the documents.
	Root string
	// Pattern maps an id to a file name with fmt.Sprintf.
	Pattern string
}

// NewDirResolver returns a DirResolver for root using DefaultPattern.
func NewDirResolver(root string) *DirResolver {
	return &DirResolver{Root: root, Pattern: DefaultPattern}
}

// Path returns the file path of document id.
func (d *DirResolver) Path(id int) string {
	pattern := d.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	return filepath.Join(d.Root, fmt.Sprintf(pattern, id))
}

// Open implements Resolver.
func (d *DirResolver) Open(ctx context.Context, id int) (*excelize.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := d.Path(id)
	slog.Debug("Reading document file", "id", id, "path", path)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %d (%s)", ErrDocumentNotFound, id, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read document %d: %w", id, err)
	}
	return OpenBytes(id, data)
}
