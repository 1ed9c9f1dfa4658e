package sheetview

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ukaji3/sheetview-go/pkg/sheetview/dsn"
	"github.com/ukaji3/sheetview-go/pkg/sheetview/models"
	"github.com/ukaji3/sheetview-go/pkg/sheetview/parser"
	"github.com/ukaji3/sheetview-go/pkg/sheetview/source"
	"github.com/ukaji3/sheetview-go/pkg/sheetview/style"
	"github.com/xuri/excelize/v2"
)

// Documents lends out workbooks by document id. *source.Store implements
// it.
type Documents interface {
	Acquire(ctx context.Context, id int) (*source.Handle, error)
}

// Renderer resolves data source names to rendered sheet regions.
type Renderer struct {
	Codec     *dsn.Codec
	Documents Documents
	Extractor *parser.Extractor
	Logger    *slog.Logger
}

// NewRenderer returns a Renderer that loads documents through store and
// checks every locator against it before rendering.
func NewRenderer(store *source.Store, ex *parser.Extractor) *Renderer {
	return &Renderer{
		Codec:     dsn.NewCodec(store),
		Documents: store,
		Extractor: ex,
	}
}

func (r *Renderer) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// Render decodes raw and renders the region it names.
//
// A locator with a selection renders exactly that range into the body.
// Otherwise opts.Mode decides between the header rows, the remaining used
// range, or both. A sheet index past the end of the workbook yields an
// empty body; a bad locator or a missing document is an error.
func (r *Renderer) Render(ctx context.Context, raw string, opts Options) (*models.Result, error) {
	loc, err := r.Codec.Decode(ctx, raw)
	if err != nil {
		return nil, err
	}

	doc, err := r.Documents.Acquire(ctx, loc.DocumentID)
	if err != nil {
		return nil, NewExtractionError(loc.SheetIndex, "document", err)
	}
	defer doc.Release()
	f := doc.File

	// A stale sheet index renders as an empty region.
	sheetName, err := parser.SheetName(f, loc.SheetIndex)
	if err != nil {
		r.logger().Warn("Sheet not found, rendering empty region", "locator", raw, "sheet", loc.SheetIndex, "error", err)
	}

	result := &models.Result{
		Locator:    loc.String(),
		DocumentID: loc.DocumentID,
		SheetIndex: loc.SheetIndex,
		SheetName:  sheetName,
		Direction:  string(loc.Direction),
	}

	ex := r.extractor(opts)
	switch {
	case loc.Selection != "":
		body := ex.Extract(f, loc.SheetIndex, loc.Selection, opts.ByRef)
		result.Body = &body
	default:
		if opts.includeHead() {
			if head := ex.Head(f, loc.SheetIndex, opts.ByRef); !head.Empty() {
				result.Head = &head
			}
		}
		if opts.includeBody() {
			body := ex.Body(f, loc.SheetIndex, opts.ByRef)
			result.Body = &body
		}
	}
	if result.Body == nil {
		result.Body = &models.Grid{SheetIndex: loc.SheetIndex, Rows: []models.Row{}}
	}

	if !opts.IgnoreStyles {
		css, err := Stylesheet(f, opts.RootID, opts.AdditionalCSS)
		if err != nil {
			return nil, NewExtractionError(loc.SheetIndex, "styles", err)
		}
		result.CSS = css
	}

	r.logger().Debug("Rendered region",
		"locator", result.Locator,
		"sheet", sheetName,
		"head_rows", rowCount(result.Head),
		"body_rows", rowCount(result.Body))
	return result, nil
}

// extractor returns a copy of the configured extractor with the
// per-request evaluation switches applied.
func (r *Renderer) extractor(opts Options) *parser.Extractor {
	var ex parser.Extractor
	if r.Extractor != nil {
		ex = *r.Extractor
	}
	if ex.Logger == nil {
		ex.Logger = r.Logger
	}
	ex.Calculate = opts.ShouldCalculate()
	ex.Format = opts.ShouldFormat()
	return &ex
}

// Stylesheet renders the workbook's style buckets as CSS scoped under
// rootID, followed by additionalCSS.
func Stylesheet(f *excelize.File, rootID, additionalCSS string) (string, error) {
	sheet, err := style.Build(f)
	if err != nil {
		return "", err
	}
	css := sheet.CSS(rootID)
	if extra := strings.TrimSpace(additionalCSS); extra != "" {
		css += extra + "\n"
	}
	return css, nil
}

func rowCount(g *models.Grid) int {
	if g == nil {
		return 0
	}
	return len(g.Rows)
}
