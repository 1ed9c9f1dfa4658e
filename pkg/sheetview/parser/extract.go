package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/ukaji3/sheetview-go/pkg/sheetview/address"
	"github.com/ukaji3/sheetview-go/pkg/sheetview/merge"
	"github.com/ukaji3/sheetview-go/pkg/sheetview/models"
	"github.com/ukaji3/sheetview-go/pkg/sheetview/numfmt"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"
)

// ErrSheetNotFound indicates a sheet index outside the workbook.
var ErrSheetNotFound = errors.New("sheet not found")

// Extractor renders worksheet regions into grids.
type Extractor struct {
	// Merges answers merge queries; a nil Merges indexes without caching.
	Merges *merge.Indexer
	// Formatter renders cell values; nil means English.
	Formatter *numfmt.Formatter
	// Calculate shows formula results instead of formula text.
	Calculate bool
	// Format applies number formats to numeric values.
	Format bool
	Logger *slog.Logger
}

// NewExtractor returns an Extractor that calculates and formats values.
func NewExtractor(merges *merge.Indexer, fm *numfmt.Formatter) *Extractor {
	return &Extractor{
		Merges:    merges,
		Formatter: fm,
		Calculate: true,
		Format:    true,
	}
}

func (e *Extractor) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

func (e *Extractor) formatter() *numfmt.Formatter {
	if e.Formatter != nil {
		return e.Formatter
	}
	return numfmt.New(language.English)
}

func (e *Extractor) indexer() *merge.Indexer {
	if e.Merges != nil {
		return e.Merges
	}
	return merge.NewIndexer(nil)
}

// SheetName returns the name of the sheet at the zero-based index.
func SheetName(f *excelize.File, sheetIndex int) (string, error) {
	sheets := f.GetSheetList()
	if sheetIndex < 0 || sheetIndex >= len(sheets) {
		return "", fmt.Errorf("%w: index %d of %d", ErrSheetNotFound, sheetIndex, len(sheets))
	}
	return sheets[sheetIndex], nil
}

// Extract renders the cells of rangeToken on the sheet at sheetIndex. An
// empty token selects the used range. Rows are keyed by row number and
// cells by column name when byRef is set, by zero-based position
// otherwise.
//
// Extraction is best effort: an unknown sheet, unreadable bounds or a
// malformed token yield an empty grid.
func (e *Extractor) Extract(f *excelize.File, sheetIndex int, rangeToken string, byRef bool) models.Grid {
	return e.extract(f, sheetIndex, rangeToken, byRef, nil)
}

// Head renders the sheet's repeated header rows. The grid is empty when
// the sheet configures none.
func (e *Extractor) Head(f *excelize.File, sheetIndex int, byRef bool) models.Grid {
	titles, ok := e.printTitles(f, sheetIndex)
	if !ok || !titles.HasRows() {
		return emptyGrid(sheetIndex)
	}
	return e.extract(f, sheetIndex, fmt.Sprintf("%d:%d", titles.R1, titles.R2), byRef, nil)
}

// Body renders the used range without the repeated header rows, or the
// whole used range when none are configured.
func (e *Extractor) Body(f *excelize.File, sheetIndex int, byRef bool) models.Grid {
	titles, ok := e.printTitles(f, sheetIndex)
	if !ok || !titles.HasRows() {
		return e.extract(f, sheetIndex, "", byRef, nil)
	}
	skip := func(row int) bool {
		return row >= titles.R1 && row <= titles.R2
	}
	return e.extract(f, sheetIndex, "", byRef, skip)
}

func (e *Extractor) printTitles(f *excelize.File, sheetIndex int) (models.PrintTitles, bool) {
	sheetName, err := SheetName(f, sheetIndex)
	if err != nil {
		return models.PrintTitles{}, false
	}
	titles, ok := ExtractPrintTitles(f)[sheetName]
	return titles, ok
}

func emptyGrid(sheetIndex int) models.Grid {
	return models.Grid{SheetIndex: sheetIndex, Rows: []models.Row{}}
}

func (e *Extractor) extract(f *excelize.File, sheetIndex int, rangeToken string, byRef bool, skipRow func(int) bool) models.Grid {
	grid := emptyGrid(sheetIndex)

	sheetName, err := SheetName(f, sheetIndex)
	if err != nil {
		e.logger().Warn("Failed to look up sheet", "sheet", sheetIndex, "error", err)
		return grid
	}
	bounds, err := SheetBounds(f, sheetName)
	if err != nil {
		e.logger().Warn("Failed to read sheet bounds", "sheet", sheetName, "error", err)
		return grid
	}

	var rng address.Range
	if rangeToken == "" {
		if bounds.Empty() {
			return grid
		}
		rng = bounds.Range()
	} else if rng, err = address.Resolve(bounds, rangeToken); err != nil {
		e.logger().Warn("Failed to resolve range", "sheet", sheetName, "range", rangeToken, "error", err)
		return grid
	}
	grid.Range = rng.String()

	idx := e.indexer().Index(e.geometry(f, sheetName, bounds))

	rowPos := 0
	for row := rng.Start.Row; row <= rng.End.Row; row++ {
		if idx.RowIgnored(row) || (skipRow != nil && skipRow(row)) {
			continue
		}

		r := models.Row{Number: row, Cells: []models.Cell{}}
		if byRef {
			r.Key = strconv.Itoa(row)
		} else {
			r.Key = strconv.Itoa(rowPos)
		}

		colPos := 0
		for col := rng.Start.Col; col <= rng.End.Col; col++ {
			c := address.Coordinate{Col: col, Row: row}
			if idx.Ignored(c) {
				continue
			}

			cell := e.renderCell(f, sheetName, c)
			if byRef {
				cell.Key = c.ColumnName()
			} else {
				cell.Key = strconv.Itoa(colPos)
			}
			if rec, ok := idx.Owner(c); ok {
				cell.RowSpan = rec.RowSpan
				cell.ColSpan = rec.ColSpan
				cell.AdditionalStyleBuckets = rec.StyleBuckets
			}
			r.Cells = append(r.Cells, cell)
			colPos++
		}

		grid.Rows = append(grid.Rows, r)
		rowPos++
	}
	return grid
}

// geometry collects the merge input of a sheet: its merge references and
// the style ids of every merge-covered cell.
func (e *Extractor) geometry(f *excelize.File, sheetName string, bounds address.Bounds) merge.Geometry {
	g := merge.Geometry{Bounds: bounds, Styles: make(map[address.Coordinate]int)}

	merges, err := f.GetMergeCells(sheetName)
	if err != nil {
		e.logger().Debug("Failed to read merge cells", "sheet", sheetName, "error", err)
		return g
	}
	g.Regions = mergeRefs(merges)
	for _, c := range merge.CoveredCells(g.Regions) {
		id, err := f.GetCellStyle(sheetName, c.String())
		if err != nil {
			continue
		}
		g.Styles[c] = id
	}
	return g
}
