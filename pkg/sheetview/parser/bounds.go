package parser

import (
	"github.com/ukaji3/sheetview-go/pkg/sheetview/address"
	"github.com/ukaji3/sheetview-go/pkg/sheetview/merge"
	"github.com/xuri/excelize/v2"
)

// SheetBounds returns the used extent of a sheet: the highest row and
// column holding a value, widened to cover every merged region.
func SheetBounds(f *excelize.File, sheetName string) (address.Bounds, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return address.Bounds{}, err
	}

	b := dataExtent(rows)

	merges, err := f.GetMergeCells(sheetName)
	if err != nil {
		return b, nil
	}
	for _, r := range merge.ParseRegions(mergeRefs(merges)) {
		b.MaxRow = max(b.MaxRow, r.End.Row)
		b.MaxCol = max(b.MaxCol, r.End.Col)
	}
	return b, nil
}

// dataExtent returns the 1-based highest row and column holding a
// non-empty value, or zero bounds when every cell is empty.
func dataExtent(rows [][]string) address.Bounds {
	var b address.Bounds
	for rowIdx, row := range rows {
		for colIdx, cell := range row {
			if cell == "" {
				continue
			}
			b.MaxRow = max(b.MaxRow, rowIdx+1)
			b.MaxCol = max(b.MaxCol, colIdx+1)
		}
	}
	return b
}

func mergeRefs(merges []excelize.MergeCell) []string {
	refs := make([]string, 0, len(merges))
	for _, m := range merges {
		refs = append(refs, m.GetStartAxis()+":"+m.GetEndAxis())
	}
	return refs
}
