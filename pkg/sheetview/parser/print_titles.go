package parser

import (
	"strings"

	"github.com/ukaji3/sheetview-go/pkg/sheetview/address"
	"github.com/ukaji3/sheetview-go/pkg/sheetview/models"
	"github.com/xuri/excelize/v2"
)

// PrintTitlesName is the defined name holding a sheet's repeated rows and
// columns.
const PrintTitlesName = "_xlnm.Print_Titles"

// ExtractPrintTitles returns the repeated header rows and columns of every
// sheet that configures them, keyed by sheet name.
func ExtractPrintTitles(f *excelize.File) map[string]models.PrintTitles {
	result := make(map[string]models.PrintTitles)

	for _, dn := range f.GetDefinedName() {
		if !strings.EqualFold(dn.Name, PrintTitlesName) {
			continue
		}
		sheetName, titles := parsePrintTitlesReference(dn.RefersTo)
		if sheetName == "" {
			sheetName = dn.Scope
		}
		if sheetName == "" {
			continue
		}
		result[sheetName] = titles
	}
	return result
}

// parsePrintTitlesReference parses a reference such as
// 'My Sheet'!$A:$B,'My Sheet'!$1:$2. Row parts set R1/R2, column parts
// set C1/C2; anything else is ignored.
func parsePrintTitlesReference(ref string) (string, models.PrintTitles) {
	var (
		sheetName string
		titles    models.PrintTitles
	)
	for _, part := range strings.Split(strings.TrimPrefix(ref, "="), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		rangeStr := part
		if idx := strings.LastIndex(part, "!"); idx >= 0 {
			if sheetName == "" {
				sheetName = strings.ReplaceAll(strings.Trim(part[:idx], "'"), "''", "'")
			}
			rangeStr = part[idx+1:]
		}

		tok, err := address.Tokenize(rangeStr)
		if err != nil {
			continue
		}
		switch tok.Shape {
		case address.ShapeRow, address.ShapeRowSpan:
			r := tok.Resolve(address.Bounds{})
			titles.R1, titles.R2 = r.Start.Row, r.End.Row
		case address.ShapeColumn, address.ShapeColumnSpan:
			r := tok.Resolve(address.Bounds{})
			titles.C1, titles.C2 = r.Start.Col, r.End.Col
		}
	}
	return sheetName, titles
}
