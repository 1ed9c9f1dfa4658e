package sheetview

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/sheetview-go/pkg/sheetview/merge"
	"github.com/ukaji3/sheetview-go/pkg/sheetview/numfmt"
	"github.com/ukaji3/sheetview-go/pkg/sheetview/parser"
	"github.com/ukaji3/sheetview-go/pkg/sheetview/source"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"
)

// newRenderer saves a two-sheet workbook as document 5 and returns a
// renderer over its directory.
func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]any{
		{"Region", "Q1", "Q2"},
		{"North", 10, 12.5},
		{"South", 7, 9},
		{"Total"},
	}
	for i, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", axis, &row))
	}
	require.NoError(t, f.SetCellFormula("Sheet1", "B4", "SUM(B2:B3)"))
	require.NoError(t, f.SetCellFormula("Sheet1", "C4", "SUM(C2:C3)"))
	require.NoError(t, f.MergeCell("Sheet1", "D1", "D2"))
	require.NoError(t, f.SetDefinedName(&excelize.DefinedName{
		Name:     parser.PrintTitlesName,
		RefersTo: "Sheet1!$1:$1",
		Scope:    "Sheet1",
	}))

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "A1", "C1", bold))

	_, err = f.NewSheet("Notes")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Notes", "A1", "remark"))

	dir := t.TempDir()
	require.NoError(t, f.SaveAs(filepath.Join(dir, "5.xlsx")))

	store := source.NewStore(source.NewDirResolver(dir), 4)
	t.Cleanup(func() { store.Close() })
	ex := parser.NewExtractor(merge.NewIndexer(merge.NewMemoryCache()), numfmt.New(language.English))
	return NewRenderer(store, ex)
}

func TestRenderAll(t *testing.T) {
	r := newRenderer(t)

	res, err := r.Render(context.Background(), "file:5|0", DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "spreadsheet://5?index=0", res.Locator)
	assert.Equal(t, "Sheet1", res.SheetName)
	require.NotNil(t, res.Head)
	require.Len(t, res.Head.Rows, 1)
	assert.Equal(t, 1, res.Head.Rows[0].Number)

	require.NotNil(t, res.Body)
	require.Len(t, res.Body.Rows, 3)
	assert.Equal(t, 2, res.Body.Rows[0].Number)

	total, ok := res.Body.Cell("B4")
	require.True(t, ok)
	assert.Equal(t, "17", total.Value)

	assert.Contains(t, res.CSS, ".cell-type-numeric {text-align:right}")
	assert.Contains(t, res.CSS, ".cell-style-1 {")
}

func TestRenderModes(t *testing.T) {
	r := newRenderer(t)
	ctx := context.Background()

	head, err := r.Render(ctx, "file:5|0", Options{Mode: ModeHead})
	require.NoError(t, err)
	require.NotNil(t, head.Head)
	assert.Empty(t, head.Body.Rows)

	body, err := r.Render(ctx, "file:5|0", Options{Mode: ModeBody})
	require.NoError(t, err)
	assert.Nil(t, body.Head)
	assert.Len(t, body.Body.Rows, 3)
}

func TestRenderSelection(t *testing.T) {
	r := newRenderer(t)
	noCalc := false

	res, err := r.Render(context.Background(), "spreadsheet://5?index=0&range=B2%3AC4&direction=vertical", Options{
		ByRef:        true,
		IgnoreStyles: true,
		Calculate:    &noCalc,
	})
	require.NoError(t, err)

	assert.Nil(t, res.Head)
	assert.Equal(t, "B2:C4", res.Body.Range)
	assert.Equal(t, "vertical", res.Direction)
	assert.Empty(t, res.CSS)

	require.Len(t, res.Body.Rows, 3)
	assert.Equal(t, "2", res.Body.Rows[0].Key)
	assert.Equal(t, "B", res.Body.Rows[0].Cells[0].Key)

	total, ok := res.Body.Cell("B4")
	require.True(t, ok)
	assert.Equal(t, "=SUM(B2:B3)", total.Value)
}

func TestRenderDoesNotMutateExtractor(t *testing.T) {
	r := newRenderer(t)
	off := false

	_, err := r.Render(context.Background(), "file:5|0", Options{Calculate: &off, Format: &off})
	require.NoError(t, err)
	assert.True(t, r.Extractor.Calculate)
	assert.True(t, r.Extractor.Format)
}

func TestRenderScopedCSS(t *testing.T) {
	r := newRenderer(t)

	res, err := r.Render(context.Background(), "file:5|1", Options{
		RootID:        "report",
		AdditionalCSS: "table { border-collapse: collapse; }\n",
	})
	require.NoError(t, err)
	assert.Equal(t, "Notes", res.SheetName)

	lines := strings.Split(strings.TrimSuffix(res.CSS, "\n"), "\n")
	require.NotEmpty(t, lines)
	for _, line := range lines[:len(lines)-1] {
		assert.True(t, strings.HasPrefix(line, "#report ."), line)
	}
	assert.Equal(t, "table { border-collapse: collapse; }", lines[len(lines)-1])
}

func TestRenderErrors(t *testing.T) {
	r := newRenderer(t)
	ctx := context.Background()

	tests := []struct {
		name string
		raw  string
		is   error
	}{
		{"empty", "", ErrInvalidLocator},
		{"negative sheet", "file:5|-1!A1:B2", ErrInvalidLocator},
		{"missing document", "file:9|0", ErrDocumentNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Render(ctx, tt.raw, DefaultOptions())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.is)
		})
	}

	_, err := r.Render(ctx, "file:9|0", DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidLocator)
}

func TestRenderStaleSheetIndex(t *testing.T) {
	r := newRenderer(t)

	res, err := r.Render(context.Background(), "file:5|7!A1:B2", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "spreadsheet://5?index=7&range=A1%3AB2", res.Locator)
	assert.Empty(t, res.SheetName)
	assert.Nil(t, res.Head)
	require.NotNil(t, res.Body)
	assert.True(t, res.Body.Empty())
	assert.Equal(t, 7, res.Body.SheetIndex)
}

func TestExtractionError(t *testing.T) {
	err := NewExtractionError(3, "document", ErrDocumentNotFound)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
	assert.Equal(t, `extraction error in sheet 3 (document): document not found`, err.Error())

	var target *ExtractionError
	require.True(t, errors.As(error(err), &target))
	assert.Equal(t, "document", target.Component)
}

func TestRenderUnsupportedDocument(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "3.xlsx"), []byte("not a workbook"), 0o644))
	store := source.NewStore(source.NewDirResolver(dir), 1)
	defer store.Close()

	_, err := NewRenderer(store, nil).Render(context.Background(), "file:3|0", DefaultOptions())
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		input    string
		expected Mode
		wantErr  bool
	}{
		{"", ModeAll, false},
		{"all", ModeAll, false},
		{"head", ModeHead, false},
		{"body", ModeBody, false},
		{"verbose", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.input)
		if tt.wantErr {
			assert.Error(t, err, tt.input)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.expected, got)
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := DefaultOptions()
	assert.True(t, opts.ShouldCalculate())
	assert.True(t, opts.ShouldFormat())

	off := false
	opts.Format = &off
	assert.False(t, opts.ShouldFormat())
}
