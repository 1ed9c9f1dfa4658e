// Package numfmt renders stored cell values into display strings: rich text
// runs become inline markup, formulas are shown or calculated, and numbers
// are formatted under their number format code and a locale.
package numfmt

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/ukaji3/sheetview-go/pkg/sheetview/style"
	"github.com/xuri/excelize/v2"
	"golang.org/x/net/html"
	"golang.org/x/text/language"
)

// Workbook is the subset of *excelize.File the formatter reads.
type Workbook interface {
	GetCellRichText(sheet, cell string) ([]excelize.RichTextRun, error)
	GetCellFormula(sheet, cell string) (string, error)
	GetCellValue(sheet, cell string, opts ...excelize.Options) (string, error)
	CalcCellValue(sheet, cell string, opts ...excelize.Options) (string, error)
	GetCellType(sheet, cell string) (excelize.CellType, error)
	GetCellStyle(sheet, cell string) (int, error)
	GetStyle(idx int) (*excelize.Style, error)
}

// Result is a rendered cell value.
type Result struct {
	Value    string
	RichText bool
	Numeric  bool
	Formula  bool
}

// Formatter renders cell values for one locale.
type Formatter struct {
	Locale language.Tag
	Logger *slog.Logger
}

// New returns a Formatter for locale.
func New(locale language.Tag) *Formatter {
	return &Formatter{Locale: locale}
}

func (fm *Formatter) logger() *slog.Logger {
	if fm.Logger != nil {
		return fm.Logger
	}
	return slog.Default()
}

// Number formats v under code in the formatter's locale. The process-wide
// locale is switched for the call and restored on return.
func (fm *Formatter) Number(v float64, code string) (string, bool) {
	restore := useLocale(fm.Locale)
	defer restore()
	return formatNumber(v, code)
}

// Render returns the display value of sheet!axis.
//
// Rich text wins over everything else. Formula cells show "=FORMULA" unless
// calculate is set; a failing calculation falls back to the stored value.
// Numeric values are formatted under the cell's number format when format
// is set, and returned as stored otherwise.
func (fm *Formatter) Render(wb Workbook, sheet, axis string, calculate, format bool) Result {
	typ, _ := wb.GetCellType(sheet, axis)
	if typ == excelize.CellTypeSharedString || typ == excelize.CellTypeInlineString {
		if runs, err := wb.GetCellRichText(sheet, axis); err == nil && IsRich(runs) {
			return Result{Value: RichText(runs), RichText: true}
		}
	}

	var res Result
	value, err := wb.GetCellValue(sheet, axis, excelize.Options{RawCellValue: true})
	if err != nil {
		fm.logger().Debug("Failed to read cell value", "sheet", sheet, "cell", axis, "error", err)
	}

	formula, _ := wb.GetCellFormula(sheet, axis)
	if formula != "" {
		res.Formula = true
		if !calculate {
			res.Value = "=" + strings.TrimPrefix(formula, "=")
			return res
		}
		calculated, err := wb.CalcCellValue(sheet, axis, excelize.Options{RawCellValue: true})
		if err != nil {
			fm.logger().Debug("Calculation failed, using stored value", "sheet", sheet, "cell", axis, "error", err)
		} else {
			value = calculated
		}
	}

	if typ == excelize.CellTypeBool {
		value = normalizeBool(value)
	}

	n, numeric := parseNumeric(typ, formula != "", value)
	res.Numeric = numeric
	if !format || !numeric {
		res.Value = value
		return res
	}

	if code, ok := fm.code(wb, sheet, axis); ok {
		if s, ok := fm.Number(n, code); ok {
			res.Value = s
			return res
		}
	}
	res.Value = fm.fallback(wb, sheet, axis, formula != "" && calculate, value)
	return res
}

// code returns the number format code of a cell. A failed style lookup
// means "General".
func (fm *Formatter) code(wb Workbook, sheet, axis string) (string, bool) {
	id, err := wb.GetCellStyle(sheet, axis)
	if err != nil {
		return "General", true
	}
	st, err := wb.GetStyle(id)
	if err != nil || st == nil {
		return "General", true
	}
	return NumberFormatCode(st)
}

// NumberFormatCode returns the format code of st. It reports false for
// built-in ids that are not plain numbers, such as dates.
func NumberFormatCode(st *excelize.Style) (string, bool) {
	if st.CustomNumFmt != nil && *st.CustomNumFmt != "" {
		return *st.CustomNumFmt, true
	}
	return BuiltinCode(st.NumFmt)
}

// fallback asks excelize for its own formatted value.
func (fm *Formatter) fallback(wb Workbook, sheet, axis string, calculated bool, value string) string {
	var (
		s   string
		err error
	)
	if calculated {
		s, err = wb.CalcCellValue(sheet, axis)
	} else {
		s, err = wb.GetCellValue(sheet, axis)
	}
	if err != nil || s == "" {
		return value
	}
	return s
}

// IsRich reports whether runs carry any formatting. Plain strings come back
// from excelize as a single unstyled run.
func IsRich(runs []excelize.RichTextRun) bool {
	if len(runs) > 1 {
		return true
	}
	return len(runs) == 1 && runs[0].Font != nil
}

// RichText concatenates rich text runs into escaped markup. Styled runs are
// wrapped in a span carrying their font; super- and subscript runs also get
// a sup or sub tag.
func RichText(runs []excelize.RichTextRun) string {
	var b strings.Builder
	for _, run := range runs {
		text := html.EscapeString(run.Text)
		if run.Font == nil {
			b.WriteString(text)
			continue
		}
		switch run.Font.VertAlign {
		case "superscript":
			text = "<sup>" + text + "</sup>"
		case "subscript":
			text = "<sub>" + text + "</sub>"
		}
		css := style.FontProperties(run.Font, false).Inline()
		b.WriteString(`<span style="`)
		b.WriteString(html.EscapeString(css))
		b.WriteString(`">`)
		b.WriteString(text)
		b.WriteString("</span>")
	}
	return b.String()
}

func normalizeBool(v string) string {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "1", "TRUE":
		return "TRUE"
	case "0", "FALSE":
		return "FALSE"
	}
	return v
}

// parseNumeric reports whether a resolved value is a number. Formula
// cells are judged by their result, whatever type excelize reports.
func parseNumeric(typ excelize.CellType, formula bool, value string) (float64, bool) {
	switch {
	case formula, typ == excelize.CellTypeFormula:
	case typ == excelize.CellTypeNumber, typ == excelize.CellTypeDate, typ == excelize.CellTypeUnset:
	default:
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
