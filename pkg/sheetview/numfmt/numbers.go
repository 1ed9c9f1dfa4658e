package numfmt

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/nfp"
)

// scientificCode matches codes such as "0.000E+00", "00E-0" or the
// engineering form "##0.0E+0".
var scientificCode = regexp.MustCompile(`(?i)^([#0]+)(\.?)(0*)e([+-]?)(0+)$`)

// builtinCodes holds the built-in number formats that are plain numbers.
// Other built-in ids (dates, times, fractions, text) are left to the
// fallback.
var builtinCodes = map[int]string{
	0:  "General",
	1:  "0",
	2:  "0.00",
	3:  "#,##0",
	4:  "#,##0.00",
	9:  "0%",
	10: "0.00%",
	11: "0.00E+00",
	37: "#,##0 ;(#,##0)",
	38: "#,##0 ;[Red](#,##0)",
	39: "#,##0.00;(#,##0.00)",
	40: "#,##0.00;[Red](#,##0.00)",
	48: "##0.0E+0",
}

// BuiltinCode returns the format code of a built-in number format id.
func BuiltinCode(id int) (string, bool) {
	code, ok := builtinCodes[id]
	return code, ok
}

func unescapeCode(code string) string {
	return strings.ReplaceAll(code, `\ `, " ")
}

// formatNumber renders v under code with the separators of the active
// locale; the caller holds the locale lock. It reports false when code is
// not a plain number format (dates, fractions, text sections).
func formatNumber(v float64, code string) (string, bool) {
	sep := currentSeparators()
	code = unescapeCode(strings.TrimSpace(code))
	if code == "" || strings.EqualFold(code, "General") || code == "@" {
		return formatGeneral(v, sep), true
	}
	if m := scientificCode.FindStringSubmatch(code); m != nil {
		if strings.Contains(m[1], "#") {
			return formatEngineering(v, len(m[1]), len(m[3]), m[4] == "+", len(m[5]), sep), true
		}
		return formatScientific(v, len(m[3]), m[4] == "+", len(m[5]), sep), true
	}

	p := nfp.NumberFormatParser()
	sections := p.Parse(code)
	if len(sections) == 0 {
		return "", false
	}

	section := sections[0]
	negative := false
	switch {
	case v < 0 && len(sections) > 1 && sections[1].Type == nfp.TokenSectionNegative:
		section = sections[1]
		negative = true
	case v == 0 && len(sections) > 2 && sections[2].Type == nfp.TokenSectionZero:
		section = sections[2]
	}

	layout, ok := compile(section.Items)
	if !ok {
		return "", false
	}
	out := layout.render(math.Abs(v), sep)
	if v < 0 && !negative && strings.ContainsAny(out, "123456789") {
		out = "-" + out
	}
	return out, true
}

// numberLayout is the compiled form of one plain number section.
type numberLayout struct {
	prefix, suffix string
	minInt         int
	minFrac        int
	maxFrac        int
	grouping       bool
	percent        int
	scale          int
}

func compile(tokens []nfp.Token) (numberLayout, bool) {
	var (
		l           numberLayout
		seenDigit   bool
		afterPoint  bool
		pendingSeps int
		digits      bool
	)
	for _, tok := range tokens {
		switch tok.TType {
		case nfp.TokenTypeZeroPlaceHolder, nfp.TokenTypeHashPlaceHolder, nfp.TokenTypeDigitalPlaceHolder:
			if l.suffix != "" {
				return l, false
			}
			digits = true
			for _, r := range tok.TValue {
				if afterPoint {
					if r == '0' {
						l.minFrac++
					}
					l.maxFrac++
					continue
				}
				if pendingSeps > 0 && seenDigit {
					l.grouping = true
					pendingSeps = 0
				}
				if r == '0' {
					l.minInt++
				}
				seenDigit = true
			}
		case nfp.TokenTypeThousandsSeparator:
			if afterPoint {
				continue
			}
			pendingSeps += max(len(tok.TValue), 1)
		case nfp.TokenTypeDecimalPoint:
			l.scale += pendingSeps
			pendingSeps = 0
			afterPoint = true
			digits = true
		case nfp.TokenTypePercent:
			l.percent++
			l.addText(&digits, tok.TValue)
		case nfp.TokenTypeLiteral, nfp.TokenTypeAlignment:
			// "_)" pads with a space as wide as the parenthesis.
			l.addText(&digits, tok.TValue)
		case nfp.TokenTypeColor, nfp.TokenTypeCondition, nfp.TokenTypeRepeatsChar:
		default:
			return l, false
		}
	}
	if !seenDigit && !afterPoint {
		return l, false
	}
	l.scale += pendingSeps
	return l, true
}

func (l *numberLayout) addText(digits *bool, s string) {
	if *digits {
		l.suffix += s
		return
	}
	l.prefix += s
}

func (l numberLayout) render(v float64, sep Separators) string {
	for i := 0; i < l.percent; i++ {
		v *= 100
	}
	for i := 0; i < l.scale; i++ {
		v /= 1000
	}

	intPart, frac := roundFixed(v, l.maxFrac)
	for len(frac) > l.minFrac && strings.HasSuffix(frac, "0") {
		frac = frac[:len(frac)-1]
	}

	intPart = strings.TrimLeft(intPart, "0")
	for len(intPart) < l.minInt {
		intPart = "0" + intPart
	}
	if l.grouping {
		intPart = group(intPart, sep.Group)
	}

	var b strings.Builder
	b.WriteString(l.prefix)
	b.WriteString(intPart)
	if l.maxFrac > 0 && (frac != "" || l.minFrac > 0) {
		b.WriteString(sep.Decimal)
		b.WriteString(frac)
	}
	b.WriteString(l.suffix)
	return b.String()
}

func group(digits, mark string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(mark)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func formatScientific(v float64, precision int, forceSign bool, expDigits int, sep Separators) string {
	sign := ""
	if v < 0 {
		sign = "-"
	}
	digits, exp := "0", 0
	if v != 0 {
		mant, e, _ := strings.Cut(strconv.FormatFloat(math.Abs(v), 'E', -1, 64), "E")
		exp, _ = strconv.Atoi(e)
		digits = strings.Replace(mant, ".", "", 1)
	}

	if len(digits) > precision+1 {
		up := digits[precision+1] >= '5'
		digits = digits[:precision+1]
		if up {
			digits = increment(digits)
			if len(digits) > precision+1 {
				digits = digits[:precision+1]
				exp++
			}
		}
	}
	for len(digits) < precision+1 {
		digits += "0"
	}

	mantissa := digits[:1]
	if precision > 0 {
		mantissa += sep.Decimal + digits[1:]
	}
	return sign + mantissa + exponent(exp, forceSign, expDigits)
}

// formatEngineering renders v with an exponent that is a multiple of
// width, the number of integer placeholders in the code.
func formatEngineering(v float64, width, precision int, forceSign bool, expDigits int, sep Separators) string {
	sign := ""
	if v < 0 {
		sign = "-"
	}
	abs := math.Abs(v)
	exp := 0
	if abs != 0 {
		exp = int(math.Floor(math.Log10(abs)))
		exp -= ((exp % width) + width) % width
	}

	intPart, frac := roundFixed(abs/math.Pow10(exp), precision)
	if len(intPart) > width {
		exp += width
		intPart, frac = roundFixed(abs/math.Pow10(exp), precision)
	}

	mantissa := intPart
	if precision > 0 {
		mantissa += sep.Decimal + frac
	}
	return sign + mantissa + exponent(exp, forceSign, expDigits)
}

func exponent(exp int, forceSign bool, digits int) string {
	expSign := ""
	switch {
	case exp < 0:
		expSign = "-"
		exp = -exp
	case forceSign:
		expSign = "+"
	}
	e := strconv.Itoa(exp)
	for len(e) < digits {
		e = "0" + e
	}
	return "E" + expSign + e
}

// roundFixed rounds v half away from zero to frac digits, working on the
// shortest decimal form of v so that 2.675 rounds to 2.68.
func roundFixed(v float64, frac int) (intPart, fracPart string) {
	s := strconv.FormatFloat(math.Abs(v), 'f', -1, 64)
	intPart, fracPart, _ = strings.Cut(s, ".")
	if len(fracPart) <= frac {
		return intPart, fracPart + strings.Repeat("0", frac-len(fracPart))
	}

	up := fracPart[frac] >= '5'
	digits := intPart + fracPart[:frac]
	if up {
		digits = increment(digits)
	}
	cut := len(digits) - frac
	return digits[:cut], digits[cut:]
}

// increment adds one to a string of decimal digits.
func increment(digits string) string {
	b := []byte(digits)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < '9' {
			b[i]++
			return string(b)
		}
		b[i] = '0'
	}
	return "1" + string(b)
}

func formatGeneral(v float64, sep Separators) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if len(strings.TrimLeft(s, "-")) > 11 {
		s = strconv.FormatFloat(v, 'G', 6, 64)
	}
	return strings.Replace(s, ".", sep.Decimal, 1)
}
