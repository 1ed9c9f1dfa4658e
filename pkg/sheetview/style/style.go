// Package style turns a workbook's style table into CSS rules keyed by
// style bucket and cell data type.
package style

import (
	"errors"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// maxStyles caps the style table walk; Excel allows 64000 cell formats.
const maxStyles = 64000

// Property is one CSS declaration.
type Property struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Properties is an ordered list of declarations.
type Properties []Property

// Inline serializes p as "prop:value;prop:value".
func (p Properties) Inline() string {
	parts := make([]string, len(p))
	for i, prop := range p {
		parts[i] = prop.Name + ":" + prop.Value
	}
	return strings.Join(parts, ";")
}

// Get returns the value of the named property.
func (p Properties) Get(name string) (string, bool) {
	for _, prop := range p {
		if prop.Name == name {
			return prop.Value, true
		}
	}
	return "", false
}

// Rule is a selector with its declarations.
type Rule struct {
	Selector   string     `json:"selector"`
	Properties Properties `json:"properties"`
}

// Stylesheet is an ordered set of rules.
type Stylesheet struct {
	Rules []Rule `json:"rules"`
}

// Rule returns the rule for selector.
func (s *Stylesheet) Rule(selector string) (Rule, bool) {
	for _, r := range s.Rules {
		if r.Selector == selector {
			return r, true
		}
	}
	return Rule{}, false
}

// CSS renders one rule per line. A non-empty rootID scopes every selector
// under "#rootID".
func (s *Stylesheet) CSS(rootID string) string {
	var b strings.Builder
	for _, r := range s.Rules {
		if rootID != "" {
			b.WriteString("#")
			b.WriteString(rootID)
			b.WriteString(" ")
		}
		b.WriteString(r.Selector)
		b.WriteString(" {")
		b.WriteString(r.Properties.Inline())
		b.WriteString("}\n")
	}
	return b.String()
}

// Source is the style table of a workbook, such as *excelize.File.
type Source interface {
	GetStyle(idx int) (*excelize.Style, error)
}

// TypeSelector returns the selector of a cell data type.
func TypeSelector(dataType string) string {
	return ".cell-type-" + dataType
}

// BucketSelector returns the selector of a style bucket.
func BucketSelector(id int) string {
	return ".cell-style-" + strconv.Itoa(id)
}

var typeAlignment = []struct {
	dataType string
	align    string
}{
	{"boolean", "center"},
	{"error", "center"},
	{"formula", "right"},
	{"numeric", "right"},
	{"string", "left"},
	{"inlineString", "left"},
}

// ErrNoSource is returned by Build for a nil source.
var ErrNoSource = errors.New("style source is nil")

// Build returns the data type rules followed by one rule per style bucket,
// in bucket order. The walk stops at the first id excelize rejects.
func Build(src Source) (*Stylesheet, error) {
	if src == nil {
		return nil, ErrNoSource
	}

	sheet := &Stylesheet{}
	for _, ta := range typeAlignment {
		sheet.Rules = append(sheet.Rules, Rule{
			Selector:   TypeSelector(ta.dataType),
			Properties: Properties{{"text-align", ta.align}},
		})
	}
	for i := 0; i < maxStyles; i++ {
		st, err := src.GetStyle(i)
		if err != nil || st == nil {
			break
		}
		sheet.Rules = append(sheet.Rules, Rule{
			Selector:   BucketSelector(i),
			Properties: StyleProperties(st, true),
		})
	}
	return sheet, nil
}

// StyleProperties maps one style record to CSS: alignment, borders, font
// and fill, in that order.
func StyleProperties(st *excelize.Style, withFace bool) Properties {
	props := AlignmentProperties(st.Alignment)
	props = append(props, BorderProperties(st.Border)...)
	props = append(props, FontProperties(st.Font, withFace)...)
	if bg, ok := fillColor(st.Fill); ok {
		props = append(props, Property{"background-color", bg})
	}
	return props
}

// AlignmentProperties always sets vertical-align. Horizontal alignment adds
// text-align, and an indented left or right alignment adds padding.
func AlignmentProperties(a *excelize.Alignment) Properties {
	if a == nil {
		return Properties{{"vertical-align", "bottom"}}
	}

	props := Properties{{"vertical-align", verticalAlign(a.Vertical)}}
	switch a.Horizontal {
	case "", "general":
	case "left", "fill":
		props = append(props, Property{"text-align", "left"})
		if a.Indent > 0 {
			props = append(props, Property{"padding-left", px(IndentToPixels(a.Indent))})
		}
	case "right":
		props = append(props, Property{"text-align", "right"})
		if a.Indent > 0 {
			props = append(props, Property{"padding-right", px(IndentToPixels(a.Indent))})
		}
	case "center", "centerContinuous":
		props = append(props, Property{"text-align", "center"})
	case "justify", "distributed":
		props = append(props, Property{"text-align", "justify"})
	default:
		props = append(props, Property{"text-align", a.Horizontal})
	}
	return props
}

func verticalAlign(v string) string {
	switch v {
	case "top":
		return "top"
	case "center", "justify", "distributed":
		return "middle"
	default:
		return "bottom"
	}
}

func fillColor(fill excelize.Fill) (string, bool) {
	if len(fill.Color) == 0 {
		return "", false
	}
	switch fill.Type {
	case "pattern":
		if fill.Pattern == 0 {
			return "", false
		}
	case "gradient":
	default:
		return "", false
	}
	c := Color(fill.Color[0], "")
	return c, c != ""
}
