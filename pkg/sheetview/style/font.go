package style

import (
	"strings"

	"github.com/xuri/excelize/v2"
)

// DefaultColor is used when a font or border carries no explicit color.
const DefaultColor = "#000000"

// FontProperties maps a font to CSS. Color is always set. Family and size
// are only included when withFace is true; inline rich text runs leave them
// to the surrounding cell.
func FontProperties(font *excelize.Font, withFace bool) Properties {
	if font == nil {
		return Properties{
			{"font-weight", "normal"},
			{"text-decoration", "none"},
			{"font-style", "normal"},
			{"color", DefaultColor},
		}
	}

	var props Properties
	if font.Bold {
		props = append(props, Property{"font-weight", "bold"})
	} else {
		props = append(props, Property{"font-weight", "normal"})
	}
	props = append(props, Property{"text-decoration", textDecoration(font)})
	if font.Italic {
		props = append(props, Property{"font-style", "italic"})
	} else {
		props = append(props, Property{"font-style", "normal"})
	}
	props = append(props, Property{"color", Color(font.Color, DefaultColor)})

	if withFace {
		if font.Family != "" {
			props = append(props, Property{"font-family", "'" + strings.ReplaceAll(font.Family, "'", "") + "'"})
		}
		if font.Size > 0 {
			props = append(props, Property{"font-size", pt(font.Size)})
		}
	}
	return props
}

func textDecoration(font *excelize.Font) string {
	underline := font.Underline != "" && font.Underline != "none"
	switch {
	case underline && font.Strike:
		return "underline line-through"
	case underline:
		return "underline"
	case font.Strike:
		return "line-through"
	default:
		return "none"
	}
}

// Color normalizes an RGB or ARGB hex string to "#RRGGBB", returning def
// when hex is empty or malformed.
func Color(hex, def string) string {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) == 8 {
		hex = hex[2:]
	}
	if len(hex) != 6 {
		return def
	}
	for _, r := range hex {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return def
		}
	}
	return "#" + strings.ToUpper(hex)
}
