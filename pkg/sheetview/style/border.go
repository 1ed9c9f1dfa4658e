package style

import "github.com/xuri/excelize/v2"

// borderCSS maps excelize border style ids to CSS width and line style.
var borderCSS = map[int]string{
	1:  "1px solid",  // thin
	2:  "2px solid",  // medium
	3:  "1px dashed", // dashed
	4:  "1px dotted", // dotted
	5:  "3px solid",  // thick
	6:  "3px double", // double
	7:  "1px solid",  // hair
	8:  "2px dashed", // mediumDashed
	9:  "1px dashed", // dashDot
	10: "2px dashed", // mediumDashDot
	11: "1px dotted", // dashDotDot
	12: "2px dotted", // mediumDashDotDot
	13: "2px dashed", // slantDashDot
}

var borderSides = []string{"left", "right", "top", "bottom"}

// BorderProperties maps borders to one "border-{side}" property per styled
// side. Values carry !important so merged cells keep their borders.
func BorderProperties(borders []excelize.Border) Properties {
	bySide := make(map[string]excelize.Border, len(borders))
	for _, b := range borders {
		bySide[b.Type] = b
	}

	var props Properties
	for _, side := range borderSides {
		b, ok := bySide[side]
		if !ok || b.Style == 0 {
			continue
		}
		css, ok := borderCSS[b.Style]
		if !ok {
			css = borderCSS[1]
		}
		props = append(props, Property{
			Name:  "border-" + side,
			Value: css + " " + Color(b.Color, DefaultColor) + " !important",
		})
	}
	return props
}
