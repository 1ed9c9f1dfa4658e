package style

import "fmt"

// IndentPixels is the horizontal padding of one indent level. Excel indents
// by the width of roughly three characters of the default font.
const IndentPixels = 9

// IndentToPixels converts an alignment indent level to pixels.
func IndentToPixels(level int) int {
	if level < 0 {
		return 0
	}
	return level * IndentPixels
}

func px(n int) string {
	return fmt.Sprintf("%dpx", n)
}

func pt(size float64) string {
	return fmt.Sprintf("%gpt", size)
}
