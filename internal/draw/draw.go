// Package draw renders text frames to ANSI terminals.
package draw

import (
	"strings"
	"unicode/utf8"
)

// Shade characters from lightest to darkest.
var Shades = []rune{' ', '░', '▒', '▓', '█'}

// ShadeLevel returns a shade character for a value between 0.0 (empty) and 1.0 (solid).
func ShadeLevel(intensity float64) rune {
	if intensity <= 0 {
		return Shades[0]
	}
	if intensity >= 1 {
		return Shades[len(Shades)-1]
	}
	idx := int(intensity * float64(len(Shades)-1))
	return Shades[idx]
}

// ANSI colors used by the UI.
const (
	ColorReset        = "\033[0m"
	ColorBold         = "\033[1m"
	ColorRed          = "\033[31m"
	ColorGreen        = "\033[32m"
	ColorYellow       = "\033[33m"
	ColorBlue         = "\033[34m"
	ColorBrightCyan   = "\033[96m"
	ColorOrange       = "\033[38;5;208m"
	ColorOrangeOnFill = "\033[97;48;5;208m" // White text on orange background
)

// TextWidth returns the display width of s, assuming single-width runes.
func TextWidth(s string) int {
	return utf8.RuneCountInString(s)
}

// Box draws a bordered rectangle at 1-based (col, row) with outer size
// width × height. The interior is filled with fill; a zero fill leaves it
// untouched.
func Box(cw *ChunkWriter, col, row, width, height int, fill rune) {
	if width < 2 || height < 2 {
		return
	}
	inner := width - 2
	cw.WriteAt(col, row, "┌"+strings.Repeat("─", inner)+"┐")
	for r := row + 1; r < row+height-1; r++ {
		cw.WriteAt(col, r, "│")
		if fill != 0 {
			cw.WriteString(strings.Repeat(string(fill), inner))
		} else {
			cw.MoveCursor(col+width-1, r)
		}
		cw.WriteString("│")
	}
	cw.WriteAt(col, row+height-1, "└"+strings.Repeat("─", inner)+"┘")
}
