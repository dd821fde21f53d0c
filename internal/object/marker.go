package object

import (
	"fmt"

	"github.com/tomz197/points/internal/draw"
	"github.com/tomz197/points/internal/game"
	"github.com/tomz197/points/internal/physics"
)

// Marker draws a game marker as a framed box. Clicked markers are filled
// with a shade matching their opacity and show the time they have left.
type Marker struct {
	game.Marker
}

// Cells returns the frame cells the marker covers.
func (m Marker) Cells(v *draw.Viewport) (col, row, cols, rows int) {
	return v.RectToTerminal(float64(m.Location.X), float64(m.Location.Y), game.MarkerSize, game.MarkerSize)
}

// Rect returns the marker's cells as a hit-test rectangle.
func (m Marker) Rect(v *draw.Viewport) physics.Rect {
	col, row, cols, rows := m.Cells(v)
	return physics.Rect{X: float64(col), Y: float64(row), W: float64(cols), H: float64(rows)}
}

// Draw paints the marker.
func (m Marker) Draw(ctx DrawContext) {
	cw := ctx.Writer
	col, row, cols, rows := m.Cells(ctx.Viewport)
	label := fmt.Sprint(m.Number)

	if cols < 3 || rows < 3 {
		// Too small for a frame, just the number.
		color := draw.ColorOrange
		if m.Clicked {
			color = draw.ColorOrangeOnFill
		}
		cw.WriteAt(col, row, color+fit(label, cols)+draw.ColorReset)
		return
	}

	fill := ' '
	if m.Clicked {
		fill = draw.ShadeLevel(m.Opacity / 100)
	}
	cw.WriteString(draw.ColorOrange)
	draw.Box(cw, col, row, cols, rows, fill)
	cw.WriteString(draw.ColorReset)

	inner := cols - 2
	centerX := col + cols/2
	mid := row + rows/2
	if !m.Clicked {
		cw.WriteCentered(centerX, mid, fit(label, inner))
		return
	}

	if rows >= 4 {
		cw.WriteCenteredColor(centerX, mid-1, draw.ColorOrangeOnFill, fit(label, inner))
		cw.WriteCenteredColor(centerX, mid, draw.ColorOrangeOnFill, fit(fmt.Sprintf("%.2fs", m.Remaining), inner))
		return
	}
	cw.WriteCenteredColor(centerX, mid, draw.ColorOrangeOnFill, fit(label, inner))
}

// Markers wraps game markers for drawing, keeping their order.
func Markers(markers []game.Marker) []Object {
	out := make([]Object, len(markers))
	for i, m := range markers {
		out[i] = Marker{Marker: m}
	}
	return out
}
