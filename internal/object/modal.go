package object

import "github.com/tomz197/points/internal/draw"

// Modal is a dialog box centered on the frame.
type Modal struct {
	Color   string
	Title   string
	Message string
	Actions string
}

// Draw paints the dialog over whatever is below it.
func (m Modal) Draw(ctx DrawContext) {
	cw := ctx.Writer
	width := max(draw.TextWidth(m.Message), draw.TextWidth(m.Actions), draw.TextWidth(m.Title)) + 6
	width = min(width, ctx.Width-2)
	height := 7
	centerX := ctx.Width / 2
	col := centerX - width/2
	row := ctx.Height/2 - height/2

	cw.WriteString(m.Color)
	draw.Box(cw, col, row, width, height, ' ')
	cw.WriteString(draw.ColorReset)

	cw.WriteCenteredColor(centerX, row+1, m.Color+draw.ColorBold, fit(m.Title, width-2))
	cw.WriteCentered(centerX, row+3, fit(m.Message, width-2))
	cw.WriteCentered(centerX, row+5, fit(m.Actions, width-2))
}
