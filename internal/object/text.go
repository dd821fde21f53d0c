package object

import "github.com/tomz197/points/internal/draw"

// Text is a simple drawable text object.
// Coordinates are 1-based frame positions; a centered text is centered on X.
type Text struct {
	X        int
	Y        int
	Value    string
	Color    string
	Centered bool
}

// Draw writes the text at its position.
func (t Text) Draw(ctx DrawContext) {
	if t.Value == "" {
		return
	}
	x := t.X
	if t.Centered {
		x -= draw.TextWidth(t.Value) / 2
	}
	x = max(x, 1)
	y := max(t.Y, 1)

	if t.Color == "" {
		ctx.Writer.WriteAt(x, y, t.Value)
		return
	}
	ctx.Writer.WriteAt(x, y, t.Color+t.Value+draw.ColorReset)
}
