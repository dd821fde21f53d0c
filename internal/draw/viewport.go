package draw

import (
	"math"
	"strings"
)

// Viewport maps a logical play area onto a rectangle of terminal cells.
// Logical coordinates start at (0, 0) in the top-left corner; terminal
// coordinates are 1-based frame cells as used by ChunkWriter.
type Viewport struct {
	logicalWidth  float64
	logicalHeight float64
	col, row      int // Top-left cell of the mapped rectangle
	cols, rows    int // Size of the mapped rectangle in cells
	scaleX        float64
	scaleY        float64
}

// NewViewport creates a viewport for a logical area of the given size. Call
// Place before using it.
func NewViewport(logicalWidth, logicalHeight float64) *Viewport {
	return &Viewport{
		logicalWidth:  logicalWidth,
		logicalHeight: logicalHeight,
	}
}

// Place positions the viewport at (col, row) with a size of cols × rows cells.
func (v *Viewport) Place(col, row, cols, rows int) {
	v.col, v.row = col, row
	v.cols, v.rows = max(cols, 0), max(rows, 0)
	v.scaleX = float64(v.cols) / v.logicalWidth
	v.scaleY = float64(v.rows) / v.logicalHeight
}

// Col returns the left column of the viewport.
func (v *Viewport) Col() int { return v.col }

// Row returns the top row of the viewport.
func (v *Viewport) Row() int { return v.row }

// Cols returns the viewport width in cells.
func (v *Viewport) Cols() int { return v.cols }

// Rows returns the viewport height in cells.
func (v *Viewport) Rows() int { return v.rows }

// LogicalWidth returns the width of the logical area.
func (v *Viewport) LogicalWidth() float64 { return v.logicalWidth }

// LogicalHeight returns the height of the logical area.
func (v *Viewport) LogicalHeight() float64 { return v.logicalHeight }

// LogicalToTerminal converts logical coordinates to the cell containing them.
func (v *Viewport) LogicalToTerminal(x, y float64) (col, row int) {
	return v.col + int(math.Floor(x*v.scaleX)), v.row + int(math.Floor(y*v.scaleY))
}

// TerminalToLogical converts a cell to the logical coordinates of its center.
func (v *Viewport) TerminalToLogical(col, row int) (x, y float64) {
	if v.scaleX == 0 || v.scaleY == 0 {
		return 0, 0
	}
	return (float64(col-v.col) + 0.5) / v.scaleX, (float64(row-v.row) + 0.5) / v.scaleY
}

// RectToTerminal converts a logical rectangle to cells. The result is at
// least one cell in each direction.
func (v *Viewport) RectToTerminal(x, y, w, h float64) (col, row, cols, rows int) {
	col, row = v.LogicalToTerminal(x, y)
	endCol, endRow := v.LogicalToTerminal(x+w, y+h)
	return col, row, max(endCol-col, 1), max(endRow-row, 1)
}

// Contains reports whether the cell lies inside the viewport.
func (v *Viewport) Contains(col, row int) bool {
	return col >= v.col && col < v.col+v.cols && row >= v.row && row < v.row+v.rows
}

// Clear blanks every cell of the viewport.
func (v *Viewport) Clear(cw *ChunkWriter) {
	if v.cols == 0 {
		return
	}
	blank := strings.Repeat(" ", v.cols)
	for r := v.row; r < v.row+v.rows; r++ {
		cw.WriteAt(v.col, r, blank)
	}
}

// RenderBorder draws a frame one cell outside the viewport.
func (v *Viewport) RenderBorder(cw *ChunkWriter) {
	Box(cw, v.col-1, v.row-1, v.cols+2, v.rows+2, 0)
}
