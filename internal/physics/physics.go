// Package physics provides hit testing for the play area.
package physics

// Rect is an axis-aligned rectangle with its origin at the top-left corner.
type Rect struct {
	X, Y float64
	W, H float64
}

// Contains reports whether the point lies inside r. The left and top edges
// are inside, the right and bottom edges are not, so adjacent rects never
// both claim a point.
func (r Rect) Contains(px, py float64) bool {
	return PointInRect(px, py, r.X, r.Y, r.W, r.H)
}

// PointInRect checks if a point is within the rectangle at (x, y) of size w × h.
func PointInRect(px, py, x, y, w, h float64) bool {
	return px >= x && px < x+w && py >= y && py < y+h
}

// Topmost returns the index of the last rect containing the point, or -1.
// Rects are given in paint order, so the last one is drawn on top.
func Topmost(rects []Rect, px, py float64) int {
	for i := len(rects) - 1; i >= 0; i-- {
		if rects[i].Contains(px, py) {
			return i
		}
	}
	return -1
}
