// Package object holds the drawable pieces of a terminal frame.
package object

import (
	"time"

	"github.com/tomz197/points/internal/draw"
)

// Object is anything that can paint itself onto a frame.
type Object interface {
	Draw(ctx DrawContext)
}

// DrawContext provides drawing resources for objects.
type DrawContext struct {
	Writer   *draw.ChunkWriter // Frame being assembled
	Viewport *draw.Viewport    // Maps the logical play area onto the frame
	Width    int               // Frame width in cells
	Height   int               // Frame height in cells
}

// DrawAll paints objects in order, later ones on top.
func DrawAll(ctx DrawContext, objects []Object) {
	for _, obj := range objects {
		obj.Draw(ctx)
	}
}

// BlinkOn reports whether a blinking element is visible after running for
// t at the given frequency (full on/off cycles per second are frequency/2).
func BlinkOn(t time.Duration, frequency float64) bool {
	if frequency <= 0 {
		return true
	}
	phase := int(t.Seconds() * frequency)
	return phase%2 == 0
}

// fit truncates s to at most n runes.
func fit(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
