package game

import (
	"math/rand"
	"sync"
)

// Placer chooses where a new marker goes. Implementations must keep the whole
// marker footprint inside the area.
type Placer interface {
	Place(area Area, size int) Location
}

// RandomPlacer places markers uniformly at random, inset so a marker of the
// given size renders fully inside the area.
type RandomPlacer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomPlacer creates a placer seeded with seed.
func NewRandomPlacer(seed int64) *RandomPlacer {
	return &RandomPlacer{rng: rand.New(rand.NewSource(seed))}
}

// Place returns a location in [1, area.Width-size] × [1, area.Height-size].
// A side no larger than the marker pins that coordinate to 0.
func (p *RandomPlacer) Place(area Area, size int) Location {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Location{
		X: p.coord(area.Width - size),
		Y: p.coord(area.Height - size),
	}
}

func (p *RandomPlacer) coord(span int) int {
	if span <= 0 {
		return 0
	}
	return p.rng.Intn(span) + 1
}
