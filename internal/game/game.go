// Package game holds the authoritative state of a points game and the tickers
// that age it while a game is in progress.
package game

import "time"

// Status is the phase of a single game instance.
type Status string

const (
	StatusStart      Status = "start"      // No game started yet
	StatusPlaying    Status = "playing"    // Markers active, tickers running
	StatusAllCleared Status = "allCleared" // Every marker clicked and faded out
	StatusGameOver   Status = "gameOver"   // A marker was clicked out of order
)

// Marker geometry and lifetime.
const (
	MarkerSize       = 60  // Footprint of a marker (square, logical units)
	InitialRemaining = 3.0 // Countdown a clicked marker starts from
	DecayStep        = 0.1 // Countdown removed per decay tick
	ElapsedStep      = 10  // Elapsed units added per elapsed tick (hundredths of a second)
)

// Default play area, used when the presentation cannot report its size.
const (
	DefaultAreaWidth  = 650
	DefaultAreaHeight = 400
)

// Tick periods.
const (
	DecayPeriod   = 100 * time.Millisecond
	ElapsedPeriod = 100 * time.Millisecond
	AutoPeriod    = 1000 * time.Millisecond
)

// DefaultCount is the marker count offered before the player edits it.
const DefaultCount = 5

// Location is the top-left corner of a marker inside the play area.
type Location struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Area is the size of the play area markers are placed in.
type Area struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// orDefault substitutes the default area for any side that is not positive.
func (a Area) orDefault() Area {
	if a.Width <= 0 {
		a.Width = DefaultAreaWidth
	}
	if a.Height <= 0 {
		a.Height = DefaultAreaHeight
	}
	return a
}

// Marker is one clickable numbered target.
type Marker struct {
	Number    int      `json:"number"`
	Location  Location `json:"location"`
	Clicked   bool     `json:"clicked"`
	Remaining float64  `json:"remaining"`
	Opacity   float64  `json:"opacity"` // Derived from Remaining on every decay tick
}

// Snapshot is an immutable view of a game. A new Snapshot is published after
// every state change; readers must not modify it.
type Snapshot struct {
	Status         Status   `json:"status"`
	Markers        []Marker `json:"markers"`
	Current        int      `json:"current"`
	Total          int      `json:"total"`
	Elapsed        int      `json:"elapsed"`
	RequestedCount int      `json:"requestedCount"`
	AutoPlay       bool     `json:"autoPlay"`
	ShowWinModal   bool     `json:"showWinModal"`
	ShowLoseModal  bool     `json:"showLoseModal"`
	Area           Area     `json:"area"`
}

// ElapsedSeconds converts the elapsed counter to seconds.
func (s *Snapshot) ElapsedSeconds() float64 {
	return float64(s.Elapsed) / 100
}

// Marker returns the marker with the given number, if it is still present.
func (s *Snapshot) Marker(number int) (Marker, bool) {
	for _, m := range s.Markers {
		if m.Number == number {
			return m, true
		}
	}
	return Marker{}, false
}

// clone copies the snapshot so it can be mutated and republished.
func (s *Snapshot) clone() *Snapshot {
	next := *s
	next.Markers = make([]Marker, len(s.Markers))
	copy(next.Markers, s.Markers)
	return &next
}

// hasClicked reports whether any marker is currently decaying.
func (s *Snapshot) hasClicked() bool {
	for _, m := range s.Markers {
		if m.Clicked {
			return true
		}
	}
	return false
}
