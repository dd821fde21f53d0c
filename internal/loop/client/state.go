package client

import (
	"time"

	"github.com/tomz197/points/internal/game"
	"github.com/tomz197/points/internal/input"
)

// ClientState holds per-session presentation state (input, count field,
// layout, shutdown countdown). The game itself lives in the controller.
type ClientState struct {
	Input         input.Input
	CountText     string        // Count field as typed
	Running       bool          // Client loop running
	delta         time.Duration // Frame delta time
	shuttingDown  bool          // Server announced shutdown
	shutdownTimer float64       // Countdown before auto-disconnect on shutdown
	isInactive    bool          // Whether the client is in inactive warning state

	// Frame layout, recomputed on resize.
	renderWidth  int
	renderHeight int
	offsetCol    int
	offsetRow    int

	// What the previous frame showed; a frame is only redrawn when it differs.
	drawn      frameKey
	prevStatus game.Status
}

// frameKey captures everything a frame depends on.
type frameKey struct {
	snapshot     *game.Snapshot
	countText    string
	players      int
	inactiveSecs int
	shutdownSecs int
	prompt       bool
	renderWidth  int
	renderHeight int
	offsetCol    int
	offsetRow    int
}

// NewClientState creates a new initialized client state.
func NewClientState(requestedCount string) *ClientState {
	return &ClientState{
		CountText: requestedCount,
		Running:   true,
	}
}
