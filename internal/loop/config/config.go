// Package config centralizes the tunable parameters of the terminal front end.
package config

import "time"

// Render area. Larger terminals get a border around a centered frame of at
// most this size.
const (
	MaxTermWidth  = 160
	MaxTermHeight = 50
)

// Minimum frame size needed to lay out the HUD and a usable play area.
const (
	MinTermWidth  = 40
	MinTermHeight = 14
)

// HUD layout. The play area border starts on PlayAreaTop and the last
// row holds the status line.
const (
	HUDRows     = 4
	PlayAreaTop = HUDRows + 1

	HUDTimeCol = 20 // Timer column on the count row
	HUDNextCol = 40 // Expected marker column on the count row
)

// Count input
const (
	MaxCountDigits = 5 // Enough for the largest accepted count
)

// Usernames
const (
	MaxUsernameLength = 16 // Maximum display length for player usernames
)

// Shutdown
const (
	ShutdownDisplaySeconds = 10.0 // Seconds to show shutdown message before auto-disconnect
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Client rendering
const (
	ClientTargetFPS       = 30
	ClientTargetFrameTime = time.Second / ClientTargetFPS
)

// Registry housekeeping
const (
	ShutdownPollInterval = 200 * time.Millisecond
)

// Start screen
const (
	PromptBlinkFrequency = 1.6 // Phase changes per second
)
