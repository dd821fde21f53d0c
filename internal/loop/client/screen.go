package client

import (
	"fmt"

	"github.com/tomz197/points/internal/draw"
	"github.com/tomz197/points/internal/game"
	"github.com/tomz197/points/internal/loop/config"
	"github.com/tomz197/points/internal/object"
)

// titleArt is the start screen banner (figlet "small" font).
var titleArt = []string{
	"  ___  ___ ___ _  _ _____ ___ ",
	" | _ \\/ _ \\_ _| \\| |_   _/ __|",
	" |  _/ (_) | || .` | | | \\__ \\",
	" |_|  \\___/___|_|\\_| |_| |___/",
}

// drawFrame draws the current frame. Nothing is written when the frame
// would look the same as the previous one.
func (c *Client) drawFrame() error {
	snap := c.game.Snapshot()
	key := c.frameKey(snap)
	if key == c.state.drawn {
		return nil
	}

	// Layout, status or overlay changes need a full clear so stale cells don't
	// persist; within a game only the board is repainted.
	prev := c.state.drawn
	if key.renderWidth != prev.renderWidth || key.renderHeight != prev.renderHeight ||
		key.offsetCol != prev.offsetCol || key.offsetRow != prev.offsetRow ||
		snap.Status != c.state.prevStatus || (key.inactiveSecs > 0) != (prev.inactiveSecs > 0) ||
		(key.shutdownSecs > 0) != (prev.shutdownSecs > 0) || modalOpen(prev.snapshot) != modalOpen(snap) {
		c.chunkWriter.WriteString("\033[H\033[2J")
	}
	c.state.drawn = key
	c.state.prevStatus = snap.Status

	c.drawUI(snap)
	return c.chunkWriter.Flush()
}

func (c *Client) frameKey(snap *game.Snapshot) frameKey {
	key := frameKey{
		snapshot:     snap,
		countText:    c.state.CountText,
		players:      c.server.Players(),
		renderWidth:  c.state.renderWidth,
		renderHeight: c.state.renderHeight,
		offsetCol:    c.state.offsetCol,
		offsetRow:    c.state.offsetRow,
	}
	if c.state.isInactive {
		key.inactiveSecs = c.inactivitySecondsLeft()
	}
	if c.state.shuttingDown {
		key.shutdownSecs = int(c.state.shutdownTimer) + 1
	}
	if snap.Status == game.StatusStart {
		key.prompt = c.promptVisible()
	}
	return key
}

func modalOpen(snap *game.Snapshot) bool {
	return snap != nil && (snap.ShowWinModal || snap.ShowLoseModal)
}

// drawUI draws the whole frame for the given snapshot.
func (c *Client) drawUI(snap *game.Snapshot) {
	width := c.state.renderWidth
	height := c.state.renderHeight
	centerX := width / 2
	centerY := height / 2

	if width < config.MinTermWidth || height < config.MinTermHeight {
		c.drawTooSmall(centerX, centerY)
		return
	}

	if c.state.shuttingDown {
		c.drawShutdownScreen(centerX, centerY)
		return
	}

	if c.state.isInactive {
		c.drawInactivityScreen(centerX, centerY)
		return
	}

	ctx := object.DrawContext{
		Writer:   c.chunkWriter,
		Viewport: c.viewport,
		Width:    width,
		Height:   height,
	}

	c.drawHUD(snap, width)
	c.viewport.RenderBorder(c.chunkWriter)
	c.viewport.Clear(c.chunkWriter)
	if snap.Status == game.StatusStart {
		c.drawStartScreen(ctx)
	} else {
		object.DrawAll(ctx, object.Markers(snap.Markers))
	}
	c.drawStatusLine(snap, width, height)

	switch {
	case snap.ShowWinModal:
		object.Modal{
			Color:   draw.ColorGreen,
			Title:   "You Won!",
			Message: fmt.Sprintf("You cleared all %d points in %.1f seconds!", snap.Total, snap.ElapsedSeconds()),
			Actions: "[Enter] Play Again   [Esc] Close",
		}.Draw(ctx)
	case snap.ShowLoseModal:
		object.Modal{
			Color:   draw.ColorRed,
			Title:   "You Lost!",
			Message: "You clicked the wrong point. Try again!",
			Actions: "[Enter] Try Again   [Esc] Close",
		}.Draw(ctx)
	}
}

// drawHUD draws the status title, count field, timer and controls.
// Text fields use fixed-width formatting so shrinking values don't leave
// residual characters on screen.
func (c *Client) drawHUD(snap *game.Snapshot, width int) {
	cw := c.chunkWriter

	cw.WriteAt(2, 1, draw.ColorBold+"Points Game"+draw.ColorReset)
	players := fmt.Sprintf("Players: %-4d", c.server.Players())
	cw.WriteAt(width-len(players), 1, players)

	title, color := statusTitle(snap.Status)
	cw.WriteCenteredColor(width/2, 2, color+draw.ColorBold, title)

	cw.WriteAt(2, 3, fmt.Sprintf("Points: %-*s", config.MaxCountDigits+1, c.state.CountText+"_"))
	cw.WriteAt(config.HUDTimeCol, 3, fmt.Sprintf("Time: %-10s", fmt.Sprintf("%.1fs", snap.ElapsedSeconds())))
	if snap.Status == game.StatusPlaying {
		cw.WriteAt(config.HUDNextCol, 3, fmt.Sprintf("Next: %-6d", snap.Current))
	}

	cw.WriteAt(2, 4, fmt.Sprintf("%-*s", width-2, controlsHint(snap)))
}

func statusTitle(status game.Status) (string, string) {
	switch status {
	case game.StatusAllCleared:
		return "ALL CLEARED", draw.ColorGreen
	case game.StatusGameOver:
		return "GAME OVER", draw.ColorRed
	default:
		return "LET'S PLAY", draw.ColorBlue
	}
}

func controlsHint(snap *game.Snapshot) string {
	switch {
	case snap.Status == game.StatusStart:
		return "[0-9] Points  [Enter] Start Game  [Q] Quit"
	case snap.Status == game.StatusPlaying && snap.AutoPlay:
		return "[0-9] Points  [Enter] Restart  [A] Auto Play OFF  [Q] Quit"
	case snap.Status == game.StatusPlaying:
		return "[0-9] Points  [Enter] Restart  [A] Auto Play ON  [Q] Quit"
	default:
		return "[0-9] Points  [Enter] Restart  [Q] Quit"
	}
}

// drawStartScreen draws the banner and a blinking prompt inside the empty board.
func (c *Client) drawStartScreen(ctx object.DrawContext) {
	v := c.viewport
	centerX := v.Col() + v.Cols()/2
	top := v.Row() + v.Rows()/2 - len(titleArt)

	titleWidth := 0
	for _, line := range titleArt {
		titleWidth = max(titleWidth, len(line))
	}
	if titleWidth <= v.Cols() && top >= v.Row() {
		for i, line := range titleArt {
			object.Text{X: centerX - titleWidth/2, Y: top + i, Value: line, Color: draw.ColorOrange}.Draw(ctx)
		}
	}

	if c.promptVisible() {
		object.Text{
			X:        centerX,
			Y:        min(top+len(titleArt)+1, v.Row()+v.Rows()-1),
			Value:    ">>  Press ENTER to Start  <<",
			Centered: true,
		}.Draw(ctx)
	}
}

// promptVisible drives the start prompt blink.
func (c *Client) promptVisible() bool {
	return object.BlinkOn(c.clock.Since(c.started), config.PromptBlinkFrequency)
}

// drawStatusLine draws the bottom row.
func (c *Client) drawStatusLine(snap *game.Snapshot, width, height int) {
	msg := "Click the points in numerical order!"
	if snap.AutoPlay {
		msg = "Auto play is clicking for you..."
	}
	c.chunkWriter.WriteAt(2, height, fmt.Sprintf("%-*s", width-2, msg))
}

// drawInactivityScreen draws the inactivity warning screen.
func (c *Client) drawInactivityScreen(centerX, centerY int) {
	cw := c.chunkWriter
	cw.WriteCentered(centerX, centerY-2, "INACTIVITY WARNING")

	msg := fmt.Sprintf(
		"You have been inactive for too long. You will be disconnected in %d seconds.",
		c.inactivitySecondsLeft(),
	)
	cw.WriteCentered(centerX, centerY, msg)
	cw.WriteCentered(centerX, centerY+2, "Press any key to continue")
}

func (c *Client) inactivitySecondsLeft() int {
	return int(config.InactivityDisconnectUser - c.clock.Since(c.lastInput).Seconds())
}

// drawShutdownScreen draws the server shutdown notice.
func (c *Client) drawShutdownScreen(centerX, centerY int) {
	cw := c.chunkWriter
	cw.WriteCentered(centerX, centerY-3, "SERVER SHUTTING DOWN")
	cw.WriteCentered(centerX, centerY-1, "The server is restarting for maintenance.")
	cw.WriteCentered(centerX, centerY, "Please reconnect in a moment.")

	remaining := int(c.state.shutdownTimer) + 1
	cw.WriteCentered(centerX, centerY+2, fmt.Sprintf("Disconnecting in %d seconds...", remaining))
	cw.WriteCentered(centerX, centerY+4, "Press Q to disconnect now")
}

// drawTooSmall asks for a bigger window.
func (c *Client) drawTooSmall(centerX, centerY int) {
	msg := fmt.Sprintf("Terminal too small, need %dx%d", config.MinTermWidth, config.MinTermHeight)
	c.chunkWriter.WriteAt(max(1, centerX-len(msg)/2), max(1, centerY), msg)
}
