// Package client runs one terminal game session: input, a game controller
// and the frame loop that renders it.
package client

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tomz197/points/internal/draw"
	"github.com/tomz197/points/internal/game"
	"github.com/tomz197/points/internal/input"
	"github.com/tomz197/points/internal/loop/config"
	"github.com/tomz197/points/internal/loop/server"
	"github.com/tomz197/points/internal/metrics"
	"github.com/tomz197/points/internal/object"
	"github.com/tomz197/points/internal/physics"
)

// Client handles rendering and input for a single connection.
type Client struct {
	ctx          context.Context
	server       server.GameServer
	handle       *server.ClientHandle
	game         *game.Controller
	state        *ClientState
	viewport     *draw.Viewport
	chunkWriter  *draw.ChunkWriter // Accumulates a frame for chunked output
	writer       io.Writer
	inputStream  *input.Stream
	clock        clockwork.Clock
	lastInput    time.Time
	started      time.Time
	area         game.Area
	frontend     string
	termSizeFunc draw.TermSizeFunc
	log          zerolog.Logger
}

// ClientOptions configures the client.
type ClientOptions struct {
	TermSizeFunc draw.TermSizeFunc
	Username     string
	Frontend     string    // Metrics label, server.FrontendTerminal when empty
	Area         game.Area // Logical play area, scaled to the terminal
	DefaultCount int       // Count offered before the player types one
	Clock        clockwork.Clock
	Logger       *zerolog.Logger
}

// NewClient creates a new client registered with the given server. The
// game's tickers live until ctx is cancelled or Run returns.
func NewClient(ctx context.Context, gs server.GameServer, r io.ByteReader, w io.Writer, opts ClientOptions) *Client {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	frontend := opts.Frontend
	if frontend == "" {
		frontend = server.FrontendTerminal
	}
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	logger := log.With().Str("component", "client").Str("frontend", frontend).Logger()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	defaultCount := opts.DefaultCount
	if defaultCount <= 0 {
		defaultCount = game.DefaultCount
	}
	area := game.Area{Width: opts.Area.Width, Height: opts.Area.Height}
	if area.Width <= 0 || area.Height <= 0 {
		area = game.Area{Width: game.DefaultAreaWidth, Height: game.DefaultAreaHeight}
	}

	handle := gs.RegisterClient(frontend, opts.Username)
	logger = logger.With().Stringer("session", handle.ID).Logger()

	ctrl := game.NewController(ctx,
		game.WithClock(clock),
		game.WithLogger(logger),
		game.WithRequestedCount(defaultCount),
	)

	c := &Client{
		ctx:          ctx,
		server:       gs,
		handle:       handle,
		game:         ctrl,
		state:        NewClientState(strconv.Itoa(ctrl.Snapshot().RequestedCount)),
		viewport:     draw.NewViewport(float64(area.Width), float64(area.Height)),
		chunkWriter:  draw.NewChunkWriter(w, 0, 0),
		writer:       w,
		clock:        clock,
		lastInput:    clock.Now(),
		started:      clock.Now(),
		area:         area,
		frontend:     frontend,
		termSizeFunc: termSizeFunc,
		log:          logger,
	}
	if r != nil {
		c.inputStream = input.StartStream(r)
	}
	return c
}

// Run starts the client loop. Blocks until the client quits, disconnects,
// the client context is cancelled or the server shutdown countdown ends.
func (c *Client) Run() error {
	draw.HideCursor(c.writer)
	draw.EnableMouse(c.writer)
	draw.ClearScreen(c.writer)
	defer func() {
		draw.DisableMouse(c.writer)
		draw.ShowCursor(c.writer)
		draw.ClearScreen(c.writer)
	}()
	defer c.close()

	lastTime := time.Now()

	for c.state.Running {
		frameStart := time.Now()
		c.state.delta = frameStart.Sub(lastTime)
		lastTime = frameStart

		if c.inputStream != nil {
			c.handleInput(input.ReadInput(c.inputStream))
			if c.inputStream.Closed() {
				c.state.Running = false
			}
		}
		if c.ctx.Err() != nil {
			c.state.Running = false
		}
		c.processServerEvents()
		c.processGameEvents()
		c.updateScreen()
		c.updateShutdownState()

		if err := c.drawFrame(); err != nil {
			return err
		}

		// Frame timing
		elapsed := time.Since(frameStart)
		if elapsed < config.ClientTargetFrameTime {
			time.Sleep(config.ClientTargetFrameTime - elapsed)
		}
	}
	return nil
}

// close stops the game and leaves the registry.
func (c *Client) close() {
	c.game.Close()
	c.processGameEvents()
	c.server.UnregisterClient(c.handle.ID)
}

// Game returns the controller driving this session.
func (c *Client) Game() *game.Controller {
	return c.game
}

// handleInput applies one frame of input.
func (c *Client) handleInput(in input.Input) {
	c.state.Input = in

	now := c.clock.Now()
	if in.Any() {
		c.lastInput = now
		c.state.isInactive = false
	} else if now.Sub(c.lastInput).Seconds() > config.InactivityDisconnectUser {
		c.log.Info().Msg("disconnecting inactive session")
		c.state.Running = false
	} else if now.Sub(c.lastInput).Seconds() > config.InactivityWarnUser {
		c.state.isInactive = true
	}

	if in.Quit {
		c.state.Running = false
		return
	}
	if c.state.shuttingDown {
		return
	}

	snap := c.game.Snapshot()

	if in.Escape {
		switch {
		case snap.ShowWinModal:
			c.game.DismissWinModal()
		case snap.ShowLoseModal:
			c.game.DismissLoseModal()
		}
	}

	if len(in.Digits) > 0 || in.Backspace {
		c.editCount(in.Digits, in.Backspace)
	}

	if in.Enter || in.Space {
		c.startGame()
		return
	}

	if in.Auto {
		c.game.ToggleAutoPlay()
	}

	for _, click := range in.Clicks {
		c.click(click)
	}
}

// editCount applies typed digits and backspace to the count field and hands
// the text to the controller, which sanitizes it.
func (c *Client) editCount(digits []byte, backspace bool) {
	text := c.state.CountText
	if backspace && text != "" {
		text = text[:len(text)-1]
	}
	for _, d := range digits {
		if len(text) >= config.MaxCountDigits {
			break
		}
		text += string(d)
	}
	c.state.CountText = text
	c.game.SetRequestedCount(text)
}

// startGame starts or restarts the game with the requested count.
func (c *Client) startGame() {
	requested := c.game.Snapshot().RequestedCount
	c.state.CountText = strconv.Itoa(requested)
	c.game.StartGame(requested, c.area)
}

// click forwards a mouse press on a marker to the controller. Presses
// outside the board, on empty board, or under an open dialog do nothing.
func (c *Client) click(click input.Click) {
	snap := c.game.Snapshot()
	if snap.ShowWinModal || snap.ShowLoseModal {
		return
	}

	col := click.Col - c.state.offsetCol
	row := click.Row - c.state.offsetRow
	if !c.viewport.Contains(col, row) {
		return
	}

	idx := physics.Topmost(c.markerRects(snap), float64(col), float64(row))
	if idx < 0 {
		return
	}
	c.game.ClickMarker(snap.Markers[idx].Number)
}

// markerRects returns the terminal cells covered by each marker, in paint order.
func (c *Client) markerRects(snap *game.Snapshot) []physics.Rect {
	rects := make([]physics.Rect, len(snap.Markers))
	for i, m := range snap.Markers {
		rects[i] = object.Marker{Marker: m}.Rect(c.viewport)
	}
	return rects
}

// processServerEvents handles events from the server.
func (c *Client) processServerEvents() {
	for {
		select {
		case event, ok := <-c.handle.EventsCh:
			if !ok {
				// Server closed the channel
				c.state.Running = false
				return
			}
			switch event.Type {
			case server.EventServerShutdown:
				if !c.state.shuttingDown {
					c.state.shuttingDown = true
					c.state.shutdownTimer = config.ShutdownDisplaySeconds
				}
			}
		default:
			return
		}
	}
}

// processGameEvents forwards game outcomes to metrics.
func (c *Client) processGameEvents() {
	for {
		select {
		case ev := <-c.game.Events():
			metrics.Observe(c.frontend, ev)
		default:
			return
		}
	}
}

// updateScreen handles terminal resize, clamping to max render resolution.
func (c *Client) updateScreen() {
	termWidth, termHeight, err := c.termSizeFunc()
	if err != nil {
		return
	}
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)

	c.state.renderWidth = renderWidth
	c.state.renderHeight = renderHeight
	c.state.offsetCol = offsetCol
	c.state.offsetRow = offsetRow
	c.chunkWriter.SetOffset(offsetCol, offsetRow)

	// Board border runs from PlayAreaTop to the row above the status line.
	c.viewport.Place(2, config.PlayAreaTop+1, renderWidth-2, renderHeight-config.PlayAreaTop-2)
}

// clampTermSize clamps terminal dimensions to the max render resolution and computes
// the centering offset for the render area.
func clampTermSize(termWidth, termHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = min(termWidth, config.MaxTermWidth)
	renderHeight = min(termHeight, config.MaxTermHeight)
	offsetCol = (termWidth - renderWidth) / 2
	offsetRow = (termHeight - renderHeight) / 2
	return
}

// updateShutdownState handles the shutdown screen countdown.
func (c *Client) updateShutdownState() {
	if !c.state.shuttingDown {
		return
	}
	c.state.shutdownTimer -= c.state.delta.Seconds()
	if c.state.shutdownTimer <= 0 {
		c.state.Running = false
	}
}
