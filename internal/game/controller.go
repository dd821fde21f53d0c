package game

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Controller owns one game and enforces its transition rules. All mutations
// are serialized by mu and publish a fresh Snapshot; Snapshot may be read
// concurrently without locking.
type Controller struct {
	mu       sync.Mutex
	state    *Snapshot
	snapshot atomic.Pointer[Snapshot]
	events   chan Event

	clock  clockwork.Clock
	placer Placer
	log    zerolog.Logger

	// Lifetime of everything the controller schedules.
	ctx    context.Context
	cancel context.CancelFunc

	// Tickers of the current Playing instance. gen changes on every start and
	// every exit from Playing; ticks scheduled for an older gen are dropped.
	gen       uint64
	stopDecay func()
	stopClock func()

	// Auto-advance ticker, rescheduled whenever autoPlay, status or current change.
	autoGen  uint64
	stopAuto func()
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces the wall clock driving the tickers.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithPlacer replaces the random marker placement.
func WithPlacer(p Placer) Option {
	return func(c *Controller) { c.placer = p }
}

// WithLogger sets the logger used for game lifecycle messages.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithRequestedCount sets the initial marker count offered to the player.
func WithRequestedCount(n int) Option {
	return func(c *Controller) { c.state.RequestedCount = clampCount(n) }
}

// NewController creates a controller in the Start state. Tickers stop when
// ctx is cancelled or Close is called.
func NewController(ctx context.Context, opts ...Option) *Controller {
	c := &Controller{
		state: &Snapshot{
			Status:         StatusStart,
			Markers:        []Marker{},
			Current:        1,
			RequestedCount: DefaultCount,
		},
		events: make(chan Event, eventBuffer),
		clock:  clockwork.NewRealClock(),
		log:    log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.placer == nil {
		c.placer = NewRandomPlacer(c.clock.Now().UnixNano())
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.snapshot.Store(c.state)
	return c
}

// Snapshot returns the latest published state.
func (c *Controller) Snapshot() *Snapshot {
	return c.snapshot.Load()
}

// Events returns the channel game start/win/loss events are delivered on.
func (c *Controller) Events() <-chan Event {
	return c.events
}

// Close stops every ticker. The last snapshot stays readable.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopGameLocked()
	c.cancel()
}

// StartGame discards the current game and starts a new one with count markers
// placed inside area. Counts below 1 start a single-marker game.
func (c *Controller) StartGame(count int, area Area) *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopGameLocked()

	count = clampCount(count)
	area = area.orDefault()

	// Created last-first, as the board draws lower numbers on top.
	markers := make([]Marker, 0, count)
	for n := count; n >= 1; n-- {
		markers = append(markers, Marker{
			Number:    n,
			Location:  c.placer.Place(area, MarkerSize),
			Remaining: InitialRemaining,
			Opacity:   100,
		})
	}

	next := &Snapshot{
		Status:         StatusPlaying,
		Markers:        markers,
		Current:        1,
		Total:          count,
		RequestedCount: c.state.RequestedCount,
		Area:           area,
	}
	c.state = next
	c.startGameLocked()
	c.publishLocked(next)

	c.log.Debug().Int("markers", count).Int("width", area.Width).Int("height", area.Height).Msg("game started")
	c.emit(Event{Type: EventStarted, Total: count})
	return next
}

// ClickMarker handles a click on the marker with the given number.
//
// A number other than the expected one ends the game. The expected number,
// while playing, marks that marker clicked and advances the expectation.
// Clicks in the Start and AllCleared states are ignored.
func (c *Controller) ClickMarker(number int) *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clickLocked(number)
}

func (c *Controller) clickLocked(number int) *Snapshot {
	cur := c.state
	if cur.Status != StatusPlaying && cur.Status != StatusGameOver {
		return cur
	}

	if number != cur.Current {
		next := cur.clone()
		next.Status = StatusGameOver
		next.AutoPlay = false
		next.ShowLoseModal = true
		c.publishLocked(next)
		if cur.Status == StatusPlaying {
			c.stopGameLocked()
			c.log.Info().Int("clicked", number).Int("expected", cur.Current).Int("elapsed", next.Elapsed).Msg("game lost")
			c.emit(Event{Type: EventLost, Total: next.Total, Elapsed: next.Elapsed})
		}
		return next
	}

	// Past the last marker there is nothing left to click; decay finishes the game.
	if cur.Status != StatusPlaying || cur.Current > cur.Total {
		return cur
	}

	next := cur.clone()
	for i := range next.Markers {
		if next.Markers[i].Number == number {
			next.Markers[i].Clicked = true
			break
		}
	}
	next.Current++
	c.state = next
	c.rescheduleAutoLocked()
	c.publishLocked(next)
	return next
}

// ToggleAutoPlay switches automatic clicking on or off. Only has an effect
// while a game is being played.
func (c *Controller) ToggleAutoPlay() *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Status != StatusPlaying {
		return c.state
	}
	next := c.state.clone()
	next.AutoPlay = !next.AutoPlay
	c.state = next
	c.rescheduleAutoLocked()
	c.publishLocked(next)
	return next
}

// SetRequestedCount stores the marker count for the next game, sanitizing
// free-form input with ParseCount.
func (c *Controller) SetRequestedCount(text string) *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := ParseCount(text)
	if n == c.state.RequestedCount {
		return c.state
	}
	next := c.state.clone()
	next.RequestedCount = n
	c.publishLocked(next)
	return next
}

// DismissWinModal hides the win dialog. Status is not affected.
func (c *Controller) DismissWinModal() *Snapshot {
	return c.dismiss(func(s *Snapshot) *bool { return &s.ShowWinModal })
}

// DismissLoseModal hides the lose dialog. Status is not affected.
func (c *Controller) DismissLoseModal() *Snapshot {
	return c.dismiss(func(s *Snapshot) *bool { return &s.ShowLoseModal })
}

func (c *Controller) dismiss(flag func(*Snapshot) *bool) *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !*flag(c.state) {
		return c.state
	}
	next := c.state.clone()
	*flag(next) = false
	c.publishLocked(next)
	return next
}

// decayTick ages clicked markers, removes expired ones and detects the win.
func (c *Controller) decayTick(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen || c.state.Status != StatusPlaying {
		return
	}
	if !c.state.hasClicked() {
		return
	}

	next := c.state.clone()
	kept := next.Markers[:0]
	for _, m := range next.Markers {
		if m.Clicked {
			m.Remaining = decay(m.Remaining)
			if m.Remaining <= 0 {
				continue
			}
			m.Opacity = m.Remaining / InitialRemaining * 100
		}
		kept = append(kept, m)
	}
	next.Markers = kept

	if len(next.Markers) == 0 {
		next.Status = StatusAllCleared
		next.AutoPlay = false
		next.ShowWinModal = true
		c.publishLocked(next)
		c.stopGameLocked()
		c.log.Info().Int("markers", next.Total).Int("elapsed", next.Elapsed).Msg("all cleared")
		c.emit(Event{Type: EventWon, Total: next.Total, Elapsed: next.Elapsed})
		return
	}
	c.publishLocked(next)
}

// decay subtracts one step and snaps the result to a 0.001 grid, so a marker
// starting at InitialRemaining reaches exactly zero after 30 ticks.
func decay(remaining float64) float64 {
	return math.Round((remaining-DecayStep)*1000) / 1000
}

// elapsedTick advances the running clock.
func (c *Controller) elapsedTick(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen || c.state.Status != StatusPlaying {
		return
	}
	next := c.state.clone()
	next.Elapsed += ElapsedStep
	c.publishLocked(next)
}

// autoTick clicks the expected marker on the player's behalf.
func (c *Controller) autoTick(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.autoGen || c.state.Status != StatusPlaying || !c.state.AutoPlay {
		return
	}
	c.clickLocked(c.state.Current)
}

// startGameLocked schedules the decay and elapsed tickers for a new instance.
func (c *Controller) startGameLocked() {
	c.gen++
	gen := c.gen
	c.stopDecay = c.every(DecayPeriod, func() { c.decayTick(gen) })
	c.stopClock = c.every(ElapsedPeriod, func() { c.elapsedTick(gen) })
}

// stopGameLocked cancels every ticker of the current instance.
func (c *Controller) stopGameLocked() {
	c.gen++
	if c.stopDecay != nil {
		c.stopDecay()
		c.stopDecay = nil
	}
	if c.stopClock != nil {
		c.stopClock()
		c.stopClock = nil
	}
	c.stopAutoLocked()
}

func (c *Controller) stopAutoLocked() {
	c.autoGen++
	if c.stopAuto != nil {
		c.stopAuto()
		c.stopAuto = nil
	}
}

// rescheduleAutoLocked restarts the auto-advance ticker so its next click
// fires one full period after the latest change.
func (c *Controller) rescheduleAutoLocked() {
	c.stopAutoLocked()
	if c.state.Status != StatusPlaying || !c.state.AutoPlay {
		return
	}
	gen := c.autoGen
	c.stopAuto = c.every(AutoPeriod, func() { c.autoTick(gen) })
}

// every runs fn on each tick of period until the returned stop func or Close
// is called. The ticker exists once every returns, so a fake clock sees it
// immediately; stop removes it just as synchronously.
func (c *Controller) every(period time.Duration, fn func()) (stop func()) {
	ctx, cancel := context.WithCancel(c.ctx)
	t := c.clock.NewTicker(period)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.Chan():
				fn()
			}
		}
	}()
	return func() {
		cancel()
		t.Stop()
	}
}

func (c *Controller) publishLocked(next *Snapshot) {
	c.state = next
	c.snapshot.Store(next)
}

func (c *Controller) emit(ev Event) {
	select {
	case c.events <- ev:
	default:
		c.log.Warn().Stringer("event", ev.Type).Msg("event channel full, dropping event")
	}
}
