package game

import (
	"context"
	"math"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestController(t *testing.T, opts ...Option) (*Controller, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	opts = append([]Option{
		WithClock(clock),
		WithPlacer(NewRandomPlacer(42)),
		WithLogger(zerolog.Nop()),
	}, opts...)
	c := NewController(context.Background(), opts...)
	t.Cleanup(c.Close)
	return c, clock
}

// decayN runs n decay ticks of the current instance directly.
func decayN(c *Controller, n int) {
	for i := 0; i < n; i++ {
		c.decayTick(c.gen)
	}
}

func TestNewController_StartsInStartState(t *testing.T) {
	c, _ := newTestController(t)

	s := c.Snapshot()
	assert.Equal(t, StatusStart, s.Status)
	assert.Empty(t, s.Markers)
	assert.Equal(t, 1, s.Current)
	assert.Equal(t, DefaultCount, s.RequestedCount)
	assert.False(t, s.AutoPlay)
}

func TestStartGame_CreatesDenseMarkerSet(t *testing.T) {
	for _, count := range []int{1, 2, 5, 50} {
		c, _ := newTestController(t)
		s := c.StartGame(count, Area{Width: 300, Height: 200})

		require.Len(t, s.Markers, count)
		numbers := make([]int, 0, count)
		for _, m := range s.Markers {
			numbers = append(numbers, m.Number)
			assert.False(t, m.Clicked)
			assert.Equal(t, InitialRemaining, m.Remaining)
			assert.GreaterOrEqual(t, m.Location.X, 0)
			assert.LessOrEqual(t, m.Location.X, 300-MarkerSize)
			assert.GreaterOrEqual(t, m.Location.Y, 0)
			assert.LessOrEqual(t, m.Location.Y, 200-MarkerSize)
		}
		sort.Ints(numbers)
		for i, n := range numbers {
			assert.Equal(t, i+1, n)
		}
		assert.Equal(t, StatusPlaying, s.Status)
		assert.Equal(t, count, s.Total)
		assert.Equal(t, 1, s.Current)
		assert.Equal(t, 0, s.Elapsed)
	}
}

func TestStartGame_ClampsCountAndDefaultsArea(t *testing.T) {
	c, _ := newTestController(t)

	s := c.StartGame(0, Area{})
	assert.Len(t, s.Markers, 1)
	assert.Equal(t, Area{Width: DefaultAreaWidth, Height: DefaultAreaHeight}, s.Area)

	s = c.StartGame(-7, Area{Width: 100})
	assert.Len(t, s.Markers, 1)
	assert.Equal(t, Area{Width: 100, Height: DefaultAreaHeight}, s.Area)
}

func TestStartGame_ReplacesPreviousGame(t *testing.T) {
	c, _ := newTestController(t)

	c.StartGame(3, Area{})
	c.ClickMarker(1)
	c.ToggleAutoPlay()
	c.ClickMarker(3) // lose

	s := c.StartGame(2, Area{})
	assert.Equal(t, StatusPlaying, s.Status)
	assert.Len(t, s.Markers, 2)
	assert.Equal(t, 1, s.Current)
	assert.False(t, s.AutoPlay)
	assert.False(t, s.ShowLoseModal)
	assert.False(t, s.ShowWinModal)
	for _, m := range s.Markers {
		assert.False(t, m.Clicked)
	}
}

func TestClickMarker_InOrderAdvances(t *testing.T) {
	c, _ := newTestController(t)
	c.StartGame(3, Area{})

	s := c.ClickMarker(1)
	assert.Equal(t, 2, s.Current)
	m, ok := s.Marker(1)
	require.True(t, ok)
	assert.True(t, m.Clicked)

	s = c.ClickMarker(2)
	assert.Equal(t, 3, s.Current)
	m, ok = s.Marker(1)
	require.True(t, ok)
	assert.True(t, m.Clicked, "clicked flag never reverts")
}

func TestClickMarker_OutOfOrderLoses(t *testing.T) {
	c, _ := newTestController(t)
	c.StartGame(3, Area{})
	c.ClickMarker(1)
	c.ToggleAutoPlay()
	before := c.Snapshot()

	s := c.ClickMarker(3)
	assert.Equal(t, StatusGameOver, s.Status)
	assert.True(t, s.ShowLoseModal)
	assert.False(t, s.AutoPlay)
	assert.Equal(t, before.Markers, s.Markers)
	assert.Equal(t, 2, s.Current)

	ev := <-c.Events()
	assert.Equal(t, EventStarted, ev.Type)
	ev = <-c.Events()
	assert.Equal(t, EventLost, ev.Type)
	assert.Equal(t, 3, ev.Total)
}

func TestClickMarker_IgnoredOutsideGame(t *testing.T) {
	c, _ := newTestController(t)

	s := c.ClickMarker(1)
	assert.Equal(t, StatusStart, s.Status)
	s = c.ClickMarker(4)
	assert.Equal(t, StatusStart, s.Status)

	c.StartGame(1, Area{})
	c.ClickMarker(1)
	decayN(c, 30)
	require.Equal(t, StatusAllCleared, c.Snapshot().Status)

	s = c.ClickMarker(5)
	assert.Equal(t, StatusAllCleared, s.Status)
	assert.False(t, s.ShowLoseModal)
}

func TestClickMarker_AfterGameOver(t *testing.T) {
	c, _ := newTestController(t)
	c.StartGame(3, Area{})
	c.ClickMarker(2)
	c.DismissLoseModal()

	// The expected marker no longer counts once the game is lost.
	s := c.ClickMarker(1)
	assert.Equal(t, StatusGameOver, s.Status)
	assert.Equal(t, 1, s.Current)
	m, _ := s.Marker(1)
	assert.False(t, m.Clicked)

	// A wrong one raises the lose dialog again.
	s = c.ClickMarker(3)
	assert.Equal(t, StatusGameOver, s.Status)
	assert.True(t, s.ShowLoseModal)
}

func TestDecay_RemovesMarkerAfterThirtyTicks(t *testing.T) {
	c, _ := newTestController(t)
	c.StartGame(2, Area{})
	c.ClickMarker(1)

	decayN(c, 29)
	m, ok := c.Snapshot().Marker(1)
	require.True(t, ok)
	assert.InDelta(t, 0.1, m.Remaining, 1e-9)
	assert.InDelta(t, 0.1/3*100, m.Opacity, 1e-9)

	unclicked, ok := c.Snapshot().Marker(2)
	require.True(t, ok)
	assert.Equal(t, InitialRemaining, unclicked.Remaining, "unclicked markers do not decay")

	decayN(c, 1)
	_, ok = c.Snapshot().Marker(1)
	assert.False(t, ok)
	assert.Equal(t, StatusPlaying, c.Snapshot().Status)
}

func TestDecay_OpacityFollowsRemaining(t *testing.T) {
	c, _ := newTestController(t)
	c.StartGame(1, Area{})
	c.ClickMarker(1)

	for i := 1; i < 30; i++ {
		decayN(c, 1)
		m, ok := c.Snapshot().Marker(1)
		require.True(t, ok)
		want := InitialRemaining - float64(i)*DecayStep
		assert.InDelta(t, want, m.Remaining, 1e-9)
		assert.InDelta(t, want/InitialRemaining*100, m.Opacity, 1e-9)
	}
}

func TestDecay_NoClickedMarkersKeepsSnapshot(t *testing.T) {
	c, _ := newTestController(t)
	c.StartGame(3, Area{})

	before := c.Snapshot()
	decayN(c, 5)
	assert.Same(t, before, c.Snapshot())
}

func TestDecay_SingleMarkerWin(t *testing.T) {
	c, _ := newTestController(t)
	c.StartGame(1, Area{})

	s := c.ClickMarker(1)
	assert.Equal(t, 2, s.Current)
	c.ToggleAutoPlay()

	decayN(c, 30)
	s = c.Snapshot()
	assert.Equal(t, StatusAllCleared, s.Status)
	assert.True(t, s.ShowWinModal)
	assert.False(t, s.AutoPlay)
	assert.Empty(t, s.Markers)

	<-c.Events() // started
	ev := <-c.Events()
	assert.Equal(t, EventWon, ev.Type)
	assert.Equal(t, 1, ev.Total)
}

func TestDecay_WinRequiresEveryMarker(t *testing.T) {
	c, _ := newTestController(t)
	c.StartGame(3, Area{})
	c.ClickMarker(1)
	c.ClickMarker(2)

	decayN(c, 60)
	s := c.Snapshot()
	assert.Equal(t, StatusPlaying, s.Status)
	assert.Len(t, s.Markers, 1)

	c.ClickMarker(3)
	decayN(c, 30)
	assert.Equal(t, StatusAllCleared, c.Snapshot().Status)
}

func TestTicks_DroppedAfterGameEnds(t *testing.T) {
	c, _ := newTestController(t)
	c.StartGame(3, Area{})
	c.ClickMarker(1)
	gen := c.gen

	c.ClickMarker(3) // lose
	lost := c.Snapshot()

	c.decayTick(gen)
	c.elapsedTick(gen)
	assert.Same(t, lost, c.Snapshot())
}

func TestTicks_DroppedAfterRestart(t *testing.T) {
	c, _ := newTestController(t)
	c.StartGame(3, Area{})
	oldGen := c.gen

	c.StartGame(3, Area{})
	c.elapsedTick(oldGen)
	assert.Equal(t, 0, c.Snapshot().Elapsed)

	c.elapsedTick(c.gen)
	assert.Equal(t, ElapsedStep, c.Snapshot().Elapsed)
}

func TestToggleAutoPlay_OnlyWhilePlaying(t *testing.T) {
	c, _ := newTestController(t)

	s := c.ToggleAutoPlay()
	assert.False(t, s.AutoPlay)

	c.StartGame(2, Area{})
	s = c.ToggleAutoPlay()
	assert.True(t, s.AutoPlay)
	s = c.ToggleAutoPlay()
	assert.False(t, s.AutoPlay)
}

func TestAutoTick_AlwaysClicksExpected(t *testing.T) {
	c, _ := newTestController(t)
	c.StartGame(4, Area{})
	c.ToggleAutoPlay()

	for i := 1; i <= 4; i++ {
		c.autoTick(c.autoGen)
		s := c.Snapshot()
		assert.Equal(t, StatusPlaying, s.Status)
		assert.Equal(t, i+1, s.Current)
	}
	for _, m := range c.Snapshot().Markers {
		assert.True(t, m.Clicked)
	}
}

func TestAutoTick_PastLastMarkerLeavesCurrent(t *testing.T) {
	c, _ := newTestController(t)
	c.StartGame(2, Area{})
	c.ToggleAutoPlay()

	for i := 0; i < 5; i++ {
		c.autoTick(c.autoGen)
		s := c.Snapshot()
		assert.Equal(t, StatusPlaying, s.Status)
		assert.LessOrEqual(t, s.Current, s.Total+1)
	}
	s := c.Snapshot()
	assert.Equal(t, 3, s.Current)
	assert.Len(t, s.Markers, 2)
	assert.True(t, s.AutoPlay)

	decayN(c, 30)
	s = c.Snapshot()
	assert.Equal(t, StatusAllCleared, s.Status)
	assert.Equal(t, 3, s.Current)
}

func TestClickMarker_PastLastMarkerIgnored(t *testing.T) {
	c, _ := newTestController(t)
	c.StartGame(1, Area{})
	c.ClickMarker(1)

	before := c.Snapshot()
	assert.Same(t, before, c.ClickMarker(2))
	assert.Equal(t, StatusPlaying, c.Snapshot().Status)
	assert.Equal(t, 2, c.Snapshot().Current)
}

func TestAutoTick_StaleTickAfterToggleOff(t *testing.T) {
	c, _ := newTestController(t)
	c.StartGame(3, Area{})
	c.ToggleAutoPlay()
	gen := c.autoGen

	c.ToggleAutoPlay()
	c.autoTick(gen)
	assert.Equal(t, 1, c.Snapshot().Current)
}

func TestSetRequestedCount(t *testing.T) {
	c, _ := newTestController(t)

	assert.Equal(t, 12, c.SetRequestedCount("12").RequestedCount)
	assert.Equal(t, 1, c.SetRequestedCount("abc").RequestedCount)
	assert.Equal(t, 1, c.SetRequestedCount("-4").RequestedCount)
	assert.Equal(t, 7, c.SetRequestedCount(" 7 points").RequestedCount)
}

func TestDismissModals(t *testing.T) {
	c, _ := newTestController(t)
	c.StartGame(2, Area{})
	c.ClickMarker(2)

	s := c.DismissLoseModal()
	assert.False(t, s.ShowLoseModal)
	assert.Equal(t, StatusGameOver, s.Status)

	same := c.DismissWinModal()
	assert.Same(t, s, same)
}

func TestScenario_WrongClickOnThree(t *testing.T) {
	c, _ := newTestController(t)
	c.StartGame(3, Area{})

	s := c.ClickMarker(1)
	assert.Equal(t, 2, s.Current)
	m1, _ := s.Marker(1)
	assert.True(t, m1.Clicked)

	s = c.ClickMarker(3)
	assert.Equal(t, StatusGameOver, s.Status)
	assert.True(t, s.ShowLoseModal)
	for _, n := range []int{2, 3} {
		m, ok := s.Marker(n)
		require.True(t, ok)
		assert.False(t, m.Clicked)
		assert.Equal(t, InitialRemaining, m.Remaining)
	}
}

func TestTickers_DriveElapsedAndDecay(t *testing.T) {
	c, clock := newTestController(t)
	c.StartGame(1, Area{})
	c.ClickMarker(1)

	for i := 1; i <= 30; i++ {
		clock.Advance(DecayPeriod)
		want := InitialRemaining - float64(i)*DecayStep
		require.Eventually(t, func() bool {
			s := c.Snapshot()
			if i == 30 {
				return s.Status == StatusAllCleared
			}
			m, ok := s.Marker(1)
			return ok && math.Abs(m.Remaining-want) < 1e-9 && s.Elapsed == i*ElapsedStep
		}, time.Second, time.Millisecond, "tick %d", i)
	}

	s := c.Snapshot()
	assert.True(t, s.ShowWinModal)
	frozen := s.Elapsed

	// Tickers are gone once the game is over.
	clock.Advance(time.Second)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, frozen, c.Snapshot().Elapsed)
}

func TestTickers_AutoAdvance(t *testing.T) {
	c, clock := newTestController(t)
	c.StartGame(3, Area{})
	c.ToggleAutoPlay()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for want := 2; want <= 4; want++ {
		// decay, elapsed and auto tickers
		require.NoError(t, clock.BlockUntilContext(ctx, 3))
		clock.Advance(AutoPeriod)
		require.Eventually(t, func() bool {
			return c.Snapshot().Current == want
		}, time.Second, time.Millisecond)
	}
	assert.Equal(t, StatusPlaying, c.Snapshot().Status)
}

func TestClickMarker_ConcurrentSameNumber(t *testing.T) {
	c, _ := newTestController(t)
	c.StartGame(5, Area{})
	<-c.Events()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.ClickMarker(1)
			_ = c.Snapshot().Markers
		}()
	}
	wg.Wait()

	s := c.Snapshot()
	assert.Equal(t, StatusGameOver, s.Status)
	assert.Equal(t, 2, s.Current)
	m, ok := s.Marker(1)
	require.True(t, ok)
	assert.True(t, m.Clicked)

	ev := <-c.Events()
	assert.Equal(t, EventLost, ev.Type)
	select {
	case extra := <-c.Events():
		t.Fatalf("unexpected event %v", extra.Type)
	default:
	}
}

func TestTickers_AutoPlayRunsThroughDecayToWin(t *testing.T) {
	c, clock := newTestController(t)
	c.StartGame(2, Area{})
	c.ToggleAutoPlay()

	sawAllClicked := false
	for step := 1; step <= 120; step++ {
		clock.Advance(DecayPeriod)
		require.Eventually(t, func() bool {
			s := c.Snapshot()
			return s.Status != StatusPlaying || s.Elapsed == step*ElapsedStep
		}, time.Second, time.Millisecond, "step %d", step)

		s := c.Snapshot()
		require.LessOrEqual(t, s.Current, s.Total+1, "step %d", step)
		if s.Status == StatusPlaying && s.Current == s.Total+1 && s.AutoPlay {
			sawAllClicked = true
		}
		if s.Status == StatusAllCleared {
			break
		}
	}

	// The last decay tick may land just after the loop's final check.
	require.Eventually(t, func() bool {
		return c.Snapshot().Status == StatusAllCleared
	}, time.Second, time.Millisecond)

	s := c.Snapshot()
	assert.True(t, sawAllClicked, "auto play stayed on while the last marker decayed")
	assert.Equal(t, s.Total+1, s.Current)
	assert.True(t, s.ShowWinModal)
	assert.False(t, s.AutoPlay)
	assert.Empty(t, s.Markers)
}
