package game

// EventType identifies what happened to a game.
type EventType int

const (
	EventStarted EventType = iota
	EventWon
	EventLost
)

func (t EventType) String() string {
	switch t {
	case EventStarted:
		return "started"
	case EventWon:
		return "won"
	case EventLost:
		return "lost"
	default:
		return "unknown"
	}
}

// Event is sent to the presentation when a game starts or ends.
type Event struct {
	Type    EventType
	Total   int // Markers in the game
	Elapsed int // Elapsed counter at the time of the event
}

// eventBuffer is the capacity of the events channel. Events are dropped when
// nobody drains it.
const eventBuffer = 16
