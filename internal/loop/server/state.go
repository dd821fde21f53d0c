package server

import (
	"time"

	"github.com/google/uuid"
)

// Front ends a session can come from. Used as the metrics label.
const (
	FrontendTerminal = "terminal"
	FrontendSSH      = "ssh"
	FrontendWeb      = "web"
)

// ClientHandle represents a session's registration with the server.
type ClientHandle struct {
	ID        uuid.UUID
	Username  string           // Display name for this session
	Frontend  string           // One of the Frontend constants
	Connected time.Time        // Registration time
	EventsCh  chan ClientEvent // Events sent to the session (shutdown, ...)
}

// ClientEvent represents an event sent from server to a session.
type ClientEvent struct {
	Type ClientEventType
}

// ClientEventType identifies the type of client event.
type ClientEventType int

const (
	EventServerShutdown ClientEventType = iota
)

// RegistrySnapshot is an immutable view of the connected sessions.
type RegistrySnapshot struct {
	Players    int
	ByFrontend map[string]int
}

// SessionInfo describes one connected session.
type SessionInfo struct {
	ID        uuid.UUID
	Username  string
	Frontend  string
	Connected time.Time
}
