// Package server keeps track of the live game sessions of every front end.
package server

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tomz197/points/internal/loop/config"
	"github.com/tomz197/points/internal/metrics"
)

// GameServer is the interface sessions use to communicate with the server.
// Decouples the front ends from the concrete Server implementation.
type GameServer interface {
	RegisterClient(frontend, username string) *ClientHandle
	UnregisterClient(id uuid.UUID)
	Players() int
}

// Server owns the session registry. Registrations go through channels and
// are applied by Run; readers use the published snapshot.
type Server struct {
	clients      map[uuid.UUID]*ClientHandle
	snapshot     atomic.Pointer[RegistrySnapshot]
	registerCh   chan *ClientHandle
	unregisterCh chan uuid.UUID
	done         chan struct{}
	shuttingDown atomic.Bool
	mu           sync.RWMutex

	clock clockwork.Clock
	log   zerolog.Logger
}

// Compile-time check that Server implements GameServer.
var _ GameServer = (*Server)(nil)

// Option configures a Server.
type Option func(*Server)

// WithClock replaces the clock used for shutdown polling and timestamps.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Server) { s.clock = clock }
}

// WithLogger sets the logger for session lifecycle messages.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// NewServer creates an empty registry.
func NewServer(opts ...Option) *Server {
	s := &Server{
		clients:      make(map[uuid.UUID]*ClientHandle),
		registerCh:   make(chan *ClientHandle, 16),
		unregisterCh: make(chan uuid.UUID, 16),
		done:         make(chan struct{}),
		clock:        clockwork.NewRealClock(),
		log:          log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.snapshot.Store(&RegistrySnapshot{ByFrontend: map[string]int{}})
	return s
}

// Run applies registrations until the context is cancelled.
func (s *Server) Run(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return
		case handle := <-s.registerCh:
			s.register(handle)
		case id := <-s.unregisterCh:
			s.unregister(id)
		}
	}
}

// Shutdown notifies all connected sessions and waits for them to disconnect
// (up to the given timeout). Sessions registering afterwards are notified on
// arrival. The caller should cancel the server context after Shutdown returns.
func (s *Server) Shutdown(timeout time.Duration) {
	s.shuttingDown.Store(true)

	s.mu.RLock()
	for _, handle := range s.clients {
		notify(handle)
	}
	s.mu.RUnlock()

	deadline := s.clock.After(timeout)
	ticker := s.clock.NewTicker(config.ShutdownPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			s.log.Warn().Int("remaining", s.Players()).Msg("shutdown timeout reached")
			return
		case <-ticker.Chan():
			if s.Players() == 0 {
				return
			}
		}
	}
}

// RegisterClient registers a new session and returns its handle.
func (s *Server) RegisterClient(frontend, username string) *ClientHandle {
	handle := &ClientHandle{
		ID:        uuid.New(),
		Username:  truncate(username, config.MaxUsernameLength),
		Frontend:  frontend,
		Connected: s.clock.Now(),
		EventsCh:  make(chan ClientEvent, 16),
	}
	select {
	case s.registerCh <- handle:
	case <-s.done:
	}
	return handle
}

// UnregisterClient removes a session. Its EventsCh is closed.
func (s *Server) UnregisterClient(id uuid.UUID) {
	select {
	case s.unregisterCh <- id:
	case <-s.done:
	}
}

// Players returns the number of connected sessions.
func (s *Server) Players() int {
	return s.snapshot.Load().Players
}

// Snapshot returns the latest registry snapshot.
func (s *Server) Snapshot() *RegistrySnapshot {
	return s.snapshot.Load()
}

// Sessions lists connected sessions, oldest first.
func (s *Server) Sessions() []SessionInfo {
	s.mu.RLock()
	out := make([]SessionInfo, 0, len(s.clients))
	for _, h := range s.clients {
		out = append(out, SessionInfo{ID: h.ID, Username: h.Username, Frontend: h.Frontend, Connected: h.Connected})
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Connected.Before(out[j].Connected) })
	return out
}

func (s *Server) register(handle *ClientHandle) {
	s.mu.Lock()
	s.clients[handle.ID] = handle
	s.publishLocked()
	s.mu.Unlock()

	metrics.ActiveSessions.WithLabelValues(handle.Frontend).Inc()
	s.log.Info().Stringer("session", handle.ID).Str("frontend", handle.Frontend).Str("user", handle.Username).Msg("session registered")

	if s.shuttingDown.Load() {
		notify(handle)
	}
}

func (s *Server) unregister(id uuid.UUID) {
	s.mu.Lock()
	handle, ok := s.clients[id]
	if ok {
		close(handle.EventsCh)
		delete(s.clients, id)
		s.publishLocked()
	}
	s.mu.Unlock()

	if !ok {
		return
	}
	metrics.ActiveSessions.WithLabelValues(handle.Frontend).Dec()
	s.log.Info().Stringer("session", id).Dur("duration", s.clock.Since(handle.Connected)).Msg("session ended")
}

func (s *Server) publishLocked() {
	snap := &RegistrySnapshot{
		Players:    len(s.clients),
		ByFrontend: make(map[string]int),
	}
	for _, h := range s.clients {
		snap.ByFrontend[h.Frontend]++
	}
	s.snapshot.Store(snap)
}

func notify(handle *ClientHandle) {
	select {
	case handle.EventsCh <- ClientEvent{Type: EventServerShutdown}:
	default:
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
