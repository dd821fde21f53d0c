package web

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tomz197/points/internal/game"
	"github.com/tomz197/points/internal/loop/server"
	"github.com/tomz197/points/internal/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 50 * time.Second
	maxMessageSize = 4096

	// statePushInterval bounds how often snapshots are sent while a game runs.
	statePushInterval = 50 * time.Millisecond
)

// Session is one browser connection playing its own game.
type Session struct {
	conn     *websocket.Conn
	game     *game.Controller
	registry server.GameServer
	handle   *server.ClientHandle
	send     chan []byte   // Queued non-state messages (errors)
	wake     chan struct{} // Push state now
	done     chan struct{} // Closed when the read side ends
	log      zerolog.Logger
}

func newSession(conn *websocket.Conn, ctrl *game.Controller, registry server.GameServer, handle *server.ClientHandle, log zerolog.Logger) *Session {
	return &Session{
		conn:     conn,
		game:     ctrl,
		registry: registry,
		handle:   handle,
		send:     make(chan []byte, 16),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
		log:      log,
	}
}

// Run serves the connection until either side closes it.
func (s *Session) Run() {
	writerDone := make(chan struct{})
	go func() {
		s.writePump()
		close(writerDone)
	}()

	s.readPump()
	close(s.done)
	<-writerDone

	s.game.Close()
	s.drainGameEvents()
	s.registry.UnregisterClient(s.handle.ID)
}

func (s *Session) readPump() {
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				s.log.Warn().Err(err).Msg("websocket read failed")
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))

		msg, err := decodeCommand(data)
		if err != nil {
			s.log.Debug().Err(err).Msg("rejected message")
			s.enqueue(ServerMessage{Type: MsgError, Error: err.Error()})
			continue
		}
		apply(s.game, msg)

		select {
		case s.wake <- struct{}{}:
		default:
		}
	}
}

func (s *Session) writePump() {
	ping := time.NewTicker(pingPeriod)
	push := time.NewTicker(statePushInterval)
	defer func() {
		ping.Stop()
		push.Stop()
		_ = s.conn.Close()
	}()

	var last *game.Snapshot
	players := -1
	pushState := func() error {
		snap := s.game.Snapshot()
		n := s.registry.Players()
		if snap == last && n == players {
			return nil
		}
		last, players = snap, n
		return s.writeJSON(ServerMessage{Type: MsgState, Data: snap, Players: n})
	}

	if err := pushState(); err != nil {
		return
	}

	for {
		select {
		case <-s.done:
			s.writeClose(websocket.CloseNormalClosure, "")
			return

		case msg := <-s.send:
			if err := s.write(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-s.wake:
			if err := pushState(); err != nil {
				return
			}

		case <-push.C:
			s.drainGameEvents()
			if err := pushState(); err != nil {
				return
			}

		case ev, ok := <-s.handle.EventsCh:
			if !ok {
				s.writeClose(websocket.CloseGoingAway, "")
				return
			}
			if ev.Type == server.EventServerShutdown {
				_ = s.writeJSON(ServerMessage{Type: MsgShutdown})
				s.writeClose(websocket.CloseGoingAway, "server shutting down")
				return
			}

		case <-ping.C:
			if err := s.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Session) write(messageType int, data []byte) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteMessage(messageType, data); err != nil {
		s.log.Debug().Err(err).Msg("websocket write failed")
		return err
	}
	return nil
}

func (s *Session) writeJSON(msg ServerMessage) error {
	data, err := encode(msg)
	if err != nil {
		s.log.Error().Err(err).Msg("dropping message")
		return nil
	}
	return s.write(websocket.TextMessage, data)
}

func (s *Session) writeClose(code int, text string) {
	_ = s.write(websocket.CloseMessage, websocket.FormatCloseMessage(code, text))
}

// enqueue hands a message to the writer, dropping it when the queue is full.
func (s *Session) enqueue(msg ServerMessage) {
	data, err := encode(msg)
	if err != nil {
		s.log.Error().Err(err).Msg("dropping message")
		return
	}
	select {
	case s.send <- data:
	default:
		s.log.Warn().Str("type", msg.Type).Msg("send queue full, dropping message")
	}
}

func (s *Session) drainGameEvents() {
	for {
		select {
		case ev := <-s.game.Events():
			metrics.Observe(server.FrontendWeb, ev)
		default:
			return
		}
	}
}
