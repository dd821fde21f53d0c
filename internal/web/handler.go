// Package web serves the browser front end: the game page, a websocket per
// player, health and metrics.
package web

import (
	"context"
	_ "embed"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tomz197/points/internal/game"
	"github.com/tomz197/points/internal/loop/server"
	"github.com/tomz197/points/internal/metrics"
)

//go:embed static/index.html
var indexHTML []byte

// Registry is the session registry the handler reports to.
type Registry interface {
	server.GameServer
	Sessions() []server.SessionInfo
}

// Options configures the browser front end.
type Options struct {
	// AllowedOrigins restricts cross-origin requests and websocket upgrades.
	// Empty allows every origin.
	AllowedOrigins []string
	DefaultCount   int
	Clock          clockwork.Clock // Drives game tickers
	Logger         *zerolog.Logger
}

// Handler owns the HTTP routes and the websocket sessions.
type Handler struct {
	ctx      context.Context
	registry Registry
	opts     Options
	upgrader websocket.Upgrader
	log      zerolog.Logger
	sessions sync.WaitGroup
}

// NewHandler creates a handler. Games started by its sessions stop when ctx
// is cancelled.
func NewHandler(ctx context.Context, registry Registry, opts Options) *Handler {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.DefaultCount <= 0 {
		opts.DefaultCount = game.DefaultCount
	}
	logger := log.With().Str("component", "web").Logger()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	h := &Handler{
		ctx:      ctx,
		registry: registry,
		opts:     opts,
		log:      logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// Router returns the gin engine with every route registered.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.requestLogger())

	r.GET("/", h.index)
	r.GET("/ws", h.serveWS)
	r.GET("/healthz", h.health)
	r.GET("/api/sessions", h.listSessions)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	return r
}

// HTTPHandler returns the router wrapped with the CORS policy.
func (h *Handler) HTTPHandler() http.Handler {
	origins := h.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(h.Router())
}

// Wait blocks until every websocket session has ended.
func (h *Handler) Wait() {
	h.sessions.Wait()
}

func (h *Handler) index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "players": h.registry.Players()})
}

type sessionJSON struct {
	ID        string    `json:"id"`
	Username  string    `json:"username,omitempty"`
	Frontend  string    `json:"frontend"`
	Connected time.Time `json:"connected"`
}

func (h *Handler) listSessions(c *gin.Context) {
	sessions := h.registry.Sessions()
	out := make([]sessionJSON, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, sessionJSON{
			ID:        s.ID.String(),
			Username:  s.Username,
			Frontend:  s.Frontend,
			Connected: s.Connected,
		})
	}
	c.JSON(http.StatusOK, gin.H{"players": len(out), "sessions": out})
}

func (h *Handler) serveWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// The upgrader has already replied with an error status.
		h.log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	h.sessions.Add(1)
	defer h.sessions.Done()

	handle := h.registry.RegisterClient(server.FrontendWeb, c.Query("name"))
	logger := h.log.With().Stringer("session", handle.ID).Str("remote", c.ClientIP()).Logger()

	ctrl := game.NewController(h.ctx,
		game.WithClock(h.opts.Clock),
		game.WithLogger(logger),
		game.WithRequestedCount(h.opts.DefaultCount),
	)

	logger.Info().Msg("websocket session started")
	newSession(conn, ctrl, h.registry, handle, logger).Run()
	logger.Info().Msg("websocket session ended")
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if len(h.opts.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || slices.Contains(h.opts.AllowedOrigins, origin)
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
