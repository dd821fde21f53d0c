package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"
	"github.com/rs/zerolog/log"

	"github.com/tomz197/points/internal/config"
	"github.com/tomz197/points/internal/draw"
	"github.com/tomz197/points/internal/game"
	applog "github.com/tomz197/points/internal/logging"
	"github.com/tomz197/points/internal/loop/client"
	"github.com/tomz197/points/internal/loop/server"
	"github.com/tomz197/points/internal/metrics"
)

// Session registry shared by all SSH clients
var (
	registry     *server.Server
	cancelServer context.CancelFunc
	serverCtx    context.Context
	serverOnce   sync.Once
	cfg          *config.Config
)

func main() {
	var err error
	cfg, err = config.Load(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	applog.Setup(cfg.Log.Level, cfg.Log.Pretty)

	workingDir, workErr := os.Getwd()
	if workErr != nil {
		log.Warn().Err(workErr).Msg("failed to get working directory")
	}
	log.Info().
		Str("host", cfg.SSH.Host).
		Str("port", cfg.SSH.Port).
		Str("hostKeyPath", cfg.SSH.HostKey).
		Str("workingDir", workingDir).
		Msg("SSH config")

	// Initialize and start the shared session registry
	serverOnce.Do(func() {
		serverCtx, cancelServer = context.WithCancel(context.Background())
		registry = server.NewServer(server.WithLogger(applog.Component("registry")))
		go registry.Run(serverCtx)
		log.Info().Msg("session registry started")
	})

	var metricsSrv *http.Server
	if cfg.Metrics.Addr != "" {
		metricsSrv = &http.Server{Addr: cfg.Metrics.Addr, Handler: metrics.Handler()}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("metrics server error")
			}
		}()
		log.Info().Str("addr", cfg.Metrics.Addr).Msg("serving metrics")
	}

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(cfg.SSH.Host, cfg.SSH.Port)),
		wish.WithMiddleware(
			gameMiddleware,
			activeterm.Middleware(),
			logging.Middleware(),
		),
		// Set TCP_NODELAY to reduce latency for clicks
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}

	if cfg.SSH.HostKey != "" {
		opts = append(opts, wish.WithHostKeyPath(cfg.SSH.HostKey))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create server")
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	log.Info().Str("addr", net.JoinHostPort(cfg.SSH.Host, cfg.SSH.Port)).Msg("starting SSH server")
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-done
	log.Info().Msg("shutting down server...")

	// Notify players and wait for them to disconnect
	if registry != nil {
		log.Info().Int("players", registry.Players()).Msg("notifying connected players about shutdown")
		registry.Shutdown(15 * time.Second)
		cancelServer()
		log.Info().Msg("session registry stopped")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(ctx)
	}
	if err := s.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("shutdown error")
	}
}

// gameMiddleware handles SSH sessions and runs a game client per session.
func gameMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}

		log.Info().
			Str("user", sess.User()).
			Str("terminal", pty.Term).
			Int("width", pty.Window.Width).
			Int("height", pty.Window.Height).
			Msg("new game session")

		// Create a terminal size tracker that updates on window changes
		sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)

		// Listen for window size changes in a goroutine
		go func() {
			for win := range winCh {
				sizeTracker.update(win.Width, win.Height)
			}
		}()

		reader := bufio.NewReader(sess)
		clientOpts := client.ClientOptions{
			TermSizeFunc: sizeTracker.getSize,
			Username:     sess.User(),
			Frontend:     server.FrontendSSH,
			Area:         game.Area{Width: cfg.Game.AreaWidth, Height: cfg.Game.AreaHeight},
			DefaultCount: cfg.Game.DefaultCount,
		}

		// Games live as long as the session or the registry
		ctx, cancel := context.WithCancel(serverCtx)
		defer cancel()
		go func() {
			select {
			case <-sess.Context().Done():
				cancel()
			case <-ctx.Done():
			}
		}()

		c := client.NewClient(ctx, registry, reader, sess, clientOpts)
		if err := c.Run(); err != nil {
			log.Error().Err(err).Str("user", sess.User()).Msg("game error")
		}

		log.Info().Str("user", sess.User()).Msg("session ended")
		next(sess)
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
