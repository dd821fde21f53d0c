package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"

	"github.com/tomz197/points/internal/config"
	"github.com/tomz197/points/internal/game"
	"github.com/tomz197/points/internal/logging"
	"github.com/tomz197/points/internal/loop"
	"github.com/tomz197/points/internal/loop/client"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	// The terminal belongs to the game; anything below warn would scribble over it.
	level := cfg.Log.Level
	if logging.ParseLevel(level) < zerolog.WarnLevel {
		level = "warn"
	}
	logging.Setup(level, false)

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to enable raw mode: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reader := bufio.NewReader(os.Stdin)
	opts := client.ClientOptions{
		Username:     os.Getenv("USER"),
		Area:         game.Area{Width: cfg.Game.AreaWidth, Height: cfg.Game.AreaHeight},
		DefaultCount: cfg.Game.DefaultCount,
	}
	if err := loop.Run(ctx, reader, os.Stdout, opts); err != nil {
		_ = term.Restore(fd, oldState)
		log.Error().Err(err).Msg("game error")
		os.Exit(1)
	}
}
