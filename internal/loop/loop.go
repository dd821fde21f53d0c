// Package loop wires a terminal session to a session registry.
package loop

import (
	"context"
	"io"

	"github.com/tomz197/points/internal/loop/client"
	"github.com/tomz197/points/internal/loop/server"
)

// Run plays a single local game session on r and w. It starts a private
// session registry, runs the client until it quits and stops the registry.
func Run(ctx context.Context, r io.ByteReader, w io.Writer, opts client.ClientOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	gs := server.NewServer()
	go gs.Run(ctx)

	c := client.NewClient(ctx, gs, r, w, opts)
	return c.Run()
}
