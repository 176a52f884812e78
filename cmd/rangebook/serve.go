package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/quartz"
	"github.com/lox/rangebook/internal/rangestore"
	"github.com/lox/rangebook/internal/server"
)

// ServeCmd runs the HTTP API
type ServeCmd struct {
	Addr string `short:"a" help:"Server address to bind to (overrides config)"`
}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, logger, err := g.setup()
	if err != nil {
		return err
	}
	clock := quartz.NewReal()

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	hub := server.NewHub(logger, clock)
	a, err := openApp(ctx, cfg, logger, clock, rangestore.WithListener(hub))
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	addr := cfg.ServerAddress()
	if c.Addr != "" {
		addr = c.Addr
	}

	srv := server.New(addr, a.repo, a.lib, hub, logger, clock)
	logger.Info("Starting rangebook server",
		"addr", addr,
		"backend", cfg.Storage.Backend,
		"version", version)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
		return err
	}
	logger.Info("Server stopped")
	return nil
}
