// Package main runs the Battlesnake HTTP server.
//
// Usage:
//
//	battlesnake [flags] <strategy>
//
// where strategy is one of random, simple or nearest. Flags default to
// environment variables, and a .env file in the working directory is loaded
// first if present.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brensch/floodsnek/config"
	"github.com/brensch/floodsnek/logging"
	"github.com/brensch/floodsnek/server"
	"github.com/brensch/floodsnek/strategy"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "battlesnake: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	dotenv, err := config.LoadDotEnv()
	if err != nil {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.LoadServer(os.Args[1:], os.LookupEnv)
	if err != nil {
		return err
	}

	logger, err := logging.New(os.Stderr, logging.Options{Format: cfg.LogFormat, Level: cfg.LogLevel})
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	if dotenv {
		logger.Debug("loaded .env")
	}

	s, err := strategy.New(cfg.Strategy, cfg.StrategyOptions()...)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.New(s, cfg.Appearance, logger),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr, "strategy", s.Name(), "parallel", cfg.Parallel)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
