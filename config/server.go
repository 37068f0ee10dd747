// Package config turns flags, environment variables and .env files into the
// settings each process starts with.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/brensch/floodsnek/logging"
	"github.com/brensch/floodsnek/strategy"
)

var ErrNoStrategy = errors.New("no strategy given")

// Appearance is what GET / reports to the game engine.
type Appearance struct {
	Author  string
	Color   string
	Head    string
	Tail    string
	Version string
}

var DefaultAppearance = Appearance{
	Author:  "ni2scmn",
	Color:   "#FFD700",
	Head:    "bee",
	Tail:    "bolt",
	Version: "1.0.0",
}

// Server configures the battlesnake HTTP process.
type Server struct {
	Addr     string
	Strategy string
	Seed     int64
	Parallel bool

	LogFormat string
	LogLevel  slog.Level

	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration

	Appearance Appearance
}

// LoadServer parses args (without the program name). The strategy is the
// first positional argument, falling back to STRATEGY. Every flag defaults
// to an environment variable read through lookup.
func LoadServer(args []string, lookup LookupFunc) (Server, error) {
	env := NewEnv(lookup)
	fs := flag.NewFlagSet("battlesnake", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var cfg Server
	var level string
	fs.StringVar(&cfg.Addr, "addr", ":"+env.String("PORT", "8000"), "Listen address")
	fs.Int64Var(&cfg.Seed, "seed", env.Int64("SEED", 0), "Seed for random tie-breaks (0 = time based)")
	fs.BoolVar(&cfg.Parallel, "parallel", env.Bool("PARALLEL_SCORING", false), "Score candidate moves concurrently")
	fs.StringVar(&cfg.LogFormat, "log-format", env.String("LOG_FORMAT", logging.FormatText), "Log format: text, json or pretty")
	fs.StringVar(&level, "log-level", env.String("LOG_LEVEL", "info"), "Log level: debug, info, warn or error")
	fs.DurationVar(&cfg.ReadHeaderTimeout, "read-header-timeout", env.Duration("READ_HEADER_TIMEOUT", 5*time.Second), "HTTP read header timeout")
	fs.DurationVar(&cfg.WriteTimeout, "write-timeout", env.Duration("WRITE_TIMEOUT", 10*time.Second), "HTTP write timeout")
	fs.StringVar(&cfg.Appearance.Author, "author", env.String("AUTHOR", DefaultAppearance.Author), "Author shown on the info endpoint")
	fs.StringVar(&cfg.Appearance.Color, "color", env.String("COLOR", DefaultAppearance.Color), "Snake colour")
	fs.StringVar(&cfg.Appearance.Head, "head", env.String("HEAD", DefaultAppearance.Head), "Snake head")
	fs.StringVar(&cfg.Appearance.Tail, "tail", env.String("TAIL", DefaultAppearance.Tail), "Snake tail")
	cfg.Appearance.Version = DefaultAppearance.Version

	if err := fs.Parse(args); err != nil {
		return Server{}, fmt.Errorf("parse flags: %w", err)
	}

	cfg.Strategy = env.String("STRATEGY", "")
	if fs.NArg() > 0 {
		cfg.Strategy = fs.Arg(0)
	}
	cfg.Strategy = strings.ToLower(strings.TrimSpace(cfg.Strategy))
	if cfg.Strategy == "" {
		return Server{}, fmt.Errorf("%w: pass one of %s", ErrNoStrategy, strings.Join(strategy.Names(), ", "))
	}
	if _, err := strategy.New(cfg.Strategy); err != nil {
		return Server{}, err
	}

	var err error
	if cfg.LogLevel, err = logging.ParseLevel(level); err != nil {
		return Server{}, err
	}
	if _, err := logging.New(io.Discard, logging.Options{Format: cfg.LogFormat}); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// StrategyOptions converts the config into strategy constructor options.
func (c Server) StrategyOptions() []strategy.Option {
	opts := []strategy.Option{strategy.WithParallelScoring(c.Parallel)}
	if c.Seed != 0 {
		opts = append(opts, strategy.WithSeed(c.Seed))
	}
	return opts
}
