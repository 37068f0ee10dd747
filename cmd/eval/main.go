// Command eval benchmarks strategies by playing local games on a range of
// board sizes. Every game is archived to Parquet and the per-case averages
// are written to logs/agg_results_<timestamp>.json for cmd/compare.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/floodsnek/arena"
	"github.com/brensch/floodsnek/config"
	"github.com/brensch/floodsnek/logging"
	"github.com/brensch/floodsnek/rules"
	"github.com/brensch/floodsnek/store"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "eval: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if _, err := config.LoadDotEnv(); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	env := config.NewEnv(os.LookupEnv)

	fs := flag.NewFlagSet("eval", flag.ContinueOnError)
	strategies := fs.String("strategies", env.String("EVAL_STRATEGIES", "random,simple"), "Comma separated strategies to benchmark")
	sizes := fs.String("sizes", env.String("EVAL_SIZES", "10x10,15x15,20x20"), "Comma separated board sizes")
	opponents := fs.String("opponents", env.String("EVAL_OPPONENTS", ""), "Comma separated strategies joining every game (empty = solo)")
	games := fs.Int("games", env.Int("EVAL_GAMES", 100), "Games per strategy and board size")
	workers := fs.Int("workers", env.Int("EVAL_WORKERS", runtime.NumCPU()), "Concurrent games")
	maxTurns := fs.Int("max-turns", env.Int("EVAL_MAX_TURNS", arena.DefaultMaxTurns), "Stop a game after this many turns")
	minFood := fs.Int("min-food", env.Int("MIN_FOOD", rules.DefaultFoodSettings.MinimumFood), "Minimum food on the board")
	spawnChance := fs.Int("food-spawn-chance", env.Int("FOOD_SPAWN_CHANCE", rules.DefaultFoodSettings.FoodSpawnChance), "Percent chance of extra food each turn")
	seed := fs.Int64("seed", env.Int64("SEED", 0), "Seed for reproducible runs (0 = unseeded)")
	parallel := fs.Bool("parallel", env.Bool("PARALLEL_SCORING", false), "Score candidate moves concurrently")
	logDir := fs.String("log-dir", env.String("LOG_DIR", "logs"), "Directory for aggregate JSON files")
	resultsDir := fs.String("results-dir", env.String("RESULTS_DIR", "logs/results"), "Directory for Parquet game results")
	flushGames := fs.Int("flush-games", env.Int("FLUSH_GAMES", 500), "Games per Parquet batch")
	fromResults := fs.Bool("from-results", false, "Aggregate the games already in -results-dir instead of playing")
	useTUI := fs.Bool("tui", env.Bool("EVAL_TUI", true), "Show live progress (otherwise log it)")
	logFormat := fs.String("log-format", env.String("LOG_FORMAT", logging.FormatText), "Log format: text, json or pretty")
	logLevel := fs.String("log-level", env.String("LOG_LEVEL", "info"), "Log level")
	if err := fs.Parse(args); err != nil {
		return err
	}

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		return err
	}
	logger, err := logging.New(os.Stderr, logging.Options{Format: *logFormat, Level: level})
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	if *fromResults {
		return aggregateArchive(logger, *resultsDir, *logDir)
	}

	cfg := arena.Config{
		Strategies: splitList(*strategies),
		Opponents:  splitList(*opponents),
		Games:      *games,
		Workers:    *workers,
		MaxTurns:   *maxTurns,
		Food:       rules.FoodSettings{MinimumFood: *minFood, FoodSpawnChance: *spawnChance},
		Seed:       *seed,
		Parallel:   *parallel,
	}
	for _, s := range splitList(*sizes) {
		b, err := arena.ParseBoardSize(s)
		if err != nil {
			return err
		}
		cfg.BoardSizes = append(cfg.BoardSizes, b)
	}
	if len(cfg.Strategies) == 0 || len(cfg.BoardSizes) == 0 || cfg.Games <= 0 {
		return fmt.Errorf("nothing to play: need strategies, sizes and a positive game count")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger.Info("starting benchmark",
		"strategies", cfg.Strategies,
		"sizes", *sizes,
		"games", cfg.Games,
		"workers", cfg.Workers,
		"opponents", cfg.Opponents,
	)

	results := make(chan arena.GameResult, 256)
	writer := newResultWriter(*resultsDir, *flushGames, logger)
	writerDone := make(chan []arena.GameResult)
	go func() {
		writerDone <- writer.loop(results)
	}()

	var updates chan arena.GameResult
	if *useTUI {
		updates = make(chan arena.GameResult, 256)
	}

	runErr := make(chan error, 1)
	go func() {
		err := arena.Run(ctx, cfg, func(r arena.GameResult) {
			results <- r
			if updates != nil {
				updates <- r
			}
		})
		close(results)
		if updates != nil {
			close(updates)
		}
		runErr <- err
	}()

	if *useTUI {
		p := tea.NewProgram(newModel(cfg, updates), tea.WithContext(ctx))
		if _, err := p.Run(); err != nil {
			logger.Warn("progress display stopped", "err", err)
		}
		// Quitting the display early abandons the remaining games.
		cancel()
		for range updates {
		}
	}

	err = <-runErr
	played := <-writerDone
	if err != nil && ctx.Err() == nil {
		return err
	}
	if len(played) == 0 {
		logger.Warn("no games finished")
		return nil
	}

	path, werr := store.WriteAggregates(*logDir, arena.Aggregate(played), time.Now())
	if werr != nil {
		return werr
	}
	logger.Info("benchmark complete", "games", len(played), "aggregates", path, "interrupted", ctx.Err() != nil)
	fmt.Println(summaryTable(arena.Aggregate(played)))
	return nil
}

func aggregateArchive(logger *slog.Logger, resultsDir, logDir string) error {
	rows, err := store.ReadResults(resultsDir)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no results in %s", resultsDir)
	}
	played := make([]arena.GameResult, len(rows))
	for i, row := range rows {
		played[i] = row.Result()
	}
	agg := arena.Aggregate(played)
	path, err := store.WriteAggregates(logDir, agg, time.Now())
	if err != nil {
		return err
	}
	logger.Info("aggregated archive", "games", len(rows), "aggregates", path)
	fmt.Println(summaryTable(agg))
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
